package db

import (
	"context"
	"errors"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

var (
	// ErrDuplicate is returned when a write violates a unique field
	// (customer email, product SKU, order number).
	ErrDuplicate = errors.New("duplicate key")

	// ErrInsufficientStock is returned by AdjustInventory when the change
	// would drive a product's quantity below zero.
	ErrInsufficientStock = errors.New("insufficient stock")

	// ErrNotFound is returned by Update when the document no longer exists.
	ErrNotFound = errors.New("document not found")
)

// Lookups return (nil, nil) when the document does not exist.

type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) error
	GetByID(ctx context.Context, id string) (*models.Customer, error)
	GetByEmail(ctx context.Context, email string) (*models.Customer, error)
	GetAll(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) error
	Delete(ctx context.Context, id string) (*models.Customer, error)
}

type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	GetBySKU(ctx context.Context, sku string) (*models.Product, error)
	GetAll(ctx context.Context) ([]models.Product, error)
	Delete(ctx context.Context, id string) (*models.Product, error)

	// Update writes the descriptive fields of product and returns the stored
	// document. inventory.quantity is never written here, so a reservation
	// made between a caller's read and this write is kept.
	Update(ctx context.Context, product *models.Product) (*models.Product, error)

	// SetInventory overwrites inventory.quantity.
	SetInventory(ctx context.Context, id string, quantity int, now time.Time) (*models.Product, error)

	// AdjustInventory atomically adds delta to inventory.quantity and
	// returns the updated product. The change is refused with
	// ErrInsufficientStock if the result would be negative.
	AdjustInventory(ctx context.Context, id string, delta int, now time.Time) (*models.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetAll(ctx context.Context) ([]models.Order, error)
	GetByCustomer(ctx context.Context, customerID string) ([]models.Order, error)
	UpdateStatus(ctx context.Context, id string, status models.OrderStatus, now time.Time) (*models.Order, error)
	Delete(ctx context.Context, id string) (*models.Order, error)
}

// Store groups the three collections the API works against.
type Store struct {
	Customers CustomerRepository
	Products  ProductRepository
	Orders    OrderRepository
}
