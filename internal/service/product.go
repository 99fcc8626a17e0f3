package service

import (
	"context"
	"errors"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/sirupsen/logrus"
)

type ProductService struct {
	repo   db.ProductRepository
	now    func() time.Time
	logger *logrus.Logger
}

func NewProductService(repo db.ProductRepository, logger *logrus.Logger, opts ...Option) *ProductService {
	o := buildOptions(opts)
	return &ProductService{repo: repo, now: o.now, logger: logger}
}

func (s *ProductService) Create(ctx context.Context, req models.CreateProductRequest) (*models.Product, error) {
	if req.Name == "" || req.Price == nil || req.Category == "" || req.SKU == "" {
		return nil, NewValidationError("name, price, category, and sku are required")
	}
	if *req.Price < 0 {
		return nil, NewValidationError("price must not be negative")
	}
	if req.Inventory != nil && req.Inventory.Quantity < 0 {
		return nil, NewValidationError("inventory.quantity must not be negative")
	}

	existing, err := s.repo.GetBySKU(ctx, req.SKU)
	if err != nil {
		return nil, NewStoreError("Error creating product", err)
	}
	if existing != nil {
		return nil, NewConflictError("Product with this SKU already exists")
	}

	product := &models.Product{
		Name:         req.Name,
		Description:  req.Description,
		Price:        *req.Price,
		Category:     req.Category,
		SKU:          req.SKU,
		Manufacturer: req.Manufacturer,
	}
	if req.Inventory != nil {
		product.Inventory = *req.Inventory
	}
	product.Touch(s.now())

	if err := s.repo.Create(ctx, product); err != nil {
		if errors.Is(err, db.ErrDuplicate) {
			return nil, NewConflictError("Product with this SKU already exists")
		}
		return nil, NewStoreError("Error creating product", err)
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": product.ID,
		"sku":        product.SKU,
	}).Info("Product created")
	return product, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error retrieving product", err)
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found")
	}
	return product, nil
}

func (s *ProductService) List(ctx context.Context) ([]models.Product, error) {
	products, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, NewStoreError("Error retrieving products", err)
	}
	return products, nil
}

// Update applies the non-empty fields of req.
func (s *ProductService) Update(ctx context.Context, id string, req models.UpdateProductRequest) (*models.Product, error) {
	if req.Price != nil && *req.Price < 0 {
		return nil, NewValidationError("price must not be negative")
	}
	if req.Inventory != nil && req.Inventory.Quantity < 0 {
		return nil, NewValidationError("inventory.quantity must not be negative")
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error updating product", err)
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found")
	}

	if req.SKU != "" && req.SKU != product.SKU {
		existing, err := s.repo.GetBySKU(ctx, req.SKU)
		if err != nil {
			return nil, NewStoreError("Error updating product", err)
		}
		if existing != nil {
			return nil, NewConflictError("SKU already in use")
		}
		product.SKU = req.SKU
	}
	if req.Name != "" {
		product.Name = req.Name
	}
	if req.Description != "" {
		product.Description = req.Description
	}
	if req.Price != nil {
		product.Price = *req.Price
	}
	if req.Category != "" {
		product.Category = req.Category
	}
	if req.Manufacturer != "" {
		product.Manufacturer = req.Manufacturer
	}
	now := s.now()
	product.Touch(now)

	updated, err := s.repo.Update(ctx, product)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrDuplicate):
			return nil, NewConflictError("SKU already in use")
		case errors.Is(err, db.ErrNotFound):
			return nil, NewNotFoundError("Product not found")
		}
		return nil, NewStoreError("Error updating product", err)
	}

	if req.Inventory != nil {
		return s.setInventory(ctx, id, req.Inventory.Quantity, now, "Error updating product")
	}
	return updated, nil
}

// SetInventory overwrites the stock count.
func (s *ProductService) SetInventory(ctx context.Context, id string, req models.UpdateInventoryRequest) (*models.Product, error) {
	if req.Quantity == nil {
		return nil, NewValidationError("quantity is required")
	}
	if *req.Quantity < 0 {
		return nil, NewValidationError("quantity must not be negative")
	}

	product, err := s.setInventory(ctx, id, *req.Quantity, s.now(), "Error updating inventory")
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"product_id": id,
		"quantity":   product.Inventory.Quantity,
	}).Info("Inventory updated")
	return product, nil
}

func (s *ProductService) setInventory(ctx context.Context, id string, quantity int, now time.Time, message string) (*models.Product, error) {
	product, err := s.repo.SetInventory(ctx, id, quantity, now)
	if err != nil {
		return nil, NewStoreError(message, err)
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found")
	}
	return product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.repo.Delete(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error deleting product", err)
	}
	if product == nil {
		return nil, NewNotFoundError("Product not found")
	}

	s.logger.WithField("product_id", id).Info("Product deleted")
	return product, nil
}
