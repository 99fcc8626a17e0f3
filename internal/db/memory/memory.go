// Package memory keeps every collection in process memory. It backs local
// runs without a database and the service and handler tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

func NewStore() db.Store {
	return db.Store{
		Customers: NewCustomerRepository(),
		Products:  NewProductRepository(),
		Orders:    NewOrderRepository(),
	}
}

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[string]models.Customer
}

func NewCustomerRepository() *CustomerRepository {
	return &CustomerRepository{customers: make(map[string]models.Customer)}
}

func (r *CustomerRepository) Create(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if customer.ID == "" {
		customer.ID = uuid.NewString()
	}
	if _, ok := r.customers[customer.ID]; ok || r.emailTaken(customer.Email, customer.ID) {
		return db.ErrDuplicate
	}
	r.customers[customer.ID] = *customer
	return nil
}

func (r *CustomerRepository) emailTaken(email, exceptID string) bool {
	for id, c := range r.customers {
		if id != exceptID && c.Email == email {
			return true
		}
	}
	return false
}

func (r *CustomerRepository) GetByID(_ context.Context, id string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *CustomerRepository) GetByEmail(_ context.Context, email string) (*models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, c := range r.customers {
		if c.Email == email {
			return &c, nil
		}
	}
	return nil, nil
}

func (r *CustomerRepository) GetAll(_ context.Context) ([]models.Customer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	customers := make([]models.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		customers = append(customers, c)
	}
	sort.SliceStable(customers, func(i, j int) bool {
		return customers[i].CreatedAt.Before(customers[j].CreatedAt)
	})
	return customers, nil
}

func (r *CustomerRepository) Update(_ context.Context, customer *models.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.customers[customer.ID]; !ok {
		return db.ErrNotFound
	}
	if r.emailTaken(customer.Email, customer.ID) {
		return db.ErrDuplicate
	}
	r.customers[customer.ID] = *customer
	return nil
}

func (r *CustomerRepository) Delete(_ context.Context, id string) (*models.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.customers[id]
	if !ok {
		return nil, nil
	}
	delete(r.customers, id)
	return &c, nil
}

type ProductRepository struct {
	mu       sync.RWMutex
	products map[string]models.Product
}

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[string]models.Product)}
}

func (r *ProductRepository) Create(_ context.Context, product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if _, ok := r.products[product.ID]; ok || r.skuTaken(product.SKU, product.ID) {
		return db.ErrDuplicate
	}
	r.products[product.ID] = *product
	return nil
}

func (r *ProductRepository) skuTaken(sku, exceptID string) bool {
	for id, p := range r.products {
		if id != exceptID && p.SKU == sku {
			return true
		}
	}
	return false
}

func (r *ProductRepository) GetByID(_ context.Context, id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepository) GetBySKU(_ context.Context, sku string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) GetAll(_ context.Context) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	products := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		products = append(products, p)
	}
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].CreatedAt.Before(products[j].CreatedAt)
	})
	return products, nil
}

// Update merges the descriptive fields into the stored product, keeping its
// stock and creation time.
func (r *ProductRepository) Update(_ context.Context, product *models.Product) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.products[product.ID]
	if !ok {
		return nil, db.ErrNotFound
	}
	if r.skuTaken(product.SKU, product.ID) {
		return nil, db.ErrDuplicate
	}

	stored.Name = product.Name
	stored.Description = product.Description
	stored.Price = product.Price
	stored.Category = product.Category
	stored.SKU = product.SKU
	stored.Manufacturer = product.Manufacturer
	stored.UpdatedAt = product.UpdatedAt
	r.products[product.ID] = stored
	return &stored, nil
}

func (r *ProductRepository) SetInventory(_ context.Context, id string, quantity int, now time.Time) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	p.Inventory.Quantity = quantity
	p.UpdatedAt = now
	r.products[id] = p
	return &p, nil
}

func (r *ProductRepository) Delete(_ context.Context, id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	delete(r.products, id)
	return &p, nil
}

func (r *ProductRepository) AdjustInventory(_ context.Context, id string, delta int, now time.Time) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	if p.Inventory.Quantity+delta < 0 {
		return nil, db.ErrInsufficientStock
	}
	p.Inventory.Quantity += delta
	p.UpdatedAt = now
	r.products[id] = p
	return &p, nil
}

type OrderRepository struct {
	mu     sync.RWMutex
	orders map[string]storedOrder
	seq    int64
}

// storedOrder remembers insertion order to break createdAt ties.
type storedOrder struct {
	order models.Order
	seq   int64
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[string]storedOrder)}
}

func (r *OrderRepository) Create(_ context.Context, order *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if _, ok := r.orders[order.ID]; ok {
		return db.ErrDuplicate
	}
	for _, o := range r.orders {
		if o.order.OrderNumber == order.OrderNumber {
			return db.ErrDuplicate
		}
	}
	r.seq++
	r.orders[order.ID] = storedOrder{order: cloneOrder(*order), seq: r.seq}
	return nil
}

func (r *OrderRepository) GetByID(_ context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	order := cloneOrder(o.order)
	return &order, nil
}

func (r *OrderRepository) GetAll(_ context.Context) ([]models.Order, error) {
	return r.filter(func(models.Order) bool { return true }), nil
}

func (r *OrderRepository) GetByCustomer(_ context.Context, customerID string) ([]models.Order, error) {
	return r.filter(func(o models.Order) bool { return o.CustomerID == customerID }), nil
}

// filter returns matching orders newest first.
func (r *OrderRepository) filter(match func(models.Order) bool) []models.Order {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stored := make([]storedOrder, 0, len(r.orders))
	for _, o := range r.orders {
		if match(o.order) {
			stored = append(stored, o)
		}
	}
	sort.Slice(stored, func(i, j int) bool {
		if !stored[i].order.CreatedAt.Equal(stored[j].order.CreatedAt) {
			return stored[i].order.CreatedAt.After(stored[j].order.CreatedAt)
		}
		return stored[i].seq > stored[j].seq
	})

	orders := make([]models.Order, 0, len(stored))
	for _, o := range stored {
		orders = append(orders, cloneOrder(o.order))
	}
	return orders
}

func (r *OrderRepository) UpdateStatus(_ context.Context, id string, status models.OrderStatus, now time.Time) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	o.order.Status = status
	o.order.UpdatedAt = now
	r.orders[id] = o

	order := cloneOrder(o.order)
	return &order, nil
}

func (r *OrderRepository) Delete(_ context.Context, id string) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	o, ok := r.orders[id]
	if !ok {
		return nil, nil
	}
	delete(r.orders, id)
	return &o.order, nil
}

func cloneOrder(o models.Order) models.Order {
	o.Items = append([]models.OrderItem(nil), o.Items...)
	return o
}
