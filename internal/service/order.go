package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/sirupsen/logrus"
)

// EventPublisher receives order lifecycle events. Publishing is best effort.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event models.OrderEvent) error
}

type Option func(*options)

type options struct {
	now     func() time.Time
	numbers *OrderNumberGenerator
}

// WithClock overrides time.Now for timestamps and order numbers.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func WithOrderNumbers(g *OrderNumberGenerator) Option {
	return func(o *options) { o.numbers = g }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.numbers == nil {
		o.numbers = NewOrderNumberGenerator(o.now)
	}
	return o
}

type OrderService struct {
	customers db.CustomerRepository
	products  db.ProductRepository
	orders    db.OrderRepository
	publisher EventPublisher
	numbers   *OrderNumberGenerator
	now       func() time.Time
	logger    *logrus.Logger
}

func NewOrderService(store db.Store, publisher EventPublisher, logger *logrus.Logger, opts ...Option) *OrderService {
	o := buildOptions(opts)
	return &OrderService{
		customers: store.Customers,
		products:  store.Products,
		orders:    store.Orders,
		publisher: publisher,
		numbers:   o.numbers,
		now:       o.now,
		logger:    logger,
	}
}

// Create validates the request, reserves inventory for every line item and
// persists the order. All products are resolved and stock-checked before any
// inventory is touched; if a reservation or the insert fails afterwards, the
// reservations already made are released.
func (s *OrderService) Create(ctx context.Context, req models.CreateOrderRequest) (*models.Order, error) {
	if err := validateCreateOrder(req); err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return nil, NewStoreError("Error creating order", err)
	}
	if customer == nil {
		return nil, NewNotFoundError("Customer not found")
	}

	order := &models.Order{
		CustomerID:   customer.ID,
		CustomerName: customer.FullName(),
		Status:       models.OrderStatusPending,
		Notes:        req.Notes,
		Tax:          req.Tax,
		ShippingCost: req.ShippingCost,
		Items:        make([]models.OrderItem, 0, len(req.Items)),
	}

	totals := newOrderTotals(req.Tax, req.ShippingCost)
	requested := make(map[string]int, len(req.Items))

	for _, item := range req.Items {
		product, err := s.products.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, NewStoreError("Error creating order", err)
		}
		if product == nil {
			return nil, NewNotFoundError(fmt.Sprintf("Product with ID %s not found", item.ProductID))
		}

		// The same product may appear on several lines.
		requested[product.ID] += item.Quantity
		if product.Inventory.Quantity < requested[product.ID] {
			return nil, NewInsufficientInventoryError(product.Name)
		}

		line := lineSubtotal(product.Price, item.Quantity)
		totals.add(line)
		order.Items = append(order.Items, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    item.Quantity,
			UnitPrice:   product.Price,
			Subtotal:    line.InexactFloat64(),
		})
	}

	now := s.now()
	if err := s.reserve(ctx, order.Items, now); err != nil {
		return nil, err
	}

	order.Subtotal = totals.subtotal.InexactFloat64()
	order.Total = totals.total().InexactFloat64()
	order.OrderNumber = s.numbers.Next()
	order.ShippingAddress = customer.Address
	if req.ShippingAddress != nil && !req.ShippingAddress.IsZero() {
		order.ShippingAddress = *req.ShippingAddress
	}
	order.Touch(now)

	if err := s.orders.Create(ctx, order); err != nil {
		s.release(ctx, order.Items, "order insert failed")
		if errors.Is(err, db.ErrDuplicate) {
			return nil, NewConflictError("Order number already exists")
		}
		return nil, NewStoreError("Error creating order", err)
	}

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"customer_id":  order.CustomerID,
		"items_count":  len(order.Items),
		"total":        order.Total,
	}).Info("Order created")

	s.publish(ctx, models.EventOrderCreated, order)
	return order, nil
}

func validateCreateOrder(req models.CreateOrderRequest) error {
	if strings.TrimSpace(req.CustomerID) == "" || len(req.Items) == 0 {
		return NewValidationError("customerId and items are required")
	}
	for i, item := range req.Items {
		if strings.TrimSpace(item.ProductID) == "" {
			return NewValidationError("items[%d].productId is required", i)
		}
		if item.Quantity < 1 {
			return NewValidationError("items[%d].quantity must be at least 1", i)
		}
	}
	if req.Tax < 0 || req.ShippingCost < 0 {
		return NewValidationError("tax and shippingCost must not be negative")
	}
	return nil
}

// reserve decrements stock item by item with the store's conditional update.
// A failure releases what was already reserved.
func (s *OrderService) reserve(ctx context.Context, items []models.OrderItem, now time.Time) error {
	for i, item := range items {
		product, err := s.products.AdjustInventory(ctx, item.ProductID, -item.Quantity, now)
		if err == nil && product != nil {
			continue
		}

		s.release(ctx, items[:i], "reservation failed")
		switch {
		case errors.Is(err, db.ErrInsufficientStock):
			return NewInsufficientInventoryError(item.ProductName)
		case err != nil:
			return NewStoreError("Error creating order", err)
		default:
			return NewNotFoundError(fmt.Sprintf("Product with ID %s not found", item.ProductID))
		}
	}
	return nil
}

// release gives reserved stock back. It runs detached from ctx cancellation
// so an aborted request still compensates.
func (s *OrderService) release(ctx context.Context, items []models.OrderItem, reason string) {
	ctx = context.WithoutCancel(ctx)
	now := s.now()
	for _, item := range items {
		product, err := s.products.AdjustInventory(ctx, item.ProductID, item.Quantity, now)
		fields := logrus.Fields{
			"product_id": item.ProductID,
			"quantity":   item.Quantity,
			"reason":     reason,
		}
		switch {
		case err != nil:
			s.logger.WithError(err).WithFields(fields).Error("Failed to release reserved inventory")
		case product == nil:
			s.logger.WithFields(fields).Info("Product no longer exists, skipping inventory release")
		default:
			s.logger.WithFields(fields).Debug("Released reserved inventory")
		}
	}
}

func (s *OrderService) Get(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error retrieving order", err)
	}
	if order == nil {
		return nil, NewNotFoundError("Order not found")
	}
	return order, nil
}

func (s *OrderService) List(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.GetAll(ctx)
	if err != nil {
		return nil, NewStoreError("Error retrieving orders", err)
	}
	return orders, nil
}

func (s *OrderService) ListByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	orders, err := s.orders.GetByCustomer(ctx, customerID)
	if err != nil {
		return nil, NewStoreError("Error retrieving orders", err)
	}
	return orders, nil
}

// UpdateStatus overwrites the status. Any status may follow any other.
func (s *OrderService) UpdateStatus(ctx context.Context, id, status string) (*models.Order, error) {
	if status == "" {
		return nil, NewValidationError("status is required")
	}
	target := models.OrderStatus(status)
	if !target.Valid() {
		return nil, NewValidationError("status must be one of: %s", validStatuses())
	}

	order, err := s.orders.UpdateStatus(ctx, id, target, s.now())
	if err != nil {
		return nil, NewStoreError("Error updating order", err)
	}
	if order == nil {
		return nil, NewNotFoundError("Order not found")
	}

	s.logger.WithFields(logrus.Fields{
		"order_id": order.ID,
		"status":   order.Status,
	}).Info("Order status updated")

	s.publish(ctx, models.EventOrderStatusChanged, order)
	return order, nil
}

func validStatuses() string {
	names := make([]string, len(models.OrderStatuses))
	for i, st := range models.OrderStatuses {
		names[i] = string(st)
	}
	return strings.Join(names, ", ")
}

// Delete hard-deletes the order, then returns each item's quantity to its
// product. Products deleted since the order was placed are skipped.
func (s *OrderService) Delete(ctx context.Context, id string) (*models.Order, error) {
	order, err := s.orders.Delete(ctx, id)
	if err != nil {
		return nil, NewStoreError("Error deleting order", err)
	}
	if order == nil {
		return nil, NewNotFoundError("Order not found")
	}

	s.release(ctx, order.Items, "order deleted")

	s.logger.WithFields(logrus.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
	}).Info("Order deleted")

	s.publish(ctx, models.EventOrderDeleted, order)
	return order, nil
}

func (s *OrderService) publish(ctx context.Context, eventType string, order *models.Order) {
	if s.publisher == nil {
		return
	}
	event := models.NewOrderEvent(eventType, order, s.now())
	if err := s.publisher.PublishOrderEvent(ctx, event); err != nil {
		// The order is already committed; the event is not retried.
		s.logger.WithError(err).WithFields(logrus.Fields{
			"event":    eventType,
			"order_id": order.ID,
		}).Warn("Failed to publish order event")
	}
}
