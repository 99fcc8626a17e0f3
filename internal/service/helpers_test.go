package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db/memory"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func newTestLogger() (*logrus.Logger, *test.Hook) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	return logger, hook
}

var addressA = models.Address{
	Street:     "1 Main St",
	City:       "Springfield",
	State:      "IL",
	PostalCode: "62701",
	Country:    "US",
}

func seedCustomer(t *testing.T, store db.Store) *models.Customer {
	t.Helper()
	customer := &models.Customer{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Phone:     "555-0100",
		Address:   addressA,
	}
	customer.Touch(fixedNow)
	require.NoError(t, store.Customers.Create(context.Background(), customer))
	return customer
}

func seedProduct(t *testing.T, store db.Store, name, sku string, price float64, quantity int) *models.Product {
	t.Helper()
	product := &models.Product{
		Name:      name,
		Price:     price,
		Category:  "tools",
		SKU:       sku,
		Inventory: models.Inventory{Quantity: quantity},
	}
	product.Touch(fixedNow)
	require.NoError(t, store.Products.Create(context.Background(), product))
	return product
}

func quantityOf(t *testing.T, store db.Store, id string) int {
	t.Helper()
	product, err := store.Products.GetByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, product)
	return product.Inventory.Quantity
}

func requireCode(t *testing.T, err error, code Code) *Error {
	t.Helper()
	require.Error(t, err)
	var svcErr *Error
	require.True(t, errors.As(err, &svcErr), "expected *service.Error, got %T", err)
	require.Equal(t, code, svcErr.Code)
	return svcErr
}

func newMemoryStore() db.Store {
	return memory.NewStore()
}

// recordingPublisher captures published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []models.OrderEvent
	err    error
}

func (p *recordingPublisher) PublishOrderEvent(_ context.Context, event models.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.Type
	}
	return out
}

// flakyProducts fails AdjustInventory for chosen products.
type flakyProducts struct {
	db.ProductRepository
	failReserve map[string]error
	adjustCalls int
}

func (r *flakyProducts) AdjustInventory(ctx context.Context, id string, delta int, now time.Time) (*models.Product, error) {
	r.adjustCalls++
	if err, ok := r.failReserve[id]; ok && delta < 0 {
		return nil, err
	}
	return r.ProductRepository.AdjustInventory(ctx, id, delta, now)
}

type failingOrders struct {
	db.OrderRepository
	createErr error
}

func (r *failingOrders) Create(context.Context, *models.Order) error {
	return r.createErr
}
