package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	productCols  = []string{"id", "name", "description", "price", "category", "sku", "manufacturer", "quantity", "created_at", "updated_at"}
	orderCols    = []string{"id", "order_number", "customer_id", "customer_name", "items", "subtotal", "tax", "shipping_cost", "total", "status", "shipping_address", "notes", "order_date", "created_at", "updated_at"}
	customerCols = []string{"id", "first_name", "last_name", "email", "phone", "address", "created_at", "updated_at"}

	testTime = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newMock(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		conn.Close()
	})
	return &PostgresDB{Conn: conn}, mock
}

func TestMigrate(t *testing.T) {
	pg, mock := newMock(t)
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS customers").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS products").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS orders").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE INDEX IF NOT EXISTS orders_customer_id_idx").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, pg.Migrate(context.Background()))
}

func TestAdjustInventoryDecrements(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`UPDATE products\s+SET quantity = quantity \+ \$1, updated_at = \$2\s+WHERE id = \$3 AND quantity \+ \$1 >= 0`).
		WithArgs(-2, testTime, "p1").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "Hammer", "", 10.0, "tools", "HAM-1", "", 3, testTime, testTime))

	p, err := repo.AdjustInventory(context.Background(), "p1", -2, testTime)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Inventory.Quantity)
}

func TestAdjustInventoryInsufficientStock(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`UPDATE products`).
		WithArgs(-5, testTime, "p1").
		WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM products WHERE id = \$1\)`).
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	p, err := repo.AdjustInventory(context.Background(), "p1", -5, testTime)
	assert.Nil(t, p)
	assert.True(t, errors.Is(err, db.ErrInsufficientStock))
}

func TestAdjustInventoryMissingProduct(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`UPDATE products`).WillReturnRows(sqlmock.NewRows(productCols))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	p, err := repo.AdjustInventory(context.Background(), "gone", 2, testTime)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreateProductDuplicateSKU(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectExec(`INSERT INTO products`).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Create(context.Background(), &models.Product{Name: "Hammer", SKU: "HAM-1"})
	assert.True(t, errors.Is(err, db.ErrDuplicate))
}

func TestUpdateProductNotFound(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`UPDATE products`).WillReturnRows(sqlmock.NewRows(productCols))

	_, err := repo.Update(context.Background(), &models.Product{ID: "gone"})
	assert.True(t, errors.Is(err, db.ErrNotFound))
}

func TestUpdateProductLeavesQuantityAlone(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	// quantity is neither set nor bound; the row comes back with stock
	// reserved by someone else in the meantime.
	mock.ExpectQuery(`UPDATE products\s+SET name = \$1, description = \$2, price = \$3, category = \$4, sku = \$5,\s+manufacturer = \$6, updated_at = \$7\s+WHERE id = \$8\s+RETURNING`).
		WithArgs("Claw hammer", "", 12.0, "tools", "HAM-1", "", testTime, "p1").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "Claw hammer", "", 12.0, "tools", "HAM-1", "", 8, testTime, testTime))

	p, err := repo.Update(context.Background(), &models.Product{
		ID:        "p1",
		Name:      "Claw hammer",
		Price:     12,
		Category:  "tools",
		SKU:       "HAM-1",
		Inventory: models.Inventory{Quantity: 10},
		UpdatedAt: testTime,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, p.Inventory.Quantity)
}

func TestSetInventory(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`UPDATE products SET quantity = \$1, updated_at = \$2 WHERE id = \$3 RETURNING`).
		WithArgs(40, testTime, "p1").
		WillReturnRows(sqlmock.NewRows(productCols).
			AddRow("p1", "Hammer", "", 10.0, "tools", "HAM-1", "", 40, testTime, testTime))
	mock.ExpectQuery(`UPDATE products SET quantity`).
		WithArgs(1, testTime, "gone").
		WillReturnRows(sqlmock.NewRows(productCols))

	p, err := repo.SetInventory(context.Background(), "p1", 40, testTime)
	require.NoError(t, err)
	assert.Equal(t, 40, p.Inventory.Quantity)

	p, err = repo.SetInventory(context.Background(), "gone", 1, testTime)
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestGetProductNotFound(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewProductRepository(pg)

	mock.ExpectQuery(`SELECT (.+) FROM products WHERE id = \$1`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows(productCols))

	p, err := repo.GetByID(context.Background(), "gone")
	assert.NoError(t, err)
	assert.Nil(t, p)
}

func TestCreateOrderStoresItemsAsJSON(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewOrderRepository(pg)

	order := &models.Order{
		OrderNumber: "ORD-1",
		CustomerID:  "c1",
		Items:       []models.OrderItem{{ProductID: "p1", ProductName: "Hammer", Quantity: 2, UnitPrice: 10, Subtotal: 20}},
		Subtotal:    20,
		Total:       20,
		Status:      models.OrderStatusPending,
	}
	order.Touch(testTime)

	mock.ExpectExec(`INSERT INTO orders`).
		WithArgs(sqlmock.AnyArg(), "ORD-1", "c1", "", []byte(`[{"productId":"p1","productName":"Hammer","quantity":2,"unitPrice":10,"subtotal":20}]`),
			20.0, 0.0, 0.0, 20.0, "Pending", sqlmock.AnyArg(), "", testTime, testTime, testTime).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
}

func TestCreateOrderDuplicateNumber(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewOrderRepository(pg)

	mock.ExpectExec(`INSERT INTO orders`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &models.Order{OrderNumber: "ORD-1"})
	assert.True(t, errors.Is(err, db.ErrDuplicate))
}

func TestGetOrdersByCustomer(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewOrderRepository(pg)

	items := []byte(`[{"productId":"p1","productName":"Hammer","quantity":2,"unitPrice":10,"subtotal":20}]`)
	address := []byte(`{"city":"Springfield"}`)
	mock.ExpectQuery(`SELECT (.+) FROM orders WHERE customer_id = \$1 ORDER BY created_at DESC`).
		WithArgs("c1").
		WillReturnRows(sqlmock.NewRows(orderCols).
			AddRow("o2", "ORD-2", "c1", "Ada Lovelace", items, 20.0, 2.0, 3.0, 25.0, "Shipped", address, "", testTime, testTime, testTime).
			AddRow("o1", "ORD-1", "c1", "Ada Lovelace", items, 20.0, 0.0, 0.0, 20.0, "Pending", []byte(`{}`), "", testTime, testTime, testTime))

	orders, err := repo.GetByCustomer(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, models.OrderStatusShipped, orders[0].Status)
	assert.Equal(t, "Springfield", orders[0].ShippingAddress.City)
	require.Len(t, orders[1].Items, 1)
	assert.Equal(t, "Hammer", orders[1].Items[0].ProductName)
}

func TestDeleteOrderMissing(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewOrderRepository(pg)

	mock.ExpectQuery(`DELETE FROM orders WHERE id = \$1 RETURNING`).
		WithArgs("gone").
		WillReturnRows(sqlmock.NewRows(orderCols))

	o, err := repo.Delete(context.Background(), "gone")
	assert.NoError(t, err)
	assert.Nil(t, o)
}

func TestGetCustomerByEmail(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewCustomerRepository(pg)

	mock.ExpectQuery(`SELECT (.+) FROM customers WHERE email = \$1`).
		WithArgs("ada@example.com").
		WillReturnRows(sqlmock.NewRows(customerCols).
			AddRow("c1", "Ada", "Lovelace", "ada@example.com", "555", []byte(`{"street":"1 Main St"}`), testTime, testTime))

	c, err := repo.GetByEmail(context.Background(), "ada@example.com")
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, "1 Main St", c.Address.Street)
}

func TestQueryFailureIsWrapped(t *testing.T) {
	pg, mock := newMock(t)
	repo := NewCustomerRepository(pg)

	cause := errors.New("connection reset by peer")
	mock.ExpectQuery(`SELECT (.+) FROM customers`).WillReturnError(cause)

	_, err := repo.GetAll(context.Background())
	assert.ErrorIs(t, err, cause)
}
