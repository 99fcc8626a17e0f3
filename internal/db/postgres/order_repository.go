package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

const orderColumns = `id, order_number, customer_id, customer_name, items, subtotal, tax, shipping_cost,
	total, status, shipping_address, notes, order_date, created_at, updated_at`

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(database *PostgresDB) *OrderRepository {
	return &OrderRepository{db: database.Conn}
}

// Create inserts a new order; items are kept as one JSONB document
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = newID()
	}

	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}
	address, err := json.Marshal(order.ShippingAddress)
	if err != nil {
		return fmt.Errorf("failed to marshal shipping address: %w", err)
	}

	query := `
		INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		order.ID, order.OrderNumber, order.CustomerID, order.CustomerName, items,
		order.Subtotal, order.Tax, order.ShippingCost, order.Total, string(order.Status),
		address, order.Notes, order.OrderDate, order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return translate(err, "insert order")
	}
	return nil
}

// GetByID returns a single order with items
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

// GetAll returns all orders
func (r *OrderRepository) GetAll(ctx context.Context) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at DESC`
	return r.query(ctx, query)
}

func (r *OrderRepository) GetByCustomer(ctx context.Context, customerID string) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`
	return r.query(ctx, query, customerID)
}

func (r *OrderRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]models.Order, 0)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateStatus updates order status
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status models.OrderStatus, now time.Time) (*models.Order, error) {
	query := `UPDATE orders SET status = $1, updated_at = $2 WHERE id = $3 RETURNING ` + orderColumns
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, string(status), now, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update order: %w", err)
	}
	return o, nil
}

func (r *OrderRepository) Delete(ctx context.Context, id string) (*models.Order, error) {
	query := `DELETE FROM orders WHERE id = $1 RETURNING ` + orderColumns
	o, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete order: %w", err)
	}
	return o, nil
}

func scanOrder(row scanner) (*models.Order, error) {
	var o models.Order
	var items, address []byte
	var status string
	err := row.Scan(
		&o.ID, &o.OrderNumber, &o.CustomerID, &o.CustomerName, &items,
		&o.Subtotal, &o.Tax, &o.ShippingCost, &o.Total, &status,
		&address, &o.Notes, &o.OrderDate, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	o.Status = models.OrderStatus(status)

	if err := json.Unmarshal(items, &o.Items); err != nil {
		return nil, fmt.Errorf("failed to decode order items: %w", err)
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &o.ShippingAddress); err != nil {
			return nil, fmt.Errorf("failed to decode shipping address: %w", err)
		}
	}
	return &o, nil
}
