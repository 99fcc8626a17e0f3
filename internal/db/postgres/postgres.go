package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/sirupsen/logrus"
)

type PostgresDB struct {
	Conn *sql.DB
}

func NewPostgresDB(ctx context.Context, dsn string, logger *logrus.Logger) (*PostgresDB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Connected to PostgreSQL")
	return &PostgresDB{Conn: conn}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		id TEXT PRIMARY KEY,
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		phone TEXT NOT NULL,
		address JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
		category TEXT NOT NULL,
		sku TEXT NOT NULL UNIQUE,
		manufacturer TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		customer_id TEXT NOT NULL,
		customer_name TEXT NOT NULL DEFAULT '',
		items JSONB NOT NULL,
		subtotal NUMERIC(12,2) NOT NULL,
		tax NUMERIC(12,2) NOT NULL,
		shipping_cost NUMERIC(12,2) NOT NULL,
		total NUMERIC(12,2) NOT NULL,
		status TEXT NOT NULL,
		shipping_address JSONB NOT NULL DEFAULT '{}',
		notes TEXT NOT NULL DEFAULT '',
		order_date TIMESTAMPTZ NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS orders_customer_id_idx ON orders (customer_id)`,
}

// Migrate creates the tables if they don't exist.
func (p *PostgresDB) Migrate(ctx context.Context) error {
	for _, query := range schema {
		if _, err := p.Conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.Conn.PingContext(ctx)
}

func (p *PostgresDB) Close() error {
	return p.Conn.Close()
}

func (p *PostgresDB) NewStore() db.Store {
	return db.Store{
		Customers: NewCustomerRepository(p),
		Products:  NewProductRepository(p),
		Orders:    NewOrderRepository(p),
	}
}

func newID() string {
	return uuid.NewString()
}

// translate maps unique violations onto db.ErrDuplicate.
func translate(err error, action string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return db.ErrDuplicate
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}
