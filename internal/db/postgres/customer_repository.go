package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

const customerColumns = `id, first_name, last_name, email, phone, address, created_at, updated_at`

type CustomerRepository struct {
	db *sql.DB
}

func NewCustomerRepository(database *PostgresDB) *CustomerRepository {
	return &CustomerRepository{db: database.Conn}
}

func (r *CustomerRepository) Create(ctx context.Context, customer *models.Customer) error {
	if customer.ID == "" {
		customer.ID = newID()
	}
	address, err := json.Marshal(customer.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}

	query := `
		INSERT INTO customers (id, first_name, last_name, email, phone, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		customer.ID, customer.FirstName, customer.LastName, customer.Email,
		customer.Phone, address, customer.CreatedAt, customer.UpdatedAt,
	)
	if err != nil {
		return translate(err, "insert customer")
	}
	return nil
}

func (r *CustomerRepository) GetByID(ctx context.Context, id string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *CustomerRepository) GetByEmail(ctx context.Context, email string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers WHERE email = $1`
	return r.getOne(ctx, query, email)
}

func (r *CustomerRepository) getOne(ctx context.Context, query string, arg string) (*models.Customer, error) {
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return c, nil
}

func (r *CustomerRepository) GetAll(ctx context.Context) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query customers: %w", err)
	}
	defer rows.Close()

	customers := make([]models.Customer, 0)
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, *c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Update(ctx context.Context, customer *models.Customer) error {
	address, err := json.Marshal(customer.Address)
	if err != nil {
		return fmt.Errorf("failed to marshal address: %w", err)
	}

	query := `
		UPDATE customers
		SET first_name = $1, last_name = $2, email = $3, phone = $4, address = $5, updated_at = $6
		WHERE id = $7
	`
	result, err := r.db.ExecContext(ctx, query,
		customer.FirstName, customer.LastName, customer.Email, customer.Phone,
		address, customer.UpdatedAt, customer.ID,
	)
	if err != nil {
		return translate(err, "update customer")
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *CustomerRepository) Delete(ctx context.Context, id string) (*models.Customer, error) {
	query := `DELETE FROM customers WHERE id = $1 RETURNING ` + customerColumns
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete customer: %w", err)
	}
	return c, nil
}

func scanCustomer(row scanner) (*models.Customer, error) {
	var c models.Customer
	var address []byte
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone, &address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(address) > 0 {
		if err := json.Unmarshal(address, &c.Address); err != nil {
			return nil, fmt.Errorf("failed to decode address: %w", err)
		}
	}
	return &c, nil
}
