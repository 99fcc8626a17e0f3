package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/db"
	"github.com/prudhivi99/Distributed-Systems/commerce-api/internal/models"
)

const productColumns = `id, name, description, price, category, sku, manufacturer, quantity, created_at, updated_at`

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(database *PostgresDB) *ProductRepository {
	return &ProductRepository{db: database.Conn}
}

// Create inserts a new product
func (r *ProductRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = newID()
	}

	query := `
		INSERT INTO products (id, name, description, price, category, sku, manufacturer, quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		product.ID, product.Name, product.Description, product.Price, product.Category,
		product.SKU, product.Manufacturer, product.Inventory.Quantity,
		product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		return translate(err, "create product")
	}
	return nil
}

// GetByID returns a single product
func (r *ProductRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE sku = $1`
	return r.getOne(ctx, query, sku)
}

func (r *ProductRepository) getOne(ctx context.Context, query string, arg string) (*models.Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return p, nil
}

// GetAll returns all products
func (r *ProductRepository) GetAll(ctx context.Context) ([]models.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products ORDER BY created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := make([]models.Product, 0)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}
	return products, rows.Err()
}

// Update leaves quantity alone; stock only moves through SetInventory and
// AdjustInventory.
func (r *ProductRepository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, category = $4, sku = $5,
			manufacturer = $6, updated_at = $7
		WHERE id = $8
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query,
		product.Name, product.Description, product.Price, product.Category, product.SKU,
		product.Manufacturer, product.UpdatedAt, product.ID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, db.ErrNotFound
		}
		return nil, translate(err, "update product")
	}
	return p, nil
}

func (r *ProductRepository) SetInventory(ctx context.Context, id string, quantity int, now time.Time) (*models.Product, error) {
	query := `UPDATE products SET quantity = $1, updated_at = $2 WHERE id = $3 RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, quantity, now, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to set inventory: %w", err)
	}
	return p, nil
}

// Delete removes a product
func (r *ProductRepository) Delete(ctx context.Context, id string) (*models.Product, error) {
	query := `DELETE FROM products WHERE id = $1 RETURNING ` + productColumns
	p, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete product: %w", err)
	}
	return p, nil
}

// AdjustInventory guards the stock level in the WHERE clause so the check
// and the write happen in one statement.
func (r *ProductRepository) AdjustInventory(ctx context.Context, id string, delta int, now time.Time) (*models.Product, error) {
	query := `
		UPDATE products
		SET quantity = quantity + $1, updated_at = $2
		WHERE id = $3 AND quantity + $1 >= 0
		RETURNING ` + productColumns

	p, err := scanProduct(r.db.QueryRowContext(ctx, query, delta, now, id))
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}

	var exists bool
	err = r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check product: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return nil, db.ErrInsufficientStock
}

func scanProduct(row scanner) (*models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Category, &p.SKU,
		&p.Manufacturer, &p.Inventory.Quantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
