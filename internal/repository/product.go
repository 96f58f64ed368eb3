package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders-service/internal/domain/catalog"
)

const (
	productColumns = `id, name, description, price, stock_quantity, weight,
		average_rating, active, category_id`

	getProductByIDSQL        = `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	getProductForUpdateSQL   = `SELECT ` + productColumns + ` FROM products WHERE id = $1 FOR UPDATE`
	getProductByNameSQL      = `SELECT ` + productColumns + ` FROM products WHERE name = $1`
	listProductsSQL          = `SELECT ` + productColumns + ` FROM products ORDER BY name`
	listActiveProductsSQL    = `SELECT ` + productColumns + ` FROM products WHERE active ORDER BY name`
	listProductsByCategorySQL = `SELECT ` + productColumns + ` FROM products
		WHERE category_id = $1 ORDER BY name`

	createProductSQL = `INSERT INTO products
		(id, name, description, price, stock_quantity, weight, average_rating, active, category_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	updateProductSQL = `UPDATE products SET name = $2, description = $3, price = $4,
		stock_quantity = $5, weight = $6, active = $7, category_id = $8
		WHERE id = $1`

	setProductRatingSQL = `UPDATE products SET average_rating = $2 WHERE id = $1`

	deleteProductSQL = `DELETE FROM products WHERE id = $1`
)

var _ catalog.ProductRepository = (*ProductRepository)(nil)

// ProductRepository implements catalog.ProductRepository backed by PostgreSQL.
type ProductRepository struct {
	db *DB
}

// NewProductRepository returns a ProductRepository that uses the given DB.
func NewProductRepository(db *DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.getOne(ctx, getProductByIDSQL, id)
}

// GetForUpdate returns the product by id under a row lock. Callers must be
// inside a transaction for the lock to be meaningful.
func (r *ProductRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return r.getOne(ctx, getProductForUpdateSQL, id)
}

func (r *ProductRepository) getOne(ctx context.Context, sql string, id uuid.UUID) (*catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting product %s: %w", id, err)
	}
	return &p, nil
}

// GetByName returns the product with the given name, or (nil, nil) when
// no product has it.
func (r *ProductRepository) GetByName(ctx context.Context, name string) (*catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getProductByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("getting product by name %q: %w", name, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting product by name %q: %w", name, err)
	}
	return &p, nil
}

// List returns all products ordered by name.
func (r *ProductRepository) List(ctx context.Context) ([]catalog.Product, error) {
	return r.list(ctx, listProductsSQL)
}

// ListActive returns only products available for ordering.
func (r *ProductRepository) ListActive(ctx context.Context) ([]catalog.Product, error) {
	return r.list(ctx, listActiveProductsSQL)
}

// ListByCategory returns the category's products ordered by name.
func (r *ProductRepository) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]catalog.Product, error) {
	return r.list(ctx, listProductsByCategorySQL, categoryID)
}

func (r *ProductRepository) list(ctx context.Context, sql string, args ...any) ([]catalog.Product, error) {
	rows, err := r.db.conn(ctx).Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// Create persists a new product.
func (r *ProductRepository) Create(ctx context.Context, p *catalog.Product) error {
	_, err := r.db.conn(ctx).Exec(ctx, createProductSQL,
		p.ID, p.Name, nullIfEmpty(p.Description), p.Price, p.StockQuantity,
		nullIfZero(p.Weight), p.AverageRating, p.Active, p.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("creating product %s: %w", p.ID, err)
	}
	return nil
}

// Update persists the product's mutable fields. The average rating is
// written only through SetAverageRating.
func (r *ProductRepository) Update(ctx context.Context, p *catalog.Product) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateProductSQL,
		p.ID, p.Name, nullIfEmpty(p.Description), p.Price, p.StockQuantity,
		nullIfZero(p.Weight), p.Active, p.CategoryID,
	)
	if err != nil {
		return fmt.Errorf("updating product %s: %w", p.ID, err)
	}
	return nil
}

// SetAverageRating persists the recomputed aggregate rating; nil clears it.
func (r *ProductRepository) SetAverageRating(ctx context.Context, id uuid.UUID, rating *decimal.Decimal) error {
	_, err := r.db.conn(ctx).Exec(ctx, setProductRatingSQL, id, rating)
	if err != nil {
		return fmt.Errorf("setting average rating for product %s: %w", id, err)
	}
	return nil
}

// Delete removes the product.
func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("deleting product %s: %w", id, err)
	}
	return nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var (
		p           catalog.Product
		description *string
		weight      *decimal.Decimal
	)
	err := row.Scan(
		&p.ID, &p.Name, &description, &p.Price, &p.StockQuantity, &weight,
		&p.AverageRating, &p.Active, &p.CategoryID,
	)
	if description != nil {
		p.Description = *description
	}
	if weight != nil {
		p.Weight = *weight
	}
	return p, err
}

// nullIfZero maps a zero decimal to SQL NULL for optional numeric columns.
func nullIfZero(d decimal.Decimal) *decimal.Decimal {
	if d.IsZero() {
		return nil
	}
	return &d
}
