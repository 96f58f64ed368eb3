package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/orders-service/internal/domain/catalog"
)

const (
	getCategoryByIDSQL   = `SELECT id, name, description FROM categories WHERE id = $1`
	getCategoryByNameSQL = `SELECT id, name, description FROM categories WHERE name = $1`
	existsCategorySQL    = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
	listCategoriesSQL    = `SELECT id, name, description FROM categories ORDER BY name`

	createCategorySQL = `INSERT INTO categories (id, name, description) VALUES ($1, $2, $3)`
	updateCategorySQL = `UPDATE categories SET name = $2, description = $3 WHERE id = $1`
	deleteCategorySQL = `DELETE FROM categories WHERE id = $1`
)

var _ catalog.CategoryRepository = (*CategoryRepository)(nil)

// CategoryRepository implements catalog.CategoryRepository backed by PostgreSQL.
type CategoryRepository struct {
	db *DB
}

// NewCategoryRepository returns a CategoryRepository that uses the given DB.
func NewCategoryRepository(db *DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// GetByID returns a single category by id.
func (r *CategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getCategoryByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &catalog.CategoryNotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting category %s: %w", id, err)
	}
	return &c, nil
}

// GetByName returns the category with the given name, or (nil, nil) when
// no category has it.
func (r *CategoryRepository) GetByName(ctx context.Context, name string) (*catalog.Category, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getCategoryByNameSQL, name)
	if err != nil {
		return nil, fmt.Errorf("getting category by name %q: %w", name, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCategory)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("getting category by name %q: %w", name, err)
	}
	return &c, nil
}

// Exists reports whether a category with the given id exists.
func (r *CategoryRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.db.conn(ctx).QueryRow(ctx, existsCategorySQL, id).Scan(&ok); err != nil {
		return false, fmt.Errorf("checking category %s: %w", id, err)
	}
	return ok, nil
}

// List returns all categories ordered by name.
func (r *CategoryRepository) List(ctx context.Context) ([]catalog.Category, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listCategoriesSQL)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return pgx.CollectRows(rows, scanCategory)
}

// Create persists a new category.
func (r *CategoryRepository) Create(ctx context.Context, c *catalog.Category) error {
	_, err := r.db.conn(ctx).Exec(ctx, createCategorySQL, c.ID, c.Name, nullIfEmpty(c.Description))
	if err != nil {
		return fmt.Errorf("creating category %s: %w", c.ID, err)
	}
	return nil
}

// Update persists the category's mutable fields.
func (r *CategoryRepository) Update(ctx context.Context, c *catalog.Category) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateCategorySQL, c.ID, c.Name, nullIfEmpty(c.Description))
	if err != nil {
		return fmt.Errorf("updating category %s: %w", c.ID, err)
	}
	return nil
}

// Delete removes the category.
func (r *CategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteCategorySQL, id)
	if err != nil {
		return fmt.Errorf("deleting category %s: %w", id, err)
	}
	return nil
}

func scanCategory(row pgx.CollectableRow) (catalog.Category, error) {
	var (
		c           catalog.Category
		description *string
	)
	err := row.Scan(&c.ID, &c.Name, &description)
	if description != nil {
		c.Description = *description
	}
	return c, err
}
