// Package catalog holds the product catalog: categories and the products
// that belong to them.
package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups related products. Names are unique.
type Category struct {
	ID          uuid.UUID
	Name        string
	Description string
}

// Product is a catalog item available for purchase. Weight is zero when
// unknown. AverageRating is nil until the product has at least one review;
// it is written only by the review service.
type Product struct {
	ID            uuid.UUID
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Weight        decimal.Decimal
	AverageRating *decimal.Decimal
	Active        bool
	CategoryID    uuid.UUID
}

// NotFoundError indicates a referenced product does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("product %s not found", e.ID)
}

// AlreadyExistsError indicates the product name is already taken.
type AlreadyExistsError struct {
	Name string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("product with name %q already exists", e.Name)
}

// CategoryNotFoundError indicates a referenced category does not exist.
type CategoryNotFoundError struct {
	ID uuid.UUID
}

func (e *CategoryNotFoundError) Error() string {
	return fmt.Sprintf("category %s not found", e.ID)
}

// CategoryAlreadyExistsError indicates the category name is already taken.
type CategoryAlreadyExistsError struct {
	Name string
}

func (e *CategoryAlreadyExistsError) Error() string {
	return fmt.Sprintf("category with name %q already exists", e.Name)
}

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)
	// GetForUpdate loads the product under a row lock so stock mutations
	// from concurrent transactions serialize per product.
	GetForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)
	// GetByName returns (nil, nil) when no product has the name.
	GetByName(ctx context.Context, name string) (*Product, error)
	List(ctx context.Context) ([]Product, error)
	ListActive(ctx context.Context) ([]Product, error)
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// SetAverageRating persists the recomputed aggregate rating; nil clears it.
	SetAverageRating(ctx context.Context, id uuid.UUID, rating *decimal.Decimal) error
}

// CategoryRepository defines persistence operations for categories.
type CategoryRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Category, error)
	// GetByName returns (nil, nil) when no category has the name.
	GetByName(ctx context.Context, name string) (*Category, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]Category, error)
	Create(ctx context.Context, c *Category) error
	Update(ctx context.Context, c *Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}
