package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateCategoryRequest holds the input for creating a category.
type CreateCategoryRequest struct {
	Name        string
	Description string
}

// UpdateCategoryRequest is a partial update: only non-nil fields are applied.
type UpdateCategoryRequest struct {
	Name        *string
	Description *string
}

// CreateProductRequest holds the input for creating a product.
type CreateProductRequest struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	StockQuantity int
	Weight        decimal.Decimal
	CategoryID    uuid.UUID
}

// UpdateProductRequest is a partial update: only non-nil fields are applied.
type UpdateProductRequest struct {
	Name          *string
	Description   *string
	Price         *decimal.Decimal
	StockQuantity *int
	Weight        *decimal.Decimal
	Active        *bool
	CategoryID    *uuid.UUID
}

// Service implements category and product management. Name-uniqueness
// pre-checks here are fast fails; the storage unique constraints are the
// real guarantee.
type Service struct {
	categories CategoryRepository
	products   ProductRepository
}

// NewService creates a catalog Service.
func NewService(categories CategoryRepository, products ProductRepository) *Service {
	return &Service{categories: categories, products: products}
}

// CreateCategory creates a category with a unique name.
func (s *Service) CreateCategory(ctx context.Context, req CreateCategoryRequest) (*Category, error) {
	if err := s.checkCategoryName(ctx, req.Name); err != nil {
		return nil, err
	}

	c := &Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create category")
	}
	return c, nil
}

// GetCategory returns a single category by id.
func (s *Service) GetCategory(ctx context.Context, id uuid.UUID) (*Category, error) {
	return s.categories.GetByID(ctx, id)
}

// ListCategories returns all categories.
func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.categories.List(ctx)
}

// UpdateCategory applies the present fields of req to the category.
// Renaming re-checks name uniqueness.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, req UpdateCategoryRequest) (*Category, error) {
	c, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != c.Name {
		if err := s.checkCategoryName(ctx, *req.Name); err != nil {
			return nil, err
		}
		c.Name = *req.Name
	}
	if req.Description != nil {
		c.Description = *req.Description
	}

	if err := s.categories.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update category")
	}
	return c, nil
}

// DeleteCategory removes the category.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	ok, err := s.categories.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "check category")
	}
	if !ok {
		return &CategoryNotFoundError{ID: id}
	}
	return s.categories.Delete(ctx, id)
}

// CreateProduct creates an active product under an existing category.
func (s *Service) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	if err := s.checkProductName(ctx, req.Name); err != nil {
		return nil, err
	}
	if _, err := s.categories.GetByID(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	p := &Product{
		ID:            uuid.New(),
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		Weight:        req.Weight,
		Active:        true,
		CategoryID:    req.CategoryID,
	}
	if err := s.products.Create(ctx, p); err != nil {
		return nil, errors.Wrap(err, "create product")
	}
	return p, nil
}

// GetProduct returns a single product by id.
func (s *Service) GetProduct(ctx context.Context, id uuid.UUID) (*Product, error) {
	return s.products.GetByID(ctx, id)
}

// ListProducts returns all products.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.products.List(ctx)
}

// ListActiveProducts returns only products available for ordering.
func (s *Service) ListActiveProducts(ctx context.Context) ([]Product, error) {
	return s.products.ListActive(ctx)
}

// ListProductsByCategory returns the category's products; the category
// must exist.
func (s *Service) ListProductsByCategory(ctx context.Context, categoryID uuid.UUID) ([]Product, error) {
	ok, err := s.categories.Exists(ctx, categoryID)
	if err != nil {
		return nil, errors.Wrap(err, "check category")
	}
	if !ok {
		return nil, &CategoryNotFoundError{ID: categoryID}
	}
	return s.products.ListByCategory(ctx, categoryID)
}

// UpdateProduct applies the present fields of req to the product. The
// average rating is owned by the review service and cannot be set here.
func (s *Service) UpdateProduct(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*Product, error) {
	p, err := s.products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != p.Name {
		if err := s.checkProductName(ctx, *req.Name); err != nil {
			return nil, err
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.Price != nil {
		p.Price = *req.Price
	}
	if req.StockQuantity != nil {
		p.StockQuantity = *req.StockQuantity
	}
	if req.Weight != nil {
		p.Weight = *req.Weight
	}
	if req.Active != nil {
		p.Active = *req.Active
	}
	if req.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		p.CategoryID = *req.CategoryID
	}

	if err := s.products.Update(ctx, p); err != nil {
		return nil, errors.Wrap(err, "update product")
	}
	return p, nil
}

// DeleteProduct removes the product.
func (s *Service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.products.GetByID(ctx, id); err != nil {
		return err
	}
	return s.products.Delete(ctx, id)
}

func (s *Service) checkCategoryName(ctx context.Context, name string) error {
	existing, err := s.categories.GetByName(ctx, name)
	if err != nil {
		return errors.Wrap(err, "check category name")
	}
	if existing != nil {
		return &CategoryAlreadyExistsError{Name: name}
	}
	return nil
}

func (s *Service) checkProductName(ctx context.Context, name string) error {
	existing, err := s.products.GetByName(ctx, name)
	if err != nil {
		return errors.Wrap(err, "check product name")
	}
	if existing != nil {
		return &AlreadyExistsError{Name: name}
	}
	return nil
}
