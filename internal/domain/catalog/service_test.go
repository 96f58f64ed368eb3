package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Fakes ---

type fakeCategoryRepo struct {
	byID map[uuid.UUID]*Category
}

func (f *fakeCategoryRepo) GetByID(_ context.Context, id uuid.UUID) (*Category, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, &CategoryNotFoundError{ID: id}
	}
	cc := *c
	return &cc, nil
}

func (f *fakeCategoryRepo) GetByName(_ context.Context, name string) (*Category, error) {
	for _, c := range f.byID {
		if c.Name == name {
			cc := *c
			return &cc, nil
		}
	}
	return nil, nil
}

func (f *fakeCategoryRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeCategoryRepo) List(_ context.Context) ([]Category, error) {
	var out []Category
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCategoryRepo) Create(_ context.Context, c *Category) error {
	cc := *c
	f.byID[c.ID] = &cc
	return nil
}

func (f *fakeCategoryRepo) Update(_ context.Context, c *Category) error {
	if _, ok := f.byID[c.ID]; !ok {
		return &CategoryNotFoundError{ID: c.ID}
	}
	cc := *c
	f.byID[c.ID] = &cc
	return nil
}

func (f *fakeCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeProductRepo struct {
	byID map[uuid.UUID]*Product
}

func (f *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*Product, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProductRepo) GetByName(_ context.Context, name string) (*Product, error) {
	for _, p := range f.byID {
		if p.Name == name {
			c := *p
			return &c, nil
		}
	}
	return nil, nil
}

func (f *fakeProductRepo) List(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (f *fakeProductRepo) ListActive(_ context.Context) ([]Product, error) {
	var out []Product
	for _, p := range f.byID {
		if p.Active {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]Product, error) {
	var out []Product
	for _, p := range f.byID {
		if p.CategoryID == categoryID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (f *fakeProductRepo) Create(_ context.Context, p *Product) error {
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) Update(_ context.Context, p *Product) error {
	if _, ok := f.byID[p.ID]; !ok {
		return &NotFoundError{ID: p.ID}
	}
	c := *p
	f.byID[p.ID] = &c
	return nil
}

func (f *fakeProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

func (f *fakeProductRepo) SetAverageRating(_ context.Context, id uuid.UUID, rating *decimal.Decimal) error {
	p, ok := f.byID[id]
	if !ok {
		return &NotFoundError{ID: id}
	}
	p.AverageRating = rating
	return nil
}

func newTestService() (*Service, *fakeCategoryRepo, *fakeProductRepo) {
	categories := &fakeCategoryRepo{byID: make(map[uuid.UUID]*Category)}
	products := &fakeProductRepo{byID: make(map[uuid.UUID]*Product)}
	return NewService(categories, products), categories, products
}

func mustCategory(t *testing.T, svc *Service, name string) *Category {
	t.Helper()
	c, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: name})
	require.NoError(t, err)
	return c
}

// --- Categories ---

func TestCreateCategory_DuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	mustCategory(t, svc, "Books")

	_, err := svc.CreateCategory(context.Background(), CreateCategoryRequest{Name: "Books"})

	var existsErr *CategoryAlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
	assert.Equal(t, "Books", existsErr.Name)
}

func TestUpdateCategory_RenameChecked(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")
	mustCategory(t, svc, "Games")

	taken := "Games"
	_, err := svc.UpdateCategory(context.Background(), books.ID, UpdateCategoryRequest{Name: &taken})

	var existsErr *CategoryAlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
}

func TestUpdateCategory_SameNameIsNoop(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")

	same := "Books"
	desc := "Printed matter"
	updated, err := svc.UpdateCategory(context.Background(), books.ID, UpdateCategoryRequest{
		Name:        &same,
		Description: &desc,
	})
	require.NoError(t, err)
	assert.Equal(t, "Books", updated.Name)
	assert.Equal(t, "Printed matter", updated.Description)
}

func TestDeleteCategory_Missing(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.DeleteCategory(context.Background(), uuid.New())

	var nfErr *CategoryNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

// --- Products ---

func TestCreateProduct(t *testing.T) {
	svc, _, products := newTestService()
	books := mustCategory(t, svc, "Books")

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:          "The Go Programming Language",
		Price:         decimal.NewFromInt(45),
		StockQuantity: 10,
		Weight:        decimal.RequireFromString("0.8"),
		CategoryID:    books.ID,
	})
	require.NoError(t, err)

	assert.True(t, p.Active, "new products start active")
	assert.Nil(t, p.AverageRating, "new products start unrated")
	assert.Contains(t, products.byID, p.ID)
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")

	req := CreateProductRequest{
		Name:       "Widget",
		Price:      decimal.NewFromInt(10),
		CategoryID: books.ID,
	}
	_, err := svc.CreateProduct(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateProduct(context.Background(), req)

	var existsErr *AlreadyExistsError
	require.ErrorAs(t, err, &existsErr)
}

func TestCreateProduct_MissingCategory(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:       "Widget",
		Price:      decimal.NewFromInt(10),
		CategoryID: uuid.New(),
	})

	var nfErr *CategoryNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUpdateProduct_Partial(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:          "Widget",
		Price:         decimal.NewFromInt(10),
		StockQuantity: 5,
		CategoryID:    books.ID,
	})
	require.NoError(t, err)

	stock := 20
	updated, err := svc.UpdateProduct(context.Background(), p.ID, UpdateProductRequest{
		StockQuantity: &stock,
	})
	require.NoError(t, err)

	assert.Equal(t, 20, updated.StockQuantity)
	assert.Equal(t, "Widget", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(10)))
}

func TestUpdateProduct_MoveToMissingCategory(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:       "Widget",
		Price:      decimal.NewFromInt(10),
		CategoryID: books.ID,
	})
	require.NoError(t, err)

	missing := uuid.New()
	_, err = svc.UpdateProduct(context.Background(), p.ID, UpdateProductRequest{
		CategoryID: &missing,
	})

	var nfErr *CategoryNotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestListActiveProducts(t *testing.T) {
	svc, _, _ := newTestService()
	books := mustCategory(t, svc, "Books")

	active, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:       "Active",
		Price:      decimal.NewFromInt(10),
		CategoryID: books.ID,
	})
	require.NoError(t, err)

	retired, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:       "Retired",
		Price:      decimal.NewFromInt(10),
		CategoryID: books.ID,
	})
	require.NoError(t, err)

	off := false
	_, err = svc.UpdateProduct(context.Background(), retired.ID, UpdateProductRequest{Active: &off})
	require.NoError(t, err)

	got, err := svc.ListActiveProducts(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestListProductsByCategory_MissingCategory(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.ListProductsByCategory(context.Background(), uuid.New())

	var nfErr *CategoryNotFoundError
	require.ErrorAs(t, err, &nfErr)
}
