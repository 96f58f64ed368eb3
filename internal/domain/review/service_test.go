package review

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/user"
)

// --- Fakes ---

type fakeReviewRepo struct {
	byID map[uuid.UUID]*Review
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*Review, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	c := *r
	return &c, nil
}

func (f *fakeReviewRepo) ListByProduct(_ context.Context, productID uuid.UUID) ([]Review, error) {
	var out []Review
	for _, r := range f.byID {
		if r.ProductID == productID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]Review, error) {
	var out []Review
	for _, r := range f.byID {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) Create(_ context.Context, r *Review) error {
	c := *r
	f.byID[r.ID] = &c
	return nil
}

func (f *fakeReviewRepo) Update(_ context.Context, r *Review) error {
	if _, ok := f.byID[r.ID]; !ok {
		return &NotFoundError{ID: r.ID}
	}
	c := *r
	f.byID[r.ID] = &c
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.byID, id)
	return nil
}

type fakeUserRepo struct {
	byID map[uuid.UUID]*user.User
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, &user.NotFoundError{ID: id}
	}
	c := *u
	return &c, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	return nil, &user.NotFoundError{Email: email}
}

func (f *fakeUserRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := f.byID[id]
	return ok, nil
}

func (f *fakeUserRepo) List(_ context.Context) ([]user.User, error)  { return nil, nil }
func (f *fakeUserRepo) Create(_ context.Context, _ *user.User) error { return nil }
func (f *fakeUserRepo) Update(_ context.Context, _ *user.User) error { return nil }
func (f *fakeUserRepo) Delete(_ context.Context, _ uuid.UUID) error  { return nil }

type fakeProductRepo struct {
	byID map[uuid.UUID]*catalog.Product
}

func (f *fakeProductRepo) GetByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	p, ok := f.byID[id]
	if !ok {
		return nil, &catalog.NotFoundError{ID: id}
	}
	c := *p
	return &c, nil
}

func (f *fakeProductRepo) GetForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProductRepo) GetByName(_ context.Context, _ string) (*catalog.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) List(_ context.Context) ([]catalog.Product, error)       { return nil, nil }
func (f *fakeProductRepo) ListActive(_ context.Context) ([]catalog.Product, error) { return nil, nil }
func (f *fakeProductRepo) ListByCategory(_ context.Context, _ uuid.UUID) ([]catalog.Product, error) {
	return nil, nil
}
func (f *fakeProductRepo) Create(_ context.Context, _ *catalog.Product) error { return nil }
func (f *fakeProductRepo) Update(_ context.Context, _ *catalog.Product) error { return nil }
func (f *fakeProductRepo) Delete(_ context.Context, _ uuid.UUID) error        { return nil }

func (f *fakeProductRepo) SetAverageRating(_ context.Context, id uuid.UUID, rating *decimal.Decimal) error {
	p, ok := f.byID[id]
	if !ok {
		return &catalog.NotFoundError{ID: id}
	}
	p.AverageRating = rating
	return nil
}

type passthroughTx struct{}

func (passthroughTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Environment ---

type testEnv struct {
	svc       *Service
	products  *fakeProductRepo
	reviews   *fakeReviewRepo
	userID    uuid.UUID
	productID uuid.UUID
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		reviews:   &fakeReviewRepo{byID: make(map[uuid.UUID]*Review)},
		products:  &fakeProductRepo{byID: make(map[uuid.UUID]*catalog.Product)},
		userID:    uuid.New(),
		productID: uuid.New(),
	}
	users := &fakeUserRepo{byID: map[uuid.UUID]*user.User{
		env.userID: {ID: env.userID, Name: "Reviewer", Active: true},
	}}
	env.products.byID[env.productID] = &catalog.Product{
		ID:     env.productID,
		Name:   "Widget",
		Price:  decimal.NewFromInt(10),
		Active: true,
	}
	env.svc = NewService(env.reviews, env.products, users, passthroughTx{})
	return env
}

func (env *testEnv) rating(t *testing.T) *decimal.Decimal {
	t.Helper()
	return env.products.byID[env.productID].AverageRating
}

// --- Tests ---

func TestCreate_SetsAverageRating(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    5,
		Comment:   "great",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, r.Rating)

	require.NotNil(t, env.rating(t))
	assert.Equal(t, "5", env.rating(t).String())
}

func TestCreate_AveragesAndRounds(t *testing.T) {
	env := newTestEnv(t)

	for _, rating := range []int{5, 3} {
		_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
			ProductID: env.productID,
			Rating:    rating,
		})
		require.NoError(t, err)
	}

	require.NotNil(t, env.rating(t))
	assert.Equal(t, "4", env.rating(t).String())

	// (5+3+3)/3 = 3.666..., rounded half-up to 3.67.
	_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    3,
	})
	require.NoError(t, err)
	assert.Equal(t, "3.67", env.rating(t).String())
}

func TestCreate_InvalidRating(t *testing.T) {
	env := newTestEnv(t)

	for _, rating := range []int{0, 6, -1} {
		_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
			ProductID: env.productID,
			Rating:    rating,
		})

		var irErr *InvalidRatingError
		require.ErrorAs(t, err, &irErr)
		assert.Equal(t, rating, irErr.Rating)
	}
	assert.Nil(t, env.rating(t))
}

func TestCreate_CommentTooLong(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    4,
		Comment:   strings.Repeat("x", MaxCommentLength+1),
	})

	var ctlErr *CommentTooLongError
	require.ErrorAs(t, err, &ctlErr)
	assert.Equal(t, MaxCommentLength+1, ctlErr.Length)
}

func TestCreate_CommentAtLimit(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    4,
		Comment:   strings.Repeat("x", MaxCommentLength),
	})
	require.NoError(t, err)
}

func TestCreate_MissingUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), uuid.New(), CreateRequest{
		ProductID: env.productID,
		Rating:    4,
	})

	var nfErr *user.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestCreate_MissingProduct(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: uuid.New(),
		Rating:    4,
	})

	var nfErr *catalog.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestUpdate_RecomputesRating(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    5,
	})
	require.NoError(t, err)

	newRating := 1
	updated, err := env.svc.Update(context.Background(), r.ID, UpdateRequest{Rating: &newRating})
	require.NoError(t, err)
	assert.Equal(t, 1, updated.Rating)
	assert.Equal(t, "1", env.rating(t).String())
}

func TestUpdate_PartialKeepsOtherFields(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    5,
		Comment:   "original",
	})
	require.NoError(t, err)

	comment := "edited"
	updated, err := env.svc.Update(context.Background(), r.ID, UpdateRequest{Comment: &comment})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.Rating)
	assert.Equal(t, "edited", updated.Comment)
}

func TestDelete_LastReviewUnsetsRating(t *testing.T) {
	env := newTestEnv(t)

	r, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    5,
	})
	require.NoError(t, err)
	require.NotNil(t, env.rating(t))

	require.NoError(t, env.svc.Delete(context.Background(), r.ID))
	assert.Nil(t, env.rating(t))
}

func TestDelete_RemainingReviewsKeepRating(t *testing.T) {
	env := newTestEnv(t)

	first, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    5,
	})
	require.NoError(t, err)
	_, err = env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    3,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.Delete(context.Background(), first.ID))

	require.NotNil(t, env.rating(t))
	assert.Equal(t, "3", env.rating(t).String())
}

func TestListByUser_MissingUser(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.ListByUser(context.Background(), uuid.New())

	var nfErr *user.NotFoundError
	require.ErrorAs(t, err, &nfErr)
}

func TestRecompute_Idempotent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Create(context.Background(), env.userID, CreateRequest{
		ProductID: env.productID,
		Rating:    4,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.RecomputeProductRating(context.Background(), env.productID))
	require.NoError(t, env.svc.RecomputeProductRating(context.Background(), env.productID))
	assert.Equal(t, "4", env.rating(t).String())
}
