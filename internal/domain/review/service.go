package review

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/user"
)

// MaxCommentLength bounds review comments.
const MaxCommentLength = 1000

// CreateRequest holds the input for posting a review.
type CreateRequest struct {
	ProductID uuid.UUID
	Rating    int
	Comment   string
}

// UpdateRequest is a partial update: only non-nil fields are applied.
type UpdateRequest struct {
	Rating  *int
	Comment *string
}

// Service implements review management. Every review mutation recomputes
// the product's aggregate rating in the same transaction, so the rating
// always reflects the current review set.
type Service struct {
	reviews  Repository
	products catalog.ProductRepository
	users    user.Repository
	tx       TxRunner
}

// NewService creates a review Service.
func NewService(reviews Repository, products catalog.ProductRepository, users user.Repository, tx TxRunner) *Service {
	return &Service{reviews: reviews, products: products, users: users, tx: tx}
}

// Create posts a review by an existing user for an existing product and
// refreshes the product's average rating.
func (s *Service) Create(ctx context.Context, userID uuid.UUID, req CreateRequest) (*Review, error) {
	if err := validate(req.Rating, req.Comment); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	if _, err := s.products.GetByID(ctx, req.ProductID); err != nil {
		return nil, err
	}

	r := &Review{
		ID:        uuid.New(),
		ProductID: req.ProductID,
		UserID:    userID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	}

	err := s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.reviews.Create(ctx, r); err != nil {
			return errors.Wrap(err, "create review")
		}
		return s.RecomputeProductRating(ctx, req.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a single review by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Review, error) {
	return s.reviews.GetByID(ctx, id)
}

// ListByProduct returns the product's reviews; the product must exist.
func (s *Service) ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error) {
	if _, err := s.products.GetByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// ListByUser returns the user's reviews; the user must exist.
func (s *Service) ListByUser(ctx context.Context, userID uuid.UUID) ([]Review, error) {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "check user")
	}
	if !ok {
		return nil, &user.NotFoundError{ID: userID}
	}
	return s.reviews.ListByUser(ctx, userID)
}

// Update applies the present fields of req to the review and refreshes
// the product's average rating.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Review, error) {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Rating != nil {
		r.Rating = *req.Rating
	}
	if req.Comment != nil {
		r.Comment = *req.Comment
	}
	if err := validate(r.Rating, r.Comment); err != nil {
		return nil, err
	}

	err = s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.reviews.Update(ctx, r); err != nil {
			return errors.Wrap(err, "update review")
		}
		return s.RecomputeProductRating(ctx, r.ProductID)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes the review and refreshes the product's average rating.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}

	return s.tx.InTx(ctx, func(ctx context.Context) error {
		if err := s.reviews.Delete(ctx, id); err != nil {
			return errors.Wrap(err, "delete review")
		}
		return s.RecomputeProductRating(ctx, r.ProductID)
	})
}

// RecomputeProductRating reloads the product's current review set and
// persists the arithmetic mean of the ratings, rounded half-up to two
// decimal places. A product with no reviews goes back to unrated. The
// recomputation depends only on the current review set, so it is
// idempotent and order independent.
func (s *Service) RecomputeProductRating(ctx context.Context, productID uuid.UUID) error {
	reviews, err := s.reviews.ListByProduct(ctx, productID)
	if err != nil {
		return errors.Wrap(err, "load reviews")
	}

	if len(reviews) == 0 {
		return s.products.SetAverageRating(ctx, productID, nil)
	}

	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	avg := decimal.NewFromInt(int64(sum)).
		Div(decimal.NewFromInt(int64(len(reviews)))).
		Round(2)

	return s.products.SetAverageRating(ctx, productID, &avg)
}

func validate(rating int, comment string) error {
	if rating < 1 || rating > 5 {
		return &InvalidRatingError{Rating: rating}
	}
	if len(comment) > MaxCommentLength {
		return &CommentTooLongError{Length: len(comment)}
	}
	return nil
}
