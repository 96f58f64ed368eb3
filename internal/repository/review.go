package repository

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/xenking/orders-service/internal/domain/review"
)

const (
	reviewColumns = `id, product_id, user_id, rating, comment, created_at, updated_at`

	getReviewByIDSQL       = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`
	listReviewsByProductSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE product_id = $1 ORDER BY created_at`
	listReviewsByUserSQL = `SELECT ` + reviewColumns + ` FROM reviews
		WHERE user_id = $1 ORDER BY created_at`

	createReviewSQL = `INSERT INTO reviews (id, product_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4, $5)`

	updateReviewSQL = `UPDATE reviews SET rating = $2, comment = $3, updated_at = now()
		WHERE id = $1`

	deleteReviewSQL = `DELETE FROM reviews WHERE id = $1`
)

var _ review.Repository = (*ReviewRepository)(nil)

// ReviewRepository implements review.Repository backed by PostgreSQL.
type ReviewRepository struct {
	db *DB
}

// NewReviewRepository returns a ReviewRepository that uses the given DB.
func NewReviewRepository(db *DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// GetByID returns a single review by id.
func (r *ReviewRepository) GetByID(ctx context.Context, id uuid.UUID) (*review.Review, error) {
	rows, err := r.db.conn(ctx).Query(ctx, getReviewByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting review %s: %w", id, err)
	}

	rev, err := pgx.CollectExactlyOneRow(rows, scanReview)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &review.NotFoundError{ID: id}
		}
		return nil, fmt.Errorf("getting review %s: %w", id, err)
	}
	return &rev, nil
}

// ListByProduct returns the product's reviews ordered by creation time.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uuid.UUID) ([]review.Review, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listReviewsByProductSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for product %s: %w", productID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// ListByUser returns the user's reviews ordered by creation time.
func (r *ReviewRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]review.Review, error) {
	rows, err := r.db.conn(ctx).Query(ctx, listReviewsByUserSQL, userID)
	if err != nil {
		return nil, fmt.Errorf("listing reviews for user %s: %w", userID, err)
	}
	return pgx.CollectRows(rows, scanReview)
}

// Create persists a new review.
func (r *ReviewRepository) Create(ctx context.Context, rev *review.Review) error {
	_, err := r.db.conn(ctx).Exec(ctx, createReviewSQL,
		rev.ID, rev.ProductID, rev.UserID, rev.Rating, nullIfEmpty(rev.Comment),
	)
	if err != nil {
		return fmt.Errorf("creating review %s: %w", rev.ID, err)
	}
	return nil
}

// Update persists the review's mutable fields and refreshes updated_at.
func (r *ReviewRepository) Update(ctx context.Context, rev *review.Review) error {
	_, err := r.db.conn(ctx).Exec(ctx, updateReviewSQL,
		rev.ID, rev.Rating, nullIfEmpty(rev.Comment),
	)
	if err != nil {
		return fmt.Errorf("updating review %s: %w", rev.ID, err)
	}
	return nil
}

// Delete removes the review.
func (r *ReviewRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.conn(ctx).Exec(ctx, deleteReviewSQL, id)
	if err != nil {
		return fmt.Errorf("deleting review %s: %w", id, err)
	}
	return nil
}

func scanReview(row pgx.CollectableRow) (review.Review, error) {
	var (
		rev     review.Review
		comment *string
	)
	err := row.Scan(
		&rev.ID, &rev.ProductID, &rev.UserID, &rev.Rating, &comment,
		&rev.CreatedAt, &rev.UpdatedAt,
	)
	if comment != nil {
		rev.Comment = *comment
	}
	return rev, err
}
