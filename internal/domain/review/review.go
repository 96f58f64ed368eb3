package review

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Review is a customer rating of a product, 1 to 5 stars with an optional
// comment.
type Review struct {
	ID        uuid.UUID
	ProductID uuid.UUID
	UserID    uuid.UUID
	Rating    int
	Comment   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NotFoundError indicates a referenced review does not exist.
type NotFoundError struct {
	ID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("review %s not found", e.ID)
}

// InvalidRatingError indicates a rating outside the 1..5 range.
type InvalidRatingError struct {
	Rating int
}

func (e *InvalidRatingError) Error() string {
	return fmt.Sprintf("rating must be between 1 and 5, got %d", e.Rating)
}

// CommentTooLongError indicates a comment over the length limit.
type CommentTooLongError struct {
	Length int
}

func (e *CommentTooLongError) Error() string {
	return fmt.Sprintf("comment must be at most %d characters, got %d", MaxCommentLength, e.Length)
}

// Repository defines persistence operations for reviews.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByProduct(ctx context.Context, productID uuid.UUID) ([]Review, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Review, error)
	Create(ctx context.Context, r *Review) error
	Update(ctx context.Context, r *Review) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// TxRunner executes fn inside a single storage transaction. All repository
// calls made with the callback context join that transaction; a non-nil
// error from fn rolls everything back.
type TxRunner interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
