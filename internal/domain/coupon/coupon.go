package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Coupon is a discount voucher. Exactly one of DiscountPercentage or
// DiscountFixed is normally set; when both are, pricing gives the
// percentage precedence. MaxUsesPerCustomer is part of the model but is
// not enforced by any validation yet.
type Coupon struct {
	ID                    uuid.UUID
	Code                  string
	DiscountPercentage    *decimal.Decimal
	DiscountFixed         *decimal.Decimal
	ValidFrom             time.Time
	ValidUntil            time.Time
	MaxUsesPerCustomer    *int
	MaxTotalUses          *int
	CurrentUses           int
	Active                bool
	MinimumPurchaseAmount *decimal.Decimal
}

// NotFoundError indicates a referenced coupon does not exist.
type NotFoundError struct {
	ID   uuid.UUID
	Code string
}

func (e *NotFoundError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("coupon %q not found", e.Code)
	}
	return fmt.Sprintf("coupon %s not found", e.ID)
}

// AlreadyExistsError indicates the coupon code is already taken.
type AlreadyExistsError struct {
	Code string
}

func (e *AlreadyExistsError) Error() string {
	return fmt.Sprintf("coupon with code %q already exists", e.Code)
}

// InvalidError reports a coupon that cannot be applied, carrying the
// reason a caller can show to the customer.
type InvalidError struct {
	Code   string
	Reason string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("invalid coupon %q: %s", e.Code, e.Reason)
}

// Repository defines persistence operations for coupons.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Coupon, error)
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	// GetByCodeForUpdate loads the coupon under a row lock so usage
	// counter mutations from concurrent transactions serialize.
	GetByCodeForUpdate(ctx context.Context, code string) (*Coupon, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context) ([]Coupon, error)
	Create(ctx context.Context, c *Coupon) error
	Update(ctx context.Context, c *Coupon) error
	Delete(ctx context.Context, id uuid.UUID) error
	// IncrementUses and DecrementUses adjust the usage counter in place.
	IncrementUses(ctx context.Context, id uuid.UUID) error
	DecrementUses(ctx context.Context, id uuid.UUID) error
}
