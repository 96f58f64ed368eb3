package coupon

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest holds the input for creating a coupon.
type CreateRequest struct {
	Code                  string
	DiscountPercentage    *decimal.Decimal
	DiscountFixed         *decimal.Decimal
	ValidFrom             time.Time
	ValidUntil            time.Time
	MaxUsesPerCustomer    *int
	MaxTotalUses          *int
	MinimumPurchaseAmount *decimal.Decimal
}

// UpdateRequest is a partial update: only non-nil fields are applied.
// The code itself is immutable once created.
type UpdateRequest struct {
	DiscountPercentage    *decimal.Decimal
	DiscountFixed         *decimal.Decimal
	ValidFrom             *time.Time
	ValidUntil            *time.Time
	MaxUsesPerCustomer    *int
	MaxTotalUses          *int
	Active                *bool
	MinimumPurchaseAmount *decimal.Decimal
}

// Service implements coupon management.
type Service struct {
	coupons Repository
}

// NewService creates a coupon Service.
func NewService(coupons Repository) *Service {
	return &Service{coupons: coupons}
}

// Create registers a new active coupon with a zero usage counter. The code
// uniqueness pre-check is a fast fail; the storage unique constraint is
// the real guarantee.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Coupon, error) {
	existing, err := s.coupons.GetByCode(ctx, req.Code)
	if err != nil {
		var nf *NotFoundError
		if !errors.As(err, &nf) {
			return nil, errors.Wrap(err, "check code")
		}
	}
	if existing != nil {
		return nil, &AlreadyExistsError{Code: req.Code}
	}

	c := &Coupon{
		ID:                    uuid.New(),
		Code:                  req.Code,
		DiscountPercentage:    req.DiscountPercentage,
		DiscountFixed:         req.DiscountFixed,
		ValidFrom:             req.ValidFrom,
		ValidUntil:            req.ValidUntil,
		MaxUsesPerCustomer:    req.MaxUsesPerCustomer,
		MaxTotalUses:          req.MaxTotalUses,
		CurrentUses:           0,
		Active:                true,
		MinimumPurchaseAmount: req.MinimumPurchaseAmount,
	}
	if err := s.coupons.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create coupon")
	}
	return c, nil
}

// Get returns a single coupon by id.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Coupon, error) {
	return s.coupons.GetByID(ctx, id)
}

// GetByCode returns a single coupon by its code.
func (s *Service) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	return s.coupons.GetByCode(ctx, code)
}

// List returns all coupons.
func (s *Service) List(ctx context.Context) ([]Coupon, error) {
	return s.coupons.List(ctx)
}

// Update applies the present fields of req to the coupon.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*Coupon, error) {
	c, err := s.coupons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.DiscountPercentage != nil {
		c.DiscountPercentage = req.DiscountPercentage
	}
	if req.DiscountFixed != nil {
		c.DiscountFixed = req.DiscountFixed
	}
	if req.ValidFrom != nil {
		c.ValidFrom = *req.ValidFrom
	}
	if req.ValidUntil != nil {
		c.ValidUntil = *req.ValidUntil
	}
	if req.MaxUsesPerCustomer != nil {
		c.MaxUsesPerCustomer = req.MaxUsesPerCustomer
	}
	if req.MaxTotalUses != nil {
		c.MaxTotalUses = req.MaxTotalUses
	}
	if req.Active != nil {
		c.Active = *req.Active
	}
	if req.MinimumPurchaseAmount != nil {
		c.MinimumPurchaseAmount = req.MinimumPurchaseAmount
	}

	if err := s.coupons.Update(ctx, c); err != nil {
		return nil, errors.Wrap(err, "update coupon")
	}
	return c, nil
}

// Delete removes the coupon.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ok, err := s.coupons.Exists(ctx, id)
	if err != nil {
		return errors.Wrap(err, "check coupon")
	}
	if !ok {
		return &NotFoundError{ID: id}
	}
	return s.coupons.Delete(ctx, id)
}
