package coupon

import "time"

// Reasons reported by Validate through InvalidError.
const (
	ReasonInactive          = "coupon is not active"
	ReasonOutsideWindow     = "coupon is outside its validity window"
	ReasonUsageLimitReached = "coupon has reached its maximum total uses"
	ReasonBelowMinimum      = "order subtotal is below the coupon minimum purchase amount"
)

// Validate checks whether the coupon can be applied at the given instant.
// It is a pure predicate over the coupon's own state: active flag, the
// inclusive [ValidFrom, ValidUntil] window, and the total usage limit.
// The per-customer limit is intentionally not checked here.
func Validate(c *Coupon, now time.Time) error {
	if !c.Active {
		return &InvalidError{Code: c.Code, Reason: ReasonInactive}
	}
	if now.Before(c.ValidFrom) || now.After(c.ValidUntil) {
		return &InvalidError{Code: c.Code, Reason: ReasonOutsideWindow}
	}
	if c.MaxTotalUses != nil && c.CurrentUses >= *c.MaxTotalUses {
		return &InvalidError{Code: c.Code, Reason: ReasonUsageLimitReached}
	}
	return nil
}
