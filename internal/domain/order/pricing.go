package order

import (
	"github.com/shopspring/decimal"

	"github.com/xenking/orders-service/internal/domain/coupon"
)

var hundred = decimal.NewFromInt(100)

// PricingConfig holds the shipping formula constants.
type PricingConfig struct {
	// ShippingBaseFee is charged on every order regardless of weight.
	ShippingBaseFee decimal.Decimal
	// ShippingWeightRate is charged per weight unit shipped.
	ShippingWeightRate decimal.Decimal
}

// DefaultPricingConfig returns the stock shipping constants.
func DefaultPricingConfig() PricingConfig {
	return PricingConfig{
		ShippingBaseFee:    decimal.NewFromInt(10),
		ShippingWeightRate: decimal.NewFromInt(2),
	}
}

// PricedItem is a line item as the pricing engine sees it: the captured
// unit price, the product weight (zero when unknown), and the quantity.
type PricedItem struct {
	UnitPrice decimal.Decimal
	Weight    decimal.Decimal
	Quantity  int
}

// Quote is the computed pricing breakdown of an order.
type Quote struct {
	Subtotal       decimal.Decimal
	ShippingCost   decimal.Decimal
	DiscountAmount decimal.Decimal
	TotalAmount    decimal.Decimal
}

// Pricer computes order amounts. It is pure: no store access, no side
// effects.
type Pricer struct {
	cfg PricingConfig
}

// NewPricer creates a Pricer with the given shipping constants.
func NewPricer(cfg PricingConfig) *Pricer {
	return &Pricer{cfg: cfg}
}

// Quote prices the given line items. The postal code is accepted for
// interface completeness but does not participate in the shipping formula,
// which is weight-based only. A coupon whose minimum purchase amount the
// subtotal does not reach is a hard failure, never a silent non-apply.
func (p *Pricer) Quote(items []PricedItem, postalCode string, c *coupon.Coupon) (Quote, error) {
	_ = postalCode

	subtotal := decimal.Zero
	weight := decimal.Zero
	for _, item := range items {
		qty := decimal.NewFromInt(int64(item.Quantity))
		subtotal = subtotal.Add(item.UnitPrice.Mul(qty))
		weight = weight.Add(item.Weight.Mul(qty))
	}

	shipping := p.cfg.ShippingBaseFee.Add(weight.Mul(p.cfg.ShippingWeightRate))

	discount, err := calcDiscount(c, subtotal)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		Subtotal:       subtotal,
		ShippingCost:   shipping,
		DiscountAmount: discount,
		TotalAmount:    subtotal.Add(shipping).Sub(discount),
	}, nil
}

// calcDiscount resolves the coupon discount against the subtotal. The
// percentage discount takes precedence when both discount fields are set;
// a fixed discount is not capped at the subtotal.
func calcDiscount(c *coupon.Coupon, subtotal decimal.Decimal) (decimal.Decimal, error) {
	if c == nil {
		return decimal.Zero, nil
	}

	if c.MinimumPurchaseAmount != nil && subtotal.LessThan(*c.MinimumPurchaseAmount) {
		return decimal.Zero, &coupon.InvalidError{Code: c.Code, Reason: coupon.ReasonBelowMinimum}
	}

	if c.DiscountPercentage != nil {
		return subtotal.Mul(*c.DiscountPercentage).Div(hundred).Round(2), nil
	}
	if c.DiscountFixed != nil {
		return *c.DiscountFixed, nil
	}
	return decimal.Zero, nil
}
