package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/orders-service/internal/domain/coupon"
)

type couponResponse struct {
	ID                    uuid.UUID `json:"id"`
	Code                  string    `json:"code"`
	DiscountPercentage    *float64  `json:"discountPercentage"`
	DiscountFixed         *float64  `json:"discountFixed"`
	ValidFrom             time.Time `json:"validFrom"`
	ValidUntil            time.Time `json:"validUntil"`
	MaxUsesPerCustomer    *int      `json:"maxUsesPerCustomer"`
	MaxTotalUses          *int      `json:"maxTotalUses"`
	CurrentUses           int       `json:"currentUses"`
	Active                bool      `json:"active"`
	MinimumPurchaseAmount *float64  `json:"minimumPurchaseAmount"`
}

func toCouponResponse(c *coupon.Coupon) couponResponse {
	return couponResponse{
		ID:                    c.ID,
		Code:                  c.Code,
		DiscountPercentage:    floatPtr(c.DiscountPercentage),
		DiscountFixed:         floatPtr(c.DiscountFixed),
		ValidFrom:             c.ValidFrom,
		ValidUntil:            c.ValidUntil,
		MaxUsesPerCustomer:    c.MaxUsesPerCustomer,
		MaxTotalUses:          c.MaxTotalUses,
		CurrentUses:           c.CurrentUses,
		Active:                c.Active,
		MinimumPurchaseAmount: floatPtr(c.MinimumPurchaseAmount),
	}
}

type createCouponRequest struct {
	Code                  string    `json:"code"`
	DiscountPercentage    *float64  `json:"discountPercentage"`
	DiscountFixed         *float64  `json:"discountFixed"`
	ValidFrom             time.Time `json:"validFrom"`
	ValidUntil            time.Time `json:"validUntil"`
	MaxUsesPerCustomer    *int      `json:"maxUsesPerCustomer"`
	MaxTotalUses          *int      `json:"maxTotalUses"`
	MinimumPurchaseAmount *float64  `json:"minimumPurchaseAmount"`
}

func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	var req createCouponRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		h.badRequest(w, "code is required")
		return
	}
	if req.DiscountPercentage == nil && req.DiscountFixed == nil {
		h.badRequest(w, "either discountPercentage or discountFixed is required")
		return
	}
	if !req.ValidUntil.After(req.ValidFrom) {
		h.badRequest(w, "validUntil must be after validFrom")
		return
	}

	c, err := h.coupons.Create(r.Context(), coupon.CreateRequest{
		Code:                  req.Code,
		DiscountPercentage:    decimalPtr(req.DiscountPercentage),
		DiscountFixed:         decimalPtr(req.DiscountFixed),
		ValidFrom:             req.ValidFrom,
		ValidUntil:            req.ValidUntil,
		MaxUsesPerCustomer:    req.MaxUsesPerCustomer,
		MaxTotalUses:          req.MaxTotalUses,
		MinimumPurchaseAmount: decimalPtr(req.MinimumPurchaseAmount),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCouponResponse(c))
}

// getCoupons lists all coupons, or looks one up by the code query
// parameter when present.
func (h *Handler) getCoupons(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("code"); code != "" {
		c, err := h.coupons.GetByCode(r.Context(), code)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, []couponResponse{toCouponResponse(c)})
		return
	}

	coupons, err := h.coupons.List(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]couponResponse, len(coupons))
	for i := range coupons {
		resp[i] = toCouponResponse(&coupons[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.coupons.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}

type updateCouponRequest struct {
	DiscountPercentage    *float64   `json:"discountPercentage"`
	DiscountFixed         *float64   `json:"discountFixed"`
	ValidFrom             *time.Time `json:"validFrom"`
	ValidUntil            *time.Time `json:"validUntil"`
	MaxUsesPerCustomer    *int       `json:"maxUsesPerCustomer"`
	MaxTotalUses          *int       `json:"maxTotalUses"`
	Active                *bool      `json:"active"`
	MinimumPurchaseAmount *float64   `json:"minimumPurchaseAmount"`
}

func (h *Handler) updateCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateCouponRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	c, err := h.coupons.Update(r.Context(), id, coupon.UpdateRequest{
		DiscountPercentage:    decimalPtr(req.DiscountPercentage),
		DiscountFixed:         decimalPtr(req.DiscountFixed),
		ValidFrom:             req.ValidFrom,
		ValidUntil:            req.ValidUntil,
		MaxUsesPerCustomer:    req.MaxUsesPerCustomer,
		MaxTotalUses:          req.MaxTotalUses,
		Active:                req.Active,
		MinimumPurchaseAmount: decimalPtr(req.MinimumPurchaseAmount),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCouponResponse(c))
}

func (h *Handler) deleteCoupon(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.coupons.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
