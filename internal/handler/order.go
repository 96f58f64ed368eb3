package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/xenking/orders-service/internal/domain/order"
)

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
	UnitPrice float64   `json:"unitPrice"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	CreatedAt      time.Time           `json:"createdAt"`
	Status         string              `json:"status"`
	ClientID       uuid.UUID           `json:"clientId"`
	AddressID      uuid.UUID           `json:"addressId"`
	CouponID       *uuid.UUID          `json:"couponId"`
	Items          []orderItemResponse `json:"items"`
	TotalAmount    float64             `json:"totalAmount"`
	ShippingCost   float64             `json:"shippingCost"`
	DiscountAmount float64             `json:"discountAmount"`
}

func toOrderResponse(o *order.Order) orderResponse {
	items := make([]orderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice.InexactFloat64(),
		}
	}
	return orderResponse{
		ID:             o.ID,
		CreatedAt:      o.CreatedAt,
		Status:         string(o.Status),
		ClientID:       o.ClientID,
		AddressID:      o.AddressID,
		CouponID:       o.CouponID,
		Items:          items,
		TotalAmount:    o.TotalAmount.InexactFloat64(),
		ShippingCost:   o.ShippingCost.InexactFloat64(),
		DiscountAmount: o.DiscountAmount.InexactFloat64(),
	}
}

type createOrderItemRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Quantity  int       `json:"quantity"`
}

type createOrderRequest struct {
	ClientID   uuid.UUID                `json:"clientId"`
	AddressID  uuid.UUID                `json:"addressId"`
	CouponCode string                   `json:"couponCode"`
	Items      []createOrderItemRequest `json:"items"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.ClientID == uuid.Nil || req.AddressID == uuid.Nil {
		h.badRequest(w, "clientId and addressId are required")
		return
	}

	items := make([]order.CreateItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = order.CreateItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}

	o, err := h.orders.Create(r.Context(), order.CreateRequest{
		ClientID:   req.ClientID,
		AddressID:  req.AddressID,
		CouponCode: req.CouponCode,
		Items:      items,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.metrics.ordersPlaced.Add(r.Context(), 1,
		metric.WithAttributes(attribute.Bool("coupon", o.CouponID != nil)))
	writeJSON(w, http.StatusCreated, toOrderResponse(o))
}

// getOrders filters by id, clientId or status query parameters, honored in
// that priority order; with none set it returns all orders.
func (h *Handler) getOrders(w http.ResponseWriter, r *http.Request) {
	var f order.Filter
	q := r.URL.Query()

	if raw := q.Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			h.badRequest(w, "invalid id: must be a UUID")
			return
		}
		f.ID = &id
	}
	if raw := q.Get("clientId"); raw != "" {
		clientID, err := uuid.Parse(raw)
		if err != nil {
			h.badRequest(w, "invalid clientId: must be a UUID")
			return
		}
		f.ClientID = &clientID
	}
	if raw := q.Get("status"); raw != "" {
		status, err := order.ParseStatus(raw)
		if err != nil {
			h.badRequest(w, err.Error())
			return
		}
		f.Status = &status
	}

	orders, err := h.orders.Get(r.Context(), f)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]orderResponse, len(orders))
	for i := range orders {
		resp[i] = toOrderResponse(&orders[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	orders, err := h.orders.Get(r.Context(), order.Filter{ID: &id})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(&orders[0]))
}

type updateOrderStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateOrderStatusRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	status, err := order.ParseStatus(req.Status)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, status)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.orders.Cancel(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.metrics.ordersCancelled.Add(r.Context(), 1)
	w.WriteHeader(http.StatusNoContent)
}
