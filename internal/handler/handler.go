// Package handler exposes the domain services over HTTP. Handlers decode
// JSON requests, delegate to the services, and map domain errors to
// status codes; no business logic lives here.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/sdk/zctx"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/orders-service/internal/domain/catalog"
	"github.com/xenking/orders-service/internal/domain/coupon"
	"github.com/xenking/orders-service/internal/domain/order"
	"github.com/xenking/orders-service/internal/domain/review"
	"github.com/xenking/orders-service/internal/domain/user"
)

// Handler routes API requests to the domain services.
type Handler struct {
	users   *user.Service
	catalog *catalog.Service
	coupons *coupon.Service
	orders  *order.Service
	reviews *review.Service
	metrics *metrics
}

// NewHandler constructs a Handler with the required domain services.
func NewHandler(
	users *user.Service,
	cat *catalog.Service,
	coupons *coupon.Service,
	orders *order.Service,
	reviews *review.Service,
	mp metric.MeterProvider,
) (*Handler, error) {
	m, err := newMetrics(mp)
	if err != nil {
		return nil, err
	}
	return &Handler{
		users:   users,
		catalog: cat,
		coupons: coupons,
		orders:  orders,
		reviews: reviews,
		metrics: m,
	}, nil
}

// Routes returns a mux with all API routes registered.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /users", h.createUser)
	mux.HandleFunc("GET /users", h.getUsers)
	mux.HandleFunc("GET /users/{id}", h.getUser)
	mux.HandleFunc("PATCH /users/{id}", h.updateUser)
	mux.HandleFunc("DELETE /users/{id}", h.deleteUser)

	mux.HandleFunc("POST /users/{id}/addresses", h.createAddress)
	mux.HandleFunc("GET /users/{id}/addresses", h.listAddresses)
	mux.HandleFunc("GET /users/{id}/reviews", h.listUserReviews)
	mux.HandleFunc("GET /addresses/{id}", h.getAddress)
	mux.HandleFunc("PATCH /addresses/{id}", h.updateAddress)
	mux.HandleFunc("DELETE /addresses/{id}", h.deleteAddress)

	mux.HandleFunc("POST /categories", h.createCategory)
	mux.HandleFunc("GET /categories", h.listCategories)
	mux.HandleFunc("GET /categories/{id}", h.getCategory)
	mux.HandleFunc("PATCH /categories/{id}", h.updateCategory)
	mux.HandleFunc("DELETE /categories/{id}", h.deleteCategory)
	mux.HandleFunc("GET /categories/{id}/products", h.listCategoryProducts)

	mux.HandleFunc("POST /products", h.createProduct)
	mux.HandleFunc("GET /products", h.listProducts)
	mux.HandleFunc("GET /products/active", h.listActiveProducts)
	mux.HandleFunc("GET /products/{id}", h.getProduct)
	mux.HandleFunc("PATCH /products/{id}", h.updateProduct)
	mux.HandleFunc("DELETE /products/{id}", h.deleteProduct)
	mux.HandleFunc("GET /products/{id}/reviews", h.listProductReviews)

	mux.HandleFunc("POST /coupons", h.createCoupon)
	mux.HandleFunc("GET /coupons", h.getCoupons)
	mux.HandleFunc("GET /coupons/{id}", h.getCoupon)
	mux.HandleFunc("PATCH /coupons/{id}", h.updateCoupon)
	mux.HandleFunc("DELETE /coupons/{id}", h.deleteCoupon)

	mux.HandleFunc("POST /orders", h.createOrder)
	mux.HandleFunc("GET /orders", h.getOrders)
	mux.HandleFunc("GET /orders/{id}", h.getOrder)
	mux.HandleFunc("PATCH /orders/{id}/status", h.updateOrderStatus)
	mux.HandleFunc("DELETE /orders/{id}", h.cancelOrder)

	mux.HandleFunc("POST /users/{id}/reviews", h.createReview)
	mux.HandleFunc("GET /reviews/{id}", h.getReview)
	mux.HandleFunc("PATCH /reviews/{id}", h.updateReview)
	mux.HandleFunc("DELETE /reviews/{id}", h.deleteReview)

	return mux
}

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := mapError(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Request failed", zap.Error(err))
		trace.SpanFromContext(r.Context()).RecordError(err)
		msg = "internal server error"
	}
	writeJSON(w, status, errorResponse{Code: status, Message: msg})
}

func (h *Handler) badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{
		Code:    http.StatusBadRequest,
		Message: msg,
	})
}

// decodeJSON parses the request body into v and reports a 400 on failure.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// pathUUID parses the named path segment as a UUID and reports a 400 on
// failure.
func (h *Handler) pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		h.badRequest(w, "invalid "+name+": must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}
