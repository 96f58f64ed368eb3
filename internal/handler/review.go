package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/orders-service/internal/domain/review"
)

type reviewResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"productId"`
	UserID    uuid.UUID `json:"userId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toReviewResponse(rv *review.Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
	}
}

type createReviewRequest struct {
	ProductID uuid.UUID `json:"productId"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
}

func (h *Handler) createReview(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req createReviewRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rv, err := h.reviews.Create(r.Context(), userID, review.CreateRequest{
		ProductID: req.ProductID,
		Rating:    req.Rating,
		Comment:   req.Comment,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.metrics.reviewsCreated.Add(r.Context(), 1)
	writeJSON(w, http.StatusCreated, toReviewResponse(rv))
}

func (h *Handler) getReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	rv, err := h.reviews.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(rv))
}

type updateReviewRequest struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

func (h *Handler) updateReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateReviewRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	rv, err := h.reviews.Update(r.Context(), id, review.UpdateRequest{
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toReviewResponse(rv))
}

func (h *Handler) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.reviews.Delete(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listProductReviews(w http.ResponseWriter, r *http.Request) {
	productID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByProduct(r.Context(), productID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReviews(w, reviews)
}

func (h *Handler) listUserReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	reviews, err := h.reviews.ListByUser(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeReviews(w, reviews)
}

func writeReviews(w http.ResponseWriter, reviews []review.Review) {
	resp := make([]reviewResponse, len(reviews))
	for i := range reviews {
		resp[i] = toReviewResponse(&reviews[i])
	}
	writeJSON(w, http.StatusOK, resp)
}
