package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xenking/orders-service/internal/domain/user"
)

type addressResponse struct {
	ID           uuid.UUID `json:"id"`
	UserID       uuid.UUID `json:"userId"`
	PostalCode   string    `json:"postalCode"`
	Street       string    `json:"street"`
	Number       string    `json:"number"`
	Complement   string    `json:"complement,omitempty"`
	Neighborhood string    `json:"neighborhood"`
	City         string    `json:"city"`
	State        string    `json:"state"`
	Default      bool      `json:"default"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toAddressResponse(a *user.Address) addressResponse {
	return addressResponse{
		ID:           a.ID,
		UserID:       a.UserID,
		PostalCode:   a.PostalCode,
		Street:       a.Street,
		Number:       a.Number,
		Complement:   a.Complement,
		Neighborhood: a.Neighborhood,
		City:         a.City,
		State:        a.State,
		Default:      a.Default,
		CreatedAt:    a.CreatedAt,
	}
}

type createAddressRequest struct {
	PostalCode   string `json:"postalCode"`
	Street       string `json:"street"`
	Number       string `json:"number"`
	Complement   string `json:"complement"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	Default      bool   `json:"default"`
}

func (h *Handler) createAddress(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req createAddressRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.PostalCode == "" || req.Street == "" || req.City == "" || req.State == "" {
		h.badRequest(w, "postalCode, street, city and state are required")
		return
	}

	a, err := h.users.CreateAddress(r.Context(), userID, user.CreateAddressRequest{
		PostalCode:   req.PostalCode,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		Default:      req.Default,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toAddressResponse(a))
}

func (h *Handler) listAddresses(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	addrs, err := h.users.ListAddresses(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]addressResponse, len(addrs))
	for i := range addrs {
		resp[i] = toAddressResponse(&addrs[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	a, err := h.users.GetAddress(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResponse(a))
}

type updateAddressRequest struct {
	PostalCode   *string `json:"postalCode"`
	Street       *string `json:"street"`
	Number       *string `json:"number"`
	Complement   *string `json:"complement"`
	Neighborhood *string `json:"neighborhood"`
	City         *string `json:"city"`
	State        *string `json:"state"`
	Default      *bool   `json:"default"`
}

func (h *Handler) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateAddressRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	a, err := h.users.UpdateAddress(r.Context(), id, user.UpdateAddressRequest{
		PostalCode:   req.PostalCode,
		Street:       req.Street,
		Number:       req.Number,
		Complement:   req.Complement,
		Neighborhood: req.Neighborhood,
		City:         req.City,
		State:        req.State,
		Default:      req.Default,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toAddressResponse(a))
}

func (h *Handler) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.users.DeleteAddress(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
