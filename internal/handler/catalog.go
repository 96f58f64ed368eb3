package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/orders-service/internal/domain/catalog"
)

type categoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

func toCategoryResponse(c *catalog.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, Description: c.Description}
}

type productResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Description   string    `json:"description,omitempty"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Weight        float64   `json:"weight"`
	AverageRating *float64  `json:"averageRating"`
	Active        bool      `json:"active"`
	CategoryID    uuid.UUID `json:"categoryId"`
}

func toProductResponse(p *catalog.Product) productResponse {
	resp := productResponse{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price.InexactFloat64(),
		StockQuantity: p.StockQuantity,
		Weight:        p.Weight.InexactFloat64(),
		Active:        p.Active,
		CategoryID:    p.CategoryID,
	}
	if p.AverageRating != nil {
		rating := p.AverageRating.InexactFloat64()
		resp.AverageRating = &rating
	}
	return resp
}

type createCategoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *Handler) createCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}

	c, err := h.catalog.CreateCategory(r.Context(), catalog.CreateCategoryRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCategoryResponse(c))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.ListCategories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := make([]categoryResponse, len(categories))
	for i := range categories {
		resp[i] = toCategoryResponse(&categories[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) getCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	c, err := h.catalog.GetCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

type updateCategoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func (h *Handler) updateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateCategoryRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}

	c, err := h.catalog.UpdateCategory(r.Context(), id, catalog.UpdateCategoryRequest{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryResponse(c))
}

func (h *Handler) deleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteCategory(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	products, err := h.catalog.ListProductsByCategory(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

type createProductRequest struct {
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	StockQuantity int       `json:"stockQuantity"`
	Weight        float64   `json:"weight"`
	CategoryID    uuid.UUID `json:"categoryId"`
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		h.badRequest(w, "name is required")
		return
	}
	if req.Price <= 0 {
		h.badRequest(w, "price must be positive")
		return
	}
	if req.StockQuantity < 0 {
		h.badRequest(w, "stockQuantity must not be negative")
		return
	}

	p, err := h.catalog.CreateProduct(r.Context(), catalog.CreateProductRequest{
		Name:          req.Name,
		Description:   req.Description,
		Price:         decimal.NewFromFloat(req.Price),
		StockQuantity: req.StockQuantity,
		Weight:        decimal.NewFromFloat(req.Weight),
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) listActiveProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListActiveProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeProducts(w, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}

	p, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

type updateProductRequest struct {
	Name          *string    `json:"name"`
	Description   *string    `json:"description"`
	Price         *float64   `json:"price"`
	StockQuantity *int       `json:"stockQuantity"`
	Weight        *float64   `json:"weight"`
	Active        *bool      `json:"active"`
	CategoryID    *uuid.UUID `json:"categoryId"`
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req updateProductRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.Price != nil && *req.Price <= 0 {
		h.badRequest(w, "price must be positive")
		return
	}
	if req.StockQuantity != nil && *req.StockQuantity < 0 {
		h.badRequest(w, "stockQuantity must not be negative")
		return
	}

	p, err := h.catalog.UpdateProduct(r.Context(), id, catalog.UpdateProductRequest{
		Name:          req.Name,
		Description:   req.Description,
		Price:         decimalPtr(req.Price),
		StockQuantity: req.StockQuantity,
		Weight:        decimalPtr(req.Weight),
		Active:        req.Active,
		CategoryID:    req.CategoryID,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathUUID(w, r, "id")
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeProducts(w http.ResponseWriter, products []catalog.Product) {
	resp := make([]productResponse, len(products))
	for i := range products {
		resp[i] = toProductResponse(&products[i])
	}
	writeJSON(w, http.StatusOK, resp)
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

func floatPtr(d *decimal.Decimal) *float64 {
	if d == nil {
		return nil
	}
	f := d.InexactFloat64()
	return &f
}
