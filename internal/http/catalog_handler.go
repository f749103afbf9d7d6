package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/pricing"
)

const (
	defaultListLimit = 8
	maxListLimit     = 50
)

// queryInt reads a positive integer query parameter. A missing value yields
// def; anything else that is not a positive integer is an error.
func queryInt(r *http.Request, key string, def int) (int, bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load categories")
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *Handler) GetCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	c, err := h.catalog.GetCategory(ctx, chi.URLParam(r, "categoryId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load category")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	products, err := h.catalog.ListProducts(ctx, r.URL.Query().Get("categoryId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) PopularProducts(w http.ResponseWriter, r *http.Request) {
	h.listFlagged(w, r, h.catalog.PopularProducts)
}

func (h *Handler) TrendingProducts(w http.ResponseWriter, r *http.Request) {
	h.listFlagged(w, r, h.catalog.TrendingProducts)
}

func (h *Handler) listFlagged(w http.ResponseWriter, r *http.Request, list func(ctx context.Context, limit int) ([]catalog.Product, error)) {
	limit, ok := queryInt(r, "limit", defaultListLimit)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}
	limit = min(limit, maxListLimit)

	ctx, cancel := h.requestContext(r)
	defer cancel()

	products, err := list(ctx, limit)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type priceResponse struct {
	ProductID string          `json:"productId"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Total     decimal.Decimal `json:"total"`
}

// ProductPrice previews the tiered unit price for a quantity. It never
// touches the cart.
func (h *Handler) ProductPrice(w http.ResponseWriter, r *http.Request) {
	qty, ok := queryInt(r, "quantity", 1)
	if !ok {
		writeError(w, http.StatusBadRequest, "quantity must be a positive integer")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load product")
		return
	}

	writeJSON(w, http.StatusOK, priceResponse{
		ProductID: p.ID,
		Quantity:  qty,
		UnitPrice: pricing.ResolvePrice(p, qty),
		Total:     pricing.LineTotal(p, qty),
	})
}

type quantitiesResponse struct {
	ProductID   string                   `json:"productId"`
	Options     []pricing.QuantityOption `json:"options"`
	PriceBreaks []pricing.PriceBreak     `json:"priceBreaks"`
}

func (h *Handler) ProductQuantities(w http.ResponseWriter, r *http.Request) {
	limit, ok := queryInt(r, "limit", pricing.DefaultPreviewLength)
	if !ok {
		writeError(w, http.StatusBadRequest, "limit must be a positive integer")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, chi.URLParam(r, "productId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load product")
		return
	}

	writeJSON(w, http.StatusOK, quantitiesResponse{
		ProductID:   p.ID,
		Options:     pricing.PricedOptions(p, limit),
		PriceBreaks: pricing.PriceBreaks(p),
	})
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var c catalog.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	created, err := h.catalog.CreateCategory(ctx, c)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create category")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	var c catalog.Category
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	c.ID = chi.URLParam(r, "categoryId")

	ctx, cancel := h.requestContext(r)
	defer cancel()

	updated, err := h.catalog.UpdateCategory(ctx, c)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update category")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.catalog.DeleteCategory(ctx, chi.URLParam(r, "categoryId")); err != nil {
		h.writeServiceError(w, r, err, "failed to delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	created, err := h.catalog.CreateProduct(ctx, p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var p catalog.Product
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p.ID = chi.URLParam(r, "productId")

	ctx, cancel := h.requestContext(r)
	defer cancel()

	updated, err := h.catalog.UpdateProduct(ctx, p)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.catalog.DeleteProduct(ctx, chi.URLParam(r, "productId")); err != nil {
		h.writeServiceError(w, r, err, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
