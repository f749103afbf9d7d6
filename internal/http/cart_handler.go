package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
)

var errOutOfStock = errors.New("product is out of stock")

type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// sessionStore returns the cart of the request's session, or writes the
// error response and returns nil.
func (h *Handler) sessionStore(ctx context.Context, w http.ResponseWriter, r *http.Request) *cart.Store {
	store, err := h.sessions.Get(ctx, chi.URLParam(r, "sessionId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load cart")
		return nil
	}
	return store
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessionStore(r.Context(), w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, store.State())
}

// AddCartItem snapshots the current product and adds it to the session's
// cart. Quantities below 1 are stored as 1.
func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "missing productId")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	p, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load product")
		return
	}
	if !p.InStock {
		h.writeServiceError(w, r, errOutOfStock, "failed to add item")
		return
	}

	store := h.sessionStore(ctx, w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, store.AddItem(ctx, p, req.Quantity, req.Size, req.Color))
}

// UpdateCartItem sets a line's quantity, floored at 1. An unknown item id
// leaves the cart unchanged.
func (h *Handler) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	store := h.sessionStore(r.Context(), w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, store.UpdateQuantity(r.Context(), chi.URLParam(r, "itemId"), req.Quantity))
}

func (h *Handler) RemoveCartItem(w http.ResponseWriter, r *http.Request) {
	store := h.sessionStore(r.Context(), w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, store.RemoveItem(r.Context(), chi.URLParam(r, "itemId")))
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	store := h.sessionStore(r.Context(), w, r)
	if store == nil {
		return
	}
	writeJSON(w, http.StatusOK, store.ClearCart(r.Context()))
}

func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var c checkout.Customer
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	o, err := h.checkout.PlaceOrder(ctx, chi.URLParam(r, "sessionId"), c)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to place order")
		return
	}
	writeJSON(w, http.StatusCreated, o)
}
