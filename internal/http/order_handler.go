package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

type statusRequest struct {
	Status order.Status `json:"status"`
}

func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	orders, err := h.orders.List(ctx)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	o, err := h.orders.GetByID(ctx, chi.URLParam(r, "orderId"))
	if err != nil {
		h.writeServiceError(w, r, err, "failed to load order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	ctx, cancel := h.requestContext(r)
	defer cancel()

	o, err := h.orders.UpdateStatus(ctx, chi.URLParam(r, "orderId"), req.Status)
	if err != nil {
		h.writeServiceError(w, r, err, "failed to update order")
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.requestContext(r)
	defer cancel()

	if err := h.orders.Delete(ctx, chi.URLParam(r, "orderId")); err != nil {
		h.writeServiceError(w, r, err, "failed to delete order")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
