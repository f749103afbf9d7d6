package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/catalog"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/checkout"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

// Catalog is the part of *catalog.Service the handlers use.
type Catalog interface {
	ListCategories(ctx context.Context) ([]catalog.Category, error)
	GetCategory(ctx context.Context, id string) (catalog.Category, error)
	CreateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error)
	UpdateCategory(ctx context.Context, c catalog.Category) (catalog.Category, error)
	DeleteCategory(ctx context.Context, id string) error

	ListProducts(ctx context.Context, categoryID string) ([]catalog.Product, error)
	PopularProducts(ctx context.Context, limit int) ([]catalog.Product, error)
	TrendingProducts(ctx context.Context, limit int) ([]catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	CreateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	UpdateProduct(ctx context.Context, p catalog.Product) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
}

type Checkout interface {
	PlaceOrder(ctx context.Context, sessionID string, c checkout.Customer) (*order.Order, error)
}

type Deps struct {
	Logger         *zap.Logger
	RequestTimeout time.Duration

	Catalog  Catalog
	Sessions *cart.Sessions
	Checkout Checkout
	Orders   order.Repository
}

type Handler struct {
	catalog  Catalog
	sessions *cart.Sessions
	checkout Checkout
	orders   order.Repository

	logger  *zap.Logger
	timeout time.Duration
}

func NewHandler(d Deps) *Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Handler{
		catalog:  d.Catalog,
		sessions: d.Sessions,
		checkout: d.Checkout,
		orders:   d.Orders,
		logger:   logger,
		timeout:  timeout,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "storefront-service",
	})
}

func (h *Handler) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), h.timeout)
}

// writeServiceError maps domain errors to a status code. Anything
// unrecognised is logged and reported as a 500 with msg.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, order.ErrNotFound):
		writeError(w, http.StatusNotFound, "order not found")
	case errors.Is(err, catalog.ErrInvalidProduct),
		errors.Is(err, catalog.ErrInvalidCategory),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, checkout.ErrInvalidCustomer):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, errOutOfStock):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, cart.ErrUnavailable):
		h.logger.Warn(msg, zap.String("path", r.URL.Path), zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, "cart temporarily unavailable")
	default:
		h.logger.Error(msg,
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
