package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type RouterOptions struct {
	AdminUID         string
	CORSAllowOrigins []string
}

func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(CorrelationID)
	if len(opts.CORSAllowOrigins) > 0 {
		r.Use(CORS(opts.CORSAllowOrigins))
	}

	r.Get("/health", h.Health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/categories", h.ListCategories)
		r.Get("/categories/{categoryId}", h.GetCategory)

		r.Route("/products", func(r chi.Router) {
			r.Get("/", h.ListProducts)
			r.Get("/popular", h.PopularProducts)
			r.Get("/trending", h.TrendingProducts)
			r.Get("/{productId}", h.GetProduct)
			r.Get("/{productId}/price", h.ProductPrice)
			r.Get("/{productId}/quantities", h.ProductQuantities)
		})

		r.Route("/cart/{sessionId}", func(r chi.Router) {
			r.Get("/", h.GetCart)
			r.Delete("/", h.ClearCart)
			r.Post("/items", h.AddCartItem)
			r.Patch("/items/{itemId}", h.UpdateCartItem)
			r.Delete("/items/{itemId}", h.RemoveCartItem)
			r.Post("/checkout", h.Checkout)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(RequireAdmin(opts.AdminUID))

			r.Post("/categories", h.CreateCategory)
			r.Put("/categories/{categoryId}", h.UpdateCategory)
			r.Delete("/categories/{categoryId}", h.DeleteCategory)

			r.Post("/products", h.CreateProduct)
			r.Put("/products/{productId}", h.UpdateProduct)
			r.Delete("/products/{productId}", h.DeleteProduct)

			r.Get("/orders", h.ListOrders)
			r.Get("/orders/{orderId}", h.GetOrder)
			r.Patch("/orders/{orderId}/status", h.UpdateOrderStatus)
			r.Delete("/orders/{orderId}", h.DeleteOrder)
		})
	})

	return r
}
