package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	custommiddleware "github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/middleware"
	"github.com/shrishailpatil2233-ui/Waste2Wealth-Smart-Organic-Waste-Management-System/internal/model"
)

// SetupRouter настраивает HTTP-маршруты и middleware сервиса Waste2Wealth.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(custommiddleware.GzipMiddleware)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(h.metrics.Middleware)

	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics.Handler())
	}

	adminOnly := custommiddleware.RequireRole(model.RoleAdmin)

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)
		r.Get("/me", h.Me)
	})

	r.Route("/api/pickup", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/geocode", h.Geocode)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireRoleWithMessage("Only household users can request pickups", model.RoleHousehold))
			r.Post("/request", h.RequestPickup)
			r.Get("/my", h.MyPickups)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/all", h.AllPickups)
			r.Put("/{id}/status", h.UpdatePickupStatus)
			r.Put("/{id}/complete", h.CompletePickup)
			r.Get("/{id}/events", h.PickupEvents)
			r.Post("/optimize-route", h.OptimizeRoute)
		})
	})

	r.Route("/api/order", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Group(func(r chi.Router) {
			r.Use(custommiddleware.RequireRoleWithMessage("Only farmers can order compost", model.RoleFarmer))
			r.Post("/", h.PlaceOrder)
			r.Get("/my", h.MyOrders)
		})

		r.Group(func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/all", h.AllOrders)
			r.Put("/{id}/status", h.UpdateOrderStatus)
			r.Get("/{id}/events", h.OrderEvents)
			r.Post("/fix-coordinates", h.FixOrderCoordinates)
		})
	})

	r.Route("/api/compost/stock", func(r chi.Router) {
		r.Get("/", h.GetStock)
		r.With(h.authMiddleware.Middleware, adminOnly).Put("/", h.UpdateStock)
	})

	r.Route("/api/inventory", func(r chi.Router) {
		r.Get("/", h.ListInventory)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware, adminOnly)
			r.Post("/", h.CreateInventoryItem)
			r.Put("/{id}", h.UpdateInventoryItem)
			r.Delete("/{id}", h.DeleteInventoryItem)
		})
	})

	r.Route("/api/rewards", func(r chi.Router) {
		r.Get("/", h.ListRewards)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware.Middleware, adminOnly)
			r.Post("/", h.CreateReward)
			r.Put("/{id}", h.UpdateReward)
			r.Delete("/{id}", h.DeleteReward)
		})
	})

	r.Route("/api/redemptions", func(r chi.Router) {
		r.Use(h.authMiddleware.Middleware)

		r.Post("/", h.Redeem)
		r.Get("/my-history", h.MyRedemptions)
		r.With(adminOnly).Get("/all", h.AllRedemptions)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Route not found", "not_found")
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, http.StatusText(http.StatusMethodNotAllowed), "bad_request")
	})

	return r
}
