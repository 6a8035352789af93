package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/upb/webshop/app"
	"github.com/upb/webshop/handlers"
	"github.com/upb/webshop/middleware"
	"github.com/upb/webshop/models"
	"github.com/upb/webshop/utils"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(deps.Config.Server.RequestTimeout))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware)
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Every request is resolved to a principal or left anonymous
	r.Use(deps.Authenticator.Middleware)

	health := handlers.NewHealthHandler(deps.DB.DB, deps.Logger)
	if pinger, ok := deps.Registry.(handlers.Pinger); ok {
		health.WithDependency("refresh_registry", pinger)
	}
	r.Get("/healthz", health.HandleHealth)
	r.Get("/readyz", health.HandleReadiness)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	userHandler := handlers.NewUserHandler(deps.UserService, deps.AuthService, deps.Logger)
	catalogHandler := handlers.NewCatalogHandler(deps.CatalogService, deps.Logger)
	cartHandler := handlers.NewCartHandler(deps.CartService, deps.Logger)
	orderHandler := handlers.NewOrderHandler(deps.OrderService, deps.Logger)

	admin := middleware.RequireRole(models.RoleAdmin)
	user := middleware.RequireRole(models.RoleUser, models.RoleAdmin)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Register)
			r.Post("/login", userHandler.Login)
			r.Post("/token", userHandler.RefreshAccessToken)
			r.Post("/refresh", userHandler.RotateRefreshToken)
			r.With(middleware.RequireAuthenticated).Get("/me", userHandler.Me)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", userHandler.List)
				r.Get("/{id}", userHandler.Get)
				r.Put("/{id}", userHandler.UpdateContact)
				r.Delete("/{id}", userHandler.Delete)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalogHandler.ListCategories)
			r.Get("/{id}", catalogHandler.GetCategory)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", catalogHandler.CreateCategory)
				r.Put("/{id}", catalogHandler.UpdateCategory)
				r.Delete("/{id}", catalogHandler.DeleteCategory)
			})
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", catalogHandler.ListProducts)
			r.Post("/search", catalogHandler.SearchProducts)
			r.Get("/category/{id}", catalogHandler.ListProductsByCategory)
			r.Get("/{id}", catalogHandler.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Post("/", catalogHandler.CreateProduct)
				r.Put("/{id}", catalogHandler.UpdateProduct)
				r.Delete("/{id}", catalogHandler.DeleteProduct)
			})
		})

		r.Route("/cart", func(r chi.Router) {
			r.Use(middleware.RequireAuthenticated)
			r.Get("/", cartHandler.Get)
			r.Delete("/", cartHandler.Clear)
			r.Post("/products/{id}", cartHandler.Add)
			r.Delete("/products/{id}", cartHandler.Remove)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(user)
				r.Post("/", orderHandler.Create)
				r.Get("/{id}", orderHandler.Get)
				r.Get("/{id}/products", orderHandler.Items)
				r.Get("/user/{id}", orderHandler.ListByUser)
			})

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Put("/{id}", orderHandler.UpdateStatus)
				r.Delete("/{id}", orderHandler.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteNotFound(w, "endpoint not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})

	return r
}
