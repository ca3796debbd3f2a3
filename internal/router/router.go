package router

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/mohashafici/DalagHub/internal/handler"
	"github.com/mohashafici/DalagHub/internal/middleware"
	"github.com/mohashafici/DalagHub/internal/platform/logger"
)

// New builds the HTTP router. Reads are public; writes sit behind JWTAuth.
func New(
	authHandler *handler.AuthHandler,
	productHandler *handler.ProductHandler,
	uploadHandler *handler.UploadHandler,
	jwtSecret string,
	log logger.Logger,
) *chi.Mux {
	mux := chi.NewRouter()
	mux.Use(chimiddleware.Recoverer)
	mux.NotFound(handler.NotFound)

	mux.Get("/health", handler.Health)

	// Public routes.
	mux.Post("/api/auth/register", authHandler.Register)
	mux.Post("/api/auth/login", authHandler.Login)
	mux.Get("/api/auth/session", authHandler.Session)

	mux.Get("/api/products", productHandler.ListProducts)
	mux.Get("/api/products/{id}", productHandler.GetProduct)
	mux.Post("/api/products/{id}/report", productHandler.ReportProduct)

	// Routes requiring authentication.
	mux.Group(func(r chi.Router) {
		r.Use(middleware.JWTAuth(jwtSecret, log))

		r.Post("/api/auth/logout", authHandler.Logout)
		r.Post("/api/auth/refresh", authHandler.RefreshProfile)

		r.Get("/api/products/mine", productHandler.MyProducts)
		r.Post("/api/products", productHandler.CreateProduct)
		r.Delete("/api/products/{id}", productHandler.DeleteProduct)
		r.Patch("/api/products/{id}/status", productHandler.UpdateProductStatus)

		r.Post("/api/uploads", uploadHandler.UploadImages)
	})

	return mux
}
