package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(h *Handlers, logger *slog.Logger) chi.Router {
	r := chi.NewRouter()

	// Add middleware stack
	r.Use(middleware.RequestID)
	r.Use(RequestIDResponse) // Add X-Request-ID to response headers
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(middleware.Compress(5)) // Gzip compression
	r.Use(ContentTypeJSON)

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	// Health check endpoint
	r.Get("/health", h.Health)

	// Landing page
	r.Get("/", h.LandingPage)

	// Product metadata
	r.Get("/product", h.ProductInfo)

	// Burst catalogue queries
	r.Get("/bursts", h.Bursts)

	// Swaths and bursts
	r.Route("/swaths", func(r chi.Router) {
		r.Get("/", h.Swaths)
		r.Get("/{swathID}", h.SwathDetail)
		r.Get("/{swathID}/bursts/{bIndex}", h.BurstDetail)
		r.Get("/{swathID}/bursts/{bIndex}/corrections/{name}", h.BurstCorrection)
		r.Get("/{swathID}/merge/{name}", h.SwathMerge)
	})

	// Cross-swath merge
	r.Get("/merge/{name}", h.ProductMerge)

	// Footprints
	r.Get("/footprint", h.Footprint)

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "endpoint not found")
	})

	// 405 handler
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
	})

	return r
}
