// Package server provides a public API for embedding the ETAD catalogue server.
package server

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/rkm/s1etad/internal/api"
	"github.com/rkm/s1etad/internal/config"
	"github.com/rkm/s1etad/internal/etad"
)

// Options configures the ETAD catalogue server.
type Options struct {
	// ProductPath is the ETAD product directory to serve (required).
	ProductPath string

	// BaseURL is the public-facing URL for self-referential links (required).
	// Example: "https://api.example.com/etad" or "http://localhost:8080"
	BaseURL string

	// Title is the API title.
	// Default: "S1 ETAD Catalogue API"
	Title string

	// Description is the API description.
	// Default: "Burst catalogue and correction merge API for Sentinel-1 ETAD products"
	Description string

	// Version is the API version string.
	// Default: "1.0.0"
	Version string

	// Logger is the slog logger to use.
	// Default: slog.Default()
	Logger *slog.Logger
}

// Server is an ETAD catalogue server that can be embedded in another
// application. The served product can be swapped at runtime with Reload.
type Server struct {
	router chi.Router
	source *ReloadableSource
}

// New creates a new ETAD catalogue server with the given options.
func New(opts Options) (*Server, error) {
	// Apply defaults
	if opts.Title == "" {
		opts.Title = "S1 ETAD Catalogue API"
	}
	if opts.Description == "" {
		opts.Description = "Burst catalogue and correction merge API for Sentinel-1 ETAD products"
	}
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	// Build internal config
	cfg := &config.Config{
		Product: config.ProductConfig{
			Path: opts.ProductPath,
		},
		API: config.APIConfig{
			BaseURL:     opts.BaseURL,
			Title:       opts.Title,
			Description: opts.Description,
			Version:     opts.Version,
		},
	}

	source, err := NewReloadableSource(opts.ProductPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open product: %w", err)
	}

	handlers := api.NewHandlers(cfg, source, opts.Logger)
	router := api.NewRouter(handlers, opts.Logger)

	return &Server{
		router: router,
		source: source,
	}, nil
}

// Router returns the chi.Router for mounting in another application.
func (s *Server) Router() chi.Router {
	return s.router
}

// Reload re-reads the product from disk and swaps it in atomically.
func (s *Server) Reload() error {
	return s.source.Reload()
}

// ReloadableSource serves a product loaded from a fixed directory and can
// reload it without interrupting in-flight requests: each request keeps the
// snapshot it started with.
type ReloadableSource struct {
	path    string
	current atomic.Pointer[etad.Product]
}

// NewReloadableSource opens the product at path.
func NewReloadableSource(path string) (*ReloadableSource, error) {
	s := &ReloadableSource{path: path}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	return s, nil
}

// Product implements api.ProductSource.
func (s *ReloadableSource) Product() *etad.Product {
	return s.current.Load()
}

// Reload re-opens the product directory and swaps the loaded product in. On
// failure the previous product stays in place.
func (s *ReloadableSource) Reload() error {
	p, err := etad.OpenProduct(s.path)
	if err != nil {
		return err
	}
	s.current.Store(p)
	return nil
}
