// Package httpapi assembles the chi router: shared middleware, the service
// info endpoints and the /api routes.
package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"praticai/internal/platform/metrics"
	"praticai/pkg/platform/httputil"
	"praticai/pkg/platform/middleware/logging"
	"praticai/pkg/platform/middleware/metadata"
	"praticai/pkg/platform/middleware/request"
	"praticai/pkg/platform/middleware/requesttime"
)

// Registrar mounts its routes on a router.
type Registrar interface {
	Register(r chi.Router)
}

// Config is everything the router needs.
type Config struct {
	Logger         *slog.Logger
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	// Registry is exposed on /metrics when set.
	Registry *prometheus.Registry
	// API handlers are mounted under /api.
	API []Registrar
	Now func() time.Time
}

// NewRouter wires all public endpoints.
func NewRouter(cfg Config) http.Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	r := chi.NewRouter()
	r.Use(logging.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(logging.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(logging.Latency(cfg.Metrics))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		ExposedHeaders:   []string{"Content-Disposition", request.Header},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"message": "PraticAI API is running"})
	})
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{
			"status":    "healthy",
			"timestamp": now().Format(time.RFC3339),
		})
	})
	if cfg.Registry != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(cfg.Registry))
	}

	r.Route("/api", func(api chi.Router) {
		for _, h := range cfg.API {
			h.Register(api)
		}
	})
	return r
}
