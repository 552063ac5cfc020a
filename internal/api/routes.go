package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock-dashboard/config"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.HTTP.RequestTimeout))
	r.Use(CORSMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)
	r.Use(LoggingMiddleware)

	// Pages
	r.Get("/", h.HandleIndex)
	r.Get("/stocks", h.HandleSearch)
	r.Get("/stocks/{symbol}", h.HandleStockPage)

	// Metrics endpoint for Prometheus
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealth)
		r.Get("/overview", h.HandleOverview)
		r.Get("/stocks/{symbol}", h.HandleLookup)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", h.HandleCreateSession)
			r.Get("/{id}", h.HandleGetSession)
			r.Post("/{id}/symbol", h.HandleLoadSymbol)
			r.Delete("/{id}", h.HandleCloseSession)
		})
	})

	return r
}

// CORSMiddleware returns CORS middleware with the specified allowed origins
func CORSMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, HX-Request")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
