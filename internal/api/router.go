package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and returns the main HTTP router.
func NewRouter(engine Engine, bus EventBus) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(corsMiddleware)
	r.Use(middleware.CleanPath)

	h := &Handlers{engine: engine, events: bus}

	// State
	r.Get("/api/snapshot", h.getSnapshot)
	r.Post("/api/refresh", h.triggerRefresh)

	// Actions
	r.Post("/api/audio/default", h.setDefaultEndpoint)
	r.Post("/api/scale", h.setScale)
	r.Post("/api/mapping", h.setMapping)

	// SSE
	r.Get("/api/subscribe", h.sseEvents)

	// Metrics
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// corsMiddleware adds permissive CORS headers for local network access.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
