package api

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ghost.confess/config"
	"ghost.confess/internal/confession"
	"ghost.confess/internal/metrics"
	"ghost.confess/internal/responder"
)

func SetupRouter(svc *confession.Service, agg *metrics.Aggregator, resp responder.Responder, cfg *config.Config, log zerolog.Logger) *chi.Mux {
	h := NewHandler(svc, agg, resp, cfg, log)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RealIP)
	r.Use(RequestID)
	r.Use(Logger(log))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// CORS
	r.Use(CORS(CORSConfig{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID"},
		MaxAge:         86400,
	}))

	// Health
	r.Get("/health", h.Health)

	// API routes
	r.Route("/api", func(r chi.Router) {
		if cfg.RateLimit.Enabled {
			limiter := NewRateLimiter(cfg.RateLimit.RequestsPerMin, time.Minute)
			r.Use(limiter.Middleware)
		}
		r.Use(JSONOnly)

		r.Route("/confess", func(r chi.Router) {
			r.Post("/", h.CreateConfession)
			r.Get("/{id}", h.FetchConfession)
			r.Delete("/{id}", h.DeleteConfession)
		})

		r.Post("/ai-respond", h.AIRespond)

		r.Route("/research", func(r chi.Router) {
			r.Get("/sentiment", h.Sentiment)
			r.Get("/crisis-alert", h.CrisisAlert)
		})
	})

	return r
}
