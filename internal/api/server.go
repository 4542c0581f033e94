// Package api assembles the HTTP router for the fan wizard service.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/albapepper/scoracle-fans/internal/api/handler"
	"github.com/albapepper/scoracle-fans/internal/config"
	"github.com/albapepper/scoracle-fans/internal/metrics"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(h *handler.Handler, m *metrics.Registry, cfg *config.Config) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(TimingMiddleware)
	if m != nil {
		r.Use(m.Middleware)
	}
	r.Use(middleware.Compress(5)) // gzip

	// CORS. Credentials are allowed so the fan_session cookie travels.
	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Accept-Encoding", "Content-Type", "If-None-Match", "Cache-Control", handler.SessionHeader},
		ExposedHeaders:   []string{"X-Process-Time", "ETag", "Content-Disposition", handler.SessionHeader},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	// Rate limiting
	if cfg.RateLimitEnabled {
		r.Use(RateLimitMiddleware(cfg.RateLimitRequests, cfg.RateLimitWindow))
	}

	// --- Routes ---

	r.Get("/", h.Root)

	r.Route("/health", func(r chi.Router) {
		r.Get("/", h.HealthCheck)
		r.Get("/sessions", h.HealthCheckSessions)
	})

	if m != nil {
		r.Method(http.MethodGet, "/metrics", m.Handler())
	}

	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/docs/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/sessions", h.CreateSession)
		r.Get("/catalog", h.GetCatalog)
		r.Post("/esports/profile-check", h.CheckEsportsProfile)

		r.Route("/wizard", func(r chi.Router) {
			r.Get("/", h.GetWizard)

			// Step 1 and 2
			r.Post("/personal", h.SubmitPersonal)
			r.Post("/interests", h.SubmitInterests)

			// Step 3
			r.Post("/documents", h.UploadDocuments)
			r.Post("/documents/continue", h.ContinueFromVerification)
			r.Post("/documents/skip", h.SkipVerification)

			// Step 4 and 5
			r.Post("/social", h.SubmitSocial)
			r.Post("/dashboard", h.ViewDashboard)
			r.Get("/dashboard", h.GetDashboard)
			r.Get("/export", h.Export)

			// Navigation
			r.Post("/back", h.Back)
			r.Post("/reset", h.Reset)
		})
	})

	return r
}
