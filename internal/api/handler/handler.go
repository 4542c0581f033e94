// Package handler provides HTTP handlers for all API endpoints.
// Every wizard handler loads the caller's session, applies exactly one
// wizard operation and saves the session back before responding.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/albapepper/scoracle-fans/internal/analytics"
	"github.com/albapepper/scoracle-fans/internal/api/respond"
	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/config"
	"github.com/albapepper/scoracle-fans/internal/session"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// maxJSONBody caps JSON request bodies; uploads have their own limit.
const maxJSONBody = 1 << 20

// catalogTTL is the client cache lifetime of the option catalog.
const catalogTTL = time.Hour

// SessionCounter is told about every created session.
type SessionCounter interface {
	Inc()
}

// Deps are the collaborators a Handler needs.
type Deps struct {
	Store      session.Store
	Machine    *wizard.Machine
	Scorer     analytics.Scorer
	Summarizer *analytics.Summarizer
	Catalog    *catalog.Catalog
	Config     *config.Config
	Logger     *slog.Logger
	Created    SessionCounter // optional
}

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	Deps
	locks       *sessionLocks
	catalogJSON []byte
	catalogETag string
}

// New creates a Handler with shared dependencies.
func New(d Deps) (*Handler, error) {
	data, err := json.Marshal(d.Catalog)
	if err != nil {
		return nil, fmt.Errorf("encode catalog: %w", err)
	}
	return &Handler{
		Deps:        d,
		locks:       newSessionLocks(),
		catalogJSON: data,
		catalogETag: respond.ComputeETag(data),
	}, nil
}

// Root serves API info at /.
// @Summary API root info
// @Description Returns API name, version, status and the active session backend.
// @Tags meta
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":            "Scoracle Fans API",
		"version":         "1.0.0",
		"status":          "running",
		"docs":            "/docs",
		"session_backend": h.Store.Backend(),
	})
}

// HealthCheck returns basic health status.
// @Summary Health check
// @Description Returns basic health status and timestamp.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respond.WriteJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckSessions verifies the session store is reachable.
// @Summary Session store health check
// @Description Pings the configured session backend.
// @Tags health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/sessions [get]
func (h *Handler) HealthCheckSessions(w http.ResponseWriter, r *http.Request) {
	body := map[string]interface{}{
		"backend":   h.Store.Backend(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if stats, ok := h.Store.(interface{ Stats() map[string]interface{} }); ok {
		body["stats"] = stats.Stats()
	}
	if err := h.Store.Ping(r.Context()); err != nil {
		h.Logger.Warn("Session store health check failed", "backend", h.Store.Backend(), "error", err)
		body["status"] = "unhealthy"
		body["error"] = "Session store check failed"
		respond.WriteJSONObject(w, http.StatusServiceUnavailable, body)
		return
	}
	body["status"] = "healthy"
	respond.WriteJSONObject(w, http.StatusOK, body)
}

// GetCatalog returns the selectable games, teams and merchandise.
// @Summary Option catalog
// @Description Returns the option lists for the interests step. Supports If-None-Match.
// @Tags wizard
// @Produce json
// @Success 200 {object} catalog.Catalog
// @Success 304
// @Router /catalog [get]
func (h *Handler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	if respond.CheckETagMatch(r.Header.Get("If-None-Match"), h.catalogETag) {
		respond.WriteNotModified(w, h.catalogETag)
		return
	}
	respond.WriteJSON(w, h.catalogJSON, h.catalogETag, catalogTTL)
}
