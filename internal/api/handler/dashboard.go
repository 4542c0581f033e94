package handler

import (
	"net/http"
	"strings"

	"github.com/albapepper/scoracle-fans/internal/api/respond"
	"github.com/albapepper/scoracle-fans/internal/profile"
)

// GetDashboard returns the dashboard summary.
// @Summary Dashboard summary
// @Description Greeting, verification badge, interest and activity series, engagement radar, connected accounts and recommendations. Reports has_profile=false until a name is declared.
// @Tags dashboard
// @Produce json
// @Success 200 {object} analytics.Dashboard
// @Failure 404 {object} respond.ErrorResponse
// @Router /wizard/dashboard [get]
func (h *Handler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, h.Summarizer.Dashboard(s.Record, s.Verification()))
}

// Export downloads the profile record.
// @Summary Export profile
// @Description Returns the profile record as an indented JSON attachment.
// @Tags dashboard
// @Produce json
// @Success 200 {object} profile.Record
// @Failure 404 {object} respond.ErrorResponse
// @Router /wizard/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	data, err := s.Record.Export()
	if err != nil {
		h.Logger.Error("Failed to export profile", "session", s.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Could not export profile")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="fan_profile.json"`)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

type profileCheckRequest struct {
	URL string `json:"url"`
}

// CheckEsportsProfile rates an esports profile link.
// @Summary Check esports profile URL
// @Description Detects the platform and returns a simulated relevance score. Uses the session's interests when a session is supplied.
// @Tags esports
// @Accept json
// @Produce json
// @Param body body profileCheckRequest true "Profile URL"
// @Success 200 {object} analytics.ProfileCheck
// @Failure 400 {object} respond.ErrorResponse
// @Router /esports/profile-check [post]
func (h *Handler) CheckEsportsProfile(w http.ResponseWriter, r *http.Request) {
	var in profileCheckRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	url := strings.TrimSpace(in.URL)
	if url == "" {
		respond.WriteError(w, http.StatusBadRequest, "MISSING_URL", "url is required")
		return
	}

	var interests profile.Interests
	if id := sessionID(r); id != "" {
		if s, err := h.Store.Get(r.Context(), id); err == nil {
			interests = s.Record.Interests
		}
	}
	respond.WriteJSONObject(w, http.StatusOK, h.Scorer.CheckProfile(url, interests))
}
