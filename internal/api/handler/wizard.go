package handler

import (
	"net/http"

	"github.com/albapepper/scoracle-fans/internal/api/respond"
	"github.com/albapepper/scoracle-fans/internal/profile"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// GetWizard returns the session's state and record.
// @Summary Current wizard state
// @Description Returns the step, progress, verification status and the profile record collected so far.
// @Tags wizard
// @Produce json
// @Param X-Session-ID header string false "Session ID (or fan_session cookie)"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} respond.ErrorResponse
// @Router /wizard [get]
func (h *Handler) GetWizard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.load(w, r)
	if !ok {
		return
	}
	respond.WriteJSONObject(w, http.StatusOK, viewOf(s, true))
}

// SubmitPersonal handles step 1.
// @Summary Submit personal information
// @Description Requires name, email and CPF. On success the wizard advances to step 2.
// @Tags wizard
// @Accept json
// @Produce json
// @Param body body profile.Personal true "Personal information"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /wizard/personal [post]
func (h *Handler) SubmitPersonal(w http.ResponseWriter, r *http.Request) {
	var in profile.Personal
	if !decodeJSON(w, r, &in) {
		return
	}
	s, ok := h.apply(w, r, func(s *wizard.Session) error {
		return h.Machine.SubmitPersonal(s, in)
	})
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, true))
	}
}

// SubmitInterests handles step 2.
// @Summary Submit interests
// @Description Always advances to step 3 unless a selection is not in the catalog.
// @Tags wizard
// @Accept json
// @Produce json
// @Param body body profile.Interests true "Interests"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Failure 422 {object} respond.ErrorResponse
// @Router /wizard/interests [post]
func (h *Handler) SubmitInterests(w http.ResponseWriter, r *http.Request) {
	var in profile.Interests
	if !decodeJSON(w, r, &in) {
		return
	}
	s, ok := h.apply(w, r, func(s *wizard.Session) error {
		return h.Machine.SubmitInterests(s, in)
	})
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, true))
	}
}

type socialRequest struct {
	SocialMedia     profile.SocialMedia     `json:"social_media"`
	EsportsProfiles profile.EsportsProfiles `json:"esports_profiles"`
}

type socialResponse struct {
	wizardView
	Result wizard.SocialResult `json:"result"`
}

// SubmitSocial handles step 4.
// @Summary Submit social and esports profiles
// @Description Merges each category that has at least one handle and returns warnings for the others. Does not advance.
// @Tags wizard
// @Accept json
// @Produce json
// @Param body body socialRequest true "Handles"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Router /wizard/social [post]
func (h *Handler) SubmitSocial(w http.ResponseWriter, r *http.Request) {
	var in socialRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	var res wizard.SocialResult
	s, ok := h.apply(w, r, func(s *wizard.Session) error {
		var err error
		res, err = h.Machine.SubmitSocial(s, in.SocialMedia, in.EsportsProfiles)
		return err
	})
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, socialResponse{wizardView: viewOf(s, true), Result: res})
	}
}

// ViewDashboard moves from step 4 to the dashboard.
// @Summary View dashboard
// @Description Advances from step 4 to step 5 regardless of what was submitted.
// @Tags wizard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} respond.ErrorResponse
// @Router /wizard/dashboard [post]
func (h *Handler) ViewDashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.apply(w, r, h.Machine.ViewDashboard)
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, false))
	}
}

// Back retreats one step.
// @Summary Previous step
// @Tags wizard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /wizard/back [post]
func (h *Handler) Back(w http.ResponseWriter, r *http.Request) {
	s, ok := h.apply(w, r, func(s *wizard.Session) error {
		h.Machine.Back(s)
		return nil
	})
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, true))
	}
}

// Reset clears the session.
// @Summary Reset wizard
// @Description Returns to step 1 and empties the profile record.
// @Tags wizard
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /wizard/reset [post]
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.apply(w, r, func(s *wizard.Session) error {
		h.Machine.Reset(s)
		return nil
	})
	if ok {
		respond.WriteJSONObject(w, http.StatusOK, viewOf(s, true))
	}
}
