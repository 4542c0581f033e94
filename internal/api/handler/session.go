package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/albapepper/scoracle-fans/internal/api/respond"
	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/session"
	"github.com/albapepper/scoracle-fans/internal/wizard"
)

// Session identification.
const (
	SessionCookie = "fan_session"
	SessionHeader = "X-Session-ID"
)

// wizardView is the common response for session-bound endpoints.
type wizardView struct {
	SessionID    string       `json:"session_id"`
	State        wizard.State `json:"state"`
	Verification string       `json:"verification"`
	Record       interface{}  `json:"record,omitempty"`
}

func viewOf(s *wizard.Session, withRecord bool) wizardView {
	v := wizardView{
		SessionID:    s.ID,
		State:        s.State,
		Verification: s.Verification(),
	}
	if withRecord {
		v.Record = s.Record
	}
	return v
}

// sessionID reads the session ID from the header, falling back to the cookie.
func sessionID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		return id
	}
	if c, err := r.Cookie(SessionCookie); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// CreateSession starts a wizard run.
// @Summary Create session
// @Description Starts a new wizard session at step 1 and sets the fan_session cookie.
// @Tags session
// @Produce json
// @Success 201 {object} map[string]interface{}
// @Failure 500 {object} respond.ErrorResponse
// @Router /sessions [post]
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.Store.Create(r.Context())
	if err != nil {
		h.Logger.Error("Failed to create session", "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Could not create session")
		return
	}
	if h.Created != nil {
		h.Created.Inc()
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    s.ID,
		Path:     "/",
		MaxAge:   int(h.Config.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.Config.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	w.Header().Set(SessionHeader, s.ID)
	respond.WriteJSONObject(w, http.StatusCreated, viewOf(s, false))
}

// load fetches the caller's session, writing the error response itself when
// it returns false.
func (h *Handler) load(w http.ResponseWriter, r *http.Request) (*wizard.Session, bool) {
	id := sessionID(r)
	if id == "" {
		respond.WriteErrorDetail(w, http.StatusNotFound, "SESSION_NOT_FOUND",
			"No session", "Create one with POST /api/v1/sessions")
		return nil, false
	}
	s, err := h.Store.Get(r.Context(), id)
	if errors.Is(err, session.ErrNotFound) {
		respond.WriteError(w, http.StatusNotFound, "SESSION_NOT_FOUND", "Session not found or expired")
		return nil, false
	}
	if err != nil {
		h.Logger.Error("Failed to load session", "session", id, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Could not load session")
		return nil, false
	}
	return s, true
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request, s *wizard.Session) bool {
	if err := h.Store.Save(r.Context(), s); err != nil {
		h.Logger.Error("Failed to save session", "session", s.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "SESSION_STORE_ERROR", "Could not save session")
		return false
	}
	return true
}

// apply runs op on the caller's session and saves it when op succeeds. The
// session is locked for the whole cycle. The caller writes the success
// response.
func (h *Handler) apply(w http.ResponseWriter, r *http.Request, op func(*wizard.Session) error) (*wizard.Session, bool) {
	unlock := h.locks.lock(sessionID(r))
	defer unlock()

	s, ok := h.load(w, r)
	if !ok {
		return nil, false
	}
	if err := op(s); err != nil {
		h.writeWizardError(w, s, err)
		return nil, false
	}
	if !h.save(w, r, s) {
		return nil, false
	}
	return s, true
}

func (h *Handler) writeWizardError(w http.ResponseWriter, s *wizard.Session, err error) {
	var missing *wizard.MissingFieldsError
	var unknown *catalog.UnknownOptionError
	var step *wizard.StepError

	switch {
	case errors.As(err, &missing):
		respond.WriteErrorBody(w, http.StatusUnprocessableEntity, respond.ErrorBody{
			Code:      "MISSING_FIELDS",
			Message:   "Please fill in all required fields.",
			Detail:    err.Error(),
			Fields:    missing.Fields,
			Submitted: missing.Submitted,
		})
	case errors.As(err, &unknown):
		respond.WriteErrorBody(w, http.StatusUnprocessableEntity, respond.ErrorBody{
			Code:    "UNKNOWN_OPTION",
			Message: "Selection contains an unknown option.",
			Detail:  err.Error(),
			Fields:  []string{unknown.Field},
		})
	case errors.As(err, &step):
		respond.WriteErrorDetail(w, http.StatusConflict, "WRONG_STEP",
			"Operation not available at the current step", err.Error())
	case errors.Is(err, wizard.ErrVerificationRequired):
		respond.WriteErrorDetail(w, http.StatusConflict, "VERIFICATION_REQUIRED",
			"Validate your document or skip verification to continue", err.Error())
	default:
		h.Logger.Error("Wizard operation failed", "session", s.ID, "error", err)
		respond.WriteError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Unexpected error")
	}
}

// decodeJSON reads a bounded JSON body into v, writing a 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.WriteErrorDetail(w, http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", err.Error())
		return false
	}
	return true
}
