// Package wizard drives the five-step fan profile flow.
//
// A Session couples the WizardState (current step and progress) with the
// profile Record it accumulates. Sessions are never shared: the transport
// layer loads one, applies a single operation through the Machine, and saves
// it back.
package wizard

import (
	"encoding/json"
	"time"

	"github.com/albapepper/scoracle-fans/internal/profile"
)

// Steps of the wizard.
const (
	StepPersonal     = 1
	StepInterests    = 2
	StepVerification = 3
	StepSocial       = 4
	StepDashboard    = 5
)

// FirstStep and LastStep bound the linear flow.
const (
	FirstStep = StepPersonal
	LastStep  = StepDashboard
)

var stepNames = map[int]string{
	StepPersonal:     "personal",
	StepInterests:    "interests",
	StepVerification: "verification",
	StepSocial:       "social",
	StepDashboard:    "dashboard",
}

// StepName returns the short label of step.
func StepName(step int) string {
	return stepNames[step]
}

// State is the position in the wizard. The zero value is step 1. Progress is
// derived from the step and cannot drift from it.
type State struct {
	offset  int // step - 1
	skipped bool
}

// NewState returns the state at step 1.
func NewState() State {
	return State{}
}

// Step returns the current step in [1,5].
func (s State) Step() int { return s.offset + FirstStep }

// Progress returns (step-1)*25.
func (s State) Progress() int { return s.offset * 25 }

// VerificationSkipped reports whether the fan bypassed document verification.
func (s State) VerificationSkipped() bool { return s.skipped }

type stateJSON struct {
	Step                int    `json:"step"`
	StepName            string `json:"step_name"`
	Progress            int    `json:"progress"`
	VerificationSkipped bool   `json:"verification_skipped"`
}

func (s State) MarshalJSON() ([]byte, error) {
	return json.Marshal(stateJSON{
		Step:                s.Step(),
		StepName:            StepName(s.Step()),
		Progress:            s.Progress(),
		VerificationSkipped: s.skipped,
	})
}

// UnmarshalJSON restores the step, clamped to [1,5]; any stored progress is
// ignored and recomputed.
func (s *State) UnmarshalJSON(data []byte) error {
	var raw stateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.offset = min(max(raw.Step, FirstStep), LastStep) - FirstStep
	s.skipped = raw.VerificationSkipped
	return nil
}

// Verification status labels.
const (
	VerificationPending   = "pending"
	VerificationValidated = "validated"
	VerificationFailed    = "failed"
	VerificationSkipped   = "skipped"
)

// Session is the state of one user's wizard run.
type Session struct {
	ID        string          `json:"id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	State     State           `json:"state"`
	Record    *profile.Record `json:"record"`
}

// NewSession creates a session at step 1 with an empty record.
func NewSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		State:     NewState(),
		Record:    profile.New(),
	}
}

// Advance moves one step forward; at the last step it does nothing.
func (s *Session) Advance() {
	if s.State.Step() < LastStep {
		s.State.offset++
	}
}

// Retreat moves one step back; at the first step it does nothing.
func (s *Session) Retreat() {
	if s.State.Step() > FirstStep {
		s.State.offset--
	}
}

// Reset returns the state to step 1 and empties the record together.
func (s *Session) Reset() {
	s.State = NewState()
	if s.Record == nil {
		s.Record = profile.New()
		return
	}
	s.Record.Reset()
}

// Verification derives the verification status from the documents category
// and the skip flag.
func (s *Session) Verification() string {
	validated := s.Record.Documents.IDValidated
	switch {
	case validated != nil && *validated:
		return VerificationValidated
	case s.State.skipped:
		return VerificationSkipped
	case validated != nil:
		return VerificationFailed
	default:
		return VerificationPending
	}
}
