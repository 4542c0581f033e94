package wizard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/albapepper/scoracle-fans/internal/analytics"
	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/profile"
	"github.com/albapepper/scoracle-fans/internal/verify"
)

var (
	// ErrWrongStep is returned when an operation is invoked outside its step.
	ErrWrongStep = errors.New("operation not available at the current step")
	// ErrVerificationRequired blocks 3→4 until the document is validated or skipped.
	ErrVerificationRequired = errors.New("document must be validated or verification skipped")
)

// StepError wraps ErrWrongStep with the step the operation needs.
type StepError struct {
	Op       string
	Required int
	Current  int
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s requires step %d, session is at step %d", e.Op, e.Required, e.Current)
}

func (e *StepError) Unwrap() error { return ErrWrongStep }

// MissingFieldsError reports required personal fields left blank. Submitted
// carries the rejected input so it can be shown again for correction.
type MissingFieldsError struct {
	Fields    []string
	Submitted profile.Personal
}

func (e *MissingFieldsError) Error() string {
	return "missing required fields: " + strings.Join(e.Fields, ", ")
}

// Extractor turns document image bytes into text, returning "" on failure.
type Extractor interface {
	Extract(ctx context.Context, image []byte) string
}

// Observer is notified of transitions and verdicts. Metrics implement it.
type Observer interface {
	ObserveTransition(op string, from, to int)
	ObserveVerdict(valid bool)
}

// Warning categories for step 4.
const (
	WarnSocialMedia     = "social_media"
	WarnEsportsProfiles = "esports_profiles"
)

// Warning is a non-blocking notice returned by SubmitSocial.
type Warning struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// SocialResult reports which step 4 categories were merged.
type SocialResult struct {
	SocialMerged  bool      `json:"social_merged"`
	EsportsMerged bool      `json:"esports_merged"`
	Warnings      []Warning `json:"warnings"`
}

// DocumentResult is the outcome of a document validation attempt.
type DocumentResult struct {
	Verdict      verify.Verdict      `json:"verdict"`
	DocumentType verify.DocumentType `json:"document_type"`
}

// Machine applies wizard operations to sessions. It holds no per-session
// state and is safe for concurrent use.
type Machine struct {
	extractor Extractor
	scorer    analytics.Scorer
	catalog   *catalog.Catalog
	observer  Observer
	logger    *slog.Logger
}

// NewMachine wires the collaborators used by the step operations.
func NewMachine(extractor Extractor, scorer analytics.Scorer, cat *catalog.Catalog, logger *slog.Logger) *Machine {
	return &Machine{
		extractor: extractor,
		scorer:    scorer,
		catalog:   cat,
		logger:    logger,
	}
}

// WithObserver sets the transition observer and returns m.
func (m *Machine) WithObserver(o Observer) *Machine {
	m.observer = o
	return m
}

// --------------------------------------------------------------------------
// Navigation
// --------------------------------------------------------------------------

// Back retreats one step.
func (m *Machine) Back(s *Session) {
	m.move(s, "back", s.Retreat)
}

// Reset clears the session back to step 1 with an empty record.
func (m *Machine) Reset(s *Session) {
	m.move(s, "reset", s.Reset)
	m.logger.Info("Wizard reset", "session", s.ID)
}

func (m *Machine) move(s *Session, op string, fn func()) {
	from := s.State.Step()
	fn()
	if m.observer != nil {
		m.observer.ObserveTransition(op, from, s.State.Step())
	}
}

func (m *Machine) advance(s *Session, op string) {
	m.move(s, op, s.Advance)
}

func requireStep(s *Session, op string, step int) error {
	if cur := s.State.Step(); cur != step {
		return &StepError{Op: op, Required: step, Current: cur}
	}
	return nil
}

// --------------------------------------------------------------------------
// Step 1: personal information
// --------------------------------------------------------------------------

// SubmitPersonal merges p and advances when name, email and CPF are all
// non-blank. Otherwise nothing is stored and a *MissingFieldsError is returned.
func (m *Machine) SubmitPersonal(s *Session, p profile.Personal) error {
	if err := requireStep(s, "submit personal", StepPersonal); err != nil {
		return err
	}

	var missing []string
	for _, f := range []struct {
		name  string
		value *string
	}{
		{"name", p.Name},
		{"email", p.Email},
		{"cpf", p.CPF},
	} {
		if strings.TrimSpace(profile.Value(f.value, "")) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &MissingFieldsError{Fields: missing, Submitted: p}
	}

	s.Record.MergePersonal(p)
	m.advance(s, "submit personal")
	return nil
}

// --------------------------------------------------------------------------
// Step 2: interests
// --------------------------------------------------------------------------

// SubmitInterests merges in and advances. The "other" free-text fields are
// kept only when the matching multi-select contains the "Other" sentinel, and
// the sliders are clamped to their ranges.
func (m *Machine) SubmitInterests(s *Session, in profile.Interests) error {
	if err := requireStep(s, "submit interests", StepInterests); err != nil {
		return err
	}
	if m.catalog != nil {
		if err := m.catalog.CheckInterests(in); err != nil {
			return err
		}
	}

	if !slices.Contains(in.FavoriteGames, profile.Other) {
		in.OtherGames = nil
	}
	if !slices.Contains(in.FavoriteTeams, profile.Other) {
		in.OtherTeams = nil
	}
	in.HoursGaming = clamp(in.HoursGaming, profile.HoursGamingMax)
	in.HoursWatching = clamp(in.HoursWatching, profile.HoursWatchingMax)

	s.Record.MergeInterests(in)
	m.advance(s, "submit interests")
	return nil
}

func clamp(v *int, hi int) *int {
	if v == nil {
		return nil
	}
	return profile.Ptr(min(max(*v, 0), hi))
}

// --------------------------------------------------------------------------
// Step 3: document verification
// --------------------------------------------------------------------------

// ValidateDocument reads the identity document and records the verdict in
// the documents category. It never advances.
func (m *Machine) ValidateDocument(ctx context.Context, s *Session, image []byte) (DocumentResult, error) {
	if err := requireStep(s, "validate document", StepVerification); err != nil {
		return DocumentResult{}, err
	}

	text := m.extractor.Extract(ctx, image)
	verdict := verify.Validate(text, s.Record.Personal)
	docType := verify.DetectDocumentType(text)

	s.Record.MergeDocuments(profile.Documents{
		IDValidated:         profile.Ptr(verdict.IsValid),
		IDValidationMessage: profile.Ptr(verdict.Message),
		IDDocumentType:      profile.Ptr(string(docType)),
	})
	if m.observer != nil {
		m.observer.ObserveVerdict(verdict.IsValid)
	}
	m.logger.Info("Document validated",
		"session", s.ID,
		"valid", verdict.IsValid,
		"document_type", docType,
		"chars", len(text))

	return DocumentResult{Verdict: verdict, DocumentType: docType}, nil
}

// ContinueFromVerification advances to step 4 once the document is validated.
func (m *Machine) ContinueFromVerification(s *Session) error {
	if err := requireStep(s, "continue", StepVerification); err != nil {
		return err
	}
	if !profile.Value(s.Record.Documents.IDValidated, false) {
		return ErrVerificationRequired
	}
	m.advance(s, "continue")
	return nil
}

// SkipVerification advances to step 4 without touching the documents category.
func (m *Machine) SkipVerification(s *Session) error {
	if err := requireStep(s, "skip verification", StepVerification); err != nil {
		return err
	}
	s.State.skipped = true
	m.advance(s, "skip verification")
	m.logger.Info("Document verification skipped", "session", s.ID)
	return nil
}

// --------------------------------------------------------------------------
// Step 4: social media and esports profiles
// --------------------------------------------------------------------------

// SubmitSocial merges each category independently, only when it carries at
// least one non-empty handle, and attaches the simulated analysis. A category
// without handles yields a warning. It never advances; see ViewDashboard.
func (m *Machine) SubmitSocial(s *Session, social profile.SocialMedia, esports profile.EsportsProfiles) (SocialResult, error) {
	if err := requireStep(s, "submit social", StepSocial); err != nil {
		return SocialResult{}, err
	}
	social.Analysis = nil
	esports.Relevance = nil

	res := SocialResult{Warnings: []Warning{}}

	if social.HasHandle() {
		s.Record.MergeSocialMedia(social)
		analysis := m.scorer.AnalyzeSocial(social)
		s.Record.SocialMedia.Analysis = &analysis
		res.SocialMerged = true
	} else {
		res.Warnings = append(res.Warnings, Warning{
			Category: WarnSocialMedia,
			Message:  "Please provide at least one social media profile.",
		})
	}

	if esports.HasHandle() {
		s.Record.MergeEsportsProfiles(esports)
		relevance := m.scorer.Relevance(esports, s.Record.Interests)
		s.Record.EsportsProfiles.Relevance = &relevance
		res.EsportsMerged = true
	} else {
		res.Warnings = append(res.Warnings, Warning{
			Category: WarnEsportsProfiles,
			Message:  "Please provide at least one esports profile.",
		})
	}

	m.logger.Info("Social profiles submitted",
		"session", s.ID,
		"social_merged", res.SocialMerged,
		"esports_merged", res.EsportsMerged)
	return res, nil
}

// ViewDashboard moves from step 4 to the dashboard unconditionally.
func (m *Machine) ViewDashboard(s *Session) error {
	if err := requireStep(s, "view dashboard", StepSocial); err != nil {
		return err
	}
	m.advance(s, "view dashboard")
	return nil
}
