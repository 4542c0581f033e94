// Package profile holds the fan profile accumulated across the wizard steps.
//
// Every category is a typed record whose fields are optional: a nil pointer
// (or nil slice) means the field was never submitted. Categories are updated
// by merge, so a field present in an update overwrites the stored value while
// fields absent from the update are kept.
package profile

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Other is the sentinel option that unlocks a free-text field next to a
// multi-select.
const Other = "Other"

// Slider bounds and defaults for the interests step.
const (
	HoursGamingMax       = 50
	HoursGamingDefault   = 10
	HoursWatchingMax     = 30
	HoursWatchingDefault = 5
)

// --------------------------------------------------------------------------
// Categories
// --------------------------------------------------------------------------

// Personal is the declared identity of the fan.
type Personal struct {
	Name      *string `json:"name,omitempty"`
	Email     *string `json:"email,omitempty"`
	CPF       *string `json:"cpf,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Address   *string `json:"address,omitempty"`
	City      *string `json:"city,omitempty"`
	State     *string `json:"state,omitempty"`
	BirthDate *string `json:"birth_date,omitempty"` // YYYY-MM-DD
}

// Interests captures games, teams, events and habits.
type Interests struct {
	FavoriteGames  []string `json:"favorite_games,omitempty"`
	OtherGames     *string  `json:"other_games,omitempty"`
	FavoriteTeams  []string `json:"favorite_teams,omitempty"`
	OtherTeams     *string  `json:"other_teams,omitempty"`
	AttendedEvents *string  `json:"attended_events,omitempty"` // one event per line
	HoursGaming    *int     `json:"hours_gaming,omitempty"`
	HoursWatching  *int     `json:"hours_watching,omitempty"`
	Merchandise    []string `json:"merchandise,omitempty"`
}

// Documents holds the outcome of the identity document check.
type Documents struct {
	IDValidated         *bool   `json:"id_validated,omitempty"`
	IDValidationMessage *string `json:"id_validation_message,omitempty"`
	IDDocumentType      *string `json:"id_document_type,omitempty"`
}

// SocialMedia holds social network handles and their simulated analysis.
type SocialMedia struct {
	TwitterUsername   *string         `json:"twitter_username,omitempty"`
	InstagramUsername *string         `json:"instagram_username,omitempty"`
	FacebookProfile   *string         `json:"facebook_profile,omitempty"`
	DiscordUsername   *string         `json:"discord_username,omitempty"`
	Analysis          *SocialAnalysis `json:"analysis,omitempty"`
}

// EsportsProfiles holds gaming platform handles and their simulated relevance.
type EsportsProfiles struct {
	TwitchUsername *string    `json:"twitch_username,omitempty"`
	SteamProfile   *string    `json:"steam_profile,omitempty"`
	OtherPlatforms *string    `json:"other_platforms,omitempty"` // "Platform: user" per line
	Relevance      *Relevance `json:"relevance,omitempty"`
}

// SocialAnalysis is the engagement summary produced for the social handles.
type SocialAnalysis struct {
	EsportsPosts      int             `json:"esports_posts"`
	TeamMentions      int             `json:"team_mentions"`
	EngagementScore   float64         `json:"engagement_score"`
	Activity          []ActivityPoint `json:"activity"`
	TopMentionedGames []Mention       `json:"top_mentioned_games"`
	TopMentionedTeams []Mention       `json:"top_mentioned_teams"`
}

// ActivityPoint is one weekly sample of social activity.
type ActivityPoint struct {
	Date         string `json:"date"` // YYYY-MM-DD
	Posts        int    `json:"posts"`
	Interactions int    `json:"interactions"`
}

// Mention counts how often a game or team was mentioned.
type Mention struct {
	Name     string `json:"name"`
	Mentions int    `json:"mentions"`
}

// Confidence levels reported with a relevance score.
const (
	ConfidenceLow    = "Low"
	ConfidenceMedium = "Medium"
	ConfidenceHigh   = "High"
)

// Relevance rates how well the esports profiles match declared interests.
type Relevance struct {
	RelevanceScore    float64  `json:"relevance_score"`
	Confidence        string   `json:"confidence"`
	MatchingInterests []string `json:"matching_interests"`
}

// --------------------------------------------------------------------------
// Record
// --------------------------------------------------------------------------

// Record is the accumulated profile of one wizard session.
type Record struct {
	Personal        Personal        `json:"personal"`
	Interests       Interests       `json:"interests"`
	Documents       Documents       `json:"documents"`
	SocialMedia     SocialMedia     `json:"social_media"`
	EsportsProfiles EsportsProfiles `json:"esports_profiles"`
}

// New returns a record with five empty categories.
func New() *Record {
	return &Record{}
}

// Reset empties every category.
func (r *Record) Reset() {
	*r = Record{}
}

// IsEmpty reports whether no category holds any field.
func (r *Record) IsEmpty() bool {
	return r.Personal == (Personal{}) &&
		r.Interests.isEmpty() &&
		r.Documents == (Documents{}) &&
		r.SocialMedia == (SocialMedia{}) &&
		r.EsportsProfiles == (EsportsProfiles{})
}

// MergePersonal merges the present fields of p into the personal category.
func (r *Record) MergePersonal(p Personal) {
	dst := &r.Personal
	set(&dst.Name, p.Name)
	set(&dst.Email, p.Email)
	set(&dst.CPF, p.CPF)
	set(&dst.Phone, p.Phone)
	set(&dst.Address, p.Address)
	set(&dst.City, p.City)
	set(&dst.State, p.State)
	set(&dst.BirthDate, p.BirthDate)
}

// MergeInterests merges the present fields of in into the interests category.
func (r *Record) MergeInterests(in Interests) {
	dst := &r.Interests
	setSlice(&dst.FavoriteGames, in.FavoriteGames)
	set(&dst.OtherGames, in.OtherGames)
	setSlice(&dst.FavoriteTeams, in.FavoriteTeams)
	set(&dst.OtherTeams, in.OtherTeams)
	set(&dst.AttendedEvents, in.AttendedEvents)
	set(&dst.HoursGaming, in.HoursGaming)
	set(&dst.HoursWatching, in.HoursWatching)
	setSlice(&dst.Merchandise, in.Merchandise)
}

// MergeDocuments merges the present fields of d into the documents category.
func (r *Record) MergeDocuments(d Documents) {
	dst := &r.Documents
	set(&dst.IDValidated, d.IDValidated)
	set(&dst.IDValidationMessage, d.IDValidationMessage)
	set(&dst.IDDocumentType, d.IDDocumentType)
}

// MergeSocialMedia merges the present fields of s into the social media category.
func (r *Record) MergeSocialMedia(s SocialMedia) {
	dst := &r.SocialMedia
	set(&dst.TwitterUsername, s.TwitterUsername)
	set(&dst.InstagramUsername, s.InstagramUsername)
	set(&dst.FacebookProfile, s.FacebookProfile)
	set(&dst.DiscordUsername, s.DiscordUsername)
	if s.Analysis != nil {
		a := *s.Analysis
		dst.Analysis = &a
	}
}

// MergeEsportsProfiles merges the present fields of e into the esports category.
func (r *Record) MergeEsportsProfiles(e EsportsProfiles) {
	dst := &r.EsportsProfiles
	set(&dst.TwitchUsername, e.TwitchUsername)
	set(&dst.SteamProfile, e.SteamProfile)
	set(&dst.OtherPlatforms, e.OtherPlatforms)
	if e.Relevance != nil {
		rel := *e.Relevance
		dst.Relevance = &rel
	}
}

// Export serialises the record as UTF-8 JSON indented with four spaces.
func (r *Record) Export() ([]byte, error) {
	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return nil, fmt.Errorf("marshal profile: %w", err)
	}
	return data, nil
}

// --------------------------------------------------------------------------
// Category helpers
// --------------------------------------------------------------------------

func (in Interests) isEmpty() bool {
	return in.FavoriteGames == nil && in.OtherGames == nil &&
		in.FavoriteTeams == nil && in.OtherTeams == nil &&
		in.AttendedEvents == nil && in.HoursGaming == nil &&
		in.HoursWatching == nil && in.Merchandise == nil
}

// GamesWithoutOther returns the favorite games minus the "Other" sentinel,
// preserving order.
func (in Interests) GamesWithoutOther() []string {
	return withoutOther(in.FavoriteGames)
}

// TeamsWithoutOther returns the favorite teams minus the "Other" sentinel,
// preserving order.
func (in Interests) TeamsWithoutOther() []string {
	return withoutOther(in.FavoriteTeams)
}

// Events splits the attended events text into non-blank lines.
func (in Interests) Events() []string {
	var events []string
	for _, line := range strings.Split(Value(in.AttendedEvents, ""), "\n") {
		if e := strings.TrimSpace(line); e != "" {
			events = append(events, e)
		}
	}
	return events
}

// HasHandle reports whether at least one social handle is non-empty.
func (s SocialMedia) HasHandle() bool {
	return nonEmpty(s.TwitterUsername, s.InstagramUsername, s.FacebookProfile, s.DiscordUsername)
}

// Handles returns the non-empty social handles keyed by platform label.
func (s SocialMedia) Handles() []Handle {
	return handles(
		Handle{Platform: "Twitter", Value: Value(s.TwitterUsername, "")},
		Handle{Platform: "Instagram", Value: Value(s.InstagramUsername, "")},
		Handle{Platform: "Facebook", Value: Value(s.FacebookProfile, "")},
		Handle{Platform: "Discord", Value: Value(s.DiscordUsername, "")},
	)
}

// HasHandle reports whether at least one esports handle is non-empty.
func (e EsportsProfiles) HasHandle() bool {
	return nonEmpty(e.TwitchUsername, e.SteamProfile, e.OtherPlatforms)
}

// PlatformCount counts the linked Twitch and Steam profiles.
func (e EsportsProfiles) PlatformCount() int {
	n := 0
	for _, v := range []*string{e.TwitchUsername, e.SteamProfile} {
		if Value(v, "") != "" {
			n++
		}
	}
	return n
}

// Handles returns the non-empty Twitch and Steam handles.
func (e EsportsProfiles) Handles() []Handle {
	return handles(
		Handle{Platform: "Twitch", Value: Value(e.TwitchUsername, "")},
		Handle{Platform: "Steam", Value: Value(e.SteamProfile, "")},
	)
}

// Handle is a connected account shown on the dashboard.
type Handle struct {
	Platform string `json:"platform"`
	Value    string `json:"value"`
}

// --------------------------------------------------------------------------
// Field helpers
// --------------------------------------------------------------------------

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T {
	return &v
}

// Value dereferences p, falling back to def when the field is absent.
func Value[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func set[T any](dst **T, src *T) {
	if src != nil {
		v := *src
		*dst = &v
	}
}

func setSlice(dst *[]string, src []string) {
	if src != nil {
		*dst = append([]string{}, src...)
	}
}

func nonEmpty(fields ...*string) bool {
	for _, f := range fields {
		if Value(f, "") != "" {
			return true
		}
	}
	return false
}

func handles(all ...Handle) []Handle {
	out := make([]Handle, 0, len(all))
	for _, h := range all {
		if h.Value != "" {
			out = append(out, h)
		}
	}
	return out
}

func withoutOther(options []string) []string {
	out := make([]string, 0, len(options))
	for _, o := range options {
		if o != Other {
			out = append(out, o)
		}
	}
	return out
}

