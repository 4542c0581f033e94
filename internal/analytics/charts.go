package analytics

import (
	"math"
	"strings"

	"github.com/albapepper/scoracle-fans/internal/profile"
)

// Chart series types.
const (
	SeriesGame = "Game"
	SeriesTeam = "Team"
)

// InterestBar is one bar of the interests chart.
type InterestBar struct {
	Category string `json:"category"`
	Score    int    `json:"score"` // 1–10
	Type     string `json:"type"`  // Game or Team
}

// InterestChart is the data behind the "your esports interests" chart.
type InterestChart struct {
	NoData bool          `json:"no_data"`
	Bars   []InterestBar `json:"bars"`
}

// ActivityTimeline is the data behind the social activity line chart.
type ActivityTimeline struct {
	NoData       bool     `json:"no_data"`
	Dates        []string `json:"dates"`
	Posts        []int    `json:"posts"`
	Interactions []int    `json:"interactions"`
}

// RadarAxis is one spoke of the engagement radar, scored 0–10.
type RadarAxis struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// EngagementRadar is the data behind the fan engagement radar chart.
type EngagementRadar struct {
	Axes []RadarAxis `json:"axes"`
}

// Summarizer turns profile data into display-ready series. The interest and
// content-creation scores are simulated like the rest of this package.
type Summarizer struct {
	rnd *source
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(seed uint64) *Summarizer {
	return &Summarizer{rnd: newSource(seed)}
}

// InterestChart scores each favorite game and team; "Other" is never charted.
func (s *Summarizer) InterestChart(in profile.Interests) InterestChart {
	c := InterestChart{Bars: []InterestBar{}}
	for _, g := range in.GamesWithoutOther() {
		c.Bars = append(c.Bars, InterestBar{Category: g, Score: s.rnd.between(7, 10), Type: SeriesGame})
	}
	for _, t := range in.TeamsWithoutOther() {
		c.Bars = append(c.Bars, InterestBar{Category: t, Score: s.rnd.between(7, 10), Type: SeriesTeam})
	}
	c.NoData = len(c.Bars) == 0
	return c
}

// ActivityTimelineOf flattens the weekly activity of a social analysis. A nil
// analysis or an empty activity list reports NoData.
func ActivityTimelineOf(a *profile.SocialAnalysis) ActivityTimeline {
	t := ActivityTimeline{Dates: []string{}, Posts: []int{}, Interactions: []int{}}
	if a == nil || len(a.Activity) == 0 {
		t.NoData = true
		return t
	}
	for _, p := range a.Activity {
		t.Dates = append(t.Dates, p.Date)
		t.Posts = append(t.Posts, p.Posts)
		t.Interactions = append(t.Interactions, p.Interactions)
	}
	return t
}

// EngagementRadar scores six engagement aspects. Missing analysis counts as
// zero social presence.
func (s *Summarizer) EngagementRadar(a *profile.SocialAnalysis, in profile.Interests) EngagementRadar {
	social := 0.0
	if a != nil {
		social = math.Min(10, a.EngagementScore)
	}
	return EngagementRadar{Axes: []RadarAxis{
		{Name: "Social Media Presence", Score: social},
		{Name: "Game Knowledge", Score: math.Min(10, float64(len(in.FavoriteGames))*2)},
		{Name: "Team Support", Score: math.Min(10, float64(len(in.FavoriteTeams))*2.5)},
		{Name: "Event Attendance", Score: math.Min(10, float64(len(in.Events()))*2)},
		{Name: "Content Creation", Score: float64(s.rnd.between(3, 8))},
		{Name: "Community Involvement", Score: float64(s.rnd.between(4, 9))},
	}}
}

// --------------------------------------------------------------------------
// Dashboard
// --------------------------------------------------------------------------

// Recommendations are the fixed suggestion lists shown on the dashboard.
type Recommendations struct {
	Events    []string `json:"events"`
	Products  []string `json:"products"`
	Community []string `json:"community"`
}

var defaultRecommendations = Recommendations{
	Events:    []string{"FURIA vs. Liquid", "ESL Pro League", "Gamescom Latam"},
	Products:  []string{"Limited Edition Team Jersey", "Gaming Peripherals Bundle", "Championship Collectibles"},
	Community: []string{"Join the Official Discord", "Follow the Team on Social Media", "Enter Fan Contests"},
}

// Dashboard is everything the final step displays.
type Dashboard struct {
	HasProfile      bool               `json:"has_profile"`
	Name            string             `json:"name,omitempty"`
	Email           string             `json:"email,omitempty"`
	Location        string             `json:"location,omitempty"`
	Verified        bool               `json:"verified"`
	Verification    string             `json:"verification"`
	Interests       InterestChart      `json:"interests"`
	Activity        ActivityTimeline   `json:"activity"`
	Engagement      EngagementRadar    `json:"engagement"`
	SocialAccounts  []profile.Handle   `json:"social_accounts"`
	EsportsAccounts []profile.Handle   `json:"esports_accounts"`
	Relevance       *profile.Relevance `json:"relevance,omitempty"`
	Recommendations Recommendations    `json:"recommendations"`
}

// Dashboard summarises r. verification is the wizard's verification status
// label. Without a declared name only HasProfile=false is reported.
func (s *Summarizer) Dashboard(r *profile.Record, verification string) Dashboard {
	name := profile.Value(r.Personal.Name, "")
	if name == "" {
		return Dashboard{Verification: verification}
	}
	analysis := r.SocialMedia.Analysis
	return Dashboard{
		HasProfile:      true,
		Name:            name,
		Email:           profile.Value(r.Personal.Email, ""),
		Location:        location(r.Personal),
		Verified:        profile.Value(r.Documents.IDValidated, false),
		Verification:    verification,
		Interests:       s.InterestChart(r.Interests),
		Activity:        ActivityTimelineOf(analysis),
		Engagement:      s.EngagementRadar(analysis, r.Interests),
		SocialAccounts:  r.SocialMedia.Handles(),
		EsportsAccounts: r.EsportsProfiles.Handles(),
		Relevance:       r.EsportsProfiles.Relevance,
		Recommendations: defaultRecommendations,
	}
}

func location(p profile.Personal) string {
	parts := make([]string, 0, 2)
	for _, v := range []string{profile.Value(p.City, ""), profile.Value(p.State, "")} {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ", ")
}
