// Package analytics produces the social-media and esports insights shown on
// the dashboard.
//
// No real social network or gaming platform is queried. The Simulated scorer
// generates illustrative numbers so the rest of the wizard can be exercised
// end to end; a real integration replaces it by implementing Scorer.
package analytics

import (
	"cmp"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/profile"
)

// Scorer analyses connected handles. Implementations must be safe for
// concurrent use by different sessions.
type Scorer interface {
	AnalyzeSocial(social profile.SocialMedia) profile.SocialAnalysis
	Relevance(esports profile.EsportsProfiles, interests profile.Interests) profile.Relevance
	CheckProfile(url string, interests profile.Interests) ProfileCheck
}

// ProfileCheck is the verdict on a single esports profile URL.
type ProfileCheck struct {
	Platform       string `json:"platform"`
	IsValid        bool   `json:"is_valid"`
	RelevanceScore int    `json:"relevance_score"`
	Message        string `json:"message"`
}

const (
	activityDays     = 180
	activityStepDays = 7
)

// source is a mutex-guarded random generator shared across sessions.
type source struct {
	mu sync.Mutex
	r  *rand.Rand
}

func newSource(seed uint64) *source {
	return &source{r: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// between returns a uniform int in [lo, hi].
func (s *source) between(lo, hi int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.r.IntN(hi-lo+1)
}

func (s *source) float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

func (s *source) sample(options []string, k int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	picked := slices.Clone(options)
	s.r.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	return picked[:min(k, len(picked))]
}

// Simulated is the mock Scorer. Its numbers are illustrative only.
type Simulated struct {
	rnd     *source
	catalog *catalog.Catalog
	now     func() time.Time
}

// NewSimulated creates a simulated scorer drawing names from cat.
func NewSimulated(cat *catalog.Catalog, seed uint64) *Simulated {
	return &Simulated{rnd: newSource(seed), catalog: cat, now: time.Now}
}

// AnalyzeSocial fabricates six months of weekly activity and mention counts.
// Without any handle every number is zero.
func (s *Simulated) AnalyzeSocial(social profile.SocialMedia) profile.SocialAnalysis {
	if !social.HasHandle() {
		return profile.SocialAnalysis{
			Activity:          []profile.ActivityPoint{},
			TopMentionedGames: []profile.Mention{},
			TopMentionedTeams: []profile.Mention{},
		}
	}

	a := profile.SocialAnalysis{
		EsportsPosts:    s.rnd.between(15, 50),
		TeamMentions:    s.rnd.between(5, 20),
		EngagementScore: round1(5.0 + s.rnd.float()*4.8),
	}

	today := s.now()
	for d := activityDays; d > 0; d -= activityStepDays {
		a.Activity = append(a.Activity, profile.ActivityPoint{
			Date:         today.AddDate(0, 0, -d).Format("2006-01-02"),
			Posts:        s.rnd.between(0, 5),
			Interactions: s.rnd.between(0, 10),
		})
	}

	a.TopMentionedGames = s.mentions(s.catalog.MentionGames, s.rnd.between(2, 5), 5, 30)
	a.TopMentionedTeams = s.mentions(s.catalog.MentionTeams, s.rnd.between(2, 4), 3, 15)
	return a
}

func (s *Simulated) mentions(names []string, k, lo, hi int) []profile.Mention {
	out := make([]profile.Mention, 0, k)
	for _, n := range s.rnd.sample(names, k) {
		out = append(out, profile.Mention{Name: n, Mentions: s.rnd.between(lo, hi)})
	}
	slices.SortStableFunc(out, func(a, b profile.Mention) int { return cmp.Compare(b.Mentions, a.Mentions) })
	return out
}

// Relevance scores the linked Twitch/Steam profiles against the declared
// interests on a 0–10 scale.
func (s *Simulated) Relevance(esports profile.EsportsProfiles, interests profile.Interests) profile.Relevance {
	count := esports.PlatformCount()
	if count == 0 {
		return profile.Relevance{Confidence: profile.ConfidenceLow, MatchingInterests: []string{}}
	}

	score := float64(s.rnd.between(5, 8)) + float64(count)*0.5
	matching := []string{}
	for _, g := range interests.GamesWithoutOther() {
		if s.rnd.float() > 0.3 {
			matching = append(matching, g)
			score += 0.3
		}
	}
	for _, t := range interests.TeamsWithoutOther() {
		if s.rnd.float() > 0.5 {
			matching = append(matching, t)
			score += 0.2
		}
	}
	score = round1(math.Min(10, score))

	return profile.Relevance{
		RelevanceScore:    score,
		Confidence:        confidence(score),
		MatchingInterests: matching,
	}
}

// CheckProfile identifies the platform of an esports profile URL and rates it.
func (s *Simulated) CheckProfile(url string, interests profile.Interests) ProfileCheck {
	score := s.rnd.between(1, 10)
	c := ProfileCheck{
		Platform:       Platform(url),
		IsValid:        score >= 6,
		RelevanceScore: score,
	}
	status := "not validated"
	if c.IsValid {
		status = "validated"
	}
	c.Message = fmt.Sprintf("Profile %s with a relevance score of %d/10.", status, score)
	return c
}

// Platform names the gaming platform hosting url.
func Platform(url string) string {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "twitch.tv"):
		return "Twitch"
	case strings.Contains(u, "steamcommunity.com"):
		return "Steam"
	case strings.Contains(u, "discord.gg"):
		return "Discord"
	default:
		return "Unknown"
	}
}

func confidence(score float64) string {
	switch {
	case score >= 8:
		return profile.ConfidenceHigh
	case score >= 5:
		return profile.ConfidenceMedium
	default:
		return profile.ConfidenceLow
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
