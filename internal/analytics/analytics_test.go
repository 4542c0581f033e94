package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/albapepper/scoracle-fans/internal/catalog"
	"github.com/albapepper/scoracle-fans/internal/profile"
)

func newTestScorer() *Simulated {
	s := NewSimulated(catalog.Default(), 42)
	s.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }
	return s
}

func TestAnalyzeSocialWithoutHandles(t *testing.T) {
	a := newTestScorer().AnalyzeSocial(profile.SocialMedia{TwitterUsername: profile.Ptr("")})
	assert.Zero(t, a.EsportsPosts)
	assert.Zero(t, a.TeamMentions)
	assert.Zero(t, a.EngagementScore)
	assert.Empty(t, a.Activity)
	assert.NotNil(t, a.Activity)
}

func TestAnalyzeSocialRanges(t *testing.T) {
	s := newTestScorer()
	for i := 0; i < 50; i++ {
		a := s.AnalyzeSocial(profile.SocialMedia{TwitterUsername: profile.Ptr("jane")})

		assert.GreaterOrEqual(t, a.EsportsPosts, 15)
		assert.LessOrEqual(t, a.EsportsPosts, 50)
		assert.GreaterOrEqual(t, a.TeamMentions, 5)
		assert.LessOrEqual(t, a.TeamMentions, 20)
		assert.GreaterOrEqual(t, a.EngagementScore, 5.0)
		assert.LessOrEqual(t, a.EngagementScore, 9.8)

		require.Len(t, a.Activity, 26)
		assert.Equal(t, "2024-12-03", a.Activity[0].Date)
		assert.Equal(t, "2025-05-27", a.Activity[25].Date)
		for _, p := range a.Activity {
			assert.LessOrEqual(t, p.Posts, 5)
			assert.LessOrEqual(t, p.Interactions, 10)
		}

		assert.GreaterOrEqual(t, len(a.TopMentionedGames), 2)
		assert.LessOrEqual(t, len(a.TopMentionedGames), 5)
		assert.GreaterOrEqual(t, len(a.TopMentionedTeams), 2)
		assert.LessOrEqual(t, len(a.TopMentionedTeams), 4)
		for i := 1; i < len(a.TopMentionedGames); i++ {
			assert.GreaterOrEqual(t, a.TopMentionedGames[i-1].Mentions, a.TopMentionedGames[i].Mentions)
		}
	}
}

func TestRelevanceWithoutPlatforms(t *testing.T) {
	r := newTestScorer().Relevance(
		profile.EsportsProfiles{OtherPlatforms: profile.Ptr("Epic: jane")},
		profile.Interests{FavoriteGames: []string{"Valorant"}},
	)
	assert.Equal(t, profile.Relevance{Confidence: profile.ConfidenceLow, MatchingInterests: []string{}}, r)
}

func TestRelevanceBounds(t *testing.T) {
	s := newTestScorer()
	esports := profile.EsportsProfiles{TwitchUsername: profile.Ptr("jane_tv"), SteamProfile: profile.Ptr("jane")}
	interests := profile.Interests{
		FavoriteGames: []string{"Valorant", "Dota 2", profile.Other, "Fortnite", "Overwatch", "FIFA"},
		FavoriteTeams: []string{"FURIA", "LOUD", profile.Other},
	}
	for i := 0; i < 100; i++ {
		r := s.Relevance(esports, interests)
		assert.GreaterOrEqual(t, r.RelevanceScore, 6.0)
		assert.LessOrEqual(t, r.RelevanceScore, 10.0)
		assert.NotContains(t, r.MatchingInterests, profile.Other)
		assert.Equal(t, confidence(r.RelevanceScore), r.Confidence)
	}
}

func TestConfidence(t *testing.T) {
	assert.Equal(t, profile.ConfidenceHigh, confidence(8))
	assert.Equal(t, profile.ConfidenceMedium, confidence(7.9))
	assert.Equal(t, profile.ConfidenceMedium, confidence(5))
	assert.Equal(t, profile.ConfidenceLow, confidence(4.9))
}

func TestCheckProfile(t *testing.T) {
	s := newTestScorer()
	for i := 0; i < 30; i++ {
		c := s.CheckProfile("https://www.twitch.tv/jane_tv", profile.Interests{})
		assert.Equal(t, "Twitch", c.Platform)
		assert.Equal(t, c.RelevanceScore >= 6, c.IsValid)
		assert.Contains(t, c.Message, "/10.")
	}
	assert.Equal(t, "Steam", Platform("https://steamcommunity.com/id/jane"))
	assert.Equal(t, "Discord", Platform("https://discord.gg/furia"))
	assert.Equal(t, "Unknown", Platform("https://example.com/jane"))
}

func TestInterestChart(t *testing.T) {
	s := NewSummarizer(7)

	empty := s.InterestChart(profile.Interests{FavoriteGames: []string{profile.Other}})
	assert.True(t, empty.NoData)
	assert.Empty(t, empty.Bars)

	c := s.InterestChart(profile.Interests{
		FavoriteGames: []string{"Valorant", profile.Other},
		FavoriteTeams: []string{"FURIA"},
	})
	assert.False(t, c.NoData)
	require.Len(t, c.Bars, 2)
	assert.Equal(t, "Valorant", c.Bars[0].Category)
	assert.Equal(t, SeriesGame, c.Bars[0].Type)
	assert.Equal(t, SeriesTeam, c.Bars[1].Type)
	for _, b := range c.Bars {
		assert.GreaterOrEqual(t, b.Score, 7)
		assert.LessOrEqual(t, b.Score, 10)
	}
}

func TestActivityTimelineOf(t *testing.T) {
	assert.True(t, ActivityTimelineOf(nil).NoData)
	assert.True(t, ActivityTimelineOf(&profile.SocialAnalysis{}).NoData)

	tl := ActivityTimelineOf(&profile.SocialAnalysis{Activity: []profile.ActivityPoint{
		{Date: "2025-01-01", Posts: 1, Interactions: 4},
		{Date: "2025-01-08", Posts: 3, Interactions: 0},
	}})
	assert.False(t, tl.NoData)
	assert.Equal(t, []string{"2025-01-01", "2025-01-08"}, tl.Dates)
	assert.Equal(t, []int{1, 3}, tl.Posts)
	assert.Equal(t, []int{4, 0}, tl.Interactions)
}

func TestEngagementRadar(t *testing.T) {
	s := NewSummarizer(3)
	r := s.EngagementRadar(nil, profile.Interests{
		FavoriteGames:  []string{"a", "b", "c", "d", "e", "f"},
		FavoriteTeams:  []string{"FURIA"},
		AttendedEvents: profile.Ptr("IEM Rio\nCBLOL"),
	})
	require.Len(t, r.Axes, 6)
	assert.Equal(t, 0.0, r.Axes[0].Score)
	assert.Equal(t, 10.0, r.Axes[1].Score)
	assert.Equal(t, 2.5, r.Axes[2].Score)
	assert.Equal(t, 4.0, r.Axes[3].Score)
}

func TestDashboard(t *testing.T) {
	s := NewSummarizer(1)

	none := s.Dashboard(profile.New(), "pending")
	assert.False(t, none.HasProfile)
	assert.Equal(t, "pending", none.Verification)

	r := profile.New()
	r.MergePersonal(profile.Personal{
		Name:  profile.Ptr("Jane Doe"),
		Email: profile.Ptr("jane@example.com"),
		City:  profile.Ptr("Recife"),
		State: profile.Ptr("PE"),
	})
	r.MergeDocuments(profile.Documents{IDValidated: profile.Ptr(true)})
	r.MergeSocialMedia(profile.SocialMedia{InstagramUsername: profile.Ptr("jane.ig")})
	r.MergeEsportsProfiles(profile.EsportsProfiles{TwitchUsername: profile.Ptr("jane_tv")})

	d := s.Dashboard(r, "validated")
	assert.True(t, d.HasProfile)
	assert.True(t, d.Verified)
	assert.Equal(t, "Recife, PE", d.Location)
	assert.True(t, d.Interests.NoData)
	assert.True(t, d.Activity.NoData)
	assert.Equal(t, []profile.Handle{{Platform: "Instagram", Value: "jane.ig"}}, d.SocialAccounts)
	assert.Equal(t, []profile.Handle{{Platform: "Twitch", Value: "jane_tv"}}, d.EsportsAccounts)
	assert.NotEmpty(t, d.Recommendations.Events)
}
