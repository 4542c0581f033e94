package profile

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeInterestsSecondWriteWins(t *testing.T) {
	r := New()
	r.MergeInterests(Interests{
		FavoriteGames:  []string{"Valorant", "Dota 2"},
		AttendedEvents: Ptr("IEM Rio"),
		HoursGaming:    Ptr(12),
	})
	r.MergeInterests(Interests{
		FavoriteGames: []string{"Counter-Strike"},
		HoursGaming:   Ptr(30),
	})

	assert.Equal(t, []string{"Counter-Strike"}, r.Interests.FavoriteGames)
	assert.Equal(t, 30, Value(r.Interests.HoursGaming, 0))
	assert.Equal(t, "IEM Rio", Value(r.Interests.AttendedEvents, ""), "unrelated key must persist")
}

func TestMergePersonalKeepsAbsentFields(t *testing.T) {
	r := New()
	r.MergePersonal(Personal{Name: Ptr("Jane Doe"), City: Ptr("São Paulo")})
	r.MergePersonal(Personal{Name: Ptr("Jane Q. Doe"), Email: Ptr("jane@example.com")})

	assert.Equal(t, "Jane Q. Doe", Value(r.Personal.Name, ""))
	assert.Equal(t, "São Paulo", Value(r.Personal.City, ""))
	assert.Equal(t, "jane@example.com", Value(r.Personal.Email, ""))
	assert.Nil(t, r.Personal.CPF)
}

func TestMergeCopiesInput(t *testing.T) {
	games := []string{"Valorant"}
	name := "Jane Doe"
	r := New()
	r.MergeInterests(Interests{FavoriteGames: games})
	r.MergePersonal(Personal{Name: &name})

	games[0] = "FIFA"
	name = "mutated"
	assert.Equal(t, []string{"Valorant"}, r.Interests.FavoriteGames)
	assert.Equal(t, "Jane Doe", Value(r.Personal.Name, ""))
}

func TestMergeExplicitEmptySelectionOverwrites(t *testing.T) {
	r := New()
	r.MergeInterests(Interests{Merchandise: []string{"Collectibles"}})
	r.MergeInterests(Interests{Merchandise: []string{}})
	assert.Empty(t, r.Interests.Merchandise)
}

func TestResetEmptiesEveryCategory(t *testing.T) {
	r := New()
	r.MergePersonal(Personal{Name: Ptr("Jane Doe")})
	r.MergeInterests(Interests{FavoriteTeams: []string{"FURIA"}})
	r.MergeDocuments(Documents{IDValidated: Ptr(true)})
	r.MergeSocialMedia(SocialMedia{TwitterUsername: Ptr("jane")})
	r.MergeEsportsProfiles(EsportsProfiles{TwitchUsername: Ptr("jane_tv")})
	require.False(t, r.IsEmpty())

	r.Reset()
	assert.True(t, r.IsEmpty())
}

func TestExportUsesFourSpaceIndent(t *testing.T) {
	r := New()
	r.MergePersonal(Personal{Name: Ptr("Jane Doe")})

	data, err := r.Export()
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(string(data), "{\n    \"personal\": {\n        \"name\": \"Jane Doe\""))

	var decoded map[string]map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, category := range []string{"personal", "interests", "documents", "social_media", "esports_profiles"} {
		assert.Contains(t, decoded, category)
	}
	assert.Empty(t, decoded["documents"])
}

func TestWithoutOther(t *testing.T) {
	in := Interests{
		FavoriteGames: []string{"Valorant", Other, "Dota 2"},
		FavoriteTeams: []string{Other},
	}
	assert.Equal(t, []string{"Valorant", "Dota 2"}, in.GamesWithoutOther())
	assert.Empty(t, in.TeamsWithoutOther())
}

func TestEvents(t *testing.T) {
	in := Interests{AttendedEvents: Ptr("IEM Rio\n\n  CBLOL Finals  \n")}
	assert.Equal(t, []string{"IEM Rio", "CBLOL Finals"}, in.Events())
	assert.Nil(t, Interests{}.Events())
}

func TestHandlePredicates(t *testing.T) {
	assert.False(t, SocialMedia{TwitterUsername: Ptr("")}.HasHandle())
	assert.True(t, SocialMedia{DiscordUsername: Ptr("jane#1")}.HasHandle())

	e := EsportsProfiles{OtherPlatforms: Ptr("Epic: jane")}
	assert.True(t, e.HasHandle())
	assert.Equal(t, 0, e.PlatformCount())
	e.SteamProfile = Ptr("https://steamcommunity.com/id/jane")
	assert.Equal(t, 1, e.PlatformCount())
	assert.Equal(t, []Handle{{Platform: "Steam", Value: "https://steamcommunity.com/id/jane"}}, e.Handles())
}
