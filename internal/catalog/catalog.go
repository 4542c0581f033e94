// Package catalog loads the option lists shown by the interests step.
//
// The default catalog is embedded; CATALOG_FILE points at a YAML file with the
// same shape to override it.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/albapepper/scoracle-fans/internal/profile"
)

//go:embed catalog.yaml
var defaultYAML []byte

// Catalog lists the selectable options.
type Catalog struct {
	Games       []string `yaml:"games" json:"games"`
	Teams       []string `yaml:"teams" json:"teams"`
	Merchandise []string `yaml:"merchandise" json:"merchandise"`

	// Names the simulated scorer may report as mentioned in social posts.
	MentionGames []string `yaml:"mention_games" json:"-"`
	MentionTeams []string `yaml:"mention_teams" json:"-"`
}

// Default returns the embedded catalog.
func Default() *Catalog {
	c, err := Parse(defaultYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded catalog: %v", err))
	}
	return c
}

// Load reads a catalog from path, or returns Default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(c.Games) == 0 || len(c.Teams) == 0 {
		return nil, fmt.Errorf("catalog must list games and teams")
	}
	if !slices.Contains(c.Games, profile.Other) || !slices.Contains(c.Teams, profile.Other) {
		return nil, fmt.Errorf("catalog games and teams must include %q", profile.Other)
	}
	if len(c.MentionGames) == 0 {
		c.MentionGames = withoutOther(c.Games)
	}
	if len(c.MentionTeams) == 0 {
		c.MentionTeams = withoutOther(c.Teams)
	}
	return &c, nil
}

// UnknownOptionError reports selections that are not in the catalog.
type UnknownOptionError struct {
	Field   string
	Options []string
}

func (e *UnknownOptionError) Error() string {
	return fmt.Sprintf("unknown %s option(s): %v", e.Field, e.Options)
}

// CheckInterests verifies every multi-select value in in is offered by c.
func (c *Catalog) CheckInterests(in profile.Interests) error {
	for _, f := range []struct {
		field    string
		selected []string
		allowed  []string
	}{
		{"favorite_games", in.FavoriteGames, c.Games},
		{"favorite_teams", in.FavoriteTeams, c.Teams},
		{"merchandise", in.Merchandise, c.Merchandise},
	} {
		var unknown []string
		for _, s := range f.selected {
			if !slices.Contains(f.allowed, s) {
				unknown = append(unknown, s)
			}
		}
		if len(unknown) > 0 {
			return &UnknownOptionError{Field: f.field, Options: unknown}
		}
	}
	return nil
}

func withoutOther(options []string) []string {
	return slices.DeleteFunc(slices.Clone(options), func(o string) bool { return o == profile.Other })
}
