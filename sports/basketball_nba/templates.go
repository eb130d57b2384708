package basketball_nba

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Commentary categories, in the labels used by the template tables
const (
	CategoryBlock                    = "Block"
	CategorySteal                    = "Steal"
	CategoryTechnicalFoul            = "Technical Foul"
	CategoryFoul                     = "Foul"
	CategoryOffensiveFoul            = "Offensive Foul"
	CategoryJumpBall                 = "Jump Ball"
	CategoryFreeThrow                = "Free Throw"
	CategoryMissedTechnicalFreeThrow = "Missed Technical Free Throw"
	CategoryTechnicalFreeThrow       = "Technical Free Throw"
	CategoryTimeout                  = "Timeout"
	CategoryEjection                 = "Ejection"
	CategorySubstitution             = "Substitution"
	CategoryAlleyOop                 = "Alley Oop"
	CategoryDunk                     = "Dunk"
	Category3PT                      = "3PT"
	CategoryLayup                    = "Layup"
	CategoryHookShot                 = "Hook Shot"
	CategoryJumpShot                 = "Jump Shot"
	CategoryRebound                  = "Rebound"
	CategoryTurnover                 = "Turnover"
	CategoryGoaltending              = "Goaltending"

	// CategoryFallback labels events described by their own stripped text
	CategoryFallback = "Fallback"
)

// Template slots, replaced literally
const (
	SlotPlayer       = "PLAYER"
	SlotSecondPlayer = "SECOND_PLAYER"
	SlotThirdPlayer  = "THIRD_PLAYER"
)

// TemplateSet maps category labels to ordered template lists.
// Made and Missed are disjoint tables; read-only once built.
type TemplateSet struct {
	Made   map[string][]string `yaml:"made"`
	Missed map[string][]string `yaml:"missed"`
}

// Lookup returns the templates for a category from the made or missed table
func (t *TemplateSet) Lookup(category string, missed bool) []string {
	if missed {
		return t.Missed[category]
	}
	return t.Made[category]
}

// DefaultTemplates returns the compiled-in template tables
func DefaultTemplates() *TemplateSet {
	return &TemplateSet{
		Made: map[string][]string{
			CategoryBlock: {
				"PLAYER blocks SECOND_PLAYER's shot!",
				"PLAYER swats away the attempt from SECOND_PLAYER.",
				"PLAYER rejects SECOND_PLAYER at the rim.",
			},
			CategorySteal: {
				"PLAYER picks the pocket of SECOND_PLAYER!",
				"PLAYER steals the ball from SECOND_PLAYER.",
				"PLAYER strips SECOND_PLAYER.",
			},
			CategoryTechnicalFoul: {
				"PLAYER is hit with a technical foul.",
				"Technical foul called on PLAYER.",
			},
			CategoryFoul: {
				"PLAYER is called for the foul.",
				"Whistle blows, foul on PLAYER.",
			},
			CategoryOffensiveFoul: {
				"PLAYER is called for an offensive foul.",
				"Offensive foul on PLAYER, and possession changes.",
			},
			CategoryJumpBall: {
				"PLAYER and SECOND_PLAYER go up for the jump ball, and THIRD_PLAYER comes away with the tip.",
				"Jump ball between PLAYER and SECOND_PLAYER, tipped to THIRD_PLAYER.",
			},
			CategoryFreeThrow: {
				"PLAYER steps to the line for a free throw.",
				"PLAYER takes the free throw.",
			},
			CategoryMissedTechnicalFreeThrow: {
				"PLAYER misses the technical free throw.",
				"PLAYER can't convert the technical free throw.",
			},
			CategoryTechnicalFreeThrow: {
				"PLAYER converts the technical free throw.",
				"PLAYER knocks down the technical free throw.",
			},
			CategoryTimeout: {
				"Timeout called by PLAYER.",
				"Play stops as PLAYER calls timeout.",
			},
			CategoryEjection: {
				"PLAYER has been ejected from the game.",
				"PLAYER is tossed and heads to the locker room.",
			},
			CategorySubstitution: {
				"PLAYER checks in for SECOND_PLAYER.",
				"SECOND_PLAYER heads to the bench as PLAYER enters the game.",
			},
			CategoryAlleyOop: {
				"PLAYER finishes the alley-oop!",
				"PLAYER throws down the lob!",
			},
			CategoryDunk: {
				"PLAYER throws it down!",
				"PLAYER with a powerful dunk!",
				"PLAYER slams it home.",
			},
			Category3PT: {
				"PLAYER drills a three!",
				"PLAYER knocks down the three-pointer.",
				"PLAYER connects from downtown.",
			},
			CategoryLayup: {
				"PLAYER lays it in.",
				"PLAYER finishes at the rim.",
				"PLAYER scores on the layup.",
			},
			CategoryHookShot: {
				"PLAYER drops in the hook shot.",
				"PLAYER with a soft hook.",
			},
			CategoryJumpShot: {
				"PLAYER knocks down the jumper.",
				"PLAYER pulls up and hits the jump shot.",
				"PLAYER connects from mid-range.",
			},
			CategoryRebound: {
				"PLAYER grabs the rebound.",
				"PLAYER pulls down the board.",
				"PLAYER secures the rebound.",
			},
			CategoryTurnover: {
				"PLAYER turns it over.",
				"PLAYER coughs up the ball.",
				"Turnover by PLAYER.",
			},
			CategoryGoaltending: {
				"Goaltending is called on PLAYER.",
				"PLAYER is whistled for goaltending.",
			},
		},
		Missed: map[string][]string{
			Category3PT: {
				"PLAYER misses from three.",
				"PLAYER's three-point attempt rims out.",
				"PLAYER can't connect from deep.",
			},
			CategoryJumpShot: {
				"PLAYER misses the jumper.",
				"PLAYER's jump shot is off the mark.",
			},
			CategoryLayup: {
				"PLAYER misses the layup.",
				"PLAYER can't finish at the rim.",
			},
		},
	}
}

// LoadTemplates reads a YAML template file. Categories present in the file
// replace the defaults; absent categories keep the compiled-in templates.
func LoadTemplates(path string, config *Config) (*TemplateSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates %s: %w", path, err)
	}

	var override TemplateSet
	if err := yaml.Unmarshal(data, &override); err != nil {
		return nil, fmt.Errorf("failed to parse templates %s: %w", path, err)
	}

	set := DefaultTemplates()
	for category, templates := range override.Made {
		set.Made[category] = templates
	}
	for category, templates := range override.Missed {
		set.Missed[category] = templates
	}

	if err := set.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid templates %s: %w", path, err)
	}

	return set, nil
}

// creditedFirst lists categories whose templates must open with the acting player
var creditedFirst = map[string]bool{
	CategoryBlock: true,
	CategorySteal: true,
}

// Validate checks that no category is empty, that block and steal templates
// name the acting player first, and that missed templates exist only for
// categories that branch on the missed flag
func (t *TemplateSet) Validate(config *Config) error {
	for category, templates := range t.Made {
		if len(templates) == 0 {
			return fmt.Errorf("category %q has no templates", category)
		}
		if !creditedFirst[category] {
			continue
		}
		for _, tmpl := range templates {
			if !strings.HasPrefix(tmpl, SlotPlayer+" ") {
				return fmt.Errorf("category %q template %q must start with %s", category, tmpl, SlotPlayer)
			}
		}
	}
	for category, templates := range t.Missed {
		if !config.HasMissedTemplates(category) {
			return fmt.Errorf("category %q does not take missed-shot templates", category)
		}
		if len(templates) == 0 {
			return fmt.Errorf("missed category %q has no templates", category)
		}
	}
	return nil
}
