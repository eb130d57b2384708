package basketball_nba

import "strings"

// Config contains NBA-specific corpus building configuration
type Config struct {
	SportKey    string
	DisplayName string

	// Placeholder used when no participant can be extracted
	SentinelPlayer string

	// Tokens never treated as participant names by the heuristic extractor
	NameStoplist []string

	// Case-insensitive marker that flags a missed shot
	MissMarker string

	// Categories that have authored missed-shot templates
	MissedShotCategories []string

	// Fixed-form clause appended when an assist was extracted
	AssistClause string

	// Sentence used when a jump ball is seen without all three participants
	JumpBallFallback string
}

// DefaultConfig returns the standard NBA corpus configuration
func DefaultConfig() *Config {
	return &Config{
		SportKey:       "basketball_nba",
		DisplayName:    "NBA Basketball",
		SentinelPlayer: "A player",

		NameStoplist: []string{
			// Name suffixes
			"Jr.", "Sr.", "II", "III", "IV",
			// Feed vocabulary that shows up capitalized
			"Jump", "Shot", "Ball", "Lost", "Bad", "Pass", "Turnover",
			"Driving", "Running", "Pullup", "Step", "Back", "Cutting",
			"Layup", "Dunk", "Hook", "Tip", "Free", "Throw", "Foul",
			"Rebound", "Block", "Steal", "Timeout", "Regular", "Full",
			"Short", "Technical", "Violation", "Traveling", "Fadeaway",
			"Floating", "Reverse", "Alley", "Oop", "Putback", "Finger",
			"Roll", "Turnaround", "Bank", "Out", "Bounds", "Kicked",
			"Delay", "Period", "Start", "End", "Instant", "Replay",
			"Goaltending", "Offensive", "Personal", "Shooting", "Loose",
			"Ejection", "Substitution",
		},

		MissMarker: "miss",

		MissedShotCategories: []string{
			Category3PT,
			CategoryJumpShot,
			CategoryLayup,
		},

		AssistClause:     " Assisted by %s.",
		JumpBallFallback: "Jump ball in play.",
	}
}

// IsStopword checks if a token is excluded from name extraction
func (c *Config) IsStopword(token string) bool {
	for _, stop := range c.NameStoplist {
		if stop == token {
			return true
		}
	}
	return false
}

// HasMissedTemplates checks if a category branches on the missed-shot flag
func (c *Config) HasMissedTemplates(category string) bool {
	for _, cat := range c.MissedShotCategories {
		if cat == category {
			return true
		}
	}
	return false
}

// IsMiss checks the missed-shot flag for a canonical event
func (c *Config) IsMiss(text string) bool {
	return strings.Contains(strings.ToLower(text), c.MissMarker)
}
