package basketball_nba_test

import (
	"testing"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/sports/basketball_nba"
)

func TestDefaultTemplates_Valid(t *testing.T) {
	config := basketball_nba.DefaultConfig()
	templates := basketball_nba.DefaultTemplates()

	if err := templates.Validate(config); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	for _, category := range config.MissedShotCategories {
		if len(templates.Missed[category]) == 0 {
			t.Errorf("missed templates for %s are empty", category)
		}
	}
}

func TestLoadTemplates_Override(t *testing.T) {
	path := testutil.WriteFile(t, "templates.yaml", `
made:
  Dunk:
    - "PLAYER hammers it home."
missed:
  Layup:
    - "PLAYER rolls it off the rim."
`)

	templates, err := basketball_nba.LoadTemplates(path, basketball_nba.DefaultConfig())
	if err != nil {
		t.Fatalf("LoadTemplates() error = %v", err)
	}

	if got := templates.Made[basketball_nba.CategoryDunk]; len(got) != 1 || got[0] != "PLAYER hammers it home." {
		t.Errorf("Made[Dunk] = %v, want override", got)
	}
	if got := templates.Missed[basketball_nba.CategoryLayup]; len(got) != 1 {
		t.Errorf("Missed[Layup] = %v, want override", got)
	}
	if len(templates.Made[basketball_nba.CategoryRebound]) == 0 {
		t.Error("Made[Rebound] lost its defaults")
	}
}

func TestLoadTemplates_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missed templates for a made-only category", "missed:\n  Dunk:\n    - \"PLAYER misses the dunk.\"\n"},
		{"empty category", "made:\n  Rebound: []\n"},
		{"bad yaml", "made: [unterminated"},
		{"steal names the victim first", "made:\n  Steal:\n    - \"SECOND_PLAYER gets stripped by PLAYER.\"\n"},
		{"block names the victim first", "made:\n  Block:\n    - \"SECOND_PLAYER gets rejected by PLAYER.\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := testutil.WriteFile(t, "templates.yaml", tt.content)
			if _, err := basketball_nba.LoadTemplates(path, basketball_nba.DefaultConfig()); err == nil {
				t.Error("LoadTemplates() error = nil, want error")
			}
		})
	}
}
