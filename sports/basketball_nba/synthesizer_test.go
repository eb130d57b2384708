package basketball_nba_test

import (
	"math/rand"
	"reflect"
	"strings"
	"testing"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/sports/basketball_nba"
)

func newSynthesizer(seed int64) *basketball_nba.Synthesizer {
	return basketball_nba.NewSynthesizer(
		basketball_nba.DefaultConfig(),
		basketball_nba.DefaultTemplates(),
		rand.New(rand.NewSource(seed)),
	)
}

// filled renders every template of a category with the given players
func filled(templates []string, primary, secondary, tertiary string) []string {
	r := strings.NewReplacer("SECOND_PLAYER", secondary, "THIRD_PLAYER", tertiary, "PLAYER", primary)
	out := make([]string, len(templates))
	for i, tmpl := range templates {
		out[i] = r.Replace(tmpl)
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestSynthesizer_Categories(t *testing.T) {
	config := basketball_nba.DefaultConfig()
	extractor := basketball_nba.NewEntityExtractor(config, nil)
	synth := newSynthesizer(1)

	tests := []struct {
		text string
		want string
	}{
		{"Brown attempts a 2-foot driving layup but misses. Jones BLOCK (1 BLK)", basketball_nba.CategoryBlock},
		{"Smith Bad Pass Turnover (P1.T2) Jones STEAL (1 STL)", basketball_nba.CategorySteal},
		{"Smith T.FOUL (J.Capers)", basketball_nba.CategoryTechnicalFoul},
		{"Smith S.FOUL (P1.T2) (J.Capers)", basketball_nba.CategoryFoul},
		{"Smith FLAGRANT.FOUL.TYPE1 (P2.T3)", basketball_nba.CategoryFoul},
		{"Smith commits an offensive foul. (P1.T1)", basketball_nba.CategoryOffensiveFoul},
		{"Jump Ball Davis vs. Embiid: Tip to Harris", basketball_nba.CategoryJumpBall},
		{"MISS Smith Free Throw 1 of 2", basketball_nba.CategoryFreeThrow},
		{"MISS Smith Free Throw Technical", basketball_nba.CategoryMissedTechnicalFreeThrow},
		{"Smith Free Throw Technical (5 PTS)", basketball_nba.CategoryTechnicalFreeThrow},
		{"BOS: Celtics Timeout: Regular", basketball_nba.CategoryTimeout},
		{"Smith Ejection: Other", basketball_nba.CategoryEjection},
		{"BOS: SUB: J. Brown FOR J. Tatum", basketball_nba.CategorySubstitution},
		{"Smith sinks a 1-foot alley oop dunk.", basketball_nba.CategoryAlleyOop},
		{"Smith sinks a 1-foot dunk.", basketball_nba.CategoryDunk},
		{"J. Tatum sinks a 26-foot 3PT jump shot.", basketball_nba.Category3PT},
		{"Smith sinks a 3-foot driving layup.", basketball_nba.CategoryLayup},
		{"Smith sinks a 8-foot hook shot.", basketball_nba.CategoryHookShot},
		{"Smith sinks a 24-foot jump shot.", basketball_nba.CategoryJumpShot},
		{"Smith grabs the rebound.", basketball_nba.CategoryRebound},
		{"Smith Shot Clock Turnover", basketball_nba.CategoryTurnover},
		{"Smith Goaltending Violation", basketball_nba.CategoryGoaltending},
		{"Smith sinks a 18-foot turnaround fadeaway.", basketball_nba.CategoryJumpShot},
		{"Celtics Team Rebound", basketball_nba.CategoryRebound},
		{"Smith Traveling", basketball_nba.CategoryTurnover},
		{"Smith Instant Replay Request", basketball_nba.CategoryFallback},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got := synth.Compose(tt.text, extractor.Extract(tt.text))
			if got.Category != tt.want {
				t.Errorf("Compose(%q).Category = %q, want %q", tt.text, got.Category, tt.want)
			}
			if got.Text == "" {
				t.Errorf("Compose(%q).Text is empty", tt.text)
			}
		})
	}
}

func TestSynthesizer_CascadeOrder(t *testing.T) {
	want := []string{
		"block", "steal", "technical_foul", "foul", "offensive_foul", "jump_ball",
		"free_throw", "missed_technical_free_throw", "technical_free_throw",
		"timeout", "ejection", "substitution", "category_key", "shot_word",
		"keyword_sniff", "fallback",
	}
	if got := newSynthesizer(0).Rules(); !reflect.DeepEqual(got, want) {
		t.Errorf("Rules() = %v, want %v", got, want)
	}
}

func TestSynthesizer_StealCreditsStealer(t *testing.T) {
	config := basketball_nba.DefaultConfig()
	extractor := basketball_nba.NewEntityExtractor(config, nil)
	templates := basketball_nba.DefaultTemplates()

	text := "Smith Bad Pass Turnover (P1.T2) Jones STEAL (1 STL)"
	entities := extractor.Extract(text)
	if entities.Primary != "Smith" || entities.Secondary != "Jones" {
		t.Fatalf("Extract(%q) = %+v, want Smith then Jones", text, entities)
	}

	allowed := filled(templates.Made[basketball_nba.CategorySteal], "Jones", "Smith", "")
	for seed := int64(0); seed < 50; seed++ {
		got := newSynthesizer(seed).Synthesize(text, entities)
		if !contains(allowed, got) {
			t.Errorf("seed %d: Synthesize() = %q, want stealer Jones in PLAYER slot", seed, got)
		}
		if !strings.HasPrefix(got, "Jones ") {
			t.Errorf("seed %d: Synthesize() = %q, want stealer Jones first", seed, got)
		}
	}

	canonical := "Jones steals the ball from Smith."
	entities = extractor.Extract(canonical)
	for seed := int64(0); seed < 50; seed++ {
		if got := newSynthesizer(seed).Synthesize(canonical, entities); !strings.HasPrefix(got, "Jones ") {
			t.Errorf("seed %d: Synthesize(%q) = %q, want stealer Jones first", seed, canonical, got)
		}
	}
}

func TestSynthesizer_BlockCreditsBlocker(t *testing.T) {
	config := basketball_nba.DefaultConfig()
	extractor := basketball_nba.NewEntityExtractor(config, nil)
	templates := basketball_nba.DefaultTemplates()

	text := "Brown attempts a 2-foot driving layup but misses. Jones BLOCK (1 BLK)"
	allowed := filled(templates.Made[basketball_nba.CategoryBlock], "Jones", "Brown", "")

	entities := extractor.Extract(text)
	for seed := int64(0); seed < 50; seed++ {
		got := newSynthesizer(seed).Synthesize(text, entities)
		if !contains(allowed, got) {
			t.Errorf("seed %d: Synthesize() = %q, want one of %v", seed, got, allowed)
		}
		if !strings.HasPrefix(got, "Jones ") {
			t.Errorf("seed %d: Synthesize() = %q, want blocker Jones first", seed, got)
		}
	}
}

func TestSynthesizer_JumpBall(t *testing.T) {
	config := basketball_nba.DefaultConfig()
	extractor := basketball_nba.NewEntityExtractor(config, nil)

	text := "Jump Ball Davis vs. Embiid: Tip to Harris"
	got := newSynthesizer(0).Synthesize(text, extractor.Extract(text))
	for _, name := range []string{"Davis", "Embiid", "Harris"} {
		if !strings.Contains(got, name) {
			t.Errorf("Synthesize(%q) = %q, missing %s", text, got, name)
		}
	}

	text = "Jump Ball Held Ball"
	if got := newSynthesizer(0).Synthesize(text, extractor.Extract(text)); got != "Jump ball in play." {
		t.Errorf("Synthesize(%q) = %q, want %q", text, got, "Jump ball in play.")
	}
}

func TestSynthesizer_AssistClause(t *testing.T) {
	synth := newSynthesizer(0)

	tests := []struct {
		name string
		text string
	}{
		{"template branch", "Smith sinks a 24-foot jump shot. (Jones 2 AST)"},
		{"fallback branch", "Smith does something odd (Jones 1 AST)"},
		{"sentinel branch", "something odd (Jones 1 AST)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entities := basketball_nba.NewEntityExtractor(basketball_nba.DefaultConfig(), nil).Extract(tt.text)
			got := synth.Synthesize(tt.text, entities)
			if !strings.HasSuffix(got, " Assisted by Jones.") {
				t.Errorf("Synthesize(%q) = %q, want assist suffix", tt.text, got)
			}
		})
	}
}

func TestSynthesizer_MissedFlagScoping(t *testing.T) {
	templates := basketball_nba.DefaultTemplates()

	t.Run("categories without missed templates ignore the flag", func(t *testing.T) {
		entities := models.ExtractedEntities{Primary: "Smith", Shape: models.ShapeGeneric}
		pairs := [][2]string{
			{"Smith sinks a 1-foot dunk.", "Smith attempts a 1-foot dunk but misses."},
			{"Smith grabs the rebound.", "MISS Smith grabs the rebound."},
			{"Smith Free Throw 1 of 2", "MISS Smith Free Throw 1 of 2"},
		}
		for _, p := range pairs {
			made := newSynthesizer(7).Synthesize(p[0], entities)
			missed := newSynthesizer(7).Synthesize(p[1], entities)
			if made != missed {
				t.Errorf("Synthesize(%q) = %q but Synthesize(%q) = %q; want identical", p[0], made, p[1], missed)
			}
		}
	})

	t.Run("shot categories use missed templates", func(t *testing.T) {
		tests := []struct {
			text     string
			category string
		}{
			{"Smith attempts a 24-foot jump shot but misses.", basketball_nba.CategoryJumpShot},
			{"Smith attempts a 26-foot 3PT jump shot but misses.", basketball_nba.Category3PT},
			{"Smith attempts a 2-foot driving layup but misses.", basketball_nba.CategoryLayup},
			{"Smith attempts a 15-foot fadeaway but misses.", basketball_nba.CategoryJumpShot},
		}
		entities := models.ExtractedEntities{Primary: "Smith", Shape: models.ShapeGeneric}
		for _, tt := range tests {
			got := newSynthesizer(0).Synthesize(tt.text, entities)
			allowed := filled(templates.Missed[tt.category], "Smith", "", "")
			if !contains(allowed, got) {
				t.Errorf("Synthesize(%q) = %q, want a missed %s template", tt.text, got, tt.category)
			}
		}
	})
}

func TestSynthesizer_SeededDeterminism(t *testing.T) {
	texts := []string{
		"Smith sinks a 24-foot jump shot.",
		"Smith grabs the rebound.",
		"Smith sinks a 1-foot dunk.",
		"J. Tatum sinks a 26-foot 3PT jump shot.",
		"Smith Traveling",
	}
	entities := models.ExtractedEntities{Primary: "Smith", Shape: models.ShapeGeneric}

	a, b := newSynthesizer(99), newSynthesizer(99)
	for i := 0; i < 50; i++ {
		text := texts[i%len(texts)]
		if x, y := a.Synthesize(text, entities), b.Synthesize(text, entities); x != y {
			t.Fatalf("iteration %d: seeded synthesizers diverged: %q vs %q", i, x, y)
		}
	}
}

func TestSynthesizer_DescriptionVariesAcrossSeeds(t *testing.T) {
	canonicalizer := basketball_nba.NewCanonicalizer()
	extractor := basketball_nba.NewEntityExtractor(basketball_nba.DefaultConfig(), nil)

	for _, raw := range []string{
		"Smith 24' Jump Shot (2 PTS)",
		"Jones STEAL Smith Lost Ball Turnover",
		"Smith REBOUND (Off:0 Def:1)",
	} {
		structured, ok := canonicalizer.Canonicalize(raw)
		if !ok {
			t.Fatalf("Canonicalize(%q) returned ok=false", raw)
		}

		descriptions := make(map[string]bool)
		for seed := int64(0); seed < 30; seed++ {
			again, _ := canonicalizer.Canonicalize(raw)
			if again != structured {
				t.Fatalf("Canonicalize(%q) = %q then %q, want stable", raw, structured, again)
			}
			descriptions[newSynthesizer(seed).Synthesize(structured, extractor.Extract(structured))] = true
		}

		if len(descriptions) < 2 {
			t.Errorf("Synthesize(%q) produced %d distinct descriptions over 30 seeds, want at least 2", structured, len(descriptions))
		}
	}
}

func TestSynthesizer_SentinelWhenPrimaryMissing(t *testing.T) {
	got := newSynthesizer(0).Synthesize("Smith grabs the rebound.", models.ExtractedEntities{})
	if !strings.Contains(got, "A player") {
		t.Errorf("Synthesize() = %q, want sentinel player", got)
	}
}
