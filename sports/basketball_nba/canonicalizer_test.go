package basketball_nba_test

import (
	"reflect"
	"testing"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/sports/basketball_nba"
)

func TestCanonicalizer_Canonicalize(t *testing.T) {
	c := basketball_nba.NewCanonicalizer()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "missed shot",
			raw:  "MISS Smith 24' Jump Shot",
			want: "Smith attempts a 24-foot jump shot but misses.",
		},
		{
			name: "made shot",
			raw:  "Smith 24' Jump Shot",
			want: "Smith sinks a 24-foot jump shot.",
		},
		{
			name: "made shot keeps trailing parenthetical",
			raw:  "Smith 24' Jump Shot (10 PTS)",
			want: "Smith sinks a 24-foot jump shot. (10 PTS)",
		},
		{
			name: "acronym shot type keeps case",
			raw:  "MISS J. Tatum 26' 3PT Jump Shot",
			want: "J. Tatum attempts a 26-foot 3PT jump shot but misses.",
		},
		{
			name: "name suffix",
			raw:  "Jackson Jr. 3' Driving Layup",
			want: "Jackson Jr. sinks a 3-foot driving layup.",
		},
		{
			name: "rebound",
			raw:  "Smith REBOUND (Off:0 Def:1)",
			want: "Smith grabs the rebound. (Off:0 Def:1)",
		},
		{
			name: "steal",
			raw:  "Jones STEAL Smith Lost Ball Turnover",
			want: "Jones steals the ball from Smith.",
		},
		{
			name: "offensive foul",
			raw:  "Smith OFF.Foul (P1.T1)",
			want: "Smith commits an offensive foul. (P1.T1)",
		},
		{
			name: "shot followed by another event",
			raw:  "MISS Brown 2' Driving Layup Jones BLOCK (1 BLK)",
			want: "Brown attempts a 2-foot driving layup but misses. Jones BLOCK (1 BLK)",
		},
		{
			name: "feed marker is not a shooter",
			raw:  "MISS 24' Jump Shot",
			want: "MISS 24' Jump Shot",
		},
		{
			name: "feed marker skipped, later shot still rewritten",
			raw:  "MISS 24' Jump Shot Smith 3' Driving Layup",
			want: "MISS 24' Jump Shot Smith sinks a 3-foot driving layup.",
		},
		{
			name: "unmatched text passes through trimmed",
			raw:  "  BOS: Celtics Timeout: Regular  ",
			want: "BOS: Celtics Timeout: Regular",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := c.Canonicalize(tt.raw)
			if !ok {
				t.Fatalf("Canonicalize(%q) returned ok=false", tt.raw)
			}
			if got != tt.want {
				t.Errorf("Canonicalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestCanonicalizer_Empty(t *testing.T) {
	c := basketball_nba.NewCanonicalizer()

	for _, raw := range []string{"", "   ", "\t\n"} {
		got, ok := c.Canonicalize(raw)
		if ok || got != "" {
			t.Errorf("Canonicalize(%q) = (%q, %v), want (\"\", false)", raw, got, ok)
		}
	}
}

func TestCanonicalizer_RuleOrder(t *testing.T) {
	c := basketball_nba.NewCanonicalizer()

	want := []string{"missed_shot", "made_shot", "rebound", "steal", "offensive_foul"}
	if got := c.RuleNames(); !reflect.DeepEqual(got, want) {
		t.Errorf("RuleNames() = %v, want %v", got, want)
	}

	// The made-shot rule must not see the MISS prefix
	got, _ := c.Canonicalize("MISS Smith 24' Jump Shot")
	if got == "MISS Smith sinks a 24-foot jump shot." {
		t.Errorf("made-shot rule ran before missed-shot rule: %q", got)
	}
}
