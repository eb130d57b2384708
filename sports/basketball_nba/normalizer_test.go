package basketball_nba_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/testutil"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/sports/basketball_nba"
)

var _ contracts.CommentaryEngine = (*basketball_nba.Normalizer)(nil)
var _ contracts.SourceAdapter = (*basketball_nba.HistoricalAdapter)(nil)
var _ contracts.SourceAdapter = (*basketball_nba.LiveAdapter)(nil)

func TestNBANormalizer_GetSportKey(t *testing.T) {
	normalizer := basketball_nba.NewNormalizer()

	want := "basketball_nba"
	got := normalizer.GetSportKey()

	if got != want {
		t.Errorf("GetSportKey() = %s, want %s", got, want)
	}
}

func TestNBANormalizer_GetDisplayName(t *testing.T) {
	normalizer := basketball_nba.NewNormalizer()

	want := "NBA Basketball"
	got := normalizer.GetDisplayName()

	if got != want {
		t.Errorf("GetDisplayName() = %s, want %s", got, want)
	}
}

func TestNBANormalizer_Normalize(t *testing.T) {
	ctx := context.Background()
	normalizer := basketball_nba.NewNormalizer()

	record := testutil.IntermediateFixture("MISS Smith 24' Jump Shot")
	got, ok := normalizer.Normalize(ctx, record)
	if !ok {
		t.Fatal("Normalize() dropped a non-empty record")
	}

	if got.StructuredEvent != "Smith attempts a 24-foot jump shot but misses." {
		t.Errorf("StructuredEvent = %q", got.StructuredEvent)
	}
	if got.Category != basketball_nba.CategoryJumpShot {
		t.Errorf("Category = %q, want %q", got.Category, basketball_nba.CategoryJumpShot)
	}
	if got.GameID != record.GameID || got.TimeRemaining != record.TimeRemaining {
		t.Errorf("metadata not carried: %+v", got)
	}
}

func TestNBANormalizer_DropsEmpty(t *testing.T) {
	normalizer := basketball_nba.NewNormalizer()

	if got, ok := normalizer.Normalize(context.Background(), testutil.IntermediateFixture("   ")); ok {
		t.Errorf("Normalize() = %+v, want dropped", got)
	}
}

func TestNBANormalizer_Totality(t *testing.T) {
	normalizer := basketball_nba.NewNormalizer()

	inputs := []string{
		"(1 PF)",
		"???",
		"Smith",
		"MISS",
		"Jump Ball",
		"SUB: FOR",
		"12' ",
		"Ball Ball Ball",
		"BOS: ",
		"Instant Replay (Challenge: Support Ruling)",
	}

	for _, in := range inputs {
		t.Run(in, func(t *testing.T) {
			got, ok := normalizer.Normalize(context.Background(), testutil.IntermediateFixture(in))
			if !ok {
				t.Fatalf("Normalize(%q) dropped a non-empty record", in)
			}
			if strings.TrimSpace(got.StructuredEvent) == "" || strings.TrimSpace(got.NaturalDescription) == "" {
				t.Errorf("Normalize(%q) = %+v, want non-empty fields", in, got)
			}
		})
	}
}

func TestNBANormalizer_StructuredEventIsSeedIndependent(t *testing.T) {
	ctx := context.Background()
	a := basketball_nba.NewNormalizerWithOptions(basketball_nba.Options{Rand: rand.New(rand.NewSource(1))})
	b := basketball_nba.NewNormalizerWithOptions(basketball_nba.Options{Rand: rand.New(rand.NewSource(2))})

	for _, raw := range []string{
		"Smith 24' Jump Shot (2 PTS)",
		"Jones STEAL Smith Lost Ball Turnover",
		"BOS: J. Tatum 26' 3PT Jump Shot (3 PTS) (J. Brown 1 AST)",
	} {
		x, _ := a.Normalize(ctx, testutil.IntermediateFixture(raw))
		y, _ := b.Normalize(ctx, testutil.IntermediateFixture(raw))
		if x.StructuredEvent != y.StructuredEvent {
			t.Errorf("StructuredEvent differs across seeds: %q vs %q", x.StructuredEvent, y.StructuredEvent)
		}
	}
}
