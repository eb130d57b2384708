package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// HistoricalRowFixture creates a historical-feed row with sensible defaults
func HistoricalRowFixture(overrides ...func(*models.RawRow)) models.RawRow {
	row := models.RawRow{
		GameID: "0022300001",
		Schema: models.SchemaHistorical,
		Index:  0,
		Fields: map[string]string{
			"time_remaining": "11:42",
			"quarter":        "1",
			"home_event":     "Smith 24' Jump Shot (2 PTS)",
			"away_event":     "",
		},
	}

	// Apply overrides
	for _, override := range overrides {
		override(&row)
	}

	return row
}

// LiveRowFixture creates a live-feed row with sensible defaults
func LiveRowFixture(overrides ...func(*models.RawRow)) models.RawRow {
	row := models.RawRow{
		GameID: "0022400101",
		Schema: models.SchemaLive,
		Index:  0,
		Fields: map[string]string{
			"clock":       "PT11:42.00",
			"period":      "1",
			"description": "J. Tatum 26' 3PT Jump Shot (3 PTS)",
			"teamTricode": "BOS",
		},
	}

	for _, override := range overrides {
		override(&row)
	}

	return row
}

// WithField sets one cell of a row
func WithField(column, value string) func(*models.RawRow) {
	return func(r *models.RawRow) {
		r.Fields[column] = value
	}
}

// WithoutField removes a column from a row
func WithoutField(column string) func(*models.RawRow) {
	return func(r *models.RawRow) {
		delete(r.Fields, column)
	}
}

// IntermediateFixture creates an intermediate record for the given text
func IntermediateFixture(text string) *models.IntermediateRecord {
	return &models.IntermediateRecord{
		GameID:        "0022300001",
		TimeRemaining: "Q1 - 11:42",
		Period:        1,
		RawText:       text,
	}
}

// HistoricalCSV is a small historical-feed game file
const HistoricalCSV = `time_remaining,quarter,home_event,away_event
12:00,1,Jump Ball Davis vs. Embiid: Tip to Harris,
11:42,1,Smith 24' Jump Shot (2 PTS) (Jones 1 AST),
11:20,1,,MISS Brown 2' Driving Layup
11:18,1,Smith REBOUND (Off:0 Def:1),
,1,broken row,
11:00,x,another broken row,
10:45,1,,
`

// LiveCSV is a small live-feed game file, deliberately out of order
const LiveCSV = `clock,period,description,teamTricode
PT10:30.00,2,TEAM Timeout: Regular,LAL
PT11:42.00,1,J. Tatum 26' 3PT Jump Shot (3 PTS),BOS
PT11:55.00,1,MISS A. Davis 12' Hook Shot,LAL
PT03:00.00,1,SUB: J. Brown FOR J. Tatum,BOS
`

// WriteFile writes content into a temp dir and returns the path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
