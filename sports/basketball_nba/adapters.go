package basketball_nba

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// HistoricalAdapter handles the box-score feed with separate home/away description columns
type HistoricalAdapter struct{}

// NewHistoricalAdapter creates a new historical feed adapter
func NewHistoricalAdapter() *HistoricalAdapter {
	return &HistoricalAdapter{}
}

func (a *HistoricalAdapter) Schema() models.SourceSchema {
	return models.SchemaHistorical
}

func (a *HistoricalAdapter) RequiredColumns() []string {
	return []string{"time_remaining", "quarter", "home_event", "away_event"}
}

// Normalize merges the two description columns and formats the clock as "Q{quarter} - {clock}"
func (a *HistoricalAdapter) Normalize(row models.RawRow) (*models.IntermediateRecord, error) {
	clock := cellValue(row, "time_remaining")
	if clock == "" {
		return nil, fmt.Errorf("%w: row %d missing time_remaining", contracts.ErrMalformedRow, row.Index)
	}

	quarter, err := parsePeriod(cellValue(row, "quarter"))
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrMalformedRow, row.Index, err)
	}

	home := cellValue(row, "home_event")
	away := cellValue(row, "away_event")

	record := &models.IntermediateRecord{
		GameID:        row.GameID,
		TimeRemaining: fmt.Sprintf("Q%d - %s", quarter, clock),
		Period:        quarter,
	}

	switch {
	case home != "" && away != "":
		// Both sides populated: concatenated, flagged for review
		record.RawText = home + " " + away
		record.DualDescription = true
	case home != "":
		record.RawText = home
	default:
		record.RawText = away
	}

	return record, nil
}

// LiveAdapter handles the live feed with a single description and a team tricode
type LiveAdapter struct{}

// NewLiveAdapter creates a new live feed adapter
func NewLiveAdapter() *LiveAdapter {
	return &LiveAdapter{}
}

func (a *LiveAdapter) Schema() models.SourceSchema {
	return models.SchemaLive
}

func (a *LiveAdapter) RequiredColumns() []string {
	return []string{"clock", "period", "description", "teamTricode"}
}

// Normalize substitutes the team name for the tricode or "TEAM" and prefixes "{tricode}: "
func (a *LiveAdapter) Normalize(row models.RawRow) (*models.IntermediateRecord, error) {
	clock := cellValue(row, "clock")
	if clock == "" {
		return nil, fmt.Errorf("%w: row %d missing clock", contracts.ErrMalformedRow, row.Index)
	}

	period, err := parsePeriod(cellValue(row, "period"))
	if err != nil {
		return nil, fmt.Errorf("%w: row %d: %v", contracts.ErrMalformedRow, row.Index, err)
	}

	desc := cellValue(row, "description")
	team := cellValue(row, "teamTricode")

	record := &models.IntermediateRecord{
		GameID:        row.GameID,
		TimeRemaining: clock,
		Period:        period,
		TeamCode:      team,
	}

	if desc == "" {
		return record, nil
	}

	if team != "" {
		if strings.Contains(strings.ToUpper(desc), "TEAM") || strings.Contains(desc, team) {
			name := GetTeamName(team)
			desc = strings.ReplaceAll(desc, "TEAM", name)
			desc = strings.ReplaceAll(desc, team, name)
		}
		desc = team + ": " + desc
	}

	record.RawText = desc
	return record, nil
}

// cellValue returns a trimmed cell, treating spreadsheet null markers as empty
func cellValue(row models.RawRow, column string) string {
	v, ok := row.Get(column)
	if !ok {
		return ""
	}
	v = strings.TrimSpace(v)
	switch strings.ToLower(v) {
	case "nan", "none", "null":
		return ""
	}
	return v
}

// parsePeriod accepts "3" as well as "3.0" (float columns written by spreadsheet tools)
func parsePeriod(value string) (int, error) {
	if value == "" {
		return 0, fmt.Errorf("missing period")
	}
	if p, err := strconv.Atoi(value); err == nil {
		return p, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid period %q", value)
	}
	return int(f), nil
}
