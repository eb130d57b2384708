package corpus

import (
	"fmt"
	"strings"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/internal/source"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// Older corpus files used different column names
var columnAliases = map[string]string{
	"event_description":   "structured_event",
	"input_event":         "structured_event",
	"ai_commentary":       "natural_description",
	"structured_event":    "structured_event",
	"natural_description": "natural_description",
}

// MergeStats summarizes a merge
type MergeStats struct {
	Read         int
	DroppedEmpty int
	Duplicates   int
	Kept         int
}

// Merge combines corpus tables, renaming legacy columns, dropping rows
// without a description and de-duplicating on the pair. First occurrence wins.
func Merge(tables ...*source.Table) ([]models.CommentaryRecord, MergeStats, error) {
	var (
		stats   MergeStats
		records []models.CommentaryRecord
	)
	seen := make(map[[2]string]bool)

	for _, table := range tables {
		eventCol, descCol, err := corpusColumns(table.Header)
		if err != nil {
			return nil, stats, fmt.Errorf("%s: %w", table.Name, err)
		}

		for _, row := range table.Rows {
			stats.Read++

			event := strings.TrimSpace(cell(row, eventCol))
			desc := strings.TrimSpace(cell(row, descCol))
			if desc == "" || event == "" {
				stats.DroppedEmpty++
				continue
			}

			key := [2]string{event, desc}
			if seen[key] {
				stats.Duplicates++
				continue
			}
			seen[key] = true

			records = append(records, models.CommentaryRecord{
				StructuredEvent:    event,
				NaturalDescription: desc,
			})
		}
	}

	stats.Kept = len(records)
	return records, stats, nil
}

func corpusColumns(header []string) (eventCol, descCol int, err error) {
	eventCol, descCol = -1, -1
	for i, col := range header {
		switch columnAliases[strings.ToLower(strings.TrimSpace(col))] {
		case "structured_event":
			if eventCol < 0 {
				eventCol = i
			}
		case "natural_description":
			if descCol < 0 {
				descCol = i
			}
		}
	}
	if eventCol < 0 || descCol < 0 {
		return 0, 0, fmt.Errorf("corpus table needs structured_event and natural_description columns, got %v", header)
	}
	return eventCol, descCol, nil
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}
