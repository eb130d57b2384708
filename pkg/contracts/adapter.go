package contracts

import (
	"context"
	"errors"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// ErrMalformedRow is returned by adapters for rows missing required fields.
// Callers skip the row.
var ErrMalformedRow = errors.New("malformed row")

// SourceAdapter normalizes rows of one upstream schema into intermediate records.
// Adding an upstream feed means adding an adapter, not touching the canonicalizer.
type SourceAdapter interface {
	// Schema returns the schema this adapter handles (e.g., "historical")
	Schema() models.SourceSchema

	// RequiredColumns lists the columns that identify this schema in a header row
	RequiredColumns() []string

	// Normalize converts one raw row. Returns ErrMalformedRow when required
	// fields are missing or unparseable.
	Normalize(row models.RawRow) (*models.IntermediateRecord, error)
}

// NameExtractor recovers participant names from event text.
// Implementations may be heuristic, dictionary- or model-backed.
type NameExtractor interface {
	// ExtractNames returns up to three names in order of appearance
	ExtractNames(text string) []string
}

// Publisher receives finished commentary records
type Publisher interface {
	Publish(ctx context.Context, record *models.CommentaryRecord) error
	Close() error
}

// BatchPublisher is implemented by sinks that can take many records in one round trip
type BatchPublisher interface {
	PublishBatch(ctx context.Context, records []*models.CommentaryRecord) error
}

// CommentaryEngine turns intermediate records into corpus records for one sport.
// Implementations never fail on content: unrecognized events fall back to
// their own text.
type CommentaryEngine interface {
	// GetSportKey returns the sport identifier (e.g., "basketball_nba")
	GetSportKey() string

	// GetDisplayName returns human-readable name (e.g., "NBA Basketball")
	GetDisplayName() string

	// Canonicalize rewrites raw text into the structured_event form.
	// Returns false for empty input.
	Canonicalize(raw string) (string, bool)

	// Extract returns the participants of a structured event
	Extract(structuredEvent string) models.ExtractedEntities

	// Normalize produces the corpus record, or false when the record is dropped
	Normalize(ctx context.Context, record *models.IntermediateRecord) (*models.CommentaryRecord, bool)
}
