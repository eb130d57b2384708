package models

// SourceSchema identifies the column layout of an upstream play-by-play feed
type SourceSchema string

const (
	SchemaHistorical SourceSchema = "historical" // home_event / away_event columns
	SchemaLive       SourceSchema = "live"       // description + teamTricode columns
)

// RawRow is one row read from a source file, keyed by column name.
// Rows are read once and never mutated.
type RawRow struct {
	GameID string            `json:"game_id"`
	Schema SourceSchema      `json:"schema"`
	Index  int               `json:"index"`
	Fields map[string]string `json:"fields"`
}

// Get returns the value of a column and whether the column exists
func (r RawRow) Get(column string) (string, bool) {
	v, ok := r.Fields[column]
	return v, ok
}

// IntermediateRecord is the schema-independent form every adapter produces
type IntermediateRecord struct {
	GameID        string `json:"game_id"`
	TimeRemaining string `json:"time_remaining"` // Display string, format differs per source
	Period        int    `json:"period"`
	RawText       string `json:"raw_text"`
	TeamCode      string `json:"team_code,omitempty"`

	// Both home and away descriptions were populated and concatenated
	DualDescription bool `json:"dual_description,omitempty"`
}

// CanonicalEvent is an intermediate record after text canonicalization.
// StructuredEvent is never empty.
type CanonicalEvent struct {
	GameID          string `json:"game_id"`
	Period          int    `json:"period"`
	TimeRemaining   string `json:"time_remaining"`
	StructuredEvent string `json:"structured_event"`
}

// EntityShape records which extractor produced the entity slots
type EntityShape string

const (
	ShapeGeneric      EntityShape = "generic"
	ShapeJumpBall     EntityShape = "jump_ball"
	ShapeSubstitution EntityShape = "substitution"
)

// DefaultPrimary is used when no participant can be extracted
const DefaultPrimary = "A player"

// ExtractedEntities holds up to three participants plus an assist credit.
// Slots fill left to right: Secondary implies Primary, Tertiary implies both.
// An empty string means the slot is unset.
type ExtractedEntities struct {
	Primary   string      `json:"primary"`
	Secondary string      `json:"secondary,omitempty"`
	Tertiary  string      `json:"tertiary,omitempty"`
	Assist    string      `json:"assist,omitempty"`
	Shape     EntityShape `json:"shape"`
}

// HasSecondary reports whether a second participant was extracted
func (e ExtractedEntities) HasSecondary() bool {
	return e.Secondary != ""
}

// Names returns the populated participant slots in order
func (e ExtractedEntities) Names() []string {
	names := make([]string, 0, 3)
	for _, n := range []string{e.Primary, e.Secondary, e.Tertiary} {
		if n == "" {
			break
		}
		names = append(names, n)
	}
	return names
}

// CommentaryRecord is the final corpus unit. Only StructuredEvent and
// NaturalDescription are part of the output table.
type CommentaryRecord struct {
	StructuredEvent    string `json:"structured_event"`
	NaturalDescription string `json:"natural_description"`

	// Metadata
	GameID        string `json:"game_id,omitempty"`
	TimeRemaining string `json:"time_remaining,omitempty"`
	Category      string `json:"category,omitempty"`
}

// CorpusColumns is the column contract of the output table
var CorpusColumns = []string{"structured_event", "natural_description"}
