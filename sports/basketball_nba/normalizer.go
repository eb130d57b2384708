package basketball_nba

import (
	"context"
	"math/rand"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

// Options customizes a Normalizer. Zero values select the defaults.
type Options struct {
	Templates *TemplateSet
	Rand      *rand.Rand
	Names     contracts.NameExtractor
}

// Normalizer implements CommentaryEngine for NBA Basketball
type Normalizer struct {
	config        *Config
	canonicalizer *Canonicalizer
	extractor     *EntityExtractor
	synthesizer   *Synthesizer
}

// NewNormalizer creates a new NBA normalizer with default templates and seed 0
func NewNormalizer() *Normalizer {
	return NewNormalizerWithOptions(Options{})
}

// NewNormalizerWithOptions creates a new NBA normalizer
func NewNormalizerWithOptions(opts Options) *Normalizer {
	config := DefaultConfig()
	return &Normalizer{
		config:        config,
		canonicalizer: NewCanonicalizer(),
		extractor:     NewEntityExtractor(config, opts.Names),
		synthesizer:   NewSynthesizer(config, opts.Templates, opts.Rand),
	}
}

// GetSportKey returns the sport identifier
func (n *Normalizer) GetSportKey() string {
	return n.config.SportKey
}

// GetDisplayName returns the human-readable name
func (n *Normalizer) GetDisplayName() string {
	return n.config.DisplayName
}

// Canonicalize rewrites raw feed text into a structured event
func (n *Normalizer) Canonicalize(raw string) (string, bool) {
	return n.canonicalizer.Canonicalize(raw)
}

// Extract returns the participants of a structured event
func (n *Normalizer) Extract(structuredEvent string) models.ExtractedEntities {
	return n.extractor.Extract(structuredEvent)
}

// Normalize turns an intermediate record into a corpus record.
// Returns false when the text canonicalizes to nothing.
func (n *Normalizer) Normalize(ctx context.Context, record *models.IntermediateRecord) (*models.CommentaryRecord, bool) {
	structured, ok := n.canonicalizer.Canonicalize(record.RawText)
	if !ok {
		return nil, false
	}

	entities := n.extractor.Extract(structured)
	commentary := n.synthesizer.Compose(structured, entities)

	return &models.CommentaryRecord{
		StructuredEvent:    structured,
		NaturalDescription: commentary.Text,
		GameID:             record.GameID,
		TimeRemaining:      record.TimeRemaining,
		Category:           commentary.Category,
	}, true
}
