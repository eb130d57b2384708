package basketball_nba

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

var (
	parentheticalPattern = regexp.MustCompile(`\([^()]*\)`)
	assistPattern        = regexp.MustCompile(`\(([^()]+?)\s+(?:\d+\s+)?AST\)`)
	jumpBallPattern      = regexp.MustCompile(`(?i)jump ball (.+?) vs\. (.+?): tip to (.+?)\s*(?:\(|$)`)
	substitutionPattern  = regexp.MustCompile(`SUB: (.+?) FOR (.+?)\s*(?:\(|$)`)
)

const maxParticipants = 3

// TokenExtractor is the default NameExtractor: capitalized tokens that are
// not feed vocabulary, in order of appearance
type TokenExtractor struct {
	config *Config
}

// NewTokenExtractor creates a capitalized-token name extractor
func NewTokenExtractor(config *Config) *TokenExtractor {
	return &TokenExtractor{config: config}
}

// ExtractNames returns up to three distinct names found outside parentheses
func (e *TokenExtractor) ExtractNames(text string) []string {
	cleaned := parentheticalPattern.ReplaceAllString(text, " ")

	names := make([]string, 0, maxParticipants)
	seen := make(map[string]bool)

	for _, token := range strings.Fields(cleaned) {
		if e.config.IsStopword(token) {
			continue
		}
		token = strings.TrimRight(token, ".,:;!?")
		if token == "" || e.config.IsStopword(token) || !looksLikeName(token) || seen[token] {
			continue
		}

		seen[token] = true
		names = append(names, token)
		if len(names) == maxParticipants {
			break
		}
	}

	return names
}

// looksLikeName: upper-case first rune and at least one lower-case letter.
// Rejects feed markers (MISS, STEAL), tricodes (BOS:) and initials (J.).
func looksLikeName(token string) bool {
	first := true
	hasLower := false
	for _, r := range token {
		if first {
			if !unicode.IsUpper(r) {
				return false
			}
			first = false
			continue
		}
		if unicode.IsLower(r) {
			hasLower = true
		}
	}
	return hasLower
}

// EntityExtractor fills participant slots for a canonical event.
// Jump ball and substitution shapes take priority over the name heuristic.
type EntityExtractor struct {
	config *Config
	names  contracts.NameExtractor
}

// NewEntityExtractor creates an extractor. A nil NameExtractor selects the
// capitalized-token heuristic.
func NewEntityExtractor(config *Config, names contracts.NameExtractor) *EntityExtractor {
	if names == nil {
		names = NewTokenExtractor(config)
	}
	return &EntityExtractor{
		config: config,
		names:  names,
	}
}

// Extract never fails; when no participant is found the primary slot holds
// the sentinel player
func (e *EntityExtractor) Extract(text string) models.ExtractedEntities {
	entities := models.ExtractedEntities{Shape: models.ShapeGeneric}

	if m := assistPattern.FindStringSubmatch(text); m != nil {
		entities.Assist = strings.TrimSpace(m[1])
	}

	switch {
	case matchShape(&entities, jumpBallPattern, text, models.ShapeJumpBall):
	case matchShape(&entities, substitutionPattern, text, models.ShapeSubstitution):
	default:
		fillSlots(&entities, e.names.ExtractNames(text))
	}

	if entities.Primary == "" {
		entities = models.ExtractedEntities{
			Primary: e.config.SentinelPlayer,
			Assist:  entities.Assist,
			Shape:   models.ShapeGeneric,
		}
	}

	return entities
}

// matchShape fills every slot from the pattern's groups, or nothing when
// any group is blank
func matchShape(entities *models.ExtractedEntities, pattern *regexp.Regexp, text string, shape models.EntityShape) bool {
	m := pattern.FindStringSubmatch(text)
	if m == nil {
		return false
	}

	names := make([]string, 0, len(m)-1)
	for _, group := range m[1:] {
		name := strings.TrimSpace(group)
		if name == "" {
			return false
		}
		names = append(names, name)
	}

	fillSlots(entities, names)
	entities.Shape = shape
	return true
}

// fillSlots assigns names left to right and stops at the first empty one
func fillSlots(entities *models.ExtractedEntities, names []string) {
	slots := []*string{&entities.Primary, &entities.Secondary, &entities.Tertiary}
	for i, name := range names {
		if i == len(slots) || strings.TrimSpace(name) == "" {
			return
		}
		*slots[i] = strings.TrimSpace(name)
	}
}
