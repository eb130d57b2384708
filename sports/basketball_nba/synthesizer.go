package basketball_nba

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"

	"github.com/XavierBriggs/fortuna/services/commentary-corpus/pkg/models"
)

var (
	technicalFoulPattern = regexp.MustCompile(`\bT\.FOUL\b|(?i:technical foul)`)
	blockActorPattern    = regexp.MustCompile(`(\S+)\s+(?i:block(?:s|ed)?)\b`)
	stealActorPattern    = regexp.MustCompile(`(\S+)\s+(?i:steal(?:s)?)\b`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

// Generic categories in match order. 3PT precedes Jump Shot so that
// "3PT jump shot" lands on the three-point templates.
var genericCategories = []string{
	CategoryAlleyOop,
	CategoryDunk,
	Category3PT,
	CategoryLayup,
	CategoryHookShot,
	CategoryJumpShot,
	CategoryRebound,
	CategoryTurnover,
	CategoryGoaltending,
}

var shotWords = []string{"shot", "fadeaway", "hook", "floating", "floater"}

var turnoverWords = []string{"travel", "lost ball", "bad pass", "double dribble", "backcourt", "out of bounds"}

// Commentary is a synthesized description and the category that produced it
type Commentary struct {
	Text     string
	Category string
}

// event is the per-call view every cascade rule inspects
type event struct {
	text     string
	lower    string
	entities models.ExtractedEntities
	missed   bool
}

type cascadeRule struct {
	name    string
	resolve func(ev *event) (category string, ok bool)
	render  func(ev *event, category string) string
}

// Synthesizer turns a canonical event and its entities into commentary.
// Rules are tried in order and the first match wins. Safe for concurrent use.
type Synthesizer struct {
	config    *Config
	templates *TemplateSet
	rules     []cascadeRule

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSynthesizer creates a synthesizer. A nil rng is seeded with 0 so that
// output is reproducible by default.
func NewSynthesizer(config *Config, templates *TemplateSet, rng *rand.Rand) *Synthesizer {
	if templates == nil {
		templates = DefaultTemplates()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(0))
	}

	s := &Synthesizer{
		config:    config,
		templates: templates,
		rng:       rng,
	}
	s.rules = s.cascade()
	return s
}

// Synthesize returns the natural description for a canonical event
func (s *Synthesizer) Synthesize(structuredEvent string, entities models.ExtractedEntities) string {
	return s.Compose(structuredEvent, entities).Text
}

// Compose runs the category cascade. It never fails: unmatched events fall
// back to their own text with parentheticals removed.
func (s *Synthesizer) Compose(structuredEvent string, entities models.ExtractedEntities) Commentary {
	ev := &event{
		text:     structuredEvent,
		lower:    strings.ToLower(structuredEvent),
		entities: entities,
		missed:   s.config.IsMiss(structuredEvent),
	}
	if ev.entities.Primary == "" {
		ev.entities.Primary = s.config.SentinelPlayer
	}

	result := Commentary{Category: CategoryFallback}
	for _, rule := range s.rules {
		category, ok := rule.resolve(ev)
		if !ok {
			continue
		}
		result.Category = category
		result.Text = strings.TrimSpace(rule.render(ev, category))
		break
	}

	if result.Text == "" {
		result.Text = strings.TrimSpace(structuredEvent)
	}

	if entities.Assist != "" {
		result.Text += fmt.Sprintf(s.config.AssistClause, entities.Assist)
	}

	return result
}

// Rules returns the cascade rule names in priority order
func (s *Synthesizer) Rules() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.name
	}
	return names
}

func (s *Synthesizer) cascade() []cascadeRule {
	return []cascadeRule{
		{
			name: "block",
			resolve: when(CategoryBlock, func(ev *event) bool {
				return strings.Contains(ev.lower, "block") && ev.entities.HasSecondary()
			}),
			render: s.credited(blockActorPattern),
		},
		{
			name: "steal",
			resolve: when(CategorySteal, func(ev *event) bool {
				return strings.Contains(ev.lower, "steal") && ev.entities.HasSecondary()
			}),
			render: s.credited(stealActorPattern),
		},
		{
			name: "technical_foul",
			resolve: when(CategoryTechnicalFoul, func(ev *event) bool {
				return technicalFoulPattern.MatchString(ev.text)
			}),
			render: s.fromTemplates,
		},
		{
			name: "foul",
			resolve: when(CategoryFoul, func(ev *event) bool {
				return strings.Contains(ev.text, "FOUL")
			}),
			render: s.fromTemplates,
		},
		{
			name: "offensive_foul",
			resolve: when(CategoryOffensiveFoul, func(ev *event) bool {
				return strings.Contains(ev.lower, "offensive foul") || strings.Contains(ev.text, "OFF.Foul")
			}),
			render: s.fromTemplates,
		},
		{
			name: "jump_ball",
			resolve: when(CategoryJumpBall, func(ev *event) bool {
				return strings.Contains(ev.lower, "jump ball")
			}),
			render: func(ev *event, category string) string {
				if ev.entities.Shape != models.ShapeJumpBall {
					return s.config.JumpBallFallback
				}
				return s.fromTemplates(ev, category)
			},
		},
		{
			name: "free_throw",
			resolve: when(CategoryFreeThrow, func(ev *event) bool {
				return strings.Contains(ev.lower, "free throw") && !strings.Contains(ev.lower, "technical")
			}),
			render: s.fromTemplates,
		},
		{
			name: "missed_technical_free_throw",
			resolve: when(CategoryMissedTechnicalFreeThrow, func(ev *event) bool {
				return ev.missed && strings.Contains(ev.lower, "free throw technical")
			}),
			render: s.fromTemplates,
		},
		{
			name: "technical_free_throw",
			resolve: when(CategoryTechnicalFreeThrow, func(ev *event) bool {
				return strings.Contains(ev.lower, "free throw technical")
			}),
			render: s.fromTemplates,
		},
		{
			name: "timeout",
			resolve: when(CategoryTimeout, func(ev *event) bool {
				return strings.Contains(ev.lower, "timeout")
			}),
			render: s.fromTemplates,
		},
		{
			name: "ejection",
			resolve: when(CategoryEjection, func(ev *event) bool {
				return strings.Contains(ev.lower, "ejection") || strings.Contains(ev.lower, "ejected")
			}),
			render: s.fromTemplates,
		},
		{
			name: "substitution",
			resolve: when(CategorySubstitution, func(ev *event) bool {
				return ev.entities.Shape == models.ShapeSubstitution
			}),
			render: s.fromTemplates,
		},
		{
			name: "category_key",
			resolve: func(ev *event) (string, bool) {
				for _, category := range genericCategories {
					if strings.Contains(ev.lower, strings.ToLower(category)) {
						return category, true
					}
				}
				return "", false
			},
			render: s.fromTemplates,
		},
		{
			name: "shot_word",
			resolve: when(CategoryJumpShot, func(ev *event) bool {
				return containsAny(ev.lower, shotWords)
			}),
			render: s.fromTemplates,
		},
		{
			name: "keyword_sniff",
			resolve: func(ev *event) (string, bool) {
				switch {
				case strings.Contains(ev.lower, "reb"):
					return CategoryRebound, true
				case containsAny(ev.lower, turnoverWords):
					return CategoryTurnover, true
				case strings.Contains(ev.lower, "foul"):
					return CategoryFoul, true
				}
				return "", false
			},
			render: s.fromTemplates,
		},
		{
			name: "fallback",
			resolve: func(ev *event) (string, bool) {
				return CategoryFallback, true
			},
			render: func(ev *event, _ string) string {
				return stripParentheticals(ev.text)
			},
		},
	}
}

// fromTemplates picks a template for the category and fills its slots.
// The missed table is used only for categories that branch on the flag.
func (s *Synthesizer) fromTemplates(ev *event, category string) string {
	missed := ev.missed && s.config.HasMissedTemplates(category)

	templates := s.templates.Lookup(category, missed)
	if len(templates) == 0 && missed {
		templates = s.templates.Lookup(category, false)
	}
	if len(templates) == 0 {
		return stripParentheticals(ev.text)
	}

	return fillTemplate(s.pick(templates), ev.entities)
}

// credited renders a two-player event with the actor named immediately
// before the keyword in the PLAYER slot
func (s *Synthesizer) credited(actor *regexp.Regexp) func(ev *event, category string) string {
	return func(ev *event, category string) string {
		entities := ev.entities
		if m := actor.FindStringSubmatch(ev.text); m != nil {
			name := strings.TrimRight(m[1], ".,:;!?")
			if name == entities.Secondary {
				entities.Primary, entities.Secondary = entities.Secondary, entities.Primary
			}
		}
		return s.fromTemplates(&event{
			text:     ev.text,
			lower:    ev.lower,
			entities: entities,
			missed:   ev.missed,
		}, category)
	}
}

func (s *Synthesizer) pick(templates []string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return templates[s.rng.Intn(len(templates))]
}

func fillTemplate(template string, entities models.ExtractedEntities) string {
	// Longer slot names first so PLAYER does not clobber SECOND_PLAYER
	replacer := strings.NewReplacer(
		SlotSecondPlayer, orDefault(entities.Secondary, "another player"),
		SlotThirdPlayer, orDefault(entities.Tertiary, "another player"),
		SlotPlayer, entities.Primary,
	)
	return replacer.Replace(template)
}

func when(category string, predicate func(ev *event) bool) func(ev *event) (string, bool) {
	return func(ev *event) (string, bool) {
		if predicate(ev) {
			return category, true
		}
		return "", false
	}
}

func stripParentheticals(text string) string {
	cleaned := parentheticalPattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(cleaned, " "))
}

func containsAny(s string, substrings []string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
