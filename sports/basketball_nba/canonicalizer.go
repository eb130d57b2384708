package basketball_nba

import (
	"regexp"
	"strings"
	"unicode"
)

// Player token: optional initial ("J. "), a capitalized name, optional suffix
const playerPattern = `((?:\p{Lu}\. )?\p{Lu}[\p{L}'’\-]*(?: (?:Jr\.|Sr\.|II|III|IV))?)`

// Shot description: up to five words ending in a shot noun, e.g. "Turnaround Fadeaway Jump Shot"
const shotTypePattern = `((?:[A-Za-z0-9\-]+ ){0,5}(?i:shot|layup|dunk|jumper|floater|fadeaway|hook)\b)`

// Upper-case feed markers the player pattern would otherwise accept as a name
var feedMarkers = map[string]bool{
	"MISS":    true,
	"SUB":     true,
	"TEAM":    true,
	"BLOCK":   true,
	"STEAL":   true,
	"REBOUND": true,
	"FOUL":    true,
}

type rewriteRule struct {
	name    string
	pattern *regexp.Regexp
	render  func(groups []string) string
}

// notMarker rejects matches whose player group is a feed marker
func notMarker(render func(groups []string) string) func(groups []string) string {
	return func(groups []string) string {
		if feedMarkers[groups[1]] {
			return groups[0]
		}
		return render(groups)
	}
}

// Canonicalizer rewrites raw feed text into the structured_event form
// with an ordered list of rules. Each rule runs over the whole string
// and sees the output of the previous one.
type Canonicalizer struct {
	rules []rewriteRule
}

// NewCanonicalizer creates a canonicalizer with the standard NBA rule set
func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{
		rules: []rewriteRule{
			{
				name:    "missed_shot",
				pattern: regexp.MustCompile(`MISS ` + playerPattern + ` (\d+)' ` + shotTypePattern),
				render: func(g []string) string {
					return g[1] + " attempts a " + g[2] + "-foot " + renderShotType(g[3]) + " but misses."
				},
			},
			{
				name:    "made_shot",
				pattern: regexp.MustCompile(playerPattern + ` (\d+)' ` + shotTypePattern),
				render: notMarker(func(g []string) string {
					return g[1] + " sinks a " + g[2] + "-foot " + renderShotType(g[3]) + "."
				}),
			},
			{
				name:    "rebound",
				pattern: regexp.MustCompile(playerPattern + ` REBOUND\b`),
				render: func(g []string) string {
					return g[1] + " grabs the rebound."
				},
			},
			{
				name:    "steal",
				pattern: regexp.MustCompile(playerPattern + ` STEAL ` + playerPattern + ` Lost Ball Turnover`),
				render: func(g []string) string {
					return g[1] + " steals the ball from " + g[2] + "."
				},
			},
			{
				name:    "offensive_foul",
				pattern: regexp.MustCompile(playerPattern + ` OFF\.Foul`),
				render: func(g []string) string {
					return g[1] + " commits an offensive foul."
				},
			},
		},
	}
}

// Canonicalize returns the structured_event for raw text. The bool is
// false when the input (or the result) is empty and the record should be dropped.
func (c *Canonicalizer) Canonicalize(raw string) (string, bool) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", false
	}

	for _, rule := range c.rules {
		text = rule.apply(text)
	}

	text = strings.TrimSpace(text)
	return text, text != ""
}

// RuleNames returns the rule names in application order
func (c *Canonicalizer) RuleNames() []string {
	names := make([]string, len(c.rules))
	for i, r := range c.rules {
		names[i] = r.name
	}
	return names
}

func (r rewriteRule) apply(text string) string {
	matches := r.pattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])

		groups := make([]string, len(m)/2)
		for i := range groups {
			if m[2*i] >= 0 {
				groups[i] = text[m[2*i]:m[2*i+1]]
			}
		}
		b.WriteString(r.render(groups))
		last = m[1]
	}
	b.WriteString(text[last:])

	return b.String()
}

// renderShotType lower-cases a shot description but keeps acronyms like 3PT
func renderShotType(shot string) string {
	words := strings.Fields(shot)
	for i, w := range words {
		if !isAcronym(w) {
			words[i] = strings.ToLower(w)
		}
	}
	return strings.Join(words, " ")
}

func isAcronym(word string) bool {
	hasDigit := false
	for _, r := range word {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsDigit(r) {
			hasDigit = true
		}
	}
	return hasDigit
}
