package claim

import (
	"regexp"
	"strings"

	"github.com/ppiankov/nightfall/internal/model"
)

// Match is the classifier's verdict on a piece of text
type Match struct {
	Role      model.Role
	Heuristic string // Which rule matched (e.g., "strong:seer", "loose:knight")
}

type rolePattern struct {
	role   model.Role
	strong []*regexp.Regexp
	loose  []*regexp.Regexp
}

// Classifier detects role claims in free text with fixed keyword heuristics.
// Its decision boundary (first person + role noun means a claim) is policy:
// ambiguous phrasing is accepted as a claim on purpose.
type Classifier struct {
	negation *regexp.Regexp
	patterns []rolePattern
}

// NewClassifier creates a classifier with the built-in role vocabulary
func NewClassifier() *Classifier {
	nouns := []struct {
		role model.Role
		noun string
	}{
		{model.RoleSeer, `seer|inspector|fortune[- ]?teller`},
		{model.RoleMedium, `medium|spirit[- ]?reader`},
		{model.RoleKnight, `knight|protector|bodyguard|guard`},
		{model.RoleVillager, `villager|townsfolk`},
	}

	c := &Classifier{
		negation: regexp.MustCompile(`(?i)\bnot\b|\bisn['’]?t\b`),
	}
	for _, n := range nouns {
		noun := `(?:` + n.noun + `)`
		c.patterns = append(c.patterns, rolePattern{
			role: n.role,
			strong: []*regexp.Regexp{
				// First-person marker directly before the role noun
				regexp.MustCompile(`(?i)\b(?:i am|i['’]?m)\s+(?:really\s+|actually\s+|truly\s+)?(?:the\s+|a\s+|an\s+)?` + noun + `\b`),
				// Explicit emphasis marker
				regexp.MustCompile(`(?i)\b` + noun + `\s+co\b`),
				regexp.MustCompile(`(?i)\bcom(?:e|ing)\s+out\s+as\s+(?:the\s+|a\s+|an\s+)?` + noun + `\b`),
			},
			loose: []*regexp.Regexp{
				regexp.MustCompile(`(?i)\b(?:i|me|my|i['’]?m)\b.*\b` + noun + `\b`),
				regexp.MustCompile(`(?i)\b` + noun + `\b.*\b(?:me|i)\b`),
			},
		})
	}
	return c
}

// Classify returns the claimed role, or ok=false for NotAClaim.
// Negated and questioning text never claims.
func (c *Classifier) Classify(text string) (Match, bool) {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "?？") || c.negation.MatchString(text) {
		return Match{}, false
	}

	for _, p := range c.patterns {
		for _, re := range p.strong {
			if re.MatchString(text) {
				return Match{Role: p.role, Heuristic: "strong:" + string(p.role)}, true
			}
		}
	}
	for _, p := range c.patterns {
		for _, re := range p.loose {
			if re.MatchString(text) {
				return Match{Role: p.role, Heuristic: "loose:" + string(p.role)}, true
			}
		}
	}
	return Match{}, false
}
