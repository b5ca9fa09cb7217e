// Package match resolves human-readable labels against perceived elements,
// picks wait anchors and fingerprints screens for change detection.
package match

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// minFuzzyScore is the confidence floor for the approximate rung of the
// ladder. OCR noise on short labels rarely drops similarity below this.
const minFuzzyScore = 0.75

// Matcher searches an element list with a fixed strategy ladder: exact
// equality, then case/whitespace-insensitive containment, then Levenshtein
// similarity. Ties break by strategy priority, never by distance.
type Matcher struct {
	minScore float64
}

func NewMatcher() *Matcher {
	return &Matcher{minScore: minFuzzyScore}
}

// Find returns the first element matching label, together with the strategy
// that succeeded.
func (m *Matcher) Find(label string, elements []entity.TapPoint) (entity.MatchResult, bool) {
	for _, el := range elements {
		if el.Text == label {
			return entity.MatchResult{Element: el, Strategy: entity.MatchExact}, true
		}
	}

	want := normalize(label)
	if want != "" {
		for _, el := range elements {
			have := normalize(el.Text)
			if have == "" {
				continue
			}
			if strings.Contains(have, want) || strings.Contains(want, have) {
				return entity.MatchResult{Element: el, Strategy: entity.MatchContains}, true
			}
		}

		best := -1
		bestScore := 0.0
		for i, el := range elements {
			score := similarity(want, normalize(el.Text))
			if score >= m.minScore && score > bestScore {
				best, bestScore = i, score
			}
		}
		if best >= 0 {
			return entity.MatchResult{Element: elements[best], Strategy: entity.MatchFuzzy}, true
		}
	}

	return entity.MatchResult{}, false
}

// IsVisible is the same search as Find without returning the match.
func (m *Matcher) IsVisible(label string, elements []entity.TapPoint) bool {
	_, ok := m.Find(label, elements)
	return ok
}

// normalize lowercases and collapses all whitespace runs to single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// similarity maps Levenshtein distance onto [0,1], 1 meaning identical.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	la, lb := len([]rune(a)), len([]rune(b))
	longest := la
	if lb > longest {
		longest = lb
	}
	d := levenshtein.ComputeDistance(a, b)
	return 1 - float64(d)/float64(longest)
}
