package match

import (
	"sort"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Fingerprint reduces an element set to the sorted list of its stable text
// strings, using the same exclusions as the landmark picker. Two equal
// fingerprints mean no visible change occurred: either a scroll hit the end
// of its content or a tap silently failed.
func Fingerprint(elements []entity.TapPoint) []string {
	var texts []string
	for _, el := range elements {
		if isAnchorCandidate(el) {
			texts = append(texts, el.Text)
		}
	}
	sort.Strings(texts)
	return texts
}

// SameFingerprint compares two fingerprints for equality.
func SameFingerprint(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
