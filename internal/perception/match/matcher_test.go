package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

func tp(text string, y float64) entity.TapPoint {
	return entity.TapPoint{Text: text, X: 100, Y: y, Confidence: 0.9}
}

func TestFindExactBeatsContains(t *testing.T) {
	m := NewMatcher()
	elements := []entity.TapPoint{
		tp("General Settings", 200),
		tp("General", 300),
	}

	res, ok := m.Find("General", elements)
	require.True(t, ok)
	assert.Equal(t, entity.MatchExact, res.Strategy)
	assert.Equal(t, 300.0, res.Element.Y)
}

func TestFindContainsIsCaseAndWhitespaceInsensitive(t *testing.T) {
	m := NewMatcher()
	elements := []entity.TapPoint{
		tp("  general   SETTINGS ", 150),
	}

	res, ok := m.Find("General Settings", elements)
	require.True(t, ok)
	assert.Equal(t, entity.MatchContains, res.Strategy)

	// Containment works both directions: a short label matches a longer
	// recognized string and vice versa.
	res, ok = m.Find("Settings", elements)
	require.True(t, ok)
	assert.Equal(t, entity.MatchContains, res.Strategy)
}

func TestFindFuzzyToleratesOCRNoise(t *testing.T) {
	m := NewMatcher()
	// "Bluetooth" misread with one substitution.
	elements := []entity.TapPoint{tp("Bluet0oth", 180)}

	res, ok := m.Find("Bluetooth", elements)
	require.True(t, ok)
	assert.Equal(t, entity.MatchFuzzy, res.Strategy)
}

func TestFindFuzzyPicksBestScore(t *testing.T) {
	m := NewMatcher()
	elements := []entity.TapPoint{
		tp("Notifixations", 100), // distance 1
		tp("Notifucatuons", 200), // distance 2
	}

	res, ok := m.Find("Notifications", elements)
	require.True(t, ok)
	assert.Equal(t, 100.0, res.Element.Y)
}

func TestFindRespectsConfidenceFloor(t *testing.T) {
	m := NewMatcher()
	elements := []entity.TapPoint{tp("Storage", 100)}

	_, ok := m.Find("Privacy", elements)
	assert.False(t, ok)
}

func TestFindIgnoresIconElements(t *testing.T) {
	m := NewMatcher()
	// Detected icons carry empty text and must never fuzzy-match.
	elements := []entity.TapPoint{{X: 50, Y: 800}, tp("Wi-Fi", 300)}

	res, ok := m.Find("Wi-Fi", elements)
	require.True(t, ok)
	assert.Equal(t, "Wi-Fi", res.Element.Text)

	_, ok = m.Find("Cellular", elements)
	assert.False(t, ok)
}

func TestIsVisible(t *testing.T) {
	m := NewMatcher()
	elements := []entity.TapPoint{tp("About", 220)}

	assert.True(t, m.IsVisible("About", elements))
	assert.False(t, m.IsVisible("Legal", elements))
}

func TestPickLandmarkPrefersHeaderZone(t *testing.T) {
	elements := []entity.TapPoint{
		tp("9:41", 30),          // status bar clock
		tp("42", 90),            // bare counter
		tp("Settings", 140),     // header zone
		tp("Accessibility", 200), // header zone, lower
		tp("General", 400),
	}

	lm, ok := PickLandmark(elements)
	require.True(t, ok)
	assert.Equal(t, "Settings", lm.Text)
}

func TestPickLandmarkFallsBackToTopmost(t *testing.T) {
	elements := []entity.TapPoint{
		tp("General", 400),
		tp("Privacy", 500),
	}

	lm, ok := PickLandmark(elements)
	require.True(t, ok)
	assert.Equal(t, "General", lm.Text)
}

func TestPickLandmarkNoneQualify(t *testing.T) {
	elements := []entity.TapPoint{
		tp("9:41 AM", 30),
		tp("100", 420),
		{X: 10, Y: 300}, // icon, no text
	}

	_, ok := PickLandmark(elements)
	assert.False(t, ok)
}

func TestFingerprintSortedAndFiltered(t *testing.T) {
	a := []entity.TapPoint{
		tp("9:41", 30),
		tp("Zulu", 400),
		tp("Alpha", 500),
	}
	b := []entity.TapPoint{
		tp("Alpha", 120), // position changed, text set identical
		tp("12:15", 28),
		tp("Zulu", 310),
	}

	fa, fb := Fingerprint(a), Fingerprint(b)
	assert.Equal(t, []string{"Alpha", "Zulu"}, fa)
	assert.True(t, SameFingerprint(fa, fb))

	c := append(b, tp("Bravo", 600))
	assert.False(t, SameFingerprint(fa, Fingerprint(c)))
}
