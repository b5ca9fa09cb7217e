package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const windowWidth = 410.0

func el(text string, centerX, topY, bottomY, width float64) entity.RawTextElement {
	return entity.RawTextElement{
		Text:       text,
		CenterX:    centerX,
		TopY:       topY,
		BottomY:    bottomY,
		Width:      width,
		Confidence: 0.9,
	}
}

func TestResolveEmptyInput(t *testing.T) {
	assert.Empty(t, Resolve(nil, windowWidth))
	assert.Empty(t, Resolve([]entity.RawTextElement{}, windowWidth))
}

func TestResolveIconRowSpringboard(t *testing.T) {
	// Four short captions on one baseline with a large gap above: a home
	// screen icon grid. Every tap lands on the glyph at topY-30.
	elements := []entity.RawTextElement{
		el("Météo", 50, 150, 165, 60),
		el("Calendrier", 150, 150, 165, 80),
		el("Photos", 250, 150, 165, 55),
		el("Appareil", 350, 150, 165, 70),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 4)
	for _, p := range points {
		assert.Equal(t, 120.0, p.Y, "caption %q", p.Text)
	}
}

func TestResolveIsolatedLabelKeepsTextCenter(t *testing.T) {
	// One short label with a huge gap above it is a list row, not an icon
	// caption. The offset would land in the separator above it.
	elements := []entity.RawTextElement{
		el("General", 100, 300, 320, 70),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 1)
	assert.Equal(t, 310.0, points[0].Y)
}

func TestResolveWideStringNeverOffset(t *testing.T) {
	// Short text but spanning most of the window width.
	elements := []entity.RawTextElement{
		el("OK", 100, 150, 165, 30),
		el("Wide banner", 205, 150, 165, 380),
		el("Go", 300, 150, 165, 28),
		el("Up", 380, 150, 165, 26),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 4)
	assert.Equal(t, 120.0, points[0].Y)
	assert.Equal(t, 157.5, points[1].Y, "wide element keeps its text center")
	assert.Equal(t, 120.0, points[2].Y)
	assert.Equal(t, 120.0, points[3].Y)
}

func TestResolveSmallGapKeepsMidpoint(t *testing.T) {
	elements := []entity.RawTextElement{
		el("Header", 200, 100, 120, 120),
		el("Mail", 50, 140, 155, 40),
		el("Maps", 150, 140, 155, 42),
		el("Music", 250, 140, 155, 44),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 4)
	// gap = 140-120 = 20, below the 50pt threshold.
	for _, p := range points[1:] {
		assert.Equal(t, 147.5, p.Y, "caption %q", p.Text)
	}
}

func TestResolveNoiseFragmentBypassedForGap(t *testing.T) {
	// A lone badge digit sits between the previous content and the icon
	// row. It must not close the gap that qualifies the row for the offset.
	elements := []entity.RawTextElement{
		el("Title", 200, 20, 40, 100),
		el("3", 60, 130, 140, 10),
		el("Mail", 50, 150, 165, 40),
		el("Maps", 150, 150, 165, 42),
		el("Music", 250, 150, 165, 44),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 5)
	for _, p := range points[2:] {
		// gap measured against "Title" (bottom 40): 110pt.
		assert.Equal(t, 120.0, p.Y, "caption %q", p.Text)
	}
}

func TestResolveClampAtZero(t *testing.T) {
	elements := []entity.RawTextElement{
		// Row qualifies only when the gap above exceeds 50pt, so place
		// the captions just past the threshold with tiny tops.
		el("A", 50, 55, 70, 20),
		el("B", 150, 55, 70, 20),
		el("C", 250, 55, 70, 20),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 3)
	for _, p := range points {
		assert.Equal(t, 25.0, p.Y)
		assert.GreaterOrEqual(t, p.Y, 0.0)
	}
}

func TestResolvePureYProjection(t *testing.T) {
	elements := []entity.RawTextElement{
		el("Bravo", 210, 90, 110, 66),
		el("Alpha", 120, 30, 50, 64),
		el("Charlie", 310, 200, 220, 70),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, len(elements))

	// Output ordered by ascending top-y regardless of input order.
	assert.Equal(t, "Alpha", points[0].Text)
	assert.Equal(t, "Bravo", points[1].Text)
	assert.Equal(t, "Charlie", points[2].Text)

	// Text, x and confidence pass through untouched.
	assert.Equal(t, 120.0, points[0].X)
	assert.Equal(t, 210.0, points[1].X)
	assert.Equal(t, 0.9, points[2].Confidence)
}

func TestResolveStableOnTies(t *testing.T) {
	elements := []entity.RawTextElement{
		el("Left", 50, 100, 115, 40),
		el("Right", 300, 100, 115, 44),
	}

	points := Resolve(elements, windowWidth)
	require.Len(t, points, 2)
	assert.Equal(t, "Left", points[0].Text)
	assert.Equal(t, "Right", points[1].Text)
}
