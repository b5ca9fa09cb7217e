package icons

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

var testWindow = entity.WindowSize{Width: 410, Height: 898}

// newScreen returns a white frame at 1px per point.
func newScreen() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 410, 898))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	return img
}

func fillSquare(img *image.RGBA, cx, cy, size int, c color.Color) {
	r := image.Rect(cx-size/2, cy-size/2, cx+size/2, cy+size/2)
	draw.Draw(img, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func TestDiscoverZones(t *testing.T) {
	zones := DiscoverZones(nil, testWindow)
	require.Len(t, zones, 2)
	assert.Equal(t, statusBarHeight, zones[0].Top)
	assert.InDelta(t, 0.12*898, zones[0].Bottom, 0.01)
	assert.InDelta(t, 0.85*898, zones[1].Top, 0.01)
	assert.Equal(t, 898.0, zones[1].Bottom)
}

func TestDiscoverZonesRejectsTextHeavyBand(t *testing.T) {
	points := []entity.TapPoint{
		{Text: "Overview", Y: 820},
		{Text: "Transactions", Y: 840},
		{Text: "Settings", Y: 860},
	}

	zones := DiscoverZones(points, testWindow)
	require.Len(t, zones, 1, "bottom band with three labels is not empty")
	assert.Equal(t, statusBarHeight, zones[0].Top)
}

func TestDiscoverZonesIgnoresNoiseFragments(t *testing.T) {
	points := []entity.TapPoint{
		{Text: "3", Y: 820},
		{Text: "••", Y: 840},
		{Text: "OK", Y: 860},
	}

	zones := DiscoverZones(points, testWindow)
	assert.Len(t, zones, 2, "sub-3-rune fragments do not disqualify a zone")
}

func TestClusterFindsSolidIconsOnFlatBar(t *testing.T) {
	img := newScreen()
	centers := []int{60, 160, 260}
	for _, cx := range centers {
		fillSquare(img, cx, 830, 40, color.Black)
	}

	icons := clusterZone(img, entity.EmptyZone{Top: 763, Bottom: 898}, 1)
	require.Len(t, icons, 3)

	for i, ic := range icons {
		assert.InDelta(t, float64(centers[i]), ic.X, 4, "icon %d x", i)
		assert.InDelta(t, 830, ic.Y, 4, "icon %d y", i)
		assert.InDelta(t, 40, ic.Size, 8, "icon %d size", i)
	}
}

func TestClusterZeroBarRowsContributesNothing(t *testing.T) {
	// A photographic zone: per-pixel noise keeps every row below the
	// background fraction, so no bar rows and no candidates.
	img := newScreen()
	for y := 763; y < 898; y++ {
		for x := 0; x < 410; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 7 % 255), uint8(y * 13 % 255), uint8((x + y) % 255), 255})
		}
	}

	icons := clusterZone(img, entity.EmptyZone{Top: 763, Bottom: 898}, 1)
	assert.Empty(t, icons)
}

func TestCompleteRowExtrapolatesUniformSpacing(t *testing.T) {
	row := []entity.DetectedIcon{
		{X: 155, Y: 830, Size: 40},
		{X: 55, Y: 830, Size: 40},
		{X: 255, Y: 830, Size: 40},
	}

	out := completeRow(row, testWindow)
	require.Len(t, out, 4, "one slot open on the right before the edge")
	assert.InDelta(t, 355, out[3].X, 0.01)
	assert.InDelta(t, 830, out[3].Y, 0.01)
}

func TestCompleteRowLeavesIrregularSpacingAlone(t *testing.T) {
	row := []entity.DetectedIcon{
		{X: 55, Y: 830, Size: 40},
		{X: 120, Y: 830, Size: 40},
		{X: 300, Y: 830, Size: 40},
	}

	out := completeRow(row, testWindow)
	assert.Len(t, out, 3)
}

func TestMergeByProximityFavorsClustering(t *testing.T) {
	clustered := []entity.DetectedIcon{{X: 100, Y: 830, Size: 40}}
	salient := []entity.DetectedIcon{
		{X: 110, Y: 835, Size: 36}, // duplicate of the clustered one
		{X: 300, Y: 830, Size: 38},
	}

	merged := mergeByProximity(clustered, salient, 20)
	require.Len(t, merged, 2)
	assert.Equal(t, 100.0, merged[0].X)
	assert.Equal(t, 300.0, merged[1].X)
}

func TestDetectNeverReturnsCandidateNearRecognizedText(t *testing.T) {
	img := newScreen()
	fillSquare(img, 60, 830, 40, color.Black)
	fillSquare(img, 160, 830, 40, color.Black)
	fillSquare(img, 260, 830, 40, color.Black)

	taps := []entity.TapPoint{{Text: "Home", X: 62, Y: 828, Confidence: 0.9}}

	d := NewDetector(DefaultConfig(), nil)
	icons := d.Detect(img, taps, testWindow)

	for _, ic := range icons {
		dist := math.Hypot(ic.X-62, ic.Y-828)
		assert.Greater(t, dist, d.cfg.ProximityRadius, "candidate at (%f,%f)", ic.X, ic.Y)
	}
	// The two uncovered icons survive.
	assert.GreaterOrEqual(t, len(icons), 2)
}

func TestSaliencyFlatZoneYieldsNothing(t *testing.T) {
	img := newScreen()
	icons := saliencyZone(img, entity.EmptyZone{Top: 763, Bottom: 898}, 1)
	assert.Empty(t, icons)
}

func TestSaliencyCandidatesStayPlausible(t *testing.T) {
	img := newScreen()
	// Outline-style icons: strokes only, hollow interior.
	for _, cx := range []int{80, 205, 330} {
		for i := 0; i < 3; i++ {
			r := image.Rect(cx-25+i, 805+i, cx+25-i, 855-i)
			draw.Draw(img, r, image.NewUniform(color.Black), image.Point{}, draw.Src)
			inner := image.Rect(cx-25+i+3, 805+i+3, cx+25-i-3, 855-i-3)
			draw.Draw(img, inner, image.NewUniform(color.White), image.Point{}, draw.Src)
		}
	}

	icons := saliencyZone(img, entity.EmptyZone{Top: 763, Bottom: 898}, 1)
	for _, ic := range icons {
		assert.GreaterOrEqual(t, ic.Size, minIconWidth)
		assert.LessOrEqual(t, ic.Size, maxIconWidth)
		assert.GreaterOrEqual(t, ic.Y, 763.0)
		assert.LessOrEqual(t, ic.Y, 898.0)
	}
}
