package icons

import (
	"image"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// bgSampleStride thins the interior pixels used for the background
	// color estimate.
	bgSampleStride = 4
	// bgChannelTolerance: per-channel distance within which a pixel still
	// counts as background.
	bgChannelTolerance = 30
	// barRowFraction: a row belongs to the bar when at least this share of
	// its pixels sits on the background color. Photographic bleed-through
	// never clears this.
	barRowFraction = 0.55
	// smoothRadius is the half-width of the box filter applied to the
	// column histogram.
	smoothRadius = 2
	// minColumnDensity: share of bar rows a column must fill with
	// foreground before it can start or extend a run.
	minColumnDensity = 0.15
	// Icon-plausible run widths, in points.
	minIconWidth = 12.0
	maxIconWidth = 96.0
)

// clusterZone finds solid-fill icons on a flat bar via column projection:
// estimate the bar background, mask the rows that belong to the bar, project
// foreground pixels onto columns, and read icon candidates off the smoothed
// histogram. A zone with no bar rows contributes nothing.
func clusterZone(img image.Image, zone entity.EmptyZone, scale float64) []entity.DetectedIcon {
	b := img.Bounds()
	y0 := clampInt(b.Min.Y+int(zone.Top*scale), b.Min.Y, b.Max.Y)
	y1 := clampInt(b.Min.Y+int(zone.Bottom*scale), b.Min.Y, b.Max.Y)
	if y1-y0 < 2 || b.Dx() < 2 {
		return nil
	}

	bg, ok := estimateBackground(img, b.Min.X, b.Max.X, y0, y1)
	if !ok {
		return nil
	}

	barRows := findBarRows(img, bg, b.Min.X, b.Max.X, y0, y1)
	if len(barRows) == 0 {
		return nil
	}

	counts := columnCounts(img, bg, barRows, b.Min.X, b.Max.X)
	smoothed := boxFilter(counts, smoothRadius)

	threshold := minColumnDensity * float64(len(barRows))
	if threshold < 2 {
		threshold = 2
	}

	var icons []entity.DetectedIcon
	runStart := -1
	for x := 0; x <= len(smoothed); x++ {
		in := x < len(smoothed) && smoothed[x] >= threshold
		if in && runStart < 0 {
			runStart = x
		}
		if !in && runStart >= 0 {
			if icon, ok := runToIcon(img, bg, barRows, b.Min.X, runStart, x, scale); ok {
				icons = append(icons, icon)
			}
			runStart = -1
		}
	}
	return icons
}

type rgb struct{ r, g, b uint8 }

// estimateBackground takes the per-channel median of sampled interior pixels.
func estimateBackground(img image.Image, x0, x1, y0, y1 int) (rgb, bool) {
	insetX := (x1 - x0) / 10
	insetY := (y1 - y0) / 10

	var rs, gs, bs []float64
	for y := y0 + insetY; y < y1-insetY; y += bgSampleStride {
		for x := x0 + insetX; x < x1-insetX; x += bgSampleStride {
			r, g, b, _ := img.At(x, y).RGBA()
			rs = append(rs, float64(r>>8))
			gs = append(gs, float64(g>>8))
			bs = append(bs, float64(b>>8))
		}
	}
	if len(rs) == 0 {
		return rgb{}, false
	}
	return rgb{uint8(median(rs)), uint8(median(gs)), uint8(median(bs))}, true
}

func median(v []float64) float64 {
	sort.Float64s(v)
	return stat.Quantile(0.5, stat.Empirical, v, nil)
}

func isBackground(img image.Image, x, y int, bg rgb) bool {
	r, g, b, _ := img.At(x, y).RGBA()
	return absDiff(uint8(r>>8), bg.r) <= bgChannelTolerance &&
		absDiff(uint8(g>>8), bg.g) <= bgChannelTolerance &&
		absDiff(uint8(b>>8), bg.b) <= bgChannelTolerance
}

func findBarRows(img image.Image, bg rgb, x0, x1, y0, y1 int) []int {
	var rows []int
	width := x1 - x0
	for y := y0; y < y1; y++ {
		bgCount := 0
		for x := x0; x < x1; x++ {
			if isBackground(img, x, y, bg) {
				bgCount++
			}
		}
		if float64(bgCount) >= barRowFraction*float64(width) {
			rows = append(rows, y)
		}
	}
	return rows
}

// columnCounts projects foreground pixels onto columns, restricted to bar rows.
func columnCounts(img image.Image, bg rgb, barRows []int, x0, x1 int) []float64 {
	counts := make([]float64, x1-x0)
	for _, y := range barRows {
		for x := x0; x < x1; x++ {
			if !isBackground(img, x, y, bg) {
				counts[x-x0]++
			}
		}
	}
	return counts
}

func boxFilter(v []float64, radius int) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		sum, n := 0.0, 0
		for j := i - radius; j <= i+radius; j++ {
			if j >= 0 && j < len(v) {
				sum += v[j]
				n++
			}
		}
		out[i] = sum / float64(n)
	}
	return out
}

// runToIcon converts a contiguous dense column run into a candidate centered
// at the run midpoint and the vertical centroid of its foreground pixels.
func runToIcon(img image.Image, bg rgb, barRows []int, offsetX, start, end int, scale float64) (entity.DetectedIcon, bool) {
	widthPt := float64(end-start) / scale
	if widthPt < minIconWidth || widthPt > maxIconWidth {
		return entity.DetectedIcon{}, false
	}

	ySum, n := 0.0, 0
	for _, y := range barRows {
		for x := offsetX + start; x < offsetX+end; x++ {
			if !isBackground(img, x, y, bg) {
				ySum += float64(y)
				n++
			}
		}
	}
	if n == 0 {
		return entity.DetectedIcon{}, false
	}

	b := img.Bounds()
	return entity.DetectedIcon{
		X:    (float64(start+end)/2 + float64(offsetX-b.Min.X)) / scale,
		Y:    (ySum/float64(n) - float64(b.Min.Y)) / scale,
		Size: widthPt,
	}, true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
