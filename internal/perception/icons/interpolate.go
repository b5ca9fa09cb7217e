package icons

import (
	"math"
	"sort"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// spacingTolerance: pairwise gaps must sit within this share of the
	// median gap before a row counts as evenly spaced.
	spacingTolerance = 0.25
	// edgeMargin keeps extrapolated icons off the window border.
	edgeMargin = 10.0
)

// completeRow extrapolates missing icons in an evenly-spaced row. Tab bars
// space their items uniformly; when three or more detections agree on the
// spacing, the undetected slots left and right are filled in, stopping at the
// window edges. Rows with irregular spacing are returned untouched.
func completeRow(icons []entity.DetectedIcon, win entity.WindowSize) []entity.DetectedIcon {
	if len(icons) < 3 || win.Width <= 0 {
		return icons
	}

	sorted := make([]entity.DetectedIcon, len(icons))
	copy(sorted, icons)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].X < sorted[j].X })

	gaps := make([]float64, 0, len(sorted)-1)
	for i := 1; i < len(sorted); i++ {
		gaps = append(gaps, sorted[i].X-sorted[i-1].X)
	}

	med := medianOf(gaps)
	if med <= 0 {
		return icons
	}
	for _, g := range gaps {
		if math.Abs(g-med) > spacingTolerance*med {
			return icons
		}
	}

	meanY, meanSize := 0.0, 0.0
	for _, ic := range sorted {
		meanY += ic.Y
		meanSize += ic.Size
	}
	meanY /= float64(len(sorted))
	meanSize /= float64(len(sorted))

	out := sorted
	for x := sorted[0].X - med; x >= edgeMargin; x -= med {
		out = append(out, entity.DetectedIcon{X: x, Y: meanY, Size: meanSize})
	}
	for x := sorted[len(sorted)-1].X + med; x <= win.Width-edgeMargin; x += med {
		out = append(out, entity.DetectedIcon{X: x, Y: meanY, Size: meanSize})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].X < out[j].X })
	return out
}

func medianOf(v []float64) float64 {
	s := make([]float64, len(v))
	copy(s, v)
	sort.Float64s(s)
	n := len(s)
	if n == 0 {
		return 0
	}
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
