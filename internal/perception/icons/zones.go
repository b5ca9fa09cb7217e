package icons

import (
	"unicode/utf8"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// statusBarHeight excludes the system readout band from the top zone.
	statusBarHeight = 50.0
	// topZoneFraction and bottomZoneFraction bound where icon bars live:
	// navigation at the top, tab/dock bars at the bottom.
	topZoneFraction    = 0.12
	bottomZoneFraction = 0.15
	// minZoneHeight rejects slivers not tall enough to hold an icon.
	minZoneHeight = 40.0
	// maxZoneTexts: a zone stops being "empty" once it holds more than
	// this many meaningful text elements.
	maxZoneTexts = 2
	// meaningfulTextRunes separates captions from recognition noise.
	meaningfulTextRunes = 3
)

// DiscoverZones returns the vertical bands of the window worth scanning for
// unlabeled icons: the bottom ~15% and the top ~12% below the status bar,
// provided the band is tall enough and nearly free of recognized text.
func DiscoverZones(points []entity.TapPoint, win entity.WindowSize) []entity.EmptyZone {
	if win.Height <= 0 {
		return nil
	}

	candidates := []entity.EmptyZone{
		{Top: statusBarHeight, Bottom: topZoneFraction * win.Height},
		{Top: (1 - bottomZoneFraction) * win.Height, Bottom: win.Height},
	}

	var zones []entity.EmptyZone
	for _, z := range candidates {
		if z.Height() < minZoneHeight {
			continue
		}
		if countMeaningfulTexts(points, z) > maxZoneTexts {
			continue
		}
		zones = append(zones, z)
	}
	return zones
}

func countMeaningfulTexts(points []entity.TapPoint, z entity.EmptyZone) int {
	n := 0
	for _, p := range points {
		if p.Y < z.Top || p.Y > z.Bottom {
			continue
		}
		if utf8.RuneCountInString(p.Text) >= meaningfulTextRunes {
			n++
		}
	}
	return n
}
