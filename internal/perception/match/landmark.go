package match

import (
	"regexp"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// statusBarBand excludes clock, battery and signal readouts.
	statusBarBand = 80.0
	// The header zone is where screen titles live; a title is the most
	// stable anchor a screen offers.
	headerZoneTop    = 100.0
	headerZoneBottom = 250.0
)

var (
	timePattern      = regexp.MustCompile(`^\d{1,2}:\d{2}(\s?(AM|PM|am|pm))?$`)
	bareDigitPattern = regexp.MustCompile(`^\d{1,3}$`)
)

// PickLandmark chooses the single most distinctive element to wait or assert
// on. Volatile text (status bar readouts, times, bare counters) is excluded;
// header-zone candidates win, topmost first. Returns false when nothing
// qualifies.
func PickLandmark(elements []entity.TapPoint) (entity.TapPoint, bool) {
	var best entity.TapPoint
	var header entity.TapPoint
	found, headerFound := false, false

	for _, el := range elements {
		if !isAnchorCandidate(el) {
			continue
		}
		if el.Y >= headerZoneTop && el.Y <= headerZoneBottom {
			if !headerFound || el.Y < header.Y {
				header, headerFound = el, true
			}
		}
		if !found || el.Y < best.Y {
			best, found = el, true
		}
	}

	if headerFound {
		return header, true
	}
	if found {
		return best, true
	}
	return entity.TapPoint{}, false
}

func isAnchorCandidate(el entity.TapPoint) bool {
	if el.Text == "" {
		return false
	}
	if el.Y < statusBarBand {
		return false
	}
	if timePattern.MatchString(el.Text) {
		return false
	}
	if bareDigitPattern.MatchString(el.Text) {
		return false
	}
	return true
}
