// Package geometry converts raw recognized-text boxes into tap points.
package geometry

import (
	"sort"
	"unicode/utf8"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

const (
	// iconRowGap is the minimum empty space above a row before the upward
	// tap correction applies.
	iconRowGap = 50.0
	// iconRowOffset lands the tap on the glyph above a caption.
	iconRowOffset = 30.0
	// shortLabelMax is the longest caption still counted as icon-like.
	shortLabelMax = 15
	// iconRowMinPeers is how many short captions must share a baseline
	// before a row counts as an icon row.
	iconRowMinPeers = 3
	// maxIconWidthRatio rejects wide strings: a caption spanning most of
	// the window is a list row, not an icon label.
	maxIconWidthRatio = 0.40
	// noiseFragmentMax: a lone fragment this short (a digit inside a badge
	// or glyph) is bypassed when measuring the gap above an icon row.
	noiseFragmentMax = 2
	// rowTolerance groups elements onto the same baseline.
	rowTolerance = 2.0
)

// Resolve maps each recognized element to one tap point, in ascending top-y
// order (stable on ties). Text, x and confidence pass through unchanged; only
// the y coordinate is derived.
//
// Elements on an icon row (>= 3 short captions sharing a baseline) with a
// large gap above them tap the glyph at topY-30; everything else taps its own
// text center. Isolated single labels must never receive the offset: it would
// land in the separator gap above them.
func Resolve(elements []entity.RawTextElement, windowWidth float64) []entity.TapPoint {
	if len(elements) == 0 {
		return nil
	}

	sorted := make([]entity.RawTextElement, len(elements))
	copy(sorted, elements)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].TopY < sorted[j].TopY })

	rows := groupRows(sorted)
	points := make([]entity.TapPoint, 0, len(sorted))

	// prevBottom tracks the bottom of everything above, starting at the
	// window top; prevSolidBottom skips noise fragments so a lone badge
	// digit cannot close the gap above an icon row.
	prevBottom := 0.0
	prevSolidBottom := 0.0

	for _, row := range rows {
		iconRow := isIconRow(row)

		for _, el := range row {
			var gap float64
			if iconRow {
				gap = el.TopY - prevSolidBottom
			} else {
				gap = el.TopY - prevBottom
			}

			y := (el.TopY + el.BottomY) / 2
			if iconRow && gap > iconRowGap && windowWidth > 0 && el.Width <= maxIconWidthRatio*windowWidth {
				y = el.TopY - iconRowOffset
				if y < 0 {
					y = 0
				}
			}

			points = append(points, entity.TapPoint{
				Text:       el.Text,
				X:          el.CenterX,
				Y:          y,
				Confidence: el.Confidence,
			})
		}

		bottom := rowBottom(row)
		if bottom > prevBottom {
			prevBottom = bottom
		}
		if !isNoiseRow(row) && bottom > prevSolidBottom {
			prevSolidBottom = bottom
		}
	}

	return points
}

// groupRows splits top-y-sorted elements into baseline groups.
func groupRows(sorted []entity.RawTextElement) [][]entity.RawTextElement {
	var rows [][]entity.RawTextElement
	for _, el := range sorted {
		n := len(rows)
		if n > 0 && el.TopY-rows[n-1][0].TopY <= rowTolerance {
			rows[n-1] = append(rows[n-1], el)
			continue
		}
		rows = append(rows, []entity.RawTextElement{el})
	}
	return rows
}

func isIconRow(row []entity.RawTextElement) bool {
	short := 0
	for _, el := range row {
		if utf8.RuneCountInString(el.Text) <= shortLabelMax {
			short++
		}
	}
	return short >= iconRowMinPeers
}

// isNoiseRow reports whether the row is a single isolated fragment too short
// to be a real label.
func isNoiseRow(row []entity.RawTextElement) bool {
	return len(row) == 1 && utf8.RuneCountInString(row[0].Text) <= noiseFragmentMax
}

func rowBottom(row []entity.RawTextElement) float64 {
	bottom := row[0].BottomY
	for _, el := range row[1:] {
		if el.BottomY > bottom {
			bottom = el.BottomY
		}
	}
	return bottom
}
