package entity

// RawTextElement is one recognized text fragment from a perception pass.
// Geometry is in logical points, origin at the top-left of the captured window.
type RawTextElement struct {
	Text       string
	CenterX    float64
	TopY       float64
	BottomY    float64
	Width      float64
	Confidence float64 // 0..1
}

// TapPoint is a tappable coordinate derived from a RawTextElement or a
// detected icon. Icons carry an empty Text.
type TapPoint struct {
	Text       string
	X          float64
	Y          float64
	Confidence float64
}

// DetectedIcon is an unlabeled glyph located by pixel analysis.
type DetectedIcon struct {
	X    float64
	Y    float64
	Size float64
}

// AsTapPoint merges a detected icon into the element set.
func (d DetectedIcon) AsTapPoint() TapPoint {
	return TapPoint{X: d.X, Y: d.Y, Confidence: 1}
}

// EmptyZone is a vertical band of the window with little or no meaningful
// text. Icon search is scoped to these bands.
type EmptyZone struct {
	Top    float64
	Bottom float64
}

func (z EmptyZone) Height() float64 { return z.Bottom - z.Top }

// MatchStrategy identifies which rung of the matcher ladder succeeded.
type MatchStrategy string

const (
	MatchExact    MatchStrategy = "exact"
	MatchContains MatchStrategy = "contains"
	MatchFuzzy    MatchStrategy = "fuzzy"
)

// MatchResult pairs a matched element with the strategy that found it.
// Transient, produced per lookup.
type MatchResult struct {
	Element  TapPoint
	Strategy MatchStrategy
}

// WindowSize holds the logical dimensions of the mirrored window.
type WindowSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
