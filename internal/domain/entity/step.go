package entity

import (
	"fmt"
	"strings"
)

// StepKind discriminates the SkillStep union.
type StepKind string

const (
	StepLaunch           StepKind = "launch"
	StepTap              StepKind = "tap"
	StepType             StepKind = "type"
	StepKeyPress         StepKind = "keyPress"
	StepSwipe            StepKind = "swipe"
	StepWaitFor          StepKind = "waitFor"
	StepAssertVisible    StepKind = "assertVisible"
	StepAssertNotVisible StepKind = "assertNotVisible"
	StepScreenshot       StepKind = "screenshot"
	StepHome             StepKind = "home"
	StepOpenURL          StepKind = "openUrl"
	StepShake            StepKind = "shake"
	StepScrollTo         StepKind = "scrollTo"
	StepResetApp         StepKind = "resetApp"
	StepSetNetwork       StepKind = "setNetwork"
	StepMeasure          StepKind = "measure"
	StepSwitchTarget     StepKind = "switchTarget"
	StepSelectMenu       StepKind = "selectMenu"
	StepSkipped          StepKind = "skipped"
)

// SkillStep is one declarative action of a scenario. Which fields are
// meaningful depends on Kind. Immutable once parsed.
type SkillStep struct {
	Kind StepKind `yaml:"kind" json:"kind"`

	Label      string  `yaml:"label,omitempty" json:"label,omitempty"`
	Text       string  `yaml:"text,omitempty" json:"text,omitempty"`
	Key        string  `yaml:"key,omitempty" json:"key,omitempty"`
	URL        string  `yaml:"url,omitempty" json:"url,omitempty"`
	App        string  `yaml:"app,omitempty" json:"app,omitempty"`
	Direction  string  `yaml:"direction,omitempty" json:"direction,omitempty"`
	TimeoutSec float64 `yaml:"timeout,omitempty" json:"timeout,omitempty"`
	MaxScrolls int     `yaml:"maxScrolls,omitempty" json:"maxScrolls,omitempty"`
	Target     string  `yaml:"target,omitempty" json:"target,omitempty"`
	Network    string  `yaml:"network,omitempty" json:"network,omitempty"`

	// MenuPath is the ordered titles of a menu descent, outermost first.
	MenuPath []string `yaml:"path,omitempty" json:"path,omitempty"`

	Measure *MeasureSpec `yaml:"measure,omitempty" json:"measure,omitempty"`
}

// MeasureSpec wraps a nested step whose effect is timed. The nested step is
// heap-held so the union can recurse.
type MeasureSpec struct {
	Name       string     `yaml:"name" json:"name"`
	Action     *SkillStep `yaml:"action" json:"action"`
	Until      string     `yaml:"until" json:"until"`
	MaxSeconds float64    `yaml:"maxSeconds,omitempty" json:"maxSeconds,omitempty"`
}

// Describe renders a short human-readable form for logs and reports.
func (s SkillStep) Describe() string {
	switch s.Kind {
	case StepTap, StepWaitFor, StepAssertVisible, StepAssertNotVisible:
		return fmt.Sprintf("%s %q", s.Kind, s.Label)
	case StepScrollTo:
		return fmt.Sprintf("scrollTo %q (%s)", s.Label, s.Direction)
	case StepType:
		return fmt.Sprintf("type %q", s.Text)
	case StepKeyPress:
		return fmt.Sprintf("keyPress %q", s.Key)
	case StepLaunch:
		return fmt.Sprintf("launch %q", s.App)
	case StepOpenURL:
		return fmt.Sprintf("openUrl %q", s.URL)
	case StepSwipe:
		return fmt.Sprintf("swipe %s", s.Direction)
	case StepSetNetwork:
		return fmt.Sprintf("setNetwork %q", s.Network)
	case StepSwitchTarget:
		return fmt.Sprintf("switchTarget %q", s.Target)
	case StepSelectMenu:
		return fmt.Sprintf("selectMenu %q", strings.Join(s.MenuPath, " > "))
	case StepMeasure:
		if s.Measure != nil {
			return fmt.Sprintf("measure %q until %q", s.Measure.Name, s.Measure.Until)
		}
		return "measure"
	default:
		return string(s.Kind)
	}
}

// Scenario is an ordered sequence of steps loaded from one source file.
type Scenario struct {
	Name       string
	SourcePath string
	Steps      []SkillStep
}
