package entity

import (
	"fmt"
	"time"
)

// CompiledFormatVersion is bumped whenever the sidecar layout changes in a
// way older readers cannot interpret.
const CompiledFormatVersion = 1

// HintKind discriminates the StepHints union.
type HintKind string

const (
	HintTap         HintKind = "tap"
	HintSleep       HintKind = "sleep"
	HintScroll      HintKind = "scrollSequence"
	HintPassthrough HintKind = "passthrough"
)

// TapHint replays a tap at the exact coordinates chosen during learning.
type TapHint struct {
	X          float64       `json:"x"`
	Y          float64       `json:"y"`
	Confidence float64       `json:"confidence"`
	Strategy   MatchStrategy `json:"strategy"`
}

// SleepHint replays an observed wait as a plain delay.
type SleepHint struct {
	DelayMs int `json:"delayMs"`
}

// ScrollHint replays an observed scroll sequence.
type ScrollHint struct {
	Count     int    `json:"count"`
	Direction string `json:"direction"`
}

// StepHints is the cached decision for one step. A passthrough hint marks a
// step with no perception dependency; it always executes via the normal path.
type StepHints struct {
	Kind   HintKind    `json:"kind"`
	Tap    *TapHint    `json:"tap,omitempty"`
	Sleep  *SleepHint  `json:"sleep,omitempty"`
	Scroll *ScrollHint `json:"scroll,omitempty"`
}

// CompiledStep pairs a step identity with its optional hints. Absent hints
// force full perception for that step.
type CompiledStep struct {
	Index int        `json:"index"`
	Type  string     `json:"type"`
	Label string     `json:"label,omitempty"`
	Hints *StepHints `json:"hints,omitempty"`
}

// CompiledScenario is the persisted outcome of a learning run. It is loaded
// and staleness-checked before every replay; cached coordinates are never
// re-validated proactively.
type CompiledScenario struct {
	Version     int            `json:"version"`
	SourceHash  string         `json:"sourceHash"`
	CompiledAt  time.Time      `json:"compiledAt"`
	Window      WindowSize     `json:"window"`
	Orientation string         `json:"orientation"`
	Steps       []CompiledStep `json:"steps"`
}

// Validate enforces the step index invariant: steps[i].Index == i.
func (c *CompiledScenario) Validate() error {
	for i, s := range c.Steps {
		if s.Index != i {
			return fmt.Errorf("compiled step %d carries index %d", i, s.Index)
		}
	}
	return nil
}

// HintFor returns the hints for step i, or nil when absent or out of range.
func (c *CompiledScenario) HintFor(i int) *StepHints {
	if c == nil || i < 0 || i >= len(c.Steps) {
		return nil
	}
	return c.Steps[i].Hints
}
