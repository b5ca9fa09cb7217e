package compiled

import (
	"time"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// Recorder accumulates the concrete decisions a learning run makes, one
// hints entry per step. Steps without a recorded decision compile without
// hints and will always use full perception.
type Recorder struct {
	hints map[int]*entity.StepHints
}

func NewRecorder() *Recorder {
	return &Recorder{hints: make(map[int]*entity.StepHints)}
}

// RecordTap captures the exact coordinates and match quality of a tap.
func (r *Recorder) RecordTap(step int, x, y, confidence float64, strategy entity.MatchStrategy) {
	r.hints[step] = &entity.StepHints{
		Kind: entity.HintTap,
		Tap:  &entity.TapHint{X: x, Y: y, Confidence: confidence, Strategy: strategy},
	}
}

// RecordSleep captures an observed wait as a plain delay.
func (r *Recorder) RecordSleep(step int, delay time.Duration) {
	r.hints[step] = &entity.StepHints{
		Kind:  entity.HintSleep,
		Sleep: &entity.SleepHint{DelayMs: int(delay.Milliseconds())},
	}
}

// RecordScroll captures an observed scroll count and direction.
func (r *Recorder) RecordScroll(step int, count int, direction string) {
	r.hints[step] = &entity.StepHints{
		Kind:   entity.HintScroll,
		Scroll: &entity.ScrollHint{Count: count, Direction: direction},
	}
}

// RecordPassthrough marks a step with no perception dependency.
func (r *Recorder) RecordPassthrough(step int) {
	r.hints[step] = &entity.StepHints{Kind: entity.HintPassthrough}
}

// Build assembles the compiled scenario for persistence.
func (r *Recorder) Build(scn entity.Scenario, sourceHash string, win entity.WindowSize, orientation string) *entity.CompiledScenario {
	steps := make([]entity.CompiledStep, len(scn.Steps))
	for i, s := range scn.Steps {
		steps[i] = entity.CompiledStep{
			Index: i,
			Type:  string(s.Kind),
			Label: s.Label,
			Hints: r.hints[i],
		}
	}
	return &entity.CompiledScenario{
		Version:     entity.CompiledFormatVersion,
		SourceHash:  sourceHash,
		CompiledAt:  time.Now().UTC(),
		Window:      win,
		Orientation: orientation,
		Steps:       steps,
	}
}
