package entity

import "time"

// StepStatus is the terminal outcome of one executed step.
type StepStatus string

const (
	StatusPassed  StepStatus = "passed"
	StatusFailed  StepStatus = "failed"
	StatusSkipped StepStatus = "skipped"
)

// StepResult records the outcome of one step. Failures are captured here
// rather than surfaced as errors so a run always completes with a full report.
type StepResult struct {
	Index    int
	Step     SkillStep
	Status   StepStatus
	Message  string
	Duration time.Duration
}

// ScenarioResult aggregates the step results of one scenario run.
type ScenarioResult struct {
	Name     string
	Results  []StepResult
	Duration time.Duration
}

// Passed reports whether every step passed or was explicitly skipped.
func (r ScenarioResult) Passed() bool {
	for _, sr := range r.Results {
		if sr.Status == StatusFailed {
			return false
		}
	}
	return true
}

// Counts returns the number of passed, failed and skipped steps.
func (r ScenarioResult) Counts() (passed, failed, skipped int) {
	for _, sr := range r.Results {
		switch sr.Status {
		case StatusPassed:
			passed++
		case StatusFailed:
			failed++
		case StatusSkipped:
			skipped++
		}
	}
	return
}
