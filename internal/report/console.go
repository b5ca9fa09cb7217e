// Package report renders scenario results for humans (console) and CI
// (JUnit XML).
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

var (
	passMark = color.New(color.FgGreen).Sprint("✔")
	failMark = color.New(color.FgRed).Sprint("✘")
	skipMark = color.New(color.FgYellow).Sprint("–")

	scenarioTitle = color.New(color.Bold).Sprintf
	dim           = color.New(color.Faint).Sprintf
)

// Console prints one line per step plus a summary per scenario.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

func (c *Console) Scenario(res entity.ScenarioResult) {
	fmt.Fprintf(c.w, "\n%s\n", scenarioTitle("%s", res.Name))

	for _, sr := range res.Results {
		mark := passMark
		switch sr.Status {
		case entity.StatusFailed:
			mark = failMark
		case entity.StatusSkipped:
			mark = skipMark
		}

		line := fmt.Sprintf("  %s %s", mark, sr.Step.Describe())
		if sr.Status == entity.StatusPassed && sr.Duration > 0 {
			line += " " + dim("(%s)", sr.Duration.Round(time.Millisecond))
		}
		if sr.Message != "" && sr.Status != entity.StatusPassed {
			line += "\n      " + sr.Message
		}
		fmt.Fprintln(c.w, line)
	}

	passed, failed, skipped := res.Counts()
	fmt.Fprintf(c.w, "  %d passed, %d failed, %d skipped in %s\n",
		passed, failed, skipped, res.Duration.Round(time.Millisecond))
}

// Diagnoses prints the deterministic diagnosis block after a failed replay.
func (c *Console) Diagnoses(diags []entity.Diagnosis) {
	if len(diags) == 0 {
		return
	}
	fmt.Fprintf(c.w, "\n%s\n", scenarioTitle("diagnosis"))
	for _, d := range diags {
		fmt.Fprintf(c.w, "  step %d (%s): %s\n", d.StepIndex, d.StepType, d.Summary)
		for _, p := range d.Patches {
			fmt.Fprintf(c.w, "    %s: %s -> %s\n", p.Field, p.Was, p.ShouldBe)
		}
		if len(d.VisibleText) > 0 {
			fmt.Fprintf(c.w, "    visible: %v\n", d.VisibleText)
		}
	}
}

// Advice prints remote analyzer output when any came back.
func (c *Console) Advice(advice string) {
	if advice == "" {
		return
	}
	fmt.Fprintf(c.w, "\n%s\n  %s\n", scenarioTitle("analysis"), advice)
}
