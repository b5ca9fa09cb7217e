// Package diagnose turns a failed replay hint plus one bounded re-perception
// into actionable patch recommendations.
package diagnose

import (
	"fmt"
	"math"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/match"
)

// displacementTolerance is the pixel radius within which a cached tap point
// still counts as covering the label.
const displacementTolerance = 12.0

// maxTriageTexts caps the visible-text listing attached to absent-label
// diagnoses.
const maxTriageTexts = 25

// Engine produces deterministic, local diagnoses. Each call consumes the
// element set of exactly one re-perception; the engine never perceives on
// its own.
type Engine struct {
	matcher   *match.Matcher
	tolerance float64
}

func New(matcher *match.Matcher) *Engine {
	return &Engine{matcher: matcher, tolerance: displacementTolerance}
}

// TapFailure classifies a failed tap hint: absorbed (label still near the
// cached point), displaced (patches for both coordinates), or absent
// (currently visible text for triage).
func (d *Engine) TapFailure(stepIndex int, step entity.SkillStep, hint *entity.TapHint, elements []entity.TapPoint) entity.Diagnosis {
	diag := entity.Diagnosis{
		StepIndex: stepIndex,
		StepType:  string(step.Kind),
		Label:     step.Label,
	}

	res, found := d.matcher.Find(step.Label, elements)
	if !found {
		diag.Verdict = entity.VerdictAbsent
		diag.Summary = fmt.Sprintf("%q is no longer on screen", step.Label)
		diag.VisibleText = visibleTexts(elements)
		return diag
	}

	dist := math.Hypot(res.Element.X-hint.X, res.Element.Y-hint.Y)
	if dist <= d.tolerance {
		diag.Verdict = entity.VerdictAbsorbed
		diag.Summary = fmt.Sprintf("tap on %q likely absorbed, not moved (label still within %.0fpt of cached point)", step.Label, d.tolerance)
		return diag
	}

	diag.Verdict = entity.VerdictDisplaced
	diag.Summary = fmt.Sprintf("%q moved %.1fpt from the cached point", step.Label, dist)
	diag.Patches = []entity.Patch{
		{Field: "x", Was: fmt.Sprintf("%.1f", hint.X), ShouldBe: fmt.Sprintf("%.1f", res.Element.X)},
		{Field: "y", Was: fmt.Sprintf("%.1f", hint.Y), ShouldBe: fmt.Sprintf("%.1f", res.Element.Y)},
	}
	return diag
}

// SleepFailure classifies a failed sleep hint: visible now means the
// recorded delay was too short; still invisible points at the prior step.
func (d *Engine) SleepFailure(stepIndex int, step entity.SkillStep, hint *entity.SleepHint, elements []entity.TapPoint) entity.Diagnosis {
	diag := entity.Diagnosis{
		StepIndex: stepIndex,
		StepType:  string(step.Kind),
		Label:     step.Label,
	}

	if d.matcher.IsVisible(step.Label, elements) {
		diag.Verdict = entity.VerdictDelayTooLow
		diag.Summary = fmt.Sprintf("%q appeared after the recorded %dms delay; recommend a longer delay", step.Label, hint.DelayMs)
		diag.Patches = []entity.Patch{{
			Field:    "delayMs",
			Was:      fmt.Sprintf("%d", hint.DelayMs),
			ShouldBe: fmt.Sprintf("%d", hint.DelayMs*2),
		}}
		return diag
	}

	diag.Verdict = entity.VerdictPriorSuspect
	diag.Summary = fmt.Sprintf("%q is not visible at all; inspect the step before this one", step.Label)
	diag.VisibleText = visibleTexts(elements)
	return diag
}

// ScrollFailure classifies a failed scroll hint: visible now means the
// recorded count needs tuning; still invisible recommends more scrolls.
func (d *Engine) ScrollFailure(stepIndex int, step entity.SkillStep, hint *entity.ScrollHint, elements []entity.TapPoint) entity.Diagnosis {
	diag := entity.Diagnosis{
		StepIndex: stepIndex,
		StepType:  string(step.Kind),
		Label:     step.Label,
	}

	if d.matcher.IsVisible(step.Label, elements) {
		diag.Verdict = entity.VerdictTuneScrolls
		diag.Summary = fmt.Sprintf("%q is visible after %d scrolls; tune the recorded count", step.Label, hint.Count)
		return diag
	}

	diag.Verdict = entity.VerdictMoreScrolls
	diag.Summary = fmt.Sprintf("%q still off screen after %d scrolls; recommend more", step.Label, hint.Count)
	diag.Patches = []entity.Patch{{
		Field:    "count",
		Was:      fmt.Sprintf("%d", hint.Count),
		ShouldBe: fmt.Sprintf("%d", hint.Count+2),
	}}
	return diag
}

func visibleTexts(elements []entity.TapPoint) []string {
	var texts []string
	for _, el := range elements {
		if el.Text == "" {
			continue
		}
		texts = append(texts, el.Text)
		if len(texts) == maxTriageTexts {
			break
		}
	}
	return texts
}
