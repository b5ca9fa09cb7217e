// Package engine sequences declarative skill steps against a mirrored
// window: perceive, match, act. Single-threaded and non-reentrant by design;
// callers must not invoke a running engine from another goroutine.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/input"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/compiled"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/diagnose"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/geometry"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/icons"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/perception/match"
)

var _ input.ScenarioRunner = (*Engine)(nil)

// Target bundles the four collaborator references a scenario runs against.
// switchTarget swaps them wholesale, never piecemeal.
type Target struct {
	Window     output.WindowPort
	Menu       output.MenuPort // optional capability, may be nil
	Actuator   output.ActuatorPort
	Perception output.PerceptionPort
	Snapshot   output.SnapshotPort
}

// Config tunes timing. Zero values fall back to defaults.
type Config struct {
	// SettleDelay follows every non-skipped step, letting UI animation
	// finish before the next perception.
	SettleDelay time.Duration
	// PollInterval paces waitFor/measure polling.
	PollInterval time.Duration
	// DefaultTimeout applies to waitFor steps without an explicit bound.
	DefaultTimeout time.Duration
	// DefaultMaxScrolls applies to scrollTo steps without an explicit bound.
	DefaultMaxScrolls int
	// DefaultMeasureMax bounds measure polling when the step names none.
	DefaultMeasureMax time.Duration
}

func DefaultConfig() Config {
	return Config{
		SettleDelay:       800 * time.Millisecond,
		PollInterval:      500 * time.Millisecond,
		DefaultTimeout:    10 * time.Second,
		DefaultMaxScrolls: 10,
		DefaultMeasureMax: 30 * time.Second,
	}
}

// Engine is the declarative step state machine. One instance drives one
// scenario at a time.
type Engine struct {
	cfg     Config
	target  Target
	targets map[string]Target

	matcher   *match.Matcher
	detector  *icons.Detector
	diagnoser *diagnose.Engine
	session   *Session
	logger    output.LoggerPort

	// Replay and learning state. hints is consulted per step; recorder,
	// when set, captures the decisions of a learning run.
	hints    *entity.CompiledScenario
	recorder *compiled.Recorder

	win entity.WindowSize

	// Injectable clock, swapped out in tests.
	sleep func(time.Duration)
	now   func() time.Time
}

func New(cfg Config, target Target, matcher *match.Matcher, detector *icons.Detector, diagnoser *diagnose.Engine, session *Session, logger output.LoggerPort) *Engine {
	def := DefaultConfig()
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = def.SettleDelay
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = def.DefaultTimeout
	}
	if cfg.DefaultMaxScrolls <= 0 {
		cfg.DefaultMaxScrolls = def.DefaultMaxScrolls
	}
	if cfg.DefaultMeasureMax <= 0 {
		cfg.DefaultMeasureMax = def.DefaultMeasureMax
	}

	return &Engine{
		cfg:       cfg,
		target:    target,
		targets:   make(map[string]Target),
		matcher:   matcher,
		detector:  detector,
		diagnoser: diagnoser,
		session:   session,
		logger:    logger,
		sleep:     time.Sleep,
		now:       time.Now,
	}
}

// RegisterTarget makes a named target available to switchTarget steps.
func (e *Engine) RegisterTarget(name string, t Target) {
	e.targets[name] = t
}

// UseHints arms replay mode. The caller is responsible for the staleness
// check; a stale scenario must simply not be passed here.
func (e *Engine) UseHints(c *entity.CompiledScenario) {
	e.hints = c
}

// Learn arms learning mode: per-step decisions are captured into rec.
func (e *Engine) Learn(rec *compiled.Recorder) {
	e.recorder = rec
}

// Session exposes the run accumulator.
func (e *Engine) Session() *Session {
	return e.session
}

// Run executes the scenario steps in order, halting at the first failure and
// marking the remainder skipped. The result is always complete.
func (e *Engine) Run(ctx context.Context, scn entity.Scenario) entity.ScenarioResult {
	started := e.now()
	result := entity.ScenarioResult{Name: scn.Name}

	if win, err := e.target.Window.Size(ctx); err == nil {
		e.win = win
	} else if e.logger != nil {
		e.logger.Warn("window size unavailable", "error", err)
	}

	failed := false
	for i, step := range scn.Steps {
		if failed {
			result.Results = append(result.Results, entity.StepResult{
				Index: i, Step: step, Status: entity.StatusSkipped,
				Message: "previous step failed",
			})
			continue
		}
		if step.Kind == entity.StepSkipped {
			result.Results = append(result.Results, entity.StepResult{
				Index: i, Step: step, Status: entity.StatusSkipped,
				Message: "marked skipped",
			})
			continue
		}

		stepStart := e.now()
		msg, err := e.dispatch(ctx, i, step)
		sr := entity.StepResult{
			Index:    i,
			Step:     step,
			Status:   entity.StatusPassed,
			Message:  msg,
			Duration: e.now().Sub(stepStart),
		}
		if err != nil {
			sr.Status = entity.StatusFailed
			sr.Message = err.Error()
			failed = true
			if e.logger != nil {
				e.logger.Error("step failed", "index", i, "step", step.Describe(), "error", err)
			}
		} else if e.logger != nil {
			e.logger.Info("step passed", "index", i, "step", step.Describe(), "duration", sr.Duration)
		}
		result.Results = append(result.Results, sr)

		e.sleep(e.cfg.SettleDelay)
	}

	result.Duration = e.now().Sub(started)
	return result
}

func (e *Engine) dispatch(ctx context.Context, i int, step entity.SkillStep) (string, error) {
	switch step.Kind {
	case entity.StepLaunch:
		return "", e.direct(i, e.target.Window.Launch(ctx, step.App))
	case entity.StepTap:
		return "", e.runTap(ctx, i, step)
	case entity.StepType:
		return "", e.direct(i, e.target.Actuator.TypeText(ctx, step.Text))
	case entity.StepKeyPress:
		return "", e.direct(i, e.target.Actuator.PressKey(ctx, step.Key))
	case entity.StepSwipe:
		return "", e.direct(i, e.swipe(ctx, step.Direction))
	case entity.StepWaitFor:
		return e.runWaitFor(ctx, i, step)
	case entity.StepAssertVisible:
		return "", e.runAssertVisible(ctx, i, step)
	case entity.StepAssertNotVisible:
		return "", e.runAssertNotVisible(ctx, i, step)
	case entity.StepScreenshot:
		return e.runScreenshot(ctx, i, step)
	case entity.StepHome:
		return "", e.direct(i, e.target.Window.Home(ctx))
	case entity.StepOpenURL:
		return "", e.direct(i, e.target.Window.OpenURL(ctx, step.URL))
	case entity.StepShake:
		return "", e.direct(i, e.target.Window.Shake(ctx))
	case entity.StepScrollTo:
		return e.runScrollTo(ctx, i, step)
	case entity.StepResetApp:
		return "", e.direct(i, e.target.Window.ResetApp(ctx, step.App))
	case entity.StepSetNetwork:
		return "", e.direct(i, e.target.Window.SetNetwork(ctx, step.Network))
	case entity.StepMeasure:
		return e.runMeasure(ctx, i, step)
	case entity.StepSwitchTarget:
		return "", e.runSwitchTarget(ctx, i, step)
	case entity.StepSelectMenu:
		return "", e.runSelectMenu(ctx, i, step)
	default:
		return "", fmt.Errorf("unsupported step kind %q", step.Kind)
	}
}

// direct finalizes a perception-free action: on success it is recorded as a
// passthrough hint.
func (e *Engine) direct(i int, err error) error {
	if err != nil {
		return err
	}
	if e.recorder != nil {
		e.recorder.RecordPassthrough(i)
	}
	return nil
}

// perceive runs one capture+recognize cycle and returns the resolved element
// set: text tap points plus detected icons.
func (e *Engine) perceive(ctx context.Context) ([]entity.TapPoint, error) {
	img, err := e.target.Snapshot.Capture(ctx)
	if err != nil {
		return nil, &PerceptionError{Op: "capture", Err: err}
	}
	raw, err := e.target.Perception.Recognize(ctx, img)
	if err != nil {
		return nil, &PerceptionError{Op: "recognize", Err: err}
	}

	taps := geometry.Resolve(raw, e.win.Width)
	if e.detector != nil {
		for _, ic := range e.detector.Detect(img, taps, e.win) {
			taps = append(taps, ic.AsTapPoint())
		}
	}

	e.session.countPerception()
	return taps, nil
}

func (e *Engine) runTap(ctx context.Context, i int, step entity.SkillStep) error {
	if h := e.hintFor(i); h != nil && h.Kind == entity.HintTap && h.Tap != nil {
		if err := e.target.Actuator.Tap(ctx, h.Tap.X, h.Tap.Y); err != nil {
			e.diagnoseTap(ctx, i, step, h.Tap)
			return fmt.Errorf("replayed tap at (%.1f, %.1f): %w", h.Tap.X, h.Tap.Y, err)
		}
		return nil
	}

	elements, err := e.perceive(ctx)
	if err != nil {
		return err
	}

	res, ok := e.matcher.Find(step.Label, elements)
	if !ok {
		return &ElementNotFoundError{Label: step.Label, Visible: visibleTexts(elements)}
	}

	if err := e.target.Actuator.Tap(ctx, res.Element.X, res.Element.Y); err != nil {
		return fmt.Errorf("tap %q: %w", step.Label, err)
	}
	if e.recorder != nil {
		e.recorder.RecordTap(i, res.Element.X, res.Element.Y, res.Element.Confidence, res.Strategy)
	}
	return nil
}

func (e *Engine) runWaitFor(ctx context.Context, i int, step entity.SkillStep) (string, error) {
	if h := e.hintFor(i); h != nil && h.Kind == entity.HintSleep && h.Sleep != nil {
		e.sleep(time.Duration(h.Sleep.DelayMs) * time.Millisecond)
		elements, err := e.perceive(ctx)
		if err != nil {
			return "", err
		}
		if e.matcher.IsVisible(step.Label, elements) {
			return fmt.Sprintf("visible after replayed %dms delay", h.Sleep.DelayMs), nil
		}
		e.diagnoseSleep(ctx, i, step, h.Sleep)
		return "", &TimeoutError{Label: step.Label, Elapsed: time.Duration(h.Sleep.DelayMs) * time.Millisecond}
	}

	timeout := e.cfg.DefaultTimeout
	if step.TimeoutSec > 0 {
		timeout = time.Duration(step.TimeoutSec * float64(time.Second))
	}

	start := e.now()
	deadline := start.Add(timeout)
	for e.now().Before(deadline) {
		elements, err := e.perceive(ctx)
		if err != nil {
			return "", err
		}
		if e.matcher.IsVisible(step.Label, elements) {
			return e.waitObserved(i, step, start), nil
		}
		e.sleep(e.cfg.PollInterval)
	}

	// One final check guards against a race with the last sleep.
	elements, err := e.perceive(ctx)
	if err != nil {
		return "", err
	}
	if e.matcher.IsVisible(step.Label, elements) {
		return e.waitObserved(i, step, start), nil
	}

	return "", &TimeoutError{Label: step.Label, Elapsed: timeout}
}

func (e *Engine) waitObserved(i int, step entity.SkillStep, start time.Time) string {
	observed := e.now().Sub(start)
	if e.recorder != nil {
		e.recorder.RecordSleep(i, observed)
	}
	return fmt.Sprintf("%q visible after %s", step.Label, observed)
}

func (e *Engine) runAssertVisible(ctx context.Context, i int, step entity.SkillStep) error {
	elements, err := e.perceive(ctx)
	if err != nil {
		return err
	}
	if !e.matcher.IsVisible(step.Label, elements) {
		return &ElementNotFoundError{Label: step.Label, Visible: visibleTexts(elements)}
	}
	if e.recorder != nil {
		e.recorder.RecordPassthrough(i)
	}
	return nil
}

func (e *Engine) runAssertNotVisible(ctx context.Context, i int, step entity.SkillStep) error {
	elements, err := e.perceive(ctx)
	if err != nil {
		return err
	}
	if e.matcher.IsVisible(step.Label, elements) {
		return fmt.Errorf("%q is still visible", step.Label)
	}
	if e.recorder != nil {
		e.recorder.RecordPassthrough(i)
	}
	return nil
}

func (e *Engine) runScreenshot(ctx context.Context, i int, step entity.SkillStep) (string, error) {
	img, err := e.target.Snapshot.Capture(ctx)
	if err != nil {
		return "", &PerceptionError{Op: "capture", Err: err}
	}

	// Fingerprint the screen so an unchanged frame is not saved twice.
	var fingerprint []string
	if raw, err := e.target.Perception.Recognize(ctx, img); err == nil {
		fingerprint = match.Fingerprint(geometry.Resolve(raw, e.win.Width))
	}

	name := step.Label
	if name == "" {
		name = fmt.Sprintf("step-%03d", i)
	}
	path, saved, err := e.session.saveScreenshot(img, name, fingerprint)
	if err != nil {
		return "", err
	}
	if e.recorder != nil {
		e.recorder.RecordPassthrough(i)
	}
	if !saved {
		return "screen unchanged, capture skipped", nil
	}
	return fmt.Sprintf("saved %s", path), nil
}

func (e *Engine) runScrollTo(ctx context.Context, i int, step entity.SkillStep) (string, error) {
	if h := e.hintFor(i); h != nil && h.Kind == entity.HintScroll && h.Scroll != nil {
		for n := 0; n < h.Scroll.Count; n++ {
			if err := e.swipe(ctx, h.Scroll.Direction); err != nil {
				return "", err
			}
			e.sleep(e.cfg.PollInterval)
		}
		elements, err := e.perceive(ctx)
		if err != nil {
			return "", err
		}
		if e.matcher.IsVisible(step.Label, elements) {
			return fmt.Sprintf("reached %q after replayed %d scrolls", step.Label, h.Scroll.Count), nil
		}
		e.diagnoseScroll(ctx, i, step, h.Scroll)
		return "", &ElementNotFoundError{Label: step.Label, Visible: visibleTexts(elements)}
	}

	elements, err := e.perceive(ctx)
	if err != nil {
		return "", err
	}
	if e.matcher.IsVisible(step.Label, elements) {
		if e.recorder != nil {
			e.recorder.RecordScroll(i, 0, step.Direction)
		}
		return fmt.Sprintf("%q already visible", step.Label), nil
	}

	maxScrolls := e.cfg.DefaultMaxScrolls
	if step.MaxScrolls > 0 {
		maxScrolls = step.MaxScrolls
	}

	prev := match.Fingerprint(elements)
	for n := 1; n <= maxScrolls; n++ {
		if err := e.swipe(ctx, step.Direction); err != nil {
			return "", err
		}
		elements, err = e.perceive(ctx)
		if err != nil {
			return "", err
		}
		if e.matcher.IsVisible(step.Label, elements) {
			if e.recorder != nil {
				e.recorder.RecordScroll(i, n, step.Direction)
			}
			return fmt.Sprintf("reached %q after %d scrolls", step.Label, n), nil
		}

		fp := match.Fingerprint(elements)
		if match.SameFingerprint(prev, fp) {
			return "", &ScrollExhaustedError{Label: step.Label, Scrolls: n}
		}
		prev = fp
	}

	return "", &ElementNotFoundError{Label: step.Label, Visible: visibleTexts(elements)}
}

func (e *Engine) runMeasure(ctx context.Context, i int, step entity.SkillStep) (string, error) {
	spec := step.Measure
	if spec == nil || spec.Action == nil {
		return "", fmt.Errorf("measure step %d has no action", i)
	}

	// The nested action runs without recording: measure itself compiles to
	// a passthrough hint.
	rec := e.recorder
	e.recorder = nil
	_, err := e.dispatch(ctx, i, *spec.Action)
	e.recorder = rec
	if err != nil {
		return "", fmt.Errorf("measured action: %w", err)
	}

	maxWait := e.cfg.DefaultMeasureMax
	if spec.MaxSeconds > 0 {
		maxWait = time.Duration(spec.MaxSeconds * float64(time.Second))
	}

	start := e.now()
	deadline := start.Add(maxWait)
	for {
		elements, err := e.perceive(ctx)
		if err != nil {
			return "", err
		}
		if e.matcher.IsVisible(spec.Until, elements) {
			elapsed := e.now().Sub(start)
			if spec.MaxSeconds > 0 && elapsed.Seconds() > spec.MaxSeconds {
				return "", fmt.Errorf("measure %q took %.1fs, exceeding the %.0fs maximum", spec.Name, elapsed.Seconds(), spec.MaxSeconds)
			}
			if e.recorder != nil {
				e.recorder.RecordPassthrough(i)
			}
			return fmt.Sprintf("measure %q: %.1fs", spec.Name, elapsed.Seconds()), nil
		}
		if !e.now().Before(deadline) {
			return "", &TimeoutError{Label: spec.Until, Elapsed: maxWait}
		}
		e.sleep(e.cfg.PollInterval)
	}
}

// runSwitchTarget swaps all four collaborator references wholesale. The
// engine is non-reentrant; no synchronization guards this swap.
func (e *Engine) runSwitchTarget(ctx context.Context, i int, step entity.SkillStep) error {
	t, ok := e.targets[step.Target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, step.Target)
	}
	e.target = t
	if win, err := t.Window.Size(ctx); err == nil {
		e.win = win
	}
	if e.recorder != nil {
		e.recorder.RecordPassthrough(i)
	}
	return nil
}

// runSelectMenu drives the optional menu capability. The reference is
// resolved at construction; a nil Menu means the current target simply has no
// menu bar to select from.
func (e *Engine) runSelectMenu(ctx context.Context, i int, step entity.SkillStep) error {
	if e.target.Menu == nil {
		return fmt.Errorf("%w: target has no menu capability", ErrMenuUnsupported)
	}
	return e.direct(i, e.target.Menu.SelectMenu(ctx, step.MenuPath...))
}

// swipe translates a direction into one actuator gesture across the middle
// 40% of the window.
func (e *Engine) swipe(ctx context.Context, direction string) error {
	w, h := e.win.Width, e.win.Height
	cx, cy := w/2, h/2
	switch direction {
	case "up":
		return e.target.Actuator.Swipe(ctx, cx, h*0.7, cx, h*0.3)
	case "down":
		return e.target.Actuator.Swipe(ctx, cx, h*0.3, cx, h*0.7)
	case "left":
		return e.target.Actuator.Swipe(ctx, w*0.8, cy, w*0.2, cy)
	case "right":
		return e.target.Actuator.Swipe(ctx, w*0.2, cy, w*0.8, cy)
	default:
		return fmt.Errorf("unknown swipe direction %q", direction)
	}
}

func (e *Engine) hintFor(i int) *entity.StepHints {
	return e.hints.HintFor(i)
}

// Diagnosis costs exactly one extra perception call; a second failure inside
// that perception is logged and dropped. The re-perception happens after the
// failing check, so a late-arriving label is observed rather than reusing the
// frame that already missed it.

func (e *Engine) diagnosisPerception(ctx context.Context) ([]entity.TapPoint, bool) {
	elements, err := e.perceive(ctx)
	if err != nil {
		if e.logger != nil {
			e.logger.Warn("diagnosis perception failed", "error", err)
		}
		return nil, false
	}
	return elements, true
}

func (e *Engine) diagnoseTap(ctx context.Context, i int, step entity.SkillStep, hint *entity.TapHint) {
	if e.diagnoser == nil {
		return
	}
	if elements, ok := e.diagnosisPerception(ctx); ok {
		e.session.addDiagnosis(e.diagnoser.TapFailure(i, step, hint, elements))
	}
}

func (e *Engine) diagnoseSleep(ctx context.Context, i int, step entity.SkillStep, hint *entity.SleepHint) {
	if e.diagnoser == nil {
		return
	}
	if elements, ok := e.diagnosisPerception(ctx); ok {
		e.session.addDiagnosis(e.diagnoser.SleepFailure(i, step, hint, elements))
	}
}

func (e *Engine) diagnoseScroll(ctx context.Context, i int, step entity.SkillStep, hint *entity.ScrollHint) {
	if e.diagnoser == nil {
		return
	}
	if elements, ok := e.diagnosisPerception(ctx); ok {
		e.session.addDiagnosis(e.diagnoser.ScrollFailure(i, step, hint, elements))
	}
}

func visibleTexts(elements []entity.TapPoint) []string {
	var texts []string
	for _, el := range elements {
		if el.Text != "" {
			texts = append(texts, el.Text)
		}
	}
	return texts
}
