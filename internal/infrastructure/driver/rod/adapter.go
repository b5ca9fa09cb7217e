// Package rod drives a browser-hosted device mirror. The mirror page renders
// the device screen into a single element and exposes a control bridge for
// device-level commands (launch, home, network profiles). Input goes through
// CDP mouse and keyboard events on the screen element.
package rod

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/input"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

var (
	_ output.WindowPort   = (*Adapter)(nil)
	_ output.MenuPort     = (*Adapter)(nil)
	_ output.ActuatorPort = (*Adapter)(nil)
	_ output.SnapshotPort = (*Adapter)(nil)
)

const screenSelector = "#screen"

type Config struct {
	// MirrorURL is the device mirror page.
	MirrorURL string
	Headless  bool
	// SlowMotion inserts a delay before every CDP input action.
	SlowMotion time.Duration
	// Timeout bounds element lookups and bridge calls.
	Timeout   time.Duration
	NoSandbox bool
}

func DefaultConfig() Config {
	return Config{
		Headless:   true,
		SlowMotion: 0,
		Timeout:    10 * time.Second,
		NoSandbox:  true,
	}
}

// Adapter implements the window, actuator and snapshot ports on one mirror
// page. Not safe for concurrent use; the engine is single-threaded.
type Adapter struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	page     *rod.Page
	timeout  time.Duration
}

func NewAdapter(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.MirrorURL == "" {
		return nil, fmt.Errorf("mirror url is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultConfig().Timeout
	}

	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().
		ControlURL(url).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect browser: %w", err)
	}

	page, err := browser.Page(proto.TargetCreateTarget{URL: cfg.MirrorURL})
	if err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("open mirror page: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		_ = browser.Close()
		l.Kill()
		return nil, fmt.Errorf("load mirror page: %w", err)
	}

	return &Adapter{
		browser:  browser,
		launcher: l,
		page:     page,
		timeout:  cfg.Timeout,
	}, nil
}

func (a *Adapter) Close() {
	if a.browser != nil {
		_ = a.browser.Close()
	}
	if a.launcher != nil {
		a.launcher.Kill()
		a.launcher.Cleanup()
	}
}

// screen returns the mirror's screen element.
func (a *Adapter) screen() (*rod.Element, error) {
	el, err := a.page.Timeout(a.timeout).Element(screenSelector)
	if err != nil {
		return nil, fmt.Errorf("mirror screen element not found: %w", err)
	}
	return el, nil
}

// Size reads the screen element's layout box in CSS points, which is the
// coordinate space all tap points use.
func (a *Adapter) Size(ctx context.Context) (entity.WindowSize, error) {
	res, err := a.page.Timeout(a.timeout).Eval(`(sel) => {
		const r = document.querySelector(sel).getBoundingClientRect()
		return { width: r.width, height: r.height }
	}`, screenSelector)
	if err != nil {
		return entity.WindowSize{}, fmt.Errorf("read screen size: %w", err)
	}
	return entity.WindowSize{
		Width:  res.Value.Get("width").Num(),
		Height: res.Value.Get("height").Num(),
	}, nil
}

func (a *Adapter) Orientation(ctx context.Context) (string, error) {
	win, err := a.Size(ctx)
	if err != nil {
		return "", err
	}
	if win.Width > win.Height {
		return "landscape", nil
	}
	return "portrait", nil
}

// bridge invokes the mirror's device-control API. Payloads go through gson
// so nil and scalar arguments serialize uniformly.
func (a *Adapter) bridge(command string, payload any) error {
	_, err := a.page.Timeout(a.timeout).Eval(`(cmd, arg) => window.mirror.dispatch(cmd, arg)`,
		command, gson.New(payload))
	if err != nil {
		return fmt.Errorf("mirror %s: %w", command, err)
	}
	return nil
}

func (a *Adapter) Launch(ctx context.Context, app string) error {
	return a.bridge("launch", app)
}

func (a *Adapter) ResetApp(ctx context.Context, app string) error {
	return a.bridge("resetApp", app)
}

func (a *Adapter) Home(ctx context.Context) error {
	return a.bridge("home", nil)
}

func (a *Adapter) OpenURL(ctx context.Context, url string) error {
	return a.bridge("openUrl", url)
}

func (a *Adapter) Shake(ctx context.Context) error {
	return a.bridge("shake", nil)
}

func (a *Adapter) SetNetwork(ctx context.Context, profile string) error {
	return a.bridge("setNetwork", profile)
}

// SelectMenu descends the mirror's menu bar one title per path segment.
func (a *Adapter) SelectMenu(ctx context.Context, path ...string) error {
	if len(path) == 0 {
		return fmt.Errorf("mirror selectMenu: empty path")
	}
	return a.bridge("selectMenu", path)
}

// pagePoint translates window points into page coordinates.
func (a *Adapter) pagePoint(x, y float64) (proto.Point, error) {
	res, err := a.page.Timeout(a.timeout).Eval(`(sel) => {
		const r = document.querySelector(sel).getBoundingClientRect()
		return { left: r.left, top: r.top }
	}`, screenSelector)
	if err != nil {
		return proto.Point{}, fmt.Errorf("locate screen element: %w", err)
	}
	return proto.Point{
		X: res.Value.Get("left").Num() + x,
		Y: res.Value.Get("top").Num() + y,
	}, nil
}

func (a *Adapter) Tap(ctx context.Context, x, y float64) error {
	pt, err := a.pagePoint(x, y)
	if err != nil {
		return err
	}
	if err := a.page.Mouse.MoveTo(pt); err != nil {
		return fmt.Errorf("move to tap point: %w", err)
	}
	if err := a.page.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("tap at (%.1f, %.1f): %w", x, y, err)
	}
	return nil
}

// Swipe presses, drags in small increments so the mirror registers a gesture
// rather than a jump, and releases.
func (a *Adapter) Swipe(ctx context.Context, fromX, fromY, toX, toY float64) error {
	from, err := a.pagePoint(fromX, fromY)
	if err != nil {
		return err
	}
	to, err := a.pagePoint(toX, toY)
	if err != nil {
		return err
	}

	if err := a.page.Mouse.MoveTo(from); err != nil {
		return fmt.Errorf("move to swipe start: %w", err)
	}
	if err := a.page.Mouse.Down(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("swipe press: %w", err)
	}
	const steps = 12
	for i := 1; i <= steps; i++ {
		f := float64(i) / steps
		pt := proto.Point{
			X: from.X + (to.X-from.X)*f,
			Y: from.Y + (to.Y-from.Y)*f,
		}
		if err := a.page.Mouse.MoveTo(pt); err != nil {
			return fmt.Errorf("swipe drag: %w", err)
		}
	}
	if err := a.page.Mouse.Up(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("swipe release: %w", err)
	}
	return nil
}

func (a *Adapter) TypeText(ctx context.Context, text string) error {
	err := proto.InputInsertText{Text: text}.Call(a.page)
	if err != nil {
		return fmt.Errorf("type text: %w", err)
	}
	return nil
}

// keyMap covers the named keys scenarios use; anything else is typed as text.
var keyMap = map[string]input.Key{
	"enter":     input.Enter,
	"backspace": input.Backspace,
	"tab":       input.Tab,
	"escape":    input.Escape,
	"delete":    input.Delete,
	"space":     input.Space,
	"arrowup":   input.ArrowUp,
	"arrowdown": input.ArrowDown,
}

func (a *Adapter) PressKey(ctx context.Context, key string) error {
	if k, ok := keyMap[strings.ToLower(key)]; ok {
		if err := a.page.Keyboard.Press(k); err != nil {
			return fmt.Errorf("press %s: %w", key, err)
		}
		return nil
	}
	return a.TypeText(ctx, key)
}

// Capture screenshots the screen element only, at full pixel resolution.
func (a *Adapter) Capture(ctx context.Context) (image.Image, error) {
	el, err := a.screen()
	if err != nil {
		return nil, err
	}
	data, err := el.Screenshot(proto.PageCaptureScreenshotFormatPng, 0)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode capture: %w", err)
	}
	return img, nil
}

// PixelScale reports capture pixels per window point, for the OCR adapter.
func (a *Adapter) PixelScale(ctx context.Context) (float64, error) {
	win, err := a.Size(ctx)
	if err != nil {
		return 0, err
	}
	img, err := a.Capture(ctx)
	if err != nil {
		return 0, err
	}
	if win.Width <= 0 {
		return 1, nil
	}
	return float64(img.Bounds().Dx()) / win.Width, nil
}
