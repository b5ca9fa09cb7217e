package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrUnknownTarget is returned by switchTarget for an unregistered name.
var ErrUnknownTarget = errors.New("unknown target")

// ErrMenuUnsupported is returned by selectMenu when the current target was
// constructed without the menu capability.
var ErrMenuUnsupported = errors.New("menu not supported")

// PerceptionError wraps a capture or recognition failure. It fails the
// current step immediately; there is no retry.
type PerceptionError struct {
	Op  string // "capture" or "recognize"
	Err error
}

func (e *PerceptionError) Error() string {
	return fmt.Sprintf("perception failed during %s: %v", e.Op, e.Err)
}

func (e *PerceptionError) Unwrap() error { return e.Err }

// ElementNotFoundError reports a label absent after the full matcher ladder.
// The message lists currently visible text so a human can spot renames.
type ElementNotFoundError struct {
	Label   string
	Visible []string
}

func (e *ElementNotFoundError) Error() string {
	if len(e.Visible) == 0 {
		return fmt.Sprintf("%q not found (no text visible)", e.Label)
	}
	return fmt.Sprintf("%q not found; visible: %s", e.Label, strings.Join(e.Visible, ", "))
}

// TimeoutError reports an exceeded wait or measure bound, including the
// elapsed time.
type TimeoutError struct {
	Label   string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out after %s waiting for %q", e.Elapsed, e.Label)
}

// ScrollExhaustedError reports two identical consecutive fingerprints during
// scrollTo: the content stopped moving before the label appeared. Distinct
// from a plain not-found so scenario authors know scrolling further is
// pointless.
type ScrollExhaustedError struct {
	Label   string
	Scrolls int
}

func (e *ScrollExhaustedError) Error() string {
	return fmt.Sprintf("scroll exhausted after %d scrolls: screen stopped changing before %q appeared", e.Scrolls, e.Label)
}
