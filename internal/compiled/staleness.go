package compiled

import "github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"

// StaleError explains why a compiled scenario cannot be trusted. It is a
// fallback signal, not a hard failure: callers degrade to full perception.
type StaleError struct {
	Reason string
}

func (e *StaleError) Error() string { return "compiled scenario is stale: " + e.Reason }

// CheckFreshness gates a compiled scenario against the current source and
// device. Any mismatch invalidates the whole scenario, never individual
// steps. A nil result means the hints may be replayed.
func CheckFreshness(c *entity.CompiledScenario, sourceHash string, win entity.WindowSize) *StaleError {
	if c.Version != entity.CompiledFormatVersion {
		return &StaleError{Reason: "compiled format version mismatch"}
	}
	if c.SourceHash != sourceHash {
		return &StaleError{Reason: "source file has changed since compilation"}
	}
	if c.Window.Width != win.Width || c.Window.Height != win.Height {
		return &StaleError{Reason: "device window dimensions have changed"}
	}
	return nil
}
