package diagnose

import (
	"context"
	"errors"
	"time"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// ErrRemoteUnavailable wraps any network, auth or timeout failure of the
// optional remote analysis step. It is logged and swallowed, never escalated.
var ErrRemoteUnavailable = errors.New("remote diagnosis unavailable")

// defaultRemoteTimeout bounds the single externally-timed operation of a run.
const defaultRemoteTimeout = 20 * time.Second

// Escalate feeds aggregated diagnoses to the remote analyzer. Returns the
// advisory text, or "" when the analyzer is absent, has nothing to work
// with, or fails; the deterministic report stands either way.
func Escalate(ctx context.Context, analyzer output.AnalyzerPort, timeout time.Duration, scenario string, diags []entity.Diagnosis, logger output.LoggerPort) string {
	if analyzer == nil || len(diags) == 0 {
		return ""
	}
	if timeout <= 0 {
		timeout = defaultRemoteTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	advice, err := analyzer.Analyze(ctx, scenario, diags)
	if err != nil {
		if logger != nil {
			logger.Warn("remote diagnosis skipped", "error", errors.Join(ErrRemoteUnavailable, err))
		}
		return ""
	}
	return advice
}
