package input

import (
	"context"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// ScenarioRunner drives one scenario to completion. The returned result is
// always complete: step failures are recorded, not raised.
type ScenarioRunner interface {
	Run(ctx context.Context, scenario entity.Scenario) entity.ScenarioResult
}
