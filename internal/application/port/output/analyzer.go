package output

import (
	"context"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// AnalyzerPort is the optional remote analysis collaborator. It consumes the
// deterministic diagnoses of one failed replay and returns free-form advice.
// Unavailability must never fail the run.
type AnalyzerPort interface {
	Analyze(ctx context.Context, scenario string, diagnoses []entity.Diagnosis) (string, error)
}
