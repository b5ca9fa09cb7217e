package output

import (
	"context"
	"image"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// PerceptionPort is the text-recognition collaborator. One call is one
// recognition pass over a captured frame; calls are slow and blocking.
type PerceptionPort interface {
	Recognize(ctx context.Context, img image.Image) ([]entity.RawTextElement, error)
}

// SnapshotPort is the raster-capture collaborator.
type SnapshotPort interface {
	Capture(ctx context.Context) (image.Image, error)
}
