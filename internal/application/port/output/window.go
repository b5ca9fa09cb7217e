package output

import (
	"context"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

// WindowPort queries and controls the mirrored device window.
type WindowPort interface {
	Size(ctx context.Context) (entity.WindowSize, error)
	Orientation(ctx context.Context) (string, error)

	Launch(ctx context.Context, app string) error
	ResetApp(ctx context.Context, app string) error
	Home(ctx context.Context) error
	OpenURL(ctx context.Context, url string) error
	Shake(ctx context.Context) error
	SetNetwork(ctx context.Context, profile string) error
}

// MenuPort is an optional capability of menu-capable windows. It is resolved
// once at construction and held as a nilable reference, never discovered by
// runtime type inspection.
type MenuPort interface {
	SelectMenu(ctx context.Context, path ...string) error
}
