package output

import "context"

// ActuatorPort is the input-injection collaborator. Coordinates are logical
// points in the mirrored window.
type ActuatorPort interface {
	Tap(ctx context.Context, x, y float64) error
	Swipe(ctx context.Context, fromX, fromY, toX, toY float64) error
	TypeText(ctx context.Context, text string) error
	PressKey(ctx context.Context, key string) error
}
