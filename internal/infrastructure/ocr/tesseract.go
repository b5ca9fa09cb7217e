// Package ocr implements the perception port on Tesseract. Recognition runs
// at line level so multi-word labels stay one element.
package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/otiai10/gosseract/v2"

	"github.com/jfarcand/mirroir-mcp-sub001/internal/application/port/output"
	"github.com/jfarcand/mirroir-mcp-sub001/internal/domain/entity"
)

var _ output.PerceptionPort = (*Adapter)(nil)

// Adapter wraps one gosseract client. The client is stateful and not safe
// for concurrent use, which matches the single-threaded engine.
type Adapter struct {
	client *gosseract.Client
	// Scale divides pixel coordinates back into window points when captures
	// come from a HiDPI surface. 1 means capture pixels are window points.
	scale float64
}

func NewAdapter(language string, scale float64) (*Adapter, error) {
	if language == "" {
		language = "eng"
	}
	if scale <= 0 {
		scale = 1
	}

	client := gosseract.NewClient()
	if err := client.SetLanguage(language); err != nil {
		client.Close()
		return nil, fmt.Errorf("set ocr language: %w", err)
	}
	// UI text is sparse and not prose; dictionary correction rewrites app
	// names into English words.
	_ = client.SetVariable("load_system_dawg", "false")
	_ = client.SetVariable("load_freq_dawg", "false")

	return &Adapter{client: client, scale: scale}, nil
}

func (a *Adapter) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// Recognize extracts text lines with their boxes from one screen capture.
func (a *Adapter) Recognize(ctx context.Context, img image.Image) ([]entity.RawTextElement, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode capture: %w", err)
	}

	if err := a.client.SetPageSegMode(gosseract.PSM_SPARSE_TEXT); err != nil {
		return nil, fmt.Errorf("set page seg mode: %w", err)
	}
	if err := a.client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("set ocr image: %w", err)
	}

	boxes, err := a.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("ocr bounding boxes: %w", err)
	}

	elements := make([]entity.RawTextElement, 0, len(boxes))
	for _, box := range boxes {
		text := strings.Join(strings.Fields(box.Word), " ")
		if text == "" {
			continue
		}
		elements = append(elements, entity.RawTextElement{
			Text:       text,
			CenterX:    float64(box.Box.Min.X+box.Box.Max.X) / 2 / a.scale,
			TopY:       float64(box.Box.Min.Y) / a.scale,
			BottomY:    float64(box.Box.Max.Y) / a.scale,
			Width:      float64(box.Box.Dx()) / a.scale,
			Confidence: box.Confidence / 100,
		})
	}
	return elements, nil
}
