package vision

import (
	"bytes"
	"context"
	"fmt"
	"image"

	// stdlib containers
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	// extended containers
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Local is the built-in analyzer used when no platform vision engine is
// wired in. It validates and inspects the image container without any model
// inference: malformed payloads fail fast, well-formed ones yield a
// structural description the generation engine can still use as context.
type Local struct{}

func (Local) Analyze(ctx context.Context, img []byte) (Analysis, error) {
	if err := ctx.Err(); err != nil {
		return Analysis{}, err
	}
	if len(img) == 0 {
		return Analysis{}, fmt.Errorf("%w: empty image", ErrBadImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img))
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: %v", ErrBadImage, err)
	}

	desc := fmt.Sprintf("%dx%d %s image", cfg.Width, cfg.Height, format)
	return Analysis{
		Objects: []Object{
			{
				Label:       "image",
				Confidence:  1.0,
				Description: desc,
				BoundingBox: BoundingBox{X: 0, Y: 0, Width: 1, Height: 1},
			},
		},
		Confidence:  1.0,
		Description: desc,
	}, nil
}
