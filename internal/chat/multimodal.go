package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/edgefn/modelgate/internal/telemetry"
	"github.com/edgefn/modelgate/internal/vision"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

// ErrBadImagePayload marks a request whose image parts cannot be decoded.
// Always an invalid_request_error for the whole request; parts are never
// silently skipped.
var ErrBadImagePayload = errors.New("malformed image payload")

const dataImageScheme = "data:image/"

// visionConcurrency caps simultaneous analyses per request.
const visionConcurrency = 4

// Preprocessor resolves image parts into text the text-only engine can
// consume. Independent parts and messages are analyzed concurrently; results
// are reassembled in original message/part order so identical input yields
// identically ordered context.
type Preprocessor struct {
	Vision vision.Analyzer
	Sink   telemetry.Sink
}

// Process returns a copy of msgs in which every message that carried parts
// has its Content replaced by the part outputs joined with blank lines. Text
// parts pass through verbatim; image parts become rendered analysis
// paragraphs or URL placeholders. Messages without parts are untouched.
func (p *Preprocessor) Process(ctx context.Context, msgs []apitypes.ChatMessage) ([]apitypes.ChatMessage, error) {
	out := make([]apitypes.ChatMessage, len(msgs))
	copy(out, msgs)

	results := make([][]string, len(msgs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(visionConcurrency)

	for mi := range msgs {
		if msgs[mi].Parts == nil {
			continue
		}
		results[mi] = make([]string, len(msgs[mi].Parts))
		for pi := range msgs[mi].Parts {
			mi, pi := mi, pi
			part := msgs[mi].Parts[pi]
			switch part.Type {
			case apitypes.PartTypeText:
				results[mi][pi] = part.Text
			case apitypes.PartTypeImageURL, apitypes.PartTypeImageData:
				g.Go(func() error {
					text, err := p.resolveImagePart(gctx, part)
					if err != nil {
						return err
					}
					results[mi][pi] = text
					return nil
				})
			}
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for mi := range out {
		if results[mi] == nil {
			continue
		}
		pieces := make([]string, 0, len(results[mi]))
		for _, s := range results[mi] {
			if strings.TrimSpace(s) != "" {
				pieces = append(pieces, s)
			}
		}
		out[mi].Content = strings.Join(pieces, "\n\n")
	}
	return out, nil
}

func (p *Preprocessor) resolveImagePart(ctx context.Context, part apitypes.ContentPart) (string, error) {
	switch part.Type {
	case apitypes.PartTypeImageURL:
		url := part.ImageURL.URL
		if !strings.HasPrefix(url, dataImageScheme) {
			// remote fetch is deliberately out of scope: no unbounded
			// network I/O on the request path
			return "[Image at URL: " + url + "]", nil
		}
		raw, err := decodeDataURL(url)
		if err != nil {
			return "", err
		}
		return p.analyze(ctx, raw)
	case apitypes.PartTypeImageData:
		raw, err := base64.StdEncoding.DecodeString(part.ImageData.Data)
		if err != nil {
			return "", fmt.Errorf("%w: invalid base64 image data: %v", ErrBadImagePayload, err)
		}
		return p.analyze(ctx, raw)
	default:
		return "", fmt.Errorf("%w: not an image part: %s", ErrBadImagePayload, part.Type)
	}
}

func decodeDataURL(url string) ([]byte, error) {
	comma := strings.Index(url, ",")
	if comma < 0 {
		return nil, fmt.Errorf("%w: data URL missing payload", ErrBadImagePayload)
	}
	raw, err := base64.StdEncoding.DecodeString(url[comma+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 in data URL: %v", ErrBadImagePayload, err)
	}
	return raw, nil
}

func (p *Preprocessor) analyze(ctx context.Context, img []byte) (string, error) {
	a, err := p.Vision.Analyze(ctx, img)
	if err != nil {
		if errors.Is(err, vision.ErrBadImage) {
			return "", fmt.Errorf("%w: %v", ErrBadImagePayload, err)
		}
		return "", err
	}
	telemetry.Emit(p.Sink, telemetry.EventVisionProcessed, map[string]any{
		"bytes":      len(img),
		"objects":    len(a.Objects),
		"confidence": a.Confidence,
	})
	return renderAnalysis(a), nil
}

// renderAnalysis produces the fixed context paragraph handed to the engine
// in place of an image.
func renderAnalysis(a vision.Analysis) string {
	var b strings.Builder
	b.WriteString("[Image analysis]")
	if strings.TrimSpace(a.Text) != "" {
		fmt.Fprintf(&b, " Text content: %q.", a.Text)
	}
	if len(a.Objects) > 0 {
		labels := make([]string, 0, len(a.Objects))
		for _, o := range a.Objects {
			labels = append(labels, fmt.Sprintf("%s (%d%%)", o.Label, percent(o.Confidence)))
		}
		fmt.Fprintf(&b, " Detected objects: %s.", strings.Join(labels, ", "))
	}
	fmt.Fprintf(&b, " Overall confidence: %d%%.", percent(a.Confidence))
	b.WriteString(" Use the image context above when responding to the user.")
	return b.String()
}

func percent(v float64) int {
	return int(math.Round(v * 100))
}
