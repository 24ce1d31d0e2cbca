package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"

	"github.com/edgefn/modelgate/internal/vision"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

type scriptedVision struct {
	analysis vision.Analysis
}

func (v scriptedVision) Analyze(ctx context.Context, img []byte) (vision.Analysis, error) {
	if len(img) == 0 || !bytes.HasPrefix(img, []byte("\x89PNG")) && !bytes.HasPrefix(img, []byte("ok")) {
		return vision.Analysis{}, vision.ErrBadImage
	}
	return v.analysis, nil
}

func pngDataURL(t *testing.T) string {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))); err != nil {
		t.Fatal(err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

func partsMsg(parts ...apitypes.ContentPart) apitypes.ChatMessage {
	return apitypes.ChatMessage{
		Role:    "user",
		Content: apitypes.FlattenText(parts),
		Parts:   parts,
	}
}

func textPart(s string) apitypes.ContentPart {
	return apitypes.ContentPart{Type: apitypes.PartTypeText, Text: s}
}

func TestPreprocessor_RendersAnalysisInPartOrder(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{analysis: vision.Analysis{
		Text:       "EXIT",
		Objects:    []vision.Object{{Label: "sign", Confidence: 0.87}, {Label: "door", Confidence: 0.42}},
		Confidence: 0.91,
	}}}
	m := partsMsg(
		textPart("what does this say"),
		apitypes.ContentPart{Type: apitypes.PartTypeImageURL, ImageURL: &apitypes.ImageURL{URL: pngDataURL(t)}},
	)
	out, err := p.Process(context.Background(), []apitypes.ChatMessage{m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out[0].Content
	pieces := strings.Split(got, "\n\n")
	if len(pieces) != 2 {
		t.Fatalf("expected 2 blank-line-joined pieces, got %d: %q", len(pieces), got)
	}
	if pieces[0] != "what does this say" {
		t.Fatalf("text part must come first: %q", pieces[0])
	}
	for _, want := range []string{`Text content: "EXIT".`, "sign (87%)", "door (42%)", "Overall confidence: 91%", "Use the image context above"} {
		if !strings.Contains(pieces[1], want) {
			t.Fatalf("analysis paragraph %q missing %q", pieces[1], want)
		}
	}
}

func TestPreprocessor_RemoteURLBecomesPlaceholder(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{}}
	m := partsMsg(apitypes.ContentPart{
		Type:     apitypes.PartTypeImageURL,
		ImageURL: &apitypes.ImageURL{URL: "https://example.com/cat.jpg"},
	})
	out, err := p.Process(context.Background(), []apitypes.ChatMessage{m})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Content != "[Image at URL: https://example.com/cat.jpg]" {
		t.Fatalf("got %q", out[0].Content)
	}
}

func TestPreprocessor_MalformedBase64IsBadPayload(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{}}
	cases := []apitypes.ContentPart{
		{Type: apitypes.PartTypeImageData, ImageData: &apitypes.ImageData{Data: "!!!not-base64!!!"}},
		{Type: apitypes.PartTypeImageURL, ImageURL: &apitypes.ImageURL{URL: "data:image/png;base64,@@@"}},
		{Type: apitypes.PartTypeImageURL, ImageURL: &apitypes.ImageURL{URL: "data:image/png;base64"}},
	}
	for _, part := range cases {
		_, err := p.Process(context.Background(), []apitypes.ChatMessage{partsMsg(part)})
		if !errors.Is(err, ErrBadImagePayload) {
			t.Fatalf("part %+v: expected ErrBadImagePayload, got %v", part, err)
		}
	}
}

func TestPreprocessor_UndecodableImageIsBadPayload(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{}}
	m := partsMsg(apitypes.ContentPart{
		Type:      apitypes.PartTypeImageData,
		ImageData: &apitypes.ImageData{Data: base64.StdEncoding.EncodeToString([]byte("garbage bytes"))},
	})
	if _, err := p.Process(context.Background(), []apitypes.ChatMessage{m}); !errors.Is(err, ErrBadImagePayload) {
		t.Fatalf("expected ErrBadImagePayload, got %v", err)
	}
}

func TestPreprocessor_MessagesWithoutPartsUntouched(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{}}
	plain := apitypes.ChatMessage{Role: "user", Content: "just text"}
	out, err := p.Process(context.Background(), []apitypes.ChatMessage{plain})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out[0].Content != "just text" {
		t.Fatalf("got %q", out[0].Content)
	}
}

func TestPreprocessor_OrderStableAcrossMessages(t *testing.T) {
	p := &Preprocessor{Vision: scriptedVision{analysis: vision.Analysis{Confidence: 1}}}
	url := pngDataURL(t)
	msgs := []apitypes.ChatMessage{
		partsMsg(textPart("first"), apitypes.ContentPart{Type: apitypes.PartTypeImageURL, ImageURL: &apitypes.ImageURL{URL: url}}),
		partsMsg(textPart("second"), apitypes.ContentPart{Type: apitypes.PartTypeImageURL, ImageURL: &apitypes.ImageURL{URL: url}}),
	}
	a, err := p.Process(context.Background(), msgs)
	if err != nil {
		t.Fatal(err)
	}
	b, err := p.Process(context.Background(), msgs)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a {
		if a[i].Content != b[i].Content {
			t.Fatalf("message %d not deterministic:\n%q\nvs\n%q", i, a[i].Content, b[i].Content)
		}
	}
	if !strings.HasPrefix(a[0].Content, "first") || !strings.HasPrefix(a[1].Content, "second") {
		t.Fatalf("message order lost: %q / %q", a[0].Content, a[1].Content)
	}
}
