package vision

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"strings"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestLocal_AnalyzeValidPNG(t *testing.T) {
	a, err := Local{}.Analyze(context.Background(), pngBytes(t, 8, 4))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Confidence < 0 || a.Confidence > 1 {
		t.Fatalf("confidence out of range: %v", a.Confidence)
	}
	if len(a.Objects) == 0 {
		t.Fatal("expected at least one object")
	}
	if !strings.Contains(a.Description, "8x4") || !strings.Contains(a.Description, "png") {
		t.Fatalf("description: %q", a.Description)
	}
}

func TestLocal_AnalyzeGarbageIsBadImage(t *testing.T) {
	_, err := Local{}.Analyze(context.Background(), []byte("definitely not an image"))
	if !errors.Is(err, ErrBadImage) {
		t.Fatalf("expected ErrBadImage, got %v", err)
	}
}

func TestLocal_AnalyzeEmptyIsBadImage(t *testing.T) {
	_, err := Local{}.Analyze(context.Background(), nil)
	if !errors.Is(err, ErrBadImage) {
		t.Fatalf("expected ErrBadImage, got %v", err)
	}
}
