package lang

import (
	"errors"
	"strings"
	"testing"

	"github.com/edgefn/modelgate/internal/config"
)

type fixedDetector struct {
	code string
	ok   bool
}

func (d fixedDetector) Detect(string) (string, bool) { return d.code, d.ok }

func testLangs() []config.Language {
	return []config.Language{
		{Code: "eng", Name: "English"},
		{Code: "spa", Name: "Spanish"},
	}
}

func TestGate_SupportedLanguagePasses(t *testing.T) {
	g := NewGate(fixedDetector{code: "eng", ok: true}, testLangs())
	if err := g.Check("hello world"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestGate_UndetectablePasses(t *testing.T) {
	g := NewGate(fixedDetector{ok: false}, testLangs())
	if err := g.Check("123 :) ???"); err != nil {
		t.Fatalf("ambiguous content must pass: %v", err)
	}
}

func TestGate_UnsupportedFailsWithEnumeratedSet(t *testing.T) {
	g := NewGate(fixedDetector{code: "fin", ok: true}, testLangs())
	err := g.Check("hei maailma")
	if err == nil {
		t.Fatal("expected rejection")
	}
	var ue *UnsupportedError
	if !errors.As(err, &ue) {
		t.Fatalf("expected *UnsupportedError, got %T", err)
	}
	msg := err.Error()
	for _, want := range []string{`"fin"`, "English (eng)", "Spanish (spa)"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message %q missing %q", msg, want)
		}
	}
}

func TestWhatlang_DetectsEnglish(t *testing.T) {
	code, ok := Whatlang{}.Detect("The quick brown fox jumps over the lazy dog and keeps on running through the field.")
	if !ok {
		t.Fatal("expected a reliable detection")
	}
	if code != "eng" {
		t.Fatalf("got %q", code)
	}
}

func TestWhatlang_EmptyTextUndetected(t *testing.T) {
	if _, ok := (Whatlang{}).Detect("   "); ok {
		t.Fatal("blank text must not detect")
	}
}

func TestGate_CodesSorted(t *testing.T) {
	g := NewGate(fixedDetector{}, testLangs())
	codes := g.Codes()
	if len(codes) != 2 || codes[0] != "eng" || codes[1] != "spa" {
		t.Fatalf("got %v", codes)
	}
}
