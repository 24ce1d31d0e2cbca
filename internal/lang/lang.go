// Package lang detects the dominant language of prompt text and rejects
// requests outside the engine's supported set before any generation session
// is opened.
package lang

import (
	"fmt"
	"sort"
	"strings"

	"github.com/abadojack/whatlanggo"

	"github.com/edgefn/modelgate/internal/config"
)

// Detector resolves text to an ISO 639-3 language code. ok is false when no
// language can be determined reliably; ambiguous or mixed content passes the
// gate.
type Detector interface {
	Detect(text string) (code string, ok bool)
}

// Whatlang is the default Detector backed by whatlanggo's trigram profiles.
type Whatlang struct{}

func (Whatlang) Detect(text string) (string, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return "", false
	}
	info := whatlanggo.Detect(t)
	if !info.IsReliable() {
		return "", false
	}
	code := strings.TrimSpace(whatlanggo.LangToString(info.Lang))
	if code == "" {
		return "", false
	}
	return code, true
}

// UnsupportedError reports a detected language outside the supported set.
// Its message enumerates the supported display names and codes so callers
// can self-correct.
type UnsupportedError struct {
	Code      string
	Supported string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf(
		"the detected language %q is not supported by the on-device model. Supported languages: %s",
		e.Code, e.Supported,
	)
}

// Gate checks text against a supported-language set.
type Gate struct {
	det       Detector
	names     map[string]string // code -> display name
	supported string            // rendered "Name (code), ..." list
}

// NewGate builds a gate over the configured supported set. A nil detector
// defaults to Whatlang.
func NewGate(det Detector, langs []config.Language) *Gate {
	if det == nil {
		det = Whatlang{}
	}
	names := make(map[string]string, len(langs))
	for _, l := range langs {
		code := strings.ToLower(strings.TrimSpace(l.Code))
		if code == "" {
			continue
		}
		name := strings.TrimSpace(l.Name)
		if name == "" {
			name = code
		}
		names[code] = name
	}
	return &Gate{det: det, names: names, supported: renderSupported(names)}
}

// Check detects the dominant language of text and fails with an
// *UnsupportedError when it is outside the supported set. Undetectable text
// passes.
func (g *Gate) Check(text string) error {
	code, ok := g.det.Detect(text)
	if !ok {
		return nil
	}
	if _, supported := g.names[strings.ToLower(code)]; supported {
		return nil
	}
	return &UnsupportedError{Code: code, Supported: g.supported}
}

// Codes returns the supported language codes, sorted.
func (g *Gate) Codes() []string {
	out := make([]string, 0, len(g.names))
	for code := range g.names {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

func renderSupported(names map[string]string) string {
	codes := make([]string, 0, len(names))
	for code := range names {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		parts = append(parts, fmt.Sprintf("%s (%s)", names[code], code))
	}
	return strings.Join(parts, ", ")
}
