package logx

import (
	"strings"
	"testing"
	"time"
)

func TestFormatRequestLine_NoColor(t *testing.T) {
	ts := time.Date(2026, 8, 31, 17, 44, 22, 0, time.UTC)
	line := FormatRequestLine(ts, 200, 12*time.Millisecond, "127.0.0.1", "POST", "/v1/chat/completions", map[string]any{
		"model":  "local-fm",
		"stream": true,
		"empty":  "",
	}, false)
	for _, want := range []string{"[MG]", "200", "12ms", "127.0.0.1", `POST "/v1/chat/completions"`, "model=local-fm", "stream=true"} {
		if !strings.Contains(line, want) {
			t.Fatalf("line %q missing %q", line, want)
		}
	}
	if strings.Contains(line, "empty=") {
		t.Fatalf("empty field should be skipped: %q", line)
	}
}

func TestFormatFields_SortedAndFiltered(t *testing.T) {
	got := FormatFields(map[string]any{"b": 2, "a": "x", "nilval": nil})
	if got != "a=x b=2" {
		t.Fatalf("got %q", got)
	}
}
