package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Dev is a deterministic in-process engine used when no platform engine is
// wired in. It makes the binary runnable end to end and exercises the whole
// streaming pipeline: responses stream word by word as cumulative snapshots.
type Dev struct {
	// ModelID is echoed in generated text so callers can see which engine
	// answered.
	ModelID string

	// Pace, when positive, delays each streamed word. Zero in tests.
	Pace time.Duration

	// DownReason, when non-empty, makes the engine report unavailable.
	DownReason string
}

func (d *Dev) Availability(ctx context.Context) Availability {
	if d.DownReason != "" {
		return Availability{Available: false, Reason: d.DownReason}
	}
	return Availability{Available: true}
}

func (d *Dev) Generate(ctx context.Context, transcript []Entry, prompt string, opts Options) (string, error) {
	if d.DownReason != "" {
		return "", &UnavailableError{Reason: d.DownReason}
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.render(transcript, prompt, opts), nil
}

func (d *Dev) StreamGenerate(ctx context.Context, transcript []Entry, prompt string, opts Options) (<-chan Snapshot, error) {
	if d.DownReason != "" {
		return nil, &UnavailableError{Reason: d.DownReason}
	}
	full := d.render(transcript, prompt, opts)
	ch := make(chan Snapshot)
	go func() {
		defer close(ch)
		words := strings.Fields(full)
		var cum strings.Builder
		for i, w := range words {
			if d.Pace > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(d.Pace):
				}
			}
			if i > 0 {
				cum.WriteString(" ")
			}
			cum.WriteString(w)
			select {
			case <-ctx.Done():
				return
			case ch <- Snapshot{Text: cum.String()}:
			}
		}
	}()
	return ch, nil
}

func (d *Dev) render(transcript []Entry, prompt string, opts Options) string {
	model := d.ModelID
	if model == "" {
		model = "dev"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "You said: %q.", prompt)
	if n := len(transcript); n > 0 {
		fmt.Fprintf(&b, " I have %d prior turns of context.", n)
	}
	fmt.Fprintf(&b, " This is a development response from %s.", model)
	out := b.String()
	if opts.MaxTokens > 0 {
		words := strings.Fields(out)
		if len(words) > opts.MaxTokens {
			out = strings.Join(words[:opts.MaxTokens], " ")
		}
	}
	return out
}
