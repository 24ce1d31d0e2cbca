// Package engine defines the narrow capability interface over the local text
// generation engine. The engine is session-based and stateful internally;
// callers see only availability, one-shot generation, and streamed
// generation. A fresh session is opened per call and discarded with it —
// conversation state always arrives via the transcript.
package engine

import (
	"context"
	"errors"
	"fmt"
)

// EntryKind tags a transcript entry.
type EntryKind int

const (
	// EntryInstructions is system-level guidance (maps from role "system").
	EntryInstructions EntryKind = iota
	// EntryPrompt is a prior user turn.
	EntryPrompt
	// EntryResponse is a prior assistant turn.
	EntryResponse
)

func (k EntryKind) String() string {
	switch k {
	case EntryInstructions:
		return "instructions"
	case EntryPrompt:
		return "prompt"
	case EntryResponse:
		return "response"
	default:
		return fmt.Sprintf("entrykind(%d)", int(k))
	}
}

// Entry is one reconstructed prior turn. Built once per request, never
// mutated afterward.
type Entry struct {
	Kind     EntryKind
	Segments []string
}

// Options are the generation parameters the engine honors.
type Options struct {
	// Temperature, when non-nil, overrides the engine default.
	Temperature *float64
	// MaxTokens, when positive, caps generated tokens.
	MaxTokens int
}

// Availability reports whether the engine can serve, with a human-readable
// reason when it cannot.
type Availability struct {
	Available bool
	Reason    string
}

// Snapshot is one cumulative generation state: the full text produced so
// far, or a terminal error. After a Snapshot with Err != nil the channel is
// closed.
type Snapshot struct {
	Text string
	Err  error
}

// ErrUnsupportedLanguage is the engine-level rejection raised when the model
// refuses a prompt's language during generation. The server remaps it to the
// same invalid_request_error shape used by the pre-generation language gate.
var ErrUnsupportedLanguage = errors.New("engine rejected prompt language")

// UnavailableError is returned when a generation is attempted while the
// engine reports unavailable.
type UnavailableError struct {
	Reason string
}

func (e *UnavailableError) Error() string {
	if e.Reason == "" {
		return "model is not available"
	}
	return "model is not available: " + e.Reason
}

// Engine is the capability surface the request pipeline depends on.
//
// Generate and StreamGenerate each open one ephemeral session seeded with the
// transcript, run exactly one generation for the prompt, and tear the session
// down. Both must respect ctx cancellation promptly: an abandoned stream must
// not keep generating in the background.
type Engine interface {
	// Availability reports whether the engine can serve requests.
	Availability(ctx context.Context) Availability

	// Generate produces the complete response text for the prompt.
	Generate(ctx context.Context, transcript []Entry, prompt string, opts Options) (string, error)

	// StreamGenerate produces a monotonically growing sequence of cumulative
	// text snapshots. The channel is closed after the final snapshot or a
	// terminal error snapshot.
	StreamGenerate(ctx context.Context, transcript []Entry, prompt string, opts Options) (<-chan Snapshot, error)
}
