// Package chat implements the request pipeline between the wire DTOs and the
// generation engine: multimodal preprocessing, transcript reconstruction,
// and the generation controller.
package chat

import (
	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

// BuildTranscript converts all messages except the last into engine entries:
// system maps to instructions, user to prompt, assistant to response.
// Unrecognized roles map to prompt — a deliberately permissive fallback kept
// for wire compatibility, not silently dropped.
//
// The final message is never part of the transcript; it is always the
// current turn's prompt and is passed to the generation call directly.
func BuildTranscript(messages []apitypes.ChatMessage) []engine.Entry {
	if len(messages) <= 1 {
		return nil
	}
	entries := make([]engine.Entry, 0, len(messages)-1)
	for _, m := range messages[:len(messages)-1] {
		var kind engine.EntryKind
		switch m.Role {
		case "system":
			kind = engine.EntryInstructions
		case "assistant":
			kind = engine.EntryResponse
		default: // "user" and anything unrecognized
			kind = engine.EntryPrompt
		}
		entries = append(entries, engine.Entry{Kind: kind, Segments: []string{m.Content}})
	}
	return entries
}
