package chat

import (
	"testing"

	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

func msg(role, content string) apitypes.ChatMessage {
	return apitypes.ChatMessage{Role: role, Content: content}
}

func TestBuildTranscript_MapsRolesInOrder(t *testing.T) {
	msgs := []apitypes.ChatMessage{
		msg("system", "be brief"),
		msg("user", "hi"),
		msg("assistant", "hello"),
		msg("critic", "odd role"),
		msg("user", "current turn"),
	}
	entries := BuildTranscript(msgs)
	if len(entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(entries))
	}
	wantKinds := []engine.EntryKind{
		engine.EntryInstructions,
		engine.EntryPrompt,
		engine.EntryResponse,
		engine.EntryPrompt, // unrecognized role falls back to prompt
	}
	wantText := []string{"be brief", "hi", "hello", "odd role"}
	for i, e := range entries {
		if e.Kind != wantKinds[i] {
			t.Fatalf("entry %d kind %v, want %v", i, e.Kind, wantKinds[i])
		}
		if len(e.Segments) != 1 || e.Segments[0] != wantText[i] {
			t.Fatalf("entry %d segments %v", i, e.Segments)
		}
	}
}

func TestBuildTranscript_FinalMessageExcluded(t *testing.T) {
	entries := BuildTranscript([]apitypes.ChatMessage{msg("user", "only turn")})
	if entries != nil {
		t.Fatalf("single message yields no history, got %v", entries)
	}
}
