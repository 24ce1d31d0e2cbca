package apitypes

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestChatMessage_StringContentRoundTrips(t *testing.T) {
	var m ChatMessage
	if err := json.Unmarshal([]byte(`{"role":"user","content":"Hello"}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Role != "user" || m.Content != "Hello" || m.Parts != nil {
		t.Fatalf("unexpected message: %+v", m)
	}
	out, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(out), `"content":"Hello"`) {
		t.Fatalf("round trip lost content: %s", out)
	}
}

func TestChatMessage_TextPartsFlattenSpaceJoined(t *testing.T) {
	var m ChatMessage
	body := `{"role":"user","content":[{"type":"text","text":"a"},{"type":"text","text":"b"}]}`
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Content != "a b" {
		t.Fatalf("flattened content: got %q", m.Content)
	}
	if len(m.Parts) != 2 {
		t.Fatalf("parts preserved: got %d", len(m.Parts))
	}
}

func TestChatMessage_MixedPartsPreserveImages(t *testing.T) {
	var m ChatMessage
	body := `{"role":"user","content":[
		{"type":"text","text":"what is this"},
		{"type":"image_url","image_url":{"url":"https://example.com/a.png","detail":"low"}},
		{"type":"image_data","image_data":{"data":"aGk=","format":"png"}}
	]}`
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Content != "what is this" {
		t.Fatalf("flattened content: got %q", m.Content)
	}
	if !HasImageParts(m.Parts) {
		t.Fatal("expected image parts")
	}
	if m.Parts[1].ImageURL == nil || m.Parts[1].ImageURL.URL != "https://example.com/a.png" {
		t.Fatalf("image_url part: %+v", m.Parts[1])
	}
	if m.Parts[2].ImageData == nil || m.Parts[2].ImageData.Format != "png" {
		t.Fatalf("image_data part: %+v", m.Parts[2])
	}
}

func TestChatMessage_RejectsOtherContentShapes(t *testing.T) {
	cases := []string{
		`{"role":"user","content":42}`,
		`{"role":"user","content":{"text":"x"}}`,
		`{"role":"user","content":[{"type":"video","url":"x"}]}`,
		`{"role":"user","content":[{"type":"image_url"}]}`,
	}
	for _, body := range cases {
		var m ChatMessage
		if err := json.Unmarshal([]byte(body), &m); err == nil {
			t.Fatalf("expected decode failure for %s", body)
		}
	}
}

func TestChatMessage_NullContentIsEmpty(t *testing.T) {
	var m ChatMessage
	if err := json.Unmarshal([]byte(`{"role":"assistant","content":null}`), &m); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Content != "" {
		t.Fatalf("got %q", m.Content)
	}
}
