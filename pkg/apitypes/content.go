package apitypes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Content part discriminators.
const (
	PartTypeText      = "text"
	PartTypeImageURL  = "image_url"
	PartTypeImageData = "image_data"
)

// ImageURL is the image_url variant payload.
type ImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

// ImageData is the image_data variant payload: base64-encoded bytes plus the
// container format the client claims ("png", "jpeg", ...).
type ImageData struct {
	Data   string `json:"data"`
	Format string `json:"format,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// ContentPart is one typed unit of message content. Exactly one variant is
// populated, selected by Type.
type ContentPart struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	ImageURL  *ImageURL  `json:"image_url,omitempty"`
	ImageData *ImageData `json:"image_data,omitempty"`
}

func (p *ContentPart) UnmarshalJSON(b []byte) error {
	type raw ContentPart
	var r raw
	if err := json.Unmarshal(b, &r); err != nil {
		return err
	}
	switch r.Type {
	case PartTypeText:
	case PartTypeImageURL:
		if r.ImageURL == nil {
			return fmt.Errorf("content part type %q requires an image_url object", r.Type)
		}
	case PartTypeImageData:
		if r.ImageData == nil {
			return fmt.Errorf("content part type %q requires an image_data object", r.Type)
		}
	default:
		return fmt.Errorf("unsupported content part type %q", r.Type)
	}
	*p = ContentPart(r)
	return nil
}

// ChatMessage is the canonical inbound message. Content always holds the
// flattened text: the raw string when the wire content was a string, or the
// space-joined text parts when it was a part array (Parts is then non-nil and
// preserves every part in order). Constructed once per decoded request and
// not mutated afterward.
type ChatMessage struct {
	Role    string
	Content string
	Name    string
	Parts   []ContentPart
}

func (m *ChatMessage) UnmarshalJSON(b []byte) error {
	var raw struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
		Name    string          `json:"name"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	m.Role = raw.Role
	m.Name = raw.Name
	m.Parts = nil

	content := bytes.TrimSpace(raw.Content)
	if len(content) == 0 || bytes.Equal(content, []byte("null")) {
		m.Content = ""
		return nil
	}
	// content is either a plain string or an array of typed parts; the two
	// legal shapes are told apart by the leading token, anything else is a
	// decode failure.
	switch content[0] {
	case '"':
		return json.Unmarshal(content, &m.Content)
	case '[':
		var parts []ContentPart
		if err := json.Unmarshal(content, &parts); err != nil {
			return err
		}
		m.Parts = parts
		m.Content = FlattenText(parts)
		return nil
	default:
		return fmt.Errorf("message content must be a string or an array of content parts")
	}
}

// MarshalJSON renders the canonical message back to the wire with its
// flattened string content.
func (m ChatMessage) MarshalJSON() ([]byte, error) {
	out := struct {
		Role    string `json:"role"`
		Content string `json:"content"`
		Name    string `json:"name,omitempty"`
	}{Role: m.Role, Content: m.Content, Name: m.Name}
	return json.Marshal(out)
}

// FlattenText joins the text parts with a single space.
func FlattenText(parts []ContentPart) string {
	texts := make([]string, 0, len(parts))
	for _, p := range parts {
		if p.Type == PartTypeText {
			texts = append(texts, p.Text)
		}
	}
	return strings.Join(texts, " ")
}

// HasImageParts reports whether any part is an image variant.
func HasImageParts(parts []ContentPart) bool {
	for _, p := range parts {
		if p.Type == PartTypeImageURL || p.Type == PartTypeImageData {
			return true
		}
	}
	return false
}
