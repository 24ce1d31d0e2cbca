// Package apitypes holds the OpenAI-compatible wire DTOs served and consumed
// by modelgate.
package apitypes

// ChatCompletionsRequest is the chat.completions request body.
//
// The local engine honors only temperature and max_tokens. The remaining
// sampling parameters (top_p, n, stop, presence/frequency penalty, logit_bias)
// are accepted for wire compatibility and ignored; this is a deliberate
// compatibility shim for clients that always send them.
type ChatCompletionsRequest struct {
	Model            string             `json:"model,omitempty"`
	Messages         []ChatMessage      `json:"messages"`
	MaxTokens        int                `json:"max_tokens,omitempty"`
	Temperature      *float64           `json:"temperature,omitempty"`
	TopP             *float64           `json:"top_p,omitempty"`
	N                int                `json:"n,omitempty"`
	Stream           bool               `json:"stream,omitempty"`
	Stop             any                `json:"stop,omitempty"`
	PresencePenalty  *float64           `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64           `json:"frequency_penalty,omitempty"`
	LogitBias        map[string]float64 `json:"logit_bias,omitempty"`
	User             string             `json:"user,omitempty"`

	// VisionAnalysis forces or suppresses the vision preprocessor on the
	// multimodal endpoint. Nil means enabled.
	VisionAnalysis *bool `json:"vision_analysis,omitempty"`
}

// AssistantMessage is the message object inside a non-streaming choice.
type AssistantMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Choice is one chat.completion choice.
type Choice struct {
	Index        int              `json:"index"`
	Message      AssistantMessage `json:"message"`
	FinishReason string           `json:"finish_reason"`
}

// Usage is the token accounting block. Values are heuristic estimates; the
// local engine does not report exact counts.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatCompletionsResponse is the non-streaming chat.completions response.
type ChatCompletionsResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model,omitempty"`
	Choices []Choice `json:"choices"`
	Usage   *Usage   `json:"usage,omitempty"`
}

// StreamDelta carries the incremental payload of one stream chunk. Role is
// set only on the first chunk of a stream; Content is omitted entirely when
// there is no new text.
type StreamDelta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// StreamChoice is one chat.completion.chunk choice. FinishReason is set only
// on the terminal chunk.
type StreamChoice struct {
	Index        int         `json:"index"`
	Delta        StreamDelta `json:"delta"`
	FinishReason string      `json:"finish_reason,omitempty"`
}

// StreamChunk is one chat.completion.chunk frame.
type StreamChunk struct {
	ID      string         `json:"id"`
	Object  string         `json:"object"`
	Created int64          `json:"created"`
	Model   string         `json:"model,omitempty"`
	Choices []StreamChoice `json:"choices"`
}

// ErrorDetail is the inner error object of the OpenAI error envelope.
type ErrorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
}

// ErrorEnvelope is the error shape shared by JSON bodies and in-stream SSE
// error events.
type ErrorEnvelope struct {
	Error ErrorDetail `json:"error"`
}

// Model is one /v1/models entry.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// ModelList is the /v1/models response.
type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
