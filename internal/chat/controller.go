package chat

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/internal/telemetry"
	"github.com/edgefn/modelgate/internal/usage"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

// Controller drives one generation per request against the engine. It owns
// the availability pre-check, the session lifecycle (implicit in the engine
// call), and response envelope assembly.
type Controller struct {
	Engine engine.Engine
	Sink   telemetry.Sink
}

// StreamMeta identifies a streamed completion; the SSE encoder stamps it on
// every chunk.
type StreamMeta struct {
	ID      string
	Created int64
	Model   string
}

func (c *Controller) precheck(ctx context.Context) error {
	av := c.Engine.Availability(ctx)
	if !av.Available {
		return &engine.UnavailableError{Reason: av.Reason}
	}
	return nil
}

// Complete runs a single-shot generation and wraps the result in a
// chat.completion envelope with finish_reason "stop" and an estimated usage
// block.
func (c *Controller) Complete(
	ctx context.Context,
	model string,
	transcript []engine.Entry,
	prompt string,
	opts engine.Options,
) (*apitypes.ChatCompletionsResponse, error) {
	if err := c.precheck(ctx); err != nil {
		return nil, err
	}
	text, err := c.Engine.Generate(ctx, transcript, prompt, opts)
	if err != nil {
		return nil, err
	}

	promptTokens := usage.EstimateTokens(prompt)
	for _, e := range transcript {
		for _, s := range e.Segments {
			promptTokens += usage.EstimateTokens(s)
		}
	}
	completionTokens := usage.EstimateTokens(text)

	resp := &apitypes.ChatCompletionsResponse{
		ID:      "chatcmpl-" + uuid.NewString(),
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Choices: []apitypes.Choice{
			{
				Index:        0,
				Message:      apitypes.AssistantMessage{Role: "assistant", Content: text},
				FinishReason: "stop",
			},
		},
		Usage: &apitypes.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
	telemetry.Emit(c.Sink, telemetry.EventGenerationFinished, map[string]any{
		"id":                resp.ID,
		"completion_tokens": completionTokens,
	})
	return resp, nil
}

// OpenStream verifies availability, starts a streamed generation, and
// returns the snapshot channel plus the identifiers for chunk framing.
// Callers must consume the channel until closed or cancel ctx.
func (c *Controller) OpenStream(
	ctx context.Context,
	model string,
	transcript []engine.Entry,
	prompt string,
	opts engine.Options,
) (StreamMeta, <-chan engine.Snapshot, error) {
	if err := c.precheck(ctx); err != nil {
		return StreamMeta{}, nil, err
	}
	snapshots, err := c.Engine.StreamGenerate(ctx, transcript, prompt, opts)
	if err != nil {
		return StreamMeta{}, nil, err
	}
	meta := StreamMeta{
		ID:      "chatcmpl-" + uuid.NewString(),
		Created: time.Now().Unix(),
		Model:   model,
	}
	telemetry.Emit(c.Sink, telemetry.EventStreamStarted, map[string]any{"id": meta.ID})
	return meta, snapshots, nil
}
