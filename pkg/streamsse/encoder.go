// Package streamsse turns a sequence of cumulative generation snapshots into
// minimal incremental OpenAI chat.completion.chunk frames over Server-Sent
// Events.
//
// Frame contract: the first chunk announces the assistant role (content only
// when non-empty); intermediate chunks carry exactly the new text suffix and
// are suppressed entirely when the suffix is empty; the terminal chunk has an
// empty delta and finish_reason "stop". Every stream — success or failure —
// ends with a literal "data: [DONE]" frame so clients have one unambiguous
// completion signal.
package streamsse

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/edgefn/modelgate/pkg/apitypes"
)

const doneFrame = "data: [DONE]\n\n"

type encState int

const (
	stateStart encState = iota
	stateStreaming
	stateDone
)

// Encoder writes SSE chunk frames for one streamed completion. Not safe for
// concurrent use; one request owns one Encoder.
type Encoder struct {
	w       io.Writer
	flusher http.Flusher

	id      string
	created int64
	model   string

	state   encState
	prevLen int
}

// NewEncoder builds an Encoder for one response stream. When w implements
// http.Flusher each frame is flushed as it is written.
func NewEncoder(w io.Writer, id string, created int64, model string) *Encoder {
	e := &Encoder{w: w, id: id, created: created, model: model}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

// WriteSnapshot emits the incremental frame for cumulative snapshot s. The
// delta is the suffix of s beyond the previously seen length; an empty delta
// is suppressed unless this is the very first snapshot, which always emits a
// role announcement.
func (e *Encoder) WriteSnapshot(s string) error {
	if e.state == stateDone {
		return fmt.Errorf("write snapshot on finished stream")
	}

	var delta string
	if len(s) > e.prevLen {
		delta = s[e.prevLen:]
		e.prevLen = len(s)
	}

	first := e.state == stateStart
	if !first && delta == "" {
		return nil
	}

	d := apitypes.StreamDelta{Content: delta}
	if first {
		d.Role = "assistant"
		e.state = stateStreaming
	}
	return e.writeChunk(d, "")
}

// Finish emits the terminal stop chunk followed by the [DONE] sentinel.
func (e *Encoder) Finish() error {
	if e.state == stateDone {
		return nil
	}
	// a stream that never produced a snapshot still announces the role once
	d := apitypes.StreamDelta{}
	if e.state == stateStart {
		d.Role = "assistant"
	}
	if err := e.writeChunk(d, "stop"); err != nil {
		return err
	}
	return e.writeDone()
}

// Fail emits one in-stream error event followed by the [DONE] sentinel. Used
// for failures after SSE headers are already on the wire.
func (e *Encoder) Fail(env apitypes.ErrorEnvelope) error {
	if e.state == stateDone {
		return nil
	}
	b, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", b); err != nil {
		return err
	}
	e.flush()
	return e.writeDone()
}

func (e *Encoder) writeChunk(delta apitypes.StreamDelta, finishReason string) error {
	chunk := apitypes.StreamChunk{
		ID:      e.id,
		Object:  "chat.completion.chunk",
		Created: e.created,
		Model:   e.model,
		Choices: []apitypes.StreamChoice{
			{Index: 0, Delta: delta, FinishReason: finishReason},
		},
	}
	b, err := json.Marshal(chunk)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(e.w, "data: %s\n\n", b); err != nil {
		return err
	}
	e.flush()
	return nil
}

func (e *Encoder) writeDone() error {
	e.state = stateDone
	if _, err := io.WriteString(e.w, doneFrame); err != nil {
		return err
	}
	e.flush()
	return nil
}

func (e *Encoder) flush() {
	if e.flusher != nil {
		e.flusher.Flush()
	}
}
