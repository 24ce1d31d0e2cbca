// Package telemetry is the structured event seam between the request pipeline
// and whatever stores or displays activity. The server core only emits events;
// sinks decide what to do with them.
package telemetry

import (
	"log"
	"time"

	"github.com/edgefn/modelgate/internal/logx"
)

// Event names emitted by the request pipeline.
const (
	EventRequestReceived    = "request_received"
	EventVisionProcessed    = "vision_processed"
	EventStreamStarted      = "stream_started"
	EventStreamFinished     = "stream_finished"
	EventGenerationFinished = "generation_finished"
	EventErrorRaised        = "error_raised"
)

// Event is one structured telemetry record.
type Event struct {
	Name   string
	At     time.Time
	Fields map[string]any
}

// Sink consumes telemetry events. Implementations must be safe for
// concurrent use; Emit must not block the request path for long.
type Sink interface {
	Emit(ev Event)
}

// LogSink writes events as single log lines.
type LogSink struct {
	L *log.Logger
}

func (s *LogSink) Emit(ev Event) {
	l := s.L
	if l == nil {
		l = log.Default()
	}
	extra := logx.FormatFields(ev.Fields)
	if extra == "" {
		l.Printf("event=%s", ev.Name)
		return
	}
	l.Printf("event=%s %s", ev.Name, extra)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// Emit is a nil-safe helper for optional sinks.
func Emit(s Sink, name string, fields map[string]any) {
	if s == nil {
		return
	}
	s.Emit(Event{Name: name, At: time.Now(), Fields: fields})
}
