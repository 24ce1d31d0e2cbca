package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/modelgate/internal/chat"
	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/internal/telemetry"
	"github.com/edgefn/modelgate/internal/version"
	"github.com/edgefn/modelgate/internal/vision"
	"github.com/edgefn/modelgate/pkg/apitypes"
	"github.com/edgefn/modelgate/pkg/streamsse"
)

// Server wires the request pipeline: normalizer -> language gate (+
// multimodal preprocessor) -> transcript builder -> generation controller ->
// JSON or SSE encoding. One logical worker per request; no mutable
// conversational state is shared between requests.
type Server struct {
	st   *state
	eng  engine.Engine
	ctl  *chat.Controller
	pre  *chat.Preprocessor
	vis  vision.Analyzer
	sink telemetry.Sink
}

// NewServer assembles a Server over its collaborators.
func NewServer(st *state, eng engine.Engine, vis vision.Analyzer, sink telemetry.Sink) *Server {
	return &Server{
		st:   st,
		eng:  eng,
		ctl:  &chat.Controller{Engine: eng, Sink: sink},
		pre:  &chat.Preprocessor{Vision: vis, Sink: sink},
		vis:  vis,
		sink: sink,
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Server) handleStatus(c *gin.Context) {
	av := s.eng.Availability(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"model_available":               av.Available,
		"reason":                        av.Reason,
		"supported_languages":           s.st.Gate().Codes(),
		"server_version":                version.Short(),
		"apple_intelligence_compatible": true,
	})
}

func (s *Server) handleModels(c *gin.Context) {
	list := apitypes.ModelList{Object: "list", Data: []apitypes.Model{}}
	if av := s.eng.Availability(c.Request.Context()); av.Available {
		list.Data = append(list.Data, apitypes.Model{
			ID:      s.st.ModelID(),
			Object:  "model",
			Created: s.st.StartedAtUnix(),
			OwnedBy: s.st.OwnedBy(),
		})
	}
	c.JSON(http.StatusOK, list)
}

// handleChatCompletions serves /v1/chat/completions and its /multimodal
// variant; the latter additionally honors the vision_analysis switch.
func (s *Server) handleChatCompletions(multimodal bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req apitypes.ChatCompletionsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeAPIError(c, errInvalidRequest("invalid_json", "invalid request body: "+err.Error()))
			return
		}
		if len(req.Messages) == 0 {
			writeAPIError(c, errInvalidRequest("missing_messages", "messages is required and must not be empty"))
			return
		}
		c.Set("mg.model", s.st.ModelID())
		c.Set("mg.stream", req.Stream)
		telemetry.Emit(s.sink, telemetry.EventRequestReceived, map[string]any{
			"messages": len(req.Messages),
			"stream":   req.Stream,
		})

		wantVision := s.st.VisionEnabled()
		if multimodal && req.VisionAnalysis != nil {
			wantVision = *req.VisionAnalysis
		}
		c.Set("mg.vision", wantVision && hasImageParts(req.Messages))

		msgs := req.Messages
		if wantVision && hasImageParts(msgs) {
			processed, err := s.pre.Process(c.Request.Context(), msgs)
			if err != nil {
				s.failRequest(c, err)
				return
			}
			msgs = processed
		}

		// reject unsupported languages before any session is opened
		gate := s.st.Gate()
		for _, m := range msgs {
			if strings.TrimSpace(m.Content) == "" {
				continue
			}
			if err := gate.Check(m.Content); err != nil {
				s.failRequest(c, err)
				return
			}
		}
		prompt := msgs[len(msgs)-1].Content
		transcript := chat.BuildTranscript(msgs)
		opts := engine.Options{Temperature: req.Temperature, MaxTokens: req.MaxTokens}

		if req.Stream {
			s.streamCompletion(c, transcript, prompt, opts)
			return
		}
		resp, err := s.ctl.Complete(c.Request.Context(), s.st.ModelID(), transcript, prompt, opts)
		if err != nil {
			s.failRequest(c, err)
			return
		}
		c.Set("mg.finish_reason", "stop")
		c.JSON(http.StatusOK, resp)
	}
}

// streamCompletion drives a streamed generation. All pre-stream failures
// surface as plain JSON errors; once SSE headers are on the wire the only
// failure channel is the in-stream error event, and the stream always ends
// with [DONE].
func (s *Server) streamCompletion(c *gin.Context, transcript []engine.Entry, prompt string, opts engine.Options) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	meta, snapshots, err := s.ctl.OpenStream(ctx, s.st.ModelID(), transcript, prompt, opts)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	enc := streamsse.NewEncoder(c.Writer, meta.ID, meta.Created, meta.Model)
	for snap := range snapshots {
		if snap.Err != nil {
			ae := s.classify(snap.Err)
			telemetry.Emit(s.sink, telemetry.EventErrorRaised, map[string]any{
				"id": meta.ID, "type": ae.typ, "code": ae.code, "in_stream": true,
			})
			_ = enc.Fail(envelope(ae))
			return
		}
		if werr := enc.WriteSnapshot(snap.Text); werr != nil {
			if isClientDisconnectErr(werr) {
				// abandon the in-flight generation promptly
				cancel()
				for range snapshots { //nolint:revive // drain until the engine stops
				}
				return
			}
			cancel()
			return
		}
	}
	_ = enc.Finish()
	c.Set("mg.finish_reason", "stop")
	telemetry.Emit(s.sink, telemetry.EventStreamFinished, map[string]any{"id": meta.ID})
}

func (s *Server) failRequest(c *gin.Context, err error) {
	ae := s.classify(err)
	telemetry.Emit(s.sink, telemetry.EventErrorRaised, map[string]any{
		"type": ae.typ, "code": ae.code, "status": ae.status,
	})
	writeAPIError(c, ae)
}

func hasImageParts(msgs []apitypes.ChatMessage) bool {
	for _, m := range msgs {
		if apitypes.HasImageParts(m.Parts) {
			return true
		}
	}
	return false
}
