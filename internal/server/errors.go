package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/edgefn/modelgate/internal/chat"
	"github.com/edgefn/modelgate/internal/engine"
	"github.com/edgefn/modelgate/internal/lang"
	"github.com/edgefn/modelgate/internal/requestid"
	"github.com/edgefn/modelgate/internal/vision"
	"github.com/edgefn/modelgate/pkg/apitypes"
)

// apiError is the single internal error currency of the HTTP boundary. Every
// failure is classified into one before it reaches a client, as a JSON body
// or an in-stream SSE error event.
type apiError struct {
	status  int
	typ     string
	code    string
	message string
}

func (e *apiError) Error() string { return e.message }

func errInvalidRequest(code, msg string) *apiError {
	return &apiError{status: http.StatusBadRequest, typ: "invalid_request_error", code: code, message: msg}
}

func errUnsupportedMedia(msg string) *apiError {
	return &apiError{status: http.StatusUnsupportedMediaType, typ: "invalid_request_error", code: "unsupported_media_type", message: msg}
}

func errUnavailable(reason string) *apiError {
	msg := "the model is not available"
	if strings.TrimSpace(reason) != "" {
		msg += ": " + reason
	}
	return &apiError{status: http.StatusServiceUnavailable, typ: "service_unavailable", code: "unavailable_error", message: msg}
}

func errInternal(msg string) *apiError {
	if strings.TrimSpace(msg) == "" {
		msg = "internal server error"
	}
	return &apiError{status: http.StatusInternalServerError, typ: "server_error", code: "internal_error", message: msg}
}

// classify maps any pipeline error onto the taxonomy. Decode, language and
// image failures stay 400s; engine unavailability is a 503; everything else
// is a 500.
func (s *Server) classify(err error) *apiError {
	var ae *apiError
	if errors.As(err, &ae) {
		return ae
	}
	var ue *lang.UnsupportedError
	if errors.As(err, &ue) {
		return errInvalidRequest("unsupported_language", ue.Error())
	}
	if errors.Is(err, chat.ErrBadImagePayload) || errors.Is(err, vision.ErrBadImage) {
		return errInvalidRequest("invalid_image", err.Error())
	}
	var ee *engine.UnavailableError
	if errors.As(err, &ee) {
		return errUnavailable(ee.Reason)
	}
	if errors.Is(err, engine.ErrUnsupportedLanguage) {
		// the engine rejected the language mid-generation; present the same
		// contract as the pre-generation gate
		g := s.st.Gate()
		return errInvalidRequest("unsupported_language", (&lang.UnsupportedError{
			Code:      "unknown",
			Supported: strings.Join(g.Codes(), ", "),
		}).Error())
	}
	return errInternal(err.Error())
}

func envelope(e *apiError) apitypes.ErrorEnvelope {
	return apitypes.ErrorEnvelope{Error: apitypes.ErrorDetail{
		Message: e.message,
		Type:    e.typ,
		Code:    e.code,
	}}
}

// writeAPIError renders e as a JSON error body, tagging the message with the
// request id when one is set.
func writeAPIError(c *gin.Context, e *apiError) {
	env := envelope(e)
	if rid := strings.TrimSpace(c.GetString(requestid.HeaderKey)); rid != "" {
		env.Error.Message = env.Error.Message + " (request id: " + rid + ")"
	}
	c.AbortWithStatusJSON(e.status, env)
}
