package server

import (
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/edgefn/modelgate/internal/vision"
)

const visionModelID = "local-vision"

// handleVision serves POST /v1/vision/{ocr|detect|analyze}. The body is raw
// image bytes and the content type must be application/octet-stream.
func (s *Server) handleVision(c *gin.Context) {
	op := strings.TrimSpace(c.Param("op"))
	switch op {
	case "ocr", "detect", "analyze":
	default:
		c.Status(http.StatusNotFound)
		return
	}

	if ct := c.ContentType(); ct != "application/octet-stream" {
		writeAPIError(c, errUnsupportedMedia(
			"vision endpoints require Content-Type: application/octet-stream, got "+strings.TrimSpace(ct)))
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		writeAPIError(c, errInvalidRequest("invalid_body", "failed to read image bytes: "+err.Error()))
		return
	}

	start := time.Now()
	a, err := s.vis.Analyze(c.Request.Context(), body)
	if err != nil {
		s.failRequest(c, err)
		return
	}

	switch op {
	case "ocr":
		c.JSON(http.StatusOK, vision.OCRResponse{
			Text:       a.Text,
			Confidence: a.Confidence,
			Language:   a.Language,
		})
	case "detect":
		objects := make([]vision.DetectObject, 0, len(a.Objects))
		for _, o := range a.Objects {
			objects = append(objects, vision.DetectObject{
				Label:       o.Label,
				Confidence:  o.Confidence,
				Description: o.Description,
			})
		}
		c.JSON(http.StatusOK, vision.DetectResponse{Objects: objects})
	case "analyze":
		detections := make([]vision.ObjectDetection, 0, len(a.Objects))
		for _, o := range a.Objects {
			detections = append(detections, vision.ObjectDetection{
				Label:       o.Label,
				BoundingBox: o.BoundingBox,
				Description: o.Description,
			})
		}
		c.JSON(http.StatusOK, vision.AnalyzeResponse{
			ID:      "vision-" + uuid.NewString(),
			Object:  "vision.analysis",
			Created: time.Now().Unix(),
			Model:   visionModelID,
			Analysis: vision.AnalyzeBody{
				TextContent:      a.Text,
				ObjectDetections: detections,
				ImageDescription: a.Description,
				Language:         a.Language,
			},
			ProcessingTime: time.Since(start).Seconds(),
		})
	}
}
