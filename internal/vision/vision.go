// Package vision abstracts the external image analysis engine (OCR + object
// classification) behind a narrow interface, plus the wire DTOs of the
// /v1/vision endpoints.
package vision

import (
	"context"
	"errors"
)

// ErrBadImage marks bytes that no registered image container can decode.
// The server maps it to invalid_request_error, never to a 500.
var ErrBadImage = errors.New("unrecognized or malformed image payload")

// BoundingBox locates a detection in normalized [0,1] image coordinates.
type BoundingBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Object is one classified detection.
type Object struct {
	Label       string      `json:"label"`
	Confidence  float64     `json:"confidence"`
	Description string      `json:"description,omitempty"`
	BoundingBox BoundingBox `json:"-"`
}

// Analysis is the full result of analyzing one image.
type Analysis struct {
	// Text is the OCR-extracted text content, empty when none was found.
	Text string
	// Objects are classified detections, ordered by confidence.
	Objects []Object
	// Confidence is the overall analysis confidence in [0,1].
	Confidence float64
	// Language is the detected language of the extracted text, when any.
	Language string
	// Description is a one-line account of the image.
	Description string
}

// Analyzer is the capability surface over the vision engine.
type Analyzer interface {
	Analyze(ctx context.Context, image []byte) (Analysis, error)
}

// OCRResponse is the /v1/vision/ocr body.
type OCRResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// DetectObject is one /v1/vision/detect entry.
type DetectObject struct {
	Label       string  `json:"label"`
	Confidence  float64 `json:"confidence"`
	Description string  `json:"description"`
}

// DetectResponse is the /v1/vision/detect body.
type DetectResponse struct {
	Objects []DetectObject `json:"objects"`
}

// ObjectDetection is one /v1/vision/analyze detection.
type ObjectDetection struct {
	Label       string      `json:"label"`
	BoundingBox BoundingBox `json:"bounding_box"`
	Description string      `json:"description"`
}

// AnalyzeBody is the analysis block of /v1/vision/analyze.
type AnalyzeBody struct {
	TextContent      string            `json:"text_content"`
	ObjectDetections []ObjectDetection `json:"object_detections"`
	ImageDescription string            `json:"image_description"`
	Language         string            `json:"language"`
}

// AnalyzeResponse is the /v1/vision/analyze body.
type AnalyzeResponse struct {
	ID             string      `json:"id"`
	Object         string      `json:"object"`
	Created        int64       `json:"created"`
	Model          string      `json:"model"`
	Analysis       AnalyzeBody `json:"analysis"`
	ProcessingTime float64     `json:"processing_time"`
}
