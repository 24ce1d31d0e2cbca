package server

import (
	"log"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the gin engine with the full middleware chain and route
// table.
func NewRouter(s *Server, maxBody int64, accessLogger *log.Logger, accessColor bool) *gin.Engine {
	r := gin.New()
	r.Use(requestIDMiddleware())
	if accessLogger != nil {
		r.Use(requestLogger(accessLogger, accessColor))
	}
	r.Use(recoveryMiddleware())
	r.Use(corsMiddleware())
	r.Use(bodyLimit(maxBody))

	r.GET("/health", s.handleHealth)
	r.GET("/status", s.handleStatus)

	v1 := r.Group("/v1")
	v1.GET("/models", s.handleModels)
	v1.POST("/chat/completions", s.handleChatCompletions(false))
	v1.POST("/chat/completions/multimodal", s.handleChatCompletions(true))
	v1.POST("/vision/:op", s.handleVision)

	return r
}
