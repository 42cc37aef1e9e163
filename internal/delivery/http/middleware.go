package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/openbay/auction-service/internal/infrastructure/logger"
)

// RequestLoggerMiddleware logs incoming requests with timing.
func RequestLoggerMiddleware(c *gin.Context) {
	start := time.Now()

	c.Next()

	logger.Info("HTTP Request", map[string]any{
		"method":  c.Request.Method,
		"path":    c.Request.URL.Path,
		"status":  c.Writer.Status(),
		"latency": time.Since(start).String(),
	})
}
