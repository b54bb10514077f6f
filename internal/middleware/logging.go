// SPDX-License-Identifier: MIT
package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the id of a request in both directions
const RequestIDHeader = "X-Request-ID"

// RequestLogger tags every request with an id, attaches a request scoped
// logger to its context and logs the outcome
func RequestLogger(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		reqLogger := logger.With().Str("request_id", requestID).Logger()
		c.Request = c.Request.WithContext(reqLogger.WithContext(c.Request.Context()))

		c.Next()

		ev := reqLogger.Info()
		if status := c.Writer.Status(); status >= http.StatusInternalServerError {
			ev = reqLogger.Error()
		} else if status >= http.StatusBadRequest {
			ev = reqLogger.Warn()
		}
		ev.Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request completed")
	}
}

// Recovery turns panics into 500 responses and logs the stack
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				zerolog.Ctx(c.Request.Context()).Error().
					Interface("error", err).
					Str("stack", string(debug.Stack())).
					Msg("Panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
		}()
		c.Next()
	}
}
