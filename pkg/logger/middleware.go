package logger

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Middleware returns a Gin middleware function that logs requests
func Middleware(logger *Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Generate a request ID if one doesn't exist
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
			c.Header("X-Request-ID", requestID)
		}

		reqLogger := logger.WithRequestID(requestID)

		// Chats are scoped by a client-supplied session id rather than an account
		if sessionID := c.Query("sessionId"); sessionID != "" {
			reqLogger = reqLogger.WithSessionID(sessionID)
		}

		if userID, exists := c.Get("userId"); exists {
			reqLogger = reqLogger.WithUserID(fmt.Sprintf("%v", userID))
		}

		// Store the logger in the context
		c.Set("logger", reqLogger)

		start := time.Now()
		c.Next()

		latency := time.Since(start)
		reqLogger.LogRequest(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), latency)

		if len(c.Errors) > 0 {
			for _, err := range c.Errors {
				reqLogger.LogError(err.Err, "request error",
					"method", c.Request.Method,
					"path", c.Request.URL.Path,
					"error_type", err.Type,
				)
			}
		}
	}
}

// FromContext returns the request-scoped logger, falling back to the global one
func FromContext(c *gin.Context) *Logger {
	if l, exists := c.Get("logger"); exists {
		if reqLogger, ok := l.(*Logger); ok {
			return reqLogger
		}
	}
	return GetGlobal()
}
