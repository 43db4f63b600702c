package gin

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jonesrussell/north-cloud/example-api/infrastructure/logger"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
	// RequestIDKey is the gin context key holding the request ID.
	RequestIDKey = "request_id"

	loggerKey = "logger"

	maxRequestIDLength = 128
)

// RequestIDLoggerMiddleware assigns every request an ID (reusing a sane inbound
// X-Request-ID) and attaches a logger carrying that ID to the request context,
// so downstream code can call logger.FromContext(ctx).
func RequestIDLoggerMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" || len(requestID) > maxRequestIDLength {
			requestID = newRequestID()
		}

		reqLog := log.With(logger.String(RequestIDKey, requestID))

		c.Set(RequestIDKey, requestID)
		c.Set(loggerKey, reqLog)
		c.Writer.Header().Set(RequestIDHeader, requestID)
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), reqLog))

		c.Next()
	}
}

// RequestID returns the ID assigned by RequestIDLoggerMiddleware, or "".
func RequestID(c *gin.Context) string {
	return c.GetString(RequestIDKey)
}

// newRequestID returns 32 hex characters.
func newRequestID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
