package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	// Header names
	RequestIDHeader = "X-Request-ID"
	TraceIDHeader   = "X-Trace-ID"
)

// TraceContext holds tracing information
type TraceContext struct {
	RequestID string
	TraceID   string
	StartTime time.Time
}

// TracingMiddleware tags every request with correlation IDs
type TracingMiddleware struct{}

// NewTracingMiddleware creates a new tracing middleware
func NewTracingMiddleware() *TracingMiddleware {
	return &TracingMiddleware{}
}

// TraceRequest adds tracing information to requests. IDs arriving from the
// caller are kept so a request can be followed across services.
func (m *TracingMiddleware) TraceRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get or generate request ID
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = generateID()
		}

		// Get or generate trace ID
		traceID := c.GetHeader(TraceIDHeader)
		if traceID == "" {
			traceID = generateID()
		}

		// Store trace context in gin context
		c.Set("trace_context", &TraceContext{
			RequestID: requestID,
			TraceID:   traceID,
			StartTime: time.Now(),
		})

		// Add trace headers to response
		c.Header(RequestIDHeader, requestID)
		c.Header(TraceIDHeader, traceID)

		c.Next()
	}
}

// GetTraceContext retrieves the trace context from the gin context
func GetTraceContext(c *gin.Context) *TraceContext {
	if traceCtx, exists := c.Get("trace_context"); exists {
		return traceCtx.(*TraceContext)
	}
	return nil
}

// generateID generates a random ID
func generateID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
