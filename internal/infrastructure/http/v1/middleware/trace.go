package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "distrisur/internal/core/context"
)

const (
	HeaderRequestID = "X-Request-ID"
	HeaderTraceID   = "X-Trace-ID"
	HeaderUserID    = "X-User-ID"
)

// Trace middleware adds request correlation context.
// Extracts or generates trace IDs, and captures the acting operator from
// the X-User-ID header for ledger audit stamping.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		traceID := c.GetHeader(HeaderTraceID)
		if traceID == "" {
			traceID = uuid.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), &appctx.TraceContext{
			TraceID:   traceID,
			RequestID: requestID,
		})

		if userID := c.GetHeader(HeaderUserID); userID != "" {
			ctx = appctx.WithUser(ctx, &appctx.UserContext{UserID: userID})
		}

		c.Request = c.Request.WithContext(ctx)

		c.Set("trace_id", traceID)
		c.Set("request_id", requestID)

		c.Header(HeaderRequestID, requestID)
		c.Header(HeaderTraceID, traceID)

		c.Next()
	}
}
