// Package middleware provides HTTP middleware components.
package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	appctx "botica/internal/core/context"
)

// Trace middleware attaches trace/request ids to the request context and
// echoes the request id back to the client.
func Trace() gin.HandlerFunc {
	return func(c *gin.Context) {
		trace := &appctx.TraceContext{
			TraceID:   c.GetHeader("X-Trace-Id"),
			RequestID: uuid.New().String(),
		}
		if trace.TraceID == "" {
			trace.TraceID = uuid.New().String()
		}

		ctx := appctx.WithTrace(c.Request.Context(), trace)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", trace.RequestID)
		c.Header("X-Request-Id", trace.RequestID)

		c.Next()
	}
}

// Actor middleware extracts the acting user from the X-Actor-Id header.
// Authentication itself is handled upstream; this service only needs the
// identifier for the movement audit trail.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actorID := c.GetHeader("X-Actor-Id")
		if actorID != "" {
			ctx := appctx.WithActor(c.Request.Context(), &appctx.ActorContext{
				ActorID:  actorID,
				Register: c.GetHeader("X-Register-Id"),
			})
			c.Request = c.Request.WithContext(ctx)
		}

		c.Next()
	}
}
