package requestid

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Header carries the request ID in and out of the service, and onward to the gateway.
const Header = "X-Request-ID"

const ginKey = "request_id"

type ctxKey struct{}

// Middleware tags every request with an ID, reusing the caller's when present. The ID
// is stored on both the gin context and the request context so outbound calls can
// propagate it.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID := c.GetHeader(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(ginKey, reqID)
		c.Request = c.Request.WithContext(WithValue(c.Request.Context(), reqID))
		c.Writer.Header().Set(Header, reqID)

		c.Next()
	}
}

// Value returns the request ID stored in the Gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(ginKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// WithValue returns a copy of ctx carrying id.
func WithValue(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID carried by ctx, if any.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Propagate copies the request ID carried by ctx onto an outbound request.
func Propagate(ctx context.Context, req *http.Request) {
	if id := FromContext(ctx); id != "" {
		req.Header.Set(Header, id)
	}
}
