package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	allowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	allowHeaders = "Content-Type, X-Requested-With, X-Request-ID"
	// Export downloads read the file name from Content-Disposition.
	exposeHeaders = "Content-Disposition, X-Request-ID"
)

// Options configures the CORS middleware.
type Options struct {
	// AllowedOrigins lists origins allowed to call the API. Empty allows any origin.
	AllowedOrigins []string
	MaxAge         string
}

// New returns a CORS middleware for the browser front end.
func New(opts Options) gin.HandlerFunc {
	allowAll := len(opts.AllowedOrigins) == 0
	origins := make(map[string]struct{}, len(opts.AllowedOrigins))
	for _, origin := range opts.AllowedOrigins {
		origins[strings.TrimRight(origin, "/")] = struct{}{}
	}
	maxAge := opts.MaxAge
	if maxAge == "" {
		maxAge = "600"
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		switch {
		case origin == "" && allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && allowed(origins, allowAll, origin):
			h.Set("Access-Control-Allow-Origin", origin)
		case origin != "":
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Max-Age", maxAge)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func allowed(origins map[string]struct{}, allowAll bool, origin string) bool {
	if allowAll {
		return true
	}
	_, ok := origins[origin]
	return ok
}
