package requestid

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddlewareGeneratesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())

	var fromGin, fromCtx string
	r.GET("/", func(c *gin.Context) {
		fromGin = Value(c)
		fromCtx = FromContext(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	_, err := uuid.Parse(fromGin)
	require.NoError(t, err)
	assert.Equal(t, fromGin, fromCtx)
	assert.Equal(t, fromGin, w.Header().Get(Header))
}

func TestMiddlewareKeepsIncomingID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(Header, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(Header))
}

func TestPropagate(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	Propagate(context.Background(), req)
	assert.Empty(t, req.Header.Get(Header))

	Propagate(WithValue(context.Background(), "xyz"), req)
	assert.Equal(t, "xyz", req.Header.Get(Header))
}
