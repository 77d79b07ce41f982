package requestid

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, Value(c)) })
	return r
}

func TestMiddlewarePropagatesHeader(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderKey, "abc-123")
	w := httptest.NewRecorder()
	newEngine().ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderKey))
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestMiddlewareReplacesMissingOrOversizedHeader(t *testing.T) {
	for _, incoming := range []string{"", strings.Repeat("x", 200)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if incoming != "" {
			req.Header.Set(HeaderKey, incoming)
		}
		w := httptest.NewRecorder()
		newEngine().ServeHTTP(w, req)

		got := w.Header().Get(HeaderKey)
		assert.Len(t, got, 36)
		assert.Equal(t, got, w.Body.String())
	}
}
