package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requestIDRouter(captured *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/ping", func(c *gin.Context) {
		*captured = RequestID(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("honours an incoming id", func(t *testing.T) {
		var seen string
		r := requestIDRouter(&seen)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "rid-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "rid-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "rid-123", seen)
	})

	t.Run("generates an id when absent", func(t *testing.T) {
		var seen string
		r := requestIDRouter(&seen)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		rid := w.Header().Get("X-Request-Id")
		require.NotEmpty(t, rid)
		assert.Equal(t, rid, seen)
	})
}
