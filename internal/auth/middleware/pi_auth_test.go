package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/casaloop/casaloop-backend/internal/pi"
)

type fakeVerifier struct {
	user  *pi.User
	err   error
	calls int
}

func (v *fakeVerifier) Me(ctx context.Context, accessToken string) (*pi.User, error) {
	v.calls++
	if v.err != nil {
		return nil, v.err
	}
	return v.user, nil
}

func authTestRouter(verifier Verifier, rdb *redis.Client) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/whoami", PiAuthMiddleware(verifier, rdb), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"uid":      c.GetString("pi_uid"),
			"username": c.GetString("pi_username"),
		})
	})
	return r
}

func TestPiAuthMiddleware(t *testing.T) {
	t.Run("missing header", func(t *testing.T) {
		r := authTestRouter(&fakeVerifier{}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("invalid token", func(t *testing.T) {
		r := authTestRouter(&fakeVerifier{err: errors.New("nope")}, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer bad")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "invalid token")
	})

	t.Run("valid token resolves the identity", func(t *testing.T) {
		verifier := &fakeVerifier{user: &pi.User{UID: "pi_u1", Username: "alice"}}
		r := authTestRouter(verifier, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer tok123")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "pi_u1")
		assert.Contains(t, w.Body.String(), "alice")
	})

	t.Run("validated tokens are served from the cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		defer rdb.Close()

		verifier := &fakeVerifier{user: &pi.User{UID: "pi_u1", Username: "alice"}}
		r := authTestRouter(verifier, rdb)

		for i := 0; i < 3; i++ {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			req.Header.Set("Authorization", "Bearer tok123")
			r.ServeHTTP(w, req)
			require.Equal(t, http.StatusOK, w.Code)
		}

		assert.Equal(t, 1, verifier.calls)

		// Cache expiry forces a fresh platform lookup.
		mr.FastForward(tokenCacheTTL + 1)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
		req.Header.Set("Authorization", "Bearer tok123")
		r.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 2, verifier.calls)
	})
}
