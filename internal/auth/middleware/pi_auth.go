package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/casaloop/casaloop-backend/internal/pi"
)

// tokenCacheTTL bounds how long a validated access token is trusted
// without re-asking the platform.
const tokenCacheTTL = 10 * time.Minute

// Verifier resolves a Pi access token to its owner.
type Verifier interface {
	Me(ctx context.Context, accessToken string) (*pi.User, error)
}

// PiAuthMiddleware validates Pi Network access tokens and stores the
// resolved identity under pi_uid / pi_username. Validated tokens are
// cached in Redis so hot clients do not hammer the platform API.
func PiAuthMiddleware(verifier Verifier, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization token"})
			c.Abort()
			return
		}

		ctx := c.Request.Context()
		cacheKey := "pitoken:" + token

		if rdb != nil {
			if cached, err := rdb.Get(ctx, cacheKey).Result(); err == nil {
				uid, username, ok := strings.Cut(cached, "|")
				if ok {
					c.Set("pi_uid", uid)
					c.Set("pi_username", username)
					c.Next()
					return
				}
			}
		}

		user, err := verifier.Me(ctx, token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		if rdb != nil {
			rdb.Set(ctx, cacheKey, user.UID+"|"+user.Username, tokenCacheTTL)
		}

		c.Set("pi_uid", user.UID)
		c.Set("pi_username", user.Username)
		c.Next()
	}
}

// extractToken extracts the Bearer token from the Authorization header.
func extractToken(c *gin.Context) string {
	bearerToken := c.GetHeader("Authorization")
	if strings.HasPrefix(bearerToken, "Bearer ") {
		return strings.TrimSpace(bearerToken[7:])
	}
	return ""
}
