package middleware

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type requestIDKey struct{}

// RequestIDMiddleware tags every request with a stable id, echoes it in
// the X-Request-Id response header and writes the access log line. The
// id also rides the request context for code that logs outside gin.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := strings.TrimSpace(c.GetHeader("X-Request-Id"))
		if rid == "" {
			rid = uuid.NewString()
		}

		c.Set("request_id", rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), requestIDKey{}, rid))
		c.Writer.Header().Set("X-Request-Id", rid)

		start := time.Now()
		c.Next()

		format := "[http] id=%s method=%s path=%s status=%d latency=%s"
		args := []interface{}{rid, c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start)}
		if uid := c.GetString("pi_uid"); uid != "" {
			format += " user_id=%s"
			args = append(args, uid)
		}
		log.Printf(format, args...)
	}
}

// RequestID extracts the request id from a context.
func RequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey{}).(string)
	return rid
}
