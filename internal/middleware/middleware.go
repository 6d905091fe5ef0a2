package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"boxoffice/internal/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionCookie carries the browser session id that scopes seat-map state
// and the checkout handoff
const SessionCookie = "bo_session"

const sessionMaxAge = 12 * 60 * 60

type ctxKey string

const sessionIDKey ctxKey = "session_id"

func ContextWithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionIDFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(sessionIDKey)
	if v == nil {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}

// Session ensures every request carries a session id, issuing a new cookie
// when absent or malformed
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookie)
		if err != nil || uuid.Validate(sessionID) != nil {
			sessionID = uuid.New().String()
			c.SetCookie(SessionCookie, sessionID, sessionMaxAge, "/", "", false, true)
		}

		c.Set("session_id", sessionID)
		c.Request = c.Request.WithContext(ContextWithSessionID(c.Request.Context(), sessionID))
		c.Next()
	}
}

// CORS middleware for browser clients
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}

// Logger middleware for structured request logging
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		sessionID, exists := c.Get("session_id")

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.RequestDuration.WithLabelValues(c.Request.Method, route).Observe(latency.Seconds())

		logFields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", latency.Milliseconds(),
			"client_ip", c.ClientIP(),
		}

		if exists {
			logFields = append(logFields, "session_id", sessionID)
		}

		if c.Writer.Status() >= 400 {
			if len(c.Errors) > 0 {
				logFields = append(logFields, "error", c.Errors.String())
			}
			slog.Error("Request completed with error", logFields...)
		}
	}
}

// Recovery middleware with detailed panic logging
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		slog.Error("PANIC recovered",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"query", c.Request.URL.RawQuery,
			"client_ip", c.ClientIP(),
		)

		if !c.Writer.Written() {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Internal server error",
			})
		}
	})
}
