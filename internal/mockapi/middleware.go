package mockapi

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"eventdesk/internal/models"
)

const userKey = "user"

// CORS middleware, permissive as befits a dev server.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// RequestLogger logs every request through slog once it completes.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		fields := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status_code", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
		}
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			fields = append(fields, "request_id", reqID)
		}

		if c.Writer.Status() >= 400 {
			slog.Error("Request completed with error", fields...)
		} else {
			slog.Debug("Request completed", fields...)
		}
	}
}

// BearerAuth resolves the token to a user and stores it on the context.
// Handlers wired after it can assume an authenticated caller.
func BearerAuth(store *Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		user, ok := store.UserByToken(token)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		c.Set(userKey, user)
		c.Next()
	}
}

// RequireRole denies callers whose role is not exactly the one given.
func RequireRole(role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := currentUser(c)
		if user.Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden for your role"})
			return
		}
		c.Next()
	}
}

func currentUser(c *gin.Context) models.User {
	v, _ := c.Get(userKey)
	user, _ := v.(models.User)
	return user
}
