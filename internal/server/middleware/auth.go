// Package middleware holds the gin middleware chain: bearer auth and audit.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/security"
)

const sessionKey = "session"

// Auth validates the bearer token and stores the session on the context.
// Requests without a valid token are rejected with 401 before any handler runs.
func Auth(tokens *security.TokenProvider) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		sess, err := tokens.ValidateAccess(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

// SessionFrom returns the session stored by Auth.
func SessionFrom(c *gin.Context) (security.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return security.Session{}, false
	}
	sess, ok := v.(security.Session)
	return sess, ok
}
