package middleware

import (
	"github.com/gin-gonic/gin"

	"project-management/backend/internal/audit"
)

// Audit records one audit event per completed mutation. Reads and failed
// requests are skipped; logging is best-effort and never blocks the response.
func Audit(logger audit.AuditLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if logger == nil || c.Request.Method == "GET" {
			return
		}
		if c.Writer.Status() >= 400 {
			return
		}
		userID := "anonymous"
		if sess, ok := SessionFrom(c); ok {
			userID = sess.UserID
		}
		ar := audit.ParseRoute(c.Request.Method, c.FullPath())
		ctx := audit.WithClientIP(c.Request.Context(), c.ClientIP())
		logger.LogEvent(ctx, userID, ar.Action, ar.Resource, c.Request.URL.Path)
	}
}
