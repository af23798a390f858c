// Package respond writes HTTP responses in the shape every handler shares.
package respond

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
)

// Error writes err as a JSON error response using the error taxonomy's status
// code. Internal errors are logged and masked with a generic message.
func Error(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
