// Package handler implements the readiness probe for load balancers and CI.
package handler

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PolicyChecker verifies the in-process access policy engine.
type PolicyChecker interface {
	HealthCheck(ctx context.Context) error
}

// Handler serves GET /api/healthz.
type Handler struct {
	db     *sql.DB
	policy PolicyChecker
}

// New returns a Handler probing db and the policy engine.
func New(db *sql.DB, policy PolicyChecker) *Handler {
	return &Handler{db: db, policy: policy}
}

// Check reports ok when the database and the policy engine both respond.
func (h *Handler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": err.Error()})
			return
		}
	}
	if h.policy != nil {
		if err := h.policy.HealthCheck(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "policy": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
