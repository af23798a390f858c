// Package handler exposes the audit trail over HTTP, admin only.
package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/audit/domain"
	auditrepo "project-management/backend/internal/audit/repository"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
	userdomain "project-management/backend/internal/user/domain"
)

// UserReader is the minimal user lookup needed to verify the caller's role.
type UserReader interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// EntryResponse is the wire shape of an audit entry.
type EntryResponse struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	Resource  string    `json:"resource"`
	IP        string    `json:"ip"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

// Handler serves the audit trail endpoint.
type Handler struct {
	repo       auditrepo.Repository
	userReader UserReader
}

// New returns a Handler backed by repo.
func New(repo auditrepo.Repository, userReader UserReader) *Handler {
	return &Handler{repo: repo, userReader: userReader}
}

// List handles GET /api/audit with an optional limit query parameter.
func (h *Handler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	caller, err := h.userReader.GetByID(c.Request.Context(), sess.UserID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	if caller == nil {
		respond.Error(c, apperror.Unauthenticated("account no longer exists"))
		return
	}
	if caller.Role != userdomain.RoleAdmin {
		respond.Error(c, apperror.Forbidden("admin role required"))
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil || limit < 0 {
			respond.Error(c, apperror.Validation("limit must be a non-negative integer"))
			return
		}
	}
	entries, err := h.repo.List(c.Request.Context(), limit)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, entryResponse(e))
	}
	c.JSON(http.StatusOK, out)
}

func entryResponse(e *domain.AuditLog) EntryResponse {
	return EntryResponse{
		ID:        e.ID,
		UserID:    e.UserID,
		Action:    e.Action,
		Resource:  e.Resource,
		IP:        e.IP,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}
