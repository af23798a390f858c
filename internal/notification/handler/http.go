// Package handler exposes the per-user notification feed over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/notification/domain"
	"project-management/backend/internal/notification/service"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
)

// NotificationResponse is the wire shape of a notification.
type NotificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	SubjectID string    `json:"subject_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// NewNotificationResponse maps a domain notification to its wire shape.
func NewNotificationResponse(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      string(n.Type),
		SubjectID: n.SubjectID,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

// Handler serves the notification endpoints.
type Handler struct {
	notifications *service.NotificationService
}

// New returns a Handler backed by notifications.
func New(notifications *service.NotificationService) *Handler {
	return &Handler{notifications: notifications}
}

// List handles GET /api/notifications.
func (h *Handler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	ns, err := h.notifications.List(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]NotificationResponse, 0, len(ns))
	for _, n := range ns {
		out = append(out, NewNotificationResponse(n))
	}
	c.JSON(http.StatusOK, out)
}

// UnreadCount handles GET /api/notifications/unread-count.
func (h *Handler) UnreadCount(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	count, err := h.notifications.UnreadCount(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": count})
}

// MarkRead handles PATCH /api/notifications/:id/read.
func (h *Handler) MarkRead(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	n, err := h.notifications.MarkRead(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewNotificationResponse(n))
}
