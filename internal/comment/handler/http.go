// Package handler exposes task comment threads over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/comment/domain"
	"project-management/backend/internal/comment/service"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
	userdomain "project-management/backend/internal/user/domain"
)

// CommentResponse is the wire shape of a comment.
type CommentResponse struct {
	ID        string         `json:"id"`
	TaskID    string         `json:"task_id"`
	Author    userdomain.Ref `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// NewCommentResponse maps a domain comment to its wire shape.
func NewCommentResponse(cm *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		TaskID:    cm.TaskID,
		Author:    cm.Author,
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	}
}

// Handler serves the comment endpoints.
type Handler struct {
	comments *service.CommentService
}

// New returns a Handler backed by comments.
func New(comments *service.CommentService) *Handler {
	return &Handler{comments: comments}
}

// ListByTask handles GET /api/tasks/:id/comments.
func (h *Handler) ListByTask(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	cs, err := h.comments.ListByTask(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]CommentResponse, 0, len(cs))
	for _, cm := range cs {
		out = append(out, NewCommentResponse(cm))
	}
	c.JSON(http.StatusOK, out)
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// Create handles POST /api/tasks/:id/comments.
func (h *Handler) Create(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	cm, err := h.comments.Create(c.Request.Context(), sess, c.Param("id"), req.Content)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewCommentResponse(cm))
}

// Delete handles DELETE /api/comments/:id.
func (h *Handler) Delete(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.comments.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
