// Package handler exposes account management and the approval pipeline over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	identityhandler "project-management/backend/internal/identity/handler"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
	"project-management/backend/internal/user/domain"
	"project-management/backend/internal/user/service"
)

// Handler serves the authenticated user endpoints.
type Handler struct {
	users *service.UserService
}

// New returns a Handler backed by users.
func New(users *service.UserService) *Handler {
	return &Handler{users: users}
}

// Me handles GET /api/users/me.
func (h *Handler) Me(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	user, err := h.users.Me(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, identityhandler.NewUserResponse(user))
}

type updateEmailRequest struct {
	Email string `json:"email"`
}

// UpdateEmail handles PATCH /api/users/me/email.
func (h *Handler) UpdateEmail(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req updateEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	user, err := h.users.UpdateEmail(c.Request.Context(), sess, req.Email)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, identityhandler.NewUserResponse(user))
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// ChangePassword handles POST /api/users/me/password.
func (h *Handler) ChangePassword(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req changePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	if err := h.users.ChangePassword(c.Request.Context(), sess, req.CurrentPassword, req.NewPassword); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List handles GET /api/users?status=PENDING. Only the pending listing is
// exposed; anything else is a validation error.
func (h *Handler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if c.Query("status") != string(domain.ApprovalPending) {
		respond.Error(c, apperror.Validation("status=PENDING is the only supported filter"))
		return
	}
	users, err := h.users.ListPending(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, usersResponse(users))
}

// TeamMembers handles GET /api/team-members.
func (h *Handler) TeamMembers(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	users, err := h.users.ListTeamMembers(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, usersResponse(users))
}

// Approve handles POST /api/users/:id/approve.
func (h *Handler) Approve(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	user, err := h.users.Approve(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, identityhandler.NewUserResponse(user))
}

// Reject handles DELETE /api/users/:id/reject.
func (h *Handler) Reject(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.users.Reject(c.Request.Context(), sess, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Delete handles DELETE /api/users/:id.
func (h *Handler) Delete(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.users.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func usersResponse(users []*domain.User) []identityhandler.UserResponse {
	out := make([]identityhandler.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, identityhandler.NewUserResponse(u))
	}
	return out
}
