// Package handler exposes registration and login over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/identity/service"
	"project-management/backend/internal/server/respond"
	userdomain "project-management/backend/internal/user/domain"
)

// UserResponse is the wire shape of a user account.
type UserResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	Role          string    `json:"role"`
	ApprovalState string    `json:"approval_state"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewUserResponse maps a domain user to its wire shape.
func NewUserResponse(u *userdomain.User) UserResponse {
	return UserResponse{
		ID:            u.ID,
		Username:      u.Username,
		Email:         u.Email,
		Role:          string(u.Role),
		ApprovalState: string(u.ApprovalState),
		CreatedAt:     u.CreatedAt,
	}
}

// Handler serves the unauthenticated auth endpoints.
type Handler struct {
	auth *service.AuthService
}

// New returns a Handler backed by auth.
func New(auth *service.AuthService) *Handler {
	return &Handler{auth: auth}
}

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/register.
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	user, err := h.auth.Register(c.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewUserResponse(user))
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

// Login handles POST /api/login.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	res, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, loginResponse{
		Token:     res.AccessToken,
		ExpiresAt: res.ExpiresAt,
		User:      NewUserResponse(res.User),
	})
}
