// Package handler exposes project CRUD and member management over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/project/domain"
	"project-management/backend/internal/project/service"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
	userdomain "project-management/backend/internal/user/domain"
)

const dateLayout = "2006-01-02"

// ProjectResponse is the wire shape of a project.
type ProjectResponse struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Status      string           `json:"status"`
	StartDate   string           `json:"start_date"`
	Deadline    string           `json:"deadline"`
	Owner       userdomain.Ref   `json:"owner"`
	Members     []userdomain.Ref `json:"members"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// NewProjectResponse maps a domain project to its wire shape.
func NewProjectResponse(p *domain.Project) ProjectResponse {
	members := p.Members
	if members == nil {
		members = []userdomain.Ref{}
	}
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Status:      string(p.Status),
		StartDate:   p.StartDate.Format(dateLayout),
		Deadline:    p.Deadline.Format(dateLayout),
		Owner:       p.Owner,
		Members:     members,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// Handler serves the project endpoints.
type Handler struct {
	projects *service.ProjectService
}

// New returns a Handler backed by projects.
func New(projects *service.ProjectService) *Handler {
	return &Handler{projects: projects}
}

type projectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Status      string   `json:"status"`
	StartDate   string   `json:"start_date"`
	Deadline    string   `json:"deadline"`
	MemberIDs   []string `json:"member_ids"`
}

// Create handles POST /api/projects.
func (h *Handler) Create(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	start, deadline, err := parseDates(req.StartDate, req.Deadline)
	if err != nil {
		respond.Error(c, err)
		return
	}
	p, err := h.projects.Create(c.Request.Context(), sess, service.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
		StartDate:   start,
		Deadline:    deadline,
		MemberIDs:   req.MemberIDs,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewProjectResponse(p))
}

// Get handles GET /api/projects/:id.
func (h *Handler) Get(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	p, err := h.projects.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProjectResponse(p))
}

// List handles GET /api/projects.
func (h *Handler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	ps, err := h.projects.List(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]ProjectResponse, 0, len(ps))
	for _, p := range ps {
		out = append(out, NewProjectResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

// Update handles PUT /api/projects/:id.
func (h *Handler) Update(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req projectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	start, deadline, err := parseDates(req.StartDate, req.Deadline)
	if err != nil {
		respond.Error(c, err)
		return
	}
	p, err := h.projects.Update(c.Request.Context(), sess, c.Param("id"), service.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      domain.Status(req.Status),
		StartDate:   start,
		Deadline:    deadline,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProjectResponse(p))
}

// Delete handles DELETE /api/projects/:id.
func (h *Handler) Delete(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.projects.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type addMemberRequest struct {
	UserID string `json:"user_id"`
}

// AddMember handles POST /api/projects/:id/members.
func (h *Handler) AddMember(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	p, err := h.projects.AddMember(c.Request.Context(), sess, c.Param("id"), req.UserID)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProjectResponse(p))
}

// RemoveMember handles DELETE /api/projects/:id/members/:uid.
func (h *Handler) RemoveMember(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	p, err := h.projects.RemoveMember(c.Request.Context(), sess, c.Param("id"), c.Param("uid"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewProjectResponse(p))
}

func parseDates(start, deadline string) (time.Time, time.Time, error) {
	s, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("start_date must be YYYY-MM-DD")
	}
	d, err := time.Parse(dateLayout, deadline)
	if err != nil {
		return time.Time{}, time.Time{}, apperror.Validation("deadline must be YYYY-MM-DD")
	}
	return s, d, nil
}
