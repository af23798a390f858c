// Package handler exposes the task workflow over HTTP.
package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/apperror"
	"project-management/backend/internal/server/middleware"
	"project-management/backend/internal/server/respond"
	"project-management/backend/internal/task/domain"
	"project-management/backend/internal/task/service"
	userdomain "project-management/backend/internal/user/domain"
)

const dateLayout = "2006-01-02"

// TaskResponse is the wire shape of a task.
type TaskResponse struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	ProjectID    string          `json:"project"`
	ProjectTitle string          `json:"project_title"`
	Assignee     *userdomain.Ref `json:"assigned_to"`
	Status       string          `json:"status"`
	Priority     string          `json:"priority"`
	DueDate      string          `json:"due_date,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewTaskResponse maps a domain task to its wire shape.
func NewTaskResponse(t *domain.Task) TaskResponse {
	out := TaskResponse{
		ID:           t.ID,
		Title:        t.Title,
		Description:  t.Description,
		ProjectID:    t.ProjectID,
		ProjectTitle: t.ProjectTitle,
		Assignee:     t.Assignee,
		Status:       string(t.Status),
		Priority:     string(t.Priority),
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if !t.DueDate.IsZero() {
		out.DueDate = t.DueDate.Format(dateLayout)
	}
	return out
}

// GanttResponse is one timeline bar in the projection the chart component
// consumes: duration in whole days, progress 0/0.5/1 by status.
type GanttResponse struct {
	ID        string  `json:"id"`
	Text      string  `json:"text"`
	StartDate string  `json:"start_date"`
	Duration  int     `json:"duration"`
	Progress  float64 `json:"progress"`
}

func ganttProgress(s domain.Status) float64 {
	switch s {
	case domain.StatusInProgress:
		return 0.5
	case domain.StatusDone:
		return 1
	default:
		return 0
	}
}

// Handler serves the task endpoints.
type Handler struct {
	tasks *service.TaskService
}

// New returns a Handler backed by tasks.
func New(tasks *service.TaskService) *Handler {
	return &Handler{tasks: tasks}
}

type taskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	ProjectID   string `json:"project_id"`
	AssignedTo  string `json:"assigned_to"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	DueDate     string `json:"due_date"`
}

// Create handles POST /api/tasks.
func (h *Handler) Create(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		respond.Error(c, err)
		return
	}
	t, err := h.tasks.Create(c.Request.Context(), sess, service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		ProjectID:   req.ProjectID,
		AssignedTo:  req.AssignedTo,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTaskResponse(t))
}

// Get handles GET /api/tasks/:id.
func (h *Handler) Get(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	t, err := h.tasks.Get(c.Request.Context(), sess, c.Param("id"))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(t))
}

// List handles GET /api/tasks with an optional project filter.
func (h *Handler) List(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var ts []*domain.Task
	var err error
	if projectID := c.Query("project"); projectID != "" {
		ts, err = h.tasks.ListByProject(c.Request.Context(), sess, projectID)
	} else {
		ts, err = h.tasks.List(c.Request.Context(), sess)
	}
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse(ts))
}

// Mine handles GET /api/tasks/mine.
func (h *Handler) Mine(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	ts, err := h.tasks.Mine(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, tasksResponse(ts))
}

// Gantt handles GET /api/tasks/gantt.
func (h *Handler) Gantt(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	entries, err := h.tasks.Gantt(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	out := make([]GanttResponse, 0, len(entries))
	for _, e := range entries {
		days := int(e.End.Sub(e.Start).Hours() / 24)
		if days < 1 {
			days = 1
		}
		out = append(out, GanttResponse{
			ID:        e.Task.ID,
			Text:      e.Task.Title,
			StartDate: e.Start.Format(dateLayout),
			Duration:  days,
			Progress:  ganttProgress(e.Task.Status),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Dashboard handles GET /api/dashboard/stats.
func (h *Handler) Dashboard(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	stats, err := h.tasks.Dashboard(c.Request.Context(), sess)
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Update handles PUT /api/tasks/:id.
func (h *Handler) Update(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	due, err := parseDueDate(req.DueDate)
	if err != nil {
		respond.Error(c, err)
		return
	}
	t, err := h.tasks.Update(c.Request.Context(), sess, c.Param("id"), service.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		Status:      domain.Status(req.Status),
		Priority:    domain.Priority(req.Priority),
		DueDate:     due,
	})
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(t))
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus handles PATCH /api/tasks/:id/status.
func (h *Handler) UpdateStatus(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, apperror.Validation("invalid request body"))
		return
	}
	t, err := h.tasks.UpdateStatus(c.Request.Context(), sess, c.Param("id"), domain.Status(req.Status))
	if err != nil {
		respond.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTaskResponse(t))
}

// Delete handles DELETE /api/tasks/:id.
func (h *Handler) Delete(c *gin.Context) {
	sess, _ := middleware.SessionFrom(c)
	if err := h.tasks.Delete(c.Request.Context(), sess, c.Param("id")); err != nil {
		respond.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func tasksResponse(ts []*domain.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(ts))
	for _, t := range ts {
		out = append(out, NewTaskResponse(t))
	}
	return out
}

func parseDueDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, apperror.Validation("due_date must be YYYY-MM-DD")
	}
	return d, nil
}
