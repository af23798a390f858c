package repository

import (
	"context"
	"database/sql"
	"time"

	"project-management/backend/internal/task/domain"
)

// GanttRow pairs a task with its project's start date for the timeline projection.
type GanttRow struct {
	Task         *domain.Task
	ProjectStart time.Time
}

// Repository defines persistence for tasks.
type Repository interface {
	// GetByID returns the task with assignee and project title joined, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	Create(ctx context.Context, t *domain.Task) error
	Update(ctx context.Context, t *domain.Task) error
	UpdateStatus(ctx context.Context, id string, status domain.Status, at time.Time) error
	Delete(ctx context.Context, id string) error
	ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error)
	// ListForUser returns tasks in projects where userID is the owner or a member, newest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Task, error)
	ListAll(ctx context.Context) ([]*domain.Task, error)
	ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error)
	ListGantt(ctx context.Context, userID string, all bool) ([]GanttRow, error)
	// UnassignUser clears assigned_to on the user's tasks; projectID scopes the
	// clear to one project when non-empty.
	UnassignUser(ctx context.Context, userID, projectID string) error
	DeleteByProject(ctx context.Context, projectID string) error
	WithTx(tx *sql.Tx) Repository
}
