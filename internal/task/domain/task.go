package domain

import (
	"errors"
	"time"

	userdomain "project-management/backend/internal/user/domain"
)

// Task is the core task entity. AssignedTo is empty when unassigned; when set
// it must reference a member (or the owner) of the task's project.
type Task struct {
	ID          string
	Title       string
	Description string
	ProjectID   string
	AssignedTo  string
	Status      Status
	Priority    Priority
	DueDate     time.Time // zero when unset
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Assignee     *userdomain.Ref // joined, nil when unassigned
	ProjectTitle string          // joined
}

// Status is the Kanban column. All pairwise transitions are permitted; there is
// no linear ordering.
type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ValidStatus reports whether s is one of the three task states.
func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
)

// ValidPriority reports whether p is one of the three priorities.
func ValidPriority(p Priority) bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Validate validates the task for persistence.
func (t *Task) Validate() error {
	if t.Title == "" {
		return errors.New("title is required")
	}
	if t.ProjectID == "" {
		return errors.New("project is required")
	}
	if !ValidStatus(t.Status) {
		return errors.New("status must be TODO, IN_PROGRESS, or DONE")
	}
	if !ValidPriority(t.Priority) {
		return errors.New("priority must be LOW, MEDIUM, or HIGH")
	}
	return nil
}
