package domain

import (
	"errors"
	"time"

	userdomain "project-management/backend/internal/user/domain"
)

// Comment is a remark on a task, visible to everyone who can see the task.
type Comment struct {
	ID        string
	TaskID    string
	AuthorID  string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time

	Author userdomain.Ref // joined
}

// Validate validates the comment for persistence.
func (c *Comment) Validate() error {
	if c.TaskID == "" {
		return errors.New("task is required")
	}
	if c.AuthorID == "" {
		return errors.New("author is required")
	}
	if c.Content == "" {
		return errors.New("content is required")
	}
	return nil
}
