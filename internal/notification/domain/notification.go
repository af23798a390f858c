package domain

import (
	"errors"
	"time"
)

// Notification is a workflow-event side effect owned by its recipient. It is
// immutable except for the mark-read flag.
type Notification struct {
	ID          string
	RecipientID string
	Type        Type
	SubjectID   string // the project or task the notification refers to
	Title       string
	Message     string
	IsRead      bool
	CreatedAt   time.Time
}

type Type string

const (
	TypeProject Type = "PROJECT"
	TypeTask    Type = "TASK"
)

// Validate validates the notification for persistence.
func (n *Notification) Validate() error {
	if n.RecipientID == "" {
		return errors.New("recipient is required")
	}
	if n.Type != TypeProject && n.Type != TypeTask {
		return errors.New("type must be PROJECT or TASK")
	}
	if n.Title == "" {
		return errors.New("title is required")
	}
	return nil
}
