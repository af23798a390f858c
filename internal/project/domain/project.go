package domain

import (
	"errors"
	"time"

	userdomain "project-management/backend/internal/user/domain"
)

// Project is the core project entity. The owner is implicitly a member for all
// visibility checks; Members holds the explicit member set.
type Project struct {
	ID          string
	Title       string
	Description string
	Status      Status
	StartDate   time.Time
	Deadline    time.Time
	OwnerID     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Owner   userdomain.Ref   // joined
	Members []userdomain.Ref // joined
}

type Status string

const (
	StatusTodo       Status = "TODO"
	StatusInProgress Status = "IN_PROGRESS"
	StatusDone       Status = "DONE"
)

// ValidStatus reports whether s is one of the three project states.
func ValidStatus(s Status) bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

// Validate validates the project for persistence.
func (p *Project) Validate() error {
	if p.Title == "" {
		return errors.New("title is required")
	}
	if p.OwnerID == "" {
		return errors.New("owner is required")
	}
	if !ValidStatus(p.Status) {
		return errors.New("status must be TODO, IN_PROGRESS, or DONE")
	}
	if p.StartDate.After(p.Deadline) {
		return errors.New("start_date must not be after deadline")
	}
	return nil
}

// HasMember reports whether userID is the owner or an explicit member.
func (p *Project) HasMember(userID string) bool {
	if p.OwnerID == userID {
		return true
	}
	for _, m := range p.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}
