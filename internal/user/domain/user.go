package domain

import (
	"errors"
	"time"
)

// User is the core user entity. PasswordHash never leaves the backend.
type User struct {
	ID            string
	Username      string
	Email         string
	PasswordHash  string
	Role          Role
	ApprovalState ApprovalState
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// ApprovalState tracks the registration pipeline. A rejection deletes the
// pending record, so REJECTED is never persisted.
type ApprovalState string

const (
	ApprovalPending  ApprovalState = "PENDING"
	ApprovalApproved ApprovalState = "APPROVED"
)

// Ref is the user reference shape embedded in project and task responses.
type Ref struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// AsRef returns the wire reference for the user.
func (u *User) AsRef() Ref {
	return Ref{ID: u.ID, Username: u.Username}
}

// IsApproved reports whether the user may act beyond the registration endpoint.
func (u *User) IsApproved() bool {
	return u.ApprovalState == ApprovalApproved
}

// Validate validates the user for persistence. Returns an error describing the first validation failure.
func (u *User) Validate() error {
	if u.Username == "" {
		return errors.New("username is required")
	}
	if u.Email == "" {
		return errors.New("email is required")
	}
	if u.Role != RoleAdmin && u.Role != RoleMember {
		return errors.New("role must be ADMIN or MEMBER")
	}
	if u.ApprovalState == "" {
		u.ApprovalState = ApprovalPending
	}
	return nil
}
