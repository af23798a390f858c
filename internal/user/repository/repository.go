package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"project-management/backend/internal/user/domain"
)

// ErrDuplicate is returned when a write collides with the unique username or
// email constraint, e.g. two registrations racing past the existence check.
var ErrDuplicate = errors.New("duplicate username or email")

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	UpdateEmail(ctx context.Context, id, email string, at time.Time) error
	UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error
	UpdateApproval(ctx context.Context, id string, state domain.ApprovalState, at time.Time) error
	ListByApproval(ctx context.Context, state domain.ApprovalState) ([]*domain.User, error)
	ListApprovedMembers(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id string) error
	// WithTx returns a copy of the repository bound to tx, so callers can compose
	// user writes with other writes in one atomic unit.
	WithTx(tx *sql.Tx) Repository
}
