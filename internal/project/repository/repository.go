package repository

import (
	"context"
	"database/sql"
	"time"

	"project-management/backend/internal/project/domain"
)

// Repository defines persistence for projects and their membership sets.
type Repository interface {
	// GetByID returns the project with owner and members joined, or nil if not found.
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, p *domain.Project, memberIDs []string) error
	Update(ctx context.Context, p *domain.Project) error
	// Delete removes the project row only; callers delete dependent tasks and
	// notifications explicitly in the same transaction.
	Delete(ctx context.Context, id string) error
	// ListForUser returns projects where userID is the owner or a member, newest first.
	ListForUser(ctx context.Context, userID string) ([]*domain.Project, error)
	ListAll(ctx context.Context) ([]*domain.Project, error)
	ListOwnedIDs(ctx context.Context, ownerID string) ([]string, error)
	AddMember(ctx context.Context, projectID, userID string, at time.Time) error
	RemoveMember(ctx context.Context, projectID, userID string) error
	RemoveAllMemberships(ctx context.Context, userID string) error
	// IsMember reports whether userID is the project's owner or an explicit member.
	IsMember(ctx context.Context, projectID, userID string) (bool, error)
	WithTx(tx *sql.Tx) Repository
}
