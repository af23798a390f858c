package repository

import (
	"context"
	"database/sql"

	"project-management/backend/internal/notification/domain"
)

// Repository defines persistence for notifications.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	Create(ctx context.Context, n *domain.Notification) error
	// ListByRecipient returns the user's notifications, newest first.
	ListByRecipient(ctx context.Context, userID string) ([]*domain.Notification, error)
	// CountUnread derives the unread count; it is never stored.
	CountUnread(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, id string) error
	DeleteBySubject(ctx context.Context, subjectID string) error
	// DeleteByProject removes notifications referencing the project or any of its tasks.
	DeleteByProject(ctx context.Context, projectID string) error
	DeleteByRecipient(ctx context.Context, userID string) error
	WithTx(tx *sql.Tx) Repository
}
