package repository

import (
	"context"

	"project-management/backend/internal/audit/domain"
)

// Repository defines persistence for audit log entries.
type Repository interface {
	Create(ctx context.Context, e *domain.AuditLog) error
	// List returns the most recent entries, newest first, capped at limit.
	List(ctx context.Context, limit int) ([]*domain.AuditLog, error)
}
