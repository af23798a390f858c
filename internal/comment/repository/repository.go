package repository

import (
	"context"

	"project-management/backend/internal/comment/domain"
)

// Repository defines persistence for task comments.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	Create(ctx context.Context, c *domain.Comment) error
	// ListByTask returns the task's comments, oldest first.
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}
