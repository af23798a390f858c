package repository

import (
	"context"
	"database/sql"
	"errors"

	"project-management/backend/internal/comment/domain"
	"project-management/backend/internal/db"
)

const commentSelect = `
	SELECT c.id, c.task_id, c.author_id, c.content, c.created_at, c.updated_at, u.username
	FROM comments c
	JOIN users u ON u.id = c.author_id`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a comment repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// GetByID returns the comment with its author joined, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	row := r.q.QueryRowContext(ctx, commentSelect+` WHERE c.id = $1`, id)
	c, err := scanComment(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return c, nil
}

// Create persists the comment.
func (r *PostgresRepository) Create(ctx context.Context, c *domain.Comment) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, author_id, content, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.TaskID, c.AuthorID, c.Content, c.CreatedAt, c.UpdatedAt)
	return err
}

// ListByTask returns the task's comments, oldest first.
func (r *PostgresRepository) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	rows, err := r.q.QueryContext(ctx, commentSelect+` WHERE c.task_id = $1 ORDER BY c.created_at`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Delete removes the comment row.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanComment(s rowScanner) (*domain.Comment, error) {
	var c domain.Comment
	var username string
	err := s.Scan(&c.ID, &c.TaskID, &c.AuthorID, &c.Content, &c.CreatedAt, &c.UpdatedAt, &username)
	if err != nil {
		return nil, err
	}
	c.Author.ID = c.AuthorID
	c.Author.Username = username
	return &c, nil
}
