package repository

import (
	"context"
	"database/sql"

	"project-management/backend/internal/audit/domain"
	"project-management/backend/internal/db"
)

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns an audit repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// Create persists the audit entry.
func (r *PostgresRepository) Create(ctx context.Context, e *domain.AuditLog) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.UserID, e.Action, e.Resource, e.IP, e.Metadata, e.CreatedAt)
	return err
}

// List returns the most recent entries, newest first, capped at limit.
func (r *PostgresRepository) List(ctx context.Context, limit int) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.q.QueryContext(ctx,
		`SELECT id, user_id, action, resource, ip, metadata, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var e domain.AuditLog
		if err := rows.Scan(&e.ID, &e.UserID, &e.Action, &e.Resource, &e.IP, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
