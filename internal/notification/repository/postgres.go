package repository

import (
	"context"
	"database/sql"
	"errors"

	"project-management/backend/internal/db"
	"project-management/backend/internal/notification/domain"
)

const notificationColumns = `id, recipient_id, type, subject_id, title, message, is_read, created_at`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a notification repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{q: tx}
}

// GetByID returns the notification for id, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return n, nil
}

// Create persists the notification.
func (r *PostgresRepository) Create(ctx context.Context, n *domain.Notification) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO notifications (id, recipient_id, type, subject_id, title, message, is_read, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		n.ID, n.RecipientID, string(n.Type), n.SubjectID, n.Title, n.Message, n.IsRead, n.CreatedAt)
	return err
}

// ListByRecipient returns the user's notifications, newest first.
func (r *PostgresRepository) ListByRecipient(ctx context.Context, userID string) ([]*domain.Notification, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE recipient_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// CountUnread derives the unread count for userID.
func (r *PostgresRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND NOT is_read`, userID)
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// MarkRead sets is_read. Marking an already-read notification is a no-op.
func (r *PostgresRepository) MarkRead(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	return err
}

// DeleteBySubject removes notifications referencing the given project or task id.
func (r *PostgresRepository) DeleteBySubject(ctx context.Context, subjectID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE subject_id = $1`, subjectID)
	return err
}

// DeleteByProject removes notifications referencing the project or any of its tasks.
// Run before the tasks are deleted so the subquery still sees them.
func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM notifications
		 WHERE subject_id = $1
		    OR subject_id IN (SELECT id FROM tasks WHERE project_id = $1)`, projectID)
	return err
}

// DeleteByRecipient removes every notification owned by userID.
func (r *PostgresRepository) DeleteByRecipient(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM notifications WHERE recipient_id = $1`, userID)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNotification(s rowScanner) (*domain.Notification, error) {
	var n domain.Notification
	var typ string
	err := s.Scan(&n.ID, &n.RecipientID, &typ, &n.SubjectID, &n.Title, &n.Message, &n.IsRead, &n.CreatedAt)
	if err != nil {
		return nil, err
	}
	n.Type = domain.Type(typ)
	return &n, nil
}
