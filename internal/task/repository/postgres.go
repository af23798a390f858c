package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"project-management/backend/internal/db"
	"project-management/backend/internal/task/domain"
	userdomain "project-management/backend/internal/user/domain"
)

const taskSelect = `
	SELECT t.id, t.title, t.description, t.project_id, t.assigned_to, t.status,
	       t.priority, t.due_date, t.created_at, t.updated_at, p.title, u.username
	FROM tasks t
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assigned_to`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{q: tx}
}

// GetByID returns the task with assignee and project title joined, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.q.QueryRowContext(ctx, taskSelect+` WHERE t.id = $1`, id)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// Create persists the task. The task must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, project_id, assigned_to, status, priority, due_date, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		t.ID, t.Title, t.Description, t.ProjectID, nullString(t.AssignedTo),
		string(t.Status), string(t.Priority), nullTime(t.DueDate), t.CreatedAt, t.UpdatedAt)
	return err
}

// Update rewrites the task's mutable fields, including assignment.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE tasks SET title = $2, description = $3, assigned_to = $4, status = $5, priority = $6, due_date = $7, updated_at = $8
		 WHERE id = $1`,
		t.ID, t.Title, t.Description, nullString(t.AssignedTo),
		string(t.Status), string(t.Priority), nullTime(t.DueDate), t.UpdatedAt)
	return err
}

// UpdateStatus sets only the status column.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id string, status domain.Status, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE tasks SET status = $2, updated_at = $3 WHERE id = $1`, id, string(status), at)
	return err
}

// Delete removes the task row. Comments cascade via foreign keys; callers delete
// the task's notifications explicitly in the same transaction.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

// ListByProject returns the project's tasks, newest first.
func (r *PostgresRepository) ListByProject(ctx context.Context, projectID string) ([]*domain.Task, error) {
	return r.list(ctx, taskSelect+` WHERE t.project_id = $1 ORDER BY t.created_at DESC`, projectID)
}

// ListForUser returns tasks in projects where userID is the owner or a member, newest first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, taskSelect+`
		WHERE p.owner_id = $1
		   OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)
		ORDER BY t.created_at DESC`, userID)
}

// ListAll returns every task, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*domain.Task, error) {
	return r.list(ctx, taskSelect+` ORDER BY t.created_at DESC`)
}

// ListByAssignee returns tasks assigned to userID, newest first.
func (r *PostgresRepository) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, taskSelect+` WHERE t.assigned_to = $1 ORDER BY t.created_at DESC`, userID)
}

// ListGantt returns tasks paired with their project's start date for the
// timeline projection. When all is false the result is scoped to userID's projects.
func (r *PostgresRepository) ListGantt(ctx context.Context, userID string, all bool) ([]GanttRow, error) {
	const query = `
	SELECT t.id, t.title, t.description, t.project_id, t.assigned_to, t.status,
	       t.priority, t.due_date, t.created_at, t.updated_at, p.title, u.username, p.start_date
	FROM tasks t
	JOIN projects p ON p.id = t.project_id
	LEFT JOIN users u ON u.id = t.assigned_to`
	var (
		rows *sql.Rows
		err  error
	)
	if all {
		rows, err = r.q.QueryContext(ctx, query+` ORDER BY p.start_date, t.created_at`)
	} else {
		rows, err = r.q.QueryContext(ctx, query+`
			WHERE p.owner_id = $1
			   OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)
			ORDER BY p.start_date, t.created_at`, userID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []GanttRow
	for rows.Next() {
		t, start, err := scanGanttRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, GanttRow{Task: t, ProjectStart: start})
	}
	return out, rows.Err()
}

// UnassignUser clears assigned_to on the user's tasks, optionally scoped to one project.
func (r *PostgresRepository) UnassignUser(ctx context.Context, userID, projectID string) error {
	if projectID == "" {
		_, err := r.q.ExecContext(ctx,
			`UPDATE tasks SET assigned_to = NULL WHERE assigned_to = $1`, userID)
		return err
	}
	_, err := r.q.ExecContext(ctx,
		`UPDATE tasks SET assigned_to = NULL WHERE assigned_to = $1 AND project_id = $2`, userID, projectID)
	return err
}

// DeleteByProject removes every task belonging to projectID.
func (r *PostgresRepository) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM tasks WHERE project_id = $1`, projectID)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Task, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(s rowScanner) (*domain.Task, error) {
	var t domain.Task
	var status, priority string
	var assignedTo, assigneeName sql.NullString
	var dueDate sql.NullTime
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &assignedTo, &status,
		&priority, &dueDate, &t.CreatedAt, &t.UpdatedAt, &t.ProjectTitle, &assigneeName)
	if err != nil {
		return nil, err
	}
	fillTask(&t, status, priority, assignedTo, assigneeName, dueDate)
	return &t, nil
}

func scanGanttRow(s rowScanner) (*domain.Task, time.Time, error) {
	var t domain.Task
	var status, priority string
	var assignedTo, assigneeName sql.NullString
	var dueDate sql.NullTime
	var projectStart time.Time
	err := s.Scan(&t.ID, &t.Title, &t.Description, &t.ProjectID, &assignedTo, &status,
		&priority, &dueDate, &t.CreatedAt, &t.UpdatedAt, &t.ProjectTitle, &assigneeName, &projectStart)
	if err != nil {
		return nil, time.Time{}, err
	}
	fillTask(&t, status, priority, assignedTo, assigneeName, dueDate)
	return &t, projectStart, nil
}

func fillTask(t *domain.Task, status, priority string, assignedTo, assigneeName sql.NullString, dueDate sql.NullTime) {
	t.Status = domain.Status(status)
	t.Priority = domain.Priority(priority)
	if assignedTo.Valid {
		t.AssignedTo = assignedTo.String
		t.Assignee = &userdomain.Ref{ID: assignedTo.String, Username: assigneeName.String}
	}
	if dueDate.Valid {
		t.DueDate = dueDate.Time
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}
