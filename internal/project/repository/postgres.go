package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"project-management/backend/internal/db"
	"project-management/backend/internal/project/domain"
	userdomain "project-management/backend/internal/user/domain"
)

const projectSelect = `
	SELECT p.id, p.title, p.description, p.status, p.start_date, p.deadline,
	       p.owner_id, p.created_at, p.updated_at, u.username
	FROM projects p
	JOIN users u ON u.id = p.owner_id`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a project repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{q: tx}
}

// GetByID returns the project with owner and members joined, or nil if not found.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.q.QueryRowContext(ctx, projectSelect+` WHERE p.id = $1`, id)
	p, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if err := r.loadMembers(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Create persists the project and its initial member set. The owner is not
// duplicated into project_members; ownership implies membership.
func (r *PostgresRepository) Create(ctx context.Context, p *domain.Project, memberIDs []string) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO projects (id, title, description, status, start_date, deadline, owner_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		p.ID, p.Title, p.Description, string(p.Status), p.StartDate, p.Deadline, p.OwnerID, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return err
	}
	for _, uid := range memberIDs {
		if uid == p.OwnerID {
			continue
		}
		if err := r.AddMember(ctx, p.ID, uid, p.CreatedAt); err != nil {
			return err
		}
	}
	return nil
}

// Update rewrites the project's mutable fields.
func (r *PostgresRepository) Update(ctx context.Context, p *domain.Project) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE projects SET title = $2, description = $3, status = $4, start_date = $5, deadline = $6, updated_at = $7
		 WHERE id = $1`,
		p.ID, p.Title, p.Description, string(p.Status), p.StartDate, p.Deadline, p.UpdatedAt)
	return err
}

// Delete removes the project row. Membership rows cascade via foreign keys.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id)
	return err
}

// ListForUser returns projects where userID is the owner or a member, newest first.
func (r *PostgresRepository) ListForUser(ctx context.Context, userID string) ([]*domain.Project, error) {
	rows, err := r.q.QueryContext(ctx, projectSelect+`
		WHERE p.owner_id = $1
		   OR EXISTS (SELECT 1 FROM project_members pm WHERE pm.project_id = p.id AND pm.user_id = $1)
		ORDER BY p.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectProjects(ctx, rows)
}

// ListAll returns every project, newest first.
func (r *PostgresRepository) ListAll(ctx context.Context) ([]*domain.Project, error) {
	rows, err := r.q.QueryContext(ctx, projectSelect+` ORDER BY p.created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectProjects(ctx, rows)
}

// ListOwnedIDs returns ids of projects owned by ownerID.
func (r *PostgresRepository) ListOwnedIDs(ctx context.Context, ownerID string) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT id FROM projects WHERE owner_id = $1`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddMember inserts the membership row; adding an existing member is a no-op.
func (r *PostgresRepository) AddMember(ctx context.Context, projectID, userID string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO project_members (id, project_id, user_id, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (project_id, user_id) DO NOTHING`,
		uuid.New().String(), projectID, userID, at)
	return err
}

// RemoveMember deletes the membership row.
func (r *PostgresRepository) RemoveMember(ctx context.Context, projectID, userID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM project_members WHERE project_id = $1 AND user_id = $2`, projectID, userID)
	return err
}

// RemoveAllMemberships deletes every membership row for userID.
func (r *PostgresRepository) RemoveAllMemberships(ctx context.Context, userID string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM project_members WHERE user_id = $1`, userID)
	return err
}

// IsMember reports whether userID is the project's owner or an explicit member.
func (r *PostgresRepository) IsMember(ctx context.Context, projectID, userID string) (bool, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM projects p WHERE p.id = $1 AND p.owner_id = $2
			UNION
			SELECT 1 FROM project_members pm WHERE pm.project_id = $1 AND pm.user_id = $2
		)`, projectID, userID)
	var ok bool
	if err := row.Scan(&ok); err != nil {
		return false, err
	}
	return ok, nil
}

func (r *PostgresRepository) loadMembers(ctx context.Context, p *domain.Project) error {
	rows, err := r.q.QueryContext(ctx,
		`SELECT u.id, u.username
		 FROM project_members pm
		 JOIN users u ON u.id = pm.user_id
		 WHERE pm.project_id = $1
		 ORDER BY pm.created_at`, p.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var ref userdomain.Ref
		if err := rows.Scan(&ref.ID, &ref.Username); err != nil {
			return err
		}
		p.Members = append(p.Members, ref)
	}
	return rows.Err()
}

func (r *PostgresRepository) collectProjects(ctx context.Context, rows *sql.Rows) ([]*domain.Project, error) {
	var out []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range out {
		if err := r.loadMembers(ctx, p); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status, ownerUsername string
	err := s.Scan(&p.ID, &p.Title, &p.Description, &status, &p.StartDate, &p.Deadline,
		&p.OwnerID, &p.CreatedAt, &p.UpdatedAt, &ownerUsername)
	if err != nil {
		return nil, err
	}
	p.Status = domain.Status(status)
	p.Owner = userdomain.Ref{ID: p.OwnerID, Username: ownerUsername}
	return &p, nil
}
