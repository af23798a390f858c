package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"project-management/backend/internal/db"
	"project-management/backend/internal/user/domain"
)

const userColumns = `id, username, email, password_hash, role, approval_state, created_at, updated_at`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(sqlDB *sql.DB) *PostgresRepository {
	return &PostgresRepository{q: sqlDB}
}

// WithTx returns a copy of the repository bound to tx.
func (r *PostgresRepository) WithTx(tx *sql.Tx) Repository {
	return &PostgresRepository{q: tx}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByUsername returns the user with the given username, or nil if not found.
func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// Create persists the user. The user must have ID set; it is not assigned by
// this method. A username or email collision returns ErrDuplicate.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.q.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, role, approval_state, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		u.ID, u.Username, u.Email, u.PasswordHash, string(u.Role), string(u.ApprovalState), u.CreatedAt, u.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// UpdateEmail sets the user's email. An email collision returns ErrDuplicate.
func (r *PostgresRepository) UpdateEmail(ctx context.Context, id, email string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`, id, email, at)
	if isUniqueViolation(err) {
		return ErrDuplicate
	}
	return err
}

// isUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// UpdatePassword sets the user's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id, passwordHash string, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, passwordHash, at)
	return err
}

// UpdateApproval sets the user's approval state.
func (r *PostgresRepository) UpdateApproval(ctx context.Context, id string, state domain.ApprovalState, at time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE users SET approval_state = $2, updated_at = $3 WHERE id = $1`, id, string(state), at)
	return err
}

// ListByApproval returns users in the given approval state, oldest first.
func (r *PostgresRepository) ListByApproval(ctx context.Context, state domain.ApprovalState) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE approval_state = $1 ORDER BY created_at`, string(state))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListApprovedMembers returns approved users with the MEMBER role, oldest first.
func (r *PostgresRepository) ListApprovedMembers(ctx context.Context) ([]*domain.User, error) {
	rows, err := r.q.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE approval_state = $1 AND role = $2 ORDER BY created_at`,
		string(domain.ApprovalApproved), string(domain.RoleMember))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanUsers(rows)
}

// Delete removes the user row. Memberships and comments cascade via foreign keys;
// callers remove owned projects, notifications, and task assignments explicitly.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.q.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUserFrom(s rowScanner) (*domain.User, error) {
	var u domain.User
	var role, state string
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &role, &state, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	u.ApprovalState = domain.ApprovalState(state)
	return &u, nil
}

func scanUser(row *sql.Row) (*domain.User, error) {
	u, err := scanUserFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func scanUsers(rows *sql.Rows) ([]*domain.User, error) {
	var out []*domain.User
	for rows.Next() {
		u, err := scanUserFrom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}
