package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a Postgres connection using the given DSN. Caller must call Close when done.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Querier is the query surface shared by *sql.DB and *sql.Tx. Repositories run
// against a Querier so a service can bind them to one transaction for an atomic
// workflow unit (e.g. a status update and the notifications it produces).
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// AtomicFunc runs fn as one atomic unit. The production implementation wraps a
// database transaction; tests substitute a pass-through.
type AtomicFunc func(ctx context.Context, fn func(tx *sql.Tx) error) error

// NewAtomic returns an AtomicFunc backed by sqlDB transactions. fn's error
// rolls the transaction back; otherwise it commits.
func NewAtomic(sqlDB *sql.DB) AtomicFunc {
	return func(ctx context.Context, fn func(tx *sql.Tx) error) error {
		tx, err := sqlDB.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	}
}
