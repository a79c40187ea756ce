package sqlite

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo provides a base for Squirrel-based repositories.
type Repo struct {
	DB DBTX
	SQ sq.StatementBuilderType
}

func NewRepo(db DBTX) *Repo {
	return &Repo{DB: db, SQ: sq.StatementBuilder}
}

func (r *Repo) exec(ctx context.Context, b sq.Sqlizer) (sql.Result, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.DB.ExecContext(ctx, sqlStr, args...)
}

func (r *Repo) query(ctx context.Context, b sq.Sqlizer) (*sql.Rows, error) {
	sqlStr, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	return r.DB.QueryContext(ctx, sqlStr, args...)
}

func (r *Repo) queryRow(ctx context.Context, b sq.Sqlizer) *sql.Row {
	sqlStr, args, _ := b.ToSql()
	return r.DB.QueryRowContext(ctx, sqlStr, args...)
}

// scanner is implemented by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func now() string { return time.Now().UTC().Format(time.RFC3339) }

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
