package postgres

import (
	"context"
	"database/sql"
)

// DB abstracts the database handle so the repository can be tested with a
// fake. Every report write runs inside one transaction.
type DB interface {
	BeginTx(ctx context.Context) (Tx, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type Tx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Commit() error
	Rollback() error
}
