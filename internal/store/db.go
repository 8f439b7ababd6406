package store

import (
	"context"
	"database/sql"
)

// Execer is satisfied by *sqlx.DB and *sqlx.Tx. Writes take one so they run
// inside the caller's transaction.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Getter reads a single row. Lock queries take the tx through it.
type Getter interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
}

type Selecter interface {
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// DB is the read side the stores hold on to between transactions.
type DB interface {
	Execer
	Getter
	Selecter
}
