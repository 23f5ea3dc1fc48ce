package repository

import (
	"context"
	"database/sql"
)

// The allocation engine runs every mutating operation inside one
// database transaction. Rather than threading *sql.Tx through each
// call, the transaction rides in the context: WithTx opens one, stores
// it, and the repo helpers below pick it up transparently. Nested
// WithTx calls join the outer transaction.

type txKey struct{}

func withTx(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	if txFromContext(ctx) != nil {
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func txFromContext(ctx context.Context) *sql.Tx {
	tx, _ := ctx.Value(txKey{}).(*sql.Tx)
	return tx
}

// execer is the subset of database/sql shared by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// runner returns the transaction from ctx when present, the pool
// otherwise.
func runner(ctx context.Context, db *sql.DB) execer {
	if tx := txFromContext(ctx); tx != nil {
		return tx
	}
	return db
}
