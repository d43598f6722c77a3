package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// DB wraps the sqlx pool and carries transactions through the context so
// the repositories transparently join an ambient transaction.
type DB struct {
	pool *sqlx.DB
}

func Open(databaseURL string) (*DB, error) {
	pool, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: connect: %w", err)
	}
	pool.SetMaxOpenConns(25)
	pool.SetMaxIdleConns(5)
	pool.SetConnMaxLifetime(30 * time.Minute)
	return &DB{pool: pool}, nil
}

// NewFromPool wraps an existing pool; used by tests with sqlmock.
func NewFromPool(pool *sqlx.DB) *DB {
	return &DB{pool: pool}
}

func (d *DB) Close() error { return d.pool.Close() }

func (d *DB) Ping(ctx context.Context) error { return d.pool.PingContext(ctx) }

type txKey struct{}

// InTx runs fn inside a single transaction. Nested calls join the ambient
// transaction instead of opening a new one.
func (d *DB) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return fn(ctx)
	}

	tx, err := d.pool.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin tx: %w", err)
	}

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: commit tx: %w", err)
	}
	return nil
}

// ext resolves the active transaction from the context, falling back to
// the pool.
func (d *DB) ext(ctx context.Context) sqlx.ExtContext {
	if tx, ok := ctx.Value(txKey{}).(*sqlx.Tx); ok {
		return tx
	}
	return d.pool
}
