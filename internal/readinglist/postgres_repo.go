package readinglist

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresKV stores slots in the kv_store table.
type PostgresKV struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresKV(db *pgxpool.Pool, timeout time.Duration) *PostgresKV {
	return &PostgresKV{db: db, timeout: timeout}
}

func (r *PostgresKV) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresKV) Get(ctx context.Context, key string) (string, bool, error) {
	const selectSQL = `SELECT value FROM kv_store WHERE key = $1`

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var value string
	err := r.db.QueryRow(timeoutCtx, selectSQL, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *PostgresKV) Set(ctx context.Context, key, value string) error {
	const upsertSQL = `
		INSERT INTO kv_store (key, value, created_at, updated_at)
		VALUES ($1, $2, NOW(), NOW())
		ON CONFLICT (key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	_, err := r.db.Exec(timeoutCtx, upsertSQL, key, value)
	return err
}

func (r *PostgresKV) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
