package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// AdvisoryLocker implements usecase.Locker on PostgreSQL advisory locks.
// The lock key is hashed server-side; the session lock is held on a
// dedicated connection for the duration of fn.
type AdvisoryLocker struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewAdvisoryLocker creates a new AdvisoryLocker.
func NewAdvisoryLocker(pool *pgxpool.Pool, logger zerolog.Logger) *AdvisoryLocker {
	return &AdvisoryLocker{pool: pool, logger: logger}
}

// WithLock acquires the advisory lock for key, runs fn, and releases the
// lock. Acquisition blocks until the current holder releases, so
// concurrent callers serialize rather than fail.
func (l *AdvisoryLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection for lock %q: %w", key, err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtext($1))`, key); err != nil {
		return fmt.Errorf("acquire advisory lock %q: %w", key, err)
	}

	defer func() {
		// Unlock on a background context: the caller's context may
		// already be done, but the session must not leak the lock.
		if _, err := conn.Exec(context.Background(), `SELECT pg_advisory_unlock(hashtext($1))`, key); err != nil {
			l.logger.Error().Err(err).Str("key", key).Msg("release advisory lock")
		}
	}()

	return fn(ctx)
}
