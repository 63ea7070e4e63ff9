package postgres

import (
	"context"
	"hash/fnv"

	"github.com/jackc/pgx/v5/pgxpool"
)

// AdvisoryGuard provides cross-process mutual exclusion through Postgres
// session advisory locks, keyed by task name. Unlike a lock file, the lock
// dies with the session, so a crashed holder never leaves a stale guard
// behind.
type AdvisoryGuard struct {
	pool *pgxpool.Pool
}

func NewAdvisoryGuard(pool *pgxpool.Pool) *AdvisoryGuard {
	return &AdvisoryGuard{pool: pool}
}

// TryLock attempts to take the named lock without waiting. When another
// holder owns it, ok is false and the caller skips its run. The returned
// release func unlocks and gives the session back to the pool.
func (g *AdvisoryGuard) TryLock(ctx context.Context, name string) (release func(), ok bool, err error) {
	key := lockKey(name)

	// The lock is bound to the session, so the connection stays checked
	// out until release.
	conn, err := g.pool.Acquire(ctx)
	if err != nil {
		return nil, false, err
	}

	if err = conn.QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, key).Scan(&ok); err != nil {
		conn.Release()
		return nil, false, err
	}
	if !ok {
		conn.Release()
		return nil, false, nil
	}

	release = func() {
		// Unlock on a background context; release must work even when the
		// run's context was cancelled.
		_, _ = conn.Exec(context.Background(), `SELECT pg_advisory_unlock($1)`, key)
		conn.Release()
	}
	return release, true, nil
}

func lockKey(name string) int64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return int64(h.Sum64())
}
