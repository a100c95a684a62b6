// Package database holds the Postgres and Redis plumbing shared by the
// repositories: pool construction, schema migrations, query tracing and pool
// metrics.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool used by repositories. pgxmock pools
// satisfy it as well, which keeps repositories testable without a server.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Startup operations are attempted up to maxAttempts times, waiting
// baseBackoff, then twice as long, and so on, each wait jittered by
// backoffJitter.
const (
	maxAttempts   = 3
	baseBackoff   = time.Second
	backoffJitter = 0.25
)

// backoff returns the wait after the given failed attempt (0-indexed).
func backoff(attempt int) time.Duration {
	attempt = max(attempt, 0)
	d := baseBackoff << attempt
	// #nosec G404 -- jitter does not need a cryptographic source
	spread := float64(d) * backoffJitter * (2*rand.Float64() - 1)
	return d + time.Duration(spread)
}

// withRetry runs op until it succeeds, fails with an error retryable rejects,
// or maxAttempts is reached. logger may be nil.
func withRetry(ctx context.Context, logger *slog.Logger, what string, retryable func(error) bool, op func() error) error {
	var err error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err = op(); err == nil {
			return nil
		}
		if !retryable(err) || attempt == maxAttempts-1 {
			break
		}

		wait := backoff(attempt)
		if logger != nil {
			logger.WarnContext(ctx, what+" failed, retrying",
				slog.Int("attempt", attempt+1),
				slog.Int("max_attempts", maxAttempts),
				slog.Duration("backoff", wait),
				slog.String("error", err.Error()),
			)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s: cancelled while retrying: %w", what, ctx.Err())
		case <-timer.C:
		}
	}
	return err
}

func always(error) bool { return true }
