package database

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"slices"
	"strings"
)

// connectionErrors are message fragments of transient network failures.
var connectionErrors = []string{
	"connection refused",
	"connection reset",
	"connection timed out",
	"connect: connection",
	"server closed the connection unexpectedly",
	"could not connect",
	"broken pipe",
	"no such host",
	"i/o timeout",
	"dial tcp",
	"EOF",
}

// isConnectionError reports whether err looks like a dropped or refused
// connection rather than a failing statement.
func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return slices.ContainsFunc(connectionErrors, func(fragment string) bool {
		return strings.Contains(msg, fragment)
	})
}

// RunMigrations applies the *.up.sql files at the root of migrations in name
// order, each in its own transaction, recording applied versions in
// schema_migrations. Connection failures are retried; SQL errors are not.
func RunMigrations(ctx context.Context, db DBTX, migrations fs.ReadDirFS, logger *slog.Logger) error {
	return withRetry(ctx, logger, "migrations", isConnectionError, func() error {
		return migrate(ctx, db, migrations, logger)
	})
}

func migrate(ctx context.Context, db DBTX, migrations fs.ReadDirFS, logger *slog.Logger) error {
	if _, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	entries, err := migrations.ReadDir(".")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	var versions []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			versions = append(versions, e.Name())
		}
	}
	slices.Sort(versions)

	for _, version := range versions {
		var applied bool
		if err := db.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", version,
		).Scan(&applied); err != nil {
			return fmt.Errorf("check migration %s: %w", version, err)
		}
		if applied {
			logger.Debug("migration already applied", slog.String("version", version))
			continue
		}

		script, err := fs.ReadFile(migrations, version)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", version, err)
		}
		if err := apply(ctx, db, version, string(script)); err != nil {
			return err
		}
		logger.Info("migration applied", slog.String("version", version))
	}
	return nil
}

func apply(ctx context.Context, db DBTX, version, script string) error {
	tx, err := db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin migration %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, script); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("execute migration %s: %w", version, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", version); err != nil {
		_ = tx.Rollback(ctx)
		return fmt.Errorf("record migration %s: %w", version, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", version, err)
	}
	return nil
}
