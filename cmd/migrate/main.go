// Command migrate applies the SQL files under migrations/ to DATABASE_URL.
//
//	go run ./cmd/migrate -direction up
//	go run ./cmd/migrate -direction down -steps 1
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/imaginify/imaginify/internal/config"
)

const schemaTable = "schema_migrations"

// migration is one numbered pair of up/down files.
type migration struct {
	Version string
	Up      string
	Down    string
}

func main() {
	var (
		dir       = flag.String("dir", "migrations", "Directory holding *.up.sql and *.down.sql files")
		direction = flag.String("direction", "up", "Migration direction: up or down")
		steps     = flag.Int("steps", 0, "Number of migrations to apply (0 = all)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := config.LoadDotEnv(); err != nil {
		logger.Warn("dotenv_not_loaded", slog.String("error", err.Error()))
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := run(ctx, logger, databaseURL, *dir, *direction, *steps); err != nil {
		logger.Error("migration_failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, databaseURL, dir, direction string, steps int) error {
	migrations, err := loadMigrations(dir)
	if err != nil {
		return err
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+pq.QuoteIdentifier(schemaTable)+` (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`); err != nil {
		return fmt.Errorf("create %s: %w", schemaTable, err)
	}

	applied, err := appliedVersions(ctx, db)
	if err != nil {
		return err
	}

	var plan []migration
	switch direction {
	case "up":
		plan = pendingUp(migrations, applied)
	case "down":
		plan = pendingDown(migrations, applied)
	default:
		return fmt.Errorf("invalid direction %q; use up or down", direction)
	}
	if steps > 0 && steps < len(plan) {
		plan = plan[:steps]
	}

	if len(plan) == 0 {
		logger.Info("migrations_up_to_date", slog.Int("applied", len(applied)))
		return nil
	}

	for _, m := range plan {
		start := time.Now()
		if err := apply(ctx, db, m, direction); err != nil {
			return err
		}
		logger.Info("migration_applied",
			slog.String("version", m.Version),
			slog.String("direction", direction),
			slog.Duration("duration", time.Since(start)),
		)
	}

	return nil
}

// loadMigrations pairs up/down files by their numeric prefix, sorted ascending.
func loadMigrations(dir string) ([]migration, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	byVersion := make(map[string]*migration)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()

		var suffix string
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			suffix = ".up.sql"
		case strings.HasSuffix(name, ".down.sql"):
			suffix = ".down.sql"
		default:
			continue
		}

		version, _, ok := strings.Cut(name, "_")
		if !ok || version == "" {
			return nil, fmt.Errorf("migration %s: missing version prefix", name)
		}

		m, exists := byVersion[version]
		if !exists {
			m = &migration{Version: version}
			byVersion[version] = m
		}
		path := filepath.Join(dir, name)
		if suffix == ".up.sql" {
			m.Up = path
		} else {
			m.Down = path
		}
	}

	migrations := make([]migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.Up == "" {
			return nil, fmt.Errorf("migration %s: missing up file", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func appliedVersions(ctx context.Context, db *sql.DB) (map[string]bool, error) {
	rows, err := db.QueryContext(ctx, `SELECT version FROM `+pq.QuoteIdentifier(schemaTable))
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan applied migration: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// pendingUp returns unapplied migrations oldest first.
func pendingUp(all []migration, applied map[string]bool) []migration {
	var out []migration
	for _, m := range all {
		if !applied[m.Version] {
			out = append(out, m)
		}
	}
	return out
}

// pendingDown returns applied migrations newest first.
func pendingDown(all []migration, applied map[string]bool) []migration {
	var out []migration
	for i := len(all) - 1; i >= 0; i-- {
		if applied[all[i].Version] {
			out = append(out, all[i])
		}
	}
	return out
}

func apply(ctx context.Context, db *sql.DB, m migration, direction string) error {
	path := m.Up
	if direction == "down" {
		path = m.Down
	}
	if path == "" {
		return fmt.Errorf("migration %s: no %s file", m.Version, direction)
	}

	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin %s: %w", m.Version, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) {
			return fmt.Errorf("apply %s: %s (%s)", filepath.Base(path), pqErr.Message, pqErr.Code)
		}
		return fmt.Errorf("apply %s: %w", filepath.Base(path), err)
	}

	if direction == "up" {
		_, err = tx.ExecContext(ctx, `INSERT INTO `+pq.QuoteIdentifier(schemaTable)+` (version) VALUES ($1)`, m.Version)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM `+pq.QuoteIdentifier(schemaTable)+` WHERE version = $1`, m.Version)
	}
	if err != nil {
		return fmt.Errorf("record %s: %w", m.Version, err)
	}

	return tx.Commit()
}
