//go:build integration

package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/imaginify/imaginify/internal/testutil"
)

func TestIntegrationMigration_ApplyAllTables(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	for _, table := range []string{"users", "images", "transactions"} {
		t.Run(table, func(t *testing.T) {
			exists, err := tableExists(ctx, pool, table)
			if err != nil {
				t.Fatalf("tableExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Table %q should exist after migrations", table)
			}
		})
	}
}

func TestIntegrationMigration_TableColumns(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	columns := map[string][]string{
		"users": {
			"id", "clerk_id", "email", "username", "photo", "first_name", "last_name",
			"plan_id", "credit_balance", "created_at", "updated_at",
		},
		"images": {
			"id", "title", "transformation_type", "public_id", "secure_url", "width", "height",
			"config", "transformation_url", "aspect_ratio", "color", "prompt", "author_id",
			"created_at", "updated_at",
		},
		"transactions": {
			"id", "stripe_id", "amount", "plan", "credits", "buyer_id", "created_at",
		},
	}

	for table, cols := range columns {
		for _, col := range cols {
			exists, err := columnExists(ctx, pool, table, col)
			if err != nil {
				t.Fatalf("columnExists failed: %v", err)
			}
			if !exists {
				t.Errorf("Column %q should exist in %s table", col, table)
			}
		}
	}
}

func TestIntegrationMigration_UserDefaults(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	var planID, credits int
	err := pool.QueryRow(ctx, `
		INSERT INTO users (id, clerk_id, email)
		VALUES ('u1', 'user_defaults', 'defaults@example.com')
		RETURNING plan_id, credit_balance
	`).Scan(&planID, &credits)
	if err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if planID != 1 || credits != 10 {
		t.Errorf("defaults = plan %d, credits %d; want 1, 10", planID, credits)
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, clerk_id, email)
		VALUES ('u2', 'user_defaults', 'other@example.com')
	`)
	if err == nil {
		t.Error("Expected unique violation for duplicate clerk_id")
	}
}

func TestIntegrationMigration_DeletingAuthorKeepsImages(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	if _, err := pool.Exec(ctx, `INSERT INTO users (id, clerk_id, email) VALUES ('u1', 'author', 'a@example.com')`); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	if _, err := pool.Exec(ctx, `
		INSERT INTO images (id, title, transformation_type, public_id, secure_url, author_id)
		VALUES ('i1', 'Sunset', 'restore', 'pub', 'https://res.example.com/s.png', 'u1')
	`); err != nil {
		t.Fatalf("insert image: %v", err)
	}
	if _, err := pool.Exec(ctx, `DELETE FROM users WHERE id = 'u1'`); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	var authorID *string
	if err := pool.QueryRow(ctx, `SELECT author_id FROM images WHERE id = 'i1'`).Scan(&authorID); err != nil {
		t.Fatalf("select image: %v", err)
	}
	if authorID != nil {
		t.Errorf("author_id = %q, want NULL", *authorID)
	}
}

func TestIntegrationMigration_RollbackTransactions(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	applyMigrationFile(t, ctx, pool, "000003_transactions.down.sql")

	exists, err := tableExists(ctx, pool, "transactions")
	if err != nil {
		t.Fatalf("tableExists failed: %v", err)
	}
	if exists {
		t.Error("transactions table should not exist after rollback")
	}

	applyMigrationFile(t, ctx, pool, "000003_transactions.up.sql")
}

func TestIntegrationMigration_Idempotency(t *testing.T) {
	ctx, pool := newMigrationTestEnv(t)

	// Every up file uses IF NOT EXISTS.
	applyMigrationFile(t, ctx, pool, "000001_users.up.sql")
	applyMigrationFile(t, ctx, pool, "000002_images.up.sql")
	applyMigrationFile(t, ctx, pool, "000003_transactions.up.sql")
}

func applyMigrationFile(t *testing.T, ctx context.Context, pool *pgxpool.Pool, name string) {
	t.Helper()

	root, err := testutil.ProjectRoot()
	if err != nil {
		t.Fatalf("ProjectRoot failed: %v", err)
	}

	sql, err := os.ReadFile(filepath.Join(root, "migrations", name))
	if err != nil {
		t.Fatalf("read %s: %v", name, err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		t.Fatalf("apply %s: %v", name, err)
	}
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, tableName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.tables
			WHERE table_schema = 'public'
			AND table_name = $1
		)
	`, tableName).Scan(&exists)
	return exists, err
}

func columnExists(ctx context.Context, pool *pgxpool.Pool, tableName, columnName string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT FROM information_schema.columns
			WHERE table_schema = 'public'
			AND table_name = $1
			AND column_name = $2
		)
	`, tableName, columnName).Scan(&exists)
	return exists, err
}

func newMigrationTestEnv(t *testing.T) (context.Context, *pgxpool.Pool) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	unlock, err := testutil.AcquireDBLock(ctx, pool)
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, pool); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return ctx, pool
}
