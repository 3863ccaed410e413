package database

import (
	"context"
	"os"
	"slices"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	testPool     *pgxpool.Pool
	testPoolOnce sync.Once
	testPoolErr  error
)

// TestPool returns the migrated pool shared by every integration test in
// the binary. Skips the test if TEST_DATABASE_URL is not set.
func TestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	testPoolOnce.Do(func() {
		ctx := context.Background()
		if testPool, testPoolErr = Connect(ctx, dbURL); testPoolErr != nil {
			return
		}
		testPoolErr = RunMigrations(ctx, testPool)
	})
	if testPoolErr != nil {
		t.Fatalf("failed to set up test database: %v", testPoolErr)
	}
	return testPool
}

// TestTx opens a transaction on the shared pool and rolls it back when the
// test ends, so a mess created in one test never leaks into another.
//
//	tx := database.TestTx(t)
//	managers := repository.NewManagerRepository(tx)
func TestTx(t *testing.T) PGXDB {
	t.Helper()

	tx, err := TestPool(t).Begin(context.Background())
	if err != nil {
		t.Fatalf("failed to begin transaction: %v", err)
	}
	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// TruncateMesses empties every table, children first.
func TruncateMesses(t *testing.T, db PGXDB) {
	t.Helper()

	ctx := context.Background()
	for _, table := range slices.Backward(Tables) {
		if _, err := db.Exec(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			t.Fatalf("failed to truncate %s: %v", table, err)
		}
	}
}
