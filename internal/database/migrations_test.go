package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRunMigrations(t *testing.T) {
	pool := TestPool(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, pool))

	for _, table := range Tables {
		var exists bool
		err := pool.QueryRow(ctx, `
			SELECT EXISTS (
				SELECT FROM information_schema.tables
				WHERE table_name = $1
			)
		`, table).Scan(&exists)
		require.NoError(t, err)
		require.True(t, exists, "table %s should exist", table)
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	pool := TestPool(t)
	ctx := context.Background()

	require.NoError(t, RunMigrations(ctx, pool))
	require.NoError(t, RunMigrations(ctx, pool))

	var count int
	err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM managers").Scan(&count)
	require.NoError(t, err)
}

func TestRunMigrations_Constraints(t *testing.T) {
	db := TestTx(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, `INSERT INTO managers (username, password, year, month) VALUES ('mgr', 'pw', 2026, 'January')`)
	require.NoError(t, err)

	t.Run("json columns default to empty documents", func(t *testing.T) {
		var daily, schedule, rules string
		err := db.QueryRow(ctx, `
			SELECT system_daily::text, bazaar_schedule::text, auto_rice_rules::text
			FROM managers WHERE username = 'mgr'
		`).Scan(&daily, &schedule, &rules)
		require.NoError(t, err)
		require.Equal(t, "{}", daily)
		require.Equal(t, "{}", schedule)
		require.Equal(t, "[]", rules)
	})

	t.Run("expense type is restricted", func(t *testing.T) {
		_, err := db.Exec(ctx, "SAVEPOINT bad_type")
		require.NoError(t, err)
		_, err = db.Exec(ctx, `
			INSERT INTO expenses (id, manager_id, date, amount, type)
			VALUES ('e1', 'mgr', '2026-01-02', 10, 'misc')
		`)
		require.Error(t, err)
		_, err = db.Exec(ctx, "ROLLBACK TO SAVEPOINT bad_type")
		require.NoError(t, err)
	})

	t.Run("boarder requires an existing manager", func(t *testing.T) {
		_, err := db.Exec(ctx, "SAVEPOINT bad_manager")
		require.NoError(t, err)
		_, err = db.Exec(ctx, `INSERT INTO boarders (id, manager_id, name) VALUES ('b1', 'ghost', 'Rahim')`)
		require.Error(t, err)
		_, err = db.Exec(ctx, "ROLLBACK TO SAVEPOINT bad_manager")
		require.NoError(t, err)
	})
}

func TestTruncateMesses(t *testing.T) {
	db := TestTx(t)
	ctx := context.Background()

	_, err := db.Exec(ctx, `
		INSERT INTO managers (username, password, year, month)
		VALUES ('cleanup-mgr', 'pw', 2026, 'March')
		ON CONFLICT (username) DO NOTHING
	`)
	require.NoError(t, err)

	TruncateMesses(t, db)

	var count int
	err = db.QueryRow(ctx, "SELECT COUNT(*) FROM managers").Scan(&count)
	require.NoError(t, err)
	require.Zero(t, count)
}
