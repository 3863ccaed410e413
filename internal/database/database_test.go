package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConnect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, url := range map[string]string{
		"bad scheme":       "invalid://connection",
		"unreachable host": "postgres://localhost:59999/mess?connect_timeout=1",
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			pool, err := Connect(ctx, url)
			require.Error(t, err)
			require.Nil(t, pool)
		})
	}
}

func TestTestTxIsolation(t *testing.T) {
	ctx := context.Background()
	pool := TestPool(t)
	require.Same(t, pool, TestPool(t))

	tx := TestTx(t)
	_, err := tx.Exec(ctx, `INSERT INTO managers (username, password, year, month) VALUES ('tx-only', 'pw', 2026, 'May')`)
	require.NoError(t, err)

	var inTx, outside int
	require.NoError(t, tx.QueryRow(ctx, `SELECT COUNT(*) FROM managers WHERE username = 'tx-only'`).Scan(&inTx))
	require.NoError(t, pool.QueryRow(ctx, `SELECT COUNT(*) FROM managers WHERE username = 'tx-only'`).Scan(&outside))
	require.Equal(t, 1, inTx)
	require.Zero(t, outside)
}
