package database

import (
	"context"
	"fmt"
)

// Tables lists every table in dependency order, parents first.
var Tables = []string{
	"managers",
	"boarders",
	"expenses",
	"iftaar_deposits",
	"iftaar_expenses",
	"iftaar_bazaar_schedules",
	"bot_sessions",
}

// RunMigrations creates the database schema. Nested ledgers (deposits,
// daily usage, the cook's ledger, the bazaar schedule) live in JSONB
// columns on their owning row so a partial update rewrites one column.
func RunMigrations(ctx context.Context, db PGXDB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS managers (
			username TEXT PRIMARY KEY,
			password TEXT NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			mess_name TEXT NOT NULL DEFAULT '',
			year INTEGER NOT NULL,
			month TEXT NOT NULL,
			mobile TEXT NOT NULL DEFAULT '',
			blood_group TEXT NOT NULL DEFAULT '',
			meal_rate NUMERIC NOT NULL DEFAULT 0,
			boarder_username TEXT NOT NULL DEFAULT '',
			boarder_password TEXT NOT NULL DEFAULT '',
			prev_rice_balance NUMERIC NOT NULL DEFAULT 0,
			rice_config JSONB,
			auto_rice_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			auto_rice_rules JSONB NOT NULL DEFAULT '[]',
			system_daily JSONB NOT NULL DEFAULT '{}',
			bazaar_schedule JSONB NOT NULL DEFAULT '{}',
			iftaar_config JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS boarders (
			id TEXT PRIMARY KEY,
			manager_id TEXT NOT NULL REFERENCES managers(username),
			name TEXT NOT NULL,
			mobile TEXT NOT NULL DEFAULT '',
			blood_group TEXT NOT NULL DEFAULT '',
			deposits JSONB NOT NULL DEFAULT '[]',
			rice_deposits JSONB NOT NULL DEFAULT '[]',
			daily_usage JSONB NOT NULL DEFAULT '{}',
			extra_cost NUMERIC NOT NULL DEFAULT 0,
			guest_cost NUMERIC NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_boarders_manager_id ON boarders(manager_id)`,

		`CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			manager_id TEXT NOT NULL REFERENCES managers(username),
			date TEXT NOT NULL,
			shopper TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			amount NUMERIC(12, 2) NOT NULL,
			type TEXT NOT NULL CHECK (type IN ('market', 'extra')),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_manager_id ON expenses(manager_id)`,

		`CREATE TABLE IF NOT EXISTS iftaar_deposits (
			id TEXT PRIMARY KEY,
			manager_id TEXT NOT NULL REFERENCES managers(username),
			name TEXT NOT NULL,
			amount NUMERIC(12, 2) NOT NULL,
			date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_iftaar_deposits_manager_id ON iftaar_deposits(manager_id)`,

		`CREATE TABLE IF NOT EXISTS iftaar_expenses (
			id TEXT PRIMARY KEY,
			manager_id TEXT NOT NULL REFERENCES managers(username),
			shopper TEXT NOT NULL,
			amount NUMERIC(12, 2) NOT NULL,
			date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_iftaar_expenses_manager_id ON iftaar_expenses(manager_id)`,

		`CREATE TABLE IF NOT EXISTS iftaar_bazaar_schedules (
			id TEXT PRIMARY KEY,
			manager_id TEXT NOT NULL REFERENCES managers(username),
			shopper TEXT NOT NULL,
			date TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_iftaar_bazaar_schedules_manager_id ON iftaar_bazaar_schedules(manager_id)`,

		`CREATE TABLE IF NOT EXISTS bot_sessions (
			user_id BIGINT PRIMARY KEY,
			role TEXT NOT NULL CHECK (role IN ('manager', 'boarder')),
			manager_username TEXT NOT NULL REFERENCES managers(username),
			boarder_id TEXT NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bot_sessions_manager ON bot_sessions(manager_username)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
