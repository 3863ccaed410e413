package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

func seedManager(t *testing.T, db database.PGXDB, username string) *models.Manager {
	t.Helper()

	m := &models.Manager{
		Username: username,
		Password: "secret",
		Name:     "Karim",
		MessName: "Green House",
		Year:     2026,
		Month:    "January",
		MealRate: dec("12.5"),
	}
	require.NoError(t, NewManagerRepository(db).Create(context.Background(), m))
	return m
}
