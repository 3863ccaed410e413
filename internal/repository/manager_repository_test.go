package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

func TestManagerRepository_CreateAndGet(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewManagerRepository(tx)

	created := seedManager(t, tx, "karim")
	require.False(t, created.CreatedAt.IsZero())

	t.Run("reads back defaults", func(t *testing.T) {
		m, err := repo.GetByUsername(ctx, "karim")
		require.NoError(t, err)
		require.Equal(t, "Green House", m.MessName)
		require.True(t, dec("12.5").Equal(m.MealRate))
		require.Nil(t, m.RiceConfig)
		require.Nil(t, m.IftaarConfig)
		require.Empty(t, m.SystemDaily)
		require.Empty(t, m.BazaarSchedule)
		require.Empty(t, m.AutoRiceRules)
	})

	t.Run("duplicate username fails", func(t *testing.T) {
		_, err := tx.Exec(ctx, "SAVEPOINT dup")
		require.NoError(t, err)
		err = repo.Create(ctx, &models.Manager{Username: "karim", Password: "x", Year: 2026, Month: "May"})
		require.Error(t, err)
		_, err = tx.Exec(ctx, "ROLLBACK TO SAVEPOINT dup")
		require.NoError(t, err)
	})

	t.Run("unknown username returns ErrNotFound", func(t *testing.T) {
		_, err := repo.GetByUsername(ctx, "nobody")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManagerRepository_Update(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewManagerRepository(tx)
	seedManager(t, tx, "rahim")

	t.Run("writes only present fields", func(t *testing.T) {
		err := repo.Update(ctx, "rahim", ManagerPatch{
			MealRate: ptr(dec("40")),
			RiceConfig: &models.RiceConfig{
				MorningDiff: dec("-2"), LunchDiff: dec("2"), DinnerDiff: dec("0"),
			},
			SystemDaily: map[int]models.SystemDailyEntry{
				3: {Lunch: models.DayShift{Meal: dec("10"), Rice: dec("12")}},
			},
			BazaarSchedule: map[int]models.BazaarShift{
				5: {Date: 5, Shoppers: []models.Shopper{{ID: "b1", Name: "Jamal"}}},
			},
		})
		require.NoError(t, err)

		m, err := repo.GetByUsername(ctx, "rahim")
		require.NoError(t, err)
		require.True(t, dec("40").Equal(m.MealRate))
		require.Equal(t, "Green House", m.MessName)
		require.NotNil(t, m.RiceConfig)
		require.True(t, dec("-2").Equal(m.RiceConfig.MorningDiff))
		require.True(t, dec("12").Equal(m.SystemDaily[3].Lunch.Rice))
		require.Equal(t, "Jamal", m.BazaarSchedule[5].Shoppers[0].Name)
	})

	t.Run("empty map clears the document", func(t *testing.T) {
		err := repo.Update(ctx, "rahim", ManagerPatch{BazaarSchedule: map[int]models.BazaarShift{}})
		require.NoError(t, err)

		m, err := repo.GetByUsername(ctx, "rahim")
		require.NoError(t, err)
		require.Empty(t, m.BazaarSchedule)
		require.NotEmpty(t, m.SystemDaily)
	})

	t.Run("missing manager returns ErrNotFound", func(t *testing.T) {
		err := repo.Update(ctx, "ghost", ManagerPatch{Name: ptr("x")})
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestManagerRepository_Delete(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewManagerRepository(tx)
	seedManager(t, tx, "salma")

	require.NoError(t, repo.Delete(ctx, "salma"))
	_, err := repo.GetByUsername(ctx, "salma")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, "salma"), ErrNotFound)
}

func TestManagerPatch_Apply(t *testing.T) {
	t.Parallel()

	m := &models.Manager{Name: "old", Month: "March"}
	ManagerPatch{
		Name:            ptr("new"),
		AutoRiceEnabled: ptr(true),
		AutoRiceRules:   []models.AutoRiceRule{{Meal: dec("10"), Rice: dec("12")}},
	}.Apply(m)

	require.Equal(t, "new", m.Name)
	require.Equal(t, "March", m.Month)
	require.True(t, m.AutoRiceEnabled)
	require.Len(t, m.AutoRiceRules, 1)
}
