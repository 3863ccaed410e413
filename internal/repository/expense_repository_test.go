package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

func TestExpenseRepository(t *testing.T) {
	tx := database.TestTx(t)
	ctx := context.Background()
	repo := NewExpenseRepository(tx)
	seedManager(t, tx, "mgr")

	late := &models.Expense{ManagerID: "mgr", Date: "2026-01-20", Shopper: "Jamal", Amount: dec("300"), Type: models.ExpenseTypeMarket}
	early := &models.Expense{ManagerID: "mgr", Date: "2026-01-03", Shopper: "Rafiq", Amount: dec("50.25"), Type: models.ExpenseTypeExtra}
	require.NoError(t, repo.Create(ctx, late))
	require.NoError(t, repo.Create(ctx, early))

	t.Run("list is sorted by date", func(t *testing.T) {
		list, err := repo.ListByManager(ctx, "mgr")
		require.NoError(t, err)
		require.Len(t, list, 2)
		require.Equal(t, early.ID, list[0].ID)
		require.True(t, dec("50.25").Equal(list[0].Amount))
	})

	t.Run("partial update", func(t *testing.T) {
		require.NoError(t, repo.Update(ctx, late.ID, ExpensePatch{Amount: ptr(dec("320"))}))

		e, err := repo.GetByID(ctx, late.ID)
		require.NoError(t, err)
		require.True(t, dec("320").Equal(e.Amount))
		require.Equal(t, "Jamal", e.Shopper)
	})

	t.Run("empty patch on missing expense returns ErrNotFound", func(t *testing.T) {
		require.ErrorIs(t, repo.Update(ctx, "missing", ExpensePatch{}), ErrNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, early.ID))
		_, err := repo.GetByID(ctx, early.ID)
		require.ErrorIs(t, err, ErrNotFound)

		n, err := repo.DeleteByManager(ctx, "mgr")
		require.NoError(t, err)
		require.Equal(t, 1, n)
	})
}
