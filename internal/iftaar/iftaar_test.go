package iftaar

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.February, 25, 18, 30, 0, 0, time.UTC)
	deposits := []models.IftaarDeposit{
		{Name: "Rahim", Amount: decimal.NewFromInt(500)},
		{Name: "Karim", Amount: decimal.NewFromInt(300)},
	}
	expenses := []models.IftaarExpense{
		{Shopper: "Rahim", Amount: decimal.NewFromInt(450)},
	}
	schedules := []models.IftaarBazaarSchedule{
		{ID: "s1", Shopper: "Karim", Date: "2026-02-28"},
		{ID: "s2", Shopper: "Rahim", Date: "2026-02-24"},
		{ID: "s3", Shopper: "Salam", Date: "2026-02-25"},
	}

	s := Summarize(deposits, expenses, schedules, today)

	require.True(t, s.TotalDeposits.Equal(decimal.NewFromInt(800)))
	require.True(t, s.TotalExpenses.Equal(decimal.NewFromInt(450)))
	require.True(t, s.Balance.Equal(decimal.NewFromInt(350)))
	require.NotNil(t, s.NextBazaar)
	require.Equal(t, "s3", s.NextBazaar.ID)
}

func TestNextBazaar(t *testing.T) {
	t.Parallel()

	today := time.Date(2026, time.March, 21, 0, 0, 0, 0, time.UTC)

	t.Run("none left", func(t *testing.T) {
		t.Parallel()
		past := []models.IftaarBazaarSchedule{{Date: "2026-03-20"}}
		require.Nil(t, NextBazaar(past, today))
		require.Nil(t, NextBazaar(nil, today))
	})

	t.Run("earliest upcoming", func(t *testing.T) {
		t.Parallel()
		s := []models.IftaarBazaarSchedule{{ID: "a", Date: "2026-03-30"}, {ID: "b", Date: "2026-03-22"}}
		next := NextBazaar(s, today)
		require.NotNil(t, next)
		require.Equal(t, "b", next.ID)
	})
}

func TestDepositsByName(t *testing.T) {
	t.Parallel()

	totals := DepositsByName([]models.IftaarDeposit{
		{Name: "Rahim", Amount: decimal.NewFromInt(100)},
		{Name: "Rahim", Amount: decimal.NewFromInt(50)},
		{Name: "Karim", Amount: decimal.NewFromInt(70)},
	})
	require.Len(t, totals, 2)
	require.True(t, totals["Rahim"].Equal(decimal.NewFromInt(150)))
}
