package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManagerMonthIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		month string
		want  int
	}{
		{"January", 0},
		{"February", 1},
		{"December", 11},
		{"january", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.month, func(t *testing.T) {
			t.Parallel()
			m := &Manager{Month: tt.month}
			require.Equal(t, tt.want, m.MonthIndex())
		})
	}
}

func TestBazaarShiftHasShopper(t *testing.T) {
	t.Parallel()

	shift := BazaarShift{
		Date:     5,
		Shoppers: []Shopper{{ID: "b1", Name: "Rahim"}},
	}

	require.True(t, shift.HasShopper("b1"))
	require.False(t, shift.HasShopper("b2"))
	require.False(t, BazaarShift{}.HasShopper("b1"))
}

func TestExpenseIsMarket(t *testing.T) {
	t.Parallel()

	require.True(t, (&Expense{Type: ExpenseTypeMarket}).IsMarket())
	require.False(t, (&Expense{Type: ExpenseTypeExtra}).IsMarket())
}

func TestBotSessionIsManager(t *testing.T) {
	t.Parallel()

	var nilSession *BotSession
	require.False(t, nilSession.IsManager())
	require.True(t, (&BotSession{Role: RoleManager}).IsManager())
	require.False(t, (&BotSession{Role: RoleBoarder}).IsManager())
}
