package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

func sampleBoarders() []models.Boarder {
	return []models.Boarder{
		{
			ID:           "b1",
			Name:         "Rahim",
			Deposits:     []models.Deposit{{ID: "d1", Amount: dec("1000")}},
			RiceDeposits: []models.RiceDeposit{{ID: "r1", Amount: dec("10")}},
			DailyUsage:   usage("3", "3", "2"),
			ExtraCost:    dec("50"),
		},
		{
			ID:           "b2",
			Name:         "Karim",
			Deposits:     []models.Deposit{{ID: "d2", Amount: dec("200")}},
			RiceDeposits: []models.RiceDeposit{{ID: "r2", Amount: dec("4")}},
			DailyUsage: map[int]models.DailyUsage{
				1: {Meals: dec("2"), Rice: dec("3")},
				2: {Meals: dec("3"), Rice: dec("4")},
			},
			GuestCost: dec("40"),
		},
	}
}

func sampleExpenses() []models.Expense {
	return []models.Expense{
		{ID: "e1", Amount: dec("400"), Type: models.ExpenseTypeMarket},
		{ID: "e2", Amount: dec("250.50"), Type: models.ExpenseTypeMarket},
		{ID: "e3", Amount: dec("60"), Type: models.ExpenseTypeExtra},
	}
}

func TestSumExpenses(t *testing.T) {
	t.Parallel()

	market, extra := SumExpenses(sampleExpenses())
	requireDecimal(t, "650.50", market)
	requireDecimal(t, "60", extra)

	market, extra = SumExpenses(nil)
	requireDecimal(t, "0", market)
	requireDecimal(t, "0", extra)
}

func TestAggregate(t *testing.T) {
	t.Parallel()

	t.Run("exclude policy", func(t *testing.T) {
		t.Parallel()
		m := Aggregate(sampleBoarders(), dec("45"), sampleExpenses(), dec("2.5"), PolicyExclude)

		require.Len(t, m.Boarders, 2)
		require.Equal(t, "b1", m.Boarders[0].BoarderID)
		require.Equal(t, "b2", m.Boarders[1].BoarderID)

		// b1: 8 meals * 45 = 360 + 50 extra = 410, balance +590.
		requireDecimal(t, "410", m.Boarders[0].TotalCost)
		// b2: 5 meals * 45 = 225 + 40 guest = 265, balance -65.
		requireDecimal(t, "265", m.Boarders[1].TotalCost)

		requireDecimal(t, "1200", m.TotalDeposit)
		requireDecimal(t, "13", m.TotalMeals)
		requireDecimal(t, "585", m.TotalMealCost)
		requireDecimal(t, "90", m.TotalPersonal)
		requireDecimal(t, "675", m.TotalCost)
		requireDecimal(t, "65", m.TotalReceivable)
		requireDecimal(t, "590", m.TotalRefundable)

		requireDecimal(t, "650.50", m.MarketCost)
		requireDecimal(t, "60", m.ExtraCost)
		requireDecimal(t, "710.50", m.ExpenseTotal())
		requireDecimal(t, "489.50", m.CashInHand)
	})

	t.Run("previous rice balance is applied once at mess level", func(t *testing.T) {
		t.Parallel()
		m := Aggregate(sampleBoarders(), dec("45"), nil, dec("2.5"), PolicyExclude)

		requireDecimal(t, "14", m.TotalRiceDeposit)
		requireDecimal(t, "7", m.TotalRiceEaten)
		requireDecimal(t, "9.5", m.RiceStock)

		perBoarder := decimal.Zero
		for _, b := range m.Boarders {
			perBoarder = perBoarder.Add(b.RiceBalance)
		}
		requireDecimal(t, "7", perBoarder)
	})

	t.Run("share policy splits extra between boarders", func(t *testing.T) {
		t.Parallel()
		m := Aggregate(sampleBoarders(), dec("45"), sampleExpenses(), decimal.Zero, PolicyShareEqually)

		requireDecimal(t, "30", m.Boarders[0].SharedExtra)
		requireDecimal(t, "30", m.Boarders[1].SharedExtra)
		requireDecimal(t, "735", m.TotalCost)
		// Cash in hand does not depend on the policy.
		requireDecimal(t, "489.50", m.CashInHand)
	})

	t.Run("empty policy falls back to default", func(t *testing.T) {
		t.Parallel()
		m := Aggregate(nil, dec("45"), nil, decimal.Zero, "")
		require.Equal(t, DefaultPolicy, m.Policy)
		require.Empty(t, m.Boarders)
		requireDecimal(t, "0", m.CashInHand)
	})
}
