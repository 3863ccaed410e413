package settlement

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"pgregory.net/rapid"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func requireDecimal(t require.TestingT, want string, got decimal.Decimal, msgAndArgs ...any) {
	if h, ok := t.(interface{ Helper() }); ok {
		h.Helper()
	}
	require.True(t, got.Equal(dec(want)), append([]any{"want %s, got %s", want, got.String()}, msgAndArgs...)...)
}

func usage(meals ...string) map[int]models.DailyUsage {
	m := make(map[int]models.DailyUsage, len(meals))
	for i, v := range meals {
		m[i+1] = models.DailyUsage{Meals: dec(v)}
	}
	return m
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyExclude, false},
		{"exclude", PolicyExclude, false},
		{"share_equally", PolicyShareEqually, false},
		{"split", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestMealCost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		meals string
		rate  string
		want  string
	}{
		{"half rounds up", "7", "12.5", "88"},
		{"below half rounds down", "7", "12.4", "87"},
		{"zero meals at any rate", "0", "55.75", "0"},
		{"zero rate", "30", "0", "0"},
		{"fractional meals", "2.5", "40", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			requireDecimal(t, tt.want, MealCost(dec(tt.meals), dec(tt.rate)))
		})
	}
}

func TestCalculate(t *testing.T) {
	t.Parallel()

	t.Run("rounds the monthly total once, not per day", func(t *testing.T) {
		t.Parallel()
		b := &models.Boarder{DailyUsage: usage("1", "1", "1")}
		s := Calculate(b, dec("12.5"), Options{})

		// Per-day rounding would give 13+13+13 = 39.
		requireDecimal(t, "38", s.MealCost)
	})

	t.Run("boarder owes when deposits fall short", func(t *testing.T) {
		t.Parallel()
		b := &models.Boarder{
			Deposits:   []models.Deposit{{ID: "d1", Amount: dec("300")}, {ID: "d2", Amount: dec("200")}},
			DailyUsage: usage("10", "10", "10", "10"),
			ExtraCost:  dec("20"),
		}
		// 40 meals * 15 = 600, plus 20 extra = 620.
		s := Calculate(b, dec("15"), Options{})

		requireDecimal(t, "500", s.TotalDeposit)
		requireDecimal(t, "620", s.TotalCost)
		requireDecimal(t, "-120", s.MoneyBalance)
		requireDecimal(t, "120", s.Receivable())
		requireDecimal(t, "0", s.Refundable())
	})

	t.Run("manager returns surplus", func(t *testing.T) {
		t.Parallel()
		b := &models.Boarder{
			Deposits:   []models.Deposit{{ID: "d1", Amount: dec("700")}},
			DailyUsage: usage("20", "20"),
			GuestCost:  dec("20"),
		}
		s := Calculate(b, dec("15"), Options{})

		requireDecimal(t, "620", s.TotalCost)
		requireDecimal(t, "80", s.MoneyBalance)
		requireDecimal(t, "0", s.Receivable())
		requireDecimal(t, "80", s.Refundable())
	})

	t.Run("rice balance ignores previous mess balance", func(t *testing.T) {
		t.Parallel()
		b := &models.Boarder{
			RiceDeposits: []models.RiceDeposit{
				{ID: "r1", Amount: dec("5"), Type: models.RiceDepositTypeDeposit},
				{ID: "r2", Amount: dec("1.5"), Type: models.RiceDepositTypePreviousBalance},
			},
			DailyUsage: map[int]models.DailyUsage{
				3:  {Meals: dec("2"), Rice: dec("3")},
				17: {Meals: dec("2"), Rice: dec("4.5")},
			},
		}
		s := Calculate(b, dec("10"), Options{})

		requireDecimal(t, "6.5", s.TotalRiceDeposit)
		requireDecimal(t, "7.5", s.RiceEaten)
		requireDecimal(t, "-1", s.RiceBalance)
		requireDecimal(t, "1", s.RiceDue())
		requireDecimal(t, "0", s.RiceSurplus())
	})

	t.Run("empty boarder has zero everything", func(t *testing.T) {
		t.Parallel()
		s := Calculate(&models.Boarder{ID: "b1", Name: "New"}, dec("50"), Options{})

		require.Equal(t, "b1", s.BoarderID)
		requireDecimal(t, "0", s.MealCost)
		requireDecimal(t, "0", s.TotalCost)
		requireDecimal(t, "0", s.MoneyBalance)
		requireDecimal(t, "0", s.RiceBalance)
	})

	t.Run("shared extra only applies under share policy", func(t *testing.T) {
		t.Parallel()
		b := &models.Boarder{DailyUsage: usage("10")}

		excluded := Calculate(b, dec("10"), Options{Policy: PolicyExclude, SharedExtraTotal: dec("90"), BoarderCount: 3})
		requireDecimal(t, "0", excluded.SharedExtra)
		requireDecimal(t, "100", excluded.TotalCost)

		shared := Calculate(b, dec("10"), Options{Policy: PolicyShareEqually, SharedExtraTotal: dec("100"), BoarderCount: 3})
		requireDecimal(t, "33.33", shared.SharedExtra)
		requireDecimal(t, "133.33", shared.TotalCost)

		// Halves round away from zero.
		halves := Calculate(b, dec("10"), Options{Policy: PolicyShareEqually, SharedExtraTotal: dec("0.05"), BoarderCount: 2})
		requireDecimal(t, "0.03", halves.SharedExtra)
	})

	t.Run("share policy with no boarders adds nothing", func(t *testing.T) {
		t.Parallel()
		s := Calculate(&models.Boarder{}, dec("10"), Options{Policy: PolicyShareEqually, SharedExtraTotal: dec("100")})
		requireDecimal(t, "0", s.SharedExtra)
	})
}

func TestCalculateProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		days := rapid.IntRange(0, 31).Draw(t, "days")
		daily := make(map[int]models.DailyUsage, days)
		total := decimal.Zero
		for d := 1; d <= days; d++ {
			halves := rapid.IntRange(0, 8).Draw(t, "halves")
			meals := decimal.New(int64(halves*5), -1)
			daily[d] = models.DailyUsage{Meals: meals}
			total = total.Add(meals)
		}
		rate := decimal.New(rapid.Int64Range(0, 20000).Draw(t, "rateCents"), -2)
		deposit := decimal.New(rapid.Int64Range(0, 1_000_000).Draw(t, "depositCents"), -2)

		b := &models.Boarder{
			Deposits:   []models.Deposit{{ID: "d", Amount: deposit}},
			DailyUsage: daily,
		}
		s := Calculate(b, rate, Options{})

		require.True(t, s.MealCost.Equal(total.Mul(rate).Round(0)), "meal cost must be rounded once")
		require.True(t, s.MoneyBalance.Equal(s.TotalDeposit.Sub(s.TotalCost)))
		require.True(t, s.Receivable().Sub(s.Refundable()).Equal(s.MoneyBalance.Neg()))
	})
}
