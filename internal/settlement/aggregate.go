package settlement

import (
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// MessSettlement is the mess-wide view of a reporting month.
type MessSettlement struct {
	Policy   Policy
	MealRate decimal.Decimal
	Boarders []BoarderSettlement

	TotalDeposit     decimal.Decimal
	TotalRiceDeposit decimal.Decimal
	TotalMeals       decimal.Decimal
	TotalRiceEaten   decimal.Decimal
	TotalMealCost    decimal.Decimal
	TotalPersonal    decimal.Decimal // extra + guest costs charged to boarders
	TotalCost        decimal.Decimal
	TotalReceivable  decimal.Decimal
	TotalRefundable  decimal.Decimal

	MarketCost      decimal.Decimal
	ExtraCost       decimal.Decimal
	CashInHand      decimal.Decimal
	PrevRiceBalance decimal.Decimal
	RiceStock       decimal.Decimal
}

// ExpenseTotal is market plus extra spending.
func (m *MessSettlement) ExpenseTotal() decimal.Decimal {
	return m.MarketCost.Add(m.ExtraCost)
}

// SumExpenses splits expenses into market and extra totals.
func SumExpenses(expenses []models.Expense) (market, extra decimal.Decimal) {
	for i := range expenses {
		if expenses[i].IsMarket() {
			market = market.Add(expenses[i].Amount)
		} else {
			extra = extra.Add(expenses[i].Amount)
		}
	}
	return market, extra
}

// Aggregate computes every boarder's settlement plus the mess-wide totals.
// prevRiceBalance is added to the rice stock here and nowhere else.
func Aggregate(
	boarders []models.Boarder,
	mealRate decimal.Decimal,
	expenses []models.Expense,
	prevRiceBalance decimal.Decimal,
	policy Policy,
) MessSettlement {
	if policy == "" {
		policy = DefaultPolicy
	}

	market, extra := SumExpenses(expenses)
	opts := Options{
		Policy:           policy,
		SharedExtraTotal: extra,
		BoarderCount:     len(boarders),
	}

	m := MessSettlement{
		Policy:          policy,
		MealRate:        mealRate,
		Boarders:        make([]BoarderSettlement, 0, len(boarders)),
		MarketCost:      market,
		ExtraCost:       extra,
		PrevRiceBalance: prevRiceBalance,
	}

	for i := range boarders {
		s := Calculate(&boarders[i], mealRate, opts)
		m.Boarders = append(m.Boarders, s)

		m.TotalDeposit = m.TotalDeposit.Add(s.TotalDeposit)
		m.TotalRiceDeposit = m.TotalRiceDeposit.Add(s.TotalRiceDeposit)
		m.TotalMeals = m.TotalMeals.Add(s.MealsEaten)
		m.TotalRiceEaten = m.TotalRiceEaten.Add(s.RiceEaten)
		m.TotalMealCost = m.TotalMealCost.Add(s.MealCost)
		m.TotalPersonal = m.TotalPersonal.Add(s.ExtraCost).Add(s.GuestCost)
		m.TotalCost = m.TotalCost.Add(s.TotalCost)
		m.TotalReceivable = m.TotalReceivable.Add(s.Receivable())
		m.TotalRefundable = m.TotalRefundable.Add(s.Refundable())
	}

	m.CashInHand = m.TotalDeposit.Sub(market.Add(extra))
	m.RiceStock = m.TotalRiceDeposit.Sub(m.TotalRiceEaten).Add(prevRiceBalance)

	return m
}
