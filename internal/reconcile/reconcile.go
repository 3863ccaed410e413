package reconcile

import (
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// DayComparison lines up both ledgers for one day of the month.
type DayComparison struct {
	Day          int
	BoarderMeals decimal.Decimal
	BoarderRice  decimal.Decimal
	SystemMeals  decimal.Decimal
	SystemRice   decimal.Decimal
}

// MealDiff is system meals minus boarder meals.
func (d DayComparison) MealDiff() decimal.Decimal {
	return d.SystemMeals.Sub(d.BoarderMeals)
}

// RiceDiff is system rice minus boarder rice.
func (d DayComparison) RiceDiff() decimal.Decimal {
	return d.SystemRice.Sub(d.BoarderRice)
}

// Matches reports whether both ledgers agree for the day.
func (d DayComparison) Matches() bool {
	return d.MealDiff().IsZero() && d.RiceDiff().IsZero()
}

// Report is the month's reconciliation. It is recomputed on every read.
type Report struct {
	Days         []DayComparison
	BoarderMeals decimal.Decimal
	BoarderRice  decimal.Decimal
	SystemMeals  decimal.Decimal
	SystemRice   decimal.Decimal
}

// MealDiscrepancy is positive when the cook's ledger counts more meals
// than the boarders reported.
func (r *Report) MealDiscrepancy() decimal.Decimal {
	return r.SystemMeals.Sub(r.BoarderMeals)
}

// RiceDiscrepancy is system rice minus boarder rice for the month.
func (r *Report) RiceDiscrepancy() decimal.Decimal {
	return r.SystemRice.Sub(r.BoarderRice)
}

// Balanced reports whether the two ledgers agree for the whole month.
// A mismatch is only a warning and never blocks anything.
func (r *Report) Balanced() bool {
	return r.MealDiscrepancy().IsZero() && r.RiceDiscrepancy().IsZero()
}

// MismatchedDays returns the days on which the ledgers disagree.
func (r *Report) MismatchedDays() []DayComparison {
	var out []DayComparison
	for _, d := range r.Days {
		if !d.Matches() {
			out = append(out, d)
		}
	}
	return out
}

// BoarderDayTotals sums every boarder's usage per day.
func BoarderDayTotals(boarders []models.Boarder) map[int]models.DailyUsage {
	totals := make(map[int]models.DailyUsage)
	for i := range boarders {
		for day, u := range boarders[i].DailyUsage {
			t := totals[day]
			t.Meals = t.Meals.Add(u.Meals)
			t.Rice = t.Rice.Add(u.Rice)
			totals[day] = t
		}
	}
	return totals
}

// Compare builds the reconciliation report for days 1..daysInMonth.
// Entries keyed outside that range still count towards the month totals.
func Compare(boarders []models.Boarder, systemDaily map[int]models.SystemDailyEntry, daysInMonth int) Report {
	boarderTotals := BoarderDayTotals(boarders)

	var r Report
	r.Days = make([]DayComparison, 0, daysInMonth)
	for day := 1; day <= daysInMonth; day++ {
		bt := boarderTotals[day]
		st := DayTotal(systemDaily[day])
		r.Days = append(r.Days, DayComparison{
			Day:          day,
			BoarderMeals: bt.Meals,
			BoarderRice:  bt.Rice,
			SystemMeals:  st.Meal,
			SystemRice:   st.Rice,
		})
	}

	for _, u := range boarderTotals {
		r.BoarderMeals = r.BoarderMeals.Add(u.Meals)
		r.BoarderRice = r.BoarderRice.Add(u.Rice)
	}
	for _, e := range systemDaily {
		t := DayTotal(e)
		r.SystemMeals = r.SystemMeals.Add(t.Meal)
		r.SystemRice = r.SystemRice.Add(t.Rice)
	}

	return r
}
