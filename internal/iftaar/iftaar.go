// Package iftaar summarises the separate Ramadan iftaar fund.
package iftaar

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// Summary is the state of the iftaar fund.
type Summary struct {
	TotalDeposits decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	NextBazaar    *models.IftaarBazaarSchedule
}

// Summarize totals the fund. NextBazaar is the earliest schedule dated
// today or later, or nil when none is left.
func Summarize(
	deposits []models.IftaarDeposit,
	expenses []models.IftaarExpense,
	schedules []models.IftaarBazaarSchedule,
	today time.Time,
) Summary {
	var s Summary
	for i := range deposits {
		s.TotalDeposits = s.TotalDeposits.Add(deposits[i].Amount)
	}
	for i := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(expenses[i].Amount)
	}
	s.Balance = s.TotalDeposits.Sub(s.TotalExpenses)
	s.NextBazaar = NextBazaar(schedules, today)
	return s
}

// NextBazaar returns the earliest schedule on or after today's date.
// Dates are compared as YYYY-MM-DD strings.
func NextBazaar(schedules []models.IftaarBazaarSchedule, today time.Time) *models.IftaarBazaarSchedule {
	todayStr := today.Format(models.DateLayout)

	upcoming := make([]models.IftaarBazaarSchedule, 0, len(schedules))
	for _, s := range schedules {
		if s.Date >= todayStr {
			upcoming = append(upcoming, s)
		}
	}
	if len(upcoming) == 0 {
		return nil
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		return upcoming[i].Date < upcoming[j].Date
	})
	next := upcoming[0]
	return &next
}

// DepositsByName totals contributions per contributor name.
func DepositsByName(deposits []models.IftaarDeposit) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, d := range deposits {
		totals[d.Name] = totals[d.Name].Add(d.Amount)
	}
	return totals
}
