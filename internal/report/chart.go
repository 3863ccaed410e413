package report

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-analyze/charts"
	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

// ErrNothingToChart is returned when a chart would have no data.
var ErrNothingToChart = errors.New("nothing to chart")

const unknownShopper = "Unknown"

// ExpenseChart creates a pie chart of spending per shopper, market and
// extra purchases shown as separate slices. Returns PNG bytes.
func ExpenseChart(expenses []models.Expense, period string) ([]byte, error) {
	if len(expenses) == 0 {
		return nil, fmt.Errorf("failed to chart expenses: %w", ErrNothingToChart)
	}

	totals := aggregateByShopper(expenses)
	labels := make([]string, 0, len(totals))
	for label := range totals {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	values := make([]float64, 0, len(labels))
	for _, label := range labels {
		values = append(values, totals[label].InexactFloat64())
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Expenses - %s", period),
		}),
		charts.LegendLabelsOptionFunc(labels),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// aggregateByShopper keys totals by "shopper (type)".
func aggregateByShopper(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for i := range expenses {
		shopper := expenses[i].Shopper
		if shopper == "" {
			shopper = unknownShopper
		}
		key := fmt.Sprintf("%s (%s)", shopper, expenses[i].Type)
		totals[key] = totals[key].Add(expenses[i].Amount)
	}
	return totals
}

// BalanceChart creates a bar chart of each boarder's money balance.
// Positive bars are owed back to the boarder, negative bars are still due.
func BalanceChart(m settlement.MessSettlement, period string) ([]byte, error) {
	if len(m.Boarders) == 0 {
		return nil, fmt.Errorf("failed to chart balances: %w", ErrNothingToChart)
	}

	names := make([]string, 0, len(m.Boarders))
	balances := make([]float64, 0, len(m.Boarders))
	for _, b := range m.Boarders {
		names = append(names, b.Name)
		balances = append(balances, b.MoneyBalance.InexactFloat64())
	}

	p, err := charts.BarRender(
		[][]float64{balances},
		charts.TitleOptionFunc(charts.TitleOption{
			Text: fmt.Sprintf("Balances - %s", period),
		}),
		charts.XAxisLabelsOptionFunc(names),
		charts.LegendLabelsOptionFunc([]string{"Balance"}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}
