package report

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
)

var finalHeader = []string{
	"Boarder", "Meals", "Meal Cost", "Extra", "Guest", "Shared Extra", "Total Cost",
	"Deposit", "Manager Receives", "Manager Returns",
	"Rice Deposit", "Rice Eaten", "Rice Due", "Rice Surplus",
}

// MonthlyCSV generates the month's final statement, one row per boarder
// followed by a totals footer.
func MonthlyCSV(snap *ledger.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(finalHeader); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range finalRows(snap) {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	m := snap.Settlement
	footer := [][]string{
		{},
		{"Meal Rate", money(m.MealRate)},
		{"Total Meals", qty(m.TotalMeals)},
		{"Total Deposit", money(m.TotalDeposit)},
		{"Market Cost", money(m.MarketCost)},
		{"Extra Cost", money(m.ExtraCost)},
		{"Cash In Hand", money(m.CashInHand)},
		{"Manager Receives", money(m.TotalReceivable)},
		{"Manager Returns", money(m.TotalRefundable)},
		{"Previous Rice Balance", qty(m.PrevRiceBalance)},
		{"Rice Stock", qty(m.RiceStock)},
	}
	for _, row := range footer {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV footer: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

func finalRows(snap *ledger.Snapshot) [][]string {
	rows := make([][]string, 0, len(snap.Settlement.Boarders))
	for _, s := range snap.Settlement.Boarders {
		rows = append(rows, []string{
			s.Name,
			qty(s.MealsEaten),
			money(s.MealCost),
			money(s.ExtraCost),
			money(s.GuestCost),
			money(s.SharedExtra),
			money(s.TotalCost),
			money(s.TotalDeposit),
			blankZero(s.Receivable()),
			blankZero(s.Refundable()),
			qty(s.TotalRiceDeposit),
			qty(s.RiceEaten),
			qty(s.RiceDue()),
			qty(s.RiceSurplus()),
		})
	}
	return rows
}
