// Package report renders a mess's month as chat text and as documents:
// CSV statement, XLSX workbook and PNG charts.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
)

// Document kinds accepted by Filename.
const (
	KindCSV          = "csv"
	KindWorkbook     = "xlsx"
	KindExpenseChart = "expenses.png"
	KindBalanceChart = "balances.png"
)

// Filename builds a descriptive file name such as
// "green-house_2026-04.csv".
func Filename(snap *ledger.Snapshot, kind string) string {
	slug := strings.ToLower(strings.Join(strings.Fields(snap.Manager.MessName), "-"))
	if slug == "" {
		slug = snap.Manager.Username
	}
	return fmt.Sprintf("%s_%04d-%02d.%s", slug, snap.Manager.Year, snap.Manager.MonthIndex()+1, kind)
}

// Period is the human name of the reporting month, e.g. "April 2026".
func Period(snap *ledger.Snapshot) string {
	return fmt.Sprintf("%s %d", snap.Manager.Month, snap.Manager.Year)
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func qty(d decimal.Decimal) string {
	return d.String()
}

// blankZero renders zero as an empty cell so receive/return columns only
// show the side that applies.
func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}
