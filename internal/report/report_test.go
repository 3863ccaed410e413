package report_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/ledger/ledgertest"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/report"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// seedMonth builds a mess where Jamal owes 120 and Rafiq is owed 80.
func seedMonth(t *testing.T) *ledger.Snapshot {
	t.Helper()
	ctx := context.Background()
	svc, _ := ledgertest.NewService(settlement.PolicyExclude)
	ledgertest.SeedManager(t, svc, "karim")
	b := ledgertest.SeedBoarders(t, svc, "karim", "Jamal", "Rafiq <R>")

	_, err := svc.SetDailyUsage(ctx, "karim", b[0].ID, 1, dec("4"), dec("3"))
	require.NoError(t, err)
	_, err = svc.SetDailyUsage(ctx, "karim", b[0].ID, 2, dec("3"), dec("2"))
	require.NoError(t, err)
	extra, guest := dec("500"), dec("32")
	_, err = svc.SetPersonalCosts(ctx, "karim", b[0].ID, &extra, &guest)
	require.NoError(t, err)
	_, err = svc.AddDeposit(ctx, "karim", b[0].ID, dec("500"), "")
	require.NoError(t, err)

	_, err = svc.SetDailyUsage(ctx, "karim", b[1].ID, 1, dec("8"), dec("4"))
	require.NoError(t, err)
	_, err = svc.AddDeposit(ctx, "karim", b[1].ID, dec("180"), "")
	require.NoError(t, err)

	_, err = svc.AddExpense(ctx, "karim", ledger.ExpenseInput{Amount: dec("300"), Shopper: "Jamal"})
	require.NoError(t, err)
	_, err = svc.AddExpense(ctx, "karim", ledger.ExpenseInput{Amount: dec("100"), Type: models.ExpenseTypeExtra, Description: "gas"})
	require.NoError(t, err)
	_, err = svc.GenerateSchedule(ctx, "karim", 2, 3)
	require.NoError(t, err)
	_, err = svc.AssignShopper(ctx, "karim", 5, b[1].ID)
	require.NoError(t, err)
	rice := dec("7")
	_, err = svc.RecordShift(ctx, "karim", 1, reconcile.ShiftLunch, dec("15"), &rice)
	require.NoError(t, err)

	snap, err := svc.Snapshot(ctx, "karim")
	require.NoError(t, err)
	return snap
}

func TestFilename(t *testing.T) {
	t.Parallel()
	snap := seedMonth(t)
	require.Equal(t, "green-house_2026-04.csv", report.Filename(snap, report.KindCSV))
	require.Equal(t, "April 2026", report.Period(snap))
}

func TestMonthlyCSV(t *testing.T) {
	t.Parallel()
	snap := seedMonth(t)

	data, err := report.MonthlyCSV(snap)
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	require.NoError(t, err)

	require.Equal(t, "Boarder", rows[0][0])
	require.Equal(t, "Manager Receives", rows[0][8])
	require.Equal(t, "Manager Returns", rows[0][9])

	jamal := rows[1]
	require.Equal(t, "Jamal", jamal[0])
	require.Equal(t, "88.00", jamal[2])
	require.Equal(t, "120.00", jamal[8])
	require.Empty(t, jamal[9])

	rafiq := rows[2]
	require.Equal(t, "Rafiq <R>", rafiq[0])
	require.Empty(t, rafiq[8])
	require.Equal(t, "80.00", rafiq[9])

	require.Contains(t, string(data), "Cash In Hand,280.00")
}

func TestMonthlyWorkbook(t *testing.T) {
	t.Parallel()
	snap := seedMonth(t)

	data, err := report.MonthlyWorkbook(snap)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	require.Equal(t, report.Sheets, f.GetSheetList())

	t.Run("final", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetFinal)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		require.Equal(t, "Jamal", rows[1][0])
	})

	t.Run("meal grid has a column per day", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetMeals)
		require.NoError(t, err)
		require.Len(t, rows[0], snap.DaysInMonth+2)
		require.Equal(t, "Total", rows[len(rows)-1][0])
	})

	t.Run("expense sheets split by type", func(t *testing.T) {
		market, err := f.GetRows(report.SheetMarket)
		require.NoError(t, err)
		require.Len(t, market, 3)
		require.Equal(t, "Jamal", market[1][2])

		extra, err := f.GetRows(report.SheetExtra)
		require.NoError(t, err)
		require.Len(t, extra, 3)
		require.Equal(t, "gas", extra[1][3])
	})

	t.Run("schedule", func(t *testing.T) {
		rows, err := f.GetRows(report.SheetSchedule)
		require.NoError(t, err)
		require.Len(t, rows, 11)
		require.Equal(t, "Thursday", rows[1][1], "2 April 2026")
		require.Equal(t, "Rafiq <R>", rows[2][2])
	})
}

func TestCharts(t *testing.T) {
	t.Parallel()
	snap := seedMonth(t)

	t.Run("expense pie", func(t *testing.T) {
		png, err := report.ExpenseChart(snap.Expenses, report.Period(snap))
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	})

	t.Run("balance bars", func(t *testing.T) {
		png, err := report.BalanceChart(snap.Settlement, report.Period(snap))
		require.NoError(t, err)
		require.True(t, bytes.HasPrefix(png, []byte("\x89PNG")))
	})

	t.Run("empty", func(t *testing.T) {
		_, err := report.ExpenseChart(nil, "x")
		require.ErrorIs(t, err, report.ErrNothingToChart)
		_, err = report.BalanceChart(settlement.MessSettlement{}, "x")
		require.ErrorIs(t, err, report.ErrNothingToChart)
	})
}

func TestFormatSummary(t *testing.T) {
	t.Parallel()
	snap := seedMonth(t)

	text := report.FormatSummary(snap)
	require.Contains(t, text, "Green House")
	require.Contains(t, text, "1. Jamal | 120.00 | -")
	require.Contains(t, text, "2. Rafiq &lt;R&gt; | - | 80.00")
	require.NotContains(t, text, "-120")
}

func TestFormatBoarder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		balance string
		want    string
	}{
		{name: "owes", balance: "-120", want: "Manager receives <b>120.00</b>"},
		{name: "in credit", balance: "80", want: "Manager returns <b>80.00</b>"},
		{name: "settled", balance: "0", want: "Settled"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := settlement.BoarderSettlement{Name: "A&B", MoneyBalance: dec(tt.balance)}
			text := report.FormatBoarder(s, dec("12.5"))
			require.Contains(t, text, tt.want)
			require.Contains(t, text, "A&amp;B")
		})
	}
}

func TestFormatSchedule(t *testing.T) {
	t.Parallel()

	require.Contains(t, report.FormatSchedule(schedule.Schedule{}, 2026, "April"), "No bazaar days")

	sched := schedule.Schedule{
		2: {Date: 2, Shoppers: []models.Shopper{{ID: "1", Name: "Jamal"}, {ID: "2", Name: "Nasir"}}},
		5: {Date: 5, Shoppers: []models.Shopper{}},
	}
	text := report.FormatSchedule(sched, 2026, "April")
	require.Contains(t, text, " 2 Thu: #1 Jamal, #2 Nasir")
	require.Contains(t, text, " 5 Sun: <i>open</i>")
	require.Less(t, strings.Index(text, " 2 Thu"), strings.Index(text, " 5 Sun"))
}

func TestFormatReconciliation(t *testing.T) {
	t.Parallel()

	balanced := reconcile.Report{}
	require.Contains(t, report.FormatReconciliation(balanced), "Both ledgers agree")

	r := reconcile.Report{
		Days:         []reconcile.DayComparison{{Day: 3, BoarderMeals: dec("40"), SystemMeals: dec("42")}},
		BoarderMeals: dec("40"),
		SystemMeals:  dec("42"),
	}
	text := report.FormatReconciliation(r)
	require.Contains(t, text, "Meal difference: +2")
	require.Contains(t, text, "3 | +2 | 0")
}

func TestFormatIftaar(t *testing.T) {
	t.Parallel()

	l := &ledger.IftaarLedger{
		Config:   &models.IftaarConfig{MessName: "Green House", Month: "March", Year: 2026},
		Deposits: []models.IftaarDeposit{{Name: "Jamal", Amount: dec("300"), Date: "2026-03-01"}},
	}
	l.Summary.TotalDeposits = dec("300")
	l.Summary.Balance = dec("300")

	text := report.FormatIftaar(l)
	require.Contains(t, text, "Green House (March 2026)")
	require.Contains(t, text, "Balance: <b>300.00</b>")
	require.Contains(t, text, "none scheduled")
	require.Contains(t, text, "1. 2026-03-01 Jamal 300.00")
}

func TestFormatLists(t *testing.T) {
	t.Parallel()

	require.Contains(t, report.FormatBoarders(nil), "No boarders")
	require.Equal(t, "👥 <b>Boarders</b>\n\n1. Jamal (017)\n2. Rafiq",
		report.FormatBoarders([]models.Boarder{{Name: "Jamal", Mobile: "017"}, {Name: "Rafiq"}}))

	expenses := []models.Expense{
		{Date: "2026-04-01", Type: models.ExpenseTypeMarket, Amount: dec("300"), Shopper: "Jamal"},
		{Date: "2026-04-02", Type: models.ExpenseTypeExtra, Amount: dec("100")},
	}
	text := report.FormatExpenses(expenses)
	require.Contains(t, text, "1. 2026-04-01 market <b>300.00</b> - Jamal")
	require.Contains(t, text, "Market: 300.00 | Extra: 100.00")

	b := &models.Boarder{
		Name:         "Jamal",
		Deposits:     []models.Deposit{{Amount: dec("500"), Date: "2026-04-01"}},
		RiceDeposits: []models.RiceDeposit{{Amount: dec("4"), Date: "2026-04-01", Type: models.RiceDepositTypePreviousBalance}},
	}
	deposits := report.FormatDeposits(b)
	require.Contains(t, deposits, "1. 2026-04-01  500.00")
	require.Contains(t, deposits, "4 pots (previous)")
}
