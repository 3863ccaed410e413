package report

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
)

// Workbook sheet names, in order.
const (
	SheetSummary     = "Summary"
	SheetFinal       = "Final"
	SheetBoarders    = "Boarders"
	SheetMeals       = "Meals"
	SheetRice        = "Rice"
	SheetSystemDaily = "System Daily"
	SheetMarket      = "Market"
	SheetExtra       = "Extra"
	SheetSchedule    = "Bazaar Schedule"
)

// Sheets lists the workbook's sheets in the order they are created.
var Sheets = []string{
	SheetSummary, SheetFinal, SheetBoarders, SheetMeals, SheetRice,
	SheetSystemDaily, SheetMarket, SheetExtra, SheetSchedule,
}

type sheet struct {
	f    *excelize.File
	name string
	row  int
}

func (s *sheet) add(values ...any) error {
	s.row++
	cell, err := excelize.CoordinatesToCellName(1, s.row)
	if err != nil {
		return err
	}
	if err := s.f.SetSheetRow(s.name, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", s.name, s.row, err)
	}
	return nil
}

func (s *sheet) header(style int, values ...any) error {
	if err := s.add(values...); err != nil {
		return err
	}
	return s.f.SetRowStyle(s.name, s.row, s.row, style)
}

func num(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// MonthlyWorkbook builds the XLSX workbook for the reporting month.
func MonthlyWorkbook(snap *ledger.Snapshot) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range Sheets[1:] {
		if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	writers := []func(*excelize.File, int, *ledger.Snapshot) error{
		writeSummary, writeFinal, writeBoarders, writeMeals, writeRice,
		writeSystemDaily, writeMarket, writeExtra, writeSchedule,
	}
	for _, w := range writers {
		if err := w(f, bold, snap); err != nil {
			return nil, err
		}
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSummary(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	s := &sheet{f: f, name: SheetSummary}
	m := snap.Manager
	agg := snap.Settlement

	if err := s.header(bold, m.MessName, Period(snap)); err != nil {
		return err
	}
	rows := [][]any{
		{"Manager", m.Name},
		{"Mobile", m.Mobile},
		{"Boarders", len(snap.Boarders)},
		{"Meal Rate", num(agg.MealRate)},
		{"Total Meals", num(agg.TotalMeals)},
		{"Total Meal Cost", num(agg.TotalMealCost)},
		{"Total Deposit", num(agg.TotalDeposit)},
		{"Market Cost", num(agg.MarketCost)},
		{"Extra Cost", num(agg.ExtraCost)},
		{"Cash In Hand", num(agg.CashInHand)},
		{"Manager Receives", num(agg.TotalReceivable)},
		{"Manager Returns", num(agg.TotalRefundable)},
		{"Rice Deposit", num(agg.TotalRiceDeposit)},
		{"Rice Eaten", num(agg.TotalRiceEaten)},
		{"Previous Rice Balance", num(agg.PrevRiceBalance)},
		{"Rice Stock", num(agg.RiceStock)},
		{"Extra Cost Policy", string(agg.Policy)},
	}
	for _, r := range rows {
		if err := s.add(r...); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetSummary, "A", "A", 24)
}

func writeFinal(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	s := &sheet{f: f, name: SheetFinal}
	header := make([]any, len(finalHeader))
	for i, h := range finalHeader {
		header[i] = h
	}
	if err := s.header(bold, header...); err != nil {
		return err
	}
	for _, b := range snap.Settlement.Boarders {
		receives, returns := any(""), any("")
		if r := b.Receivable(); !r.IsZero() {
			receives = num(r)
		}
		if r := b.Refundable(); !r.IsZero() {
			returns = num(r)
		}
		if err := s.add(
			b.Name, num(b.MealsEaten), num(b.MealCost), num(b.ExtraCost), num(b.GuestCost),
			num(b.SharedExtra), num(b.TotalCost), num(b.TotalDeposit), receives, returns,
			num(b.TotalRiceDeposit), num(b.RiceEaten), num(b.RiceDue()), num(b.RiceSurplus()),
		); err != nil {
			return err
		}
	}
	return f.SetColWidth(SheetFinal, "A", "A", 20)
}

func writeBoarders(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	s := &sheet{f: f, name: SheetBoarders}
	if err := s.header(bold, "#", "Name", "Mobile", "Blood Group", "Deposits", "Rice Deposits"); err != nil {
		return err
	}
	for i, b := range snap.Boarders {
		if err := s.add(i+1, b.Name, b.Mobile, b.BloodGroup, len(b.Deposits), len(b.RiceDeposits)); err != nil {
			return err
		}
	}
	return nil
}

func dayHeader(first string, days int) []any {
	header := make([]any, 0, days+2)
	header = append(header, first)
	for d := 1; d <= days; d++ {
		header = append(header, d)
	}
	return append(header, "Total")
}

// writeGrid writes one row per boarder with a column per day.
func writeGrid(f *excelize.File, bold int, snap *ledger.Snapshot, name string, pick func(models.DailyUsage) decimal.Decimal) error {
	s := &sheet{f: f, name: name}
	if err := s.header(bold, dayHeader("Boarder", snap.DaysInMonth)...); err != nil {
		return err
	}

	totals := make([]decimal.Decimal, snap.DaysInMonth+1)
	for _, b := range snap.Boarders {
		row := make([]any, 0, snap.DaysInMonth+2)
		row = append(row, b.Name)
		sum := decimal.Zero
		for d := 1; d <= snap.DaysInMonth; d++ {
			v := pick(b.DailyUsage[d])
			sum = sum.Add(v)
			totals[d] = totals[d].Add(v)
			if v.IsZero() {
				row = append(row, "")
			} else {
				row = append(row, num(v))
			}
		}
		if err := s.add(append(row, num(sum))...); err != nil {
			return err
		}
	}

	footer := make([]any, 0, snap.DaysInMonth+2)
	footer = append(footer, "Total")
	grand := decimal.Zero
	for d := 1; d <= snap.DaysInMonth; d++ {
		footer = append(footer, num(totals[d]))
		grand = grand.Add(totals[d])
	}
	return s.header(bold, append(footer, num(grand))...)
}

func writeMeals(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	return writeGrid(f, bold, snap, SheetMeals, func(u models.DailyUsage) decimal.Decimal { return u.Meals })
}

func writeRice(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	return writeGrid(f, bold, snap, SheetRice, func(u models.DailyUsage) decimal.Decimal { return u.Rice })
}

func writeSystemDaily(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	s := &sheet{f: f, name: SheetSystemDaily}
	if err := s.header(bold,
		"Day", "Morning Meal", "Morning Rice", "Lunch Meal", "Lunch Rice",
		"Dinner Meal", "Dinner Rice", "System Meals", "System Rice", "Boarder Meals", "Boarder Rice",
	); err != nil {
		return err
	}
	for _, day := range snap.Reconciliation.Days {
		e := snap.Manager.SystemDaily[day.Day]
		if err := s.add(
			day.Day,
			num(e.Morning.Meal), num(e.Morning.Rice),
			num(e.Lunch.Meal), num(e.Lunch.Rice),
			num(e.Dinner.Meal), num(e.Dinner.Rice),
			num(day.SystemMeals), num(day.SystemRice),
			num(day.BoarderMeals), num(day.BoarderRice),
		); err != nil {
			return err
		}
	}
	r := snap.Reconciliation
	return s.header(bold, "Total", "", "", "", "", "", "",
		num(r.SystemMeals), num(r.SystemRice), num(r.BoarderMeals), num(r.BoarderRice))
}

func writeExpenses(f *excelize.File, bold int, name string, expenses []models.Expense, keep func(*models.Expense) bool) error {
	s := &sheet{f: f, name: name}
	if err := s.header(bold, "#", "Date", "Shopper", "Description", "Amount"); err != nil {
		return err
	}
	total := decimal.Zero
	n := 0
	for i := range expenses {
		e := &expenses[i]
		if !keep(e) {
			continue
		}
		n++
		total = total.Add(e.Amount)
		if err := s.add(n, e.Date, e.Shopper, e.Description, num(e.Amount)); err != nil {
			return err
		}
	}
	return s.header(bold, "", "", "", "Total", num(total))
}

func writeMarket(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	return writeExpenses(f, bold, SheetMarket, snap.Expenses, (*models.Expense).IsMarket)
}

func writeExtra(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	return writeExpenses(f, bold, SheetExtra, snap.Expenses, func(e *models.Expense) bool { return !e.IsMarket() })
}

func writeSchedule(f *excelize.File, bold int, snap *ledger.Snapshot) error {
	s := &sheet{f: f, name: SheetSchedule}
	if err := s.header(bold, "Day", "Weekday", "Shoppers"); err != nil {
		return err
	}
	sched := schedule.Schedule(snap.Manager.BazaarSchedule)
	for _, day := range sched.Days() {
		weekday, err := schedule.Weekday(snap.Manager.Year, snap.Manager.Month, day)
		if err != nil {
			return fmt.Errorf("failed to resolve weekday: %w", err)
		}
		if err := s.add(day, weekday, shopperNames(sched[day].Shoppers)); err != nil {
			return err
		}
	}
	return nil
}
