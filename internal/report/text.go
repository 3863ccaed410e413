package report

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

// maxListedDays caps how many mismatched days FormatReconciliation lists.
const maxListedDays = 10

func esc(s string) string {
	return html.EscapeString(s)
}

func shopperNames(shoppers []models.Shopper) string {
	names := make([]string, 0, len(shoppers))
	for _, sh := range shoppers {
		names = append(names, sh.Name)
	}
	return strings.Join(names, ", ")
}

// numberedShoppers lists a day's shoppers as "#1 Rahim, #2 Salim", the
// numbers /schedule unassign takes.
func numberedShoppers(shoppers []models.Shopper) string {
	names := make([]string, 0, len(shoppers))
	for i, sh := range shoppers {
		names = append(names, fmt.Sprintf("#%d %s", i+1, sh.Name))
	}
	return strings.Join(names, ", ")
}

// balanceLine renders a money balance as who pays whom, never as a signed
// number.
func balanceLine(s settlement.BoarderSettlement) string {
	switch {
	case s.MoneyBalance.IsNegative():
		return fmt.Sprintf("Manager receives <b>%s</b>", money(s.Receivable()))
	case s.MoneyBalance.IsPositive():
		return fmt.Sprintf("Manager returns <b>%s</b>", money(s.Refundable()))
	default:
		return "Settled"
	}
}

func riceLine(s settlement.BoarderSettlement) string {
	switch {
	case s.RiceBalance.IsNegative():
		return fmt.Sprintf("Rice due: %s pots", qty(s.RiceDue()))
	case s.RiceBalance.IsPositive():
		return fmt.Sprintf("Rice surplus: %s pots", qty(s.RiceSurplus()))
	default:
		return "Rice settled"
	}
}

// FormatSummary renders the mess-wide settlement.
func FormatSummary(snap *ledger.Snapshot) string {
	m := snap.Settlement
	var sb strings.Builder

	fmt.Fprintf(&sb, "📊 <b>%s</b> - %s\n\n", esc(snap.Manager.MessName), esc(Period(snap)))
	fmt.Fprintf(&sb, "Meal rate: %s\n", money(m.MealRate))
	fmt.Fprintf(&sb, "Total meals: %s\n", qty(m.TotalMeals))
	fmt.Fprintf(&sb, "Total deposit: %s\n", money(m.TotalDeposit))
	fmt.Fprintf(&sb, "Market: %s | Extra: %s\n", money(m.MarketCost), money(m.ExtraCost))
	fmt.Fprintf(&sb, "Cash in hand: <b>%s</b>\n", money(m.CashInHand))
	fmt.Fprintf(&sb, "Rice stock: %s pots\n\n", qty(m.RiceStock))

	if len(m.Boarders) == 0 {
		sb.WriteString("No boarders yet.")
		return sb.String()
	}

	sb.WriteString("<b>Boarder | Receives | Returns</b>\n")
	for i, b := range m.Boarders {
		fmt.Fprintf(&sb, "%d. %s | %s | %s\n", i+1, esc(b.Name), dash(b.Receivable()), dash(b.Refundable()))
	}
	fmt.Fprintf(&sb, "\nTotal receives: %s | Total returns: %s", money(m.TotalReceivable), money(m.TotalRefundable))
	return sb.String()
}

func dash(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	return money(d)
}

// FormatBoarder renders one boarder's settlement.
func FormatBoarder(s settlement.BoarderSettlement, mealRate decimal.Decimal) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "👤 <b>%s</b>\n\n", esc(s.Name))
	fmt.Fprintf(&sb, "Meals: %s × %s = %s\n", qty(s.MealsEaten), money(mealRate), money(s.MealCost))
	if !s.ExtraCost.IsZero() {
		fmt.Fprintf(&sb, "Extra: %s\n", money(s.ExtraCost))
	}
	if !s.GuestCost.IsZero() {
		fmt.Fprintf(&sb, "Guest: %s\n", money(s.GuestCost))
	}
	if !s.SharedExtra.IsZero() {
		fmt.Fprintf(&sb, "Shared extra: %s\n", money(s.SharedExtra))
	}
	fmt.Fprintf(&sb, "Total cost: %s\n", money(s.TotalCost))
	fmt.Fprintf(&sb, "Deposit: %s\n", money(s.TotalDeposit))
	fmt.Fprintf(&sb, "%s\n\n", balanceLine(s))
	fmt.Fprintf(&sb, "Rice deposit: %s | eaten: %s\n", qty(s.TotalRiceDeposit), qty(s.RiceEaten))
	sb.WriteString(riceLine(s))
	return sb.String()
}

// FormatBoarders renders the ordered boarder list with 1-based numbers.
func FormatBoarders(boarders []models.Boarder) string {
	if len(boarders) == 0 {
		return "No boarders yet. Add one with /addboarder &lt;name&gt;."
	}
	var sb strings.Builder
	sb.WriteString("👥 <b>Boarders</b>\n\n")
	for i, b := range boarders {
		fmt.Fprintf(&sb, "%d. %s", i+1, esc(b.Name))
		if b.Mobile != "" {
			fmt.Fprintf(&sb, " (%s)", esc(b.Mobile))
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatDeposits lists a boarder's money and rice deposits with the
// numbers used to remove them.
func FormatDeposits(b *models.Boarder) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "💰 <b>%s</b>\n", esc(b.Name))

	sb.WriteString("\n<b>Money</b>\n")
	if len(b.Deposits) == 0 {
		sb.WriteString("none\n")
	}
	for i, d := range b.Deposits {
		fmt.Fprintf(&sb, "%d. %s  %s\n", i+1, d.Date, money(d.Amount))
	}

	sb.WriteString("\n<b>Rice</b>\n")
	if len(b.RiceDeposits) == 0 {
		sb.WriteString("none\n")
	}
	for i, d := range b.RiceDeposits {
		label := ""
		if d.Type == models.RiceDepositTypePreviousBalance {
			label = " (previous)"
		}
		fmt.Fprintf(&sb, "%d. %s  %s pots%s\n", i+1, d.Date, qty(d.Amount), label)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatExpenses lists expenses with their 1-based numbers.
func FormatExpenses(expenses []models.Expense) string {
	if len(expenses) == 0 {
		return "No expenses recorded."
	}
	var sb strings.Builder
	sb.WriteString("🧾 <b>Expenses</b>\n\n")
	market, extra := settlement.SumExpenses(expenses)
	for i := range expenses {
		e := &expenses[i]
		fmt.Fprintf(&sb, "%d. %s %s <b>%s</b>", i+1, e.Date, e.Type, money(e.Amount))
		if e.Shopper != "" {
			fmt.Fprintf(&sb, " - %s", esc(e.Shopper))
		}
		if e.Description != "" {
			fmt.Fprintf(&sb, " (%s)", esc(e.Description))
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "\nMarket: %s | Extra: %s", money(market), money(extra))
	return sb.String()
}

// FormatSchedule renders the bazaar schedule with weekdays.
func FormatSchedule(sched schedule.Schedule, year int, month string) string {
	days := sched.Days()
	if len(days) == 0 {
		return "No bazaar days scheduled. Use /schedule gen &lt;start&gt; &lt;interval&gt;."
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "🛒 <b>Bazaar Schedule</b> - %s %d\n\n", esc(month), year)
	for _, day := range days {
		weekday := "???"
		if w, err := schedule.Weekday(year, month, day); err == nil {
			weekday = w[:3]
		}
		shoppers := numberedShoppers(sched[day].Shoppers)
		if shoppers == "" {
			shoppers = "<i>open</i>"
		} else {
			shoppers = esc(shoppers)
		}
		fmt.Fprintf(&sb, "%2d %s: %s\n", day, weekday, shoppers)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatReconciliation renders the comparison of both ledgers.
func FormatReconciliation(r reconcile.Report) string {
	var sb strings.Builder
	sb.WriteString("🔍 <b>Meal Check</b>\n\n")
	fmt.Fprintf(&sb, "Boarders: %s meals, %s rice\n", qty(r.BoarderMeals), qty(r.BoarderRice))
	fmt.Fprintf(&sb, "Cook: %s meals, %s rice\n", qty(r.SystemMeals), qty(r.SystemRice))

	if r.Balanced() {
		sb.WriteString("\n✅ Both ledgers agree.")
		return sb.String()
	}

	fmt.Fprintf(&sb, "\n⚠️ Meal difference: %s\n", signed(r.MealDiscrepancy()))
	fmt.Fprintf(&sb, "⚠️ Rice difference: %s\n", signed(r.RiceDiscrepancy()))

	mismatched := r.MismatchedDays()
	if len(mismatched) > 0 {
		sb.WriteString("\n<b>Day | Meal | Rice</b>\n")
	}
	for i, d := range mismatched {
		if i == maxListedDays {
			fmt.Fprintf(&sb, "… and %d more\n", len(mismatched)-maxListedDays)
			break
		}
		fmt.Fprintf(&sb, "%d | %s | %s\n", d.Day, signed(d.MealDiff()), signed(d.RiceDiff()))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func signed(d decimal.Decimal) string {
	if d.IsPositive() {
		return "+" + d.String()
	}
	return d.String()
}

// FormatIftaar renders the iftaar fund.
func FormatIftaar(l *ledger.IftaarLedger) string {
	var sb strings.Builder
	sb.WriteString("🌙 <b>Iftaar Fund</b>")
	if l.Config != nil && l.Config.MessName != "" {
		fmt.Fprintf(&sb, " - %s", esc(l.Config.MessName))
		if l.Config.Month != "" {
			fmt.Fprintf(&sb, " (%s %d)", esc(l.Config.Month), l.Config.Year)
		}
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "Deposits: %s\n", money(l.Summary.TotalDeposits))
	fmt.Fprintf(&sb, "Expenses: %s\n", money(l.Summary.TotalExpenses))
	fmt.Fprintf(&sb, "Balance: <b>%s</b>\n", money(l.Summary.Balance))
	if next := l.Summary.NextBazaar; next != nil {
		fmt.Fprintf(&sb, "Next bazaar: %s by %s\n", next.Date, esc(next.Shopper))
	} else {
		sb.WriteString("Next bazaar: none scheduled\n")
	}

	if len(l.Deposits) > 0 {
		sb.WriteString("\n<b>Deposits</b>\n")
		for i, d := range l.Deposits {
			fmt.Fprintf(&sb, "%d. %s %s %s\n", i+1, d.Date, esc(d.Name), money(d.Amount))
		}
	}
	if len(l.Expenses) > 0 {
		sb.WriteString("\n<b>Expenses</b>\n")
		for i, e := range l.Expenses {
			fmt.Fprintf(&sb, "%d. %s %s %s\n", i+1, e.Date, esc(e.Shopper), money(e.Amount))
		}
	}
	if len(l.Schedules) > 0 {
		sb.WriteString("\n<b>Bazaar</b>\n")
		for i, s := range l.Schedules {
			fmt.Fprintf(&sb, "%d. %s %s\n", i+1, s.Date, esc(s.Shopper))
		}
	}
	return strings.TrimRight(sb.String(), "\n")
}
