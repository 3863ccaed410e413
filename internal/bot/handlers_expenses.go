package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

const expenseUsage = "/expense market|extra <amount> [shopper] [- note] [@yyyy-mm-dd]"

func (b *Bot) handleExpense(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExpenseCore(ctx, tgBot, update)
}

// handleExpenseCore records a shared purchase.
func (b *Bot) handleExpenseCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args, date := takeDate(commandArgs(msg.Text, "/expense"))
	if len(args) < 2 {
		b.usage(ctx, tg, chatID, expenseUsage)
		return
	}
	kind := strings.ToLower(args[0])
	if kind != appmodels.ExpenseTypeMarket && kind != appmodels.ExpenseTypeExtra {
		b.usage(ctx, tg, chatID, expenseUsage)
		return
	}
	amount, err := parseAmount(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, expenseUsage)
		return
	}
	shopper, desc := splitDescription(strings.Join(args[2:], " "))

	res, err := b.ledger.AddExpense(ctx, s.ManagerUsername, ledger.ExpenseInput{
		Date:        date,
		Shopper:     shopper,
		Description: desc,
		Amount:      amount,
		Type:        kind,
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add_expense", err)
		return
	}
	b.reply(ctx, tg, chatID, formatExpenseSaved(res.Value))
}

func formatExpenseSaved(e *appmodels.Expense) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "✅ %s expense <b>%s</b> on %s", e.Type, e.Amount.StringFixed(2), e.Date)
	if e.Shopper != "" {
		fmt.Fprintf(&sb, " by %s", escapeHTML(e.Shopper))
	}
	if e.Description != "" {
		fmt.Fprintf(&sb, "\n📝 %s", escapeHTML(e.Description))
	}
	return sb.String()
}

func (b *Bot) handleExpenses(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleExpensesCore(ctx, tgBot, update)
}

// handleExpensesCore lists expenses with the numbers /rmexpense takes.
func (b *Bot) handleExpensesCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}

	expenses, err := b.ledger.ListExpenses(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "list_expenses", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, report.FormatExpenses(expenses))
}

func (b *Bot) handleRemoveExpense(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRemoveExpenseCore(ctx, tgBot, update)
}

// handleRemoveExpenseCore deletes an expense by its list number.
func (b *Bot) handleRemoveExpenseCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/rmexpense")
	if len(args) != 1 {
		b.usage(ctx, tg, chatID, "/rmexpense <#>")
		return
	}
	idx, err := parsePosition(args[0])
	if err != nil {
		b.usage(ctx, tg, chatID, "/rmexpense <#>")
		return
	}

	expenses, err := b.ledger.ListExpenses(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list_expenses", err)
		return
	}
	if idx > len(expenses) {
		b.reply(ctx, tg, chatID, fmt.Sprintf("⚠️ There is no expense #%d. See /expenses.", idx))
		return
	}

	e := expenses[idx-1]
	res, err := b.ledger.DeleteExpense(ctx, s.ManagerUsername, e.ID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete_expense", err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("🗑️ Removed %s expense %s from %s.", e.Type, e.Amount.StringFixed(2), e.Date))
}

const editExpenseUsage = "/editexpense <#> amount|date|shopper|note|type <value>"

func (b *Bot) handleEditExpense(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleEditExpenseCore(ctx, tgBot, update)
}

// handleEditExpenseCore changes one field of an expense picked by its
// /expenses number.
func (b *Bot) handleEditExpenseCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/editexpense")
	if len(args) < 3 {
		b.usage(ctx, tg, chatID, editExpenseUsage)
		return
	}
	idx, err := parsePosition(args[0])
	if err != nil {
		b.usage(ctx, tg, chatID, editExpenseUsage)
		return
	}

	value := strings.Join(args[2:], " ")
	var patch ledger.ExpensePatchInput
	switch strings.ToLower(args[1]) {
	case "amount":
		amount, err := parseAmount(value)
		if err != nil {
			b.usage(ctx, tg, chatID, editExpenseUsage)
			return
		}
		patch.Amount = &amount
	case "date":
		date := strings.TrimPrefix(value, "@")
		patch.Date = &date
	case "shopper":
		patch.Shopper = &value
	case "note":
		patch.Description = &value
	case "type":
		kind := strings.ToLower(value)
		patch.Type = &kind
	default:
		b.usage(ctx, tg, chatID, editExpenseUsage)
		return
	}

	expenses, err := b.ledger.ListExpenses(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, chatID, "list_expenses", err)
		return
	}
	if idx > len(expenses) {
		b.reply(ctx, tg, chatID, fmt.Sprintf("⚠️ There is no expense #%d. See /expenses.", idx))
		return
	}

	res, err := b.ledger.UpdateExpense(ctx, s.ManagerUsername, expenses[idx-1].ID, patch)
	if err != nil {
		b.replyError(ctx, tg, chatID, "update_expense", err)
		return
	}
	if !res.Changed || res.Value == nil {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, formatExpenseSaved(res.Value))
}
