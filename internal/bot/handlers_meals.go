package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

const cookUsage = "/cook <day> morning|lunch|dinner <meals> [rice] or /cook <day> clear"

func (b *Bot) handleCook(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCookCore(ctx, tgBot, update)
}

// handleCookCore writes one shift of the cook's ledger. Rice left out is
// filled in by auto rice.
func (b *Bot) handleCookCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/cook")
	if len(args) < 2 {
		b.usage(ctx, tg, chatID, cookUsage)
		return
	}
	day, err := parseDay(args[0])
	if err != nil {
		b.usage(ctx, tg, chatID, cookUsage)
		return
	}

	if len(args) == 2 && strings.EqualFold(args[1], "clear") {
		res, err := b.ledger.ClearSystemDay(ctx, s.ManagerUsername, day)
		if err != nil {
			b.replyError(ctx, tg, chatID, "clear_system_day", err)
			return
		}
		if !res.Changed {
			b.reply(ctx, tg, chatID, msgNothingDone)
			return
		}
		b.reply(ctx, tg, chatID, fmt.Sprintf("🧹 Cleared the cook's record for day %d.", day))
		return
	}

	if len(args) < 3 || len(args) > 4 {
		b.usage(ctx, tg, chatID, cookUsage)
		return
	}
	shift, err := reconcile.ParseShift(strings.ToLower(args[1]))
	if err != nil {
		b.usage(ctx, tg, chatID, cookUsage)
		return
	}
	meal, err := parseAmount(args[2])
	if err != nil {
		b.usage(ctx, tg, chatID, cookUsage)
		return
	}
	var rice *decimal.Decimal
	if len(args) == 4 {
		r, err := parseAmount(args[3])
		if err != nil {
			b.usage(ctx, tg, chatID, cookUsage)
			return
		}
		rice = &r
	}

	res, err := b.ledger.RecordShift(ctx, s.ManagerUsername, day, shift, meal, rice)
	if err != nil {
		b.replyError(ctx, tg, chatID, "record_shift", err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}

	rec := res.Value
	auto := ""
	if rec.AutoRice {
		auto = " (auto)"
	}
	total := reconcile.DayTotal(rec.Entry)
	b.reply(ctx, tg, chatID, fmt.Sprintf("🍳 Day %d %s: %s meals, %s rice%s\nDay total: %s meals, %s rice",
		rec.Day, rec.Shift, rec.Value.Meal, rec.Value.Rice, auto, total.Meal, total.Rice))
}

func (b *Bot) handleCheck(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCheckCore(ctx, tgBot, update)
}

// handleCheckCore compares what boarders logged against the cook's ledger.
func (b *Bot) handleCheckCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}

	r, err := b.ledger.Reconcile(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "reconcile", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, report.FormatReconciliation(r))
}
