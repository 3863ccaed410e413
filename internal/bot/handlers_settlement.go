package bot

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

func (b *Bot) handleSummary(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleSummaryCore(ctx, tgBot, update)
}

// handleSummaryCore shows the mess-wide settlement.
func (b *Bot) handleSummaryCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}

	snap, err := b.ledger.Snapshot(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "summary", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, report.FormatSummary(snap))
}

func (b *Bot) handleBalance(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBalanceCore(ctx, tgBot, update)
}

// handleBalanceCore shows one boarder's settlement. Boarders always see
// their own; managers pick by number.
func (b *Bot) handleBalanceCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	boarderID := s.BoarderID
	if s.IsManager() {
		args := commandArgs(msg.Text, "/balance")
		if len(args) != 1 {
			b.usage(ctx, tg, chatID, "/balance <n>")
			return
		}
		boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
		if boarder == nil {
			return
		}
		boarderID = boarder.ID
	}

	bs, err := b.ledger.BoarderSettlement(ctx, s.ManagerUsername, boarderID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "balance", err)
		return
	}
	m, err := b.ledger.Manager(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, chatID, "balance", err)
		return
	}
	b.reply(ctx, tg, chatID, report.FormatBoarder(bs, m.MealRate))
}
