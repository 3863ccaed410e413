package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
)

const (
	resetCallbackPrefix = "reset:"
	resetConfirmData    = resetCallbackPrefix + "confirm"
	resetCancelData     = resetCallbackPrefix + "cancel"
)

func resetKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{
		InlineKeyboard: [][]models.InlineKeyboardButton{
			{
				{Text: "🗑️ Delete everything", CallbackData: resetConfirmData},
				{Text: "❌ Cancel", CallbackData: resetCancelData},
			},
		},
	}
}

func (b *Bot) handleReset(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleResetCore(ctx, tgBot, update)
}

// handleResetCore asks for confirmation, or deletes the mess right away
// with "/reset confirm".
func (b *Bot) handleResetCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/reset")
	if len(args) == 1 && strings.EqualFold(args[0], "confirm") {
		b.reply(ctx, tg, chatID, b.deleteSystem(ctx, chatID, s.ManagerUsername))
		return
	}

	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "⚠️ This deletes the whole mess: boarders, expenses, iftaar records and every login. It cannot be undone.",
		ParseMode:   models.ParseModeHTML,
		ReplyMarkup: resetKeyboard(),
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to send reset prompt")
	}
}

func (b *Bot) handleResetCallback(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleResetCallbackCore(ctx, tgBot, update)
}

// handleResetCallbackCore acts on the reset prompt buttons.
func (b *Bot) handleResetCallbackCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	cq := update.CallbackQuery
	if cq == nil || cq.Message.Message == nil {
		return
	}
	_, _ = tg.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID})

	chatID := cq.Message.Message.Chat.ID
	messageID := cq.Message.Message.ID

	text := "Reset cancelled."
	if cq.Data == resetConfirmData {
		s, err := b.ledger.Session(ctx, cq.From.ID)
		switch {
		case err != nil:
			text = errorText("session", chatID, err)
		case !s.IsManager():
			text = msgManagerOnly
		default:
			text = b.deleteSystem(ctx, chatID, s.ManagerUsername)
		}
	}

	_, err := tg.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:    chatID,
		MessageID: messageID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to edit reset prompt")
	}
}

func (b *Bot) deleteSystem(ctx context.Context, chatID int64, username string) string {
	res, err := b.ledger.DeleteSystem(ctx, username)
	if err != nil {
		return errorText("delete_system", chatID, err)
	}
	if !res.Changed {
		return msgNothingDone
	}
	return fmt.Sprintf("🗑️ Mess <code>%s</code> deleted. Use /register to start again.", escapeHTML(username))
}
