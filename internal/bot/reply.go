package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"maps"
	"slices"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

const (
	msgLoginFirst   = "🔒 Please /login as manager or /join as a boarder first."
	msgManagerOnly  = "⛔ Only the mess manager can do that."
	msgBoarderOnly  = "⛔ Only a boarder can do that. Managers pick the boarder by number."
	msgOwnRecords   = "⛔ You can only change your own records."
	msgNothingDone  = "ℹ️ Nothing changed."
	msgGenericError = "❌ Something went wrong. Please try again."
)

// escapeHTML escapes user supplied text for HTML parse mode.
func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// reply sends an HTML message and logs send failures.
func (b *Bot) reply(ctx context.Context, tg TelegramAPI, chatID int64, text string) {
	_, err := tg.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      text,
		ParseMode: models.ParseModeHTML,
	})
	if err != nil {
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to send message")
	}
}

// usage replies with the expected command format.
func (b *Bot) usage(ctx context.Context, tg TelegramAPI, chatID int64, format string) {
	b.reply(ctx, tg, chatID, "Usage: <code>"+escapeHTML(format)+"</code>")
}

// replyError turns a ledger error into a chat message. Validation and
// credential problems are the user's to fix; anything else is logged.
func (b *Bot) replyError(ctx context.Context, tg TelegramAPI, chatID int64, op string, err error) {
	b.reply(ctx, tg, chatID, errorText(op, chatID, err))
}

func errorText(op string, chatID int64, err error) string {
	var verr *ledger.ValidationError
	switch {
	case errors.As(err, &verr):
		return "⚠️ " + escapeHTML(describeValidation(verr))
	case errors.Is(err, ledger.ErrInvalidCredentials):
		return "❌ Invalid credentials."
	case errors.Is(err, ledger.ErrUsernameTaken):
		return "❌ That username is already taken."
	case errors.Is(err, ledger.ErrForbidden):
		return msgOwnRecords
	case errors.Is(err, repository.ErrNotFound):
		return "❌ Not found. It may have been removed already."
	default:
		logger.Log.Error().Err(err).
			Str("op", op).
			Str("chat_hash", logger.HashChatID(chatID)).
			Msg("Ledger operation failed")
		return msgGenericError
	}
}

func describeValidation(verr *ledger.ValidationError) string {
	if len(verr.Fields) == 0 {
		msg := verr.Error()
		return strings.ToUpper(msg[:1]) + msg[1:]
	}
	parts := make([]string, 0, len(verr.Fields))
	for _, field := range slices.Sorted(maps.Keys(verr.Fields)) {
		parts = append(parts, fmt.Sprintf("%s (%s)", field, verr.Fields[field]))
	}
	return "Invalid " + strings.Join(parts, ", ")
}

// session returns the sender's session, replying when there is none.
func (b *Bot) session(ctx context.Context, tg TelegramAPI, msg *models.Message) *appmodels.BotSession {
	s, err := b.ledger.Session(ctx, msg.From.ID)
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "session", err)
		return nil
	}
	if s == nil {
		b.reply(ctx, tg, msg.Chat.ID, msgLoginFirst)
		return nil
	}
	return s
}

// managerSession is session restricted to managers.
func (b *Bot) managerSession(ctx context.Context, tg TelegramAPI, msg *models.Message) *appmodels.BotSession {
	s := b.session(ctx, tg, msg)
	if s == nil {
		return nil
	}
	if !s.IsManager() {
		b.reply(ctx, tg, msg.Chat.ID, msgManagerOnly)
		return nil
	}
	return s
}

// command returns the message when the update carries one from a user.
func command(update *models.Update) *models.Message {
	if update.Message == nil || update.Message.From == nil {
		return nil
	}
	return update.Message
}
