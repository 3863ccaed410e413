// Package bot exposes the mess ledger over Telegram.
package bot

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	tgmodels "github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/mess-bot/internal/config"
	"gitlab.com/yelinaung/mess-bot/internal/gemini"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	"gitlab.com/yelinaung/mess-bot/internal/telemetry"
)

// TelegramAPI is the part of the Telegram client the handlers call. It is
// declared in mocks so tests can share it without an import cycle.
type TelegramAPI = mocks.TelegramAPI

var _ TelegramAPI = (*bot.Bot)(nil)

// Bot wraps the Telegram bot with application dependencies.
type Bot struct {
	bot        *bot.Bot
	cfg        *config.Config
	ledger     *ledger.Service
	gemini     *gemini.Client
	httpClient *http.Client

	// messageSender sends messages outside of an update, e.g. reminders.
	messageSender TelegramAPI
}

// New creates a new Bot instance. geminiClient may be nil, which turns
// receipt scanning off.
func New(cfg *config.Config, svc *ledger.Service, geminiClient *gemini.Client) (*Bot, error) {
	b := &Bot{
		cfg:        cfg,
		ledger:     svc,
		gemini:     geminiClient,
		httpClient: telemetry.HTTPClient(),
	}

	opts := []bot.Option{
		bot.WithMiddlewares(b.logMiddleware),
		bot.WithDefaultHandler(b.defaultHandler),
	}

	telegramBot, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b.bot = telegramBot
	b.messageSender = telegramBot
	b.registerHandlers()

	return b, nil
}

// Start runs the reminder loop and polls for updates until ctx is done.
func (b *Bot) Start(ctx context.Context) {
	go b.startMealReminderLoop(ctx)

	logger.Log.Info().Msg("Bot started polling")
	b.bot.Start(ctx)
}

// commandHandlers maps each command to its handler.
func (b *Bot) commandHandlers() map[string]bot.HandlerFunc {
	return map[string]bot.HandlerFunc{
		"/start":       b.handleStart,
		"/help":        b.handleHelp,
		"/register":    b.handleRegister,
		"/login":       b.handleLogin,
		"/join":        b.handleJoin,
		"/logout":      b.handleLogout,
		"/setup":       b.handleSetup,
		"/addboarder":  b.handleAddBoarder,
		"/boarders":    b.handleBoarders,
		"/rmboarder":   b.handleRemoveBoarder,
		"/move":        b.handleMoveBoarder,
		"/editboarder": b.handleEditBoarder,
		"/deposit":     b.handleDeposit,
		"/rice":        b.handleRice,
		"/undeposit":   b.handleUndeposit,
		"/unrice":      b.handleUnrice,
		"/editdeposit": b.handleEditDeposit,
		"/editrice":    b.handleEditRice,
		"/cost":        b.handleCost,
		"/meal":        b.handleMeal,
		"/cook":        b.handleCook,
		"/check":       b.handleCheck,
		"/expense":     b.handleExpense,
		"/expenses":    b.handleExpenses,
		"/rmexpense":   b.handleRemoveExpense,
		"/editexpense": b.handleEditExpense,
		"/summary":     b.handleSummary,
		"/balance":     b.handleBalance,
		"/schedule":    b.handleSchedule,
		"/report":      b.handleReport,
		"/iftaar":      b.handleIftaar,
		"/reset":       b.handleReset,
	}
}

// registerHandlers sets up command, photo and callback handlers. Commands
// match on the whole first word so /expense never swallows /expenses.
func (b *Bot) registerHandlers() {
	for command, handler := range b.commandHandlers() {
		b.bot.RegisterHandlerMatchFunc(matchCommand(command), handler)
	}
	b.bot.RegisterHandlerMatchFunc(isPhoto, b.handlePhoto)
	b.bot.RegisterHandler(bot.HandlerTypeCallbackQueryData, resetCallbackPrefix, bot.MatchTypePrefix, b.handleResetCallback)
}

func matchCommand(command string) bot.MatchFunc {
	return func(update *tgmodels.Update) bool {
		return update.Message != nil && commandName(update.Message.Text) == command
	}
}

func isPhoto(update *tgmodels.Update) bool {
	return update.Message != nil && len(update.Message.Photo) > 0
}

// commandName returns the lower-cased leading /command of a message with
// any @botname suffix removed, or "" for plain text.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return ""
	}
	name, _, _ := strings.Cut(fields[0], "@")
	return strings.ToLower(name)
}

// logMiddleware drops updates without a sender and logs the rest. Message
// text is never logged since /login and /join carry passwords.
func (b *Bot) logMiddleware(next bot.HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
		userID := extractUserID(update)
		if userID == 0 {
			return
		}
		logUserAction(userID, update)
		next(ctx, tgBot, update)
	}
}

// logUserAction logs what kind of input arrived, with hashed ids.
func logUserAction(userID int64, update *tgmodels.Update) {
	switch {
	case update.Message != nil:
		msg := update.Message
		event := logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("chat_hash", logger.HashChatID(msg.Chat.ID))

		if cmd := commandName(msg.Text); cmd != "" {
			event = event.Str("command", cmd)
		}
		if len(msg.Photo) > 0 {
			event = event.Str("type", "photo")
		}
		event.Msg("User input")

	case update.CallbackQuery != nil:
		logger.Log.Info().
			Str("user_hash", logger.HashUserID(userID)).
			Str("data", update.CallbackQuery.Data).
			Msg("Callback query")
	}
}

// extractUserID gets the user ID from various update types.
func extractUserID(update *tgmodels.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// extractUsername gets the Telegram username of the sender.
func extractUsername(update *tgmodels.Update) string {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.Username
	}
	if update.CallbackQuery != nil {
		return update.CallbackQuery.From.Username
	}
	return ""
}

// defaultHandler answers anything no other handler matched.
func (b *Bot) defaultHandler(ctx context.Context, tgBot *bot.Bot, update *tgmodels.Update) {
	b.defaultHandlerCore(ctx, tgBot, update)
}

func (b *Bot) defaultHandlerCore(ctx context.Context, tg TelegramAPI, update *tgmodels.Update) {
	if update.Message == nil || update.Message.Chat.Type != tgmodels.ChatTypePrivate {
		return
	}
	b.reply(ctx, tg, update.Message.Chat.ID,
		"I didn't understand that. Use /help to see available commands.")
}
