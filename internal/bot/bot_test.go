package bot

import (
	"context"
	"testing"

	tgmodels "github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
)

func TestExtractUserID(t *testing.T) {
	t.Parallel()

	t.Run("extracts from message", func(t *testing.T) {
		t.Parallel()
		update := &tgmodels.Update{
			Message: &tgmodels.Message{
				From: &tgmodels.User{ID: 12345},
			},
		}
		require.Equal(t, int64(12345), extractUserID(update))
	})

	t.Run("extracts from callback query", func(t *testing.T) {
		t.Parallel()
		update := &tgmodels.Update{
			CallbackQuery: &tgmodels.CallbackQuery{
				From: tgmodels.User{ID: 67890},
			},
		}
		require.Equal(t, int64(67890), extractUserID(update))
	})

	t.Run("returns zero for empty update", func(t *testing.T) {
		t.Parallel()
		require.Equal(t, int64(0), extractUserID(&tgmodels.Update{}))
	})

	t.Run("returns zero for message without from", func(t *testing.T) {
		t.Parallel()
		update := &tgmodels.Update{
			Message: &tgmodels.Message{From: nil},
		}
		require.Equal(t, int64(0), extractUserID(update))
	})
}

func TestExtractUsername(t *testing.T) {
	t.Parallel()

	update := mocks.NewUpdateBuilder().
		WithMessage(1, 2, "/start").
		WithFrom(2, "rahim", "Rahim").
		Build()
	require.Equal(t, "rahim", extractUsername(update))

	cb := mocks.CallbackQueryUpdate(1, 2, 10, resetCancelData)
	require.Equal(t, "testuser", extractUsername(cb))

	require.Empty(t, extractUsername(&tgmodels.Update{}))
}

func TestCommandName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want string
	}{
		{"/expense market 500", "/expense"},
		{"/expenses", "/expenses"},
		{"/Summary", "/summary"},
		{"/balance@MessBot 2", "/balance"},
		{"  /help  ", "/help"},
		{"hello /help", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, commandName(tt.text))
		})
	}
}

func TestMatchCommand(t *testing.T) {
	t.Parallel()

	expense := matchCommand("/expense")

	require.True(t, expense(mocks.CommandUpdate(1, 2, "/expense market 500")))
	require.True(t, expense(mocks.CommandUpdate(1, 2, "/expense@MessBot market 500")))
	require.False(t, expense(mocks.CommandUpdate(1, 2, "/expenses")))
	require.False(t, expense(mocks.CallbackQueryUpdate(1, 2, 3, "reset:confirm")))
}

func TestIsPhoto(t *testing.T) {
	t.Parallel()

	require.True(t, isPhoto(mocks.PhotoUpdate(1, 2, "file")))
	require.False(t, isPhoto(mocks.CommandUpdate(1, 2, "/start")))
	require.False(t, isPhoto(&tgmodels.Update{}))
}

func TestCommandHandlers(t *testing.T) {
	t.Parallel()

	env := newTestBot(t)
	handlers := env.bot.commandHandlers()

	for _, cmd := range []string{
		"/start", "/help", "/register", "/login", "/join", "/logout", "/setup",
		"/addboarder", "/boarders", "/rmboarder", "/move", "/editboarder", "/deposit", "/rice",
		"/undeposit", "/unrice", "/editdeposit", "/editrice", "/cost", "/meal", "/cook",
		"/check", "/expense", "/expenses", "/rmexpense", "/editexpense", "/summary",
		"/balance", "/schedule", "/report",
		"/iftaar", "/reset",
	} {
		require.Contains(t, handlers, cmd)
		if cmd != "/start" && cmd != "/help" {
			require.Contains(t, helpText, cmd, "help should mention %s", cmd)
		}
	}
}

func TestDefaultHandlerCore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("private chat gets a hint", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.bot.defaultHandlerCore(ctx, env.tg, mocks.CommandUpdate(testChatID, 1, "hello"))

		require.Equal(t, 1, env.tg.SentMessageCount())
		require.Contains(t, env.tg.LastText(), "/help")
	})

	t.Run("group chat stays quiet", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		update := mocks.CommandUpdate(testChatID, 1, "hello")
		update.Message.Chat.Type = tgmodels.ChatTypeGroup
		env.bot.defaultHandlerCore(ctx, env.tg, update)

		require.Equal(t, 0, env.tg.SentMessageCount())
	})

	t.Run("no message", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.bot.defaultHandlerCore(ctx, env.tg, &tgmodels.Update{})
		require.Equal(t, 0, env.tg.SentMessageCount())
	})
}

func TestErrorText(t *testing.T) {
	t.Parallel()

	env := newTestBot(t)
	env.withManager(t)
	ctx := context.Background()

	_, err := env.bot.ledger.Login(ctx, 1, testManager, "wrong")
	require.Equal(t, "❌ Invalid credentials.", errorText("login", 1, err))

	_, err = env.bot.ledger.AddBoarder(ctx, testManager, ledger.BoarderInput{})
	require.Contains(t, errorText("add_boarder", 1, err), "⚠️ Invalid Name (required)")

	require.Equal(t, msgOwnRecords, errorText("update_boarder", 1, ledger.ErrForbidden))
	require.Equal(t, msgGenericError, errorText("x", 1, context.Canceled))
}
