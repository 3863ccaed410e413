package bot

import (
	"context"
	"testing"

	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/mess-bot/internal/config"
	"gitlab.com/yelinaung/mess-bot/internal/ledger/ledgertest"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

const (
	testChatID    int64 = 555
	managerUserID int64 = 100
	boarderUserID int64 = 200
	strangerID    int64 = 300
	testManager         = "karim"
)

type coreHandler func(context.Context, TelegramAPI, *models.Update)

// testEnv is a bot over an in-memory ledger and a recording Telegram client.
type testEnv struct {
	bot   *Bot
	store *ledgertest.Store
	tg    *mocks.MockBot
}

func newTestBot(t *testing.T) *testEnv {
	t.Helper()

	svc, store := ledgertest.NewService(settlement.PolicyExclude)
	tg := mocks.NewMockBot()
	cfg := &config.Config{
		MealReminderEnabled: true,
		ReminderHour:        21,
		ReminderTimezone:    "UTC",
	}
	return &testEnv{
		bot:   &Bot{cfg: cfg, ledger: svc, messageSender: tg},
		store: store,
		tg:    tg,
	}
}

// withManager seeds the April 2026 mess and logs managerUserID in.
func (e *testEnv) withManager(t *testing.T) *appmodels.Manager {
	t.Helper()

	m := ledgertest.SeedManager(t, e.bot.ledger, testManager)
	_, err := e.bot.ledger.Login(context.Background(), managerUserID, testManager, "secret")
	require.NoError(t, err)
	return m
}

func (e *testEnv) withBoarders(t *testing.T, names ...string) []*appmodels.Boarder {
	t.Helper()
	return ledgertest.SeedBoarders(t, e.bot.ledger, testManager, names...)
}

// joinAs logs boarderUserID in as the boarder at pos.
func (e *testEnv) joinAs(t *testing.T, pos int) {
	t.Helper()

	_, err := e.bot.ledger.JoinAsBoarder(context.Background(), boarderUserID, testManager, "group-pass", pos)
	require.NoError(t, err)
}

// send runs a handler for a text message and returns the last reply.
func (e *testEnv) send(handler coreHandler, userID int64, text string) string {
	handler(context.Background(), e.tg, mocks.CommandUpdate(testChatID, userID, text))
	return e.tg.LastText()
}

func (e *testEnv) boarder(t *testing.T, pos int) *appmodels.Boarder {
	t.Helper()

	b, err := e.bot.ledger.BoarderAt(context.Background(), testManager, pos)
	require.NoError(t, err)
	return b
}
