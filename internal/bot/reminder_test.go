package bot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var reminderTime = time.Date(2026, time.April, 10, 21, 0, 0, 0, time.UTC)

func TestCheckAndSendReminders(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("outside the reminder hour", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)

		env.bot.checkAndSendReminders(ctx, map[int64]string{}, reminderTime.Add(-2*time.Hour))
		require.Zero(t, env.tg.SentMessageCount())
	})

	t.Run("reminds once a day", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)

		reminded := map[int64]string{}
		env.bot.checkAndSendReminders(ctx, reminded, reminderTime)

		require.Equal(t, 1, env.tg.SentMessageCount())
		msg := env.tg.LastSentMessage()
		require.Equal(t, boarderUserID, msg.ChatID)
		require.Contains(t, msg.Text, "Hi Rahim!")
		require.Contains(t, msg.Text, "(day 10)")
		require.NotContains(t, msg.Text, "bazaar duty")
		require.Equal(t, "2026-04-10", reminded[boarderUserID])

		env.bot.checkAndSendReminders(ctx, reminded, reminderTime.Add(30*time.Minute))
		require.Equal(t, 1, env.tg.SentMessageCount())
	})

	t.Run("stale entries are pruned", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)

		reminded := map[int64]string{boarderUserID: "2026-04-09", 999: "2026-04-09"}
		env.bot.checkAndSendReminders(ctx, reminded, reminderTime)

		require.Equal(t, 1, env.tg.SentMessageCount())
		require.Equal(t, map[int64]string{boarderUserID: "2026-04-10"}, reminded)
	})

	t.Run("skips boarders who logged today", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)
		env.send(env.bot.handleMealCore, boarderUserID, "/meal 10 2")
		sent := env.tg.SentMessageCount()

		env.bot.checkAndSendReminders(ctx, map[int64]string{}, reminderTime)
		require.Equal(t, sent, env.tg.SentMessageCount())
	})

	t.Run("skips other months", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)
		env.send(env.bot.handleSetupCore, managerUserID, "/setup month may")
		sent := env.tg.SentMessageCount()

		env.bot.checkAndSendReminders(ctx, map[int64]string{}, reminderTime)
		require.Equal(t, sent, env.tg.SentMessageCount())
	})

	t.Run("mentions bazaar duty", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)
		env.send(env.bot.handleScheduleCore, managerUserID, "/schedule gen 10 7")
		env.send(env.bot.handleScheduleCore, managerUserID, "/schedule assign 10 1")

		env.bot.checkAndSendReminders(ctx, map[int64]string{}, reminderTime)
		require.Contains(t, env.tg.LastText(), "🛒 You are on bazaar duty today.")
	})

	t.Run("managers are not reminded", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")

		env.bot.checkAndSendReminders(ctx, map[int64]string{}, reminderTime)
		require.Zero(t, env.tg.SentMessageCount())
	})
}

func TestStartMealReminderLoop(t *testing.T) {
	t.Parallel()

	t.Run("disabled returns immediately", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.bot.cfg.MealReminderEnabled = false

		done := make(chan struct{})
		go func() {
			env.bot.startMealReminderLoop(context.Background())
			close(done)
		}()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("reminder loop did not return")
		}
	})

	t.Run("bad timezone returns immediately", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.bot.cfg.ReminderTimezone = "Mars/Olympus_Mons"

		env.bot.startMealReminderLoop(context.Background())
		require.Zero(t, env.tg.SentMessageCount())
	})

	t.Run("stops on cancel", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		env.bot.startMealReminderLoop(ctx)
	})
}
