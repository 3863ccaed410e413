package bot

import (
	"context"
	"fmt"
	"slices"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
)

const (
	// ReminderCheckInterval is how often the reminder loop checks whether to send reminders.
	ReminderCheckInterval = 30 * time.Minute
	// ReminderTimeout is the maximum time a single reminder check can take.
	ReminderTimeout = 2 * time.Minute
)

// startMealReminderLoop reminds logged-in boarders who have not recorded
// today's meals.
func (b *Bot) startMealReminderLoop(ctx context.Context) {
	if !b.cfg.MealReminderEnabled {
		logger.Log.Info().Msg("Meal reminder is disabled")
		return
	}

	loc, err := time.LoadLocation(b.cfg.ReminderTimezone)
	if err != nil {
		logger.Log.Error().Err(err).Str("timezone", b.cfg.ReminderTimezone).Msg("Failed to load reminder timezone, disabling reminders")
		return
	}

	logger.Log.Info().
		Int("hour", b.cfg.ReminderHour).
		Str("timezone", b.cfg.ReminderTimezone).
		Msg("Meal reminder loop started")

	reminded := make(map[int64]string)
	ticker := time.NewTicker(ReminderCheckInterval)
	defer ticker.Stop()

	// Check once right away so a start during the reminder hour still
	// sends reminders.
	b.checkAndSendReminders(ctx, reminded, time.Now().In(loc))

	for {
		select {
		case <-ctx.Done():
			logger.Log.Info().Msg("Meal reminder loop stopped")
			return
		case <-ticker.C:
			b.checkAndSendReminders(ctx, reminded, time.Now().In(loc))
		}
	}
}

// checkAndSendReminders sends at most one reminder per user per day, and
// only for messes whose reporting month is the current one.
func (b *Bot) checkAndSendReminders(ctx context.Context, reminded map[int64]string, now time.Time) {
	if now.Hour() != b.cfg.ReminderHour {
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, ReminderTimeout)
	defer cancel()

	todayStr := now.Format("2006-01-02")
	for uid, dateStr := range reminded {
		if dateStr != todayStr {
			delete(reminded, uid)
		}
	}

	usernames, err := b.ledger.Managers(checkCtx)
	if err != nil {
		logger.Log.Error().Err(err).Msg("Failed to list messes for meal reminder")
		return
	}

	day := now.Day()
	for _, username := range usernames {
		m, err := b.ledger.Manager(checkCtx, username)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to load mess for meal reminder")
			continue
		}
		if m.Year != now.Year() || m.MonthIndex() != int(now.Month())-1 {
			continue
		}

		sessions, err := b.ledger.BoarderSessions(checkCtx, username)
		if err != nil {
			logger.Log.Warn().Err(err).Msg("Failed to list boarder sessions")
			continue
		}

		for _, s := range sessions {
			if reminded[s.UserID] == todayStr {
				continue
			}
			boarder, err := b.ledger.Boarder(checkCtx, username, s.BoarderID)
			if err != nil {
				continue
			}
			if _, ok := boarder.DailyUsage[day]; ok {
				continue
			}

			text := fmt.Sprintf("🍽️ Hi %s! You haven't logged your meals for today (day %d).\n\nSend <code>/meal %d &lt;meals&gt; [rice]</code>.",
				escapeHTML(boarder.Name), day, day)
			if slices.Contains(shoppingDays(m, boarder.ID), day) {
				text += "\n\n🛒 You are on bazaar duty today."
			}

			_, err = b.messageSender.SendMessage(checkCtx, &tgbot.SendMessageParams{
				ChatID:    s.UserID,
				Text:      text,
				ParseMode: models.ParseModeHTML,
			})
			if err != nil {
				logger.Log.Warn().Err(err).Str("user_hash", logger.HashUserID(s.UserID)).Msg("Failed to send meal reminder")
				continue
			}

			reminded[s.UserID] = todayStr
			logger.Log.Debug().Str("user_hash", logger.HashUserID(s.UserID)).Msg("Sent meal reminder")
		}
	}
}
