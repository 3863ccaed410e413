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
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
)

const scheduleUsage = "/schedule [gen <start> <interval> | add <day> | move <from> <to> | del <day> | assign <day> <n> | unassign <day> <#> | book <day> | unbook <day>]"

// scheduleArgs are the subcommand and its numeric arguments.
type scheduleArgs struct {
	sub  string
	nums []int
	raw  []string
}

// arity lists how many arguments each subcommand takes.
var arity = map[string]int{
	"gen":      2,
	"add":      1,
	"move":     2,
	"del":      1,
	"assign":   2,
	"unassign": 2,
	"book":     1,
	"unbook":   1,
}

func parseScheduleArgs(args []string) (scheduleArgs, bool) {
	out := scheduleArgs{sub: strings.ToLower(args[0]), raw: args[1:]}
	n, ok := arity[out.sub]
	if !ok || len(out.raw) != n {
		return out, false
	}
	for _, a := range out.raw {
		v, err := parseDay(a)
		if err != nil {
			return out, false
		}
		out.nums = append(out.nums, v)
	}
	return out, true
}

func (b *Bot) handleSchedule(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleScheduleCore(ctx, tgBot, update)
}

// handleScheduleCore shows or edits the bazaar schedule. Managers edit
// everything; boarders book and unbook themselves.
func (b *Bot) handleScheduleCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID
	mgr := s.ManagerUsername

	m, err := b.ledger.Manager(ctx, mgr)
	if err != nil {
		b.replyError(ctx, tg, chatID, "schedule", err)
		return
	}

	args := commandArgs(msg.Text, "/schedule")
	if len(args) == 0 {
		b.reply(ctx, tg, chatID, report.FormatSchedule(schedule.Schedule(m.BazaarSchedule), m.Year, m.Month))
		return
	}

	sa, ok := parseScheduleArgs(args)
	if !ok {
		b.usage(ctx, tg, chatID, scheduleUsage)
		return
	}

	selfService := sa.sub == "book" || sa.sub == "unbook"
	switch {
	case selfService && s.IsManager():
		b.reply(ctx, tg, chatID, msgBoarderOnly)
		return
	case !selfService && !s.IsManager():
		b.reply(ctx, tg, chatID, msgManagerOnly)
		return
	}

	var res ledger.Result[schedule.Schedule]
	switch sa.sub {
	case "gen":
		res, err = b.ledger.GenerateSchedule(ctx, mgr, sa.nums[0], sa.nums[1])
	case "add":
		res, err = b.ledger.AddScheduleDate(ctx, mgr, sa.nums[0])
	case "move":
		res, err = b.ledger.MoveScheduleDate(ctx, mgr, sa.nums[0], sa.nums[1])
	case "del":
		res, err = b.ledger.DeleteScheduleDate(ctx, mgr, sa.nums[0])
	case "assign":
		boarder := b.boarderAt(ctx, tg, chatID, mgr, sa.raw[1])
		if boarder == nil {
			return
		}
		res, err = b.ledger.AssignShopper(ctx, mgr, sa.nums[0], boarder.ID)
	case "unassign":
		// Shoppers are picked from the day's own list so copies of
		// deleted boarders can still be removed.
		day, k := sa.nums[0], sa.nums[1]
		shoppers := m.BazaarSchedule[day].Shoppers
		if k < 1 || k > len(shoppers) {
			b.reply(ctx, tg, chatID, fmt.Sprintf("⚠️ Day %d has no shopper #%d. See /schedule.", day, k))
			return
		}
		res, err = b.ledger.UnassignShopper(ctx, mgr, day, shoppers[k-1].ID)
	case "book", "unbook":
		res, err = b.editShopper(ctx, mgr, sa.sub == "book", sa.nums[0], s.BoarderID)
	}

	if err != nil {
		b.replyError(ctx, tg, chatID, "schedule_"+sa.sub, err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, "✅ Schedule updated.\n\n"+report.FormatSchedule(res.Value, m.Year, m.Month))
}

func (b *Bot) editShopper(ctx context.Context, mgr string, add bool, day int, boarderID string) (ledger.Result[schedule.Schedule], error) {
	if add {
		return b.ledger.AssignShopper(ctx, mgr, day, boarderID)
	}
	return b.ledger.UnassignShopper(ctx, mgr, day, boarderID)
}

// Bazaar days a boarder is down for, used by the reminder.
func shoppingDays(m *appmodels.Manager, boarderID string) []int {
	return schedule.DaysFor(schedule.Schedule(m.BazaarSchedule), boarderID)
}
