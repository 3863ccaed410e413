package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

// boarderAt resolves a 1-based list number, replying when it cannot.
func (b *Bot) boarderAt(ctx context.Context, tg TelegramAPI, chatID int64, managerID, arg string) *appmodels.Boarder {
	pos, err := parsePosition(arg)
	if err != nil {
		b.reply(ctx, tg, chatID, fmt.Sprintf("⚠️ %q is not a boarder number. See /boarders.", escapeHTML(arg)))
		return nil
	}
	boarder, err := b.ledger.BoarderAt(ctx, managerID, pos)
	if err != nil {
		b.replyError(ctx, tg, chatID, "boarder_at", err)
		return nil
	}
	return boarder
}

// replyBoarderResult reports a boarder mutation. A nil value means the
// boarder vanished in the meantime.
func (b *Bot) replyBoarderResult(
	ctx context.Context,
	tg TelegramAPI,
	chatID int64,
	op string,
	res ledger.Result[*appmodels.Boarder],
	err error,
	render func(*appmodels.Boarder) string,
) {
	if err != nil {
		b.replyError(ctx, tg, chatID, op, err)
		return
	}
	if !res.Changed || res.Value == nil {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, render(res.Value))
}

func sumDeposits(bd *appmodels.Boarder) decimal.Decimal {
	total := decimal.Zero
	for _, d := range bd.Deposits {
		total = total.Add(d.Amount)
	}
	return total
}

func sumRice(bd *appmodels.Boarder) decimal.Decimal {
	total := decimal.Zero
	for _, d := range bd.RiceDeposits {
		total = total.Add(d.Amount)
	}
	return total
}

func (b *Bot) handleAddBoarder(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleAddBoarderCore(ctx, tgBot, update)
}

// handleAddBoarderCore appends a boarder to the list.
func (b *Bot) handleAddBoarderCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}

	name := extractCommandArgs(msg.Text, "/addboarder")
	if name == "" {
		b.usage(ctx, tg, msg.Chat.ID, "/addboarder <name>")
		return
	}

	res, err := b.ledger.AddBoarder(ctx, s.ManagerUsername, ledger.BoarderInput{Name: name})
	b.replyBoarderResult(ctx, tg, msg.Chat.ID, "add_boarder", res, err, func(bd *appmodels.Boarder) string {
		return fmt.Sprintf("✅ Added <b>%s</b> as boarder #%d.", escapeHTML(bd.Name), bd.Order+1)
	})
}

func (b *Bot) handleBoarders(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleBoardersCore(ctx, tgBot, update)
}

// handleBoardersCore lists boarders with the numbers other commands take.
func (b *Bot) handleBoardersCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}

	boarders, err := b.ledger.ListBoarders(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "list_boarders", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, report.FormatBoarders(boarders))
}

func (b *Bot) handleRemoveBoarder(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRemoveBoarderCore(ctx, tgBot, update)
}

// handleRemoveBoarderCore deletes a boarder. Schedule entries keep the
// shopper's name.
func (b *Bot) handleRemoveBoarderCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/rmboarder")
	if len(args) != 1 {
		b.usage(ctx, tg, chatID, "/rmboarder <n>")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}

	res, err := b.ledger.DeleteBoarder(ctx, s.ManagerUsername, boarder.ID)
	if err != nil {
		b.replyError(ctx, tg, chatID, "delete_boarder", err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("🗑️ Removed <b>%s</b>.", escapeHTML(boarder.Name)))
}

func (b *Bot) handleMoveBoarder(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleMoveBoarderCore(ctx, tgBot, update)
}

// handleMoveBoarderCore swaps a boarder with its neighbour.
func (b *Bot) handleMoveBoarderCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/move")
	if len(args) != 2 {
		b.usage(ctx, tg, chatID, "/move <n> up|down")
		return
	}
	var dir ledger.Direction
	switch strings.ToLower(args[1]) {
	case "up":
		dir = ledger.Up
	case "down":
		dir = ledger.Down
	default:
		b.usage(ctx, tg, chatID, "/move <n> up|down")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}

	res, err := b.ledger.MoveBoarder(ctx, s.ManagerUsername, boarder.ID, dir)
	if err != nil {
		b.replyError(ctx, tg, chatID, "move_boarder", err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, report.FormatBoarders(res.Value))
}

func (b *Bot) handleDeposit(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleDepositCore(ctx, tgBot, update)
}

// handleDepositCore records a money deposit, or lists deposits when no
// amount is given.
func (b *Bot) handleDepositCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args, date := takeDate(commandArgs(msg.Text, "/deposit"))
	if len(args) < 1 || len(args) > 2 {
		b.usage(ctx, tg, chatID, "/deposit <n> [amount] [yyyy-mm-dd]")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}
	if len(args) == 1 {
		b.reply(ctx, tg, chatID, report.FormatDeposits(boarder))
		return
	}

	amount, err := parseAmount(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, "/deposit <n> <amount> [yyyy-mm-dd]")
		return
	}
	res, err := b.ledger.AddDeposit(ctx, s.ManagerUsername, boarder.ID, amount, date)
	b.replyBoarderResult(ctx, tg, chatID, "add_deposit", res, err, func(bd *appmodels.Boarder) string {
		return fmt.Sprintf("✅ Deposit %s from <b>%s</b>. Total deposit: %s",
			amount.StringFixed(2), escapeHTML(bd.Name), sumDeposits(bd).StringFixed(2))
	})
}

func (b *Bot) handleRice(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRiceCore(ctx, tgBot, update)
}

// handleRiceCore records rice handed over by a boarder. "prev" marks rice
// carried in from last month.
func (b *Bot) handleRiceCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args, date := takeDate(commandArgs(msg.Text, "/rice"))
	previous := false
	if len(args) == 3 && strings.EqualFold(args[2], "prev") {
		previous = true
		args = args[:2]
	}
	if len(args) != 2 {
		b.usage(ctx, tg, chatID, "/rice <n> <pots> [prev] [yyyy-mm-dd]")
		return
	}
	pots, err := parseAmount(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, "/rice <n> <pots> [prev] [yyyy-mm-dd]")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}

	res, err := b.ledger.AddRiceDeposit(ctx, s.ManagerUsername, boarder.ID, pots, date, previous)
	b.replyBoarderResult(ctx, tg, chatID, "add_rice_deposit", res, err, func(bd *appmodels.Boarder) string {
		return fmt.Sprintf("✅ Rice %s pots from <b>%s</b>. Total rice deposit: %s pots",
			pots, escapeHTML(bd.Name), sumRice(bd))
	})
}

func (b *Bot) handleUndeposit(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRemoveDepositCore(ctx, tgBot, update, "/undeposit")
}

func (b *Bot) handleUnrice(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRemoveDepositCore(ctx, tgBot, update, "/unrice")
}

// handleRemoveDepositCore removes a money (/undeposit) or rice (/unrice)
// deposit by its number in the boarder's deposit list.
func (b *Bot) handleRemoveDepositCore(ctx context.Context, tg TelegramAPI, update *models.Update, cmd string) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, cmd)
	if len(args) != 2 {
		b.usage(ctx, tg, chatID, cmd+" <n> <deposit #>")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}
	idx, err := parsePosition(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, cmd+" <n> <deposit #>")
		return
	}

	var res ledger.Result[*appmodels.Boarder]
	if cmd == "/unrice" {
		if idx > len(boarder.RiceDeposits) {
			b.reply(ctx, tg, chatID, report.FormatDeposits(boarder))
			return
		}
		res, err = b.ledger.RemoveRiceDeposit(ctx, s.ManagerUsername, boarder.ID, boarder.RiceDeposits[idx-1].ID)
	} else {
		if idx > len(boarder.Deposits) {
			b.reply(ctx, tg, chatID, report.FormatDeposits(boarder))
			return
		}
		res, err = b.ledger.RemoveDeposit(ctx, s.ManagerUsername, boarder.ID, boarder.Deposits[idx-1].ID)
	}
	b.replyBoarderResult(ctx, tg, chatID, strings.TrimPrefix(cmd, "/"), res, err, func(bd *appmodels.Boarder) string {
		return "🗑️ Removed.\n\n" + report.FormatDeposits(bd)
	})
}

const (
	editDepositUsage = "/editdeposit <n> <deposit #> amount|date <value>"
	editRiceUsage    = "/editrice <n> <deposit #> amount|date|type <value>"
)

func (b *Bot) handleEditDeposit(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleEditDepositCore(ctx, tgBot, update, "/editdeposit")
}

func (b *Bot) handleEditRice(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleEditDepositCore(ctx, tgBot, update, "/editrice")
}

// parseDepositPatch reads one "field value" pair. Rice deposits also
// accept "type deposit|prev".
func parseDepositPatch(field, value string, rice bool) (ledger.DepositPatch, bool) {
	var patch ledger.DepositPatch
	switch strings.ToLower(field) {
	case "amount":
		amount, err := parseAmount(value)
		if err != nil {
			return patch, false
		}
		patch.Amount = &amount
	case "date":
		date := strings.TrimPrefix(value, "@")
		patch.Date = &date
	case "type":
		if !rice {
			return patch, false
		}
		var previous bool
		switch strings.ToLower(value) {
		case "deposit":
		case "prev", "previous":
			previous = true
		default:
			return patch, false
		}
		patch.Previous = &previous
	default:
		return patch, false
	}
	return patch, true
}

// handleEditDepositCore changes one field of a money (/editdeposit) or rice
// (/editrice) deposit, picked by its number in the boarder's deposit list.
func (b *Bot) handleEditDepositCore(ctx context.Context, tg TelegramAPI, update *models.Update, cmd string) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID
	rice := cmd == "/editrice"
	usage := editDepositUsage
	if rice {
		usage = editRiceUsage
	}

	args := commandArgs(msg.Text, cmd)
	if len(args) != 4 {
		b.usage(ctx, tg, chatID, usage)
		return
	}
	idx, err := parsePosition(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, usage)
		return
	}
	patch, ok := parseDepositPatch(args[2], args[3], rice)
	if !ok {
		b.usage(ctx, tg, chatID, usage)
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}

	var res ledger.Result[*appmodels.Boarder]
	if rice {
		if idx > len(boarder.RiceDeposits) {
			b.reply(ctx, tg, chatID, report.FormatDeposits(boarder))
			return
		}
		res, err = b.ledger.UpdateRiceDeposit(ctx, s.ManagerUsername, boarder.ID, boarder.RiceDeposits[idx-1].ID, patch)
	} else {
		if idx > len(boarder.Deposits) {
			b.reply(ctx, tg, chatID, report.FormatDeposits(boarder))
			return
		}
		res, err = b.ledger.UpdateDeposit(ctx, s.ManagerUsername, boarder.ID, boarder.Deposits[idx-1].ID, patch)
	}
	b.replyBoarderResult(ctx, tg, chatID, strings.TrimPrefix(cmd, "/"), res, err, func(bd *appmodels.Boarder) string {
		return "✏️ Updated.\n\n" + report.FormatDeposits(bd)
	})
}

func (b *Bot) handleCost(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleCostCore(ctx, tgBot, update)
}

// handleCostCore sets a boarder's extra or guest charge.
func (b *Bot) handleCostCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/cost")
	if len(args) != 3 {
		b.usage(ctx, tg, chatID, "/cost <n> extra|guest <amount>")
		return
	}
	amount, err := parseAmount(args[2])
	if err != nil {
		b.usage(ctx, tg, chatID, "/cost <n> extra|guest <amount>")
		return
	}
	var extra, guest *decimal.Decimal
	switch strings.ToLower(args[1]) {
	case "extra":
		extra = &amount
	case "guest":
		guest = &amount
	default:
		b.usage(ctx, tg, chatID, "/cost <n> extra|guest <amount>")
		return
	}
	boarder := b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0])
	if boarder == nil {
		return
	}

	res, err := b.ledger.SetPersonalCosts(ctx, s.ManagerUsername, boarder.ID, extra, guest)
	b.replyBoarderResult(ctx, tg, chatID, "set_personal_costs", res, err, func(bd *appmodels.Boarder) string {
		return fmt.Sprintf("✅ <b>%s</b>: extra %s, guest %s",
			escapeHTML(bd.Name), bd.ExtraCost.StringFixed(2), bd.GuestCost.StringFixed(2))
	})
}

func (b *Bot) handleMeal(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleMealCore(ctx, tgBot, update)
}

// handleMealCore records a boarder's meals and rice for a day. Boarders
// record their own; managers name the boarder by number. Without a rice
// count the day's recorded rice is kept.
func (b *Bot) handleMealCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID
	args := commandArgs(msg.Text, "/meal")

	var boarder *appmodels.Boarder
	if s.IsManager() {
		if len(args) < 3 || len(args) > 4 {
			b.usage(ctx, tg, chatID, "/meal <n> <day> <meals> [rice]")
			return
		}
		if boarder = b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0]); boarder == nil {
			return
		}
		args = args[1:]
	} else {
		if len(args) < 2 || len(args) > 3 {
			b.usage(ctx, tg, chatID, "/meal <day> <meals> [rice]")
			return
		}
		var err error
		if boarder, err = b.ledger.Boarder(ctx, s.ManagerUsername, s.BoarderID); err != nil {
			b.replyError(ctx, tg, chatID, "meal", err)
			return
		}
	}

	day, err := parseDay(args[0])
	if err != nil {
		b.usage(ctx, tg, chatID, "/meal [n] <day> <meals> [rice]")
		return
	}
	meals, err := parseAmount(args[1])
	if err != nil {
		b.usage(ctx, tg, chatID, "/meal [n] <day> <meals> [rice]")
		return
	}
	rice := boarder.DailyUsage[day].Rice
	if len(args) == 3 {
		if rice, err = parseAmount(args[2]); err != nil {
			b.usage(ctx, tg, chatID, "/meal [n] <day> <meals> [rice]")
			return
		}
	}

	res, err := b.ledger.SetDailyUsage(ctx, s.ManagerUsername, boarder.ID, day, meals, rice)
	b.replyBoarderResult(ctx, tg, chatID, "set_daily_usage", res, err, func(bd *appmodels.Boarder) string {
		total := decimal.Zero
		for _, u := range bd.DailyUsage {
			total = total.Add(u.Meals)
		}
		return fmt.Sprintf("🍽️ <b>%s</b> day %d: %s meals, %s rice. Month so far: %s meals.",
			escapeHTML(bd.Name), day, meals, rice, total)
	})
}

const editBoarderUsage = "/editboarder <n> name|mobile|blood <value>"

func (b *Bot) handleEditBoarder(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleEditBoarderCore(ctx, tgBot, update)
}

// boarderFields are the profile fields /editboarder changes.
var boarderFields = map[string]bool{"name": true, "mobile": true, "blood": true}

// handleEditBoarderCore changes one profile field of a boarder. Boarders may
// leave out the number to edit themselves. Schedule entries keep the name
// they were booked under.
func (b *Bot) handleEditBoarderCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.session(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/editboarder")
	var boarder *appmodels.Boarder
	if !s.IsManager() && len(args) >= 2 && boarderFields[strings.ToLower(args[0])] {
		var err error
		if boarder, err = b.ledger.Boarder(ctx, s.ManagerUsername, s.BoarderID); err != nil {
			b.replyError(ctx, tg, chatID, "update_boarder", err)
			return
		}
	} else {
		if len(args) < 3 {
			b.usage(ctx, tg, chatID, editBoarderUsage)
			return
		}
		if boarder = b.boarderAt(ctx, tg, chatID, s.ManagerUsername, args[0]); boarder == nil {
			return
		}
		args = args[1:]
	}

	in := ledger.BoarderInput{Name: boarder.Name, Mobile: boarder.Mobile, BloodGroup: boarder.BloodGroup}
	value := strings.Join(args[1:], " ")
	switch strings.ToLower(args[0]) {
	case "name":
		in.Name = value
	case "mobile":
		in.Mobile = value
	case "blood":
		in.BloodGroup = strings.ToUpper(value)
	default:
		b.usage(ctx, tg, chatID, editBoarderUsage)
		return
	}

	res, err := b.ledger.UpdateBoarderAs(ctx, s, boarder.ID, in)
	b.replyBoarderResult(ctx, tg, chatID, "update_boarder", res, err, func(bd *appmodels.Boarder) string {
		text := fmt.Sprintf("✅ Updated <b>%s</b>.", escapeHTML(bd.Name))
		if bd.Mobile != "" {
			text += "\n📞 " + escapeHTML(bd.Mobile)
		}
		if bd.BloodGroup != "" {
			text += "\n🩸 " + bd.BloodGroup
		}
		return text
	})
}
