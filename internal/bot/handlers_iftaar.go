package bot

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

const iftaarHelp = `🌙 <b>Iftaar fund</b>

• <code>/iftaar</code> - show the fund
• <code>/iftaar deposit &lt;amount&gt; &lt;name&gt; [yyyy-mm-dd]</code>
• <code>/iftaar expense &lt;amount&gt; &lt;shopper&gt; [yyyy-mm-dd]</code>
• <code>/iftaar bazaar &lt;yyyy-mm-dd&gt; &lt;shopper&gt;</code>
• <code>/iftaar rm deposit|expense|bazaar &lt;#&gt;</code>
• <code>/iftaar config mess|manager|mobile|month|year &lt;value&gt;</code>`

var iftaarRecords = map[string]ledger.IftaarRecord{
	"deposit": ledger.IftaarDepositRecord,
	"expense": ledger.IftaarExpenseRecord,
	"bazaar":  ledger.IftaarBazaarRecord,
}

func (b *Bot) handleIftaar(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleIftaarCore(ctx, tgBot, update)
}

// handleIftaarCore shows the iftaar fund or, for managers, edits it.
func (b *Bot) handleIftaarCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
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

	args := commandArgs(msg.Text, "/iftaar")
	if len(args) == 0 {
		b.replyIftaar(ctx, tg, chatID, mgr, "")
		return
	}
	sub := strings.ToLower(args[0])
	if sub == "help" {
		b.reply(ctx, tg, chatID, iftaarHelp)
		return
	}
	if !s.IsManager() {
		b.reply(ctx, tg, chatID, msgManagerOnly)
		return
	}
	rest, date := takeDate(args[1:])

	var err error
	changed := true
	switch sub {
	case "deposit", "expense":
		if len(rest) < 2 {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		amount, perr := parseAmount(rest[0])
		if perr != nil {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		who := strings.Join(rest[1:], " ")
		if sub == "deposit" {
			_, err = b.ledger.AddIftaarDeposit(ctx, mgr, who, amount, date)
		} else {
			_, err = b.ledger.AddIftaarExpense(ctx, mgr, who, amount, date)
		}

	case "bazaar":
		// The date comes first here, so it is read from the raw args.
		if len(args) < 3 || !isDate(args[1]) {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		_, err = b.ledger.AddIftaarBazaar(ctx, mgr, strings.Join(args[2:], " "), args[1])

	case "rm":
		if len(args) != 3 {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		kind, ok := iftaarRecords[strings.ToLower(args[1])]
		idx, perr := parsePosition(args[2])
		if !ok || perr != nil {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		changed, err = b.removeIftaarRecord(ctx, mgr, kind, idx)

	case "config":
		if len(args) < 3 {
			b.reply(ctx, tg, chatID, iftaarHelp)
			return
		}
		changed, err = b.setIftaarConfig(ctx, mgr, strings.ToLower(args[1]), strings.Join(args[2:], " "))

	default:
		b.reply(ctx, tg, chatID, iftaarHelp)
		return
	}

	if err != nil {
		b.replyError(ctx, tg, chatID, "iftaar_"+sub, err)
		return
	}
	if !changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.replyIftaar(ctx, tg, chatID, mgr, "✅ Saved.\n\n")
}

func (b *Bot) replyIftaar(ctx context.Context, tg TelegramAPI, chatID int64, mgr, prefix string) {
	fund, err := b.ledger.Iftaar(ctx, mgr)
	if err != nil {
		b.replyError(ctx, tg, chatID, "iftaar", err)
		return
	}
	b.reply(ctx, tg, chatID, prefix+report.FormatIftaar(fund))
}

// removeIftaarRecord deletes the idx-th record of a collection as listed
// by /iftaar.
func (b *Bot) removeIftaarRecord(ctx context.Context, mgr string, kind ledger.IftaarRecord, idx int) (bool, error) {
	fund, err := b.ledger.Iftaar(ctx, mgr)
	if err != nil {
		return false, err
	}

	var ids []string
	switch kind {
	case ledger.IftaarDepositRecord:
		for _, d := range fund.Deposits {
			ids = append(ids, d.ID)
		}
	case ledger.IftaarExpenseRecord:
		for _, e := range fund.Expenses {
			ids = append(ids, e.ID)
		}
	default:
		for _, s := range fund.Schedules {
			ids = append(ids, s.ID)
		}
	}
	if idx > len(ids) {
		return false, nil
	}

	res, err := b.ledger.DeleteIftaarRecord(ctx, mgr, kind, ids[idx-1])
	return res.Changed, err
}

// setIftaarConfig changes one field of the iftaar report header.
func (b *Bot) setIftaarConfig(ctx context.Context, mgr, field, value string) (bool, error) {
	m, err := b.ledger.Manager(ctx, mgr)
	if err != nil {
		return false, err
	}
	var cfg appmodels.IftaarConfig
	if m.IftaarConfig != nil {
		cfg = *m.IftaarConfig
	}

	switch field {
	case "mess":
		cfg.MessName = value
	case "manager":
		cfg.ManagerName = value
	case "mobile":
		cfg.ManagerMobile = value
	case "month":
		month, ok := parseMonth(value)
		if !ok {
			return false, nil
		}
		cfg.Month = month
	case "year":
		year, err := strconv.Atoi(value)
		if err != nil {
			return false, nil
		}
		cfg.Year = year
	default:
		return false, nil
	}

	res, err := b.ledger.SetIftaarConfig(ctx, mgr, cfg)
	return res.Changed, err
}
