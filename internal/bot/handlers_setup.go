package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
)

const setupUsage = "/setup rate|month|year|name|mess|mobile|blood|prevrice|group|password|autorice|riceconfig|rule|rules <value>"

// formatSettings renders the manager's current settings.
func formatSettings(m *appmodels.Manager) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "⚙️ <b>%s</b>\n\n", escapeHTML(m.MessName))
	fmt.Fprintf(&sb, "Manager: %s (<code>%s</code>)\n", escapeHTML(m.Name), escapeHTML(m.Username))
	fmt.Fprintf(&sb, "Period: %s %d\n", m.Month, m.Year)
	fmt.Fprintf(&sb, "Meal rate: %s\n", m.MealRate.StringFixed(2))
	fmt.Fprintf(&sb, "Previous rice: %s pots\n", m.PrevRiceBalance.String())
	if m.Mobile != "" {
		fmt.Fprintf(&sb, "Mobile: %s\n", escapeHTML(m.Mobile))
	}
	if m.BloodGroup != "" {
		fmt.Fprintf(&sb, "Blood group: %s\n", escapeHTML(m.BloodGroup))
	}
	if m.BoarderPassword != "" {
		fmt.Fprintf(&sb, "Boarder group: <code>%s</code> (password set)\n", escapeHTML(m.BoarderUsername))
	} else {
		sb.WriteString("Boarder group: not set\n")
	}

	sb.WriteString("\n<b>Auto rice</b>\n")
	if m.RiceConfig != nil {
		fmt.Fprintf(&sb, "Offsets: morning %s, lunch %s, dinner %s\n",
			m.RiceConfig.MorningDiff, m.RiceConfig.LunchDiff, m.RiceConfig.DinnerDiff)
	} else {
		sb.WriteString("Offsets: not set\n")
	}
	state := "off"
	if m.AutoRiceEnabled {
		state = "on"
	}
	fmt.Fprintf(&sb, "Rules: %s", state)
	for _, r := range m.AutoRiceRules {
		fmt.Fprintf(&sb, "\n• %s meals → %s rice", r.Meal, r.Rice)
	}
	return sb.String()
}

func (b *Bot) handleSetup(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleSetupCore(ctx, tgBot, update)
}

// handleSetupCore shows or changes the manager's settings.
func (b *Bot) handleSetupCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID
	username := s.ManagerUsername

	args := commandArgs(msg.Text, "/setup")
	if len(args) == 0 {
		m, err := b.ledger.Manager(ctx, username)
		if err != nil {
			b.replyError(ctx, tg, chatID, "setup", err)
			return
		}
		b.reply(ctx, tg, chatID, formatSettings(m))
		return
	}

	key := strings.ToLower(args[0])
	values := args[1:]
	text := strings.Join(values, " ")

	var (
		res ledger.Result[*appmodels.Manager]
		err error
	)
	switch key {
	case "rate":
		rate, perr := parseSingleAmount(values)
		if perr != nil {
			b.usage(ctx, tg, chatID, "/setup rate <amount>")
			return
		}
		res, err = b.ledger.SetMealRate(ctx, username, rate)

	case "month", "year":
		m, merr := b.ledger.Manager(ctx, username)
		if merr != nil {
			b.replyError(ctx, tg, chatID, "setup", merr)
			return
		}
		year, month := m.Year, m.Month
		if key == "month" {
			var ok bool
			if month, ok = parseMonth(text); !ok {
				b.usage(ctx, tg, chatID, "/setup month <January..December>")
				return
			}
		} else {
			var perr error
			if year, perr = strconv.Atoi(text); perr != nil {
				b.usage(ctx, tg, chatID, "/setup year <yyyy>")
				return
			}
		}
		res, err = b.ledger.SetPeriod(ctx, username, year, month)

	case "name":
		res, err = b.ledger.UpdateProfile(ctx, username, ledger.ProfileInput{Name: &text})
	case "mess":
		if text == "" {
			b.usage(ctx, tg, chatID, "/setup mess <mess name>")
			return
		}
		res, err = b.ledger.UpdateProfile(ctx, username, ledger.ProfileInput{MessName: &text})
	case "mobile":
		res, err = b.ledger.UpdateProfile(ctx, username, ledger.ProfileInput{Mobile: &text})
	case "blood":
		blood := strings.ToUpper(text)
		res, err = b.ledger.UpdateProfile(ctx, username, ledger.ProfileInput{BloodGroup: &blood})

	case "prevrice":
		pots, perr := parseSingleAmount(values)
		if perr != nil {
			b.usage(ctx, tg, chatID, "/setup prevrice <pots>")
			return
		}
		res, err = b.ledger.SetPrevRiceBalance(ctx, username, pots)

	case "group":
		if len(values) != 2 {
			b.usage(ctx, tg, chatID, "/setup group <user> <password>")
			return
		}
		res, err = b.ledger.SetGroupCredentials(ctx, username, values[0], values[1])

	case "password":
		if len(values) != 2 {
			b.usage(ctx, tg, chatID, "/setup password <current> <new>")
			return
		}
		res, err = b.ledger.ChangePassword(ctx, username, values[0], values[1])

	case "autorice":
		if len(values) != 1 || (values[0] != "on" && values[0] != "off") {
			b.usage(ctx, tg, chatID, "/setup autorice on|off")
			return
		}
		res, err = b.ledger.SetAutoRice(ctx, username, values[0] == "on")

	case "riceconfig":
		diffs, perr := parseDecimals(values, 3)
		if perr != nil {
			b.usage(ctx, tg, chatID, "/setup riceconfig <morning> <lunch> <dinner>")
			return
		}
		res, err = b.ledger.SetRiceConfig(ctx, username, appmodels.RiceConfig{
			MorningDiff: diffs[0],
			LunchDiff:   diffs[1],
			DinnerDiff:  diffs[2],
		})

	case "rule":
		pair, perr := parseDecimals(values, 2)
		if perr != nil {
			b.usage(ctx, tg, chatID, "/setup rule <meal> <rice>")
			return
		}
		res, err = b.ledger.UpsertAutoRiceRule(ctx, username, pair[0], pair[1])

	case "rules":
		if text != "clear" {
			b.usage(ctx, tg, chatID, "/setup rules clear")
			return
		}
		res, err = b.ledger.ClearAutoRiceRules(ctx, username)

	default:
		b.usage(ctx, tg, chatID, setupUsage)
		return
	}

	if err != nil {
		b.replyError(ctx, tg, chatID, "setup_"+key, err)
		return
	}
	if !res.Changed {
		b.reply(ctx, tg, chatID, msgNothingDone)
		return
	}
	b.reply(ctx, tg, chatID, "✅ Saved.\n\n"+formatSettings(res.Value))
}

func parseSingleAmount(values []string) (decimal.Decimal, error) {
	if len(values) != 1 {
		return decimal.Zero, errBadNumber
	}
	return parseAmount(values[0])
}

// parseDecimals reads exactly n decimals. Offsets may be negative.
func parseDecimals(values []string, n int) ([]decimal.Decimal, error) {
	if len(values) != n {
		return nil, errBadNumber
	}
	out := make([]decimal.Decimal, n)
	for i, v := range values {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errBadNumber
		}
		out[i] = d
	}
	return out, nil
}
