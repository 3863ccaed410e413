package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

const helpText = `📚 <b>Mess Bot</b>

<b>Account</b>
• <code>/register &lt;username&gt; &lt;password&gt; &lt;mess name&gt;</code>
• <code>/login &lt;username&gt; &lt;password&gt;</code> - manager login
• <code>/join &lt;manager&gt; &lt;group password&gt; [n]</code> - boarder login
• <code>/logout</code>

<b>Settings</b> (manager)
• <code>/setup</code> - show settings
• <code>/setup rate|month|year|name|mess|mobile|blood|prevrice &lt;value&gt;</code>
• <code>/setup group &lt;user&gt; &lt;password&gt;</code>
• <code>/setup password &lt;current&gt; &lt;new&gt;</code>
• <code>/setup autorice on|off</code>, <code>/setup riceconfig &lt;m&gt; &lt;l&gt; &lt;d&gt;</code>
• <code>/setup rule &lt;meal&gt; &lt;rice&gt;</code>, <code>/setup rules clear</code>

<b>Boarders</b> (manager)
• <code>/addboarder &lt;name&gt;</code>, <code>/boarders</code>, <code>/rmboarder &lt;n&gt;</code>
• <code>/move &lt;n&gt; up|down</code>, <code>/editboarder &lt;n&gt; name|mobile|blood &lt;value&gt;</code>
• <code>/deposit &lt;n&gt; [amount] [date]</code>, <code>/undeposit &lt;n&gt; &lt;#&gt;</code>
• <code>/rice &lt;n&gt; &lt;pots&gt; [prev] [date]</code>, <code>/unrice &lt;n&gt; &lt;#&gt;</code>
• <code>/editdeposit &lt;n&gt; &lt;#&gt; amount|date &lt;value&gt;</code>
• <code>/editrice &lt;n&gt; &lt;#&gt; amount|date|type &lt;value&gt;</code>
• <code>/cost &lt;n&gt; extra|guest &lt;amount&gt;</code>
• Boarders: <code>/editboarder name|mobile|blood &lt;value&gt;</code> edits your own profile

<b>Meals</b>
• <code>/meal [n] &lt;day&gt; &lt;meals&gt; [rice]</code> - boarders log their own
• <code>/cook &lt;day&gt; morning|lunch|dinner &lt;meals&gt; [rice]</code>, <code>/cook &lt;day&gt; clear</code>
• <code>/check</code> - compare boarder and cook ledgers

<b>Money</b>
• <code>/expense market|extra &lt;amount&gt; [shopper] [- note] [@date]</code>
• <code>/expenses</code>, <code>/rmexpense &lt;#&gt;</code>
• <code>/editexpense &lt;#&gt; amount|date|shopper|note|type &lt;value&gt;</code>
• <code>/summary</code>, <code>/balance [n]</code>
• Send a receipt photo to record a market expense

<b>Bazaar</b>
• <code>/schedule</code>, <code>/schedule gen &lt;start&gt; &lt;interval&gt;</code>
• <code>/schedule add|del &lt;day&gt;</code>, <code>/schedule move &lt;from&gt; &lt;to&gt;</code>
• <code>/schedule assign &lt;day&gt; &lt;n&gt;</code>, <code>/schedule unassign &lt;day&gt; &lt;shopper #&gt;</code>
• <code>/schedule book|unbook &lt;day&gt;</code>

<b>Reports</b>
• <code>/report csv|xlsx|chart</code>
• <code>/iftaar</code> - iftaar fund (see <code>/iftaar help</code>)
• <code>/reset</code> - delete the whole mess`

// handleStart handles the /start command.
func (b *Bot) handleStart(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleStartCore(ctx, tgBot, update)
}

// handleStartCore is the testable implementation of handleStart.
func (b *Bot) handleStartCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}

	greeting := ""
	if msg.From.FirstName != "" {
		greeting = ", " + escapeHTML(msg.From.FirstName)
	}
	text := fmt.Sprintf(`👋 Welcome%s!

I keep the books for your mess: meals, rice, deposits, market costs and the bazaar rota.

Managers start with <code>/register</code> or <code>/login</code>. Boarders use <code>/join</code> with the group password from their manager.

Use /help to see all commands.`, greeting)
	b.reply(ctx, tg, msg.Chat.ID, text)
}

// handleHelp handles the /help command.
func (b *Bot) handleHelp(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleHelpCore(ctx, tgBot, update)
}

// handleHelpCore is the testable implementation of handleHelp.
func (b *Bot) handleHelpCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	if msg := command(update); msg != nil {
		b.reply(ctx, tg, msg.Chat.ID, helpText)
	}
}

func (b *Bot) handleRegister(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleRegisterCore(ctx, tgBot, update)
}

// handleRegisterCore opens a new mess and logs the sender in as its manager.
func (b *Bot) handleRegisterCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	if !b.cfg.CanRegister(msg.From.ID, msg.From.Username) {
		logger.Log.Warn().Str("user_hash", logger.HashUserID(msg.From.ID)).Msg("Blocked registration")
		b.reply(ctx, tg, chatID, "⛔ You are not allowed to register a mess.")
		return
	}

	args := commandArgs(msg.Text, "/register")
	if len(args) < 3 {
		b.usage(ctx, tg, chatID, "/register <username> <password> <mess name>")
		return
	}

	m, err := b.ledger.RegisterManager(ctx, ledger.RegisterInput{
		Username: args[0],
		Password: args[1],
		Name:     msg.From.FirstName,
		MessName: strings.Join(args[2:], " "),
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "register", err)
		return
	}
	if _, err := b.ledger.Login(ctx, msg.From.ID, args[0], args[1]); err != nil {
		b.replyError(ctx, tg, chatID, "login", err)
		return
	}

	logger.Log.Info().Str("user_hash", logger.HashUserID(msg.From.ID)).Msg("Mess registered")
	b.reply(ctx, tg, chatID, fmt.Sprintf(
		"✅ <b>%s</b> registered for %s %d. You are logged in as manager <code>%s</code>.\n\nNext: <code>/setup rate &lt;amount&gt;</code> and <code>/addboarder &lt;name&gt;</code>.",
		escapeHTML(m.MessName), m.Month, m.Year, escapeHTML(m.Username)))
}

func (b *Bot) handleLogin(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleLoginCore(ctx, tgBot, update)
}

// handleLoginCore binds the sender to a manager account.
func (b *Bot) handleLoginCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}

	args := commandArgs(msg.Text, "/login")
	if len(args) != 2 {
		b.usage(ctx, tg, msg.Chat.ID, "/login <username> <password>")
		return
	}

	m, err := b.ledger.Login(ctx, msg.From.ID, args[0], args[1])
	if err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "login", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, fmt.Sprintf("✅ Logged in as manager of <b>%s</b>.", escapeHTML(m.MessName)))
}

func (b *Bot) handleJoin(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleJoinCore(ctx, tgBot, update)
}

// handleJoinCore logs a boarder in with the group password. Without a
// number it lists the boarders to pick from.
func (b *Bot) handleJoinCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/join")
	if len(args) < 2 || len(args) > 3 {
		b.usage(ctx, tg, chatID, "/join <manager> <group password> [n]")
		return
	}

	if len(args) == 2 {
		boarders, err := b.ledger.CheckBoarderGroupCredentials(ctx, args[0], args[1])
		if err != nil {
			b.replyError(ctx, tg, chatID, "join", err)
			return
		}
		b.reply(ctx, tg, chatID, report.FormatBoarders(boarders)+
			fmt.Sprintf("\n\nPick yourself with <code>/join %s &lt;group password&gt; &lt;n&gt;</code>.", escapeHTML(args[0])))
		return
	}

	pos, err := parsePosition(args[2])
	if err != nil {
		b.usage(ctx, tg, chatID, "/join <manager> <group password> [n]")
		return
	}
	boarder, err := b.ledger.JoinAsBoarder(ctx, msg.From.ID, args[0], args[1], pos)
	if err != nil {
		b.replyError(ctx, tg, chatID, "join", err)
		return
	}
	b.reply(ctx, tg, chatID, fmt.Sprintf("✅ Welcome <b>%s</b>! Log meals with <code>/meal &lt;day&gt; &lt;meals&gt; [rice]</code>.", escapeHTML(boarder.Name)))
}

func (b *Bot) handleLogout(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleLogoutCore(ctx, tgBot, update)
}

// handleLogoutCore drops the sender's session.
func (b *Bot) handleLogoutCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	if err := b.ledger.Logout(ctx, msg.From.ID); err != nil {
		b.replyError(ctx, tg, msg.Chat.ID, "logout", err)
		return
	}
	b.reply(ctx, tg, msg.Chat.ID, "👋 Logged out.")
}
