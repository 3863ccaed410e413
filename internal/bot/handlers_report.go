package bot

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

// document is one rendered report file.
type document struct {
	filename string
	data     []byte
}

// renderReport builds the documents for a /report kind.
func renderReport(snap *ledger.Snapshot, kind string) ([]document, error) {
	switch kind {
	case report.KindCSV:
		data, err := report.MonthlyCSV(snap)
		if err != nil {
			return nil, err
		}
		return []document{{report.Filename(snap, report.KindCSV), data}}, nil

	case report.KindWorkbook:
		data, err := report.MonthlyWorkbook(snap)
		if err != nil {
			return nil, err
		}
		return []document{{report.Filename(snap, report.KindWorkbook), data}}, nil

	case "chart":
		period := report.Period(snap)
		var docs []document
		expenses, err := report.ExpenseChart(snap.Expenses, period)
		switch {
		case err == nil:
			docs = append(docs, document{report.Filename(snap, report.KindExpenseChart), expenses})
		case !errors.Is(err, report.ErrNothingToChart):
			return nil, err
		}
		balances, err := report.BalanceChart(snap.Settlement, period)
		switch {
		case err == nil:
			docs = append(docs, document{report.Filename(snap, report.KindBalanceChart), balances})
		case !errors.Is(err, report.ErrNothingToChart):
			return nil, err
		}
		return docs, nil
	}
	return nil, fmt.Errorf("unknown report kind %q", kind)
}

func (b *Bot) handleReport(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handleReportCore(ctx, tgBot, update)
}

// handleReportCore sends the month as CSV, XLSX or PNG charts.
func (b *Bot) handleReportCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	args := commandArgs(msg.Text, "/report")
	if len(args) != 1 {
		b.usage(ctx, tg, chatID, "/report csv|xlsx|chart")
		return
	}
	kind := strings.ToLower(args[0])
	if kind != report.KindCSV && kind != report.KindWorkbook && kind != "chart" {
		b.usage(ctx, tg, chatID, "/report csv|xlsx|chart")
		return
	}

	snap, err := b.ledger.Snapshot(ctx, s.ManagerUsername)
	if err != nil {
		b.replyError(ctx, tg, chatID, "snapshot", err)
		return
	}
	docs, err := renderReport(snap, kind)
	if err != nil {
		logger.Log.Error().Err(err).Str("kind", kind).Msg("Failed to render report")
		b.reply(ctx, tg, chatID, "❌ Failed to generate report. Please try again.")
		return
	}
	if len(docs) == 0 {
		b.reply(ctx, tg, chatID, "📭 Nothing to chart yet. Record some expenses and deposits first.")
		return
	}

	caption := fmt.Sprintf("📊 %s - %s", escapeHTML(snap.Manager.MessName), report.Period(snap))
	for _, doc := range docs {
		_, err := tg.SendDocument(ctx, &bot.SendDocumentParams{
			ChatID:    chatID,
			Document:  &models.InputFileUpload{Filename: doc.filename, Data: bytes.NewReader(doc.data)},
			Caption:   caption,
			ParseMode: models.ParseModeHTML,
		})
		if err != nil {
			logger.Log.Error().Err(err).Str("filename", doc.filename).Msg("Failed to send report")
			b.reply(ctx, tg, chatID, "❌ Failed to send report. Please try again.")
			return
		}
	}
}
