package bot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"gitlab.com/yelinaung/mess-bot/internal/gemini"
	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	appmodels "gitlab.com/yelinaung/mess-bot/internal/models"
)

// maxPhotoBytes caps receipt downloads.
const maxPhotoBytes = 10 << 20

const manualExpenseHint = "Please add it manually: <code>/expense market &lt;amount&gt; &lt;shopper&gt;</code>"

// handlePhoto handles photo messages for receipt OCR.
func (b *Bot) handlePhoto(ctx context.Context, tgBot *bot.Bot, update *models.Update) {
	b.handlePhotoCore(ctx, tgBot, update)
}

// handlePhotoCore reads a market receipt and records it as a market
// expense paid by the shop's name.
func (b *Bot) handlePhotoCore(ctx context.Context, tg TelegramAPI, update *models.Update) {
	msg := command(update)
	if msg == nil || len(msg.Photo) == 0 {
		return
	}
	s := b.managerSession(ctx, tg, msg)
	if s == nil {
		return
	}
	chatID := msg.Chat.ID

	if b.gemini == nil {
		b.reply(ctx, tg, chatID, "📷 Receipt scanning is not configured. "+manualExpenseHint)
		return
	}

	largest := msg.Photo[len(msg.Photo)-1]
	b.reply(ctx, tg, chatID, "📷 Reading receipt...")

	imageBytes, err := b.downloadFile(ctx, tg, largest.FileID)
	if err != nil {
		logger.Log.Error().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to download photo")
		b.reply(ctx, tg, chatID, "❌ Failed to download photo. Please try again.")
		return
	}

	receipt, err := b.gemini.ParseReceipt(ctx, imageBytes, "image/jpeg")
	if err != nil {
		logger.Log.Warn().Err(err).Str("chat_hash", logger.HashChatID(chatID)).Msg("Failed to parse receipt")
		if errors.Is(err, gemini.ErrParseTimeout) {
			b.reply(ctx, tg, chatID, "⏱️ Receipt reading timed out. "+manualExpenseHint)
			return
		}
		b.reply(ctx, tg, chatID, "❌ Could not read this receipt. "+manualExpenseHint)
		return
	}
	if !receipt.HasAmount() {
		b.reply(ctx, tg, chatID, "❌ Could not find a total on this receipt. "+manualExpenseHint)
		return
	}

	logger.Log.Info().
		Str("chat_hash", logger.HashChatID(chatID)).
		Str("amount", receipt.Amount.String()).
		Float64("confidence", receipt.Confidence).
		Msg("Receipt parsed")

	res, err := b.ledger.AddExpense(ctx, s.ManagerUsername, ledger.ExpenseInput{
		Date:        receipt.DateString(),
		Shopper:     receipt.Shop,
		Description: receipt.Description(),
		Amount:      receipt.Amount,
		Type:        appmodels.ExpenseTypeMarket,
	})
	if err != nil {
		b.replyError(ctx, tg, chatID, "add_receipt_expense", err)
		return
	}

	text := "📸 Receipt saved.\n\n" + formatExpenseSaved(res.Value) +
		"\n\nWrong? Remove it with /rmexpense and add it by hand."
	b.reply(ctx, tg, chatID, text)
}

// downloadFile fetches a Telegram file through the instrumented client.
func (b *Bot) downloadFile(ctx context.Context, tg TelegramAPI, fileID string) ([]byte, error) {
	file, err := tg.GetFile(ctx, &bot.GetFileParams{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("failed to get file info: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, tg.FileDownloadLink(file), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := b.httpClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// The URL embeds the bot token; keep it out of the error.
		return nil, fmt.Errorf("failed to download file: %s", strings.ReplaceAll(err.Error(), req.URL.String(), "<redacted>"))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxPhotoBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	if len(data) > maxPhotoBytes {
		return nil, fmt.Errorf("file larger than %d bytes", maxPhotoBytes)
	}
	return data, nil
}
