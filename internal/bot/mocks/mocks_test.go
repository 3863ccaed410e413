package mocks

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/require"
)

func TestMockBot_SendMessage(t *testing.T) {
	t.Parallel()

	t.Run("captures sent message", func(t *testing.T) {
		t.Parallel()

		mockBot := NewMockBot()
		msg, err := mockBot.SendMessage(context.Background(), &bot.SendMessageParams{
			ChatID:    int64(12345),
			Text:      "Hello",
			ParseMode: models.ParseModeHTML,
		})
		require.NoError(t, err)
		require.Equal(t, 1000, msg.ID)
		require.Equal(t, int64(12345), msg.Chat.ID)
		require.Equal(t, 1, mockBot.SentMessageCount())
		require.Equal(t, "Hello", mockBot.LastText())
		require.Equal(t, models.ParseModeHTML, mockBot.LastSentMessage().ParseMode)
	})

	t.Run("returns configured error", func(t *testing.T) {
		t.Parallel()

		mockBot := NewMockBot()
		mockBot.SendMessageError = errors.New("send failed")
		_, err := mockBot.SendMessage(context.Background(), &bot.SendMessageParams{ChatID: int64(1), Text: "x"})
		require.EqualError(t, err, "send failed")
		require.Zero(t, mockBot.SentMessageCount())
		require.Empty(t, mockBot.LastText())
	})
}

func TestMockBot_SendDocument(t *testing.T) {
	t.Parallel()

	mockBot := NewMockBot()
	_, err := mockBot.SendDocument(context.Background(), &bot.SendDocumentParams{
		ChatID:   int64(7),
		Document: &models.InputFileUpload{Filename: "report.csv", Data: bytes.NewReader([]byte("a,b"))},
		Caption:  "April",
	})
	require.NoError(t, err)

	doc := mockBot.LastSentDocument()
	require.NotNil(t, doc)
	require.Equal(t, "report.csv", doc.Filename)
	require.Equal(t, []byte("a,b"), doc.Data)
	require.Equal(t, "April", doc.Caption)

	mockBot.Reset()
	require.Nil(t, mockBot.LastSentDocument())
}

func TestMockBot_Files(t *testing.T) {
	t.Parallel()

	mockBot := NewMockBot()
	f, err := mockBot.GetFile(context.Background(), &bot.GetFileParams{FileID: "abc"})
	require.NoError(t, err)
	require.Equal(t, "https://api.telegram.org/file/bot123/photos/abc.jpg", mockBot.FileDownloadLink(f))

	mockBot.FileDownloadLinkToReturn = "http://127.0.0.1/x"
	require.Equal(t, "http://127.0.0.1/x", mockBot.FileDownloadLink(f))

	mockBot.GetFileError = errors.New("gone")
	_, err = mockBot.GetFile(context.Background(), &bot.GetFileParams{FileID: "abc"})
	require.Error(t, err)
}

func TestUpdateBuilder(t *testing.T) {
	t.Parallel()

	t.Run("command", func(t *testing.T) {
		t.Parallel()
		u := CommandUpdate(1, 2, "/help")
		require.Equal(t, "/help", u.Message.Text)
		require.Equal(t, int64(2), u.Message.From.ID)
	})

	t.Run("photo keeps largest last", func(t *testing.T) {
		t.Parallel()
		u := PhotoUpdate(1, 2, "receipt")
		require.Len(t, u.Message.Photo, 2)
		require.Equal(t, "receipt", u.Message.Photo[1].FileID)
	})

	t.Run("callback with custom sender", func(t *testing.T) {
		t.Parallel()
		u := NewUpdateBuilder().WithCallbackQuery("cb", 1, 2, 50, "reset:confirm").WithFrom(9, "karim", "Karim").Build()
		require.Equal(t, int64(9), u.CallbackQuery.From.ID)
		require.Equal(t, 50, u.CallbackQuery.Message.Message.ID)
	})
}
