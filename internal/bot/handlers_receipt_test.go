package bot

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"gitlab.com/yelinaung/mess-bot/internal/bot/mocks"
	"gitlab.com/yelinaung/mess-bot/internal/gemini"
)

// fakeGenerator answers every request with a fixed text or error.
type fakeGenerator struct {
	text  string
	err   error
	calls int
}

func (f *fakeGenerator) GenerateContent(
	_ context.Context,
	_ string,
	_ []*genai.Content,
	_ *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func newPhotoServer(t *testing.T, status int) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte("fake-jpeg-bytes"))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// sendPhoto runs the photo handler for userID and returns the last reply.
func (e *testEnv) sendPhoto(userID int64) string {
	e.bot.handlePhotoCore(context.Background(), e.tg, mocks.PhotoUpdate(testChatID, userID, "receipt"))
	return e.tg.LastText()
}

func TestDownloadFile(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		srv := newPhotoServer(t, http.StatusOK)
		env.tg.FileDownloadLinkToReturn = srv.URL

		data, err := env.bot.downloadFile(ctx, env.tg, "receipt")
		require.NoError(t, err)
		require.Equal(t, "fake-jpeg-bytes", string(data))
	})

	t.Run("bad status", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		srv := newPhotoServer(t, http.StatusNotFound)
		env.tg.FileDownloadLinkToReturn = srv.URL

		_, err := env.bot.downloadFile(ctx, env.tg, "receipt")
		require.ErrorContains(t, err, "status 404")
	})

	t.Run("file lookup fails", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.tg.GetFileError = errors.New("file is too big")

		_, err := env.bot.downloadFile(ctx, env.tg, "receipt")
		require.ErrorContains(t, err, "failed to get file info")
	})
}

func TestHandlePhotoCore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)

		require.Contains(t, env.sendPhoto(managerUserID), "Receipt scanning is not configured")
	})

	t.Run("saves a market expense", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		gen := &fakeGenerator{text: `{"amount":"540","shop":"Bazar","date":"2026-04-09","items":["fish","onion"],"confidence":0.9}`}
		env.bot.gemini = gemini.NewClientWithGenerator(gen)
		env.tg.FileDownloadLinkToReturn = newPhotoServer(t, http.StatusOK).URL

		text := env.sendPhoto(managerUserID)
		require.Contains(t, text, "📸 Receipt saved.")
		require.Contains(t, text, "<b>540.00</b> on 2026-04-09 by Bazar")
		require.Contains(t, text, "📝 fish, onion")
		require.Equal(t, 1, gen.calls)
		require.Equal(t, "📷 Reading receipt...", env.tg.SentMessages[0].Text)

		expenses, err := env.bot.ledger.ListExpenses(ctx, testManager)
		require.NoError(t, err)
		require.Len(t, expenses, 1)
		require.Equal(t, "Bazar", expenses[0].Shopper)
		require.Equal(t, "540", expenses[0].Amount.String())
	})

	t.Run("no total", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.bot.gemini = gemini.NewClientWithGenerator(&fakeGenerator{text: `{"amount":"0","shop":"Bazar"}`})
		env.tg.FileDownloadLinkToReturn = newPhotoServer(t, http.StatusOK).URL

		require.Contains(t, env.sendPhoto(managerUserID), "Could not find a total")

		expenses, err := env.bot.ledger.ListExpenses(ctx, testManager)
		require.NoError(t, err)
		require.Empty(t, expenses)
	})

	t.Run("timeout", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.bot.gemini = gemini.NewClientWithGenerator(&fakeGenerator{err: context.DeadlineExceeded})
		env.tg.FileDownloadLinkToReturn = newPhotoServer(t, http.StatusOK).URL

		require.Contains(t, env.sendPhoto(managerUserID), "⏱️ Receipt reading timed out.")
	})

	t.Run("unreadable", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.bot.gemini = gemini.NewClientWithGenerator(&fakeGenerator{text: "not json"})
		env.tg.FileDownloadLinkToReturn = newPhotoServer(t, http.StatusOK).URL

		require.Contains(t, env.sendPhoto(managerUserID), "❌ Could not read this receipt.")
	})

	t.Run("download fails", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		gen := &fakeGenerator{text: `{"amount":"540"}`}
		env.bot.gemini = gemini.NewClientWithGenerator(gen)
		env.tg.FileDownloadLinkToReturn = newPhotoServer(t, http.StatusInternalServerError).URL

		require.Equal(t, "❌ Failed to download photo. Please try again.", env.sendPhoto(managerUserID))
		require.Zero(t, gen.calls)
	})

	t.Run("boarders cannot scan", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)
		env.bot.gemini = gemini.NewClientWithGenerator(&fakeGenerator{text: `{"amount":"540"}`})

		require.Equal(t, msgManagerOnly, env.sendPhoto(boarderUserID))
	})
}
