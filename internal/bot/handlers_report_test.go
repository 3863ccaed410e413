package bot

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gitlab.com/yelinaung/mess-bot/internal/report"
)

func TestRenderReport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	env := newTestBot(t)
	seedMonth(t, env)
	snap, err := env.bot.ledger.Snapshot(ctx, testManager)
	require.NoError(t, err)

	docs, err := renderReport(snap, report.KindCSV)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "green-house_2026-04.csv", docs[0].filename)
	require.NotEmpty(t, docs[0].data)

	docs, err = renderReport(snap, report.KindWorkbook)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "PK", string(docs[0].data[:2]))

	docs, err = renderReport(snap, "chart")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "green-house_2026-04.expenses.png", docs[0].filename)
	require.Equal(t, "green-house_2026-04.balances.png", docs[1].filename)
	for _, doc := range docs {
		require.Equal(t, "\x89PNG", string(doc.data[:4]))
	}

	_, err = renderReport(snap, "pdf")
	require.Error(t, err)
}

func TestHandleReportCore(t *testing.T) {
	t.Parallel()

	t.Run("sends the csv", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		seedMonth(t, env)

		env.send(env.bot.handleReportCore, managerUserID, "/report CSV")

		doc := env.tg.LastSentDocument()
		require.NotNil(t, doc)
		require.Equal(t, "green-house_2026-04.csv", doc.Filename)
		require.Equal(t, "📊 Green House - April 2026", doc.Caption)
		require.Contains(t, string(doc.Data), "Rahim")
	})

	t.Run("usage", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)

		require.Contains(t, env.send(env.bot.handleReportCore, managerUserID, "/report"), "Usage:")
		require.Contains(t, env.send(env.bot.handleReportCore, managerUserID, "/report pdf"), "Usage:")
		require.Empty(t, env.tg.SentDocuments)
	})

	t.Run("nothing to chart", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)

		require.Contains(t, env.send(env.bot.handleReportCore, managerUserID, "/report chart"), "📭 Nothing to chart yet")
		require.Empty(t, env.tg.SentDocuments)
	})

	t.Run("upload fails", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		seedMonth(t, env)
		env.tg.SendDocumentError = errors.New("network down")

		require.Equal(t, "❌ Failed to send report. Please try again.",
			env.send(env.bot.handleReportCore, managerUserID, "/report xlsx"))
	})

	t.Run("boarders cannot export", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		seedMonth(t, env)
		env.joinAs(t, 1)

		require.Equal(t, msgManagerOnly, env.send(env.bot.handleReportCore, boarderUserID, "/report csv"))
	})
}
