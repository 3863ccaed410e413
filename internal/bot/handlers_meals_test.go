package bot

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestHandleCookCore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("explicit rice", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)

		text := env.send(env.bot.handleCookCore, managerUserID, "/cook 2 morning 8 6")
		require.Equal(t, "🍳 Day 2 morning: 8 meals, 6 rice\nDay total: 8 meals, 6 rice", text)

		text = env.send(env.bot.handleCookCore, managerUserID, "/cook 2 d 4 4")
		require.Equal(t, "🍳 Day 2 dinner: 4 meals, 4 rice\nDay total: 12 meals, 10 rice", text)
	})

	t.Run("auto rice from offsets", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.send(env.bot.handleSetupCore, managerUserID, "/setup riceconfig -2 2 0")

		text := env.send(env.bot.handleCookCore, managerUserID, "/cook 5 lunch 10")
		require.Equal(t, "🍳 Day 5 lunch: 10 meals, 12 rice (auto)\nDay total: 10 meals, 12 rice", text)
	})

	t.Run("auto rice rule wins over offsets", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.send(env.bot.handleSetupCore, managerUserID, "/setup riceconfig -2 2 0")
		env.send(env.bot.handleSetupCore, managerUserID, "/setup rule 10 7")
		env.send(env.bot.handleSetupCore, managerUserID, "/setup autorice on")

		text := env.send(env.bot.handleCookCore, managerUserID, "/cook 5 lunch 10")
		require.Contains(t, text, "10 meals, 7 rice (auto)")
	})

	t.Run("clear day", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.send(env.bot.handleCookCore, managerUserID, "/cook 2 morning 8 6")

		require.Equal(t, "🧹 Cleared the cook's record for day 2.", env.send(env.bot.handleCookCore, managerUserID, "/cook 2 clear"))

		m, err := env.bot.ledger.Manager(ctx, testManager)
		require.NoError(t, err)
		require.NotContains(t, m.SystemDaily, 2)
	})

	t.Run("bad input", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)

		for _, text := range []string{"/cook", "/cook 2 brunch 5", "/cook x morning 5", "/cook 2 morning -1", "/cook 2 morning 5 abc"} {
			require.Contains(t, env.send(env.bot.handleCookCore, managerUserID, text), "Usage:", text)
		}
		require.Contains(t, env.send(env.bot.handleCookCore, managerUserID, "/cook 31 morning 5"), "Invalid Day (range)")
	})

	t.Run("boarders cannot cook", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)

		require.Equal(t, msgManagerOnly, env.send(env.bot.handleCookCore, boarderUserID, "/cook 2 morning 8"))
	})
}

func TestHandleCheckCore(t *testing.T) {
	t.Parallel()

	t.Run("ledgers agree", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim", "Salim")
		env.send(env.bot.handleMealCore, managerUserID, "/meal 1 1 2 2")
		env.send(env.bot.handleMealCore, managerUserID, "/meal 2 1 1 1")
		env.send(env.bot.handleCookCore, managerUserID, "/cook 1 lunch 3 3")

		text := env.send(env.bot.handleCheckCore, managerUserID, "/check")
		require.Contains(t, text, "Boarders: 3 meals, 3 rice")
		require.Contains(t, text, "Cook: 3 meals, 3 rice")
		require.Contains(t, text, "✅ Both ledgers agree.")
	})

	t.Run("mismatch lists the day", func(t *testing.T) {
		t.Parallel()
		env := newTestBot(t)
		env.withManager(t)
		env.withBoarders(t, "Rahim")
		env.joinAs(t, 1)
		env.send(env.bot.handleMealCore, boarderUserID, "/meal 4 2 1")
		env.send(env.bot.handleCookCore, managerUserID, "/cook 4 dinner 3 1")

		text := env.send(env.bot.handleCheckCore, boarderUserID, "/check")
		require.Contains(t, text, "⚠️ Meal difference: +1")
		require.Contains(t, text, "4 | +1 | 0")
	})
}

func TestShiftTotalsStored(t *testing.T) {
	t.Parallel()

	env := newTestBot(t)
	env.withManager(t)
	env.send(env.bot.handleCookCore, managerUserID, "/cook 3 m 5 3")
	env.send(env.bot.handleCookCore, managerUserID, "/cook 3 noon 6 8")

	m, err := env.bot.ledger.Manager(context.Background(), testManager)
	require.NoError(t, err)
	entry := m.SystemDaily[3]
	require.True(t, decimal.NewFromInt(5).Equal(entry.Morning.Meal))
	require.True(t, decimal.NewFromInt(8).Equal(entry.Lunch.Rice))
	require.True(t, entry.Dinner.Meal.IsZero())
}
