package ledgertest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

// Today is the fixed date returned by services built with NewService.
var Today = time.Date(2026, time.April, 10, 9, 0, 0, 0, time.UTC)

// NewService returns a service over a fresh Store with the clock fixed
// at Today.
func NewService(policy settlement.Policy) (*ledger.Service, *Store) {
	store := New()
	return ledger.New(store.Stores(), policy, ledger.WithClock(func() time.Time { return Today })), store
}

// SeedManager registers a manager for April 2026 with a meal rate and a
// group password.
func SeedManager(t *testing.T, svc *ledger.Service, username string) *models.Manager {
	t.Helper()

	ctx := context.Background()
	_, err := svc.RegisterManager(ctx, ledger.RegisterInput{
		Username: username,
		Password: "secret",
		Name:     "Karim",
		MessName: "Green House",
		Year:     2026,
		Month:    "April",
	})
	require.NoError(t, err)

	_, err = svc.SetMealRate(ctx, username, decimal.RequireFromString("12.5"))
	require.NoError(t, err)
	res, err := svc.SetGroupCredentials(ctx, username, "house", "group-pass")
	require.NoError(t, err)
	return res.Value
}

// SeedBoarders adds boarders in the given order.
func SeedBoarders(t *testing.T, svc *ledger.Service, managerID string, names ...string) []*models.Boarder {
	t.Helper()

	out := make([]*models.Boarder, 0, len(names))
	for _, name := range names {
		res, err := svc.AddBoarder(context.Background(), managerID, ledger.BoarderInput{Name: name})
		require.NoError(t, err)
		out = append(out, res.Value)
	}
	return out
}
