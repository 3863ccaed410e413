package ledger

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

// Snapshot is a consistent read of everything a report needs.
type Snapshot struct {
	Manager        *models.Manager
	Boarders       []models.Boarder
	Expenses       []models.Expense
	DaysInMonth    int
	Settlement     settlement.MessSettlement
	Reconciliation reconcile.Report
}

// Snapshot loads the mess and computes its settlement and reconciliation.
func (s *Service) Snapshot(ctx context.Context, managerID string) (snap *Snapshot, err error) {
	ctx, span := s.start(ctx, "snapshot")
	defer func() { finish(span, err) }()

	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return nil, err
	}
	days, err := daysInPeriod(m)
	if err != nil {
		return nil, err
	}
	boarders, err := s.stores.Boarders.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.stores.Expenses.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	return &Snapshot{
		Manager:        m,
		Boarders:       boarders,
		Expenses:       expenses,
		DaysInMonth:    days,
		Settlement:     settlement.Aggregate(boarders, m.MealRate, expenses, m.PrevRiceBalance, s.policy),
		Reconciliation: reconcile.Compare(boarders, m.SystemDaily, days),
	}, nil
}

// MessSettlement computes the mess-wide settlement.
func (s *Service) MessSettlement(ctx context.Context, managerID string) (settlement.MessSettlement, error) {
	snap, err := s.Snapshot(ctx, managerID)
	if err != nil {
		return settlement.MessSettlement{}, err
	}
	return snap.Settlement, nil
}

// BoarderSettlement computes one boarder's settlement under the
// configured extra cost policy.
func (s *Service) BoarderSettlement(ctx context.Context, managerID, boarderID string) (settlement.BoarderSettlement, error) {
	snap, err := s.Snapshot(ctx, managerID)
	if err != nil {
		return settlement.BoarderSettlement{}, err
	}
	for _, bs := range snap.Settlement.Boarders {
		if bs.BoarderID == boarderID {
			return bs, nil
		}
	}
	return settlement.BoarderSettlement{}, fmt.Errorf("failed to settle boarder: %w", repository.ErrNotFound)
}
