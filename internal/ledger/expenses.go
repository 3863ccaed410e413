package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

// ExpenseInput is a shared purchase to record. An empty date means today.
type ExpenseInput struct {
	Date        string          `validate:"required,datetime=2006-01-02"`
	Shopper     string          `validate:"max=80"`
	Description string          `validate:"max=200"`
	Amount      decimal.Decimal `validate:"gt=0"`
	Type        string          `validate:"oneof=market extra"`
}

// AddExpense records a market or extra purchase.
func (s *Service) AddExpense(ctx context.Context, managerID string, in ExpenseInput) (res Result[*models.Expense], err error) {
	in.Date = s.dateOrToday(in.Date)
	in.Shopper = strings.TrimSpace(in.Shopper)
	if in.Type == "" {
		in.Type = models.ExpenseTypeMarket
	}
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "add_expense")
	defer func() { finish(span, err) }()

	e := &models.Expense{
		ManagerID:   managerID,
		Date:        in.Date,
		Shopper:     in.Shopper,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
	}
	if err = s.stores.Expenses.Create(ctx, e); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "add_expense")
	return changed(e), nil
}

// ListExpenses returns the mess's expenses sorted by date.
func (s *Service) ListExpenses(ctx context.Context, managerID string) ([]models.Expense, error) {
	return s.stores.Expenses.ListByManager(ctx, managerID)
}

// ExpensePatchInput changes an expense. Nil fields are kept.
type ExpensePatchInput struct {
	Date        *string          `validate:"omitempty,datetime=2006-01-02"`
	Shopper     *string          `validate:"omitempty,max=80"`
	Description *string          `validate:"omitempty,max=200"`
	Amount      *decimal.Decimal `validate:"omitempty,gt=0"`
	Type        *string          `validate:"omitempty,oneof=market extra"`
}

func (s *Service) ownedExpense(ctx context.Context, managerID, id string) (*models.Expense, error) {
	e, err := s.stores.Expenses.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.ManagerID != managerID {
		return nil, repository.ErrNotFound
	}
	return e, nil
}

// UpdateExpense changes an expense. A missing expense is a no-op.
func (s *Service) UpdateExpense(ctx context.Context, managerID, id string, in ExpensePatchInput) (res Result[*models.Expense], err error) {
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "update_expense")
	defer func() { finish(span, err) }()

	e, err := s.ownedExpense(ctx, managerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
			return unchanged[*models.Expense](nil), nil
		}
		return res, err
	}

	patch := repository.ExpensePatch{
		Date:        in.Date,
		Shopper:     in.Shopper,
		Description: in.Description,
		Amount:      in.Amount,
		Type:        in.Type,
	}
	if err = s.stores.Expenses.Update(ctx, id, patch); err != nil {
		return res, err
	}
	patch.Apply(e)
	s.recordMutation(ctx, "update_expense")
	return changed(e), nil
}

// DeleteExpense removes an expense. A missing expense is a no-op.
func (s *Service) DeleteExpense(ctx context.Context, managerID, id string) (res Result[string], err error) {
	ctx, span := s.start(ctx, "delete_expense")
	defer func() { finish(span, err) }()

	if _, err = s.ownedExpense(ctx, managerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
			return unchanged(id), nil
		}
		return res, err
	}
	if err = s.stores.Expenses.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
			return unchanged(id), nil
		}
		return res, err
	}
	s.recordMutation(ctx, "delete_expense")
	return changed(id), nil
}
