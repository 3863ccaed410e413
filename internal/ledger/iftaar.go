package ledger

import (
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/iftaar"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

// IftaarLedger is the full iftaar fund of a mess.
type IftaarLedger struct {
	Config    *models.IftaarConfig
	Deposits  []models.IftaarDeposit
	Expenses  []models.IftaarExpense
	Schedules []models.IftaarBazaarSchedule
	Summary   iftaar.Summary
}

type iftaarInput struct {
	Name   string          `validate:"required,max=80"`
	Amount decimal.Decimal `validate:"gt=0"`
	Date   string          `validate:"required,datetime=2006-01-02"`
}

// AddIftaarDeposit records a contribution to the iftaar fund.
func (s *Service) AddIftaarDeposit(ctx context.Context, managerID, name string, amount decimal.Decimal, date string) (res Result[*models.IftaarDeposit], err error) {
	in := iftaarInput{Name: strings.TrimSpace(name), Amount: amount, Date: s.dateOrToday(date)}
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "add_iftaar_deposit")
	defer func() { finish(span, err) }()

	d := &models.IftaarDeposit{ManagerID: managerID, Name: in.Name, Amount: in.Amount, Date: in.Date}
	if err = s.stores.Iftaar.CreateDeposit(ctx, d); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "add_iftaar_deposit")
	return changed(d), nil
}

// AddIftaarExpense records a purchase paid from the iftaar fund.
func (s *Service) AddIftaarExpense(ctx context.Context, managerID, shopper string, amount decimal.Decimal, date string) (res Result[*models.IftaarExpense], err error) {
	in := iftaarInput{Name: strings.TrimSpace(shopper), Amount: amount, Date: s.dateOrToday(date)}
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "add_iftaar_expense")
	defer func() { finish(span, err) }()

	e := &models.IftaarExpense{ManagerID: managerID, Shopper: in.Name, Amount: in.Amount, Date: in.Date}
	if err = s.stores.Iftaar.CreateExpense(ctx, e); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "add_iftaar_expense")
	return changed(e), nil
}

type iftaarBazaarInput struct {
	Shopper string `validate:"required,max=80"`
	Date    string `validate:"required,datetime=2006-01-02"`
}

// AddIftaarBazaar schedules a shopper for an iftaar market day.
func (s *Service) AddIftaarBazaar(ctx context.Context, managerID, shopper, date string) (res Result[*models.IftaarBazaarSchedule], err error) {
	in := iftaarBazaarInput{Shopper: strings.TrimSpace(shopper), Date: strings.TrimSpace(date)}
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "add_iftaar_bazaar")
	defer func() { finish(span, err) }()

	sched := &models.IftaarBazaarSchedule{ManagerID: managerID, Shopper: in.Shopper, Date: in.Date}
	if err = s.stores.Iftaar.CreateBazaarSchedule(ctx, sched); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "add_iftaar_bazaar")
	return changed(sched), nil
}

// IftaarRecord selects one of the iftaar collections.
type IftaarRecord int

// Iftaar collections.
const (
	IftaarDepositRecord IftaarRecord = iota
	IftaarExpenseRecord
	IftaarBazaarRecord
)

// DeleteIftaarRecord removes one of the mess's iftaar records by id. A
// missing record is a no-op.
func (s *Service) DeleteIftaarRecord(ctx context.Context, managerID string, kind IftaarRecord, id string) (res Result[string], err error) {
	ctx, span := s.start(ctx, "delete_iftaar_record")
	defer func() { finish(span, err) }()

	owned, err := s.ownsIftaarRecord(ctx, managerID, kind, id)
	if err != nil || !owned {
		return unchanged(id), err
	}

	switch kind {
	case IftaarDepositRecord:
		err = s.stores.Iftaar.DeleteDeposit(ctx, id)
	case IftaarExpenseRecord:
		err = s.stores.Iftaar.DeleteExpense(ctx, id)
	default:
		err = s.stores.Iftaar.DeleteBazaarSchedule(ctx, id)
	}
	if errors.Is(err, repository.ErrNotFound) {
		return unchanged(id), nil
	}
	if err != nil {
		return res, err
	}
	s.recordMutation(ctx, "delete_iftaar_record")
	return changed(id), nil
}

func (s *Service) ownsIftaarRecord(ctx context.Context, managerID string, kind IftaarRecord, id string) (bool, error) {
	var ids []string
	switch kind {
	case IftaarDepositRecord:
		list, err := s.stores.Iftaar.ListDepositsByManager(ctx, managerID)
		if err != nil {
			return false, err
		}
		for _, r := range list {
			ids = append(ids, r.ID)
		}
	case IftaarExpenseRecord:
		list, err := s.stores.Iftaar.ListExpensesByManager(ctx, managerID)
		if err != nil {
			return false, err
		}
		for _, r := range list {
			ids = append(ids, r.ID)
		}
	default:
		list, err := s.stores.Iftaar.ListBazaarSchedulesByManager(ctx, managerID)
		if err != nil {
			return false, err
		}
		for _, r := range list {
			ids = append(ids, r.ID)
		}
	}
	return slices.Contains(ids, id), nil
}

// Iftaar loads the iftaar fund and summarises it as of today.
func (s *Service) Iftaar(ctx context.Context, managerID string) (*IftaarLedger, error) {
	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return nil, err
	}
	deposits, err := s.stores.Iftaar.ListDepositsByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	expenses, err := s.stores.Iftaar.ListExpensesByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	schedules, err := s.stores.Iftaar.ListBazaarSchedulesByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	return &IftaarLedger{
		Config:    m.IftaarConfig,
		Deposits:  deposits,
		Expenses:  expenses,
		Schedules: schedules,
		Summary:   iftaar.Summarize(deposits, expenses, schedules, s.now()),
	}, nil
}
