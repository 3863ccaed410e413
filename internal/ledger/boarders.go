package ledger

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
)

// Direction moves a boarder within the ordered list.
type Direction int

// Directions.
const (
	Up Direction = iota
	Down
)

// BoarderInput describes a boarder's profile.
type BoarderInput struct {
	Name       string `validate:"required,max=60"`
	Mobile     string `validate:"max=20"`
	BloodGroup string `validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}

// AddBoarder appends a boarder to the end of the mess's list.
func (s *Service) AddBoarder(ctx context.Context, managerID string, in BoarderInput) (res Result[*models.Boarder], err error) {
	in.Name = strings.TrimSpace(in.Name)
	if err = check(in); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "add_boarder")
	defer func() { finish(span, err) }()

	existing, err := s.stores.Boarders.ListByManager(ctx, managerID)
	if err != nil {
		return res, err
	}

	b := &models.Boarder{
		ManagerID:    managerID,
		Name:         in.Name,
		Mobile:       in.Mobile,
		BloodGroup:   in.BloodGroup,
		Deposits:     []models.Deposit{},
		RiceDeposits: []models.RiceDeposit{},
		DailyUsage:   map[int]models.DailyUsage{},
		Order:        nextOrder(existing),
	}
	if err = s.stores.Boarders.Create(ctx, b); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "add_boarder")
	return changed(b), nil
}

func nextOrder(boarders []models.Boarder) int {
	next := 0
	for _, b := range boarders {
		if b.Order >= next {
			next = b.Order + 1
		}
	}
	return next
}

// ListBoarders returns the mess's boarders in display order.
func (s *Service) ListBoarders(ctx context.Context, managerID string) ([]models.Boarder, error) {
	return s.stores.Boarders.ListByManager(ctx, managerID)
}

// Boarder loads a boarder that belongs to managerID.
func (s *Service) Boarder(ctx context.Context, managerID, id string) (*models.Boarder, error) {
	b, err := s.stores.Boarders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b.ManagerID != managerID {
		return nil, fmt.Errorf("failed to get boarder: %w", repository.ErrNotFound)
	}
	return b, nil
}

// BoarderAt returns the boarder at a 1-based position in display order.
func (s *Service) BoarderAt(ctx context.Context, managerID string, position int) (*models.Boarder, error) {
	boarders, err := s.stores.Boarders.ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(boarders) {
		return nil, invalidField("Boarder", "range")
	}
	b := boarders[position-1]
	return &b, nil
}

// patchBoarder loads a boarder, asks mutate for a patch and writes it. A
// missing boarder is a no-op. mutate returns false to skip the write.
func (s *Service) patchBoarder(
	ctx context.Context,
	op, managerID, id string,
	mutate func(b *models.Boarder) (repository.BoarderPatch, bool, error),
) (res Result[*models.Boarder], err error) {
	ctx, span := s.start(ctx, op)
	defer func() { finish(span, err) }()

	b, err := s.Boarder(ctx, managerID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unchanged[*models.Boarder](nil), nil
		}
		return res, err
	}

	patch, ok, err := mutate(b)
	if err != nil || !ok {
		return unchanged(b), err
	}
	if err = s.stores.Boarders.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unchanged[*models.Boarder](nil), nil
		}
		return res, err
	}
	patch.Apply(b)
	s.recordMutation(ctx, op)
	return changed(b), nil
}

// UpdateBoarder changes a boarder's profile.
func (s *Service) UpdateBoarder(ctx context.Context, managerID, id string, in BoarderInput) (Result[*models.Boarder], error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := check(in); err != nil {
		return Result[*models.Boarder]{}, err
	}
	return s.patchBoarder(ctx, "update_boarder", managerID, id, func(*models.Boarder) (repository.BoarderPatch, bool, error) {
		return repository.BoarderPatch{Name: &in.Name, Mobile: &in.Mobile, BloodGroup: &in.BloodGroup}, true, nil
	})
}

// UpdateBoarderAs changes a boarder's profile on behalf of a session.
// Managers may edit any boarder of their mess; a boarder session only its
// own record.
func (s *Service) UpdateBoarderAs(ctx context.Context, sess *models.BotSession, id string, in BoarderInput) (Result[*models.Boarder], error) {
	if sess == nil || (!sess.IsManager() && sess.BoarderID != id) {
		return Result[*models.Boarder]{}, ErrForbidden
	}
	return s.UpdateBoarder(ctx, sess.ManagerUsername, id, in)
}

// DeleteBoarder removes a boarder and logs out any chat bound to them.
// Schedule entries keep their shopper snapshot.
func (s *Service) DeleteBoarder(ctx context.Context, managerID, id string) (res Result[string], err error) {
	ctx, span := s.start(ctx, "delete_boarder")
	defer func() { finish(span, err) }()

	if _, err = s.Boarder(ctx, managerID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unchanged(id), nil
		}
		return res, err
	}
	if err = s.stores.Boarders.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return unchanged(id), nil
		}
		return res, err
	}
	if err = s.stores.Sessions.DeleteByBoarder(ctx, id); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "delete_boarder")
	return changed(id), nil
}

// MoveBoarder swaps a boarder with its neighbour and renumbers the whole
// list from zero. Moving past either end is a no-op.
func (s *Service) MoveBoarder(ctx context.Context, managerID, id string, dir Direction) (res Result[[]models.Boarder], err error) {
	ctx, span := s.start(ctx, "move_boarder")
	defer func() { finish(span, err) }()

	boarders, err := s.stores.Boarders.ListByManager(ctx, managerID)
	if err != nil {
		return res, err
	}

	idx := slices.IndexFunc(boarders, func(b models.Boarder) bool { return b.ID == id })
	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if idx < 0 || target < 0 || target >= len(boarders) {
		return unchanged(boarders), nil
	}

	boarders[idx], boarders[target] = boarders[target], boarders[idx]
	for i := range boarders {
		if boarders[i].Order == i {
			continue
		}
		order := i
		if err = s.stores.Boarders.Update(ctx, boarders[i].ID, repository.BoarderPatch{Order: &order}); err != nil {
			return res, err
		}
		boarders[i].Order = i
	}
	s.recordMutation(ctx, "move_boarder")
	return changed(boarders), nil
}

type depositInput struct {
	Amount decimal.Decimal `validate:"gt=0"`
	Date   string          `validate:"required,datetime=2006-01-02"`
}

func (s *Service) dateOrToday(date string) string {
	if strings.TrimSpace(date) == "" {
		return s.today()
	}
	return strings.TrimSpace(date)
}

// AddDeposit records a money deposit. An empty date means today.
func (s *Service) AddDeposit(ctx context.Context, managerID, boarderID string, amount decimal.Decimal, date string) (Result[*models.Boarder], error) {
	in := depositInput{Amount: amount, Date: s.dateOrToday(date)}
	if err := check(in); err != nil {
		return Result[*models.Boarder]{}, err
	}
	return s.patchBoarder(ctx, "add_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		deposits := append(slices.Clone(b.Deposits), models.Deposit{
			ID:     repository.NewID(),
			Amount: in.Amount,
			Date:   in.Date,
		})
		return repository.BoarderPatch{Deposits: deposits}, true, nil
	})
}

// RemoveDeposit deletes a money deposit by id. A missing id is a no-op.
func (s *Service) RemoveDeposit(ctx context.Context, managerID, boarderID, depositID string) (Result[*models.Boarder], error) {
	return s.patchBoarder(ctx, "remove_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		kept := make([]models.Deposit, 0, len(b.Deposits))
		for _, d := range b.Deposits {
			if d.ID != depositID {
				kept = append(kept, d)
			}
		}
		if len(kept) == len(b.Deposits) {
			return repository.BoarderPatch{}, false, nil
		}
		return repository.BoarderPatch{Deposits: kept}, true, nil
	})
}

// DepositPatch changes an existing deposit. Nil fields are kept. Previous
// only applies to rice deposits.
type DepositPatch struct {
	Amount   *decimal.Decimal `validate:"omitempty,gt=0"`
	Date     *string          `validate:"omitempty,datetime=2006-01-02"`
	Previous *bool
}

func (p DepositPatch) empty() bool {
	return p.Amount == nil && p.Date == nil && p.Previous == nil
}

// UpdateDeposit patches a money deposit by id. A missing id is a no-op.
func (s *Service) UpdateDeposit(ctx context.Context, managerID, boarderID, depositID string, patch DepositPatch) (Result[*models.Boarder], error) {
	if err := check(patch); err != nil {
		return Result[*models.Boarder]{}, err
	}
	return s.patchBoarder(ctx, "update_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		idx := slices.IndexFunc(b.Deposits, func(d models.Deposit) bool { return d.ID == depositID })
		if idx < 0 || (patch.Amount == nil && patch.Date == nil) {
			return repository.BoarderPatch{}, false, nil
		}
		deposits := slices.Clone(b.Deposits)
		d := &deposits[idx]
		if patch.Amount != nil {
			d.Amount = *patch.Amount
		}
		if patch.Date != nil {
			d.Date = *patch.Date
		}
		if d.Amount.Equal(b.Deposits[idx].Amount) && d.Date == b.Deposits[idx].Date {
			return repository.BoarderPatch{}, false, nil
		}
		return repository.BoarderPatch{Deposits: deposits}, true, nil
	})
}

// UpdateRiceDeposit patches a rice deposit by id, including whether it is
// last month's carry-in. A missing id is a no-op.
func (s *Service) UpdateRiceDeposit(ctx context.Context, managerID, boarderID, depositID string, patch DepositPatch) (Result[*models.Boarder], error) {
	if err := check(patch); err != nil {
		return Result[*models.Boarder]{}, err
	}
	return s.patchBoarder(ctx, "update_rice_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		idx := slices.IndexFunc(b.RiceDeposits, func(d models.RiceDeposit) bool { return d.ID == depositID })
		if idx < 0 || patch.empty() {
			return repository.BoarderPatch{}, false, nil
		}
		deposits := slices.Clone(b.RiceDeposits)
		d := &deposits[idx]
		if patch.Amount != nil {
			d.Amount = *patch.Amount
		}
		if patch.Date != nil {
			d.Date = *patch.Date
		}
		if patch.Previous != nil {
			d.Type = models.RiceDepositTypeDeposit
			if *patch.Previous {
				d.Type = models.RiceDepositTypePreviousBalance
			}
		}
		old := b.RiceDeposits[idx]
		if d.Amount.Equal(old.Amount) && d.Date == old.Date && d.Type == old.Type {
			return repository.BoarderPatch{}, false, nil
		}
		return repository.BoarderPatch{RiceDeposits: deposits}, true, nil
	})
}

// AddRiceDeposit records rice handed over by a boarder. previous marks a
// carry-in from last month.
func (s *Service) AddRiceDeposit(ctx context.Context, managerID, boarderID string, pots decimal.Decimal, date string, previous bool) (Result[*models.Boarder], error) {
	in := depositInput{Amount: pots, Date: s.dateOrToday(date)}
	if err := check(in); err != nil {
		return Result[*models.Boarder]{}, err
	}
	kind := models.RiceDepositTypeDeposit
	if previous {
		kind = models.RiceDepositTypePreviousBalance
	}
	return s.patchBoarder(ctx, "add_rice_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		deposits := append(slices.Clone(b.RiceDeposits), models.RiceDeposit{
			ID:     repository.NewID(),
			Amount: in.Amount,
			Date:   in.Date,
			Type:   kind,
		})
		return repository.BoarderPatch{RiceDeposits: deposits}, true, nil
	})
}

// RemoveRiceDeposit deletes a rice deposit by id. A missing id is a no-op.
func (s *Service) RemoveRiceDeposit(ctx context.Context, managerID, boarderID, depositID string) (Result[*models.Boarder], error) {
	return s.patchBoarder(ctx, "remove_rice_deposit", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		kept := make([]models.RiceDeposit, 0, len(b.RiceDeposits))
		for _, d := range b.RiceDeposits {
			if d.ID != depositID {
				kept = append(kept, d)
			}
		}
		if len(kept) == len(b.RiceDeposits) {
			return repository.BoarderPatch{}, false, nil
		}
		return repository.BoarderPatch{RiceDeposits: kept}, true, nil
	})
}

type usageInput struct {
	Meals decimal.Decimal `validate:"gte=0"`
	Rice  decimal.Decimal `validate:"gte=0"`
}

// SetDailyUsage records what a boarder ate on a day of the reporting
// month. Zero meals and zero rice clears the day.
func (s *Service) SetDailyUsage(ctx context.Context, managerID, boarderID string, day int, meals, rice decimal.Decimal) (Result[*models.Boarder], error) {
	if err := check(usageInput{Meals: meals, Rice: rice}); err != nil {
		return Result[*models.Boarder]{}, err
	}
	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return Result[*models.Boarder]{}, err
	}
	days, err := schedule.DaysInMonth(m.Year, m.Month)
	if err != nil {
		return Result[*models.Boarder]{}, invalid(err)
	}
	if err := validDay(day, days); err != nil {
		return Result[*models.Boarder]{}, err
	}

	return s.patchBoarder(ctx, "set_daily_usage", managerID, boarderID, func(b *models.Boarder) (repository.BoarderPatch, bool, error) {
		usage := maps.Clone(b.DailyUsage)
		if usage == nil {
			usage = map[int]models.DailyUsage{}
		}
		if meals.IsZero() && rice.IsZero() {
			if _, ok := usage[day]; !ok {
				return repository.BoarderPatch{}, false, nil
			}
			delete(usage, day)
		} else {
			usage[day] = models.DailyUsage{Meals: meals, Rice: rice}
		}
		return repository.BoarderPatch{DailyUsage: usage}, true, nil
	})
}

type costInput struct {
	Extra *decimal.Decimal `validate:"omitempty,gte=0"`
	Guest *decimal.Decimal `validate:"omitempty,gte=0"`
}

// SetPersonalCosts sets a boarder's extra and guest charges. Nil values
// are left unchanged.
func (s *Service) SetPersonalCosts(ctx context.Context, managerID, boarderID string, extra, guest *decimal.Decimal) (Result[*models.Boarder], error) {
	if err := check(costInput{Extra: extra, Guest: guest}); err != nil {
		return Result[*models.Boarder]{}, err
	}
	return s.patchBoarder(ctx, "set_personal_costs", managerID, boarderID, func(*models.Boarder) (repository.BoarderPatch, bool, error) {
		if extra == nil && guest == nil {
			return repository.BoarderPatch{}, false, nil
		}
		return repository.BoarderPatch{ExtraCost: extra, GuestCost: guest}, true, nil
	})
}
