package ledger

import (
	"context"
	"maps"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
)

// ShiftRecord is the cook's ledger after one shift was recorded.
type ShiftRecord struct {
	Day      int
	Shift    reconcile.Shift
	Value    models.DayShift
	AutoRice bool
	Entry    models.SystemDailyEntry
}

type shiftInput struct {
	Meal decimal.Decimal  `validate:"gte=0"`
	Rice *decimal.Decimal `validate:"omitempty,gte=0"`
}

// daysInPeriod returns the length of the manager's reporting month.
func daysInPeriod(m *models.Manager) (int, error) {
	days, err := schedule.DaysInMonth(m.Year, m.Month)
	if err != nil {
		return 0, invalid(err)
	}
	return days, nil
}

// RecordShift writes one shift of the cook's ledger. When rice is nil it
// is derived from the meal count with the manager's auto rice settings;
// without any settings the shift keeps the rice already recorded. An
// explicit rice value always wins.
func (s *Service) RecordShift(
	ctx context.Context,
	managerID string,
	day int,
	shift reconcile.Shift,
	meal decimal.Decimal,
	rice *decimal.Decimal,
) (res Result[ShiftRecord], err error) {
	if err = check(shiftInput{Meal: meal, Rice: rice}); err != nil {
		return res, err
	}

	ctx, span := s.start(ctx, "record_shift")
	defer func() { finish(span, err) }()

	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return res, err
	}
	days, err := daysInPeriod(m)
	if err != nil {
		return res, err
	}
	if err = validDay(day, days); err != nil {
		return res, err
	}

	entry := m.SystemDaily[day]
	value := models.DayShift{Meal: meal, Rice: reconcile.GetShift(entry, shift).Rice}
	auto := false
	if rice != nil {
		value.Rice = *rice
	} else if suggested, ok := reconcile.SuggestRice(reconcile.AutoRiceFromManager(m), shift, meal); ok {
		value.Rice = suggested
		auto = true
	}

	entry = reconcile.SetShift(entry, shift, value)
	daily := maps.Clone(m.SystemDaily)
	if daily == nil {
		daily = map[int]models.SystemDailyEntry{}
	}
	daily[day] = entry

	if err = s.stores.Managers.Update(ctx, managerID, repository.ManagerPatch{SystemDaily: daily}); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "record_shift")
	return changed(ShiftRecord{Day: day, Shift: shift, Value: value, AutoRice: auto, Entry: entry}), nil
}

// ClearSystemDay removes a day from the cook's ledger. A day that was
// never recorded is a no-op.
func (s *Service) ClearSystemDay(ctx context.Context, managerID string, day int) (res Result[int], err error) {
	ctx, span := s.start(ctx, "clear_system_day")
	defer func() { finish(span, err) }()

	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return res, err
	}
	if _, ok := m.SystemDaily[day]; !ok {
		return unchanged(day), nil
	}

	daily := maps.Clone(m.SystemDaily)
	delete(daily, day)
	if err = s.stores.Managers.Update(ctx, managerID, repository.ManagerPatch{SystemDaily: daily}); err != nil {
		return res, err
	}
	s.recordMutation(ctx, "clear_system_day")
	return changed(day), nil
}

// Reconcile compares the boarders' own ledger with the cook's ledger for
// the reporting month. Nothing is stored.
func (s *Service) Reconcile(ctx context.Context, managerID string) (reconcile.Report, error) {
	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return reconcile.Report{}, err
	}
	days, err := daysInPeriod(m)
	if err != nil {
		return reconcile.Report{}, err
	}
	boarders, err := s.stores.Boarders.ListByManager(ctx, managerID)
	if err != nil {
		return reconcile.Report{}, err
	}
	return reconcile.Compare(boarders, m.SystemDaily, days), nil
}
