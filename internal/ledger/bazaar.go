package ledger

import (
	"context"
	"errors"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
	"gitlab.com/yelinaung/mess-bot/internal/schedule"
)

// Schedule returns the manager's bazaar schedule.
func (s *Service) Schedule(ctx context.Context, managerID string) (schedule.Schedule, error) {
	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return schedule.Schedule(m.BazaarSchedule), nil
}

// editSchedule applies edit to the stored schedule and writes the result.
// Rule violations become validation errors. ErrDayNotFound is treated as a
// no-op that returns the current schedule.
func (s *Service) editSchedule(
	ctx context.Context,
	op, managerID string,
	edit func(m *models.Manager, current schedule.Schedule, days int) (schedule.Schedule, error),
) (res Result[schedule.Schedule], err error) {
	ctx, span := s.start(ctx, op)
	defer func() { finish(span, err) }()

	m, err := s.stores.Managers.GetByUsername(ctx, managerID)
	if err != nil {
		return res, err
	}
	days, err := daysInPeriod(m)
	if err != nil {
		return res, err
	}

	current := schedule.Schedule(m.BazaarSchedule)
	next, err := edit(m, current, days)
	switch {
	case errors.Is(err, schedule.ErrDayNotFound):
		err = nil
		return unchanged(current), nil
	case err != nil:
		err = invalid(err)
		return res, err
	case next == nil:
		return unchanged(current), nil
	}

	if err = s.stores.Managers.Update(ctx, managerID, repository.ManagerPatch{BazaarSchedule: next}); err != nil {
		return res, err
	}
	s.recordMutation(ctx, op)
	return changed(next), nil
}

// GenerateSchedule replaces the whole schedule, shoppers included, with
// empty days every interval days from startDay.
func (s *Service) GenerateSchedule(ctx context.Context, managerID string, startDay, interval int) (Result[schedule.Schedule], error) {
	return s.editSchedule(ctx, "generate_schedule", managerID, func(_ *models.Manager, _ schedule.Schedule, days int) (schedule.Schedule, error) {
		return schedule.Generate(days, startDay, interval)
	})
}

// AddScheduleDate adds an empty day.
func (s *Service) AddScheduleDate(ctx context.Context, managerID string, day int) (Result[schedule.Schedule], error) {
	return s.editSchedule(ctx, "add_schedule_date", managerID, func(_ *models.Manager, cur schedule.Schedule, days int) (schedule.Schedule, error) {
		return schedule.AddDate(cur, day, days)
	})
}

// MoveScheduleDate moves a day and its shoppers to another day.
func (s *Service) MoveScheduleDate(ctx context.Context, managerID string, oldDay, newDay int) (Result[schedule.Schedule], error) {
	return s.editSchedule(ctx, "move_schedule_date", managerID, func(_ *models.Manager, cur schedule.Schedule, days int) (schedule.Schedule, error) {
		return schedule.MoveDate(cur, oldDay, newDay, days)
	})
}

// DeleteScheduleDate removes a day. Deleting an unscheduled day is a no-op.
func (s *Service) DeleteScheduleDate(ctx context.Context, managerID string, day int) (Result[schedule.Schedule], error) {
	return s.editSchedule(ctx, "delete_schedule_date", managerID, func(_ *models.Manager, cur schedule.Schedule, _ int) (schedule.Schedule, error) {
		if _, ok := cur[day]; !ok {
			return nil, nil
		}
		return schedule.DeleteDate(cur, day), nil
	})
}

// AssignShopper puts a snapshot of the boarder's id and name on a day. A
// boarder deleted in the meantime is a no-op.
func (s *Service) AssignShopper(ctx context.Context, managerID string, day int, boarderID string) (Result[schedule.Schedule], error) {
	b, err := s.Boarder(ctx, managerID, boarderID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			sched, err := s.Schedule(ctx, managerID)
			return unchanged(sched), err
		}
		return Result[schedule.Schedule]{}, err
	}

	shopper := models.Shopper{ID: b.ID, Name: b.Name}
	return s.editSchedule(ctx, "assign_shopper", managerID, func(_ *models.Manager, cur schedule.Schedule, _ int) (schedule.Schedule, error) {
		return schedule.Assign(cur, day, shopper)
	})
}

// UnassignShopper removes a shopper from a day. Unknown days or shoppers
// are a no-op.
func (s *Service) UnassignShopper(ctx context.Context, managerID string, day int, shopperID string) (Result[schedule.Schedule], error) {
	return s.editSchedule(ctx, "unassign_shopper", managerID, func(_ *models.Manager, cur schedule.Schedule, _ int) (schedule.Schedule, error) {
		if shift, ok := cur[day]; !ok || !shift.HasShopper(shopperID) {
			return nil, nil
		}
		return schedule.Unassign(cur, day, shopperID), nil
	})
}
