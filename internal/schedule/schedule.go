package schedule

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"gitlab.com/yelinaung/mess-bot/internal/models"
)

var (
	// ErrDayExists is returned when a day already has an entry.
	ErrDayExists = errors.New("schedule date already exists")
	// ErrDayNotFound is returned when the day has no entry.
	ErrDayNotFound = errors.New("schedule date not found")
	// ErrDayOutOfRange is returned for days outside the reporting month.
	ErrDayOutOfRange = errors.New("schedule day is outside the month")
	// ErrAlreadyJoined is returned when the shopper is already on that day.
	ErrAlreadyJoined = errors.New("shopper already joined this date")
	// ErrInvalidInterval is returned for a generation interval below one.
	ErrInvalidInterval = errors.New("interval must be at least 1 day")
)

// Schedule maps a day of the month to its shopping shift.
type Schedule map[int]models.BazaarShift

// clone deep-copies the schedule so callers never see their input mutated.
func (s Schedule) clone() Schedule {
	out := make(Schedule, len(s))
	for day, shift := range s {
		shift.Shoppers = slices.Clone(shift.Shoppers)
		out[day] = shift
	}
	return out
}

// Days returns the scheduled days in ascending order.
func (s Schedule) Days() []int {
	return slices.Sorted(maps.Keys(s))
}

func checkDay(day, daysInMonth int) error {
	if day < 1 || day > daysInMonth {
		return fmt.Errorf("%w: day %d (1-%d)", ErrDayOutOfRange, day, daysInMonth)
	}
	return nil
}

// Generate builds a fresh schedule every interval days starting at
// startDay. Any previous schedule is discarded, shoppers included.
func Generate(daysInMonth, startDay, interval int) (Schedule, error) {
	if interval < 1 {
		return nil, ErrInvalidInterval
	}
	if err := checkDay(startDay, daysInMonth); err != nil {
		return nil, err
	}

	s := make(Schedule)
	for d := startDay; d <= daysInMonth; d += interval {
		s[d] = models.BazaarShift{Date: d, Shoppers: []models.Shopper{}}
	}
	return s, nil
}

// AddDate inserts an empty entry for day.
func AddDate(s Schedule, day, daysInMonth int) (Schedule, error) {
	if err := checkDay(day, daysInMonth); err != nil {
		return nil, err
	}
	if _, ok := s[day]; ok {
		return nil, fmt.Errorf("%w: day %d", ErrDayExists, day)
	}

	out := s.clone()
	out[day] = models.BazaarShift{Date: day, Shoppers: []models.Shopper{}}
	return out, nil
}

// MoveDate moves the entry at oldDay, shoppers included, to newDay.
func MoveDate(s Schedule, oldDay, newDay, daysInMonth int) (Schedule, error) {
	if err := checkDay(newDay, daysInMonth); err != nil {
		return nil, err
	}
	shift, ok := s[oldDay]
	if !ok {
		return nil, fmt.Errorf("%w: day %d", ErrDayNotFound, oldDay)
	}
	if oldDay == newDay {
		return s.clone(), nil
	}
	if _, taken := s[newDay]; taken {
		return nil, fmt.Errorf("%w: day %d", ErrDayExists, newDay)
	}

	out := s.clone()
	delete(out, oldDay)
	shift.Date = newDay
	shift.Shoppers = slices.Clone(shift.Shoppers)
	out[newDay] = shift
	return out, nil
}

// DeleteDate removes a day and everyone assigned to it. Deleting a day
// that is not scheduled changes nothing.
func DeleteDate(s Schedule, day int) Schedule {
	out := s.clone()
	delete(out, day)
	return out
}

// Assign appends a snapshot of the shopper to the day.
func Assign(s Schedule, day int, shopper models.Shopper) (Schedule, error) {
	shift, ok := s[day]
	if !ok {
		return nil, fmt.Errorf("%w: day %d", ErrDayNotFound, day)
	}
	if shift.HasShopper(shopper.ID) {
		return nil, fmt.Errorf("%w: %s on day %d", ErrAlreadyJoined, shopper.Name, day)
	}

	out := s.clone()
	shift = out[day]
	shift.Shoppers = append(shift.Shoppers, shopper)
	out[day] = shift
	return out, nil
}

// Unassign removes a shopper from a day. Unknown days or shoppers are a
// no-op.
func Unassign(s Schedule, day int, shopperID string) Schedule {
	out := s.clone()
	shift, ok := out[day]
	if !ok {
		return out
	}
	shift.Shoppers = slices.DeleteFunc(shift.Shoppers, func(sh models.Shopper) bool {
		return sh.ID == shopperID
	})
	out[day] = shift
	return out
}

// DaysFor returns the days a shopper is assigned to, in ascending order.
func DaysFor(s Schedule, shopperID string) []int {
	var days []int
	for _, day := range s.Days() {
		if s[day].HasShopper(shopperID) {
			days = append(days, day)
		}
	}
	return days
}
