// Package schedule manages the bazaar (market shopping) rota of a mess.
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// MonthIndex returns the zero based index of a month name, matched
// case-insensitively, or an error when the name is unknown.
func MonthIndex(month string) (int, error) {
	idx := slices.IndexFunc(models.Months, func(m string) bool {
		return strings.EqualFold(m, strings.TrimSpace(month))
	})
	if idx < 0 {
		return -1, fmt.Errorf("unknown month %q", month)
	}
	return idx, nil
}

// DaysInMonth returns the number of days in the named month of year.
func DaysInMonth(year int, month string) (int, error) {
	idx, err := MonthIndex(month)
	if err != nil {
		return 0, err
	}
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, time.Month(idx+2), 0, 0, 0, 0, 0, time.UTC).Day(), nil
}

// Date returns the calendar date of a day in the reporting month.
func Date(year int, month string, day int) (time.Time, error) {
	idx, err := MonthIndex(month)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(year, time.Month(idx+1), day, 0, 0, 0, 0, time.UTC), nil
}

// Weekday derives the day-of-week label for a day in the reporting month.
func Weekday(year int, month string, day int) (string, error) {
	d, err := Date(year, month, day)
	if err != nil {
		return "", err
	}
	return d.Weekday().String(), nil
}
