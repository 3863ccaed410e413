// Package reconcile compares the boarders' consumption ledger with the
// cook's system ledger and derives rice quantities from meal counts.
package reconcile

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// Shift is one of the three cooking shifts of a day.
type Shift string

// Shifts in serving order.
const (
	ShiftMorning Shift = "morning"
	ShiftLunch   Shift = "lunch"
	ShiftDinner  Shift = "dinner"
)

// Shifts lists every shift in serving order.
var Shifts = []Shift{ShiftMorning, ShiftLunch, ShiftDinner}

// ParseShift accepts a shift name or its first letter, case-insensitively.
func ParseShift(s string) (Shift, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "morning", "m", "breakfast":
		return ShiftMorning, nil
	case "lunch", "l", "noon":
		return ShiftLunch, nil
	case "dinner", "d", "night":
		return ShiftDinner, nil
	default:
		return "", fmt.Errorf("unknown shift %q", s)
	}
}

// AutoRice is the manager's rice derivation configuration.
type AutoRice struct {
	Enabled bool
	Rules   []models.AutoRiceRule
	Config  *models.RiceConfig
}

// AutoRiceFromManager extracts the derivation settings from a manager.
func AutoRiceFromManager(m *models.Manager) AutoRice {
	return AutoRice{
		Enabled: m.AutoRiceEnabled,
		Rules:   m.AutoRiceRules,
		Config:  m.RiceConfig,
	}
}

// LegacyRiceConfig returns the offsets the mess used before they became
// configurable: two pots fewer than meals in the morning, two more at lunch,
// and one pot per meal at dinner.
func LegacyRiceConfig() models.RiceConfig {
	return models.RiceConfig{
		MorningDiff: decimal.NewFromInt(-2),
		LunchDiff:   decimal.NewFromInt(2),
		DinnerDiff:  decimal.Zero,
	}
}

// offset returns the configured difference for a shift.
func offset(cfg *models.RiceConfig, shift Shift) decimal.Decimal {
	switch shift {
	case ShiftMorning:
		return cfg.MorningDiff
	case ShiftLunch:
		return cfg.LunchDiff
	default:
		return cfg.DinnerDiff
	}
}

// SuggestRice derives the rice for a shift from the entered meal count.
//
// An exact rule match wins when auto rice is enabled. Otherwise a configured
// shift offset gives max(0, meal+offset) for positive meals and 0 for the
// rest. ok is false when nothing is configured, in which case the caller
// keeps whatever rice was entered by hand.
func SuggestRice(settings AutoRice, shift Shift, meal decimal.Decimal) (rice decimal.Decimal, ok bool) {
	if settings.Enabled {
		for _, rule := range settings.Rules {
			if rule.Meal.Equal(meal) {
				return rule.Rice, true
			}
		}
	}

	if settings.Config == nil {
		return decimal.Zero, false
	}

	if !meal.IsPositive() {
		return decimal.Zero, true
	}

	return decimal.Max(decimal.Zero, meal.Add(offset(settings.Config, shift))), true
}

// SetShift returns a copy of entry with the shift replaced.
func SetShift(entry models.SystemDailyEntry, shift Shift, value models.DayShift) models.SystemDailyEntry {
	switch shift {
	case ShiftMorning:
		entry.Morning = value
	case ShiftLunch:
		entry.Lunch = value
	default:
		entry.Dinner = value
	}
	return entry
}

// GetShift returns one shift of an entry.
func GetShift(entry models.SystemDailyEntry, shift Shift) models.DayShift {
	switch shift {
	case ShiftMorning:
		return entry.Morning
	case ShiftLunch:
		return entry.Lunch
	default:
		return entry.Dinner
	}
}

// DayTotal sums the three shifts of a day.
func DayTotal(entry models.SystemDailyEntry) models.DayShift {
	return models.DayShift{
		Meal: entry.Morning.Meal.Add(entry.Lunch.Meal).Add(entry.Dinner.Meal),
		Rice: entry.Morning.Rice.Add(entry.Lunch.Rice).Add(entry.Dinner.Rice),
	}
}
