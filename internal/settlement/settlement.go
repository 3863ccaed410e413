// Package settlement turns boarder ledgers into money and rice balances.
//
// Every function here is pure: callers pass in the records they already
// loaded and get back a snapshot. Nothing is cached or persisted.
package settlement

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// Policy decides whether shared extra expenses reach individual balances.
type Policy string

const (
	// PolicyExclude keeps shared extra expenses out of every boarder's cost.
	PolicyExclude Policy = "exclude"
	// PolicyShareEqually divides the month's extra expenses equally between
	// all boarders and adds the share to each boarder's total cost.
	PolicyShareEqually Policy = "share_equally"
)

// DefaultPolicy is used when no policy is configured.
const DefaultPolicy = PolicyExclude

// ParsePolicy converts a configuration value into a Policy.
// An empty value yields DefaultPolicy.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return DefaultPolicy, nil
	case PolicyExclude, PolicyShareEqually:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown extra cost policy %q (want %q or %q)", s, PolicyExclude, PolicyShareEqually)
	}
}

// Options carries the inputs only needed by PolicyShareEqually.
type Options struct {
	Policy           Policy
	SharedExtraTotal decimal.Decimal
	BoarderCount     int
}

// sharedExtra is the per-boarder share of extra expenses, rounded to cents.
func (o Options) sharedExtra() decimal.Decimal {
	if o.Policy != PolicyShareEqually || o.BoarderCount <= 0 {
		return decimal.Zero
	}
	return o.SharedExtraTotal.DivRound(decimal.NewFromInt(int64(o.BoarderCount)), 2)
}

// BoarderSettlement is the balance snapshot of one boarder.
type BoarderSettlement struct {
	BoarderID        string
	Name             string
	TotalDeposit     decimal.Decimal
	TotalRiceDeposit decimal.Decimal
	MealsEaten       decimal.Decimal
	RiceEaten        decimal.Decimal
	MealCost         decimal.Decimal
	ExtraCost        decimal.Decimal
	GuestCost        decimal.Decimal
	SharedExtra      decimal.Decimal
	TotalCost        decimal.Decimal
	MoneyBalance     decimal.Decimal
	RiceBalance      decimal.Decimal
}

// Receivable is what the manager receives from the boarder (zero when
// the boarder is in credit).
func (s BoarderSettlement) Receivable() decimal.Decimal {
	if s.MoneyBalance.IsNegative() {
		return s.MoneyBalance.Neg()
	}
	return decimal.Zero
}

// Refundable is what the manager returns to the boarder.
func (s BoarderSettlement) Refundable() decimal.Decimal {
	if s.MoneyBalance.IsPositive() {
		return s.MoneyBalance
	}
	return decimal.Zero
}

// RiceDue is the rice the boarder still owes, in pots.
func (s BoarderSettlement) RiceDue() decimal.Decimal {
	if s.RiceBalance.IsNegative() {
		return s.RiceBalance.Neg()
	}
	return decimal.Zero
}

// RiceSurplus is the rice the boarder has deposited beyond consumption.
func (s BoarderSettlement) RiceSurplus() decimal.Decimal {
	if s.RiceBalance.IsPositive() {
		return s.RiceBalance
	}
	return decimal.Zero
}

// MealCost multiplies the month's meals by the rate and rounds the product
// once to a whole currency unit, half away from zero.
func MealCost(meals, mealRate decimal.Decimal) decimal.Decimal {
	if meals.IsZero() {
		return decimal.Zero
	}
	return meals.Mul(mealRate).Round(0)
}

// Calculate computes the balance snapshot of one boarder.
func Calculate(b *models.Boarder, mealRate decimal.Decimal, opts Options) BoarderSettlement {
	s := BoarderSettlement{
		BoarderID:   b.ID,
		Name:        b.Name,
		ExtraCost:   b.ExtraCost,
		GuestCost:   b.GuestCost,
		SharedExtra: opts.sharedExtra(),
	}

	for _, d := range b.Deposits {
		s.TotalDeposit = s.TotalDeposit.Add(d.Amount)
	}
	for _, d := range b.RiceDeposits {
		s.TotalRiceDeposit = s.TotalRiceDeposit.Add(d.Amount)
	}
	for _, u := range b.DailyUsage {
		s.MealsEaten = s.MealsEaten.Add(u.Meals)
		s.RiceEaten = s.RiceEaten.Add(u.Rice)
	}

	s.MealCost = MealCost(s.MealsEaten, mealRate)
	s.TotalCost = s.MealCost.Add(s.ExtraCost).Add(s.GuestCost).Add(s.SharedExtra)
	s.MoneyBalance = s.TotalDeposit.Sub(s.TotalCost)
	s.RiceBalance = s.TotalRiceDeposit.Sub(s.RiceEaten)

	return s
}
