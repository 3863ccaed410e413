package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"gitlab.com/yelinaung/mess-bot/internal/logger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/reconcile"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

// Manager loads a manager by username.
func (s *Service) Manager(ctx context.Context, username string) (*models.Manager, error) {
	return s.stores.Managers.GetByUsername(ctx, username)
}

// patchManager writes patch and returns the manager as stored.
func (s *Service) patchManager(ctx context.Context, op, username string, patch repository.ManagerPatch) (res Result[*models.Manager], err error) {
	ctx, span := s.start(ctx, op)
	defer func() { finish(span, err) }()

	m, err := s.stores.Managers.GetByUsername(ctx, username)
	if err != nil {
		return res, err
	}
	if err = s.stores.Managers.Update(ctx, username, patch); err != nil {
		return res, err
	}
	patch.Apply(m)
	s.recordMutation(ctx, op)
	return changed(m), nil
}

// ProfileInput updates the manager's descriptive fields. Nil fields are kept.
type ProfileInput struct {
	Name       *string `validate:"omitempty,max=80"`
	MessName   *string `validate:"omitempty,min=1,max=80"`
	Mobile     *string `validate:"omitempty,max=20"`
	BloodGroup *string `validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
}

// UpdateProfile changes the manager's name, mess name, mobile or blood group.
func (s *Service) UpdateProfile(ctx context.Context, username string, in ProfileInput) (Result[*models.Manager], error) {
	if err := check(in); err != nil {
		return Result[*models.Manager]{}, err
	}
	return s.patchManager(ctx, "update_profile", username, repository.ManagerPatch{
		Name:       in.Name,
		MessName:   in.MessName,
		Mobile:     in.Mobile,
		BloodGroup: in.BloodGroup,
	})
}

type amountInput struct {
	Amount decimal.Decimal `validate:"gte=0"`
}

// SetMealRate changes the per-meal rate. It applies retroactively to every
// settlement of the period.
func (s *Service) SetMealRate(ctx context.Context, username string, rate decimal.Decimal) (Result[*models.Manager], error) {
	if err := check(amountInput{Amount: rate}); err != nil {
		return Result[*models.Manager]{}, err
	}
	return s.patchManager(ctx, "set_meal_rate", username, repository.ManagerPatch{MealRate: &rate})
}

type periodInput struct {
	Year  int    `validate:"gte=2000,lte=2100"`
	Month string `validate:"oneof=January February March April May June July August September October November December"`
}

// SetPeriod changes the reporting year and month.
func (s *Service) SetPeriod(ctx context.Context, username string, year int, month string) (Result[*models.Manager], error) {
	if err := check(periodInput{Year: year, Month: month}); err != nil {
		return Result[*models.Manager]{}, err
	}
	return s.patchManager(ctx, "set_period", username, repository.ManagerPatch{Year: &year, Month: &month})
}

type groupInput struct {
	Username string `validate:"required,max=32"`
	Password string `validate:"required,min=4,max=64"`
}

// SetGroupCredentials sets the shared boarder login.
func (s *Service) SetGroupCredentials(ctx context.Context, username, groupUser, groupPassword string) (Result[*models.Manager], error) {
	if err := check(groupInput{Username: groupUser, Password: groupPassword}); err != nil {
		return Result[*models.Manager]{}, err
	}
	return s.patchManager(ctx, "set_group_credentials", username, repository.ManagerPatch{
		BoarderUsername: &groupUser,
		BoarderPassword: &groupPassword,
	})
}

type passwordInput struct {
	Password string `validate:"required,min=4,max=64"`
}

// ChangePassword replaces the manager's password after checking the
// current one. A wrong current password yields ErrInvalidCredentials.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) (Result[*models.Manager], error) {
	if err := check(passwordInput{Password: next}); err != nil {
		return Result[*models.Manager]{}, err
	}
	if _, err := s.CheckManagerCredentials(ctx, username, current); err != nil {
		return Result[*models.Manager]{}, err
	}
	if equalSecret(current, next) {
		m, err := s.stores.Managers.GetByUsername(ctx, username)
		return unchanged(m), err
	}
	return s.patchManager(ctx, "change_password", username, repository.ManagerPatch{Password: &next})
}

// SetPrevRiceBalance sets the rice carried over from the previous month.
func (s *Service) SetPrevRiceBalance(ctx context.Context, username string, pots decimal.Decimal) (Result[*models.Manager], error) {
	return s.patchManager(ctx, "set_prev_rice_balance", username, repository.ManagerPatch{PrevRiceBalance: &pots})
}

// SetRiceConfig sets the per-shift meal to rice offsets.
func (s *Service) SetRiceConfig(ctx context.Context, username string, cfg models.RiceConfig) (Result[*models.Manager], error) {
	return s.patchManager(ctx, "set_rice_config", username, repository.ManagerPatch{RiceConfig: &cfg})
}

// SetAutoRice turns exact-match auto rice rules on or off. Turning it on
// for a mess with no offsets installs the legacy offsets.
func (s *Service) SetAutoRice(ctx context.Context, username string, enabled bool) (Result[*models.Manager], error) {
	patch := repository.ManagerPatch{AutoRiceEnabled: &enabled}
	if enabled {
		m, err := s.stores.Managers.GetByUsername(ctx, username)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return Result[*models.Manager]{}, err
		}
		if m != nil && m.RiceConfig == nil {
			legacy := reconcile.LegacyRiceConfig()
			patch.RiceConfig = &legacy
		}
	}
	return s.patchManager(ctx, "set_auto_rice", username, patch)
}

type ruleInput struct {
	Meal decimal.Decimal `validate:"gte=0"`
	Rice decimal.Decimal `validate:"gte=0"`
}

// UpsertAutoRiceRule adds a meal to rice rule, replacing any rule for the
// same meal count. Rules are kept sorted by meal.
func (s *Service) UpsertAutoRiceRule(ctx context.Context, username string, meal, rice decimal.Decimal) (Result[*models.Manager], error) {
	if err := check(ruleInput{Meal: meal, Rice: rice}); err != nil {
		return Result[*models.Manager]{}, err
	}
	m, err := s.stores.Managers.GetByUsername(ctx, username)
	if err != nil {
		return Result[*models.Manager]{}, err
	}

	rules := slices.DeleteFunc(slices.Clone(m.AutoRiceRules), func(r models.AutoRiceRule) bool {
		return r.Meal.Equal(meal)
	})
	rules = append(rules, models.AutoRiceRule{Meal: meal, Rice: rice})
	slices.SortFunc(rules, func(a, b models.AutoRiceRule) int { return a.Meal.Cmp(b.Meal) })

	return s.patchManager(ctx, "upsert_auto_rice_rule", username, repository.ManagerPatch{AutoRiceRules: rules})
}

// ClearAutoRiceRules removes every auto rice rule.
func (s *Service) ClearAutoRiceRules(ctx context.Context, username string) (Result[*models.Manager], error) {
	return s.patchManager(ctx, "clear_auto_rice_rules", username, repository.ManagerPatch{AutoRiceRules: []models.AutoRiceRule{}})
}

// SetIftaarConfig sets the header printed on iftaar reports.
func (s *Service) SetIftaarConfig(ctx context.Context, username string, cfg models.IftaarConfig) (Result[*models.Manager], error) {
	return s.patchManager(ctx, "set_iftaar_config", username, repository.ManagerPatch{IftaarConfig: &cfg})
}

// DeleteSystem removes a mess with everything it owns: expenses, boarders,
// iftaar records, chat sessions and finally the manager. Changed is false
// when the manager was already gone.
func (s *Service) DeleteSystem(ctx context.Context, username string) (res Result[string], err error) {
	ctx, span := s.start(ctx, "delete_system")
	defer func() { finish(span, err) }()

	if _, err = s.stores.Managers.GetByUsername(ctx, username); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = nil
			return unchanged(username), nil
		}
		return res, err
	}

	expenses, err := s.stores.Expenses.DeleteByManager(ctx, username)
	if err != nil {
		return res, err
	}
	boarders, err := s.stores.Boarders.DeleteByManager(ctx, username)
	if err != nil {
		return res, err
	}
	if err = s.stores.Iftaar.DeleteAllByManager(ctx, username); err != nil {
		return res, err
	}
	if err = s.stores.Sessions.DeleteByManager(ctx, username); err != nil {
		return res, err
	}
	if err = s.stores.Managers.Delete(ctx, username); err != nil {
		return res, fmt.Errorf("failed to delete system: %w", err)
	}

	logger.Log.Info().
		Int("expenses", expenses).
		Int("boarders", boarders).
		Msg("Deleted mess system")
	s.recordMutation(ctx, "delete_system")
	return changed(username), nil
}
