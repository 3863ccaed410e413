package repository

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// ManagerPatch is a partial update of a manager. Nil fields are left
// unchanged. To clear a collection pass an empty non-nil value.
type ManagerPatch struct {
	Password        *string
	Name            *string
	MessName        *string
	Year            *int
	Month           *string
	Mobile          *string
	BloodGroup      *string
	MealRate        *decimal.Decimal
	BoarderUsername *string
	BoarderPassword *string
	PrevRiceBalance *decimal.Decimal
	RiceConfig      *models.RiceConfig
	AutoRiceEnabled *bool
	AutoRiceRules   []models.AutoRiceRule
	SystemDaily     map[int]models.SystemDailyEntry
	BazaarSchedule  map[int]models.BazaarShift
	IftaarConfig    *models.IftaarConfig
}

// Apply writes the present fields of the patch onto m.
func (p ManagerPatch) Apply(m *models.Manager) {
	setIf(&m.Password, p.Password)
	setIf(&m.Name, p.Name)
	setIf(&m.MessName, p.MessName)
	setIf(&m.Year, p.Year)
	setIf(&m.Month, p.Month)
	setIf(&m.Mobile, p.Mobile)
	setIf(&m.BloodGroup, p.BloodGroup)
	setIf(&m.MealRate, p.MealRate)
	setIf(&m.BoarderUsername, p.BoarderUsername)
	setIf(&m.BoarderPassword, p.BoarderPassword)
	setIf(&m.PrevRiceBalance, p.PrevRiceBalance)
	if p.RiceConfig != nil {
		rc := *p.RiceConfig
		m.RiceConfig = &rc
	}
	setIf(&m.AutoRiceEnabled, p.AutoRiceEnabled)
	if p.AutoRiceRules != nil {
		m.AutoRiceRules = p.AutoRiceRules
	}
	if p.SystemDaily != nil {
		m.SystemDaily = p.SystemDaily
	}
	if p.BazaarSchedule != nil {
		m.BazaarSchedule = p.BazaarSchedule
	}
	if p.IftaarConfig != nil {
		ic := *p.IftaarConfig
		m.IftaarConfig = &ic
	}
}

func (p ManagerPatch) sets() *setBuilder {
	b := &setBuilder{}
	addIf(b, "password", p.Password)
	addIf(b, "name", p.Name)
	addIf(b, "mess_name", p.MessName)
	addIf(b, "year", p.Year)
	addIf(b, "month", p.Month)
	addIf(b, "mobile", p.Mobile)
	addIf(b, "blood_group", p.BloodGroup)
	addIf(b, "meal_rate", p.MealRate)
	addIf(b, "boarder_username", p.BoarderUsername)
	addIf(b, "boarder_password", p.BoarderPassword)
	addIf(b, "prev_rice_balance", p.PrevRiceBalance)
	if p.RiceConfig != nil {
		b.add("rice_config", p.RiceConfig)
	}
	addIf(b, "auto_rice_enabled", p.AutoRiceEnabled)
	if p.AutoRiceRules != nil {
		b.add("auto_rice_rules", p.AutoRiceRules)
	}
	if p.SystemDaily != nil {
		b.add("system_daily", p.SystemDaily)
	}
	if p.BazaarSchedule != nil {
		b.add("bazaar_schedule", p.BazaarSchedule)
	}
	if p.IftaarConfig != nil {
		b.add("iftaar_config", p.IftaarConfig)
	}
	return b
}

func setIf[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func addIf[T any](b *setBuilder, col string, v *T) {
	if v != nil {
		b.add(col, *v)
	}
}

// ManagerRepository handles manager database operations.
type ManagerRepository struct {
	db database.PGXDB
}

// NewManagerRepository creates a new ManagerRepository.
func NewManagerRepository(db database.PGXDB) *ManagerRepository {
	return &ManagerRepository{db: db}
}

const managerColumns = `username, password, name, mess_name, year, month, mobile, blood_group,
	meal_rate, boarder_username, boarder_password, prev_rice_balance, rice_config,
	auto_rice_enabled, auto_rice_rules, system_daily, bazaar_schedule, iftaar_config,
	created_at, updated_at`

// Create inserts a new manager keyed by username.
func (r *ManagerRepository) Create(ctx context.Context, m *models.Manager) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO managers (username, password, name, mess_name, year, month, mobile, blood_group,
			meal_rate, boarder_username, boarder_password, prev_rice_balance, rice_config,
			auto_rice_enabled, auto_rice_rules, system_daily, bazaar_schedule, iftaar_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at, updated_at
	`, m.Username, m.Password, m.Name, m.MessName, m.Year, m.Month, m.Mobile, m.BloodGroup,
		m.MealRate, m.BoarderUsername, m.BoarderPassword, m.PrevRiceBalance, m.RiceConfig,
		m.AutoRiceEnabled, nonNil(m.AutoRiceRules), nonNilMap(m.SystemDaily),
		nonNilMap(m.BazaarSchedule), m.IftaarConfig,
	).Scan(&m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}
	return nil
}

// GetByUsername retrieves a manager by username.
func (r *ManagerRepository) GetByUsername(ctx context.Context, username string) (*models.Manager, error) {
	var m models.Manager
	err := r.db.QueryRow(ctx, `SELECT `+managerColumns+` FROM managers WHERE username = $1`, username).Scan(
		&m.Username, &m.Password, &m.Name, &m.MessName, &m.Year, &m.Month, &m.Mobile, &m.BloodGroup,
		&m.MealRate, &m.BoarderUsername, &m.BoarderPassword, &m.PrevRiceBalance, &m.RiceConfig,
		&m.AutoRiceEnabled, &m.AutoRiceRules, &m.SystemDaily, &m.BazaarSchedule, &m.IftaarConfig,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get manager: %w", notFound(err))
	}
	return &m, nil
}

// ListUsernames returns every registered manager username.
func (r *ManagerRepository) ListUsernames(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT username FROM managers ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan manager: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate managers: %w", err)
	}
	return names, nil
}

// Update writes the present fields of patch. Returns ErrNotFound when the
// manager does not exist.
func (r *ManagerRepository) Update(ctx context.Context, username string, patch ManagerPatch) error {
	sql, args := patch.sets().build("managers", "username", username, true)
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update manager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update manager: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a manager. Dependent rows must be removed first.
func (r *ManagerRepository) Delete(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM managers WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete manager: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete manager: %w", ErrNotFound)
	}
	return nil
}
