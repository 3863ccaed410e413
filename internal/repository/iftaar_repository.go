package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// IftaarRepository handles the iftaar fund tables.
type IftaarRepository struct {
	db database.PGXDB
}

// NewIftaarRepository creates a new IftaarRepository.
func NewIftaarRepository(db database.PGXDB) *IftaarRepository {
	return &IftaarRepository{db: db}
}

// CreateDeposit records a contribution to the iftaar fund.
func (r *IftaarRepository) CreateDeposit(ctx context.Context, d *models.IftaarDeposit) error {
	if d.ID == "" {
		d.ID = NewID()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO iftaar_deposits (id, manager_id, name, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, d.ID, d.ManagerID, d.Name, d.Amount, d.Date).Scan(&d.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create iftaar deposit: %w", err)
	}
	return nil
}

// ListDepositsByManager returns iftaar deposits sorted by date.
func (r *IftaarRepository) ListDepositsByManager(ctx context.Context, managerID string) ([]models.IftaarDeposit, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, manager_id, name, amount, date, created_at
		FROM iftaar_deposits WHERE manager_id = $1
		ORDER BY date, created_at
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iftaar deposits: %w", err)
	}
	defer rows.Close()

	var deposits []models.IftaarDeposit
	for rows.Next() {
		var d models.IftaarDeposit
		if err := rows.Scan(&d.ID, &d.ManagerID, &d.Name, &d.Amount, &d.Date, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan iftaar deposit: %w", err)
		}
		deposits = append(deposits, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate iftaar deposits: %w", err)
	}
	return deposits, nil
}

// DeleteDeposit removes an iftaar deposit by id.
func (r *IftaarRepository) DeleteDeposit(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "iftaar_deposits", "iftaar deposit", id)
}

// CreateExpense records a purchase paid from the iftaar fund.
func (r *IftaarRepository) CreateExpense(ctx context.Context, e *models.IftaarExpense) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO iftaar_expenses (id, manager_id, shopper, amount, date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`, e.ID, e.ManagerID, e.Shopper, e.Amount, e.Date).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create iftaar expense: %w", err)
	}
	return nil
}

// ListExpensesByManager returns iftaar expenses sorted by date.
func (r *IftaarRepository) ListExpensesByManager(ctx context.Context, managerID string) ([]models.IftaarExpense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, manager_id, shopper, amount, date, created_at
		FROM iftaar_expenses WHERE manager_id = $1
		ORDER BY date, created_at
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iftaar expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.IftaarExpense
	for rows.Next() {
		var e models.IftaarExpense
		if err := rows.Scan(&e.ID, &e.ManagerID, &e.Shopper, &e.Amount, &e.Date, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan iftaar expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate iftaar expenses: %w", err)
	}
	return expenses, nil
}

// DeleteExpense removes an iftaar expense by id.
func (r *IftaarRepository) DeleteExpense(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "iftaar_expenses", "iftaar expense", id)
}

// CreateBazaarSchedule assigns a shopper to an iftaar market day.
func (r *IftaarRepository) CreateBazaarSchedule(ctx context.Context, s *models.IftaarBazaarSchedule) error {
	if s.ID == "" {
		s.ID = NewID()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO iftaar_bazaar_schedules (id, manager_id, shopper, date)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, s.ID, s.ManagerID, s.Shopper, s.Date).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create iftaar bazaar schedule: %w", err)
	}
	return nil
}

// ListBazaarSchedulesByManager returns iftaar market days sorted by date.
func (r *IftaarRepository) ListBazaarSchedulesByManager(ctx context.Context, managerID string) ([]models.IftaarBazaarSchedule, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, manager_id, shopper, date, created_at
		FROM iftaar_bazaar_schedules WHERE manager_id = $1
		ORDER BY date, created_at
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query iftaar bazaar schedules: %w", err)
	}
	defer rows.Close()

	var schedules []models.IftaarBazaarSchedule
	for rows.Next() {
		var s models.IftaarBazaarSchedule
		if err := rows.Scan(&s.ID, &s.ManagerID, &s.Shopper, &s.Date, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan iftaar bazaar schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate iftaar bazaar schedules: %w", err)
	}
	return schedules, nil
}

// DeleteBazaarSchedule removes an iftaar market day by id.
func (r *IftaarRepository) DeleteBazaarSchedule(ctx context.Context, id string) error {
	return r.deleteByID(ctx, "iftaar_bazaar_schedules", "iftaar bazaar schedule", id)
}

// DeleteAllByManager removes every iftaar record of a manager.
func (r *IftaarRepository) DeleteAllByManager(ctx context.Context, managerID string) error {
	for _, table := range []string{"iftaar_deposits", "iftaar_expenses", "iftaar_bazaar_schedules"} {
		if _, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE manager_id = $1`, managerID); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}
	return nil
}

func (r *IftaarRepository) deleteByID(ctx context.Context, table, what, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM `+table+` WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", what, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete %s: %w", what, ErrNotFound)
	}
	return nil
}
