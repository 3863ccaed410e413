package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// ExpensePatch is a partial update of an expense. Nil fields are left unchanged.
type ExpensePatch struct {
	Date        *string
	Shopper     *string
	Description *string
	Amount      *decimal.Decimal
	Type        *string
}

// Apply writes the present fields of the patch onto e.
func (p ExpensePatch) Apply(e *models.Expense) {
	setIf(&e.Date, p.Date)
	setIf(&e.Shopper, p.Shopper)
	setIf(&e.Description, p.Description)
	setIf(&e.Amount, p.Amount)
	setIf(&e.Type, p.Type)
}

func (p ExpensePatch) sets() *setBuilder {
	b := &setBuilder{}
	addIf(b, "date", p.Date)
	addIf(b, "shopper", p.Shopper)
	addIf(b, "description", p.Description)
	addIf(b, "amount", p.Amount)
	addIf(b, "type", p.Type)
	return b
}

// ExpenseRepository handles expense database operations.
type ExpenseRepository struct {
	db database.PGXDB
}

// NewExpenseRepository creates a new ExpenseRepository.
func NewExpenseRepository(db database.PGXDB) *ExpenseRepository {
	return &ExpenseRepository{db: db}
}

// Create adds a new expense, assigning an id when none is set.
func (r *ExpenseRepository) Create(ctx context.Context, e *models.Expense) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO expenses (id, manager_id, date, shopper, description, amount, type)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`, e.ID, e.ManagerID, e.Date, e.Shopper, e.Description, e.Amount, e.Type).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by id.
func (r *ExpenseRepository) GetByID(ctx context.Context, id string) (*models.Expense, error) {
	e, err := scanExpense(r.db.QueryRow(ctx, `
		SELECT id, manager_id, date, shopper, description, amount, type, created_at
		FROM expenses WHERE id = $1
	`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", notFound(err))
	}
	return e, nil
}

// ListByManager returns a manager's expenses sorted by date.
func (r *ExpenseRepository) ListByManager(ctx context.Context, managerID string) ([]models.Expense, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, manager_id, date, shopper, description, amount, type, created_at
		FROM expenses
		WHERE manager_id = $1
		ORDER BY date, created_at, id
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expenses = append(expenses, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate expenses: %w", err)
	}
	return expenses, nil
}

func scanExpense(row pgx.Row) (*models.Expense, error) {
	var e models.Expense
	if err := row.Scan(&e.ID, &e.ManagerID, &e.Date, &e.Shopper, &e.Description,
		&e.Amount, &e.Type, &e.CreatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

// Update writes the present fields of patch.
func (r *ExpenseRepository) Update(ctx context.Context, id string, patch ExpensePatch) error {
	b := patch.sets()
	if b.empty() {
		_, err := r.GetByID(ctx, id)
		return err
	}
	sql, args := b.build("expenses", "id", id, false)
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update expense: %w", ErrNotFound)
	}
	return nil
}

// Delete removes an expense by id.
func (r *ExpenseRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete expense: %w", ErrNotFound)
	}
	return nil
}

// DeleteByManager removes every expense of a manager and returns the count.
func (r *ExpenseRepository) DeleteByManager(ctx context.Context, managerID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM expenses WHERE manager_id = $1`, managerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
