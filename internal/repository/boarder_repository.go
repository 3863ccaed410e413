package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// BoarderPatch is a partial update of a boarder. Nil fields are left
// unchanged. To clear a collection pass an empty non-nil value.
type BoarderPatch struct {
	Name         *string
	Mobile       *string
	BloodGroup   *string
	Deposits     []models.Deposit
	RiceDeposits []models.RiceDeposit
	DailyUsage   map[int]models.DailyUsage
	ExtraCost    *decimal.Decimal
	GuestCost    *decimal.Decimal
	Order        *int
}

// Apply writes the present fields of the patch onto b.
func (p BoarderPatch) Apply(b *models.Boarder) {
	setIf(&b.Name, p.Name)
	setIf(&b.Mobile, p.Mobile)
	setIf(&b.BloodGroup, p.BloodGroup)
	if p.Deposits != nil {
		b.Deposits = p.Deposits
	}
	if p.RiceDeposits != nil {
		b.RiceDeposits = p.RiceDeposits
	}
	if p.DailyUsage != nil {
		b.DailyUsage = p.DailyUsage
	}
	setIf(&b.ExtraCost, p.ExtraCost)
	setIf(&b.GuestCost, p.GuestCost)
	setIf(&b.Order, p.Order)
}

func (p BoarderPatch) sets() *setBuilder {
	b := &setBuilder{}
	addIf(b, "name", p.Name)
	addIf(b, "mobile", p.Mobile)
	addIf(b, "blood_group", p.BloodGroup)
	if p.Deposits != nil {
		b.add("deposits", p.Deposits)
	}
	if p.RiceDeposits != nil {
		b.add("rice_deposits", p.RiceDeposits)
	}
	if p.DailyUsage != nil {
		b.add("daily_usage", p.DailyUsage)
	}
	addIf(b, "extra_cost", p.ExtraCost)
	addIf(b, "guest_cost", p.GuestCost)
	addIf(b, "sort_order", p.Order)
	return b
}

// BoarderRepository handles boarder database operations.
type BoarderRepository struct {
	db database.PGXDB
}

// NewBoarderRepository creates a new BoarderRepository.
func NewBoarderRepository(db database.PGXDB) *BoarderRepository {
	return &BoarderRepository{db: db}
}

const boarderColumns = `id, manager_id, name, mobile, blood_group, deposits, rice_deposits,
	daily_usage, extra_cost, guest_cost, sort_order, created_at, updated_at`

// Create inserts a boarder, assigning an id when none is set.
func (r *BoarderRepository) Create(ctx context.Context, b *models.Boarder) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO boarders (id, manager_id, name, mobile, blood_group, deposits, rice_deposits,
			daily_usage, extra_cost, guest_cost, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`, b.ID, b.ManagerID, b.Name, b.Mobile, b.BloodGroup, nonNil(b.Deposits), nonNil(b.RiceDeposits),
		nonNilMap(b.DailyUsage), b.ExtraCost, b.GuestCost, b.Order,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create boarder: %w", err)
	}
	return nil
}

// GetByID retrieves a boarder by id.
func (r *BoarderRepository) GetByID(ctx context.Context, id string) (*models.Boarder, error) {
	b, err := scanBoarder(r.db.QueryRow(ctx, `SELECT `+boarderColumns+` FROM boarders WHERE id = $1`, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get boarder: %w", notFound(err))
	}
	return b, nil
}

// ListByManager returns a manager's boarders sorted by their display order.
func (r *BoarderRepository) ListByManager(ctx context.Context, managerID string) ([]models.Boarder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+boarderColumns+` FROM boarders
		WHERE manager_id = $1
		ORDER BY sort_order, created_at, id
	`, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to query boarders: %w", err)
	}
	defer rows.Close()

	var boarders []models.Boarder
	for rows.Next() {
		b, err := scanBoarder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan boarder: %w", err)
		}
		boarders = append(boarders, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate boarders: %w", err)
	}
	return boarders, nil
}

func scanBoarder(row pgx.Row) (*models.Boarder, error) {
	var b models.Boarder
	err := row.Scan(&b.ID, &b.ManagerID, &b.Name, &b.Mobile, &b.BloodGroup, &b.Deposits,
		&b.RiceDeposits, &b.DailyUsage, &b.ExtraCost, &b.GuestCost, &b.Order, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// Update writes the present fields of patch.
func (r *BoarderRepository) Update(ctx context.Context, id string, patch BoarderPatch) error {
	sql, args := patch.sets().build("boarders", "id", id, true)
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("failed to update boarder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to update boarder: %w", ErrNotFound)
	}
	return nil
}

// Delete removes a boarder by id.
func (r *BoarderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM boarders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete boarder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("failed to delete boarder: %w", ErrNotFound)
	}
	return nil
}

// DeleteByManager removes every boarder of a manager and returns the count.
func (r *BoarderRepository) DeleteByManager(ctx context.Context, managerID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM boarders WHERE manager_id = $1`, managerID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete boarders: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
