package repository

import (
	"context"
	"fmt"

	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/models"
)

// SessionRepository persists Telegram user to mess login bindings.
type SessionRepository struct {
	db database.PGXDB
}

// NewSessionRepository creates a new SessionRepository.
func NewSessionRepository(db database.PGXDB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Save binds a Telegram user to a session. Uses upsert so logging in
// again replaces the previous binding.
func (r *SessionRepository) Save(ctx context.Context, s *models.BotSession) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO bot_sessions (user_id, role, manager_username, boarder_id)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET
			role = EXCLUDED.role,
			manager_username = EXCLUDED.manager_username,
			boarder_id = EXCLUDED.boarder_id,
			created_at = NOW()
		RETURNING created_at
	`, s.UserID, s.Role, s.ManagerUsername, s.BoarderID).Scan(&s.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get returns the session bound to a Telegram user.
func (r *SessionRepository) Get(ctx context.Context, userID int64) (*models.BotSession, error) {
	var s models.BotSession
	err := r.db.QueryRow(ctx, `
		SELECT user_id, role, manager_username, boarder_id, created_at
		FROM bot_sessions WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.Role, &s.ManagerUsername, &s.BoarderID, &s.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", notFound(err))
	}
	return &s, nil
}

// ListByManager returns every session bound to a mess.
func (r *SessionRepository) ListByManager(ctx context.Context, managerUsername string) ([]models.BotSession, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, role, manager_username, boarder_id, created_at
		FROM bot_sessions WHERE manager_username = $1
		ORDER BY user_id
	`, managerUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.BotSession
	for rows.Next() {
		var s models.BotSession
		if err := rows.Scan(&s.UserID, &s.Role, &s.ManagerUsername, &s.BoarderID, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}
	return sessions, nil
}

// Delete drops a user's session. Deleting a missing session is not an error.
func (r *SessionRepository) Delete(ctx context.Context, userID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bot_sessions WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByManager drops every session bound to a mess.
func (r *SessionRepository) DeleteByManager(ctx context.Context, managerUsername string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bot_sessions WHERE manager_username = $1`, managerUsername); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}
	return nil
}

// DeleteByBoarder drops every session bound to a boarder.
func (r *SessionRepository) DeleteByBoarder(ctx context.Context, boarderID string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM bot_sessions WHERE boarder_id = $1`, boarderID); err != nil {
		return fmt.Errorf("failed to delete boarder sessions: %w", err)
	}
	return nil
}
