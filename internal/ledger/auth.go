package ledger

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

// RegisterInput is the data needed to open a new mess.
type RegisterInput struct {
	Username string `validate:"required,alphanum,min=3,max=32"`
	Password string `validate:"required,min=4,max=64"`
	Name     string `validate:"max=80"`
	MessName string `validate:"required,max=80"`
	Year     int    `validate:"gte=2000,lte=2100"`
	Month    string `validate:"oneof=January February March April May June July August September October November December"`
}

// RegisterManager creates a manager. The reporting period defaults to the
// current month.
func (s *Service) RegisterManager(ctx context.Context, in RegisterInput) (*models.Manager, error) {
	ctx, span := s.start(ctx, "register_manager")
	var err error
	defer func() { finish(span, err) }()

	in.Username = strings.TrimSpace(in.Username)
	in.MessName = strings.TrimSpace(in.MessName)
	now := s.now()
	if in.Year == 0 {
		in.Year = now.Year()
	}
	if in.Month == "" {
		in.Month = now.Month().String()
	}
	if err = check(in); err != nil {
		return nil, err
	}

	_, err = s.stores.Managers.GetByUsername(ctx, in.Username)
	switch {
	case err == nil:
		err = ErrUsernameTaken
		return nil, err
	case !errors.Is(err, repository.ErrNotFound):
		return nil, err
	}

	m := &models.Manager{
		Username:       in.Username,
		Password:       in.Password,
		Name:           in.Name,
		MessName:       in.MessName,
		Year:           in.Year,
		Month:          in.Month,
		SystemDaily:    map[int]models.SystemDailyEntry{},
		BazaarSchedule: map[int]models.BazaarShift{},
		AutoRiceRules:  []models.AutoRiceRule{},
	}
	if err = s.stores.Managers.Create(ctx, m); err != nil {
		return nil, err
	}
	s.recordMutation(ctx, "register_manager")
	return m, nil
}

func equalSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// CheckManagerCredentials returns the manager when username and password
// match. Unknown users and wrong passwords both yield ErrInvalidCredentials.
func (s *Service) CheckManagerCredentials(ctx context.Context, username, password string) (*models.Manager, error) {
	m, err := s.stores.Managers.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !equalSecret(m.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return m, nil
}

// CheckBoarderGroupCredentials returns the mess's boarders when the shared
// group password matches. A mess without a group password rejects every
// boarder login.
func (s *Service) CheckBoarderGroupCredentials(ctx context.Context, managerUsername, groupPassword string) ([]models.Boarder, error) {
	m, err := s.stores.Managers.GetByUsername(ctx, strings.TrimSpace(managerUsername))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if m.BoarderPassword == "" || !equalSecret(m.BoarderPassword, groupPassword) {
		return nil, ErrInvalidCredentials
	}
	return s.stores.Boarders.ListByManager(ctx, m.Username)
}

// Login binds a chat user to a manager account.
func (s *Service) Login(ctx context.Context, userID int64, username, password string) (*models.Manager, error) {
	m, err := s.CheckManagerCredentials(ctx, username, password)
	if err != nil {
		return nil, err
	}
	session := &models.BotSession{UserID: userID, Role: models.RoleManager, ManagerUsername: m.Username}
	if err := s.stores.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return m, nil
}

// JoinAsBoarder binds a chat user to the boarder at the 1-based position
// in the mess's ordered boarder list.
func (s *Service) JoinAsBoarder(ctx context.Context, userID int64, managerUsername, groupPassword string, position int) (*models.Boarder, error) {
	boarders, err := s.CheckBoarderGroupCredentials(ctx, managerUsername, groupPassword)
	if err != nil {
		return nil, err
	}
	if position < 1 || position > len(boarders) {
		return nil, invalidField("Boarder", "range")
	}

	b := boarders[position-1]
	session := &models.BotSession{
		UserID:          userID,
		Role:            models.RoleBoarder,
		ManagerUsername: b.ManagerID,
		BoarderID:       b.ID,
	}
	if err := s.stores.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &b, nil
}

// Logout drops the chat user's session.
func (s *Service) Logout(ctx context.Context, userID int64) error {
	return s.stores.Sessions.Delete(ctx, userID)
}

// Session returns the chat user's session, or nil when not logged in.
func (s *Service) Session(ctx context.Context, userID int64) (*models.BotSession, error) {
	session, err := s.stores.Sessions.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	return session, nil
}

// BoarderSessions returns every boarder session bound to the mess.
func (s *Service) BoarderSessions(ctx context.Context, managerUsername string) ([]models.BotSession, error) {
	sessions, err := s.stores.Sessions.ListByManager(ctx, managerUsername)
	if err != nil {
		return nil, err
	}
	out := sessions[:0]
	for _, session := range sessions {
		if session.Role == models.RoleBoarder {
			out = append(out, session)
		}
	}
	return out, nil
}

// Managers lists every registered mess.
func (s *Service) Managers(ctx context.Context) ([]string, error) {
	return s.stores.Managers.ListUsernames(ctx)
}
