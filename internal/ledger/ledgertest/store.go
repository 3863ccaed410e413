// Package ledgertest provides an in-memory ledger store for tests.
package ledgertest

import (
	"cmp"
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"gitlab.com/yelinaung/mess-bot/internal/ledger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
)

// Store keeps every collection in memory. Records are copied on the way
// in and out so callers never share state with the store.
type Store struct {
	mu sync.Mutex

	managers  map[string]models.Manager
	boarders  map[string]models.Boarder
	expenses  map[string]models.Expense
	deposits  map[string]models.IftaarDeposit
	iftaarExp map[string]models.IftaarExpense
	bazaars   map[string]models.IftaarBazaarSchedule
	sessions  map[int64]models.BotSession

	// WriteErr, when set, is returned by every write.
	WriteErr error
	// Writes counts successful writes.
	Writes int
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		managers:  map[string]models.Manager{},
		boarders:  map[string]models.Boarder{},
		expenses:  map[string]models.Expense{},
		deposits:  map[string]models.IftaarDeposit{},
		iftaarExp: map[string]models.IftaarExpense{},
		bazaars:   map[string]models.IftaarBazaarSchedule{},
		sessions:  map[int64]models.BotSession{},
	}
}

// Stores returns the ledger collections backed by s.
func (s *Store) Stores() ledger.Stores {
	return ledger.Stores{
		Managers: managerStore{s},
		Boarders: boarderStore{s},
		Expenses: expenseStore{s},
		Iftaar:   iftaarStore{s},
		Sessions: sessionStore{s},
	}
}

// write runs fn under the lock unless writes are failing.
func (s *Store) write(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.WriteErr != nil {
		return s.WriteErr
	}
	if err := fn(); err != nil {
		return err
	}
	s.Writes++
	return nil
}

func (s *Store) read(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func notFound(what string) error {
	return fmt.Errorf("failed to get %s: %w", what, repository.ErrNotFound)
}

func cloneManager(m models.Manager) models.Manager {
	m.AutoRiceRules = slices.Clone(m.AutoRiceRules)
	m.SystemDaily = maps.Clone(m.SystemDaily)
	if m.BazaarSchedule != nil {
		sched := make(map[int]models.BazaarShift, len(m.BazaarSchedule))
		for day, shift := range m.BazaarSchedule {
			shift.Shoppers = slices.Clone(shift.Shoppers)
			sched[day] = shift
		}
		m.BazaarSchedule = sched
	}
	if m.RiceConfig != nil {
		rc := *m.RiceConfig
		m.RiceConfig = &rc
	}
	if m.IftaarConfig != nil {
		ic := *m.IftaarConfig
		m.IftaarConfig = &ic
	}
	return m
}

func cloneBoarder(b models.Boarder) models.Boarder {
	b.Deposits = slices.Clone(b.Deposits)
	b.RiceDeposits = slices.Clone(b.RiceDeposits)
	b.DailyUsage = maps.Clone(b.DailyUsage)
	return b
}

type managerStore struct{ s *Store }

func (st managerStore) Create(_ context.Context, m *models.Manager) error {
	return st.s.write(func() error {
		if _, ok := st.s.managers[m.Username]; ok {
			return fmt.Errorf("failed to create manager: duplicate username %q", m.Username)
		}
		now := time.Now()
		m.CreatedAt, m.UpdatedAt = now, now
		st.s.managers[m.Username] = cloneManager(*m)
		return nil
	})
}

func (st managerStore) GetByUsername(_ context.Context, username string) (*models.Manager, error) {
	var (
		m  models.Manager
		ok bool
	)
	st.s.read(func() { m, ok = st.s.managers[username] })
	if !ok {
		return nil, notFound("manager")
	}
	m = cloneManager(m)
	return &m, nil
}

func (st managerStore) ListUsernames(_ context.Context) ([]string, error) {
	var names []string
	st.s.read(func() { names = slices.Sorted(maps.Keys(st.s.managers)) })
	return names, nil
}

func (st managerStore) Update(_ context.Context, username string, patch repository.ManagerPatch) error {
	return st.s.write(func() error {
		m, ok := st.s.managers[username]
		if !ok {
			return notFound("manager")
		}
		patch.Apply(&m)
		m.UpdatedAt = time.Now()
		st.s.managers[username] = cloneManager(m)
		return nil
	})
}

func (st managerStore) Delete(_ context.Context, username string) error {
	return st.s.write(func() error {
		if _, ok := st.s.managers[username]; !ok {
			return notFound("manager")
		}
		delete(st.s.managers, username)
		return nil
	})
}

type boarderStore struct{ s *Store }

func (st boarderStore) Create(_ context.Context, b *models.Boarder) error {
	return st.s.write(func() error {
		if b.ID == "" {
			b.ID = repository.NewID()
		}
		now := time.Now()
		b.CreatedAt, b.UpdatedAt = now, now
		st.s.boarders[b.ID] = cloneBoarder(*b)
		return nil
	})
}

func (st boarderStore) GetByID(_ context.Context, id string) (*models.Boarder, error) {
	var (
		b  models.Boarder
		ok bool
	)
	st.s.read(func() { b, ok = st.s.boarders[id] })
	if !ok {
		return nil, notFound("boarder")
	}
	b = cloneBoarder(b)
	return &b, nil
}

func (st boarderStore) ListByManager(_ context.Context, managerID string) ([]models.Boarder, error) {
	var out []models.Boarder
	st.s.read(func() {
		for _, b := range st.s.boarders {
			if b.ManagerID == managerID {
				out = append(out, cloneBoarder(b))
			}
		}
	})
	slices.SortFunc(out, func(a, b models.Boarder) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (st boarderStore) Update(_ context.Context, id string, patch repository.BoarderPatch) error {
	return st.s.write(func() error {
		b, ok := st.s.boarders[id]
		if !ok {
			return notFound("boarder")
		}
		patch.Apply(&b)
		b.UpdatedAt = time.Now()
		st.s.boarders[id] = cloneBoarder(b)
		return nil
	})
}

func (st boarderStore) Delete(_ context.Context, id string) error {
	return st.s.write(func() error {
		if _, ok := st.s.boarders[id]; !ok {
			return notFound("boarder")
		}
		delete(st.s.boarders, id)
		return nil
	})
}

func (st boarderStore) DeleteByManager(_ context.Context, managerID string) (int, error) {
	n := 0
	err := st.s.write(func() error {
		for id, b := range st.s.boarders {
			if b.ManagerID == managerID {
				delete(st.s.boarders, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type expenseStore struct{ s *Store }

func (st expenseStore) Create(_ context.Context, e *models.Expense) error {
	return st.s.write(func() error {
		if e.ID == "" {
			e.ID = repository.NewID()
		}
		e.CreatedAt = time.Now()
		st.s.expenses[e.ID] = *e
		return nil
	})
}

func (st expenseStore) GetByID(_ context.Context, id string) (*models.Expense, error) {
	var (
		e  models.Expense
		ok bool
	)
	st.s.read(func() { e, ok = st.s.expenses[id] })
	if !ok {
		return nil, notFound("expense")
	}
	return &e, nil
}

func (st expenseStore) ListByManager(_ context.Context, managerID string) ([]models.Expense, error) {
	var out []models.Expense
	st.s.read(func() {
		for _, e := range st.s.expenses {
			if e.ManagerID == managerID {
				out = append(out, e)
			}
		}
	})
	slices.SortFunc(out, func(a, b models.Expense) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}

func (st expenseStore) Update(_ context.Context, id string, patch repository.ExpensePatch) error {
	return st.s.write(func() error {
		e, ok := st.s.expenses[id]
		if !ok {
			return notFound("expense")
		}
		patch.Apply(&e)
		st.s.expenses[id] = e
		return nil
	})
}

func (st expenseStore) Delete(_ context.Context, id string) error {
	return st.s.write(func() error {
		if _, ok := st.s.expenses[id]; !ok {
			return notFound("expense")
		}
		delete(st.s.expenses, id)
		return nil
	})
}

func (st expenseStore) DeleteByManager(_ context.Context, managerID string) (int, error) {
	n := 0
	err := st.s.write(func() error {
		for id, e := range st.s.expenses {
			if e.ManagerID == managerID {
				delete(st.s.expenses, id)
				n++
			}
		}
		return nil
	})
	return n, err
}

type iftaarStore struct{ s *Store }

func (st iftaarStore) CreateDeposit(_ context.Context, d *models.IftaarDeposit) error {
	return st.s.write(func() error {
		if d.ID == "" {
			d.ID = repository.NewID()
		}
		d.CreatedAt = time.Now()
		st.s.deposits[d.ID] = *d
		return nil
	})
}

func (st iftaarStore) ListDepositsByManager(_ context.Context, managerID string) ([]models.IftaarDeposit, error) {
	var out []models.IftaarDeposit
	st.s.read(func() {
		for _, d := range st.s.deposits {
			if d.ManagerID == managerID {
				out = append(out, d)
			}
		}
	})
	slices.SortFunc(out, func(a, b models.IftaarDeposit) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt))
	})
	return out, nil
}

func (st iftaarStore) DeleteDeposit(_ context.Context, id string) error {
	return st.s.write(func() error {
		if _, ok := st.s.deposits[id]; !ok {
			return notFound("iftaar deposit")
		}
		delete(st.s.deposits, id)
		return nil
	})
}

func (st iftaarStore) CreateExpense(_ context.Context, e *models.IftaarExpense) error {
	return st.s.write(func() error {
		if e.ID == "" {
			e.ID = repository.NewID()
		}
		e.CreatedAt = time.Now()
		st.s.iftaarExp[e.ID] = *e
		return nil
	})
}

func (st iftaarStore) ListExpensesByManager(_ context.Context, managerID string) ([]models.IftaarExpense, error) {
	var out []models.IftaarExpense
	st.s.read(func() {
		for _, e := range st.s.iftaarExp {
			if e.ManagerID == managerID {
				out = append(out, e)
			}
		}
	})
	slices.SortFunc(out, func(a, b models.IftaarExpense) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt))
	})
	return out, nil
}

func (st iftaarStore) DeleteExpense(_ context.Context, id string) error {
	return st.s.write(func() error {
		if _, ok := st.s.iftaarExp[id]; !ok {
			return notFound("iftaar expense")
		}
		delete(st.s.iftaarExp, id)
		return nil
	})
}

func (st iftaarStore) CreateBazaarSchedule(_ context.Context, b *models.IftaarBazaarSchedule) error {
	return st.s.write(func() error {
		if b.ID == "" {
			b.ID = repository.NewID()
		}
		b.CreatedAt = time.Now()
		st.s.bazaars[b.ID] = *b
		return nil
	})
}

func (st iftaarStore) ListBazaarSchedulesByManager(_ context.Context, managerID string) ([]models.IftaarBazaarSchedule, error) {
	var out []models.IftaarBazaarSchedule
	st.s.read(func() {
		for _, b := range st.s.bazaars {
			if b.ManagerID == managerID {
				out = append(out, b)
			}
		}
	})
	slices.SortFunc(out, func(a, b models.IftaarBazaarSchedule) int {
		return cmp.Or(cmp.Compare(a.Date, b.Date), a.CreatedAt.Compare(b.CreatedAt))
	})
	return out, nil
}

func (st iftaarStore) DeleteBazaarSchedule(_ context.Context, id string) error {
	return st.s.write(func() error {
		if _, ok := st.s.bazaars[id]; !ok {
			return notFound("iftaar bazaar schedule")
		}
		delete(st.s.bazaars, id)
		return nil
	})
}

func (st iftaarStore) DeleteAllByManager(_ context.Context, managerID string) error {
	return st.s.write(func() error {
		maps.DeleteFunc(st.s.deposits, func(_ string, d models.IftaarDeposit) bool { return d.ManagerID == managerID })
		maps.DeleteFunc(st.s.iftaarExp, func(_ string, e models.IftaarExpense) bool { return e.ManagerID == managerID })
		maps.DeleteFunc(st.s.bazaars, func(_ string, b models.IftaarBazaarSchedule) bool { return b.ManagerID == managerID })
		return nil
	})
}

type sessionStore struct{ s *Store }

func (st sessionStore) Save(_ context.Context, session *models.BotSession) error {
	return st.s.write(func() error {
		session.CreatedAt = time.Now()
		st.s.sessions[session.UserID] = *session
		return nil
	})
}

func (st sessionStore) Get(_ context.Context, userID int64) (*models.BotSession, error) {
	var (
		session models.BotSession
		ok      bool
	)
	st.s.read(func() { session, ok = st.s.sessions[userID] })
	if !ok {
		return nil, notFound("session")
	}
	return &session, nil
}

func (st sessionStore) ListByManager(_ context.Context, managerUsername string) ([]models.BotSession, error) {
	var out []models.BotSession
	st.s.read(func() {
		for _, session := range st.s.sessions {
			if session.ManagerUsername == managerUsername {
				out = append(out, session)
			}
		}
	})
	slices.SortFunc(out, func(a, b models.BotSession) int { return cmp.Compare(a.UserID, b.UserID) })
	return out, nil
}

func (st sessionStore) Delete(_ context.Context, userID int64) error {
	return st.s.write(func() error {
		delete(st.s.sessions, userID)
		return nil
	})
}

func (st sessionStore) DeleteByManager(_ context.Context, managerUsername string) error {
	return st.s.write(func() error {
		maps.DeleteFunc(st.s.sessions, func(_ int64, session models.BotSession) bool {
			return session.ManagerUsername == managerUsername
		})
		return nil
	})
}

func (st sessionStore) DeleteByBoarder(_ context.Context, boarderID string) error {
	return st.s.write(func() error {
		maps.DeleteFunc(st.s.sessions, func(_ int64, session models.BotSession) bool {
			return session.BoarderID == boarderID
		})
		return nil
	})
}
