// Package ledger implements the mess ledger operations on top of the
// store. Every mutation reads the current records, applies a pure
// transformation and writes the result back. The new state is returned
// only after the write succeeded.
package ledger

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"gitlab.com/yelinaung/mess-bot/internal/database"
	"gitlab.com/yelinaung/mess-bot/internal/logger"
	"gitlab.com/yelinaung/mess-bot/internal/models"
	"gitlab.com/yelinaung/mess-bot/internal/repository"
	"gitlab.com/yelinaung/mess-bot/internal/settlement"
)

const instrumentationName = "gitlab.com/yelinaung/mess-bot/internal/ledger"

// ManagerStore persists managers keyed by username.
type ManagerStore interface {
	Create(ctx context.Context, m *models.Manager) error
	GetByUsername(ctx context.Context, username string) (*models.Manager, error)
	ListUsernames(ctx context.Context) ([]string, error)
	Update(ctx context.Context, username string, patch repository.ManagerPatch) error
	Delete(ctx context.Context, username string) error
}

// BoarderStore persists boarders.
type BoarderStore interface {
	Create(ctx context.Context, b *models.Boarder) error
	GetByID(ctx context.Context, id string) (*models.Boarder, error)
	ListByManager(ctx context.Context, managerID string) ([]models.Boarder, error)
	Update(ctx context.Context, id string, patch repository.BoarderPatch) error
	Delete(ctx context.Context, id string) error
	DeleteByManager(ctx context.Context, managerID string) (int, error)
}

// ExpenseStore persists shared expenses.
type ExpenseStore interface {
	Create(ctx context.Context, e *models.Expense) error
	GetByID(ctx context.Context, id string) (*models.Expense, error)
	ListByManager(ctx context.Context, managerID string) ([]models.Expense, error)
	Update(ctx context.Context, id string, patch repository.ExpensePatch) error
	Delete(ctx context.Context, id string) error
	DeleteByManager(ctx context.Context, managerID string) (int, error)
}

// IftaarStore persists the iftaar fund records.
type IftaarStore interface {
	CreateDeposit(ctx context.Context, d *models.IftaarDeposit) error
	ListDepositsByManager(ctx context.Context, managerID string) ([]models.IftaarDeposit, error)
	DeleteDeposit(ctx context.Context, id string) error
	CreateExpense(ctx context.Context, e *models.IftaarExpense) error
	ListExpensesByManager(ctx context.Context, managerID string) ([]models.IftaarExpense, error)
	DeleteExpense(ctx context.Context, id string) error
	CreateBazaarSchedule(ctx context.Context, s *models.IftaarBazaarSchedule) error
	ListBazaarSchedulesByManager(ctx context.Context, managerID string) ([]models.IftaarBazaarSchedule, error)
	DeleteBazaarSchedule(ctx context.Context, id string) error
	DeleteAllByManager(ctx context.Context, managerID string) error
}

// SessionStore persists chat logins.
type SessionStore interface {
	Save(ctx context.Context, s *models.BotSession) error
	Get(ctx context.Context, userID int64) (*models.BotSession, error)
	ListByManager(ctx context.Context, managerUsername string) ([]models.BotSession, error)
	Delete(ctx context.Context, userID int64) error
	DeleteByManager(ctx context.Context, managerUsername string) error
	DeleteByBoarder(ctx context.Context, boarderID string) error
}

// Stores bundles the collections the service works on.
type Stores struct {
	Managers ManagerStore
	Boarders BoarderStore
	Expenses ExpenseStore
	Iftaar   IftaarStore
	Sessions SessionStore
}

// PostgresStores returns the Postgres-backed stores.
func PostgresStores(db database.PGXDB) Stores {
	return Stores{
		Managers: repository.NewManagerRepository(db),
		Boarders: repository.NewBoarderRepository(db),
		Expenses: repository.NewExpenseRepository(db),
		Iftaar:   repository.NewIftaarRepository(db),
		Sessions: repository.NewSessionRepository(db),
	}
}

// Result carries the state after a mutation. Changed is false when the
// operation found nothing to act on and wrote nothing.
type Result[T any] struct {
	Value   T
	Changed bool
}

func changed[T any](v T) Result[T] {
	return Result[T]{Value: v, Changed: true}
}

func unchanged[T any](v T) Result[T] {
	return Result[T]{Value: v}
}

// Service runs ledger operations.
type Service struct {
	stores    Stores
	policy    settlement.Policy
	now       func() time.Time
	tracer    trace.Tracer
	mutations metric.Int64Counter
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New creates a Service. The extra cost policy decides whether shared
// extra expenses are split into individual balances.
func New(stores Stores, policy settlement.Policy, opts ...Option) *Service {
	if policy == "" {
		policy = settlement.DefaultPolicy
	}

	s := &Service{
		stores: stores,
		policy: policy,
		now:    time.Now,
		tracer: otel.Tracer(instrumentationName),
	}
	for _, opt := range opts {
		opt(s)
	}

	counter, err := otel.Meter(instrumentationName).Int64Counter(
		"mess.ledger.mutations",
		metric.WithDescription("Ledger mutations written to the store"),
	)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Failed to create ledger mutation counter")
	}
	s.mutations = counter

	return s
}

// Policy returns the configured extra cost policy.
func (s *Service) Policy() settlement.Policy {
	return s.policy
}

// Today returns the service's current date.
func (s *Service) Today() time.Time {
	return s.now()
}

// start opens a span for a ledger operation.
func (s *Service) start(ctx context.Context, op string) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, "ledger."+op, trace.WithAttributes(attribute.String("ledger.op", op)))
}

// finish records err on the span and ends it.
func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// recordMutation counts a successful write.
func (s *Service) recordMutation(ctx context.Context, op string) {
	if s.mutations == nil {
		return
	}
	s.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}

func (s *Service) today() string {
	return s.now().Format(models.DateLayout)
}
