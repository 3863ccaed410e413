// Package models defines the domain entities for the mess ledger.
package models

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the layout used for every ledger date.
const DateLayout = "2006-01-02"

// MaxBoarderNameLength is the maximum allowed length for boarder names.
const MaxBoarderNameLength = 60

// Months lists the reporting month names a manager can pick.
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Expense types.
const (
	ExpenseTypeMarket = "market"
	ExpenseTypeExtra  = "extra"
)

// Rice deposit types.
const (
	RiceDepositTypeDeposit         = "deposit"
	RiceDepositTypePreviousBalance = "previous_balance"
)

// Session roles.
const (
	RoleManager = "manager"
	RoleBoarder = "boarder"
)

// DayShift is one shift of the cook's ledger.
type DayShift struct {
	Meal decimal.Decimal `json:"meal"`
	Rice decimal.Decimal `json:"rice"`
}

// SystemDailyEntry is the cook's record for a single day.
type SystemDailyEntry struct {
	Morning DayShift `json:"morning"`
	Lunch   DayShift `json:"lunch"`
	Dinner  DayShift `json:"dinner"`
}

// RiceConfig holds per-shift meal to rice offsets used by auto rice.
type RiceConfig struct {
	MorningDiff decimal.Decimal `json:"morning_diff"`
	LunchDiff   decimal.Decimal `json:"lunch_diff"`
	DinnerDiff  decimal.Decimal `json:"dinner_diff"`
}

// AutoRiceRule maps an exact meal count to a rice count.
type AutoRiceRule struct {
	Meal decimal.Decimal `json:"meal"`
	Rice decimal.Decimal `json:"rice"`
}

// Shopper is a snapshot of a boarder taken when they were scheduled.
type Shopper struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// BazaarShift is one scheduled market day.
type BazaarShift struct {
	Date     int       `json:"date"`
	Shoppers []Shopper `json:"shoppers"`
}

// HasShopper reports whether the shopper id is already on this day.
func (s BazaarShift) HasShopper(id string) bool {
	return slices.ContainsFunc(s.Shoppers, func(sh Shopper) bool { return sh.ID == id })
}

// IftaarConfig holds the header details printed on iftaar reports.
type IftaarConfig struct {
	MessName      string `json:"mess_name"`
	ManagerName   string `json:"manager_name"`
	ManagerMobile string `json:"manager_mobile"`
	Month         string `json:"month"`
	Year          int    `json:"year"`
}

// Manager administers one mess. Username is the primary key.
type Manager struct {
	Username        string
	Password        string
	Name            string
	MessName        string
	Year            int
	Month           string
	Mobile          string
	BloodGroup      string
	MealRate        decimal.Decimal
	BoarderUsername string
	BoarderPassword string
	PrevRiceBalance decimal.Decimal
	RiceConfig      *RiceConfig
	AutoRiceEnabled bool
	AutoRiceRules   []AutoRiceRule
	SystemDaily     map[int]SystemDailyEntry
	BazaarSchedule  map[int]BazaarShift
	IftaarConfig    *IftaarConfig
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MonthIndex returns the zero based index of the manager's reporting month,
// or -1 when the month name is unknown.
func (m *Manager) MonthIndex() int {
	return slices.Index(Months, m.Month)
}

// Deposit is a money deposit made by a boarder.
type Deposit struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
}

// RiceDeposit is rice handed over by a boarder, in pots.
type RiceDeposit struct {
	ID     string          `json:"id"`
	Amount decimal.Decimal `json:"amount"`
	Date   string          `json:"date"`
	Type   string          `json:"type"`
}

// DailyUsage is what a boarder consumed on one day.
type DailyUsage struct {
	Meals decimal.Decimal `json:"meals"`
	Rice  decimal.Decimal `json:"rice"`
}

// Boarder is a resident of the mess owned by exactly one manager.
type Boarder struct {
	ID           string
	ManagerID    string
	Name         string
	Mobile       string
	BloodGroup   string
	Deposits     []Deposit
	RiceDeposits []RiceDeposit
	DailyUsage   map[int]DailyUsage
	ExtraCost    decimal.Decimal
	GuestCost    decimal.Decimal
	Order        int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expense is a shared household purchase.
type Expense struct {
	ID          string
	ManagerID   string
	Date        string
	Shopper     string
	Description string
	Amount      decimal.Decimal
	Type        string
	CreatedAt   time.Time
}

// IsMarket reports whether the expense is an ordinary market purchase.
func (e *Expense) IsMarket() bool {
	return e.Type == ExpenseTypeMarket
}

// IftaarDeposit is a contribution to the iftaar fund.
type IftaarDeposit struct {
	ID        string
	ManagerID string
	Name      string
	Amount    decimal.Decimal
	Date      string
	CreatedAt time.Time
}

// IftaarExpense is a purchase paid from the iftaar fund.
type IftaarExpense struct {
	ID        string
	ManagerID string
	Shopper   string
	Amount    decimal.Decimal
	Date      string
	CreatedAt time.Time
}

// IftaarBazaarSchedule assigns a shopper to an iftaar market day.
type IftaarBazaarSchedule struct {
	ID        string
	ManagerID string
	Shopper   string
	Date      string
	CreatedAt time.Time
}

// BotSession binds a Telegram user to a logged-in manager or boarder.
type BotSession struct {
	UserID          int64
	Role            string
	ManagerUsername string
	BoarderID       string
	CreatedAt       time.Time
}

// IsManager reports whether the session belongs to the mess manager.
func (s *BotSession) IsManager() bool {
	return s != nil && s.Role == RoleManager
}
