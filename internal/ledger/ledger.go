// Package ledger defines the data-source contracts the finance engine reads from
// and the narrow write contracts used by the registration path.
package ledger

import (
	"context"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Ledger is a read-only view over dated cash-flow entries and installment obligations
type Ledger interface {
	// EntriesInRange returns entries with start <= date <= end ordered by date ascending.
	// A zero start means "since inception".
	EntriesInRange(ctx context.Context, start, end time.Time) ([]models.CashFlowEntry, error)
	InstallmentGroups(ctx context.Context, includeSimulations bool) ([]models.InstallmentGroup, error)
	Settings(ctx context.Context) (models.UserSettings, error)
}

// BalanceReader is implemented by ledgers that keep their own running balance
type BalanceReader interface {
	CurrentBalance(ctx context.Context, today time.Time) (decimal.Decimal, error)
}

// ProspectiveSource is implemented by ledgers where the user pre-fills future month totals
type ProspectiveSource interface {
	// ProspectiveTotals returns ok=false when nothing was entered for the month
	ProspectiveTotals(ctx context.Context, year int, month time.Month) (totals models.ProspectiveTotals, ok bool, err error)
}

// DayBook stores the per-day variable spending total. A day that was never
// written reads as the prescribed placeholder value.
type DayBook interface {
	DailyVariable(ctx context.Context, day time.Time) (decimal.Decimal, error)
	SetDailyVariable(ctx context.Context, day time.Time, amount decimal.Decimal) error
}

// Recorder appends new entries. Entries are never edited in place; corrections
// are recorded as compensating entries.
type Recorder interface {
	AppendEntry(ctx context.Context, entry models.CashFlowEntry) (models.CashFlowEntry, error)
}

// InstallmentStore persists installment groups and their simulation lifecycle.
// ConfirmGroup and DeleteGroup act only on simulations and return
// models.ErrInconsistentState for a confirmed group.
type InstallmentStore interface {
	CreateGroup(ctx context.Context, group *models.InstallmentGroup) error
	GetGroup(ctx context.Context, id int64) (*models.InstallmentGroup, error)
	ConfirmGroup(ctx context.Context, id int64, signature string) error
	DeleteGroup(ctx context.Context, id int64) error
}

// SettingsStore persists the user's planning parameters
type SettingsStore interface {
	SaveSettings(ctx context.Context, settings models.UserSettings) error
}

// Store is the full capability set of a writable backend
type Store interface {
	Ledger
	DayBook
	Recorder
}

// Since is the lower bound used when the caller wants all history
var Since = time.Time{}

// FarFuture is a convenient inclusive upper bound for "all entries"
var FarFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)
