// Package engine turns a stream of dated cash-flow records into financial
// health classifications, daily allowances and forward balance projections.
//
// The engine is stateless between calls: every operation reads the ledger fresh
// and computes a pure function of what it read.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)
	thirty  = decimal.NewFromInt(30)
)

// Policy holds the numeric rules of the engine
type Policy struct {
	PrescribedDaily         decimal.Decimal // placeholder daily spend before any registration
	Epsilon                 decimal.Decimal // tolerance when comparing against the placeholder
	CriticalFallback        decimal.Decimal // red threshold when there is no income history
	LowBalance              decimal.Decimal // balance below this (and >= 0) raises a medium alert
	NearLimitPct            decimal.Decimal // daily spend share of the limit that raises a warning
	HighRiskBalance         decimal.Decimal // projected balance below this is high priority
	TrailingMonths          int
	DefaultProjectionMonths int
	MaxProjectionMonths     int
}

// DefaultPolicy returns the constants the product ships with
func DefaultPolicy() Policy {
	return Policy{
		PrescribedDaily:         decimal.NewFromInt(50),
		Epsilon:                 decimal.NewFromFloat(0.01),
		CriticalFallback:        decimal.NewFromInt(-1000),
		LowBalance:              decimal.NewFromInt(500),
		NearLimitPct:            decimal.NewFromInt(80),
		HighRiskBalance:         decimal.NewFromInt(-1000),
		TrailingMonths:          3,
		DefaultProjectionMonths: 6,
		MaxProjectionMonths:     12,
	}
}

// Engine computes indicators over a Ledger
type Engine struct {
	ledger ledger.Ledger
	policy Policy
	now    func() time.Time
}

// New creates an engine; a nil clock means time.Now
func New(l ledger.Ledger, policy Policy, now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{ledger: l, policy: policy, now: now}
}

// Policy returns the rules this engine applies
func (e *Engine) Policy() Policy {
	return e.policy
}

// Today returns the current calendar day
func (e *Engine) Today() time.Time {
	return models.DateOf(e.now())
}

func (e *Engine) settings(ctx context.Context) (models.UserSettings, error) {
	s, err := e.ledger.Settings(ctx)
	if err != nil {
		return models.UserSettings{}, fmt.Errorf("%w: settings: %v", models.ErrDataUnavailable, err)
	}
	return s, nil
}

// addMonths rolls (year, month) forward by n months with 12-month wraparound
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month) - 1 + n
	return idx / 12, time.Month(idx%12 + 1)
}

func monthBounds(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, -1)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func pct(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred)
}
