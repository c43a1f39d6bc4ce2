package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Projection strategy names
const (
	StrategyTrailingAverage = "trailing_average"
	StrategyProspective     = "prospective_totals"
)

// MonthFlow is a projected month before balance chaining
type MonthFlow struct {
	Income  decimal.Decimal
	Outflow decimal.Decimal
}

// ProjectionStrategy produces the expected flow of a future month
type ProjectionStrategy interface {
	Name() string
	Flow(ctx context.Context, year int, month time.Month) (MonthFlow, error)
}

// TrailingAverageStrategy projects from the averages of preceding months and
// the actual installment schedules.
type TrailingAverageStrategy struct {
	engine   *Engine
	trailing Trailing
	groups   []models.InstallmentGroup
}

// NewTrailingAverageStrategy computes the averages once. Extra groups (drafts
// under simulation) are projected as if confirmed.
func (e *Engine) NewTrailingAverageStrategy(ctx context.Context, extra ...models.InstallmentGroup) (*TrailingAverageStrategy, error) {
	tr, err := e.TrailingAverages(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := e.confirmedGroups(ctx)
	if err != nil {
		return nil, err
	}
	for _, g := range extra {
		g.IsSimulation = false
		groups = append(groups, g)
	}
	return &TrailingAverageStrategy{engine: e, trailing: tr, groups: groups}, nil
}

func (s *TrailingAverageStrategy) Name() string { return StrategyTrailingAverage }

func (s *TrailingAverageStrategy) Flow(ctx context.Context, year int, month time.Month) (MonthFlow, error) {
	start, end := monthBounds(year, month, s.engine.now().Location())
	entries, err := s.engine.ledger.EntriesInRange(ctx, start, end)
	if err != nil {
		return MonthFlow{}, fmt.Errorf("%w: entries for %d-%02d: %v", models.ErrDataUnavailable, year, month, err)
	}
	fixed := sumMonth(year, month, entries, nil).Fixed
	if !fixed.IsPositive() {
		fixed = s.trailing.Fixed
	}
	outflow := fixed.Add(s.trailing.Variable).Add(installmentsDue(s.groups, year, month))
	return MonthFlow{Income: s.trailing.Income, Outflow: outflow}, nil
}

// ProspectiveStrategy projects from totals the user already entered for future months
type ProspectiveStrategy struct {
	Source ledger.ProspectiveSource
}

func (ProspectiveStrategy) Name() string { return StrategyProspective }

func (s ProspectiveStrategy) Flow(ctx context.Context, year int, month time.Month) (MonthFlow, error) {
	t, ok, err := s.Source.ProspectiveTotals(ctx, year, month)
	if err != nil {
		return MonthFlow{}, fmt.Errorf("%w: prospective totals for %d-%02d: %v", models.ErrDataUnavailable, year, month, err)
	}
	if !ok {
		return MonthFlow{Income: decimal.Zero, Outflow: decimal.Zero}, nil
	}
	return MonthFlow{Income: t.Income, Outflow: t.Outflow.Add(t.Variable)}, nil
}

// ClampMonths maps out-of-range horizons to the default instead of rejecting them
func (e *Engine) ClampMonths(months int) int {
	if months < 1 || months > e.policy.MaxProjectionMonths {
		return e.policy.DefaultProjectionMonths
	}
	return months
}

// ProjectionStrategyFor picks the prospective strategy when the ledger has
// pre-filled totals for next month, trailing averages otherwise.
func (e *Engine) ProjectionStrategyFor(ctx context.Context) (ProjectionStrategy, error) {
	if src, ok := e.ledger.(ledger.ProspectiveSource); ok {
		today := e.Today()
		y, m := addMonths(today.Year(), today.Month(), 1)
		_, found, err := src.ProspectiveTotals(ctx, y, m)
		if err != nil {
			return nil, fmt.Errorf("%w: prospective totals: %v", models.ErrDataUnavailable, err)
		}
		if found {
			return ProspectiveStrategy{Source: src}, nil
		}
	}
	return e.NewTrailingAverageStrategy(ctx)
}

// Project chains balance_i = balance_{i-1} + performance_i from the current balance
func (e *Engine) Project(ctx context.Context, months int) (models.ProjectionReport, error) {
	months = e.ClampMonths(months)
	strategy, err := e.ProjectionStrategyFor(ctx)
	if err != nil {
		return models.ProjectionReport{}, err
	}
	return e.ProjectWith(ctx, strategy, months)
}

// ProjectWith runs a projection with an explicit strategy
func (e *Engine) ProjectWith(ctx context.Context, strategy ProjectionStrategy, months int) (models.ProjectionReport, error) {
	balance, err := e.CurrentBalance(ctx)
	if err != nil {
		return models.ProjectionReport{}, err
	}
	points, err := e.chain(ctx, strategy, balance, months)
	if err != nil {
		return models.ProjectionReport{}, err
	}
	return models.ProjectionReport{
		CurrentBalance: balance,
		Strategy:       strategy.Name(),
		Months:         months,
		Points:         points,
		RiskAlerts:     ProjectionAlerts(points, e.policy),
	}, nil
}

func (e *Engine) chain(ctx context.Context, strategy ProjectionStrategy, balance decimal.Decimal, months int) ([]models.ProjectionPoint, error) {
	today := e.Today()
	points := make([]models.ProjectionPoint, 0, months)
	for i := 1; i <= months; i++ {
		y, m := addMonths(today.Year(), today.Month(), i)
		flow, err := strategy.Flow(ctx, y, m)
		if err != nil {
			return nil, err
		}
		perf := flow.Income.Sub(flow.Outflow)
		end := balance.Add(perf)
		points = append(points, models.ProjectionPoint{
			Year:                 y,
			Month:                m,
			MonthName:            strings.ToUpper(m.String()),
			IncomeProjected:      flow.Income,
			OutflowProjected:     flow.Outflow,
			PerformanceProjected: perf,
			BalanceStart:         balance,
			BalanceEnd:           end,
			IsNegative:           end.IsNegative(),
		})
		balance = end
	}
	return points, nil
}
