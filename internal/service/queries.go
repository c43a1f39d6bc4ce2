package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/cashflow-service/internal/engine"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// cached serves key from the report cache or computes and stores it.
// Keys are scoped to the current day so yesterday's payload is never served.
func cached[T any](ctx context.Context, s *Service, key string, compute func() (T, error)) (T, error) {
	key = s.Today().Format("2006-01-02") + ":" + key
	var out T
	if s.cache.Get(ctx, key, &out) {
		return out, nil
	}
	out, err := compute()
	if err != nil {
		return out, err
	}
	s.cache.Set(ctx, key, out)
	return out, nil
}

// StatusStrategy resolves a strategy name, falling back to the configured default
func (s *Service) StatusStrategy(name string) (engine.StatusStrategy, error) {
	if name == "" {
		name = s.strategy
	}
	st, ok := s.engine.StatusStrategyByName(name)
	if !ok {
		return nil, fmt.Errorf("%w: unknown status strategy %q", models.ErrInvalidInput, name)
	}
	return st, nil
}

// ComputeStatus reports balance, month totals, today's spend, the suggested limit and the traffic light
func (s *Service) ComputeStatus(ctx context.Context, strategyName string) models.Result[models.StatusReport] {
	strategy, err := s.StatusStrategy(strategyName)
	if err != nil {
		return fail[models.StatusReport](s, "compute status", err)
	}
	report, err := cached(ctx, s, "status:"+strategy.Name(), func() (models.StatusReport, error) {
		return s.engine.Status(ctx, strategy)
	})
	if err != nil {
		return fail[models.StatusReport](s, "compute status", err)
	}
	return models.OK(report)
}

// ComputeMonthReport compares a month with the one before it; zero year or month means current
func (s *Service) ComputeMonthReport(ctx context.Context, year int, month time.Month) models.Result[models.MonthReport] {
	if month < 0 || month > 12 || year < 0 {
		return fail[models.MonthReport](s, "compute month report",
			fmt.Errorf("%w: month %d of year %d", models.ErrInvalidInput, month, year))
	}
	key := fmt.Sprintf("month:%d-%d", year, month)
	report, err := cached(ctx, s, key, func() (models.MonthReport, error) {
		return s.engine.MonthReport(ctx, year, month)
	})
	if err != nil {
		return fail[models.MonthReport](s, "compute month report", err)
	}
	return models.OK(report)
}

// ComputeWeekReport summarizes Monday of the current week through today
func (s *Service) ComputeWeekReport(ctx context.Context) models.Result[models.WeekReport] {
	report, err := cached(ctx, s, "week", func() (models.WeekReport, error) {
		return s.engine.WeekReport(ctx)
	})
	if err != nil {
		return fail[models.WeekReport](s, "compute week report", err)
	}
	return models.OK(report)
}

// ComputeProjection projects month-end balances; horizons outside 1..12 use the default
func (s *Service) ComputeProjection(ctx context.Context, months int) models.Result[models.ProjectionReport] {
	months = s.engine.ClampMonths(months)
	report, err := cached(ctx, s, fmt.Sprintf("projection:%d", months), func() (models.ProjectionReport, error) {
		return s.engine.Project(ctx, months)
	})
	if err != nil {
		return fail[models.ProjectionReport](s, "compute projection", err)
	}
	return models.OK(report)
}

// EvaluateAlerts returns every alert that currently fires
func (s *Service) EvaluateAlerts(ctx context.Context) models.Result[[]models.Alert] {
	alerts, err := s.engine.EvaluateAlerts(ctx)
	if err != nil {
		return fail[[]models.Alert](s, "evaluate alerts", err)
	}
	if alerts == nil {
		alerts = []models.Alert{}
	}
	return models.OK(alerts)
}

// MaxInstallment is the largest new monthly installment keeping the month at the given state
func (s *Service) MaxInstallment(ctx context.Context, keep models.TrafficState) models.Result[decimal.Decimal] {
	if keep == "" {
		keep = models.StateYellow
	}
	v, err := s.engine.MaxInstallment(ctx, keep)
	if err != nil {
		return fail[decimal.Decimal](s, "max installment", err)
	}
	return models.OK(v)
}

// Categories lists category names in match order
func (s *Service) Categories() []string {
	return s.categories.Categories()
}

// EntryFilter narrows ListEntries
type EntryFilter struct {
	Start time.Time
	End   time.Time
	Kind  models.FlowKind
	Limit int
}

// ListEntries returns entries newest first
func (s *Service) ListEntries(ctx context.Context, f EntryFilter) models.Result[[]models.CashFlowEntry] {
	end := f.End
	if end.IsZero() {
		end = s.Today()
	}
	if !f.Start.IsZero() && f.Start.After(end) {
		return fail[[]models.CashFlowEntry](s, "list entries",
			fmt.Errorf("%w: start %s after end %s", models.ErrInvalidInput, f.Start.Format("2006-01-02"), end.Format("2006-01-02")))
	}
	entries, err := s.store.EntriesInRange(ctx, f.Start, end)
	if err != nil {
		return fail[[]models.CashFlowEntry](s, "list entries", fmt.Errorf("%w: %v", models.ErrDataUnavailable, err))
	}

	out := make([]models.CashFlowEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if f.Kind != "" && entries[i].Kind != f.Kind {
			continue
		}
		out = append(out, entries[i])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return models.OK(out)
}

// Dashboard bundles status, month totals, commitment, a short projection and active installments
func (s *Service) Dashboard(ctx context.Context) models.Result[models.Dashboard] {
	d, err := cached(ctx, s, "dashboard", func() (models.Dashboard, error) {
		return s.dashboard(ctx)
	})
	if err != nil {
		return fail[models.Dashboard](s, "dashboard", err)
	}
	return models.OK(d)
}

func (s *Service) dashboard(ctx context.Context) (models.Dashboard, error) {
	strategy, err := s.StatusStrategy("")
	if err != nil {
		return models.Dashboard{}, err
	}
	status, err := s.engine.Status(ctx, strategy)
	if err != nil {
		return models.Dashboard{}, err
	}
	today := s.Today()
	month, err := s.engine.MonthTotals(ctx, today.Year(), today.Month())
	if err != nil {
		return models.Dashboard{}, err
	}
	light, err := s.engine.TrafficLight(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	commitment, err := s.engine.CommitmentRatio(ctx)
	if err != nil {
		return models.Dashboard{}, err
	}
	projection, err := s.engine.Project(ctx, 3)
	if err != nil {
		return models.Dashboard{}, err
	}
	groups, err := s.store.InstallmentGroups(ctx, false)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("%w: installment groups: %v", models.ErrDataUnavailable, err)
	}
	active := make([]models.InstallmentGroup, 0, len(groups))
	for _, g := range groups {
		if g.RemainingInstallments > 0 {
			active = append(active, g)
		}
	}
	settings, err := s.store.Settings(ctx)
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("%w: settings: %v", models.ErrDataUnavailable, err)
	}

	return models.Dashboard{
		Status:             status,
		Month:              month,
		TrafficLight:       light,
		Commitment:         commitment,
		Projection:         projection.Points,
		ActiveInstallments: active,
		Settings:           settings,
	}, nil
}
