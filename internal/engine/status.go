package engine

import (
	"context"
	"fmt"

	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Status strategy names
const (
	StrategyMonthPerformance     = "month_performance"
	StrategyBalanceAndDailyRatio = "balance_and_daily_ratio"
)

// StatusInput is everything a status strategy may look at
type StatusInput struct {
	Performance   decimal.Decimal
	AverageIncome decimal.Decimal
	Balance       decimal.Decimal
	TodaySpend    decimal.Decimal
	DailyLimit    decimal.Decimal
	Settings      models.UserSettings
}

// StatusStrategy classifies financial health into a traffic light
type StatusStrategy interface {
	Name() string
	Classify(in StatusInput) models.TrafficLight
}

// MonthPerformanceStrategy answers "how is the month going" from performance
// against the critical share of trailing income. The warning threshold is not
// consulted here.
type MonthPerformanceStrategy struct {
	CriticalFallback decimal.Decimal
}

func (MonthPerformanceStrategy) Name() string { return StrategyMonthPerformance }

func (s MonthPerformanceStrategy) Classify(in StatusInput) models.TrafficLight {
	critical := s.CriticalFallback
	if in.AverageIncome.IsPositive() {
		critical = in.AverageIncome.Mul(in.Settings.CriticalThresholdPct).Div(hundred).Neg()
	}
	switch {
	case !in.Performance.IsNegative():
		return models.TrafficLight{State: models.StateGreen, Label: "Healthy", Value: in.Performance}
	case in.Performance.GreaterThan(critical):
		return models.TrafficLight{State: models.StateYellow, Label: "Attention", Value: in.Performance}
	default:
		return models.TrafficLight{State: models.StateRed, Label: "Critical", Value: in.Performance}
	}
}

// BalanceAndDailyRatioStrategy answers "how is today going" from the balance
// sign and the share of the daily limit already spent.
type BalanceAndDailyRatioStrategy struct {
	NearLimitPct decimal.Decimal
}

func (BalanceAndDailyRatioStrategy) Name() string { return StrategyBalanceAndDailyRatio }

func (s BalanceAndDailyRatioStrategy) Classify(in StatusInput) models.TrafficLight {
	near := in.DailyLimit.IsPositive() &&
		in.TodaySpend.GreaterThan(in.DailyLimit.Mul(s.NearLimitPct).Div(hundred))

	switch {
	case in.Balance.IsNegative():
		return models.TrafficLight{State: models.StateRed, Label: "Negative balance",
			Message: "Negative balance, avoid new spending.", Value: in.Balance}
	case in.Performance.IsNegative() && near:
		return models.TrafficLight{State: models.StateYellow, Label: "Attention",
			Message: "Negative performance and daily spend close to the limit.", Value: in.Performance}
	case in.Performance.IsNegative():
		return models.TrafficLight{State: models.StateYellow, Label: "Attention",
			Message: "Negative performance, be careful with spending.", Value: in.Performance}
	case near:
		return models.TrafficLight{State: models.StateYellow, Label: "Attention",
			Message: fmt.Sprintf("%s%% of daily limit reached.", s.NearLimitPct.String()), Value: in.TodaySpend}
	default:
		return models.TrafficLight{State: models.StateGreen, Label: "On track",
			Message: "Within daily target.", Value: in.Balance}
	}
}

// StatusStrategyByName resolves a strategy name; unknown names return ok=false
func (e *Engine) StatusStrategyByName(name string) (StatusStrategy, bool) {
	switch name {
	case StrategyMonthPerformance:
		return MonthPerformanceStrategy{CriticalFallback: e.policy.CriticalFallback}, true
	case StrategyBalanceAndDailyRatio:
		return BalanceAndDailyRatioStrategy{NearLimitPct: e.policy.NearLimitPct}, true
	}
	return nil, false
}

// CurrentBalance is the running total of all signed entries since inception,
// unless the ledger keeps its own balance.
func (e *Engine) CurrentBalance(ctx context.Context) (decimal.Decimal, error) {
	today := e.Today()
	if br, ok := e.ledger.(ledger.BalanceReader); ok {
		b, err := br.CurrentBalance(ctx, today)
		if err != nil {
			return decimal.Zero, fmt.Errorf("%w: balance: %v", models.ErrDataUnavailable, err)
		}
		return b, nil
	}
	entries, err := e.ledger.EntriesInRange(ctx, ledger.Since, ledger.FarFuture)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: balance: %v", models.ErrDataUnavailable, err)
	}
	balance := decimal.Zero
	for _, en := range entries {
		balance = balance.Add(en.Amount)
	}
	return balance, nil
}

// Trailing holds averages over the months preceding the current one
type Trailing struct {
	Income   decimal.Decimal
	Fixed    decimal.Decimal
	Variable decimal.Decimal
	// HasHistory is false when the window had no entries and settings were used instead
	HasHistory bool
}

// TrailingAverages averages income, fixed and variable over the configured
// number of calendar months preceding the current one.
func (e *Engine) TrailingAverages(ctx context.Context) (Trailing, error) {
	today := e.Today()
	n := e.policy.TrailingMonths
	if n <= 0 {
		n = 3
	}
	fy, fm := addMonths(today.Year(), today.Month(), -n)
	start, _ := monthBounds(fy, fm, today.Location())
	ly, lm := addMonths(today.Year(), today.Month(), -1)
	_, end := monthBounds(ly, lm, today.Location())

	entries, err := e.ledger.EntriesInRange(ctx, start, end)
	if err != nil {
		return Trailing{}, fmt.Errorf("%w: trailing window: %v", models.ErrDataUnavailable, err)
	}
	if len(entries) == 0 {
		s, err := e.settings(ctx)
		if err != nil {
			return Trailing{}, err
		}
		return Trailing{
			Income:   s.AverageIncome,
			Fixed:    decimal.Zero,
			Variable: s.DailyAverageExpense.Mul(thirty),
		}, nil
	}

	t := sumMonth(fy, fm, entries, nil)
	count := decimal.NewFromInt(int64(n))
	return Trailing{
		Income:     t.Income.Div(count),
		Fixed:      t.Fixed.Div(count),
		Variable:   t.Variable.Div(count),
		HasHistory: true,
	}, nil
}

// CommitmentRatio is current fixed plus installments as a share of trailing average income
func (e *Engine) CommitmentRatio(ctx context.Context) (models.CommitmentRatio, error) {
	today := e.Today()
	month, err := e.MonthTotals(ctx, today.Year(), today.Month())
	if err != nil {
		return models.CommitmentRatio{}, err
	}
	tr, err := e.TrailingAverages(ctx)
	if err != nil {
		return models.CommitmentRatio{}, err
	}
	return commitment(month, tr.Income), nil
}

func commitment(month models.MonthlyTotals, avgIncome decimal.Decimal) models.CommitmentRatio {
	obligations := month.Fixed.Add(month.Installments)
	return models.CommitmentRatio{
		RatioPct:             pct(obligations, avgIncome),
		FixedPlusInstallment: obligations,
		AverageIncome:        avgIncome,
	}
}

// TrafficLight is the month-level classification of the current month
func (e *Engine) TrafficLight(ctx context.Context) (models.TrafficLight, error) {
	today := e.Today()
	month, err := e.MonthTotals(ctx, today.Year(), today.Month())
	if err != nil {
		return models.TrafficLight{}, err
	}
	tr, err := e.TrailingAverages(ctx)
	if err != nil {
		return models.TrafficLight{}, err
	}
	s, err := e.settings(ctx)
	if err != nil {
		return models.TrafficLight{}, err
	}
	st := MonthPerformanceStrategy{CriticalFallback: e.policy.CriticalFallback}
	return st.Classify(StatusInput{Performance: month.Performance, AverageIncome: tr.Income, Settings: s}), nil
}

// todayVariable reads today's variable total and whether it is still the placeholder
func (e *Engine) todayVariable(ctx context.Context) (decimal.Decimal, bool, error) {
	today := e.Today()
	if book, ok := e.ledger.(ledger.DayBook); ok {
		v, err := book.DailyVariable(ctx, today)
		if err != nil {
			return decimal.Zero, false, fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err)
		}
		return v, Untouched(v, e.policy), nil
	}
	entries, err := e.ledger.EntriesInRange(ctx, today, today)
	if err != nil {
		return decimal.Zero, false, fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err)
	}
	spent := decimal.Zero
	for _, en := range entries {
		if en.Kind == models.KindVariable {
			spent = spent.Sub(en.Amount)
		}
	}
	return spent, false, nil
}

// Status computes the full status payload using the given strategy
func (e *Engine) Status(ctx context.Context, strategy StatusStrategy) (models.StatusReport, error) {
	today := e.Today()
	balance, err := e.CurrentBalance(ctx)
	if err != nil {
		return models.StatusReport{}, err
	}
	month, err := e.MonthTotals(ctx, today.Year(), today.Month())
	if err != nil {
		return models.StatusReport{}, err
	}
	tr, err := e.TrailingAverages(ctx)
	if err != nil {
		return models.StatusReport{}, err
	}
	s, err := e.settings(ctx)
	if err != nil {
		return models.StatusReport{}, err
	}
	dayValue, untouched, err := e.todayVariable(ctx)
	if err != nil {
		return models.StatusReport{}, err
	}

	spend := TodaySpend(dayValue, untouched)
	limit := SuggestedLimit(untouched, month.Performance, today, e.policy)
	light := strategy.Classify(StatusInput{
		Performance:   month.Performance,
		AverageIncome: tr.Income,
		Balance:       balance,
		TodaySpend:    spend,
		DailyLimit:    limit,
		Settings:      s,
	})

	return models.StatusReport{
		Date:              today,
		Balance:           balance,
		TodaySpend:        spend,
		MonthIncome:       month.Income,
		MonthOutflow:      month.Fixed.Add(month.Variable),
		MonthTotalOutflow: month.TotalOutflow(),
		Performance:       month.Performance,
		DailyLimit:        limit,
		TrafficState:      light.State,
		StatusLabel:       light.Label,
		StatusMessage:     light.Message,
		Strategy:          strategy.Name(),
	}, nil
}
