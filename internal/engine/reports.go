package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// VariationPercent is the relative change against |previous|; 100 when starting from zero
func VariationPercent(current, previous decimal.Decimal) decimal.Decimal {
	if previous.IsZero() {
		if current.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return current.Sub(previous).Div(previous.Abs()).Mul(hundred).Round(2)
}

func variation(current, previous decimal.Decimal) models.Variation {
	return models.Variation{
		Current:  current,
		Previous: previous,
		Delta:    current.Sub(previous),
		Percent:  VariationPercent(current, previous),
	}
}

// CompareMonths compares two months metric by metric
func CompareMonths(cur, prev models.MonthlyTotals) models.MonthComparison {
	return models.MonthComparison{
		Performance: variation(cur.Performance, prev.Performance),
		Income:      variation(cur.Income, prev.Income),
		Fixed:       variation(cur.Fixed, prev.Fixed),
		Variable:    variation(cur.Variable, prev.Variable),
	}
}

var (
	performanceSwing = decimal.NewFromInt(20)
	variableSwing    = decimal.NewFromInt(30)
	incomeSwing      = decimal.NewFromInt(20)
	fixedSwing       = decimal.NewFromInt(10)
)

// Insights turns a month comparison into short human readable remarks
func Insights(cur models.MonthlyTotals, cmp models.MonthComparison) []string {
	var out []string
	pctText := func(d decimal.Decimal) string { return d.Abs().StringFixed(1) }

	switch p := cmp.Performance.Percent; {
	case p.GreaterThan(performanceSwing):
		out = append(out, fmt.Sprintf("Performance improved %s%% over last month!", pctText(p)))
	case p.LessThan(performanceSwing.Neg()):
		out = append(out, fmt.Sprintf("Performance dropped %s%% from last month. Review your expenses.", pctText(p)))
	}

	switch p := cmp.Variable.Percent; {
	case p.GreaterThan(variableSwing):
		out = append(out, fmt.Sprintf("You spent %s%% more on daily expenses this month.", pctText(p)))
	case p.LessThan(variableSwing.Neg()):
		out = append(out, fmt.Sprintf("You saved %s%% on daily expenses this month!", pctText(p)))
	}

	switch p := cmp.Income.Percent; {
	case p.GreaterThan(incomeSwing):
		out = append(out, fmt.Sprintf("Your income grew %s%% this month!", pctText(p)))
	case p.LessThan(incomeSwing.Neg()):
		out = append(out, fmt.Sprintf("Your income fell %s%% this month.", pctText(p)))
	}

	if p := cmp.Fixed.Percent; p.Abs().GreaterThan(fixedSwing) {
		if p.IsPositive() {
			out = append(out, fmt.Sprintf("Your fixed expenses rose %s%% this month.", pctText(p)))
		} else {
			out = append(out, fmt.Sprintf("Your fixed expenses fell %s%% this month!", pctText(p)))
		}
	}

	if cur.Performance.IsNegative() {
		out = append(out, "Negative performance this month. If you did not save money, review your expenses!")
	}
	if len(out) == 0 {
		out = append(out, "Your month is balanced. Keep it up!")
	}
	return out
}

// MonthReport compares a month with the one before it. A zero year or month means the current one.
func (e *Engine) MonthReport(ctx context.Context, year int, month time.Month) (models.MonthReport, error) {
	today := e.Today()
	if year == 0 {
		year = today.Year()
	}
	if month == 0 {
		month = today.Month()
	}
	if month < time.January || month > time.December {
		return models.MonthReport{}, fmt.Errorf("%w: month %d", models.ErrInvalidInput, month)
	}
	cur, err := e.MonthTotals(ctx, year, month)
	if err != nil {
		return models.MonthReport{}, err
	}
	py, pm := addMonths(year, month, -1)
	prev, err := e.MonthTotals(ctx, py, pm)
	if err != nil {
		return models.MonthReport{}, err
	}
	cmp := CompareMonths(cur, prev)
	return models.MonthReport{
		Current:    cur,
		Previous:   prev,
		Comparison: cmp,
		Insights:   Insights(cur, cmp),
	}, nil
}

// WeekReport covers Monday of the current week through today
func (e *Engine) WeekReport(ctx context.Context) (models.WeekReport, error) {
	today := e.Today()
	start := WeekStart(today)
	week, err := e.WeekTotals(ctx, start, today)
	if err != nil {
		return models.WeekReport{}, err
	}

	return models.WeekReport{
		PeriodStart:     start,
		PeriodEnd:       today,
		TopExpenses:     week.TopExpenses,
		PlannedTotal:    week.Planned,
		ActualTotal:     week.Variable,
		PlannedVsActual: week.Planned.Sub(week.Variable),
		WeekPerformance: week.Performance,
		PerDayBreakdown: week.Days,
	}, nil
}
