package engine

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// MonthTotals aggregates all entries of a calendar month plus the installments due in it
func (e *Engine) MonthTotals(ctx context.Context, year int, month time.Month) (models.MonthlyTotals, error) {
	start, end := monthBounds(year, month, e.now().Location())
	entries, err := e.ledger.EntriesInRange(ctx, start, end)
	if err != nil {
		return models.MonthlyTotals{}, fmt.Errorf("%w: entries for %d-%02d: %v", models.ErrDataUnavailable, year, month, err)
	}
	groups, err := e.confirmedGroups(ctx)
	if err != nil {
		return models.MonthlyTotals{}, err
	}
	return sumMonth(year, month, entries, groups), nil
}

func (e *Engine) confirmedGroups(ctx context.Context) ([]models.InstallmentGroup, error) {
	groups, err := e.ledger.InstallmentGroups(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: installment groups: %v", models.ErrDataUnavailable, err)
	}
	return groups, nil
}

func installmentsDue(groups []models.InstallmentGroup, year int, month time.Month) decimal.Decimal {
	total := decimal.Zero
	for _, g := range groups {
		if g.IsSimulation {
			continue
		}
		if g.DueIn(year, month) {
			total = total.Add(g.InstallmentValue)
		}
	}
	return total
}

// sumMonth applies the performance identity. Outflow kinds are summed as
// negated signed amounts so that compensating entries reduce the total.
// Recorded installment payments are skipped: the schedule already counts them.
func sumMonth(year int, month time.Month, entries []models.CashFlowEntry, groups []models.InstallmentGroup) models.MonthlyTotals {
	t := models.MonthlyTotals{
		Year:         year,
		Month:        month,
		Income:       decimal.Zero,
		Fixed:        decimal.Zero,
		Variable:     decimal.Zero,
		Installments: installmentsDue(groups, year, month),
	}
	for _, en := range entries {
		switch en.Kind {
		case models.KindIncome:
			t.Income = t.Income.Add(en.Amount)
		case models.KindFixed:
			t.Fixed = t.Fixed.Sub(en.Amount)
		case models.KindVariable:
			t.Variable = t.Variable.Sub(en.Amount)
		}
	}
	t.Performance = t.Income.Sub(t.TotalOutflow())
	return t
}

// topExpenseCount is how many spends a week window keeps
const topExpenseCount = 5

// WeekTotals returns the per-day breakdown of [start, end], its aggregate and its largest spends
func (e *Engine) WeekTotals(ctx context.Context, start, end time.Time) (models.WeekTotals, error) {
	start, end = models.DateOf(start), models.DateOf(end)
	entries, err := e.ledger.EntriesInRange(ctx, start, end)
	if err != nil {
		return models.WeekTotals{}, fmt.Errorf("%w: entries for week of %s: %v", models.ErrDataUnavailable, start.Format("2006-01-02"), err)
	}
	return sumDays(start, end, entries, e.policy.PrescribedDaily), nil
}

func sumDays(start, end time.Time, entries []models.CashFlowEntry, planned decimal.Decimal) models.WeekTotals {
	w := models.WeekTotals{
		Start:    start,
		End:      end,
		Income:   decimal.Zero,
		Fixed:    decimal.Zero,
		Variable: decimal.Zero,
		Planned:  decimal.Zero,
	}
	index := make(map[string]int)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		index[d.Format("2006-01-02")] = len(w.Days)
		w.Days = append(w.Days, models.DayTotals{
			Date:     d,
			Weekday:  d.Weekday().String(),
			Income:   decimal.Zero,
			Fixed:    decimal.Zero,
			Variable: decimal.Zero,
			Planned:  planned,
		})
		w.Planned = w.Planned.Add(planned)
	}
	for _, en := range entries {
		i, ok := index[en.Date.Format("2006-01-02")]
		if !ok {
			continue
		}
		day := &w.Days[i]
		switch en.Kind {
		case models.KindIncome:
			day.Income = day.Income.Add(en.Amount)
			w.Income = w.Income.Add(en.Amount)
		case models.KindFixed:
			day.Fixed = day.Fixed.Sub(en.Amount)
			w.Fixed = w.Fixed.Sub(en.Amount)
		case models.KindVariable:
			day.Variable = day.Variable.Sub(en.Amount)
			w.Variable = w.Variable.Sub(en.Amount)
		}
	}
	w.Performance = w.Income.Sub(w.Fixed).Sub(w.Variable)
	w.TopExpenses = topExpenses(entries, start, end, topExpenseCount)
	return w
}

func topExpenses(entries []models.CashFlowEntry, start, end time.Time, n int) []models.CashFlowEntry {
	var spends []models.CashFlowEntry
	for _, en := range entries {
		d := models.DateOf(en.Date)
		if en.Kind != models.KindVariable || !en.Amount.IsNegative() || d.Before(start) || d.After(end) {
			continue
		}
		spends = append(spends, en)
	}
	sort.SliceStable(spends, func(i, j int) bool {
		return spends[i].Magnitude().GreaterThan(spends[j].Magnitude())
	})
	if len(spends) > n {
		spends = spends[:n]
	}
	return spends
}

// WeekStart returns the Monday of the week containing day
func WeekStart(day time.Time) time.Time {
	day = models.DateOf(day)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}
