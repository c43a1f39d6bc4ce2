package sheets

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
	"github.com/shopspring/decimal"
)

const (
	colsPerMonth = 6
	colIncome    = 1
	colOutflow   = 2
	colDaily     = 3
	colBalance   = 4
	totalsRow    = 37
	totalsRowAlt = 36
)

// Ledger exposes one year's spreadsheet as a cash-flow ledger. The balance
// column is computed by sheet formulas and is never written.
type Ledger struct {
	grid     Grid
	year     int
	settings models.UserSettings
	loc      *time.Location
}

// NewLedger creates a ledger for the sheet of the given year
func NewLedger(grid Grid, year int, settings models.UserSettings, loc *time.Location) *Ledger {
	if loc == nil {
		loc = time.Local
	}
	return &Ledger{grid: grid, year: year, settings: settings, loc: loc}
}

type snapshot [][]string

func (s snapshot) cell(row, col int) string {
	if row < 0 || row >= len(s) || col < 0 || col >= len(s[row]) {
		return ""
	}
	return s[row][col]
}

func (s snapshot) money(row, col int) decimal.Decimal {
	return utils.ParseBRL(s.cell(row, col))
}

func monthOffset(month time.Month) int {
	return (int(month) - 1) * colsPerMonth
}

func dayRow(day int) int {
	return day + 1
}

func (l *Ledger) read(ctx context.Context) (snapshot, error) {
	rows, err := l.grid.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	return snapshot(rows), nil
}

func (l *Ledger) write(ctx context.Context, row, col int, amount decimal.Decimal) error {
	if col%colsPerMonth == colBalance {
		return fmt.Errorf("%w: the balance column is computed by the sheet", models.ErrInconsistentState)
	}
	if err := l.grid.Write(ctx, row, col, utils.FormatBRL(amount)); err != nil {
		return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
	}
	return nil
}

func (l *Ledger) inYear(day time.Time) error {
	if day.Year() != l.year {
		return fmt.Errorf("%w: sheet only covers %d", models.ErrInvalidInput, l.year)
	}
	return nil
}

// entryID is stable per day and column
func entryID(day time.Time, col int) int64 {
	return int64(day.Year()*10000+int(day.Month())*100+day.Day())*10 + int64(col)
}

// EntriesInRange turns each day's income, outflow and daily cells into entries
func (l *Ledger) EntriesInRange(ctx context.Context, start, end time.Time) ([]models.CashFlowEntry, error) {
	first := time.Date(l.year, time.January, 1, 0, 0, 0, 0, l.loc)
	last := time.Date(l.year, time.December, 31, 0, 0, 0, 0, l.loc)
	from := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, l.loc)
	to := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, l.loc)
	if start.IsZero() || from.Before(first) {
		from = first
	}
	if to.After(last) {
		to = last
	}
	if from.After(to) {
		return nil, nil
	}

	s, err := l.read(ctx)
	if err != nil {
		return nil, err
	}
	var entries []models.CashFlowEntry
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		row, off := dayRow(d.Day()), monthOffset(d.Month())
		label := d.Format("02/01")
		if v := s.money(row, off+colIncome); !v.IsZero() {
			entries = append(entries, models.CashFlowEntry{
				ID: entryID(d, colIncome), Date: d, Amount: v, Kind: models.KindIncome,
				Description: "Income " + label,
			})
		}
		if v := s.money(row, off+colOutflow); !v.IsZero() {
			entries = append(entries, models.CashFlowEntry{
				ID: entryID(d, colOutflow), Date: d, Amount: v.Neg(), Kind: models.KindFixed,
				Description: "Outflow " + label,
			})
		}
		if v := s.money(row, off+colDaily); !v.IsZero() {
			entries = append(entries, models.CashFlowEntry{
				ID: entryID(d, colDaily), Date: d, Amount: v.Neg(), Kind: models.KindVariable,
				Description: "Daily spend " + label,
			})
		}
	}
	return entries, nil
}

// InstallmentGroups is always empty: the sheet records installments as plain outflows
func (l *Ledger) InstallmentGroups(ctx context.Context, includeSimulations bool) ([]models.InstallmentGroup, error) {
	return nil, nil
}

// Settings returns the configured settings
func (l *Ledger) Settings(ctx context.Context) (models.UserSettings, error) {
	return l.settings, nil
}

// CurrentBalance reads today's balance cell
func (l *Ledger) CurrentBalance(ctx context.Context, today time.Time) (decimal.Decimal, error) {
	if err := l.inYear(today); err != nil {
		return decimal.Zero, err
	}
	s, err := l.read(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.money(dayRow(today.Day()), monthOffset(today.Month())+colBalance), nil
}

// DailyVariable reads a day's daily-spend cell
func (l *Ledger) DailyVariable(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	if err := l.inYear(day); err != nil {
		return decimal.Zero, err
	}
	s, err := l.read(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.money(dayRow(day.Day()), monthOffset(day.Month())+colDaily), nil
}

// SetDailyVariable overwrites a day's daily-spend cell
func (l *Ledger) SetDailyVariable(ctx context.Context, day time.Time, amount decimal.Decimal) error {
	if err := l.inYear(day); err != nil {
		return err
	}
	return l.write(ctx, dayRow(day.Day()), monthOffset(day.Month())+colDaily, amount)
}

// AppendEntry adds income to the income cell and fixed or installment outflows
// to the outflow cell of the entry's day. Variable spends are recorded through
// SetDailyVariable and leave the sheet untouched here.
func (l *Ledger) AppendEntry(ctx context.Context, entry models.CashFlowEntry) (models.CashFlowEntry, error) {
	if err := l.inYear(entry.Date); err != nil {
		return entry, err
	}
	day := time.Date(entry.Date.Year(), entry.Date.Month(), entry.Date.Day(), 0, 0, 0, 0, l.loc)
	entry.Date = day

	var col int
	switch entry.Kind {
	case models.KindIncome:
		col = colIncome
	case models.KindFixed, models.KindInstallment:
		col = colOutflow
	case models.KindVariable:
		entry.ID = entryID(day, colDaily)
		return entry, nil
	default:
		return entry, fmt.Errorf("%w: unknown kind %q", models.ErrInvalidInput, entry.Kind)
	}

	s, err := l.read(ctx)
	if err != nil {
		return entry, err
	}
	row, abs := dayRow(day.Day()), monthOffset(day.Month())+col
	current := s.money(row, abs)
	if err := l.write(ctx, row, abs, current.Add(entry.Magnitude())); err != nil {
		return entry, err
	}
	entry.ID = entryID(day, col)
	return entry, nil
}

// ProspectiveTotals reads the totals row the user pre-fills for a month
func (l *Ledger) ProspectiveTotals(ctx context.Context, year int, month time.Month) (models.ProspectiveTotals, bool, error) {
	if year != l.year {
		return models.ProspectiveTotals{}, false, nil
	}
	s, err := l.read(ctx)
	if err != nil {
		return models.ProspectiveTotals{}, false, err
	}
	off := monthOffset(month)
	row := totalsRow
	if s.money(row, off+colIncome).IsZero() && s.money(row, off+colOutflow).IsZero() {
		row = totalsRowAlt
	}
	t := models.ProspectiveTotals{
		Income:   s.money(row, off+colIncome),
		Outflow:  s.money(row, off+colOutflow),
		Variable: s.money(row, off+colDaily),
	}
	ok := !t.Income.IsZero() || !t.Outflow.IsZero() || !t.Variable.IsZero()
	return t, ok, nil
}
