package sheets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

func june(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func newTestLedger() (*MemoryGrid, *Ledger) {
	grid := &MemoryGrid{}
	return grid, NewLedger(grid, 2025, models.DefaultSettings(), time.UTC)
}

func TestCellRef(t *testing.T) {
	tests := []struct {
		row, col int
		want     string
	}{
		{0, 0, "A1"},
		{2, 25, "Z3"},
		{0, 26, "AA1"},
		{37, 70, "BS38"},
	}
	for _, tt := range tests {
		if got := CellRef(tt.row, tt.col); got != tt.want {
			t.Errorf("CellRef(%d, %d) = %s, want %s", tt.row, tt.col, got, tt.want)
		}
	}
}

func TestEntriesInRange_FromCells(t *testing.T) {
	grid, l := newTestLedger()
	off := monthOffset(time.June)
	grid.Set(dayRow(1), off+colIncome, "R$ 3.000,00")
	grid.Set(dayRow(1), off+colOutflow, "R$ 1.200,00")
	grid.Set(dayRow(2), off+colDaily, "R$ 45,50")
	grid.Set(dayRow(2), off+colBalance, "R$ 1.754,50")
	grid.Set(dayRow(1), monthOffset(time.July)+colIncome, "R$ 9.999,00")

	entries, err := l.EntriesInRange(context.Background(), june(1), june(30))
	if err != nil {
		t.Fatalf("EntriesInRange: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len(entries) = %d, want 3: %+v", len(entries), entries)
	}
	if entries[0].Kind != models.KindIncome || !entries[0].Amount.Equal(decimal.NewFromInt(3000)) {
		t.Fatalf("income = %+v", entries[0])
	}
	if entries[1].Kind != models.KindFixed || !entries[1].Amount.Equal(decimal.NewFromInt(-1200)) {
		t.Fatalf("outflow = %+v", entries[1])
	}
	if entries[2].Kind != models.KindVariable || !entries[2].Amount.Equal(decimal.RequireFromString("-45.5")) {
		t.Fatalf("daily = %+v", entries[2])
	}

	other, err := l.EntriesInRange(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC))
	if err != nil || len(other) != 0 {
		t.Fatalf("other year = %v, %v", other, err)
	}
}

func TestBalanceAndDailyCells(t *testing.T) {
	grid, l := newTestLedger()
	ctx := context.Background()
	off := monthOffset(time.June)
	grid.Set(dayRow(15), off+colBalance, "-R$ 20,00")
	grid.Set(dayRow(15), off+colDaily, "R$ 50,00")

	b, err := l.CurrentBalance(ctx, june(15))
	if err != nil {
		t.Fatalf("CurrentBalance: %v", err)
	}
	if !b.Equal(decimal.NewFromInt(-20)) {
		t.Fatalf("balance = %s", b)
	}

	if err := l.SetDailyVariable(ctx, june(15), decimal.RequireFromString("12.3")); err != nil {
		t.Fatalf("SetDailyVariable: %v", err)
	}
	if got := grid.Cells[dayRow(15)][off+colDaily]; got != "R$ 12,30" {
		t.Fatalf("daily cell = %q", got)
	}
	v, err := l.DailyVariable(ctx, june(15))
	if err != nil || !v.Equal(decimal.RequireFromString("12.3")) {
		t.Fatalf("DailyVariable = %s, %v", v, err)
	}
}

func TestAppendEntry_AccumulatesIntoCells(t *testing.T) {
	grid, l := newTestLedger()
	ctx := context.Background()
	off := monthOffset(time.June)
	grid.Set(dayRow(10), off+colOutflow, "R$ 100,00")

	if _, err := l.AppendEntry(ctx, models.CashFlowEntry{Date: june(10), Kind: models.KindFixed, Amount: decimal.NewFromInt(-250)}); err != nil {
		t.Fatalf("AppendEntry fixed: %v", err)
	}
	if _, err := l.AppendEntry(ctx, models.CashFlowEntry{Date: june(10), Kind: models.KindIncome, Amount: decimal.NewFromInt(1000)}); err != nil {
		t.Fatalf("AppendEntry income: %v", err)
	}
	if _, err := l.AppendEntry(ctx, models.CashFlowEntry{Date: june(10), Kind: models.KindVariable, Amount: decimal.NewFromInt(-5)}); err != nil {
		t.Fatalf("AppendEntry variable: %v", err)
	}

	row := grid.Cells[dayRow(10)]
	if row[off+colOutflow] != "R$ 350,00" || row[off+colIncome] != "R$ 1.000,00" {
		t.Fatalf("row = %q", row)
	}
	if len(row) > off+colDaily && row[off+colDaily] != "" {
		t.Fatalf("variable entry touched the daily cell: %q", row[off+colDaily])
	}

	_, err := l.AppendEntry(ctx, models.CashFlowEntry{Date: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Kind: models.KindIncome, Amount: decimal.NewFromInt(1)})
	if !errors.Is(err, models.ErrInvalidInput) {
		t.Fatalf("next-year entry err = %v", err)
	}
}

func TestWrite_RefusesBalanceColumn(t *testing.T) {
	_, l := newTestLedger()
	err := l.write(context.Background(), dayRow(1), monthOffset(time.March)+colBalance, decimal.NewFromInt(1))
	if !errors.Is(err, models.ErrInconsistentState) {
		t.Fatalf("err = %v, want ErrInconsistentState", err)
	}
}

func TestProspectiveTotals_RowFallback(t *testing.T) {
	grid, l := newTestLedger()
	ctx := context.Background()
	jul, aug := monthOffset(time.July), monthOffset(time.August)
	grid.Set(totalsRow, jul+colIncome, "R$ 5.000,00")
	grid.Set(totalsRow, jul+colOutflow, "R$ 2.000,00")
	grid.Set(totalsRow, jul+colDaily, "R$ 1.550,00")
	grid.Set(totalsRowAlt, aug+colIncome, "R$ 4.000,00")

	got, ok, err := l.ProspectiveTotals(ctx, 2025, time.July)
	if err != nil || !ok {
		t.Fatalf("July = %v, %v", ok, err)
	}
	if !got.Variable.Equal(decimal.NewFromInt(1550)) || !got.Outflow.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("July totals = %+v", got)
	}

	got, ok, err = l.ProspectiveTotals(ctx, 2025, time.August)
	if err != nil || !ok || !got.Income.Equal(decimal.NewFromInt(4000)) {
		t.Fatalf("August = %+v, %v, %v", got, ok, err)
	}

	if _, ok, _ := l.ProspectiveTotals(ctx, 2025, time.September); ok {
		t.Fatal("empty month reported as entered")
	}
	if _, ok, _ := l.ProspectiveTotals(ctx, 2026, time.January); ok {
		t.Fatal("other year reported as entered")
	}
}
