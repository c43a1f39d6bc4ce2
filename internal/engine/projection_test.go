package engine

import (
	"context"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
)

// seedDeficitHistory gives three months of income 2000, fixed 500, variable 1800
// and a current balance of 100.
func seedDeficitHistory(t *testing.T, mem *ledger.Memory) {
	t.Helper()
	for _, month := range []string{"2025-03", "2025-04", "2025-05"} {
		record(t, mem, month+"-01", models.KindIncome, "2000")
		record(t, mem, month+"-05", models.KindFixed, "500")
		record(t, mem, month+"-20", models.KindVariable, "1800")
	}
	record(t, mem, "2025-06-01", models.KindIncome, "1000")
}

func TestProject_NegativeBalanceAlert(t *testing.T) {
	mem, e := newFixture(t, "2025-06-15")
	seedDeficitHistory(t, mem)

	rep, err := e.Project(context.Background(), 4)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	assertDec(t, "current balance", rep.CurrentBalance, "100")
	if rep.Strategy != StrategyTrailingAverage {
		t.Fatalf("strategy = %s, want %s", rep.Strategy, StrategyTrailingAverage)
	}
	if len(rep.Points) != 4 {
		t.Fatalf("len(Points) = %d, want 4", len(rep.Points))
	}

	first := rep.Points[0]
	if first.Month != time.July || first.Year != 2025 || first.MonthName != "JULY" {
		t.Fatalf("first point = %d-%s %q", first.Year, first.Month, first.MonthName)
	}
	assertDec(t, "month-1 performance", first.PerformanceProjected, "-300")
	assertDec(t, "month-1 balance", first.BalanceEnd, "-200")

	wantBalances := []string{"-200", "-500", "-800", "-1100"}
	for i, pt := range rep.Points {
		assertDec(t, "balance", pt.BalanceEnd, wantBalances[i])
		if !pt.IsNegative {
			t.Fatalf("point %d not flagged negative", i)
		}
	}

	if len(rep.RiskAlerts) != 4 {
		t.Fatalf("len(RiskAlerts) = %d, want 4", len(rep.RiskAlerts))
	}
	wantPriority := []models.Priority{models.PriorityMedium, models.PriorityMedium, models.PriorityMedium, models.PriorityHigh}
	for i, a := range rep.RiskAlerts {
		if a.Priority != wantPriority[i] {
			t.Errorf("alert %d priority = %s, want %s", i, a.Priority, wantPriority[i])
		}
	}
	if want := "Projection indicates a negative balance in JULY/2025: -R$ 200,00"; rep.RiskAlerts[0].Message != want {
		t.Fatalf("message = %q, want %q", rep.RiskAlerts[0].Message, want)
	}
}

func TestProject_ChainsBalances(t *testing.T) {
	mem, e := newFixture(t, "2025-11-20")
	record(t, mem, "2025-08-01", models.KindIncome, "3000")
	record(t, mem, "2025-09-01", models.KindIncome, "2400")
	record(t, mem, "2025-10-03", models.KindFixed, "900")
	record(t, mem, "2025-10-12", models.KindVariable, "450")
	addGroup(t, mem, models.InstallmentGroup{
		InstallmentValue:      dec("120"),
		TotalInstallments:     3,
		RemainingInstallments: 3,
		StartDate:             mustDate(t, "2026-01-01"),
	})

	ctx := context.Background()
	rep, err := e.Project(ctx, 12)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	balance, err := e.CurrentBalance(ctx)
	if err != nil {
		t.Fatalf("CurrentBalance: %v", err)
	}
	prev := balance
	for i, pt := range rep.Points {
		if !pt.BalanceStart.Equal(prev) {
			t.Fatalf("point %d starts at %s, want %s", i, pt.BalanceStart, prev)
		}
		if !pt.BalanceEnd.Equal(prev.Add(pt.PerformanceProjected)) {
			t.Fatalf("point %d: %s != %s + %s", i, pt.BalanceEnd, prev, pt.PerformanceProjected)
		}
		prev = pt.BalanceEnd
	}
	if rep.Points[1].Month != time.January || rep.Points[1].Year != 2026 {
		t.Fatalf("second point = %d-%s, want 2026-January", rep.Points[1].Year, rep.Points[1].Month)
	}
	// installments make Jan..Mar 120 worse than December
	diff := rep.Points[0].PerformanceProjected.Sub(rep.Points[1].PerformanceProjected)
	assertDec(t, "installment effect", diff, "120")
	assertDec(t, "April back to baseline", rep.Points[4].PerformanceProjected, rep.Points[0].PerformanceProjected.String())
}

func TestProject_ClampsOutOfRangeMonths(t *testing.T) {
	_, e := newFixture(t, "2025-06-15")
	for _, months := range []int{0, -3, 13, 100} {
		rep, err := e.Project(context.Background(), months)
		if err != nil {
			t.Fatalf("Project(%d): %v", months, err)
		}
		if rep.Months != 6 || len(rep.Points) != 6 {
			t.Fatalf("Project(%d) returned %d points, want 6", months, len(rep.Points))
		}
	}
}

func TestProject_UsesProspectiveTotalsWhenEntered(t *testing.T) {
	mem, e := newFixture(t, "2025-12-10")
	record(t, mem, "2025-12-01", models.KindIncome, "500")
	mem.SetProspective(2026, time.January, models.ProspectiveTotals{
		Income:   dec("3000"),
		Outflow:  dec("1000"),
		Variable: dec("500"),
	})

	rep, err := e.Project(context.Background(), 2)
	if err != nil {
		t.Fatalf("Project: %v", err)
	}
	if rep.Strategy != StrategyProspective {
		t.Fatalf("strategy = %s, want %s", rep.Strategy, StrategyProspective)
	}
	assertDec(t, "january performance", rep.Points[0].PerformanceProjected, "1500")
	assertDec(t, "january balance", rep.Points[0].BalanceEnd, "2000")
	assertDec(t, "february performance", rep.Points[1].PerformanceProjected, "0")
	if len(rep.RiskAlerts) != 0 {
		t.Fatalf("unexpected alerts: %+v", rep.RiskAlerts)
	}
}

func TestProjectionAlerts_Threshold(t *testing.T) {
	p := DefaultPolicy()
	points := []models.ProjectionPoint{
		{Year: 2025, Month: time.July, MonthName: "JULY", BalanceEnd: dec("10")},
		{Year: 2025, Month: time.August, MonthName: "AUGUST", BalanceEnd: dec("-1000"), IsNegative: true},
		{Year: 2025, Month: time.September, MonthName: "SEPTEMBER", BalanceEnd: dec("-1000.01"), IsNegative: true},
	}
	alerts := ProjectionAlerts(points, p)
	if len(alerts) != 2 {
		t.Fatalf("len(alerts) = %d, want 2", len(alerts))
	}
	if alerts[0].Priority != models.PriorityMedium || alerts[1].Priority != models.PriorityHigh {
		t.Fatalf("priorities = %s, %s", alerts[0].Priority, alerts[1].Priority)
	}
}
