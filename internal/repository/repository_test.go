package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	r := NewRepository(db, DriverSQLite, decimal.NewFromInt(50))
	r.SetLocation(time.UTC)
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return r
}

func day(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestRebind(t *testing.T) {
	r := &Repository{driver: DriverSQLite}
	if got := r.rebind("a = $1 AND b = $12"); got != "a = ? AND b = ?" {
		t.Fatalf("sqlite rebind = %q", got)
	}
	r.driver = DriverPostgres
	if got := r.rebind("a = $1"); got != "a = $1" {
		t.Fatalf("postgres rebind = %q", got)
	}
}

func TestEntries_AppendAndRange(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	group := int64(7)
	inputs := []models.CashFlowEntry{
		{Date: day("2025-06-20"), Amount: decimal.RequireFromString("-45.50"), Kind: models.KindVariable, Description: "lunch", Category: "Food"},
		{Date: day("2025-06-01"), Amount: decimal.NewFromInt(3000), Kind: models.KindIncome, Description: "salary"},
		{Date: day("2025-07-02"), Amount: decimal.NewFromInt(-120), Kind: models.KindInstallment, InstallmentGroupID: &group},
	}
	for _, in := range inputs {
		out, err := r.AppendEntry(ctx, in)
		if err != nil {
			t.Fatalf("AppendEntry: %v", err)
		}
		if out.ID == 0 {
			t.Fatal("AppendEntry did not assign an ID")
		}
	}

	june, err := r.EntriesInRange(ctx, day("2025-06-01"), day("2025-06-30"))
	if err != nil {
		t.Fatalf("EntriesInRange: %v", err)
	}
	if len(june) != 2 {
		t.Fatalf("len(june) = %d, want 2", len(june))
	}
	if june[0].Description != "salary" || june[1].Description != "lunch" {
		t.Fatalf("entries not ordered by date: %q, %q", june[0].Description, june[1].Description)
	}
	if !june[1].Amount.Equal(decimal.RequireFromString("-45.5")) || june[1].Category != "Food" {
		t.Fatalf("lunch = %+v", june[1])
	}
	if june[1].Date.Format("2006-01-02") != "2025-06-20" {
		t.Fatalf("date = %s", june[1].Date)
	}

	all, err := r.EntriesInRange(ctx, time.Time{}, day("9999-12-31"))
	if err != nil {
		t.Fatalf("EntriesInRange all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(all) = %d, want 3", len(all))
	}
	if all[2].InstallmentGroupID == nil || *all[2].InstallmentGroupID != 7 {
		t.Fatalf("installment group id = %v", all[2].InstallmentGroupID)
	}
}

func TestDailyTotals_DefaultAndUpsert(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()
	d := day("2025-06-15")

	v, err := r.DailyVariable(ctx, d)
	if err != nil {
		t.Fatalf("DailyVariable: %v", err)
	}
	if !v.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unwritten day = %s, want 50", v)
	}

	for _, amount := range []string{"30", "0"} {
		if err := r.SetDailyVariable(ctx, d, decimal.RequireFromString(amount)); err != nil {
			t.Fatalf("SetDailyVariable(%s): %v", amount, err)
		}
		v, err = r.DailyVariable(ctx, d)
		if err != nil {
			t.Fatalf("DailyVariable: %v", err)
		}
		if !v.Equal(decimal.RequireFromString(amount)) {
			t.Fatalf("day = %s, want %s", v, amount)
		}
	}
}

func TestSettings_DefaultsThenSaved(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	s, err := r.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if !s.WarningThresholdPct.Equal(decimal.NewFromInt(70)) || !s.CriticalThresholdPct.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("defaults = %+v", s)
	}

	s.AverageIncome = decimal.NewFromInt(4500)
	s.DailyAverageExpense = decimal.RequireFromString("42.5")
	if err := r.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	s.AverageIncome = decimal.NewFromInt(5000)
	if err := r.SaveSettings(ctx, s); err != nil {
		t.Fatalf("SaveSettings again: %v", err)
	}
	got, err := r.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings: %v", err)
	}
	if !got.AverageIncome.Equal(decimal.NewFromInt(5000)) || !got.DailyAverageExpense.Equal(decimal.RequireFromString("42.5")) {
		t.Fatalf("saved = %+v", got)
	}
}

func TestInstallmentGroups_Lifecycle(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	g := &models.InstallmentGroup{
		Description:           "notebook",
		TotalValue:            decimal.NewFromInt(3000),
		InstallmentValue:      decimal.NewFromInt(300),
		TotalInstallments:     10,
		RemainingInstallments: 10,
		StartDate:             day("2025-07-01"),
		IsSimulation:          true,
	}
	if err := r.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if g.ID == 0 {
		t.Fatal("CreateGroup did not assign an ID")
	}

	confirmed, err := r.InstallmentGroups(ctx, false)
	if err != nil {
		t.Fatalf("InstallmentGroups: %v", err)
	}
	if len(confirmed) != 0 {
		t.Fatalf("simulation leaked into confirmed groups: %+v", confirmed)
	}

	if err := r.ConfirmGroup(ctx, g.ID, "sig"); err != nil {
		t.Fatalf("ConfirmGroup: %v", err)
	}
	got, err := r.GetGroup(ctx, g.ID)
	if err != nil {
		t.Fatalf("GetGroup: %v", err)
	}
	if got.IsSimulation || got.Signature != "sig" || got.StartDate.Format("2006-01-02") != "2025-07-01" {
		t.Fatalf("confirmed group = %+v", got)
	}
	if !got.InstallmentValue.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("installment value = %s", got.InstallmentValue)
	}

	confirmed, err = r.InstallmentGroups(ctx, false)
	if err != nil {
		t.Fatalf("InstallmentGroups: %v", err)
	}
	if len(confirmed) != 1 {
		t.Fatalf("len(confirmed) = %d, want 1", len(confirmed))
	}

	if err := r.ConfirmGroup(ctx, g.ID, "other"); !errors.Is(err, models.ErrInconsistentState) {
		t.Fatalf("ConfirmGroup twice err = %v, want ErrInconsistentState", err)
	}
	if err := r.DeleteGroup(ctx, g.ID); !errors.Is(err, models.ErrInconsistentState) {
		t.Fatalf("DeleteGroup confirmed err = %v, want ErrInconsistentState", err)
	}
	if got, err := r.GetGroup(ctx, g.ID); err != nil || got.Signature != "sig" {
		t.Fatalf("confirmed group after refused writes = %+v, %v", got, err)
	}
	if err := r.ConfirmGroup(ctx, 999, ""); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("ConfirmGroup missing err = %v", err)
	}
	if err := r.DeleteGroup(ctx, 999); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("DeleteGroup missing err = %v", err)
	}
}

func TestDeleteGroup_Simulation(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	g := &models.InstallmentGroup{
		Description:           "tv",
		TotalValue:            decimal.NewFromInt(4200),
		InstallmentValue:      decimal.NewFromInt(420),
		TotalInstallments:     10,
		RemainingInstallments: 10,
		StartDate:             day("2025-07-01"),
		IsSimulation:          true,
	}
	if err := r.CreateGroup(ctx, g); err != nil {
		t.Fatalf("CreateGroup: %v", err)
	}
	if err := r.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}
	if _, err := r.GetGroup(ctx, g.ID); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("GetGroup after delete err = %v, want ErrNotFound", err)
	}
}
