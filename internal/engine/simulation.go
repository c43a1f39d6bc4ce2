package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// LoanInstallment is the amortized payment P*r*(1+r)^n / ((1+r)^n - 1), or P/n without interest
func LoanInstallment(principal, monthlyRatePct decimal.Decimal, term int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: principal must be positive", models.ErrInvalidInput)
	}
	if monthlyRatePct.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: rate must not be negative", models.ErrInvalidInput)
	}
	if term < 1 {
		return decimal.Zero, fmt.Errorf("%w: term must be at least one month", models.ErrInvalidInput)
	}
	n := decimal.NewFromInt(int64(term))
	if monthlyRatePct.IsZero() {
		return principal.Div(n).Round(2), nil
	}
	r := monthlyRatePct.Div(hundred)
	growth := one.Add(r).Pow(n)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(one)).Round(2), nil
}

// PurchaseInstallment splits a purchase into equal interest-free parts
func PurchaseInstallment(value decimal.Decimal, installments int) (decimal.Decimal, error) {
	if !value.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: value must be positive", models.ErrInvalidInput)
	}
	if installments < 1 {
		return decimal.Zero, fmt.Errorf("%w: installments must be at least one", models.ErrInvalidInput)
	}
	return value.Div(decimal.NewFromInt(int64(installments))).Round(2), nil
}

// DraftLoan builds an unconfirmed installment group for a loan
func DraftLoan(principal, monthlyRatePct decimal.Decimal, term int, start time.Time) (models.InstallmentGroup, error) {
	inst, err := LoanInstallment(principal, monthlyRatePct, term)
	if err != nil {
		return models.InstallmentGroup{}, err
	}
	return models.InstallmentGroup{
		Description:           "Loan " + utils.FormatBRL(principal),
		TotalValue:            principal,
		InstallmentValue:      inst,
		TotalInstallments:     term,
		RemainingInstallments: term,
		StartDate:             models.DateOf(start),
		IsSimulation:          true,
	}, nil
}

// DraftPurchase builds an unconfirmed installment group for a parceled purchase
func DraftPurchase(description string, value decimal.Decimal, installments int, start time.Time) (models.InstallmentGroup, error) {
	inst, err := PurchaseInstallment(value, installments)
	if err != nil {
		return models.InstallmentGroup{}, err
	}
	if description == "" {
		description = "Purchase " + utils.FormatBRL(value)
	}
	return models.InstallmentGroup{
		Description:           description,
		TotalValue:            value,
		InstallmentValue:      inst,
		TotalInstallments:     installments,
		RemainingInstallments: installments,
		StartDate:             models.DateOf(start),
		IsSimulation:          true,
	}, nil
}

// Impact previews how a draft group changes commitment and the projected balance
func (e *Engine) Impact(ctx context.Context, draft models.InstallmentGroup) (models.SimulationImpact, error) {
	current, err := e.CommitmentRatio(ctx)
	if err != nil {
		return models.SimulationImpact{}, err
	}
	strategy, err := e.NewTrailingAverageStrategy(ctx, draft)
	if err != nil {
		return models.SimulationImpact{}, err
	}
	months := draft.TotalInstallments
	if months > e.policy.MaxProjectionMonths {
		months = e.policy.MaxProjectionMonths
	}
	proj, err := e.ProjectWith(ctx, strategy, months)
	if err != nil {
		return models.SimulationImpact{}, err
	}
	after := current.FixedPlusInstallment.Add(draft.InstallmentValue)
	return models.SimulationImpact{
		MonthlyImpact:          draft.InstallmentValue,
		TotalPayable:           draft.InstallmentValue.Mul(decimal.NewFromInt(int64(draft.TotalInstallments))),
		CurrentCommitmentRatio: current.RatioPct,
		NewCommitmentRatio:     pct(after, current.AverageIncome),
		Projections:            proj.Points,
	}, nil
}

// MaxInstallment is the largest new monthly installment that keeps the month
// at or above the given traffic state.
func (e *Engine) MaxInstallment(ctx context.Context, keep models.TrafficState) (decimal.Decimal, error) {
	today := e.Today()
	month, err := e.MonthTotals(ctx, today.Year(), today.Month())
	if err != nil {
		return decimal.Zero, err
	}
	tr, err := e.TrailingAverages(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	if tr.Income.IsZero() {
		return decimal.Zero, nil
	}
	s, err := e.settings(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	var limit decimal.Decimal
	switch keep {
	case models.StateGreen:
		limit = decimal.Zero
	case models.StateYellow:
		limit = tr.Income.Mul(s.WarningThresholdPct).Div(hundred).Neg()
	case models.StateRed:
		limit = tr.Income.Mul(s.CriticalThresholdPct).Div(hundred).Neg()
	default:
		return decimal.Zero, fmt.Errorf("%w: unknown traffic state %q", models.ErrInvalidInput, keep)
	}
	return decimal.Max(decimal.Zero, month.Performance.Sub(limit)).Round(2), nil
}
