package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Dan9191/cashflow-service/internal/command"
	"github.com/Dan9191/cashflow-service/internal/engine"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// FlowRequest is a new cash-flow registration. Amount is unsigned; the kind gives the direction.
type FlowRequest struct {
	Kind        models.FlowKind `json:"kind"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    string          `json:"category,omitempty"`
	Date        time.Time       `json:"date"`
}

func (r FlowRequest) validate() error {
	switch r.Kind {
	case models.KindIncome, models.KindFixed, models.KindVariable:
	case models.KindInstallment:
		return fmt.Errorf("%w: installments are created by confirming a simulation", models.ErrInvalidInput)
	default:
		return fmt.Errorf("%w: unknown flow kind %q", models.ErrInvalidInput, r.Kind)
	}
	if r.Amount.IsNegative() {
		return fmt.Errorf("%w: amount must not be negative", models.ErrInvalidInput)
	}
	if r.Amount.IsZero() && r.Kind != models.KindVariable {
		return fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}
	return nil
}

// RegisterFlow records a movement. Variable spending also updates the day's
// total under the day lock: the first registration replaces the placeholder,
// later ones accumulate.
func (s *Service) RegisterFlow(ctx context.Context, req FlowRequest) models.Result[models.Registration] {
	if err := req.validate(); err != nil {
		return fail[models.Registration](s, "register flow", err)
	}
	day := s.Today()
	if !req.Date.IsZero() {
		day = time.Date(req.Date.Year(), req.Date.Month(), req.Date.Day(), 0, 0, 0, 0, day.Location())
	}
	req.Description = strings.TrimSpace(req.Description)
	if req.Category == "" {
		req.Category = s.categories.Categorize(req.Description)
	}

	unlock, err := s.locker.TryLock(ctx, day)
	if err != nil {
		return fail[models.Registration](s, "register flow", err)
	}
	defer unlock()

	reg := models.Registration{Action: models.ActionRecorded}
	if req.Kind == models.KindVariable {
		current, err := s.store.DailyVariable(ctx, day)
		if err != nil {
			return fail[models.Registration](s, "register flow", fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err))
		}
		total, action := engine.ApplyRegistration(current, req.Amount, s.engine.Policy())
		if err := s.store.SetDailyVariable(ctx, day, total); err != nil {
			return fail[models.Registration](s, "register flow", fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err))
		}
		reg.Action, reg.DayTotal, reg.Previous = action, total, current
	}

	entry, err := s.store.AppendEntry(ctx, models.CashFlowEntry{
		Date:        day,
		Amount:      req.Kind.Sign(req.Amount),
		Kind:        req.Kind,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		return fail[models.Registration](s, "register flow", fmt.Errorf("%w: append entry: %v", models.ErrDataUnavailable, err))
	}
	reg.Entry = entry
	s.cache.Invalidate(ctx)

	balance, err := s.engine.CurrentBalance(ctx)
	if err != nil {
		return fail[models.Registration](s, "register flow", err)
	}
	reg.NewBalance = balance

	s.log.Infof("Registered %s %s on %s (%s)", req.Kind, req.Amount.StringFixed(2), day.Format("2006-01-02"), reg.Action)
	return models.OK(reg)
}

// RegisterBulk registers each request in order and stops at the first failure
func (s *Service) RegisterBulk(ctx context.Context, reqs []FlowRequest) models.Result[[]models.Registration] {
	out := make([]models.Registration, 0, len(reqs))
	for i, req := range reqs {
		res := s.RegisterFlow(ctx, req)
		if !res.Success {
			return fail[[]models.Registration](s, "register bulk", fmt.Errorf("item %d: %w", i, res.Err))
		}
		out = append(out, res.Data)
	}
	return models.OK(out)
}

// SweepDay zeroes a day whose variable total still holds the placeholder.
// A day the user explicitly set, including to zero, is left alone.
func (s *Service) SweepDay(ctx context.Context, day time.Time) models.Result[models.SweepResult] {
	day = models.DateOf(day)
	p := s.engine.Policy()

	unlock, err := s.locker.TryLock(ctx, day)
	if err != nil {
		return fail[models.SweepResult](s, "sweep day", err)
	}
	defer unlock()

	current, err := s.store.DailyVariable(ctx, day)
	if err != nil {
		return fail[models.SweepResult](s, "sweep day", fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err))
	}
	res := models.SweepResult{Date: day, Value: current, Prescribed: p.PrescribedDaily}
	if !engine.ShouldSweep(current, p) {
		s.log.Infof("Sweep of %s skipped: day total is %s", day.Format("2006-01-02"), current.StringFixed(2))
		return models.OK(res)
	}
	if err := s.store.SetDailyVariable(ctx, day, decimal.Zero); err != nil {
		return fail[models.SweepResult](s, "sweep day", fmt.Errorf("%w: daily total: %v", models.ErrDataUnavailable, err))
	}
	s.cache.Invalidate(ctx)
	res.Zeroed, res.Value = true, decimal.Zero
	s.log.Infof("Sweep of %s zeroed the untouched placeholder", day.Format("2006-01-02"))
	return models.OK(res)
}

// SweepYesterday is the daily reconciliation job
func (s *Service) SweepYesterday(ctx context.Context) models.Result[models.SweepResult] {
	return s.SweepDay(ctx, s.Today().AddDate(0, 0, -1))
}

// QuickResult is what a chat command produced; exactly one field is set
type QuickResult struct {
	Command      command.Command      `json:"command"`
	Registration *models.Registration `json:"registration,omitempty"`
	Simulation   *models.Simulation   `json:"simulation,omitempty"`
}

// QuickCommand parses a short free-text command and runs it
func (s *Service) QuickCommand(ctx context.Context, text string) models.Result[QuickResult] {
	cmd, err := command.Parse(text)
	if err != nil {
		return fail[QuickResult](s, "quick command", err)
	}
	out := QuickResult{Command: cmd}

	switch cmd.Type {
	case command.TypeFlow:
		res := s.RegisterFlow(ctx, FlowRequest{Kind: cmd.Kind, Amount: cmd.Amount, Description: cmd.Description})
		if !res.Success {
			return models.Fail[QuickResult](res.Err)
		}
		out.Registration = &res.Data
	case command.TypeLoanSimulation:
		rate := cmd.RatePct
		res := s.SimulateLoan(ctx, LoanRequest{Principal: cmd.Amount, RatePct: &rate, Term: cmd.Term})
		if !res.Success {
			return models.Fail[QuickResult](res.Err)
		}
		out.Simulation = &res.Data
	case command.TypePurchaseSimulation:
		res := s.SimulatePurchase(ctx, PurchaseRequest{Description: cmd.Description, Value: cmd.Amount, Installments: cmd.Installments})
		if !res.Success {
			return models.Fail[QuickResult](res.Err)
		}
		out.Simulation = &res.Data
	default:
		return fail[QuickResult](s, "quick command", fmt.Errorf("%w: unknown command type %q", models.ErrInvalidInput, cmd.Type))
	}
	return models.OK(out)
}
