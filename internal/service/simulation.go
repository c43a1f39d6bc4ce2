package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/command"
	"github.com/Dan9191/cashflow-service/internal/engine"
	"github.com/Dan9191/cashflow-service/internal/ledger"
	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
	"github.com/shopspring/decimal"
)

// LoanRequest asks for a loan simulation. A nil rate uses the reference rate,
// a zero term the default term.
type LoanRequest struct {
	Principal decimal.Decimal  `json:"principal"`
	RatePct   *decimal.Decimal `json:"monthly_rate_pct,omitempty"`
	Term      int              `json:"term_months"`
	StartDate time.Time        `json:"start_date"`
}

// PurchaseRequest asks for an interest-free parceled purchase simulation
type PurchaseRequest struct {
	Description  string          `json:"description"`
	Value        decimal.Decimal `json:"value"`
	Installments int             `json:"installments"`
	StartDate    time.Time       `json:"start_date"`
}

// InstallmentCheck reports a stored group and whether its signature matches its terms
type InstallmentCheck struct {
	Group    models.InstallmentGroup          `json:"group"`
	Verified bool                             `json:"verified"`
	Schedule []models.InstallmentScheduleItem `json:"schedule"`
}

func (s *Service) groups() (ledger.InstallmentStore, error) {
	g, ok := s.store.(ledger.InstallmentStore)
	if !ok {
		return nil, fmt.Errorf("installment groups: %w", models.ErrUnsupported)
	}
	return g, nil
}

// DefaultLoanRate is the reference monthly rate, or the built-in default when unavailable
func (s *Service) DefaultLoanRate(ctx context.Context) decimal.Decimal {
	if s.rates == nil {
		return command.DefaultLoanRatePct
	}
	rate, err := s.rates.MonthlyRate(ctx)
	if err != nil {
		s.log.Warnf("Reference rate unavailable, using %s%%: %v", command.DefaultLoanRatePct, err)
		return command.DefaultLoanRatePct
	}
	return rate
}

// SimulateLoan stores a draft loan group and previews its impact
func (s *Service) SimulateLoan(ctx context.Context, req LoanRequest) models.Result[models.Simulation] {
	var ratePct decimal.Decimal
	if req.RatePct != nil {
		ratePct = *req.RatePct
	} else {
		ratePct = s.DefaultLoanRate(ctx)
	}
	if req.Term == 0 {
		req.Term = command.DefaultLoanTerm
	}
	draft, err := engine.DraftLoan(req.Principal, ratePct, req.Term, s.startDate(req.StartDate))
	if err != nil {
		return fail[models.Simulation](s, "simulate loan", err)
	}
	return s.simulate(ctx, "simulate loan", draft)
}

// SimulatePurchase stores a draft parceled purchase and previews its impact
func (s *Service) SimulatePurchase(ctx context.Context, req PurchaseRequest) models.Result[models.Simulation] {
	draft, err := engine.DraftPurchase(req.Description, req.Value, req.Installments, s.startDate(req.StartDate))
	if err != nil {
		return fail[models.Simulation](s, "simulate purchase", err)
	}
	return s.simulate(ctx, "simulate purchase", draft)
}

func (s *Service) startDate(t time.Time) time.Time {
	if t.IsZero() {
		return s.Today()
	}
	return t
}

func (s *Service) simulate(ctx context.Context, op string, draft models.InstallmentGroup) models.Result[models.Simulation] {
	store, err := s.groups()
	if err != nil {
		return fail[models.Simulation](s, op, err)
	}
	impact, err := s.engine.Impact(ctx, draft)
	if err != nil {
		return fail[models.Simulation](s, op, err)
	}
	if err := store.CreateGroup(ctx, &draft); err != nil {
		return fail[models.Simulation](s, op, fmt.Errorf("%w: %v", models.ErrDataUnavailable, err))
	}
	s.log.Infof("Simulation %d created: %s, %d x %s", draft.ID, draft.Description,
		draft.TotalInstallments, draft.InstallmentValue.StringFixed(2))
	return models.OK(models.Simulation{Group: draft, Impact: impact})
}

// ConfirmSimulation turns a draft group into a real obligation and signs its terms
func (s *Service) ConfirmSimulation(ctx context.Context, id int64) models.Result[models.InstallmentGroup] {
	store, err := s.groups()
	if err != nil {
		return fail[models.InstallmentGroup](s, "confirm simulation", err)
	}
	g, err := store.GetGroup(ctx, id)
	if err != nil {
		return fail[models.InstallmentGroup](s, "confirm simulation", storeErr(err))
	}
	if !g.IsSimulation {
		return fail[models.InstallmentGroup](s, "confirm simulation",
			fmt.Errorf("%w: installment group %d is already confirmed", models.ErrInconsistentState, id))
	}
	sig := utils.GenerateHMAC(*g, s.hmacSecret())
	if err := store.ConfirmGroup(ctx, id, sig); err != nil {
		return fail[models.InstallmentGroup](s, "confirm simulation", storeErr(err))
	}
	g.IsSimulation, g.Signature = false, sig
	s.cache.Invalidate(ctx)
	s.log.Infof("Simulation %d confirmed", id)
	return models.OK(*g)
}

// CancelSimulation deletes a draft group; confirmed groups cannot be cancelled
func (s *Service) CancelSimulation(ctx context.Context, id int64) models.Result[int64] {
	store, err := s.groups()
	if err != nil {
		return fail[int64](s, "cancel simulation", err)
	}
	g, err := store.GetGroup(ctx, id)
	if err != nil {
		return fail[int64](s, "cancel simulation", storeErr(err))
	}
	if !g.IsSimulation {
		return fail[int64](s, "cancel simulation",
			fmt.Errorf("%w: installment group %d is confirmed and cannot be cancelled", models.ErrInconsistentState, id))
	}
	if err := store.DeleteGroup(ctx, id); err != nil {
		return fail[int64](s, "cancel simulation", storeErr(err))
	}
	s.cache.Invalidate(ctx)
	s.log.Infof("Simulation %d cancelled", id)
	return models.OK(id)
}

// VerifyInstallment checks a confirmed group's signature against its stored terms
func (s *Service) VerifyInstallment(ctx context.Context, id int64) models.Result[InstallmentCheck] {
	store, err := s.groups()
	if err != nil {
		return fail[InstallmentCheck](s, "verify installment", err)
	}
	g, err := store.GetGroup(ctx, id)
	if err != nil {
		return fail[InstallmentCheck](s, "verify installment", storeErr(err))
	}
	ok := !g.IsSimulation && utils.VerifyHMAC(*g, s.hmacSecret())
	if !g.IsSimulation && !ok {
		s.log.Warnf("Installment group %d signature mismatch", id)
	}
	return models.OK(InstallmentCheck{Group: *g, Verified: ok, Schedule: g.Schedule()})
}

func (s *Service) hmacSecret() string {
	if s.config == nil {
		return ""
	}
	return s.config.HMACSecret
}

// storeErr keeps not-found and state errors as they are and marks everything else unavailable
func storeErr(err error) error {
	if errors.Is(err, models.ErrNotFound) || errors.Is(err, models.ErrInconsistentState) {
		return err
	}
	return fmt.Errorf("%w: %v", models.ErrDataUnavailable, err)
}
