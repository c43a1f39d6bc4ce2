package engine

import (
	"context"
	"fmt"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/Dan9191/cashflow-service/internal/utils"
)

// EvaluateAlerts reads the current status and returns every alert that fires
func (e *Engine) EvaluateAlerts(ctx context.Context) ([]models.Alert, error) {
	st, err := e.Status(ctx, MonthPerformanceStrategy{CriticalFallback: e.policy.CriticalFallback})
	if err != nil {
		return nil, err
	}
	return AlertsFor(st, e.policy), nil
}

// AlertsFor evaluates each rule independently; rules never suppress each other
// except the two daily-limit levels.
func AlertsFor(st models.StatusReport, p Policy) []models.Alert {
	alerts := make([]models.Alert, 0, 3)

	if st.Performance.IsNegative() {
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertNegativePerformance,
			Priority: models.PriorityHigh,
			Title:    "Negative performance",
			Message:  fmt.Sprintf("This month's performance is %s. Review your expenses.", utils.FormatBRL(st.Performance)),
		})
	}

	if st.DailyLimit.IsPositive() {
		ratio := st.TodaySpend.Div(st.DailyLimit).Mul(hundred)
		switch {
		case ratio.GreaterThanOrEqual(hundred):
			alerts = append(alerts, models.Alert{
				Kind:     models.AlertDailyLimitExceeded,
				Priority: models.PriorityHigh,
				Title:    "Daily limit exceeded",
				Message: fmt.Sprintf("You spent %s today, over the %s limit.",
					utils.FormatBRL(st.TodaySpend), utils.FormatBRL(st.DailyLimit)),
			})
		case ratio.GreaterThanOrEqual(p.NearLimitPct):
			alerts = append(alerts, models.Alert{
				Kind:     models.AlertDailyLimitNear,
				Priority: models.PriorityMedium,
				Title:    "Approaching daily limit",
				Message: fmt.Sprintf("You already used %s%% of today's %s limit.",
					ratio.Round(0).String(), utils.FormatBRL(st.DailyLimit)),
			})
		}
	}

	switch {
	case st.Balance.IsNegative():
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertNegativeBalance,
			Priority: models.PriorityHigh,
			Title:    "Negative balance",
			Message:  fmt.Sprintf("Your balance is %s. Avoid new spending.", utils.FormatBRL(st.Balance)),
		})
	case st.Balance.LessThan(p.LowBalance):
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertLowBalance,
			Priority: models.PriorityMedium,
			Title:    "Low balance",
			Message:  fmt.Sprintf("Your balance is %s, below %s.", utils.FormatBRL(st.Balance), utils.FormatBRL(p.LowBalance)),
		})
	}

	// savings-goal progress has no subsystem behind it yet
	return alerts
}

// ProjectionAlerts raises one alert per month whose projected balance is negative
func ProjectionAlerts(points []models.ProjectionPoint, p Policy) []models.Alert {
	var alerts []models.Alert
	for _, pt := range points {
		if !pt.IsNegative {
			continue
		}
		priority := models.PriorityMedium
		if pt.BalanceEnd.LessThan(p.HighRiskBalance) {
			priority = models.PriorityHigh
		}
		alerts = append(alerts, models.Alert{
			Kind:     models.AlertProjectedNegative,
			Priority: priority,
			Title:    "Projected negative balance",
			Message: fmt.Sprintf("Projection indicates a negative balance in %s/%d: %s",
				pt.MonthName, pt.Year, utils.FormatBRL(pt.BalanceEnd)),
		})
	}
	return alerts
}
