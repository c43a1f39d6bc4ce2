package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// MonthlyTotals represents the aggregated cash flow of one calendar month
type MonthlyTotals struct {
	Year         int             `json:"year"`
	Month        time.Month      `json:"month"`
	Income       decimal.Decimal `json:"income"`
	Fixed        decimal.Decimal `json:"fixed"`
	Variable     decimal.Decimal `json:"variable"`
	Installments decimal.Decimal `json:"installments"`
	Performance  decimal.Decimal `json:"performance"`
}

// TotalOutflow is fixed + variable + installments
func (m MonthlyTotals) TotalOutflow() decimal.Decimal {
	return m.Fixed.Add(m.Variable).Add(m.Installments)
}

// DayTotals represents one day of the weekly breakdown
type DayTotals struct {
	Date     time.Time       `json:"date"`
	Weekday  string          `json:"weekday"`
	Income   decimal.Decimal `json:"income"`
	Fixed    decimal.Decimal `json:"fixed"`
	Variable decimal.Decimal `json:"variable"`
	Planned  decimal.Decimal `json:"planned"`
}

// WeekTotals represents a Monday-to-Sunday window and its per-day breakdown
type WeekTotals struct {
	Start       time.Time       `json:"start"`
	End         time.Time       `json:"end"`
	Days        []DayTotals     `json:"days"`
	Income      decimal.Decimal `json:"income"`
	Fixed       decimal.Decimal `json:"fixed"`
	Variable    decimal.Decimal `json:"variable"`
	Planned     decimal.Decimal `json:"planned"`
	Performance decimal.Decimal `json:"performance"`
	// TopExpenses are the largest variable spends of the window, biggest first
	TopExpenses []CashFlowEntry `json:"top_expenses"`
}

// TrafficState is the three-state health classification
type TrafficState string

const (
	StateGreen  TrafficState = "green"
	StateYellow TrafficState = "yellow"
	StateRed    TrafficState = "red"
)

// TrafficLight is the outcome of a status strategy
type TrafficLight struct {
	State   TrafficState    `json:"state"`
	Label   string          `json:"label"`
	Message string          `json:"message,omitempty"`
	Value   decimal.Decimal `json:"value"`
}

// CommitmentRatio represents fixed+installment obligations against trailing average income
type CommitmentRatio struct {
	RatioPct             decimal.Decimal `json:"ratio_pct"`
	FixedPlusInstallment decimal.Decimal `json:"fixed_plus_installments"`
	AverageIncome        decimal.Decimal `json:"average_income"`
}

// ProjectionPoint represents the projected state of one future month
type ProjectionPoint struct {
	Year                 int             `json:"year"`
	Month                time.Month      `json:"month"`
	MonthName            string          `json:"month_name"`
	IncomeProjected      decimal.Decimal `json:"income_projected"`
	OutflowProjected     decimal.Decimal `json:"outflow_projected"`
	PerformanceProjected decimal.Decimal `json:"performance_projected"`
	BalanceStart         decimal.Decimal `json:"balance_start"`
	BalanceEnd           decimal.Decimal `json:"balance_end"`
	IsNegative           bool            `json:"is_negative"`
}

// ProspectiveTotals are month totals pre-filled by the user for a future month
type ProspectiveTotals struct {
	Income   decimal.Decimal `json:"income"`
	Outflow  decimal.Decimal `json:"outflow"`
	Variable decimal.Decimal `json:"variable"`
}

// Priority ranks alerts
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Alert kinds
const (
	AlertNegativePerformance = "negative_performance"
	AlertDailyLimitExceeded  = "daily_limit_exceeded"
	AlertDailyLimitNear      = "daily_limit_near"
	AlertNegativeBalance     = "negative_balance"
	AlertLowBalance          = "low_balance"
	AlertProjectedNegative   = "projected_negative_balance"
)

// Alert represents a fully formed, human readable warning
type Alert struct {
	Kind     string   `json:"kind"`
	Priority Priority `json:"priority"`
	Title    string   `json:"title"`
	Message  string   `json:"message"`
}

// StatusReport is the compute_status payload
type StatusReport struct {
	Date              time.Time       `json:"date"`
	Balance           decimal.Decimal `json:"balance"`
	TodaySpend        decimal.Decimal `json:"today_spend"`
	MonthIncome       decimal.Decimal `json:"month_income"`
	MonthOutflow      decimal.Decimal `json:"month_outflow"`
	MonthTotalOutflow decimal.Decimal `json:"month_total_outflow"`
	Performance       decimal.Decimal `json:"performance"`
	DailyLimit        decimal.Decimal `json:"daily_limit"`
	TrafficState      TrafficState    `json:"traffic_state"`
	StatusLabel       string          `json:"status_label"`
	StatusMessage     string          `json:"status_message,omitempty"`
	Strategy          string          `json:"strategy"`
}

// Variation compares one metric between two months
type Variation struct {
	Current  decimal.Decimal `json:"current"`
	Previous decimal.Decimal `json:"previous"`
	Delta    decimal.Decimal `json:"delta"`
	Percent  decimal.Decimal `json:"percent"`
}

// MonthComparison is the metric-by-metric comparison of two months
type MonthComparison struct {
	Performance Variation `json:"performance"`
	Income      Variation `json:"income"`
	Fixed       Variation `json:"fixed"`
	Variable    Variation `json:"variable"`
}

// MonthReport is the compute_month_report payload
type MonthReport struct {
	Current    MonthlyTotals   `json:"current_month_totals"`
	Previous   MonthlyTotals   `json:"previous_month_totals"`
	Comparison MonthComparison `json:"comparison"`
	Insights   []string        `json:"insight_messages"`
}

// WeekReport is the compute_week_report payload
type WeekReport struct {
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	TopExpenses     []CashFlowEntry `json:"top_5_expenses"`
	PlannedTotal    decimal.Decimal `json:"planned_total"`
	ActualTotal     decimal.Decimal `json:"actual_total"`
	PlannedVsActual decimal.Decimal `json:"planned_vs_actual_savings"`
	WeekPerformance decimal.Decimal `json:"week_performance"`
	PerDayBreakdown []DayTotals     `json:"per_day_breakdown"`
}

// ProjectionReport is the compute_projection payload
type ProjectionReport struct {
	CurrentBalance decimal.Decimal   `json:"current_balance"`
	Strategy       string            `json:"strategy"`
	Months         int               `json:"months"`
	Points         []ProjectionPoint `json:"projection_points"`
	RiskAlerts     []Alert           `json:"risk_alerts"`
}

// Registration is the register_flow payload
type Registration struct {
	Entry      CashFlowEntry   `json:"entry"`
	NewBalance decimal.Decimal `json:"new_balance"`
	Action     string          `json:"action_taken"`
	DayTotal   decimal.Decimal `json:"day_total,omitempty"`
	Previous   decimal.Decimal `json:"previous_day_total,omitempty"`
}

// Registration actions
const (
	ActionReplaced = "replaced"
	ActionAdded    = "added"
	ActionRecorded = "recorded"
)

// SweepResult reports the end-of-day reconciliation of one day
type SweepResult struct {
	Date       time.Time       `json:"date"`
	Zeroed     bool            `json:"zeroed"`
	Value      decimal.Decimal `json:"value"`
	Prescribed decimal.Decimal `json:"prescribed"`
}

// SimulationImpact previews how a draft group changes the user's position
type SimulationImpact struct {
	MonthlyImpact          decimal.Decimal   `json:"monthly_impact"`
	TotalPayable           decimal.Decimal   `json:"total_payable"`
	CurrentCommitmentRatio decimal.Decimal   `json:"current_commitment_ratio"`
	NewCommitmentRatio     decimal.Decimal   `json:"new_commitment_ratio"`
	Projections            []ProjectionPoint `json:"projections"`
}

// Simulation is a draft installment group plus its impact preview
type Simulation struct {
	Group  InstallmentGroup `json:"group"`
	Impact SimulationImpact `json:"impact"`
}

// Dashboard bundles the figures shown on the overview screen
type Dashboard struct {
	Status             StatusReport       `json:"status"`
	Month              MonthlyTotals      `json:"month"`
	TrafficLight       TrafficLight       `json:"traffic_light"`
	Commitment         CommitmentRatio    `json:"commitment"`
	Projection         []ProjectionPoint  `json:"projection"`
	ActiveInstallments []InstallmentGroup `json:"active_installments"`
	Settings           UserSettings       `json:"settings"`
}

// Result is the structured envelope returned across the computation boundary
type Result[T any] struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    T      `json:"data,omitempty"`
	// Err keeps the wrapped sentinel for adapters that map it to a status code
	Err error `json:"-"`
}

// OK wraps a successful payload
func OK[T any](data T) Result[T] {
	return Result[T]{Success: true, Data: data}
}

// Fail wraps an error
func Fail[T any](err error) Result[T] {
	return Result[T]{Success: false, Error: err.Error(), Err: err}
}
