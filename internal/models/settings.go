package models

import "github.com/shopspring/decimal"

// UserSettings holds the user's planning parameters. The engine only reads them.
type UserSettings struct {
	AverageIncome        decimal.Decimal `json:"average_income"`
	EmergencyReserve     decimal.Decimal `json:"emergency_reserve"`
	WarningThresholdPct  decimal.Decimal `json:"warning_threshold_pct"`
	CriticalThresholdPct decimal.Decimal `json:"critical_threshold_pct"`
	DailyAverageExpense  decimal.Decimal `json:"daily_average_expense"`
}

// DefaultSettings returns warning=70%, critical=90% and zero money fields
func DefaultSettings() UserSettings {
	return UserSettings{
		AverageIncome:        decimal.Zero,
		EmergencyReserve:     decimal.Zero,
		WarningThresholdPct:  decimal.NewFromInt(70),
		CriticalThresholdPct: decimal.NewFromInt(90),
		DailyAverageExpense:  decimal.Zero,
	}
}
