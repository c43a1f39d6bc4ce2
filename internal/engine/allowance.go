package engine

import (
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Untouched reports whether a day's variable total still equals the placeholder
func Untouched(current decimal.Decimal, p Policy) bool {
	return current.Sub(p.PrescribedDaily).Abs().LessThan(p.Epsilon)
}

// ApplyRegistration returns the day's new variable total after registering amount.
// The first real registration replaces the placeholder, later ones accumulate.
func ApplyRegistration(current, amount decimal.Decimal, p Policy) (decimal.Decimal, string) {
	if Untouched(current, p) {
		return amount, models.ActionReplaced
	}
	return current.Add(amount), models.ActionAdded
}

// ShouldSweep reports whether the end-of-day sweep zeroes a day.
// Only a day still holding the placeholder is zeroed; an explicit 0 stays.
func ShouldSweep(current decimal.Decimal, p Policy) bool {
	return Untouched(current, p)
}

// TodaySpend is the real spend behind a day total; the placeholder is a plan, not spend
func TodaySpend(dayValue decimal.Decimal, untouched bool) decimal.Decimal {
	if untouched {
		return decimal.Zero
	}
	return dayValue
}

// SuggestedLimit spreads the month's remaining performance over the days left,
// today included.
func SuggestedLimit(untouched bool, performance decimal.Decimal, today time.Time, p Policy) decimal.Decimal {
	if untouched {
		return p.PrescribedDaily
	}
	remaining := daysIn(today.Year(), today.Month()) - today.Day() + 1
	if !performance.IsPositive() || remaining <= 0 {
		return decimal.Zero
	}
	return performance.Div(decimal.NewFromInt(int64(remaining))).Round(2)
}
