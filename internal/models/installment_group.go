package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// InstallmentGroup represents a multi-month obligation created by a loan or parceled purchase
type InstallmentGroup struct {
	ID                    int64           `json:"id"`
	Description           string          `json:"description"`
	TotalValue            decimal.Decimal `json:"total_value"`
	InstallmentValue      decimal.Decimal `json:"installment_value"`
	TotalInstallments     int             `json:"total_installments"`
	RemainingInstallments int             `json:"remaining_installments"`
	StartDate             time.Time       `json:"start_date"`
	IsSimulation          bool            `json:"is_simulation"`
	Signature             string          `json:"signature,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
}

// MonthsSince returns the month offset of (year, month) from the group's first installment
func (g InstallmentGroup) MonthsSince(year int, month time.Month) int {
	return (year-g.StartDate.Year())*12 + int(month) - int(g.StartDate.Month())
}

// DueIn reports whether the group contributes an installment to (year, month).
// A group whose remaining count was decremented out-of-band stops contributing
// to the months it no longer covers.
func (g InstallmentGroup) DueIn(year int, month time.Month) bool {
	passed := g.MonthsSince(year, month)
	if passed < 0 || passed >= g.TotalInstallments {
		return false
	}
	return g.RemainingInstallments > g.TotalInstallments-passed-1
}

// InstallmentScheduleItem is one month of an installment group's payment plan
type InstallmentScheduleItem struct {
	GroupID int64           `json:"group_id"`
	Number  int             `json:"number"`
	Year    int             `json:"year"`
	Month   time.Month      `json:"month"`
	Amount  decimal.Decimal `json:"amount"`
	Active  bool            `json:"active"`
}

// Schedule expands the group into its monthly payment plan
func (g InstallmentGroup) Schedule() []InstallmentScheduleItem {
	items := make([]InstallmentScheduleItem, 0, g.TotalInstallments)
	first := time.Date(g.StartDate.Year(), g.StartDate.Month(), 1, 0, 0, 0, 0, g.StartDate.Location())
	for i := 0; i < g.TotalInstallments; i++ {
		d := first.AddDate(0, i, 0)
		items = append(items, InstallmentScheduleItem{
			GroupID: g.ID,
			Number:  i + 1,
			Year:    d.Year(),
			Month:   d.Month(),
			Amount:  g.InstallmentValue,
			Active:  g.DueIn(d.Year(), d.Month()),
		})
	}
	return items
}
