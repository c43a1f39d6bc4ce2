package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FlowKind classifies a cash-flow entry
type FlowKind string

const (
	KindIncome      FlowKind = "income"
	KindFixed       FlowKind = "fixed"
	KindVariable    FlowKind = "variable"
	KindInstallment FlowKind = "installment"
)

// ParseFlowKind accepts the canonical names plus a few spoken aliases used by the chat commands
func ParseFlowKind(s string) (FlowKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "entrada", "receita":
		return KindIncome, nil
	case "fixed", "fixo", "saida", "saída":
		return KindFixed, nil
	case "variable", "variavel", "variável", "diario", "diário", "gasto":
		return KindVariable, nil
	case "installment", "parcela":
		return KindInstallment, nil
	}
	return "", fmt.Errorf("%w: unknown flow kind %q", ErrInvalidInput, s)
}

// IsOutflow reports whether entries of this kind reduce the balance
func (k FlowKind) IsOutflow() bool {
	return k != KindIncome
}

// Sign applies the kind's direction to an unsigned magnitude
func (k FlowKind) Sign(magnitude decimal.Decimal) decimal.Decimal {
	if k.IsOutflow() {
		return magnitude.Abs().Neg()
	}
	return magnitude.Abs()
}

// CashFlowEntry represents one dated movement in the ledger
type CashFlowEntry struct {
	ID                 int64           `json:"id"`
	Date               time.Time       `json:"date"`
	Amount             decimal.Decimal `json:"amount"` // positive = inflow, negative = outflow
	Kind               FlowKind        `json:"kind"`
	Description        string          `json:"description"`
	Category           string          `json:"category,omitempty"`
	InstallmentGroupID *int64          `json:"installment_group_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
}

// Magnitude returns the unsigned amount
func (e CashFlowEntry) Magnitude() decimal.Decimal {
	return e.Amount.Abs()
}

// DateOf truncates t to midnight in its own location
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether a and b fall on the same calendar day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
