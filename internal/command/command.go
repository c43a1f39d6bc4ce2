// Package command parses the short free-text commands typed in chat, such as
// "mercado 87", "recebi cliente 2500" or "simular emprestimo 10000 18 2".
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Type identifies what a command asks for
type Type string

const (
	TypeFlow               Type = "flow"
	TypeLoanSimulation     Type = "loan_simulation"
	TypePurchaseSimulation Type = "purchase_simulation"
)

// Loan defaults when the command omits them
const (
	DefaultLoanTerm = 24
)

// DefaultLoanRatePct is the monthly rate assumed when a loan command omits it
var DefaultLoanRatePct = decimal.RequireFromString("3.5")

// Command is a parsed chat command
type Command struct {
	Type         Type            `json:"type"`
	Kind         models.FlowKind `json:"kind,omitempty"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Term         int             `json:"term,omitempty"`
	RatePct      decimal.Decimal `json:"rate_pct"`
	Installments int             `json:"installments,omitempty"`
}

var fixedKeywords = []string{"aluguel", "luz", "agua", "água", "internet", "condominio", "condomínio", "rent"}

// ParseAmount accepts 87, 87.5, 87,50 and 1.234,56
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "r$")
	s = strings.TrimSuffix(s, "%")
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not an amount", models.ErrInvalidInput, s)
	}
	return d.Abs(), nil
}

func hasPrefix(words []string, prefix ...string) bool {
	if len(words) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if words[i] != p {
			return false
		}
	}
	return true
}

// Parse interprets one command line
func Parse(text string) (Command, error) {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(text)))
	if len(words) < 2 {
		return Command{}, fmt.Errorf("%w: expected a description and an amount", models.ErrInvalidInput)
	}

	switch {
	case hasPrefix(words, "simular", "emprestimo"), hasPrefix(words, "simular", "empréstimo"), hasPrefix(words, "simulate", "loan"):
		return parseLoan(words[2:])
	case hasPrefix(words, "simular", "compra"), hasPrefix(words, "simulate", "purchase"):
		return parsePurchase(words[2:])
	case words[0] == "recebi" || words[0] == "recebido" || words[0] == "received":
		if len(words) < 3 {
			return Command{}, fmt.Errorf("%w: expected \"%s <description> <amount>\"", models.ErrInvalidInput, words[0])
		}
		return flow(models.KindIncome, words[1:len(words)-1], words[len(words)-1])
	}

	for _, kw := range fixedKeywords {
		if strings.HasPrefix(words[0], kw) {
			return flow(models.KindFixed, words[:1], words[1])
		}
	}
	return flow(models.KindVariable, words[:len(words)-1], words[len(words)-1])
}

func flow(kind models.FlowKind, desc []string, amount string) (Command, error) {
	v, err := ParseAmount(amount)
	if err != nil {
		return Command{}, err
	}
	if v.IsZero() && kind != models.KindVariable {
		return Command{}, fmt.Errorf("%w: amount must be positive", models.ErrInvalidInput)
	}
	return Command{
		Type:        TypeFlow,
		Kind:        kind,
		Description: strings.Join(desc, " "),
		Amount:      v,
		RatePct:     decimal.Zero,
	}, nil
}

func parseLoan(args []string) (Command, error) {
	if len(args) < 1 {
		return Command{}, fmt.Errorf("%w: expected \"simular emprestimo <value> [term] [rate%%]\"", models.ErrInvalidInput)
	}
	value, err := ParseAmount(args[0])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Type: TypeLoanSimulation, Amount: value, Term: DefaultLoanTerm, RatePct: DefaultLoanRatePct}
	if len(args) > 1 {
		if cmd.Term, err = strconv.Atoi(args[1]); err != nil || cmd.Term < 1 {
			return Command{}, fmt.Errorf("%w: %q is not a term in months", models.ErrInvalidInput, args[1])
		}
	}
	if len(args) > 2 {
		if cmd.RatePct, err = ParseAmount(args[2]); err != nil {
			return Command{}, err
		}
	}
	return cmd, nil
}

func parsePurchase(args []string) (Command, error) {
	if len(args) < 2 {
		return Command{}, fmt.Errorf("%w: expected \"simular compra <description> <value> [installments]\"", models.ErrInvalidInput)
	}
	value, err := ParseAmount(args[1])
	if err != nil {
		return Command{}, err
	}
	cmd := Command{Type: TypePurchaseSimulation, Description: args[0], Amount: value, Installments: 1, RatePct: decimal.Zero}
	if len(args) > 2 {
		if cmd.Installments, err = strconv.Atoi(args[2]); err != nil || cmd.Installments < 1 {
			return Command{}, fmt.Errorf("%w: %q is not an installment count", models.ErrInvalidInput, args[2])
		}
	}
	return cmd, nil
}
