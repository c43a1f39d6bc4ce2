package command

import (
	"errors"
	"testing"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

func TestParse_Flows(t *testing.T) {
	tests := []struct {
		in     string
		kind   models.FlowKind
		desc   string
		amount string
	}{
		{"mercado 87", models.KindVariable, "mercado", "87"},
		{"Padaria da esquina 12,50", models.KindVariable, "padaria da esquina", "12.5"},
		{"recebi cliente acme 2500", models.KindIncome, "cliente acme", "2500"},
		{"aluguel 1.200,00", models.KindFixed, "aluguel", "1200"},
		{"água 95.3", models.KindFixed, "água", "95.3"},
		{"uber -23", models.KindVariable, "uber", "23"},
	}
	for _, tt := range tests {
		cmd, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if cmd.Type != TypeFlow || cmd.Kind != tt.kind || cmd.Description != tt.desc {
			t.Errorf("Parse(%q) = %+v", tt.in, cmd)
		}
		if !cmd.Amount.Equal(decimal.RequireFromString(tt.amount)) {
			t.Errorf("Parse(%q) amount = %s, want %s", tt.in, cmd.Amount, tt.amount)
		}
	}
}

func TestParse_LoanSimulation(t *testing.T) {
	cmd, err := Parse("simular emprestimo 10000 18 2")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypeLoanSimulation || cmd.Term != 18 || !cmd.RatePct.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("cmd = %+v", cmd)
	}

	cmd, err = Parse("simular empréstimo 5000")
	if err != nil {
		t.Fatalf("Parse defaults: %v", err)
	}
	if cmd.Term != DefaultLoanTerm || !cmd.RatePct.Equal(DefaultLoanRatePct) || !cmd.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("defaults = %+v", cmd)
	}
}

func TestParse_PurchaseSimulation(t *testing.T) {
	cmd, err := Parse("simular compra notebook 4200 10")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cmd.Type != TypePurchaseSimulation || cmd.Description != "notebook" || cmd.Installments != 10 {
		t.Fatalf("cmd = %+v", cmd)
	}
	cmd, err = Parse("simular compra geladeira 3000")
	if err != nil || cmd.Installments != 1 {
		t.Fatalf("single installment = %+v, %v", cmd, err)
	}
}

func TestParse_Rejects(t *testing.T) {
	for _, in := range []string{"", "mercado", "mercado abc", "recebi 100", "simular compra tv", "simular emprestimo 1000 zero", "aluguel 0"} {
		if _, err := Parse(in); !errors.Is(err, models.ErrInvalidInput) {
			t.Errorf("Parse(%q) err = %v, want ErrInvalidInput", in, err)
		}
	}
}
