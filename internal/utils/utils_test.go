package utils

import (
	"testing"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

func TestFormatBRL(t *testing.T) {
	tests := map[string]string{
		"1234.56":   "R$ 1.234,56",
		"0":         "R$ 0,00",
		"-5":        "-R$ 5,00",
		"1234567.8": "R$ 1.234.567,80",
		"999.999":   "R$ 1.000,00",
	}
	for in, want := range tests {
		if got := FormatBRL(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatBRL(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestParseBRL(t *testing.T) {
	tests := map[string]string{
		"R$ 1.234,56": "1234.56",
		"-R$ 200,00":  "-200",
		"R$ -15,50":   "-15.5",
		"50":          "50",
		"12,5":        "12.5",
		"":            "0",
		"abc":         "0",
	}
	for in, want := range tests {
		if got := ParseBRL(in); !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseBRL(%q) = %s, want %s", in, got, want)
		}
	}
	round := decimal.RequireFromString("98765.43")
	if got := ParseBRL(FormatBRL(round)); !got.Equal(round) {
		t.Fatalf("round trip = %s", got)
	}
}

func TestGenerateHMAC_DetectsTampering(t *testing.T) {
	g := models.InstallmentGroup{
		ID:                4,
		TotalValue:        decimal.NewFromInt(10000),
		InstallmentValue:  decimal.RequireFromString("667.02"),
		TotalInstallments: 18,
		StartDate:         time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
	}
	g.Signature = GenerateHMAC(g, "secret")
	if len(g.Signature) != 64 {
		t.Fatalf("signature length = %d", len(g.Signature))
	}
	if !VerifyHMAC(g, "secret") {
		t.Fatal("fresh signature does not verify")
	}
	if VerifyHMAC(g, "other") {
		t.Fatal("signature verified with the wrong secret")
	}
	g.InstallmentValue = decimal.RequireFromString("1")
	if VerifyHMAC(g, "secret") {
		t.Fatal("tampered group still verifies")
	}
}
