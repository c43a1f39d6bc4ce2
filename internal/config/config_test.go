package config

import (
	"testing"
	"time"
)

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LEDGER_BACKEND", "memory")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.PrescribedDaily.String() != "50" {
		t.Errorf("PrescribedDaily = %s, want 50", cfg.PrescribedDaily)
	}
	if cfg.CriticalFallback.String() != "-1000" {
		t.Errorf("CriticalFallback = %s, want -1000", cfg.CriticalFallback)
	}
	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.RateMarginPct.String() != "5" || cfg.RateTTL != 12*time.Hour {
		t.Errorf("rate margin = %s, ttl = %v, want 5 and 12h", cfg.RateMarginPct, cfg.RateTTL)
	}
	if cfg.MailEnabled() {
		t.Error("MailEnabled() = true without SMTP settings")
	}
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown backend", map[string]string{"LEDGER_BACKEND": "excel"}},
		{"unknown driver", map[string]string{"LEDGER_BACKEND": "sql", "DB_DRIVER": "mysql"}},
		{"sheets without id", map[string]string{"LEDGER_BACKEND": "sheets", "SHEETS_SPREADSHEET_ID": ""}},
		{"bad prescribed", map[string]string{"LEDGER_BACKEND": "memory", "PRESCRIBED_DAILY": "fifty"}},
		{"negative prescribed", map[string]string{"LEDGER_BACKEND": "memory", "PRESCRIBED_DAILY": "-1"}},
		{"bad ttl", map[string]string{"LEDGER_BACKEND": "memory", "CACHE_TTL": "soon"}},
		{"negative rate margin", map[string]string{"LEDGER_BACKEND": "memory", "RATE_MARGIN": "-2"}},
		{"bad rate ttl", map[string]string{"LEDGER_BACKEND": "memory", "RATE_TTL": "daily"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("ENV", "production")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := NewConfig(); err == nil {
				t.Fatal("NewConfig() error = nil, want error")
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := &Config{Timezone: "UTC"}
	loc, err := cfg.Location()
	if err != nil {
		t.Fatalf("Location() error: %v", err)
	}
	if loc != time.UTC {
		t.Errorf("Location() = %v, want UTC", loc)
	}
	cfg.Timezone = "Mars/Olympus"
	if _, err := cfg.Location(); err == nil {
		t.Error("Location() accepted an unknown zone")
	}
}

func TestNewConfig_RateSettings(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("LEDGER_BACKEND", "memory")
	t.Setenv("CBR_URL", "")
	t.Setenv("RATE_MARGIN", "0")

	cfg, err := NewConfig()
	if err != nil {
		t.Fatalf("NewConfig() error: %v", err)
	}
	if cfg.CBRURL != "" {
		t.Errorf("CBRURL = %q, want empty", cfg.CBRURL)
	}
	if !cfg.RateMarginPct.IsZero() {
		t.Errorf("RateMarginPct = %s, want 0", cfg.RateMarginPct)
	}
}
