package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Ledger backends
const (
	BackendSQL    = "sql"
	BackendSheets = "sheets"
	BackendMemory = "memory"
)

// Config holds application configuration
type Config struct {
	Env      string
	Port     string
	LogLevel string
	Timezone string

	LedgerBackend string
	DBDriver      string
	DBConn        string

	JWTSecret         string
	AdminUser         string
	AdminPasswordHash string
	HMACSecret        string

	// Reference rate service; an empty CBRURL disables it and loans default to 3.5% a month
	CBRURL        string
	RateMarginPct decimal.Decimal
	RateTTL       time.Duration

	RedisURL string
	CacheTTL time.Duration

	SheetsSpreadsheetID   string
	SheetsCredentialsPath string
	SheetsName            string
	SheetsYear            int

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string
	NotifyEmail  string

	PrescribedDaily  decimal.Decimal
	CriticalFallback decimal.Decimal
	LowBalance       decimal.Decimal
	StatusStrategy   string
	CategoriesFile   string
}

// NewConfig loads configuration from environment variables. Outside
// production a .env file in the working directory is read first.
func NewConfig() (*Config, error) {
	if getEnv("ENV", "development") != "production" {
		_ = godotenv.Load()
	}

	cfg := &Config{
		Env:      getEnv("ENV", "development"),
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "INFO"),
		Timezone: getEnv("TIMEZONE", "America/Sao_Paulo"),

		LedgerBackend: getEnv("LEDGER_BACKEND", BackendSQL),
		DBDriver:      getEnv("DB_DRIVER", "postgres"),
		DBConn:        getEnv("DB_CONN", "host=localhost port=5436 user=test password=test dbname=cashflow sslmode=disable"),

		JWTSecret:         getEnv("JWT_SECRET", "secret"),
		AdminUser:         getEnv("ADMIN_USER", "admin"),
		AdminPasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
		HMACSecret:        getEnv("HMAC_SECRET", "a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6a1b2c3d4e5f6a7b8c9d0e1f2a3b4c5d6"),

		CBRURL: getEnv("CBR_URL", "https://www.cbr.ru/DailyInfoWebServ/DailyInfo.asmx"),

		RedisURL: getEnv("REDIS_URL", ""),

		SheetsSpreadsheetID:   getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsPath: getEnv("SHEETS_CREDENTIALS_PATH", "credentials.json"),
		SheetsName:            getEnv("SHEETS_NAME", "Controle"),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", ""),
		NotifyEmail:  getEnv("NOTIFY_EMAIL", ""),

		StatusStrategy: getEnv("STATUS_STRATEGY", ""),
		CategoriesFile: getEnv("CATEGORIES_FILE", ""),
	}

	var err error
	if cfg.CacheTTL, err = time.ParseDuration(getEnv("CACHE_TTL", "5m")); err != nil {
		return nil, fmt.Errorf("invalid CACHE_TTL: %w", err)
	}
	if cfg.SheetsYear, err = strconv.Atoi(getEnv("SHEETS_YEAR", strconv.Itoa(time.Now().Year()))); err != nil {
		return nil, fmt.Errorf("invalid SHEETS_YEAR: %w", err)
	}
	if cfg.RateTTL, err = time.ParseDuration(getEnv("RATE_TTL", "12h")); err != nil {
		return nil, fmt.Errorf("invalid RATE_TTL: %w", err)
	}
	if cfg.RateMarginPct, err = getDecimal("RATE_MARGIN", "5"); err != nil {
		return nil, err
	}
	if cfg.PrescribedDaily, err = getDecimal("PRESCRIBED_DAILY", "50"); err != nil {
		return nil, err
	}
	if cfg.CriticalFallback, err = getDecimal("CRITICAL_FALLBACK", "-1000"); err != nil {
		return nil, err
	}
	if cfg.LowBalance, err = getDecimal("LOW_BALANCE", "500"); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.LedgerBackend {
	case BackendSQL:
		if c.DBConn == "" {
			return fmt.Errorf("DB_CONN is required")
		}
		if c.DBDriver != "postgres" && c.DBDriver != "sqlite" {
			return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DBDriver)
		}
	case BackendSheets:
		if c.SheetsSpreadsheetID == "" {
			return fmt.Errorf("SHEETS_SPREADSHEET_ID is required")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("LEDGER_BACKEND must be sql, sheets or memory, got %q", c.LedgerBackend)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.HMACSecret == "" {
		return fmt.Errorf("HMAC_SECRET is required")
	}
	if c.RateMarginPct.IsNegative() {
		return fmt.Errorf("RATE_MARGIN must not be negative")
	}
	if c.PrescribedDaily.IsNegative() {
		return fmt.Errorf("PRESCRIBED_DAILY must not be negative")
	}
	return nil
}

// Location resolves TIMEZONE; every "today" in the service is taken in it
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// MailEnabled reports whether SMTP delivery is configured
func (c *Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.SenderEmail != "" && c.NotifyEmail != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getDecimal(key, defaultVal string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(getEnv(key, defaultVal))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
