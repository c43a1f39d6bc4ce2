package repository

import (
	"context"
	"fmt"
)

// Dates are stored as YYYY-MM-DD text so range filters compare lexically on
// both drivers.
var schemas = map[string][]string{
	DriverPostgres: {
		`CREATE TABLE IF NOT EXISTS transactions (
			id BIGSERIAL PRIMARY KEY,
			date TEXT NOT NULL,
			amount NUMERIC(14,2) NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			installment_group_id BIGINT,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date)`,
		`CREATE TABLE IF NOT EXISTS installment_groups (
			id BIGSERIAL PRIMARY KEY,
			description TEXT NOT NULL DEFAULT '',
			total_value NUMERIC(14,2) NOT NULL,
			installment_value NUMERIC(14,2) NOT NULL,
			total_installments INTEGER NOT NULL,
			remaining_installments INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			is_simulation BOOLEAN NOT NULL DEFAULT TRUE,
			signature TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			id INTEGER PRIMARY KEY,
			average_income NUMERIC(14,2) NOT NULL DEFAULT 0,
			emergency_reserve NUMERIC(14,2) NOT NULL DEFAULT 0,
			warning_threshold NUMERIC(6,2) NOT NULL DEFAULT 70,
			critical_threshold NUMERIC(6,2) NOT NULL DEFAULT 90,
			daily_average_expense NUMERIC(14,2) NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS daily_totals (
			date TEXT PRIMARY KEY,
			amount NUMERIC(14,2) NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
	DriverSQLite: {
		`CREATE TABLE IF NOT EXISTS transactions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			amount TEXT NOT NULL,
			kind TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			category TEXT NOT NULL DEFAULT '',
			installment_group_id INTEGER,
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions (date)`,
		`CREATE TABLE IF NOT EXISTS installment_groups (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT NOT NULL DEFAULT '',
			total_value TEXT NOT NULL,
			installment_value TEXT NOT NULL,
			total_installments INTEGER NOT NULL,
			remaining_installments INTEGER NOT NULL,
			start_date TEXT NOT NULL,
			is_simulation INTEGER NOT NULL DEFAULT 1,
			signature TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS user_settings (
			id INTEGER PRIMARY KEY,
			average_income TEXT NOT NULL DEFAULT '0',
			emergency_reserve TEXT NOT NULL DEFAULT '0',
			warning_threshold TEXT NOT NULL DEFAULT '70',
			critical_threshold TEXT NOT NULL DEFAULT '90',
			daily_average_expense TEXT NOT NULL DEFAULT '0'
		)`,
		`CREATE TABLE IF NOT EXISTS daily_totals (
			date TEXT PRIMARY KEY,
			amount TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	},
}

// Migrate creates the tables if they do not exist
func (r *Repository) Migrate(ctx context.Context) error {
	stmts, ok := schemas[r.driver]
	if !ok {
		return fmt.Errorf("no schema for driver %q", r.driver)
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
	}
	return nil
}
