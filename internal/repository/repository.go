package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	_ "github.com/lib/pq"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Repository provides database operations over the cash-flow tables
type Repository struct {
	db         *sql.DB
	driver     string
	loc        *time.Location
	prescribed decimal.Decimal
}

// NewRepository initializes a new repository. Days without a stored variable
// total read as prescribed.
func NewRepository(db *sql.DB, driver string, prescribed decimal.Decimal) *Repository {
	return &Repository{db: db, driver: driver, loc: time.Local, prescribed: prescribed}
}

// SetLocation sets the zone stored dates are interpreted in
func (r *Repository) SetLocation(loc *time.Location) {
	r.loc = loc
}

// Open connects to postgres or sqlite
func Open(driver, conn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres:
		db, err := sql.Open("postgres", conn)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		return db, nil
	case DriverSQLite:
		dsn := conn
		if !strings.Contains(conn, ":memory:") {
			sep := "?"
			if strings.Contains(conn, "?") {
				sep = "&"
			}
			dsn = conn + sep + "_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
		}
		db, err := sql.Open("sqlite", dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		db.SetMaxOpenConns(1)
		return db, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

var placeholder = regexp.MustCompile(`\$\d+`)

// rebind rewrites $n placeholders for drivers that only take ?
func (r *Repository) rebind(query string) string {
	if r.driver == DriverSQLite {
		return placeholder.ReplaceAllString(query, "?")
	}
	return query
}

func (r *Repository) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return r.db.ExecContext(ctx, r.rebind(query), args...)
}

func (r *Repository) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return r.db.QueryContext(ctx, r.rebind(query), args...)
}

func (r *Repository) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return r.db.QueryRowContext(ctx, r.rebind(query), args...)
}

func (r *Repository) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, r.loc)
}

func parseStamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func stamp(t time.Time) string {
	if t.IsZero() {
		t = time.Now()
	}
	return t.UTC().Format(time.RFC3339)
}

// EntriesInRange returns the entries between start and end inclusive
func (r *Repository) EntriesInRange(ctx context.Context, start, end time.Time) ([]models.CashFlowEntry, error) {
	from := "0000-01-01"
	if !start.IsZero() {
		from = start.Format(dateLayout)
	}
	query := `
		SELECT id, date, amount, kind, description, category, installment_group_id, created_at
		FROM transactions
		WHERE date >= $1 AND date <= $2
		ORDER BY date, id`
	rows, err := r.query(ctx, query, from, end.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var entries []models.CashFlowEntry
	for rows.Next() {
		var (
			e       models.CashFlowEntry
			date    string
			kind    string
			created string
			group   sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &date, &e.Amount, &kind, &e.Description, &e.Category, &group, &created); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if e.Date, err = r.parseDate(date); err != nil {
			return nil, fmt.Errorf("transaction %d has invalid date %q: %w", e.ID, date, err)
		}
		e.Kind = models.FlowKind(kind)
		e.CreatedAt = parseStamp(created)
		if group.Valid {
			id := group.Int64
			e.InstallmentGroupID = &id
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// AppendEntry inserts a new transaction
func (r *Repository) AppendEntry(ctx context.Context, entry models.CashFlowEntry) (models.CashFlowEntry, error) {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO transactions (date, amount, kind, description, category, installment_group_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var group any
	if entry.InstallmentGroupID != nil {
		group = *entry.InstallmentGroupID
	}
	err := r.queryRow(ctx, query, entry.Date.Format(dateLayout), entry.Amount, string(entry.Kind),
		entry.Description, entry.Category, group, stamp(entry.CreatedAt)).Scan(&entry.ID)
	if err != nil {
		return entry, fmt.Errorf("failed to create transaction: %w", err)
	}
	entry.Date = models.DateOf(entry.Date)
	return entry, nil
}

// DailyVariable returns the stored variable total of a day, or the placeholder
func (r *Repository) DailyVariable(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	var amount decimal.Decimal
	err := r.queryRow(ctx, `SELECT amount FROM daily_totals WHERE date = $1`, day.Format(dateLayout)).Scan(&amount)
	if errors.Is(err, sql.ErrNoRows) {
		return r.prescribed, nil
	}
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to read daily total: %w", err)
	}
	return amount, nil
}

// SetDailyVariable stores the variable total of a day
func (r *Repository) SetDailyVariable(ctx context.Context, day time.Time, amount decimal.Decimal) error {
	query := `
		INSERT INTO daily_totals (date, amount, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (date) DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`
	if _, err := r.exec(ctx, query, day.Format(dateLayout), amount, stamp(time.Now())); err != nil {
		return fmt.Errorf("failed to save daily total: %w", err)
	}
	return nil
}

// Settings returns the stored user settings or the defaults
func (r *Repository) Settings(ctx context.Context) (models.UserSettings, error) {
	s := models.UserSettings{}
	query := `
		SELECT average_income, emergency_reserve, warning_threshold, critical_threshold, daily_average_expense
		FROM user_settings
		WHERE id = 1`
	err := r.queryRow(ctx, query).Scan(&s.AverageIncome, &s.EmergencyReserve,
		&s.WarningThresholdPct, &s.CriticalThresholdPct, &s.DailyAverageExpense)
	if errors.Is(err, sql.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return s, fmt.Errorf("failed to read settings: %w", err)
	}
	return s, nil
}

// SaveSettings replaces the user settings
func (r *Repository) SaveSettings(ctx context.Context, s models.UserSettings) error {
	query := `
		INSERT INTO user_settings (id, average_income, emergency_reserve, warning_threshold, critical_threshold, daily_average_expense)
		VALUES (1, $1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET
			average_income = excluded.average_income,
			emergency_reserve = excluded.emergency_reserve,
			warning_threshold = excluded.warning_threshold,
			critical_threshold = excluded.critical_threshold,
			daily_average_expense = excluded.daily_average_expense`
	_, err := r.exec(ctx, query, s.AverageIncome, s.EmergencyReserve,
		s.WarningThresholdPct, s.CriticalThresholdPct, s.DailyAverageExpense)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
