package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
)

const groupColumns = `id, description, total_value, installment_value, total_installments,
		remaining_installments, start_date, is_simulation, signature, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanGroup(row rowScanner) (*models.InstallmentGroup, error) {
	g := &models.InstallmentGroup{}
	var start, created string
	err := row.Scan(&g.ID, &g.Description, &g.TotalValue, &g.InstallmentValue, &g.TotalInstallments,
		&g.RemainingInstallments, &start, &g.IsSimulation, &g.Signature, &created)
	if err != nil {
		return nil, err
	}
	if g.StartDate, err = r.parseDate(start); err != nil {
		return nil, fmt.Errorf("installment group %d has invalid start date %q: %w", g.ID, start, err)
	}
	g.CreatedAt = parseStamp(created)
	return g, nil
}

// InstallmentGroups lists groups, optionally including unconfirmed simulations
func (r *Repository) InstallmentGroups(ctx context.Context, includeSimulations bool) ([]models.InstallmentGroup, error) {
	query := `SELECT ` + groupColumns + ` FROM installment_groups`
	if !includeSimulations {
		query += ` WHERE is_simulation = $1`
	}
	query += ` ORDER BY id`

	var args []any
	if !includeSimulations {
		args = append(args, false)
	}
	rows, err := r.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query installment groups: %w", err)
	}
	defer rows.Close()

	var groups []models.InstallmentGroup
	for rows.Next() {
		g, err := r.scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan installment group: %w", err)
		}
		groups = append(groups, *g)
	}
	return groups, rows.Err()
}

// CreateGroup inserts a group and fills its ID
func (r *Repository) CreateGroup(ctx context.Context, g *models.InstallmentGroup) error {
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	query := `
		INSERT INTO installment_groups (description, total_value, installment_value, total_installments,
			remaining_installments, start_date, is_simulation, signature, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := r.queryRow(ctx, query, g.Description, g.TotalValue, g.InstallmentValue, g.TotalInstallments,
		g.RemainingInstallments, g.StartDate.Format(dateLayout), g.IsSimulation, g.Signature, stamp(g.CreatedAt)).
		Scan(&g.ID)
	if err != nil {
		return fmt.Errorf("failed to create installment group: %w", err)
	}
	return nil
}

// GetGroup retrieves a group by ID
func (r *Repository) GetGroup(ctx context.Context, id int64) (*models.InstallmentGroup, error) {
	row := r.queryRow(ctx, `SELECT `+groupColumns+` FROM installment_groups WHERE id = $1`, id)
	g, err := r.scanGroup(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("installment group %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find installment group: %w", err)
	}
	return g, nil
}

// ConfirmGroup turns a simulation into a real obligation. A group that is
// already confirmed is left untouched and reported as ErrInconsistentState.
func (r *Repository) ConfirmGroup(ctx context.Context, id int64, signature string) error {
	res, err := r.exec(ctx, `UPDATE installment_groups SET is_simulation = $1, signature = $2 WHERE id = $3 AND is_simulation = $4`,
		false, signature, id, true)
	if err != nil {
		return fmt.Errorf("failed to confirm installment group: %w", err)
	}
	return r.expectOne(ctx, res, id)
}

// DeleteGroup removes a group that is still a simulation; confirmed groups are kept
func (r *Repository) DeleteGroup(ctx context.Context, id int64) error {
	res, err := r.exec(ctx, `DELETE FROM installment_groups WHERE id = $1 AND is_simulation = $2`, id, true)
	if err != nil {
		return fmt.Errorf("failed to delete installment group: %w", err)
	}
	return r.expectOne(ctx, res, id)
}

// expectOne maps zero affected rows to ErrNotFound for a missing id and to
// ErrInconsistentState for a group that is no longer a simulation.
func (r *Repository) expectOne(ctx context.Context, res sql.Result, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n > 0 {
		return nil
	}
	var exists int
	err = r.queryRow(ctx, `SELECT 1 FROM installment_groups WHERE id = $1`, id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("installment group %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to find installment group: %w", err)
	}
	return fmt.Errorf("installment group %d is confirmed: %w", id, models.ErrInconsistentState)
}
