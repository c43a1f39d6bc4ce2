package ledger

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Dan9191/cashflow-service/internal/models"
	"github.com/shopspring/decimal"
)

// Memory is a process-local Store used for demos and tests
type Memory struct {
	mu          sync.RWMutex
	entries     []models.CashFlowEntry
	groups      map[int64]*models.InstallmentGroup
	days        map[string]decimal.Decimal
	prospective map[string]models.ProspectiveTotals
	settings    models.UserSettings
	prescribed  decimal.Decimal
	nextEntry   int64
	nextGroup   int64
}

// NewMemory creates an empty ledger whose untouched days read as prescribed
func NewMemory(settings models.UserSettings, prescribed decimal.Decimal) *Memory {
	return &Memory{
		groups:      make(map[int64]*models.InstallmentGroup),
		days:        make(map[string]decimal.Decimal),
		prospective: make(map[string]models.ProspectiveTotals),
		settings:    settings,
		prescribed:  prescribed,
	}
}

func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// EntriesInRange implements Ledger
func (m *Memory) EntriesInRange(ctx context.Context, start, end time.Time) ([]models.CashFlowEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to := dayKey(start), dayKey(end)
	var out []models.CashFlowEntry
	for _, e := range m.entries {
		k := dayKey(e.Date)
		if (start.IsZero() || k >= from) && k <= to {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

// InstallmentGroups implements Ledger
func (m *Memory) InstallmentGroups(ctx context.Context, includeSimulations bool) ([]models.InstallmentGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]models.InstallmentGroup, 0, len(m.groups))
	for _, g := range m.groups {
		if g.IsSimulation && !includeSimulations {
			continue
		}
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Settings implements Ledger
func (m *Memory) Settings(ctx context.Context) (models.UserSettings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings, nil
}

// SetSettings replaces the user settings
func (m *Memory) SetSettings(s models.UserSettings) {
	m.mu.Lock()
	m.settings = s
	m.mu.Unlock()
}

// SaveSettings implements SettingsStore
func (m *Memory) SaveSettings(ctx context.Context, s models.UserSettings) error {
	m.SetSettings(s)
	return nil
}

// DailyVariable implements DayBook
func (m *Memory) DailyVariable(ctx context.Context, day time.Time) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.days[dayKey(day)]; ok {
		return v, nil
	}
	return m.prescribed, nil
}

// SetDailyVariable implements DayBook
func (m *Memory) SetDailyVariable(ctx context.Context, day time.Time, amount decimal.Decimal) error {
	m.mu.Lock()
	m.days[dayKey(day)] = amount
	m.mu.Unlock()
	return nil
}

// AppendEntry implements Recorder
func (m *Memory) AppendEntry(ctx context.Context, entry models.CashFlowEntry) (models.CashFlowEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextEntry++
	entry.ID = m.nextEntry
	entry.Date = models.DateOf(entry.Date)
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

// SetProspective pre-fills the totals of a future month
func (m *Memory) SetProspective(year int, month time.Month, totals models.ProspectiveTotals) {
	m.mu.Lock()
	m.prospective[fmt.Sprintf("%04d-%02d", year, month)] = totals
	m.mu.Unlock()
}

// ProspectiveTotals implements ProspectiveSource
func (m *Memory) ProspectiveTotals(ctx context.Context, year int, month time.Month) (models.ProspectiveTotals, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.prospective[fmt.Sprintf("%04d-%02d", year, month)]
	return t, ok, nil
}

// CreateGroup implements InstallmentStore
func (m *Memory) CreateGroup(ctx context.Context, group *models.InstallmentGroup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextGroup++
	group.ID = m.nextGroup
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}
	g := *group
	m.groups[g.ID] = &g
	return nil
}

// GetGroup implements InstallmentStore
func (m *Memory) GetGroup(ctx context.Context, id int64) (*models.InstallmentGroup, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.groups[id]
	if !ok {
		return nil, fmt.Errorf("installment group %d: %w", id, models.ErrNotFound)
	}
	out := *g
	return &out, nil
}

// ConfirmGroup implements InstallmentStore
func (m *Memory) ConfirmGroup(ctx context.Context, id int64, signature string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return fmt.Errorf("installment group %d: %w", id, models.ErrNotFound)
	}
	if !g.IsSimulation {
		return fmt.Errorf("installment group %d is confirmed: %w", id, models.ErrInconsistentState)
	}
	g.IsSimulation = false
	g.Signature = signature
	return nil
}

// DeleteGroup implements InstallmentStore; only simulations are removed
func (m *Memory) DeleteGroup(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.groups[id]
	if !ok {
		return fmt.Errorf("installment group %d: %w", id, models.ErrNotFound)
	}
	if !g.IsSimulation {
		return fmt.Errorf("installment group %d is confirmed: %w", id, models.ErrInconsistentState)
	}
	delete(m.groups, id)
	return nil
}
