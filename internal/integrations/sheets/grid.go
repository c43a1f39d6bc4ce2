// Package sheets reads and writes the yearly budget spreadsheet. Each month
// occupies six columns (date, income, outflow, daily, balance, spacer); day d
// sits on row d+1 and the month totals on row 37 (36 in older layouts).
package sheets

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"
)

// Grid is a 0-based view of one worksheet
type Grid interface {
	Read(ctx context.Context) ([][]string, error)
	Write(ctx context.Context, row, col int, value string) error
}

// APIGrid is a Grid backed by the Google Sheets API
type APIGrid struct {
	client        *gsheets.Service
	spreadsheetID string
	sheet         string
}

// NewAPIGrid creates a grid using a Service Account credentials file
func NewAPIGrid(ctx context.Context, credentialsPath, spreadsheetID, sheet string) (*APIGrid, error) {
	svc, err := gsheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &APIGrid{client: svc, spreadsheetID: spreadsheetID, sheet: sheet}, nil
}

// Read fetches every formatted cell of the sheet
func (g *APIGrid) Read(ctx context.Context) ([][]string, error) {
	resp, err := g.client.Spreadsheets.Values.Get(g.spreadsheetID, g.sheet).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", g.sheet, err)
	}
	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = fmt.Sprint(cell)
		}
	}
	return rows, nil
}

// Write sets one cell as if typed by the user so the sheet's formulas recalculate
func (g *APIGrid) Write(ctx context.Context, row, col int, value string) error {
	rng := fmt.Sprintf("%s!%s", g.sheet, CellRef(row, col))
	vr := &gsheets.ValueRange{Values: [][]interface{}{{value}}}
	_, err := g.client.Spreadsheets.Values.Update(g.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", rng, err)
	}
	return nil
}

// CellRef converts a 0-based row and column into A1 notation
func CellRef(row, col int) string {
	name := ""
	for c := col + 1; c > 0; c = (c - 1) / 26 {
		name = string(rune('A'+(c-1)%26)) + name
	}
	return fmt.Sprintf("%s%d", name, row+1)
}

// MemoryGrid is an in-process Grid
type MemoryGrid struct {
	Cells [][]string
}

// Read returns a copy of the cells
func (m *MemoryGrid) Read(ctx context.Context) ([][]string, error) {
	out := make([][]string, len(m.Cells))
	for i, row := range m.Cells {
		out[i] = append([]string(nil), row...)
	}
	return out, nil
}

// Write grows the grid as needed
func (m *MemoryGrid) Write(ctx context.Context, row, col int, value string) error {
	for len(m.Cells) <= row {
		m.Cells = append(m.Cells, nil)
	}
	for len(m.Cells[row]) <= col {
		m.Cells[row] = append(m.Cells[row], "")
	}
	m.Cells[row][col] = value
	return nil
}

// Set is Write without a context, for seeding
func (m *MemoryGrid) Set(row, col int, value string) {
	_ = m.Write(context.Background(), row, col, value)
}
