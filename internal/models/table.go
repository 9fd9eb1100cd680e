package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Cell is one spreadsheet value read as text. A cell is missing when the
// sheet holds nothing at that position; a cell holding only whitespace is
// present.
type Cell struct {
	Value string
	Valid bool
}

// Missing is the explicit marker for an absent value
var Missing = Cell{}

// Text returns a present cell holding s
func Text(s string) Cell {
	return Cell{Value: s, Valid: true}
}

// IsMissing reports whether the cell holds no value
func (c Cell) IsMissing() bool {
	return !c.Valid
}

// IsBlank reports whether the cell is missing or holds only whitespace
func (c Cell) IsBlank() bool {
	return !c.Valid || strings.TrimSpace(c.Value) == ""
}

// String returns the cell text, empty for a missing cell
func (c Cell) String() string {
	return c.Value
}

// MarshalJSON encodes a missing cell as null and a present one as a string
func (c Cell) MarshalJSON() ([]byte, error) {
	if !c.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(c.Value)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (c *Cell) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = Missing
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid cell value: %w", err)
	}
	*c = Text(s)
	return nil
}

// Row is an ordered sequence of cells keyed by column position
type Row []Cell

// Table is an ordered sequence of rows with a column list. Columns are
// addressed by position; the labels are kept for diagnostics and for the
// canonical schema after projection.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// NewTable creates an empty table with the given column labels
func NewTable(columns []string) *Table {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Table{
		Columns: cols,
		Rows:    make([]Row, 0),
	}
}

// Width returns the number of columns
func (t *Table) Width() int {
	return len(t.Columns)
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.Rows)
}

// IsEmpty reports whether the table has no rows
func (t *Table) IsEmpty() bool {
	return len(t.Rows) == 0
}

// AppendRow adds a row, padding or truncating it to the table width
func (t *Table) AppendRow(cells ...Cell) {
	row := make(Row, t.Width())
	copy(row, cells)
	t.Rows = append(t.Rows, row)
}

// Cell returns the cell at (row, col), Missing when out of range
func (t *Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) {
		return Missing
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return Missing
	}
	return r[col]
}

// Set replaces the cell at (row, col)
func (t *Table) Set(row, col int, cell Cell) {
	t.Rows[row][col] = cell
}

// ColumnIndex returns the position of the first column with the given label, or -1
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// HasColumns reports whether every position in indices exists
func (t *Table) HasColumns(indices ...int) bool {
	for _, idx := range indices {
		if idx < 0 || idx >= t.Width() {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the table
func (t *Table) Clone() *Table {
	clone := NewTable(t.Columns)
	clone.Rows = make([]Row, len(t.Rows))
	for i, row := range t.Rows {
		clone.Rows[i] = append(Row(nil), row...)
	}
	return clone
}

// Select returns a new table with the given column positions, in order,
// relabelled with names. Callers check bounds first.
func (t *Table) Select(indices []int, names []string) *Table {
	out := NewTable(names)
	out.Rows = make([]Row, len(t.Rows))
	for i := range t.Rows {
		row := make(Row, len(indices))
		for j, idx := range indices {
			row[j] = t.Cell(i, idx)
		}
		out.Rows[i] = row
	}
	return out
}

// Reindex returns a new table with exactly the given columns, matched by
// label. Columns absent from t are filled with Missing.
func (t *Table) Reindex(columns []string) *Table {
	positions := make([]int, len(columns))
	for i, name := range columns {
		positions[i] = t.ColumnIndex(name)
	}

	out := NewTable(columns)
	out.Rows = make([]Row, len(t.Rows))
	for i := range t.Rows {
		row := make(Row, len(columns))
		for j, pos := range positions {
			if pos >= 0 {
				row[j] = t.Cell(i, pos)
			}
		}
		out.Rows[i] = row
	}
	return out
}

// Column returns the values of one column position
func (t *Table) Column(col int) []Cell {
	values := make([]Cell, len(t.Rows))
	for i := range t.Rows {
		values[i] = t.Cell(i, col)
	}
	return values
}

// String returns a short description of the table shape
func (t *Table) String() string {
	return fmt.Sprintf("Table{Columns: %d, Rows: %d}", t.Width(), t.Len())
}
