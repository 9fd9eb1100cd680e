package projector

import (
	"fmt"
	"testing"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
)

// positionalTable returns a single-row table whose cell at position i holds "v<i>"
func positionalTable(width int) *models.Table {
	cols := make([]string, width)
	cells := make([]models.Cell, width)
	for i := range cols {
		cols[i] = fmt.Sprintf("header %d", i)
		cells[i] = models.Text(fmt.Sprintf("v%d", i))
	}
	table := models.NewTable(cols)
	table.AppendRow(cells...)
	return table
}

func TestProject_CanonicalColumns(t *testing.T) {
	for _, width := range []int{19, 20, 30} {
		t.Run(fmt.Sprintf("width %d", width), func(t *testing.T) {
			out, err := New().Project("a.xlsx", positionalTable(width))
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if !models.IsCanonical(out) {
				t.Fatalf("Expected canonical columns, got %v", out.Columns)
			}
			for i, pos := range SelectedPositions {
				expected := fmt.Sprintf("v%d", pos)
				if got := out.Cell(0, i).Value; got != expected {
					t.Errorf("column %s: expected %q, got %q", out.Columns[i], expected, got)
				}
			}
		})
	}
}

func TestProject_KeepsMissingCells(t *testing.T) {
	table := positionalTable(19)
	table.Set(0, 18, models.Missing)

	out, err := New().Project("a.xlsx", table)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !out.Cell(0, 8).IsMissing() {
		t.Errorf("Expected Débito to stay missing, got %q", out.Cell(0, 8).Value)
	}
}

func TestProject_FifteenColumnsFails(t *testing.T) {
	_, err := New().Project("Extrato_558-4.xlsx", positionalTable(15))
	if err == nil {
		t.Fatal("Expected error for 15 columns")
	}

	structErr, ok := errors.AsStructureError(err)
	if !ok {
		t.Fatalf("Expected StructureError, got %T", err)
	}
	if structErr.Kind != errors.CodeIndexMismatch || structErr.Stage != errors.StageFinalSelection {
		t.Errorf("Expected index_mismatch at final_selection, got %s at %s", structErr.Kind, structErr.Stage)
	}
	if got := structErr.Context["total_colunas"]; got != 15 {
		t.Errorf("Expected total_colunas 15, got %v", got)
	}
	if structErr.Required != MinColumns {
		t.Errorf("Expected %d required columns, got %d", MinColumns, structErr.Required)
	}
}

func TestSuggestName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Extrato_422-6_Jan.xlsx", "Extrato_422-6_Jan_tratada.xlsx"},
		{"XYZ Banco.xlsx", "XYZ Banco_tratada.xlsx"},
		{"no-extension", "no-extension"},
		{"a.xlsx.xlsx", "a_tratada.xlsx_tratada.xlsx"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := SuggestName(tt.input); got != tt.expected {
				t.Errorf("SuggestName(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
