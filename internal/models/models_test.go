package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestCell(t *testing.T) {
	tests := []struct {
		name        string
		cell        Cell
		wantMissing bool
		wantBlank   bool
	}{
		{"missing", Missing, true, true},
		{"empty text", Text(""), false, true},
		{"whitespace", Text("   "), false, true},
		{"value", Text("0001"), false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.IsMissing(); got != tt.wantMissing {
				t.Errorf("IsMissing() = %v, want %v", got, tt.wantMissing)
			}
			if got := tt.cell.IsBlank(); got != tt.wantBlank {
				t.Errorf("IsBlank() = %v, want %v", got, tt.wantBlank)
			}
		})
	}
}

func TestCellJSON(t *testing.T) {
	row := Row{Text("A"), Missing}
	data, err := json.Marshal(row)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `["A",null]` {
		t.Errorf("unexpected encoding %s", data)
	}

	var back Row
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if back[0] != Text("A") || !back[1].IsMissing() {
		t.Errorf("unexpected decoded row %#v", back)
	}
}

func TestTableAppendRowPads(t *testing.T) {
	table := NewTable([]string{"a", "b", "c"})
	table.AppendRow(Text("1"))
	table.AppendRow(Text("1"), Text("2"), Text("3"), Text("4"))

	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}
	if len(table.Rows[0]) != 3 || !table.Cell(0, 2).IsMissing() {
		t.Errorf("short row not padded: %#v", table.Rows[0])
	}
	if len(table.Rows[1]) != 3 {
		t.Errorf("long row not truncated: %#v", table.Rows[1])
	}
	if !table.Cell(5, 0).IsMissing() || !table.Cell(0, 9).IsMissing() {
		t.Error("out of range cells should be missing")
	}
}

func TestTableCloneIsDeep(t *testing.T) {
	table := NewTable([]string{"a"})
	table.AppendRow(Text("x"))

	clone := table.Clone()
	clone.Set(0, 0, Text("y"))
	clone.Columns[0] = "z"

	if table.Cell(0, 0).Value != "x" || table.Columns[0] != "a" {
		t.Error("mutating the clone changed the original")
	}
}

func TestTableSelectAndReindex(t *testing.T) {
	table := NewTable([]string{"a", "b", "c"})
	table.AppendRow(Text("1"), Text("2"), Text("3"))

	selected := table.Select([]int{2, 0}, []string{"C", "A"})
	if selected.Columns[0] != "C" || selected.Cell(0, 0).Value != "3" || selected.Cell(0, 1).Value != "1" {
		t.Errorf("unexpected selection %#v", selected)
	}

	reindexed := selected.Reindex([]string{"A", "B", "C"})
	if reindexed.Width() != 3 {
		t.Fatalf("expected 3 columns, got %d", reindexed.Width())
	}
	if reindexed.Cell(0, 0).Value != "1" || !reindexed.Cell(0, 1).IsMissing() || reindexed.Cell(0, 2).Value != "3" {
		t.Errorf("unexpected reindexed row %#v", reindexed.Rows[0])
	}
}

func TestCanonicalColumns(t *testing.T) {
	if len(CanonicalColumns) != 9 {
		t.Fatalf("expected 9 canonical columns, got %d", len(CanonicalColumns))
	}
	cols := ConsolidatedColumns()
	if len(cols) != 10 || cols[9] != ColumnBank {
		t.Errorf("unexpected consolidated columns %v", cols)
	}
	cols[0] = "changed"
	if CanonicalColumns[0] != ColumnBaixa {
		t.Error("ConsolidatedColumns must not alias CanonicalColumns")
	}
	if !IsCanonical(NewTable(CanonicalColumns)) {
		t.Error("expected canonical table to be recognized")
	}
	if IsCanonical(NewTable(cols)) {
		t.Error("consolidated columns are not canonical")
	}
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1234.56", "1234.56", false},
		{"1.234,56", "1234.56", false},
		{"1,234.56", "1234.56", false},
		{"R$ 1.234.567,89", "1234567.89", false},
		{"-15,5", "-15.5", false},
		{"(200,00)", "-200", false},
		{"1,234", "1234", false},
		{"1.234.567", "1234567", false},
		{"1.500", "1500", false},
		{"1,500", "1500", false},
		{"1.500,00", "1500", false},
		{"-2.000", "-2000", false},
		{"0,500", "0.5", false},
		{"0.500", "0.5", false},
		{"12.50", "12.5", false},
		{"  42 ", "42", false},
		{"", "", true},
		{"abc", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAmount(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ParseAmount(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestTreatedFileValidate(t *testing.T) {
	valid := NewTreatedFile("a.xlsx", "a_tratada.xlsx", NewTable(CanonicalColumns))
	if err := valid.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	invalid := NewTreatedFile("a.xlsx", "a_tratada.xlsx", NewTable([]string{"x"}))
	if err := invalid.Validate(); err == nil {
		t.Error("expected error for non-canonical table")
	}

	unnamed := NewTreatedFile("a.xlsx", "", NewTable(CanonicalColumns))
	if err := unnamed.Validate(); err == nil {
		t.Error("expected error for missing suggested name")
	}
}
