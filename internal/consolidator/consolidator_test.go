package consolidator

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/internal/tagger"
)

// canonicalTable returns n rows with keys prefix-1..prefix-n and the given Débito values
func canonicalTable(prefix string, debits ...string) *models.Table {
	table := models.NewTable(models.CanonicalColumns)
	for i, debit := range debits {
		cells := make([]models.Cell, len(models.CanonicalColumns))
		cells[0] = models.Text(fmt.Sprintf("%s-%d", prefix, i+1))
		if debit != "" {
			cells[8] = models.Text(debit)
		}
		table.AppendRow(cells...)
	}
	return table
}

func TestConsolidate_TagsAndPreservesOrder(t *testing.T) {
	c := New(tagger.New(tagger.DefaultMapping()))

	result, err := c.Consolidate([]Input{
		{Table: canonicalTable("a", "1,00", "2,00", "3,00"), SuggestedName: "Extrato_422-6_Jan_tratada.xlsx"},
		{Table: canonicalTable("b", "10.50", "20.25"), SuggestedName: "Extrato_558-4_Jan_tratada.xlsx"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	table := result.Table
	if table.Len() != 5 {
		t.Fatalf("Expected 5 rows, got %d", table.Len())
	}

	expected := []struct{ key, bank string }{
		{"a-1", "3313"}, {"a-2", "3313"}, {"a-3", "3313"},
		{"b-1", "3314"}, {"b-2", "3314"},
	}
	bankCol := table.ColumnIndex(models.ColumnBank)
	for i, exp := range expected {
		if got := table.Cell(i, 0).Value; got != exp.key {
			t.Errorf("row %d: expected key %q, got %q", i, exp.key, got)
		}
		if got := table.Cell(i, bankCol).Value; got != exp.bank {
			t.Errorf("row %d: expected bank %q, got %q", i, exp.bank, got)
		}
	}

	cols := models.ConsolidatedColumns()
	for i := range cols {
		if table.Columns[i] != cols[i] {
			t.Errorf("column %d: expected %q, got %q", i, cols[i], table.Columns[i])
		}
	}
}

func TestConsolidate_EmptyInput(t *testing.T) {
	result, err := New(nil).Consolidate(nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result != nil {
		t.Errorf("Expected nil result, got %+v", result)
	}
}

func TestConsolidate_MissingColumnsAreFilled(t *testing.T) {
	partial := models.NewTable([]string{models.ColumnBaixa, "Extra"})
	partial.AppendRow(models.Text("1"), models.Text("ignored"))

	result, err := New(nil).Consolidate([]Input{{Table: partial, SuggestedName: "XYZ Banco_tratada.xlsx"}})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	table := result.Table
	if table.Width() != 10 {
		t.Fatalf("Expected 10 columns, got %d", table.Width())
	}
	if table.ColumnIndex("Extra") != -1 {
		t.Error("Expected columns outside the schema to be dropped")
	}
	for c := 1; c < 9; c++ {
		if !table.Cell(0, c).IsMissing() {
			t.Errorf("Expected column %s to be missing", table.Columns[c])
		}
	}
	if got := table.Cell(0, 9).Value; got != "XYZ" {
		t.Errorf("Expected fallback bank 'XYZ', got %q", got)
	}
}

func TestConsolidate_Summary(t *testing.T) {
	c := New(nil)
	result, err := c.Consolidate([]Input{
		{Table: canonicalTable("a", "1.234,56", "R$ 10,00", ""), SuggestedName: "Extrato_422-6_tratada.xlsx"},
		{Table: canonicalTable("b", "n/a"), SuggestedName: "Banco Novo_tratada.xlsx"},
		{Table: canonicalTable("c", "0,44"), SuggestedName: "Outro_422-6_tratada.xlsx"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Summary) != 2 {
		t.Fatalf("Expected 2 banks, got %d", len(result.Summary))
	}

	first := result.Summary[0]
	if first.Bank != "3313" || first.Files != 2 || first.Rows != 4 {
		t.Errorf("Unexpected summary for 3313: %+v", first)
	}
	if !first.DebitTotal.Equal(decimal.RequireFromString("1245.00")) {
		t.Errorf("Expected total 1245.00, got %s", first.DebitTotal)
	}

	second := result.Summary[1]
	if second.Bank != "Banco" || second.Unparsed != 1 || !second.DebitTotal.IsZero() {
		t.Errorf("Unexpected summary for fallback bank: %+v", second)
	}

	fallbacks := result.Fallbacks()
	if len(fallbacks) != 1 || fallbacks[0].Name != "Banco Novo_tratada.xlsx" {
		t.Errorf("Expected one fallback source, got %+v", fallbacks)
	}
	if result.BanksSummary() != "3313=4, Banco=1" {
		t.Errorf("Unexpected banks summary %q", result.BanksSummary())
	}
}

func TestConsolidate_SummaryIntegerAmounts(t *testing.T) {
	result, err := New(nil).Consolidate([]Input{
		{Table: canonicalTable("a", "1.500", "2.000,50", "1,500"), SuggestedName: "Extrato_422-6_tratada.xlsx"},
	})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(result.Summary) != 1 {
		t.Fatalf("Expected 1 bank, got %d", len(result.Summary))
	}
	summary := result.Summary[0]
	if summary.Unparsed != 0 || !summary.DebitTotal.Equal(decimal.RequireFromString("5000.50")) {
		t.Errorf("Expected total 5000.50 with no unparsed values, got %s (%d unparsed)", summary.DebitTotal, summary.Unparsed)
	}
}

func TestConsolidate_DoesNotModifyInputs(t *testing.T) {
	table := canonicalTable("a", "1,00")
	if _, err := New(nil).Consolidate([]Input{{Table: table, SuggestedName: "x_tratada.xlsx"}}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if table.Width() != 9 {
		t.Errorf("Input table gained columns: %v", table.Columns)
	}
}

func TestConsolidate_NilTable(t *testing.T) {
	_, err := New(nil).Consolidate([]Input{{SuggestedName: "broken.xlsx"}})
	if err == nil {
		t.Error("Expected error for input without table")
	}
}

func TestConsolidateSession(t *testing.T) {
	s := session.New()
	s.Add(models.NewTreatedFile("Extrato_558-4.xlsx", "Extrato_558-4_tratada.xlsx", canonicalTable("a", "1,00")))
	s.Add(models.NewTreatedFile("Extrato_422-6.xlsx", "Extrato_422-6_tratada.xlsx", canonicalTable("b", "2,00", "3,00")))

	result, err := New(nil).ConsolidateSession(s)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if result.TotalRows() != 3 {
		t.Errorf("Expected 3 rows, got %d", result.TotalRows())
	}
	if result.Sources[0].Bank != "3314" || result.Sources[1].Bank != "3313" {
		t.Errorf("Unexpected sources: %+v", result.Sources)
	}
	if s.Len() != 2 {
		t.Error("Consolidation modified the session")
	}

	empty, err := New(nil).ConsolidateSession(session.New())
	if err != nil || empty != nil {
		t.Errorf("Expected nil result for empty session, got %+v, %v", empty, err)
	}
}
