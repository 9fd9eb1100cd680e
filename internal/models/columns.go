package models

// Canonical column names of a treated statement
const (
	ColumnBaixa      = "Baixa"
	ColumnEmissao    = "Emissão"
	ColumnChequeDoc  = "Cheq/Doc"
	ColumnNatureza   = "Natureza"
	ColumnHistorico  = "Histórico"
	ColumnHistorico1 = "Histórico.1"
	ColumnCentro     = "Centro de Responsabilidade"
	ColumnFornecedor = "Fornecedor (CNPJ + Nome)"
	ColumnDebito     = "Débito"
	ColumnBank       = "Bank"
)

// CanonicalColumns is the normalized schema, in output order
var CanonicalColumns = []string{
	ColumnBaixa,
	ColumnEmissao,
	ColumnChequeDoc,
	ColumnNatureza,
	ColumnHistorico,
	ColumnHistorico1,
	ColumnCentro,
	ColumnFornecedor,
	ColumnDebito,
}

// ConsolidatedColumns returns the canonical schema followed by Bank
func ConsolidatedColumns() []string {
	cols := make([]string, 0, len(CanonicalColumns)+1)
	cols = append(cols, CanonicalColumns...)
	return append(cols, ColumnBank)
}

// IsCanonical reports whether t carries exactly the canonical columns in order
func IsCanonical(t *Table) bool {
	if t == nil || len(t.Columns) != len(CanonicalColumns) {
		return false
	}
	for i, c := range CanonicalColumns {
		if t.Columns[i] != c {
			return false
		}
	}
	return true
}
