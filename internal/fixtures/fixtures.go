// Package fixtures builds in-memory workbooks in the bank export layout for
// tests and for the sample generator.
package fixtures

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExportWidth is the column count of a well-formed bank export
const ExportWidth = 19

// DefaultSheet is the sheet name written by the export tool
const DefaultSheet = "Plan1"

// Export describes a workbook in the bank export layout: a title block, one
// header row, one boilerplate row and the data rows. Empty strings are left
// as empty cells.
type Export struct {
	Sheet       string
	TitleRows   []string
	Header      []string
	Boilerplate []string
	Rows        [][]string
}

// NewExport returns an export of the given width with a six-row title block
// and generic header labels
func NewExport(width int) *Export {
	header := make([]string, width)
	for i := range header {
		header[i] = fmt.Sprintf("Campo %d", i)
	}

	boilerplate := make([]string, width)
	if width > 1 {
		boilerplate[1] = "Saldo anterior"
	}

	return &Export{
		Sheet: DefaultSheet,
		TitleRows: []string{
			"Relatório de Movimentação Bancária",
			"Empresa: Exemplo Ltda",
			"Período: 01/01/2024 a 31/01/2024",
			"",
			"Emitido em: 01/02/2024",
			"",
		},
		Header:      header,
		Boilerplate: boilerplate,
		Rows:        make([][]string, 0),
	}
}

// Width returns the header width
func (e *Export) Width() int {
	return len(e.Header)
}

// AddRow appends a data row with the given positions filled
func (e *Export) AddRow(values map[int]string) *Export {
	e.Rows = append(e.Rows, Row(e.Width(), values))
	return e
}

// AddMain appends a row with a key at position 1 and the given extra values
func (e *Export) AddMain(key string, values map[int]string) *Export {
	row := Row(e.Width(), values)
	if len(row) > 1 {
		row[1] = key
	}
	e.Rows = append(e.Rows, row)
	return e
}

// AllRows returns every physical row of the sheet, title block included
func (e *Export) AllRows() [][]string {
	rows := make([][]string, 0, len(e.TitleRows)+2+len(e.Rows))
	for _, title := range e.TitleRows {
		rows = append(rows, []string{title})
	}
	rows = append(rows, e.Header)
	if e.Boilerplate != nil {
		rows = append(rows, e.Boilerplate)
	}
	return append(rows, e.Rows...)
}

// Bytes encodes the export as xlsx
func (e *Export) Bytes() ([]byte, error) {
	return Workbook(e.Sheet, e.AllRows())
}

// Row builds a row of width cells with the given positions filled
func Row(width int, values map[int]string) []string {
	row := make([]string, width)
	for idx, value := range values {
		if idx >= 0 && idx < width {
			row[idx] = value
		}
	}
	return row
}

// Workbook writes rows starting at A1 of a single sheet and returns the xlsx
// bytes. Every non-empty value is stored as a string cell.
func Workbook(sheet string, rows [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = DefaultSheet
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("renaming sheet: %w", err)
	}

	for r, row := range rows {
		for c, value := range row {
			if value == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("cell name for row %d column %d: %w", r, c, err)
			}
			if err := f.SetCellStr(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("writing %s: %w", cell, err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("encoding workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// Statement returns a well-formed export of ExportWidth columns with the
// given number of logical records, each followed by continuations extra
// lines for the description fields
func Statement(records, continuations int) *Export {
	e := NewExport(ExportWidth)
	for i := 0; i < records; i++ {
		e.AddMain(fmt.Sprintf("%04d", i+1), map[int]string{
			2:  "02/01/2024",
			4:  fmt.Sprintf("DOC%03d", i+1),
			5:  "Pagamento",
			9:  fmt.Sprintf("Histórico %d", i+1),
			10: "Parte A",
			12: "Administrativo",
			13: fmt.Sprintf("12.345.678/0001-%02d", i%100),
			18: fmt.Sprintf("%d,%02d", 100+i, i%100),
		})
		for j := 0; j < continuations; j++ {
			e.AddRow(map[int]string{
				9:  fmt.Sprintf("linha %d", j+2),
				13: fmt.Sprintf("Fornecedor %d", i+1),
			})
		}
	}
	return e
}
