// Package serializer encodes tables as single-sheet xlsx workbooks.
package serializer

import (
	"bytes"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
)

const (
	// SheetName is the name of the only sheet written
	SheetName = "Spreadsheet"
	// MIMEType is the content type of the encoded bytes
	MIMEType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	// ConsolidatedFileName is the default name of the consolidated download
	ConsolidatedFileName = "Consolidado_Bancos.xlsx"
)

// Encode writes the table as xlsx: the column labels on the first row, one
// row per record below, no index column. Present cells are stored as
// strings; missing cells are left empty.
func Encode(table *models.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return nil, encodeError(err)
	}

	header := make([]interface{}, table.Width())
	for i, col := range table.Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return nil, encodeError(err)
	}

	for r, row := range table.Rows {
		values := make([]interface{}, len(row))
		for c, cell := range row {
			if !cell.IsMissing() {
				values[c] = cell.Value
			}
		}

		start, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return nil, encodeError(err)
		}
		if err := f.SetSheetRow(SheetName, start, &values); err != nil {
			return nil, encodeError(fmt.Errorf("row %d: %w", r+1, err))
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, encodeError(err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes the table and writes it to path
func WriteFile(path string, table *models.Table) error {
	data, err := Encode(table)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	return nil
}

func encodeError(err error) error {
	return errors.InternalError(errors.CodeEncodeFailed, "xlsx encoding", err)
}
