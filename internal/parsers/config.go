package parsers

import "fmt"

// ExportHeaderRow is the zero-based row holding the column labels in the
// bank export format. The rows above it are a title block.
const ExportHeaderRow = 6

// ExportMinRows is the smallest number of data rows a bank export must hold,
// boilerplate row included, before any further processing is attempted
const ExportMinRows = 2

// ReaderConfig holds configuration for reading a spreadsheet into a table
type ReaderConfig struct {
	// HeaderRow is the zero-based physical row holding the column labels
	HeaderRow int `json:"header_row"`
	// SkipBoilerplateRow drops the first data row after the header
	SkipBoilerplateRow bool `json:"skip_boilerplate_row"`
	// MinRows fails the read with EmptyOrShort when fewer data rows exist.
	// The check runs before the boilerplate row is dropped.
	MinRows int `json:"min_rows"`
	// SheetIndex selects the sheet by position
	SheetIndex int `json:"sheet_index"`
}

// Validate checks if the reader configuration is valid
func (rc *ReaderConfig) Validate() error {
	if rc.HeaderRow < 0 {
		return fmt.Errorf("header row cannot be negative: %d", rc.HeaderRow)
	}

	if rc.MinRows < 0 {
		return fmt.Errorf("minimum rows cannot be negative: %d", rc.MinRows)
	}

	if rc.SheetIndex < 0 {
		return fmt.Errorf("sheet index cannot be negative: %d", rc.SheetIndex)
	}

	return nil
}

// ExportReaderConfig returns the configuration of the fixed bank export format
func ExportReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		HeaderRow:          ExportHeaderRow,
		SkipBoilerplateRow: true,
		MinRows:            ExportMinRows,
		SheetIndex:         0,
	}
}

// TreatedReaderConfig returns the configuration for reading back a table
// written by the serializer: header on the first row, no boilerplate
func TreatedReaderConfig() *ReaderConfig {
	return &ReaderConfig{
		HeaderRow:          0,
		SkipBoilerplateRow: false,
		MinRows:            0,
		SheetIndex:         0,
	}
}
