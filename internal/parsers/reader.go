// Package parsers reads spreadsheet bytes into positional tables.
//
// Bank exports come with a title block above the header, a boilerplate
// subtotal row right below it, and columns whose labels vary between banks.
// The reader therefore keeps every column by position and reads every cell
// as its displayed text, so identifiers with leading zeros survive intact.
//
// Example usage:
//
//	reader, err := NewSheetReader(ExportReaderConfig())
//	table, stats, err := reader.Read("Extrato_422-6_Jan.xlsx", data)
//
// Failures are reported through pkg/errors: ReadError when the bytes are not
// a readable workbook, StructureError{EmptyOrShort} when the sheet holds too
// few data rows.
package parsers

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// ReadStats describes what a read found in the sheet
type ReadStats struct {
	SheetName    string `json:"sheet_name"`
	PhysicalRows int    `json:"physical_rows"`
	BlankRows    int    `json:"blank_rows"`
	DroppedRows  int    `json:"dropped_rows"`
	DataRows     int    `json:"data_rows"`
	Columns      int    `json:"columns"`
}

// String returns a string representation of the read statistics
func (rs *ReadStats) String() string {
	return fmt.Sprintf("ReadStats{Sheet: %s, Physical: %d, Data: %d, Blank: %d, Dropped: %d, Columns: %d}",
		rs.SheetName, rs.PhysicalRows, rs.DataRows, rs.BlankRows, rs.DroppedRows, rs.Columns)
}

// SheetReader reads one sheet of an xlsx workbook into a models.Table
type SheetReader struct {
	config *ReaderConfig
	logger logger.Logger
}

// NewSheetReader creates a new SheetReader with the given configuration
func NewSheetReader(config *ReaderConfig) (*SheetReader, error) {
	if config == nil {
		config = ExportReaderConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "reader", config, err)
	}

	log := logger.WithComponent("sheet_reader")
	log.WithFields(logger.Fields{
		"header_row":       config.HeaderRow,
		"skip_boilerplate": config.SkipBoilerplateRow,
		"min_rows":         config.MinRows,
		"sheet_index":      config.SheetIndex,
	}).Debug("Created sheet reader")

	return &SheetReader{
		config: config,
		logger: log,
	}, nil
}

// Config returns the reader configuration
func (sr *SheetReader) Config() *ReaderConfig {
	return sr.config
}

// Read parses the workbook bytes of the named file into a table. Columns are
// labelled from the header row; the table width is the widest of the header
// and every data row.
func (sr *SheetReader) Read(name string, data []byte) (*models.Table, *ReadStats, error) {
	log := sr.logger.WithField("file", name)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		log.WithError(err).Debug("Workbook could not be opened")
		return nil, nil, errors.ReadError(name, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(sr.config.SheetIndex)
	if sheet == "" {
		return nil, nil, errors.ReadError(name, fmt.Errorf("workbook has no sheet at index %d", sr.config.SheetIndex))
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		log.WithError(err).WithField("sheet", sheet).Debug("Sheet rows could not be read")
		return nil, nil, errors.ReadError(name, err)
	}

	stats := &ReadStats{
		SheetName:    sheet,
		PhysicalRows: len(rows),
	}

	if len(rows) <= sr.config.HeaderRow {
		return nil, stats, errors.ReadError(name, fmt.Errorf(
			"header row %d not found, sheet %q has %d rows", sr.config.HeaderRow+1, sheet, len(rows)))
	}

	header := rows[sr.config.HeaderRow]
	body := rows[sr.config.HeaderRow+1:]
	width := len(header)
	for _, row := range body {
		if len(row) > width {
			width = len(row)
		}
	}
	labels := headerLabels(header, width)

	// Row count and boilerplate are positional, blank rows included
	if len(body) < sr.config.MinRows {
		log.WithFields(logger.Fields{
			"rows":     len(body),
			"min_rows": sr.config.MinRows,
		}).Debug("Sheet is empty or too short")
		return nil, stats, errors.EmptyOrShortError(name, labels, len(body), sr.config.MinRows)
	}

	if sr.config.SkipBoilerplateRow && len(body) > 0 {
		body = body[1:]
		stats.DroppedRows = 1
	}

	table := models.NewTable(labels)
	for _, row := range body {
		if isBlankRow(row) {
			stats.BlankRows++
			continue
		}
		table.AppendRow(toCells(row)...)
	}

	stats.DataRows = table.Len()
	stats.Columns = table.Width()

	log.WithFields(logger.Fields{
		"sheet":   sheet,
		"rows":    stats.DataRows,
		"columns": stats.Columns,
	}).Debug("Read sheet")

	return table, stats, nil
}

// headerLabels derives unique column labels from the header row. Blank
// labels become "Unnamed: i" and repeated labels get a ".n" suffix, so a
// sheet with two "Histórico" headers yields "Histórico" and "Histórico.1".
func headerLabels(header []string, width int) []string {
	labels := make([]string, width)
	seen := make(map[string]int, width)
	used := make(map[string]bool, width)

	for i := 0; i < width; i++ {
		label := ""
		if i < len(header) {
			label = strings.TrimSpace(header[i])
		}
		if label == "" {
			label = fmt.Sprintf("Unnamed: %d", i)
		}

		base := label
		for used[label] {
			seen[base]++
			label = fmt.Sprintf("%s.%d", base, seen[base])
		}
		used[label] = true
		labels[i] = label
	}

	return labels
}

// toCells converts displayed cell text to cells; an empty string is missing
func toCells(row []string) []models.Cell {
	cells := make([]models.Cell, len(row))
	for i, value := range row {
		if value == "" {
			cells[i] = models.Missing
			continue
		}
		cells[i] = models.Text(value)
	}
	return cells
}

func isBlankRow(row []string) bool {
	for _, value := range row {
		if value != "" {
			return false
		}
	}
	return true
}
