// Package reconstructor rebuilds logical statement records from rows that the
// export tool split across several physical lines.
//
// A row whose key cell holds text is a main row. Rows below it with an empty
// key are continuations: their description cells are appended, space
// separated, to the nearest main row above. Continuations with no main row
// above them have no owner and are dropped.
package reconstructor

import (
	"strings"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// Fixed positions of the bank export layout
const (
	KeyColumn        = 1
	HistoricoColumn  = 9
	Historico1Column = 10
	SupplierColumn   = 13
)

// Columns names the positions the merge works on
type Columns struct {
	Key       int
	Mergeable []int
}

// ExportColumns returns the positions of the bank export layout
func ExportColumns() Columns {
	return Columns{
		Key:       KeyColumn,
		Mergeable: []int{HistoricoColumn, Historico1Column, SupplierColumn},
	}
}

func (c Columns) all() []int {
	return append([]int{c.Key}, c.Mergeable...)
}

// Required returns the minimum table width the columns need
func (c Columns) Required() int {
	highest := c.Key
	for _, idx := range c.Mergeable {
		if idx > highest {
			highest = idx
		}
	}
	return highest + 1
}

// Reconstructor merges continuation rows into their main row
type Reconstructor struct {
	columns Columns
	logger  logger.Logger
}

// New creates a Reconstructor for the given column positions
func New(columns Columns) *Reconstructor {
	return &Reconstructor{
		columns: columns,
		logger:  logger.WithComponent("reconstructor"),
	}
}

// NewForExport creates a Reconstructor for the bank export layout
func NewForExport() *Reconstructor {
	return New(ExportColumns())
}

// Reconstruct returns a new table holding only main rows, each carrying the
// text merged from its continuations. The input table is not modified. The
// file name is used for diagnostics only.
func (r *Reconstructor) Reconstruct(file string, table *models.Table) (*models.Table, *models.ReconstructionStats, error) {
	if !table.HasColumns(r.columns.all()...) {
		return nil, nil, errors.IndexMismatchError(file, errors.StageMerge, table.Columns, r.columns.Required())
	}

	out := table.Clone()
	stats := &models.ReconstructionStats{InputRows: out.Len()}
	anchor := -1

	for i := range out.Rows {
		key := out.Cell(i, r.columns.Key)
		if isMain(key) {
			anchor = i
			stats.MainRows++
			continue
		}

		if anchor < 0 {
			stats.OrphanRows++
			continue
		}

		stats.ContinuationRows++
		for _, col := range r.columns.Mergeable {
			cell := out.Cell(i, col)
			if cell.IsMissing() {
				continue
			}

			text := strings.TrimSpace(cell.Value)
			current := out.Cell(anchor, col)
			if current.IsMissing() {
				out.Set(anchor, col, models.Text(text))
			} else {
				out.Set(anchor, col, models.Text(current.Value+" "+text))
			}
			stats.MergedCells++
		}
	}

	kept := out.Rows[:0]
	for _, row := range out.Rows {
		if !row[r.columns.Key].IsMissing() {
			kept = append(kept, row)
		}
	}
	out.Rows = kept
	stats.OutputRows = out.Len()

	r.logger.WithFields(logger.Fields{
		"file":          file,
		"input_rows":    stats.InputRows,
		"main_rows":     stats.MainRows,
		"continuations": stats.ContinuationRows,
		"orphans":       stats.OrphanRows,
		"merged_cells":  stats.MergedCells,
		"output_rows":   stats.OutputRows,
	}).Debug("Reconstructed rows")

	return out, stats, nil
}

// isMain reports whether a key cell opens a new logical record
func isMain(key models.Cell) bool {
	return !key.IsMissing() && strings.TrimSpace(key.Value) != ""
}
