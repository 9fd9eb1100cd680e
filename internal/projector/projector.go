// Package projector maps a reconstructed export table to the canonical
// statement schema by fixed column position.
package projector

import (
	"strings"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// TreatedSuffix replaces the .xlsx extension in suggested output names
const TreatedSuffix = "_tratada.xlsx"

// SelectedPositions are the export columns kept, in canonical order
var SelectedPositions = []int{1, 2, 4, 5, 9, 10, 12, 13, 18}

// MinColumns is the narrowest table the projection accepts
const MinColumns = 19

// Projector selects and renames the canonical columns
type Projector struct {
	logger logger.Logger
}

// New creates a Projector
func New() *Projector {
	return &Projector{
		logger: logger.WithComponent("projector"),
	}
}

// Project returns a table with exactly the canonical columns, in order. Extra
// columns beyond the selected positions are ignored.
func (p *Projector) Project(file string, table *models.Table) (*models.Table, error) {
	if table.Width() < MinColumns {
		p.logger.WithFields(logger.Fields{
			"file":          file,
			"total_colunas": table.Width(),
		}).Debug("Table too narrow for final selection")
		return nil, errors.IndexMismatchError(file, errors.StageFinalSelection, table.Columns, MinColumns)
	}

	return table.Select(SelectedPositions, models.CanonicalColumns), nil
}

// SuggestName derives the output filename for a treated file
func SuggestName(name string) string {
	return strings.ReplaceAll(name, ".xlsx", TreatedSuffix)
}
