// Package consolidator merges treated statements from several banks into one
// table tagged with each file's bank code.
package consolidator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/internal/tagger"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// Input is one treated table and the name it was saved under. The bank code
// is derived from the name.
type Input struct {
	Table         *models.Table
	SuggestedName string
}

// Source records how one input contributed to the consolidated table
type Source struct {
	Name     string `json:"name"`
	Bank     string `json:"bank"`
	Match    string `json:"match,omitempty"`
	Fallback bool   `json:"fallback"`
	Rows     int    `json:"rows"`
}

// BankSummary aggregates the consolidated rows of one bank code
type BankSummary struct {
	Bank       string          `json:"bank"`
	Files      int             `json:"files"`
	Rows       int             `json:"rows"`
	DebitTotal decimal.Decimal `json:"debit_total"`
	// Unparsed counts Débito cells holding text that is not an amount
	Unparsed int `json:"unparsed"`
}

// Result is the consolidated table with per-file and per-bank details
type Result struct {
	Table   *models.Table  `json:"-"`
	Sources []Source       `json:"sources"`
	Summary []*BankSummary `json:"summary"`
}

// Fallbacks returns the sources whose bank code came from the filename prefix
func (r *Result) Fallbacks() []Source {
	var out []Source
	for _, src := range r.Sources {
		if src.Fallback {
			out = append(out, src)
		}
	}
	return out
}

// TotalRows returns the number of consolidated rows
func (r *Result) TotalRows() int {
	return r.Table.Len()
}

// Consolidator tags and concatenates treated tables
type Consolidator struct {
	tagger *tagger.Tagger
	logger logger.Logger
}

// New creates a Consolidator using the given tagger
func New(t *tagger.Tagger) *Consolidator {
	if t == nil {
		t = tagger.New(nil)
	}
	return &Consolidator{
		tagger: t,
		logger: logger.WithComponent("consolidator"),
	}
}

// Consolidate tags each input with its bank code and concatenates them in
// input order, keeping row order within each input. Columns are the canonical
// schema plus Bank; columns an input lacks are left missing. An empty input
// list yields a nil result and no error.
func (c *Consolidator) Consolidate(inputs []Input) (*Result, error) {
	if len(inputs) == 0 {
		c.logger.Info("Nothing to consolidate")
		return nil, nil
	}

	columns := models.ConsolidatedColumns()
	bankCol := len(columns) - 1
	debitCol := indexOf(columns, models.ColumnDebito)

	result := &Result{
		Table:   models.NewTable(columns),
		Sources: make([]Source, 0, len(inputs)),
	}
	summaries := make(map[string]*BankSummary)

	for i, in := range inputs {
		if in.Table == nil {
			return nil, errors.InternalError(errors.CodeUnexpectedError, "consolidation",
				fmt.Errorf("input %d (%s) has no table", i+1, in.SuggestedName))
		}

		tag := c.tagger.Tag(in.SuggestedName)
		tagged := in.Table.Reindex(columns)
		for r := range tagged.Rows {
			tagged.Set(r, bankCol, models.Text(tag.Code))
		}
		result.Table.Rows = append(result.Table.Rows, tagged.Rows...)

		result.Sources = append(result.Sources, Source{
			Name:     in.SuggestedName,
			Bank:     tag.Code,
			Match:    tag.Match,
			Fallback: tag.Fallback,
			Rows:     tagged.Len(),
		})

		summary, ok := summaries[tag.Code]
		if !ok {
			summary = &BankSummary{Bank: tag.Code, DebitTotal: decimal.Zero}
			summaries[tag.Code] = summary
			result.Summary = append(result.Summary, summary)
		}
		summary.Files++
		summary.Rows += tagged.Len()
		for _, cell := range tagged.Column(debitCol) {
			if cell.IsBlank() {
				continue
			}
			amount, err := models.ParseAmount(cell.Value)
			if err != nil {
				summary.Unparsed++
				continue
			}
			summary.DebitTotal = summary.DebitTotal.Add(amount)
		}
	}

	c.logger.WithFields(logger.Fields{
		"files": len(inputs),
		"rows":  result.Table.Len(),
		"banks": len(result.Summary),
	}).Info("Consolidated statements")

	return result, nil
}

// ConsolidateSession consolidates the treated files of a session without
// modifying it
func (c *Consolidator) ConsolidateSession(s *session.Session) (*Result, error) {
	files := s.Files()
	inputs := make([]Input, len(files))
	for i, f := range files {
		inputs[i] = Input{Table: f.Table, SuggestedName: f.SuggestedName}
	}
	return c.Consolidate(inputs)
}

// BanksSummary returns a one-line description of the bank codes found
func (r *Result) BanksSummary() string {
	parts := make([]string, len(r.Summary))
	for i, s := range r.Summary {
		parts[i] = fmt.Sprintf("%s=%d", s.Bank, s.Rows)
	}
	return strings.Join(parts, ", ")
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
