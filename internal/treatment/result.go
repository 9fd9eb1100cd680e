package treatment

import (
	"fmt"
	"time"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/pkg/errors"
)

// SourceFile is an uploaded spreadsheet: its original filename and bytes
type SourceFile struct {
	Name string
	Data []byte
}

// ResultKind discriminates the variants of Result
type ResultKind string

const (
	ResultTreated ResultKind = "treated"
	ResultFailed  ResultKind = "failed"
)

// Status classifies why a file could not be treated
type Status string

const (
	StatusReadFailed             Status = "ReadFailed"
	StatusEmptyOrShort           Status = "EmptyOrShort"
	StatusIndexMismatchMerge     Status = "IndexMismatch-Merge"
	StatusIndexMismatchSelection Status = "IndexMismatch-Selection"
)

// Diagnostic describes a file that failed treatment, with what was observed
// in the sheet to help fix or re-export it
type Diagnostic struct {
	File        string       `json:"file"`
	Status      Status       `json:"status"`
	Stage       errors.Stage `json:"stage,omitempty"`
	Columns     []string     `json:"colunas_lidas,omitempty"`
	ColumnCount int          `json:"total_colunas"`
	Required    int          `json:"required_columns,omitempty"`
	Message     string       `json:"erro"`
	Suggestion  string       `json:"suggestion,omitempty"`

	// Err is the error behind the diagnostic
	Err *errors.StatementError `json:"-"`
}

// String returns a one-line description of the diagnostic
func (d *Diagnostic) String() string {
	return fmt.Sprintf("%s: %s (%d columns): %s", d.File, d.Status, d.ColumnCount, d.Message)
}

// Result is the outcome of treating one file. Exactly one of Treated and
// Diagnostic is set, as indicated by Kind.
type Result struct {
	Kind       ResultKind          `json:"kind"`
	File       string              `json:"file"`
	Treated    *models.TreatedFile `json:"treated,omitempty"`
	Diagnostic *Diagnostic         `json:"diagnostic,omitempty"`
	Duration   time.Duration       `json:"duration"`
}

// Succeeded creates a treated result
func Succeeded(treated *models.TreatedFile) Result {
	return Result{Kind: ResultTreated, File: treated.OriginalName, Treated: treated}
}

// Failed creates a failed result
func Failed(diagnostic *Diagnostic) Result {
	return Result{Kind: ResultFailed, File: diagnostic.File, Diagnostic: diagnostic}
}

// OK reports whether the file was treated
func (r Result) OK() bool {
	return r.Kind == ResultTreated
}

// Diagnose converts a treatment error into a Diagnostic
func Diagnose(file string, err error) *Diagnostic {
	if structErr, ok := errors.AsStructureError(err); ok {
		d := &Diagnostic{
			File:        file,
			Stage:       structErr.Stage,
			Columns:     structErr.Columns,
			ColumnCount: structErr.ColumnCount,
			Required:    structErr.Required,
			Message:     structErr.Message,
			Suggestion:  structErr.Suggestion,
			Err:         structErr.StatementError,
		}
		switch {
		case structErr.Kind == errors.CodeEmptyOrShort:
			d.Status = StatusEmptyOrShort
		case structErr.Stage == errors.StageMerge:
			d.Status = StatusIndexMismatchMerge
		default:
			d.Status = StatusIndexMismatchSelection
		}
		return d
	}

	stmtErr := errors.WrapIfNeeded(err, errors.CategoryRead, errors.CodeReadFailed, err.Error())
	return &Diagnostic{
		File:       file,
		Status:     StatusReadFailed,
		Stage:      errors.StageRead,
		Message:    stmtErr.Message,
		Suggestion: stmtErr.Suggestion,
		Err:        stmtErr,
	}
}
