package errors

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Stage identifies the point of the treatment at which a layout check failed
type Stage string

const (
	StageRead           Stage = "read"
	StageMerge          Stage = "merge"
	StageFinalSelection Stage = "final_selection"
)

// StructureError reports a spreadsheet whose layout does not match the
// fixed export format. It carries the observed columns for manual diagnosis.
type StructureError struct {
	*StatementError
	Kind        ErrorCode `json:"kind"`
	Stage       Stage     `json:"stage"`
	Columns     []string  `json:"columns"`
	ColumnCount int       `json:"column_count"`
	// Required is the minimum column count the failing stage needed, zero
	// when the failure is not about width.
	Required int `json:"required,omitempty"`
}

// Error implements the error interface with the location appended
func (e *StructureError) Error() string {
	parts := []string{e.StatementError.Error()}
	if file, ok := e.Context["file"].(string); ok && file != "" {
		parts = append(parts, fmt.Sprintf("at %s (%s)", filepath.Base(file), e.Stage))
	}
	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *StructureError) GetDetailedError() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))
	lines = append(lines, fmt.Sprintf("  → Stage: %s", e.Stage))
	lines = append(lines, fmt.Sprintf("  → Columns read: %d", e.ColumnCount))
	if e.Required > 0 {
		lines = append(lines, fmt.Sprintf("  → Columns required: %d", e.Required))
	}
	if len(e.Columns) > 0 {
		lines = append(lines, fmt.Sprintf("  → Column list: [%s]", strings.Join(e.Columns, ", ")))
	}
	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  → Suggestion: %s", e.Suggestion))
	}

	return strings.Join(lines, "\n")
}

func newStructureError(code ErrorCode, stage Stage, file string, columns []string, message string) *StructureError {
	observed := make([]string, len(columns))
	copy(observed, columns)

	base := New(CategoryStructure, code, message).
		WithContext("file", file).
		WithContext("stage", string(stage)).
		WithContext("total_colunas", len(observed))

	return &StructureError{
		StatementError: base,
		Kind:           code,
		Stage:          stage,
		Columns:        observed,
		ColumnCount:    len(observed),
	}
}

// EmptyOrShortError reports a sheet with no data rows or fewer than minRows
func EmptyOrShortError(file string, columns []string, rows, minRows int) *StructureError {
	message := fmt.Sprintf("spreadsheet %s is empty or too short: %d data rows, need at least %d", file, rows, minRows)
	err := newStructureError(CodeEmptyOrShort, StageRead, file, columns, message)
	err.WithContext("rows", rows)
	err.WithSuggestion("re-export the statement and check that it contains transactions below the header")
	return err
}

// IndexMismatchError reports a sheet narrower than a stage's fixed column positions
func IndexMismatchError(file string, stage Stage, columns []string, required int) *StructureError {
	message := fmt.Sprintf("spreadsheet %s has %d columns, %s needs at least %d", file, len(columns), stage, required)
	err := newStructureError(CodeIndexMismatch, stage, file, columns, message)
	err.Required = required
	err.WithContext("required_columns", required)
	err.WithSuggestion("the export layout drifted from the expected format; review the fixed column positions against the columns read")
	return err
}

// AsStructureError extracts a StructureError from an error chain
func AsStructureError(err error) (*StructureError, bool) {
	var structureErr *StructureError
	if errors.As(err, &structureErr) {
		return structureErr, true
	}
	return nil, false
}
