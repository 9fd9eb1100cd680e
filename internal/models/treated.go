package models

import "fmt"

// ReconstructionStats describes one pass of continuation-row merging
type ReconstructionStats struct {
	InputRows        int `json:"input_rows"`
	MainRows         int `json:"main_rows"`
	ContinuationRows int `json:"continuation_rows"`
	OrphanRows       int `json:"orphan_rows"`
	MergedCells      int `json:"merged_cells"`
	OutputRows       int `json:"output_rows"`
}

// TreatedFile is a successfully normalized statement, ready for consolidation
type TreatedFile struct {
	OriginalName  string               `json:"original_name"`
	SuggestedName string               `json:"suggested_name"`
	Table         *Table               `json:"-"`
	Stats         *ReconstructionStats `json:"stats,omitempty"`
}

// NewTreatedFile creates a TreatedFile for a normalized table
func NewTreatedFile(original, suggested string, table *Table) *TreatedFile {
	return &TreatedFile{
		OriginalName:  original,
		SuggestedName: suggested,
		Table:         table,
	}
}

// Validate checks that the file carries a canonical table and a name
func (tf *TreatedFile) Validate() error {
	if tf.SuggestedName == "" {
		return fmt.Errorf("treated file has no suggested name")
	}
	if !IsCanonical(tf.Table) {
		return fmt.Errorf("treated file %s does not carry the canonical columns", tf.SuggestedName)
	}
	return nil
}

// Rows returns the number of records in the treated table
func (tf *TreatedFile) Rows() int {
	if tf.Table == nil {
		return 0
	}
	return tf.Table.Len()
}
