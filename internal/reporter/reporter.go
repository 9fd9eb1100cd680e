// Package reporter renders treatment and consolidation results for operators.
//
// Supported output formats:
//   - Console: human-readable sections for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: one line per file or per bank, for spreadsheet applications
//
// Report types available:
//   - Treatment reports: which files were treated and why the others failed
//   - Consolidation reports: sources, fallback bank codes and per-bank totals
//
// Example usage:
//
//	generator, err := reporter.NewReportGenerator(reporter.DefaultReportConfig())
//	err = generator.GenerateTreatmentReport(batch, os.Stdout)
//	err = generator.GenerateConsolidationReport(result, "Consolidado_Bancos.xlsx", os.Stdout)
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"bank-statement-consolidator/internal/consolidator"
	"bank-statement-consolidator/internal/treatment"
	"bank-statement-consolidator/pkg/errors"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	// IncludeDiagnosticColumns lists the observed columns of failed files
	IncludeDiagnosticColumns bool `json:"include_diagnostic_columns"`
	// IncludeStats prints reconstruction statistics per treated file
	IncludeStats bool `json:"include_stats"`
	// MaxItems caps console lists; zero means no cap
	MaxItems int `json:"max_items"`

	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:                   FormatConsole,
		IncludeDiagnosticColumns: true,
		IncludeStats:             false,
		MaxItems:                 50,
		CSVDelimiter:             ',',
		CSVHeaders:               true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.MaxItems < 0 {
		return fmt.Errorf("max items cannot be negative, got %d", c.MaxItems)
	}

	if c.Format == FormatCSV && c.CSVDelimiter == 0 {
		return fmt.Errorf("csv delimiter must be set for csv output")
	}

	return nil
}

// ReportGenerator generates reports in the configured format
type ReportGenerator struct {
	config *ReportConfig
	now    func() time.Time
}

// NewReportGenerator creates a new report generator with the specified configuration
func NewReportGenerator(config *ReportConfig) (*ReportGenerator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &ReportGenerator{
		config: config,
		now:    time.Now,
	}, nil
}

// GetConfiguration returns the current configuration
func (rg *ReportGenerator) GetConfiguration() *ReportConfig {
	return rg.config
}

// GenerateTreatmentReport writes the outcome of a treatment phase
func (rg *ReportGenerator) GenerateTreatmentReport(batch *treatment.BatchResult, writer io.Writer) error {
	if batch == nil {
		return fmt.Errorf("treatment result cannot be nil")
	}

	switch rg.config.Format {
	case FormatConsole:
		return rg.treatmentConsole(batch, writer)
	case FormatJSON:
		return rg.writeJSON(writer, map[string]interface{}{
			"generated_at": rg.now(),
			"session_id":   batch.SessionID,
			"treated":      batch.Treated,
			"failed":       batch.Failed,
			"cancelled":    batch.Cancelled,
			"duration":     batch.Duration.String(),
			"results":      batch.Results,
			"failures":     batch.ErrorSummary().ByCategory,
		})
	case FormatCSV:
		return rg.treatmentCSV(batch, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

// GenerateConsolidationReport writes the outcome of a consolidation. A nil
// result reports that no treated file was available.
func (rg *ReportGenerator) GenerateConsolidationReport(result *consolidator.Result, output string, writer io.Writer) error {
	switch rg.config.Format {
	case FormatConsole:
		return rg.consolidationConsole(result, output, writer)
	case FormatJSON:
		payload := map[string]interface{}{
			"generated_at": rg.now(),
			"output":       output,
		}
		if result == nil {
			payload["rows"] = 0
			payload["sources"] = []consolidator.Source{}
		} else {
			payload["rows"] = result.TotalRows()
			payload["sources"] = result.Sources
			payload["summary"] = result.Summary
			payload["fallbacks"] = len(result.Fallbacks())
		}
		return rg.writeJSON(writer, payload)
	case FormatCSV:
		return rg.consolidationCSV(result, writer)
	default:
		return fmt.Errorf("unsupported output format: %s", rg.config.Format)
	}
}

func (rg *ReportGenerator) treatmentConsole(batch *treatment.BatchResult, writer io.Writer) error {
	total := len(batch.Results)

	fmt.Fprintf(writer, "TREATMENT REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", rg.now().Format(time.RFC3339))
	fmt.Fprintf(writer, "Session:   %s\n", batch.SessionID)
	fmt.Fprintf(writer, "Duration:  %v\n\n", batch.Duration)

	fmt.Fprintf(writer, "=== SUMMARY ===\n")
	fmt.Fprintf(writer, "Files:   %d\n", total)
	fmt.Fprintf(writer, "Treated: %d (%.1f%%)\n", batch.Treated, percentage(batch.Treated, total))
	fmt.Fprintf(writer, "Failed:  %d (%.1f%%)\n", batch.Failed, percentage(batch.Failed, total))
	if batch.Cancelled {
		fmt.Fprintf(writer, "Cancelled before every file was treated\n")
	}
	fmt.Fprintf(writer, "\n")

	if batch.Treated > 0 {
		fmt.Fprintf(writer, "=== TREATED FILES ===\n")
		shown := 0
		for _, r := range batch.Results {
			if !r.OK() {
				continue
			}
			shown++
			if rg.truncated(writer, shown, batch.Treated) {
				break
			}
			fmt.Fprintf(writer, "  %d. %s -> %s (%d rows)\n", shown, r.File, r.Treated.SuggestedName, r.Treated.Rows())
			if rg.config.IncludeStats && r.Treated.Stats != nil {
				s := r.Treated.Stats
				fmt.Fprintf(writer, "     %d input rows, %d continuations merged, %d orphans dropped\n",
					s.InputRows, s.ContinuationRows, s.OrphanRows)
			}
		}
		fmt.Fprintf(writer, "\n")
	}

	if batch.Failed > 0 {
		fmt.Fprintf(writer, "=== FAILED FILES ===\n")
		for i, d := range batch.Diagnostics() {
			if rg.truncated(writer, i+1, batch.Failed) {
				break
			}
			fmt.Fprintf(writer, "  %d. %s: %s\n", i+1, d.File, d.Status)
			fmt.Fprintf(writer, "     Error: %s\n", d.Message)
			if d.ColumnCount > 0 {
				fmt.Fprintf(writer, "     Columns read: %d", d.ColumnCount)
				if d.Required > 0 {
					fmt.Fprintf(writer, " (needs %d)", d.Required)
				}
				fmt.Fprintf(writer, "\n")
			}
			if rg.config.IncludeDiagnosticColumns && len(d.Columns) > 0 {
				fmt.Fprintf(writer, "     Column list: [%s]\n", strings.Join(d.Columns, ", "))
			}
			if d.Suggestion != "" {
				fmt.Fprintf(writer, "     Suggestion: %s\n", d.Suggestion)
			}
		}
		summary := batch.ErrorSummary()
		fmt.Fprintf(writer, "\nFailures by category: %s\n", categoryCounts(summary))
		if summary.HasCode(errors.CodeIndexMismatch) {
			fmt.Fprintf(writer, "Some exports have fewer columns than the bank layout; re-export them without hiding columns.\n")
		}
	}

	return nil
}

func (rg *ReportGenerator) treatmentCSV(batch *treatment.BatchResult, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		headers := []string{"File", "Kind", "Status", "Suggested_Name", "Rows", "Total_Colunas", "Erro"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	for _, r := range batch.Results {
		var record []string
		if r.OK() {
			record = []string{r.File, string(r.Kind), "", r.Treated.SuggestedName, strconv.Itoa(r.Treated.Rows()), "", ""}
		} else {
			d := r.Diagnostic
			record = []string{r.File, string(r.Kind), string(d.Status), "", "", strconv.Itoa(d.ColumnCount), d.Message}
		}
		if err := csvWriter.Write(record); err != nil {
			return fmt.Errorf("failed to write treatment record: %w", err)
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (rg *ReportGenerator) consolidationConsole(result *consolidator.Result, output string, writer io.Writer) error {
	fmt.Fprintf(writer, "CONSOLIDATION REPORT\n")
	fmt.Fprintf(writer, "Generated: %s\n", rg.now().Format(time.RFC3339))

	if result == nil {
		fmt.Fprintf(writer, "\nNo treated files available; nothing was consolidated.\n")
		return nil
	}

	if output != "" {
		fmt.Fprintf(writer, "Output:    %s\n", output)
	}
	fmt.Fprintf(writer, "Rows:      %d from %d files\n\n", result.TotalRows(), len(result.Sources))

	fmt.Fprintf(writer, "=== SOURCES ===\n")
	for i, src := range result.Sources {
		if rg.truncated(writer, i+1, len(result.Sources)) {
			break
		}
		fmt.Fprintf(writer, "  %d. %s -> Bank %s (%d rows)", i+1, src.Name, src.Bank, src.Rows)
		if src.Fallback {
			fmt.Fprintf(writer, " [fallback]")
		}
		fmt.Fprintf(writer, "\n")
	}
	fmt.Fprintf(writer, "\n")

	fmt.Fprintf(writer, "=== BANKS ===\n")
	for _, s := range result.Summary {
		fmt.Fprintf(writer, "  %-10s files: %-3d rows: %-6d Débito total: %s", s.Bank, s.Files, s.Rows, s.DebitTotal.StringFixed(2))
		if s.Unparsed > 0 {
			fmt.Fprintf(writer, " (%d unparsed)", s.Unparsed)
		}
		fmt.Fprintf(writer, "\n")
	}

	if fallbacks := result.Fallbacks(); len(fallbacks) > 0 {
		fmt.Fprintf(writer, "\n=== FALLBACK BANK CODES ===\n")
		fmt.Fprintf(writer, "No mapping matched these files; the code was taken from the filename prefix.\n")
		for _, src := range fallbacks {
			fmt.Fprintf(writer, "  - %s -> %s\n", src.Name, src.Bank)
		}
	}

	return nil
}

func (rg *ReportGenerator) consolidationCSV(result *consolidator.Result, writer io.Writer) error {
	csvWriter := csv.NewWriter(writer)
	csvWriter.Comma = rg.config.CSVDelimiter

	if rg.config.CSVHeaders {
		headers := []string{"Source", "Bank", "Match", "Fallback", "Rows"}
		if err := csvWriter.Write(headers); err != nil {
			return fmt.Errorf("failed to write CSV headers: %w", err)
		}
	}

	if result != nil {
		for _, src := range result.Sources {
			record := []string{src.Name, src.Bank, src.Match, strconv.FormatBool(src.Fallback), strconv.Itoa(src.Rows)}
			if err := csvWriter.Write(record); err != nil {
				return fmt.Errorf("failed to write source record: %w", err)
			}
		}
	}

	csvWriter.Flush()
	return csvWriter.Error()
}

func (rg *ReportGenerator) writeJSON(writer io.Writer, payload interface{}) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}

// truncated prints a notice and reports true once n passes MaxItems
func (rg *ReportGenerator) truncated(writer io.Writer, n, total int) bool {
	if rg.config.MaxItems == 0 || n <= rg.config.MaxItems {
		return false
	}
	fmt.Fprintf(writer, "  ... and %d more\n", total-rg.config.MaxItems)
	return true
}

// categoryCounts formats a summary as "read: 1, structure: 2"
func categoryCounts(summary *errors.ErrorSummary) string {
	parts := make([]string, 0, len(summary.ByCategory))
	for category, count := range summary.ByCategory {
		parts = append(parts, fmt.Sprintf("%s: %d", category, count))
	}
	sort.Strings(parts)
	return strings.Join(parts, ", ")
}

func percentage(part, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(part) / float64(total) * 100.0
}
