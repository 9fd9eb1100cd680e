package cmd

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// exitInterrupted follows the shell convention for SIGINT
const exitInterrupted = 130

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
	out     io.Writer
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.WithComponent("cli"),
		verbose: viper.GetBool(config.KeyVerbose),
		out:     os.Stderr,
	}
}

// HandleError prints err for the operator and returns the exit code
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	h.logger.WithError(err).Error("Command failed")

	if stderrors.Is(err, context.Canceled) {
		fmt.Fprintf(h.out, "Interrupted: %v\n", err)
		fmt.Fprintf(h.out, "Files treated before the interruption are not saved; run the command again.\n")
		return exitInterrupted
	}

	if structErr, ok := errors.AsStructureError(err); ok {
		fmt.Fprintf(h.out, "%s\n", structErr.GetDetailedError())
		fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(structErr.Category))
		return structErr.GetExitCode()
	}

	if stmtErr, ok := errors.AsStatementError(err); ok {
		return h.handleStatementError(stmtErr)
	}

	return h.handleGenericError(err)
}

// handleStatementError handles StatementError with detailed context
func (h *CLIErrorHandler) handleStatementError(err *errors.StatementError) int {
	fmt.Fprintf(h.out, "Error: %s\n", err.Message)

	if len(err.Context) > 0 {
		keys := make([]string, 0, len(err.Context))
		for key := range err.Context {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		fmt.Fprintf(h.out, "\nContext:\n")
		for _, key := range keys {
			fmt.Fprintf(h.out, "  %s: %v\n", key, err.Context[key])
		}
	}

	if err.Suggestion != "" {
		fmt.Fprintf(h.out, "\nSuggestion: %s\n", err.Suggestion)
	}

	exitCode := err.GetExitCode()

	var summary *errors.ErrorSummary
	if stderrors.As(err.Cause, &summary) {
		h.printErrorSummary(summary)
		if code := summary.GetExitCode(); code > exitCode {
			exitCode = code
		}
	}

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(h.out, "\nUnderlying error: %v\n", err.Cause)
	}

	fmt.Fprintf(h.out, "\n%s\n", h.getCategoryHelp(err.Category))

	return exitCode
}

// printErrorSummary lists the failures behind a batch error by category
func (h *CLIErrorHandler) printErrorSummary(summary *errors.ErrorSummary) {
	if summary.Total == 0 {
		return
	}

	categories := make([]string, 0, len(summary.ByCategory))
	for category := range summary.ByCategory {
		categories = append(categories, string(category))
	}
	sort.Strings(categories)

	fmt.Fprintf(h.out, "\nFailures (%d):\n", summary.Total)
	for _, category := range categories {
		fmt.Fprintf(h.out, "  %s: %d\n", category, summary.ByCategory[errors.ErrorCategory(category)])
	}

	if h.verbose {
		for _, sample := range summary.SampleErrors {
			fmt.Fprintf(h.out, "  - %s\n", sample.Message)
		}
	}
}

// handleGenericError handles errors outside the statement taxonomy, mostly
// cobra argument errors
func (h *CLIErrorHandler) handleGenericError(err error) int {
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(h.out, "Error: File not found\n")
		fmt.Fprintf(h.out, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(h.out, "Error: Permission denied\n")
		fmt.Fprintf(h.out, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(h.out, "Error: Insufficient disk space\n")
		fmt.Fprintf(h.out, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	fmt.Fprintf(h.out, "Error: %v\n", err)
	fmt.Fprintf(h.out, "Run 'statements --help' for usage.\n")

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure the workspace and output directories are writable`

	case errors.CategoryRead:
		return `Read error help:
• Open the file in a spreadsheet application to check it is not corrupted
• Save it again as .xlsx; other formats are not supported
• Re-download the export from the bank`

	case errors.CategoryStructure:
		return `Structure error help:
• The export layout differs from the expected bank format
• Compare the columns read with the export: the header is on row 7
• Re-export the statement without hiding or removing columns`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config or --bank-map
• Use 'statements <command> --help' to see all available options`

	default:
		return `For more help:
• Use 'statements --help' for general help
• Run again with --verbose --log-level debug for details
• Report bugs with the failing files and the error output`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if stderrors.Is(err, syscall.ENOSPC) {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
