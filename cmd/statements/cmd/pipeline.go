package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bank-statement-consolidator/cmd/statements/config"
	"bank-statement-consolidator/internal/consolidator"
	"bank-statement-consolidator/internal/reporter"
	"bank-statement-consolidator/internal/serializer"
	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/internal/tagger"
	"bank-statement-consolidator/internal/treatment"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// spreadsheetExt is the extension picked up when a directory is given
const spreadsheetExt = ".xlsx"

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return errors.FileError(errors.CodeFileNotFound, filePath, err).
			WithContext("description", description)
	}
	if err != nil {
		return errors.FileError(errors.CodeFilePermission, filePath, err).
			WithContext("description", description)
	}

	if info.IsDir() {
		return errors.FileError(errors.CodeDirectoryError, filePath, fmt.Errorf("%s is a directory, expected a file", description))
	}

	return nil
}

// expandInputs resolves the command arguments into spreadsheet paths. A
// directory contributes its .xlsx files in name order.
func expandInputs(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, validateFileExists(arg, "input file")
		}

		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, errors.FileError(errors.CodeDirectoryError, arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), spreadsheetExt) {
				continue
			}
			// Excel lock files
			if strings.HasPrefix(entry.Name(), "~$") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}

	if len(paths) == 0 {
		return nil, errors.ConfigurationError(errors.CodeMissingConfig, "files", strings.Join(args, ", "), nil).
			WithSuggestion("pass at least one .xlsx file or a directory containing them")
	}

	return paths, nil
}

// readSourceFiles loads every input into memory under its base name
func readSourceFiles(paths []string) ([]treatment.SourceFile, error) {
	files := make([]treatment.SourceFile, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.FileError(errors.CodeFileNotFound, path, err)
			}
			return nil, errors.FileError(errors.CodeFilePermission, path, err)
		}
		files = append(files, treatment.SourceFile{Name: filepath.Base(path), Data: data})
	}
	return files, nil
}

// treatFiles runs the treatment phase over paths into a fresh session
func treatFiles(ctx context.Context, paths []string, showProgress bool, progressOut io.Writer) (*session.Session, *treatment.BatchResult, error) {
	files, err := readSourceFiles(paths)
	if err != nil {
		return nil, nil, err
	}

	treater, err := treatment.NewTreater(nil)
	if err != nil {
		return nil, nil, err
	}

	if showProgress {
		treater.AddProgressCallback(func(p *treatment.Progress) {
			fmt.Fprintf(progressOut, "\r[%d/%d] %s (%.1f%% complete)", p.Completed, p.Total, p.CurrentFile, p.Percent)
			if p.Completed == p.Total {
				fmt.Fprintln(progressOut)
			}
		})
	}

	s := session.New()
	batch, err := treater.RunTreatmentPhase(ctx, s, files)
	if err != nil {
		return s, batch, errors.Wrap(err, errors.CategoryInternal, errors.CodeUnexpectedError, "treatment interrupted").
			WithContext("treated", batch.Treated).
			WithContext("remaining", len(files)-len(batch.Results))
	}

	return s, batch, nil
}

// consolidateToFile consolidates the session and writes the workbook to
// output. A nil result means no file was treated and nothing is written.
func consolidateToFile(s *session.Session, output string) (*consolidator.Result, error) {
	mapping, err := config.CreateBankMapping(viper.GetViper())
	if err != nil {
		return nil, err
	}

	result, err := consolidator.New(tagger.New(mapping)).ConsolidateSession(s)
	if err != nil || result == nil {
		return nil, err
	}

	if dir := filepath.Dir(output); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.FileError(errors.CodeDirectoryError, dir, err)
		}
	}

	fields := logger.Fields{"output": output, "rows": result.TotalRows()}
	err = logger.TimedOperation("write consolidated workbook", logger.WithComponent("cli"), fields, func() error {
		return serializer.WriteFile(output, result.Table)
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// writeReport renders a report to --report-file or the command output
func writeReport(cmd *cobra.Command, render func(*reporter.SafeReportGenerator, io.Writer) error) error {
	reportConfig, err := config.CreateReportConfig(viper.GetString(config.KeyReportFormat), viper.GetBool(config.KeyVerbose))
	if err != nil {
		return err
	}

	generator, err := reporter.NewSafeReportGenerator(reportConfig, logger.GetGlobalLogger())
	if err != nil {
		return err
	}

	if path := viper.GetString(config.KeyReportFile); path != "" {
		return generator.WriteReportFile(path, func(w io.Writer) error {
			return render(generator, w)
		})
	}

	return render(generator, cmd.OutOrStdout())
}

// noFilesTreated is returned when every input failed treatment. The batch's
// error summary is kept as cause so the exit code reflects the worst failure.
func noFilesTreated(batch *treatment.BatchResult) error {
	summary := batch.ErrorSummary()
	suggestion := "see the failed files in the report above for the columns read from each sheet"
	if !summary.HasCategory(errors.CategoryStructure) {
		suggestion = "check that the inputs are .xlsx bank exports and not other documents"
	}

	return errors.Wrap(summary, errors.CategoryRead, errors.CodeReadFailed,
		fmt.Sprintf("none of the %d files could be treated", len(batch.Results))).
		WithSuggestion(suggestion)
}
