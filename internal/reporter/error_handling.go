package reporter

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"bank-statement-consolidator/internal/consolidator"
	"bank-statement-consolidator/internal/treatment"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// SafeReportGenerator wraps ReportGenerator with logging and a console
// fallback when the requested format fails
type SafeReportGenerator struct {
	*ReportGenerator
	logger logger.Logger
}

// NewSafeReportGenerator creates a new safe report generator with error handling
func NewSafeReportGenerator(config *ReportConfig, log logger.Logger) (*SafeReportGenerator, error) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	generator, err := NewReportGenerator(config)
	if err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"report-format",
			config.Format,
			err,
		).WithSuggestion("use one of: console, json, csv")
	}

	return &SafeReportGenerator{
		ReportGenerator: generator,
		logger:          log.WithComponent("reporter"),
	}, nil
}

// TreatmentReport writes a treatment report, falling back to console format
func (srg *SafeReportGenerator) TreatmentReport(batch *treatment.BatchResult, writer io.Writer) error {
	return srg.generate("treatment", writer, func(rg *ReportGenerator, w io.Writer) error {
		return rg.GenerateTreatmentReport(batch, w)
	})
}

// ConsolidationReport writes a consolidation report, falling back to console format
func (srg *SafeReportGenerator) ConsolidationReport(result *consolidator.Result, output string, writer io.Writer) error {
	return srg.generate("consolidation", writer, func(rg *ReportGenerator, w io.Writer) error {
		return rg.GenerateConsolidationReport(result, output, w)
	})
}

// generate renders into a buffer first so a failed format never leaves a
// partial report on the writer
func (srg *SafeReportGenerator) generate(kind string, writer io.Writer, render func(*ReportGenerator, io.Writer) error) error {
	if writer == nil {
		return errors.InternalError(errors.CodeUnexpectedError, kind+" report", fmt.Errorf("no output writer"))
	}

	log := srg.logger.WithFields(logger.Fields{
		"report": kind,
		"format": srg.config.Format,
		"output": getWriterDescription(writer),
	})
	log.Debug("Starting report generation")

	var buf bytes.Buffer
	err := render(srg.ReportGenerator, &buf)
	if err != nil && srg.config.Format != FormatConsole {
		log.WithError(err).Warn("Report generation failed, falling back to console format")

		fallbackConfig := *srg.config
		fallbackConfig.Format = FormatConsole
		fallback, ferr := NewReportGenerator(&fallbackConfig)
		if ferr == nil {
			buf.Reset()
			fmt.Fprintf(&buf, "NOTE: Report generated in fallback format due to error with requested format\n")
			fmt.Fprintf(&buf, "Original error: %v\n\n", err)
			err = render(fallback, &buf)
		}
	}
	if err != nil {
		return srg.wrapGenerationError(kind, err)
	}

	if _, err := buf.WriteTo(writer); err != nil {
		return srg.wrapGenerationError(kind, err)
	}

	log.Debug("Report generation completed")
	return nil
}

// WriteReportFile creates path and writes a report into it
func (srg *SafeReportGenerator) WriteReportFile(path string, write func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.FileError(errors.CodeDirectoryError, dir, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return errors.FileError(errors.CodeWriteFailed, path, err)
	}
	defer file.Close()

	return write(file)
}

func (srg *SafeReportGenerator) wrapGenerationError(kind string, err error) error {
	if stmtErr, ok := errors.AsStatementError(err); ok {
		return stmtErr
	}

	return errors.InternalError(
		errors.CodeUnexpectedError,
		kind+" report",
		err,
	).WithSuggestion("check the output destination and report format settings")
}

func getWriterDescription(writer io.Writer) string {
	switch w := writer.(type) {
	case *os.File:
		if w.Name() != "" {
			return fmt.Sprintf("file:%s", w.Name())
		}
		return "file:unnamed"
	default:
		return fmt.Sprintf("writer:%T", writer)
	}
}
