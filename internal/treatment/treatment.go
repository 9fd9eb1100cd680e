// Package treatment runs the per-file pipeline that turns a raw bank export
// into a canonical statement table, and the treatment phase over a batch of
// files.
//
// Each file is read, its split rows are merged back and the canonical columns
// are selected. A file that fails at any step yields a Diagnostic instead of
// aborting the batch.
//
// Example usage:
//
//	treater, err := treatment.NewTreater(nil)
//	treater.AddProgressCallback(func(p *treatment.Progress) {
//		fmt.Printf("%d/%d %s\n", p.Completed, p.Total, p.CurrentFile)
//	})
//
//	batch, err := treater.RunTreatmentPhase(ctx, sess, files)
package treatment

import (
	"fmt"
	"time"

	"bank-statement-consolidator/internal/models"
	"bank-statement-consolidator/internal/parsers"
	"bank-statement-consolidator/internal/projector"
	"bank-statement-consolidator/internal/reconstructor"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// Treater treats bank export files one at a time
type Treater struct {
	reader        *parsers.SheetReader
	reconstructor *reconstructor.Reconstructor
	projector     *projector.Projector
	logger        logger.Logger

	progressCallbacks []ProgressCallback
}

// NewTreater creates a Treater reading files with the given configuration.
// A nil configuration uses the bank export format.
func NewTreater(readerConfig *parsers.ReaderConfig) (*Treater, error) {
	reader, err := parsers.NewSheetReader(readerConfig)
	if err != nil {
		return nil, err
	}

	return &Treater{
		reader:        reader,
		reconstructor: reconstructor.NewForExport(),
		projector:     projector.New(),
		logger:        logger.WithComponent("treatment"),
	}, nil
}

// TreatFile reads, reconstructs and projects one file. Failures, including
// unexpected panics, are returned as a failed Result and never propagate.
func (t *Treater) TreatFile(file SourceFile) (result Result) {
	start := time.Now()
	log := t.logger.WithField("file", file.Name)

	defer func() {
		if r := recover(); r != nil {
			err := errors.InternalError(errors.CodeUnexpectedError, "treatment", fmt.Errorf("%v", r))
			log.WithError(err).Error("Treatment panicked")
			result = Failed(Diagnose(file.Name, err))
		}
		result.Duration = time.Since(start)
	}()

	treated, err := t.treat(file)
	if err != nil {
		diagnostic := Diagnose(file.Name, err)
		log.WithFields(logger.Fields{
			"status":        diagnostic.Status,
			"total_colunas": diagnostic.ColumnCount,
		}).Warnf("File not treated: %s", diagnostic.Message)
		return Failed(diagnostic)
	}

	log.WithFields(logger.Fields{
		"suggested_name": treated.SuggestedName,
		"rows":           treated.Rows(),
	}).Info("File treated")

	return Succeeded(treated)
}

func (t *Treater) treat(file SourceFile) (*models.TreatedFile, error) {
	raw, _, err := t.reader.Read(file.Name, file.Data)
	if err != nil {
		return nil, err
	}

	merged, stats, err := t.reconstructor.Reconstruct(file.Name, raw)
	if err != nil {
		return nil, err
	}

	projected, err := t.projector.Project(file.Name, merged)
	if err != nil {
		return nil, err
	}

	treated := models.NewTreatedFile(file.Name, projector.SuggestName(file.Name), projected)
	treated.Stats = stats
	return treated, nil
}
