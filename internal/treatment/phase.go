package treatment

import (
	"context"
	"time"

	"bank-statement-consolidator/internal/session"
	"bank-statement-consolidator/pkg/errors"
	"bank-statement-consolidator/pkg/logger"
)

// Progress reports the state of a treatment phase after each file
type Progress struct {
	Total       int           `json:"total"`
	Completed   int           `json:"completed"`
	Failed      int           `json:"failed"`
	CurrentFile string        `json:"current_file"`
	Percent     float64       `json:"percent"`
	Elapsed     time.Duration `json:"elapsed"`
}

// ProgressCallback is called to report treatment progress
type ProgressCallback func(*Progress)

// AddProgressCallback adds a progress callback function
func (t *Treater) AddProgressCallback(callback ProgressCallback) {
	t.progressCallbacks = append(t.progressCallbacks, callback)
}

// BatchResult is the outcome of a treatment phase
type BatchResult struct {
	SessionID string        `json:"session_id"`
	Results   []Result      `json:"results"`
	Treated   int           `json:"treated"`
	Failed    int           `json:"failed"`
	Duration  time.Duration `json:"duration"`
	// Cancelled is set when the context ended before every file was treated
	Cancelled bool `json:"cancelled,omitempty"`
}

// Diagnostics returns the diagnostics of the failed files, in input order
func (b *BatchResult) Diagnostics() []*Diagnostic {
	var out []*Diagnostic
	for _, r := range b.Results {
		if r.Diagnostic != nil {
			out = append(out, r.Diagnostic)
		}
	}
	return out
}

// ErrorSummary summarizes the errors behind the failed files
func (b *BatchResult) ErrorSummary() *errors.ErrorSummary {
	var errs []*errors.StatementError
	for _, d := range b.Diagnostics() {
		if d.Err != nil {
			errs = append(errs, d.Err)
		}
	}
	return errors.NewErrorSummary(errs)
}

// RunTreatmentPhase resets the session and treats files in order, adding
// every treated file to it. A failed file never stops the batch. The context
// is checked between files only; a file in progress always completes.
func (t *Treater) RunTreatmentPhase(ctx context.Context, s *session.Session, files []SourceFile) (*BatchResult, error) {
	s.Reset()

	tracker := logger.NewProgressTracker(logger.ProgressConfig{
		Operation: "treatment",
		Total:     int64(len(files)),
		Logger:    t.logger,
	})

	batch := &BatchResult{
		SessionID: s.ID(),
		Results:   make([]Result, 0, len(files)),
	}
	start := time.Now()

	t.logger.WithFields(logger.Fields{
		"session": batch.SessionID,
		"files":   len(files),
	}).Info("Starting treatment phase")

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			batch.Cancelled = true
			batch.Duration = time.Since(start)
			t.logger.WithError(err).Warn("Treatment phase cancelled")
			return batch, err
		}

		result := t.TreatFile(file)
		batch.Results = append(batch.Results, result)
		if result.OK() {
			s.Add(result.Treated)
			batch.Treated++
		} else {
			batch.Failed++
		}
		tracker.Increment(!result.OK())

		t.notifyProgress(&Progress{
			Total:       len(files),
			Completed:   len(batch.Results),
			Failed:      batch.Failed,
			CurrentFile: file.Name,
			Percent:     float64(len(batch.Results)) / float64(len(files)) * 100,
			Elapsed:     time.Since(start),
		})
	}

	tracker.Complete()
	batch.Duration = time.Since(start)
	return batch, nil
}

func (t *Treater) notifyProgress(progress *Progress) {
	for _, callback := range t.progressCallbacks {
		callback(progress)
	}
}
