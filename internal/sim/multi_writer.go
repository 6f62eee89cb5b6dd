package sim

import "degradesim/internal/model"

// MultiWriter fan-outs step rows and summaries to multiple writers.
type MultiWriter struct {
	writers []StepWriter
}

// NewMultiWriter creates a new MultiWriter. Nil writers are skipped.
func NewMultiWriter(ws ...StepWriter) *MultiWriter {
	mw := &MultiWriter{}
	for _, w := range ws {
		if w != nil {
			mw.writers = append(mw.writers, w)
		}
	}
	return mw
}

// Len returns the number of wrapped writers.
func (mw *MultiWriter) Len() int { return len(mw.writers) }

// WriteStep sends a step row to all writers.
func (mw *MultiWriter) WriteStep(row model.StepRow) error {
	for _, w := range mw.writers {
		if err := w.WriteStep(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteSteps sends multiple step rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteSteps(rows []model.StepRow) error {
	for _, w := range mw.writers {
		if bw, ok := w.(batchStepWriter); ok {
			if err := bw.WriteSteps(rows); err != nil {
				return err
			}
			continue
		}
		for _, r := range rows {
			if err := w.WriteStep(r); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteSummary forwards the summary to every writer that accepts one.
func (mw *MultiWriter) WriteSummary(s model.RunSummary) error {
	for _, w := range mw.writers {
		if sw, ok := w.(SummaryWriter); ok {
			if err := sw.WriteSummary(s); err != nil {
				return err
			}
		}
	}
	return nil
}
