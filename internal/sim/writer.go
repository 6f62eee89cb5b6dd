package sim

import "degradesim/internal/model"

// StepWriter is an interface to support different output writers.
type StepWriter interface {
	WriteStep(model.StepRow) error
}

// SummaryWriter receives the end-of-run summary.
type SummaryWriter interface {
	WriteSummary(model.RunSummary) error
}

// Optional: writers can also support batch mode
type batchStepWriter interface {
	WriteSteps([]model.StepRow) error
}
