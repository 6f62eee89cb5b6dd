package sim

import (
	"degradesim/internal/config"
	"degradesim/internal/model"
)

// collectWriter records every row and summary it receives.
type collectWriter struct {
	rows      []model.StepRow
	summaries []model.RunSummary
	batches   int
}

func (c *collectWriter) WriteStep(r model.StepRow) error {
	c.rows = append(c.rows, r)
	return nil
}

func (c *collectWriter) WriteSummary(s model.RunSummary) error {
	c.summaries = append(c.summaries, s)
	return nil
}

// batchCollectWriter additionally supports batch mode.
type batchCollectWriter struct {
	collectWriter
}

func (b *batchCollectWriter) WriteSteps(rows []model.StepRow) error {
	b.batches++
	b.rows = append(b.rows, rows...)
	return nil
}

func uniform(c, steps, k int, p float64) *config.Resolved {
	cfg := config.Default()
	cfg.C = c
	cfg.SimulationSteps = steps
	cfg.K = k
	cfg.P = p
	r, err := cfg.Resolve()
	if err != nil {
		panic(err)
	}
	return r
}
