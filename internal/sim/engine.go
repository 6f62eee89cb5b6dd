// Simulator advancing component degradation step by step
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"degradesim/internal/config"
	"degradesim/internal/logging"
	"degradesim/internal/model"
)

// ErrInvariant signals an internal bug: the engine produced a state the model
// forbids.
var ErrInvariant = errors.New("simulation invariant violated")

const (
	defaultStepInterval = time.Second
	defaultBatchSize    = 256
)

// Engine runs one simulation. It owns its random source and state buffer and
// must not be shared between goroutines.
type Engine struct {
	params       *config.Resolved
	rand         *rand.Rand
	seed         int64
	writer       StepWriter
	now          func() time.Time
	stepInterval time.Duration
	batchSize    int
	runID        string

	states []int
	run    *run
	batch  []model.StepRow
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source. The resolved seed is then only reported.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) { e.rand = r }
}

// WithWriter streams step rows and the run summary to w.
func WithWriter(w StepWriter) Option {
	return func(e *Engine) { e.writer = w }
}

// WithClock overrides the clock used for the run start and derived seeds.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithStepInterval sets the wall-clock spacing between step timestamps.
func WithStepInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.stepInterval = d
		}
	}
}

// WithBatchSize sets how many step rows are buffered before a flush.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithRunID sets the run identifier instead of a random UUID.
func WithRunID(id string) Option {
	return func(e *Engine) { e.runID = id }
}

// NewEngine creates an engine for the resolved parameters.
func NewEngine(params *config.Resolved, opts ...Option) *Engine {
	e := &Engine{
		params:       params,
		now:          time.Now,
		stepInterval: defaultStepInterval,
		batchSize:    defaultBatchSize,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.seed = params.Seed
	if e.rand == nil {
		if e.seed == 0 {
			e.seed = e.now().UnixNano()
		}
		e.rand = rand.New(rand.NewSource(e.seed))
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}
	return e
}

// Seed returns the seed the engine's random source was built from.
func (e *Engine) Seed() int64 { return e.seed }

// RunID returns the identifier attached to rows and results.
func (e *Engine) RunID() string { return e.runID }

// Simulate resolves cfg and runs it on a fresh engine.
func Simulate(ctx context.Context, cfg *config.Config, opts ...Option) (*Results, error) {
	params, err := cfg.Resolve()
	if err != nil {
		return nil, err
	}
	return NewEngine(params, opts...).Run(ctx)
}

// Run executes all steps and returns the assembled results. Each call starts
// from a clean state buffer and zeroed counters.
func (e *Engine) Run(ctx context.Context) (*Results, error) {
	log := logging.FromContext(ctx)
	steps := e.params.Steps
	comps := e.params.Components
	if steps <= 0 || len(comps) == 0 {
		return nil, fmt.Errorf("%w: run needs positive steps and at least one component", config.ErrInvalidConfig)
	}

	log.Info("starting simulation", "run_id", e.runID, "seed", e.seed, "steps", steps, "components", len(comps))
	start := e.now().UTC()
	e.states = make([]int, len(comps))
	e.run = newRun(len(comps), steps)
	e.batch = nil
	interventionCost := e.params.InterventionCost()

	for t := 0; t < steps; t++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		e.degrade()
		if err := e.checkStates(t); err != nil {
			return nil, err
		}
		e.run.record(t, e.states)

		sig := Observe(e.states, comps)
		e.run.signals[t] = sig

		row := model.StepRow{
			RunID:          e.runID,
			Step:           t,
			States:         e.run.column(t),
			Signal:         sig,
			InspectionCost: e.params.InspectionCost,
			Timestamp:      start.Add(time.Duration(t) * e.stepInterval),
		}

		if isFailure(sig) {
			e.run.failures++
			e.run.downtime++
			row.Failure = true
			row.FailureCost = e.params.FailureCost
		}
		if shouldMaintain(sig) {
			e.maintain()
			e.run.interventions++
			e.run.maintenanceEvents = append(e.run.maintenanceEvents, t)
			row.Maintenance = true
			row.MaintenanceCost = interventionCost
		}

		e.run.maintenanceCosts[t] = row.MaintenanceCost
		e.run.failureCosts[t] = row.FailureCost
		e.run.inspectionCosts[t] = row.InspectionCost
		if t > 0 {
			e.run.cumulativeCosts[t] = e.run.cumulativeCosts[t-1] + row.StepCost()
		} else {
			e.run.cumulativeCosts[t] = row.StepCost()
		}
		row.CumulativeCost = e.run.cumulativeCosts[t]

		log.Debug("step", "run_id", e.runID, "step", t, "signal", sig, "states", row.States)
		e.emit(ctx, row)
	}
	e.flush(ctx)

	if e.run.interventions != e.run.failures {
		return nil, fmt.Errorf("%w: %d interventions for %d failures", ErrInvariant, e.run.interventions, e.run.failures)
	}

	res := assemble(e.runID, e.seed, e.params, e.run)
	if sw, ok := e.writer.(SummaryWriter); ok {
		if err := sw.WriteSummary(res.Summary(e.now().UTC())); err != nil {
			log.Error("summary write failed", "run_id", e.runID, "err", err)
		}
	}
	log.Info("simulation finished", "run_id", e.runID,
		"failures", res.FailureCount,
		"interventions", res.InterventionCount,
		"total_cost", res.Costs.TotalCost)
	return res, nil
}

// degrade draws one Bernoulli trial per non-failed component.
func (e *Engine) degrade() {
	for i, c := range e.params.Components {
		if e.states[i] < c.K && e.rand.Float64() < c.P {
			e.states[i]++
		}
	}
}

// maintain resets every component to level 0.
func (e *Engine) maintain() {
	for i := range e.states {
		e.states[i] = 0
	}
}

func (e *Engine) checkStates(t int) error {
	for i, c := range e.params.Components {
		if e.states[i] < 0 || e.states[i] > c.K {
			return fmt.Errorf("%w: component %q at level %d exceeds threshold %d at step %d",
				ErrInvariant, c.Name, e.states[i], c.K, t)
		}
	}
	return nil
}

func (e *Engine) emit(ctx context.Context, row model.StepRow) {
	if e.writer == nil {
		return
	}
	e.batch = append(e.batch, row)
	if len(e.batch) >= e.batchSize {
		e.flush(ctx)
	}
}

// flush hands buffered rows to the writer, using batch mode if supported.
func (e *Engine) flush(ctx context.Context) {
	if e.writer == nil || len(e.batch) == 0 {
		return
	}
	log := logging.FromContext(ctx)
	if bw, ok := e.writer.(batchStepWriter); ok {
		if err := bw.WriteSteps(e.batch); err != nil {
			log.Error("batch write failed", "run_id", e.runID, "err", err)
		}
	} else {
		for _, row := range e.batch {
			if err := e.writer.WriteStep(row); err != nil {
				log.Error("write failed", "run_id", e.runID, "step", row.Step, "err", err)
			}
		}
	}
	e.batch = nil
}
