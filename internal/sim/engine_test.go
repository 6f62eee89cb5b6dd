package sim

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degradesim/internal/config"
	"degradesim/internal/model"
)

func TestEngine_SingleComponentAlwaysFails(t *testing.T) {
	cfg := config.Default()
	cfg.C, cfg.SimulationSteps, cfg.K, cfg.P = 1, 3, 1, 1
	res, err := Simulate(context.Background(), &cfg, WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	assert.Equal(t, [][]int{{1, 1, 1}}, res.ComponentStates)
	assert.Equal(t, []model.SensorSignal{model.SignalRed, model.SignalRed, model.SignalRed}, res.SensorSignals)
	assert.Equal(t, 3, res.FailureCount)
	assert.Equal(t, 3, res.InterventionCount)
	assert.Equal(t, []int{0, 1, 2}, res.MaintenanceEvents)
	assert.Equal(t, 3, res.DowntimeSteps)

	// one component at cost 100 plus 1000 labor, 5000 failure, 100 inspection per step
	assert.Equal(t, []float64{1100, 1100, 1100}, res.CostData.MaintenanceCosts)
	assert.Equal(t, []float64{5000, 5000, 5000}, res.CostData.FailureCosts)
	assert.Equal(t, []float64{100, 100, 100}, res.CostData.InspectionCosts)
	assert.Equal(t, []float64{6200, 12400, 18600}, res.CostData.CumulativeCosts)

	assert.Equal(t, model.CostBreakdown{
		MaintenanceCost:          3300,
		ComponentReplacementCost: 300,
		MaintenanceLaborCost:     3000,
		FailureCost:              15000,
		InspectionCost:           300,
		TotalCost:                18600,
	}, res.Costs)
	assert.Equal(t, model.Float(0), res.PerformanceMetrics.UptimePercentage)
	assert.Equal(t, model.Float(1), res.PerformanceMetrics.MTBF)
	assert.True(t, math.IsInf(float64(res.PerformanceMetrics.MaintenanceEfficiency), 1))
	assert.Equal(t, model.Float(0), res.PerformanceMetrics.FalseAlarmRate)
}

func TestEngine_ZeroProbabilityNeverFails(t *testing.T) {
	res, err := NewEngine(uniform(4, 250, 2, 0)).Run(context.Background())
	require.NoError(t, err)

	assert.Zero(t, res.FailureCount)
	assert.Zero(t, res.InterventionCount)
	assert.Empty(t, res.MaintenanceEvents)
	assert.Equal(t, model.Float(100), res.PerformanceMetrics.UptimePercentage)
	assert.Equal(t, model.Float(250), res.PerformanceMetrics.MTBF)
	for _, sig := range res.SensorSignals {
		assert.Equal(t, model.SignalGreen, sig)
	}
	assert.Equal(t, 25000.0, res.Costs.TotalCost)
	assert.InDelta(t, 250.0, float64(res.PerformanceMetrics.MaintenanceEfficiency), 1e-9)
}

func TestEngine_CertainDegradationThresholdOne(t *testing.T) {
	res, err := NewEngine(uniform(1, 40, 1, 1), WithRand(rand.New(rand.NewSource(9)))).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 40, res.FailureCount)
	assert.Equal(t, 40, res.InterventionCount)
}

func TestEngine_CertainDegradationHigherThreshold(t *testing.T) {
	// with p=1 and k=3 the component fails every third step
	res, err := NewEngine(uniform(1, 9, 3, 1)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, [][]int{{1, 2, 3, 1, 2, 3, 1, 2, 3}}, res.ComponentStates)
	assert.Equal(t, []int{2, 5, 8}, res.MaintenanceEvents)
	assert.Equal(t, []model.SensorSignal{
		model.SignalYellow, model.SignalYellow, model.SignalRed,
		model.SignalYellow, model.SignalYellow, model.SignalRed,
		model.SignalYellow, model.SignalYellow, model.SignalRed,
	}, res.SensorSignals)
	assert.Equal(t, model.Float(3), res.PerformanceMetrics.MTBF)
}

func TestEngine_Properties(t *testing.T) {
	comps := []config.ComponentSpec{
		{Name: "bearing", K: 3, P: 0.4, Cost: 50},
		{Name: "seal", K: 7, P: 0.15, Cost: 120},
		{Name: "motor", K: 2, P: 0.05, Cost: 900},
	}
	for seed := int64(1); seed <= 20; seed++ {
		cfg := config.Default()
		cfg.SimulationSteps = 200
		cfg.ComponentParams = comps
		cfg.Seed = seed
		res, err := Simulate(context.Background(), &cfg)
		require.NoError(t, err)

		require.Len(t, res.ComponentStates, len(comps))
		require.Len(t, res.SensorSignals, 200)
		for i, row := range res.ComponentStates {
			require.Len(t, row, 200)
			for _, s := range row {
				assert.GreaterOrEqual(t, s, 0)
				assert.LessOrEqual(t, s, comps[i].K)
			}
		}

		maintained := map[int]bool{}
		for _, ev := range res.MaintenanceEvents {
			maintained[ev] = true
		}
		for step := 0; step < res.Steps(); step++ {
			states := res.StateAt(step)
			red := false
			for i, s := range states {
				if s >= comps[i].K {
					red = true
				}
			}
			assert.Equal(t, red, res.SensorSignals[step] == model.SignalRed, "seed %d step %d", seed, step)
			assert.Equal(t, red, maintained[step])
			if red && step+1 < res.Steps() {
				// after a reset each component can climb at most one level
				for _, s := range res.StateAt(step + 1) {
					assert.LessOrEqual(t, s, 1)
				}
			}
		}

		assert.Equal(t, res.FailureCount, res.InterventionCount)
		assert.Zero(t, res.FalseAlarmCount)
		assert.Equal(t, model.Float(0), res.PerformanceMetrics.FalseAlarmRate)
		last := res.CostData.CumulativeCosts[res.Steps()-1]
		assert.InDelta(t, res.Costs.TotalCost, last, 1e-6)
		assert.InDelta(t, res.Costs.MaintenanceCost+res.Costs.FailureCost+res.Costs.InspectionCost, last, 1e-6)
	}
}

func TestEngine_SameSeedSameResults(t *testing.T) {
	p := uniform(5, 300, 4, 0.3)
	p.Seed = 1234
	a, err := NewEngine(p, WithRunID("a")).Run(context.Background())
	require.NoError(t, err)
	b, err := NewEngine(p, WithRunID("a")).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	p.Seed = 4321
	c, err := NewEngine(p, WithRunID("a")).Run(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, a.ComponentStates, c.ComponentStates)
}

func TestEngine_DerivesSeedFromClock(t *testing.T) {
	fixed := time.Unix(1700000000, 42)
	e := NewEngine(uniform(1, 10, 2, 0.5), WithClock(func() time.Time { return fixed }))
	assert.Equal(t, fixed.UnixNano(), e.Seed())
	res, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, fixed.UnixNano(), res.Seed)
	assert.NotEmpty(t, res.RunID)
}

func TestEngine_RunIsRepeatable(t *testing.T) {
	p := uniform(2, 50, 1, 1)
	e := NewEngine(p)
	first, err := e.Run(context.Background())
	require.NoError(t, err)
	second, err := e.Run(context.Background())
	require.NoError(t, err)
	// counters do not accumulate across runs
	assert.Equal(t, 50, first.FailureCount)
	assert.Equal(t, 50, second.FailureCount)
}

func TestEngine_StreamsRowsAndSummary(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	w := &collectWriter{}
	e := NewEngine(uniform(1, 5, 1, 1),
		WithWriter(w),
		WithRunID("run-1"),
		WithClock(func() time.Time { return start }),
		WithStepInterval(time.Minute),
		WithBatchSize(2),
	)
	res, err := e.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, w.rows, 5)
	for i, row := range w.rows {
		assert.Equal(t, "run-1", row.RunID)
		assert.Equal(t, i, row.Step)
		assert.Equal(t, []int{1}, row.States)
		assert.True(t, row.Failure)
		assert.True(t, row.Maintenance)
		assert.Equal(t, start.Add(time.Duration(i)*time.Minute), row.Timestamp)
		assert.Equal(t, res.CostData.CumulativeCosts[i], row.CumulativeCost)
	}
	require.Len(t, w.summaries, 1)
	assert.Equal(t, res.FailureCount, w.summaries[0].FailureCount)
	assert.Equal(t, "run-1", w.summaries[0].RunID)
}

func TestEngine_UsesBatchWriter(t *testing.T) {
	w := &batchCollectWriter{}
	_, err := NewEngine(uniform(2, 10, 3, 0.5), WithWriter(w), WithBatchSize(4)).Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, w.rows, 10)
	assert.Equal(t, 3, w.batches)
}

type failingWriter struct{ calls int }

func (f *failingWriter) WriteStep(model.StepRow) error {
	f.calls++
	return errors.New("sink down")
}

func TestEngine_WriterErrorsDoNotStopRun(t *testing.T) {
	w := &failingWriter{}
	res, err := NewEngine(uniform(1, 7, 2, 0.5), WithWriter(w)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, w.calls)
	assert.Equal(t, 7, res.Steps())
}

func TestEngine_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine(uniform(1, 10, 2, 0.5)).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RejectsUnresolvedParams(t *testing.T) {
	_, err := NewEngine(&config.Resolved{Steps: 0}).Run(context.Background())
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestSimulate_ConfigurationError(t *testing.T) {
	cfg := config.Default()
	cfg.SimulationSteps = 0
	_, err := Simulate(context.Background(), &cfg)
	var ce *config.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "simulation_steps", ce.Field)
}

func TestResults_JSONDocument(t *testing.T) {
	cfg := config.Default()
	cfg.C, cfg.SimulationSteps, cfg.K, cfg.P = 1, 3, 1, 1
	res, err := Simulate(context.Background(), &cfg, WithRunID("doc"))
	require.NoError(t, err)

	data, err := json.Marshal(res)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	for _, key := range []string{
		"component_states", "sensor_signals", "maintenance_events", "intervention_count",
		"failure_count", "performance_metrics", "costs", "cost_data",
	} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, []any{2.0, 2.0, 2.0}, doc["sensor_signals"])
	metrics := doc["performance_metrics"].(map[string]any)
	assert.Nil(t, metrics["maintenance_efficiency"])
	costData := doc["cost_data"].(map[string]any)
	assert.Len(t, costData["cumulative_costs"], 3)

	var back Results
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, res.ComponentStates, back.ComponentStates)
	assert.True(t, math.IsInf(float64(back.PerformanceMetrics.MaintenanceEfficiency), 1))
}

func TestResults_EmptyEventsEncodeAsList(t *testing.T) {
	res, err := NewEngine(uniform(1, 2, 5, 0)).Run(context.Background())
	require.NoError(t, err)
	data, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"maintenance_events":[]`)
}
