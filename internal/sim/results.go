package sim

import (
	"time"

	"degradesim/internal/config"
	"degradesim/internal/model"
)

// CostSeries holds the per-step cost series used for charting.
type CostSeries struct {
	MaintenanceCosts []float64 `json:"maintenance_costs"`
	FailureCosts     []float64 `json:"failure_costs"`
	InspectionCosts  []float64 `json:"inspection_costs"`
	CumulativeCosts  []float64 `json:"cumulative_costs"`
}

// Results is the document returned for one run.
type Results struct {
	RunID              string                     `json:"run_id"`
	Seed               int64                      `json:"seed"`
	Components         []model.ComponentParameter `json:"components"`
	ComponentStates    [][]int                    `json:"component_states"`
	SensorSignals      []model.SensorSignal       `json:"sensor_signals"`
	MaintenanceEvents  []int                      `json:"maintenance_events"`
	InterventionCount  int                        `json:"intervention_count"`
	FailureCount       int                        `json:"failure_count"`
	FalseAlarmCount    int                        `json:"false_alarm_count"`
	DowntimeSteps      int                        `json:"downtime_steps"`
	PerformanceMetrics model.PerformanceMetrics   `json:"performance_metrics"`
	Costs              model.CostBreakdown        `json:"costs"`
	CostData           CostSeries                 `json:"cost_data"`
}

// Steps returns the number of simulated steps.
func (r *Results) Steps() int {
	return len(r.SensorSignals)
}

// StateAt returns the state vector recorded at step t.
func (r *Results) StateAt(t int) []int {
	col := make([]int, len(r.ComponentStates))
	for i, row := range r.ComponentStates {
		col[i] = row[t]
	}
	return col
}

// Summary condenses the results into a RunSummary row.
func (r *Results) Summary(ts time.Time) model.RunSummary {
	return model.RunSummary{
		RunID:             r.RunID,
		Seed:              r.Seed,
		Steps:             r.Steps(),
		Components:        len(r.Components),
		InterventionCount: r.InterventionCount,
		FailureCount:      r.FailureCount,
		FalseAlarmCount:   r.FalseAlarmCount,
		DowntimeSteps:     r.DowntimeSteps,
		Metrics:           r.PerformanceMetrics,
		Costs:             r.Costs,
		Timestamp:         ts,
	}
}

// assemble shapes a finished run into Results.
func assemble(runID string, seed int64, p *config.Resolved, r *run) *Results {
	c := r.counters()
	costs := CalculateCosts(p, c)
	comps := make([]model.ComponentParameter, len(p.Components))
	copy(comps, p.Components)
	return &Results{
		RunID:              runID,
		Seed:               seed,
		Components:         comps,
		ComponentStates:    r.trajectory,
		SensorSignals:      r.signals,
		MaintenanceEvents:  r.maintenanceEvents,
		InterventionCount:  c.Interventions,
		FailureCount:       c.Failures,
		FalseAlarmCount:    c.FalseAlarms,
		DowntimeSteps:      c.DowntimeSteps,
		PerformanceMetrics: CalculateMetrics(p.Steps, c, costs),
		Costs:              costs,
		CostData: CostSeries{
			MaintenanceCosts: r.maintenanceCosts,
			FailureCosts:     r.failureCosts,
			InspectionCosts:  r.inspectionCosts,
			CumulativeCosts:  r.cumulativeCosts,
		},
	}
}
