package sim

import "degradesim/internal/model"

// run is the mutable record of one simulation in progress.
type run struct {
	trajectory        [][]int // [component][step]
	signals           []model.SensorSignal
	maintenanceEvents []int

	interventions int
	failures      int
	falseAlarms   int
	downtime      int

	maintenanceCosts []float64
	failureCosts     []float64
	inspectionCosts  []float64
	cumulativeCosts  []float64
}

func newRun(components, steps int) *run {
	r := &run{
		trajectory:        make([][]int, components),
		signals:           make([]model.SensorSignal, steps),
		maintenanceEvents: []int{},
		maintenanceCosts:  make([]float64, steps),
		failureCosts:      make([]float64, steps),
		inspectionCosts:   make([]float64, steps),
		cumulativeCosts:   make([]float64, steps),
	}
	for i := range r.trajectory {
		r.trajectory[i] = make([]int, steps)
	}
	return r
}

// record copies the state vector into column t.
func (r *run) record(t int, states []int) {
	for i, s := range states {
		r.trajectory[i][t] = s
	}
}

// column returns a copy of the recorded state vector at step t.
func (r *run) column(t int) []int {
	col := make([]int, len(r.trajectory))
	for i := range r.trajectory {
		col[i] = r.trajectory[i][t]
	}
	return col
}

func (r *run) counters() Counters {
	return Counters{
		Interventions: r.interventions,
		Failures:      r.failures,
		FalseAlarms:   r.falseAlarms,
		DowntimeSteps: r.downtime,
	}
}
