package sim

import (
	"math"

	"degradesim/internal/config"
	"degradesim/internal/model"
)

// Counters are the event tallies of a finished run.
type Counters struct {
	Interventions int
	Failures      int
	FalseAlarms   int
	DowntimeSteps int
}

// CalculateCosts converts event counts into the cost breakdown.
func CalculateCosts(p *config.Resolved, c Counters) model.CostBreakdown {
	interventions := float64(c.Interventions)
	replacement := p.ReplacementCost() * interventions
	labor := p.MaintenanceCost * interventions
	maintenance := replacement + labor
	failure := p.FailureCost * float64(c.Failures)
	inspection := p.InspectionCost * float64(p.Steps)
	return model.CostBreakdown{
		MaintenanceCost:          maintenance,
		ComponentReplacementCost: replacement,
		MaintenanceLaborCost:     labor,
		FailureCost:              failure,
		InspectionCost:           inspection,
		TotalCost:                maintenance + failure + inspection,
	}
}

// CalculateMetrics derives the performance metrics. steps must be positive.
func CalculateMetrics(steps int, c Counters, costs model.CostBreakdown) model.PerformanceMetrics {
	t := float64(steps)
	uptime := (t - float64(c.DowntimeSteps)) / t * 100

	mtbf := t
	if c.Failures > 0 {
		mtbf = t / float64(c.Failures)
	}

	efficiency := math.Inf(1)
	if uptime > 0 {
		efficiency = costs.TotalCost / uptime
	}

	falseAlarmRate := 0.0
	if c.Interventions > 0 {
		falseAlarmRate = float64(c.FalseAlarms) / float64(c.Interventions) * 100
	}

	return model.PerformanceMetrics{
		UptimePercentage:      model.Float(uptime),
		MTBF:                  model.Float(mtbf),
		MaintenanceEfficiency: model.Float(efficiency),
		FalseAlarmRate:        model.Float(falseAlarmRate),
		TotalCost:             model.Float(costs.TotalCost),
	}
}
