package config

import (
	"fmt"
	"math"

	"degradesim/internal/model"
)

// Resolved holds fully populated run parameters.
type Resolved struct {
	Steps           int
	MaintenanceCost float64 // labor cost per intervention
	FailureCost     float64
	InspectionCost  float64
	Seed            int64
	Components      []model.ComponentParameter
}

// ReplacementCost is the sum of all component replacement costs.
func (r *Resolved) ReplacementCost() float64 {
	var sum float64
	for _, c := range r.Components {
		sum += c.Cost
	}
	return sum
}

// InterventionCost is the labor plus parts cost of one maintenance action.
func (r *Resolved) InterventionCost() float64 {
	return r.MaintenanceCost + r.ReplacementCost()
}

// Resolve validates the config and produces the component list. An explicit
// component list is used verbatim; otherwise C identical components are
// synthesised from K and P.
func (c *Config) Resolve() (*Resolved, error) {
	if c.SimulationSteps <= 0 {
		return nil, invalid("simulation_steps", "must be positive, got %d", c.SimulationSteps)
	}
	if c.SimulationSteps > MaxSimulationSteps {
		return nil, invalid("simulation_steps", "must not exceed %d, got %d", MaxSimulationSteps, c.SimulationSteps)
	}
	if err := checkCost("maintenance_cost", c.MaintenanceCost); err != nil {
		return nil, err
	}
	if err := checkCost("failure_cost", c.FailureCost); err != nil {
		return nil, err
	}
	if err := checkCost("inspection_cost", c.InspectionCost); err != nil {
		return nil, err
	}

	r := &Resolved{
		Steps:           c.SimulationSteps,
		MaintenanceCost: c.MaintenanceCost,
		FailureCost:     c.FailureCost,
		InspectionCost:  c.InspectionCost,
		Seed:            c.Seed,
	}

	if err := checkSize(c); err != nil {
		return nil, err
	}

	if len(c.ComponentParams) > 0 {
		r.Components = make([]model.ComponentParameter, len(c.ComponentParams))
		for i, spec := range c.ComponentParams {
			field := fmt.Sprintf("component_params[%d]", i)
			if err := checkComponent(field, spec.K, spec.P, spec.Cost); err != nil {
				return nil, err
			}
			name := spec.Name
			if name == "" {
				name = componentName(i)
			}
			r.Components[i] = model.ComponentParameter{Name: name, K: spec.K, P: spec.P, Cost: spec.Cost}
		}
		return r, nil
	}

	if c.C <= 0 {
		return nil, invalid("C", "component count must be positive, got %d", c.C)
	}
	if c.K < 1 {
		return nil, invalid("K", "failure threshold must be >= 1, got %d", c.K)
	}
	if math.IsNaN(c.P) || c.P < 0 || c.P > 1 {
		return nil, invalid("P", "degradation probability must be in [0,1], got %v", c.P)
	}
	r.Components = make([]model.ComponentParameter, c.C)
	for i := range r.Components {
		r.Components[i] = model.ComponentParameter{
			Name: componentName(i),
			K:    c.K,
			P:    c.P,
			Cost: DefaultComponentCost,
		}
	}
	return r, nil
}

func componentName(i int) string {
	return fmt.Sprintf("Component %d", i+1)
}

// checkSize rejects runs whose state trajectory would exceed MaxStateCells.
func checkSize(c *Config) error {
	n, field := c.C, "C"
	if len(c.ComponentParams) > 0 {
		n, field = len(c.ComponentParams), "component_params"
	}
	if n > MaxComponents {
		return invalid(field, "must not exceed %d components, got %d", MaxComponents, n)
	}
	if n > 0 && c.SimulationSteps > MaxStateCells/n {
		return invalid("simulation_steps", "%d components × %d steps exceeds %d recorded states",
			n, c.SimulationSteps, MaxStateCells)
	}
	return nil
}

func checkComponent(field string, k int, p, cost float64) error {
	if k < 1 {
		return invalid(field, "failure threshold must be >= 1, got %d", k)
	}
	if math.IsNaN(p) || p < 0 || p > 1 {
		return invalid(field, "degradation probability must be in [0,1], got %v", p)
	}
	return checkCost(field, cost)
}

func checkCost(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return invalid(field, "cost must be a non-negative number, got %v", v)
	}
	return nil
}
