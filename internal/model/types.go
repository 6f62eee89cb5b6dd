// Degradation model structs shared by the config resolver, engine and writers
package model

import (
	"encoding/json"
	"math"
	"time"
)

// ComponentParameter describes one tracked component. It is immutable for the
// duration of a run.
type ComponentParameter struct {
	Name string  `json:"name" yaml:"name"`
	K    int     `json:"k" yaml:"k"`       // failure threshold
	P    float64 `json:"p" yaml:"p"`       // per-step degradation probability
	Cost float64 `json:"cost" yaml:"cost"` // replacement cost
}

// SensorSignal is the aggregate health indicator observed at one step.
type SensorSignal int

// Sensor signal levels. Higher values take precedence.
const (
	SignalGreen SensorSignal = iota
	SignalYellow
	SignalRed
)

func (s SensorSignal) String() string {
	switch s {
	case SignalGreen:
		return "green"
	case SignalYellow:
		return "yellow"
	case SignalRed:
		return "red"
	default:
		return "unknown"
	}
}

// StepRow captures the outcome of one simulation step.
type StepRow struct {
	RunID           string       `json:"run_id"`
	Step            int          `json:"step"`
	States          []int        `json:"states"` // post-degradation, before maintenance
	Signal          SensorSignal `json:"signal"`
	Failure         bool         `json:"failure"`
	Maintenance     bool         `json:"maintenance"`
	MaintenanceCost float64      `json:"maintenance_cost"`
	FailureCost     float64      `json:"failure_cost"`
	InspectionCost  float64      `json:"inspection_cost"`
	CumulativeCost  float64      `json:"cumulative_cost"`
	Timestamp       time.Time    `json:"ts"`
}

// StepCost is the total cost charged at this step.
func (r StepRow) StepCost() float64 {
	return r.MaintenanceCost + r.FailureCost + r.InspectionCost
}

// CostBreakdown is derived once from a finished run.
type CostBreakdown struct {
	MaintenanceCost          float64 `json:"maintenance_cost"`
	ComponentReplacementCost float64 `json:"component_replacement_cost"`
	MaintenanceLaborCost     float64 `json:"maintenance_labor_cost"`
	FailureCost              float64 `json:"failure_cost"`
	InspectionCost           float64 `json:"inspection_cost"`
	TotalCost                float64 `json:"total_cost"`
}

// PerformanceMetrics is derived once from a finished run.
type PerformanceMetrics struct {
	UptimePercentage      Float `json:"uptime_percentage"`
	MTBF                  Float `json:"mtbf"`
	MaintenanceEfficiency Float `json:"maintenance_efficiency"` // +Inf when uptime is zero
	FalseAlarmRate        Float `json:"false_alarm_rate"`
	TotalCost             Float `json:"total_cost"`
}

// RunSummary is emitted once after the last step of a run.
type RunSummary struct {
	RunID             string             `json:"run_id"`
	Seed              int64              `json:"seed"`
	Steps             int                `json:"steps"`
	Components        int                `json:"components"`
	InterventionCount int                `json:"intervention_count"`
	FailureCount      int                `json:"failure_count"`
	FalseAlarmCount   int                `json:"false_alarm_count"`
	DowntimeSteps     int                `json:"downtime_steps"`
	Metrics           PerformanceMetrics `json:"performance_metrics"`
	Costs             CostBreakdown      `json:"costs"`
	Timestamp         time.Time          `json:"ts"`
}

// Float is a float64 that encodes non-finite values as JSON null.
// Decoding null yields +Inf.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return []byte("null"), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = Float(math.Inf(1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*f = Float(v)
	return nil
}
