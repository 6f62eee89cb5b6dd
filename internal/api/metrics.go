package api

import (
	"net/http"
	"sync/atomic"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"degradesim/internal/sim"
)

// Stats counts served simulations for the lifetime of the process. It keeps
// no per-run history.
type Stats struct {
	runs     atomic.Int64
	errors   atomic.Int64
	steps    atomic.Int64
	failures atomic.Int64
}

// NewStats returns zeroed counters.
func NewStats() *Stats {
	return &Stats{}
}

// ObserveRun records the outcome of one request.
func (s *Stats) ObserveRun(res *sim.Results, err error) {
	if err != nil {
		s.errors.Add(1)
		return
	}
	s.runs.Add(1)
	s.steps.Add(int64(res.Steps()))
	s.failures.Add(int64(res.FailureCount))
}

// Runs returns the number of successful runs.
func (s *Stats) Runs() int64 { return s.runs.Load() }

// Errors returns the number of rejected or failed runs.
func (s *Stats) Errors() int64 { return s.errors.Load() }

// Families renders the counters as Prometheus metric families.
func (s *Stats) Families() []*dto.MetricFamily {
	return []*dto.MetricFamily{
		counterFamily("degradesim_runs_total", "Simulations completed.", s.runs.Load()),
		counterFamily("degradesim_run_errors_total", "Simulations rejected or failed.", s.errors.Load()),
		counterFamily("degradesim_simulated_steps_total", "Time steps simulated across all runs.", s.steps.Load()),
		counterFamily("degradesim_failures_total", "Failure events observed across all runs.", s.failures.Load()),
	}
}

func counterFamily(name, help string, v int64) *dto.MetricFamily {
	value := float64(v)
	return &dto.MetricFamily{
		Name:   &name,
		Help:   &help,
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: &value}}},
	}
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range s.stats.Families() {
		if err := enc.Encode(mf); err != nil {
			s.log.Error("metrics encode failed", "metric", mf.GetName(), "err", err)
			return
		}
	}
}
