package sim

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"degradesim/internal/model"
)

const (
	defaultGreptimePort  = 4001
	defaultGreptimeTable = "degradation_steps"
	greptimeWriteTimeout = 10 * time.Second
)

// greptimeClient is the subset of the ingester client used by the writer.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter writes one row per component per step to GreptimeDB.
type GreptimeDBWriter struct {
	client     greptimeClient
	table      string
	components []model.ComponentParameter
}

// NewGreptimeDBWriter connects to endpoint ("host" or "host:port"). The
// component list supplies names and thresholds for the component rows.
func NewGreptimeDBWriter(endpoint, database, tableName string, comps []model.ComponentParameter) (*GreptimeDBWriter, error) {
	host, port, err := splitEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	if database == "" {
		database = "public"
	}
	if tableName == "" {
		tableName = defaultGreptimeTable
	}
	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("greptime client: %w", err)
	}
	return &GreptimeDBWriter{client: client, table: tableName, components: comps}, nil
}

func splitEndpoint(endpoint string) (string, int, error) {
	if endpoint == "" {
		return "", 0, fmt.Errorf("greptime endpoint is empty")
	}
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		return endpoint, defaultGreptimePort, nil
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid greptime port %q: %w", portStr, err)
	}
	return host, port, nil
}

// WriteStep inserts a single step.
func (w *GreptimeDBWriter) WriteStep(row model.StepRow) error {
	return w.WriteSteps([]model.StepRow{row})
}

// WriteSteps inserts multiple steps in one request.
func (w *GreptimeDBWriter) WriteSteps(rows []model.StepRow) error {
	if len(rows) == 0 {
		return nil
	}
	tbl, err := w.buildTable(rows)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), greptimeWriteTimeout)
	defer cancel()
	if _, err := w.client.Write(ctx, tbl); err != nil {
		slog.Error("greptime write failed", "table", w.table, "err", err)
		return err
	}
	slog.Debug("greptime rows written", "table", w.table, "steps", len(rows))
	return nil
}

func (w *GreptimeDBWriter) buildTable(rows []model.StepRow) (*table.Table, error) {
	tbl, err := table.New(w.table)
	if err != nil {
		return nil, err
	}
	columns := []func() error{
		func() error { return tbl.AddTagColumn("run_id", types.STRING) },
		func() error { return tbl.AddTagColumn("component", types.STRING) },
		func() error { return tbl.AddFieldColumn("step", types.INT64) },
		func() error { return tbl.AddFieldColumn("state", types.INT64) },
		func() error { return tbl.AddFieldColumn("threshold", types.INT64) },
		func() error { return tbl.AddFieldColumn("signal", types.INT64) },
		func() error { return tbl.AddFieldColumn("failure", types.BOOLEAN) },
		func() error { return tbl.AddFieldColumn("maintenance", types.BOOLEAN) },
		func() error { return tbl.AddFieldColumn("cumulative_cost", types.FLOAT64) },
		func() error { return tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND) },
	}
	for _, add := range columns {
		if err := add(); err != nil {
			return nil, err
		}
	}

	for _, r := range rows {
		for i, state := range r.States {
			name, threshold := w.component(i)
			if err := tbl.AddRow(
				r.RunID,
				name,
				int64(r.Step),
				int64(state),
				int64(threshold),
				int64(r.Signal),
				r.Failure,
				r.Maintenance,
				r.CumulativeCost,
				r.Timestamp,
			); err != nil {
				return nil, err
			}
		}
	}
	return tbl, nil
}

func (w *GreptimeDBWriter) component(i int) (string, int) {
	if i < len(w.components) {
		return w.components[i].Name, w.components[i].K
	}
	return fmt.Sprintf("Component %d", i+1), 0
}
