package sim

import (
	"context"
	"errors"
	"testing"
	"time"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degradesim/internal/model"
)

type mockGreptimeClient struct {
	table *table.Table
	calls int
	err   error
}

func (m *mockGreptimeClient) Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error) {
	m.calls++
	if len(tables) > 0 {
		m.table = tables[0]
	}
	return &gpb.GreptimeResponse{}, m.err
}

func TestGreptimeWriterComponentRows(t *testing.T) {
	ts := time.Unix(0, 0).UTC()
	comps := []model.ComponentParameter{{Name: "pump", K: 3}, {Name: "valve", K: 5}}
	rows := []model.StepRow{
		{RunID: "r1", Step: 0, States: []int{1, 0}, Signal: model.SignalYellow, CumulativeCost: 100, Timestamp: ts},
		{RunID: "r1", Step: 1, States: []int{3, 2}, Signal: model.SignalRed, Failure: true, Maintenance: true, CumulativeCost: 6600, Timestamp: ts.Add(time.Second)},
	}

	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: "degradation_steps", components: comps}
	require.NoError(t, w.WriteSteps(rows))
	assert.Equal(t, 1, m.calls)

	got := m.table.GetRows()
	require.Len(t, got.Schema, 10)
	assert.Equal(t, gpb.ColumnDataType_STRING, got.Schema[0].Datatype)
	assert.Equal(t, gpb.SemanticType_TAG, got.Schema[0].SemanticType)
	require.Len(t, got.Rows, 4)
	assert.Equal(t, "valve", got.Rows[3].Values[1].GetStringValue())
	assert.Equal(t, int64(3), got.Rows[2].Values[3].GetI64Value())
	assert.Equal(t, int64(5), got.Rows[3].Values[4].GetI64Value())
	assert.True(t, got.Rows[2].Values[7].GetBoolValue(), "maintenance flag on step 1")
}

func TestGreptimeWriterEmptyBatch(t *testing.T) {
	m := &mockGreptimeClient{}
	w := &GreptimeDBWriter{client: m, table: "t"}
	require.NoError(t, w.WriteSteps(nil))
	assert.Zero(t, m.calls)
}

func TestGreptimeWriterPropagatesError(t *testing.T) {
	m := &mockGreptimeClient{err: errors.New("boom")}
	w := &GreptimeDBWriter{client: m, table: "t"}
	err := w.WriteStep(model.StepRow{RunID: "r", States: []int{0}, Timestamp: time.Unix(0, 0)})
	assert.Error(t, err)
}

func TestSplitEndpoint(t *testing.T) {
	host, port, err := splitEndpoint("db.local:4002")
	require.NoError(t, err)
	assert.Equal(t, "db.local", host)
	assert.Equal(t, 4002, port)

	host, port, err = splitEndpoint("db.local")
	require.NoError(t, err)
	assert.Equal(t, "db.local", host)
	assert.Equal(t, defaultGreptimePort, port)

	_, _, err = splitEndpoint("")
	assert.Error(t, err)
	_, _, err = splitEndpoint("db:xx")
	assert.Error(t, err)
}
