package sim

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"degradesim/internal/model"
)

func TestReplayLog(t *testing.T) {
	rows := []model.StepRow{
		{RunID: "r1", Step: 0, States: []int{1}, Timestamp: time.Unix(0, 0)},
		{RunID: "r1", Step: 1, States: []int{2}, Timestamp: time.Unix(1, 0)},
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range rows {
		require.NoError(t, enc.Encode(r))
	}
	cw := &collectWriter{}
	n, err := ReplayLog(&buf, cw, 0)
	require.NoError(t, err)
	assert.Equal(t, len(rows), n)
	require.Len(t, cw.rows, len(rows))
	for i, r := range rows {
		assert.Equal(t, r.Step, cw.rows[i].Step)
		assert.Equal(t, r.States, cw.rows[i].States)
	}
}

func TestReplayLogMalformed(t *testing.T) {
	cw := &collectWriter{}
	n, err := ReplayLog(strings.NewReader(`{"step":0}`+"\n"+`{"step":`), cw, 0)
	assert.Error(t, err)
	assert.Equal(t, 1, n, "rows before the error are delivered")
}

func TestReplayRecordedRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "steps.jsonl")
	fw, err := NewFileWriter(path, "")
	require.NoError(t, err)
	res, err := NewEngine(uniform(2, 12, 2, 0.5), WithWriter(fw)).Run(t.Context())
	require.NoError(t, err)
	require.NoError(t, fw.Close())

	cw := &collectWriter{}
	n, err := ReplayLogFile(path, cw, 0)
	require.NoError(t, err)
	require.Equal(t, res.Steps(), n)
	for i, row := range cw.rows {
		assert.Equal(t, res.SensorSignals[i], row.Signal, "step %d", i)
	}

	_, err = ReplayLogFile(filepath.Join(t.TempDir(), "nope"), cw, 0)
	assert.True(t, os.IsNotExist(err), "got %v", err)
}
