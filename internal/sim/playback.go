package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"degradesim/internal/model"
)

// ReplayLog replays step rows from r to writer. A speed >0 paces rows by their
// recorded timestamps divided by speed. If speed <= 0, no artificial delay is
// inserted.
func ReplayLog(r io.Reader, writer StepWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	n := 0
	for {
		var row model.StepRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return n, nil
			}
			return n, err
		}
		if !prev.IsZero() && speed > 0 {
			diff := row.Timestamp.Sub(prev)
			if speed != 1 {
				diff = time.Duration(float64(diff) / speed)
			}
			if diff > 0 {
				time.Sleep(diff)
			}
		}
		if err := writer.WriteStep(row); err != nil {
			return n, err
		}
		n++
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its step rows.
func ReplayLogFile(path string, writer StepWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
