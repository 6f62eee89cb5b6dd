package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"degradesim/internal/model"
)

// JSONStdoutWriter prints step rows and summaries as JSON lines.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// NewJSONWriter creates a JSONStdoutWriter writing to out.
func NewJSONWriter(out io.Writer) *JSONStdoutWriter {
	return &JSONStdoutWriter{out: out}
}

// WriteStep outputs a step row in JSON format.
func (w *JSONStdoutWriter) WriteStep(row model.StepRow) error {
	return w.encode(row)
}

// WriteSteps outputs multiple step rows in JSON format.
func (w *JSONStdoutWriter) WriteSteps(rows []model.StepRow) error {
	for _, r := range rows {
		if err := w.WriteStep(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary outputs the run summary in JSON format.
func (w *JSONStdoutWriter) WriteSummary(s model.RunSummary) error {
	return w.encode(s)
}

func (w *JSONStdoutWriter) encode(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}
