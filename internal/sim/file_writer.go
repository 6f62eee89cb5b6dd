package sim

import (
	"encoding/json"
	"os"

	"degradesim/internal/model"
)

// FileWriter writes step rows and run summaries to JSONL files.
type FileWriter struct {
	stepFile    *os.File
	summaryFile *os.File
	stepEnc     *json.Encoder
	summaryEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. summaryPath may be empty to skip the
// summary log.
func NewFileWriter(stepPath, summaryPath string) (*FileWriter, error) {
	sf, err := os.Create(stepPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{stepFile: sf, stepEnc: json.NewEncoder(sf)}
	if summaryPath != "" {
		mf, err := os.Create(summaryPath)
		if err != nil {
			sf.Close()
			return nil, err
		}
		fw.summaryFile = mf
		fw.summaryEnc = json.NewEncoder(mf)
	}
	return fw, nil
}

// WriteStep logs a single step row.
func (f *FileWriter) WriteStep(row model.StepRow) error {
	return f.stepEnc.Encode(row)
}

// WriteSteps logs multiple step rows.
func (f *FileWriter) WriteSteps(rows []model.StepRow) error {
	for _, r := range rows {
		if err := f.WriteStep(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteSummary logs the run summary, if enabled.
func (f *FileWriter) WriteSummary(s model.RunSummary) error {
	if f.summaryEnc == nil {
		return nil
	}
	return f.summaryEnc.Encode(s)
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.stepFile != nil {
		if e := f.stepFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.summaryFile != nil {
		if e := f.summaryFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
