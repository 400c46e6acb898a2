package sim

import (
	"encoding/json"
	"os"
	"sync"

	"wsnsim/internal/telemetry"
)

// FileWriter writes round and result rows to JSONL files.
type FileWriter struct {
	mu         sync.Mutex
	roundFile  *os.File
	resultFile *os.File
	roundEnc   *json.Encoder
	resultEnc  *json.Encoder
}

// NewFileWriter creates a FileWriter. resultPath may be empty to skip results.
func NewFileWriter(roundPath, resultPath string) (*FileWriter, error) {
	rf, err := os.Create(roundPath)
	if err != nil {
		return nil, err
	}
	fw := &FileWriter{roundFile: rf, roundEnc: json.NewEncoder(rf)}
	if resultPath != "" {
		sf, err := os.Create(resultPath)
		if err != nil {
			rf.Close()
			return nil, err
		}
		fw.resultFile = sf
		fw.resultEnc = json.NewEncoder(sf)
	}
	return fw, nil
}

// WriteRound logs a single round row.
func (f *FileWriter) WriteRound(row telemetry.RoundRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roundEnc.Encode(row)
}

// WriteRounds logs multiple round rows.
func (f *FileWriter) WriteRounds(rows []telemetry.RoundRow) error {
	for _, r := range rows {
		if err := f.WriteRound(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult logs a single result row, if enabled.
func (f *FileWriter) WriteResult(row telemetry.ResultRow) error {
	if f.resultEnc == nil {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.resultEnc.Encode(row)
}

// WriteResults logs multiple result rows.
func (f *FileWriter) WriteResults(rows []telemetry.ResultRow) error {
	for _, r := range rows {
		if err := f.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}

// Close closes any underlying files.
func (f *FileWriter) Close() error {
	var err error
	if f.roundFile != nil {
		if e := f.roundFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	if f.resultFile != nil {
		if e := f.resultFile.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}
