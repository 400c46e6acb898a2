package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"wsnsim/internal/telemetry"
)

// JSONStdoutWriter prints round and result rows as JSON lines to STDOUT.
// It is safe for concurrent use by parallel protocol runs.
type JSONStdoutWriter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

func (w *JSONStdoutWriter) emit(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	_, err = fmt.Fprintln(w.out, string(data))
	return err
}

// WriteRound outputs a round row in JSON format.
func (w *JSONStdoutWriter) WriteRound(row telemetry.RoundRow) error {
	return w.emit(row)
}

// WriteRounds outputs multiple round rows in JSON format.
func (w *JSONStdoutWriter) WriteRounds(rows []telemetry.RoundRow) error {
	for _, r := range rows {
		if err := w.WriteRound(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult outputs a result row in JSON format.
func (w *JSONStdoutWriter) WriteResult(row telemetry.ResultRow) error {
	return w.emit(row)
}

// WriteResults outputs multiple result rows in JSON format.
func (w *JSONStdoutWriter) WriteResults(rows []telemetry.ResultRow) error {
	for _, r := range rows {
		if err := w.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}
