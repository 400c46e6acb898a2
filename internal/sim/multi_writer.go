package sim

import "wsnsim/internal/telemetry"

// MultiWriter fan-outs round and result rows to multiple writers.
type MultiWriter struct {
	roundWriters  []RoundWriter
	resultWriters []ResultWriter
}

// NewMultiWriter creates a new MultiWriter.
func NewMultiWriter(rws []RoundWriter, sws []ResultWriter) *MultiWriter {
	return &MultiWriter{roundWriters: rws, resultWriters: sws}
}

// WriteRound sends a round row to all round writers.
func (mw *MultiWriter) WriteRound(row telemetry.RoundRow) error {
	for _, w := range mw.roundWriters {
		if err := w.WriteRound(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteRounds sends multiple round rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteRounds(rows []telemetry.RoundRow) error {
	for _, w := range mw.roundWriters {
		if err := WriteRoundBatch(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteResult sends a result row to all result writers.
func (mw *MultiWriter) WriteResult(row telemetry.ResultRow) error {
	for _, w := range mw.resultWriters {
		if err := w.WriteResult(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteResults sends multiple result rows to all writers, using batch if supported.
func (mw *MultiWriter) WriteResults(rows []telemetry.ResultRow) error {
	for _, w := range mw.resultWriters {
		if err := WriteResultBatch(w, rows); err != nil {
			return err
		}
	}
	return nil
}

// WriteRoundBatch hands rows to w in one call when w supports batches and
// row by row otherwise.
func WriteRoundBatch(w RoundWriter, rows []telemetry.RoundRow) error {
	if bw, ok := w.(batchRoundWriter); ok {
		return bw.WriteRounds(rows)
	}
	for _, r := range rows {
		if err := w.WriteRound(r); err != nil {
			return err
		}
	}
	return nil
}

// WriteResultBatch is WriteRoundBatch for result rows.
func WriteResultBatch(w ResultWriter, rows []telemetry.ResultRow) error {
	if bw, ok := w.(batchResultWriter); ok {
		return bw.WriteResults(rows)
	}
	for _, r := range rows {
		if err := w.WriteResult(r); err != nil {
			return err
		}
	}
	return nil
}
