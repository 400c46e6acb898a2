package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"wsnsim/internal/telemetry"
)

// replayBatchSize caps the rows handed to a writer in one call.
const replayBatchSize = 256

// ReplayLog replays round rows from r to writer. A speed >0 accelerates playback.
// If speed <= 0, no artificial delay is inserted. Rows due at the same instant
// reach writers that support batches in one call. It returns the number of
// rows replayed.
func ReplayLog(r io.Reader, writer RoundWriter, speed float64) (int, error) {
	dec := json.NewDecoder(r)
	var prev time.Time
	var pending []telemetry.RoundRow
	n := 0
	flush := func() error {
		if len(pending) == 0 {
			return nil
		}
		if err := WriteRoundBatch(writer, pending); err != nil {
			return err
		}
		n += len(pending)
		pending = nil
		return nil
	}
	for {
		var row telemetry.RoundRow
		if err := dec.Decode(&row); err != nil {
			if ferr := flush(); ferr != nil {
				return n, ferr
			}
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
				if err := flush(); err != nil {
					return n, err
				}
				time.Sleep(diff)
			}
		}
		pending = append(pending, row)
		if len(pending) >= replayBatchSize {
			if err := flush(); err != nil {
				return n, err
			}
		}
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a file and replays its round rows.
func ReplayLogFile(path string, writer RoundWriter, speed float64) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
