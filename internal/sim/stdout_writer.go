// Writer implementation printing a comparison table to STDOUT
package sim

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
	"wsnsim/internal/telemetry"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	nameStyle   = cellStyle.Foreground(lipgloss.Color("12"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// TableWriter collects result rows and prints them as one table on Flush.
type TableWriter struct {
	mu   sync.Mutex
	out  io.Writer
	rows []telemetry.ResultRow
}

// NewTableWriter creates a TableWriter writing to os.Stdout.
func NewTableWriter() *TableWriter {
	return &TableWriter{out: os.Stdout}
}

// WriteResult buffers a result row.
func (w *TableWriter) WriteResult(row telemetry.ResultRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, row)
	return nil
}

// WriteResults buffers multiple result rows.
func (w *TableWriter) WriteResults(rows []telemetry.ResultRow) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = append(w.rows, rows...)
	return nil
}

// Flush prints the buffered rows grouped by label and clears the buffer.
func (w *TableWriter) Flush() error {
	w.mu.Lock()
	rows := w.rows
	w.rows = nil
	w.mu.Unlock()

	var labels []string
	byLabel := make(map[string]map[string]metrics.Result)
	for _, r := range rows {
		if _, ok := byLabel[r.Label]; !ok {
			labels = append(labels, r.Label)
			byLabel[r.Label] = make(map[string]metrics.Result)
		}
		byLabel[r.Label][r.Protocol] = r.Result()
	}
	for _, l := range labels {
		if l != "" {
			if _, err := fmt.Fprintln(w.out, headerStyle.Render(l)); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(w.out, RenderTable(byLabel[l])); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes any buffered rows.
func (w *TableWriter) Close() error {
	return w.Flush()
}

// RenderTable formats results as a table with one row per protocol, known
// protocols first in their canonical order.
func RenderTable(results map[string]metrics.Result) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("protocol", metrics.KeyPDR, metrics.KeyAvgDelay, metrics.KeyEnergyPerPacket, metrics.KeyRoutingOverhead, metrics.KeyFNDRound).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return nameStyle
			default:
				return cellStyle
			}
		})
	for _, p := range orderedProtocols(results) {
		r := results[p]
		t.Row(p,
			fmt.Sprintf("%.4f", r.PDR),
			r.AvgDelay.String(),
			r.EnergyPerPacket.String(),
			r.RoutingOverhead.String(),
			fmt.Sprintf("%.0f", r.FNDRound),
		)
	}
	return t.String()
}

func orderedProtocols(results map[string]metrics.Result) []string {
	var out []string
	seen := make(map[string]bool, len(results))
	for _, p := range routing.Protocols {
		if _, ok := results[p]; ok {
			out = append(out, p)
			seen[p] = true
		}
	}
	var rest []string
	for p := range results {
		if !seen[p] {
			rest = append(rest, p)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
