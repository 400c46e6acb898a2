package sim

import (
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"wsnsim/internal/config"
	"wsnsim/internal/metrics"
	"wsnsim/internal/routing"
	"wsnsim/internal/telemetry"
)

// teaProgram abstracts bubbletea.Program for testing.
type teaProgram interface {
	Send(tea.Msg)
}

// logMsg carries a log line for the viewport.
type logMsg struct{ line string }

// roundMsg carries a finished round of one protocol.
type roundMsg struct{ telemetry.RoundRow }

// resultMsg carries the finalized metrics of one protocol.
type resultMsg struct{ telemetry.ResultRow }

const (
	maxLogLines  = 1000
	progressSize = 40
)

// TUIWriter renders protocol progress and results using a bubbletea TUI.
type TUIWriter struct {
	program    teaProgram
	done       chan struct{}
	sendSignal atomic.Bool
}

// NewTUIWriter starts a bubbletea program and returns a TUIWriter.
func NewTUIWriter(cfg *config.Config) *TUIWriter {
	w := &TUIWriter{done: make(chan struct{})}
	w.sendSignal.Store(true)
	p := tea.NewProgram(newTUIModel(cfg), tea.WithAltScreen())
	w.program = p
	go func() {
		_, _ = p.Run()
		close(w.done)
		if w.sendSignal.Load() {
			if proc, err := os.FindProcess(os.Getpid()); err == nil {
				_ = proc.Signal(os.Interrupt)
			}
		}
	}()
	return w
}

// WriteRound implements RoundWriter.
func (w *TUIWriter) WriteRound(row telemetry.RoundRow) error {
	w.program.Send(roundMsg{row})
	return nil
}

// WriteRounds outputs multiple round rows.
func (w *TUIWriter) WriteRounds(rows []telemetry.RoundRow) error {
	for _, r := range rows {
		_ = w.WriteRound(r)
	}
	return nil
}

// WriteResult implements ResultWriter.
func (w *TUIWriter) WriteResult(row telemetry.ResultRow) error {
	line := fmt.Sprintf("%sDONE%s %s%s%s pdr=%.4f delay=%s fnd=%.0f",
		colorRed, colorReset,
		protocolColor(row.Protocol), row.Protocol, colorReset,
		row.PDR, row.AvgDelay, row.FNDRound)
	if row.Label != "" {
		line = fmt.Sprintf("%s %s[%s]%s", line, colorGray, row.Label, colorReset)
	}
	w.program.Send(logMsg{line: line})
	w.program.Send(resultMsg{row})
	return nil
}

// WriteResults outputs multiple result rows.
func (w *TUIWriter) WriteResults(rows []telemetry.ResultRow) error {
	for _, r := range rows {
		_ = w.WriteResult(r)
	}
	return nil
}

// Close shuts down the TUI program and waits for cleanup.
func (w *TUIWriter) Close() error {
	w.sendSignal.Store(false)
	if w.program != nil {
		w.program.Send(tea.Quit())
	}
	if w.done != nil {
		<-w.done
	}
	return nil
}

type tuiModel struct {
	cfg        *config.Config
	bar        progress.Model
	results    table.Model
	vp         viewport.Model
	logs       []string
	progress   map[string]float64
	latest     map[string]telemetry.RoundRow
	finished   map[string]metrics.Result
	order      []string
	wrap       bool
	autoscroll bool
	width      int
	height     int
}

func newTUIModel(cfg *config.Config) tuiModel {
	cols := []table.Column{
		{Title: "Protocol", Width: 10},
		{Title: "PDR", Width: 8},
		{Title: "Delay", Width: 9},
		{Title: "Energy/Pkt", Width: 11},
		{Title: "Overhead", Width: 9},
		{Title: "FND", Width: 5},
	}
	t := table.New(table.WithColumns(cols), table.WithHeight(len(routing.Protocols)+1))
	return tuiModel{
		cfg:        cfg,
		bar:        progress.New(progress.WithDefaultGradient(), progress.WithWidth(progressSize)),
		results:    t,
		vp:         viewport.New(0, 0),
		progress:   make(map[string]float64),
		latest:     make(map[string]telemetry.RoundRow),
		finished:   make(map[string]metrics.Result),
		order:      append([]string(nil), routing.Protocols...),
		autoscroll: true,
	}
}

func (m tuiModel) Init() tea.Cmd { return nil }

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.vp.Width = msg.Width
		m.results.SetWidth(msg.Width)
		m.updateViewportHeight()
		m.refreshViewport()
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "w":
			m.wrap = !m.wrap
			m.refreshViewport()
			return m, nil
		case "s":
			m.autoscroll = !m.autoscroll
			if m.autoscroll {
				m.vp.GotoBottom()
			}
			return m, nil
		}
		if !m.autoscroll {
			switch msg.String() {
			case "j", "down":
				m.vp.LineDown(1)
			case "k", "up":
				m.vp.LineUp(1)
			case "pgdown":
				m.vp.LineDown(10)
			case "pgup":
				m.vp.LineUp(10)
			}
		}
		return m, nil
	case logMsg:
		m.appendLog(msg.line)
	case roundMsg:
		m.trackProtocol(msg.Protocol)
		m.latest[msg.Protocol] = msg.RoundRow
		if m.cfg != nil && m.cfg.Rounds > 0 {
			m.progress[msg.Protocol] = float64(msg.Round+1) / float64(m.cfg.Rounds)
		}
	case resultMsg:
		m.trackProtocol(msg.Protocol)
		m.progress[msg.Protocol] = 1
		m.finished[msg.Protocol] = msg.Result()
		m.results.SetRows(m.resultRows())
	}
	return m, nil
}

func (m *tuiModel) trackProtocol(p string) {
	for _, known := range m.order {
		if known == p {
			return
		}
	}
	m.order = append(m.order, p)
}

func (m *tuiModel) appendLog(line string) {
	m.logs = append(m.logs, line)
	if len(m.logs) > maxLogLines {
		m.logs = m.logs[len(m.logs)-maxLogLines:]
	}
	m.refreshViewport()
}

func (m tuiModel) resultRows() []table.Row {
	var rows []table.Row
	for _, p := range orderedProtocols(m.finished) {
		r := m.finished[p]
		rows = append(rows, table.Row{
			p,
			fmt.Sprintf("%.4f", r.PDR),
			r.AvgDelay.String(),
			r.EnergyPerPacket.String(),
			r.RoutingOverhead.String(),
			fmt.Sprintf("%.0f", r.FNDRound),
		})
	}
	return rows
}

func (m *tuiModel) updateViewportHeight() {
	used := lipgloss.Height(m.renderHeader()) + lipgloss.Height(m.renderProgress()) +
		lipgloss.Height(m.results.View()) + lipgloss.Height(m.renderBottom()) + 4
	h := m.height - used
	if h < 0 {
		h = 0
	}
	m.vp.Height = h
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m *tuiModel) refreshViewport() {
	var lines []string
	for _, l := range m.logs {
		if m.wrap && m.vp.Width > 0 {
			lines = append(lines, wordwrap.String(l, m.vp.Width))
		} else {
			lines = append(lines, l)
		}
	}
	m.vp.SetContent(strings.Join(lines, "\n"))
	if m.autoscroll {
		m.vp.GotoBottom()
	}
}

func (m tuiModel) View() string {
	divider := strings.Repeat("─", m.vp.Width)
	sections := []string{
		m.renderHeader(),
		divider,
		m.renderProgress(),
		divider,
		m.results.View(),
		divider,
		m.vp.View(),
		divider,
		m.renderBottom(),
	}
	return strings.Join(sections, "\n")
}

func (m tuiModel) renderHeader() string {
	if m.cfg == nil {
		return "wsnsim"
	}
	return RenderConfig(*m.cfg, m.width)
}

func (m tuiModel) renderProgress() string {
	var b strings.Builder
	for _, p := range m.order {
		row := m.latest[p]
		fmt.Fprintf(&b, "%s%-9s%s %s alive=%d trust=%.3f\n",
			protocolColor(p), p, colorReset,
			m.bar.ViewAs(m.progress[p]),
			row.AliveNodes, row.MeanTrust)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m tuiModel) renderBottom() string {
	wrapColor := lipgloss.Color("9")
	if m.wrap {
		wrapColor = lipgloss.Color("10")
	}
	scrollColor := lipgloss.Color("10")
	if !m.autoscroll {
		scrollColor = lipgloss.Color("9")
	}
	wrapIndicator := lipgloss.NewStyle().Foreground(wrapColor).Render("●")
	scrollIndicator := lipgloss.NewStyle().Foreground(scrollColor).Render("●")
	done := len(m.finished)
	return fmt.Sprintf("%sRUNS%s %d/%d done | Wrap %s | Scroll %s | q quit",
		colorBlue, colorReset, done, len(m.order), wrapIndicator, scrollIndicator)
}
