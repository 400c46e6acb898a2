package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"wsnsim/internal/config"
	"wsnsim/internal/sim"
)

// Output formats.
const (
	formatAuto  = ""
	formatJSON  = "json"
	formatTable = "table"
	formatColor = "color"
	formatTUI   = "tui"
)

const defaultGreptimePort = 4001

// outputFlags are shared by every command producing simulation rows.
type outputFlags struct {
	format     string
	printOnly  bool
	logFile    string
	emitRounds bool
	every      int
	sqlitePath string
}

// output bundles the writers handed to a simulation and the cleanup they need.
type output struct {
	rounds  sim.RoundWriter
	results sim.ResultWriter
	tui     bool
	closers []func() error
}

// options returns simulation options carrying the writers of o.
func (o *output) options(runID, label string) sim.Options {
	return sim.Options{RunID: runID, Label: label, Rounds: o.rounds, Results: o.results}
}

// Close releases every writer in reverse order of creation.
func (o *output) Close() error {
	var errs []error
	for i := len(o.closers) - 1; i >= 0; i-- {
		errs = append(errs, o.closers[i]())
	}
	o.closers = nil
	return errors.Join(errs...)
}

// resolveFormat picks table output on a terminal and JSON otherwise.
func resolveFormat(format string) string {
	if format != formatAuto {
		return format
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return formatTable
	}
	return formatJSON
}

// newOutput sets up the writers selected by flags and env vars.
// GREPTIMEDB_ENDPOINT and MQTT_BROKER add remote sinks unless printOnly is set.
func newOutput(cfg *config.Config, flags outputFlags) (*output, error) {
	o := &output{}
	var rws []sim.RoundWriter
	var sws []sim.ResultWriter

	switch resolveFormat(flags.format) {
	case formatJSON:
		jw := sim.NewJSONStdoutWriter()
		if flags.emitRounds {
			rws = append(rws, jw)
		}
		sws = append(sws, jw)
	case formatTable:
		tw := sim.NewTableWriter()
		sws = append(sws, tw)
		o.closers = append(o.closers, tw.Close)
	case formatColor:
		cw := sim.NewColorStdoutWriter(cfg, flags.every)
		rws = append(rws, cw)
		sws = append(sws, cw)
	case formatTUI:
		tw := sim.NewTUIWriter(cfg)
		rws = append(rws, tw)
		sws = append(sws, tw)
		o.tui = true
		o.closers = append(o.closers, tw.Close)
	default:
		return nil, fmt.Errorf("unknown output format %q", flags.format)
	}

	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !flags.printOnly {
		gw, err := newGreptimeWriter(endpoint)
		if err != nil {
			o.Close()
			return nil, err
		}
		rws = append(rws, gw)
		sws = append(sws, gw)
	}

	if broker := os.Getenv("MQTT_BROKER"); broker != "" && !flags.printOnly {
		mw, err := sim.NewMQTTWriter(sim.MQTTConfig{
			Broker:      broker,
			Username:    os.Getenv("MQTT_USERNAME"),
			Password:    os.Getenv("MQTT_PASSWORD"),
			TopicPrefix: os.Getenv("MQTT_TOPIC_PREFIX"),
		})
		if err != nil {
			o.Close()
			return nil, err
		}
		o.closers = append(o.closers, mw.Close)
		rws = append(rws, mw)
		sws = append(sws, mw)
	}

	if flags.sqlitePath != "" {
		sw, err := sim.NewSQLiteWriter(context.Background(), flags.sqlitePath)
		if err != nil {
			o.Close()
			return nil, err
		}
		o.closers = append(o.closers, sw.Close)
		rws = append(rws, sw)
		sws = append(sws, sw)
	}

	if flags.logFile != "" {
		fw, err := sim.NewFileWriter(flags.logFile, flags.logFile+".results")
		if err != nil {
			o.Close()
			return nil, err
		}
		o.closers = append(o.closers, fw.Close)
		rws = append(rws, fw)
		sws = append(sws, fw)
	}

	o.rounds, o.results = combine(rws, sws)
	return o, nil
}

// combine returns the single writer of each kind, or a fan-out when there are
// several.
func combine(rws []sim.RoundWriter, sws []sim.ResultWriter) (sim.RoundWriter, sim.ResultWriter) {
	if len(rws) <= 1 && len(sws) <= 1 {
		var rw sim.RoundWriter
		var sw sim.ResultWriter
		if len(rws) == 1 {
			rw = rws[0]
		}
		if len(sws) == 1 {
			sw = sws[0]
		}
		return rw, sw
	}
	mw := sim.NewMultiWriter(rws, sws)
	var rw sim.RoundWriter
	var sw sim.ResultWriter
	if len(rws) > 0 {
		rw = mw
	}
	if len(sws) > 0 {
		sw = mw
	}
	return rw, sw
}

// newGreptimeWriter parses host[:port] and connects to the "public" database
// unless GREPTIMEDB_DATABASE names another.
func newGreptimeWriter(endpoint string) (*sim.GreptimeDBWriter, error) {
	host, port := endpoint, defaultGreptimePort
	if h, p, err := net.SplitHostPort(endpoint); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("GREPTIMEDB_ENDPOINT port: %w", err)
		}
		host, port = h, n
	}
	database := os.Getenv("GREPTIMEDB_DATABASE")
	if database == "" {
		database = "public"
	}
	return sim.NewGreptimeDBWriter(host, port, database)
}

func addOutputFlags(cmd *cobra.Command, o *outputFlags) {
	f := cmd.Flags()
	f.StringVar(&o.format, "format", formatAuto, "Output format: json, table, color or tui (default: table on a terminal, json otherwise)")
	f.BoolVar(&o.printOnly, "print-only", false, "Skip GreptimeDB and MQTT even when their env vars are set")
	f.StringVar(&o.logFile, "log-file", "", "Export round rows to this JSONL file and results to <path>.results")
	f.BoolVar(&o.emitRounds, "emit-rounds", false, "Include per-round rows in JSON output")
	f.IntVar(&o.every, "every", 10, "Print every Nth round in color output")
	f.StringVar(&o.sqlitePath, "sqlite", "", "Store rounds and results in this SQLite database")
}
