package main

import (
	"io"
	"os"

	"golang.org/x/term"

	"degradesim/internal/config"
	"degradesim/internal/model"
	"degradesim/internal/sim"
)

// writerOptions selects the step sinks of one command.
type writerOptions struct {
	printOnly bool   // stream steps to STDOUT and skip GreptimeDB
	console   bool   // force coloured console output on STDOUT
	stepLog   string // JSONL step log path; a ".summary" sibling receives the run summary
}

// greptimeEnv reads the GreptimeDB sink configuration from the environment.
func greptimeEnv() (endpoint, database, table string) {
	return os.Getenv("GREPTIMEDB_ENDPOINT"), os.Getenv("GREPTIMEDB_DATABASE"), os.Getenv("GREPTIMEDB_TABLE")
}

// stdoutIsTerminal is swapped in tests.
var stdoutIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// newWriters assembles the step sinks for params, which may be nil when
// replaying. It returns a nil writer when no sink is enabled, plus a cleanup function closing any opened files.
func newWriters(params *config.Resolved, opts writerOptions) (sim.StepWriter, func(), error) {
	var ws []sim.StepWriter
	var closers []io.Closer
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	if std := stdoutWriter(params, opts); std != nil {
		ws = append(ws, std)
	}

	if endpoint, database, table := greptimeEnv(); endpoint != "" && !opts.printOnly {
		var comps []model.ComponentParameter
		if params != nil {
			comps = params.Components
		}
		gw, err := sim.NewGreptimeDBWriter(endpoint, database, table, comps)
		if err != nil {
			return nil, nil, err
		}
		ws = append(ws, gw)
	}

	if opts.stepLog != "" {
		fw, err := sim.NewFileWriter(opts.stepLog, opts.stepLog+".summary")
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, fw)
		ws = append(ws, fw)
	}

	switch len(ws) {
	case 0:
		return nil, cleanup, nil
	case 1:
		return ws[0], cleanup, nil
	default:
		return sim.NewMultiWriter(ws...), cleanup, nil
	}
}

// stdoutWriter picks the STDOUT step sink. Console rendering is used when
// forced or when STDOUT is a terminal; JSON lines otherwise.
func stdoutWriter(params *config.Resolved, opts writerOptions) sim.StepWriter {
	switch {
	case opts.console:
		return sim.NewConsoleWriter(params)
	case !opts.printOnly:
		return nil
	case stdoutIsTerminal():
		return sim.NewConsoleWriter(params)
	default:
		return sim.NewJSONStdoutWriter()
	}
}
