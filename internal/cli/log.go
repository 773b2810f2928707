// Package cli implements the biotree command-line interface.
//
// This package provides commands for building the initial tree layout,
// editing the persisted diagram, rendering it with Graphviz, and serving it
// to browser clients. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Print the initial layout generated from a dataset
//   - render: Draw the current diagram as DOT, SVG, PDF or PNG
//   - show, browse: Inspect nodes and their details
//   - add, connect, delete, photo: Edit the diagram
//   - export, import, reset: Move snapshots in and out of storage
//   - serve: Run the HTTP API
//
// # Logging
//
// The root --verbose (-v) flag lowers the level to debug, which also shows
// the editor's restore and persist decisions. Each command runs with a
// logger prefixed by its name, reachable through the command context.
//
// # Example
//
//	c := cli.New(os.Stderr, cli.LogInfo)
//	if err := c.RootCommand().ExecuteContext(ctx); err != nil {
//	    os.Exit(1)
//	}
package cli

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// newLogger returns the CLI logger writing to w at level, with
// centisecond timestamps ("14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// commandLogger derives the logger a command runs with. The root command
// logs without a prefix.
func commandLogger(base *log.Logger, cmd *cobra.Command) *log.Logger {
	if !cmd.HasParent() {
		return base
	}
	return base.WithPrefix(strings.TrimPrefix(cmd.CommandPath(), cmd.Root().Name()+" "))
}

// progress times one CLI step, such as building a layout or exporting a
// snapshot, and logs its outcome with the elapsed time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) elapsed() time.Duration {
	return time.Since(p.start).Round(time.Millisecond)
}

// done logs msg at info level, e.g. "Laid out nodes=31 elapsed=4ms".
func (p *progress) done(msg string, keyvals ...any) {
	p.logger.Info(msg, append(keyvals, "elapsed", p.elapsed())...)
}

// failed logs err at debug level; the error itself reaches the user
// through the command's return value.
func (p *progress) failed(msg string, err error) {
	p.logger.Debug(msg, "err", err, "elapsed", p.elapsed())
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for loggerFromContext.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default when a command runs outside RootCommand (as in tests that
// call a RunE directly).
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
