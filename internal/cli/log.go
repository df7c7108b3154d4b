// Package cli implements the impactgraph command-line interface.
//
// Commands cover both halves of the tool: building the project database
// (import, add) and looking at it (graph, render, show, browse, serve).
// The CLI is built with cobra; output styling uses lipgloss and logging uses
// charmbracelet/log.
//
// # Commands
//
//   - import: Bulk-load projects from a CSV export
//   - add: Insert a single project
//   - graph: Write Cytoscape elements as JSON
//   - render: Draw the graph as SVG, PDF or PNG
//   - show: Print the detail card of one project
//   - browse: Interactive project list with detail view
//   - serve: HTTP API over the database
//   - cache: Manage the lookup and element cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The root
// command attaches the logger to the command context.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger writes leveled records with centisecond timestamps to w.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one operation. done logs the message with the elapsed
// time appended, e.g. "Processed 42 projects (1.234s)".
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(format string, args ...any) {
	elapsed := time.Since(p.start).Round(time.Millisecond)
	p.logger.Infof("%s (%s)", fmt.Sprintf(format, args...), elapsed)
}

type loggerKey struct{}

// withLogger attaches l to ctx for the command run.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
