package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook interface by writing debug records to a
// charmbracelet logger. Register it with [LogHooks.Hooks].
type LogHooks struct {
	Logger *log.Logger
}

// NewLogHooks returns hooks that log to l, or to log.Default() when l is nil.
func NewLogHooks(l *log.Logger) *LogHooks {
	if l == nil {
		l = log.Default()
	}
	return &LogHooks{Logger: l.WithPrefix("obs")}
}

// Hooks returns h in every category.
func (h *LogHooks) Hooks() Hooks {
	return Hooks{Import: h, Pipeline: h, Cache: h, HTTP: h}
}

func (h *LogHooks) OnInsert(_ context.Context, outcome string) {
	h.Logger.Debug("insert", "outcome", outcome)
}

func (h *LogHooks) OnImportComplete(_ context.Context, runID string, rows int, d time.Duration) {
	h.Logger.Debug("import complete", "run", runID, "rows", rows, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnBuildComplete(_ context.Context, nodes, edges int) {
	h.Logger.Debug("graph built", "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnFilterComplete(_ context.Context, k, nodes, edges int) {
	h.Logger.Debug("k-core", "k", k, "nodes", nodes, "edges", edges)
}

func (h *LogHooks) OnLayoutComplete(_ context.Context, nodes int, d time.Duration) {
	h.Logger.Debug("layout", "nodes", nodes, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.Logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.Logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.Logger.Debug("cache set", "type", keyType, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, host, path string) {
	h.Logger.Debug("request", "method", method, "host", host, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, host, path string, status int, d time.Duration) {
	h.Logger.Debug("response", "method", method, "host", host, "path", path, "status", status, "took", d.Round(time.Millisecond))
}

func (h *LogHooks) OnError(_ context.Context, method, host, path string, err error) {
	h.Logger.Warn("request failed", "method", method, "host", host, "path", path, "err", err)
}
