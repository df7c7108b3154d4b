// Package observability lets callers watch imports, display pipeline runs,
// cache traffic and provider API calls without the libraries depending on a
// metrics backend.
//
// # Architecture
//
// Each event category has a hook interface with a no-op default. The
// command line registers [LogHooks] for all categories when running
// verbosely; libraries call whatever is registered:
//
//	observability.Import().OnInsert(ctx, "inserted")
//	observability.Pipeline().OnLayoutComplete(ctx, nodeCount, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Import Hooks
// =============================================================================

// ImportHooks receives events from the entity database.
type ImportHooks interface {
	// OnInsert records the outcome of one insert.
	OnInsert(ctx context.Context, outcome string)

	// OnImportComplete records a finished bulk import.
	OnImportComplete(ctx context.Context, runID string, rows int, duration time.Duration)
}

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the display pipeline.
type PipelineHooks interface {
	// OnBuildComplete records the size of the graph before filtering.
	OnBuildComplete(ctx context.Context, nodeCount, edgeCount int)

	// OnFilterComplete records the size of the k-core.
	OnFilterComplete(ctx context.Context, k, nodeCount, edgeCount int)

	// OnLayoutComplete records a finished layout.
	OnLayoutComplete(ctx context.Context, nodeCount int, duration time.Duration)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopImportHooks is a no-op implementation of ImportHooks.
type NoopImportHooks struct{}

func (NoopImportHooks) OnInsert(context.Context, string)                              {}
func (NoopImportHooks) OnImportComplete(context.Context, string, int, time.Duration) {}

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildComplete(context.Context, int, int)            {}
func (NoopPipelineHooks) OnFilterComplete(context.Context, int, int, int)      {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, int, time.Duration) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// Hooks bundles one implementation per event category. Nil fields leave
// the registered hooks of that category unchanged when passed to Register.
type Hooks struct {
	Import   ImportHooks
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

func noop() Hooks {
	return Hooks{
		Import:   NoopImportHooks{},
		Pipeline: NoopPipelineHooks{},
		Cache:    NoopCacheHooks{},
		HTTP:     NoopHTTPHooks{},
	}
}

var (
	hooksMu sync.RWMutex
	current = noop()
)

// Register installs the non-nil hooks in h.
func Register(h Hooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h.Import != nil {
		current.Import = h.Import
	}
	if h.Pipeline != nil {
		current.Pipeline = h.Pipeline
	}
	if h.Cache != nil {
		current.Cache = h.Cache
	}
	if h.HTTP != nil {
		current.HTTP = h.HTTP
	}
}

// Reset restores all hooks to their no-op defaults.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	current = noop()
}

func registered() Hooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return current
}

// Import returns the registered import hooks.
func Import() ImportHooks { return registered().Import }

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks { return registered().Pipeline }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return registered().Cache }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return registered().HTTP }
