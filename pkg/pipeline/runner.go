package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/cache"
	"github.com/matzehuels/impactgraph/pkg/entity"
	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/graph/transform"
	"github.com/matzehuels/impactgraph/pkg/layout"
	"github.com/matzehuels/impactgraph/pkg/observability"
	"github.com/matzehuels/impactgraph/pkg/render/nodelink"
)

// RecordSource provides a snapshot of the stored records.
type RecordSource interface {
	Records(ctx context.Context) ([]entity.Record, error)
}

// Runner computes display results with caching.
//
// The Runner holds no per-request state. Multiple goroutines can safely use
// the same Runner with different options.
type Runner struct {
	Source RecordSource
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	TTL    time.Duration
}

// NewRunner creates a runner reading records from src.
// If keyer is nil, a DefaultKeyer is used.
// A nil cache disables caching.
func NewRunner(src RecordSource, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Source: src,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		TTL:    cache.TTLElements,
	}
}

// cachedResult is the cached form of a Result.
type cachedResult struct {
	Elements  []nodelink.Element  `json:"elements"`
	Order     []string            `json:"order"`
	Positions layout.Positions    `json:"positions"`
	Followers map[string][]string `json:"followers"`
	Graph     graph.Document      `json:"graph"`
	Stats     Stats               `json:"stats"`
}

// Elements runs build, k-core filter, layout and attribute mapping over the
// current records.
func (r *Runner) Elements(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	records, err := r.Source.Records(ctx)
	if err != nil {
		return nil, fmt.Errorf("load records: %w", err)
	}
	snapshot, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("hash records: %w", err)
	}
	hash := cache.Hash(snapshot)
	key := r.Keyer.ElementsKey(hash, opts.ElementsKeyOpts())

	if !opts.Refresh {
		if res, ok := r.load(ctx, key); ok {
			res.SnapshotHash = hash
			logger.Debug("elements cache hit", "nodes", res.Stats.NodeCount, "edges", res.Stats.EdgeCount)
			return res, nil
		}
	}

	res := Compute(ctx, records, opts)
	res.SnapshotHash = hash
	logger.Info("computed elements",
		"records", res.Stats.Records,
		"k", opts.K,
		"graph", res.Stats.String(),
		"duration", res.Stats.ComputeTime)

	r.store(ctx, key, res)
	return res, nil
}

// Compute runs the display stages over records without caching. Zero
// options are replaced by their defaults.
func Compute(ctx context.Context, records []entity.Record, opts Options) *Result {
	_ = opts.ValidateAndSetDefaults()
	start := time.Now()
	hooks := observability.Pipeline()

	sel := Select(records, opts.Names, opts.Relation)
	hooks.OnBuildComplete(ctx, sel.Graph.NodeCount(), sel.Graph.EdgeCount())

	core := transform.KCore(sel.Graph, opts.K)
	for id, k := range transform.CoreNumbers(sel.Graph) {
		if n, ok := core.Node(id); ok {
			if n.Meta == nil {
				n.Meta = graph.Metadata{}
			}
			n.Meta["core"] = k
		}
	}
	hooks.OnFilterComplete(ctx, opts.K, core.NodeCount(), core.EdgeCount())

	layoutStart := time.Now()
	pos := layout.Spring(core, opts.Seed, layout.Options{})
	layoutTime := time.Since(layoutStart)
	hooks.OnLayoutComplete(ctx, core.NodeCount(), layoutTime)

	return &Result{
		Elements:  nodelink.Elements(core, sel.Order, pos, sel.Followers, opts.Scale()),
		Graph:     core,
		Order:     sel.Order,
		Positions: pos,
		Followers: sel.Followers,
		Stats: Stats{
			Records:     len(records),
			BuildNodes:  sel.Graph.NodeCount(),
			BuildEdges:  sel.Graph.EdgeCount(),
			NodeCount:   core.NodeCount(),
			EdgeCount:   core.EdgeCount(),
			LayoutTime:  layoutTime,
			ComputeTime: time.Since(start),
		},
	}
}

func (r *Runner) load(ctx context.Context, key string) (*Result, bool) {
	data, hit, err := r.Cache.Get(ctx, key)
	if err != nil || !hit {
		observability.Cache().OnCacheMiss(ctx, "elements")
		return nil, false
	}
	var cached cachedResult
	if err := json.Unmarshal(data, &cached); err != nil {
		observability.Cache().OnCacheMiss(ctx, "elements")
		return nil, false
	}
	g, err := graph.ToGraph(cached.Graph)
	if err != nil {
		observability.Cache().OnCacheMiss(ctx, "elements")
		return nil, false
	}
	observability.Cache().OnCacheHit(ctx, "elements")
	return &Result{
		Elements:  cached.Elements,
		Graph:     g,
		Order:     cached.Order,
		Positions: cached.Positions,
		Followers: cached.Followers,
		Stats:     cached.Stats,
		CacheHit:  true,
	}, true
}

func (r *Runner) store(ctx context.Context, key string, res *Result) {
	data, err := json.Marshal(cachedResult{
		Elements:  res.Elements,
		Order:     res.Order,
		Positions: res.Positions,
		Followers: res.Followers,
		Graph:     graph.FromGraph(res.Graph),
		Stats:     res.Stats,
	})
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, data, r.TTL); err != nil {
		r.Logger.Warn("cache elements", "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, "elements", len(data))
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
