// Package pipeline turns the project database into display elements.
//
// The display pipeline runs four pure stages over a snapshot of the stored
// records:
//
//  1. Build: one node per requested project, one undirected edge per
//     relationship between two requested projects
//  2. Filter: keep the k-core of the graph
//  3. Layout: seeded Fruchterman-Reingold spring layout
//  4. Attributes: node size from in-graph followers, color from position
//
// # Usage
//
//	runner := pipeline.NewRunner(db, c, nil, logger)
//	result, err := runner.Elements(ctx, pipeline.Options{
//	    Names: []string{"Alpha", "Beta"},
//	    K:     1,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, el := range result.Elements {
//	    fmt.Println(el.Data)
//	}
//
// A result is cached under the hash of the record snapshot and the display
// options, so an unchanged database with unchanged options never recomputes
// the layout.
package pipeline

import (
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/impactgraph/pkg/cache"
	errs "github.com/matzehuels/impactgraph/pkg/errors"
	"github.com/matzehuels/impactgraph/pkg/graph"
	"github.com/matzehuels/impactgraph/pkg/layout"
	"github.com/matzehuels/impactgraph/pkg/render/nodelink"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultMinConnections is the default k of the k-core filter.
	DefaultMinConnections = 5

	// DefaultSeed is the default layout seed.
	DefaultSeed = uint64(1300)

	// DefaultXScale and DefaultYScale stretch layout coordinates to display units.
	DefaultXScale = 400.0
	DefaultYScale = 300.0
)

// Relation modes select which stored id list drives the graph.
const (
	RelationFriends   = "friends"
	RelationFollowers = "followers"
	RelationBoth      = "both"
)

// DefaultRelation is the relation used when none is given.
const DefaultRelation = RelationFriends

// ValidRelations is the set of supported relation modes.
var ValidRelations = map[string]bool{
	RelationFriends:   true,
	RelationFollowers: true,
	RelationBoth:      true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one display computation.
// The JSON form is used by the HTTP API.
type Options struct {
	// Names selects projects by name, in display order. Empty means all.
	Names []string `json:"names,omitempty"`
	// K is the minimum number of connections each shown node keeps.
	// Negative selects DefaultMinConnections; zero disables the filter.
	K int `json:"k"`
	// Seed drives the layout. Zero selects DefaultSeed, so seeds are
	// positive; the CLI and HTTP API reject an explicit zero.
	Seed     uint64  `json:"seed,omitempty"`
	Relation string  `json:"relation,omitempty"`
	XScale   float64 `json:"x_scale,omitempty"`
	YScale   float64 `json:"y_scale,omitempty"`
	// Refresh bypasses the result cache.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// ValidateRelation checks that a relation mode is supported.
func ValidateRelation(relation string) error {
	if !ValidRelations[relation] {
		return errs.New(errs.ErrCodeInvalidOptions,
			"invalid relation: %q (must be one of: friends, followers, both)", relation)
	}
	return nil
}

// ValidateAndSetDefaults fills zero values with defaults and validates the
// rest. It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.K < 0 {
		o.K = DefaultMinConnections
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Relation == "" {
		o.Relation = DefaultRelation
	}
	if o.XScale == 0 {
		o.XScale = DefaultXScale
	}
	if o.YScale == 0 {
		o.YScale = DefaultYScale
	}
	if err := ValidateRelation(o.Relation); err != nil {
		return err
	}
	for _, name := range o.Names {
		if err := errs.ValidateProjectName(name); err != nil {
			return err
		}
	}
	return nil
}

// Scale returns the display scale.
func (o *Options) Scale() nodelink.Scale {
	return nodelink.Scale{X: o.XScale, Y: o.YScale}
}

// ElementsKeyOpts returns the cache key options for the result.
func (o *Options) ElementsKeyOpts() cache.ElementsKeyOpts {
	return cache.ElementsKeyOpts{
		Names:    slices.Clone(o.Names),
		K:        o.K,
		Seed:     o.Seed,
		Relation: o.Relation,
		XScale:   o.XScale,
		YScale:   o.YScale,
	}
}

// =============================================================================
// Result
// =============================================================================

// Result holds the output of one display computation.
type Result struct {
	// Elements is the Cytoscape element list: nodes first, then edges.
	Elements []nodelink.Element

	// Graph is the k-core filtered graph. Each node carries its core number
	// within the unfiltered selection under the "core" metadata key.
	Graph *graph.Graph

	// Order is the node display order.
	Order []string

	// Positions holds the unscaled layout in [-1, 1].
	Positions layout.Positions

	// Followers maps each node to the stored projects following it.
	Followers map[string][]string

	// SnapshotHash identifies the record snapshot the result was built from.
	SnapshotHash string

	Stats    Stats
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Records     int
	BuildNodes  int
	BuildEdges  int
	NodeCount   int
	EdgeCount   int
	LayoutTime  time.Duration
	ComputeTime time.Duration
}

func (s Stats) String() string {
	return fmt.Sprintf("%d/%d nodes, %d/%d edges", s.NodeCount, s.BuildNodes, s.EdgeCount, s.BuildEdges)
}
