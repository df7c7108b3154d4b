// Package transform provides graph transformations applied before layout.
//
// # Overview
//
// The display pipeline prunes weakly connected entities before they reach
// the layout stage. The main transformation here is [KCore], which keeps the
// maximal subgraph in which every node has at least k neighbors.
//
// Transformations never mutate their input. Each returns a new
// [graph.Graph] so a cached or shared graph can be filtered repeatedly
// with different thresholds.
package transform
