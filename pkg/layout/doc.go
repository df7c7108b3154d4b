// Package layout computes 2D coordinates for relationship graphs.
//
// # Overview
//
// [Spring] implements a Fruchterman-Reingold force-directed layout. Connected
// nodes attract each other and all nodes repel, and a linearly cooling
// temperature bounds how far any node moves per iteration. The final
// coordinates are centered on the origin and scaled so the largest absolute
// coordinate equals [Options.Scale].
//
// # Determinism
//
// The layout is a pure function of the graph and the seed. Nodes are
// processed in sorted ID order and the initial positions are drawn from a
// PCG generator seeded with the caller's seed, so the same graph and seed
// always produce identical coordinates.
//
//	pos := layout.Spring(g, 1300, layout.Options{})
//	p := pos["gitcoin"]
package layout
