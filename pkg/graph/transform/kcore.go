package transform

import "github.com/matzehuels/impactgraph/pkg/graph"

// KCore returns the k-core of g: the maximal subgraph in which every node has
// degree >= k within that subgraph.
//
// # Algorithm
//
// KCore works on a clone of g. It seeds a queue with every node whose degree
// is below k, then repeatedly removes the head of the queue and enqueues any
// neighbor whose degree falls below k as a result. Each node is enqueued at
// most once, so the run is O(V+E). The result does not depend on the order in
// which nodes are peeled.
//
// # Edge Cases
//
// For k <= 0 the clone is returned unchanged. If no node survives, the result
// is an empty graph. Node metadata on surviving nodes is preserved.
func KCore(g *graph.Graph, k int) *graph.Graph {
	out := g.Clone()
	if k <= 0 {
		return out
	}

	queued := make(map[string]bool)
	var queue []string
	for _, id := range out.NodeIDs() {
		if out.Degree(id) < k {
			queued[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		nbrs := out.Neighbors(id)
		out.RemoveNode(id)
		for _, n := range nbrs {
			if !queued[n] && out.Degree(n) < k {
				queued[n] = true
				queue = append(queue, n)
			}
		}
	}
	return out
}

// CoreNumbers returns the largest k for which each node belongs to the
// k-core of g. Isolated nodes have core number 0.
func CoreNumbers(g *graph.Graph) map[string]int {
	work := g.Clone()
	core := make(map[string]int, g.NodeCount())
	for k := 0; work.NodeCount() > 0; k++ {
		next := KCore(work, k+1)
		for _, id := range work.NodeIDs() {
			if _, ok := next.Node(id); !ok {
				core[id] = k
			}
		}
		work = next
	}
	return core
}
