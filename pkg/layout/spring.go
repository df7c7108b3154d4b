package layout

import (
	"math"
	"math/rand/v2"

	"github.com/matzehuels/impactgraph/pkg/graph"
)

const (
	// DefaultIterations is the maximum number of force iterations.
	DefaultIterations = 50
	// DefaultThreshold stops iterating once the mean displacement per node
	// drops below it.
	DefaultThreshold = 1e-4
	// DefaultScale is the largest absolute coordinate after rescaling.
	DefaultScale = 1.0

	minDistance = 0.01
)

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps node IDs to coordinates.
type Positions map[string]Point

// Options tunes the spring layout. Zero values select the defaults.
type Options struct {
	Iterations int
	Threshold  float64
	Scale      float64
	// K is the optimal distance between nodes. Zero means 1/sqrt(n).
	K float64
}

func (o Options) withDefaults(n int) Options {
	if o.Iterations <= 0 {
		o.Iterations = DefaultIterations
	}
	if o.Threshold <= 0 {
		o.Threshold = DefaultThreshold
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.K <= 0 {
		o.K = math.Sqrt(1 / float64(n))
	}
	return o
}

// Spring lays out g with the Fruchterman-Reingold algorithm.
//
// An empty graph yields empty positions and a single node is placed at the
// origin. Every node of g, including isolated ones, receives a position.
func Spring(g *graph.Graph, seed uint64, opts Options) Positions {
	ids := g.NodeIDs()
	n := len(ids)
	out := make(Positions, n)
	switch n {
	case 0:
		return out
	case 1:
		out[ids[0]] = Point{}
		return out
	}
	opts = opts.withDefaults(n)

	idx := graph.PosMap(ids)
	adj := make([][]bool, n)
	for i := range adj {
		adj[i] = make([]bool, n)
	}
	for _, e := range g.Edges() {
		a, b := idx[e.A], idx[e.B]
		adj[a][b], adj[b][a] = true, true
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	pos := make([]Point, n)
	for i := range pos {
		pos[i] = Point{X: rng.Float64(), Y: rng.Float64()}
	}

	iterate(pos, adj, opts)
	rescale(pos, opts.Scale)

	for i, id := range ids {
		out[id] = pos[i]
	}
	return out
}

func iterate(pos []Point, adj [][]bool, opts Options) {
	n := len(pos)
	k := opts.K
	t := 0.1 * span(pos)
	dt := t / float64(opts.Iterations+1)
	disp := make([]Point, n)

	for range opts.Iterations {
		for i := range pos {
			var dx, dy float64
			for j := range pos {
				if i == j {
					continue
				}
				deltaX := pos[i].X - pos[j].X
				deltaY := pos[i].Y - pos[j].Y
				dist := max(math.Hypot(deltaX, deltaY), minDistance)
				force := k * k / (dist * dist)
				if adj[i][j] {
					force -= dist / k
				}
				dx += deltaX * force
				dy += deltaY * force
			}
			disp[i] = Point{X: dx, Y: dy}
		}

		var moved float64
		for i := range pos {
			length := math.Hypot(disp[i].X, disp[i].Y)
			if length < minDistance {
				length = 0.1
			}
			stepX := disp[i].X * t / length
			stepY := disp[i].Y * t / length
			pos[i].X += stepX
			pos[i].Y += stepY
			moved += stepX*stepX + stepY*stepY
		}
		t -= dt
		if math.Sqrt(moved)/float64(n) < opts.Threshold {
			return
		}
	}
}

// span returns the larger of the x and y extents of pos.
func span(pos []Point) float64 {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, p := range pos {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}
	return max(maxX-minX, maxY-minY)
}

// rescale centers pos on the origin and scales it so the largest absolute
// coordinate equals scale.
func rescale(pos []Point, scale float64) {
	var cx, cy float64
	for _, p := range pos {
		cx += p.X
		cy += p.Y
	}
	cx /= float64(len(pos))
	cy /= float64(len(pos))

	var lim float64
	for i := range pos {
		pos[i].X -= cx
		pos[i].Y -= cy
		lim = max(lim, math.Abs(pos[i].X), math.Abs(pos[i].Y))
	}
	if lim == 0 {
		return
	}
	for i := range pos {
		pos[i].X *= scale / lim
		pos[i].Y *= scale / lim
	}
}
