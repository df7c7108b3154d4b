package layout

import (
	"fmt"
	"math"
	"testing"

	"github.com/matzehuels/impactgraph/pkg/graph"
)

func ring(t *testing.T, n int) *graph.Graph {
	t.Helper()
	g := graph.New(nil)
	for i := range n {
		if err := g.AddNode(graph.Node{ID: fmt.Sprintf("n%02d", i)}); err != nil {
			t.Fatal(err)
		}
	}
	for i := range n {
		_ = g.AddEdge(fmt.Sprintf("n%02d", i), fmt.Sprintf("n%02d", (i+1)%n))
	}
	return g
}

func TestSpring_Empty(t *testing.T) {
	if got := Spring(graph.New(nil), 1, Options{}); len(got) != 0 {
		t.Errorf("Spring(empty) = %v, want empty", got)
	}
}

func TestSpring_SingleNode(t *testing.T) {
	g := graph.New(nil)
	_ = g.AddNode(graph.Node{ID: "solo"})
	got := Spring(g, 1, Options{})
	if p, ok := got["solo"]; !ok || p != (Point{}) {
		t.Errorf("Spring(single) = %v, want origin", got)
	}
}

func TestSpring_Deterministic(t *testing.T) {
	a := Spring(ring(t, 12), 1300, Options{})
	b := Spring(ring(t, 12), 1300, Options{})
	if len(a) != 12 {
		t.Fatalf("len = %d, want 12", len(a))
	}
	for id, p := range a {
		if b[id] != p {
			t.Errorf("position of %s differs: %v vs %v", id, p, b[id])
		}
	}
}

func TestSpring_SeedChangesLayout(t *testing.T) {
	a := Spring(ring(t, 8), 1, Options{})
	b := Spring(ring(t, 8), 2, Options{})
	same := true
	for id := range a {
		if a[id] != b[id] {
			same = false
		}
	}
	if same {
		t.Error("different seeds produced identical layouts")
	}
}

func TestSpring_Bounds(t *testing.T) {
	tests := []struct {
		name  string
		scale float64
	}{
		{"default scale", 0},
		{"custom scale", 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := Spring(ring(t, 10), 42, Options{Scale: tt.scale})
			want := tt.scale
			if want == 0 {
				want = DefaultScale
			}
			var lim float64
			for id, p := range pos {
				if math.IsNaN(p.X) || math.IsNaN(p.Y) {
					t.Fatalf("%s has NaN position", id)
				}
				lim = max(lim, math.Abs(p.X), math.Abs(p.Y))
			}
			if math.Abs(lim-want) > 1e-9 {
				t.Errorf("max abs coordinate = %v, want %v", lim, want)
			}
		})
	}
}

func TestSpring_IsolatedNodesPlaced(t *testing.T) {
	g := ring(t, 4)
	_ = g.AddNode(graph.Node{ID: "island"})
	pos := Spring(g, 7, Options{})
	if _, ok := pos["island"]; !ok {
		t.Error("isolated node has no position")
	}
}

func TestSpring_NeighborsCloserThanStrangers(t *testing.T) {
	// Two disjoint triangles should end up as two separated clusters.
	g := graph.New(nil)
	for _, id := range []string{"a", "b", "c", "x", "y", "z"} {
		_ = g.AddNode(graph.Node{ID: id})
	}
	for _, e := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"x", "y"}, {"y", "z"}, {"z", "x"}} {
		_ = g.AddEdge(e[0], e[1])
	}
	pos := Spring(g, 1300, Options{Iterations: 200})
	dist := func(a, b string) float64 {
		return math.Hypot(pos[a].X-pos[b].X, pos[a].Y-pos[b].Y)
	}
	if dist("a", "b") >= dist("a", "x") {
		t.Errorf("neighbors a-b (%.3f) not closer than strangers a-x (%.3f)", dist("a", "b"), dist("a", "x"))
	}
}
