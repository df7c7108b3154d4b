package nodelink

import (
	"math"

	"github.com/matzehuels/impactgraph/pkg/layout"
)

// Palette is the Plotly Dark24 qualitative color sequence.
var Palette = []string{
	"#2E91E5", "#E15F99", "#1CA71C", "#FB0D0D", "#DA16FF", "#222A2A",
	"#B68100", "#750D86", "#EB663B", "#511CFB", "#00A08B", "#FB00D1",
	"#FC0080", "#B2828D", "#6C7C32", "#778AAE", "#862A16", "#A777F1",
	"#620042", "#1616A7", "#DA60CA", "#6C4516", "#0D2A63", "#AF0038",
}

// Style holds the visual attributes of one node.
type Style struct {
	Size  int
	Color string
}

// ColorIndex buckets x into one of n bins by |x|. Coordinates in [-1, 1]
// spread over the whole range, and anything outside clamps to the last bin.
// Returns 0 when n <= 0 or x is NaN.
func ColorIndex(x float64, n int) int {
	if n <= 0 || math.IsNaN(x) {
		return 0
	}
	idx := int(math.Abs(x) * float64(n))
	return min(max(idx, 0), n-1)
}

// Attributes derives the style of a node from its position and the IDs of
// the nodes following it.
func Attributes(pos layout.Point, followers []string) Style {
	return Style{
		Size:  len(followers),
		Color: Palette[ColorIndex(pos.X, len(Palette))],
	}
}
