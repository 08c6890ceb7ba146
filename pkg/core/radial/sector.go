package radial

import (
	"math"

	"github.com/matzehuels/rose/pkg/graph"
)

// Sector is a half-open angular interval [Start, End) in radians.
type Sector struct {
	Start float64
	End   float64
}

// Span returns the angular width of the sector.
func (s Sector) Span() float64 { return s.End - s.Start }

// Mid returns the bisecting angle.
func (s Sector) Mid() float64 { return s.Start + s.Span()/2 }

// Target is the ideal position of a node before relaxation.
type Target struct {
	Position graph.Position
	Angle    float64
	Radius   float64
	Depth    int
}

// Weights returns the subtree weight of every node: 1 for leaves, otherwise
// the sum of the children's weights. Disconnected nodes weigh 1.
func Weights(t *Tree) map[string]int {
	w := make(map[string]int, len(t.Order)+len(t.Disconnected))
	for i := len(t.Order) - 1; i >= 0; i-- {
		id := t.Order[i]
		sum := 0
		for _, c := range t.Children[id] {
			sum += w[c]
		}
		w[id] = max(sum, 1)
	}
	for _, id := range t.Disconnected {
		w[id] = 1
	}
	return w
}

// Sectors splits the full turn [StartAngle, StartAngle+2π) recursively: each
// node's children divide its sector proportionally to their weights, in
// child order, with no gaps. Disconnected nodes get no sector.
func Sectors(t *Tree, w map[string]int) map[string]Sector {
	out := make(map[string]Sector, len(t.Order))
	if len(t.Order) == 0 {
		return out
	}
	out[t.Root] = Sector{Start: StartAngle, End: StartAngle + 2*math.Pi}

	for _, id := range t.Order {
		children := t.Children[id]
		if len(children) == 0 {
			continue
		}
		total := 0
		for _, c := range children {
			total += w[c]
		}
		parent := out[id]
		start := parent.Start
		for i, c := range children {
			end := start + parent.Span()*float64(w[c])/float64(total)
			if i == len(children)-1 {
				end = parent.End
			}
			out[c] = Sector{Start: start, End: end}
			start = end
		}
	}
	return out
}

// RingRadius returns the target radius for a depth: 0 for the root, then
// RingStart, RingStart+RingGap, and so on.
func RingRadius(depth int, opts Options) float64 {
	if depth <= 0 {
		return 0
	}
	return opts.RingStart + float64(depth-1)*opts.RingGap
}

// Targets computes the target point of every node. Reachable nodes aim at
// the midpoint of their sector on their depth ring. Disconnected nodes are
// spread evenly on the ring after the deepest one, offset by half a step.
func Targets(t *Tree, opts Options) map[string]Target {
	opts = opts.WithDefaults()
	sectors := Sectors(t, Weights(t))
	out := make(map[string]Target, len(t.Order)+len(t.Disconnected))

	for _, id := range t.Order {
		if id == t.Root {
			out[id] = Target{Position: opts.Center, Angle: StartAngle}
			continue
		}
		d := t.Depth[id]
		a := sectors[id].Mid()
		r := RingRadius(d, opts)
		out[id] = Target{Position: polar(opts.Center, a, r), Angle: a, Radius: r, Depth: d}
	}

	if k := len(t.Disconnected); k > 0 {
		d := t.MaxDepth + 1
		r := RingRadius(d, opts)
		step := 2 * math.Pi / float64(k)
		for i, id := range t.Disconnected {
			a := StartAngle + (float64(i)+0.5)*step
			out[id] = Target{Position: polar(opts.Center, a, r), Angle: a, Radius: r, Depth: d}
		}
	}
	return out
}

func polar(center graph.Position, angle, radius float64) graph.Position {
	return graph.Position{
		X: center.X + radius*math.Cos(angle),
		Y: center.Y + radius*math.Sin(angle),
	}
}
