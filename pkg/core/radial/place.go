package radial

import (
	"math"

	"github.com/matzehuels/rose/pkg/graph"
)

// Default sibling placement constants.
const (
	DefaultPlacementRadius    = 180.0
	DefaultPlacementClearance = 100.0
	DefaultPlacementMargin    = 20.0
)

// PlacementOptions configures [PlaceSibling]. Zero fields take defaults.
type PlacementOptions struct {
	// Radius is the distance from the parent to the candidate point.
	Radius float64
	// Clearance is the distance below which an existing node pushes the
	// candidate away.
	Clearance float64
	// Margin is added to each push.
	Margin float64
}

// DefaultPlacementOptions returns the default sibling placement settings.
func DefaultPlacementOptions() PlacementOptions {
	return PlacementOptions{}.WithDefaults()
}

// WithDefaults returns a copy of o with zero fields set to defaults.
func (o PlacementOptions) WithDefaults() PlacementOptions {
	setDefault(&o.Radius, DefaultPlacementRadius)
	setDefault(&o.Clearance, DefaultPlacementClearance)
	setDefault(&o.Margin, DefaultPlacementMargin)
	return o
}

// PlaceSibling returns a provisional position for the index-th of total new
// children of parent, before a full layout is run.
//
// Candidates sit on a circle of Radius around the parent, spaced by
// 2π/max(total, 3) starting straight up. A single pass over placed then
// pushes the candidate directly away from every node closer than Clearance,
// by the shortfall plus Margin. The result is not guaranteed collision-free.
func PlaceSibling(parent graph.Position, placed []graph.Position, index, total int, opts PlacementOptions) graph.Position {
	opts = opts.WithDefaults()
	step := 2 * math.Pi / float64(max(total, 3))
	angle := StartAngle + step*float64(index)
	p := polar(parent, angle, opts.Radius)

	for _, q := range placed {
		if !q.IsFinite() {
			continue
		}
		dx, dy := p.X-q.X, p.Y-q.Y
		d := math.Hypot(dx, dy)
		if d >= opts.Clearance {
			continue
		}
		ux, uy := math.Cos(angle), math.Sin(angle)
		if d > angleEpsilon {
			ux, uy = dx/d, dy/d
		}
		push := opts.Clearance - d + opts.Margin
		p.X += ux * push
		p.Y += uy * push
	}
	return p
}
