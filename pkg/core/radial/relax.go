package radial

import (
	"math"

	"github.com/matzehuels/rose/pkg/graph"
)

// goldenAngle spreads deterministic separation directions for coincident
// points.
const goldenAngle = math.Pi * (3 - 2.2360679774997896) // π(3-√5)

const (
	// overlapMargin is added to the clearance during the final sweep so that
	// rounding never leaves a pair just short of it.
	overlapMargin = 0.5
	// sectorInset is the share of a sector's span kept free at each edge
	// when a body is confined to it.
	sectorInset = 0.1
)

// =============================================================================
// Bodies and Links
// =============================================================================

type body struct {
	id     string
	x, y   float64
	vx, vy float64
	pinned bool
	target Target
	// sector is set for reachable non-root nodes; the body never leaves it.
	sector    Sector
	hasSector bool
}

type link struct {
	a, b     int
	rest     float64
	strength float64
	// bias is the share of the correction applied to b.
	bias float64
}

// simulation is a velocity-Verlet style relaxation with a cooling factor
// (alpha), modelled on the d3-force family of layouts.
type simulation struct {
	bodies []body
	links  []link
	opts   Options
	center graph.Position
}

// newSimulation seeds one body per distinct node, starting at its target.
// Current positions only decide sibling order (see [ExtractTree]); seeding
// from targets makes the result a function of the tree, so a relayout of a
// layout's own output reproduces it. The root is pinned to the center for
// the whole run.
func newSimulation(nodes []graph.Node, edges []graph.Edge, t *Tree, targets map[string]Target, sectors map[string]Sector, opts Options) *simulation {
	s := &simulation{opts: opts, center: opts.Center}
	index := make(map[string]int, len(nodes))
	for _, n := range nodes {
		if _, dup := index[n.ID]; dup {
			continue
		}
		tg := targets[n.ID]
		b := body{id: n.ID, x: tg.Position.X, y: tg.Position.Y, target: tg}
		if n.ID == t.Root {
			b.pinned = true
			b.x, b.y = opts.Center.X, opts.Center.Y
		} else if sec, ok := sectors[n.ID]; ok && t.Reachable(n.ID) {
			b.sector, b.hasSector = sec, true
		}
		index[n.ID] = len(s.bodies)
		s.bodies = append(s.bodies, b)
	}
	s.links = buildLinks(edges, index, t, opts)
	return s
}

// buildLinks turns each distinct undirected edge into a spring. Tree edges
// are short and stiff; cross edges are long and weak, with extra slack per
// ring they span.
func buildLinks(edges []graph.Edge, index map[string]int, t *Tree, opts Options) []link {
	type pair struct{ a, b int }
	seen := make(map[pair]bool, len(edges))
	degree := make([]int, len(index))
	var links []link

	for _, e := range edges {
		a, okA := index[e.Source]
		b, okB := index[e.Target]
		if !okA || !okB || a == b {
			continue
		}
		key := pair{min(a, b), max(a, b)}
		if seen[key] {
			continue
		}
		seen[key] = true
		degree[a]++
		degree[b]++

		l := link{a: a, b: b}
		if t.IsTreeEdge(e.Source, e.Target) {
			l.rest = opts.TreeLinkDistance
			l.strength = opts.TreeLinkStrength
		} else {
			dd := math.Abs(float64(t.Depth[e.Source] - t.Depth[e.Target]))
			l.rest = opts.CrossLinkDistance + opts.CrossLinkSlack*dd
			l.strength = opts.CrossLinkStrength
		}
		links = append(links, l)
	}

	for i := range links {
		l := &links[i]
		l.bias = float64(degree[l.a]) / float64(degree[l.a]+degree[l.b])
	}
	return links
}

// =============================================================================
// Run
// =============================================================================

// run performs the fixed step budget and then removes any overlap the
// forces left behind. Every step ends with bodies confined to their sectors,
// and the final sweep only moves bodies along their ray from the center, so
// each reachable node finishes inside its own sector.
func (s *simulation) run() {
	alpha := 1.0
	decay := 1 - math.Pow(s.opts.AlphaMin, 1/float64(max(s.opts.Iterations, 1)))
	for i := 0; i < s.opts.Iterations; i++ {
		s.tick(alpha)
		alpha = math.Max(alpha*(1-decay), s.opts.AlphaMin)
	}
	s.resolveOverlaps()
}

func (s *simulation) tick(alpha float64) {
	s.applyCharge(alpha)
	s.applyLinks(alpha)
	s.applyRadial(alpha)
	s.applyAnchor(alpha)

	keep := 1 - s.opts.VelocityDecay
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			b.vx, b.vy = 0, 0
			b.x, b.y = s.center.X, s.center.Y
			continue
		}
		b.vx *= keep
		b.vy *= keep
		b.x += b.vx
		b.y += b.vy
	}

	for k := 0; k < s.opts.CollisionIterations; k++ {
		s.collide(s.opts.Clearance)
	}
	s.confine()
}

// positions returns the current position of every body, with the root set
// exactly on the center.
func (s *simulation) positions() map[string]graph.Position {
	out := make(map[string]graph.Position, len(s.bodies))
	for _, b := range s.bodies {
		if b.pinned {
			out[b.id] = s.center
			continue
		}
		out[b.id] = graph.Position{X: b.x, Y: b.y}
	}
	return out
}

// =============================================================================
// Forces
// =============================================================================

// applyCharge repels every pair within ChargeDistanceMax with magnitude
// Charge·α/d², d clamped to ChargeDistanceMin.
func (s *simulation) applyCharge(alpha float64) {
	for i := 0; i < len(s.bodies); i++ {
		bi := &s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			bj := &s.bodies[j]
			ux, uy, d := direction(bj.x-bi.x, bj.y-bi.y, i, j)
			if d >= s.opts.ChargeDistanceMax {
				continue
			}
			dc := math.Max(d, s.opts.ChargeDistanceMin)
			f := s.opts.Charge * alpha / (dc * dc)
			bi.vx -= ux * f
			bi.vy -= uy * f
			bj.vx += ux * f
			bj.vy += uy * f
		}
	}
}

// applyLinks pulls (or pushes) linked pairs toward their rest length. The
// correction is shared by degree so that hubs move less.
func (s *simulation) applyLinks(alpha float64) {
	for _, l := range s.links {
		a, b := &s.bodies[l.a], &s.bodies[l.b]
		ux, uy, d := direction(b.x-a.x, b.y-a.y, l.a, l.b)
		delta := (d - l.rest) * l.strength * alpha
		dx, dy := ux*delta, uy*delta

		bias := l.bias
		switch {
		case a.pinned:
			bias = 1
		case b.pinned:
			bias = 0
		}
		b.vx -= dx * bias
		b.vy -= dy * bias
		a.vx += dx * (1 - bias)
		a.vy += dy * (1 - bias)
	}
}

// applyRadial pulls every body toward the circle of its target ring.
func (s *simulation) applyRadial(alpha float64) {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			continue
		}
		dx, dy := b.x-s.center.X, b.y-s.center.Y
		r := math.Hypot(dx, dy)
		ux, uy := math.Cos(b.target.Angle), math.Sin(b.target.Angle)
		if r > angleEpsilon {
			ux, uy = dx/r, dy/r
		}
		k := (b.target.Radius - r) * s.opts.RadialStrength * alpha
		b.vx += ux * k
		b.vy += uy * k
	}
}

// applyAnchor pulls every body weakly toward its wedge target point.
func (s *simulation) applyAnchor(alpha float64) {
	k := s.opts.AnchorStrength * alpha
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned {
			continue
		}
		b.vx += (b.target.Position.X - b.x) * k
		b.vy += (b.target.Position.Y - b.y) * k
	}
}

// =============================================================================
// Collisions
// =============================================================================

// collide pushes apart every pair closer than clearance. The pinned root
// never moves; its partner takes the full correction.
func (s *simulation) collide(clearance float64) {
	for i := 0; i < len(s.bodies); i++ {
		bi := &s.bodies[i]
		for j := i + 1; j < len(s.bodies); j++ {
			bj := &s.bodies[j]
			ux, uy, d := direction(bj.x-bi.x, bj.y-bi.y, i, j)
			if d >= clearance || (bi.pinned && bj.pinned) {
				continue
			}
			gap := clearance - d
			switch {
			case bi.pinned:
				bj.x += ux * gap
				bj.y += uy * gap
			case bj.pinned:
				bi.x -= ux * gap
				bi.y -= uy * gap
			default:
				bi.x -= ux * gap / 2
				bi.y -= uy * gap / 2
				bj.x += ux * gap / 2
				bj.y += uy * gap / 2
			}
		}
	}
}

// confine rotates every body that left its sector back onto the nearest
// inset edge of it, keeping its distance from the center.
func (s *simulation) confine() {
	for i := range s.bodies {
		b := &s.bodies[i]
		if b.pinned || !b.hasSector {
			continue
		}
		dx, dy := b.x-s.center.X, b.y-s.center.Y
		r := math.Hypot(dx, dy)
		if r < angleEpsilon {
			b.x, b.y = b.target.Position.X, b.target.Position.Y
			continue
		}

		inset := b.sector.Span() * sectorInset
		lo := b.sector.Start - StartAngle + inset
		hi := b.sector.End - StartAngle - inset
		a := sweep(math.Atan2(dy, dx))
		if a >= lo && a <= hi {
			continue
		}
		edge := hi
		if turnDistance(a, lo) < turnDistance(a, hi) {
			edge = lo
		}
		p := polar(s.center, StartAngle+edge, r)
		b.x, b.y = p.X, p.Y
	}
}

// turnDistance is the shorter way round the circle between two angles.
func turnDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 2*math.Pi)
	return math.Min(d, 2*math.Pi-d)
}

// resolveOverlaps settles bodies one at a time, the pinned root first and
// then in node order. Each body moves outward along its ray from the center
// to the nearest distance at which it clears every settled body by
// Clearance. Settled bodies never move again, so every pair ends clear, and
// no body changes its angle.
func (s *simulation) resolveOverlaps() {
	if s.opts.Clearance <= 0 {
		return
	}
	c := s.opts.Clearance + overlapMargin

	order := make([]int, 0, len(s.bodies))
	for i, b := range s.bodies {
		if b.pinned {
			order = append(order, i)
		}
	}
	for i, b := range s.bodies {
		if !b.pinned {
			order = append(order, i)
		}
	}

	for k, i := range order {
		b := &s.bodies[i]
		if b.pinned {
			continue
		}
		ux, uy, r := s.ray(b)
		// Along the ray, the distance to a settled body q is below c on the
		// open interval proj ± sqrt(proj² - |q|² + c²). Jumping to the upper
		// end clears q for good, so each settled body moves r at most once.
		for moved := true; moved; {
			moved = false
			for _, j := range order[:k] {
				qx, qy := s.bodies[j].x-s.center.X, s.bodies[j].y-s.center.Y
				proj := ux*qx + uy*qy
				disc := proj*proj - (qx*qx + qy*qy) + c*c
				if disc <= 0 {
					continue
				}
				h := math.Sqrt(disc)
				if r > proj-h && r < proj+h {
					r = proj + h
					moved = true
				}
			}
		}
		b.x, b.y = s.center.X+ux*r, s.center.Y+uy*r
	}
}

// ray returns the unit direction of b from the center and its distance. A
// body on the center uses its target angle.
func (s *simulation) ray(b *body) (ux, uy, r float64) {
	dx, dy := b.x-s.center.X, b.y-s.center.Y
	r = math.Hypot(dx, dy)
	if r < angleEpsilon {
		return math.Cos(b.target.Angle), math.Sin(b.target.Angle), 0
	}
	return dx / r, dy / r, r
}

// direction returns the unit vector and length of (dx, dy). Coincident
// points get a direction derived from their indices.
func direction(dx, dy float64, i, j int) (ux, uy, d float64) {
	d = math.Hypot(dx, dy)
	if d < angleEpsilon {
		a := goldenAngle * float64(i+j+1)
		return math.Cos(a), math.Sin(a), 0
	}
	return dx / d, dy / d, d
}
