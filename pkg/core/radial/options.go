package radial

import (
	"fmt"

	"github.com/matzehuels/rose/pkg/graph"
)

// Default layout constants.
const (
	DefaultCenterX             = 400.0
	DefaultCenterY             = 300.0
	DefaultRingStart           = 200.0
	DefaultRingGap             = 180.0
	DefaultIterations          = 300
	DefaultAlphaMin            = 0.001
	DefaultVelocityDecay       = 0.4
	DefaultCharge              = 60000.0
	DefaultChargeDistanceMin   = 60.0
	DefaultChargeDistanceMax   = 700.0
	DefaultTreeLinkDistance    = 180.0
	DefaultTreeLinkStrength    = 0.4
	DefaultCrossLinkDistance   = 260.0
	DefaultCrossLinkStrength   = 0.05
	DefaultCrossLinkSlack      = 80.0
	DefaultRadialStrength      = 0.3
	DefaultAnchorStrength      = 0.06
	DefaultClearance           = 110.0
	DefaultCollisionIterations = 3
)

// Upper bounds accepted by [Options.Validate]. A layout cannot be
// interrupted, so its step budget must stay small.
const (
	MaxIterations          = 5000
	MaxCollisionIterations = 50
)

// Options configures a layout call. The zero value is completed by
// [Options.WithDefaults]; use [DefaultOptions] for the full default set.
type Options struct {
	// Center is the canvas center and the exact final position of the root.
	Center graph.Position `json:"center,omitempty"`

	// RingStart is the radius of the depth-1 ring.
	RingStart float64 `json:"ring_start,omitempty"`
	// RingGap is the distance between successive rings.
	RingGap float64 `json:"ring_gap,omitempty"`

	// Iterations is the fixed relaxation step budget.
	Iterations int `json:"iterations,omitempty"`
	// AlphaMin is the floor the intensity factor decays toward.
	AlphaMin float64 `json:"alpha_min,omitempty"`
	// VelocityDecay is the fraction of velocity lost per step.
	VelocityDecay float64 `json:"velocity_decay,omitempty"`

	// Charge scales pairwise repulsion (Charge·α/d²).
	Charge float64 `json:"charge,omitempty"`
	// ChargeDistanceMin clamps the distance used for repulsion from below.
	ChargeDistanceMin float64 `json:"charge_distance_min,omitempty"`
	// ChargeDistanceMax is the distance beyond which pairs do not repel.
	ChargeDistanceMax float64 `json:"charge_distance_max,omitempty"`

	TreeLinkDistance  float64 `json:"tree_link_distance,omitempty"`
	TreeLinkStrength  float64 `json:"tree_link_strength,omitempty"`
	CrossLinkDistance float64 `json:"cross_link_distance,omitempty"`
	CrossLinkStrength float64 `json:"cross_link_strength,omitempty"`
	// CrossLinkSlack is added to the cross-edge rest length per ring of
	// depth difference between the endpoints.
	CrossLinkSlack float64 `json:"cross_link_slack,omitempty"`

	// RadialStrength pulls nodes toward the circle of their target ring.
	RadialStrength float64 `json:"radial_strength,omitempty"`
	// AnchorStrength pulls nodes toward their wedge target point.
	AnchorStrength float64 `json:"anchor_strength,omitempty"`

	// Clearance is the minimum center-to-center distance between nodes.
	Clearance float64 `json:"clearance,omitempty"`
	// CollisionIterations is the number of collision passes per step.
	CollisionIterations int `json:"collision_iterations,omitempty"`

	// DiscoveryOrder ignores current angles and orders siblings by edge-list
	// discovery only.
	DiscoveryOrder bool `json:"discovery_order,omitempty"`
}

// DefaultOptions returns the default layout configuration.
func DefaultOptions() Options {
	return Options{}.WithDefaults()
}

// WithDefaults returns a copy of o with every zero field set to its default.
// A zero Center is treated as unset.
func (o Options) WithDefaults() Options {
	if o.Center == (graph.Position{}) {
		o.Center = graph.Position{X: DefaultCenterX, Y: DefaultCenterY}
	}
	setDefault(&o.RingStart, DefaultRingStart)
	setDefault(&o.RingGap, DefaultRingGap)
	if o.Iterations == 0 {
		o.Iterations = DefaultIterations
	}
	setDefault(&o.AlphaMin, DefaultAlphaMin)
	setDefault(&o.VelocityDecay, DefaultVelocityDecay)
	setDefault(&o.Charge, DefaultCharge)
	setDefault(&o.ChargeDistanceMin, DefaultChargeDistanceMin)
	setDefault(&o.ChargeDistanceMax, DefaultChargeDistanceMax)
	setDefault(&o.TreeLinkDistance, DefaultTreeLinkDistance)
	setDefault(&o.TreeLinkStrength, DefaultTreeLinkStrength)
	setDefault(&o.CrossLinkDistance, DefaultCrossLinkDistance)
	setDefault(&o.CrossLinkStrength, DefaultCrossLinkStrength)
	setDefault(&o.CrossLinkSlack, DefaultCrossLinkSlack)
	setDefault(&o.RadialStrength, DefaultRadialStrength)
	setDefault(&o.AnchorStrength, DefaultAnchorStrength)
	setDefault(&o.Clearance, DefaultClearance)
	if o.CollisionIterations == 0 {
		o.CollisionIterations = DefaultCollisionIterations
	}
	return o
}

func setDefault(v *float64, def float64) {
	if *v == 0 {
		*v = def
	}
}

// Validate reports the first invalid setting, after defaults are applied.
func (o Options) Validate() error {
	o = o.WithDefaults()
	switch {
	case !o.Center.IsFinite():
		return fmt.Errorf("center must be finite")
	case o.RingStart < 0:
		return fmt.Errorf("ring start must be positive, got %v", o.RingStart)
	case o.RingGap < 0:
		return fmt.Errorf("ring gap must be positive, got %v", o.RingGap)
	case o.Iterations < 0 || o.Iterations > MaxIterations:
		return fmt.Errorf("iterations must be in [0, %d], got %d", MaxIterations, o.Iterations)
	case o.AlphaMin < 0 || o.AlphaMin >= 1:
		return fmt.Errorf("alpha min must be in (0, 1), got %v", o.AlphaMin)
	case o.VelocityDecay < 0 || o.VelocityDecay >= 1:
		return fmt.Errorf("velocity decay must be in (0, 1), got %v", o.VelocityDecay)
	case o.ChargeDistanceMin < 0 || o.ChargeDistanceMax < o.ChargeDistanceMin:
		return fmt.Errorf("charge distance range [%v, %v] is invalid", o.ChargeDistanceMin, o.ChargeDistanceMax)
	case o.Clearance < 0:
		return fmt.Errorf("clearance must be positive, got %v", o.Clearance)
	case o.CollisionIterations < 0 || o.CollisionIterations > MaxCollisionIterations:
		return fmt.Errorf("collision iterations must be in [0, %d], got %d", MaxCollisionIterations, o.CollisionIterations)
	}
	return nil
}
