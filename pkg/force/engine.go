// Package force is the iterative numerical solver behind the relationship
// graph view. It evolves node positions under a composed set of forces (link
// springs, many-body charge, centering, disc collision) until the simulation
// "temperature" alpha decays below a threshold. The engine owns the tick loop
// state; the host drives it once per animation frame.
package force

import (
	"math"

	"github.com/tracive/linkscope/pkg/graph"
)

// State is the engine lifecycle state.
type State int

const (
	// StateIdle means no tick does any work: alpha has decayed below
	// AlphaMin, or Stop was called.
	StateIdle State = iota
	// StateRunning means the engine is ticking with energy being injected
	// (fresh layout pass, or an active drag holding alphaTarget up).
	StateRunning
	// StateCooling means alphaTarget is zero but alpha is still above
	// AlphaMin, decaying toward Idle.
	StateCooling
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCooling:
		return "cooling"
	default:
		return "idle"
	}
}

// Options configures the physics. Zero values mean defaults.
type Options struct {
	// LinkDistance is the target separation of linked nodes.
	LinkDistance float64 // default 100
	// LinkStrength is the spring constant pulling endpoints toward
	// LinkDistance.
	LinkStrength float64 // default 0.05
	// ChargeStrength is the many-body strength; negative repels.
	ChargeStrength float64 // default -300
	// CollideRadius treats each node as a disc of this radius.
	CollideRadius float64 // default 40
	// CenterX, CenterY is the canvas center the centroid is nudged toward.
	CenterX, CenterY float64
	// CenterStrength is the fraction of centroid offset corrected per tick.
	CenterStrength float64 // default 0.1
	// Damping multiplies velocities each tick before integration.
	Damping float64 // default 0.85
	// AlphaMin is the idle threshold.
	AlphaMin float64 // default 0.001
	// AlphaDecay controls alpha += (alphaTarget - alpha) * AlphaDecay.
	AlphaDecay float64 // default 0.0228 (~300 ticks from 1 to AlphaMin)
	// BruteForceThreshold is the node count above which the charge force
	// switches from exact pairwise to the quadtree approximation.
	BruteForceThreshold int // default 64
	// Theta is the Barnes–Hut accuracy parameter.
	Theta float64 // default 0.9
	// MaxVelocity and MaxCoordinate clamp runaway integration.
	MaxVelocity   float64 // default 50
	MaxCoordinate float64 // default 1e6
}

func (o *Options) withDefaults() Options {
	d := Options{
		LinkDistance:        100,
		LinkStrength:        0.05,
		ChargeStrength:      -300,
		CollideRadius:       40,
		CenterStrength:      0.1,
		Damping:             0.85,
		AlphaMin:            0.001,
		AlphaDecay:          0.0228,
		BruteForceThreshold: 64,
		Theta:               0.9,
		MaxVelocity:         50,
		MaxCoordinate:       1e6,
	}
	if o == nil {
		return d
	}
	if o.LinkDistance != 0 {
		d.LinkDistance = o.LinkDistance
	}
	if o.LinkStrength != 0 {
		d.LinkStrength = o.LinkStrength
	}
	if o.ChargeStrength != 0 {
		d.ChargeStrength = o.ChargeStrength
	}
	if o.CollideRadius != 0 {
		d.CollideRadius = o.CollideRadius
	}
	d.CenterX = o.CenterX
	d.CenterY = o.CenterY
	if o.CenterStrength != 0 {
		d.CenterStrength = o.CenterStrength
	}
	if o.Damping != 0 {
		d.Damping = o.Damping
	}
	if o.AlphaMin != 0 {
		d.AlphaMin = o.AlphaMin
	}
	if o.AlphaDecay != 0 {
		d.AlphaDecay = o.AlphaDecay
	}
	if o.BruteForceThreshold != 0 {
		d.BruteForceThreshold = o.BruteForceThreshold
	}
	if o.Theta != 0 {
		d.Theta = o.Theta
	}
	if o.MaxVelocity != 0 {
		d.MaxVelocity = o.MaxVelocity
	}
	if o.MaxCoordinate != 0 {
		d.MaxCoordinate = o.MaxCoordinate
	}
	return d
}

// Engine owns all simulation state for one graph model. There is never more
// than one engine per model; when the model is rebuilt the old engine is
// stopped and discarded wholesale.
type Engine struct {
	opts  Options
	model *graph.Model
	nodes []*graph.Node
	index map[string]int

	// Per-node velocity accumulators.
	vx, vy []float64

	// Scratch position snapshots for quadtree passes.
	px, py []float64

	alpha       float64
	alphaTarget float64
	state       State
	stopped     bool

	// Deterministic jiggle source for coincident-node separation.
	rng uint32
}

const (
	initialRadius = 10.0
	initialAngle  = math.Pi * (3 - 2.23606797749979) // golden angle, 3 - sqrt(5)
)

// New constructs an engine over the model in Running state with alpha = 1: a
// freshly built graph always gets a full layout pass. Nodes without a
// position are placed on a phyllotaxis spiral so layouts are deterministic.
func New(model *graph.Model, opts *Options) *Engine {
	e := &Engine{
		opts:  opts.withDefaults(),
		model: model,
		nodes: model.Nodes(),
		index: make(map[string]int, model.NodeCount()),
		vx:    make([]float64, model.NodeCount()),
		vy:    make([]float64, model.NodeCount()),
		alpha: 1,
		state: StateRunning,
		rng:   1,
	}
	for i, n := range e.nodes {
		e.index[n.ID] = i
		if n.X == 0 && n.Y == 0 {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			n.X = e.opts.CenterX + radius*math.Cos(angle)
			n.Y = e.opts.CenterY + radius*math.Sin(angle)
		}
	}
	return e
}

// Model returns the model this engine owns.
func (e *Engine) Model() *graph.Model { return e.model }

// Alpha returns the current simulation temperature.
func (e *Engine) Alpha() float64 { return e.alpha }

// State returns the lifecycle state.
func (e *Engine) State() State {
	if e.stopped {
		return StateIdle
	}
	return e.state
}

// Restart forces the engine back to Running at the given energy (1 for a full
// layout pass). Used on data reload.
func (e *Engine) Restart(alpha float64) {
	if e.stopped {
		return
	}
	if alpha <= 0 || math.IsNaN(alpha) {
		alpha = 1
	}
	e.alpha = math.Min(alpha, 1)
	e.state = StateRunning
}

// SetAlphaTarget moves the resting point the decay converges toward. Drag
// start passes 0.3 to reheat without resetting the layout; drag end passes 0
// to let the system cool back to Idle.
func (e *Engine) SetAlphaTarget(t float64) {
	if e.stopped {
		return
	}
	if t < 0 || math.IsNaN(t) {
		t = 0
	}
	e.alphaTarget = t
	if t >= e.opts.AlphaMin {
		e.state = StateRunning
	} else if e.state == StateRunning {
		e.state = StateCooling
	}
}

// AlphaTarget returns the current resting point.
func (e *Engine) AlphaTarget() float64 { return e.alphaTarget }

// Pin fixes a node at (x, y), overriding integration for it.
func (e *Engine) Pin(id string, x, y float64) {
	i, ok := e.index[id]
	if !ok {
		return
	}
	e.nodes[i].Pin(clampFinite(x, e.opts.MaxCoordinate), clampFinite(y, e.opts.MaxCoordinate))
	e.vx[i], e.vy[i] = 0, 0
}

// Unpin releases a node back to the simulation.
func (e *Engine) Unpin(id string) {
	if i, ok := e.index[id]; ok {
		e.nodes[i].Unpin()
	}
}

// Stop halts the engine permanently. Idempotent and safe to call from
// teardown, from a superseding restart, or from unmount; no tick executes any
// work afterwards.
func (e *Engine) Stop() {
	e.stopped = true
	e.state = StateIdle
}

// Stopped reports whether Stop has been called.
func (e *Engine) Stopped() bool { return e.stopped }

// Tick advances the simulation one step: apply forces, integrate, decay
// alpha. It reports whether any work was done; false means the engine is Idle
// (or stopped) and the host may skip redraws.
func (e *Engine) Tick() bool {
	if e.stopped || e.state == StateIdle {
		return false
	}

	e.applyLinkForce()
	e.applyChargeForce()
	e.applyCenterForce()
	e.applyCollideForce()
	e.integrate()

	// Alpha decays toward its target after the force pass; crossing the
	// threshold with no energy being injected sends the engine Idle.
	e.alpha += (e.alphaTarget - e.alpha) * e.opts.AlphaDecay
	if e.alpha < e.opts.AlphaMin && e.alphaTarget < e.opts.AlphaMin {
		e.alpha = 0
		e.state = StateIdle
		// Settle every free node exactly where it is.
		for i := range e.vx {
			e.vx[i], e.vy[i] = 0, 0
		}
	}
	return true
}

// integrate updates each non-pinned node by its damped velocity, scaled by
// the current alpha. Pinned nodes snap exactly to their pinned coordinates.
func (e *Engine) integrate() {
	o := e.opts
	for i, n := range e.nodes {
		if n.Pinned() {
			px, py := n.PinnedAt()
			n.X, n.Y = px, py
			e.vx[i], e.vy[i] = 0, 0
			continue
		}
		e.vx[i] = clampFinite(e.vx[i]*o.Damping, o.MaxVelocity)
		e.vy[i] = clampFinite(e.vy[i]*o.Damping, o.MaxVelocity)
		n.X = clampFinite(n.X+e.vx[i]*e.alpha, o.MaxCoordinate)
		n.Y = clampFinite(n.Y+e.vy[i]*e.alpha, o.MaxCoordinate)
	}
}

// jiggle returns a tiny deterministic offset used to separate coincident
// nodes instead of dividing by zero.
func (e *Engine) jiggle() float64 {
	e.rng = e.rng*1664525 + 1013904223
	return (float64(e.rng>>8&0xffff)/65536 - 0.5) * 1e-6
}

// clampFinite bounds v to [-limit, limit] and maps non-finite values to 0 so
// numeric instability never escapes the engine.
func clampFinite(v, limit float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v > limit {
		return limit
	}
	if v < -limit {
		return -limit
	}
	return v
}
