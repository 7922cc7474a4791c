// Package sim is the force-directed solver that positions graph nodes. It
// integrates one step per frame and cools down over time; structural
// changes reheat it gently instead of restarting the layout.
package sim

import (
	"math"
	"math/rand/v2"

	"github.com/schemalens/schemalens/internal/graph"
)

// Energy levels used by the engine.
const (
	AlphaMin        = 0.001
	VelocityDecay   = 0.4
	SpawnAlpha      = 0.05
	SettleAlpha     = 0.1
	ResizeAlpha     = 0.1
	DragAlphaTarget = 0.3
)

// Simulation advances node positions of a graph model. It reads the model's
// node and link arrays on Sync and owns the position fields afterwards.
type Simulation struct {
	model  *graph.Model
	forces Forces

	nodes []*graph.Node
	index map[string]int
	links []simLink

	alpha       float64
	alphaTarget float64
	alphaDecay  float64
	running     bool
	ticks       int
	placed      int

	drags  map[string]struct{}
	rng    *rand.Rand
	onTick []func()
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed makes the jiggle applied to coincident nodes reproducible.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) {
		s.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// New attaches a solver to m and places every node that has no position.
func New(m *graph.Model, f Forces, opts ...Option) *Simulation {
	s := &Simulation{
		model:      m,
		forces:     f,
		alpha:      1,
		alphaDecay: 1 - math.Pow(AlphaMin, 1.0/300),
		running:    true,
		drags:      make(map[string]struct{}),
	}
	WithSeed(1)(s)
	for _, opt := range opts {
		opt(s)
	}
	s.Sync()
	return s
}

// Sync re-reads the node and link arrays from the model. Call it after every
// structural mutation.
func (s *Simulation) Sync() {
	s.nodes = s.model.Nodes()
	s.index = make(map[string]int, len(s.nodes))
	for i, n := range s.nodes {
		s.index[n.ID] = i
		if !n.Placed {
			s.place(n)
		}
	}

	for id := range s.drags {
		if _, ok := s.index[id]; !ok {
			delete(s.drags, id)
		}
	}
	if len(s.drags) == 0 {
		s.alphaTarget = 0
	}

	links := s.model.Links()
	count := make([]int, len(s.nodes))
	s.links = s.links[:0]
	for _, l := range links {
		si, ok1 := s.index[l.Source]
		ti, ok2 := s.index[l.Target]
		if !ok1 || !ok2 {
			continue
		}
		count[si]++
		count[ti]++
		s.links = append(s.links, simLink{
			source:   si,
			target:   ti,
			distance: s.forces.distance(s.nodes[si], s.nodes[ti]),
		})
	}
	for i := range s.links {
		l := &s.links[i]
		l.bias = float64(count[l.source]) / float64(count[l.source]+count[l.target])
	}
}

// place puts a new node on a phyllotaxis spiral around the center so that
// initial positions are deterministic and spread out.
func (s *Simulation) place(n *graph.Node) {
	i := float64(s.placed)
	s.placed++
	r := 10 * math.Sqrt(0.5+i)
	a := i * math.Pi * (3 - math.Sqrt(5))
	n.X = s.forces.CenterX + r*math.Cos(a)
	n.Y = s.forces.CenterY + r*math.Sin(a)
	n.VX, n.VY = 0, 0
	n.Placed = true
}

// Tick advances the layout one step. It returns false without moving
// anything once the layout has settled.
func (s *Simulation) Tick() bool {
	if !s.running {
		return false
	}
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	s.applyLinks(s.alpha)
	s.applyCharge(s.alpha)
	s.applyCenter()
	s.applyCollide()

	for _, n := range s.nodes {
		if n.Pin != nil {
			n.X, n.Y = n.Pin.X, n.Pin.Y
			n.VX, n.VY = 0, 0
			continue
		}
		n.VX *= 1 - VelocityDecay
		n.VY *= 1 - VelocityDecay
		n.X += n.VX
		n.Y += n.VY
	}
	s.ticks++

	for _, fn := range s.onTick {
		fn()
	}
	if s.alpha < AlphaMin {
		s.running = false
	}
	return true
}

// Run ticks until the layout settles or max ticks have run, and returns the
// number of ticks performed.
func (s *Simulation) Run(max int) int {
	n := 0
	for n < max && s.Tick() {
		n++
	}
	return n
}

// OnTick registers a callback invoked after every integration step.
func (s *Simulation) OnTick(fn func()) {
	s.onTick = append(s.onTick, fn)
}

// Alpha is the current energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// AlphaTarget is the energy the solver decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Ticks counts integration steps since creation.
func (s *Simulation) Ticks() int { return s.ticks }

// Settled reports whether the solver has stopped.
func (s *Simulation) Settled() bool { return !s.running }

// Reheat raises the energy to at least a and restarts decay. It never
// lowers the current energy.
func (s *Simulation) Reheat(a float64) {
	if a > s.alpha {
		s.alpha = a
	}
	s.running = true
}

// Stop halts the solver until the next reheat.
func (s *Simulation) Stop() {
	s.running = false
}

// Forces returns the active configuration.
func (s *Simulation) Forces() Forces { return s.forces }

// SetCenter moves the centering target for a new viewport size and nudges
// the layout so it drifts there.
func (s *Simulation) SetCenter(width, height float64) {
	cx, cy := centerOf(width, height)
	if cx == s.forces.CenterX && cy == s.forces.CenterY {
		return
	}
	s.forces.CenterX, s.forces.CenterY = cx, cy
	s.Reheat(ResizeAlpha)
}

// DragStart pins id where it is and keeps the solver warm while the drag
// lasts.
func (s *Simulation) DragStart(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	n := s.nodes[i]
	n.SetPin(n.Position())
	s.drags[id] = struct{}{}
	s.alphaTarget = DragAlphaTarget
	s.running = true
	return true
}

// DragMove moves the pin of a dragged node.
func (s *Simulation) DragMove(id string, x, y float64) bool {
	if _, ok := s.drags[id]; !ok {
		return false
	}
	n := s.nodes[s.index[id]]
	n.SetPin(graph.Point{X: x, Y: y})
	return true
}

// DragEnd releases the node back to the solver.
func (s *Simulation) DragEnd(id string) bool {
	if _, ok := s.drags[id]; !ok {
		return false
	}
	delete(s.drags, id)
	s.nodes[s.index[id]].Unpin()
	if len(s.drags) == 0 {
		s.alphaTarget = 0
	}
	return true
}

// Dragging reports whether id is being dragged.
func (s *Simulation) Dragging(id string) bool {
	_, ok := s.drags[id]
	return ok
}

func (s *Simulation) jiggle() float64 {
	return (s.rng.Float64() - 0.5) * 1e-6
}
