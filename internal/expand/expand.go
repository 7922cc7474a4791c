// Package expand spawns and retracts the detail nodes of entities while
// keeping the number of expanded entities under a limit. The oldest
// expansion is evicted first.
//
// The model is updated atomically: collapsing an entity removes its details
// and their links in the same call. What the user sees retract are ghosts,
// presentation-only transitions that outlive the nodes they depict. The
// entity stays pinned and queued until its last ghost is gone.
//
// Collapsing an entity whose details are still entering is a forced
// interrupt: the entering transitions are discarded and the collapse
// completes immediately without a retraction animation.
package expand

import (
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/sim"
	"github.com/schemalens/schemalens/internal/tween"
)

// Solver is the part of the simulation the controller drives.
type Solver interface {
	Sync()
	Reheat(alpha float64)
	Dragging(id string) bool
}

// Options configures a Controller.
type Options struct {
	SpawnRadius float64
	MaxActive   int
	Duration    time.Duration
	Logger      *slog.Logger
}

// Controller owns the active queue and every in-flight transition.
type Controller struct {
	model  *graph.Model
	solver Solver
	opts   Options
	log    *slog.Logger

	queue    *ActiveQueue
	entering map[string]*tween.Transition
	ghosts   map[string][]*tween.Transition
}

// New returns a controller mutating m and driving s.
func New(m *graph.Model, s Solver, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		model:    m,
		solver:   s,
		opts:     opts,
		log:      log,
		queue:    NewActiveQueue(opts.MaxActive),
		entering: make(map[string]*tween.Transition),
		ghosts:   make(map[string][]*tween.Transition),
	}
}

func (c *Controller) entity(id string) (*graph.Node, bool) {
	n, ok := c.model.Node(id)
	if !ok || n.Kind != graph.KindEntity {
		return nil, false
	}
	return n, true
}

func (c *Controller) expanded(id string) bool {
	n, ok := c.entity(id)
	return ok && n.Expanded
}

// Expand shows the details of entity id, evicting the oldest expansion if
// the limit is reached. It reports whether anything changed.
func (c *Controller) Expand(id string) bool {
	n, ok := c.entity(id)
	if !ok || n.Expanded {
		return false
	}
	if _, retracting := c.ghosts[id]; retracting {
		c.finishRetraction(id)
	}
	n.Expanded = true

	if !c.queue.Contains(id) {
		for {
			victim, full := c.queue.Victim(c.expanded)
			if !full {
				break
			}
			c.log.Debug("evicting expansion", "entity", victim, "for", id)
			c.Collapse(victim)
		}
		c.queue.Push(id)
	}

	if len(n.Details) == 0 {
		c.log.Debug("expanded entity without details", "entity", id)
		return true
	}

	origin := n.Position()
	step := 2 * math.Pi / float64(len(n.Details))
	details := make([]*graph.Node, 0, len(n.Details))
	links := make([]graph.Link, 0, len(n.Details))
	for i, label := range n.Details {
		angle := float64(i) * step
		target := graph.Point{
			X: origin.X + c.opts.SpawnRadius*math.Cos(angle),
			Y: origin.Y + c.opts.SpawnRadius*math.Sin(angle),
		}
		d := &graph.Node{
			ID:       graph.DetailID(id, i),
			Label:    label,
			Kind:     graph.KindDetail,
			ParentID: id,
			X:        origin.X,
			Y:        origin.Y,
			Placed:   true,
		}
		d.SetPin(target)
		details = append(details, d)
		links = append(links, graph.Link{Source: id, Target: d.ID})
		c.entering[d.ID] = tween.Enter(d.ID, origin, target, c.opts.Duration)
	}

	c.model.AddNodes(details...)
	c.model.AddLinks(links...)
	c.solver.Sync()
	c.solver.Reheat(sim.SpawnAlpha)
	c.log.Debug("expanded entity", "entity", id, "details", len(details))
	return true
}

// Collapse removes the details of entity id. It reports whether anything
// changed.
func (c *Controller) Collapse(id string) bool {
	n, ok := c.entity(id)
	if !ok || !n.Expanded {
		return false
	}
	n.Expanded = false
	n.SetPin(n.Position())

	details := c.model.DetailsOf(id)
	interrupted := false
	for _, d := range details {
		if _, ok := c.entering[d.ID]; ok {
			interrupted = true
			delete(c.entering, d.ID)
		}
	}

	ids := make([]string, 0, len(details))
	var ghosts []*tween.Transition
	for _, d := range details {
		ids = append(ids, d.ID)
		c.model.RemoveLinks(c.model.LinksOf(d.ID)...)
		if !interrupted && c.opts.Duration > 0 {
			ghosts = append(ghosts, tween.Leave(d.ID, d.Label, d.Position(), n.Position(), c.opts.Duration))
		}
	}
	c.model.RemoveNodes(ids...)
	c.solver.Sync()

	if interrupted {
		c.log.Debug("collapse interrupted expansion", "entity", id)
	}
	if len(ghosts) == 0 {
		c.finalize(id)
		return true
	}
	c.ghosts[id] = ghosts
	return true
}

// Toggle expands a collapsed entity and collapses an expanded one.
func (c *Controller) Toggle(id string) bool {
	if c.expanded(id) {
		return c.Collapse(id)
	}
	return c.Expand(id)
}

func (c *Controller) finishRetraction(id string) {
	delete(c.ghosts, id)
	c.finalize(id)
}

func (c *Controller) finalize(id string) {
	delete(c.ghosts, id)
	if n, ok := c.model.Node(id); ok && !c.solver.Dragging(id) {
		n.Unpin()
	}
	c.queue.Remove(id)
	c.solver.Reheat(sim.SettleAlpha)
}

// Step advances every in-flight transition by dt.
func (c *Controller) Step(dt time.Duration) {
	for _, id := range sortedKeys(c.entering) {
		tr := c.entering[id]
		if !tr.Step(dt) {
			continue
		}
		delete(c.entering, id)
		if n, ok := c.model.Node(id); ok && !c.solver.Dragging(id) {
			n.Unpin()
		}
		c.solver.Reheat(sim.SettleAlpha)
	}

	for _, id := range sortedKeys(c.ghosts) {
		live := c.ghosts[id][:0]
		for _, g := range c.ghosts[id] {
			g.Step(dt)
			if !g.Done() {
				live = append(live, g)
			}
		}
		if len(live) > 0 {
			c.ghosts[id] = live
			continue
		}
		c.finalize(id)
	}
}

// Settle completes every in-flight transition.
func (c *Controller) Settle() {
	for c.Busy() {
		c.Step(c.opts.Duration + time.Millisecond)
	}
}

// Busy reports whether any transition is in flight.
func (c *Controller) Busy() bool {
	return len(c.entering) > 0 || len(c.ghosts) > 0
}

// Entering returns the transition of a detail that is still fading in.
func (c *Controller) Entering(id string) (*tween.Transition, bool) {
	tr, ok := c.entering[id]
	return tr, ok
}

// Ghosts returns the retracting ghosts, grouped by entity in id order.
func (c *Controller) Ghosts() []*tween.Transition {
	var out []*tween.Transition
	for _, id := range sortedKeys(c.ghosts) {
		out = append(out, c.ghosts[id]...)
	}
	return out
}

// EachGhost calls fn for every retracting ghost with the entity it
// retracts into.
func (c *Controller) EachGhost(fn func(entity string, g *tween.Transition)) {
	for _, id := range sortedKeys(c.ghosts) {
		for _, g := range c.ghosts[id] {
			fn(id, g)
		}
	}
}

// Retracting reports whether entity id still has ghosts on screen.
func (c *Controller) Retracting(id string) bool {
	_, ok := c.ghosts[id]
	return ok
}

// Active returns the queued entities, oldest first. Entities whose
// retraction is still running remain queued.
func (c *Controller) Active() []string {
	return c.queue.IDs()
}

// Reset discards every transition and the queue without touching the model.
func (c *Controller) Reset() {
	clear(c.entering)
	clear(c.ghosts)
	c.queue.Clear()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
