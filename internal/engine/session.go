// Package engine wires the model, solver, expansion controller, viewport,
// interaction layer and search filter into one session and produces a
// frame per step.
//
// A Session is not safe for concurrent use. Loop owns a session and
// serializes every mutation through one goroutine.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/schemalens/schemalens/internal/config"
	"github.com/schemalens/schemalens/internal/expand"
	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/interact"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/schemalens/schemalens/internal/search"
	"github.com/schemalens/schemalens/internal/sim"
	"github.com/schemalens/schemalens/internal/tween"
	"github.com/schemalens/schemalens/internal/viewport"
)

// FrameInterval is the simulated time of one frame.
const FrameInterval = 16 * time.Millisecond

const (
	StatusLoaded = "loaded"
	ghostPrefix  = "ghost:"
)

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the session logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithSeed seeds the solver jiggle.
func WithSeed(seed uint64) Option {
	return func(s *Session) { s.seed = seed }
}

// WithFitOnLoad controls whether the viewport fits the content the first
// time the layout settles after a build.
func WithFitOnLoad(fit bool) Option {
	return func(s *Session) { s.fitOnLoad = fit }
}

// Session is one interactive layout of one schema.
type Session struct {
	settings  config.Settings
	schema    *schema.Schema
	status    string
	log       *slog.Logger
	seed      uint64
	fitOnLoad bool

	width, height float64

	model  *graph.Model
	solver *sim.Simulation
	ctrl   *expand.Controller
	layer  *interact.Layer
	view   *viewport.Viewport
	filter search.Filter
	scene  *scene

	fitPending bool
	last       Frame

	onSelect []func(n *graph.Node)
	onZoom   []func(k float64)
	onFrame  []func(f Frame)
}

// New builds a session for sc. Settings are validated first.
func New(sc *schema.Schema, settings config.Settings, opts ...Option) (*Session, error) {
	if sc == nil {
		return nil, errors.New("nil schema")
	}
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}
	s := &Session{
		settings:  settings,
		schema:    sc,
		status:    StatusLoaded,
		seed:      1,
		fitOnLoad: true,
		width:     settings.Viewport.Width,
		height:    settings.Viewport.Height,
	}
	for _, o := range opts {
		o(s)
	}
	if s.log == nil {
		s.log = slog.New(slog.DiscardHandler)
	}
	s.build()
	return s, nil
}

// build tears down every derived component and recreates it from the
// retained schema and settings. In-flight transitions are discarded.
func (s *Session) build() {
	hadSelection := false
	prevScale := 1.0
	if s.layer != nil {
		_, hadSelection = s.layer.Selected()
		prevScale = s.view.Transform().K
	}

	st := s.settings
	s.model = graph.FromSchema(s.schema)
	s.solver = sim.New(s.model,
		sim.DefaultForces(st.Nodes.TableRadius, st.Nodes.DetailRadius, s.width, s.height),
		sim.WithSeed(s.seed))
	s.ctrl = expand.New(s.model, s.solver, expand.Options{
		SpawnRadius: st.Expansion.SpawnRadius,
		MaxActive:   st.Expansion.MaxActive,
		Duration:    st.TransitionDuration(),
		Logger:      s.log,
	})
	s.layer = interact.New(s.model, s.ctrl, s.solver)
	s.layer.OnNodeSelected(s.emitSelect)
	s.view = viewport.New(st.Viewport.MinScale, st.Viewport.MaxScale)
	s.view.OnZoom(s.emitZoom)
	s.scene = newScene()
	s.fitPending = s.fitOnLoad

	stats := s.model.GetStats()
	s.log.Info("layout built", "entities", stats.Entities, "links", stats.Links,
		"max_active", st.Expansion.MaxActive)

	if hadSelection {
		s.emitSelect(nil)
	}
	if prevScale != 1 {
		s.emitZoom(1)
	}
	s.reconcile()
}

func (s *Session) emitSelect(n *graph.Node) {
	for _, fn := range s.onSelect {
		fn(n)
	}
}

func (s *Session) emitZoom(k float64) {
	for _, fn := range s.onZoom {
		fn(k)
	}
}

// OnNodeSelected registers fn for selection changes. fn receives nil when
// the selection is cleared.
func (s *Session) OnNodeSelected(fn func(n *graph.Node)) { s.onSelect = append(s.onSelect, fn) }

// OnZoomChanged registers fn for scale changes.
func (s *Session) OnZoomChanged(fn func(k float64)) { s.onZoom = append(s.onZoom, fn) }

// OnFrame registers fn to receive every frame.
func (s *Session) OnFrame(fn func(f Frame)) { s.onFrame = append(s.onFrame, fn) }

// Reconfigure applies new settings. Invalid settings are rejected and the
// current ones kept; changed settings rebuild the layout from scratch.
func (s *Session) Reconfigure(settings config.Settings) error {
	if err := settings.Validate(); err != nil {
		s.log.Warn("settings rejected", "err", err)
		return fmt.Errorf("invalid settings: %w", err)
	}
	if settings == s.settings {
		return nil
	}
	if settings.Viewport != s.settings.Viewport {
		s.width, s.height = settings.Viewport.Width, settings.Viewport.Height
	}
	s.settings = settings
	s.log.Info("settings changed, rebuilding")
	s.build()
	return nil
}

// Reset rebuilds the layout with the current settings.
func (s *Session) Reset() {
	s.build()
}

// ReplaceSchema swaps in the result of a schema producer. When the
// producer failed the previous schema stays on screen and the failure is
// recorded in Status.
func (s *Session) ReplaceSchema(sc *schema.Schema, err error) error {
	if err == nil && sc == nil {
		err = errors.New("no schema")
	}
	if err != nil {
		s.status = "load error: " + err.Error()
		s.log.Warn("schema load failed, keeping previous layout", "err", err)
		return fmt.Errorf("replace schema: %w", err)
	}
	s.schema = sc
	s.status = StatusLoaded
	s.build()
	return nil
}

// Status describes the last schema load.
func (s *Session) Status() string { return s.status }

// Summary describes the retained schema.
func (s *Session) Summary() schema.Summary { return s.schema.Summarize() }

func (s *Session) Settings() config.Settings    { return s.settings }
func (s *Session) Schema() *schema.Schema       { return s.schema }
func (s *Session) Model() *graph.Model          { return s.model }
func (s *Session) Viewport() *viewport.Viewport { return s.view }

// Frame returns the last reconciled frame.
func (s *Session) Frame() Frame { return s.last }

// Expand shows the details of entity id.
func (s *Session) Expand(id string) bool { return s.ctrl.Expand(id) }

// Collapse hides the details of entity id.
func (s *Session) Collapse(id string) bool { return s.ctrl.Collapse(id) }

// Active returns the expanded entities, oldest first.
func (s *Session) Active() []string { return s.ctrl.Active() }

func (s *Session) Hover(id string) bool       { return s.layer.Hover(id) }
func (s *Session) HoverEnd()                  { s.layer.HoverEnd() }
func (s *Session) Click(id string) bool       { return s.layer.Click(id) }
func (s *Session) ClickCanvas()               { s.layer.ClickCanvas() }
func (s *Session) DoubleClick(id string) bool { return s.layer.DoubleClick(id) }

// Selected returns the selected node.
func (s *Session) Selected() (*graph.Node, bool) { return s.layer.Selected() }

// DragStart, DragMove and DragEnd take world coordinates.
func (s *Session) DragStart(id string) bool              { return s.layer.DragStart(id) }
func (s *Session) DragMove(id string, x, y float64) bool { return s.layer.DragMove(id, x, y) }
func (s *Session) DragEnd(id string) bool                { return s.layer.DragEnd(id) }

// Search sets the search term.
func (s *Session) Search(term string) { s.filter.Set(term) }

// ZoomAt scales about a screen point.
func (s *Session) ZoomAt(factor, px, py float64) { s.view.ZoomAt(factor, px, py) }

// Pan translates the view in screen units.
func (s *Session) Pan(dx, dy float64) { s.view.Pan(dx, dy) }

// ResetZoom animates back to the identity transform.
func (s *Session) ResetZoom() { s.view.Reset() }

// FitToContent animates the view to frame every node.
func (s *Session) FitToContent() bool {
	return s.view.FitToContent(s.bounds(), s.width, s.height)
}

// Resize recenters the solver on a new canvas size.
func (s *Session) Resize(width, height float64) {
	if width <= 0 || height <= 0 {
		return
	}
	s.width, s.height = width, height
	s.solver.SetCenter(width, height)
}

// Size is the canvas size used for centering and fitting.
func (s *Session) Size() (float64, float64) { return s.width, s.height }

func (s *Session) bounds() viewport.Bounds {
	var b viewport.Bounds
	for _, n := range s.model.Nodes() {
		b.Extend(n.Position(), s.radius(n.Kind))
	}
	return b
}

func (s *Session) radius(k graph.Kind) float64 {
	if k == graph.KindDetail {
		return s.settings.Nodes.DetailRadius
	}
	return s.settings.Nodes.TableRadius
}

// Idle reports whether nothing moves: the solver has cooled, and no
// transition or viewport animation is running.
func (s *Session) Idle() bool {
	return s.solver.Settled() && !s.ctrl.Busy() && !s.view.Animating()
}

// Step advances the session by dt and returns the new frame.
func (s *Session) Step(dt time.Duration) Frame {
	s.solver.Tick()
	s.ctrl.Step(dt)
	if s.fitPending && s.solver.Settled() {
		s.fitPending = false
		s.FitToContent()
	}
	s.view.Step(dt)
	return s.reconcile()
}

// Settle steps until the session is idle or max frames have run. It
// returns the number of frames stepped.
func (s *Session) Settle(max int) int {
	n := 0
	for ; n < max && (!s.Idle() || s.fitPending); n++ {
		s.Step(FrameInterval)
	}
	if s.Idle() {
		s.log.Debug("layout settled", "frames", n, "ticks", s.solver.Ticks())
	}
	return n
}

func (s *Session) reconcile() Frame {
	s.layer.Reindex()
	sel, _ := s.layer.Selected()

	nodes := make([]*Item, 0, s.model.Len())
	seenNodes := make(map[string]bool, s.model.Len())
	for _, n := range s.model.Nodes() {
		it := s.scene.item(n.ID)
		it.ID, it.Label, it.Kind, it.ParentID = n.ID, n.Label, n.Kind, n.ParentID
		it.X, it.Y = n.X, n.Y
		it.Radius = s.radius(n.Kind)
		it.Ghost = false
		it.Selected = sel != nil && sel.ID == n.ID
		it.Fade = 1
		if tr, ok := s.ctrl.Entering(n.ID); ok {
			p := tr.Position()
			it.X, it.Y = p.X, p.Y
			it.Fade = tr.Opacity()
		}
		it.Hover = s.layer.NodeOpacity(n.ID)
		seenNodes[n.ID] = true
		nodes = append(nodes, it)
	}

	type ghostLink struct {
		entity string
		ghost  *Item
	}
	var ghostLinks []ghostLink
	s.ctrl.EachGhost(func(entity string, g *tween.Transition) {
		key := ghostPrefix + g.ID
		it := s.scene.item(key)
		p := g.Position()
		it.ID, it.Label, it.Kind, it.ParentID = g.ID, g.Label, graph.KindDetail, entity
		it.X, it.Y = p.X, p.Y
		it.Radius = s.settings.Nodes.DetailRadius
		it.Ghost = true
		it.Selected = false
		it.Fade = g.Opacity()
		it.Hover = s.layer.NodeOpacity(g.ID)
		seenNodes[key] = true
		nodes = append(nodes, it)
		ghostLinks = append(ghostLinks, ghostLink{entity, it})
	})
	search.Apply(&s.filter, nodes)

	byID := make(map[string]*Item, len(nodes))
	for _, it := range nodes {
		if !it.Ghost {
			byID[it.ID] = it
		}
	}

	modelLinks := s.model.Links()
	links := make([]*LinkItem, 0, len(modelLinks)+len(ghostLinks))
	seenLinks := make(map[string]bool, cap(links))
	for _, ml := range modelLinks {
		src, tgt := byID[ml.Source], byID[ml.Target]
		if src == nil || tgt == nil {
			continue
		}
		key := ml.String()
		l := s.scene.link(key)
		l.Source, l.Target = ml.Source, ml.Target
		l.X1, l.Y1, l.X2, l.Y2 = src.X, src.Y, tgt.X, tgt.Y
		l.Detail = src.Kind == graph.KindDetail || tgt.Kind == graph.KindDetail
		l.Ghost = false
		l.Fade = src.Fade * tgt.Fade
		l.Hover = s.layer.LinkOpacity(ml)
		seenLinks[key] = true
		links = append(links, l)
	}
	for _, gl := range ghostLinks {
		src := byID[gl.entity]
		if src == nil {
			continue
		}
		key := ghostPrefix + graph.Link{Source: gl.entity, Target: gl.ghost.ID}.String()
		l := s.scene.link(key)
		l.Source, l.Target = gl.entity, gl.ghost.ID
		l.X1, l.Y1, l.X2, l.Y2 = src.X, src.Y, gl.ghost.X, gl.ghost.Y
		l.Detail = true
		l.Ghost = true
		l.Fade = gl.ghost.Fade
		l.Hover = s.layer.LinkOpacity(graph.Link{Source: gl.entity, Target: gl.ghost.ID})
		seenLinks[key] = true
		links = append(links, l)
	}
	s.scene.prune(seenNodes, seenLinks)

	s.scene.seq++
	s.last = Frame{
		Seq:       s.scene.seq,
		Transform: s.view.Transform(),
		Nodes:     nodes,
		Links:     links,
		Alpha:     s.solver.Alpha(),
		Settled:   s.Idle(),
	}
	for _, fn := range s.onFrame {
		fn(s.last)
	}
	return s.last
}
