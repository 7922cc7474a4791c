// Package interact turns pointer gestures into selection, hover emphasis,
// expansion toggles and drags.
package interact

import (
	"sort"

	"github.com/schemalens/schemalens/internal/graph"
)

const (
	DimNodeOpacity = 0.15
	DimLinkOpacity = 0.06
)

type pair struct{ a, b string }

// Index answers adjacency queries over one link list.
type Index struct {
	linked    map[pair]bool
	neighbors map[string][]string
}

// NewIndex indexes links in both directions.
func NewIndex(links []graph.Link) *Index {
	ix := &Index{
		linked:    make(map[pair]bool, 2*len(links)),
		neighbors: make(map[string][]string),
	}
	for _, l := range links {
		if ix.linked[pair{l.Source, l.Target}] {
			continue
		}
		ix.linked[pair{l.Source, l.Target}] = true
		ix.linked[pair{l.Target, l.Source}] = true
		ix.neighbors[l.Source] = append(ix.neighbors[l.Source], l.Target)
		ix.neighbors[l.Target] = append(ix.neighbors[l.Target], l.Source)
	}
	for _, ns := range ix.neighbors {
		sort.Strings(ns)
	}
	return ix
}

// Connected reports whether a and b are the same node or share a link.
func (ix *Index) Connected(a, b string) bool {
	return a == b || ix.linked[pair{a, b}]
}

// Neighbors returns the ids linked to id, sorted.
func (ix *Index) Neighbors(id string) []string {
	return append([]string(nil), ix.neighbors[id]...)
}

// Toggler flips an entity between expanded and collapsed.
type Toggler interface {
	Toggle(id string) bool
}

// Dragger moves nodes under the pointer.
type Dragger interface {
	DragStart(id string) bool
	DragMove(id string, x, y float64) bool
	DragEnd(id string) bool
}

// Layer holds hover and selection state for one model.
type Layer struct {
	model    *graph.Model
	index    *Index
	expander Toggler
	dragger  Dragger

	hovered  string
	selected string
	onSelect []func(n *graph.Node)
}

// New returns a layer over m.
func New(m *graph.Model, t Toggler, d Dragger) *Layer {
	l := &Layer{model: m, expander: t, dragger: d}
	l.Reindex()
	return l
}

// Reindex rebuilds adjacency from the model and forgets hover or selection
// of nodes that left it.
func (l *Layer) Reindex() {
	l.index = NewIndex(l.model.Links())
	if l.hovered != "" && !l.model.Has(l.hovered) {
		l.hovered = ""
	}
	if l.selected != "" && !l.model.Has(l.selected) {
		l.setSelected("")
	}
}

// Index returns the current adjacency index.
func (l *Layer) Index() *Index { return l.index }

// OnNodeSelected registers fn to run when the selection changes. fn
// receives nil when the selection is cleared.
func (l *Layer) OnNodeSelected(fn func(n *graph.Node)) {
	l.onSelect = append(l.onSelect, fn)
}

// Hover emphasizes id and its neighbors.
func (l *Layer) Hover(id string) bool {
	if !l.model.Has(id) {
		return false
	}
	l.hovered = id
	return true
}

// HoverEnd restores full opacity.
func (l *Layer) HoverEnd() { l.hovered = "" }

// Hovered returns the hovered node id, if any.
func (l *Layer) Hovered() string { return l.hovered }

// NodeOpacity is the hover channel for node id.
func (l *Layer) NodeOpacity(id string) float64 {
	if l.hovered == "" || l.index.Connected(l.hovered, id) {
		return 1
	}
	return DimNodeOpacity
}

// LinkOpacity is the hover channel for link k.
func (l *Layer) LinkOpacity(k graph.Link) float64 {
	if l.hovered == "" || k.Source == l.hovered || k.Target == l.hovered {
		return 1
	}
	return DimLinkOpacity
}

// Click selects id.
func (l *Layer) Click(id string) bool {
	if !l.model.Has(id) {
		return false
	}
	l.setSelected(id)
	return true
}

// ClickCanvas clears the selection.
func (l *Layer) ClickCanvas() {
	if l.selected != "" {
		l.setSelected("")
	}
}

// Selected returns the selected node.
func (l *Layer) Selected() (*graph.Node, bool) {
	if l.selected == "" {
		return nil, false
	}
	return l.model.Node(l.selected)
}

func (l *Layer) setSelected(id string) {
	l.selected = id
	var n *graph.Node
	if id != "" {
		n, _ = l.model.Node(id)
	}
	for _, fn := range l.onSelect {
		fn(n)
	}
}

// DoubleClick toggles expansion of an entity. Details ignore it.
func (l *Layer) DoubleClick(id string) bool {
	n, ok := l.model.Node(id)
	if !ok || n.Kind != graph.KindEntity {
		return false
	}
	return l.expander.Toggle(id)
}

// DragStart, DragMove and DragEnd forward to the solver.
func (l *Layer) DragStart(id string) bool              { return l.dragger.DragStart(id) }
func (l *Layer) DragMove(id string, x, y float64) bool { return l.dragger.DragMove(id, x, y) }
func (l *Layer) DragEnd(id string) bool                { return l.dragger.DragEnd(id) }

// Reset forgets hover and selection.
func (l *Layer) Reset() {
	l.hovered = ""
	l.selected = ""
}
