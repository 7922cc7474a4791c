// Package graph holds the authoritative node and link sets of a layout
// session. Nodes live in an arena keyed by id; links refer to nodes by id so
// nothing outside the model aliases node storage.
package graph

import (
	"fmt"

	"github.com/schemalens/schemalens/internal/schema"
)

// Kind distinguishes schema tables from the column nodes spawned for them.
type Kind int

const (
	KindEntity Kind = iota
	KindDetail
)

func (k Kind) String() string {
	if k == KindDetail {
		return "detail"
	}
	return "entity"
}

// Point is a position in layout space.
type Point struct {
	X, Y float64
}

// Node is a vertex of the diagram. Position and velocity belong to the
// solver; everything else is written by the model's owners.
type Node struct {
	ID       string
	Label    string
	Kind     Kind
	ParentID string

	X, Y   float64
	VX, VY float64
	// Placed is false until the node has been given a position.
	Placed bool
	// Pin, when set, holds the node still at that point.
	Pin *Point

	Expanded bool
	Details  []string
}

// Position returns the node's current solver position.
func (n *Node) Position() Point {
	return Point{X: n.X, Y: n.Y}
}

// SetPin fixes the node at p.
func (n *Node) SetPin(p Point) {
	n.Pin = &Point{X: p.X, Y: p.Y}
}

// Unpin hands the node back to the solver.
func (n *Node) Unpin() {
	n.Pin = nil
}

// Link is a directed edge between two present nodes.
type Link struct {
	Source string
	Target string
}

func (l Link) String() string {
	return l.Source + "->" + l.Target
}

// DetailID names the i-th detail node of an entity.
func DetailID(parentID string, i int) string {
	return fmt.Sprintf("%s_attr_%d", parentID, i)
}

// Model is the mutable node/link set. It is not safe for concurrent use.
type Model struct {
	order   []*Node
	byID    map[string]*Node
	links   []Link
	linkSet map[Link]struct{}
	version uint64
}

// New returns an empty model.
func New() *Model {
	return &Model{
		byID:    make(map[string]*Node),
		linkSet: make(map[Link]struct{}),
	}
}

// FromSchema builds one collapsed entity per table and one link per edge.
// Edges whose endpoints do not both resolve are dropped.
func FromSchema(s *schema.Schema) *Model {
	m := New()
	if s == nil {
		return m
	}
	for _, t := range s.Nodes {
		label := t.Label
		if label == "" {
			label = t.ID
		}
		m.AddNodes(&Node{
			ID:      t.ID,
			Label:   label,
			Kind:    KindEntity,
			Details: append([]string(nil), t.Columns...),
		})
	}
	for _, e := range s.Edges {
		m.AddLinks(Link{Source: e.Source, Target: e.Target})
	}
	return m
}

// Version changes on every structural mutation.
func (m *Model) Version() uint64 {
	return m.version
}

// AddNodes inserts nodes whose id is not yet present and returns how many
// were added.
func (m *Model) AddNodes(nodes ...*Node) int {
	added := 0
	for _, n := range nodes {
		if n == nil || n.ID == "" {
			continue
		}
		if _, ok := m.byID[n.ID]; ok {
			continue
		}
		m.byID[n.ID] = n
		m.order = append(m.order, n)
		added++
	}
	if added > 0 {
		m.version++
	}
	return added
}

// RemoveNodes deletes the given ids together with every link touching them.
func (m *Model) RemoveNodes(ids ...string) int {
	gone := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := m.byID[id]; ok {
			gone[id] = struct{}{}
			delete(m.byID, id)
		}
	}
	if len(gone) == 0 {
		return 0
	}

	kept := m.order[:0]
	for _, n := range m.order {
		if _, ok := gone[n.ID]; !ok {
			kept = append(kept, n)
		}
	}
	clear(m.order[len(kept):])
	m.order = kept

	m.filterLinks(func(l Link) bool {
		_, s := gone[l.Source]
		_, t := gone[l.Target]
		return !s && !t
	})
	m.version++
	return len(gone)
}

// AddLinks inserts links whose endpoints are both present. Duplicates and
// unresolvable links are skipped without error.
func (m *Model) AddLinks(links ...Link) int {
	added := 0
	for _, l := range links {
		if _, ok := m.byID[l.Source]; !ok {
			continue
		}
		if _, ok := m.byID[l.Target]; !ok {
			continue
		}
		if _, dup := m.linkSet[l]; dup {
			continue
		}
		m.linkSet[l] = struct{}{}
		m.links = append(m.links, l)
		added++
	}
	if added > 0 {
		m.version++
	}
	return added
}

// RemoveLinks deletes the given links if present.
func (m *Model) RemoveLinks(links ...Link) int {
	drop := make(map[Link]struct{}, len(links))
	for _, l := range links {
		if _, ok := m.linkSet[l]; ok {
			drop[l] = struct{}{}
		}
	}
	if len(drop) == 0 {
		return 0
	}
	m.filterLinks(func(l Link) bool {
		_, d := drop[l]
		return !d
	})
	m.version++
	return len(drop)
}

func (m *Model) filterLinks(keep func(Link) bool) {
	kept := m.links[:0]
	for _, l := range m.links {
		if keep(l) {
			kept = append(kept, l)
		} else {
			delete(m.linkSet, l)
		}
	}
	m.links = kept
}

// Node looks a node up by id.
func (m *Model) Node(id string) (*Node, bool) {
	n, ok := m.byID[id]
	return n, ok
}

// Has reports whether id is present.
func (m *Model) Has(id string) bool {
	_, ok := m.byID[id]
	return ok
}

// HasLink reports whether l is present.
func (m *Model) HasLink(l Link) bool {
	_, ok := m.linkSet[l]
	return ok
}

// Nodes returns the live nodes in insertion order. The slice is a copy; the
// nodes are not.
func (m *Model) Nodes() []*Node {
	return append([]*Node(nil), m.order...)
}

// Links returns a copy of the link list.
func (m *Model) Links() []Link {
	return append([]Link(nil), m.links...)
}

// DetailsOf returns the detail nodes whose parent is parentID.
func (m *Model) DetailsOf(parentID string) []*Node {
	var out []*Node
	for _, n := range m.order {
		if n.Kind == KindDetail && n.ParentID == parentID {
			out = append(out, n)
		}
	}
	return out
}

// LinksOf returns every link touching id.
func (m *Model) LinksOf(id string) []Link {
	var out []Link
	for _, l := range m.links {
		if l.Source == id || l.Target == id {
			out = append(out, l)
		}
	}
	return out
}

// Len is the number of nodes.
func (m *Model) Len() int { return len(m.order) }

// LinkCount is the number of links.
func (m *Model) LinkCount() int { return len(m.links) }

// Stats holds summary counts.
type Stats struct {
	Entities int
	Details  int
	Expanded int
	Links    int
}

// GetStats counts nodes by kind.
func (m *Model) GetStats() Stats {
	st := Stats{Links: len(m.links)}
	for _, n := range m.order {
		switch n.Kind {
		case KindEntity:
			st.Entities++
			if n.Expanded {
				st.Expanded++
			}
		case KindDetail:
			st.Details++
		}
	}
	return st
}

// NodeState is a value copy of a node.
type NodeState struct {
	ID       string   `json:"id"`
	Label    string   `json:"label"`
	Kind     string   `json:"kind"`
	ParentID string   `json:"parent_id,omitempty"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Pinned   bool     `json:"pinned,omitempty"`
	Expanded bool     `json:"expanded,omitempty"`
	Details  []string `json:"details,omitempty"`
}

// LinkState is a value copy of a link.
type LinkState struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// Snapshot is a detached copy of the model.
type Snapshot struct {
	Nodes []NodeState `json:"nodes"`
	Links []LinkState `json:"links"`
}

// Snapshot copies the current nodes and links.
func (m *Model) Snapshot() Snapshot {
	snap := Snapshot{
		Nodes: make([]NodeState, 0, len(m.order)),
		Links: make([]LinkState, 0, len(m.links)),
	}
	for _, n := range m.order {
		snap.Nodes = append(snap.Nodes, NodeState{
			ID:       n.ID,
			Label:    n.Label,
			Kind:     n.Kind.String(),
			ParentID: n.ParentID,
			X:        n.X,
			Y:        n.Y,
			Pinned:   n.Pin != nil,
			Expanded: n.Expanded,
			Details:  append([]string(nil), n.Details...),
		})
	}
	for _, l := range m.links {
		snap.Links = append(snap.Links, LinkState{Source: l.Source, Target: l.Target})
	}
	return snap
}

// Node returns the snapshot entry for id.
func (s Snapshot) Node(id string) (NodeState, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return NodeState{}, false
}
