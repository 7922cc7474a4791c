package interact

import (
	"testing"

	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	toggled []string
	drags   []string
}

func (r *recorder) Toggle(id string) bool {
	r.toggled = append(r.toggled, id)
	return true
}

func (r *recorder) DragStart(id string) bool {
	r.drags = append(r.drags, "start "+id)
	return true
}

func (r *recorder) DragMove(id string, x, y float64) bool {
	r.drags = append(r.drags, "move "+id)
	return true
}

func (r *recorder) DragEnd(id string) bool {
	r.drags = append(r.drags, "end "+id)
	return true
}

func chain() *graph.Model {
	m := graph.FromSchema(&schema.Schema{
		Nodes: []schema.Table{{ID: "A"}, {ID: "B"}, {ID: "C"}, {ID: "D"}},
		Edges: []schema.Edge{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}},
	})
	m.AddNodes(&graph.Node{ID: "A_attr_0", Label: "x", Kind: graph.KindDetail, ParentID: "A"})
	m.AddLinks(graph.Link{Source: "A", Target: "A_attr_0"})
	return m
}

func TestIndex(t *testing.T) {
	ix := NewIndex([]graph.Link{{Source: "A", Target: "B"}, {Source: "B", Target: "C"}, {Source: "B", Target: "A"}})

	assert.True(t, ix.Connected("A", "B"))
	assert.True(t, ix.Connected("B", "A"), "symmetric")
	assert.True(t, ix.Connected("C", "C"), "self")
	assert.False(t, ix.Connected("A", "C"))
	assert.Equal(t, []string{"A", "C"}, ix.Neighbors("B"))
	assert.Equal(t, []string{"B"}, ix.Neighbors("A"))
	assert.Empty(t, ix.Neighbors("Z"))
}

func TestHover(t *testing.T) {
	m := chain()
	l := New(m, &recorder{}, &recorder{})

	require.True(t, l.Hover("B"))
	assert.Equal(t, 1.0, l.NodeOpacity("B"))
	assert.Equal(t, 1.0, l.NodeOpacity("A"))
	assert.Equal(t, 1.0, l.NodeOpacity("C"))
	assert.Equal(t, DimNodeOpacity, l.NodeOpacity("D"))
	assert.Equal(t, DimNodeOpacity, l.NodeOpacity("A_attr_0"))
	assert.Equal(t, 1.0, l.LinkOpacity(graph.Link{Source: "A", Target: "B"}))
	assert.Equal(t, DimLinkOpacity, l.LinkOpacity(graph.Link{Source: "A", Target: "A_attr_0"}))

	l.HoverEnd()
	for _, n := range m.Nodes() {
		assert.Equal(t, 1.0, l.NodeOpacity(n.ID))
	}
	for _, k := range m.Links() {
		assert.Equal(t, 1.0, l.LinkOpacity(k))
	}

	assert.False(t, l.Hover("Z"))
	assert.Empty(t, l.Hovered())
}

func TestSelection(t *testing.T) {
	m := chain()
	l := New(m, &recorder{}, &recorder{})
	var events []string
	l.OnNodeSelected(func(n *graph.Node) {
		if n == nil {
			events = append(events, "<none>")
			return
		}
		events = append(events, n.ID)
	})

	assert.True(t, l.Click("A_attr_0"))
	n, ok := l.Selected()
	require.True(t, ok)
	assert.Equal(t, "x", n.Label)
	assert.Equal(t, "A", n.ParentID)

	assert.False(t, l.Click("Z"))
	l.ClickCanvas()
	_, ok = l.Selected()
	assert.False(t, ok)
	l.ClickCanvas()

	assert.Equal(t, []string{"A_attr_0", "<none>"}, events)
}

func TestReindexForgetsRemovedNodes(t *testing.T) {
	m := chain()
	l := New(m, &recorder{}, &recorder{})
	var cleared bool
	l.OnNodeSelected(func(n *graph.Node) { cleared = n == nil })
	l.Click("A_attr_0")
	l.Hover("A_attr_0")

	m.RemoveNodes("A_attr_0")
	l.Reindex()

	_, ok := l.Selected()
	assert.False(t, ok)
	assert.True(t, cleared)
	assert.Empty(t, l.Hovered())
	assert.Empty(t, l.Index().Neighbors("A_attr_0"))
}

func TestDoubleClick(t *testing.T) {
	r := &recorder{}
	l := New(chain(), r, r)

	assert.True(t, l.DoubleClick("A"))
	assert.False(t, l.DoubleClick("A_attr_0"), "details do not toggle")
	assert.False(t, l.DoubleClick("Z"))
	assert.Equal(t, []string{"A"}, r.toggled)
}

func TestDragDelegates(t *testing.T) {
	r := &recorder{}
	l := New(chain(), r, r)

	l.DragStart("B")
	l.DragMove("B", 1, 2)
	l.DragEnd("B")
	assert.Equal(t, []string{"start B", "move B", "end B"}, r.drags)
}
