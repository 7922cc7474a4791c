package graph

import (
	"testing"

	"github.com/schemalens/schemalens/internal/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schoolSchema() *schema.Schema {
	return &schema.Schema{
		DBType: "mysql",
		Nodes: []schema.Table{
			{ID: "Departments", Label: "Departments"},
			{ID: "Students", Label: "Students", Columns: []string{"id", "name", "dept_id"}},
		},
		Edges: []schema.Edge{{Source: "Students", Target: "Departments"}},
	}
}

func TestFromSchema(t *testing.T) {
	t.Run("builds collapsed entities and links", func(t *testing.T) {
		m := FromSchema(schoolSchema())

		require.Equal(t, 2, m.Len())
		require.Equal(t, 1, m.LinkCount())

		s, ok := m.Node("Students")
		require.True(t, ok)
		assert.Equal(t, KindEntity, s.Kind)
		assert.False(t, s.Expanded)
		assert.Equal(t, []string{"id", "name", "dept_id"}, s.Details)
		assert.True(t, m.HasLink(Link{Source: "Students", Target: "Departments"}))
	})

	t.Run("drops dangling edge", func(t *testing.T) {
		m := FromSchema(&schema.Schema{
			Nodes: []schema.Table{{ID: "A"}},
			Edges: []schema.Edge{{Source: "A", Target: "B"}},
		})

		assert.Equal(t, 1, m.Len())
		assert.Equal(t, 0, m.LinkCount())
	})

	t.Run("label falls back to id", func(t *testing.T) {
		m := FromSchema(&schema.Schema{Nodes: []schema.Table{{ID: "orders"}}})

		n, _ := m.Node("orders")
		assert.Equal(t, "orders", n.Label)
	})

	t.Run("duplicate ids keep the first", func(t *testing.T) {
		m := FromSchema(&schema.Schema{Nodes: []schema.Table{{ID: "A", Label: "first"}, {ID: "A", Label: "second"}}})

		require.Equal(t, 1, m.Len())
		n, _ := m.Node("A")
		assert.Equal(t, "first", n.Label)
	})

	t.Run("nil schema yields empty model", func(t *testing.T) {
		m := FromSchema(nil)
		assert.Equal(t, 0, m.Len())
	})

	t.Run("columns are copied", func(t *testing.T) {
		s := schoolSchema()
		m := FromSchema(s)
		s.Nodes[1].Columns[0] = "changed"

		n, _ := m.Node("Students")
		assert.Equal(t, "id", n.Details[0])
	})
}

func TestAddRemoveNodes(t *testing.T) {
	t.Run("add skips present ids", func(t *testing.T) {
		m := New()
		assert.Equal(t, 2, m.AddNodes(&Node{ID: "a"}, &Node{ID: "b"}))
		assert.Equal(t, 0, m.AddNodes(&Node{ID: "a"}))
		assert.Equal(t, 0, m.AddNodes(nil, &Node{}))
		assert.Equal(t, 2, m.Len())
	})

	t.Run("remove drops touching links", func(t *testing.T) {
		m := FromSchema(schoolSchema())

		assert.Equal(t, 1, m.RemoveNodes("Departments"))
		assert.Equal(t, 1, m.Len())
		assert.Equal(t, 0, m.LinkCount())
		assert.False(t, m.Has("Departments"))
	})

	t.Run("remove unknown id is a no-op", func(t *testing.T) {
		m := FromSchema(schoolSchema())
		v := m.Version()

		assert.Equal(t, 0, m.RemoveNodes("ghost"))
		assert.Equal(t, v, m.Version())
	})

	t.Run("insertion order is kept", func(t *testing.T) {
		m := New()
		m.AddNodes(&Node{ID: "a"}, &Node{ID: "b"}, &Node{ID: "c"})
		m.RemoveNodes("b")

		ids := []string{}
		for _, n := range m.Nodes() {
			ids = append(ids, n.ID)
		}
		assert.Equal(t, []string{"a", "c"}, ids)
	})
}

func TestAddRemoveLinks(t *testing.T) {
	m := New()
	m.AddNodes(&Node{ID: "a"}, &Node{ID: "b"})

	assert.Equal(t, 1, m.AddLinks(Link{Source: "a", Target: "b"}))
	assert.Equal(t, 0, m.AddLinks(Link{Source: "a", Target: "b"}), "duplicate")
	assert.Equal(t, 0, m.AddLinks(Link{Source: "a", Target: "zz"}), "unresolved")
	assert.Equal(t, 1, m.AddLinks(Link{Source: "b", Target: "a"}), "reverse direction is distinct")

	assert.Equal(t, 1, m.RemoveLinks(Link{Source: "a", Target: "b"}))
	assert.Equal(t, 0, m.RemoveLinks(Link{Source: "a", Target: "b"}))
	assert.Equal(t, []Link{{Source: "b", Target: "a"}}, m.Links())
}

func TestDetailsOf(t *testing.T) {
	m := FromSchema(schoolSchema())
	m.AddNodes(
		&Node{ID: DetailID("Students", 0), Kind: KindDetail, ParentID: "Students"},
		&Node{ID: DetailID("Students", 1), Kind: KindDetail, ParentID: "Students"},
	)

	details := m.DetailsOf("Students")
	require.Len(t, details, 2)
	assert.Equal(t, "Students_attr_0", details[0].ID)
	assert.Empty(t, m.DetailsOf("Departments"))
}

func TestLinksOf(t *testing.T) {
	m := FromSchema(schoolSchema())
	assert.Len(t, m.LinksOf("Departments"), 1)
	assert.Len(t, m.LinksOf("Students"), 1)
	assert.Empty(t, m.LinksOf("nobody"))
}

func TestGetStats(t *testing.T) {
	m := FromSchema(schoolSchema())
	s, _ := m.Node("Students")
	s.Expanded = true
	m.AddNodes(&Node{ID: DetailID("Students", 0), Kind: KindDetail, ParentID: "Students"})

	assert.Equal(t, Stats{Entities: 2, Details: 1, Expanded: 1, Links: 1}, m.GetStats())
}

func TestSnapshot(t *testing.T) {
	m := FromSchema(schoolSchema())
	s, _ := m.Node("Students")
	s.X, s.Y = 10, 20
	s.SetPin(Point{X: 10, Y: 20})

	snap := m.Snapshot()
	require.Len(t, snap.Nodes, 2)
	require.Len(t, snap.Links, 1)

	st, ok := snap.Node("Students")
	require.True(t, ok)
	assert.Equal(t, 10.0, st.X)
	assert.True(t, st.Pinned)
	assert.Equal(t, "entity", st.Kind)

	// detached from the model
	s.X = 99
	st, _ = snap.Node("Students")
	assert.Equal(t, 10.0, st.X)

	_, ok = snap.Node("nope")
	assert.False(t, ok)
}

func TestPin(t *testing.T) {
	n := &Node{ID: "a", X: 1, Y: 2}
	n.SetPin(n.Position())
	require.NotNil(t, n.Pin)
	assert.Equal(t, Point{X: 1, Y: 2}, *n.Pin)

	n.X = 5
	assert.Equal(t, 1.0, n.Pin.X, "pin does not alias the position")

	n.Unpin()
	assert.Nil(t, n.Pin)
}
