package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActiveQueue(t *testing.T) {
	all := func(string) bool { return true }

	t.Run("push keeps insertion order", func(t *testing.T) {
		q := NewActiveQueue(3)
		assert.True(t, q.Push("a"))
		assert.True(t, q.Push("b"))
		assert.False(t, q.Push("a"), "already queued")
		assert.Equal(t, []string{"a", "b"}, q.IDs())
	})

	t.Run("no victim below the limit", func(t *testing.T) {
		q := NewActiveQueue(3)
		q.Push("a")
		q.Push("b")

		_, ok := q.Victim(all)
		assert.False(t, ok)
	})

	t.Run("victim is the oldest at the limit", func(t *testing.T) {
		q := NewActiveQueue(2)
		q.Push("a")
		q.Push("b")

		v, ok := q.Victim(all)
		assert.True(t, ok)
		assert.Equal(t, "a", v)
	})

	t.Run("inactive entries neither count nor get picked", func(t *testing.T) {
		q := NewActiveQueue(2)
		q.Push("retracting")
		q.Push("b")
		active := func(id string) bool { return id != "retracting" }

		_, ok := q.Victim(active)
		assert.False(t, ok)

		q.Push("c")
		v, ok := q.Victim(active)
		assert.True(t, ok)
		assert.Equal(t, "b", v)
	})

	t.Run("remove and clear", func(t *testing.T) {
		q := NewActiveQueue(2)
		q.Push("a")
		q.Push("b")

		assert.True(t, q.Remove("a"))
		assert.False(t, q.Remove("a"))
		assert.False(t, q.Contains("a"))
		assert.Equal(t, 1, q.Len())

		q.Clear()
		assert.Equal(t, 0, q.Len())
	})

	t.Run("limit floors at one", func(t *testing.T) {
		assert.Equal(t, 1, NewActiveQueue(0).Limit())
	})
}
