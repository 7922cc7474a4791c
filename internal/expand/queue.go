package expand

import "slices"

// ActiveQueue is the activation-ordered list of expanded entities. It
// admits at most limit active entries; the oldest active entry is the
// eviction victim.
type ActiveQueue struct {
	ids   []string
	limit int
}

// NewActiveQueue returns an empty queue admitting limit active entries.
func NewActiveQueue(limit int) *ActiveQueue {
	if limit < 1 {
		limit = 1
	}
	return &ActiveQueue{limit: limit}
}

// Limit is the capacity.
func (q *ActiveQueue) Limit() int { return q.limit }

// Push appends id unless it is already queued.
func (q *ActiveQueue) Push(id string) bool {
	if q.Contains(id) {
		return false
	}
	q.ids = append(q.ids, id)
	return true
}

// Remove deletes id wherever it is.
func (q *ActiveQueue) Remove(id string) bool {
	i := slices.Index(q.ids, id)
	if i < 0 {
		return false
	}
	q.ids = slices.Delete(q.ids, i, i+1)
	return true
}

// Contains reports whether id is queued.
func (q *ActiveQueue) Contains(id string) bool {
	return slices.Contains(q.ids, id)
}

// Len is the number of queued ids, active or not.
func (q *ActiveQueue) Len() int { return len(q.ids) }

// IDs returns the queued ids, oldest first.
func (q *ActiveQueue) IDs() []string {
	return slices.Clone(q.ids)
}

// Victim returns the oldest entry for which active holds, when the number
// of such entries has reached the limit.
func (q *ActiveQueue) Victim(active func(id string) bool) (string, bool) {
	count := 0
	oldest := ""
	for _, id := range q.ids {
		if !active(id) {
			continue
		}
		if count == 0 {
			oldest = id
		}
		count++
	}
	if count < q.limit {
		return "", false
	}
	return oldest, true
}

// Clear empties the queue.
func (q *ActiveQueue) Clear() {
	q.ids = nil
}
