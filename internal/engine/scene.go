package engine

import (
	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/viewport"
)

// Item is the rendered state of one node or ghost. Items are reused across
// frames for as long as their id stays on screen.
type Item struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	Kind     graph.Kind `json:"-"`
	ParentID string     `json:"parent_id,omitempty"`
	X        float64    `json:"x"`
	Y        float64    `json:"y"`
	Radius   float64    `json:"r"`
	Ghost    bool       `json:"ghost,omitempty"`
	Selected bool       `json:"selected,omitempty"`

	// Opacity channels, multiplied on output.
	Fade   float64 `json:"-"`
	Search float64 `json:"-"`
	Hover  float64 `json:"-"`
}

// Opacity combines the fade, search and hover channels.
func (it *Item) Opacity() float64 { return it.Fade * it.Search * it.Hover }

func (it *Item) SearchLabel() string        { return it.Label }
func (it *Item) SetSearchOpacity(o float64) { it.Search = o }

// LinkItem is the rendered state of one link.
type LinkItem struct {
	Key    string  `json:"key"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
	Detail bool    `json:"detail,omitempty"`
	Ghost  bool    `json:"ghost,omitempty"`

	Fade  float64 `json:"-"`
	Hover float64 `json:"-"`
}

// Opacity combines the fade and hover channels.
func (l *LinkItem) Opacity() float64 { return l.Fade * l.Hover }

// Frame is the scene handed to renderers. Its items are owned by the
// session and stay valid until the next step.
type Frame struct {
	Seq       uint64             `json:"seq"`
	Transform viewport.Transform `json:"transform"`
	Nodes     []*Item            `json:"nodes"`
	Links     []*LinkItem        `json:"links"`
	Alpha     float64            `json:"alpha"`
	Settled   bool               `json:"settled"`
}

// Item returns the frame item with id.
func (f Frame) Item(id string) (*Item, bool) {
	for _, it := range f.Nodes {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// Bounds covers every visible item.
func (f Frame) Bounds() viewport.Bounds {
	var b viewport.Bounds
	for _, it := range f.Nodes {
		b.Extend(graph.Point{X: it.X, Y: it.Y}, it.Radius)
	}
	return b
}

type scene struct {
	items map[string]*Item
	links map[string]*LinkItem
	seq   uint64
}

func newScene() *scene {
	return &scene{
		items: make(map[string]*Item),
		links: make(map[string]*LinkItem),
	}
}

func (sc *scene) item(key string) *Item {
	it, ok := sc.items[key]
	if !ok {
		it = &Item{Fade: 1, Search: 1, Hover: 1}
		sc.items[key] = it
	}
	return it
}

func (sc *scene) link(key string) *LinkItem {
	l, ok := sc.links[key]
	if !ok {
		l = &LinkItem{Key: key, Fade: 1, Hover: 1}
		sc.links[key] = l
	}
	return l
}

// prune drops items whose key was not seen this frame.
func (sc *scene) prune(nodes map[string]bool, links map[string]bool) {
	for k := range sc.items {
		if !nodes[k] {
			delete(sc.items, k)
		}
	}
	for k := range sc.links {
		if !links[k] {
			delete(sc.links, k)
		}
	}
}
