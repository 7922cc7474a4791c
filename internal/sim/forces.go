package sim

import (
	"math"

	"github.com/schemalens/schemalens/internal/graph"
)

// Forces configures the solver. Distances and radii are in layout units.
type Forces struct {
	// EntityLinkDistance separates two linked entities.
	EntityLinkDistance float64
	// DetailLinkDistance keeps detail nodes close to their parent.
	DetailLinkDistance float64
	LinkStrength       float64
	// Charge is applied between every node pair; negative repels.
	Charge       float64
	EntityRadius float64
	DetailRadius float64
	CenterX      float64
	CenterY      float64
}

// DefaultForces derives the solver configuration from the node radii and
// viewport size.
func DefaultForces(entityRadius, detailRadius, width, height float64) Forces {
	cx, cy := centerOf(width, height)
	return Forces{
		EntityLinkDistance: entityRadius + 150,
		DetailLinkDistance: 40,
		LinkStrength:       0.5,
		Charge:             -1000,
		EntityRadius:       entityRadius,
		DetailRadius:       detailRadius,
		CenterX:            cx,
		CenterY:            cy,
	}
}

// Viewports smaller than this are laid out as if they were this size.
const (
	minWidth  = 800
	minHeight = 600
)

func centerOf(width, height float64) (float64, float64) {
	return math.Max(width, minWidth) / 2, math.Max(height, minHeight) / 2
}

func (f Forces) radius(n *graph.Node) float64 {
	if n.Kind == graph.KindDetail {
		return f.DetailRadius
	}
	return f.EntityRadius
}

func (f Forces) distance(a, b *graph.Node) float64 {
	if a.Kind == graph.KindDetail || b.Kind == graph.KindDetail {
		return f.DetailLinkDistance
	}
	return f.EntityLinkDistance
}

type simLink struct {
	source, target int
	distance       float64
	bias           float64
}

func (s *Simulation) applyLinks(alpha float64) {
	for _, l := range s.links {
		src, tgt := s.nodes[l.source], s.nodes[l.target]
		x := tgt.X + tgt.VX - src.X - src.VX
		if x == 0 {
			x = s.jiggle()
		}
		y := tgt.Y + tgt.VY - src.Y - src.VY
		if y == 0 {
			y = s.jiggle()
		}
		d := math.Sqrt(x*x + y*y)
		d = (d - l.distance) / d * alpha * s.forces.LinkStrength
		x *= d
		y *= d
		tgt.VX -= x * l.bias
		tgt.VY -= y * l.bias
		src.VX += x * (1 - l.bias)
		src.VY += y * (1 - l.bias)
	}
}

// applyCharge sums the pairwise charge directly. Schema diagrams stay in the
// hundreds of nodes, so no spatial index is kept.
func (s *Simulation) applyCharge(alpha float64) {
	w := s.forces.Charge * alpha
	for i, a := range s.nodes {
		for j, b := range s.nodes {
			if i == j {
				continue
			}
			x := b.X - a.X
			y := b.Y - a.Y
			l := x*x + y*y
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			if l < 1 {
				l = math.Sqrt(l)
			}
			a.VX += x * w / l
			a.VY += y * w / l
		}
	}
}

func (s *Simulation) applyCenter() {
	if len(s.nodes) == 0 {
		return
	}
	var sx, sy float64
	for _, n := range s.nodes {
		sx += n.X
		sy += n.Y
	}
	sx = sx/float64(len(s.nodes)) - s.forces.CenterX
	sy = sy/float64(len(s.nodes)) - s.forces.CenterY
	for _, n := range s.nodes {
		n.X -= sx
		n.Y -= sy
	}
}

func (s *Simulation) applyCollide() {
	for i, a := range s.nodes {
		ri := s.forces.radius(a)
		ri2 := ri * ri
		xi := a.X + a.VX
		yi := a.Y + a.VY
		for _, b := range s.nodes[i+1:] {
			rj := s.forces.radius(b)
			r := ri + rj
			x := xi - b.X - b.VX
			y := yi - b.Y - b.VY
			l := x*x + y*y
			if l >= r*r {
				continue
			}
			if x == 0 {
				x = s.jiggle()
				l += x * x
			}
			if y == 0 {
				y = s.jiggle()
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l
			x *= l
			y *= l
			share := rj * rj / (ri2 + rj*rj)
			a.VX += x * share
			a.VY += y * share
			b.VX -= x * (1 - share)
			b.VY -= y * (1 - share)
		}
	}
}
