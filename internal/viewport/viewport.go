// Package viewport holds the pan/zoom transform applied to the rendered
// scene. It never moves nodes.
package viewport

import (
	"fmt"
	"math"
	"time"

	"github.com/schemalens/schemalens/internal/graph"
	"github.com/schemalens/schemalens/internal/tween"
)

const (
	ResetDuration = 750 * time.Millisecond
	FitDuration   = 420 * time.Millisecond
	FitMaxScale   = 1.2
	FitMargin     = 70.0
)

// Transform maps world coordinates to screen coordinates:
// screen = world*K + (X, Y).
type Transform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity is the unzoomed, unpanned transform.
var Identity = Transform{K: 1}

// Apply maps a world point to the screen.
func (t Transform) Apply(p graph.Point) graph.Point {
	return graph.Point{X: p.X*t.K + t.X, Y: p.Y*t.K + t.Y}
}

// Invert maps a screen point back to the world.
func (t Transform) Invert(p graph.Point) graph.Point {
	return graph.Point{X: (p.X - t.X) / t.K, Y: (p.Y - t.Y) / t.K}
}

// String renders the transform as an SVG transform attribute.
func (t Transform) String() string {
	return fmt.Sprintf("translate(%g,%g) scale(%g)", t.X, t.Y, t.K)
}

func lerpTransform(a, b Transform, p float64) Transform {
	return Transform{
		K: tween.Lerp(a.K, b.K, p),
		X: tween.Lerp(a.X, b.X, p),
		Y: tween.Lerp(a.Y, b.Y, p),
	}
}

// Bounds is an axis-aligned world rectangle. The zero value is empty.
type Bounds struct {
	MinX, MinY, MaxX, MaxY float64
	set                    bool
}

// Extend grows b to cover a disc of radius r around p.
func (b *Bounds) Extend(p graph.Point, r float64) {
	if !b.set {
		*b = Bounds{MinX: p.X - r, MinY: p.Y - r, MaxX: p.X + r, MaxY: p.Y + r, set: true}
		return
	}
	b.MinX = math.Min(b.MinX, p.X-r)
	b.MinY = math.Min(b.MinY, p.Y-r)
	b.MaxX = math.Max(b.MaxX, p.X+r)
	b.MaxY = math.Max(b.MaxY, p.Y+r)
}

func (b Bounds) Empty() bool     { return !b.set }
func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

// Center is the midpoint of b.
func (b Bounds) Center() graph.Point {
	return graph.Point{X: (b.MinX + b.MaxX) / 2, Y: (b.MinY + b.MaxY) / 2}
}

type animation struct {
	from, to Transform
	elapsed  time.Duration
	duration time.Duration
}

// Viewport owns the current transform and its animations.
type Viewport struct {
	t        Transform
	minScale float64
	maxScale float64
	anim     *animation
	onZoom   []func(k float64)
}

// New returns an identity viewport clamping scale to [minScale, maxScale].
func New(minScale, maxScale float64) *Viewport {
	return &Viewport{t: Identity, minScale: minScale, maxScale: maxScale}
}

// Transform returns the current transform.
func (v *Viewport) Transform() Transform { return v.t }

// Percent is the zoom readout, rounded.
func (v *Viewport) Percent() int { return int(math.Round(v.t.K * 100)) }

// OnZoom registers fn to run whenever the scale changes.
func (v *Viewport) OnZoom(fn func(k float64)) {
	v.onZoom = append(v.onZoom, fn)
}

// Animating reports whether a reset or fit is in progress.
func (v *Viewport) Animating() bool { return v.anim != nil }

func (v *Viewport) clamp(k float64) float64 {
	return math.Max(v.minScale, math.Min(v.maxScale, k))
}

func (v *Viewport) set(t Transform) {
	prev := v.t.K
	v.t = t
	if t.K != prev {
		for _, fn := range v.onZoom {
			fn(t.K)
		}
	}
}

// ZoomAt scales by factor keeping the screen point (px, py) fixed.
// Direct manipulation cancels any running animation.
func (v *Viewport) ZoomAt(factor, px, py float64) {
	v.anim = nil
	k := v.clamp(v.t.K * factor)
	world := v.t.Invert(graph.Point{X: px, Y: py})
	v.set(Transform{K: k, X: px - world.X*k, Y: py - world.Y*k})
}

// SetScale sets the scale about the screen origin.
func (v *Viewport) SetScale(k float64) {
	if v.t.K == 0 {
		return
	}
	v.ZoomAt(k/v.t.K, 0, 0)
}

// Pan translates by (dx, dy) screen units.
func (v *Viewport) Pan(dx, dy float64) {
	v.anim = nil
	v.set(Transform{K: v.t.K, X: v.t.X + dx, Y: v.t.Y + dy})
}

// Reset animates back to the identity transform.
func (v *Viewport) Reset() {
	v.animate(Identity, ResetDuration)
}

// FitToContent animates to a transform that centers b in a width x height
// screen. It reports false for empty bounds.
func (v *Viewport) FitToContent(b Bounds, width, height float64) bool {
	if b.Empty() {
		return false
	}
	v.animate(Fit(b, width, height, v.maxScale), FitDuration)
	return true
}

// Fit computes the fit transform without animating.
func Fit(b Bounds, width, height, maxScale float64) Transform {
	bw := math.Max(b.Width(), 1)
	bh := math.Max(b.Height(), 1)
	k := math.Min(FitMaxScale, math.Min((width-2*FitMargin)/bw, (height-2*FitMargin)/bh))
	k = math.Min(k, maxScale)
	if k <= 0 {
		k = math.Min(FitMaxScale, maxScale)
	}
	c := b.Center()
	return Transform{K: k, X: width/2 - c.X*k, Y: height/2 - c.Y*k}
}

func (v *Viewport) animate(to Transform, d time.Duration) {
	if d <= 0 {
		v.anim = nil
		v.set(to)
		return
	}
	v.anim = &animation{from: v.t, to: to, duration: d}
}

// Step advances a running animation by dt. It reports whether the
// transform changed.
func (v *Viewport) Step(dt time.Duration) bool {
	if v.anim == nil {
		return false
	}
	a := v.anim
	a.elapsed += dt
	if a.elapsed >= a.duration {
		v.anim = nil
		v.set(a.to)
		return true
	}
	v.set(lerpTransform(a.from, a.to, tween.Progress(a.elapsed, a.duration, tween.CubicInOut)))
	return true
}

// Finish jumps a running animation to its end.
func (v *Viewport) Finish() {
	if v.anim != nil {
		v.Step(v.anim.duration)
	}
}
