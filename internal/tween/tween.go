// Package tween provides easing curves and the per-node transition state
// machines that animate detail nodes in and out. Transitions are driven by
// elapsed time only, so discarding one is all it takes to cancel it.
package tween

import (
	"time"

	"github.com/schemalens/schemalens/internal/graph"
)

// Ease maps linear progress in [0,1] to eased progress.
type Ease func(t float64) float64

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// CubicIn starts slow and accelerates.
func CubicIn(t float64) float64 { return t * t * t }

// CubicOut starts fast and decelerates.
func CubicOut(t float64) float64 {
	t--
	return t*t*t + 1
}

// CubicInOut accelerates then decelerates.
func CubicInOut(t float64) float64 {
	t *= 2
	if t <= 1 {
		return t * t * t / 2
	}
	t -= 2
	return (t*t*t + 2) / 2
}

// Progress returns the eased progress after elapsed of duration.
func Progress(elapsed, duration time.Duration, ease Ease) float64 {
	if duration <= 0 || elapsed >= duration {
		return 1
	}
	if elapsed <= 0 {
		return ease(0)
	}
	return ease(float64(elapsed) / float64(duration))
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// LerpPoint interpolates between two points.
func LerpPoint(a, b graph.Point, t float64) graph.Point {
	return graph.Point{X: Lerp(a.X, b.X, t), Y: Lerp(a.Y, b.Y, t)}
}

// Phase is the state of a transitioning node.
type Phase int

const (
	Entering Phase = iota
	Settled
	Leaving
	Removed
)

func (p Phase) String() string {
	switch p {
	case Entering:
		return "entering"
	case Settled:
		return "settled"
	case Leaving:
		return "leaving"
	default:
		return "removed"
	}
}

// Transition animates one node's rendered position and opacity.
// Entering moves to Settled and Leaving moves to Removed when the duration
// has elapsed.
type Transition struct {
	ID      string
	Label   string
	Phase   Phase
	From    graph.Point
	To      graph.Point
	Elapsed time.Duration

	duration    time.Duration
	ease        Ease
	fromOpacity float64
	toOpacity   float64
}

// Enter fades a node in while it travels from -> to.
func Enter(id string, from, to graph.Point, d time.Duration) *Transition {
	return &Transition{
		ID: id, Phase: Entering, From: from, To: to,
		duration: d, ease: CubicOut, fromOpacity: 0, toOpacity: 1,
	}
}

// Leave fades a node out while it travels from -> to.
func Leave(id, label string, from, to graph.Point, d time.Duration) *Transition {
	return &Transition{
		ID: id, Label: label, Phase: Leaving, From: from, To: to,
		duration: d, ease: CubicIn, fromOpacity: 1, toOpacity: 0,
	}
}

// Step advances the transition and reports whether it just completed.
func (t *Transition) Step(dt time.Duration) bool {
	if t.Done() {
		return false
	}
	t.Elapsed += dt
	if t.Elapsed < t.duration {
		return false
	}
	t.Finish()
	return true
}

// Finish jumps to the final state.
func (t *Transition) Finish() {
	t.Elapsed = t.duration
	switch t.Phase {
	case Entering:
		t.Phase = Settled
	case Leaving:
		t.Phase = Removed
	}
}

// Done reports whether the transition reached its final state.
func (t *Transition) Done() bool {
	return t.Phase == Settled || t.Phase == Removed
}

// Progress is the eased completion in [0,1].
func (t *Transition) Progress() float64 {
	return Progress(t.Elapsed, t.duration, t.ease)
}

// Position is the rendered position at the current progress.
func (t *Transition) Position() graph.Point {
	return LerpPoint(t.From, t.To, t.Progress())
}

// Opacity is the rendered opacity at the current progress.
func (t *Transition) Opacity() float64 {
	return Lerp(t.fromOpacity, t.toOpacity, t.Progress())
}
