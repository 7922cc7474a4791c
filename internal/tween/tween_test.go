package tween

import (
	"testing"
	"time"

	"github.com/schemalens/schemalens/internal/graph"
	"github.com/stretchr/testify/assert"
)

func TestEases(t *testing.T) {
	for name, ease := range map[string]Ease{
		"linear": Linear, "cubic-in": CubicIn, "cubic-out": CubicOut, "cubic-in-out": CubicInOut,
	} {
		t.Run(name, func(t *testing.T) {
			assert.InDelta(t, 0, ease(0), 1e-12)
			assert.InDelta(t, 1, ease(1), 1e-12)
		})
	}

	assert.Less(t, CubicIn(0.5), 0.5)
	assert.Greater(t, CubicOut(0.5), 0.5)
	assert.InDelta(t, 0.5, CubicInOut(0.5), 1e-12)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 1.0, Progress(0, 0, Linear), "zero duration completes at once")
	assert.Equal(t, 0.0, Progress(0, time.Second, Linear))
	assert.Equal(t, 0.5, Progress(500*time.Millisecond, time.Second, Linear))
	assert.Equal(t, 1.0, Progress(2*time.Second, time.Second, Linear))
}

func TestEnter(t *testing.T) {
	from := graph.Point{X: 0, Y: 0}
	to := graph.Point{X: 100, Y: 0}
	tr := Enter("a", from, to, 100*time.Millisecond)

	assert.Equal(t, Entering, tr.Phase)
	assert.Equal(t, 0.0, tr.Opacity(), "starts invisible")
	assert.Equal(t, from, tr.Position())

	assert.False(t, tr.Step(50*time.Millisecond))
	assert.Greater(t, tr.Position().X, 50.0, "ease-out is ahead of linear")
	assert.Greater(t, tr.Opacity(), 0.5)

	assert.True(t, tr.Step(60*time.Millisecond))
	assert.Equal(t, Settled, tr.Phase)
	assert.Equal(t, to, tr.Position())
	assert.Equal(t, 1.0, tr.Opacity())

	assert.False(t, tr.Step(time.Second), "completes once")
}

func TestLeave(t *testing.T) {
	tr := Leave("a", "name", graph.Point{X: 100}, graph.Point{}, 100*time.Millisecond)

	assert.Equal(t, 1.0, tr.Opacity())
	tr.Step(50 * time.Millisecond)
	assert.Greater(t, tr.Position().X, 50.0, "ease-in lags behind linear")

	tr.Finish()
	assert.Equal(t, Removed, tr.Phase)
	assert.True(t, tr.Done())
	assert.Equal(t, 0.0, tr.Opacity())
	assert.Equal(t, "removed", tr.Phase.String())
}

func TestZeroDurationTransition(t *testing.T) {
	tr := Enter("a", graph.Point{}, graph.Point{X: 1}, 0)
	assert.True(t, tr.Step(0))
	assert.Equal(t, Settled, tr.Phase)
}
