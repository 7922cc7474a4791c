package engine

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// ErrLoopClosed is returned when posting to a loop that stopped.
var ErrLoopClosed = errors.New("loop closed")

// Source feeds events into a running loop, e.g. a file watcher. It should
// return nil when ctx is cancelled.
type Source func(ctx context.Context, l *Loop) error

// Loop owns a session and applies frames and events to it from a single
// goroutine.
type Loop struct {
	s        *Session
	interval time.Duration
	events   chan func(*Session)
	done     chan struct{}
}

// NewLoop returns a loop stepping s every interval.
func NewLoop(s *Session, interval time.Duration) *Loop {
	if interval <= 0 {
		interval = FrameInterval
	}
	return &Loop{
		s:        s,
		interval: interval,
		events:   make(chan func(*Session)),
		done:     make(chan struct{}),
	}
}

// Do runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func(*Session)) error {
	finished := make(chan struct{})
	wrapped := func(s *Session) {
		defer close(finished)
		fn(s)
	}
	select {
	case l.events <- wrapped:
	case <-l.done:
		return ErrLoopClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run steps the session until ctx is done. Every source runs in the same
// errgroup; the first source error stops the loop and is returned.
func (l *Loop) Run(ctx context.Context, sources ...Source) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(l.done)
		return l.run(ctx)
	})
	for _, src := range sources {
		g.Go(func() error {
			return src(ctx, l)
		})
	}
	return g.Wait()
}

func (l *Loop) run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	dirty := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case fn := <-l.events:
			fn(l.s)
			dirty = true
		case <-ticker.C:
			if dirty || !l.s.Idle() {
				l.s.Step(l.interval)
				dirty = false
			}
		}
	}
}
