package ws

import (
	"context"
	"sync"
)

// signal is an edge-triggered one-shot synchronization primitive: an
// await suspends until the signal is raised; Clear rearms it (spec.md
// glossary, "Signal"). It is the Go stand-in for the original's
// trio.Event, which this engine uses for data-pending / data-sent /
// pong-received / closed coordination between the application, reader,
// and writer (spec.md §5).
type signal struct {
	mu sync.Mutex
	ch chan struct{}
}

func newSignal() *signal {
	return &signal{ch: make(chan struct{})}
}

// Set raises the signal, waking every current and future Wait call until
// the next Clear. Idempotent.
func (s *signal) Set() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ch:
	default:
		close(s.ch)
	}
}

// Clear rearms the signal. Idempotent.
func (s *signal) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.ch:
		s.ch = make(chan struct{})
	default:
	}
}

// Wait suspends until the signal is raised or ctx is done.
func (s *signal) Wait(ctx context.Context) error {
	s.mu.Lock()
	ch := s.ch
	s.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
