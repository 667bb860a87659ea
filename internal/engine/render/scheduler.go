// Package render coordinates redraw requests with the single rendering
// thread and describes the graphics backend the scene draws through.
package render

import "sync/atomic"

// Scheduler coalesces redraw requests into the next frame. It is an
// idempotent signal: any number of requests between two frames yields one
// redraw.
type Scheduler struct {
	dirty atomic.Bool
	wake  chan struct{}
}

// NewScheduler returns a scheduler with a redraw already pending so the
// first frame is always produced.
func NewScheduler() *Scheduler {
	s := &Scheduler{wake: make(chan struct{}, 1)}
	s.RequestRedraw()
	return s
}

// RequestRedraw marks the scene dirty. Safe for concurrent use.
func (s *Scheduler) RequestRedraw() {
	s.dirty.Store(true)
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// TakeRedraw reports whether a redraw was requested and clears the flag in
// the same atomic step.
func (s *Scheduler) TakeRedraw() bool {
	return s.dirty.Swap(false)
}

// Pending reports whether a redraw is requested without clearing it.
func (s *Scheduler) Pending() bool {
	return s.dirty.Load()
}

// Wake returns a channel that receives after a request. At most one wake-up
// is buffered; the flag remains the source of truth.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}
