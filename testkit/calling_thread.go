// Package testkit holds helpers that make actor tests deterministic.
package testkit

import "github.com/super-flat/actorsdi/actors"

// CallingThreadDispatcherID identifies the calling-thread dispatcher in configuration and logs
const CallingThreadDispatcherID = "actors.test.calling-thread-dispatcher"

// CallingThreadScheduler runs scheduled work on the goroutine that schedules it,
// to completion, before Schedule returns. Nothing is queued or reordered.
type CallingThreadScheduler struct{}

var _ actors.Scheduler = CallingThreadScheduler{}

// NewCallingThreadScheduler returns a CallingThreadScheduler
func NewCallingThreadScheduler() CallingThreadScheduler {
	return CallingThreadScheduler{}
}

// Schedule runs work immediately
func (CallingThreadScheduler) Schedule(work func()) {
	work()
}

// String returns CallingThreadDispatcherID
func (CallingThreadScheduler) String() string {
	return CallingThreadDispatcherID
}

// WithCallingThreadDispatcher makes a dispatcher process every message on the
// goroutine that sends it
func WithCallingThreadDispatcher() actors.DispatcherOpt {
	return actors.WithScheduler(CallingThreadScheduler{})
}
