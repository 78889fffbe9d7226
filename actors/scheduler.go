package actors

// Scheduler decides where a unit of mailbox work runs
type Scheduler interface {
	// Schedule runs work, now or later, on some goroutine
	Schedule(work func())
}

// GoroutineScheduler runs every unit of work on its own goroutine
type GoroutineScheduler struct{}

// Schedule implements Scheduler
func (GoroutineScheduler) Schedule(work func()) {
	go work()
}

var _ Scheduler = GoroutineScheduler{}
