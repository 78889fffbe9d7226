package actors

import (
	"time"

	"github.com/super-flat/actorsdi/log"
)

// DispatcherOpt helps defines custom options
type DispatcherOpt func(dispatcher *Dispatcher)

// WithPassivationFrequency sets how often idle actors are looked for
func WithPassivationFrequency(passivationFrequency time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.passivationFrequency = passivationFrequency
	}
}

// WithPassivation set how long an actor can stay idle before it is passivated
func WithPassivation(maxInactivity time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.maxActorInactivity = maxInactivity
	}
}

// WithMailboxSize sets the size of every actor mailbox
func WithMailboxSize(size int) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.mailboxSize = size
	}
}

// WithPartitions sets how many independently locked shards hold the actors
func WithPartitions(count uint32) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		if count > 0 {
			dispatcher.partitions = count
		}
	}
}

// WithAskTimeout set how long an actor has to reply a command
// in an Ask pattern
func WithAskTimeout(askTimeout time.Duration) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.askTimeout = askTimeout
	}
}

// WithScheduler sets the scheduler running mailbox work
func WithScheduler(scheduler Scheduler) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.scheduler = scheduler
	}
}

// WithLogger sets the dispatcher logger
func WithLogger(logger log.Logger) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.logger = logger
	}
}

// WithMetrics sets the runtime metrics
func WithMetrics(metrics Metrics) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.metrics = metrics
	}
}
