package actors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/super-flat/actorsdi/log"
	"go.uber.org/multierr"
	"google.golang.org/protobuf/proto"
)

// stoppingRetryDelay is how long Send waits before retrying an actor that is stopping
const stoppingRetryDelay = 5 * time.Millisecond

// Dispatcher directly manages actors and dispatches messages to them.
// Actors are built from the dispatcher props on their first message and released
// through the props when they terminate.
type Dispatcher struct {
	isReceiving atomic.Bool
	actors      *actorMap
	props       *Props

	maxActorInactivity   time.Duration
	passivationFrequency time.Duration
	mailboxSize          int
	partitions           uint32
	askTimeout           time.Duration

	scheduler      Scheduler
	newInitBackOff func() backoff.BackOff
	logger         log.Logger
	metrics        Metrics

	done     chan struct{}
	doneOnce sync.Once
}

// NewActorDispatcher returns a new Dispatcher
func NewActorDispatcher(props *Props, opts ...DispatcherOpt) *Dispatcher {
	// create the dispatcher
	dispatcher := &Dispatcher{
		props:                props,
		maxActorInactivity:   5 * time.Second,
		passivationFrequency: 5 * time.Second,
		mailboxSize:          10,
		partitions:           16,
		askTimeout:           5 * time.Second,
		scheduler:            GoroutineScheduler{},
		newInitBackOff:       defaultInitBackOff,
		logger:               log.DefaultLogger,
		metrics:              NopMetrics(),
		done:                 make(chan struct{}),
	}
	// set the custom options to override the default values
	for _, opt := range opts {
		opt(dispatcher)
	}
	dispatcher.actors = newActorMap(dispatcher.partitions)
	return dispatcher
}

// WithInitBackOff sets the backoff policy used when an actor fails to initialize
func WithInitBackOff(newBackOff func() backoff.BackOff) DispatcherOpt {
	return func(dispatcher *Dispatcher) {
		dispatcher.newInitBackOff = newBackOff
	}
}

// Props returns the props the dispatcher builds actors from
func (x *Dispatcher) Props() *Props {
	return x.props
}

// Send a message to a specific actor and wait for its reply
func (x *Dispatcher) Send(ctx context.Context, actorID string, msg proto.Message) (proto.Message, error) {
	spanCtx, span := getSpanContext(ctx, "Dispatcher.Send", actorID)
	defer span.End()
	if !x.isReceiving.Load() {
		return nil, ErrNotReady
	}
	for {
		// get the actor
		mailbox, err := x.getActor(spanCtx, actorID)
		if err != nil {
			return nil, err
		}
		// send the message, get the reply channel
		success, replyChan := mailbox.Send(spanCtx, msg)
		if !success {
			// the actor is stopping, retry once it is gone
			select {
			case <-time.After(stoppingRetryDelay):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		// try to get response up to a timeout
		select {
		case resp := <-replyChan:
			return resp, nil
		case <-time.After(x.askTimeout):
			return nil, ErrAskTimeout
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Start the Dispatcher
func (x *Dispatcher) Start() {
	if !x.isReceiving.CompareAndSwap(false, true) {
		return
	}
	if x.maxActorInactivity > 0 && x.passivationFrequency > 0 {
		go x.passivateLoop()
	}
}

// IsReceiving tells whether the dispatcher accepts messages
func (x *Dispatcher) IsReceiving() bool {
	return x.isReceiving.Load()
}

// ActorCount returns the number of live actors
func (x *Dispatcher) ActorCount() int {
	return x.actors.Len()
}

// Stop terminates one actor, releasing it through the props.
// Stopping an actor that is not running is a no-op.
func (x *Dispatcher) Stop(ctx context.Context, actorID string) error {
	mailbox, exists := x.actors.Get(actorID)
	if !exists {
		return nil
	}
	return x.terminate(ctx, mailbox)
}

// Shutdown stops accepting messages and terminates every live actor
func (x *Dispatcher) Shutdown(ctx context.Context) error {
	spanCtx, span := getSpanContext(ctx, "Dispatcher.Shutdown", "")
	defer span.End()
	x.isReceiving.Store(false)
	x.doneOnce.Do(func() { close(x.done) })
	var err error
	for _, mailbox := range x.actors.List() {
		err = multierr.Append(err, x.terminate(spanCtx, mailbox))
	}
	x.logger.Infof("[dispatcher] (%s) shut down", x.props.Kind())
	return err
}

// AwaitTermination blocks until the dispatcher is shut down
func (x *Dispatcher) AwaitTermination() {
	<-x.done
}

// getActor gets or creates an actor in a thread-safe manner
func (x *Dispatcher) getActor(ctx context.Context, actorID string) (*Mailbox, error) {
	return x.actors.GetOrCreate(actorID, func() (*Mailbox, error) {
		actor, handle, err := x.props.Produce(ctx, actorID)
		if err != nil {
			x.logger.Errorf("[dispatcher] failed to create actor, id=%s, kind=%s, err=%s", actorID, x.props.Kind(), err.Error())
			return nil, err
		}
		x.metrics.ActorStarted()
		x.logger.Debugf("[dispatcher] actor created, id=%s, kind=%s, handle=%s", actorID, x.props.Kind(), handle)
		return newMailbox(ctx, actorID, handle, actor, mailboxConfig{
			size:           x.mailboxSize,
			scheduler:      x.scheduler,
			newInitBackOff: x.newInitBackOff,
			logger:         x.logger,
			metrics:        x.metrics,
		}), nil
	})
}

// terminate stops the mailbox, releases the actor and forgets it.
// Only the first caller for a given mailbox does the work, and the actor is
// released before it leaves the map so a replacement is never bound early.
func (x *Dispatcher) terminate(ctx context.Context, mailbox *Mailbox) error {
	if !mailbox.Stop() {
		return nil
	}
	err := x.props.Release(ctx, mailbox.handle)
	if err != nil {
		x.logger.Errorf("[dispatcher] failed to release actor, id=%s, err=%s", mailbox.ID, err.Error())
	}
	x.actors.Delete(mailbox.ID, mailbox)
	x.metrics.ActorStopped()
	return err
}

// passivateLoop runs in a goroutine and stops inactive actors
func (x *Dispatcher) passivateLoop() {
	ticker := time.NewTicker(x.passivationFrequency)
	defer ticker.Stop()
	for {
		select {
		case <-x.done:
			return
		case <-ticker.C:
		}
		for _, mailbox := range x.actors.List() {
			idleTime := mailbox.IdleTime()
			if idleTime < x.maxActorInactivity {
				continue
			}
			x.logger.Infof("[dispatcher] actor %s idle %v seconds", mailbox.ID, idleTime.Round(time.Second).Seconds())
			_ = x.terminate(context.Background(), mailbox)
			x.logger.Infof("[dispatcher] actor passivated, id=%s", mailbox.ID)
		}
	}
}
