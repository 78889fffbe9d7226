package actors

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/log"
	"google.golang.org/protobuf/proto"
)

// actorInitMaxRetries bounds the default actor initialization backoff
const actorInitMaxRetries = 10

// CommandWrapper wraps the actual command sent to the actor and
// the context
type CommandWrapper struct {
	CommandCtx context.Context
	Command    proto.Message
	ReplyChan  chan<- proto.Message
}

// mailboxConfig is what a dispatcher hands to every mailbox it creates
type mailboxConfig struct {
	size           int
	scheduler      Scheduler
	newInitBackOff func() backoff.BackOff
	logger         log.Logger
	metrics        Metrics
}

// Mailbox queues commands for one actor and processes them one at a time.
// Processing runs as scheduled drains: every Send schedules one unless a drain is
// already pending, and a drain empties the queue before returning.
type Mailbox struct {
	ID                string
	handle            string
	queue             chan *CommandWrapper
	msgCount          atomic.Int64
	lastUpdated       time.Time
	acceptingMessages bool
	stopped           atomic.Bool
	mtx               sync.RWMutex
	actor             Actor

	bootCtx     context.Context
	scheduled   atomic.Bool
	initialized bool
	initFailed  bool

	config mailboxConfig
}

// newMailbox returns a mailbox delivering to the given actor
func newMailbox(ctx context.Context, ID string, handle string, actor Actor, config mailboxConfig) *Mailbox {
	return &Mailbox{
		ID:                ID,
		handle:            handle,
		queue:             make(chan *CommandWrapper, config.size),
		lastUpdated:       time.Now(),
		acceptingMessages: true,
		actor:             actor,
		bootCtx:           context.WithoutCancel(ctx),
		config:            config,
	}
}

// Handle returns the handle the actor behind the mailbox was built under
func (x *Mailbox) Handle() string {
	return x.handle
}

// Actor returns the actor instance behind the mailbox
func (x *Mailbox) Actor() Actor {
	return x.actor
}

// IdleTime returns how long the actor has been idle as a time.Duration
func (x *Mailbox) IdleTime() time.Duration {
	x.mtx.RLock()
	defer x.mtx.RUnlock()
	return time.Since(x.lastUpdated)
}

// MessageCount returns how many commands the actor processed
func (x *Mailbox) MessageCount() int64 {
	return x.msgCount.Load()
}

// Send sends a message to the actors' mailbox to be processed and
// supplies a reply channel for responses to the sender
func (x *Mailbox) Send(ctx context.Context, msg proto.Message) (success bool, replyChan <-chan proto.Message) {
	// get the observability span
	spanCtx, span := getSpanContext(ctx, "Actor.Mailbox.Send", x.ID)
	defer span.End()
	// acquire a lock
	x.mtx.Lock()
	if !x.acceptingMessages {
		x.mtx.Unlock()
		return false, nil
	}
	// set update time for activity
	x.lastUpdated = time.Now()
	// create the reply chan
	replyTo := make(chan proto.Message, 1)
	x.queue <- &CommandWrapper{
		CommandCtx: spanCtx,
		Command:    msg,
		ReplyChan:  replyTo,
	}
	x.mtx.Unlock()
	// make sure somebody drains the queue
	x.schedule()
	return true, replyTo
}

// Stop stops accepting messages and waits for the queue to drain.
// It returns false when the mailbox was already stopped.
func (x *Mailbox) Stop() bool {
	if !x.stopped.CompareAndSwap(false, true) {
		return false
	}
	// stop future messages
	x.mtx.Lock()
	x.acceptingMessages = false
	x.mtx.Unlock()
	// wait for no more messages
	for len(x.queue) != 0 || x.scheduled.Load() {
		time.Sleep(time.Millisecond)
	}
	x.config.logger.Debugf("[mailbox] (%s) shut down after %d messages", x.ID, x.MessageCount())
	return true
}

// schedule hands a drain to the scheduler unless one is pending already
func (x *Mailbox) schedule() {
	if x.scheduled.CompareAndSwap(false, true) {
		x.config.scheduler.Schedule(x.drain)
	}
}

// drain processes queued commands until the queue is empty
func (x *Mailbox) drain() {
	if !x.initialized {
		x.init()
	}
	for {
		select {
		case received := <-x.queue:
			x.process(received)
		default:
			x.scheduled.Store(false)
			// a command may have been queued after the empty check
			if len(x.queue) == 0 || !x.scheduled.CompareAndSwap(false, true) {
				return
			}
		}
	}
}

// process lets the actor handle one command
func (x *Mailbox) process(received *CommandWrapper) {
	if x.initFailed {
		x.config.logger.Warnf("[mailbox] (%s) dropping message, actor failed to initialize", x.ID)
		x.config.metrics.MessageProcessed(false)
		return
	}
	err := x.receive(received)
	if err != nil {
		x.config.logger.Errorf("[mailbox] (%s) error handling message, messageType=%s, err=%s",
			x.ID, received.Command.ProtoReflect().Descriptor().FullName(), err.Error())
	}
	x.config.metrics.MessageProcessed(err == nil)
	x.msgCount.Add(1)
}

// receive calls the actor, turning a panic into an error
func (x *Mailbox) receive(received *CommandWrapper) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("actor panicked: %v", r)
		}
	}()
	return x.actor.Receive(received.CommandCtx, received.Command, received.ReplyChan)
}

// init runs the actor initialization.
// An exponential backoff strategy is applied for some number of tries in case of error.
// When the tries limit is reached the error is logged and queued messages are dropped.
func (x *Mailbox) init() {
	// get the observability span
	spanCtx, span := getSpanContext(x.bootCtx, "Actor.Mailbox.Init", x.ID)
	defer span.End()
	x.initialized = true
	err := backoff.Retry(func() error {
		return x.actor.Init(spanCtx)
	}, x.config.newInitBackOff())
	if err != nil {
		x.initFailed = true
		x.config.logger.Errorf("[mailbox] (%s) failed to initialize actor, err=%s", x.ID, err.Error())
		return
	}
	x.config.logger.Debugf("[mailbox] (%s) actor initialized", x.ID)
}

// defaultInitBackOff retries with exponential delays up to actorInitMaxRetries times
func defaultInitBackOff() backoff.BackOff {
	return backoff.WithMaxRetries(backoff.NewExponentialBackOff(), actorInitMaxRetries)
}
