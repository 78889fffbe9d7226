package actor

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/container"
	"github.com/super-flat/actorsdi/log"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// GreeterConfig is shared by every greeter
type GreeterConfig struct {
	Word string
}

// Session lives as long as one greeter and counts what it answered
type Session struct {
	logger   log.Logger
	answered atomic.Int64
	closed   atomic.Bool
}

// NewSession returns a Session
func NewSession(logger log.Logger) *Session {
	return &Session{logger: logger}
}

// Answered returns how many greetings went out in this session
func (s *Session) Answered() int64 {
	return s.answered.Load()
}

// Closed tells whether the session was closed
func (s *Session) Closed() bool {
	return s.closed.Load()
}

// Close ends the session
func (s *Session) Close() error {
	if s.closed.CompareAndSwap(false, true) {
		s.logger.Debugf("[session] closed after %d greetings", s.answered.Load())
	}
	return nil
}

// Greeter answers names with a greeting
type Greeter struct {
	config  *GreeterConfig
	session *Session
}

// NewGreeter returns a Greeter
func NewGreeter(config *GreeterConfig, session *Session) *Greeter {
	return &Greeter{config: config, session: session}
}

// Session returns the session the greeter was built with
func (x *Greeter) Session() *Session {
	return x.session
}

func (x *Greeter) Init(context.Context) error {
	if x.config.Word == "" {
		return errors.New("greeting word is empty")
	}
	return nil
}

func (x *Greeter) Receive(_ context.Context, command proto.Message, replyTo chan<- proto.Message) error {
	name, ok := command.(*wrapperspb.StringValue)
	if !ok {
		return errors.Errorf("unhandled command %T", command)
	}
	x.session.answered.Add(1)
	replyTo <- wrapperspb.String(fmt.Sprintf("%s, %s", x.config.Word, name.GetValue()))
	return nil
}

// Register adds the greeter and its dependencies to the container
func Register(c *container.Container, config GreeterConfig, logger log.Logger) error {
	if err := c.Provide(func() *GreeterConfig { return &config }); err != nil {
		return err
	}
	if err := c.Provide(func() log.Logger { return logger }); err != nil {
		return err
	}
	if err := c.ProvideScoped(NewSession); err != nil {
		return err
	}
	return c.ProvideActor(NewGreeter)
}
