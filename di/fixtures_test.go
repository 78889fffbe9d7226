package di

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/actors"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Greeter replies "Hello, <name>" using its greeting
type Greeter struct {
	greeting *Greeting
}

func (g *Greeter) Init(context.Context) error { return nil }

func (g *Greeter) Receive(_ context.Context, command proto.Message, replyTo chan<- proto.Message) error {
	name, ok := command.(*wrapperspb.StringValue)
	if !ok {
		return errors.Errorf("unhandled command %T", command)
	}
	replyTo <- wrapperspb.String(fmt.Sprintf("%s, %s", g.greeting.word, name.GetValue()))
	return nil
}

// Greeting is the scoped dependency of a Greeter
type Greeting struct {
	word   string
	closed *atomic.Int32
}

func (g *Greeting) Close() error {
	g.closed.Add(1)
	return nil
}

// notAnActor can be registered but not run
type notAnActor struct{}

// testScope is a Scope for mocked containers
type testScope string

func (s testScope) ID() string { return string(s) }

// fakeRuntime records the resolver registration
type fakeRuntime struct {
	resolver    actors.DependencyResolver
	registerErr error
	registered  int
}

func (r *fakeRuntime) AddDependencyResolver(resolver actors.DependencyResolver) error {
	if r.registerErr != nil {
		return r.registerErr
	}
	r.registered++
	r.resolver = resolver
	return nil
}

func (r *fakeRuntime) Props(kind string) (*actors.Props, error) {
	return actors.NewProps(kind, r.resolver.Factory(kind)).WithReleaser(r.resolver), nil
}
