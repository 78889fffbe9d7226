package actors

import (
	"context"
	"reflect"

	"google.golang.org/protobuf/proto"
)

// Actor knows how to receive and process messages
type Actor interface {
	// Init runs once before the first message is processed
	Init(ctx context.Context) error
	// Receive processes a single command and optionally replies on replyTo
	Receive(ctx context.Context, command proto.Message, replyTo chan<- proto.Message) error
}

// ActorFactory builds the actor instance for the given actor ID.
// handle identifies this one construction and is what the actor is released by.
type ActorFactory func(ctx context.Context, actorID string, handle string) (Actor, error)

// Releaser is told when the runtime has terminated an actor it built
type Releaser interface {
	Release(ctx context.Context, handle string) error
}

// DependencyResolver is the extension point used by the runtime to build actors
// through an external container instead of constructing them directly
type DependencyResolver interface {
	Releaser
	// ActorType returns the concrete type registered for the logical actor name,
	// or nil when nothing matches
	ActorType(name string) reflect.Type
	// Factory returns a factory building actors of the named kind
	Factory(name string) ActorFactory
}
