package di

import (
	"context"
	"reflect"
)

// Scope is an isolated resolution context of a Container.
// Everything resolved inside it is cleaned up together when it is disposed.
type Scope interface {
	ID() string
}

// Container is the IoC container the resolver builds actors with
type Container interface {
	// BeginScope opens a new child scope
	BeginScope(ctx context.Context) (Scope, error)
	// Resolve returns an instance of t resolved inside scope
	Resolve(ctx context.Context, scope Scope, t reflect.Type) (any, error)
	// Dispose releases everything the scope owns
	Dispose(ctx context.Context, scope Scope) error
}

// TypeSource enumerates the types actors can be built from
type TypeSource interface {
	// Lookup finds a type by its fully qualified name, e.g. "github.com/acme/app/actors.Greeter"
	Lookup(qualifiedName string) (reflect.Type, bool)
	// Types returns every registered type, in registration order
	Types() []reflect.Type
}
