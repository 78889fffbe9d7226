package di

import "github.com/pkg/errors"

var (
	// ErrActorTypeNotFound is returned by a factory whose logical name matches no type
	ErrActorTypeNotFound = errors.New("actor type not found")
	// ErrNotAnActor is returned when the container resolved something that is not an actor
	ErrNotAnActor = errors.New("resolved instance does not implement actors.Actor")
	// ErrNilContainer is returned when no container is given to the resolver
	ErrNilContainer = errors.New("container is required")
	// ErrNilTypeSource is returned when no type source is given to the resolver
	ErrNilTypeSource = errors.New("type source is required")
	// ErrNilRuntime is returned when no runtime is given to the resolver
	ErrNilRuntime = errors.New("runtime is required")
)
