package actors

import "github.com/pkg/errors"

var (
	// ErrNotReady is returned when a dispatcher is not receiving messages
	ErrNotReady = errors.New("not ready to process messages")
	// ErrAskTimeout is returned when an actor did not reply in time
	ErrAskTimeout = errors.New("command processing timeout")
	// ErrNoDependencyResolver is returned when props are requested by name and no resolver is registered
	ErrNoDependencyResolver = errors.New("no dependency resolver registered")
	// ErrResolverAlreadyRegistered is returned on a second resolver registration
	ErrResolverAlreadyRegistered = errors.New("dependency resolver already registered")
)
