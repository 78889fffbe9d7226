package actors

import (
	"sync"

	"github.com/super-flat/actorsdi/log"
)

// SystemOpt helps defines custom system options
type SystemOpt func(system *System)

// WithSystemLogger sets the system logger
func WithSystemLogger(logger log.Logger) SystemOpt {
	return func(system *System) {
		system.logger = logger
	}
}

// System is the runtime handle extensions register with
type System struct {
	name     string
	logger   log.Logger
	resolver DependencyResolver
	mtx      sync.RWMutex
}

// NewSystem returns a new System
func NewSystem(name string, opts ...SystemOpt) *System {
	system := &System{
		name:   name,
		logger: log.DefaultLogger,
	}
	for _, opt := range opts {
		opt(system)
	}
	return system
}

// Name returns the system name
func (x *System) Name() string {
	return x.name
}

// AddDependencyResolver registers the resolver used to build actors by name.
// Only one resolver can be registered.
func (x *System) AddDependencyResolver(resolver DependencyResolver) error {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	if x.resolver != nil {
		return ErrResolverAlreadyRegistered
	}
	x.resolver = resolver
	x.logger.Infof("[system] (%s) dependency resolver registered", x.name)
	return nil
}

// DependencyResolver returns the registered resolver, or nil
func (x *System) DependencyResolver() DependencyResolver {
	x.mtx.RLock()
	defer x.mtx.RUnlock()
	return x.resolver
}

// Props returns props building actors of the given kind through the registered
// resolver, and releasing them through it on termination
func (x *System) Props(kind string) (*Props, error) {
	resolver := x.DependencyResolver()
	if resolver == nil {
		return nil, ErrNoDependencyResolver
	}
	return NewProps(kind, resolver.Factory(kind)).WithReleaser(resolver), nil
}

// NewDispatcher returns a dispatcher for the given props that logs through the system logger
// unless a logger option overrides it
func (x *System) NewDispatcher(props *Props, opts ...DispatcherOpt) *Dispatcher {
	return NewActorDispatcher(props, append([]DispatcherOpt{WithLogger(x.logger)}, opts...)...)
}
