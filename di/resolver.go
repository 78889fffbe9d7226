package di

import (
	"context"
	"fmt"
	"reflect"

	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/actors"
	"github.com/super-flat/actorsdi/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

const tracerName = "github.com/super-flat/actorsdi/di"

// Runtime is the actor runtime the resolver plugs into
type Runtime interface {
	// AddDependencyResolver registers the resolver with the runtime
	AddDependencyResolver(resolver actors.DependencyResolver) error
	// Props returns the runtime's construction descriptor for an actor kind
	Props(kind string) (*actors.Props, error)
}

// Option configures a Resolver
type Option func(resolver *Resolver)

// WithLogger sets the resolver logger
func WithLogger(logger log.Logger) Option {
	return func(resolver *Resolver) {
		resolver.logger = logger
	}
}

// WithMetrics sets the resolver metrics
func WithMetrics(metrics Metrics) Option {
	return func(resolver *Resolver) {
		resolver.metrics = metrics
	}
}

// Resolver builds actors through a Container, giving every actor its own child
// scope, and disposes that scope when the runtime releases the actor
type Resolver struct {
	container Container
	runtime   Runtime
	catalog   *Catalog
	bindings  *Bindings
	logger    log.Logger
	metrics   Metrics
}

var _ actors.DependencyResolver = (*Resolver)(nil)

// NewResolver returns a Resolver and registers it with the runtime
func NewResolver(container Container, source TypeSource, runtime Runtime, opts ...Option) (*Resolver, error) {
	if container == nil {
		return nil, ErrNilContainer
	}
	if source == nil {
		return nil, ErrNilTypeSource
	}
	if runtime == nil {
		return nil, ErrNilRuntime
	}
	resolver := &Resolver{
		container: container,
		runtime:   runtime,
		catalog:   NewCatalog(source),
		bindings:  NewBindings(),
		logger:    log.DefaultLogger,
		metrics:   NopMetrics(),
	}
	for _, opt := range opts {
		opt(resolver)
	}
	if err := runtime.AddDependencyResolver(resolver); err != nil {
		return nil, err
	}
	return resolver, nil
}

// ActorType returns the concrete type for the logical actor name, or nil
func (x *Resolver) ActorType(name string) reflect.Type {
	return x.catalog.Resolve(name)
}

// Factory returns a factory building actors of the named kind.
// The type is looked up on every call, so an unknown name only fails when the
// factory is first used. Container errors are returned unchanged.
// Every construction must come with a handle nothing else is bound under.
func (x *Resolver) Factory(name string) actors.ActorFactory {
	return func(ctx context.Context, actorID string, handle string) (actors.Actor, error) {
		spanCtx, span := startSpan(ctx, "Resolver.Produce", handle,
			attribute.String("actor.id", actorID),
			attribute.String("actor.kind", name))
		defer span.End()
		actor, err := x.produce(spanCtx, name, actorID, handle)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			x.metrics.ProduceFailed(name)
			return nil, err
		}
		x.metrics.ActorProduced(name)
		x.metrics.LiveBindings(x.bindings.Len())
		return actor, nil
	}
}

// Release disposes the scope bound to handle.
// Releasing a handle that is not bound, or was released already, does nothing.
func (x *Resolver) Release(ctx context.Context, handle string) error {
	spanCtx, span := startSpan(ctx, "Resolver.Release", handle)
	defer span.End()
	scope, ok := x.bindings.Take(handle)
	if !ok {
		return nil
	}
	err := x.container.Dispose(spanCtx, scope)
	x.metrics.ScopeReleased(err == nil)
	x.metrics.LiveBindings(x.bindings.Len())
	if err != nil {
		span.RecordError(err)
		x.logger.Errorf("[resolver] failed to dispose scope %s of actor %s, err=%s", scope.ID(), handle, err.Error())
		return err
	}
	x.logger.Debugf("[resolver] actor %s released, scope %s disposed", handle, scope.ID())
	return nil
}

// Bound returns the scope currently bound to handle
func (x *Resolver) Bound(handle string) (Scope, bool) {
	return x.bindings.Lookup(handle)
}

// Handles returns the handles of every actor holding a scope
func (x *Resolver) Handles() []string {
	return x.bindings.Handles()
}

// Live returns the number of actors holding a scope
func (x *Resolver) Live() int {
	return x.bindings.Len()
}

// Shutdown releases every actor still bound
func (x *Resolver) Shutdown(ctx context.Context) error {
	var err error
	for _, handle := range x.bindings.Handles() {
		err = multierr.Append(err, x.Release(ctx, handle))
	}
	return err
}

// PropsFor returns the runtime props for actors of type T, keyed by the simple
// name of T
func PropsFor[T actors.Actor](resolver *Resolver) (*actors.Props, error) {
	kind := SimpleName(reflect.TypeOf((*T)(nil)).Elem())
	return resolver.runtime.Props(kind)
}

func (x *Resolver) produce(ctx context.Context, name string, actorID string, handle string) (actors.Actor, error) {
	actorType := x.ActorType(name)
	if actorType == nil {
		return nil, errors.Wrapf(ErrActorTypeNotFound, "kind %q for actor %s", name, actorID)
	}
	if existing, bound := x.bindings.Lookup(handle); bound {
		panic(fmt.Sprintf("di: handle %q is already bound to scope %s", handle, existing.ID()))
	}
	scope, err := x.container.BeginScope(ctx)
	if err != nil {
		return nil, err
	}
	instance, err := x.container.Resolve(ctx, scope, actorType)
	if err != nil {
		x.discard(ctx, scope)
		return nil, err
	}
	actor, ok := instance.(actors.Actor)
	if !ok {
		x.discard(ctx, scope)
		return nil, errors.Wrapf(ErrNotAnActor, "%s resolved for kind %q", actorType, name)
	}
	if !x.bindings.Bind(handle, scope) {
		// lost a race with a construction under the same handle
		x.discard(ctx, scope)
		panic(fmt.Sprintf("di: handle %q is already bound", handle))
	}
	x.logger.Debugf("[resolver] actor %s of kind %s bound to scope %s", handle, name, scope.ID())
	return actor, nil
}

// discard disposes a scope whose actor could not be built
func (x *Resolver) discard(ctx context.Context, scope Scope) {
	if err := x.container.Dispose(ctx, scope); err != nil {
		x.logger.Warnf("[resolver] failed to dispose scope %s after construction failure, err=%s", scope.ID(), err.Error())
	}
}

func startSpan(ctx context.Context, name string, handle string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("actor.handle", handle))
	return otel.GetTracerProvider().Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}
