package container

import (
	"context"
	"reflect"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/super-flat/actorsdi/di"
	"github.com/super-flat/actorsdi/log"
	"go.uber.org/dig"
)

var (
	// ErrNotAConstructor is returned when a registration is not a function
	ErrNotAConstructor = errors.New("constructor must be a function")
	// ErrScopeDisposed is returned when a scope is used after Dispose
	ErrScopeDisposed = errors.New("scope already disposed")
	// ErrForeignScope is returned for a scope this container did not open
	ErrForeignScope = errors.New("scope was not opened by this container")
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	outType   = reflect.TypeOf(dig.Out{})
)

// Option configures a Container
type Option func(container *Container)

// WithLogger sets the container logger
func WithLogger(logger log.Logger) Option {
	return func(container *Container) {
		container.logger = logger
	}
}

// WithDigOptions passes options to every dig container created
func WithDigOptions(opts ...dig.Option) Option {
	return func(container *Container) {
		container.digOpts = append(container.digOpts, opts...)
	}
}

// Container is a dig backed IoC container with per-actor child scopes
type Container struct {
	// dig containers are not safe for concurrent use
	root    *dig.Container
	rootMtx sync.Mutex
	digOpts []dig.Option
	logger  log.Logger

	mtx         sync.RWMutex
	rootResults []reflect.Type
	scoped      []reflect.Value
	actorTypes  *di.TypeRegistry
}

var (
	_ di.Container  = (*Container)(nil)
	_ di.TypeSource = (*Container)(nil)
)

// New returns an empty Container
func New(opts ...Option) *Container {
	container := &Container{
		logger:     log.DefaultLogger,
		actorTypes: di.NewTypeRegistry(),
	}
	for _, opt := range opts {
		opt(container)
	}
	container.root = dig.New(container.digOpts...)
	return container
}

// Provide registers a root constructor; its results are shared by every scope.
// Constructors returning dig.Out structs are not supported, and values provided
// with dig.Name or dig.Group are only visible to Invoke, not to scopes.
func (x *Container) Provide(constructor any, opts ...dig.ProvideOption) error {
	results, err := resultTypes(constructor)
	if err != nil {
		return err
	}
	for _, t := range results {
		if embedsOut(t) {
			return errors.Errorf("root constructor result %s: dig.Out results are not supported", t)
		}
	}
	x.rootMtx.Lock()
	err = x.root.Provide(constructor, opts...)
	x.rootMtx.Unlock()
	if err != nil {
		return err
	}
	x.mtx.Lock()
	for _, t := range results {
		if !containsType(x.rootResults, t) {
			x.rootResults = append(x.rootResults, t)
		}
	}
	x.mtx.Unlock()
	return nil
}

// ProvideScoped registers a constructor that runs again inside every scope
func (x *Container) ProvideScoped(constructor any) error {
	if _, err := resultTypes(constructor); err != nil {
		return err
	}
	x.mtx.Lock()
	x.scoped = append(x.scoped, reflect.ValueOf(constructor))
	x.mtx.Unlock()
	return nil
}

// ProvideActor registers a scoped constructor whose results are actor types
func (x *Container) ProvideActor(constructor any) error {
	results, err := resultTypes(constructor)
	if err != nil {
		return err
	}
	if err := x.ProvideScoped(constructor); err != nil {
		return err
	}
	x.actorTypes.Register(results...)
	return nil
}

// Invoke runs fn against the root container
func (x *Container) Invoke(fn any) error {
	x.rootMtx.Lock()
	defer x.rootMtx.Unlock()
	return x.root.Invoke(fn)
}

// Lookup implements di.TypeSource over actor registrations
func (x *Container) Lookup(qualifiedName string) (reflect.Type, bool) {
	return x.actorTypes.Lookup(qualifiedName)
}

// Types implements di.TypeSource over actor registrations
func (x *Container) Types() []reflect.Type {
	return x.actorTypes.Types()
}

// BeginScope opens a child scope: root results are bridged in from the root,
// scoped constructors are provided fresh
func (x *Container) BeginScope(_ context.Context) (di.Scope, error) {
	s := &scope{id: uuid.NewString(), dig: dig.New(x.digOpts...)}
	x.mtx.RLock()
	rootResults := append([]reflect.Type(nil), x.rootResults...)
	scoped := append([]reflect.Value(nil), x.scoped...)
	x.mtx.RUnlock()
	for _, t := range rootResults {
		if err := s.dig.Provide(x.bridge(t).Interface()); err != nil {
			return nil, err
		}
	}
	for _, constructor := range scoped {
		if err := s.dig.Provide(s.track(constructor).Interface()); err != nil {
			return nil, err
		}
	}
	x.logger.Debugf("[container] scope %s opened", s.id)
	return s, nil
}

// Resolve returns an instance of t from the scope
func (x *Container) Resolve(_ context.Context, sc di.Scope, t reflect.Type) (any, error) {
	s, err := x.own(sc)
	if err != nil {
		return nil, err
	}
	if s.disposed.Load() {
		return nil, ErrScopeDisposed
	}
	var result reflect.Value
	receiver := reflect.MakeFunc(
		reflect.FuncOf([]reflect.Type{t}, nil, false),
		func(args []reflect.Value) []reflect.Value {
			result = args[0]
			return nil
		},
	)
	s.invokeMtx.Lock()
	err = s.dig.Invoke(receiver.Interface())
	s.invokeMtx.Unlock()
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

// Dispose closes everything the scope built, newest first
func (x *Container) Dispose(_ context.Context, sc di.Scope) error {
	s, err := x.own(sc)
	if err != nil {
		return err
	}
	if err := s.dispose(); err != nil {
		return err
	}
	x.logger.Debugf("[container] scope %s disposed", s.id)
	return nil
}

func (x *Container) own(sc di.Scope) (*scope, error) {
	s, ok := sc.(*scope)
	if !ok {
		return nil, ErrForeignScope
	}
	return s, nil
}

// bridge returns a constructor func() (T, error) that fetches T from the root
func (x *Container) bridge(t reflect.Type) reflect.Value {
	fnType := reflect.FuncOf(nil, []reflect.Type{t, errorType}, false)
	return reflect.MakeFunc(fnType, func([]reflect.Value) []reflect.Value {
		var value reflect.Value
		receiver := reflect.MakeFunc(
			reflect.FuncOf([]reflect.Type{t}, nil, false),
			func(args []reflect.Value) []reflect.Value {
				value = args[0]
				return nil
			},
		)
		if err := x.Invoke(receiver.Interface()); err != nil {
			return []reflect.Value{reflect.Zero(t), reflect.ValueOf(&err).Elem()}
		}
		return []reflect.Value{value, reflect.Zero(errorType)}
	})
}

// resultTypes returns the non-error results of a constructor
func resultTypes(constructor any) ([]reflect.Type, error) {
	fnType := reflect.TypeOf(constructor)
	if fnType == nil || fnType.Kind() != reflect.Func {
		return nil, errors.Wrapf(ErrNotAConstructor, "got %T", constructor)
	}
	results := make([]reflect.Type, 0, fnType.NumOut())
	for i := 0; i < fnType.NumOut(); i++ {
		if out := fnType.Out(i); out != errorType {
			results = append(results, out)
		}
	}
	if len(results) == 0 {
		return nil, errors.Wrapf(ErrNotAConstructor, "%s returns nothing to provide", fnType)
	}
	return results, nil
}

func containsType(types []reflect.Type, t reflect.Type) bool {
	for _, known := range types {
		if known == t {
			return true
		}
	}
	return false
}

// embedsOut tells whether t is a dig result object
func embedsOut(t reflect.Type) bool {
	if t.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < t.NumField(); i++ {
		if field := t.Field(i); field.Anonymous && field.Type == outType {
			return true
		}
	}
	return false
}
