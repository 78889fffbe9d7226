package container

import (
	"io"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/dig"
	"go.uber.org/multierr"
)

// scope is one child container and the closers it produced
type scope struct {
	id        string
	dig       *dig.Container
	invokeMtx sync.Mutex
	mtx       sync.Mutex
	closers   []io.Closer
	disposed  atomic.Bool
}

// ID implements di.Scope
func (s *scope) ID() string {
	return s.id
}

// track wraps a constructor so every io.Closer it returns is remembered
func (s *scope) track(constructor reflect.Value) reflect.Value {
	fnType := constructor.Type()
	return reflect.MakeFunc(fnType, func(args []reflect.Value) []reflect.Value {
		var results []reflect.Value
		if fnType.IsVariadic() {
			results = constructor.CallSlice(args)
		} else {
			results = constructor.Call(args)
		}
		if failed(results) {
			return results
		}
		for _, result := range results {
			if closer, ok := asCloser(result); ok {
				s.mtx.Lock()
				s.closers = append(s.closers, closer)
				s.mtx.Unlock()
			}
		}
		return results
	})
}

// dispose closes the tracked closers newest first, once
func (s *scope) dispose() error {
	if !s.disposed.CompareAndSwap(false, true) {
		return ErrScopeDisposed
	}
	s.mtx.Lock()
	closers := s.closers
	s.closers = nil
	s.mtx.Unlock()
	var err error
	for i := len(closers) - 1; i >= 0; i-- {
		err = multierr.Append(err, closers[i].Close())
	}
	return err
}

// failed tells whether a constructor returned a non-nil error
func failed(results []reflect.Value) bool {
	for _, result := range results {
		if result.Type() == errorType && !result.IsNil() {
			return true
		}
	}
	return false
}

func asCloser(value reflect.Value) (io.Closer, bool) {
	if value.Type() == errorType {
		return nil, false
	}
	switch value.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		if value.IsNil() {
			return nil, false
		}
	}
	closer, ok := value.Interface().(io.Closer)
	return closer, ok
}
