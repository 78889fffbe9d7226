package di

import (
	"reflect"
	"sync"
)

// TypeRegistry is a TypeSource hosts fill in by hand.
// It may grow at any time.
type TypeRegistry struct {
	mtx    sync.RWMutex
	byName map[string]reflect.Type
	types  []reflect.Type
}

var _ TypeSource = (*TypeRegistry)(nil)

// NewTypeRegistry returns a registry holding the given types
func NewTypeRegistry(types ...reflect.Type) *TypeRegistry {
	registry := &TypeRegistry{byName: make(map[string]reflect.Type)}
	registry.Register(types...)
	return registry
}

// Register adds types; a type registered twice keeps its first position
func (x *TypeRegistry) Register(types ...reflect.Type) {
	x.mtx.Lock()
	defer x.mtx.Unlock()
	for _, t := range types {
		name := QualifiedName(t)
		if _, exists := x.byName[name]; exists {
			continue
		}
		x.byName[name] = t
		x.types = append(x.types, t)
	}
}

// Lookup implements TypeSource
func (x *TypeRegistry) Lookup(qualifiedName string) (reflect.Type, bool) {
	x.mtx.RLock()
	defer x.mtx.RUnlock()
	t, ok := x.byName[qualifiedName]
	return t, ok
}

// Types implements TypeSource
func (x *TypeRegistry) Types() []reflect.Type {
	x.mtx.RLock()
	defer x.mtx.RUnlock()
	out := make([]reflect.Type, len(x.types))
	copy(out, x.types)
	return out
}
