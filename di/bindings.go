package di

import (
	"sync"
	"sync/atomic"
)

// Bindings associates live actors, by the handle the runtime built them under,
// with the container scope created for them
type Bindings struct {
	scopes sync.Map // string -> Scope
	live   atomic.Int64
}

// NewBindings returns empty Bindings
func NewBindings() *Bindings {
	return &Bindings{}
}

// Bind records that handle owns scope.
// It returns false, leaving the existing binding in place, when handle is already bound.
func (x *Bindings) Bind(handle string, scope Scope) bool {
	if _, loaded := x.scopes.LoadOrStore(handle, scope); loaded {
		return false
	}
	x.live.Add(1)
	return true
}

// Take removes and returns the scope bound to handle.
// An unknown handle yields (nil, false).
func (x *Bindings) Take(handle string) (Scope, bool) {
	value, loaded := x.scopes.LoadAndDelete(handle)
	if !loaded {
		return nil, false
	}
	x.live.Add(-1)
	return value.(Scope), true
}

// Lookup returns the scope bound to handle without removing it
func (x *Bindings) Lookup(handle string) (Scope, bool) {
	value, ok := x.scopes.Load(handle)
	if !ok {
		return nil, false
	}
	return value.(Scope), true
}

// Len returns the number of live bindings
func (x *Bindings) Len() int {
	return int(x.live.Load())
}

// Handles returns a snapshot of the bound handles
func (x *Bindings) Handles() []string {
	var handles []string
	x.scopes.Range(func(key, _ any) bool {
		handles = append(handles, key.(string))
		return true
	})
	return handles
}
