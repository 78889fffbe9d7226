package di

import (
	"reflect"
	"strings"
	"sync"
)

// Catalog maps logical actor names to concrete types and remembers the answer.
// Names are cached case-insensitively. A name that did not resolve is remembered
// as unresolved too: types registered after the first lookup of a name are not
// seen for that name in any spelling.
type Catalog struct {
	source TypeSource
	cache  sync.Map // lower-cased name -> reflect.Type (nil when unresolved)
}

// NewCatalog returns a Catalog reading from source
func NewCatalog(source TypeSource) *Catalog {
	return &Catalog{source: source}
}

// Resolve returns the type for name, or nil.
// name is tried first as a fully qualified type name, then matched case-insensitively
// against the simple names of the registered types; the first match wins.
func (x *Catalog) Resolve(name string) reflect.Type {
	key := strings.ToLower(name)
	if cached, ok := x.cache.Load(key); ok {
		return asType(cached)
	}
	// concurrent first lookups compute the same value, the stored one wins
	actual, _ := x.cache.LoadOrStore(key, x.scan(name))
	return asType(actual)
}

// Len returns the number of cached names
func (x *Catalog) Len() int {
	count := 0
	x.cache.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

func (x *Catalog) scan(name string) reflect.Type {
	if t, ok := x.source.Lookup(name); ok {
		return t
	}
	for _, t := range x.source.Types() {
		if strings.EqualFold(SimpleName(t), name) {
			return t
		}
	}
	return nil
}

// asType unwraps a cached value, nil for a cached miss
func asType(value any) reflect.Type {
	t, _ := value.(reflect.Type)
	return t
}
