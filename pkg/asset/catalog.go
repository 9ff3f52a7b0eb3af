// Package asset implements the asset catalog contract (spec.md §9): a
// name-keyed registry addressed through opaque "$.name" handles rather than
// owning pointers, so a dependent that resolves a handle on every
// dereference observes replacement without being told about it — grounded
// in the original engine's AssetGroup ("$" root, load_asset,
// comp::get<T>("$.name")) per original_source/test/test_assets.cpp.
package asset

import (
	"strings"
	"sync"

	"github.com/df07/lightmetrica-go/pkg/lmerr"
)

// Root is the well-known catalog handle passed explicitly into the engine
// rather than kept as process-global state.
const Root = "$"

// Handle is an opaque reference to a catalog entry, resolved by name on
// every dereference rather than cached by the holder.
type Handle string

// NewHandle builds a handle addressing name under the catalog root, e.g.
// "$.materials.wall".
func NewHandle(name string) Handle {
	return Handle(Root + "." + name)
}

func (h Handle) name() string {
	s := string(h)
	s = strings.TrimPrefix(s, Root)
	return strings.TrimPrefix(s, ".")
}

// Catalog is an in-memory, name-keyed asset registry. Replacing an entry by
// name is visible to every existing Handle referencing it on their next
// Resolve call, matching AssetGroup's "load_asset with same name replaces"
// semantics.
type Catalog struct {
	mu      sync.RWMutex
	entries map[string]any
}

// New creates an empty catalog.
func New() *Catalog {
	return &Catalog{entries: make(map[string]any)}
}

// Put registers or replaces the asset stored at name, returning its handle.
func (c *Catalog) Put(name string, value any) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = value
	return NewHandle(name)
}

// Get resolves h to its currently registered value, re-reading the catalog
// on every call so replacements are observed immediately.
func Get[T any](c *Catalog, h Handle) (T, bool) {
	var zero T
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[h.name()]
	if !ok {
		return zero, false
	}
	typed, ok := v.(T)
	return typed, ok
}

// MustGet resolves h or returns a NotFound lmerr.Error naming the missing asset.
func MustGet[T any](c *Catalog, h Handle) (T, error) {
	v, ok := Get[T](c, h)
	if !ok {
		return v, lmerr.New(lmerr.NotFound, "asset not found: "+string(h))
	}
	return v, nil
}

// Has reports whether name is currently registered.
func (c *Catalog) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[name]
	return ok
}

// Remove deletes an entry by name.
func (c *Catalog) Remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, name)
}
