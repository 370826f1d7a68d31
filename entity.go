package gdecs

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/cespare/xxhash/v2"
)

// Entity mirrors one engine scene node inside the ECS. It holds the node's
// handle, a cached name, the node's scene-tree groups, and all components
// attached to the mirrored node.
//
// Entities are spawned when the engine reports a node entering the tree and
// despawned when the node leaves it. The engine keeps ownership of the node
// itself; the entity only tracks it.
type Entity struct {
	// handle is the weak reference to the mirrored node
	handle NodeHandle

	// name is the node name, cached at spawn and refreshed on rename
	name string

	// groupKeys holds xxhash-interned group names for cheap membership
	// checks during scheduling; groupNames keeps the originals for
	// debugging and listing.
	groupKeys  map[uint64]struct{}
	groupNames []string

	// mask tracks which components are present (256 bits)
	mask Bitmask

	// components stores component pointers indexed by ComponentID
	components [MaxComponents]unsafe.Pointer

	// mu protects mask, components, name and groups
	mu sync.RWMutex

	// manager owns this entity
	manager *Manager

	// despawned indicates the mirrored node left the tree
	despawned atomic.Bool
}

// groupKey interns a scene-tree group name to a 64-bit key.
func groupKey(name string) uint64 {
	return xxhash.Sum64String(name)
}

// Handle returns the handle of the mirrored node.
func (e *Entity) Handle() NodeHandle {
	return e.handle
}

// Name returns the cached node name.
func (e *Entity) Name() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.name
}

// Manager returns the manager that owns this entity.
func (e *Entity) Manager() *Manager {
	return e.manager
}

// InGroup reports whether the mirrored node belongs to the named scene-tree
// group.
func (e *Entity) InGroup(name string) bool {
	key := groupKey(name)
	e.mu.RLock()
	_, ok := e.groupKeys[key]
	e.mu.RUnlock()
	return ok
}

// Groups returns a copy of the mirrored node's group names.
func (e *Entity) Groups() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]string, len(e.groupNames))
	copy(out, e.groupNames)
	return out
}

// Despawned returns true once the mirrored node has left the scene tree.
func (e *Entity) Despawned() bool {
	return e.despawned.Load()
}

// Node resolves the entity's handle to the live engine node. Must only be
// called from systems holding the MainThread marker.
func (e *Entity) Node() (Node, bool) {
	return e.handle.Resolve(e.manager.tree)
}

// Mask returns a copy of the entity's component bitmask. Primarily for
// debugging and testing.
func (e *Entity) Mask() Bitmask {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.mask
}

// String returns a string representation of the entity for debugging.
func (e *Entity) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()

	comps := ""
	for id := range ComponentID(MaxComponents) {
		if e.mask.Has(id) {
			if comps != "" {
				comps += ", "
			}
			comps += e.manager.registry.name(id)
		}
	}

	return fmt.Sprintf("Entity{Name: %s, Handle: %s, Components: [%s]}", e.name, e.handle, comps)
}

// setName refreshes the cached node name.
func (e *Entity) setName(name string) {
	e.mu.Lock()
	e.name = name
	e.mu.Unlock()
}

// setGroups replaces the cached group set.
func (e *Entity) setGroups(names []string) {
	keys := make(map[uint64]struct{}, len(names))
	for _, n := range names {
		keys[groupKey(n)] = struct{}{}
	}
	e.mu.Lock()
	e.groupKeys = keys
	e.groupNames = names
	e.mu.Unlock()
}

// canRun checks if the entity passes the bitmask filter for a system.
func (e *Entity) canRun(meta *SystemMeta) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if !e.mask.ContainsAll(meta.RequireMask) {
		return false
	}
	if e.mask.ContainsAny(meta.ExcludeMask) {
		return false
	}
	return true
}

// getComponentUnsafe retrieves a component by ID without locking.
// Only safe when the entity lock is held or within scheduler execution.
func (e *Entity) getComponentUnsafe(id ComponentID) unsafe.Pointer {
	return e.components[id]
}

// free clears all component data, calling Detach hooks. Called by the
// manager when the mirrored node leaves the tree.
func (e *Entity) free() {
	if e.despawned.Swap(true) {
		return // Already despawned
	}

	// Collect components needing Detach while the entity is still intact.
	var toDetach []Detachable

	e.mu.RLock()
	for id := range ComponentID(MaxComponents) {
		ptr := e.components[id]
		if ptr == nil {
			continue
		}
		t := e.manager.registry.typeOf(id)
		if t == nil {
			continue
		}
		if d, ok := reflect.NewAt(t, ptr).Interface().(Detachable); ok {
			toDetach = append(toDetach, d)
		}
	}
	e.mu.RUnlock()

	// Detach hooks run outside the entity lock; the entity is still fully
	// readable for them.
	for _, d := range toDetach {
		d.Detach(e)
	}

	e.mu.Lock()
	for id := range ComponentID(MaxComponents) {
		e.components[id] = nil
	}
	e.mask = Bitmask{}
	e.mu.Unlock()
}
