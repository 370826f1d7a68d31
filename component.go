package gdecs

import (
	"reflect"
	"sync"
	"sync/atomic"
	"unsafe"
)

// ComponentID is a unique identifier for a component type within one Manager.
// Valid IDs range from 0 to 255.
type ComponentID uint8

// MaxComponents is the maximum number of component types supported.
const MaxComponents = 255

// componentRegistry manages component type registration with lock-free reads.
// Component IDs are assigned sequentially per Manager; lookups are the hot
// path and go through a sync.Map, registration is rare and races are resolved
// with LoadOrStore.
type componentRegistry struct {
	// types maps reflect.Type to ComponentID
	types sync.Map

	// names and typesArr store component metadata indexed by ComponentID.
	// Written once during registration, read-only afterwards.
	names    [MaxComponents]string
	typesArr [MaxComponents]reflect.Type

	// nextID is the next available component ID
	nextID atomic.Uint32

	// arrMu protects writes to names and typesArr during registration
	arrMu sync.RWMutex
}

func newComponentRegistry() *componentRegistry {
	return &componentRegistry{}
}

// register registers a component type and returns its ID. Registering an
// already-known type returns the existing ID.
func (r *componentRegistry) register(t reflect.Type) ComponentID {
	if id, ok := r.types.Load(t); ok {
		return id.(ComponentID)
	}

	newID := ComponentID(r.nextID.Add(1) - 1)
	if newID >= MaxComponents {
		panic("gdecs: component limit exceeded")
	}

	actual, loaded := r.types.LoadOrStore(t, newID)
	if loaded {
		// Another goroutine registered this type first; the ID we
		// allocated is wasted, which is fine for a rare race.
		return actual.(ComponentID)
	}

	r.arrMu.Lock()
	r.names[newID] = t.Name()
	r.typesArr[newID] = t
	r.arrMu.Unlock()

	return newID
}

// getID returns the ID for an already-registered component type.
func (r *componentRegistry) getID(t reflect.Type) (ComponentID, bool) {
	if id, ok := r.types.Load(t); ok {
		return id.(ComponentID), true
	}
	return 0, false
}

// name returns the name of the component type with the given ID.
func (r *componentRegistry) name(id ComponentID) string {
	r.arrMu.RLock()
	defer r.arrMu.RUnlock()
	return r.names[id]
}

// typeOf returns the reflect.Type of the component with the given ID.
func (r *componentRegistry) typeOf(id ComponentID) reflect.Type {
	r.arrMu.RLock()
	defer r.arrMu.RUnlock()
	return r.typesArr[id]
}

// typeOf returns the reflect.Type of T.
func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Attachable is implemented by components that need initialization logic when
// attached to an entity.
type Attachable interface {
	Attach(e *Entity)
}

// Detachable is implemented by components that need cleanup logic when
// detached from an entity or when the entity despawns.
type Detachable interface {
	Detach(e *Entity)
}

// Add attaches a component to the entity. If a component of this type already
// exists it is replaced, with Detach called on the old value if implemented.
//
// Safe to call from handlers and systems; those run serialized with respect
// to the entity's world state.
func Add[T any](e *Entity, component *T) {
	if e == nil || component == nil {
		return
	}

	id := e.manager.registry.register(typeOf[T]())

	e.mu.Lock()

	oldPtr := e.components[id]
	if oldPtr != nil {
		if old, ok := any((*T)(oldPtr)).(Detachable); ok {
			e.mu.Unlock()
			old.Detach(e)
			e.mu.Lock()
		}
	}

	e.components[id] = unsafe.Pointer(component)
	e.mask.Set(id)

	e.mu.Unlock()

	if attachable, ok := any(component).(Attachable); ok {
		attachable.Attach(e)
	}
}

// Remove detaches a component from the entity. If the component implements
// Detachable, its Detach method is called after removal.
func Remove[T any](e *Entity) {
	if e == nil {
		return
	}

	id, ok := e.manager.registry.getID(typeOf[T]())
	if !ok {
		return
	}

	e.mu.Lock()

	ptr := e.components[id]
	if ptr == nil {
		e.mu.Unlock()
		return
	}

	// Clear before calling Detach to prevent re-entrancy issues
	e.components[id] = nil
	e.mask.Clear(id)

	e.mu.Unlock()

	if component, ok := any((*T)(ptr)).(Detachable); ok {
		component.Detach(e)
	}
}

// Get retrieves a component from the entity. Returns nil if the component is
// not present.
func Get[T any](e *Entity) *T {
	if e == nil {
		return nil
	}

	id, ok := e.manager.registry.getID(typeOf[T]())
	if !ok {
		return nil
	}

	e.mu.RLock()
	ptr := e.components[id]
	e.mu.RUnlock()

	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// Has checks if a component type is present on the entity.
func Has[T any](e *Entity) bool {
	if e == nil {
		return false
	}

	id, ok := e.manager.registry.getID(typeOf[T]())
	if !ok {
		return false
	}

	e.mu.RLock()
	has := e.mask.Has(id)
	e.mu.RUnlock()

	return has
}
