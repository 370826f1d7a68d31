package gdecs

import (
	"reflect"
	"sync"
)

// EntityInit attaches or initializes components on a freshly mirrored entity.
// The handle refers to the engine node the entity was spawned for.
type EntityInit func(e *Entity, h NodeHandle)

// SceneTreeComponentRegistry holds entity initializers that run whenever an
// engine node is mirrored into the ECS. Plugins use it to attach default or
// custom components without modifying the spawn path.
//
// The registry is populated during application setup and read-only afterwards.
// At most one initializer is kept per component type; duplicate registrations
// are no-ops. Initializers run in registration order and must be independent
// of each other.
type SceneTreeComponentRegistry struct {
	mu      sync.Mutex
	entries []registryEntry
}

type registryEntry struct {
	typ  reflect.Type
	init EntityInit
}

// NewSceneTreeComponentRegistry creates an empty registry.
func NewSceneTreeComponentRegistry() *SceneTreeComponentRegistry {
	return &SceneTreeComponentRegistry{}
}

// RegisterSceneComponent registers component type C to be added, default
// constructed, to every mirrored entity. Registering an already-registered
// type is a no-op.
func RegisterSceneComponent[C any](r *SceneTreeComponentRegistry) {
	registerSceneInit(r, typeOf[C](), func(e *Entity, _ NodeHandle) {
		Add(e, new(C))
	})
}

// RegisterSceneComponentWith registers a custom initializer for component
// type C, invoked with the entity being built and its node handle.
// Registering an already-registered type is a no-op.
func RegisterSceneComponentWith[C any](r *SceneTreeComponentRegistry, fn EntityInit) {
	registerSceneInit(r, typeOf[C](), fn)
}

func registerSceneInit(r *SceneTreeComponentRegistry, t reflect.Type, fn EntityInit) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, entry := range r.entries {
		if entry.typ == t {
			return
		}
	}
	r.entries = append(r.entries, registryEntry{typ: t, init: fn})
}

// Len returns the number of registered initializers.
func (r *SceneTreeComponentRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// apply invokes every registered initializer against the entity, in
// registration order.
func (r *SceneTreeComponentRegistry) apply(e *Entity, h NodeHandle) {
	r.mu.Lock()
	entries := r.entries
	r.mu.Unlock()

	for _, entry := range entries {
		entry.init(e, h)
	}
}
