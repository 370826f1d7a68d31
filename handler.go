package gdecs

import (
	"reflect"
	"sync"
)

// handlerMeta holds metadata and pool for a registered handler type.
type handlerMeta struct {
	meta   *SystemMeta
	bundle *Bundle
	events map[reflect.Type]int
}

// Dispatch dispatches an event to all registered handlers that listen for it,
// injected against this entity. Handlers listen for events by implementing a
// method with the signature:
//
//	func (h *MyHandler) HandleMyEvent(event MyEventType)
//
// The method name does not matter, only the signature (one argument).
func (e *Entity) Dispatch(event any) {
	if e == nil || e.manager == nil || e.despawned.Load() {
		return
	}
	e.manager.dispatch(e, event)
}

// dispatch runs all matching handlers for an event against the entity.
func (m *Manager) dispatch(e *Entity, event any) {
	eventType := reflect.TypeOf(event)

	for _, hm := range m.handlers {
		// Check if this handler handles this event type
		methodIdx, ok := hm.events[eventType]
		if !ok {
			continue
		}

		// Check bitmask
		if !e.canRun(hm.meta) {
			continue
		}

		// Get handler from pool
		handler := hm.meta.Pool.Get()

		// Inject dependencies
		if !injectSystem(handler, e, hm.meta, m) {
			zeroSystem(handler, hm.meta)
			hm.meta.Pool.Put(handler)
			continue
		}

		// Execute handler method via reflection
		// We use the cached method index for performance
		reflect.ValueOf(handler).Method(methodIdx).Call([]reflect.Value{reflect.ValueOf(event)})

		// Zero and return to pool
		zeroSystem(handler, hm.meta)
		hm.meta.Pool.Put(handler)
	}
}

// ComponentAttachEvent is dispatched when a component is added to an entity
// via a handler-aware path.
type ComponentAttachEvent struct {
	ComponentType reflect.Type
}

// ComponentDetachEvent is dispatched when a component is removed from an
// entity via a handler-aware path.
type ComponentDetachEvent struct {
	ComponentType reflect.Type
}

// registerHandler registers a handler type with the manager.
func (m *Manager) registerHandler(h any, bundle *Bundle) error {
	t := reflect.TypeOf(h)

	meta, err := analyzeSystem(t, bundle, m.registry)
	if err != nil {
		return err
	}

	// Set up pool to create correct type
	meta.Pool = &sync.Pool{
		New: func() any {
			return reflect.New(t.Elem()).Interface()
		},
	}

	// Scan for event methods
	events := make(map[reflect.Type]int)
	for i := 0; i < t.NumMethod(); i++ {
		method := t.Method(i)
		// Check for 1 argument (plus receiver)
		if method.Type.NumIn() != 2 {
			continue
		}
		// Register event type
		eventType := method.Type.In(1)
		events[eventType] = i
	}

	m.handlers = append(m.handlers, &handlerMeta{
		meta:   meta,
		bundle: bundle,
		events: events,
	})

	return nil
}
