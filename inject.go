package gdecs

import (
	"reflect"
	"unsafe"
)

// injectSystem injects dependencies into a system instance. The entity may be
// nil for global systems. Returns false if a required dependency is missing.
func injectSystem(system any, e *Entity, meta *SystemMeta, manager *Manager) bool {
	systemPtr := reflect.ValueOf(system).UnsafePointer()

	for i := range meta.Fields {
		field := &meta.Fields[i]

		switch field.Kind {
		case KindEntity:
			if e == nil {
				return false
			}
			setFieldPtr(systemPtr, field.Offset, unsafe.Pointer(e))

		case KindManager:
			if manager == nil {
				return false
			}
			setFieldPtr(systemPtr, field.Offset, unsafe.Pointer(manager))

		case KindHandle:
			if e == nil {
				return false
			}
			*(*NodeHandle)(unsafe.Add(systemPtr, field.Offset)) = e.handle

		case KindComponent:
			if e == nil {
				return false
			}
			e.mu.RLock()
			ptr := e.getComponentUnsafe(field.ComponentID)
			e.mu.RUnlock()

			if ptr == nil && !field.Optional {
				return false // Required component missing
			}
			setFieldPtr(systemPtr, field.Offset, ptr)

		case KindResource:
			res := manager.getResource(field.ComponentType)
			if res == nil {
				return false // Resource not found
			}
			setFieldPtr(systemPtr, field.Offset, res)

		case KindInjection:
			inj := manager.getInjection(field.ComponentType)
			if inj == nil {
				return false // Injection not found
			}
			setFieldPtr(systemPtr, field.Offset, inj)

		case KindPhantomWith, KindPhantomWithout:
			// Phantom types don't need injection - filtering already done
			continue

		case KindPayload:
			// Payload fields must be zeroed to prevent leakage between
			// entities when reusing the same system instance
			zeroPayloadField(systemPtr, field)
		}
	}

	return true
}

// zeroSystem zeros all injected fields in a system for pool reuse.
func zeroSystem(system any, meta *SystemMeta) {
	systemPtr := reflect.ValueOf(system).UnsafePointer()

	for i := range meta.Fields {
		field := &meta.Fields[i]

		switch field.Kind {
		case KindEntity, KindManager, KindComponent, KindResource, KindInjection:
			setFieldPtr(systemPtr, field.Offset, nil)

		case KindHandle:
			*(*NodeHandle)(unsafe.Add(systemPtr, field.Offset)) = NodeHandle{}

		case KindPayload:
			zeroPayloadField(systemPtr, field)
		}
	}
}

// setFieldPtr sets a pointer field at the given offset.
func setFieldPtr(base unsafe.Pointer, offset uintptr, value unsafe.Pointer) {
	*(*unsafe.Pointer)(unsafe.Add(base, offset)) = value
}

// zeroPayloadField zeros a payload field based on its type.
func zeroPayloadField(base unsafe.Pointer, field *FieldMeta) {
	if field.ComponentType == nil {
		return
	}

	v := reflect.NewAt(field.ComponentType, unsafe.Add(base, field.Offset)).Elem()
	v.Set(reflect.Zero(field.ComponentType))
}
