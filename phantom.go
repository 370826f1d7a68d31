package gdecs

import (
	"reflect"
)

// With is a phantom type that indicates a component must exist for the system
// to run on an entity. The component is not injected - it only filters.
//
// Usage:
//
//	type MySystem struct {
//	    Entity *gdecs.Entity
//	    _ gdecs.With[PlayerTag] // Only run for entities with PlayerTag
//	}
type With[T any] struct{}

// Without is a phantom type that indicates a component must NOT exist for the
// system to run. The entity is skipped if the component is present.
//
// Usage:
//
//	type MySystem struct {
//	    Entity *gdecs.Entity
//	    _ gdecs.Without[Frozen] // Skip entities with Frozen
//	}
type Without[T any] struct{}

// PhantomTypeInfo provides component type information for phantom types.
type PhantomTypeInfo interface {
	ComponentType() reflect.Type
	IsWithout() bool
}

// ComponentType implements PhantomTypeInfo for With[T].
func (With[T]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsWithout implements PhantomTypeInfo for With[T].
func (With[T]) IsWithout() bool {
	return false
}

// ComponentType implements PhantomTypeInfo for Without[T].
func (Without[T]) ComponentType() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// IsWithout implements PhantomTypeInfo for Without[T].
func (Without[T]) IsWithout() bool {
	return true
}

// phantomTypeInfoType is the reflect.Type of the PhantomTypeInfo interface.
var phantomTypeInfoType = reflect.TypeOf((*PhantomTypeInfo)(nil)).Elem()

// isPhantomType checks if a type implements PhantomTypeInfo.
func isPhantomType(t reflect.Type) bool {
	return t.Implements(phantomTypeInfoType)
}

// getPhantomInfo extracts component type and kind from a phantom type.
func getPhantomInfo(t reflect.Type) (compType reflect.Type, isWithout bool, ok bool) {
	if !t.Implements(phantomTypeInfoType) {
		return nil, false, false
	}

	v := reflect.New(t).Elem().Interface().(PhantomTypeInfo)
	return v.ComponentType(), v.IsWithout(), true
}
