package gdecs

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// SystemMeta holds pre-computed metadata about a system type.
// This is computed once at registration time and reused for all executions.
type SystemMeta struct {
	// Type is the reflect.Type of the system struct
	Type reflect.Type

	// Name is the type name for debugging
	Name string

	// RequireMask is the bitmask of required components
	RequireMask Bitmask

	// ExcludeMask is the bitmask of excluded components (Without[T])
	ExcludeMask Bitmask

	// Fields holds injection metadata for each field
	Fields []FieldMeta

	// Stage is the execution stage
	Stage Stage

	// Pool is the sync.Pool for this system type
	Pool *sync.Pool

	// Bundle is the bundle this system belongs to
	Bundle *Bundle

	// Access is used for conflict detection
	Access AccessMeta

	// Global indicates the system has no entity dependency and runs once
	// per tick instead of per matching entity.
	Global bool

	// Exclusive indicates the system conflicts with every other system.
	// Set for Manager-bearing systems, which can mutate the entity space.
	Exclusive bool

	// NeedsMainThread indicates the system declared the MainThread marker
	// and must run inline on the goroutine driving the tick.
	NeedsMainThread bool
}

// FieldMeta holds metadata about a single injectable field.
type FieldMeta struct {
	// Offset is the field offset in the struct for unsafe injection
	Offset uintptr

	// Name is the field name for debugging
	Name string

	// Kind is the type of field (component, resource, etc.)
	Kind FieldKind

	// ComponentID is the ID of the component type (for component fields)
	ComponentID ComponentID

	// ComponentType is the reflect.Type of the component.
	// For payload fields, this stores the type of the field itself.
	ComponentType reflect.Type

	// Optional indicates the field can be nil
	Optional bool

	// Mutable indicates the field has write access
	Mutable bool
}

// AccessMeta describes what components/resources a system reads or writes.
// Used for conflict detection and parallel scheduling.
type AccessMeta struct {
	Reads     []reflect.Type
	Writes    []reflect.Type
	ResReads  []reflect.Type
	ResWrites []reflect.Type

	// Precomputed sets for fast conflict checks
	readsSet     map[reflect.Type]struct{}
	writesSet    map[reflect.Type]struct{}
	resReadsSet  map[reflect.Type]struct{}
	resWritesSet map[reflect.Type]struct{}
}

// PrepareSets precomputes lookup sets from the slice fields for faster conflict checks.
func (a *AccessMeta) PrepareSets() {
	build := func(src []reflect.Type) map[reflect.Type]struct{} {
		if len(src) == 0 {
			return nil
		}
		m := make(map[reflect.Type]struct{}, len(src))
		for _, t := range src {
			m[t] = struct{}{}
		}
		return m
	}
	a.readsSet = build(a.Reads)
	a.writesSet = build(a.Writes)
	a.resReadsSet = build(a.ResReads)
	a.resWritesSet = build(a.ResWrites)
}

// Conflicts returns true if this access pattern conflicts with another.
func (a *AccessMeta) Conflicts(other *AccessMeta) bool {
	// Components
	if other.readsSet != nil {
		for _, w := range a.Writes {
			if _, ok := other.readsSet[w]; ok {
				return true
			}
		}
	} else {
		for _, w := range a.Writes {
			if slices.Contains(other.Reads, w) {
				return true
			}
		}
	}
	if other.writesSet != nil {
		for _, w := range a.Writes {
			if _, ok := other.writesSet[w]; ok {
				return true
			}
		}
		for _, r := range a.Reads {
			if _, ok := other.writesSet[r]; ok {
				return true
			}
		}
	} else {
		for _, w := range a.Writes {
			if slices.Contains(other.Writes, w) {
				return true
			}
		}
		for _, r := range a.Reads {
			if slices.Contains(other.Writes, r) {
				return true
			}
		}
	}

	// Resources
	if other.resReadsSet != nil {
		for _, w := range a.ResWrites {
			if _, ok := other.resReadsSet[w]; ok {
				return true
			}
		}
	} else {
		for _, w := range a.ResWrites {
			if slices.Contains(other.ResReads, w) {
				return true
			}
		}
	}
	if other.resWritesSet != nil {
		for _, w := range a.ResWrites {
			if _, ok := other.resWritesSet[w]; ok {
				return true
			}
		}
		for _, r := range a.ResReads {
			if _, ok := other.resWritesSet[r]; ok {
				return true
			}
		}
	} else {
		for _, w := range a.ResWrites {
			if slices.Contains(other.ResWrites, w) {
				return true
			}
		}
		for _, r := range a.ResReads {
			if slices.Contains(other.ResWrites, r) {
				return true
			}
		}
	}

	return false
}

// analyzeSystem analyzes a system type and returns its metadata.
// The registry parameter is used to register component types for this manager.
func analyzeSystem(systemType reflect.Type, bundle *Bundle, registry *componentRegistry) (*SystemMeta, error) {
	if systemType.Kind() == reflect.Ptr {
		systemType = systemType.Elem()
	}
	if systemType.Kind() != reflect.Struct {
		return nil, fmt.Errorf("system must be a struct, got %v", systemType.Kind())
	}

	meta := &SystemMeta{
		Type:   systemType,
		Name:   systemType.Name(),
		Bundle: bundle,
		Pool: &sync.Pool{
			New: func() any {
				return reflect.New(systemType).Interface()
			},
		},
	}

	hasEntity := false

	for i := 0; i < systemType.NumField(); i++ {
		field := systemType.Field(i)
		tag := parseTag(field.Tag.Get(tagName))

		fieldMeta := FieldMeta{
			Offset:   field.Offset,
			Name:     field.Name,
			Optional: tag.Optional,
			Mutable:  tag.Mutable,
		}

		// Check for *Entity field - makes the system per-entity
		if field.Type == reflect.TypeOf((*Entity)(nil)) {
			hasEntity = true
			fieldMeta.Kind = KindEntity
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for *Manager field. A system holding the manager can touch
		// any entity or resource, so it is scheduled exclusively.
		if field.Type == reflect.TypeOf((*Manager)(nil)) {
			fieldMeta.Kind = KindManager
			meta.Exclusive = true
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for NodeHandle value field, filled with the entity's handle
		if field.Type == reflect.TypeOf(NodeHandle{}) {
			fieldMeta.Kind = KindHandle
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for phantom types (With[T] and Without[T])
		if isPhantomType(field.Type) {
			compType, isWithout, _ := getPhantomInfo(field.Type)
			if compType != nil {
				compID := registry.register(compType)
				if isWithout {
					fieldMeta.Kind = KindPhantomWithout
					meta.ExcludeMask.Set(compID)
				} else {
					fieldMeta.Kind = KindPhantomWith
					meta.RequireMask.Set(compID)
				}
				fieldMeta.ComponentID = compID
				fieldMeta.ComponentType = compType
			}
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for global injection
		if tag.Inject {
			fieldMeta.Kind = KindInjection
			fieldMeta.ComponentType = field.Type
			if field.Type.Kind() == reflect.Ptr {
				fieldMeta.ComponentType = field.Type.Elem()
			}
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for resource injection
		if tag.Resource {
			fieldMeta.Kind = KindResource
			fieldMeta.ComponentType = field.Type
			if field.Type.Kind() == reflect.Ptr {
				fieldMeta.ComponentType = field.Type.Elem()
			}
			if fieldMeta.ComponentType == reflect.TypeOf(MainThread{}) {
				meta.NeedsMainThread = true
			}
			if tag.Mutable {
				meta.Access.ResWrites = append(meta.Access.ResWrites, fieldMeta.ComponentType)
			} else {
				meta.Access.ResReads = append(meta.Access.ResReads, fieldMeta.ComponentType)
			}
			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Check for component field (pointer to struct)
		if field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct {
			compType := field.Type.Elem()

			compID := registry.register(compType)
			fieldMeta.Kind = KindComponent
			fieldMeta.ComponentID = compID
			fieldMeta.ComponentType = compType

			// Update bitmasks
			if !tag.Optional {
				meta.RequireMask.Set(compID)
			}

			// Track access for conflict detection
			if tag.Mutable {
				meta.Access.Writes = append(meta.Access.Writes, compType)
			} else {
				meta.Access.Reads = append(meta.Access.Reads, compType)
			}

			meta.Fields = append(meta.Fields, fieldMeta)
			continue
		}

		// Everything else is payload
		fieldMeta.Kind = KindPayload
		fieldMeta.ComponentType = field.Type
		meta.Fields = append(meta.Fields, fieldMeta)
	}

	// A system without an entity dependency runs once per tick.
	meta.Global = !hasEntity

	// Pre-compute access sets
	meta.Access.PrepareSets()

	return meta, nil
}
