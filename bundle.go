package gdecs

import (
	"fmt"
	"reflect"
	"time"
)

// Bundle groups related systems, handlers, and resources together. Bundles
// are registered with the builder and provide isolation between different
// gameplay features.
type Bundle struct {
	name string

	// handlers holds handler registrations
	handlers []handlerRegistration

	// systems holds system registrations
	systems []systemRegistration

	// resources holds bundle-level resources (registered with the manager)
	resources []any

	postInitHooks []func(*Manager)

	// systemMeta holds computed metadata for systems
	systemMeta []*SystemMeta
}

// handlerRegistration holds a handler registration.
type handlerRegistration struct {
	handler any
}

// systemRegistration holds a system registration.
type systemRegistration struct {
	system   Runnable
	interval time.Duration
	stage    Stage
}

// NewBundle creates a new bundle with the given name.
func NewBundle(name string) *Bundle {
	return &Bundle{name: name}
}

// Name returns the bundle name.
func (b *Bundle) Name() string {
	return b.name
}

// Resource registers a bundle-level resource.
// These are available to all systems via the manager.
func (b *Bundle) Resource(res any) *Bundle {
	b.resources = append(b.resources, res)
	return b
}

// PostInit registers a hook that runs after the manager is built and started.
func (b *Bundle) PostInit(hook func(*Manager)) *Bundle {
	b.postInitHooks = append(b.postInitHooks, hook)
	return b
}

// Build returns a callback function that returns this bundle.
// This allows for cleaner inline bundle initialization:
//
//	bund := gdecs.NewBundle("gameplay").
//	    System(&MovementSystem{}, gdecs.Update).
//	    Build()
//
//	mngr := gdecs.NewBuilder().
//	    Bundle(bund).
//	    Init()
func (b *Bundle) Build() func(*Manager) *Bundle {
	return func(*Manager) *Bundle {
		return b
	}
}

// Handler registers a handler for this bundle.
// Handlers are structs with event methods like HandleSpawn(SceneTreeEvent).
func (b *Bundle) Handler(h any) *Bundle {
	b.handlers = append(b.handlers, handlerRegistration{
		handler: h,
	})
	return b
}

// System registers a system that runs every tick of its stage.
func (b *Bundle) System(sys Runnable, stage Stage) *Bundle {
	return b.SystemEvery(sys, 0, stage)
}

// SystemEvery registers a system that runs at fixed intervals.
// Interval of 0 means the system runs every tick.
func (b *Bundle) SystemEvery(sys Runnable, interval time.Duration, stage Stage) *Bundle {
	b.systems = append(b.systems, systemRegistration{
		system:   sys,
		interval: interval,
		stage:    stage,
	})
	return b
}

// build analyzes all systems and computes metadata.
func (b *Bundle) build(registry *componentRegistry) error {
	for _, reg := range b.systems {
		meta, err := analyzeSystem(reflect.TypeOf(reg.system), b, registry)
		if err != nil {
			return err
		}
		meta.Stage = reg.stage

		// Unlike handlers, scheduled systems get no entity from a
		// dispatch; a global one cannot be handed components.
		if meta.Global {
			for i := range meta.Fields {
				switch meta.Fields[i].Kind {
				case KindComponent, KindHandle:
					return fmt.Errorf("system %s declares %s without an *Entity field",
						meta.Name, meta.Fields[i].Name)
				}
			}
		}

		b.systemMeta = append(b.systemMeta, meta)
	}

	return nil
}
