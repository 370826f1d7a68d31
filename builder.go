package gdecs

import (
	"go.uber.org/zap"
)

// Builder configures the integration before initialization.
// Use NewBuilder() to create a builder and chain configuration methods.
type Builder struct {
	bundles    []func(*Manager) *Bundle
	resources  []any
	injections []any
	sceneInits []func(*SceneTreeComponentRegistry)
	tree       SceneTree
	logger     *zap.Logger
	mode       SyncMode
	workers    int
}

// NewBuilder creates a new builder. Transform synchronization defaults to
// one-way.
func NewBuilder() *Builder {
	return &Builder{mode: SyncOneWay}
}

// Bundle adds a bundle to the builder.
func (b *Builder) Bundle(callback func(*Manager) *Bundle) *Builder {
	b.bundles = append(b.bundles, callback)
	return b
}

// Resource adds a shared resource available to all bundles.
func (b *Builder) Resource(res any) *Builder {
	b.resources = append(b.resources, res)
	return b
}

// Inject adds a global injection, available to systems via the inj tag.
func (b *Builder) Inject(inj any) *Builder {
	b.injections = append(b.injections, inj)
	return b
}

// Tree sets the engine scene tree the manager mirrors. Required.
func (b *Builder) Tree(tree SceneTree) *Builder {
	b.tree = tree
	return b
}

// Logger sets the logger. Defaults to zap's production logger.
func (b *Builder) Logger(log *zap.Logger) *Builder {
	b.logger = log
	return b
}

// TransformMode sets the transform synchronization mode.
func (b *Builder) TransformMode(mode SyncMode) *Builder {
	b.mode = mode
	return b
}

// Workers sets the worker pool size. Zero or negative uses GOMAXPROCS.
func (b *Builder) Workers(n int) *Builder {
	b.workers = n
	return b
}

// WithConfig applies a loaded configuration to the builder.
func (b *Builder) WithConfig(cfg *Config) *Builder {
	mode, err := cfg.SyncMode()
	if err == nil {
		b.mode = mode
	}
	if cfg.Workers > 0 {
		b.workers = cfg.Workers
	}
	return b
}

// SceneComponents registers scene-spawn component initializers. The callback
// receives the manager's registry during Init.
func (b *Builder) SceneComponents(fn func(*SceneTreeComponentRegistry)) *Builder {
	b.sceneInits = append(b.sceneInits, fn)
	return b
}

// Init initializes the integration with the configured settings.
// Returns the Manager instance, ready to be driven by the engine.
// Multiple Manager instances can coexist for running isolated worlds.
func (b *Builder) Init() *Manager {
	log := b.logger
	if log == nil {
		var err error
		log, err = zap.NewProduction()
		if err != nil {
			log = zap.NewNop()
		}
	}

	m := newManager(b.tree, log, b.workers)

	// Built-in resources
	m.timeRes = &Time{}
	m.physicsDelta = &PhysicsDelta{}
	m.addResource(m.timeRes)
	m.addResource(m.physicsDelta)
	m.addResource(&MainThread{})
	m.addResource(&TransformConfig{Mode: b.mode})
	m.addResource(&SceneTreeEvents{})
	m.addResource(&CollisionEvents{})

	// The core bundle registers first so its systems run before user
	// systems in shared stages. Collision drain precedes apply.
	core := NewBundle("gdecs-core").
		System(&sceneFlushSystem{}, PreUpdate).
		System(&collisionDrainSystem{}, PrePhysics).
		System(&collisionApplySystem{}, PrePhysics)

	switch b.mode {
	case SyncOneWay:
		core.System(&transformWriteSystem{}, PostUpdate)
	case SyncTwoWay:
		core.System(&transformReadSystem{}, PreUpdate)
		core.System(&transformWriteSystem{}, PostUpdate)
	}

	m.bundles = append(m.bundles, core)

	var hooks []func(*Manager)

	// Add bundles
	for _, f := range b.bundles {
		bund := f(m)
		m.bundles = append(m.bundles, bund)
		hooks = append(hooks, bund.postInitHooks...)
	}

	// Add global resources
	for _, res := range b.resources {
		m.addResource(res)
	}

	for _, bundle := range m.bundles {
		for _, res := range bundle.resources {
			m.addResource(res)
		}
	}

	// Add global injections
	for _, inj := range b.injections {
		m.addInjection(inj)
	}

	// Register scene-spawn component initializers
	for _, fn := range b.sceneInits {
		fn(m.sceneRegistry)
	}

	// Build all systems
	if err := m.build(); err != nil {
		panic("gdecs: failed to build systems: " + err.Error())
	}

	// Start the worker pool
	m.Start()

	for _, hook := range hooks {
		hook(m)
	}

	return m
}
