package gdecs

import (
	"reflect"
	"sync"
	"time"
	"unsafe"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Manager is the central coordinator. It owns the mirrored entity space, the
// bundles, the shared resources and the scheduler. Multiple Manager instances
// can coexist in the same process for running isolated worlds.
//
// The manager does not tick itself. The engine drives it by calling Frame
// once per rendered frame and PhysicsStep once per physics step, both from
// the engine's main thread.
type Manager struct {
	// id identifies this manager instance in logs
	id uuid.UUID

	log *zap.Logger

	// registry holds component type registrations for this manager
	registry *componentRegistry

	// bundles holds all registered bundles
	bundles []*Bundle

	// handlers holds all registered handler metadata
	handlers []*handlerMeta

	// injections holds global injections
	injections   map[reflect.Type]unsafe.Pointer
	injectionsMu sync.RWMutex

	// resources holds shared resources
	resources   map[reflect.Type]unsafe.Pointer
	resourcesMu sync.RWMutex

	// entities indexes mirrored entities by node handle; entityList keeps
	// them in spawn order for deterministic iteration
	entities   map[NodeHandle]*Entity
	entityList []*Entity
	entitiesMu sync.RWMutex

	// byGroup indexes entities by interned scene-tree group name
	byGroup   map[uint64]map[*Entity]struct{}
	byGroupMu sync.RWMutex

	// sceneQueue and collisionQueue hand engine signals to the tick
	sceneQueue     signalQueue[sceneSignal]
	collisionQueue signalQueue[rawCollision]

	// sceneRegistry holds per-spawn component initializers
	sceneRegistry *SceneTreeComponentRegistry

	// tree is the engine scene tree handles resolve against
	tree SceneTree

	watcher Watcher

	// scheduler manages system execution
	scheduler *Scheduler

	// timeRes and physicsDelta are the built-in timing resources, refreshed
	// at the top of Frame and PhysicsStep respectively
	timeRes      *Time
	physicsDelta *PhysicsDelta

	frameCount   uint64
	physicsCount uint64
}

// newManager creates a new manager.
func newManager(tree SceneTree, log *zap.Logger, workers int) *Manager {
	m := &Manager{
		id:            uuid.New(),
		log:           log,
		registry:      newComponentRegistry(),
		injections:    make(map[reflect.Type]unsafe.Pointer),
		resources:     make(map[reflect.Type]unsafe.Pointer),
		entities:      make(map[NodeHandle]*Entity),
		byGroup:       make(map[uint64]map[*Entity]struct{}),
		sceneRegistry: NewSceneTreeComponentRegistry(),
		tree:          tree,
	}
	m.watcher = Watcher{m: m}
	m.scheduler = newScheduler(m, workers)
	return m
}

// ID returns the unique identifier of this manager instance.
func (m *Manager) ID() uuid.UUID {
	return m.id
}

// Logger returns the manager's logger.
func (m *Manager) Logger() *zap.Logger {
	return m.log
}

// Tree returns the engine scene tree this manager mirrors.
func (m *Manager) Tree() SceneTree {
	return m.tree
}

// Watcher returns the engine-facing callback receiver. The engine binding
// connects its notifications and signals to this value.
func (m *Manager) Watcher() *Watcher {
	return &m.watcher
}

// SceneComponents returns the registry of per-spawn component initializers.
func (m *Manager) SceneComponents() *SceneTreeComponentRegistry {
	return m.sceneRegistry
}

// Frame runs the frame stages once. Called by the engine on its main thread
// once per rendered frame, with the elapsed seconds since the previous frame.
func (m *Manager) Frame(delta float64) {
	m.frameCount++
	if m.timeRes != nil {
		m.timeRes.Delta = delta
		m.timeRes.Elapsed += delta
	}
	m.scheduler.runStages(time.Now(), firstFrameStage, lastFrameStage)
}

// PhysicsStep runs the physics stages once. Called by the engine on its main
// thread once per physics step. The physics delta resource is refreshed
// before any system runs, so no system observes a stale value. A negative
// delta from the engine clock is clamped to zero.
func (m *Manager) PhysicsStep(delta float64) {
	m.physicsCount++
	if m.physicsDelta != nil {
		m.physicsDelta.Seconds = max(delta, 0)
	}
	m.scheduler.runStages(time.Now(), firstPhysicsStage, lastPhysicsStage)
}

// FrameCount returns the number of frame ticks processed.
func (m *Manager) FrameCount() uint64 {
	return m.frameCount
}

// PhysicsCount returns the number of physics ticks processed.
func (m *Manager) PhysicsCount() uint64 {
	return m.physicsCount
}

// mirror spawns an entity for an engine node. Mirroring an already-mirrored
// node returns the existing entity. Spatial nodes get a Transform seeded from
// the node's current state.
func (m *Manager) mirror(node Node) *Entity {
	h := HandleFor(node)

	m.entitiesMu.Lock()
	if existing, ok := m.entities[h]; ok {
		m.entitiesMu.Unlock()
		return existing
	}

	e := &Entity{
		handle:  h,
		manager: m,
	}
	m.entities[h] = e
	m.entityList = append(m.entityList, e)
	m.entitiesMu.Unlock()

	e.setName(node.Name())
	e.setGroups(node.Groups())
	m.indexGroups(e)

	if spatial, ok := node.(SpatialNode); ok {
		t := NewTransform()
		t.setFromEngine(spatial.Transform())
		Add(e, t)
	}

	m.sceneRegistry.apply(e, h)

	m.log.Debug("mirrored node",
		zap.String("name", e.Name()),
		zap.Stringer("handle", h),
	)

	return e
}

// despawn removes the entity mirroring the handle. Returns nil if the handle
// was never mirrored.
func (m *Manager) despawn(h NodeHandle) *Entity {
	m.entitiesMu.Lock()
	e, ok := m.entities[h]
	if !ok {
		m.entitiesMu.Unlock()
		return nil
	}
	delete(m.entities, h)
	for i, other := range m.entityList {
		if other == e {
			m.entityList = append(m.entityList[:i], m.entityList[i+1:]...)
			break
		}
	}
	m.entitiesMu.Unlock()

	m.unindexGroups(e)
	m.dropCollisionsWith(e)
	e.free()

	m.log.Debug("despawned entity",
		zap.String("name", e.Name()),
		zap.Stringer("handle", h),
	)

	return e
}

// dropCollisionsWith removes a despawning entity from every other entity's
// contact state so stale pointers never linger past the entity's lifetime.
func (m *Manager) dropCollisionsWith(e *Entity) {
	for _, other := range m.AllEntities() {
		if other == e {
			continue
		}
		c := Get[Collisions](other)
		if c == nil {
			continue
		}
		for i := 0; i < len(c.colliding); {
			if c.colliding[i] == e {
				c.colliding = append(c.colliding[:i], c.colliding[i+1:]...)
				continue
			}
			i++
		}
		for i := 0; i < len(c.recent); {
			if c.recent[i] == e {
				c.recent = append(c.recent[:i], c.recent[i+1:]...)
				continue
			}
			i++
		}
	}
}

// indexGroups adds the entity to the group index.
func (m *Manager) indexGroups(e *Entity) {
	m.byGroupMu.Lock()
	for _, name := range e.Groups() {
		key := groupKey(name)
		if m.byGroup[key] == nil {
			m.byGroup[key] = make(map[*Entity]struct{})
		}
		m.byGroup[key][e] = struct{}{}
	}
	m.byGroupMu.Unlock()
}

// unindexGroups removes the entity from the group index.
func (m *Manager) unindexGroups(e *Entity) {
	m.byGroupMu.Lock()
	for _, name := range e.Groups() {
		key := groupKey(name)
		if set := m.byGroup[key]; set != nil {
			delete(set, e)
			if len(set) == 0 {
				delete(m.byGroup, key)
			}
		}
	}
	m.byGroupMu.Unlock()
}

// EntityFor returns the entity mirroring the handle, or nil if the node is
// not mirrored.
func (m *Manager) EntityFor(h NodeHandle) *Entity {
	m.entitiesMu.RLock()
	defer m.entitiesMu.RUnlock()
	return m.entities[h]
}

// AllEntities returns all live entities in spawn order.
func (m *Manager) AllEntities() []*Entity {
	m.entitiesMu.RLock()
	defer m.entitiesMu.RUnlock()

	out := make([]*Entity, 0, len(m.entityList))
	for _, e := range m.entityList {
		if !e.Despawned() {
			out = append(out, e)
		}
	}
	return out
}

// EntitiesInGroup returns all live entities whose mirrored node belongs to
// the named scene-tree group.
func (m *Manager) EntitiesInGroup(name string) []*Entity {
	key := groupKey(name)

	m.byGroupMu.RLock()
	defer m.byGroupMu.RUnlock()

	set := m.byGroup[key]
	if set == nil {
		return nil
	}

	out := make([]*Entity, 0, len(set))
	for e := range set {
		if !e.Despawned() {
			out = append(out, e)
		}
	}
	return out
}

// FindEntityByName returns the first live entity with the given node name in
// spawn order, or nil if none matches.
func (m *Manager) FindEntityByName(name string) *Entity {
	m.entitiesMu.RLock()
	defer m.entitiesMu.RUnlock()

	for _, e := range m.entityList {
		if !e.Despawned() && e.Name() == name {
			return e
		}
	}
	return nil
}

// EntityCount returns the number of mirrored entities.
func (m *Manager) EntityCount() int {
	m.entitiesMu.RLock()
	defer m.entitiesMu.RUnlock()
	return len(m.entities)
}

// addInjection registers a global injection.
func (m *Manager) addInjection(inj any) {
	t := reflect.TypeOf(inj)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	m.injectionsMu.Lock()
	m.injections[t] = unsafe.Pointer(reflect.ValueOf(inj).Pointer())
	m.injectionsMu.Unlock()
}

// getInjection retrieves a global injection by type.
func (m *Manager) getInjection(t reflect.Type) unsafe.Pointer {
	m.injectionsMu.RLock()
	defer m.injectionsMu.RUnlock()

	if ptr, ok := m.injections[t]; ok {
		return ptr
	}
	return nil
}

// ManagerInjection retrieves a global injection from the manager.
// Returns nil if the injection is not found.
func ManagerInjection[T any](m *Manager) *T {
	if m == nil {
		return nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	ptr := m.getInjection(t)
	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// addResource registers a shared resource.
func (m *Manager) addResource(res any) {
	t := reflect.TypeOf(res)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	m.resourcesMu.Lock()
	m.resources[t] = unsafe.Pointer(reflect.ValueOf(res).Pointer())
	m.resourcesMu.Unlock()
}

// getResource retrieves a shared resource by type.
func (m *Manager) getResource(t reflect.Type) unsafe.Pointer {
	m.resourcesMu.RLock()
	defer m.resourcesMu.RUnlock()

	if ptr, ok := m.resources[t]; ok {
		return ptr
	}
	return nil
}

// Resource retrieves a shared resource from the manager.
// Returns nil if the resource is not found.
func Resource[T any](m *Manager) *T {
	if m == nil {
		return nil
	}
	t := reflect.TypeOf((*T)(nil)).Elem()
	ptr := m.getResource(t)
	if ptr == nil {
		return nil
	}
	return (*T)(ptr)
}

// Broadcast dispatches an event to the handlers of all live entities.
func (m *Manager) Broadcast(event any) {
	for _, e := range m.AllEntities() {
		m.dispatch(e, event)
	}
}

// build initializes all bundles and systems.
func (m *Manager) build() error {
	for _, b := range m.bundles {
		if err := b.build(m.registry); err != nil {
			return err
		}

		// Register handlers
		for _, reg := range b.handlers {
			if err := m.registerHandler(reg.handler, b); err != nil {
				return err
			}
		}

		// Register systems with scheduler
		for i, reg := range b.systems {
			if i < len(b.systemMeta) {
				m.scheduler.addSystem(b.systemMeta[i], reg.interval, reg.stage)
			}
		}
	}

	return nil
}

// Start starts the scheduler's worker pool.
func (m *Manager) Start() {
	m.scheduler.Start()
	m.log.Info("manager started",
		zap.String("id", m.id.String()),
		zap.Int("workers", m.scheduler.workers),
	)
}

// Shutdown stops the scheduler and despawns all entities.
func (m *Manager) Shutdown() {
	m.scheduler.Stop()

	m.entitiesMu.Lock()
	entities := m.entityList
	m.entityList = nil
	m.entities = make(map[NodeHandle]*Entity)
	m.entitiesMu.Unlock()

	for _, e := range entities {
		m.unindexGroups(e)
		e.free()
	}

	m.log.Info("manager stopped", zap.String("id", m.id.String()))
}
