package gdecs

// Watcher is the engine-facing callback receiver. The engine binding calls
// its methods from the engine's own execution context; each call only pushes
// a signal onto a hand-off queue, so the engine callback never blocks on ECS
// work. The queued signals become visible to systems on the next tick.
type Watcher struct {
	m *Manager
}

// OnNodeAdded notifies the core that a node entered the scene tree. A
// mirrored entity is spawned on the next frame tick.
func (w *Watcher) OnNodeAdded(n Node) {
	w.m.sceneQueue.push(sceneSignal{op: opNodeAdded, id: n.InstanceID()})
}

// OnNodeRemoved notifies the core that a node left the scene tree. The
// mirrored entity is despawned on the next frame tick. Only the instance ID
// is captured; the node may already be freed by the time the signal drains.
func (w *Watcher) OnNodeRemoved(n Node) {
	w.m.sceneQueue.push(sceneSignal{op: opNodeRemoved, id: n.InstanceID()})
}

// OnNodeRenamed notifies the core that a node's name changed.
func (w *Watcher) OnNodeRenamed(n Node) {
	w.m.sceneQueue.push(sceneSignal{op: opNodeRenamed, id: n.InstanceID()})
}

// OnCollision delivers a raw collision signal for a node pair. Translated
// into a CollisionEvent on the next physics tick.
func (w *Watcher) OnCollision(kind SignalKind, origin, target Node) {
	w.m.collisionQueue.push(rawCollision{
		kind:   kind,
		origin: HandleFor(origin),
		target: HandleFor(target),
	})
}

// OnCollisionIDs is the deferred-signal variant of OnCollision for engine
// bindings that only retain instance IDs at signal time.
func (w *Watcher) OnCollisionIDs(kind SignalKind, origin, target InstanceID) {
	w.m.collisionQueue.push(rawCollision{
		kind:   kind,
		origin: HandleForID(origin),
		target: HandleForID(target),
	})
}
