package gdecs

// SceneTreeEventKind is the kind of a mirrored scene-tree change.
type SceneTreeEventKind uint8

const (
	// NodeAdded reports a node that entered the tree. The event's Entity is
	// the freshly spawned mirror.
	NodeAdded SceneTreeEventKind = iota

	// NodeRemoved reports a node that left the tree. The event's Entity is
	// already despawned; only its handle and last-known state remain valid.
	NodeRemoved

	// NodeRenamed reports a node whose name changed. The mirrored entity's
	// name is updated before the event is published.
	NodeRenamed
)

// String returns the string representation of the kind.
func (k SceneTreeEventKind) String() string {
	switch k {
	case NodeAdded:
		return "node_added"
	case NodeRemoved:
		return "node_removed"
	case NodeRenamed:
		return "node_renamed"
	default:
		return "unknown"
	}
}

// SceneTreeEvent is one mirrored scene-tree change, published after the
// corresponding entity mutation has been applied.
type SceneTreeEvent struct {
	Kind   SceneTreeEventKind
	Entity *Entity
	Handle NodeHandle
}

// SceneTreeEvents is the shared resource carrying the scene-tree changes
// applied this frame. The slice is reset at the start of every frame tick, so
// systems reading it in the Update stages see exactly this frame's changes.
type SceneTreeEvents struct {
	events []SceneTreeEvent
}

// Events returns this frame's scene-tree changes in application order.
func (s *SceneTreeEvents) Events() []SceneTreeEvent {
	return s.events
}

func (s *SceneTreeEvents) reset() {
	s.events = s.events[:0]
}

func (s *SceneTreeEvents) append(ev SceneTreeEvent) {
	s.events = append(s.events, ev)
}

// sceneFlushSystem drains queued scene-tree signals and applies them to the
// entity space. It runs first in the frame schedule so that user systems in
// the same frame already see the mirrored state. Runs on the engine thread
// because mirroring reads node state.
type sceneFlushSystem struct {
	Manager *Manager
	Events  *SceneTreeEvents `gdecs:"res,mut"`
	MT      *MainThread      `gdecs:"res"`
}

func (s *sceneFlushSystem) Run() {
	m := s.Manager
	s.Events.reset()

	for _, sig := range m.sceneQueue.drain() {
		h := HandleForID(sig.id)
		var ev SceneTreeEvent

		switch sig.op {
		case opNodeAdded:
			node, ok := h.Resolve(m.tree)
			if !ok {
				// Freed between signal and flush; nothing to mirror.
				continue
			}
			ev = SceneTreeEvent{Kind: NodeAdded, Entity: m.mirror(node), Handle: h}
		case opNodeRemoved:
			e := m.despawn(h)
			if e == nil {
				continue
			}
			ev = SceneTreeEvent{Kind: NodeRemoved, Entity: e, Handle: h}
		case opNodeRenamed:
			e := m.EntityFor(h)
			if e == nil {
				continue
			}
			if node, ok := h.Resolve(m.tree); ok {
				e.setName(node.Name())
			}
			ev = SceneTreeEvent{Kind: NodeRenamed, Entity: e, Handle: h}
		}

		s.Events.append(ev)
		m.dispatch(ev.Entity, ev)
	}
}
