package gdecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMirrorOnNodeAdded(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Player", "players", "units")
	require.Equal(t, 0, m.EntityCount())

	m.Frame(0.016)

	e := m.EntityFor(HandleFor(n))
	require.NotNil(t, e)
	require.Equal(t, "Player", e.Name())
	require.True(t, e.InGroup("players"))
	require.True(t, e.InGroup("units"))
	require.False(t, e.InGroup("enemies"))
	require.ElementsMatch(t, []string{"players", "units"}, e.Groups())

	events := Resource[SceneTreeEvents](m).Events()
	require.Len(t, events, 1)
	require.Equal(t, NodeAdded, events[0].Kind)
	require.Same(t, e, events[0].Entity)
}

func TestSpatialNodeGetsTransform(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	tr := IdentityTransform()
	tr.Position[0] = 7
	n := tree.addSpatial("Crate", tr)
	m.Frame(0.016)

	e := m.EntityFor(HandleFor(n))
	require.NotNil(t, e)

	transform := Get[Transform](e)
	require.NotNil(t, transform)
	require.Equal(t, 7.0, transform.Position()[0])
	// Seeded from the engine, so not dirty.
	require.False(t, transform.Dirty())
}

func TestPlainNodeGetsNoTransform(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Timer")
	m.Frame(0.016)

	e := m.EntityFor(HandleFor(n))
	require.NotNil(t, e)
	require.False(t, Has[Transform](e))
}

func TestDespawnOnNodeRemoved(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Enemy", "enemies")
	m.Frame(0.016)
	e := m.EntityFor(HandleFor(n))
	require.NotNil(t, e)

	tree.free(n.id)
	m.Frame(0.016)

	require.True(t, e.Despawned())
	require.Nil(t, m.EntityFor(HandleFor(n)))
	require.Empty(t, m.EntitiesInGroup("enemies"))
	require.Equal(t, 0, m.EntityCount())

	events := Resource[SceneTreeEvents](m).Events()
	require.Len(t, events, 1)
	require.Equal(t, NodeRemoved, events[0].Kind)
}

func TestRenameRefreshesEntityName(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Old")
	m.Frame(0.016)
	e := m.EntityFor(HandleFor(n))

	tree.rename(n.id, "New")
	m.Frame(0.016)

	require.Equal(t, "New", e.Name())
	require.Nil(t, m.FindEntityByName("Old"))
	require.Same(t, e, m.FindEntityByName("New"))
}

func TestNodeFreedBeforeFlushIsSkipped(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Ghost")
	// Free before the add signal drains; mirroring must not spawn.
	tree.free(n.id)
	m.Frame(0.016)

	require.Equal(t, 0, m.EntityCount())
	require.Empty(t, Resource[SceneTreeEvents](m).Events())
}

func TestSceneEventsResetEachFrame(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	tree.addNode("A")
	m.Frame(0.016)
	require.Len(t, Resource[SceneTreeEvents](m).Events(), 1)

	m.Frame(0.016)
	require.Empty(t, Resource[SceneTreeEvents](m).Events())
}

func TestEntitiesInGroup(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	a := tree.addNode("A", "boids")
	b := tree.addNode("B", "boids")
	tree.addNode("C", "walls")
	m.Frame(0.016)

	boids := m.EntitiesInGroup("boids")
	require.Len(t, boids, 2)
	require.ElementsMatch(t, []*Entity{
		m.EntityFor(HandleFor(a)),
		m.EntityFor(HandleFor(b)),
	}, boids)
	require.Len(t, m.EntitiesInGroup("walls"), 1)
	require.Empty(t, m.EntitiesInGroup("missing"))
}

func TestSceneComponentRegistryDefault(t *testing.T) {
	type Tag struct{ Seen bool }

	m, tree := newTestManager(SyncDisabled, func(b *Builder) {
		b.SceneComponents(func(r *SceneTreeComponentRegistry) {
			RegisterSceneComponent[Tag](r)
		})
	})
	defer m.Shutdown()

	n := tree.addNode("Anything")
	m.Frame(0.016)

	e := m.EntityFor(HandleFor(n))
	require.NotNil(t, Get[Tag](e))
	require.False(t, Get[Tag](e).Seen)
}

func TestSceneComponentRegistryCustomInit(t *testing.T) {
	type Score struct{ Value int }

	m, tree := newTestManager(SyncDisabled, func(b *Builder) {
		b.SceneComponents(func(r *SceneTreeComponentRegistry) {
			RegisterSceneComponentWith[Score](r, func(e *Entity, h NodeHandle) {
				Add(e, &Score{Value: int(h.ID())})
			})
		})
	})
	defer m.Shutdown()

	n := tree.addNode("Scored")
	m.Frame(0.016)

	e := m.EntityFor(HandleFor(n))
	require.Equal(t, int(n.id), Get[Score](e).Value)
}

func TestSceneComponentRegistryDuplicateIsNoOp(t *testing.T) {
	type Tag struct{}

	r := NewSceneTreeComponentRegistry()
	RegisterSceneComponent[Tag](r)
	RegisterSceneComponentWith[Tag](r, func(e *Entity, _ NodeHandle) {
		t.Fatal("duplicate registration must not run")
	})
	require.Equal(t, 1, r.Len())
}

func TestSceneHandlerDispatch(t *testing.T) {
	events := &spawnRecorder{}

	m, tree := newTestManager(SyncDisabled, func(b *Builder) {
		b.Inject(events)
		b.Bundle(NewBundle("test").Handler(&spawnHandler{}).Build())
	})
	defer m.Shutdown()

	tree.addNode("Spawned")
	m.Frame(0.016)

	require.Equal(t, []SceneTreeEventKind{NodeAdded}, events.kinds)
}

type spawnRecorder struct {
	kinds []SceneTreeEventKind
}

type spawnHandler struct {
	Events *spawnRecorder `gdecs:"inj"`
}

func (h *spawnHandler) HandleSpawn(ev SceneTreeEvent) {
	h.Events.kinds = append(h.Events.kinds, ev.Kind)
}
