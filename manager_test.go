package gdecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResourceLookup(t *testing.T) {
	count := &counter{n: 7}
	m, _ := newTestManager(SyncDisabled, func(b *Builder) {
		b.Resource(count)
	})
	defer m.Shutdown()

	require.Same(t, count, Resource[counter](m))
	require.Nil(t, Resource[seenLog](m))

	// Built-in resources are always present.
	require.NotNil(t, Resource[Time](m))
	require.NotNil(t, Resource[PhysicsDelta](m))
	require.NotNil(t, Resource[MainThread](m))
	require.NotNil(t, Resource[TransformConfig](m))
}

func TestInjectionLookup(t *testing.T) {
	log := &gidLog{}
	m, _ := newTestManager(SyncDisabled, func(b *Builder) {
		b.Inject(log)
	})
	defer m.Shutdown()

	require.Same(t, log, ManagerInjection[gidLog](m))
	require.Nil(t, ManagerInjection[counter](m))
	require.Nil(t, ManagerInjection[gidLog](nil))
}

type damageEvent struct {
	Amount int
}

type damageHandler struct {
	Health *health
	Log    *seenLog `gdecs:"inj"`
}

func (h *damageHandler) HandleDamage(ev damageEvent) {
	h.Health.Current -= ev.Amount
	h.Log.withShield = append(h.Log.withShield, true)
}

func TestDispatchAndBroadcast(t *testing.T) {
	log := &seenLog{}
	m, tree := newTestManager(SyncDisabled, func(b *Builder) {
		b.Inject(log)
		b.Bundle(NewBundle("test").Handler(&damageHandler{}).Build())
	})
	defer m.Shutdown()

	a := spawnTestEntity(t, m, tree, "A")
	Add(a, &health{Current: 100})
	b := spawnTestEntity(t, m, tree, "B")
	Add(b, &health{Current: 100})
	noHealth := spawnTestEntity(t, m, tree, "C")

	a.Dispatch(damageEvent{Amount: 10})
	require.Equal(t, 90, Get[health](a).Current)
	require.Equal(t, 100, Get[health](b).Current)

	// The handler requires health, so entities without it are skipped.
	noHealth.Dispatch(damageEvent{Amount: 10})
	require.Len(t, log.withShield, 1)

	m.Broadcast(damageEvent{Amount: 5})
	require.Equal(t, 85, Get[health](a).Current)
	require.Equal(t, 95, Get[health](b).Current)

	// Unknown event types dispatch to nobody.
	a.Dispatch("not an event")
	require.Equal(t, 85, Get[health](a).Current)
}

func TestMirrorIsIdempotent(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)
	defer m.Shutdown()

	n := tree.addNode("Once")
	// Duplicate add signals must not spawn a second entity.
	tree.watcher.OnNodeAdded(n)
	m.Frame(0.016)

	require.Equal(t, 1, m.EntityCount())
}

func TestShutdownDespawnsEverything(t *testing.T) {
	m, tree := newTestManager(SyncDisabled)

	tree.addNode("A")
	tree.addNode("B")
	m.Frame(0.016)
	entities := m.AllEntities()
	require.Len(t, entities, 2)

	m.Shutdown()
	require.Equal(t, 0, m.EntityCount())
	for _, e := range entities {
		require.True(t, e.Despawned())
	}
}

func TestFrameAndPhysicsCounters(t *testing.T) {
	m, _ := newTestManager(SyncDisabled)
	defer m.Shutdown()

	m.Frame(0.016)
	m.Frame(0.016)
	m.PhysicsStep(0.033)

	require.Equal(t, uint64(2), m.FrameCount())
	require.Equal(t, uint64(1), m.PhysicsCount())
}
