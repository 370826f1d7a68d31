package gdecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setupCollisionPair(t *testing.T) (*Manager, *fakeTree, *Entity, *Entity) {
	t.Helper()

	m, tree := newTestManager(SyncDisabled)
	t.Cleanup(m.Shutdown)

	a := tree.addSpatial("A", IdentityTransform())
	b := tree.addSpatial("B", IdentityTransform())
	m.Frame(0.016)

	ea := m.EntityFor(HandleFor(a))
	eb := m.EntityFor(HandleFor(b))
	require.NotNil(t, ea)
	require.NotNil(t, eb)
	return m, tree, ea, eb
}

func TestCollisionStarted(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	ca := Get[Collisions](ea)
	cb := Get[Collisions](eb)
	require.NotNil(t, ca)
	require.NotNil(t, cb)

	require.Equal(t, []*Entity{eb}, ca.Colliding())
	require.Equal(t, []*Entity{eb}, ca.Recent())
	require.Equal(t, []*Entity{ea}, cb.Colliding())
	require.Equal(t, []*Entity{ea}, cb.Recent())
	require.True(t, ca.CollidingWith(eb))

	events := Resource[CollisionEvents](m).Events()
	require.Len(t, events, 1)
	require.Equal(t, CollisionStarted, events[0].Kind)
	require.Equal(t, ea.Handle(), events[0].Origin)
	require.Equal(t, eb.Handle(), events[0].Target)
}

func TestCollisionRecentClearsNextTick(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	// No new signals: contact persists, recency does not.
	m.PhysicsStep(0.033)

	ca := Get[Collisions](ea)
	require.Equal(t, []*Entity{eb}, ca.Colliding())
	require.Empty(t, ca.Recent())
	require.Empty(t, Resource[CollisionEvents](m).Events())
}

func TestCollisionEnded(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)
	tree.watcher.OnCollisionIDs(BodyExited, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	require.Empty(t, Get[Collisions](ea).Colliding())
	require.Empty(t, Get[Collisions](eb).Colliding())
	require.False(t, Get[Collisions](ea).CollidingWith(eb))
}

func TestCollisionEndedWithoutStarted(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.watcher.OnCollisionIDs(BodyExited, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	require.Empty(t, Get[Collisions](ea).Colliding())
	require.Empty(t, Get[Collisions](eb).Colliding())
}

func TestCollisionReferenceCounting(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	// Two distinct contacts between the same pair, e.g. two shapes.
	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	tree.watcher.OnCollisionIDs(AreaEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	ca := Get[Collisions](ea)
	require.Len(t, ca.Colliding(), 2)

	// Ending one contact keeps the pair colliding.
	tree.watcher.OnCollisionIDs(BodyExited, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)
	require.Equal(t, []*Entity{eb}, ca.Colliding())
	require.True(t, ca.CollidingWith(eb))

	tree.watcher.OnCollisionIDs(AreaExited, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)
	require.Empty(t, ca.Colliding())
}

func TestCollisionSignalAfterDrainVisibleNextTick(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	m.PhysicsStep(0.033)
	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())

	// The signal arrived after this tick's drain, so it must not be lost
	// and must surface on the following tick.
	require.Nil(t, Get[Collisions](ea))

	m.PhysicsStep(0.033)
	require.Equal(t, []*Entity{eb}, Get[Collisions](ea).Colliding())
}

func TestCollisionWithUnresolvedParticipantDropped(t *testing.T) {
	m, tree, ea, _ := setupCollisionPair(t)

	// A node that was never mirrored.
	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), 9999)
	m.PhysicsStep(0.033)

	c := Get[Collisions](ea)
	if c != nil {
		require.Empty(t, c.Colliding())
	}
}

func TestCollisionAgainstDespawnedEntityDropped(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.free(eb.Handle().ID())
	m.Frame(0.016)
	require.True(t, eb.Despawned())

	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)

	c := Get[Collisions](ea)
	if c != nil {
		require.Empty(t, c.Colliding())
	}
}

func TestDespawnClearsContactState(t *testing.T) {
	m, tree, ea, eb := setupCollisionPair(t)

	tree.watcher.OnCollisionIDs(BodyEntered, ea.Handle().ID(), eb.Handle().ID())
	m.PhysicsStep(0.033)
	require.True(t, Get[Collisions](ea).CollidingWith(eb))

	tree.free(eb.Handle().ID())
	m.Frame(0.016)

	// The surviving entity must not hold a pointer to the despawned one.
	require.Empty(t, Get[Collisions](ea).Colliding())
	require.Empty(t, Get[Collisions](ea).Recent())
}
