package gdecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHandleEquality(t *testing.T) {
	tree := newFakeTree()
	n := tree.addNode("Thing")

	h1 := HandleFor(n)
	h2 := HandleForID(n.id)
	require.Equal(t, h1, h2)
	require.Equal(t, n.id, h1.ID())

	// Usable as a map key.
	seen := map[NodeHandle]int{h1: 1}
	require.Equal(t, 1, seen[h2])

	other := tree.addNode("Other")
	require.NotEqual(t, h1, HandleFor(other))
}

func TestHandleResolve(t *testing.T) {
	tree := newFakeTree()
	n := tree.addNode("Alive")

	h := HandleFor(n)
	got, ok := h.Resolve(tree)
	require.True(t, ok)
	require.Equal(t, n, got)

	tree.free(n.id)
	_, ok = h.Resolve(tree)
	require.False(t, ok)
}

func TestHandleResolveSpatial(t *testing.T) {
	tree := newFakeTree()
	plain := tree.addNode("Plain")
	spatial := tree.addSpatial("Spatial", IdentityTransform())

	_, ok := HandleFor(plain).ResolveSpatial(tree)
	require.False(t, ok)

	sp, ok := HandleFor(spatial).ResolveSpatial(tree)
	require.True(t, ok)
	require.Equal(t, spatial, sp)
}

func TestHandleZero(t *testing.T) {
	var h NodeHandle
	require.True(t, h.Zero())
	_, ok := h.Resolve(newFakeTree())
	require.False(t, ok)

	require.False(t, HandleForID(1).Zero())
}
