package gdecs

import (
	"fmt"
)

// NodeHandle is a lightweight reference to an engine scene node. It is
// comparable and usable as a map key: two handles are equal exactly when they
// refer to the same underlying node, no matter when each was constructed.
//
// The handle does not keep the node alive. If the engine frees the node,
// Resolve starts returning false and the handle is stale; consumers are
// expected to skip stale handles rather than treat them as errors.
type NodeHandle struct {
	id InstanceID
}

// HandleFor builds a handle for the given node.
func HandleFor(n Node) NodeHandle {
	return NodeHandle{id: n.InstanceID()}
}

// HandleForID builds a handle from a raw instance ID, for callers that only
// have the ID (e.g. deferred engine signals).
func HandleForID(id InstanceID) NodeHandle {
	return NodeHandle{id: id}
}

// ID returns the engine instance ID the handle refers to.
func (h NodeHandle) ID() InstanceID {
	return h.id
}

// Zero reports whether the handle refers to nothing.
func (h NodeHandle) Zero() bool {
	return h.id == 0
}

// Resolve returns the live node for this handle, or false if the node no
// longer exists.
func (h NodeHandle) Resolve(tree SceneTree) (Node, bool) {
	if h.id == 0 || tree == nil {
		return nil, false
	}
	return tree.Node(h.id)
}

// ResolveSpatial resolves the handle to a node with a transform. Returns
// false if the node is gone or is not spatial.
func (h NodeHandle) ResolveSpatial(tree SceneTree) (SpatialNode, bool) {
	n, ok := h.Resolve(tree)
	if !ok {
		return nil, false
	}
	sp, ok := n.(SpatialNode)
	return sp, ok
}

// String returns a debug representation.
func (h NodeHandle) String() string {
	return fmt.Sprintf("NodeHandle(%d)", h.id)
}
