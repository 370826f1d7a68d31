package gdecs

import (
	"github.com/go-gl/mathgl/mgl64"
)

// InstanceID identifies an engine node for the node's lifetime.
// IDs are assigned by the engine and never reused while the node is alive.
type InstanceID uint64

// Transform3D is the spatial state of an engine node.
type Transform3D struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

// IdentityTransform returns a transform at the origin with no rotation and unit scale.
func IdentityTransform() Transform3D {
	return Transform3D{
		Rotation: mgl64.QuatIdent(),
		Scale:    mgl64.Vec3{1, 1, 1},
	}
}

// Node is the engine-side view of a scene-tree node. The engine owns the node;
// the core only holds weak references to it via NodeHandle.
//
// All Node methods must be called on the engine's main thread. Systems that
// touch nodes declare the MainThread marker resource to get that guarantee.
type Node interface {
	// InstanceID returns the engine-assigned identifier for this node.
	InstanceID() InstanceID

	// Name returns the node's name within its parent.
	Name() string

	// Path returns the absolute scene-tree path of the node.
	Path() string

	// Groups returns the names of the scene-tree groups this node belongs to.
	Groups() []string
}

// SpatialNode is a Node that carries a transform (the engine's Node2D/Node3D
// family). Only spatial nodes participate in transform syncing.
type SpatialNode interface {
	Node

	Transform() Transform3D
	SetTransform(t Transform3D)
}

// SceneTree is the engine-side lookup surface the core resolves handles
// against. Implemented by the engine binding, or by headless.Tree for
// engine-less operation.
type SceneTree interface {
	// Node returns the live node with the given ID, or false if the engine
	// has freed it.
	Node(id InstanceID) (Node, bool)
}

// SignalKind is the kind of a raw engine collision signal.
type SignalKind uint8

const (
	BodyEntered SignalKind = iota
	BodyExited
	AreaEntered
	AreaExited
)

// Started reports whether the signal begins a collision.
func (k SignalKind) Started() bool {
	return k == BodyEntered || k == AreaEntered
}

// String returns the engine-side signal name.
func (k SignalKind) String() string {
	switch k {
	case BodyEntered:
		return "body_entered"
	case BodyExited:
		return "body_exited"
	case AreaEntered:
		return "area_entered"
	case AreaExited:
		return "area_exited"
	default:
		return "unknown"
	}
}
