package gdecs

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
)

// SyncMode selects how spatial transforms flow between the ECS and the
// engine's node tree. The mode is fixed at setup; there is no runtime
// transition between modes.
type SyncMode uint8

const (
	// SyncDisabled performs no transform synchronization. The engine's own
	// motion APIs are the sole source of truth. Use when the host manages
	// physics directly.
	SyncDisabled SyncMode = iota

	// SyncOneWay writes ECS transform changes to engine nodes once per
	// frame, after all user systems. Engine-side changes are never read
	// back. This is the default.
	SyncOneWay

	// SyncTwoWay additionally reads engine transforms into the ECS at the
	// start of each frame. When both sides changed in the same frame the
	// ECS write wins: the engine read is skipped for components mutated
	// since the last write-back, and the ECS value is written last.
	SyncTwoWay
)

// String returns the string representation of the mode.
func (m SyncMode) String() string {
	switch m {
	case SyncDisabled:
		return "disabled"
	case SyncOneWay:
		return "one-way"
	case SyncTwoWay:
		return "two-way"
	default:
		return "unknown"
	}
}

// ParseSyncMode parses a mode name as used in configuration files.
func ParseSyncMode(s string) (SyncMode, error) {
	switch s {
	case "disabled":
		return SyncDisabled, nil
	case "one-way", "":
		return SyncOneWay, nil
	case "two-way":
		return SyncTwoWay, nil
	default:
		return SyncDisabled, fmt.Errorf("gdecs: unknown transform sync mode %q", s)
	}
}

// TransformConfig is the shared resource carrying the active sync mode.
// Read by the built-in sync systems every frame; set once at setup.
type TransformConfig struct {
	Mode SyncMode
}

// Transform is the ECS-side spatial state of a mirrored node. Mutators mark
// the component dirty; the write-back system clears the mark after pushing
// the value to the engine node.
type Transform struct {
	position mgl64.Vec3
	rotation mgl64.Quat
	scale    mgl64.Vec3
	dirty    bool
}

// NewTransform returns an identity transform.
func NewTransform() *Transform {
	t := &Transform{}
	t.setIdentity()
	return t
}

func (t *Transform) setIdentity() {
	t.position = mgl64.Vec3{}
	t.rotation = mgl64.QuatIdent()
	t.scale = mgl64.Vec3{1, 1, 1}
}

// Attach initializes a zero-valued Transform to identity so that
// registry-spawned default components are usable immediately.
func (t *Transform) Attach(_ *Entity) {
	if t.scale == (mgl64.Vec3{}) && t.rotation == (mgl64.Quat{}) {
		t.setIdentity()
	}
}

// Position returns the current position.
func (t *Transform) Position() mgl64.Vec3 { return t.position }

// Rotation returns the current rotation.
func (t *Transform) Rotation() mgl64.Quat { return t.rotation }

// Scale returns the current scale.
func (t *Transform) Scale() mgl64.Vec3 { return t.scale }

// SetPosition sets the position and marks the transform dirty.
func (t *Transform) SetPosition(p mgl64.Vec3) {
	t.position = p
	t.dirty = true
}

// Translate offsets the position and marks the transform dirty.
func (t *Transform) Translate(delta mgl64.Vec3) {
	t.position = t.position.Add(delta)
	t.dirty = true
}

// SetRotation sets the rotation and marks the transform dirty.
func (t *Transform) SetRotation(q mgl64.Quat) {
	t.rotation = q
	t.dirty = true
}

// SetScale sets the scale and marks the transform dirty.
func (t *Transform) SetScale(s mgl64.Vec3) {
	t.scale = s
	t.dirty = true
}

// Set replaces the whole spatial state and marks the transform dirty.
func (t *Transform) Set(tr Transform3D) {
	t.position = tr.Position
	t.rotation = tr.Rotation
	t.scale = tr.Scale
	t.dirty = true
}

// Spatial returns the transform as an engine-facing value.
func (t *Transform) Spatial() Transform3D {
	return Transform3D{Position: t.position, Rotation: t.rotation, Scale: t.scale}
}

// Dirty reports whether the transform changed since the last write-back.
func (t *Transform) Dirty() bool { return t.dirty }

// setFromEngine overwrites the spatial state without marking dirty, so an
// engine read does not trigger a redundant write-back.
func (t *Transform) setFromEngine(tr Transform3D) {
	t.position = tr.Position
	t.rotation = tr.Rotation
	t.scale = tr.Scale
	t.dirty = false
}

// transformReadSystem pulls engine transforms into the ECS at the start of
// the frame. Registered only in two-way mode. Components mutated since the
// last write-back are skipped so the ECS change survives the frame.
type transformReadSystem struct {
	Entity    *Entity
	Transform *Transform  `gdecs:"mut"`
	MT        *MainThread `gdecs:"res"`
}

func (s *transformReadSystem) Run() {
	if s.Transform.dirty {
		return
	}
	node, ok := s.Entity.Handle().ResolveSpatial(s.Entity.Manager().Tree())
	if !ok {
		return
	}
	s.Transform.setFromEngine(node.Transform())
}

// transformWriteSystem pushes dirty ECS transforms onto engine nodes at the
// end of the frame. Registered in one-way and two-way modes.
type transformWriteSystem struct {
	Entity    *Entity
	Transform *Transform  `gdecs:"mut"`
	MT        *MainThread `gdecs:"res"`
}

func (s *transformWriteSystem) Run() {
	if !s.Transform.dirty {
		return
	}
	node, ok := s.Entity.Handle().ResolveSpatial(s.Entity.Manager().Tree())
	if !ok {
		// Stale handle; the despawn will be mirrored on the next scene
		// flush.
		return
	}
	node.SetTransform(s.Transform.Spatial())
	s.Transform.dirty = false
}
