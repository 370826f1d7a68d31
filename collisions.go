package gdecs

import (
	"go.uber.org/zap"
)

// CollisionKind is the phase of a collision contact.
type CollisionKind uint8

const (
	// CollisionStarted reports a contact that began.
	CollisionStarted CollisionKind = iota

	// CollisionEnded reports a contact that ended.
	CollisionEnded
)

// String returns the string representation of the kind.
func (k CollisionKind) String() string {
	switch k {
	case CollisionStarted:
		return "started"
	case CollisionEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// CollisionEvent is one translated collision signal. Origin is the node whose
// monitoring raised the signal, Target the node it touched. Both handles are
// resolved against the entity space when the event is applied; events whose
// participants are no longer mirrored are dropped.
type CollisionEvent struct {
	Kind   CollisionKind
	Origin NodeHandle
	Target NodeHandle
}

// CollisionEvents is the shared resource carrying the collision events
// translated this physics tick. Reset on every drain, so readers see exactly
// the current tick's events.
type CollisionEvents struct {
	events []CollisionEvent
}

// Events returns this tick's collision events in signal order.
func (c *CollisionEvents) Events() []CollisionEvent {
	return c.events
}

func (c *CollisionEvents) reset() {
	c.events = c.events[:0]
}

// Collisions tracks the contact state of one monitoring entity. The component
// is attached automatically when the entity's first collision event is
// applied; entities that never collide never carry it.
//
// Contacts are reference counted: overlapping started signals for the same
// pair keep the pair colliding until a matching number of ended signals
// arrive.
type Collisions struct {
	colliding []*Entity
	recent    []*Entity
}

// Colliding returns the entities currently in contact. Pairs with multiple
// active contacts appear once per contact.
func (c *Collisions) Colliding() []*Entity {
	return c.colliding
}

// Recent returns the entities whose contact started during the current
// physics tick.
func (c *Collisions) Recent() []*Entity {
	return c.recent
}

// CollidingWith reports whether the entity is currently in contact with
// other.
func (c *Collisions) CollidingWith(other *Entity) bool {
	for _, e := range c.colliding {
		if e == other {
			return true
		}
	}
	return false
}

func (c *Collisions) started(other *Entity) {
	c.colliding = append(c.colliding, other)
	c.recent = append(c.recent, other)
}

// ended removes one occurrence of other from the active set. An ended signal
// with no matching started is ignored.
func (c *Collisions) ended(other *Entity) {
	for i, e := range c.colliding {
		if e == other {
			c.colliding = append(c.colliding[:i], c.colliding[i+1:]...)
			return
		}
	}
}

// collisionDrainSystem translates queued raw collision signals into
// CollisionEvents. It runs before collisionApplySystem in the same stage, so
// every event drained this tick is also applied this tick.
type collisionDrainSystem struct {
	Manager *Manager
	Events  *CollisionEvents `gdecs:"res,mut"`
}

func (s *collisionDrainSystem) Run() {
	s.Events.reset()

	for _, raw := range s.Manager.collisionQueue.drain() {
		kind := CollisionEnded
		if raw.kind.Started() {
			kind = CollisionStarted
		}
		s.Events.events = append(s.Events.events, CollisionEvent{
			Kind:   kind,
			Origin: raw.origin,
			Target: raw.target,
		})
	}

	if n := len(s.Events.events); n > 0 {
		s.Manager.log.Debug("translated collision signals", zap.Int("events", n))
	}
}

// collisionApplySystem folds this tick's CollisionEvents into the Collisions
// components of both participants. Events referring to nodes that are no
// longer mirrored are dropped; the despawn already invalidated their contact
// state.
type collisionApplySystem struct {
	Manager *Manager
	Events  *CollisionEvents `gdecs:"res"`
}

func (s *collisionApplySystem) Run() {
	m := s.Manager

	for _, e := range m.AllEntities() {
		if c := Get[Collisions](e); c != nil {
			c.recent = c.recent[:0]
		}
	}

	for _, ev := range s.Events.events {
		origin := m.EntityFor(ev.Origin)
		target := m.EntityFor(ev.Target)
		if origin == nil || target == nil {
			continue
		}

		oc := collisionsOf(origin)
		tc := collisionsOf(target)

		switch ev.Kind {
		case CollisionStarted:
			oc.started(target)
			tc.started(origin)
		case CollisionEnded:
			oc.ended(target)
			tc.ended(origin)
		}
	}
}

func collisionsOf(e *Entity) *Collisions {
	if c := Get[Collisions](e); c != nil {
		return c
	}
	c := &Collisions{}
	Add(e, c)
	return c
}
