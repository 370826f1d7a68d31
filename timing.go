package gdecs

import (
	"time"
)

// PhysicsDelta carries the elapsed time of the physics step currently
// executing. It is refreshed by the manager immediately before the physics
// stages run, so physics systems never observe a value from a previous step.
//
// All systems other than the timing refresh treat this resource as read-only.
type PhysicsDelta struct {
	// Seconds is the elapsed time since the previous physics step.
	// Never negative.
	Seconds float64
}

// Delta returns the physics step duration.
func (d *PhysicsDelta) Delta() time.Duration {
	return time.Duration(d.Seconds * float64(time.Second))
}

// Time carries frame-schedule timing. Refreshed by the manager before the
// frame stages run.
type Time struct {
	// Delta is the elapsed seconds since the previous frame.
	Delta float64

	// Elapsed is the total seconds since the manager started.
	Elapsed float64
}

// MainThread is a zero-sized marker resource. Its presence in a system's
// dependency declaration signals that the system calls engine APIs, which are
// only safe on the engine's main thread. The scheduler runs such systems
// inline on the goroutine that invoked Frame or PhysicsStep - the engine's
// thread - instead of on worker goroutines.
//
// The marker's value carries no information; only the declared dependency
// matters.
type MainThread struct{}
