package headless

import (
	"context"
	"time"

	"github.com/emberforge/gdecs"
)

// Driver ticks a manager the way an engine main loop would: frame and
// physics ticks interleaved on a single goroutine, so the main-thread
// guarantee the manager gives its systems holds.
type Driver struct {
	m *gdecs.Manager

	frameInterval   time.Duration
	physicsInterval time.Duration
}

// NewDriver creates a driver ticking frames at frameHz and physics at
// physicsHz. Non-positive rates default to 60 and 30.
func NewDriver(m *gdecs.Manager, frameHz, physicsHz int) *Driver {
	if frameHz <= 0 {
		frameHz = 60
	}
	if physicsHz <= 0 {
		physicsHz = 30
	}
	return &Driver{
		m:               m,
		frameInterval:   time.Second / time.Duration(frameHz),
		physicsInterval: time.Second / time.Duration(physicsHz),
	}
}

// Run ticks the manager until the context is cancelled. Blocks the calling
// goroutine; that goroutine acts as the engine's main thread.
func (d *Driver) Run(ctx context.Context) error {
	frame := time.NewTicker(d.frameInterval)
	defer frame.Stop()
	physics := time.NewTicker(d.physicsInterval)
	defer physics.Stop()

	lastFrame := time.Now()
	lastPhysics := lastFrame

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case now := <-frame.C:
			d.m.Frame(now.Sub(lastFrame).Seconds())
			lastFrame = now

		case now := <-physics.C:
			d.m.PhysicsStep(now.Sub(lastPhysics).Seconds())
			lastPhysics = now
		}
	}
}

// Step runs one frame tick and one physics tick with fixed deltas. For tests
// and deterministic simulation.
func (d *Driver) Step(frameDelta, physicsDelta float64) {
	d.m.Frame(frameDelta)
	d.m.PhysicsStep(physicsDelta)
}
