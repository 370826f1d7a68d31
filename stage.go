package gdecs

// Stage represents a scheduling stage for system execution.
//
// The core runs two independent schedules at different rates. The frame
// schedule (PreUpdate → Update → PostUpdate) runs once per rendered frame,
// driven by Manager.Frame. The physics schedule (PrePhysics → Physics →
// PostPhysics) runs once per engine physics step, driven by
// Manager.PhysicsStep, and is where frame-rate-independent systems belong.
type Stage int

const (
	// PreUpdate runs first in the frame schedule. Scene-tree mirroring and
	// engine→ECS transform reads happen here, before user logic.
	PreUpdate Stage = iota

	// Update is the main frame stage for game logic.
	Update

	// PostUpdate runs last in the frame schedule. ECS→engine transform
	// writes happen here, after all user systems.
	PostUpdate

	// PrePhysics runs first in the physics schedule. Collision signals are
	// drained and applied here, before user physics logic.
	PrePhysics

	// Physics is the main physics stage. Systems here observe the
	// PhysicsDelta for the step currently executing.
	Physics

	// PostPhysics runs last in the physics schedule.
	PostPhysics

	// stageCount is the total number of stages.
	stageCount
)

// Frame and physics schedule bounds.
const (
	firstFrameStage   = PreUpdate
	lastFrameStage    = PostUpdate
	firstPhysicsStage = PrePhysics
	lastPhysicsStage  = PostPhysics
)

// String returns the string representation of the stage.
func (s Stage) String() string {
	switch s {
	case PreUpdate:
		return "PreUpdate"
	case Update:
		return "Update"
	case PostUpdate:
		return "PostUpdate"
	case PrePhysics:
		return "PrePhysics"
	case Physics:
		return "Physics"
	case PostPhysics:
		return "PostPhysics"
	default:
		return "Unknown"
	}
}
