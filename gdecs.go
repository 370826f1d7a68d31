// Package gdecs provides an entity component system layered over a
// scene-tree game engine.
//
// gdecs mirrors engine scene nodes into ECS entities and keeps the two
// worlds synchronized:
//   - Entity mirroring for nodes entering and leaving the scene tree
//   - Component-based data storage per mirrored node
//   - Declarative dependency injection via struct tags
//   - Engine-driven frame and physics schedules with parallel system batches
//   - Transform synchronization between ECS and engine nodes
//   - Collision signal translation into per-entity contact state
//
// # Quick Start
//
// Initialize the integration in your engine setup:
//
//	bundle := gdecs.NewBundle("MyGame").
//	    System(&MovementSystem{}, gdecs.Update).
//	    System(&DamageSystem{}, gdecs.Physics)
//
//	mngr := gdecs.NewBuilder().
//	    Tree(tree).
//	    Bundle(bundle.Build()).
//	    Init()
//
// Connect the engine's callbacks to the manager:
//
//	w := mngr.Watcher()   // scene-tree and collision signals
//	mngr.Frame(delta)     // once per rendered frame, on the engine thread
//	mngr.PhysicsStep(dt)  // once per physics step, on the engine thread
//
// # Components
//
// Components are plain Go structs attached to entities:
//
//	type Health struct {
//	    Current int
//	    Max     int
//	}
//
//	gdecs.Add(e, &Health{100, 100})
//	health := gdecs.Get[Health](e)
//	gdecs.Remove[Health](e)
//
// # Systems
//
// Systems declare dependencies via struct tags:
//
//	type MovementSystem struct {
//	    Entity    *gdecs.Entity
//	    Transform *gdecs.Transform    `gdecs:"mut"`
//	    Speed     *Speed
//	    Shield    *Shield             `gdecs:"opt"`
//	    Time      *gdecs.Time         `gdecs:"res"`
//	    _         gdecs.Without[Frozen]
//	}
//
// A system without an *Entity field is global and runs once per tick. A
// system declaring the MainThread resource runs inline on the engine thread.
//
// # Tag Reference
//
//	(none)          Required read-only component
//	gdecs:"mut"     Required mutable component
//	gdecs:"opt"     Optional (nil if missing)
//	gdecs:"opt,mut" Optional mutable
//	gdecs:"res"     Shared resource
//	gdecs:"res,mut" Mutable resource
//	gdecs:"inj"     Global injection
package gdecs

// Version is the gdecs version.
const Version = "1.0.0"
