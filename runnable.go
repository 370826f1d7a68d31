package gdecs

// Runnable is implemented by all systems. Run is invoked by the scheduler
// after the system's declared dependencies have been injected.
type Runnable interface {
	Run()
}
