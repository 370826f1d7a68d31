package gdecs

import (
	"runtime"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Scheduler executes systems stage by stage when the engine drives a tick.
// Non-conflicting systems within a stage run in parallel on a worker pool;
// systems declaring the MainThread marker run inline on the goroutine that
// invoked the tick, which is the engine's thread.
type Scheduler struct {
	manager *Manager

	// System management
	systems [stageCount][]*systemState
	batches [stageCount][][]*systemState
	mu      sync.RWMutex
	nextSeq int

	// Worker pool
	workers  int
	jobs     chan func()
	workerWG sync.WaitGroup

	running atomic.Bool
}

// systemState tracks the execution state of a single registered system.
type systemState struct {
	meta     *SystemMeta
	interval time.Duration
	lastRun  time.Time
	nextRun  time.Time

	// seq preserves registration order. Batches are built in this order so
	// systems registered earlier in a stage never run after systems
	// registered later.
	seq int
}

// ShouldRun checks if the system is due at the given time.
func (st *systemState) ShouldRun(now time.Time) bool {
	if st.interval == 0 {
		return true
	}
	return !now.Before(st.nextRun)
}

// MarkRun updates the last run time and schedules the next run.
func (st *systemState) MarkRun(now time.Time) {
	st.lastRun = now
	if st.interval > 0 {
		// Drift-free timing
		st.nextRun = st.nextRun.Add(st.interval)
		if st.nextRun.Before(now) {
			// Catch up if we're behind
			st.nextRun = now.Add(st.interval)
		}
	}
}

// newScheduler creates a new scheduler.
func newScheduler(manager *Manager, workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers < 1 {
		workers = 1
	}

	return &Scheduler{
		manager: manager,
		workers: workers,
		jobs:    make(chan func(), workers*4),
	}
}

// Start spins up the worker pool. Ticks are driven externally through
// runStages; the scheduler has no loop of its own.
func (s *Scheduler) Start() {
	if s.running.Swap(true) {
		return // Already running
	}

	for i := 0; i < s.workers; i++ {
		s.workerWG.Add(1)
		go s.worker()
	}
}

// Stop shuts down the worker pool. In-flight jobs complete first.
func (s *Scheduler) Stop() {
	if !s.running.Swap(false) {
		return // Not running
	}

	close(s.jobs)
	s.workerWG.Wait()
}

// worker is a pool worker that executes jobs.
func (s *Scheduler) worker() {
	defer s.workerWG.Done()
	for fn := range s.jobs {
		fn()
	}
}

// addSystem registers a system with the scheduler.
func (s *Scheduler) addSystem(meta *SystemMeta, interval time.Duration, stage Stage) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := &systemState{
		meta:     meta,
		interval: interval,
		nextRun:  time.Now(),
		seq:      s.nextSeq,
	}
	s.nextSeq++

	s.systems[stage] = append(s.systems[stage], state)
	s.rebuildBatches(stage)
}

// rebuildBatches recomputes the execution batches for a stage based on
// conflicts. Systems are considered in registration order, so a batch never
// contains a system registered after one it conflicts with, and batches
// execute in registration order.
func (s *Scheduler) rebuildBatches(stage Stage) {
	systems := s.systems[stage]
	if len(systems) == 0 {
		s.batches[stage] = nil
		return
	}

	var batches [][]*systemState

	remaining := make([]*systemState, len(systems))
	copy(remaining, systems)

	for len(remaining) > 0 {
		var batch []*systemState
		var nextRemaining []*systemState

		for _, candidate := range remaining {
			conflict := false
			for _, existing := range batch {
				if conflicts(candidate.meta, existing.meta) {
					conflict = true
					break
				}
			}
			// Once a system is deferred, everything after it defers too,
			// preserving registration order across batches.
			if conflict || len(nextRemaining) > 0 {
				nextRemaining = append(nextRemaining, candidate)
			} else {
				batch = append(batch, candidate)
			}
		}

		batches = append(batches, batch)
		remaining = nextRemaining
	}

	s.batches[stage] = batches
}

// conflicts reports whether two systems may not run concurrently.
func conflicts(a, b *SystemMeta) bool {
	if a.Exclusive || b.Exclusive {
		return true
	}
	return a.Access.Conflicts(&b.Access)
}

// runStages executes all stages in [first, last] in order. Called by the
// manager from Frame and PhysicsStep on the engine's thread.
func (s *Scheduler) runStages(now time.Time, first, last Stage) {
	for stage := first; stage <= last; stage++ {
		s.runStage(now, stage)
	}
}

// runStage executes one stage's batches. Within a batch, systems without the
// MainThread marker run on the worker pool; marked systems run inline after
// the workers are dispatched. The batch completes before the next starts.
func (s *Scheduler) runStage(now time.Time, stage Stage) {
	s.mu.RLock()
	batches := s.batches[stage]
	s.mu.RUnlock()

	for _, batch := range batches {
		var due []*systemState
		for _, st := range batch {
			if st.ShouldRun(now) {
				due = append(due, st)
			}
		}
		if len(due) == 0 {
			continue
		}

		var wg sync.WaitGroup
		var inline []*systemState

		for _, st := range due {
			if st.meta.NeedsMainThread {
				inline = append(inline, st)
				continue
			}

			wg.Add(1)
			st := st
			job := func() {
				defer wg.Done()
				s.executeSystem(st)
			}

			select {
			case s.jobs <- job:
			default:
				// Worker pool full, run inline
				job()
			}
		}

		for _, st := range inline {
			s.executeSystem(st)
		}

		wg.Wait()

		for _, st := range due {
			st.MarkRun(now)
		}
	}
}

// executeSystem runs one system. Global systems run once; per-entity systems
// run for every entity passing the bitmask filter.
func (s *Scheduler) executeSystem(st *systemState) {
	system := st.meta.Pool.Get().(Runnable)
	defer func() {
		zeroSystem(system, st.meta)
		st.meta.Pool.Put(system)
	}()

	if st.meta.Global {
		if !injectSystem(system, nil, st.meta, s.manager) {
			return
		}
		s.runGuarded(system, st.meta)
		return
	}

	for _, e := range s.manager.AllEntities() {
		if e.Despawned() {
			continue
		}
		if !e.canRun(st.meta) {
			continue
		}

		if !injectSystem(system, e, st.meta, s.manager) {
			// Zero before next iteration to prevent stale data
			zeroSystem(system, st.meta)
			continue
		}

		s.runGuarded(system, st.meta)

		// Zero after each execution for safety
		zeroSystem(system, st.meta)
	}
}

// runGuarded executes a system with panic recovery. A panicking system is
// logged and skipped; the tick continues.
func (s *Scheduler) runGuarded(system Runnable, meta *SystemMeta) {
	defer func() {
		if r := recover(); r != nil {
			s.manager.log.Error("panic in system",
				zap.String("system", meta.Name),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()),
			)
		}
	}()
	system.Run()
}
