package gdecs

import (
	"sync/atomic"
)

// rawCollision is one untranslated engine collision signal.
type rawCollision struct {
	kind   SignalKind
	origin NodeHandle
	target NodeHandle
}

// sceneOp is the kind of a scene-tree notification.
type sceneOp uint8

const (
	opNodeAdded sceneOp = iota
	opNodeRemoved
	opNodeRenamed
)

// sceneSignal is one untranslated scene-tree notification.
type sceneSignal struct {
	op sceneOp
	id InstanceID
}

// signalNode is one link in a signalQueue.
type signalNode[T any] struct {
	val  T
	next *signalNode[T]
}

// signalQueue hands signals from the engine's callback context to the ECS
// drain. Single producer (engine thread), single consumer (the thread driving
// Frame/PhysicsStep). Pushing is lock-free: the producer prepends to an atomic
// list and never waits for the consumer, no matter where the drain is in its
// work. Capacity is bounded only by memory. Draining detaches the whole list
// at once, so signals pushed after a drain surface on the next drain.
type signalQueue[T any] struct {
	head atomic.Pointer[signalNode[T]]

	// out is the consumer-side scratch buffer reused across drains.
	out []T
}

// push enqueues one signal. Called from the engine callback; never blocks.
func (q *signalQueue[T]) push(v T) {
	n := &signalNode[T]{val: v}
	for {
		n.next = q.head.Load()
		if q.head.CompareAndSwap(n.next, n) {
			return
		}
	}
}

// drain removes and returns all currently-queued signals, in push order,
// without blocking. The returned slice is valid until the next drain.
func (q *signalQueue[T]) drain() []T {
	q.out = q.out[:0]
	for n := q.head.Swap(nil); n != nil; n = n.next {
		q.out = append(q.out, n.val)
	}
	// The list is newest-first; restore arrival order.
	for i, j := 0, len(q.out)-1; i < j; i, j = i+1, j-1 {
		q.out[i], q.out[j] = q.out[j], q.out[i]
	}
	return q.out
}

// pending returns the number of queued signals. For tests and diagnostics.
func (q *signalQueue[T]) pending() int {
	n := 0
	for p := q.head.Load(); p != nil; p = p.next {
		n++
	}
	return n
}
