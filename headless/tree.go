// Package headless provides an in-memory scene tree and tick driver for
// running the integration without a game engine. It is used by the examples
// and by tests.
package headless

import (
	"sync"

	"github.com/emberforge/gdecs"
)

// Node is a plain headless scene node.
type Node struct {
	tree *Tree
	id   gdecs.InstanceID

	mu     sync.RWMutex
	name   string
	groups []string
}

// InstanceID returns the node's identifier.
func (n *Node) InstanceID() gdecs.InstanceID {
	return n.id
}

// Name returns the node's name.
func (n *Node) Name() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.name
}

// Path returns the node's absolute path.
func (n *Node) Path() string {
	return "/root/" + n.Name()
}

// Groups returns the node's group names.
func (n *Node) Groups() []string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	out := make([]string, len(n.groups))
	copy(out, n.groups)
	return out
}

// Spatial is a headless node with a transform.
type Spatial struct {
	Node

	trMu sync.RWMutex
	tr   gdecs.Transform3D
}

// Transform returns the node's spatial state.
func (s *Spatial) Transform() gdecs.Transform3D {
	s.trMu.RLock()
	defer s.trMu.RUnlock()
	return s.tr
}

// SetTransform replaces the node's spatial state.
func (s *Spatial) SetTransform(t gdecs.Transform3D) {
	s.trMu.Lock()
	s.tr = t
	s.trMu.Unlock()
}

var (
	_ gdecs.Node        = (*Node)(nil)
	_ gdecs.SpatialNode = (*Spatial)(nil)
)

// Tree is an in-memory scene tree. Node additions, removals, renames and
// collision emissions notify the attached watcher, exactly like an engine
// binding would.
type Tree struct {
	mu      sync.RWMutex
	nodes   map[gdecs.InstanceID]gdecs.Node
	nextID  gdecs.InstanceID
	watcher *gdecs.Watcher
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{
		nodes: make(map[gdecs.InstanceID]gdecs.Node),
	}
}

// Attach connects the tree's notifications to a watcher. Nodes added before
// Attach are not replayed.
func (t *Tree) Attach(w *gdecs.Watcher) {
	t.mu.Lock()
	t.watcher = w
	t.mu.Unlock()
}

// Node returns the live node with the given ID.
func (t *Tree) Node(id gdecs.InstanceID) (gdecs.Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

// Len returns the number of live nodes.
func (t *Tree) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.nodes)
}

func (t *Tree) allocID() gdecs.InstanceID {
	t.nextID++
	return t.nextID
}

// AddNode adds a plain node to the tree and notifies the watcher.
func (t *Tree) AddNode(name string, groups ...string) *Node {
	t.mu.Lock()
	n := &Node{
		tree:   t,
		id:     t.allocID(),
		name:   name,
		groups: groups,
	}
	t.nodes[n.id] = n
	w := t.watcher
	t.mu.Unlock()

	if w != nil {
		w.OnNodeAdded(n)
	}
	return n
}

// AddSpatial adds a node with a transform to the tree and notifies the
// watcher.
func (t *Tree) AddSpatial(name string, tr gdecs.Transform3D, groups ...string) *Spatial {
	t.mu.Lock()
	s := &Spatial{
		Node: Node{
			tree:   t,
			id:     t.allocID(),
			name:   name,
			groups: groups,
		},
		tr: tr,
	}
	t.nodes[s.id] = s
	w := t.watcher
	t.mu.Unlock()

	if w != nil {
		w.OnNodeAdded(s)
	}
	return s
}

// FreeNode removes a node from the tree and notifies the watcher. Freeing an
// unknown ID is a no-op.
func (t *Tree) FreeNode(id gdecs.InstanceID) {
	t.mu.Lock()
	n, ok := t.nodes[id]
	if ok {
		delete(t.nodes, id)
	}
	w := t.watcher
	t.mu.Unlock()

	if ok && w != nil {
		w.OnNodeRemoved(n)
	}
}

// Rename changes a node's name and notifies the watcher.
func (t *Tree) Rename(id gdecs.InstanceID, name string) {
	t.mu.RLock()
	n, ok := t.nodes[id]
	w := t.watcher
	t.mu.RUnlock()
	if !ok {
		return
	}

	switch node := n.(type) {
	case *Spatial:
		node.mu.Lock()
		node.name = name
		node.mu.Unlock()
	case *Node:
		node.mu.Lock()
		node.name = name
		node.mu.Unlock()
	}

	if w != nil {
		w.OnNodeRenamed(n)
	}
}

// EmitCollision raises a collision signal between two nodes, as the engine's
// physics would. Unknown IDs still emit; resolution happens on drain.
func (t *Tree) EmitCollision(kind gdecs.SignalKind, origin, target gdecs.InstanceID) {
	t.mu.RLock()
	w := t.watcher
	t.mu.RUnlock()

	if w != nil {
		w.OnCollisionIDs(kind, origin, target)
	}
}
