package gdecs

import (
	"sync"

	"go.uber.org/zap"
)

// fakeTree is a minimal in-memory scene tree for tests.
type fakeTree struct {
	mu      sync.RWMutex
	nodes   map[InstanceID]Node
	nextID  InstanceID
	watcher *Watcher
}

func newFakeTree() *fakeTree {
	return &fakeTree{nodes: make(map[InstanceID]Node)}
}

func (t *fakeTree) Node(id InstanceID) (Node, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n, ok := t.nodes[id]
	return n, ok
}

func (t *fakeTree) addNode(name string, groups ...string) *fakeNode {
	t.mu.Lock()
	t.nextID++
	n := &fakeNode{id: t.nextID, name: name, groups: groups}
	t.nodes[n.id] = n
	w := t.watcher
	t.mu.Unlock()
	if w != nil {
		w.OnNodeAdded(n)
	}
	return n
}

func (t *fakeTree) addSpatial(name string, tr Transform3D, groups ...string) *fakeSpatial {
	t.mu.Lock()
	t.nextID++
	n := &fakeSpatial{fakeNode: fakeNode{id: t.nextID, name: name, groups: groups}, tr: tr}
	t.nodes[n.id] = n
	w := t.watcher
	t.mu.Unlock()
	if w != nil {
		w.OnNodeAdded(n)
	}
	return n
}

func (t *fakeTree) free(id InstanceID) {
	t.mu.Lock()
	n, ok := t.nodes[id]
	delete(t.nodes, id)
	w := t.watcher
	t.mu.Unlock()
	if ok && w != nil {
		w.OnNodeRemoved(n)
	}
}

func (t *fakeTree) rename(id InstanceID, name string) {
	t.mu.Lock()
	n, ok := t.nodes[id]
	w := t.watcher
	t.mu.Unlock()
	if !ok {
		return
	}
	switch node := n.(type) {
	case *fakeNode:
		node.name = name
	case *fakeSpatial:
		node.name = name
	}
	if w != nil {
		w.OnNodeRenamed(n)
	}
}

type fakeNode struct {
	id     InstanceID
	name   string
	groups []string
}

func (n *fakeNode) InstanceID() InstanceID { return n.id }
func (n *fakeNode) Name() string           { return n.name }
func (n *fakeNode) Path() string           { return "/root/" + n.name }
func (n *fakeNode) Groups() []string       { return n.groups }

type fakeSpatial struct {
	fakeNode
	tr Transform3D
}

func (n *fakeSpatial) Transform() Transform3D     { return n.tr }
func (n *fakeSpatial) SetTransform(t Transform3D) { n.tr = t }

// newTestManager builds a manager against a fresh fake tree with the watcher
// attached. Tests drive ticks through Manager.Frame and Manager.PhysicsStep.
func newTestManager(mode SyncMode, configure ...func(*Builder)) (*Manager, *fakeTree) {
	tree := newFakeTree()

	b := NewBuilder().
		Tree(tree).
		Logger(zap.NewNop()).
		TransformMode(mode).
		Workers(2)
	for _, fn := range configure {
		fn(b)
	}

	m := b.Init()
	tree.watcher = m.Watcher()
	return m, tree
}
