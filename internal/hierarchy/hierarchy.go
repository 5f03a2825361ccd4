// Package hierarchy implements a generic tree whose nodes are located by an
// injected equivalence function rather than by key.
//
// The tree models naturally shallow, branching hierarchies (tile trees,
// dependency trees), so lookups are a pre-order walk from the root and no
// auxiliary index is kept.
//
// A Store is not safe for concurrent use.
package hierarchy

import "errors"

// Sentinel errors for structural insert failures.
var (
	// ErrParentNotFound indicates the named parent is not in the store.
	ErrParentNotFound = errors.New("hierarchy: parent not found")

	// ErrRootExists indicates a parentless insert into a non-empty store.
	ErrRootExists = errors.New("hierarchy: store already has a root")
)

// EqualFunc reports whether a and b denote the same item.
// It must be an equivalence relation for the lifetime of the store.
type EqualFunc[T any] func(a, b T) bool

// Node is a single tree node.
// A node is owned by its parent's child slice; the parent pointer is for
// upward lookups only.
type Node[T any] struct {
	value    T
	parent   *Node[T]
	children []*Node[T]
}

// Value returns the node payload.
func (n *Node[T]) Value() T {
	return n.value
}

// Parent returns the parent node, or nil for the root.
func (n *Node[T]) Parent() *Node[T] {
	return n.parent
}

// Children returns the node's children in insertion order.
// The returned slice must not be modified.
func (n *Node[T]) Children() []*Node[T] {
	return n.children
}

// IsLeaf reports whether the node has no children.
func (n *Node[T]) IsLeaf() bool {
	return len(n.children) == 0
}

// Depth returns the number of ancestors above n.
func (n *Node[T]) Depth() int {
	d := 0
	for p := n.parent; p != nil; p = p.parent {
		d++
	}
	return d
}

// Walk visits n and all of its descendants in pre-order.
func (n *Node[T]) Walk(visit func(*Node[T])) {
	visit(n)
	for _, c := range n.children {
		c.Walk(visit)
	}
}

// Store is a tree of T with at most one root.
type Store[T any] struct {
	root  *Node[T]
	equal EqualFunc[T]
	size  int
}

// New creates an empty store using equal for identity lookups.
func New[T any](equal EqualFunc[T]) *Store[T] {
	return &Store[T]{equal: equal}
}

// Len returns the number of nodes in the store.
func (s *Store[T]) Len() int {
	return s.size
}

// Root returns the root node, or nil if the store is empty.
func (s *Store[T]) Root() *Node[T] {
	return s.root
}

// Insert makes item the root of an empty store.
// Returns ErrRootExists if the store already has a root.
func (s *Store[T]) Insert(item T) error {
	if s.root != nil {
		return ErrRootExists
	}
	s.root = &Node[T]{value: item}
	s.size = 1
	return nil
}

// InsertUnder appends item as the last child of the node equal to parent.
// Returns ErrParentNotFound, leaving the store unchanged, if no such node
// exists. Uniqueness of item is the caller's responsibility.
func (s *Store[T]) InsertUnder(item, parent T) error {
	p := s.Search(parent)
	if p == nil {
		return ErrParentNotFound
	}
	p.children = append(p.children, &Node[T]{value: item, parent: p})
	s.size++
	return nil
}

// Search returns the first node, in pre-order, whose payload equals item.
func (s *Store[T]) Search(item T) *Node[T] {
	if s.root == nil {
		return nil
	}
	return s.search(s.root, item)
}

func (s *Store[T]) search(n *Node[T], item T) *Node[T] {
	if s.equal(n.value, item) {
		return n
	}
	for _, c := range n.children {
		if found := s.search(c, item); found != nil {
			return found
		}
	}
	return nil
}

// Has reports whether an item equal to item is stored.
func (s *Store[T]) Has(item T) bool {
	return s.Search(item) != nil
}

// IsLeaf reports whether item is stored and has no children.
func (s *Store[T]) IsLeaf(item T) bool {
	n := s.Search(item)
	return n != nil && n.IsLeaf()
}

// RemoveSubtree removes item and all of its descendants.
// onRemoved, if non-nil, is called once per removed payload in pre-order,
// before the subtree is detached. Returns false if item is absent.
func (s *Store[T]) RemoveSubtree(item T, onRemoved func(T)) bool {
	n := s.Search(item)
	if n == nil {
		return false
	}
	s.RemoveNode(n, onRemoved)
	return true
}

// RemoveIfLeaf removes item only if it is a leaf.
// Returns false without side effects otherwise.
func (s *Store[T]) RemoveIfLeaf(item T, onRemoved func(T)) bool {
	n := s.Search(item)
	if n == nil || !n.IsLeaf() {
		return false
	}
	s.RemoveNode(n, onRemoved)
	return true
}

// Contains reports whether n is currently attached to s.
func (s *Store[T]) Contains(n *Node[T]) bool {
	if n == nil || s.root == nil {
		return false
	}
	for n.parent != nil {
		n = n.parent
	}
	return n == s.root
}

// RemoveNode removes n together with its subtree and returns the number of
// nodes removed. It returns 0 without side effects if n is not attached to s.
func (s *Store[T]) RemoveNode(n *Node[T], onRemoved func(T)) int {
	if !s.Contains(n) {
		return 0
	}

	removed := 0
	n.Walk(func(d *Node[T]) {
		removed++
		if onRemoved != nil {
			onRemoved(d.value)
		}
	})

	if p := n.parent; p != nil {
		for i, c := range p.children {
			if c == n {
				p.children = append(p.children[:i:i], p.children[i+1:]...)
				break
			}
		}
		n.parent = nil
	} else if s.root == n {
		s.root = nil
	}

	s.size -= removed
	return removed
}

// TraverseSubtree visits item and its descendants in pre-order.
// Returns false if item is absent.
func (s *Store[T]) TraverseSubtree(item T, visit func(T)) bool {
	n := s.Search(item)
	if n == nil {
		return false
	}
	n.Walk(func(d *Node[T]) { visit(d.value) })
	return true
}

// Traverse visits every node in pre-order. It is a no-op on an empty store.
func (s *Store[T]) Traverse(visit func(*Node[T])) {
	if s.root == nil {
		return
	}
	s.root.Walk(visit)
}
