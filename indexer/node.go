package indexer

import (
	"sync/atomic"

	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/sparse"
)

// Node is a vertex of the cluster tree, either a *LeafNode or an *InternalNode.
type Node[R comparable] interface {
	// IsLeaf returns true if this is a leaf node.
	IsLeaf() bool
	// Len returns the number of entries held by the node's oracle: records for a
	// leaf, children for an internal node.
	Len() int

	collect(features *[]*sparse.Matrix, records *[]R)
}

// LeafNode holds raw records behind a distance oracle.
type LeafNode[R comparable] struct {
	oracle *distance.Oracle[R]
}

// IsLeaf implements Node.
func (*LeafNode[R]) IsLeaf() bool { return true }

// Len implements Node.
func (n *LeafNode[R]) Len() int { return n.oracle.Len() }

// Oracle returns the leaf's oracle over its records.
func (n *LeafNode[R]) Oracle() *distance.Oracle[R] { return n.oracle }

func (n *LeafNode[R]) collect(features *[]*sparse.Matrix, records *[]R) {
	*features = append(*features, n.oracle.FeatureMatrix())
	*records = append(*records, n.oracle.Payloads()...)
}

// InternalNode holds an oracle over cluster centroids whose payloads are the child slots.
type InternalNode[R comparable] struct {
	oracle *distance.Oracle[*Slot[R]]
}

// IsLeaf implements Node.
func (*InternalNode[R]) IsLeaf() bool { return false }

// Len implements Node.
func (n *InternalNode[R]) Len() int { return n.oracle.Len() }

// Oracle returns the node's oracle over centroids.
func (n *InternalNode[R]) Oracle() *distance.Oracle[*Slot[R]] { return n.oracle }

// Child returns the node currently occupying the i-th child slot.
func (n *InternalNode[R]) Child(i int) Node[R] {
	slots := n.oracle.Payloads()
	if i < 0 || i >= len(slots) {
		return nil
	}
	return slots[i].Load()
}

func (n *InternalNode[R]) collect(features *[]*sparse.Matrix, records *[]R) {
	for _, s := range n.oracle.Payloads() {
		s.Load().collect(features, records)
	}
}

// Slot is a fixed position in the tree. A rebuild stores a fresh node into the same
// slot, so the slot and its parent link outlive any node that occupies it.
type Slot[R comparable] struct {
	node   atomic.Pointer[Node[R]]
	parent *Slot[R]
}

// Load returns the current occupant.
func (s *Slot[R]) Load() Node[R] {
	p := s.node.Load()
	if p == nil {
		return nil
	}
	return *p
}

// Parent returns the enclosing slot, or nil for the root.
func (s *Slot[R]) Parent() *Slot[R] { return s.parent }

func (s *Slot[R]) store(n Node[R]) {
	np := new(Node[R])
	*np = n
	s.node.Store(np)
}
