package indexer

import (
	"errors"
	"time"

	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/sparse"
)

// Insert adds a single record. It descends to the nearest leaf, climbs to the first
// ancestor still within twice the branch factor, and rebuilds that subtree from its
// flattened records plus the new one. The rebuilt subtree replaces the old one in
// place; concurrent searches see either the old or the new subtree.
func (t *Tree[R]) Insert(vec sparse.Vector, record R) error {
	if vec.Dim != t.dim {
		return &ErrDimensionMismatch{Expected: t.dim, Actual: vec.Dim}
	}
	if err := vec.Validate(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	leaf, err := t.descend(vec)
	if err != nil {
		return err
	}
	target := leaf
	for target.parent != nil && t.branch*2 < target.Load().Len() {
		target = target.parent
	}

	start := time.Now()
	size, err := t.rebuild(target, vec, record)
	if err != nil {
		return err
	}
	t.size.Add(1)

	scope := ScopeLeaf
	if target != leaf {
		scope = ScopeAncestor
	}
	t.cfg.Metrics.observeInsert(scope, size)
	t.log.Debug("subtree rebuilt",
		"scope", scope,
		"records", size,
		"duration", time.Since(start),
	)
	return nil
}

// descend follows the nearest centroid at every level and returns the leaf slot reached.
func (t *Tree[R]) descend(vec sparse.Vector) (*Slot[R], error) {
	q, err := sparse.NewMatrix(t.dim, vec)
	if err != nil {
		return nil, err
	}
	s := &t.root
	for {
		internal, ok := s.Load().(*InternalNode[R])
		if !ok {
			return s, nil
		}
		hits, err := internal.oracle.NearestSearch(q, 1, distance.Unbounded)
		if err != nil {
			return nil, err
		}
		if len(hits[0]) == 0 {
			return nil, errors.New("indexer: internal node has no reachable child")
		}
		s = hits[0][0].Payload
	}
}

// rebuild reconstructs the subtree at target from every record below it plus
// (vec, record), and stores the result into target. It returns the new subtree size.
func (t *Tree[R]) rebuild(target *Slot[R], vec sparse.Vector, record R) (int, error) {
	features, records, err := flatten(target.Load())
	if err != nil {
		return 0, err
	}
	if features, err = features.Append(vec); err != nil {
		return 0, err
	}
	records = append(records, record)

	node, err := t.build(features, records, target)
	if err != nil {
		return 0, err
	}
	target.store(node)
	return len(records), nil
}

// flatten gathers every leaf row and record reachable from n, in leaf order.
func flatten[R comparable](n Node[R]) (*sparse.Matrix, []R, error) {
	var mats []*sparse.Matrix
	var records []R
	n.collect(&mats, &records)
	features, err := sparse.Stack(mats...)
	if err != nil {
		return nil, nil, err
	}
	return features, records, nil
}
