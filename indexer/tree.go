package indexer

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/sparse"
)

// terminalLevels is the largest log_branch(n) at which a node stores its records directly.
const terminalLevels = 1.4

// Tree is a cluster-pruning search tree. Searches run lock-free against the current
// slots; inserts are serialized and swap rebuilt subtrees in atomically.
type Tree[R comparable] struct {
	cfg    *Config
	dim    int
	branch int
	log    *slog.Logger

	mu   sync.Mutex // held by writers; guards rng
	rng  *rand.Rand
	root Slot[R]
	size atomic.Int64
}

// Build constructs a tree over features, with records[i] returned for row i.
// Uses default config if cfg is nil.
func Build[R comparable](features *sparse.Matrix, records []R, cfg *Config) (*Tree[R], error) {
	cfg = cfg.OrDefault()
	if features.Rows() != len(records) {
		return nil, fmt.Errorf("%w: %d rows, %d records", ErrLengthMismatch, features.Rows(), len(records))
	}
	branch, err := resolveBranchFactor(cfg.BranchFactor, len(records))
	if err != nil {
		return nil, err
	}
	t := &Tree[R]{
		cfg:    cfg,
		dim:    features.Dim(),
		branch: branch,
		log:    cfg.Logger.With("component", "tree"),
		rng:    cfg.random(),
	}

	start := time.Now()
	records = slices.Clone(records)
	root, err := t.build(features, records, &t.root)
	if err != nil {
		return nil, err
	}
	t.root.store(root)
	t.size.Store(int64(len(records)))

	elapsed := time.Since(start)
	cfg.Metrics.observeBuild(elapsed)
	t.log.Debug("tree built",
		"records", len(records),
		"dimension", t.dim,
		"branch_factor", branch,
		"duration", elapsed,
	)
	return t, nil
}

func resolveBranchFactor(desired, n int) (int, error) {
	switch {
	case desired == 0:
		return max(int(math.Sqrt(float64(n))), minAutoBranchFactor), nil
	case desired < 2:
		return 0, fmt.Errorf("%w: got %d", ErrInvalidBranchFactor, desired)
	}
	return desired, nil
}

// isTerminal reports whether n records fit in a single leaf at this branch factor.
func isTerminal(n, branch int) bool {
	return math.Log(float64(n))/math.Log(float64(branch)) <= terminalLevels
}

// build partitions records into a subtree occupying slot at. Children are built
// depth-first and link back to at.
func (t *Tree[R]) build(features *sparse.Matrix, records []R, at *Slot[R]) (Node[R], error) {
	n := len(records)
	if isTerminal(n, t.branch) {
		return t.newLeaf(features, records)
	}

	m := min(t.branch, n)
	picks := t.rng.Perm(n)[:m]
	ids := make([]int, m)
	for i := range ids {
		ids[i] = i
	}
	assign, err := distance.NewOracle(t.cfg.Metric, features.Select(picks), ids)
	if err != nil {
		return nil, err
	}

	buckets := make([][]int, m)
	for lo := 0; lo < n; lo += t.branch {
		hi := min(lo+t.branch, n)
		hits, err := assign.NearestSearch(features.Slice(lo, hi), 1, distance.Unbounded)
		if err != nil {
			return nil, err
		}
		for i, h := range hits {
			if len(h) == 0 {
				return nil, fmt.Errorf("indexer: no centroid found for row %d", lo+i)
			}
			c := h[0].Payload
			buckets[c] = append(buckets[c], lo+i)
		}
	}

	nonEmpty := 0
	for _, b := range buckets {
		if len(b) > 0 {
			nonEmpty++
		}
	}
	// Every record landed on one centroid, so splitting would not shrink the input.
	if nonEmpty < 2 {
		return t.newLeaf(features, records)
	}

	keep := make([]int, 0, nonEmpty)
	children := make([]*Slot[R], 0, nonEmpty)
	for c, bucket := range buckets {
		if len(bucket) == 0 {
			continue
		}
		child := &Slot[R]{parent: at}
		node, err := t.build(features.Select(bucket), pick(records, bucket), child)
		if err != nil {
			return nil, err
		}
		child.store(node)
		keep = append(keep, picks[c])
		children = append(children, child)
	}

	oracle, err := distance.NewOracle(t.cfg.Metric, features.Select(keep), children)
	if err != nil {
		return nil, err
	}
	return &InternalNode[R]{oracle: oracle}, nil
}

func (t *Tree[R]) newLeaf(features *sparse.Matrix, records []R) (Node[R], error) {
	oracle, err := distance.NewOracle(t.cfg.Metric, features, records)
	if err != nil {
		return nil, err
	}
	return &LeafNode[R]{oracle: oracle}, nil
}

func pick[R any](records []R, idx []int) []R {
	out := make([]R, len(idx))
	for i, r := range idx {
		out[i] = records[r]
	}
	return out
}

// Config returns the normalized configuration.
func (t *Tree[R]) Config() *Config { return t.cfg }

// Dim returns the dimensionality of indexed vectors.
func (t *Tree[R]) Dim() int { return t.dim }

// BranchFactor returns the resolved branch factor shared by every node.
func (t *Tree[R]) BranchFactor() int { return t.branch }

// Len returns the number of indexed records.
func (t *Tree[R]) Len() int { return int(t.size.Load()) }

// Root returns the root slot.
func (t *Tree[R]) Root() *Slot[R] { return &t.root }
