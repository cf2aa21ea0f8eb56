package indexer

import (
	"fmt"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/ic-timon/sparnn/sparse"
)

// Ensemble holds several trees over the same records, each partitioned around its own
// random centroids. A record mis-clustered away from a query in one tree is likely to
// be found by another, so searching more trees raises recall.
type Ensemble[R comparable] struct {
	trees []*Tree[R]
	cfg   *Config
}

// BuildEnsemble builds numIndexes trees concurrently. numIndexes 0 uses DefaultNumIndexes.
// Each tree draws its random source from the configured one in order, so a fixed seed
// reproduces the whole ensemble.
func BuildEnsemble[R comparable](features *sparse.Matrix, records []R, cfg *Config, numIndexes int) (*Ensemble[R], error) {
	if numIndexes == 0 {
		numIndexes = DefaultNumIndexes
	}
	if numIndexes < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidNumIndexes, numIndexes)
	}
	cfg = cfg.OrDefault()
	if features.Rows() != len(records) {
		return nil, fmt.Errorf("%w: %d rows, %d records", ErrLengthMismatch, features.Rows(), len(records))
	}

	base := cfg.random()
	cfgs := make([]Config, numIndexes)
	for i := range cfgs {
		cfgs[i] = *cfg
		cfgs[i].Rand = rand.New(rand.NewPCG(base.Uint64(), base.Uint64()))
	}

	trees := make([]*Tree[R], numIndexes)
	var g errgroup.Group
	for i := range trees {
		g.Go(func() error {
			t, err := Build(features, records, &cfgs[i])
			if err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	cfg.Logger.Debug("ensemble built", "trees", numIndexes, "records", len(records))
	return &Ensemble[R]{trees: trees, cfg: cfg}, nil
}

// Insert adds the record to every tree.
func (e *Ensemble[R]) Insert(vec sparse.Vector, record R) error {
	if vec.Dim != e.Dim() {
		return &ErrDimensionMismatch{Expected: e.Dim(), Actual: vec.Dim}
	}
	var g errgroup.Group
	for _, t := range e.trees {
		g.Go(func() error { return t.Insert(vec, record) })
	}
	return g.Wait()
}

// Search queries the first WithNumIndexes trees (default all). Per query row, the
// tree results are concatenated in tree order, repeated records keep their first
// occurrence, and the k nearest remain.
func (e *Ensemble[R]) Search(queries *sparse.Matrix, opts ...SearchOption) ([][]Result[R], error) {
	o, err := newSearchOptions(opts)
	if err != nil {
		return nil, err
	}
	use := len(e.trees)
	if o.numIndexesSet {
		if o.numIndexes < 1 || o.numIndexes > len(e.trees) {
			return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidNumIndexes, o.numIndexes, len(e.trees))
		}
		use = o.numIndexes
	}

	perTree := make([][][]Result[R], use)
	var g errgroup.Group
	for i := range use {
		g.Go(func() error {
			res, err := e.trees[i].search(queries, o)
			perTree[i] = res
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([][]Result[R], queries.Rows())
	for row := range out {
		var merged []Result[R]
		for _, res := range perTree {
			merged = append(merged, res[row]...)
		}
		out[row] = kBest(uniqueFirst(merged), o.k)
	}
	return out, nil
}

// SearchRecords is Search without distances.
func (e *Ensemble[R]) SearchRecords(queries *sparse.Matrix, opts ...SearchOption) ([][]R, error) {
	results, err := e.Search(queries, opts...)
	if err != nil {
		return nil, err
	}
	return stripDistances(results), nil
}

// Trees returns the ensemble's trees in search order.
func (e *Ensemble[R]) Trees() []*Tree[R] { return e.trees }

// Len returns the number of indexed records.
func (e *Ensemble[R]) Len() int {
	if len(e.trees) == 0 {
		return 0
	}
	return e.trees[0].Len()
}

// Dim returns the dimensionality of indexed vectors.
func (e *Ensemble[R]) Dim() int {
	if len(e.trees) == 0 {
		return 0
	}
	return e.trees[0].Dim()
}
