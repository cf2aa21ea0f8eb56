package indexer

import (
	"fmt"
	"time"

	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/sparse"
)

// Search returns, for each query row, up to k records nearest first with their distances.
// At every internal node the KClusters nearest centroids are explored; the leaf
// matches of all explored clusters are merged and cut to k.
func (t *Tree[R]) Search(queries *sparse.Matrix, opts ...SearchOption) ([][]Result[R], error) {
	o, err := newSearchOptions(opts)
	if err != nil {
		return nil, err
	}
	return t.search(queries, o)
}

// SearchRecords is Search without distances.
func (t *Tree[R]) SearchRecords(queries *sparse.Matrix, opts ...SearchOption) ([][]R, error) {
	results, err := t.Search(queries, opts...)
	if err != nil {
		return nil, err
	}
	return stripDistances(results), nil
}

func (t *Tree[R]) search(queries *sparse.Matrix, o *searchOptions) ([][]Result[R], error) {
	if queries.Dim() != t.dim {
		return nil, &ErrDimensionMismatch{Expected: t.dim, Actual: queries.Dim()}
	}
	start := time.Now()
	out := make([][]Result[R], queries.Rows())
	err := forEachBatch(queries.Rows(), t.cfg.SearchBatchSize, t.cfg.SearchWorkers, func(lo, hi int) error {
		res, err := t.searchNode(t.root.Load(), queries.Slice(lo, hi), o)
		if err != nil {
			return err
		}
		copy(out[lo:hi], res)
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.cfg.Metrics.observeSearch(queries.Rows(), time.Since(start))
	return out, nil
}

func (t *Tree[R]) searchNode(n Node[R], queries *sparse.Matrix, o *searchOptions) ([][]Result[R], error) {
	switch n := n.(type) {
	case *LeafNode[R]:
		hits, err := n.oracle.NearestSearch(queries, o.k, o.maxDistance)
		if err != nil {
			return nil, err
		}
		out := make([][]Result[R], len(hits))
		for i, row := range hits {
			res := make([]Result[R], len(row))
			for j, h := range row {
				res[j] = Result[R]{Distance: h.Distance, Record: h.Payload}
			}
			out[i] = res
		}
		return out, nil

	case *InternalNode[R]:
		// Clusters are chosen without the distance cap; only records are filtered.
		clusters, err := n.oracle.NearestSearch(queries, o.kClusters, distance.Unbounded)
		if err != nil {
			return nil, err
		}
		out := make([][]Result[R], len(clusters))
		for i, row := range clusters {
			q := queries.Slice(i, i+1)
			var candidates []Result[R]
			for _, c := range row {
				sub, err := t.searchNode(c.Payload.Load(), q, o)
				if err != nil {
					return nil, err
				}
				candidates = append(candidates, sub[0]...)
			}
			out[i] = kBest(candidates, o.k)
		}
		return out, nil
	}
	return nil, fmt.Errorf("indexer: unexpected node type %T", n)
}
