package indexer

import (
	"math/rand/v2"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/sparse"
)

// randomSparse returns n rows of dimension dim with nnz random non-zero columns each.
func randomSparse(t testing.TB, seed uint64, n, dim, nnz int) *sparse.Matrix {
	t.Helper()
	rng := rand.New(rand.NewPCG(seed, seed))
	rows := make([]sparse.Vector, n)
	for i := range rows {
		cols := make(map[int32]struct{}, nnz)
		idx := make([]int32, 0, nnz)
		vals := make([]float64, 0, nnz)
		for len(idx) < nnz {
			c := int32(rng.IntN(dim))
			if _, dup := cols[c]; dup {
				continue
			}
			cols[c] = struct{}{}
			idx = append(idx, c)
			vals = append(vals, 0.1+rng.Float64())
		}
		v, err := sparse.NewVector(dim, idx, vals)
		require.NoError(t, err)
		rows[i] = v
	}
	m, err := sparse.NewMatrix(dim, rows...)
	require.NoError(t, err)
	return m
}

func sequence(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func testConfig(seed uint64, branch int) *Config {
	cfg := DefaultConfig()
	cfg.Seed = seed
	cfg.BranchFactor = branch
	return cfg
}

// countingIndex counts Search calls made against a cosine index.
type countingIndex struct {
	distance.Index
	calls *atomic.Int64
}

func (c countingIndex) Search(q *sparse.Matrix, k int, maxDistance float64) ([][]distance.Neighbor, error) {
	c.calls.Add(1)
	return c.Index.Search(q, k, maxDistance)
}

func countingCosine(calls *atomic.Int64) distance.Factory {
	return func(f *sparse.Matrix) (distance.Index, error) {
		idx, err := distance.Cosine(f)
		if err != nil {
			return nil, err
		}
		return countingIndex{Index: idx, calls: calls}, nil
	}
}

func requireSameMultiset(t *testing.T, want, got []int) {
	t.Helper()
	counts := make(map[int]int, len(want))
	for _, r := range want {
		counts[r]++
	}
	for _, r := range got {
		counts[r]--
	}
	for r, c := range counts {
		require.Zerof(t, c, "record %d count off by %d", r, c)
	}
}
