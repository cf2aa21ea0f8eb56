// Package gen generates synthetic sparse data for the bench harness.
package gen

import (
	"math/rand/v2"

	"github.com/ic-timon/sparnn/sparse"
)

// RandomSparse returns n unit-length rows of dimension dim, each with nnz non-zero
// columns drawn uniformly. The same seed always yields the same matrix.
func RandomSparse(n, dim, nnz int, seed uint64) *sparse.Matrix {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	nnz = min(nnz, dim)
	rows := make([]sparse.Vector, n)
	cols := make(map[int32]struct{}, nnz)
	for i := range rows {
		clear(cols)
		idx := make([]int32, 0, nnz)
		vals := make([]float64, 0, nnz)
		for len(idx) < nnz {
			c := int32(rng.IntN(dim))
			if _, dup := cols[c]; dup {
				continue
			}
			cols[c] = struct{}{}
			idx = append(idx, c)
			vals = append(vals, 0.05+rng.Float64())
		}
		v, err := sparse.NewVector(dim, idx, vals)
		if err != nil {
			panic(err)
		}
		rows[i] = v.Normalized()
	}
	return sparse.Must(sparse.NewMatrix(dim, rows...))
}

// Perturb returns a copy of each row with noise added to its non-zero values, for
// queries that are near but not equal to indexed rows.
func Perturb(m *sparse.Matrix, noise float64, seed uint64) *sparse.Matrix {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	rows := make([]sparse.Vector, m.Rows())
	for i := range rows {
		r := m.Row(i)
		vals := make([]float64, len(r.Values))
		for j, v := range r.Values {
			vals[j] = v + noise*(rng.Float64()-0.5)
			if vals[j] == 0 {
				vals[j] = noise
			}
		}
		v, err := sparse.NewVector(r.Dim, r.Indices, vals)
		if err != nil {
			panic(err)
		}
		rows[i] = v.Normalized()
	}
	return sparse.Must(sparse.NewMatrix(m.Dim(), rows...))
}
