package distance

import (
	"math"

	"github.com/viterin/vek"

	"github.com/ic-timon/sparnn/sparse"
)

// denseCosine keeps a dense copy of each reference row for SIMD dot products.
type denseCosine struct {
	features *sparse.Matrix
	rows     [][]float64
	norms    []float64
}

// DenseCosine builds a cosine Index that densifies the reference rows once. It pays
// off for low-dimensional or mostly non-zero data, where postings gain nothing.
func DenseCosine(features *sparse.Matrix) (Index, error) {
	d := &denseCosine{
		features: features,
		rows:     make([][]float64, features.Rows()),
		norms:    make([]float64, features.Rows()),
	}
	for r := range d.rows {
		row := features.Row(r).Dense()
		d.rows[r] = row
		d.norms[r] = math.Sqrt(vek.Dot(row, row))
	}
	return d, nil
}

func (d *denseCosine) Features() *sparse.Matrix { return d.features }

func (d *denseCosine) Search(queries *sparse.Matrix, k int, maxDistance float64) ([][]Neighbor, error) {
	if err := checkQuery(d.features, queries, k); err != nil {
		return nil, err
	}
	dist := make([]float64, len(d.rows))
	out := make([][]Neighbor, queries.Rows())
	for i := range out {
		q := queries.Row(i).Dense()
		qn := math.Sqrt(vek.Dot(q, q))
		for r, row := range d.rows {
			if qn == 0 || d.norms[r] == 0 {
				dist[r] = 1
				continue
			}
			dist[r] = clamp(1-vek.Dot(q, row)/(qn*d.norms[r]), 0, 2)
		}
		out[i] = selectNearest(dist, k, maxDistance)
	}
	return out, nil
}
