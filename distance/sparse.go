package distance

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/ic-timon/sparnn/sparse"
)

// measureFunc turns an inner product and the two squared norms into a distance.
type measureFunc func(dot, querySq, refSq float64) float64

// sparseIndex scores queries against a reference matrix through its column postings.
type sparseIndex struct {
	features *sparse.Matrix
	post     postings
	sqNorms  []float64
	measure  measureFunc
}

func newSparseIndex(features *sparse.Matrix, measure measureFunc) *sparseIndex {
	sq := make([]float64, features.Rows())
	for r := range sq {
		sq[r] = squaredNorm(features.Row(r))
	}
	return &sparseIndex{
		features: features,
		post:     newPostings(features),
		sqNorms:  sq,
		measure:  measure,
	}
}

func squaredNorm(v sparse.Vector) float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return floats.Dot(v.Values, v.Values)
}

func (s *sparseIndex) Features() *sparse.Matrix { return s.features }

func (s *sparseIndex) Search(queries *sparse.Matrix, k int, maxDistance float64) ([][]Neighbor, error) {
	if err := checkQuery(s.features, queries, k); err != nil {
		return nil, err
	}
	n := s.features.Rows()
	scores := make([]float64, n)
	dist := make([]float64, n)
	out := make([][]Neighbor, queries.Rows())
	for i := range out {
		q := queries.Row(i)
		clear(scores)
		s.post.dot(q, scores)
		qSq := squaredNorm(q)
		for r := range dist {
			dist[r] = s.measure(scores[r], qSq, s.sqNorms[r])
		}
		out[i] = selectNearest(dist, k, maxDistance)
	}
	return out, nil
}

// Cosine builds an Index scoring 1 - cos(q, r). A zero vector is at distance 1 from everything.
func Cosine(features *sparse.Matrix) (Index, error) {
	return newSparseIndex(features, cosineDistance), nil
}

func cosineDistance(dot, qSq, rSq float64) float64 {
	if qSq == 0 || rSq == 0 {
		return 1
	}
	return clamp(1-dot/math.Sqrt(qSq*rSq), 0, 2)
}

// UnitCosine builds an Index scoring 1 - q·r, for data already normalized to unit length.
func UnitCosine(features *sparse.Matrix) (Index, error) {
	return newSparseIndex(features, func(dot, _, _ float64) float64 {
		return clamp(1-dot, 0, 2)
	}), nil
}

// Euclidean builds an Index scoring the L2 distance between q and r.
func Euclidean(features *sparse.Matrix) (Index, error) {
	return newSparseIndex(features, func(dot, qSq, rSq float64) float64 {
		return math.Sqrt(math.Max(0, qSq+rSq-2*dot))
	}), nil
}

func clamp(x, lo, hi float64) float64 {
	return math.Min(math.Max(x, lo), hi)
}
