package distance

import (
	"errors"
	"fmt"
	"math"

	"github.com/ic-timon/sparnn/sparse"
)

var (
	// ErrLengthMismatch is returned when the reference matrix and payloads differ in length.
	ErrLengthMismatch = errors.New("distance: reference rows and payloads differ in length")
	// ErrDimensionMismatch is returned when queries and reference rows differ in dimensionality.
	ErrDimensionMismatch = errors.New("distance: query dimension mismatch")
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("distance: k must be positive")
)

// Unbounded disables the maxDistance cap of a search.
var Unbounded = math.Inf(1)

// Neighbor is a single match against the reference matrix.
type Neighbor struct {
	Distance float64
	Row      int
}

// Index answers exact top-k queries against a fixed reference matrix.
//
// Search returns, for each query row, up to k neighbors in ascending distance,
// excluding any with distance > maxDistance.
type Index interface {
	Search(queries *sparse.Matrix, k int, maxDistance float64) ([][]Neighbor, error)
	Features() *sparse.Matrix
}

// Factory builds an Index over a reference matrix. It is the pluggable metric.
type Factory func(features *sparse.Matrix) (Index, error)

// Result is a neighbor resolved to its payload.
type Result[P any] struct {
	Distance float64
	Payload  P
}

// Oracle owns a reference matrix and a parallel payload slice. It is immutable;
// rebuilding an index replaces oracles wholesale.
type Oracle[P any] struct {
	index    Index
	payloads []P
}

// NewOracle builds an oracle with factory over features, carrying payloads[i] for row i.
func NewOracle[P any](factory Factory, features *sparse.Matrix, payloads []P) (*Oracle[P], error) {
	if features.Rows() != len(payloads) {
		return nil, fmt.Errorf("%w: %d rows, %d payloads", ErrLengthMismatch, features.Rows(), len(payloads))
	}
	idx, err := factory(features)
	if err != nil {
		return nil, err
	}
	return &Oracle[P]{index: idx, payloads: payloads}, nil
}

// NearestSearch returns up to k (distance, payload) pairs per query row, nearest first.
func (o *Oracle[P]) NearestSearch(queries *sparse.Matrix, k int, maxDistance float64) ([][]Result[P], error) {
	hits, err := o.index.Search(queries, k, maxDistance)
	if err != nil {
		return nil, err
	}
	out := make([][]Result[P], len(hits))
	for i, row := range hits {
		res := make([]Result[P], len(row))
		for j, n := range row {
			res[j] = Result[P]{Distance: n.Distance, Payload: o.payloads[n.Row]}
		}
		out[i] = res
	}
	return out, nil
}

// FeatureMatrix returns the reference matrix unchanged.
func (o *Oracle[P]) FeatureMatrix() *sparse.Matrix { return o.index.Features() }

// Payloads returns the payload slice unchanged. Callers must not modify it.
func (o *Oracle[P]) Payloads() []P { return o.payloads }

// Len returns the number of reference rows.
func (o *Oracle[P]) Len() int { return len(o.payloads) }

func checkQuery(features, queries *sparse.Matrix, k int) error {
	if k <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidK, k)
	}
	if queries.Dim() != features.Dim() {
		return fmt.Errorf("%w: expected %d, got %d", ErrDimensionMismatch, features.Dim(), queries.Dim())
	}
	return nil
}
