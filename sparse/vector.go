package sparse

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrDimensionMismatch is returned when vectors of different dimensionality are combined.
	ErrDimensionMismatch = errors.New("sparse: dimension mismatch")
	// ErrInvalidIndex is returned for a column index outside [0, dim) or a repeated column.
	ErrInvalidIndex = errors.New("sparse: invalid column index")
)

// Vector is a sparse vector. Indices are strictly increasing and Values holds the
// matching non-zero coordinates. A Vector must not be modified once indexed.
type Vector struct {
	Dim     int
	Indices []int32
	Values  []float64
}

// NewVector builds a vector from unordered (index, value) pairs. Zero values are dropped.
func NewVector(dim int, indices []int32, values []float64) (Vector, error) {
	if err := checkShape(dim, len(indices), len(values)); err != nil {
		return Vector{}, err
	}
	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	slices.SortFunc(order, func(a, b int) int { return int(indices[a]) - int(indices[b]) })

	v := Vector{
		Dim:     dim,
		Indices: make([]int32, 0, len(indices)),
		Values:  make([]float64, 0, len(values)),
	}
	for n, i := range order {
		col := indices[i]
		if err := checkColumn(col, dim); err != nil {
			return Vector{}, err
		}
		if n > 0 && indices[order[n-1]] == col {
			return Vector{}, fmt.Errorf("%w: column %d repeated", ErrInvalidIndex, col)
		}
		if values[i] == 0 {
			continue
		}
		v.Indices = append(v.Indices, col)
		v.Values = append(v.Values, values[i])
	}
	return v, nil
}

// Validate checks a Vector built by hand rather than through NewVector: the
// dimension is positive, Indices and Values have equal length, and indices are
// strictly increasing within [0, Dim).
func (v Vector) Validate() error {
	if err := checkShape(v.Dim, len(v.Indices), len(v.Values)); err != nil {
		return err
	}
	for i, col := range v.Indices {
		if err := checkColumn(col, v.Dim); err != nil {
			return err
		}
		if i > 0 && v.Indices[i-1] >= col {
			return fmt.Errorf("%w: column %d follows %d", ErrInvalidIndex, col, v.Indices[i-1])
		}
	}
	return nil
}

func checkShape(dim, indices, values int) error {
	if dim <= 0 {
		return fmt.Errorf("sparse: invalid dimension %d", dim)
	}
	if indices != values {
		return fmt.Errorf("sparse: %d indices for %d values", indices, values)
	}
	return nil
}

func checkColumn(col int32, dim int) error {
	if col < 0 || int(col) >= dim {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidIndex, col, dim)
	}
	return nil
}

// FromDense builds a vector from a dense slice, keeping its non-zero entries.
func FromDense(dense []float64) Vector {
	v := Vector{Dim: len(dense)}
	for i, x := range dense {
		if x != 0 {
			v.Indices = append(v.Indices, int32(i))
			v.Values = append(v.Values, x)
		}
	}
	return v
}

// NNZ returns the number of stored non-zero coordinates.
func (v Vector) NNZ() int { return len(v.Indices) }

// Dense expands v into a freshly allocated dense slice.
func (v Vector) Dense() []float64 {
	out := make([]float64, v.Dim)
	for i, col := range v.Indices {
		out[col] = v.Values[i]
	}
	return out
}

// Norm returns the Euclidean norm of v.
func (v Vector) Norm() float64 {
	if len(v.Values) == 0 {
		return 0
	}
	return floats.Norm(v.Values, 2)
}

// Dot returns the inner product of v and o by merging their sorted index lists.
func (v Vector) Dot(o Vector) float64 {
	var sum float64
	i, j := 0, 0
	for i < len(v.Indices) && j < len(o.Indices) {
		switch {
		case v.Indices[i] == o.Indices[j]:
			sum += v.Values[i] * o.Values[j]
			i++
			j++
		case v.Indices[i] < o.Indices[j]:
			i++
		default:
			j++
		}
	}
	return sum
}

// Normalized returns a copy of v scaled to unit length. A zero vector is returned unchanged.
func (v Vector) Normalized() Vector {
	n := v.Norm()
	if n == 0 || math.IsNaN(n) {
		return v
	}
	out := Vector{
		Dim:     v.Dim,
		Indices: slices.Clone(v.Indices),
		Values:  slices.Clone(v.Values),
	}
	floats.Scale(1/n, out.Values)
	return out
}
