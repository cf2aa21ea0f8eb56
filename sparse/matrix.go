package sparse

import "fmt"

// Matrix is an immutable list of sparse rows with a shared dimensionality.
type Matrix struct {
	dim  int
	rows []Vector
}

// NewMatrix builds a matrix of dimensionality dim. Every row must have Dim == dim.
func NewMatrix(dim int, rows ...Vector) (*Matrix, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("sparse: invalid dimension %d", dim)
	}
	for i, r := range rows {
		if r.Dim != dim {
			return nil, fmt.Errorf("%w: row %d has dimension %d, want %d", ErrDimensionMismatch, i, r.Dim, dim)
		}
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return &Matrix{dim: dim, rows: rows}, nil
}

// Must panics if err is non-nil. Useful for literals in tests and examples.
func Must(m *Matrix, err error) *Matrix {
	if err != nil {
		panic(err)
	}
	return m
}

// Stack concatenates matrices vertically.
func Stack(ms ...*Matrix) (*Matrix, error) {
	if len(ms) == 0 {
		return nil, fmt.Errorf("sparse: nothing to stack")
	}
	dim := ms[0].dim
	total := 0
	for _, m := range ms {
		if m.dim != dim {
			return nil, fmt.Errorf("%w: stacking %d with %d", ErrDimensionMismatch, m.dim, dim)
		}
		total += len(m.rows)
	}
	rows := make([]Vector, 0, total)
	for _, m := range ms {
		rows = append(rows, m.rows...)
	}
	return &Matrix{dim: dim, rows: rows}, nil
}

// Dim returns the number of columns.
func (m *Matrix) Dim() int { return m.dim }

// Rows returns the number of rows.
func (m *Matrix) Rows() int { return len(m.rows) }

// Row returns the i-th row.
func (m *Matrix) Row(i int) Vector { return m.rows[i] }

// Slice returns rows [lo, hi) sharing storage with m.
func (m *Matrix) Slice(lo, hi int) *Matrix {
	return &Matrix{dim: m.dim, rows: m.rows[lo:hi:hi]}
}

// Select returns the rows at the given positions, in order.
func (m *Matrix) Select(idx []int) *Matrix {
	rows := make([]Vector, len(idx))
	for i, r := range idx {
		rows[i] = m.rows[r]
	}
	return &Matrix{dim: m.dim, rows: rows}
}

// Append returns a new matrix with v added as the last row.
func (m *Matrix) Append(v Vector) (*Matrix, error) {
	if v.Dim != m.dim {
		return nil, fmt.Errorf("%w: vector has dimension %d, want %d", ErrDimensionMismatch, v.Dim, m.dim)
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	rows := make([]Vector, len(m.rows), len(m.rows)+1)
	copy(rows, m.rows)
	return &Matrix{dim: m.dim, rows: append(rows, v)}, nil
}
