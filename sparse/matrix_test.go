package sparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rows(n, dim int) []Vector {
	out := make([]Vector, n)
	for i := range out {
		d := make([]float64, dim)
		d[i%dim] = float64(i + 1)
		out[i] = FromDense(d)
	}
	return out
}

func TestNewMatrixChecksDimensions(t *testing.T) {
	_, err := NewMatrix(3, FromDense([]float64{1, 2}))
	require.ErrorIs(t, err, ErrDimensionMismatch)

	m, err := NewMatrix(3, rows(4, 3)...)
	require.NoError(t, err)
	assert.Equal(t, 4, m.Rows())
	assert.Equal(t, 3, m.Dim())
}

func TestSliceSelectStack(t *testing.T) {
	m := Must(NewMatrix(5, rows(5, 5)...))

	s := m.Slice(1, 3)
	require.Equal(t, 2, s.Rows())
	assert.Equal(t, m.Row(1), s.Row(0))

	sel := m.Select([]int{4, 0})
	require.Equal(t, 2, sel.Rows())
	assert.Equal(t, m.Row(4), sel.Row(0))
	assert.Equal(t, m.Row(0), sel.Row(1))

	st, err := Stack(s, sel)
	require.NoError(t, err)
	assert.Equal(t, 4, st.Rows())
	assert.Equal(t, m.Row(0), st.Row(3))

	other := Must(NewMatrix(2, rows(1, 2)...))
	_, err = Stack(m, other)
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestAppendDoesNotAlias(t *testing.T) {
	m := Must(NewMatrix(3, rows(2, 3)...))
	a, err := m.Append(FromDense([]float64{0, 0, 9}))
	require.NoError(t, err)
	assert.Equal(t, 2, m.Rows())
	assert.Equal(t, 3, a.Rows())

	_, err = m.Append(FromDense([]float64{1}))
	require.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestMatrixRejectsMalformedRows(t *testing.T) {
	bad := Vector{Dim: 3, Indices: []int32{2, 0}, Values: []float64{1, 1}}

	_, err := NewMatrix(3, FromDense([]float64{1, 0, 0}), bad)
	require.ErrorIs(t, err, ErrInvalidIndex)
	assert.Contains(t, err.Error(), "row 1")

	m := Must(NewMatrix(3, rows(2, 3)...))
	_, err = m.Append(Vector{Dim: 3, Indices: []int32{5}, Values: []float64{1}})
	require.ErrorIs(t, err, ErrInvalidIndex)
	assert.Equal(t, 2, m.Rows())
}
