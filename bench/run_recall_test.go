package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ic-timon/sparnn/bench/gen"
)

func TestRecallAt(t *testing.T) {
	exact := [][]int{{1, 2}, {3, 4}, {}}
	got := [][]int{{2, 9}, {3, 4}, {7}}
	assert.InDelta(t, (0.5+1+1)/3, recallAt(exact, got), 1e-12)
	assert.Zero(t, recallAt(nil, nil))
}

func TestBruteForceFindsSelf(t *testing.T) {
	data := gen.RandomSparse(200, 300, 8, 5)
	exact, err := bruteForce(data, ids(200), data.Slice(10, 20), 3)
	require.NoError(t, err)
	require.Len(t, exact, 10)
	for i, row := range exact {
		require.Len(t, row, 3)
		assert.Equal(t, 10+i, row[0])
	}
}
