package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildEnsemble(t *testing.T) {
	features := randomSparse(t, 41, 300, 64, 6)
	e, err := BuildEnsemble(features, sequence(300), testConfig(3, 8), 0)
	require.NoError(t, err)
	require.Len(t, e.Trees(), DefaultNumIndexes)
	assert.Equal(t, 300, e.Len())
	assert.Equal(t, 64, e.Dim())
	assert.NotEqual(t, e.Trees()[0].Records(), e.Trees()[1].Records(), "trees should sample different centroids")

	_, err = BuildEnsemble(features, sequence(300), nil, -1)
	require.ErrorIs(t, err, ErrInvalidNumIndexes)
	_, err = BuildEnsemble(features, sequence(299), nil, 2)
	require.ErrorIs(t, err, ErrLengthMismatch)
}

func TestEnsembleDeterministicForSeed(t *testing.T) {
	features := randomSparse(t, 42, 300, 64, 6)
	a, err := BuildEnsemble(features, sequence(300), testConfig(77, 8), 3)
	require.NoError(t, err)
	b, err := BuildEnsemble(features, sequence(300), testConfig(77, 8), 3)
	require.NoError(t, err)
	for i := range a.Trees() {
		assert.Equal(t, a.Trees()[i].Records(), b.Trees()[i].Records())
	}
}

func TestEnsembleDedup(t *testing.T) {
	features := randomSparse(t, 43, 800, 128, 8)
	e, err := BuildEnsemble(features, sequence(800), testConfig(9, 10), 3)
	require.NoError(t, err)

	res, err := e.Search(features.Slice(0, 50), WithK(10), WithKClusters(3), WithNumIndexes(3))
	require.NoError(t, err)
	require.Len(t, res, 50)
	for i, row := range res {
		assert.LessOrEqual(t, len(row), 10)
		seen := make(map[int]bool)
		for j, r := range row {
			assert.False(t, seen[r.Record], "row %d repeats record %d", i, r.Record)
			seen[r.Record] = true
			if j > 0 {
				assert.LessOrEqual(t, row[j-1].Distance, r.Distance)
			}
		}
		assert.Equal(t, i, row[0].Record)
	}
}

func TestEnsembleInsertSelfRetrieval(t *testing.T) {
	features := randomSparse(t, 44, 500, 128, 8)
	e, err := BuildEnsemble(features.Slice(0, 400), sequence(400), testConfig(10, 10), 3)
	require.NoError(t, err)

	for i := 400; i < 500; i++ {
		require.NoError(t, e.Insert(features.Row(i), i))
	}
	assert.Equal(t, 500, e.Len())
	for _, tree := range e.Trees() {
		requireSameMultiset(t, sequence(500), tree.Records())
	}

	recs, err := e.SearchRecords(features.Slice(400, 500))
	require.NoError(t, err)
	require.Len(t, recs, 100)
	for i, row := range recs {
		assert.Equal(t, []int{400 + i}, row)
	}

	res, err := e.Search(features.Slice(450, 451), WithNumIndexes(1))
	require.NoError(t, err)
	assert.InDelta(t, 0, res[0][0].Distance, 1e-9)
}

func TestEnsembleSearchOptions(t *testing.T) {
	features := randomSparse(t, 45, 100, 32, 4)
	e, err := BuildEnsemble(features, sequence(100), testConfig(1, 5), 2)
	require.NoError(t, err)

	for _, n := range []int{0, 3, -1} {
		_, err := e.Search(features.Slice(0, 1), WithNumIndexes(n))
		require.ErrorIs(t, err, ErrInvalidNumIndexes)
	}
	_, err = e.Search(features.Slice(0, 1), WithK(0))
	require.ErrorIs(t, err, ErrInvalidK)

	wrong := randomSparse(t, 46, 1, 31, 4)
	var dm *ErrDimensionMismatch
	require.ErrorAs(t, e.Insert(wrong.Row(0), 5000), &dm)
	_, err = e.Search(wrong)
	require.ErrorAs(t, err, &dm)
}

func TestEnsembleKeepsFirstOccurrence(t *testing.T) {
	features := randomSparse(t, 47, 200, 64, 6)
	e, err := BuildEnsemble(features, sequence(200), testConfig(5, 8), 2)
	require.NoError(t, err)

	queries := features.Slice(0, 20)
	first, err := e.Trees()[0].Search(queries, WithK(5))
	require.NoError(t, err)
	merged, err := e.Search(queries, WithK(5))
	require.NoError(t, err)

	for i := range merged {
		dist := make(map[int]float64)
		for _, r := range first[i] {
			dist[r.Record] = r.Distance
		}
		for _, r := range merged[i] {
			if d, ok := dist[r.Record]; ok {
				assert.Equal(t, d, r.Distance)
			}
		}
	}
}
