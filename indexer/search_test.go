package indexer

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ic-timon/sparnn/sparse"
)

func TestSearchResultBound(t *testing.T) {
	features := randomSparse(t, 11, 600, 128, 8)
	tree, err := Build(features, sequence(600), testConfig(5, 10))
	require.NoError(t, err)

	queries := features.Slice(0, 40)
	for _, k := range []int{1, 3, 10} {
		res, err := tree.Search(queries, WithK(k), WithKClusters(3))
		require.NoError(t, err)
		require.Len(t, res, queries.Rows())
		for _, row := range res {
			assert.LessOrEqual(t, len(row), k)
			for j := 1; j < len(row); j++ {
				assert.LessOrEqual(t, row[j-1].Distance, row[j].Distance)
			}
		}
	}

	res, err := tree.Search(queries, WithK(20), WithKClusters(4), WithMaxDistance(0.7))
	require.NoError(t, err)
	for _, row := range res {
		for _, r := range row {
			assert.LessOrEqual(t, r.Distance, 0.7)
		}
	}
}

func TestSearchMaxDistanceCanEmptyRows(t *testing.T) {
	features := randomSparse(t, 12, 100, 64, 4)
	tree, err := Build(features, sequence(100), testConfig(1, 5))
	require.NoError(t, err)

	res, err := tree.Search(randomSparse(t, 13, 5, 64, 4), WithK(3), WithMaxDistance(-1))
	require.NoError(t, err)
	require.Len(t, res, 5)
	for _, row := range res {
		assert.Empty(t, row)
	}
}

func TestSearchFanOut(t *testing.T) {
	var calls atomic.Int64
	features := randomSparse(t, 14, 400, 64, 6)
	cfg := testConfig(2, 8)
	cfg.Metric = countingCosine(&calls)
	tree, err := Build(features, sequence(400), cfg)
	require.NoError(t, err)
	require.False(t, tree.Root().Load().IsLeaf())
	depth := tree.MaxDepth()

	for _, c := range []int{1, 2, 3} {
		bound := int64(0)
		width := int64(1)
		for range depth {
			bound += width
			width *= int64(c)
		}
		for i := range 10 {
			calls.Store(0)
			_, err := tree.Search(features.Slice(i, i+1), WithK(5), WithKClusters(c))
			require.NoError(t, err)
			assert.GreaterOrEqual(t, calls.Load(), int64(2))
			assert.LessOrEqual(t, calls.Load(), bound, "kClusters=%d", c)
			if c == 1 {
				assert.LessOrEqual(t, calls.Load(), int64(depth))
			}
		}
	}
}

func TestSearchSelfRetrieval(t *testing.T) {
	features := randomSparse(t, 15, 1000, 256, 10)
	tree, err := Build(features, sequence(1000), testConfig(4, 12))
	require.NoError(t, err)

	res, err := tree.Search(features.Slice(100, 150))
	require.NoError(t, err)
	for i, row := range res {
		require.Len(t, row, 1)
		assert.Equal(t, 100+i, row[0].Record)
		assert.InDelta(t, 0, row[0].Distance, 1e-9)
	}
}

func TestSearchRecordsStripsDistances(t *testing.T) {
	features := randomSparse(t, 16, 300, 64, 5)
	tree, err := Build(features, sequence(300), testConfig(1, 10))
	require.NoError(t, err)

	queries := features.Slice(0, 17)
	recs, err := tree.SearchRecords(queries, WithK(4), WithKClusters(2))
	require.NoError(t, err)
	require.Len(t, recs, 17)

	full, err := tree.Search(queries, WithK(4), WithKClusters(2))
	require.NoError(t, err)
	for i := range recs {
		require.Len(t, recs[i], len(full[i]))
		for j := range recs[i] {
			assert.Equal(t, full[i][j].Record, recs[i][j])
		}
	}
}

func TestSearchBatchesMatchSequential(t *testing.T) {
	features := randomSparse(t, 17, 500, 64, 6)
	seq := testConfig(8, 9)
	par := testConfig(8, 9)
	par.SearchBatchSize = 7
	par.SearchWorkers = 4

	a, err := Build(features, sequence(500), seq)
	require.NoError(t, err)
	b, err := Build(features, sequence(500), par)
	require.NoError(t, err)

	queries := features.Slice(0, 100)
	ra, err := a.Search(queries, WithK(5), WithKClusters(2))
	require.NoError(t, err)
	rb, err := b.Search(queries, WithK(5), WithKClusters(2))
	require.NoError(t, err)
	assert.Equal(t, ra, rb)
}

func TestSearchInvalidOptions(t *testing.T) {
	features := randomSparse(t, 18, 30, 16, 3)
	tree, err := Build(features, sequence(30), nil)
	require.NoError(t, err)

	_, err = tree.Search(features, WithK(0))
	require.ErrorIs(t, err, ErrInvalidK)
	_, err = tree.Search(features, WithKClusters(0))
	require.ErrorIs(t, err, ErrInvalidKClusters)
}

func TestScenarioTenThousandRecords(t *testing.T) {
	if testing.Short() {
		t.Skip("large index")
	}
	const n, dim = 10_000, 5_000
	features := randomSparse(t, 19, n, dim, 30)
	tree, err := Build(features, sequence(n), testConfig(21, 0))
	require.NoError(t, err)
	require.Equal(t, 100, tree.BranchFactor())
	require.False(t, tree.Root().Load().IsLeaf())

	for _, i := range []int{0, 17, 999, 5_000, 9_999} {
		res, err := tree.Search(features.Slice(i, i+1), WithK(1))
		require.NoError(t, err)
		require.Len(t, res[0], 1)
		assert.Equal(t, i, res[0][0].Record)
	}
}

func TestKBestAndUniqueFirst(t *testing.T) {
	in := []Result[string]{
		{0.5, "a"}, {0.2, "b"}, {0.1, "a"}, {0.2, "c"}, {0.9, "d"},
	}
	uniq := uniqueFirst(append([]Result[string](nil), in...))
	assert.Equal(t, []Result[string]{{0.5, "a"}, {0.2, "b"}, {0.2, "c"}, {0.9, "d"}}, uniq)

	best := kBest(uniq, 3)
	assert.Equal(t, []Result[string]{{0.2, "b"}, {0.2, "c"}, {0.5, "a"}}, best)

	assert.Equal(t, [][]string{{"b", "c"}}, stripDistances([][]Result[string]{best[:2]}))
}

func TestSearchEmptyQueryBatch(t *testing.T) {
	features := randomSparse(t, 20, 30, 16, 3)
	tree, err := Build(features, sequence(30), nil)
	require.NoError(t, err)

	res, err := tree.Search(sparse.Must(sparse.NewMatrix(16)))
	require.NoError(t, err)
	assert.Empty(t, res)
}

// foreignNode is a Node implementation the search does not know how to traverse.
type foreignNode struct{}

func (foreignNode) IsLeaf() bool                      { return false }
func (foreignNode) Len() int                          { return 0 }
func (foreignNode) collect(*[]*sparse.Matrix, *[]int) {}

func TestSearchUnknownNodeType(t *testing.T) {
	features := randomSparse(t, 21, 30, 16, 3)
	tree, err := Build(features, sequence(30), nil)
	require.NoError(t, err)

	tree.root.store(foreignNode{})
	_, err = tree.Search(features.Slice(0, 2))
	require.ErrorContains(t, err, "unexpected node type indexer.foreignNode")
}
