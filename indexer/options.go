package indexer

import (
	"fmt"

	"github.com/ic-timon/sparnn/distance"
)

// SearchOption configures a Search or SearchRecords call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	k             int
	kClusters     int
	maxDistance   float64
	numIndexes    int
	numIndexesSet bool
}

// WithK sets the number of results per query row. Default 1.
func WithK(k int) SearchOption {
	return func(o *searchOptions) { o.k = k }
}

// WithKClusters sets how many clusters are explored at every level. Default 1.
// Larger values raise recall at the cost of speed.
func WithKClusters(c int) SearchOption {
	return func(o *searchOptions) { o.kClusters = c }
}

// WithMaxDistance drops results farther than d. It only applies to records, never to
// the choice of clusters. Default unbounded.
func WithMaxDistance(d float64) SearchOption {
	return func(o *searchOptions) { o.maxDistance = d }
}

// WithNumIndexes restricts an Ensemble search to its first n trees. Default all.
// Trees ignore it.
func WithNumIndexes(n int) SearchOption {
	return func(o *searchOptions) {
		o.numIndexes = n
		o.numIndexesSet = true
	}
}

func newSearchOptions(opts []SearchOption) (*searchOptions, error) {
	o := &searchOptions{
		k:           1,
		kClusters:   1,
		maxDistance: distance.Unbounded,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.k <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, o.k)
	}
	if o.kClusters <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidKClusters, o.kClusters)
	}
	return o, nil
}
