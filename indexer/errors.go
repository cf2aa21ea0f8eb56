package indexer

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch is returned when the feature matrix and records differ in length.
	ErrLengthMismatch = errors.New("indexer: feature rows and records differ in length")
	// ErrInvalidK is returned when k is not positive.
	ErrInvalidK = errors.New("indexer: k must be positive")
	// ErrInvalidKClusters is returned when kClusters is not positive.
	ErrInvalidKClusters = errors.New("indexer: kClusters must be positive")
	// ErrInvalidBranchFactor is returned for a negative branch factor or a branch factor of 1.
	ErrInvalidBranchFactor = errors.New("indexer: branch factor must be 0 (auto) or at least 2")
	// ErrInvalidNumIndexes is returned when an ensemble size or tree count is out of range.
	ErrInvalidNumIndexes = errors.New("indexer: invalid number of indexes")
)

// ErrDimensionMismatch indicates a vector or query whose dimensionality differs from the index.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("indexer: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}
