// Package sparse provides the sparse feature vectors and row matrices indexed by sparnn.
//
// A Vector stores only its non-zero coordinates, sorted by column. A Matrix is an
// immutable list of rows sharing one dimensionality; slicing and row selection
// share the underlying vectors instead of copying them.
package sparse
