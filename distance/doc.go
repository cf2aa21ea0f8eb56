// Package distance defines the nearest-neighbor oracle that the cluster tree queries
// at every level, together with the built-in metrics.
//
// An Index answers exact top-k queries against a fixed reference matrix and reports
// matches by reference row. An Oracle pairs an Index with one payload per row, which
// is what the tree stores at each node: records at the leaves, child slots above them.
//
// Any metric can be plugged in by supplying a Factory:
//
//	oracle, err := distance.NewOracle(distance.Cosine, features, records)
//	hits, err := oracle.NearestSearch(queries, 5, distance.Unbounded)
//
// Results are ordered by ascending distance. Equal distances are ordered by ascending
// reference row; callers should not depend on this.
package distance
