// Package indexer provides the cluster-pruning index for approximate nearest-neighbor
// search over sparse vectors.
//
// A Tree recursively partitions its records around randomly sampled centroids until a
// node is small enough to scan directly. A search descends into the KClusters nearest
// clusters at every level and merges the leaf matches. An Ensemble holds several
// independently randomized trees and merges their answers to raise recall.
//
// Quick start:
//
//	cfg := indexer.DefaultConfig()
//	cfg.Seed = 42
//	idx, err := indexer.BuildEnsemble(features, docIDs, cfg, 2)
//	err = idx.Insert(vec, docID)
//	results, err := idx.Search(queries, indexer.WithK(5), indexer.WithKClusters(2))
package indexer
