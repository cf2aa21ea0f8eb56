package indexer

import (
	"cmp"
	"slices"
)

// Result is a matched record and its distance to the query.
type Result[R comparable] struct {
	Distance float64
	Record   R
}

// kBest keeps the k lowest-distance results. Equal distances keep their input order.
func kBest[R comparable](results []Result[R], k int) []Result[R] {
	slices.SortStableFunc(results, func(a, b Result[R]) int {
		return cmp.Compare(a.Distance, b.Distance)
	})
	if len(results) > k {
		results = results[:k:k]
	}
	return results
}

// uniqueFirst drops repeated records, keeping the first occurrence and its distance.
func uniqueFirst[R comparable](results []Result[R]) []Result[R] {
	seen := make(map[R]struct{}, len(results))
	out := results[:0]
	for _, r := range results {
		if _, ok := seen[r.Record]; ok {
			continue
		}
		seen[r.Record] = struct{}{}
		out = append(out, r)
	}
	return out
}

// stripDistances keeps only the records of each row.
func stripDistances[R comparable](rows [][]Result[R]) [][]R {
	out := make([][]R, len(rows))
	for i, row := range rows {
		recs := make([]R, len(row))
		for j, r := range row {
			recs[j] = r.Record
		}
		out[i] = recs
	}
	return out
}
