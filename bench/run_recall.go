package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/ic-timon/sparnn/bench/gen"
	"github.com/ic-timon/sparnn/bench/metrics"
	"github.com/ic-timon/sparnn/distance"
	"github.com/ic-timon/sparnn/indexer"
	"github.com/ic-timon/sparnn/sparse"
)

func newRecallCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "recall",
		Short: "Recall@k against brute force across tree counts and cluster fan-out",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runRecall()
		},
	}
}

func (a *app) runRecall() error {
	c := a.cfg
	if len(c.Recall.NumIndexes) == 0 {
		return nil
	}
	n := c.Recall.Vectors
	data := gen.RandomSparse(n, c.Dim, c.NNZ, c.Seed)
	// Queries are noisy copies of indexed rows so every query has close neighbors.
	queries := gen.Perturb(data.Slice(0, min(c.Queries, n)), 0.2, c.Seed+1)
	features, records := data, ids(n)

	exact, err := bruteForce(features, records, queries, c.K)
	if err != nil {
		return err
	}

	trees := slices.Max(c.Recall.NumIndexes)
	idx, err := indexer.BuildEnsemble(features, records, a.indexConfig(0), trees)
	if err != nil {
		return err
	}

	var rows []metrics.RecallRow
	for _, numIndexes := range c.Recall.NumIndexes {
		for _, kClusters := range c.Recall.KClusters {
			got := make([][]int, queries.Rows())
			durations := make([]time.Duration, queries.Rows())
			for i := range got {
				t0 := time.Now()
				res, err := idx.SearchRecords(queries.Slice(i, i+1), indexer.WithK(c.K),
					indexer.WithKClusters(kClusters), indexer.WithNumIndexes(numIndexes))
				if err != nil {
					return err
				}
				durations[i] = time.Since(t0)
				got[i] = res[0]
			}
			stats := metrics.LatencyStatsFromDurations(durations)
			row := metrics.RecallRow{
				NumIndexes:  numIndexes,
				KClusters:   kClusters,
				K:           c.K,
				Recall:      recallAt(exact, got),
				SearchP50Ms: stats.P50Ms,
				SearchP99Ms: stats.P99Ms,
			}
			rows = append(rows, row)
			a.log.Info("recall result", "num_indexes", numIndexes, "k_clusters", kClusters,
				"recall", row.Recall, "p50_ms", stats.P50Ms)
		}
	}
	return writeReport(a, "bench_report_recall_", rows)
}

// bruteForce returns the exact top-k records of every query with a single oracle
// over the whole dataset.
func bruteForce(features *sparse.Matrix, records []int, queries *sparse.Matrix, k int) ([][]int, error) {
	oracle, err := distance.NewOracle(distance.Cosine, features, records)
	if err != nil {
		return nil, fmt.Errorf("brute force oracle: %w", err)
	}
	res, err := oracle.NearestSearch(queries, k, distance.Unbounded)
	if err != nil {
		return nil, err
	}
	out := make([][]int, len(res))
	for i, row := range res {
		out[i] = make([]int, len(row))
		for j, r := range row {
			out[i][j] = r.Payload
		}
	}
	return out, nil
}

// recallAt is the mean fraction of exact neighbors present in got.
func recallAt(exact, got [][]int) float64 {
	if len(exact) == 0 {
		return 0
	}
	var sum float64
	for i, want := range exact {
		if len(want) == 0 {
			sum++
			continue
		}
		hits := 0
		for _, r := range want {
			if slices.Contains(got[i], r) {
				hits++
			}
		}
		sum += float64(hits) / float64(len(want))
	}
	return sum / float64(len(exact))
}
