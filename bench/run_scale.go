package main

import (
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/ic-timon/sparnn/bench/gen"
	"github.com/ic-timon/sparnn/bench/metrics"
	"github.com/ic-timon/sparnn/indexer"
	"github.com/ic-timon/sparnn/sparse"
)

func newScaleCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "scale",
		Short: "Build, insert and search cost as the dataset grows",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runScale()
		},
	}
}

func (a *app) runScale() error {
	c := a.cfg
	if len(c.Scale.Sizes) == 0 {
		return nil
	}
	largest := slices.Max(c.Scale.Sizes)
	data := gen.RandomSparse(largest+c.Scale.Inserts+c.Queries, c.Dim, c.NNZ, c.Seed)
	extra := data.Slice(largest, largest+c.Scale.Inserts)
	queries := data.Slice(largest+c.Scale.Inserts, data.Rows())

	var rows []metrics.ScaleRow
	for _, n := range c.Scale.Sizes {
		a.log.Info("scale", "vectors", n)
		metrics.GC()
		before := metrics.Take()

		t0 := time.Now()
		tree, err := indexer.Build(data.Slice(0, n), ids(n), a.indexConfig(0))
		if err != nil {
			return err
		}
		buildDur := time.Since(t0)
		allocRate, gcs := metrics.Diff(before, metrics.Take())

		inserts := make([]time.Duration, extra.Rows())
		for i := range inserts {
			t1 := time.Now()
			if err := tree.Insert(extra.Row(i), n+i); err != nil {
				return err
			}
			inserts[i] = time.Since(t1)
		}
		insertStats := metrics.LatencyStatsFromDurations(inserts)

		durations, err := timeQueries(queries, func(q *sparse.Matrix) error {
			_, err := tree.SearchRecords(q, indexer.WithK(c.K))
			return err
		})
		if err != nil {
			return err
		}
		stats := metrics.LatencyStatsFromDurations(durations)

		snap := metrics.Take()
		row := metrics.ScaleRow{
			VectorCount:  n,
			BranchFactor: tree.BranchFactor(),
			BuildDurMs:   ms(buildDur),
			AllocRateBps: allocRate,
			GCs:          gcs,
			InsertP50Ms:  insertStats.P50Ms,
			InsertP99Ms:  insertStats.P99Ms,
			SearchP50Ms:  stats.P50Ms,
			SearchP99Ms:  stats.P99Ms,
			HeapSysMB:    snap.HeapSysMB(),
		}
		rows = append(rows, row)
		a.log.Info("scale result", "build_ms", row.BuildDurMs, "alloc_bps", allocRate, "gcs", gcs, "insert_p99_ms", row.InsertP99Ms,
			"search_p50_ms", stats.P50Ms, "search_p99_ms", stats.P99Ms, "heap_sys_mb", row.HeapSysMB)
	}
	return writeReport(a, "bench_report_scale_", rows)
}
