package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ic-timon/sparnn/bench/gen"
	"github.com/ic-timon/sparnn/bench/metrics"
	"github.com/ic-timon/sparnn/indexer"
	"github.com/ic-timon/sparnn/sparse"
)

func newSweepCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Build time, depth and search latency across branch factors",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runSweep()
		},
	}
}

func (a *app) runSweep() error {
	c := a.cfg
	n := c.Sweep.Vectors
	data := gen.RandomSparse(n+c.Queries, c.Dim, c.NNZ, c.Seed)
	features, queries := data.Slice(0, n), data.Slice(n, data.Rows())
	records := ids(n)

	var rows []metrics.SweepRow
	for _, branch := range c.Sweep.BranchFactors {
		a.log.Info("sweep", "branch_factor", branch, "vectors", n)
		metrics.GC()
		before := metrics.Take()

		t0 := time.Now()
		tree, err := indexer.Build(features, records, a.indexConfig(branch))
		if err != nil {
			return err
		}
		buildDur := time.Since(t0)
		allocRate, gcs := metrics.Diff(before, metrics.Take())

		durations, err := timeQueries(queries, func(q *sparse.Matrix) error {
			_, err := tree.SearchRecords(q, indexer.WithK(c.K))
			return err
		})
		if err != nil {
			return err
		}
		stats := metrics.LatencyStatsFromDurations(durations)

		metrics.GC()
		after := metrics.Take()
		row := metrics.SweepRow{
			BranchFactor: tree.BranchFactor(),
			VectorCount:  n,
			Depth:        tree.MaxDepth(),
			BuildDurMs:   ms(buildDur),
			AllocRateBps: allocRate,
			GCs:          gcs,
			SearchP50Ms:  stats.P50Ms,
			SearchP99Ms:  stats.P99Ms,
			HeapAllocMB:  after.HeapAllocMB(),
		}
		rows = append(rows, row)
		a.log.Info("sweep result", "build_ms", row.BuildDurMs, "alloc_bps", allocRate, "gcs", gcs, "depth", row.Depth,
			"p50_ms", stats.P50Ms, "p99_ms", stats.P99Ms, "heap_mb", row.HeapAllocMB)
	}
	return writeReport(a, "bench_report_sweep_", rows)
}
