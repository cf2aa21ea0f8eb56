package main

import (
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ic-timon/sparnn/bench/gen"
	"github.com/ic-timon/sparnn/bench/metrics"
	"github.com/ic-timon/sparnn/indexer"
)

func newConcurrencyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "concurrency",
		Short: "Throughput and tail latency of concurrent searches on one ensemble",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			return a.runConcurrency()
		},
	}
}

func (a *app) runConcurrency() error {
	c := a.cfg
	n, total := c.Concurrency.Vectors, c.Concurrency.Requests
	data := gen.RandomSparse(n+c.Queries, c.Dim, c.NNZ, c.Seed)
	queries := data.Slice(n, data.Rows())

	a.log.Info("building ensemble", "vectors", n, "trees", c.Concurrency.NumIndexes)
	t0 := time.Now()
	idx, err := indexer.BuildEnsemble(data.Slice(0, n), ids(n), a.indexConfig(0), c.Concurrency.NumIndexes)
	if err != nil {
		return err
	}
	a.log.Info("ensemble built", "build_ms", ms(time.Since(t0)))

	var rows []metrics.ConcurrencyRow
	for _, level := range c.Concurrency.Levels {
		if level <= 0 {
			continue
		}
		durations := make([]time.Duration, total)
		perWorker := (total + level - 1) / level
		start := time.Now()
		var g errgroup.Group
		for w := range level {
			g.Go(func() error {
				for i := w * perWorker; i < min((w+1)*perWorker, total); i++ {
					q := queries.Slice(i%queries.Rows(), i%queries.Rows()+1)
					t1 := time.Now()
					if _, err := idx.SearchRecords(q, indexer.WithK(c.K)); err != nil {
						return err
					}
					durations[i] = time.Since(t1)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		elapsed := time.Since(start).Seconds()

		stats := metrics.LatencyStatsFromDurations(durations)
		ratio := 1.0
		if stats.P50Ms > 0 {
			ratio = stats.P99Ms / stats.P50Ms
		}
		snap := metrics.Take()
		row := metrics.ConcurrencyRow{
			Concurrency:  level,
			VectorCount:  n,
			QPS:          float64(total) / elapsed,
			SearchP50Ms:  stats.P50Ms,
			SearchP99Ms:  stats.P99Ms,
			NumGoroutine: snap.NumGoroutine,
			P99P50Ratio:  ratio,
		}
		rows = append(rows, row)
		a.log.Info("concurrency result", "level", level, "qps", row.QPS,
			"p50_ms", stats.P50Ms, "p99_ms", stats.P99Ms, "p99_p50", ratio)
	}
	return writeReport(a, "bench_report_concurrency_", rows)
}
