// Command sparnn-bench measures build, insert and search behavior of the index.
//
// Usage:
//
//	sparnn-bench sweep|scale|concurrency|recall [--config bench.yaml] [--debug] [--pretty] [--metrics-addr :9090]
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/ic-timon/sparnn/bench/metrics"
	"github.com/ic-timon/sparnn/indexer"
	"github.com/ic-timon/sparnn/logger"
	"github.com/ic-timon/sparnn/sparse"
)

type app struct {
	configPath  string
	debug       bool
	pretty      bool
	metricsAddr string

	cfg     benchConfig
	log     *slog.Logger
	reg     *prometheus.Registry
	metrics *indexer.Metrics
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:          "sparnn-bench",
		Short:        "Benchmark the cluster-pruning sparse index",
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return a.setup()
		},
	}
	cmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "YAML workload file")
	cmd.PersistentFlags().BoolVarP(&a.debug, "debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVar(&a.pretty, "pretty", false, "Colorized console logs")
	cmd.PersistentFlags().StringVar(&a.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while running")

	cmd.AddCommand(newSweepCmd(a), newScaleCmd(a), newConcurrencyCmd(a), newRecallCmd(a))
	return cmd
}

func (a *app) setup() error {
	a.log = logger.New(logger.WithDebug(a.debug), logger.WithPretty(a.pretty))
	cfg, err := loadBenchConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.reg = prometheus.NewRegistry()
	a.reg.MustRegister(collectors.NewGoCollector())
	a.metrics = indexer.NewMetrics(a.reg)
	if a.metricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: a.metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				a.log.Error("metrics server stopped", "addr", a.metricsAddr, "error", err)
			}
		}()
		a.log.Info("serving metrics", "addr", a.metricsAddr)
	}
	return nil
}

// indexConfig returns an index configuration for the workload. branch 0 selects the
// automatic branch factor.
func (a *app) indexConfig(branch int) *indexer.Config {
	cfg := indexer.DefaultConfig()
	cfg.BranchFactor = branch
	cfg.Seed = a.cfg.Seed
	cfg.Logger = a.log
	cfg.Metrics = a.metrics
	return cfg
}

func writeReport[T metrics.Row](a *app, prefix string, rows []T) error {
	path := metrics.ReportPath(a.cfg.ReportDir, prefix)
	if err := metrics.WriteCSV(rows, path); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	envPath := metrics.ReportPath(a.cfg.ReportDir, prefix+"env_")
	if err := metrics.WriteCSV([]metrics.EnvRow{metrics.EnvRow(metrics.Env())}, envPath); err != nil {
		return fmt.Errorf("write environment: %w", err)
	}
	a.log.Info("report written", "path", path, "env", envPath)
	return nil
}

// ids returns the records 0..n-1.
func ids(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// timeQueries runs fn once per query row and returns the latency of each call.
func timeQueries(queries *sparse.Matrix, fn func(q *sparse.Matrix) error) ([]time.Duration, error) {
	durations := make([]time.Duration, queries.Rows())
	for i := range durations {
		q := queries.Slice(i, i+1)
		t0 := time.Now()
		if err := fn(q); err != nil {
			return nil, err
		}
		durations[i] = time.Since(t0)
	}
	return durations, nil
}

func ms(d time.Duration) float64 { return float64(d.Nanoseconds()) / 1e6 }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
