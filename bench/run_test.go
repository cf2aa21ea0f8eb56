package main

import (
	"encoding/csv"
	"log/slog"
	"os"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ic-timon/sparnn/bench/metrics"
)

func smallApp(t *testing.T) *app {
	t.Helper()
	cfg := defaultBenchConfig()
	cfg.Dim, cfg.NNZ, cfg.Queries = 200, 5, 5
	cfg.ReportDir = t.TempDir()
	cfg.Sweep.Vectors = 200
	cfg.Sweep.BranchFactors = []int{10}
	cfg.Scale.Sizes = []int{100}
	cfg.Scale.Inserts = 5
	return &app{cfg: cfg, log: slog.New(slog.DiscardHandler)}
}

func readReport(t *testing.T, a *app, prefix string) map[string]string {
	t.Helper()
	f, err := os.Open(metrics.ReportPath(a.cfg.ReportDir, prefix))
	require.NoError(t, err)
	defer f.Close()
	recs, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 2)
	row := make(map[string]string, len(recs[0]))
	for i, h := range recs[0] {
		row[h] = recs[1][i]
	}
	return row
}

func TestSweepReportsBuildAllocations(t *testing.T) {
	a := smallApp(t)
	require.NoError(t, a.runSweep())

	row := readReport(t, a, "bench_report_sweep_")
	assert.Equal(t, "10", row["BranchFactor"])
	assert.Equal(t, "200", row["VectorCount"])
	rate, err := strconv.ParseFloat(row["AllocRateBps"], 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rate, 0.0)
	_, err = strconv.ParseUint(row["GCs"], 10, 32)
	require.NoError(t, err)
}

func TestScaleReportsBuildAllocations(t *testing.T) {
	a := smallApp(t)
	require.NoError(t, a.runScale())

	row := readReport(t, a, "bench_report_scale_")
	assert.Equal(t, "100", row["VectorCount"])
	assert.Contains(t, row, "AllocRateBps")
	_, err := strconv.ParseUint(row["GCs"], 10, 32)
	require.NoError(t, err)
}
