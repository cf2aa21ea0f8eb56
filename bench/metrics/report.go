package metrics

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"
)

// LatencyStats summarizes a set of request latencies.
type LatencyStats struct {
	P50Ms float64
	P95Ms float64
	P99Ms float64
	AvgMs float64
	N     int
}

// LatencyStatsFromDurations computes percentiles and the mean of durations.
func LatencyStatsFromDurations(durations []time.Duration) LatencyStats {
	if len(durations) == 0 {
		return LatencyStats{}
	}
	ms := make([]float64, len(durations))
	for i, d := range durations {
		ms[i] = float64(d.Nanoseconds()) / 1e6
	}
	slices.Sort(ms)
	return LatencyStats{
		P50Ms: Percentile(ms, 50),
		P95Ms: Percentile(ms, 95),
		P99Ms: Percentile(ms, 99),
		AvgMs: stat.Mean(ms, nil),
		N:     len(ms),
	}
}

// Percentile returns the p-th percentile (0-100) of an ascending slice.
func Percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	p = min(max(p, 0), 100)
	return stat.Quantile(p/100, stat.Empirical, sorted, nil)
}

// Row is one line of a CSV report.
type Row interface {
	Header() []string
	Record() []string
}

// SweepRow is one branch factor of the sweep report.
type SweepRow struct {
	BranchFactor int
	VectorCount  int
	Depth        int
	BuildDurMs   float64
	AllocRateBps float64
	GCs          uint32
	SearchP50Ms  float64
	SearchP99Ms  float64
	HeapAllocMB  float64
}

func (SweepRow) Header() []string {
	return []string{"BranchFactor", "VectorCount", "Depth", "BuildDurMs", "AllocRateBps", "GCs", "SearchP50Ms", "SearchP99Ms", "HeapAllocMB"}
}

func (r SweepRow) Record() []string {
	return []string{itoa(r.BranchFactor), itoa(r.VectorCount), itoa(r.Depth), ftoa(r.BuildDurMs), ftoa(r.AllocRateBps), utoa(r.GCs), ftoa(r.SearchP50Ms), ftoa(r.SearchP99Ms), ftoa(r.HeapAllocMB)}
}

// ScaleRow is one dataset size of the scale report.
type ScaleRow struct {
	VectorCount  int
	BranchFactor int
	BuildDurMs   float64
	AllocRateBps float64
	GCs          uint32
	InsertP50Ms  float64
	InsertP99Ms  float64
	SearchP50Ms  float64
	SearchP99Ms  float64
	HeapSysMB    float64
}

func (ScaleRow) Header() []string {
	return []string{"VectorCount", "BranchFactor", "BuildDurMs", "AllocRateBps", "GCs", "InsertP50Ms", "InsertP99Ms", "SearchP50Ms", "SearchP99Ms", "HeapSysMB"}
}

func (r ScaleRow) Record() []string {
	return []string{itoa(r.VectorCount), itoa(r.BranchFactor), ftoa(r.BuildDurMs), ftoa(r.AllocRateBps), utoa(r.GCs), ftoa(r.InsertP50Ms), ftoa(r.InsertP99Ms), ftoa(r.SearchP50Ms), ftoa(r.SearchP99Ms), ftoa(r.HeapSysMB)}
}

// ConcurrencyRow is one concurrency level of the concurrency report.
type ConcurrencyRow struct {
	Concurrency  int
	VectorCount  int
	QPS          float64
	SearchP50Ms  float64
	SearchP99Ms  float64
	NumGoroutine int
	P99P50Ratio  float64
}

func (ConcurrencyRow) Header() []string {
	return []string{"Concurrency", "VectorCount", "QPS", "SearchP50Ms", "SearchP99Ms", "NumGoroutine", "P99P50Ratio"}
}

func (r ConcurrencyRow) Record() []string {
	return []string{itoa(r.Concurrency), itoa(r.VectorCount), ftoa(r.QPS), ftoa(r.SearchP50Ms), ftoa(r.SearchP99Ms), itoa(r.NumGoroutine), ftoa(r.P99P50Ratio)}
}

// RecallRow is one (numIndexes, kClusters) point of the recall report.
type RecallRow struct {
	NumIndexes  int
	KClusters   int
	K           int
	Recall      float64
	SearchP50Ms float64
	SearchP99Ms float64
}

func (RecallRow) Header() []string {
	return []string{"NumIndexes", "KClusters", "K", "Recall", "SearchP50Ms", "SearchP99Ms"}
}

func (r RecallRow) Record() []string {
	return []string{itoa(r.NumIndexes), itoa(r.KClusters), itoa(r.K), strconv.FormatFloat(r.Recall, 'f', 4, 64), ftoa(r.SearchP50Ms), ftoa(r.SearchP99Ms)}
}

// EnvRow wraps Environment for a one-line CSV.
type EnvRow Environment

func (EnvRow) Header() []string {
	return []string{"GOOS", "GOARCH", "GoVersion", "NumCPU", "GOMAXPROCS", "AVX2", "AVX512", "NEON"}
}

func (r EnvRow) Record() []string {
	return []string{r.GOOS, r.GOARCH, r.GoVersion, itoa(r.NumCPU), itoa(r.GOMAXPROCS),
		strconv.FormatBool(r.AVX2), strconv.FormatBool(r.AVX512), strconv.FormatBool(r.NEON)}
}

// WriteCSV writes rows to path, creating the parent directory.
func WriteCSV[T Row](rows []T, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	var zero T
	if err := w.Write(zero.Header()); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write(r.Record()); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// ReportPath returns a dated CSV path under dir.
func ReportPath(dir, prefix string) string {
	return filepath.Join(dir, prefix+time.Now().Format("20060102")+".csv")
}

func itoa(v int) string { return strconv.Itoa(v) }

func utoa(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func ftoa(v float64) string { return fmt.Sprintf("%.2f", v) }
