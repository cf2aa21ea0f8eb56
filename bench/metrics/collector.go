// Package metrics collects runtime snapshots and writes bench reports.
package metrics

import (
	"runtime"
	"runtime/debug"
	"time"

	"golang.org/x/sys/cpu"
)

// Snapshot is a point-in-time view of the Go runtime.
type Snapshot struct {
	TS           time.Time
	HeapAlloc    uint64
	HeapSys      uint64
	HeapReleased uint64
	NumGC        uint32
	NumGoroutine int
}

// Take reads the current runtime statistics.
func Take() Snapshot {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return Snapshot{
		TS:           time.Now(),
		HeapAlloc:    m.HeapAlloc,
		HeapSys:      m.HeapSys,
		HeapReleased: m.HeapReleased,
		NumGC:        m.NumGC,
		NumGoroutine: runtime.NumGoroutine(),
	}
}

// HeapAllocMB is HeapAlloc in mebibytes.
func (s Snapshot) HeapAllocMB() float64 { return float64(s.HeapAlloc) / 1024 / 1024 }

// HeapSysMB is HeapSys in mebibytes.
func (s Snapshot) HeapSysMB() float64 { return float64(s.HeapSys) / 1024 / 1024 }

// GC forces a collection and returns freed memory to the OS.
func GC() {
	runtime.GC()
	debug.FreeOSMemory()
}

// Diff returns the allocation rate in bytes/s and the number of GCs between two snapshots.
func Diff(before, after Snapshot) (allocRateBps float64, gcDelta uint32) {
	elapsed := after.TS.Sub(before.TS).Seconds()
	if elapsed <= 0 {
		return 0, 0
	}
	allocDelta := max(int64(after.HeapAlloc)-int64(before.HeapAlloc), 0)
	allocRateBps = float64(allocDelta) / elapsed
	if after.NumGC >= before.NumGC {
		gcDelta = after.NumGC - before.NumGC
	}
	return allocRateBps, gcDelta
}

// Environment describes the machine a report was produced on.
type Environment struct {
	GOOS       string
	GOARCH     string
	GoVersion  string
	NumCPU     int
	GOMAXPROCS int
	AVX2       bool
	AVX512     bool
	NEON       bool
}

// Env captures the current environment, including the SIMD features the dense
// kernels can use.
func Env() Environment {
	return Environment{
		GOOS:       runtime.GOOS,
		GOARCH:     runtime.GOARCH,
		GoVersion:  runtime.Version(),
		NumCPU:     runtime.NumCPU(),
		GOMAXPROCS: runtime.GOMAXPROCS(0),
		AVX2:       cpu.X86.HasAVX2,
		AVX512:     cpu.X86.HasAVX512F,
		NEON:       cpu.ARM64.HasASIMD,
	}
}
