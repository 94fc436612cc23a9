// Package probe performs the actual measurements: timed disk I/O
// benchmarks against a directory, and single HTTP GET health checks.
package probe

import (
	"crypto/rand"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"time"
)

// ProbeFileName is the fixed name of the benchmark scratch file created
// inside each target directory.
const ProbeFileName = "test_speed.tmp"

// Mode selects the I/O workload.
type Mode string

const (
	ModeWrite Mode = "write"
	ModeRead  Mode = "read"
)

// LatencyStats summarizes per-operation elapsed times, in seconds.
// StdDev is the population standard deviation, 0 when fewer than two
// operations completed.
type LatencyStats struct {
	Min    float64
	Max    float64
	Avg    float64
	StdDev float64
}

// Result holds the derived metrics of one benchmark run.
type Result struct {
	MBps    float64
	IOPS    float64
	Latency LatencyStats
}

// Benchmark drives a timed I/O workload. The duration bounds the whole
// run by wall clock: a single operation can overshoot it by at most one
// chunk's worth of latency before the loop re-checks.
type Benchmark struct {
	Duration  time.Duration
	ChunkSize int
}

// NewBenchmark returns a benchmark with the standard parameters:
// three seconds per mode, 4 KiB chunks.
func NewBenchmark() Benchmark {
	return Benchmark{Duration: 3 * time.Second, ChunkSize: 4 * 1024}
}

// Run benchmarks the directory in the given mode and returns throughput,
// IOPS, and the latency distribution. Any filesystem error aborts the
// run and is returned; the caller treats it as "skip this target this
// cycle". Read mode re-reads the probe file left behind by a prior write
// run, seeking back to the start on EOF, so it measures sustained
// re-read throughput rather than a single pass.
//
// The probe file is left in place since read mode depends on it. Call
// Cleanup once both modes have run.
func (b Benchmark) Run(dir string, mode Mode) (Result, error) {
	path := filepath.Join(dir, ProbeFileName)

	var f *os.File
	var err error
	switch mode {
	case ModeWrite:
		f, err = os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	case ModeRead:
		f, err = os.Open(path)
	default:
		return Result{}, fmt.Errorf("probe: unknown mode %q", mode)
	}
	if err != nil {
		return Result{}, fmt.Errorf("probe: %s benchmark on %s: %w", mode, dir, err)
	}
	defer f.Close()

	buf := make([]byte, b.ChunkSize)
	var latencies []float64
	var totalBytes int64

	start := time.Now()
	for time.Since(start) < b.Duration {
		if mode == ModeWrite {
			if _, err := rand.Read(buf); err != nil {
				return Result{}, fmt.Errorf("probe: generating data: %w", err)
			}
			opStart := time.Now()
			if _, err := f.Write(buf); err != nil {
				return Result{}, fmt.Errorf("probe: write benchmark on %s: %w", dir, err)
			}
			// Force the write through to the device so we measure the
			// filesystem, not the page cache.
			if err := f.Sync(); err != nil {
				return Result{}, fmt.Errorf("probe: sync on %s: %w", dir, err)
			}
			latencies = append(latencies, time.Since(opStart).Seconds())
			totalBytes += int64(b.ChunkSize)
		} else {
			opStart := time.Now()
			n, err := f.Read(buf)
			if n == 0 || err == io.EOF {
				if _, serr := f.Seek(0, io.SeekStart); serr != nil {
					return Result{}, fmt.Errorf("probe: read benchmark on %s: %w", dir, serr)
				}
				continue
			}
			if err != nil {
				return Result{}, fmt.Errorf("probe: read benchmark on %s: %w", dir, err)
			}
			latencies = append(latencies, time.Since(opStart).Seconds())
			totalBytes += int64(n)
		}
	}

	seconds := b.Duration.Seconds()
	return Result{
		MBps:    float64(totalBytes) / (1024 * 1024) / seconds,
		IOPS:    float64(len(latencies)) / seconds,
		Latency: CalculateLatencyStats(latencies),
	}, nil
}

// Cleanup removes the probe file from the directory. Best effort:
// failures are swallowed.
func Cleanup(dir string) {
	_ = os.Remove(filepath.Join(dir, ProbeFileName))
}

// CheckDir verifies that dir exists, is a directory, and is writable by
// creating and removing a sentinel file.
func CheckDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("probe: target %s: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("probe: target %s is not a directory", dir)
	}

	sentinel := filepath.Join(dir, ".write_test")
	if err := os.WriteFile(sentinel, []byte("test"), 0o644); err != nil {
		return fmt.Errorf("probe: target %s is not writable: %w", dir, err)
	}
	if err := os.Remove(sentinel); err != nil {
		return fmt.Errorf("probe: target %s: %w", dir, err)
	}
	return nil
}

// CalculateLatencyStats computes min, max, mean, and population standard
// deviation over per-operation latencies. An empty input yields the zero
// struct; a single sample yields StdDev 0.
func CalculateLatencyStats(latencies []float64) LatencyStats {
	if len(latencies) == 0 {
		return LatencyStats{}
	}

	min, max := latencies[0], latencies[0]
	var sum float64
	for _, v := range latencies {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	avg := sum / float64(len(latencies))

	var stddev float64
	if len(latencies) > 1 {
		var sq float64
		for _, v := range latencies {
			d := v - avg
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(len(latencies)))
	}

	return LatencyStats{Min: min, Max: max, Avg: avg, StdDev: stddev}
}
