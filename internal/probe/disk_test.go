package probe

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// quickBenchmark keeps test runs short while still exercising the loop.
func quickBenchmark() Benchmark {
	return Benchmark{Duration: 200 * time.Millisecond, ChunkSize: 4 * 1024}
}

func TestCalculateLatencyStats_Empty(t *testing.T) {
	got := CalculateLatencyStats(nil)
	if got != (LatencyStats{}) {
		t.Errorf("expected zero struct for empty input, got %+v", got)
	}
}

func TestCalculateLatencyStats_Single(t *testing.T) {
	got := CalculateLatencyStats([]float64{0.004})
	want := LatencyStats{Min: 0.004, Max: 0.004, Avg: 0.004, StdDev: 0}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestCalculateLatencyStats_Multiple(t *testing.T) {
	latencies := []float64{0.001, 0.002, 0.003, 0.010}
	got := CalculateLatencyStats(latencies)

	if got.Min != 0.001 || got.Max != 0.010 {
		t.Errorf("unexpected min/max: %+v", got)
	}
	// Avg must lie strictly between min and max for non-constant input.
	if got.Avg <= got.Min || got.Avg >= got.Max {
		t.Errorf("avg %v not strictly between min %v and max %v", got.Avg, got.Min, got.Max)
	}

	// Population stddev, computed independently.
	mean := (0.001 + 0.002 + 0.003 + 0.010) / 4
	var sq float64
	for _, v := range latencies {
		sq += (v - mean) * (v - mean)
	}
	want := math.Sqrt(sq / 4)
	if math.Abs(got.StdDev-want) > 1e-12 {
		t.Errorf("expected stddev %v, got %v", want, got.StdDev)
	}
}

func TestCalculateLatencyStats_AllEqual(t *testing.T) {
	got := CalculateLatencyStats([]float64{0.005, 0.005, 0.005})
	if got.StdDev != 0 {
		t.Errorf("expected stddev 0 for constant input, got %v", got.StdDev)
	}
	if got.Avg != 0.005 || got.Min != 0.005 || got.Max != 0.005 {
		t.Errorf("unexpected stats for constant input: %+v", got)
	}
}

func TestBenchmarkRun_WriteThenRead(t *testing.T) {
	dir := t.TempDir()
	b := quickBenchmark()

	write, err := b.Run(dir, ModeWrite)
	if err != nil {
		t.Fatalf("write run failed: %v", err)
	}
	if write.MBps <= 0 || write.IOPS <= 0 {
		t.Errorf("expected positive write throughput, got %+v", write)
	}
	if write.Latency.Avg <= 0 {
		t.Errorf("expected positive average write latency, got %+v", write.Latency)
	}

	// The probe file written above must still be there for read mode.
	if _, err := os.Stat(filepath.Join(dir, ProbeFileName)); err != nil {
		t.Fatalf("expected probe file to survive the write run: %v", err)
	}

	read, err := b.Run(dir, ModeRead)
	if err != nil {
		t.Fatalf("read run failed: %v", err)
	}
	if read.MBps <= 0 || read.IOPS <= 0 {
		t.Errorf("expected positive read throughput, got %+v", read)
	}

	Cleanup(dir)
	if _, err := os.Stat(filepath.Join(dir, ProbeFileName)); !os.IsNotExist(err) {
		t.Errorf("expected probe file removed by Cleanup, stat err = %v", err)
	}
}

func TestBenchmarkRun_ReadWithoutProbeFile(t *testing.T) {
	b := quickBenchmark()
	if _, err := b.Run(t.TempDir(), ModeRead); err == nil {
		t.Fatal("expected error reading a directory with no probe file")
	}
}

func TestBenchmarkRun_MissingDirectory(t *testing.T) {
	b := quickBenchmark()
	if _, err := b.Run(filepath.Join(t.TempDir(), "missing"), ModeWrite); err == nil {
		t.Fatal("expected error benchmarking a missing directory")
	}
}

func TestBenchmarkRun_UnknownMode(t *testing.T) {
	b := quickBenchmark()
	if _, err := b.Run(t.TempDir(), Mode("append")); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}

func TestCleanup_MissingFileIsSwallowed(t *testing.T) {
	// Must not panic or error when there is nothing to remove.
	Cleanup(t.TempDir())
}

func TestCheckDir(t *testing.T) {
	if err := CheckDir(t.TempDir()); err != nil {
		t.Errorf("expected writable temp dir to pass: %v", err)
	}

	if err := CheckDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("expected error for missing directory")
	}

	file := filepath.Join(t.TempDir(), "afile")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	if err := CheckDir(file); err == nil {
		t.Error("expected error for a plain file target")
	}
}

func TestCheckDir_ReadOnly(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	dir := t.TempDir()
	if err := os.Chmod(dir, 0o555); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	t.Cleanup(func() { os.Chmod(dir, 0o755) })

	if err := CheckDir(dir); err == nil {
		t.Error("expected error for read-only directory")
	}
}
