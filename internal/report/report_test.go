package report

import (
	"path/filepath"
	"testing"
	"time"

	"resmon/internal/statstore"

	"github.com/google/go-cmp/cmp"
)

var testNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.Local)

func TestParseWindow_Presets(t *testing.T) {
	cases := []struct {
		preset string
		span   time.Duration
	}{
		{"1h", time.Hour},
		{"1d", 24 * time.Hour},
		{"1w", 7 * 24 * time.Hour},
		{"1m", 30 * 24 * time.Hour},
		{"1y", 365 * 24 * time.Hour},
	}
	for _, tc := range cases {
		t.Run(tc.preset, func(t *testing.T) {
			w, err := ParseWindow(tc.preset, "", "", testNow)
			if err != nil {
				t.Fatalf("ParseWindow failed: %v", err)
			}
			if got := w.End.Sub(w.Start); got != tc.span {
				t.Errorf("expected span %v, got %v", tc.span, got)
			}
			if !w.End.Equal(testNow) {
				t.Errorf("expected end = now, got %v", w.End)
			}
		})
	}
}

func TestParseWindow_Max(t *testing.T) {
	w, err := ParseWindow("max", "", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	if !w.Start.IsZero() {
		t.Errorf("expected open start, got %v", w.Start)
	}
	start, end := w.Range()
	if start != "" {
		t.Errorf("expected empty range start, got %q", start)
	}
	if end != statstore.Timestamp(testNow) {
		t.Errorf("unexpected range end %q", end)
	}
}

func TestParseWindow_DefaultsToOneHour(t *testing.T) {
	w, err := ParseWindow("", "", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	if w.Preset != "1h" || w.End.Sub(w.Start) != time.Hour {
		t.Errorf("expected 1h default, got %+v", w)
	}
}

func TestParseWindow_Unknown(t *testing.T) {
	if _, err := ParseWindow("2h", "", "", testNow); err == nil {
		t.Error("expected error for unknown preset")
	}
}

func TestParseWindow_ExplicitBounds(t *testing.T) {
	w, err := ParseWindow("1h", "2026-03-01", "2026-03-10 08:30", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	if w.Preset != "" {
		t.Errorf("explicit bounds should clear the preset, got %q", w.Preset)
	}
	wantStart := time.Date(2026, 3, 1, 0, 0, 0, 0, time.Local)
	wantEnd := time.Date(2026, 3, 10, 8, 30, 0, 0, time.Local)
	if !w.Start.Equal(wantStart) || !w.End.Equal(wantEnd) {
		t.Errorf("got [%v, %v], want [%v, %v]", w.Start, w.End, wantStart, wantEnd)
	}
}

func TestParseWindow_StartOnly(t *testing.T) {
	w, err := ParseWindow("", "2026-03-01", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	if !w.End.Equal(testNow) {
		t.Errorf("expected end filled from now, got %v", w.End)
	}
}

func TestParseWindow_EndBeforeStart(t *testing.T) {
	if _, err := ParseWindow("", "2026-03-10", "2026-03-01", testNow); err == nil {
		t.Error("expected error for inverted bounds")
	}
}

func TestParseWindow_BadTimestamp(t *testing.T) {
	if _, err := ParseWindow("", "yesterday", "", testNow); err == nil {
		t.Error("expected error for unparseable start")
	}
}

func TestBuild_EmptyStore(t *testing.T) {
	store := testStore(t)
	w, err := ParseWindow("max", "", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}

	rep, err := New(store).Build(w)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(rep.Tables) != len(statstore.Tables) {
		t.Fatalf("expected bounds for all %d tables, got %d", len(statstore.Tables), len(rep.Tables))
	}
	for _, info := range rep.Tables {
		if info.Count != 0 {
			t.Errorf("expected empty table %s, got %d rows", info.Table, info.Count)
		}
	}
	if len(rep.Disk) != 0 || len(rep.API) != 0 {
		t.Errorf("expected no summaries, got %d disk / %d api", len(rep.Disk), len(rep.API))
	}
}

func TestBuild_LatestSummariesWithinWindow(t *testing.T) {
	store := testStore(t)

	old := statstore.Timestamp(testNow.Add(-48 * time.Hour))
	recent := statstore.Timestamp(testNow.Add(-10 * time.Minute))
	insertDiskSummary(t, store, old, "write_mbps", 1)
	insertDiskSummary(t, store, recent, "write_mbps", 9)

	w, err := ParseWindow("1d", "", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	rep, err := New(store).Build(w)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	want := []statstore.SummaryRow{{
		Timestamp: recent,
		Hostname:  "node-1",
		Target:    "data",
		Metric:    "write_mbps",
		Avg:       9, Min: 9, Max: 9,
	}}
	if diff := cmp.Diff(want, rep.Disk); diff != "" {
		t.Errorf("summaries mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_WindowExcludesEverything(t *testing.T) {
	store := testStore(t)
	insertDiskSummary(t, store, statstore.Timestamp(testNow.Add(-48*time.Hour)), "write_mbps", 1)

	w, err := ParseWindow("1h", "", "", testNow)
	if err != nil {
		t.Fatalf("ParseWindow failed: %v", err)
	}
	rep, err := New(store).Build(w)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(rep.Disk) != 0 {
		t.Errorf("expected no summaries inside 1h, got %d", len(rep.Disk))
	}
}

func testStore(t *testing.T) *statstore.Store {
	t.Helper()
	s, err := statstore.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func insertDiskSummary(t *testing.T, s *statstore.Store, ts, metric string, v float64) {
	t.Helper()
	err := s.InsertDiskSummaries([]statstore.SummaryRow{{
		Timestamp: ts,
		Hostname:  "node-1",
		Target:    "data",
		Metric:    metric,
		Avg:       v, Min: v, Max: v,
	}})
	if err != nil {
		t.Fatalf("insert summary failed: %v", err)
	}
}
