// Package report assembles summary reports over the stats store: table
// bounds plus the latest aggregated row per target and metric inside a
// time window.
package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"resmon/internal/statstore"
)

// Window is a half-open reporting interval. A zero Start means
// "everything up to End" (the max preset).
type Window struct {
	Preset string
	Start  time.Time
	End    time.Time
}

var presetDurations = map[string]time.Duration{
	"1h": time.Hour,
	"1d": 24 * time.Hour,
	"1w": 7 * 24 * time.Hour,
	"1m": 30 * 24 * time.Hour,
	"1y": 365 * 24 * time.Hour,
}

// Presets lists the accepted window presets in ascending span order.
var Presets = []string{"1h", "1d", "1w", "1m", "1y", "max"}

// acceptedLayouts for explicit --start/--end values. Bare dates mean
// midnight local time.
var acceptedLayouts = []string{statstore.TimestampLayout, "2006-01-02"}

// ParseWindow resolves a preset or an explicit start/end pair into a
// Window relative to now. Explicit bounds take precedence over the
// preset; giving only one bound fills the other from now (end) or from
// the max preset (start).
func ParseWindow(preset, start, end string, now time.Time) (Window, error) {
	w := Window{Preset: preset, End: now}

	if start != "" || end != "" {
		w.Preset = ""
		if start != "" {
			t, err := parseBound(start)
			if err != nil {
				return Window{}, fmt.Errorf("report: invalid start %q: %w", start, err)
			}
			w.Start = t
		}
		if end != "" {
			t, err := parseBound(end)
			if err != nil {
				return Window{}, fmt.Errorf("report: invalid end %q: %w", end, err)
			}
			w.End = t
		}
		if !w.Start.IsZero() && w.End.Before(w.Start) {
			return Window{}, fmt.Errorf("report: end %q precedes start %q", end, start)
		}
		return w, nil
	}

	if preset == "" {
		preset = "1h"
		w.Preset = preset
	}
	if preset == "max" {
		return w, nil
	}
	d, ok := presetDurations[preset]
	if !ok {
		return Window{}, fmt.Errorf("report: unknown window %q (expected %s)",
			preset, strings.Join(Presets, ", "))
	}
	w.Start = now.Add(-d)
	return w, nil
}

func parseBound(s string) (time.Time, error) {
	for _, layout := range acceptedLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("expected %q or %q", acceptedLayouts[0], acceptedLayouts[1])
}

// Range converts the window bounds into stored-timestamp strings. An
// empty start string sorts before every stored timestamp, so a zero
// Start selects the full table.
func (w Window) Range() (start, end string) {
	if !w.Start.IsZero() {
		start = statstore.Timestamp(w.Start)
	}
	return start, statstore.Timestamp(w.End)
}

// Label is the human-readable form used in report headers.
func (w Window) Label() string {
	if w.Preset != "" {
		return w.Preset
	}
	start := "beginning"
	if !w.Start.IsZero() {
		start = statstore.Timestamp(w.Start)
	}
	return start + " .. " + statstore.Timestamp(w.End)
}

// TableInfo is one table's bounds for the sample-count section.
type TableInfo struct {
	Table string `json:"table"`
	First string `json:"first"`
	Last  string `json:"last"`
	Count int64  `json:"count"`
}

// Report is a fully assembled summary report, ready to render.
type Report struct {
	GeneratedAt string                 `json:"generated_at"`
	Window      string                 `json:"window"`
	Tables      []TableInfo            `json:"tables"`
	Disk        []statstore.SummaryRow `json:"disk_summaries"`
	API         []statstore.SummaryRow `json:"api_summaries"`
}

// Reporter builds reports from a stats store.
type Reporter struct {
	store *statstore.Store
}

func New(store *statstore.Store) *Reporter {
	return &Reporter{store: store}
}

// Build queries bounds for every table plus the latest summaries per
// target and metric inside the window. Tables that do not exist yet are
// listed with zero counts rather than failing the report.
func (r *Reporter) Build(w Window) (*Report, error) {
	rep := &Report{
		GeneratedAt: statstore.Timestamp(time.Now()),
		Window:      w.Label(),
	}

	for _, table := range statstore.Tables {
		b, err := r.store.TableBounds(table)
		if err != nil {
			if errors.Is(err, statstore.ErrNoTable) {
				rep.Tables = append(rep.Tables, TableInfo{Table: table})
				continue
			}
			return nil, fmt.Errorf("report: bounds for %s: %w", table, err)
		}
		rep.Tables = append(rep.Tables, TableInfo{
			Table: table,
			First: b.First,
			Last:  b.Last,
			Count: b.Count,
		})
	}

	start, end := w.Range()

	disk, err := r.store.LatestDiskSummaries(start, end)
	if err != nil {
		return nil, fmt.Errorf("report: disk summaries: %w", err)
	}
	rep.Disk = disk

	api, err := r.store.LatestAPISummaries(start, end)
	if err != nil {
		return nil, fmt.Errorf("report: api summaries: %w", err)
	}
	rep.API = api

	return rep, nil
}
