// Package aggregate computes rolling statistical summaries over the raw
// samples in the stats store.
//
// Summaries are computed per target over a trailing window (one hour by
// default) and appended to the summary tables. An empty window is a
// no-op, never an error.
package aggregate

import (
	"fmt"
	"math"
	"time"

	"resmon/internal/statstore"

	"go.uber.org/zap"
)

// DefaultWindow is the trailing range summarized each cycle.
const DefaultWindow = time.Hour

// DiskMetrics are the summarized disk sample columns, in storage order.
var DiskMetrics = []string{
	"write_mbps", "write_iops", "write_lat_avg",
	"read_mbps", "read_iops", "read_lat_avg",
}

// APIMetrics are the summarized API sample columns.
var APIMetrics = []string{"response_time_ms", "status_code"}

// Summary is the aggregated statistic set for one metric. StdDev is the
// population standard deviation, 0 when fewer than two samples
// contribute. SuccessRate is set for API metrics only.
type Summary struct {
	Min    float64
	Max    float64
	Avg    float64
	StdDev float64

	SuccessRate *float64
}

// Aggregator reads raw samples back from the store and produces
// per-metric summaries.
type Aggregator struct {
	store    *statstore.Store
	hostname string
	log      *zap.Logger
}

// New returns an aggregator scoped to one host's samples.
func New(store *statstore.Store, hostname string, log *zap.Logger) *Aggregator {
	return &Aggregator{store: store, hostname: hostname, log: log}
}

// SummarizeDisk computes summaries for every disk metric of one label
// over samples at or after since. Returns an empty map when the window
// holds no rows.
func (a *Aggregator) SummarizeDisk(label string, since time.Time) (map[string]Summary, error) {
	samples, err := a.store.DiskSamplesSince(label, a.hostname, statstore.Timestamp(since))
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if len(samples) == 0 {
		return map[string]Summary{}, nil
	}

	columns := map[string][]float64{}
	for _, s := range samples {
		columns["write_mbps"] = append(columns["write_mbps"], s.WriteMBps)
		columns["write_iops"] = append(columns["write_iops"], s.WriteIOPS)
		columns["write_lat_avg"] = append(columns["write_lat_avg"], s.WriteLatAvg)
		columns["read_mbps"] = append(columns["read_mbps"], s.ReadMBps)
		columns["read_iops"] = append(columns["read_iops"], s.ReadIOPS)
		columns["read_lat_avg"] = append(columns["read_lat_avg"], s.ReadLatAvg)
	}

	out := make(map[string]Summary, len(DiskMetrics))
	for _, metric := range DiskMetrics {
		out[metric] = summarize(columns[metric])
	}
	return out, nil
}

// SummarizeAPI computes summaries for one API target's response time and
// status code over samples at or after since. Every metric's summary
// carries the window's overall success rate.
func (a *Aggregator) SummarizeAPI(name string, since time.Time) (map[string]Summary, error) {
	samples, err := a.store.APISamplesSince(name, a.hostname, statstore.Timestamp(since))
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	if len(samples) == 0 {
		return map[string]Summary{}, nil
	}

	var responseTimes, statusCodes []float64
	var successes int
	for _, s := range samples {
		responseTimes = append(responseTimes, s.ResponseTimeMs)
		statusCodes = append(statusCodes, float64(s.StatusCode))
		if s.Success {
			successes++
		}
	}
	rate := float64(successes) / float64(len(samples))

	out := map[string]Summary{
		"response_time_ms": summarize(responseTimes),
		"status_code":      summarize(statusCodes),
	}
	for metric, s := range out {
		r := rate
		s.SuccessRate = &r
		out[metric] = s
	}
	return out, nil
}

// RecomputeDisk summarizes one label's trailing window and appends the
// result to the disk summary table, stamped at. No rows in the window
// means nothing is written.
func (a *Aggregator) RecomputeDisk(label string, since, at time.Time) error {
	summary, err := a.SummarizeDisk(label, since)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		a.log.Debug("no disk samples in window, skipping summary",
			zap.String("label", label))
		return nil
	}

	rows := summaryRows(summary, DiskMetrics, label, a.hostname, at)
	if err := a.store.InsertDiskSummaries(rows); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	return nil
}

// RecomputeAPI summarizes one API target's trailing window and appends
// the result to the API summary table, stamped at.
func (a *Aggregator) RecomputeAPI(name string, since, at time.Time) error {
	summary, err := a.SummarizeAPI(name, since)
	if err != nil {
		return err
	}
	if len(summary) == 0 {
		a.log.Debug("no api samples in window, skipping summary",
			zap.String("api", name))
		return nil
	}

	rows := summaryRows(summary, APIMetrics, name, a.hostname, at)
	if err := a.store.InsertAPISummaries(rows); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}
	return nil
}

// summaryRows flattens a metric->Summary map into storage rows, keeping
// the metric order stable.
func summaryRows(summary map[string]Summary, order []string, target, hostname string, at time.Time) []statstore.SummaryRow {
	ts := statstore.Timestamp(at)
	rows := make([]statstore.SummaryRow, 0, len(summary))
	for _, metric := range order {
		s, ok := summary[metric]
		if !ok {
			continue
		}
		rows = append(rows, statstore.SummaryRow{
			Timestamp:   ts,
			Hostname:    hostname,
			Target:      target,
			Metric:      metric,
			Avg:         s.Avg,
			Min:         s.Min,
			Max:         s.Max,
			StdDev:      s.StdDev,
			SuccessRate: s.SuccessRate,
		})
	}
	return rows
}

// summarize computes the statistic set over one metric's values.
// Population standard deviation; 0 when n < 2.
func summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}

	min, max := values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	avg := sum / float64(len(values))

	var stddev float64
	if len(values) > 1 {
		var sq float64
		for _, v := range values {
			d := v - avg
			sq += d * d
		}
		stddev = math.Sqrt(sq / float64(len(values)))
	}

	return Summary{Min: min, Max: max, Avg: avg, StdDev: stddev}
}
