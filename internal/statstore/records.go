package statstore

import "database/sql"

// DiskSample is one raw benchmark result for a filesystem target.
// Immutable after insert; removed only by the retention pass.
type DiskSample struct {
	// Seq is the auto-increment sequence position (assigned on insert).
	// The retention pass keys its modulo thinning on this value, so it
	// must never be recomputed or reused.
	Seq int64

	Timestamp string
	Hostname  string
	Label     string

	WriteMBps   float64
	WriteIOPS   float64
	WriteLatAvg float64
	ReadMBps    float64
	ReadIOPS    float64
	ReadLatAvg  float64
}

// APISample is one raw probe result for an HTTP endpoint. A status code
// of 0 signals a transport-level failure, in which case ErrorMessage is
// always set.
type APISample struct {
	Seq int64

	Timestamp   string
	Hostname    string
	APIName     string
	EndpointURL string

	ResponseTimeMs float64
	StatusCode     int
	Success        bool

	// ErrorMessage is empty on success and stored as NULL.
	ErrorMessage string
}

// SummaryRow is one aggregated statistic for a target and metric over a
// trailing window. Summary rows are appended every cycle and never
// updated or decimated.
type SummaryRow struct {
	Timestamp string `json:"timestamp"`
	Hostname  string `json:"hostname"`

	// Target is the filesystem label or API name.
	Target string `json:"target"`

	Metric string `json:"metric"`

	Avg    float64 `json:"avg"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"std_dev"`

	// SuccessRate is set for API summaries only.
	SuccessRate *float64 `json:"success_rate,omitempty"`
}

// nullString maps an empty string to SQL NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullFloat maps a nil pointer to SQL NULL.
func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
