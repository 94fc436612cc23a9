package statstore

import (
	"database/sql"
	"fmt"
)

// InsertDiskSummaries appends summary rows for disk metrics. All rows are
// written in one transaction since they describe a single computation.
func (s *Store) InsertDiskSummaries(rows []SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statstore: begin tx: %w", err)
	}
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO disk_stats_summary (
				timestamp, hostname, label, metric, avg, min, max, stddev
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Timestamp, r.Hostname, r.Target, r.Metric,
			r.Avg, r.Min, r.Max, r.StdDev,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("statstore: disk summary insert failed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("statstore: commit: %w", err)
	}
	return nil
}

// InsertAPISummaries appends summary rows for API metrics.
func (s *Store) InsertAPISummaries(rows []SummaryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("statstore: begin tx: %w", err)
	}
	for _, r := range rows {
		if _, err := tx.Exec(`
			INSERT INTO api_stats_summary (
				timestamp, hostname, api_name, metric, avg, min, max, stddev, success_rate
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.Timestamp, r.Hostname, r.Target, r.Metric,
			r.Avg, r.Min, r.Max, r.StdDev, nullFloat(r.SuccessRate),
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("statstore: api summary insert failed: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("statstore: commit: %w", err)
	}
	return nil
}

// LatestDiskSummaries returns the most recent batch of disk summary rows
// within [start, end], ordered by label then metric.
func (s *Store) LatestDiskSummaries(start, end string) ([]SummaryRow, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, hostname, label, metric, avg, min, max, stddev
		FROM disk_stats_summary
		WHERE timestamp = (
			SELECT MAX(timestamp) FROM disk_stats_summary
			WHERE timestamp >= ? AND timestamp <= ?
		)
		ORDER BY label, metric`, start, end)
	if err != nil {
		return nil, fmt.Errorf("statstore: disk summary query failed: %w", err)
	}
	defer rows.Close()
	return scanDiskSummaries(rows)
}

// LatestAPISummaries returns the most recent batch of API summary rows
// within [start, end], ordered by name then metric.
func (s *Store) LatestAPISummaries(start, end string) ([]SummaryRow, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, hostname, api_name, metric, avg, min, max, stddev, success_rate
		FROM api_stats_summary
		WHERE timestamp = (
			SELECT MAX(timestamp) FROM api_stats_summary
			WHERE timestamp >= ? AND timestamp <= ?
		)
		ORDER BY api_name, metric`, start, end)
	if err != nil {
		return nil, fmt.Errorf("statstore: api summary query failed: %w", err)
	}
	defer rows.Close()
	return scanAPISummaries(rows)
}

// DiskSummariesSince returns all disk summary rows with timestamps at or
// after since, ordered by timestamp. Used by the dashboard to build
// time-series charts.
func (s *Store) DiskSummariesSince(since string) ([]SummaryRow, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, hostname, label, metric, avg, min, max, stddev
		FROM disk_stats_summary
		WHERE timestamp >= ?
		ORDER BY timestamp`, since)
	if err != nil {
		return nil, fmt.Errorf("statstore: disk summary query failed: %w", err)
	}
	defer rows.Close()
	return scanDiskSummaries(rows)
}

// APISummariesSince returns all API summary rows with timestamps at or
// after since, ordered by timestamp.
func (s *Store) APISummariesSince(since string) ([]SummaryRow, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, hostname, api_name, metric, avg, min, max, stddev, success_rate
		FROM api_stats_summary
		WHERE timestamp >= ?
		ORDER BY timestamp`, since)
	if err != nil {
		return nil, fmt.Errorf("statstore: api summary query failed: %w", err)
	}
	defer rows.Close()
	return scanAPISummaries(rows)
}

func scanDiskSummaries(rows *sql.Rows) ([]SummaryRow, error) {
	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		if err := rows.Scan(
			&r.Timestamp, &r.Hostname, &r.Target, &r.Metric,
			&r.Avg, &r.Min, &r.Max, &r.StdDev,
		); err != nil {
			return nil, fmt.Errorf("statstore: summary scan failed: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanAPISummaries(rows *sql.Rows) ([]SummaryRow, error) {
	var out []SummaryRow
	for rows.Next() {
		var r SummaryRow
		var rate sql.NullFloat64
		if err := rows.Scan(
			&r.Timestamp, &r.Hostname, &r.Target, &r.Metric,
			&r.Avg, &r.Min, &r.Max, &r.StdDev, &rate,
		); err != nil {
			return nil, fmt.Errorf("statstore: summary scan failed: %w", err)
		}
		if rate.Valid {
			v := rate.Float64
			r.SuccessRate = &v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
