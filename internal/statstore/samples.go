package statstore

import (
	"database/sql"
	"fmt"
)

// InsertDiskSample appends one raw disk sample and assigns its Seq.
// Each insert is its own transaction: a crash mid-cycle loses at most
// the in-flight row.
func (s *Store) InsertDiskSample(r *DiskSample) error {
	result, err := s.db.Exec(`
		INSERT INTO disk_stats (
			timestamp, hostname, label,
			write_mbps, write_iops, write_lat_avg,
			read_mbps, read_iops, read_lat_avg
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp, r.Hostname, r.Label,
		r.WriteMBps, r.WriteIOPS, r.WriteLatAvg,
		r.ReadMBps, r.ReadIOPS, r.ReadLatAvg,
	)
	if err != nil {
		return fmt.Errorf("statstore: disk sample insert failed: %w", err)
	}
	r.Seq, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("statstore: failed to get sequence id: %w", err)
	}
	return nil
}

// InsertAPISample appends one raw API sample and assigns its Seq.
func (s *Store) InsertAPISample(r *APISample) error {
	result, err := s.db.Exec(`
		INSERT INTO api_stats (
			timestamp, hostname, api_name, endpoint_url,
			response_time_ms, status_code, success, error_message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Timestamp, r.Hostname, r.APIName, r.EndpointURL,
		r.ResponseTimeMs, r.StatusCode, r.Success, nullString(r.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("statstore: api sample insert failed: %w", err)
	}
	r.Seq, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("statstore: failed to get sequence id: %w", err)
	}
	return nil
}

// DiskSamplesSince returns raw disk samples for one label and host with
// timestamps at or after since, ordered by insert sequence.
func (s *Store) DiskSamplesSince(label, hostname, since string) ([]DiskSample, error) {
	rows, err := s.db.Query(`
		SELECT seq, timestamp, hostname, label,
		       write_mbps, write_iops, write_lat_avg,
		       read_mbps, read_iops, read_lat_avg
		FROM disk_stats
		WHERE label = ? AND hostname = ? AND timestamp >= ?
		ORDER BY seq`, label, hostname, since)
	if err != nil {
		return nil, fmt.Errorf("statstore: disk sample query failed: %w", err)
	}
	defer rows.Close()

	var samples []DiskSample
	for rows.Next() {
		var r DiskSample
		if err := rows.Scan(
			&r.Seq, &r.Timestamp, &r.Hostname, &r.Label,
			&r.WriteMBps, &r.WriteIOPS, &r.WriteLatAvg,
			&r.ReadMBps, &r.ReadIOPS, &r.ReadLatAvg,
		); err != nil {
			return nil, fmt.Errorf("statstore: disk sample scan failed: %w", err)
		}
		samples = append(samples, r)
	}
	return samples, rows.Err()
}

// APISamplesSince returns raw API samples for one name and host with
// timestamps at or after since, ordered by insert sequence.
func (s *Store) APISamplesSince(name, hostname, since string) ([]APISample, error) {
	rows, err := s.db.Query(`
		SELECT seq, timestamp, hostname, api_name, endpoint_url,
		       response_time_ms, status_code, success, error_message
		FROM api_stats
		WHERE api_name = ? AND hostname = ? AND timestamp >= ?
		ORDER BY seq`, name, hostname, since)
	if err != nil {
		return nil, fmt.Errorf("statstore: api sample query failed: %w", err)
	}
	defer rows.Close()

	var samples []APISample
	for rows.Next() {
		var r APISample
		var msg sql.NullString
		if err := rows.Scan(
			&r.Seq, &r.Timestamp, &r.Hostname, &r.APIName, &r.EndpointURL,
			&r.ResponseTimeMs, &r.StatusCode, &r.Success, &msg,
		); err != nil {
			return nil, fmt.Errorf("statstore: api sample scan failed: %w", err)
		}
		r.ErrorMessage = msg.String
		samples = append(samples, r)
	}
	return samples, rows.Err()
}
