package statstore

import (
	"fmt"
	"time"
)

// Retention age tiers for raw samples.
const (
	// Rows older than decimateOldAfter keep only every 60th sequence
	// position (roughly one sample per hour at minute sampling).
	decimateOldAfter = 3 * 24 * time.Hour
	// Rows older than decimateMidAfter (but younger than the old tier)
	// keep every 6th position.
	decimateMidAfter = 24 * time.Hour
)

// Decimate thins old rows from a raw sample table so storage stays
// bounded: rows older than three days keep only sequence positions
// divisible by 60, rows between one and three days old keep positions
// divisible by 6, and the last day is untouched. Keying on the stored
// sequence means repeated passes converge instead of re-thinning
// already-thinned data.
//
// This is lossy and irreversible, and applies to raw tables only;
// summary tables grow without bound (no retention policy is defined for
// them). Returns the number of rows removed.
func (s *Store) Decimate(table string, now time.Time) (int64, error) {
	switch table {
	case TableDiskStats, TableAPIStats:
	default:
		return 0, fmt.Errorf("statstore: refusing to decimate table %q", table)
	}

	oldCutoff := Timestamp(now.Add(-decimateOldAfter))
	midCutoff := Timestamp(now.Add(-decimateMidAfter))

	// Timestamps are minute-resolution strings in a sortable layout, so
	// cutoffs computed on the same clock compare correctly as text.
	oldRes, err := s.db.Exec(fmt.Sprintf(`
		DELETE FROM %s
		WHERE timestamp < ? AND seq %% 60 != 0`, table), oldCutoff)
	if err != nil {
		return 0, fmt.Errorf("statstore: decimation of %s failed: %w", table, err)
	}

	midRes, err := s.db.Exec(fmt.Sprintf(`
		DELETE FROM %s
		WHERE timestamp < ? AND timestamp >= ? AND seq %% 6 != 0`, table), midCutoff, oldCutoff)
	if err != nil {
		return 0, fmt.Errorf("statstore: decimation of %s failed: %w", table, err)
	}

	oldN, _ := oldRes.RowsAffected()
	midN, _ := midRes.RowsAffected()
	return oldN + midN, nil
}
