package statstore

import (
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoTable is returned when a requested table does not exist in the
// database file (e.g. an export against a store created by an older
// version). Callers typically skip the table.
var ErrNoTable = errors.New("statstore: table does not exist")

// Bounds describes the time range and row count of a table.
type Bounds struct {
	First string
	Last  string
	Count int64
}

// TableBounds returns the first and last timestamp plus the row count
// for a table. An empty table yields zero-value bounds, not an error.
func (s *Store) TableBounds(table string) (Bounds, error) {
	if !knownTable(table) {
		return Bounds{}, fmt.Errorf("statstore: unknown table %q", table)
	}

	var b Bounds
	var first, last sql.NullString
	row := s.db.QueryRow(fmt.Sprintf(
		`SELECT MIN(timestamp), MAX(timestamp), COUNT(*) FROM %s`, table))
	if err := row.Scan(&first, &last, &b.Count); err != nil {
		return Bounds{}, fmt.Errorf("statstore: bounds query failed: %w", err)
	}
	b.First = first.String
	b.Last = last.String
	return b, nil
}

// HasTable reports whether the table exists in the database file.
func (s *Store) HasTable(table string) (bool, error) {
	var name string
	err := s.db.QueryRow(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`,
		table).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("statstore: table lookup failed: %w", err)
	}
	return true, nil
}

// DumpTable returns a table's column names and all rows with every value
// rendered as a string (NULL becomes the empty string). Intended for
// tabular export; not for hot paths.
func (s *Store) DumpTable(table string) ([]string, [][]string, error) {
	if !knownTable(table) {
		return nil, nil, fmt.Errorf("statstore: unknown table %q", table)
	}
	exists, err := s.HasTable(table)
	if err != nil {
		return nil, nil, err
	}
	if !exists {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoTable, table)
	}

	rows, err := s.db.Query(fmt.Sprintf(`SELECT * FROM %s`, table))
	if err != nil {
		return nil, nil, fmt.Errorf("statstore: dump query failed: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("statstore: dump columns failed: %w", err)
	}

	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, fmt.Errorf("statstore: dump scan failed: %w", err)
		}
		record := make([]string, len(cols))
		for i, v := range vals {
			record[i] = renderValue(v)
		}
		out = append(out, record)
	}
	return cols, out, rows.Err()
}

func knownTable(table string) bool {
	for _, t := range Tables {
		if t == table {
			return true
		}
	}
	return false
}

func renderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	case int64:
		return fmt.Sprintf("%d", x)
	case float64:
		return fmt.Sprintf("%g", x)
	case bool:
		if x {
			return "1"
		}
		return "0"
	default:
		return fmt.Sprintf("%v", x)
	}
}
