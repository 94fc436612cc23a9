// Package export writes every stats table to a CSV file.
package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"resmon/internal/statstore"

	"golang.org/x/sync/errgroup"
)

// Result maps table name to the number of data rows written. Tables
// missing from the database file are absent from the map.
type Result map[string]int

// ExportAll dumps each stats table to <dir>/<table>.csv, one goroutine
// per table. A table that does not exist in the store is skipped; any
// other failure aborts the whole export.
func ExportAll(ctx context.Context, store *statstore.Store, dir string) (Result, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("export: create %s: %w", dir, err)
	}

	var mu sync.Mutex
	result := make(Result)

	g, ctx := errgroup.WithContext(ctx)
	for _, table := range statstore.Tables {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			n, err := exportTable(store, table, filepath.Join(dir, table+".csv"))
			if errors.Is(err, statstore.ErrNoTable) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			result[table] = n
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// exportTable writes one table as a CSV file with a header row and
// returns the number of data rows.
func exportTable(store *statstore.Store, table, path string) (int, error) {
	cols, rows, err := store.DumpTable(table)
	if err != nil {
		return 0, err
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("export: create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(cols); err != nil {
		return 0, fmt.Errorf("export: write header for %s: %w", table, err)
	}
	if err := w.WriteAll(rows); err != nil {
		return 0, fmt.Errorf("export: write rows for %s: %w", table, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, fmt.Errorf("export: flush %s: %w", table, err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("export: close %s: %w", path, err)
	}
	return len(rows), nil
}
