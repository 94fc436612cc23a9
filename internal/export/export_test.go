package export

import (
	"context"
	"database/sql"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"resmon/internal/statstore"

	_ "modernc.org/sqlite"
)

func testStore(t *testing.T) *statstore.Store {
	t.Helper()
	s, err := statstore.Open(filepath.Join(t.TempDir(), "stats.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestExportAll_WritesEveryTable(t *testing.T) {
	store := testStore(t)
	if err := store.InsertDiskSample(&statstore.DiskSample{
		Timestamp: "2026-03-14 12:00",
		Hostname:  "node-1",
		Label:     "data",
		WriteMBps: 120.5,
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	dir := t.TempDir()
	result, err := ExportAll(context.Background(), store, dir)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}

	if len(result) != len(statstore.Tables) {
		t.Fatalf("expected %d tables exported, got %d", len(statstore.Tables), len(result))
	}
	if result[statstore.TableDiskStats] != 1 {
		t.Errorf("expected 1 disk row, got %d", result[statstore.TableDiskStats])
	}

	records := readCSV(t, filepath.Join(dir, statstore.TableDiskStats+".csv"))
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	if records[0][1] != "timestamp" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][1] != "2026-03-14 12:00" || records[1][3] != "data" {
		t.Errorf("unexpected row: %v", records[1])
	}

	// Empty tables still produce a header-only file.
	records = readCSV(t, filepath.Join(dir, statstore.TableAPIStats+".csv"))
	if len(records) != 1 {
		t.Errorf("expected header only for empty table, got %d records", len(records))
	}
}

func TestExportAll_SkipsMissingTable(t *testing.T) {
	store := testStore(t)

	// Simulate a store created by an older schema.
	db, err := sql.Open("sqlite", store.Path())
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	defer db.Close()
	if _, err := db.Exec(`DROP TABLE ` + statstore.TableAPIStats); err != nil {
		t.Fatalf("drop table: %v", err)
	}

	dir := t.TempDir()
	result, err := ExportAll(context.Background(), store, dir)
	if err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	if _, ok := result[statstore.TableAPIStats]; ok {
		t.Error("missing table should be absent from the result")
	}
	if _, err := os.Stat(filepath.Join(dir, statstore.TableAPIStats+".csv")); !os.IsNotExist(err) {
		t.Errorf("missing table should not produce a file, stat err = %v", err)
	}
	if len(result) != len(statstore.Tables)-1 {
		t.Errorf("expected %d tables exported, got %d", len(statstore.Tables)-1, len(result))
	}
}

func TestExportAll_CreatesOutputDir(t *testing.T) {
	store := testStore(t)
	dir := filepath.Join(t.TempDir(), "exports", "nested")

	if _, err := ExportAll(context.Background(), store, dir); err != nil {
		t.Fatalf("ExportAll failed: %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Errorf("expected output dir created, err = %v", err)
	}
}
