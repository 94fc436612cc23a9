package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// writeEnvFile writes a .env file in a temp dir and returns its path.
func writeEnvFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []DiskTarget{{Path: "/tmp", Label: "tmpfs"}}
	if diff := cmp.Diff(want, cfg.Disks); diff != "" {
		t.Errorf("disk targets mismatch (-want +got):\n%s", diff)
	}
	if len(cfg.APIs) != 0 {
		t.Errorf("expected no API targets by default, got %d", len(cfg.APIs))
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("expected 30s request timeout, got %v", cfg.RequestTimeout)
	}
	if cfg.SamplingMinutes != 5 {
		t.Errorf("expected 5 sampling minutes, got %d", cfg.SamplingMinutes)
	}
	if cfg.DBPath == "" {
		t.Error("expected a default DB path")
	}
}

func TestLoad_PairedTargets(t *testing.T) {
	path := writeEnvFile(t, `
FILESYSTEM_PATHS=/mnt/scratch, /mnt/home
FILESYSTEM_LABELS=scratch,home
API_ENDPOINTS=https://a.example/health,https://b.example/health
API_NAMES=alpha,beta
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	wantDisks := []DiskTarget{
		{Path: "/mnt/scratch", Label: "scratch"},
		{Path: "/mnt/home", Label: "home"},
	}
	if diff := cmp.Diff(wantDisks, cfg.Disks); diff != "" {
		t.Errorf("disk targets mismatch (-want +got):\n%s", diff)
	}

	wantAPIs := []APITarget{
		{URL: "https://a.example/health", Name: "alpha"},
		{URL: "https://b.example/health", Name: "beta"},
	}
	if diff := cmp.Diff(wantAPIs, cfg.APIs); diff != "" {
		t.Errorf("API targets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_MismatchedDiskLists(t *testing.T) {
	path := writeEnvFile(t, `
FILESYSTEM_PATHS=/mnt/a,/mnt/b,/mnt/c
FILESYSTEM_LABELS=a,b
`)

	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoad_MismatchedAPILists(t *testing.T) {
	path := writeEnvFile(t, `
API_ENDPOINTS=https://a.example,https://b.example
API_NAMES=only-one
`)

	_, err := Load(path)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestLoad_AutoGeneratedAPINames(t *testing.T) {
	path := writeEnvFile(t, `
API_ENDPOINTS=https://a.example,https://b.example,https://c.example
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	want := []APITarget{
		{URL: "https://a.example", Name: "API-1"},
		{URL: "https://b.example", Name: "API-2"},
		{URL: "https://c.example", Name: "API-3"},
	}
	if diff := cmp.Diff(want, cfg.APIs); diff != "" {
		t.Errorf("API targets mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_PlaceholderExpansion(t *testing.T) {
	path := writeEnvFile(t, `RESOURCE_STATS_DB={{HOME}}/monitor/stats.db`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}
	want := filepath.Join(home, "monitor", "stats.db")
	if cfg.DBPath != want {
		t.Errorf("expected DBPath %q, got %q", want, cfg.DBPath)
	}
}

func TestLoad_LegacyDBPathVariable(t *testing.T) {
	path := writeEnvFile(t, `DISK_STATS_DB=/var/lib/resmon/old.db`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/var/lib/resmon/old.db" {
		t.Errorf("expected legacy DISK_STATS_DB to be honored, got %q", cfg.DBPath)
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"single", "/tmp", []string{"/tmp"}},
		{"whitespace", " a , b ,c ", []string{"a", "b", "c"}},
		{"trailing comma", "a,b,", []string{"a", "b"}},
		{"only commas", ",,,", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitList(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("splitList(%q) mismatch (-want +got):\n%s", tt.input, diff)
			}
		})
	}
}
