// Package config loads the monitoring configuration from the process
// environment and an optional .env file.
//
// Values in the .env file may contain {{whoami}}, {{HOME}}, and
// {{hostname}} placeholders, which are expanded at load time. Shell
// environment variables take precedence over the file.
package config

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Defaults applied when neither the environment nor the .env file sets a value.
const (
	defaultFilesystemPaths  = "/tmp"
	defaultFilesystemLabels = "tmpfs"
	defaultRequestTimeout   = 30
	defaultSamplingMinutes  = 5
	defaultDashRefresh      = 5
)

// ValidationError reports malformed target configuration. It is fatal:
// the process exits before any collection cycle runs.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: invalid %s: %s", e.Field, e.Reason)
}

// DiskTarget is one monitored filesystem: a directory to benchmark and
// the label its samples are stored under.
type DiskTarget struct {
	Path  string
	Label string
}

// APITarget is one monitored HTTP endpoint.
type APITarget struct {
	URL  string
	Name string
}

// Config holds every configurable value for resmon, resolved once at
// process start and threaded into the components that need it.
type Config struct {
	// Targets, in configuration order.
	Disks []DiskTarget
	APIs  []APITarget

	// DBPath is the SQLite database file location.
	DBPath string

	// RequestTimeout bounds each API probe request.
	RequestTimeout time.Duration

	// SamplingMinutes is the cron interval for the collect command.
	SamplingMinutes int

	// DashRefreshSeconds is the dashboard auto-refresh interval.
	DashRefreshSeconds int
}

// Load reads configuration from the environment and the given .env file
// (./.env when envFile is empty; a missing file is not an error).
func Load(envFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("FILESYSTEM_PATHS", defaultFilesystemPaths)
	v.SetDefault("FILESYSTEM_LABELS", defaultFilesystemLabels)
	v.SetDefault("API_ENDPOINTS", "")
	v.SetDefault("API_NAMES", "")
	v.SetDefault("API_REQUEST_TIMEOUT", defaultRequestTimeout)
	v.SetDefault("SAMPLING_MINUTES", defaultSamplingMinutes)
	v.SetDefault("DASH_REFRESH_SECONDS", defaultDashRefresh)

	// Shell environment wins over file values.
	v.AutomaticEnv()

	if envFile == "" {
		envFile = ".env"
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	_ = v.ReadInConfig() // the file is optional

	cfg := &Config{
		DBPath:             expand(dbPath(v)),
		RequestTimeout:     time.Duration(v.GetInt("API_REQUEST_TIMEOUT")) * time.Second,
		SamplingMinutes:    v.GetInt("SAMPLING_MINUTES"),
		DashRefreshSeconds: v.GetInt("DASH_REFRESH_SECONDS"),
	}

	var err error
	cfg.Disks, err = diskTargets(
		splitList(expand(v.GetString("FILESYSTEM_PATHS"))),
		splitList(expand(v.GetString("FILESYSTEM_LABELS"))),
	)
	if err != nil {
		return nil, err
	}

	cfg.APIs, err = apiTargets(
		splitList(expand(v.GetString("API_ENDPOINTS"))),
		splitList(expand(v.GetString("API_NAMES"))),
	)
	if err != nil {
		return nil, err
	}

	if cfg.SamplingMinutes < 1 {
		return nil, &ValidationError{Field: "SAMPLING_MINUTES", Reason: "must be at least 1"}
	}
	if cfg.RequestTimeout <= 0 {
		return nil, &ValidationError{Field: "API_REQUEST_TIMEOUT", Reason: "must be positive"}
	}

	return cfg, nil
}

// dbPath resolves the database location. RESOURCE_STATS_DB is the
// current variable; DISK_STATS_DB is honored for older deployments.
func dbPath(v *viper.Viper) string {
	if p := v.GetString("RESOURCE_STATS_DB"); p != "" {
		return p
	}
	if p := v.GetString("DISK_STATS_DB"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, "resmon", "data", "resource_stats.db")
}

// diskTargets pairs filesystem paths with labels. Both lists must have
// the same length; there is no auto-labeling for filesystems.
func diskTargets(paths, labels []string) ([]DiskTarget, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	if len(paths) != len(labels) {
		return nil, &ValidationError{
			Field:  "FILESYSTEM_PATHS/FILESYSTEM_LABELS",
			Reason: fmt.Sprintf("must have the same length, got %d paths and %d labels", len(paths), len(labels)),
		}
	}
	targets := make([]DiskTarget, len(paths))
	for i := range paths {
		targets[i] = DiskTarget{Path: paths[i], Label: labels[i]}
	}
	return targets, nil
}

// apiTargets pairs endpoint URLs with names. When URLs are configured
// without any names, names are generated as API-1, API-2, and so on.
// Mismatched non-empty lists are a hard error.
func apiTargets(urls, names []string) ([]APITarget, error) {
	if len(urls) == 0 {
		return nil, nil
	}
	if len(names) == 0 {
		names = make([]string, len(urls))
		for i := range urls {
			names[i] = fmt.Sprintf("API-%d", i+1)
		}
	}
	if len(urls) != len(names) {
		return nil, &ValidationError{
			Field:  "API_ENDPOINTS/API_NAMES",
			Reason: fmt.Sprintf("must have the same length, got %d endpoints and %d names", len(urls), len(names)),
		}
	}
	targets := make([]APITarget, len(urls))
	for i := range urls {
		targets[i] = APITarget{URL: urls[i], Name: names[i]}
	}
	return targets, nil
}

// splitList splits a comma-delimited value, trimming whitespace and
// dropping empty entries.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// expand replaces the {{whoami}}, {{HOME}}, and {{hostname}} placeholders
// used by .env files shared across machines.
func expand(s string) string {
	if !strings.Contains(s, "{{") {
		return s
	}
	r := strings.NewReplacer(
		"{{whoami}}", username(),
		"{{HOME}}", homeDir(),
		"{{hostname}}", hostname(),
	)
	return r.Replace(s)
}

func username() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}

func homeDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	return ""
}

func hostname() string {
	h, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return h
}
