// Package sched manages the cron entry that drives periodic collection.
// The entry carries a trailing marker comment so install, update and
// remove can find it again without touching the rest of the crontab.
package sched

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"strings"
)

// Marker tags the crontab line owned by this tool.
const Marker = "# resmon collector"

// Job describes the collection entry to register.
type Job struct {
	// Binary is the absolute path of the executable to run.
	Binary string

	// EnvFile, when set, is passed as --env-file so the cron
	// environment matches interactive runs.
	EnvFile string

	// IntervalMinutes is the sampling cadence (1..59).
	IntervalMinutes int

	// Env is inlined into the crontab line as KEY=VALUE pairs, sorted
	// by key. Cron jobs see almost no environment, so targets
	// configured via env vars must travel on the line itself.
	Env map[string]string
}

// Line renders the full crontab entry.
func (j Job) Line() (string, error) {
	if j.Binary == "" {
		return "", fmt.Errorf("sched: job binary is required")
	}
	if j.IntervalMinutes < 1 || j.IntervalMinutes > 59 {
		return "", fmt.Errorf("sched: interval must be 1..59 minutes, got %d", j.IntervalMinutes)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*/%d * * * * ", j.IntervalMinutes)

	keys := make([]string, 0, len(j.Env))
	for k := range j.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "%s=%q ", k, j.Env[k])
	}

	b.WriteString(j.Binary)
	if j.EnvFile != "" {
		fmt.Fprintf(&b, " --env-file %q", j.EnvFile)
	}
	b.WriteString(" collect >/dev/null 2>&1 ")
	b.WriteString(Marker)
	return b.String(), nil
}

// Add returns the crontab lines with the job's entry appended, replacing
// any previous marked entry.
func Add(lines []string, job Job) ([]string, error) {
	entry, err := job.Line()
	if err != nil {
		return nil, err
	}
	out, _ := Remove(lines)
	return append(out, entry), nil
}

// Remove strips every marked entry and reports whether any was present.
func Remove(lines []string) ([]string, bool) {
	var out []string
	found := false
	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), Marker) {
			found = true
			continue
		}
		out = append(out, line)
	}
	return out, found
}

// Find returns the currently installed marked entry, if any.
func Find(lines []string) (string, bool) {
	for _, line := range lines {
		if strings.HasSuffix(strings.TrimSpace(line), Marker) {
			return line, true
		}
	}
	return "", false
}

// Current reads the user's crontab. A user with no crontab at all is
// treated as an empty one.
func Current(ctx context.Context) ([]string, error) {
	out, err := exec.CommandContext(ctx, "crontab", "-l").Output()
	if err != nil {
		if ee, ok := err.(*exec.ExitError); ok && bytes.Contains(ee.Stderr, []byte("no crontab")) {
			return nil, nil
		}
		return nil, fmt.Errorf("sched: crontab -l: %w", err)
	}
	text := strings.TrimRight(string(out), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// Apply replaces the user's crontab with the given lines.
func Apply(ctx context.Context, lines []string) error {
	input := ""
	if len(lines) > 0 {
		input = strings.Join(lines, "\n") + "\n"
	}
	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(input)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("sched: crontab -: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Install registers the job, replacing any previous entry.
func Install(ctx context.Context, job Job) error {
	lines, err := Current(ctx)
	if err != nil {
		return err
	}
	updated, err := Add(lines, job)
	if err != nil {
		return err
	}
	return Apply(ctx, updated)
}

// Uninstall removes the marked entry. Returns false when none was
// installed; the crontab is left untouched in that case.
func Uninstall(ctx context.Context) (bool, error) {
	lines, err := Current(ctx)
	if err != nil {
		return false, err
	}
	updated, found := Remove(lines)
	if !found {
		return false, nil
	}
	return true, Apply(ctx, updated)
}
