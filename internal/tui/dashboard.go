// Package tui renders the live metrics dashboard: one time-series chart
// per metric, fed from the summary tables and refreshed on a timer. The
// dashboard is a read-only consumer of the store.
package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"resmon/internal/aggregate"
	"resmon/internal/report"
	"resmon/internal/retry"
	"resmon/internal/statstore"
	"resmon/internal/tui/components"
	"resmon/internal/tui/styles"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const chartHeight = 8

type view int

const (
	viewDisk view = iota
	viewAPI
)

// targetSeries is one target's per-metric history, ready to chart.
type targetSeries struct {
	Target  string
	Metrics map[string][]components.Point
}

// snapshot is everything one refresh pulled from the store.
type snapshot struct {
	Disk []targetSeries
	API  []targetSeries
	At   time.Time
}

type dataMsg struct {
	snap snapshot
	err  error
}

type tickMsg time.Time

// windowKeys maps number keys to window presets.
var windowKeys = map[string]string{
	"1": "1h", "2": "1d", "3": "1w", "4": "1m", "5": "1y", "6": "max",
}

// metricSuffixes for chart stat lines.
var metricSuffixes = map[string]string{
	"write_mbps":       " MB/s",
	"read_mbps":        " MB/s",
	"write_lat_avg":    " ms",
	"read_lat_avg":     " ms",
	"response_time_ms": " ms",
}

type dashboardModel struct {
	store   *statstore.Store
	refresh time.Duration
	window  string

	view      view
	targetIdx int

	snap    snapshot
	loaded  bool
	loading bool
	err     error

	spin   spinner.Model
	width  int
	height int
}

// Run opens the dashboard in the alternate screen until the user quits.
// refresh is the auto-reload cadence; window is the initial preset.
func Run(store *statstore.Store, refresh time.Duration, window string) error {
	if window == "" {
		window = "1d"
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Blue)

	m := dashboardModel{
		store:   store,
		refresh: refresh,
		window:  window,
		loading: true,
		spin:    sp,
	}

	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}

func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.loadCmd(), m.tickCmd())
}

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % 2
			m.targetIdx = 0
			return m, nil
		case "left", "h":
			m.cycleTarget(-1)
			return m, nil
		case "right", "l":
			m.cycleTarget(1)
			return m, nil
		case "r":
			m.loading = true
			return m, m.loadCmd()
		default:
			if preset, ok := windowKeys[msg.String()]; ok && preset != m.window {
				m.window = preset
				m.loading = true
				return m, m.loadCmd()
			}
		}
		return m, nil

	case dataMsg:
		m.loading = false
		m.loaded = true
		m.err = msg.err
		if msg.err == nil {
			m.snap = msg.snap
			m.clampTarget()
		}
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{m.tickCmd()}
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}
		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m *dashboardModel) cycleTarget(dir int) {
	targets := m.currentTargets()
	if len(targets) == 0 {
		m.targetIdx = 0
		return
	}
	m.targetIdx = (m.targetIdx + dir + len(targets)) % len(targets)
}

func (m *dashboardModel) clampTarget() {
	if n := len(m.currentTargets()); m.targetIdx >= n {
		m.targetIdx = 0
	}
}

func (m dashboardModel) currentTargets() []targetSeries {
	if m.view == viewDisk {
		return m.snap.Disk
	}
	return m.snap.API
}

func (m dashboardModel) loadCmd() tea.Cmd {
	store, window := m.store, m.window
	return func() tea.Msg {
		snap, err := loadSnapshot(context.Background(), store, window)
		return dataMsg{snap: snap, err: err}
	}
}

func (m dashboardModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadSnapshot reads disk and API summary history for the window. Reads
// are retried on lock contention with a concurrent collector.
func loadSnapshot(ctx context.Context, store *statstore.Store, window string) (snapshot, error) {
	w, err := report.ParseWindow(window, "", "", time.Now())
	if err != nil {
		return snapshot{}, err
	}
	since, _ := w.Range()

	var disk, api []statstore.SummaryRow
	err = retry.Do(ctx, retry.DefaultConfig(), retry.IsContention, func() error {
		var qerr error
		if disk, qerr = store.DiskSummariesSince(since); qerr != nil {
			return qerr
		}
		api, qerr = store.APISummariesSince(since)
		return qerr
	})
	if err != nil {
		return snapshot{}, fmt.Errorf("dashboard: loading summaries: %w", err)
	}

	return snapshot{
		Disk: groupSeries(disk),
		API:  groupSeries(api),
		At:   time.Now(),
	}, nil
}

// groupSeries turns flat summary rows into per-target metric series,
// charting the window average. Rows arrive ordered by timestamp, so
// each series stays chronological.
func groupSeries(rows []statstore.SummaryRow) []targetSeries {
	byTarget := make(map[string]map[string][]components.Point)
	for _, r := range rows {
		t, err := time.ParseInLocation(statstore.TimestampLayout, r.Timestamp, time.Local)
		if err != nil {
			continue
		}
		metrics := byTarget[r.Target]
		if metrics == nil {
			metrics = make(map[string][]components.Point)
			byTarget[r.Target] = metrics
		}
		metrics[r.Metric] = append(metrics[r.Metric], components.Point{Time: t, Value: r.Avg})
	}

	names := make([]string, 0, len(byTarget))
	for name := range byTarget {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]targetSeries, 0, len(names))
	for _, name := range names {
		out = append(out, targetSeries{Target: name, Metrics: byTarget[name]})
	}
	return out
}

func (m dashboardModel) View() string {
	if m.width == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.headerView())
	b.WriteString("\n\n")

	switch {
	case m.err != nil:
		b.WriteString(styles.ErrorText.Render("load failed: " + m.err.Error()))
	case !m.loaded:
		b.WriteString(m.spin.View() + styles.MutedText.Render(" loading metrics..."))
	default:
		b.WriteString(m.chartsView())
	}

	b.WriteString("\n\n")
	b.WriteString(m.footerView())
	return b.String()
}

func (m dashboardModel) headerView() string {
	title := styles.Title.Render("resmon")

	diskTab, apiTab := styles.Tab, styles.TabActive
	if m.view == viewDisk {
		diskTab, apiTab = styles.TabActive, styles.Tab
	}
	tabs := diskTab.Render("Disk I/O") + apiTab.Render("API Health")

	info := fmt.Sprintf("window %s", m.window)
	if !m.snap.At.IsZero() {
		info += "  updated " + m.snap.At.Format("15:04:05")
	}
	if m.loading && m.loaded {
		info += "  " + m.spin.View()
	}

	return lipgloss.JoinHorizontal(lipgloss.Center,
		title, "  ", tabs, "  ", styles.Subtitle.Render(info))
}

func (m dashboardModel) chartsView() string {
	targets := m.currentTargets()
	if len(targets) == 0 {
		return styles.MutedText.Render("no data in this window yet. run `resmon collect` or install the schedule")
	}

	cur := targets[m.targetIdx]

	var names []string
	for i, t := range targets {
		if i == m.targetIdx {
			names = append(names, styles.TabActive.Render(t.Target))
		} else {
			names = append(names, styles.Tab.Render(t.Target))
		}
	}
	targetLine := strings.Join(names, " ")

	metrics := m.metricOrder()
	chartWidth := (m.width - 6) / 2

	var charts []string
	for _, metric := range metrics {
		charts = append(charts, components.TimeChart(
			metric, cur.Metrics[metric], chartWidth, chartHeight, metricSuffixes[metric]))
	}

	var rows []string
	for i := 0; i < len(charts); i += 2 {
		if i+1 < len(charts) {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, charts[i], "  ", charts[i+1]))
		} else {
			rows = append(rows, charts[i])
		}
	}

	return targetLine + "\n\n" + strings.Join(rows, "\n\n")
}

// metricOrder keeps charts in a stable layout instead of map order.
func (m dashboardModel) metricOrder() []string {
	if m.view == viewDisk {
		return aggregate.DiskMetrics
	}
	return aggregate.APIMetrics
}

func (m dashboardModel) footerView() string {
	hints := []string{
		styles.FormatKeyBinding("tab", "disk/api"),
		styles.FormatKeyBinding("←/→", "target"),
		styles.FormatKeyBinding("1-6", "window"),
		styles.FormatKeyBinding("r", "refresh"),
		styles.FormatKeyBinding("q", "quit"),
	}
	return strings.Join(hints, styles.MutedText.Render("  ·  "))
}
