package report

import (
	"context"
	"fmt"
	"os"
	"time"

	"resmon/internal/aggregate"
	"resmon/internal/config"
	"resmon/internal/report"
	"resmon/internal/statstore"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the latest rolling summary per target and metric",
		Long: `Print sample counts per table plus the most recent rolling summary
for every target and metric inside a time window.

The window is a preset (1h, 1d, 1w, 1m, 1y, max) or an explicit
--start/--end pair (YYYY-MM-DD or "YYYY-MM-DD HH:MM", local time).

Examples:
  resmon report
  resmon report --window 1w
  resmon report --start 2026-03-01 --end 2026-03-10
  resmon report --recompute -o json`,
		RunE:         runReport,
		SilenceUsage: true,
	}

	cmd.Flags().String("window", "1h", "Time window preset: 1h, 1d, 1w, 1m, 1y, max")
	cmd.Flags().String("start", "", "Explicit window start (overrides --window)")
	cmd.Flags().String("end", "", "Explicit window end (overrides --window)")
	cmd.Flags().Bool("recompute", false, "Recompute the rolling summaries before reporting")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	preset, _ := cmd.Flags().GetString("window")
	start, _ := cmd.Flags().GetString("start")
	end, _ := cmd.Flags().GetString("end")
	recompute, _ := cmd.Flags().GetBool("recompute")
	format, _ := cmd.Flags().GetString("output")

	if format != "table" && format != "json" {
		return fmt.Errorf("unknown output format %q (expected table or json)", format)
	}

	window, err := report.ParseWindow(preset, start, end, time.Now())
	if err != nil {
		return err
	}

	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}

	store, err := statstore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer store.Close()

	if recompute {
		if err := recomputeSummaries(cmd, cfg, store); err != nil {
			return err
		}
	}

	rep, err := report.New(store).Build(window)
	if err != nil {
		return err
	}

	if format == "json" {
		printReportJSON(cmd, rep)
		return nil
	}
	printReportTable(cmd, rep)
	return nil
}

// recomputeSummaries refreshes the rolling summary for every configured
// target before the report is built.
func recomputeSummaries(cmd *cobra.Command, cfg *config.Config, store *statstore.Store) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	agg := aggregate.New(store, hostname, zap.NewNop())

	accessible := os.Getenv("ACCESSIBLE") != ""
	return spinner.New().
		Title("Recomputing summaries...").
		Accessible(accessible).
		Output(cmd.ErrOrStderr()).
		ActionWithErr(func(ctx context.Context) error {
			at := time.Now()
			since := at.Add(-aggregate.DefaultWindow)
			for _, d := range cfg.Disks {
				if err := agg.RecomputeDisk(d.Label, since, at); err != nil {
					return err
				}
			}
			for _, a := range cfg.APIs {
				if err := agg.RecomputeAPI(a.Name, since, at); err != nil {
					return err
				}
			}
			return nil
		}).
		Run()
}
