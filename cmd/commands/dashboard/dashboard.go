package dashboard

import (
	"fmt"
	"time"

	"resmon/internal/config"
	"resmon/internal/statstore"
	"resmon/internal/tui"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Open the live metrics dashboard",
		Long: `Open a terminal dashboard with one time-series chart per metric,
fed from the rolling summaries and refreshed automatically.

Keys: tab switches between disk and API views, arrow keys cycle targets,
1-6 select the window, r reloads, q quits.

Examples:
  resmon dashboard
  resmon dashboard --window 1w`,
		RunE:         runDashboard,
		SilenceUsage: true,
	}

	cmd.Flags().String("window", "1d", "Initial time window: 1h, 1d, 1w, 1m, 1y, max")

	return cmd
}

func runDashboard(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")

	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}

	store, err := statstore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer store.Close()

	refresh := time.Duration(cfg.DashRefreshSeconds) * time.Second
	return tui.Run(store, refresh, window)
}
