package collect

import (
	"fmt"

	"resmon/internal/collector"
	"resmon/internal/config"
	"resmon/internal/logging"
	"resmon/internal/statstore"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collect",
		Short: "Run one collection cycle over all configured targets",
		Long: `Run one collection cycle: benchmark every configured filesystem,
probe every configured API endpoint, persist the samples and rolling
summaries, then decimate old raw samples.

Targets fail independently. The command exits 0 when at least one target
was collected (or none are configured) and 1 when every target failed.

Examples:
  resmon collect
  resmon collect --verbose
  FILESYSTEM_PATHS=/data FILESYSTEM_LABELS=data resmon collect`,
		RunE:         runCollect,
		SilenceUsage: true,
	}

	cmd.Flags().BoolP("verbose", "v", false, "Log every probe and persistence step")

	return cmd
}

func runCollect(cmd *cobra.Command, args []string) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	log := logging.New(verbose)
	defer logging.Flush(log)

	envFile := cmd.Flag("env-file").Value.String()
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	// A missing database is not fatal: probes still run so operators see
	// failures in the log, but nothing is persisted this cycle.
	store, err := statstore.Open(cfg.DBPath)
	if err != nil {
		log.Warn("database unavailable, continuing without persistence",
			zap.String("path", cfg.DBPath), zap.Error(err))
		store = nil
	} else {
		defer store.Close()
	}

	result := collector.New(cfg, store, log).RunCycle(cmd.Context())

	fmt.Fprintf(cmd.OutOrStdout(), "Collected %d/%d disk targets, %d/%d API targets.\n",
		result.DiskOK, result.DiskOK+result.DiskFailed,
		result.APIOK, result.APIOK+result.APIFailed)

	if !result.OK() {
		return fmt.Errorf("all %d targets failed", result.Configured())
	}
	return nil
}
