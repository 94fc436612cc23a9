package cmd

import (
	"os"

	"resmon/cmd/commands/collect"
	"resmon/cmd/commands/dashboard"
	"resmon/cmd/commands/db"
	"resmon/cmd/commands/export"
	"resmon/cmd/commands/report"
	"resmon/cmd/commands/schedule"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "resmon",
		Short: "A CLI tool for sampling disk I/O and API health metrics",
		Long: `resmon benchmarks disk I/O on configured filesystems and probes
configured HTTP endpoints, persisting raw samples and rolling summaries
to a local SQLite database. Old raw samples are decimated by age so the
database stays bounded.

The collect command is designed to be invoked from cron; report, export,
and dashboard read back what collect has stored.

Quick start:
  resmon db init                   # Create the database and tables
  resmon collect --verbose         # Run one collection cycle
  resmon report --window 1h        # Show the latest rolling summary
  resmon schedule install          # Register the cron job
  resmon dashboard                 # Live terminal charts`,
	}

	cmd.PersistentFlags().String("env-file", "", "Path to a .env file with target configuration (default ./.env)")

	cmd.AddCommand(collect.NewCommand())
	cmd.AddCommand(report.NewCommand())
	cmd.AddCommand(export.NewCommand())
	cmd.AddCommand(db.NewCommand())
	cmd.AddCommand(schedule.NewCommand())
	cmd.AddCommand(dashboard.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
