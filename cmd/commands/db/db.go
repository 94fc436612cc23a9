package db

import (
	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the metrics database",
		Long: `Manage the metrics database.

The database is a single SQLite file; its location comes from
RESOURCE_STATS_DB (default ~/resmon/data/resource_stats.db).`,
	}

	cmd.AddCommand(InitCommand())
	cmd.AddCommand(DeleteCommand())
	cmd.AddCommand(PathCommand())

	return cmd
}
