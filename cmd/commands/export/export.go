package export

import (
	"fmt"
	"path/filepath"
	"sort"

	"resmon/internal/config"
	"resmon/internal/export"
	"resmon/internal/statstore"

	"github.com/spf13/cobra"
)

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every stats table to CSV files",
		Long: `Export every stats table to one CSV file per table.

Tables missing from the database (for example a store created by an
older version) are skipped.

Examples:
  resmon export
  resmon export --out /tmp/metrics`,
		RunE:         runExport,
		SilenceUsage: true,
	}

	cmd.Flags().String("out", "exports", "Output directory for the CSV files")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	dir, _ := cmd.Flags().GetString("out")

	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}

	store, err := statstore.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("database unavailable: %w", err)
	}
	defer store.Close()

	result, err := export.ExportAll(cmd.Context(), store, dir)
	if err != nil {
		return err
	}

	tables := make([]string, 0, len(result))
	for table := range result {
		tables = append(tables, table)
	}
	sort.Strings(tables)

	for _, table := range tables {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %d rows -> %s\n",
			table, result[table], filepath.Join(dir, table+".csv"))
	}
	if len(result) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "nothing to export")
	}
	return nil
}
