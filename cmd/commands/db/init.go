package db

import (
	"fmt"

	"resmon/internal/config"
	"resmon/internal/statstore"

	"github.com/spf13/cobra"
)

func InitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database file and tables",
		Long: `Create the database file, its parent directory, and all tables.

Safe to run repeatedly; existing tables and data are left untouched.
Collection creates the database on demand too, so this is mainly useful
for verifying the configured path is writable.`,
		RunE:         runInit,
		SilenceUsage: true,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}

	store, err := statstore.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	fmt.Fprintf(cmd.OutOrStdout(), "Database ready at %s\n", store.Path())
	for _, table := range statstore.Tables {
		b, err := store.TableBounds(table)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d rows)\n", table, b.Count)
	}
	return nil
}
