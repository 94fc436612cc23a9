package db

import (
	"errors"
	"fmt"
	"os"

	"resmon/internal/config"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func DeleteCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete the database file and all collected metrics",
		Long: `Delete the database file and all collected metrics.

Asks for confirmation unless --yes is given.

Examples:
  resmon db delete
  resmon db delete --yes`,
		RunE:         runDelete,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func runDelete(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfg.DBPath); errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(cmd.OutOrStdout(), "No database at %s, nothing to delete.\n", cfg.DBPath)
		return nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		confirm := false
		field := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %s and all collected metrics? This cannot be undone.", cfg.DBPath)).
			Affirmative("Yes, delete").
			Negative("Cancel").
			Value(&confirm)
		accessible := os.Getenv("ACCESSIBLE") != ""
		if err := huh.NewForm(huh.NewGroup(field)).WithAccessible(accessible).Run(); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Deletion cancelled.")
				return nil
			}
			return err
		}
		if !confirm {
			fmt.Fprintln(cmd.ErrOrStderr(), "Deletion cancelled.")
			return nil
		}
	}

	if err := os.Remove(cfg.DBPath); err != nil {
		return fmt.Errorf("deleting database: %w", err)
	}
	// WAL sidecar files may or may not exist.
	os.Remove(cfg.DBPath + "-wal")
	os.Remove(cfg.DBPath + "-shm")

	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", cfg.DBPath)
	return nil
}
