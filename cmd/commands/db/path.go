package db

import (
	"fmt"

	"resmon/internal/config"

	"github.com/spf13/cobra"
)

func PathCommand() *cobra.Command {
	return &cobra.Command{
		Use:          "path",
		Short:        "Print the resolved database file path",
		RunE:         runPath,
		SilenceUsage: true,
	}
}

func runPath(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cmd.Flag("env-file").Value.String())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), cfg.DBPath)
	return nil
}
