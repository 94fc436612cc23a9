package schedule

import (
	"errors"
	"fmt"
	"os"

	"resmon/internal/config"
	"resmon/internal/sched"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

// jobEnvKeys are the configuration variables copied onto the crontab
// line, since cron runs with an almost empty environment.
var jobEnvKeys = []string{
	"FILESYSTEM_PATHS",
	"FILESYSTEM_LABELS",
	"API_ENDPOINTS",
	"API_NAMES",
	"RESOURCE_STATS_DB",
	"API_REQUEST_TIMEOUT",
	"SAMPLING_MINUTES",
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage the cron entry that runs collection",
		Long: `Manage the cron entry that runs 'resmon collect' on a timer.

The entry is tagged with a marker comment so install, update and remove
only ever touch their own line. Configuration env vars set in the
current environment are inlined into the entry; alternatively pass
--env-file so the cron job reads the same file as interactive runs.`,
	}

	cmd.AddCommand(InstallCommand())
	cmd.AddCommand(UpdateCommand())
	cmd.AddCommand(RemoveCommand())

	return cmd
}

func InstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Register the collection cron entry",
		Long: `Register the collection cron entry, replacing any previous one.

Examples:
  resmon schedule install
  resmon schedule install --interval 10 --yes
  resmon schedule install --env-file /etc/resmon.env`,
		RunE:         runInstall,
		SilenceUsage: true,
	}

	cmd.Flags().Int("interval", 0, "Minutes between cycles (default SAMPLING_MINUTES)")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func UpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "update",
		Short:        "Update the collection cron entry in place",
		Long:         `Update the collection cron entry. Identical to install: the old entry is replaced.`,
		RunE:         runInstall,
		SilenceUsage: true,
	}

	cmd.Flags().Int("interval", 0, "Minutes between cycles (default SAMPLING_MINUTES)")
	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func RemoveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "remove",
		Short:        "Remove the collection cron entry",
		RunE:         runRemove,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("yes", false, "Skip the confirmation prompt")

	return cmd
}

func runInstall(cmd *cobra.Command, args []string) error {
	envFile := cmd.Flag("env-file").Value.String()
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetInt("interval")
	if interval == 0 {
		interval = cfg.SamplingMinutes
	}

	binary, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolving executable path: %w", err)
	}

	job := sched.Job{
		Binary:          binary,
		EnvFile:         envFile,
		IntervalMinutes: interval,
	}
	if envFile == "" {
		job.Env = jobEnv()
	}

	line, err := job.Line()
	if err != nil {
		return err
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(cmd, fmt.Sprintf("Install this cron entry?\n\n  %s", line))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	if err := sched.Install(cmd.Context(), job); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Installed: %s\n", line)
	return nil
}

func runRemove(cmd *cobra.Command, args []string) error {
	lines, err := sched.Current(cmd.Context())
	if err != nil {
		return err
	}
	entry, found := sched.Find(lines)
	if !found {
		fmt.Fprintln(cmd.OutOrStdout(), "No collection cron entry installed.")
		return nil
	}

	yes, _ := cmd.Flags().GetBool("yes")
	if !yes {
		ok, err := confirm(cmd, fmt.Sprintf("Remove this cron entry?\n\n  %s", entry))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.ErrOrStderr(), "Cancelled.")
			return nil
		}
	}

	removed, err := sched.Uninstall(cmd.Context())
	if err != nil {
		return err
	}
	if removed {
		fmt.Fprintln(cmd.OutOrStdout(), "Removed the collection cron entry.")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "No collection cron entry installed.")
	}
	return nil
}

// jobEnv snapshots the configuration vars currently set in the process
// environment.
func jobEnv() map[string]string {
	env := make(map[string]string)
	for _, key := range jobEnvKeys {
		if v := os.Getenv(key); v != "" {
			env[key] = v
		}
	}
	return env
}

func confirm(cmd *cobra.Command, title string) (bool, error) {
	ok := false
	field := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("Cancel").
		Value(&ok)
	accessible := os.Getenv("ACCESSIBLE") != ""
	if err := huh.NewForm(huh.NewGroup(field)).WithAccessible(accessible).Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}
