package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"launchhook/internal/config"
	apperrors "launchhook/internal/errors"
	"launchhook/internal/monitor"
)

// selectTarget makes entry the watched process and saves the configuration.
// entry may be a bare executable name or a "name - title" list entry.
func selectTarget(out io.Writer, entry string) error {
	name := monitor.SelectionFromEntry(entry)
	if name == "" {
		return apperrors.InvalidTarget("no process name given")
	}

	cfg, err := config.Load(configPath, nil)
	if err := checkWritable(configPath, err); err != nil {
		return err
	}
	cfg.TargetProcessName = name
	if err := config.SaveConfig(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintf(out, "Selected: %s\n", name)
	return nil
}

func newSelectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select <process name>",
		Short: "Set the process to watch",
		Long: `Set the executable name to watch for. The name need not be running; the
executable suffix of the platform is optional. An entry copied from 'list' in
the form "name - title" is accepted as well.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return selectTarget(cmd.OutOrStdout(), strings.Join(args, " "))
		},
	}

	return cmd
}
