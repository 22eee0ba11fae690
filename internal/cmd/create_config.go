package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"launchhook/internal/config"
)

func newCreateConfigCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "create-config [path]",
		Short: "Write a default configuration file",
		Long: `Write the default request settings to path, or to the --config location.
An existing file is left alone unless --force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if len(args) > 0 {
				path = args[0]
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to replace it)", path)
			}
			if err := config.CreateDefaultConfig(path); err != nil {
				return fmt.Errorf("error creating configuration: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Default configuration created at %s\n", path)
			fmt.Fprintf(out, "Callback URL: %s\n", config.DefaultURL)
			fmt.Fprintln(out, "Next: 'launchhook select <process name>', then 'launchhook run'.")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Replace an existing file")
	return cmd
}
