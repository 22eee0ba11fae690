package cmd

import (
	"github.com/spf13/cobra"

	"launchhook/internal/config"
)

var (
	configPath string
	verbose    bool
)

// NewRootCommand creates the root command for the launchhook CLI
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "launchhook",
		Short: "Send an HTTP callback when a process starts",
		Long: `Launchhook watches for the launch of a chosen process and, each time it starts,
sends a configurable HTTP request. The request body is a template: {app},
{timestamp}, {pid}, {dispatch_id} and {hostname} are filled in per launch.

Select the process with 'list' or 'select', adjust the request with 'config',
and start watching with 'run'.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")

	rootCmd.AddCommand(
		newRunCommand(),
		newListCommand(),
		newSelectCommand(),
		newSendCommand(),
		newConfigCommand(),
		newCreateConfigCommand(),
		newAutostartCommand(),
		newVersionCommand(),
	)

	return rootCmd
}
