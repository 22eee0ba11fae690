package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"launchhook/internal/autostart"
	"launchhook/internal/config"
)

func newAutostartCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autostart",
		Short: "Manage starting launchhook at login",
		Long: `Register or remove the login entry that runs 'launchhook run'. The choice is
stored as autoStartApp in the configuration and re-applied on every run.`,
	}

	setEnabled := func(enabled bool) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			sess := openSession()
			sess.store.Update(func(c *config.Config) { c.AutoStartApp = enabled })

			reg, err := autostart.New()
			if err != nil {
				return err
			}
			if err := autostart.Apply(reg, enabled, ""); err != nil {
				return err
			}
			if err := sess.store.Save(); err != nil {
				return fmt.Errorf("failed to save configuration: %w", err)
			}

			if enabled {
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart enabled")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Autostart disabled")
			}
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "enable",
			Short: "Start launchhook at login",
			RunE:  setEnabled(true),
		},
		&cobra.Command{
			Use:   "disable",
			Short: "Stop starting launchhook at login",
			RunE:  setEnabled(false),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show whether the login entry exists",
			RunE: func(cmd *cobra.Command, args []string) error {
				reg, err := autostart.New()
				if err != nil {
					return err
				}
				on, err := reg.Enabled()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Autostart: %t\n", on)
				return nil
			},
		},
	)

	return cmd
}
