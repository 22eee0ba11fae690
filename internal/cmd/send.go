package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"launchhook/internal/monitor"
)

func newSendCommand() *cobra.Command {
	var app string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send one test request",
		Long: `Send the configured request once, as if the target process had just started,
and print the response.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sess := openSession()

			ctrl, err := sess.newController(monitor.WatcherPoll)
			if err != nil {
				return err
			}
			defer ctrl.Close()

			if app == "" {
				app = sess.store.MonitorConfig().TargetProcessName
			}

			res, err := ctrl.SendNow(context.Background(), app)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), res.Summary())
			return nil
		},
	}

	cmd.Flags().StringVarP(&app, "app", "a", "", "Value for {app}; defaults to the configured target")

	return cmd
}
