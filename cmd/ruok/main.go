package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ruok",
		Short: "Uptime monitor that notifies Slack when services go up or down",
		Long: `ruok probes every service listed in a monitor file on its own interval and
posts to the service's notification channels whenever it goes down or comes
back up. Process settings (log dir, status API address, timeouts) come from
the environment.`,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCmd(), newValidateCmd())
	return root
}
