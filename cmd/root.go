// Package cmd defines the CLI commands for the webmonitor executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webmonitor",
		Short: "A scheduled website accessibility monitor.",
		Long: `webmonitor periodically checks whether a configured set of websites are
reachable and contain expected text, and sends a webhook alert for each
site that fails its check.`,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "path to the configuration file")
	cmd.AddCommand(newMonitorCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "webmonitor: %v\n", err)
		os.Exit(1)
	}
}
