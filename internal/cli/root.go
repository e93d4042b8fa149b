// Package cli wires the gated command tree.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gated",
	Short: "Storefront access gateway",
	Long:  "Classifies storefront routes and enforces session-based access at the edge.\nProxies allowed requests to the backend and evaluates client navigations over a websocket stream.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
