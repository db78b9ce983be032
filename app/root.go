// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "bandesk",
	Short: "BanDesk is a web-based dashboard for managing venue ban records",
	Long: `BanDesk is a web-based dashboard for tracking banned individuals,
the venues they are restricted from, and the incidents behind those
restrictions. It enforces a role-scoped approval workflow with a full
audit history.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
