package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	// Skips logger setup so version works with a broken config.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "statements %s\n", getVersionString())
		if version != "dev" {
			fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\nbuilt:  %s\n", commit, date)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
