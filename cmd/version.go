package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of gobeam",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "gobeam v%s\n", version.Version)
		fmt.Fprintln(out, "Beam Analysis Report Generator")
		fmt.Fprintln(out, "Load combinations per NSCP 2015 (National Structural Code of the Philippines)")
		if version.GitCommit != "unknown" {
			fmt.Fprintf(out, "commit %s, built %s\n", version.GitCommit, version.BuildTime)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
