package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/input"
)

var forceOverwrite bool

var templateCmd = &cobra.Command{
	Use:   "template [output.xlsx]",
	Short: "Write an example input workbook",
	Long: `Write a workbook with a 10 m simply supported beam in the accepted input
layout. Edit the rows and pass the file to gobeam.

Examples:
  gobeam template
  gobeam template girder.xlsx`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "beam-template.xlsx"
		if len(args) == 1 {
			path = args[0]
		}
		if _, err := os.Stat(path); err == nil && !forceOverwrite {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
		if err := input.WriteTemplate(path); err != nil {
			return err
		}
		printSuccess(cmd.OutOrStdout(), "Template written to %s", styleNumber.Render(path))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templateCmd)

	templateCmd.Flags().BoolVarP(&forceOverwrite, "force", "f", false, "overwrite an existing file")
}
