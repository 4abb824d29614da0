package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/input"
	"github.com/alexiusacademia/gobeam/internal/pipeline"
	"github.com/alexiusacademia/gobeam/internal/statics"
	"github.com/alexiusacademia/gobeam/internal/version"
)

var (
	configPath  string
	verbose     bool
	combination string
	diagramDir  string
)

var rootCmd = &cobra.Command{
	Use:   "gobeam <input.xlsx> <output.pdf>",
	Short: "Beam Analysis Report Generator",
	Long: `gobeam - Go Beam Analysis Report Generator

Reads a beam definition (supports and loads) from an Excel workbook, solves
the support reactions, draws the shear force and bending moment diagrams and
writes a PDF report.

A workbook with Position, Shear and Moment columns is read as precomputed
diagrams and reported without solving.

Examples:
  # Write a starter workbook, then build the report
  gobeam template beam.xlsx
  gobeam beam.xlsx report.pdf

  # Use the governing NSCP 2015 load combination and keep the figures
  gobeam beam.xlsx report.pdf --combination governing --diagrams figures/`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return nil
		}
		return cobra.ExactArgs(2)(cmd, args)
	},
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := log.InfoLevel
		if verbose {
			level = log.DebugLevel
		}
		cmd.SetContext(withLogger(cmd.Context(), newLogger(os.Stderr, level)))
	},
	RunE: runReport,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styleError.Render("✗")+" "+describeError(err))
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default gobeam.toml when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&combination, "combination", "c", "", "load combination: none, governing or an NSCP 2015 combination number")

	rootCmd.Flags().StringVar(&diagramDir, "diagrams", "", "also write beam, SFD and BMD figures to this directory")
}

func runReport(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		printWelcome()
		return nil
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := pipeline.Run(cmd.Context(), pipeline.Options{
		Input:      args[0],
		Output:     args[1],
		DiagramDir: diagramDir,
		Config:     cfg,
		Logger:     loggerFromContext(cmd.Context()),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printSuccess(out, "Report written to %s", styleNumber.Render(res.Files[0]))
	for _, f := range res.Files[1:] {
		printSuccess(out, "Diagram written to %s", f)
	}
	return nil
}

// loadConfig reads the configuration and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.Options{Path: configPath})
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("combination") {
		cfg.Analysis.Combination = combination
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	loggerFromContext(cmd.Context()).Debug("Configuration loaded",
		"report_id", cfg.Report.ReportID, "combination", cfg.Analysis.Combination, "embed", cfg.Diagram.Embed)
	return cfg, nil
}

// describeError adds a hint for the errors a user can fix in the workbook
func describeError(err error) string {
	var (
		me *input.MalformedInputError
		ie *statics.IndeterminateBeamError
		ue *statics.UnderconstrainedError
	)
	switch {
	case errors.As(err, &me) && me.Row > 0:
		return fmt.Sprintf("%v\n  check row %d of sheet %q", err, me.Row, me.Sheet)
	case errors.As(err, &ie):
		return fmt.Sprintf("%v\n  only statically determinate beams are supported: two pins/rollers, or one fixed end", err)
	case errors.As(err, &ue):
		return fmt.Sprintf("%v\n  add supports so the beam cannot move or rotate", err)
	case errors.Is(err, context.Canceled):
		return "interrupted"
	}
	return err.Error()
}

func printWelcome() {
	fmt.Println()
	fmt.Println("  ╔═══════════════════════════════════════════════════════════╗")
	fmt.Println("  ║                                                           ║")
	fmt.Printf("  ║   gobeam v%-48s║\n", version.Version)
	fmt.Println("  ║   Go Beam Analysis Report Generator                       ║")
	fmt.Println("  ║                                                           ║")
	fmt.Println("  ╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()
	fmt.Println("  Builds a PDF beam analysis report from an Excel workbook.")
	fmt.Println()
	fmt.Println("  Features:")
	fmt.Println("    • Support reactions for simply supported, overhanging and cantilever beams")
	fmt.Println("    • Shear force and bending moment diagrams as vector figures")
	fmt.Println("    • NSCP 2015 load combinations and governing envelope")
	fmt.Println("    • Tabulated results and equilibrium check")
	fmt.Println()
	fmt.Println("  Usage: gobeam <input.xlsx> <output.pdf>")
	fmt.Println("  Use 'gobeam --help' to see available commands.")
	fmt.Println()
	fmt.Println("  ─────────────────────────────────────────────────────────────")
	fmt.Printf("  Copyright © %s %s. All rights reserved.\n", version.Year, version.Author)
	fmt.Println()
}
