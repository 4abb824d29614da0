package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/pipeline"
	"github.com/alexiusacademia/gobeam/internal/report"
)

var (
	chartWidth  int
	chartHeight int
	noCharts    bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <input.xlsx>",
	Short: "Solve a beam and print the results to the console",
	Long: `Solve the beam defined in a workbook and print the reactions, extreme
values and ASCII shear force and bending moment diagrams. No PDF is written.

Examples:
  gobeam analyze beam.xlsx
  gobeam analyze beam.xlsx --combination 2 --width 80`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().IntVar(&chartWidth, "width", 60, "chart width in columns")
	analyzeCmd.Flags().IntVar(&chartHeight, "height", 10, "chart height in rows")
	analyzeCmd.Flags().BoolVar(&noCharts, "no-charts", false, "skip the ASCII diagrams")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	res, err := pipeline.Analyze(cmd.Context(), pipeline.Options{
		Input:  args[0],
		Config: cfg,
		Logger: loggerFromContext(cmd.Context()),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printAnalysis(out, res, cfg)
	return nil
}

func printAnalysis(out io.Writer, res *pipeline.Result, cfg *config.Config) {
	u := cfg.Units
	mu := u.MomentUnit()

	printBanner(out, "BEAM ANALYSIS")

	if b := res.Source.Beam; b != nil {
		printHeading(out, "BEAM:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Span (L):\t%.3f %s\n", b.Length(), u.Length)
		fmt.Fprintf(w, "  Total applied load:\t%.3f %s\n", b.TotalLoad(), u.Force)
		if res.Combination != nil {
			fmt.Fprintf(w, "  Load combination:\t%s (%s)\n", res.Combination.ID, res.Combination.Description)
		}
		w.Flush()
		fmt.Fprintln(out)
		fmt.Fprint(out, diagram.DrawBeamSketch(b, chartWidth))
		fmt.Fprintln(out)

		printHeading(out, "SUPPORTS:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  #\tLabel\tType\tx (%s)\n", u.Length)
		fmt.Fprintf(w, "  ─\t─────\t────\t──────\n")
		for i, s := range b.Supports() {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%.3f\n", i+1, s.Label, s.Type, s.Position)
		}
		w.Flush()
		fmt.Fprintln(out)

		printHeading(out, "LOADS:")
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  #\tType\tCase\tDescription\tLabel\n")
		fmt.Fprintf(w, "  ─\t────\t────\t───────────\t─────\n")
		for i, l := range b.Loads() {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t%s\n", i+1, l.Type, l.Case, l.Describe(), l.Label)
		}
		w.Flush()
		fmt.Fprintln(out)
	} else {
		printHeading(out, "TABULATED INPUT:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Stations:\t%d\n", len(res.Source.Table.Rows))
		fmt.Fprintf(w, "  Length:\t%.3f %s\n", res.Length(), u.Length)
		w.Flush()
		fmt.Fprintln(out)
	}

	if a := res.Analysis; a != nil {
		printHeading(out, "REACTIONS:")
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  Support\tx (%s)\tForce (%s)\tMoment (%s)\n", u.Length, u.Force, mu)
		fmt.Fprintf(w, "  ───────\t──────\t─────────\t──────────\n")
		for _, r := range a.Reactions() {
			moment := "-"
			if r.Support.Type == beam.Fixed {
				moment = fmt.Sprintf("%.3f", r.Moment)
			}
			fmt.Fprintf(w, "  %s\t%.3f\t%.3f\t%s\n", r.Support.Label, r.Support.Position, r.Force, moment)
		}
		w.Flush()
		rf, rm := a.Residuals()
		fmt.Fprintf(out, "  %s\n\n", styleDim.Render(fmt.Sprintf("equilibrium residuals: force %.1e, moment %.1e", rf, rm)))
	}

	printHeading(out, "EXTREME VALUES:")
	maxV, minV := res.Shear.Extrema()
	maxM, minM := res.Moment.Extrema()
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  Maximum shear:\t%.3f %s\tat x = %.3f\n", maxV.Value, u.Force, maxV.Position)
	fmt.Fprintf(w, "  Minimum shear:\t%.3f %s\tat x = %.3f\n", minV.Value, u.Force, minV.Position)
	fmt.Fprintf(w, "  Maximum moment:\t%.3f %s\tat x = %.3f\n", maxM.Value, mu, maxM.Position)
	fmt.Fprintf(w, "  Minimum moment:\t%.3f %s\tat x = %.3f\n", minM.Value, mu, minM.Position)
	w.Flush()
	fmt.Fprintln(out)

	if !noCharts {
		printHeading(out, "SHEAR FORCE DIAGRAM:")
		fmt.Fprintln(out, diagram.Preview(res.Shear, fmt.Sprintf("V (%s) over 0..%g %s", u.Force, res.Length(), u.Length), chartWidth, chartHeight))
		fmt.Fprintln(out)
		printHeading(out, "BENDING MOMENT DIAGRAM:")
		fmt.Fprintln(out, diagram.Preview(res.Moment, fmt.Sprintf("M (%s) over 0..%g %s", mu, res.Length(), u.Length), chartWidth, chartHeight))
		fmt.Fprintln(out)
	}

	peak := res.Moment.Peak()
	lines := []string{fmt.Sprintf("Peak moment = %.2f %s at x = %.2f %s", peak.Value, mu, peak.Position, u.Length)}
	if res.Analysis != nil {
		lines = append(lines, report.ReactionsSummary(res.Analysis, u)...)
	}
	fmt.Fprint(out, diagram.DrawSummaryBox("RESULT", lines))
	fmt.Fprintln(out)
}
