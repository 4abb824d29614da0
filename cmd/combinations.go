package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alexiusacademia/gobeam/internal/input"
	"github.com/alexiusacademia/gobeam/internal/nscp"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

var showAll bool

var combinationsCmd = &cobra.Command{
	Use:   "combinations <input.xlsx>",
	Short: "Solve a beam under every NSCP load combination",
	Long: `Solve the beam once per NSCP 2015 load combination and report the peak
bending moment of each, marking the governing combination.

Each load in the workbook carries a load case in its Case column:
  D  - Dead load
  L  - Live load
  Lr - Roof live load
  W  - Wind load
  E  - Earthquake load
  R  - Rain load

Examples:
  gobeam combinations beam.xlsx
  gobeam combinations beam.xlsx --all`,
	Args: cobra.ExactArgs(1),
	RunE: runCombinations,
}

func init() {
	rootCmd.AddCommand(combinationsCmd)

	combinationsCmd.Flags().BoolVarP(&showAll, "all", "a", false, "also list the reactions under every combination")
}

func runCombinations(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	src, err := input.LoadFile(args[0], input.Options{Sheet: cfg.Input.Sheet})
	if err != nil {
		return err
	}
	if src.Beam == nil {
		return fmt.Errorf("%s holds tabulated diagrams; load combinations need a beam definition", args[0])
	}

	gov, all, err := statics.Envelope(src.Beam, nscp.LoadCombinations)
	if err != nil {
		return err
	}

	u := cfg.Units
	mu := u.MomentUnit()
	out := cmd.OutOrStdout()
	printBanner(out, "NSCP 2015 LOAD COMBINATIONS")

	printHeading(out, "LOAD CASES PRESENT:")
	for _, c := range src.Beam.Cases() {
		fmt.Fprintf(out, "  %s\n", c)
	}
	fmt.Fprintln(out)

	printHeading(out, "LOAD COMBINATIONS (NSCP 2015 Section 203.3):")
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  #\tCombination\tMu (%s)\tat x (%s)\n", mu, u.Length)
	fmt.Fprintf(w, "  ─\t───────────\t─────────\t─────────\n")
	for _, r := range all {
		peak := r.Analysis.Moment.Peak()
		marker := ""
		if r.Combination.ID == gov.Combination.ID {
			marker = " ← GOVERNS"
		}
		fmt.Fprintf(w, "  %s\t%s\t%.2f\t%.2f%s\n", r.Combination.ID, r.Combination.Description, peak.Value, peak.Position, marker)
	}
	w.Flush()
	fmt.Fprintln(out)

	if showAll {
		printHeading(out, fmt.Sprintf("REACTIONS (%s):", u.Force))
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		header := "  #"
		for _, s := range src.Beam.Supports() {
			name := s.Label
			if name == "" {
				name = fmt.Sprintf("x=%g", s.Position)
			}
			header += "\t" + name
		}
		fmt.Fprintln(w, header)
		for _, r := range all {
			fmt.Fprintf(w, "  %s", r.Combination.ID)
			for _, re := range r.Analysis.Reactions() {
				fmt.Fprintf(w, "\t%.2f", re.Force)
			}
			fmt.Fprintln(w)
		}
		w.Flush()
		fmt.Fprintln(out)
	}

	peak := gov.Analysis.Moment.Peak()
	printHeading(out, "RESULT:")
	fmt.Fprintf(out, "  Governing Combination: %s (%s)\n", gov.Combination.ID, gov.Combination.Description)
	fmt.Fprintln(out)
	fmt.Fprintf(out, "  ╔═══════════════════════════════════╗\n")
	fmt.Fprintf(out, "  ║  FACTORED MOMENT (Mu) = %s %s at x = %.2f %s\n", styleNumber.Render(fmt.Sprintf("%.2f", peak.Value)), mu, peak.Position, u.Length)
	fmt.Fprintf(out, "  ╚═══════════════════════════════════╝\n")
	fmt.Fprintln(out)
	return nil
}
