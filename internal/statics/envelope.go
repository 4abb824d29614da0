package statics

import (
	"fmt"
	"math"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/nscp"
)

// CombinationResult is the analysis of a beam under one load combination
type CombinationResult struct {
	Combination nscp.LoadCombination
	Analysis    *Analysis
}

// PeakMoment returns the largest absolute bending moment of the result
func (r CombinationResult) PeakMoment() float64 {
	return math.Abs(r.Analysis.Moment.Peak().Value)
}

// Envelope solves b once per combination and returns every result together
// with the governing one (largest absolute bending moment, first wins ties).
func Envelope(b *beam.Beam, combinations []nscp.LoadCombination) (CombinationResult, []CombinationResult, error) {
	if len(combinations) == 0 {
		return CombinationResult{}, nil, fmt.Errorf("no load combinations given")
	}

	results := make([]CombinationResult, 0, len(combinations))
	governing := -1
	for _, combo := range combinations {
		a, err := Solve(combo.Apply(b))
		if err != nil {
			return CombinationResult{}, nil, fmt.Errorf("combination %s: %w", combo.ID, err)
		}
		results = append(results, CombinationResult{Combination: combo, Analysis: a})
		i := len(results) - 1
		if governing < 0 || results[i].PeakMoment() > results[governing].PeakMoment() {
			governing = i
		}
	}
	return results[governing], results, nil
}
