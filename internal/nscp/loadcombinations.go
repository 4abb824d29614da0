package nscp

import (
	"fmt"
	"strings"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// LoadCombination represents an NSCP load combination
// Based on NSCP 2015 Section 203.3 - Load Combinations Using Strength Design
type LoadCombination struct {
	ID          string
	Description string
	// Load factors for each load case
	Dead       float64 // D - Dead load
	Live       float64 // L - Live load
	Roof       float64 // Lr - Roof live load
	Wind       float64 // W - Wind load
	Earthquake float64 // E - Earthquake load
	Rain       float64 // R - Rain load
}

// Unfactored applies every load case at full value (service loads)
var Unfactored = LoadCombination{
	ID:          "S",
	Description: "D + L + Lr + W + E + R (unfactored)",
	Dead:        1.0,
	Live:        1.0,
	Roof:        1.0,
	Wind:        1.0,
	Earthquake:  1.0,
	Rain:        1.0,
}

// NSCP 2015 Section 203.3.1 - Basic Load Combinations
// Alternatives written as "(a or b)" are applied together, which is
// conservative for gravity-dominated beams.
var LoadCombinations = []LoadCombination{
	{
		ID:          "1",
		Description: "1.4D",
		Dead:        1.4,
	},
	{
		ID:          "2",
		Description: "1.2D + 1.6L + 0.5(Lr or R)",
		Dead:        1.2,
		Live:        1.6,
		Roof:        0.5,
		Rain:        0.5,
	},
	{
		ID:          "3",
		Description: "1.2D + 1.6(Lr or R) + (1.0L or 0.5W)",
		Dead:        1.2,
		Live:        1.0,
		Roof:        1.6,
		Rain:        1.6,
		Wind:        0.5,
	},
	{
		ID:          "4",
		Description: "1.2D + 1.0W + 1.0L + 0.5(Lr or R)",
		Dead:        1.2,
		Live:        1.0,
		Wind:        1.0,
		Roof:        0.5,
		Rain:        0.5,
	},
	{
		ID:          "5",
		Description: "1.2D + 1.0E + 1.0L",
		Dead:        1.2,
		Live:        1.0,
		Earthquake:  1.0,
	},
	{
		ID:          "6",
		Description: "0.9D + 1.0W",
		Dead:        0.9,
		Wind:        1.0,
	},
	{
		ID:          "7",
		Description: "0.9D + 1.0E",
		Dead:        0.9,
		Earthquake:  1.0,
	},
}

// Factor returns the load factor the combination applies to a load case
func (lc LoadCombination) Factor(c beam.LoadCase) float64 {
	switch c {
	case beam.Dead:
		return lc.Dead
	case beam.Live:
		return lc.Live
	case beam.Roof:
		return lc.Roof
	case beam.Wind:
		return lc.Wind
	case beam.Earthquake:
		return lc.Earthquake
	case beam.Rain:
		return lc.Rain
	}
	return 0
}

// Apply returns a copy of b with every load multiplied by its case factor
func (lc LoadCombination) Apply(b *beam.Beam) *beam.Beam {
	return b.Scaled(lc.Factor)
}

// Lookup finds a combination by ID. "S", "service" and "none" select the
// unfactored combination.
func Lookup(id string) (LoadCombination, error) {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", "s", "service", "none":
		return Unfactored, nil
	}
	for _, lc := range LoadCombinations {
		if lc.ID == strings.TrimSpace(id) {
			return lc, nil
		}
	}
	return LoadCombination{}, fmt.Errorf("unknown load combination %q", id)
}
