// Package report assembles the beam analysis PDF with gofpdf.
package report

import (
	"fmt"
	"time"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/nscp"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

// Meta is the title page and header information
type Meta struct {
	Title       string
	Subtitle    string
	Institute   string
	Author      string
	ReportID    string
	Description string // introduction text; generated when empty
	Paper       string // gofpdf page size name, A4 when empty
	Date        time.Time
}

// Units label values in tables and captions
type Units = config.Units

// Figure is a rendered diagram ready for embedding. PDF figures are placed
// as vector templates, PNG figures as images.
type Figure struct {
	Caption string
	Format  diagram.Format
	Data    []byte
	Aspect  float64 // height / width
}

// Station is one row of the tabulated results
type Station struct {
	Position float64
	Shear    float64
	Moment   float64
}

// Document is everything the report needs. Beam and Analysis are nil for
// reports built from tabulated diagrams.
type Document struct {
	Meta   Meta
	Units  Units
	Source string // workbook path and sheet

	Beam        *beam.Beam
	Analysis    *statics.Analysis
	Combination *nscp.LoadCombination
	Envelope    []statics.CombinationResult // one entry per combination when the governing one was selected

	Shear  *statics.Function
	Moment *statics.Function

	// Stations are printed as the tabulated results. Tabulated input passes
	// its rows through unchanged.
	Stations []Station

	Schematic    *Figure
	ShearFigure  *Figure
	MomentFigure *Figure
}

// AssemblyError reports a failure while building the PDF
type AssemblyError struct {
	Stage string // layout, embed or output
	Err   error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assemble report (%s): %v", e.Stage, e.Err)
}

func (e *AssemblyError) Unwrap() error { return e.Err }

// EvenStations samples shear and moment at n evenly spaced positions over
// [0, length]. Shear is reported just right of each station, except at the
// far end where the left limit is used.
func EvenStations(shear, moment *statics.Function, length float64, n int) []Station {
	if n < 2 {
		n = 2
	}
	out := make([]Station, n)
	for i := range out {
		x := length * float64(i) / float64(n-1)
		out[i] = Station{Position: x, Shear: shear.At(x), Moment: moment.At(x)}
	}
	return out
}
