// Package diagram draws shear force, bending moment and beam schematic
// figures with gonum/plot, plus text previews for the console.
package diagram

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

// Format is an output encoding understood by plot.WriterTo
type Format string

const (
	SVG Format = "svg"
	PDF Format = "pdf"
	EPS Format = "eps"
	PNG Format = "png"
)

// ParseFormat accepts svg, pdf, eps or png
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case SVG, PDF, EPS, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported diagram format %q", s)
}

// Ext returns the file extension including the dot
func (f Format) Ext() string { return "." + string(f) }

// ErrEmptyFunction is wrapped by RenderError when there is nothing to plot
var ErrEmptyFunction = errors.New("function has no segments")

// RenderError reports a figure that could not be produced
type RenderError struct {
	Diagram string
	Err     error
}

func (e *RenderError) Error() string {
	return fmt.Sprintf("render %s: %v", e.Diagram, e.Err)
}

func (e *RenderError) Unwrap() error { return e.Err }

// Options controls figure content and output
type Options struct {
	Title      string
	XLabel     string
	YLabel     string
	Length     float64 // beam span; fixes the x range
	LengthUnit string
	ValueUnit  string // unit of plotted values; force unit for schematics
	Samples    int
	Width      vg.Length
	Height     vg.Length
	Format     Format
	Color      color.Color
}

var (
	shearColor  = color.RGBA{R: 0, G: 90, B: 180, A: 255}
	momentColor = color.RGBA{R: 190, G: 30, B: 45, A: 255}
	beamColor   = color.RGBA{R: 60, G: 60, B: 60, A: 255}
	loadColor   = color.RGBA{R: 200, G: 80, B: 0, A: 255}
)

// ShearOptions returns options for a shear force diagram
func ShearOptions(length float64, lengthUnit, forceUnit string) Options {
	return Options{
		Title:      "Shear Force Diagram",
		XLabel:     fmt.Sprintf("Position (%s)", lengthUnit),
		YLabel:     fmt.Sprintf("Shear (%s)", forceUnit),
		Length:     length,
		LengthUnit: lengthUnit,
		ValueUnit:  forceUnit,
		Color:      shearColor,
	}
}

// MomentOptions returns options for a bending moment diagram
func MomentOptions(length float64, lengthUnit, forceUnit string) Options {
	unit := forceUnit + "·" + lengthUnit
	return Options{
		Title:      "Bending Moment Diagram",
		XLabel:     fmt.Sprintf("Position (%s)", lengthUnit),
		YLabel:     fmt.Sprintf("Moment (%s)", unit),
		Length:     length,
		LengthUnit: lengthUnit,
		ValueUnit:  unit,
		Color:      momentColor,
	}
}

func (o Options) withDefaults() Options {
	if o.Samples < 2 {
		o.Samples = 201
	}
	if o.Width <= 0 {
		o.Width = 6.5 * vg.Inch
	}
	if o.Height <= 0 {
		o.Height = 2.8 * vg.Inch
	}
	if o.Format == "" {
		o.Format = SVG
	}
	if o.Color == nil {
		o.Color = shearColor
	}
	return o
}

// Render plots fn over [0, opts.Length] and returns the encoded figure
func Render(fn *statics.Function, opts Options) ([]byte, error) {
	name := opts.Title
	if name == "" && fn != nil {
		name = fn.Name
	}
	if fn.Empty() {
		return nil, &RenderError{Diagram: name, Err: ErrEmptyFunction}
	}
	if !(opts.Length > 0) || math.IsInf(opts.Length, 0) {
		return nil, &RenderError{Diagram: name, Err: fmt.Errorf("length must be positive, got %g", opts.Length)}
	}
	opts = opts.withDefaults()

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Add(plotter.NewGrid())

	samples := fn.Sample(opts.Samples)
	curve := make(plotter.XYs, len(samples))
	for i, s := range samples {
		curve[i] = plotter.XY{X: s.X, Y: s.Y}
	}

	// Closed outline between the curve and the axis
	outline := make(plotter.XYs, 0, len(curve)+2)
	outline = append(outline, plotter.XY{X: curve[0].X, Y: 0})
	outline = append(outline, curve...)
	outline = append(outline, plotter.XY{X: curve[len(curve)-1].X, Y: 0})
	area, err := plotter.NewPolygon(outline)
	if err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}
	area.Color = withAlpha(opts.Color, 60)
	area.LineStyle.Width = 0
	p.Add(area)

	line, err := plotter.NewLine(curve)
	if err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = opts.Color
	p.Add(line)

	zero, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: opts.Length, Y: 0}})
	if err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}
	zero.LineStyle.Width = vg.Points(1)
	zero.LineStyle.Color = color.Gray{Y: 90}
	zero.LineStyle.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	p.Add(zero)

	maxE, minE := fn.Extrema()
	if err := annotateExtrema(p, maxE, minE, opts); err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}

	lo, hi := math.Min(minE.Value, 0), math.Max(maxE.Value, 0)
	pad := 0.15 * (hi - lo)
	if pad == 0 {
		pad = 1
	}
	p.X.Min, p.X.Max = 0, opts.Length
	p.Y.Min, p.Y.Max = lo-pad, hi+pad

	return encode(p, name, opts)
}

// annotateExtrema marks the largest and smallest values with their positions
func annotateExtrema(p *plot.Plot, maxE, minE statics.Extremum, opts Options) error {
	marks := []statics.Extremum{maxE}
	if minE != maxE {
		marks = append(marks, minE)
	}

	var pts plotter.XYs
	var text []string
	for i, e := range marks {
		if math.Abs(e.Value) < 1e-9 {
			continue
		}
		tag := "max"
		if i == 1 {
			tag = "min"
		}
		pts = append(pts, plotter.XY{X: e.Position, Y: e.Value})
		text = append(text, fmt.Sprintf("%s %.2f %s @ %.2f %s", tag, e.Value, opts.ValueUnit, e.Position, opts.LengthUnit))
	}
	if len(pts) == 0 {
		return nil
	}

	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return err
	}
	sc.GlyphStyle.Shape = draw.CircleGlyph{}
	sc.GlyphStyle.Radius = vg.Points(3)
	sc.GlyphStyle.Color = opts.Color
	p.Add(sc)

	labels, err := plotter.NewLabels(plotter.XYLabels{XYs: pts, Labels: text})
	if err != nil {
		return err
	}
	labels.Offset = vg.Point{X: vg.Points(4), Y: vg.Points(4)}
	p.Add(labels)
	return nil
}

// RenderSchematic draws the beam with its supports and loads
func RenderSchematic(b *beam.Beam, opts Options) ([]byte, error) {
	const name = "beam schematic"
	if b == nil {
		return nil, &RenderError{Diagram: name, Err: errors.New("no beam")}
	}
	opts = opts.withDefaults()
	if opts.Title == "" {
		opts.Title = "Beam Configuration"
	}
	L := b.Length()
	tick := 0.012 * L

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.HideY()

	add := func(pl plot.Plotter, err error) error {
		if err != nil {
			return &RenderError{Diagram: name, Err: err}
		}
		p.Add(pl)
		return nil
	}
	var text plotter.XYLabels

	// Distributed loads sit in a band above the beam
	for _, l := range b.Loads() {
		if l.Type != beam.UniformLoad {
			continue
		}
		band, err := plotter.NewPolygon(plotter.XYs{
			{X: l.Position, Y: 0.08}, {X: l.End, Y: 0.08}, {X: l.End, Y: 0.3}, {X: l.Position, Y: 0.3},
		})
		if err == nil {
			band.Color = withAlpha(loadColor, 70)
			band.LineStyle.Color = loadColor
		}
		if err := add(band, err); err != nil {
			return nil, err
		}
		text.XYs = append(text.XYs, plotter.XY{X: l.Position, Y: 0.34})
		text.Labels = append(text.Labels, fmt.Sprintf("w = %g %s/%s", l.Magnitude, opts.ValueUnit, opts.LengthUnit))
	}

	beamLine, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: L, Y: 0}})
	if err == nil {
		beamLine.LineStyle.Width = vg.Points(4)
		beamLine.LineStyle.Color = beamColor
	}
	if err := add(beamLine, err); err != nil {
		return nil, err
	}

	for _, l := range b.Loads() {
		switch l.Type {
		case beam.PointLoad:
			// Shaft from above, head at the beam; uplift points the other way
			tip, tail, head := 0.02, 0.6, 0.12
			if l.Magnitude < 0 {
				tip, tail, head = 0.58, 0.04, 0.48
			}
			shaft, err := plotter.NewLine(plotter.XYs{{X: l.Position, Y: tail}, {X: l.Position, Y: tip}})
			if err == nil {
				shaft.LineStyle.Width = vg.Points(1.5)
				shaft.LineStyle.Color = loadColor
			}
			if err := add(shaft, err); err != nil {
				return nil, err
			}
			arrow, err := plotter.NewLine(plotter.XYs{
				{X: l.Position - tick, Y: head}, {X: l.Position, Y: tip}, {X: l.Position + tick, Y: head},
			})
			if err == nil {
				arrow.LineStyle.Width = vg.Points(1.5)
				arrow.LineStyle.Color = loadColor
			}
			if err := add(arrow, err); err != nil {
				return nil, err
			}
			text.XYs = append(text.XYs, plotter.XY{X: l.Position + tick, Y: 0.64})
			text.Labels = append(text.Labels, fmt.Sprintf("P = %g %s", math.Abs(l.Magnitude), opts.ValueUnit))

		case beam.MomentLoad:
			ring, err := plotter.NewScatter(plotter.XYs{{X: l.Position, Y: 0}})
			if err == nil {
				ring.GlyphStyle.Shape = draw.RingGlyph{}
				ring.GlyphStyle.Radius = vg.Points(9)
				ring.GlyphStyle.Color = loadColor
			}
			if err := add(ring, err); err != nil {
				return nil, err
			}
			sense := "cw"
			if l.Magnitude < 0 {
				sense = "ccw"
			}
			text.XYs = append(text.XYs, plotter.XY{X: l.Position + tick, Y: 0.16})
			text.Labels = append(text.Labels, fmt.Sprintf("M = %g %s·%s (%s)", math.Abs(l.Magnitude), opts.ValueUnit, opts.LengthUnit, sense))
		}
	}

	for _, s := range b.Supports() {
		sc, err := plotter.NewScatter(plotter.XYs{{X: s.Position, Y: -0.07}})
		if err == nil {
			sc.GlyphStyle.Radius = vg.Points(6)
			sc.GlyphStyle.Color = color.Black
			switch s.Type {
			case beam.Pin:
				sc.GlyphStyle.Shape = draw.TriangleGlyph{}
			case beam.Roller:
				sc.GlyphStyle.Shape = draw.RingGlyph{}
			case beam.Fixed:
				sc.GlyphStyle.Shape = draw.BoxGlyph{}
			}
		}
		if err := add(sc, err); err != nil {
			return nil, err
		}
		label := s.Label
		if label == "" {
			label = string(s.Type)
		}
		text.XYs = append(text.XYs, plotter.XY{X: s.Position, Y: -0.26})
		text.Labels = append(text.Labels, fmt.Sprintf("%s (%g)", label, s.Position))
	}

	if len(text.XYs) > 0 {
		labels, err := plotter.NewLabels(text)
		if err := add(labels, err); err != nil {
			return nil, err
		}
	}

	p.X.Min, p.X.Max = -0.05*L, 1.1*L
	p.Y.Min, p.Y.Max = -0.4, 0.8
	return encode(p, name, opts)
}

func encode(p *plot.Plot, name string, opts Options) ([]byte, error) {
	wt, err := p.WriterTo(opts.Width, opts.Height, string(opts.Format))
	if err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, &RenderError{Diagram: name, Err: err}
	}
	return buf.Bytes(), nil
}

// WriteFile saves an encoded figure, creating the directory if needed
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

func withAlpha(c color.Color, a uint8) color.Color {
	r, g, b, _ := c.RGBA()
	// c is opaque, so its components are already non-premultiplied
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: a}
}
