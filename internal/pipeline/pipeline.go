// Package pipeline runs a report from workbook to PDF: read, solve, render
// and assemble.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gonum.org/v1/plot/vg"

	"github.com/alexiusacademia/gobeam/internal/config"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/input"
	"github.com/alexiusacademia/gobeam/internal/nscp"
	"github.com/alexiusacademia/gobeam/internal/report"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

// Options selects the files and settings of a run
type Options struct {
	Input      string
	Output     string // PDF path; Run only
	DiagramDir string // also write sfd, bmd and beam figures here when set
	Config     *config.Config
	Logger     *log.Logger
}

// Result is what a run produced
type Result struct {
	Source      *input.Source
	Analysis    *statics.Analysis // nil for tabulated input
	Combination *nscp.LoadCombination
	Envelope    []statics.CombinationResult
	Shear       *statics.Function
	Moment      *statics.Function
	Files       []string // written files, report first
}

// Length returns the span of the analysed beam or table
func (r *Result) Length() float64 {
	if r.Source.Beam != nil {
		return r.Source.Beam.Length()
	}
	return r.Source.Table.Length
}

// progress logs a stage with its elapsed time
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

func (p *progress) done(msg string, keyvals ...interface{}) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Millisecond))
	p.logger.Info(msg, keyvals...)
}

func (o *Options) defaults() {
	if o.Logger == nil {
		o.Logger = log.Default()
	}
	if o.Config == nil {
		cfg := config.Default()
		cfg.Report.ReportID = config.NewReportID(time.Now())
		o.Config = &cfg
	}
}

// Analyze reads the workbook and solves the beam without rendering anything
func Analyze(ctx context.Context, opts Options) (*Result, error) {
	opts.defaults()
	logger := opts.Logger
	cfg := opts.Config

	prog := newProgress(logger)
	src, err := input.LoadFile(opts.Input, input.Options{Sheet: cfg.Input.Sheet})
	if err != nil {
		return nil, err
	}
	prog.done("Read workbook", "file", opts.Input, "sheet", src.Sheet, "mode", src.Mode, "rows", src.Rows)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := &Result{Source: src}
	if src.Mode == input.ModeTable {
		if c := cfg.Analysis.Combination; c != "" && !strings.EqualFold(c, "none") {
			logger.Warn("Load combination ignored for tabulated input", "combination", c)
		}
		res.Shear, res.Moment = src.Table.Shear, src.Table.Moment
		return res, nil
	}

	prog = newProgress(logger)
	if strings.EqualFold(cfg.Analysis.Combination, config.Governing) {
		gov, all, err := statics.Envelope(src.Beam, nscp.LoadCombinations)
		if err != nil {
			return nil, err
		}
		for _, r := range all {
			logger.Debug("Combination", "id", r.Combination.ID, "peak_moment", fmt.Sprintf("%.3f", r.PeakMoment()))
		}
		res.Analysis = gov.Analysis
		res.Combination = &gov.Combination
		res.Envelope = all
	} else {
		combo, err := nscp.Lookup(cfg.Analysis.Combination)
		if err != nil {
			return nil, err
		}
		a, err := statics.Solve(combo.Apply(src.Beam))
		if err != nil {
			return nil, err
		}
		res.Analysis = a
		if combo.ID != nscp.Unfactored.ID {
			res.Combination = &combo
		}
	}
	res.Shear, res.Moment = res.Analysis.Shear, res.Analysis.Moment

	for _, line := range report.ReactionsSummary(res.Analysis, cfg.Units) {
		logger.Debug("Reaction " + line)
	}
	peak := res.Moment.Peak()
	args := []interface{}{"peak_moment", fmt.Sprintf("%.3f", peak.Value), "at", fmt.Sprintf("%.3f", peak.Position)}
	if res.Combination != nil {
		args = append(args, "combination", res.Combination.ID)
	}
	prog.done("Solved beam", args...)
	return res, nil
}

// Run produces the PDF report, and the loose diagram files when asked
func Run(ctx context.Context, opts Options) (*Result, error) {
	opts.defaults()
	if opts.Output == "" {
		return nil, fmt.Errorf("no output path given")
	}
	logger := opts.Logger
	cfg := opts.Config

	res, err := Analyze(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog := newProgress(logger)
	embed := diagram.PDF
	if cfg.Diagram.Embed == "raster" {
		embed = diagram.PNG
	}
	figs, err := renderFigures(res, cfg, embed)
	if err != nil {
		return nil, err
	}
	prog.done("Rendered diagrams", "embed", cfg.Diagram.Embed)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prog = newProgress(logger)
	doc := document(res, cfg, opts.Input, figs)
	var buf bytes.Buffer
	if err := report.Assemble(&buf, doc); err != nil {
		return nil, err
	}
	if err := diagram.WriteFile(opts.Output, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("write report: %w", err)
	}
	res.Files = append(res.Files, opts.Output)
	prog.done("Wrote report", "file", opts.Output, "bytes", buf.Len())

	if opts.DiagramDir != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files, err := writeDiagrams(res, cfg, opts.DiagramDir, embed, figs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			logger.Info("Wrote diagram", "file", f)
		}
		res.Files = append(res.Files, files...)
	}
	return res, nil
}

// figures holds encoded diagrams keyed by file stem
type figures map[string][]byte

const (
	stemShear     = "sfd"
	stemMoment    = "bmd"
	stemSchematic = "beam"
)

func renderFigures(res *Result, cfg *config.Config, format diagram.Format) (figures, error) {
	L := res.Length()
	size := func(o diagram.Options) diagram.Options {
		o.Format = format
		o.Samples = cfg.Analysis.Samples
		o.Width = vg.Length(cfg.Diagram.Width) * vg.Inch
		o.Height = vg.Length(cfg.Diagram.Height) * vg.Inch
		return o
	}

	out := figures{}
	var err error
	if out[stemShear], err = diagram.Render(res.Shear, size(diagram.ShearOptions(L, cfg.Units.Length, cfg.Units.Force))); err != nil {
		return nil, err
	}
	if out[stemMoment], err = diagram.Render(res.Moment, size(diagram.MomentOptions(L, cfg.Units.Length, cfg.Units.Force))); err != nil {
		return nil, err
	}
	if res.Source.Beam != nil {
		opts := size(diagram.Options{
			XLabel:     fmt.Sprintf("Position (%s)", cfg.Units.Length),
			LengthUnit: cfg.Units.Length,
			ValueUnit:  cfg.Units.Force,
		})
		if out[stemSchematic], err = diagram.RenderSchematic(res.Source.Beam, opts); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func document(res *Result, cfg *config.Config, path string, figs figures) report.Document {
	aspect := cfg.Diagram.Height / cfg.Diagram.Width
	format := diagram.PDF
	if cfg.Diagram.Embed == "raster" {
		format = diagram.PNG
	}
	figure := func(stem, caption string) *report.Figure {
		data, ok := figs[stem]
		if !ok {
			return nil
		}
		return &report.Figure{Caption: caption, Format: format, Data: data, Aspect: aspect}
	}

	doc := report.Document{
		Meta: report.Meta{
			Title:       cfg.Report.Title,
			Subtitle:    cfg.Report.Subtitle,
			Institute:   cfg.Report.Institute,
			Author:      cfg.Report.Author,
			ReportID:    cfg.Report.ReportID,
			Description: cfg.Report.Description,
			Paper:       cfg.Report.Paper,
			Date:        time.Now(),
		},
		Units:        cfg.Units,
		Source:       fmt.Sprintf("%s (sheet %q, %d data rows)", filepath.Base(path), res.Source.Sheet, res.Source.Rows),
		Beam:         res.Source.Beam,
		Analysis:     res.Analysis,
		Combination:  res.Combination,
		Envelope:     res.Envelope,
		Shear:        res.Shear,
		Moment:       res.Moment,
		Schematic:    figure(stemSchematic, "Beam configuration"),
		ShearFigure:  figure(stemShear, "Shear force diagram"),
		MomentFigure: figure(stemMoment, "Bending moment diagram"),
	}

	if t := res.Source.Table; t != nil {
		for _, r := range t.Rows {
			doc.Stations = append(doc.Stations, report.Station{Position: r.Position, Shear: r.Shear, Moment: r.Moment})
		}
	} else {
		doc.Stations = report.EvenStations(res.Shear, res.Moment, res.Length(), cfg.Analysis.Stations)
	}
	return doc
}

// writeDiagrams saves the figures in the configured format, reusing the
// embedded encodings when the formats match
func writeDiagrams(res *Result, cfg *config.Config, dir string, embedded diagram.Format, figs figures) ([]string, error) {
	format, err := diagram.ParseFormat(cfg.Diagram.Format)
	if err != nil {
		return nil, err
	}
	if format != embedded {
		if figs, err = renderFigures(res, cfg, format); err != nil {
			return nil, err
		}
	}

	var files []string
	for _, stem := range []string{stemSchematic, stemShear, stemMoment} {
		data, ok := figs[stem]
		if !ok {
			continue
		}
		path := filepath.Join(dir, stem+format.Ext())
		if err := diagram.WriteFile(path, data); err != nil {
			return nil, fmt.Errorf("write diagram: %w", err)
		}
		files = append(files, path)
	}
	return files, nil
}
