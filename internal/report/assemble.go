package report

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/phpdave11/gofpdf/contrib/gofpdi"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/diagram"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

const (
	fontFamily = "Helvetica"
	lineH      = 6.0
	rowH       = 6.5
	balanceTol = 1e-6
)

var (
	headerFill = [3]int{220, 228, 240}
	ruleColor  = [3]int{120, 120, 120}
)

// builder carries the gofpdf document through the sections
type builder struct {
	pdf     *gofpdf.Fpdf
	doc     Document
	tr      func(string) string
	imp     *gofpdi.Importer
	figures int
	// The importer keys sources by stream address, so streams stay
	// reachable until the document is written
	streams []*io.ReadSeeker

	// toc is printed on the contents page; outline records the headings
	// as they are laid out
	toc     []tocEntry
	outline []tocEntry
}

// tocEntry is one heading on the contents page
type tocEntry struct {
	Level int
	Title string
	Page  int
}

// maxPasses bounds the layout passes needed for contents page numbers to settle
const maxPasses = 3

// Assemble writes the report for doc to w as a single PDF
func Assemble(w io.Writer, doc Document) (err error) {
	if doc.Shear.Empty() || doc.Moment.Empty() {
		return &AssemblyError{Stage: "layout", Err: errors.New("shear and moment diagrams are required")}
	}

	// The page importer panics on unreadable figures
	defer func() {
		if r := recover(); r != nil {
			err = &AssemblyError{Stage: "embed", Err: fmt.Errorf("%v", r)}
		}
	}()

	b, err := layout(doc)
	if err != nil {
		return err
	}
	if err := b.pdf.Output(w); err != nil {
		return &AssemblyError{Stage: "output", Err: err}
	}
	return nil
}

// layout builds the document until the contents page lists the pages the
// headings actually landed on
func layout(doc Document) (*builder, error) {
	if doc.Meta.Paper == "" {
		doc.Meta.Paper = "A4"
	}
	if doc.Meta.Date.IsZero() {
		doc.Meta.Date = time.Now()
	}

	var toc []tocEntry
	var b *builder
	for pass := 0; pass < maxPasses; pass++ {
		pdf := gofpdf.New("P", "mm", doc.Meta.Paper, "")
		b = &builder{
			pdf: pdf,
			doc: doc,
			tr:  pdf.UnicodeTranslatorFromDescriptor(""),
			imp: gofpdi.NewImporter(),
			toc: toc,
		}
		b.setup()
		b.titlePage()
		b.contentsPage()
		b.introduction()
		b.inputData()
		b.analysis()
		b.tabulated()

		if pdf.Err() {
			return nil, &AssemblyError{Stage: "layout", Err: pdf.Error()}
		}
		if pass > 0 && slices.Equal(b.outline, toc) {
			break
		}
		toc = b.outline
	}
	return b, nil
}

func (b *builder) setup() {
	m := b.doc.Meta
	b.pdf.SetTitle(m.Title, true)
	b.pdf.SetAuthor(m.Author, true)
	b.pdf.SetSubject(m.Subtitle, true)
	b.pdf.SetCreator("gobeam", true)
	b.pdf.SetCreationDate(m.Date)
	b.pdf.SetMargins(20, 20, 20)
	b.pdf.SetAutoPageBreak(true, 20)
	b.pdf.AliasNbPages("")

	b.pdf.SetHeaderFunc(func() {
		if b.pdf.PageNo() == 1 {
			return
		}
		b.pdf.SetFont(fontFamily, "I", 8)
		b.pdf.SetTextColor(90, 90, 90)
		l, _, r, _ := b.pdf.GetMargins()
		pw, _ := b.pdf.GetPageSize()
		half := (pw - l - r) / 2
		b.pdf.CellFormat(half, 5, b.tr(m.Title), "", 0, "L", false, 0, "")
		b.pdf.CellFormat(half, 5, b.tr(byline(m)), "", 1, "R", false, 0, "")
		b.pdf.SetDrawColor(ruleColor[0], ruleColor[1], ruleColor[2])
		b.pdf.Line(l, b.pdf.GetY()+1, pw-r, b.pdf.GetY()+1)
		b.pdf.Ln(6)
		b.pdf.SetTextColor(0, 0, 0)
	})
	b.pdf.SetFooterFunc(func() {
		b.pdf.SetY(-15)
		b.pdf.SetFont(fontFamily, "I", 8)
		b.pdf.SetTextColor(90, 90, 90)
		b.pdf.CellFormat(0, 10, fmt.Sprintf("Page %d of {nb}", b.pdf.PageNo()), "", 0, "C", false, 0, "")
		b.pdf.SetTextColor(0, 0, 0)
	})
}

func (b *builder) titlePage() {
	m := b.doc.Meta
	b.pdf.AddPage()
	_, ph := b.pdf.GetPageSize()

	b.pdf.SetY(ph * 0.28)
	b.pdf.SetFont(fontFamily, "B", 22)
	b.pdf.MultiCell(0, 10, b.tr(m.Title), "", "C", false)
	if m.Subtitle != "" {
		b.pdf.Ln(2)
		b.pdf.SetFont(fontFamily, "", 14)
		b.pdf.MultiCell(0, 8, b.tr(m.Subtitle), "", "C", false)
	}

	b.pdf.Ln(20)
	b.pdf.SetFont(fontFamily, "", 11)
	for _, line := range []string{m.Institute, "Prepared by: " + m.Author, "Report ID: " + m.ReportID, "Date: " + m.Date.Format("January 2, 2006")} {
		if strings.TrimSpace(line) == "" {
			continue
		}
		b.pdf.CellFormat(0, 7, b.tr(line), "", 1, "C", false, 0, "")
	}
}

// contentsPage lists the section and subsection headings with their pages
func (b *builder) contentsPage() {
	b.pdf.AddPage()
	b.pdf.Bookmark("Contents", 0, -1)
	b.pdf.SetFont(fontFamily, "B", 16)
	b.pdf.CellFormat(0, 10, "Contents", "", 1, "L", false, 0, "")
	b.pdf.Ln(4)

	l, _, r, _ := b.pdf.GetMargins()
	pw, _ := b.pdf.GetPageSize()
	w := pw - l - r
	for _, e := range b.toc {
		indent := 8 * float64(e.Level)
		style := ""
		if e.Level == 0 {
			style = "B"
			b.pdf.Ln(2)
		}
		link := b.pdf.AddLink()
		b.pdf.SetLink(link, 0, e.Page)
		b.pdf.SetFont(fontFamily, style, 11)
		b.pdf.SetX(l + indent)
		b.pdf.CellFormat(w-indent-15, 7, b.tr(e.Title), "", 0, "L", false, link, "")
		b.pdf.CellFormat(15, 7, strconv.Itoa(e.Page), "", 1, "R", false, link, "")
	}
}

func (b *builder) section(number int, title string) {
	b.pdf.AddPage()
	heading := fmt.Sprintf("%d  %s", number, title)
	b.outline = append(b.outline, tocEntry{Level: 0, Title: heading, Page: b.pdf.PageNo()})
	b.pdf.Bookmark(b.tr(heading), 0, -1)
	b.pdf.SetFont(fontFamily, "B", 16)
	b.pdf.CellFormat(0, 10, b.tr(heading), "", 1, "L", false, 0, "")
	b.pdf.Ln(2)
}

func (b *builder) subsection(number string, title string) {
	heading := number + "  " + title
	b.ensure(20)
	b.pdf.Ln(3)
	b.outline = append(b.outline, tocEntry{Level: 1, Title: heading, Page: b.pdf.PageNo()})
	b.pdf.Bookmark(b.tr(heading), 1, -1)
	b.pdf.SetFont(fontFamily, "B", 12)
	b.pdf.CellFormat(0, 8, b.tr(heading), "", 1, "L", false, 0, "")
}

func (b *builder) paragraph(text string) {
	b.pdf.SetFont(fontFamily, "", 10.5)
	b.pdf.MultiCell(0, lineH, b.tr(text), "", "J", false)
	b.pdf.Ln(2)
}

func (b *builder) introduction() {
	d := b.doc
	b.section(1, "Introduction")

	text := d.Meta.Description
	if text == "" {
		text = b.describe()
	}
	b.paragraph(text)

	if d.Schematic != nil {
		b.figure(d.Schematic)
	}
	if d.Source != "" {
		b.paragraph("Data source: " + d.Source)
	}
}

// describe summarizes the problem when no description is configured
func (b *builder) describe() string {
	d := b.doc
	u := d.Units
	if d.Beam == nil {
		x0, x1 := d.Shear.Domain()
		return fmt.Sprintf("This report presents shear force and bending moment diagrams reconstructed from %d tabulated stations between x = %.2f %s and x = %.2f %s.",
			len(d.Stations), x0, u.Length, x1, u.Length)
	}
	var names []string
	for _, s := range d.Beam.Supports() {
		names = append(names, fmt.Sprintf("a %s support at %.2f %s", s.Type, s.Position, u.Length))
	}
	return fmt.Sprintf("This report presents the static analysis of a beam of span %.2f %s with %s, carrying %d applied load(s). Support reactions are obtained from the equilibrium equations and the shear force and bending moment diagrams are derived by integrating the load distribution along the span.",
		d.Beam.Length(), u.Length, joinWords(names), len(d.Beam.Loads()))
}

func (b *builder) inputData() {
	d := b.doc
	u := d.Units
	b.section(2, "Input Data")

	if d.Beam == nil {
		b.paragraph(fmt.Sprintf("The input workbook provides precomputed shear force and bending moment values at %d stations. No support or load definitions are available, so reactions are not computed.", len(d.Stations)))
		return
	}

	b.subsection("2.1", "Beam")
	b.table([]string{"Property", "Value"}, []float64{60, 60}, [][]string{
		{"Span", fmt.Sprintf("%.3f %s", d.Beam.Length(), u.Length)},
		{"Supports", fmt.Sprintf("%d", len(d.Beam.Supports()))},
		{"Applied loads", fmt.Sprintf("%d", len(d.Beam.Loads()))},
		{"Total applied load", fmt.Sprintf("%.3f %s", d.Beam.TotalLoad(), u.Force)},
	})

	b.subsection("2.2", "Supports")
	var rows [][]string
	for i, s := range d.Beam.Supports() {
		rows = append(rows, []string{fmt.Sprintf("%d", i+1), s.Label, string(s.Type), fmt.Sprintf("%.3f", s.Position)})
	}
	b.table([]string{"#", "Label", "Type", "Position (" + u.Length + ")"}, []float64{12, 50, 40, 40}, rows)

	b.subsection("2.3", "Loads")
	rows = nil
	for i, l := range d.Beam.Loads() {
		rows = append(rows, loadRow(i+1, l))
	}
	b.table([]string{"#", "Label", "Type", "Case", "Start", "End", "Magnitude"}, []float64{10, 46, 22, 14, 22, 22, 34}, rows)
	b.paragraph(fmt.Sprintf("Positions in %s. Point loads in %s, distributed loads in %s/%s and couples in %s. Forces act downward and couples clockwise when positive.",
		u.Length, u.Force, u.Force, u.Length, u.MomentUnit()))

	if c := d.Combination; c != nil {
		b.subsection("2.4", "Load Combination")
		b.paragraph(fmt.Sprintf("Combination %s: %s.", c.ID, c.Description))
		b.table([]string{"Case", "Factor"}, []float64{40, 30}, [][]string{
			{"Dead (D)", fmtFactor(c.Dead)},
			{"Live (L)", fmtFactor(c.Live)},
			{"Roof live (Lr)", fmtFactor(c.Roof)},
			{"Wind (W)", fmtFactor(c.Wind)},
			{"Earthquake (E)", fmtFactor(c.Earthquake)},
			{"Rain (R)", fmtFactor(c.Rain)},
		})
	}
}

func loadRow(n int, l beam.Load) []string {
	end := ""
	if l.Type == beam.UniformLoad {
		end = fmt.Sprintf("%.3f", l.End)
	}
	return []string{
		fmt.Sprintf("%d", n), l.Label, string(l.Type), string(l.Case),
		fmt.Sprintf("%.3f", l.Position), end, fmt.Sprintf("%.3f", l.Magnitude),
	}
}

func (b *builder) analysis() {
	d := b.doc
	u := d.Units
	b.section(3, "Analysis")

	n := 0
	next := func() string { n++; return fmt.Sprintf("3.%d", n) }

	if a := d.Analysis; a != nil {
		b.subsection(next(), "Support Reactions")
		var rows [][]string
		for _, r := range a.Reactions() {
			moment := "-"
			if r.Support.Type == beam.Fixed {
				moment = fmt.Sprintf("%.3f", r.Moment)
			}
			rows = append(rows, []string{r.Support.Label, string(r.Support.Type), fmt.Sprintf("%.3f", r.Support.Position), fmt.Sprintf("%.3f", r.Force), moment})
		}
		b.table([]string{"Support", "Type", "Position (" + u.Length + ")", "Force (" + u.Force + ")", "Moment (" + u.MomentUnit() + ")"},
			[]float64{30, 26, 36, 36, 40}, rows)
		b.paragraph("Reaction forces are positive upward and reaction moments positive clockwise.")
	}

	b.subsection(next(), "Shear Force Diagram")
	if d.ShearFigure != nil {
		b.figure(d.ShearFigure)
	}
	b.subsection(next(), "Bending Moment Diagram")
	if d.MomentFigure != nil {
		b.figure(d.MomentFigure)
	}

	b.subsection(next(), "Extreme Values")
	maxV, minV := d.Shear.Extrema()
	maxM, minM := d.Moment.Extrema()
	b.table([]string{"Quantity", "Value", "Position (" + u.Length + ")"}, []float64{60, 45, 45}, [][]string{
		{"Maximum shear (" + u.Force + ")", fmt.Sprintf("%.3f", maxV.Value), fmt.Sprintf("%.3f", maxV.Position)},
		{"Minimum shear (" + u.Force + ")", fmt.Sprintf("%.3f", minV.Value), fmt.Sprintf("%.3f", minV.Position)},
		{"Maximum moment (" + u.MomentUnit() + ")", fmt.Sprintf("%.3f", maxM.Value), fmt.Sprintf("%.3f", maxM.Position)},
		{"Minimum moment (" + u.MomentUnit() + ")", fmt.Sprintf("%.3f", minM.Value), fmt.Sprintf("%.3f", minM.Position)},
	})

	if a := d.Analysis; a != nil {
		b.subsection(next(), "Equilibrium Check")
		rf, rm := a.Residuals()
		status := "Satisfied"
		if !a.Balanced(balanceTol * math.Max(1, math.Abs(a.Beam.TotalLoad()))) {
			status = "Not satisfied"
		}
		b.table([]string{"Check", "Value"}, []float64{70, 50}, [][]string{
			{"Sum of applied loads (" + u.Force + ")", fmt.Sprintf("%.4f", a.Beam.TotalLoad())},
			{"Sum of reactions (" + u.Force + ")", fmt.Sprintf("%.4f", a.TotalReaction())},
			{"Residual force (" + u.Force + ")", fmt.Sprintf("%.2e", rf)},
			{"Residual moment (" + u.MomentUnit() + ")", fmt.Sprintf("%.2e", rm)},
			{"Equilibrium", status},
		})
	}

	if len(d.Envelope) > 0 {
		b.subsection(next(), "Load Combination Envelope")
		var rows [][]string
		for _, r := range d.Envelope {
			peak := r.Analysis.Moment.Peak()
			mark := ""
			if d.Combination != nil && r.Combination.ID == d.Combination.ID {
				mark = "governs"
			}
			rows = append(rows, []string{r.Combination.ID, r.Combination.Description, fmt.Sprintf("%.3f", peak.Value), fmt.Sprintf("%.3f", peak.Position), mark})
		}
		b.table([]string{"ID", "Combination", "Peak M (" + u.MomentUnit() + ")", "at x (" + u.Length + ")", ""},
			[]float64{12, 66, 34, 28, 22}, rows)
	}
}

func (b *builder) tabulated() {
	d := b.doc
	u := d.Units
	b.section(4, "Tabulated Results")
	b.paragraph("Shear force and bending moment at the stations below. At a concentrated force the shear just to the right of the station is listed.")

	rows := make([][]string, len(d.Stations))
	for i, s := range d.Stations {
		rows[i] = []string{fmt.Sprintf("%.3f", s.Position), fmt.Sprintf("%.3f", s.Shear), fmt.Sprintf("%.3f", s.Moment)}
	}
	b.table([]string{"Position (" + u.Length + ")", "Shear (" + u.Force + ")", "Moment (" + u.MomentUnit() + ")"}, []float64{45, 45, 45}, rows)
}

// ensure starts a new page unless h millimetres remain above the bottom margin
func (b *builder) ensure(h float64) {
	_, ph := b.pdf.GetPageSize()
	_, _, _, bottom := b.pdf.GetMargins()
	if b.pdf.GetY()+h > ph-bottom {
		b.pdf.AddPage()
	}
}

// table draws a bordered table, repeating the header after page breaks
func (b *builder) table(header []string, widths []float64, rows [][]string) {
	drawHeader := func() {
		b.pdf.SetFont(fontFamily, "B", 9.5)
		b.pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
		for i, h := range header {
			b.pdf.CellFormat(widths[i], rowH, b.tr(h), "1", 0, "C", true, 0, "")
		}
		b.pdf.Ln(-1)
		b.pdf.SetFont(fontFamily, "", 9.5)
	}

	b.ensure(2 * rowH)
	drawHeader()
	for _, row := range rows {
		_, ph := b.pdf.GetPageSize()
		_, _, _, bottom := b.pdf.GetMargins()
		if b.pdf.GetY()+rowH > ph-bottom {
			b.pdf.AddPage()
			drawHeader()
		}
		for i := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			align := "R"
			if i < len(row) && !numeric(cell) {
				align = "L"
			}
			b.pdf.CellFormat(widths[i], rowH, b.tr(cell), "1", 0, align, false, 0, "")
		}
		b.pdf.Ln(-1)
	}
	b.pdf.Ln(3)
}

// figure places f at full text width with its caption underneath
func (b *builder) figure(f *Figure) {
	b.figures++
	l, _, r, _ := b.pdf.GetMargins()
	pw, _ := b.pdf.GetPageSize()
	w := pw - l - r
	aspect := f.Aspect
	if aspect <= 0 {
		aspect = 0.43
	}
	h := w * aspect

	b.ensure(h + 12)
	x, y := l, b.pdf.GetY()+2

	switch f.Format {
	case diagram.PDF:
		rs := io.ReadSeeker(bytes.NewReader(f.Data))
		b.streams = append(b.streams, &rs)
		tpl := b.imp.ImportPageFromStream(b.pdf, &rs, 1, "/MediaBox")
		b.imp.UseImportedTemplate(b.pdf, tpl, x, y, w, h)
	case diagram.PNG:
		name := fmt.Sprintf("figure-%d", b.figures)
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		b.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(f.Data))
		b.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	default:
		b.pdf.SetError(fmt.Errorf("figure %q: cannot embed %s", f.Caption, f.Format))
		return
	}

	b.pdf.SetY(y + h + 1)
	b.pdf.SetFont(fontFamily, "I", 9)
	b.pdf.CellFormat(0, 5, b.tr(fmt.Sprintf("Figure %d. %s", b.figures, f.Caption)), "", 1, "C", false, 0, "")
	b.pdf.Ln(3)
}

// ReactionsSummary formats reactions as "A: 25.000 kN" pairs for logs and
// the console
func ReactionsSummary(a *statics.Analysis, u Units) []string {
	var out []string
	for _, r := range a.Reactions() {
		name := r.Support.Label
		if name == "" {
			name = fmt.Sprintf("x=%g", r.Support.Position)
		}
		line := fmt.Sprintf("%s: %.3f %s", name, r.Force, u.Force)
		if r.Support.Type == beam.Fixed {
			line += fmt.Sprintf(", %.3f %s", r.Moment, u.MomentUnit())
		}
		out = append(out, line)
	}
	return out
}

// byline is the right-hand running header text
func byline(m Meta) string {
	var parts []string
	for _, p := range []string{m.Author, m.ReportID} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "  |  ")
}

func fmtFactor(f float64) string {
	if f == 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", f)
}

func numeric(s string) bool {
	if s == "" || s == "-" {
		return true
	}
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func joinWords(items []string) string {
	switch len(items) {
	case 0:
		return "no supports"
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
