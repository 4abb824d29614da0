package diagram

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

// Preview draws fn as an ASCII line chart sampled at width even stations
func Preview(fn *statics.Function, caption string, width, height int) string {
	if fn.Empty() {
		return ""
	}
	if width < 10 {
		width = 60
	}
	if height < 3 {
		height = 10
	}

	x0, x1 := fn.Domain()
	xs := floats.Span(make([]float64, width), x0, x1)
	data := make([]float64, width)
	for i, x := range xs {
		data[i] = fn.At(x)
	}

	return asciigraph.Plot(data,
		asciigraph.Height(height),
		asciigraph.Width(width),
		asciigraph.Precision(2),
		asciigraph.Caption(caption),
	)
}

// DrawBeamSketch draws a one-line-per-layer sketch of the beam:
// point loads and couples, distributed loads, the beam and its supports
//
//	  ↓      ↻
//	▒▒▒▒▒▒▒▒▒▒▒▒▒▒
//	══════════════
//	△            ○
func DrawBeamSketch(b *beam.Beam, width int) string {
	if b == nil {
		return ""
	}
	if width < 10 {
		width = 50
	}
	L := b.Length()
	col := func(x float64) int {
		c := int(math.Round(x / L * float64(width-1)))
		return max(0, min(width-1, c))
	}
	layer := func(fill rune) []rune {
		r := make([]rune, width)
		for i := range r {
			r[i] = fill
		}
		return r
	}

	loads := layer(' ')
	udl := layer(' ')
	line := layer('═')
	supports := layer(' ')

	hasUDL := false
	for _, l := range b.Loads() {
		switch l.Type {
		case beam.PointLoad:
			if l.Magnitude < 0 {
				loads[col(l.Position)] = '↑'
			} else {
				loads[col(l.Position)] = '↓'
			}
		case beam.MomentLoad:
			if l.Magnitude < 0 {
				loads[col(l.Position)] = '↺'
			} else {
				loads[col(l.Position)] = '↻'
			}
		case beam.UniformLoad:
			hasUDL = true
			for c := col(l.Position); c <= col(l.End); c++ {
				udl[c] = '▒'
			}
		}
	}
	for _, s := range b.Supports() {
		switch s.Type {
		case beam.Pin:
			supports[col(s.Position)] = '△'
		case beam.Roller:
			supports[col(s.Position)] = '○'
		case beam.Fixed:
			supports[col(s.Position)] = '▌'
		}
	}

	layers := [][]rune{loads, udl, line, supports}
	if !hasUDL {
		layers = [][]rune{loads, line, supports}
	}

	var sb strings.Builder
	for _, r := range layers {
		sb.WriteString("  ")
		sb.WriteString(strings.TrimRight(string(r), " "))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("  0%*g\n", width-1, L))
	return sb.String()
}

// DrawSummaryBox creates a summary box for results
func DrawSummaryBox(title string, lines []string) string {
	var sb strings.Builder

	maxLen := utf8.RuneCountInString(title)
	for _, line := range lines {
		if n := utf8.RuneCountInString(line); n > maxLen {
			maxLen = n
		}
	}
	maxLen += 4

	border := strings.Repeat("═", maxLen)
	sb.WriteString(fmt.Sprintf("  ╔%s╗\n", border))
	sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, title))
	sb.WriteString(fmt.Sprintf("  ╠%s╣\n", border))
	for _, line := range lines {
		sb.WriteString(fmt.Sprintf("  ║  %-*s  ║\n", maxLen-4, line))
	}
	sb.WriteString(fmt.Sprintf("  ╚%s╝\n", border))

	return sb.String()
}
