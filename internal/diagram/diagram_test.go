package diagram

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexiusacademia/gobeam/internal/beam"
	"github.com/alexiusacademia/gobeam/internal/statics"
)

func sampleBeam(t *testing.T) *beam.Beam {
	t.Helper()
	b, err := beam.New(10,
		[]beam.Support{{Position: 0, Type: beam.Pin, Label: "A"}, {Position: 10, Type: beam.Roller, Label: "B"}},
		[]beam.Load{
			{Type: beam.UniformLoad, Position: 0, End: 10, Magnitude: 5},
			{Type: beam.PointLoad, Position: 4, Magnitude: 20},
			{Type: beam.MomentLoad, Position: 7, Magnitude: 8},
		})
	require.NoError(t, err)
	return b
}

func sampleAnalysis(t *testing.T) *statics.Analysis {
	t.Helper()
	a, err := statics.Solve(sampleBeam(t))
	require.NoError(t, err)
	return a
}

func TestRender_Formats(t *testing.T) {
	a := sampleAnalysis(t)

	tests := []struct {
		format Format
		prefix []byte
	}{
		{PDF, []byte("%PDF")},
		{PNG, []byte("\x89PNG")},
		{EPS, []byte("%%!PS-Adobe")},
	}
	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			opts := MomentOptions(10, "m", "kN")
			opts.Format = tt.format
			data, err := Render(a.Moment, opts)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(data, tt.prefix), "unexpected header %q", data[:min(8, len(data))])
		})
	}
}

func TestRender_SVGContent(t *testing.T) {
	a := sampleAnalysis(t)

	data, err := Render(a.Shear, ShearOptions(10, "m", "kN"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")
}

func TestRender_Errors(t *testing.T) {
	a := sampleAnalysis(t)

	_, err := Render(statics.NewFunction("empty", nil), ShearOptions(10, "m", "kN"))
	var re *RenderError
	require.True(t, errors.As(err, &re))
	assert.ErrorIs(t, err, ErrEmptyFunction)

	_, err = Render(nil, ShearOptions(10, "m", "kN"))
	assert.ErrorIs(t, err, ErrEmptyFunction)

	_, err = Render(a.Shear, ShearOptions(0, "m", "kN"))
	require.True(t, errors.As(err, &re))
	assert.Equal(t, "Shear Force Diagram", re.Diagram)

	opts := ShearOptions(10, "m", "kN")
	opts.Format = "bmp"
	_, err = Render(a.Shear, opts)
	assert.True(t, errors.As(err, &re))
}

func TestRenderSchematic(t *testing.T) {
	opts := Options{Format: PDF, LengthUnit: "m", ValueUnit: "kN"}
	data, err := RenderSchematic(sampleBeam(t), opts)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))

	_, err = RenderSchematic(nil, opts)
	var re *RenderError
	assert.True(t, errors.As(err, &re))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("pdf")
	require.NoError(t, err)
	assert.Equal(t, ".pdf", f.Ext())

	_, err = ParseFormat("gif")
	assert.Error(t, err)
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "bmd.svg")
	require.NoError(t, WriteFile(path, []byte("<svg/>")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<svg/>", string(got))
}

func TestPreview(t *testing.T) {
	a := sampleAnalysis(t)

	out := Preview(a.Moment, "Bending Moment", 40, 8)
	assert.Contains(t, out, "Bending Moment")
	assert.GreaterOrEqual(t, strings.Count(out, "\n"), 8)

	assert.Empty(t, Preview(nil, "none", 40, 8))
}

func TestDrawBeamSketch(t *testing.T) {
	out := DrawBeamSketch(sampleBeam(t), 11)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5)

	loads := []rune(lines[0])
	assert.Equal(t, '↓', loads[2+4], "point load at x=4 maps to column 4")
	assert.Equal(t, '↻', loads[2+7])
	assert.Equal(t, strings.Repeat("▒", 11), strings.TrimSpace(lines[1]))
	assert.Equal(t, "△         ○", strings.TrimSpace(lines[3]))
	assert.True(t, strings.HasSuffix(lines[4], "10"))
}

func TestDrawSummaryBox(t *testing.T) {
	out := DrawSummaryBox("RESULTS", []string{"Mmax = 62.50 kN·m", "Vmax = 25.00 kN"})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6, "top, title, separator, two rows, bottom")

	width := len([]rune(lines[0]))
	for _, l := range lines {
		assert.Equal(t, width, len([]rune(l)), "row %q", l)
	}
	assert.Contains(t, out, "Mmax = 62.50 kN·m")
}
