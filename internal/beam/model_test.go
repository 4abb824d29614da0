package beam

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	pin := []Support{{Position: 0, Type: Pin}}

	tests := []struct {
		name     string
		length   float64
		supports []Support
		loads    []Load
		field    string
	}{
		{"zero length", 0, pin, nil, "length"},
		{"negative length", -3, pin, nil, "length"},
		{"no supports", 5, nil, nil, "supports"},
		{"support outside", 5, []Support{{Position: 6, Type: Pin}}, nil, "supports"},
		{"unknown support", 5, []Support{{Position: 1, Type: "spring"}}, nil, "supports"},
		{"load outside", 5, pin, []Load{{Type: PointLoad, Position: 7, Magnitude: 1}}, "loads"},
		{"udl reversed", 5, pin, []Load{{Type: UniformLoad, Position: 3, End: 1, Magnitude: 1}}, "loads"},
		{"udl past end", 5, pin, []Load{{Type: UniformLoad, Position: 1, End: 9, Magnitude: 1}}, "loads"},
		{"unknown load", 5, pin, []Load{{Type: "wind", Position: 1, Magnitude: 1}}, "loads"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.length, tt.supports, tt.loads)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNew_SortsAndCopies(t *testing.T) {
	supports := []Support{{Position: 10, Type: Roller}, {Position: 0, Type: Pin}}
	loads := []Load{
		{Type: PointLoad, Position: 7, Magnitude: 2},
		{Type: UniformLoad, Position: 1, End: 4, Magnitude: 3},
	}
	b, err := New(10, supports, loads)
	require.NoError(t, err)

	supports[0].Position = 99
	s := b.Supports()
	assert.Equal(t, 0.0, s[0].Position)
	assert.Equal(t, 10.0, s[1].Position)

	s[0].Position = 42
	assert.Equal(t, 0.0, b.Supports()[0].Position, "accessor must return a copy")

	l := b.Loads()
	assert.Equal(t, UniformLoad, l[0].Type)
	assert.Equal(t, Dead, l[0].Case, "blank case defaults to dead load")
}

func TestBeam_TotalsAndBreakpoints(t *testing.T) {
	b, err := New(10, []Support{{Position: 0, Type: Pin}, {Position: 8, Type: Roller}}, []Load{
		{Type: PointLoad, Position: 5, Magnitude: 12},
		{Type: UniformLoad, Position: 2, End: 6, Magnitude: 2},
		{Type: MomentLoad, Position: 9, Magnitude: 4},
	})
	require.NoError(t, err)

	assert.InDelta(t, 20, b.TotalLoad(), 1e-12)
	assert.Equal(t, []float64{0, 2, 5, 6, 8, 9, 10}, b.Breakpoints())
	assert.Equal(t, 2, b.Unknowns())
}

func TestBeam_BreakpointsMergeRelativeToSpan(t *testing.T) {
	b, err := New(10000, []Support{{Position: 0, Type: Pin}, {Position: 10000, Type: Roller}}, []Load{
		{Type: PointLoad, Position: 10000.0 / 3, Magnitude: 1},
		{Type: PointLoad, Position: 3333.333333, Magnitude: 1},
	})
	require.NoError(t, err)

	xs := b.Breakpoints()
	require.Len(t, xs, 3)
	assert.InDelta(t, 3333.333333, xs[1], b.Tolerance())
	assert.InDelta(t, 1e-5, b.Tolerance(), 1e-18)
}

func TestBeam_Scaled(t *testing.T) {
	b, err := New(4, []Support{{Position: 0, Type: Fixed}}, []Load{
		{Type: PointLoad, Position: 4, Magnitude: 10, Case: Dead},
		{Type: PointLoad, Position: 2, Magnitude: 5, Case: Live},
		{Type: PointLoad, Position: 1, Magnitude: 3, Case: Wind},
	})
	require.NoError(t, err)

	factored := b.Scaled(func(c LoadCase) float64 {
		switch c {
		case Dead:
			return 1.2
		case Live:
			return 1.6
		}
		return 0
	})

	assert.Len(t, factored.Loads(), 2, "zero-factor cases are dropped")
	assert.InDelta(t, 20, factored.TotalLoad(), 1e-12)
	assert.InDelta(t, 18, b.TotalLoad(), 1e-12, "original is untouched")
	assert.ElementsMatch(t, []LoadCase{Dead, Live, Wind}, b.Cases())
}

func TestParseTypes(t *testing.T) {
	st, err := ParseSupportType(" Pinned ")
	require.NoError(t, err)
	assert.Equal(t, Pin, st)

	lt, err := ParseLoadType("UDL")
	require.NoError(t, err)
	assert.Equal(t, UniformLoad, lt)

	lc, err := ParseLoadCase("lr")
	require.NoError(t, err)
	assert.Equal(t, Roof, lc)

	_, err = ParseSupportType("spring")
	assert.Error(t, err)
	_, err = ParseLoadType("torsion")
	assert.Error(t, err)
	_, err = ParseLoadCase("snow")
	assert.Error(t, err)
}
