package statics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLinear_TabulatedJump(t *testing.T) {
	f := NewLinear("Shear Force", []Point{
		{X: 0, Y: 10},
		{X: 2, Y: 10},
		{X: 2, Y: -5},
		{X: 4, Y: -5},
	})
	require.False(t, f.Empty())

	x0, x1 := f.Domain()
	assert.Equal(t, 0.0, x0)
	assert.Equal(t, 4.0, x1)

	left, right := f.Limits(2)
	assert.InDelta(t, 10, left, 1e-12)
	assert.InDelta(t, -5, right, 1e-12)
	assert.InDelta(t, -15, f.Jump(2), 1e-12)
	assert.InDelta(t, 10, f.At(1), 1e-12)
}

func TestFunction_SampleIncludesBothLimits(t *testing.T) {
	f := NewLinear("V", []Point{{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: -1}, {X: 3, Y: -1}})

	pts := f.Sample(4)
	var atJump []float64
	for _, p := range pts {
		if p.X == 1 {
			atJump = append(atJump, p.Y)
		}
	}
	assert.Equal(t, []float64{1, -1}, atJump)
	assert.Equal(t, 0.0, pts[0].X)
	assert.Equal(t, 3.0, pts[len(pts)-1].X)

	for i := 1; i < len(pts); i++ {
		assert.GreaterOrEqual(t, pts[i].X, pts[i-1].X)
	}
}

func TestFunction_ExtremaFindsInteriorVertex(t *testing.T) {
	// M(x) = 4x - x² on [0, 4], peak 4 at x = 2
	f := NewFunction("M", []Segment{{X0: 0, X1: 4, Coef: [3]float64{0, 4, -1}}})

	maxE, minE := f.Extrema()
	assert.InDelta(t, 4, maxE.Value, 1e-12)
	assert.InDelta(t, 2, maxE.Position, 1e-12)
	assert.InDelta(t, 0, minE.Value, 1e-12)
	assert.Equal(t, maxE, f.Peak())
}

func TestFunction_Empty(t *testing.T) {
	f := NewFunction("empty", nil)
	assert.True(t, f.Empty())
	assert.Nil(t, f.Sample(10))
	assert.Equal(t, 0.0, f.At(1))

	var nilFn *Function
	assert.True(t, nilFn.Empty())
}
