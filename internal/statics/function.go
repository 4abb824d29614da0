package statics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Segment is one polynomial piece of a Function on [X0, X1].
// The value at x is Coef[0] + Coef[1]*t + Coef[2]*t² with t = x - X0.
type Segment struct {
	X0, X1 float64
	Coef   [3]float64
}

// Eval evaluates the segment polynomial at x
func (s Segment) Eval(x float64) float64 {
	t := x - s.X0
	return s.Coef[0] + t*(s.Coef[1]+t*s.Coef[2])
}

// Point is a sampled (position, value) pair
type Point struct {
	X float64
	Y float64
}

// Extremum is a peak value of a Function and where it occurs
type Extremum struct {
	Value    float64
	Position float64
}

// Function is a piecewise polynomial of position along the beam with explicit
// breakpoints. Outside its domain the function is zero.
type Function struct {
	Name     string
	segments []Segment
	tol      float64
}

// NewFunction builds a Function from ordered, contiguous segments
func NewFunction(name string, segments []Segment) *Function {
	s := make([]Segment, len(segments))
	copy(s, segments)
	sort.SliceStable(s, func(i, j int) bool { return s[i].X0 < s[j].X0 })

	span := 1.0
	if len(s) > 0 {
		span = math.Max(span, math.Abs(s[len(s)-1].X1-s[0].X0))
	}
	return &Function{Name: name, segments: s, tol: 1e-9 * span}
}

// NewLinear builds a piecewise-linear Function through tabulated points.
// Points are sorted by position; two points at the same position form a jump.
func NewLinear(name string, pts []Point) *Function {
	p := make([]Point, len(pts))
	copy(p, pts)
	sort.SliceStable(p, func(i, j int) bool { return p[i].X < p[j].X })

	var segs []Segment
	for i := 1; i < len(p); i++ {
		a, b := p[i-1], p[i]
		h := b.X - a.X
		if h <= 0 {
			continue
		}
		segs = append(segs, Segment{X0: a.X, X1: b.X, Coef: [3]float64{a.Y, (b.Y - a.Y) / h, 0}})
	}
	return NewFunction(name, segs)
}

// Segments returns a copy of the function's pieces
func (f *Function) Segments() []Segment {
	out := make([]Segment, len(f.segments))
	copy(out, f.segments)
	return out
}

// Empty reports whether the function has no segments
func (f *Function) Empty() bool { return f == nil || len(f.segments) == 0 }

// Domain returns the first and last position covered by the function
func (f *Function) Domain() (float64, float64) {
	if f.Empty() {
		return 0, 0
	}
	return f.segments[0].X0, f.segments[len(f.segments)-1].X1
}

// Breakpoints returns the segment boundaries in ascending order
func (f *Function) Breakpoints() []float64 {
	if f.Empty() {
		return nil
	}
	xs := make([]float64, 0, len(f.segments)+1)
	for _, s := range f.segments {
		xs = append(xs, s.X0)
	}
	return append(xs, f.segments[len(f.segments)-1].X1)
}

// Limits returns the left- and right-hand limits of the function at x
func (f *Function) Limits(x float64) (left, right float64) {
	if f.Empty() {
		return 0, 0
	}
	for _, s := range f.segments {
		switch {
		case math.Abs(x-s.X1) <= f.tol:
			left = s.Eval(s.X1)
		case math.Abs(x-s.X0) <= f.tol:
			right = s.Eval(s.X0)
			return left, right
		case x > s.X0 && x < s.X1:
			v := s.Eval(x)
			return v, v
		}
	}
	return left, right
}

// Jump returns right limit minus left limit at x
func (f *Function) Jump(x float64) float64 {
	l, r := f.Limits(x)
	return r - l
}

// At evaluates the function at x, taking the right-hand limit at interior
// breakpoints and the left-hand limit at the end of the domain.
func (f *Function) At(x float64) float64 {
	if f.Empty() {
		return 0
	}
	_, end := f.Domain()
	l, r := f.Limits(x)
	if math.Abs(x-end) <= f.tol {
		return l
	}
	return r
}

// Sample evaluates the function at n evenly spaced stations plus every
// breakpoint. Where the function jumps, both limits are emitted at the same
// position so plotted lines stay vertical.
func (f *Function) Sample(n int) []Point {
	if f.Empty() {
		return nil
	}
	if n < 2 {
		n = 2
	}
	x0, x1 := f.Domain()
	xs := floats.Span(make([]float64, n), x0, x1)
	xs = append(xs, f.Breakpoints()...)
	sort.Float64s(xs)

	var pts []Point
	last := math.Inf(-1)
	for _, x := range xs {
		if x-last <= f.tol {
			continue
		}
		last = x
		l, r := f.Limits(x)
		switch {
		case math.Abs(x-x0) <= f.tol:
			pts = append(pts, Point{x, r})
		case math.Abs(x-x1) <= f.tol:
			pts = append(pts, Point{x, l})
		case math.Abs(r-l) > f.tol:
			pts = append(pts, Point{x, l}, Point{x, r})
		default:
			pts = append(pts, Point{x, r})
		}
	}
	return pts
}

// Extrema returns the maximum and minimum values over the domain, with
// positions. Segment ends and interior stationary points are checked.
func (f *Function) Extrema() (maxE, minE Extremum) {
	if f.Empty() {
		return Extremum{}, Extremum{}
	}
	maxE = Extremum{Value: math.Inf(-1)}
	minE = Extremum{Value: math.Inf(1)}

	consider := func(x, v float64) {
		if v > maxE.Value+f.tol {
			maxE = Extremum{Value: v, Position: x}
		}
		if v < minE.Value-f.tol {
			minE = Extremum{Value: v, Position: x}
		}
	}
	for _, s := range f.segments {
		consider(s.X0, s.Eval(s.X0))
		if s.Coef[2] != 0 {
			t := -s.Coef[1] / (2 * s.Coef[2])
			if t > 0 && s.X0+t < s.X1 {
				consider(s.X0+t, s.Eval(s.X0+t))
			}
		}
		consider(s.X1, s.Eval(s.X1))
	}
	return maxE, minE
}

// Peak returns whichever extremum has the larger magnitude
func (f *Function) Peak() Extremum {
	maxE, minE := f.Extrema()
	if math.Abs(minE.Value) > math.Abs(maxE.Value) {
		return minE
	}
	return maxE
}
