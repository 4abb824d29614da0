// Package statics computes support reactions and internal force diagrams
// for statically determinate beams under transverse loading.
//
// Sign conventions: applied forces are positive downward, applied couples and
// reaction couples are positive clockwise, reaction forces are positive
// upward. Positive shear rotates an element clockwise (net upward force to
// the left of the section) and sagging bending moment is positive.
package statics

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/alexiusacademia/gobeam/internal/beam"
)

// Equations is the number of independent equilibrium equations for a beam
// under transverse loads: sum of vertical forces and sum of moments.
const Equations = 2

// Reaction is the computed restraint provided by one support
type Reaction struct {
	Support beam.Support
	Force   float64 // upward positive
	Moment  float64 // clockwise positive; zero unless the support is fixed
}

// Analysis holds the results of solving a beam. It is immutable once returned.
type Analysis struct {
	Beam   *beam.Beam
	Shear  *Function
	Moment *Function

	reactions []Reaction

	// residual shear and moment just beyond the right end; zero for a
	// balanced solution
	residualForce  float64
	residualMoment float64
}

// Reactions returns the support reactions ordered by support position
func (a *Analysis) Reactions() []Reaction {
	out := make([]Reaction, len(a.reactions))
	copy(out, a.reactions)
	return out
}

// TotalReaction returns the sum of the vertical reaction forces
func (a *Analysis) TotalReaction() float64 {
	var sum float64
	for _, r := range a.reactions {
		sum += r.Force
	}
	return sum
}

// Residuals returns the out-of-balance force and moment after integrating
// the loads and reactions along the whole beam
func (a *Analysis) Residuals() (force, moment float64) {
	return a.residualForce, a.residualMoment
}

// Balanced reports whether both residuals are within tol
func (a *Analysis) Balanced(tol float64) bool {
	return math.Abs(a.residualForce) <= tol && math.Abs(a.residualMoment) <= tol
}

// Extremes holds the peak shear and moment values of an analysis
type Extremes struct {
	MaxShear  Extremum
	MinShear  Extremum
	MaxMoment Extremum
	MinMoment Extremum
}

// Extremes returns the maximum and minimum shear and moment with positions
func (a *Analysis) Extremes() Extremes {
	var e Extremes
	e.MaxShear, e.MinShear = a.Shear.Extrema()
	e.MaxMoment, e.MinMoment = a.Moment.Extrema()
	return e
}

// unknown is one reaction component in the equilibrium system
type unknown struct {
	support int
	couple  bool
}

// Solve computes the reactions and the shear and moment functions of b.
// It returns an *UnderconstrainedError when the supports provide fewer
// restraints than the equilibrium equations (or a singular arrangement) and
// an *IndeterminateBeamError when they provide more.
func Solve(b *beam.Beam) (*Analysis, error) {
	supports := b.Supports()
	loads := b.Loads()
	tol := b.Tolerance()

	n := b.Unknowns()
	switch {
	case n < Equations:
		return nil, &UnderconstrainedError{Unknowns: n, Equations: Equations, Reason: "not enough support restraints"}
	case n > Equations:
		return nil, &IndeterminateBeamError{Unknowns: n, Equations: Equations}
	}

	var unknowns []unknown
	for i, s := range supports {
		unknowns = append(unknowns, unknown{support: i})
		if s.Type == beam.Fixed {
			unknowns = append(unknowns, unknown{support: i, couple: true})
		}
	}

	// Row 0: sum of upward forces. Row 1: counter-clockwise moment about x = 0.
	A := mat.NewDense(Equations, Equations, nil)
	for j, u := range unknowns {
		if u.couple {
			A.Set(0, j, 0)
			A.Set(1, j, -1)
			continue
		}
		A.Set(0, j, 1)
		A.Set(1, j, supports[u.support].Position)
	}

	var totalForce, totalMoment float64
	for _, l := range loads {
		switch l.Type {
		case beam.MomentLoad:
			totalMoment += l.Magnitude
		default:
			f, at := l.Resultant()
			totalForce += f
			totalMoment += f * at
		}
	}
	rhs := mat.NewVecDense(Equations, []float64{totalForce, totalMoment})

	if math.Abs(mat.Det(A)) <= tol {
		return nil, &UnderconstrainedError{Unknowns: n, Equations: Equations, Reason: "supports cannot resist both translation and rotation"}
	}
	var x mat.VecDense
	if err := x.SolveVec(A, rhs); err != nil {
		return nil, &UnderconstrainedError{Unknowns: n, Equations: Equations, Reason: err.Error()}
	}

	reactions := make([]Reaction, len(supports))
	for i, s := range supports {
		reactions[i].Support = s
	}
	for j, u := range unknowns {
		v := x.AtVec(j)
		if math.Abs(v) <= tol {
			v = 0
		}
		if u.couple {
			reactions[u.support].Moment = v
		} else {
			reactions[u.support].Force = v
		}
	}

	a := &Analysis{Beam: b, reactions: reactions}
	a.integrate(b.Breakpoints(), loads)
	return a, nil
}

// integrate walks the breakpoints left to right accumulating shear as the
// running sum of transverse forces and moment as the running integral of
// shear plus couple jumps. Each load and reaction acts at exactly one
// breakpoint, the one nearest its position.
func (a *Analysis) integrate(xs []float64, loads []beam.Load) {
	forces := make([]float64, len(xs))
	couples := make([]float64, len(xs))
	udl := make([]float64, len(xs))

	for _, r := range a.reactions {
		i := nearest(xs, r.Support.Position)
		forces[i] += r.Force
		couples[i] += r.Moment
	}
	for _, l := range loads {
		i := nearest(xs, l.Position)
		switch l.Type {
		case beam.PointLoad:
			forces[i] -= l.Magnitude
		case beam.MomentLoad:
			couples[i] += l.Magnitude
		case beam.UniformLoad:
			for j := i; j < nearest(xs, l.End); j++ {
				udl[j] += l.Magnitude
			}
		}
	}

	var shearSegs, momentSegs []Segment
	var v, m float64
	for i, x := range xs {
		v += forces[i]
		m += couples[i]
		if i == len(xs)-1 {
			break
		}
		next := xs[i+1]
		h := next - x
		w := udl[i]

		shearSegs = append(shearSegs, Segment{X0: x, X1: next, Coef: [3]float64{v, -w, 0}})
		momentSegs = append(momentSegs, Segment{X0: x, X1: next, Coef: [3]float64{m, v, -w / 2}})

		m += v*h - w*h*h/2
		v -= w * h
	}

	a.Shear = NewFunction("Shear Force", shearSegs)
	a.Moment = NewFunction("Bending Moment", momentSegs)
	a.residualForce = v
	a.residualMoment = m
}

// nearest returns the index of the element of the sorted slice xs closest to x
func nearest(xs []float64, x float64) int {
	i := sort.SearchFloat64s(xs, x)
	switch {
	case i == 0:
		return 0
	case i == len(xs):
		return len(xs) - 1
	case x-xs[i-1] <= xs[i]-x:
		return i - 1
	}
	return i
}
