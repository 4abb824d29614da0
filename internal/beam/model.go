package beam

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// SupportType identifies which reaction components a support provides
type SupportType string

const (
	Pin    SupportType = "pin"    // vertical reaction
	Roller SupportType = "roller" // vertical reaction
	Fixed  SupportType = "fixed"  // vertical reaction and moment
)

// LoadType identifies how a load is applied
type LoadType string

const (
	PointLoad   LoadType = "point"  // concentrated force, positive downward
	MomentLoad  LoadType = "moment" // concentrated couple, positive clockwise
	UniformLoad LoadType = "udl"    // uniformly distributed force per length, positive downward
)

// LoadCase tags a load with its source so factored combinations can be applied
type LoadCase string

const (
	Dead       LoadCase = "D"
	Live       LoadCase = "L"
	Roof       LoadCase = "Lr"
	Wind       LoadCase = "W"
	Earthquake LoadCase = "E"
	Rain       LoadCase = "R"
)

// positionTolerance is the distance, relative to the span (or 1 for spans
// shorter than one unit), below which two positions are treated as coincident
const positionTolerance = 1e-9

// tolerance returns the absolute coincidence distance for a span of length
func tolerance(length float64) float64 {
	return positionTolerance * math.Max(1, length)
}

// ParseSupportType maps spreadsheet spellings to a SupportType
func ParseSupportType(s string) (SupportType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pin", "pinned", "hinge", "hinged":
		return Pin, nil
	case "roller", "rolled":
		return Roller, nil
	case "fixed", "fix", "clamped", "encastre":
		return Fixed, nil
	}
	return "", fmt.Errorf("unknown support type %q (want pin, roller or fixed)", s)
}

// ParseLoadType maps spreadsheet spellings to a LoadType
func ParseLoadType(s string) (LoadType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "point", "force", "concentrated", "p":
		return PointLoad, nil
	case "moment", "couple", "m":
		return MomentLoad, nil
	case "udl", "uniform", "distributed", "w":
		return UniformLoad, nil
	}
	return "", fmt.Errorf("unknown load type %q (want point, moment or udl)", s)
}

// ParseLoadCase maps a case code to a LoadCase; blank means dead load
func ParseLoadCase(s string) (LoadCase, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "D", "DEAD":
		return Dead, nil
	case "L", "LIVE":
		return Live, nil
	case "LR", "ROOF":
		return Roof, nil
	case "W", "WIND":
		return Wind, nil
	case "E", "EARTHQUAKE":
		return Earthquake, nil
	case "R", "RAIN":
		return Rain, nil
	}
	return "", fmt.Errorf("unknown load case %q (want D, L, Lr, W, E or R)", s)
}

// Unknowns returns the number of transverse reaction components the support provides
func (t SupportType) Unknowns() int {
	switch t {
	case Fixed:
		return 2
	case Pin, Roller:
		return 1
	}
	return 0
}

// Support is a restraint at a point along the beam
type Support struct {
	Position float64
	Type     SupportType
	Label    string
}

// Load is an applied action on the beam
type Load struct {
	Type      LoadType
	Position  float64 // point of application, or start of a distributed load
	End       float64 // end of a distributed load; ignored otherwise
	Magnitude float64 // force, couple, or force per length
	Case      LoadCase
	Label     string
}

// Resultant returns the total downward force of the load and its line of action
func (l Load) Resultant() (force, at float64) {
	switch l.Type {
	case PointLoad:
		return l.Magnitude, l.Position
	case UniformLoad:
		return l.Magnitude * (l.End - l.Position), (l.Position + l.End) / 2
	}
	return 0, l.Position
}

// Describe returns a short human readable description of the load
func (l Load) Describe() string {
	switch l.Type {
	case PointLoad:
		return fmt.Sprintf("Point load %.2f at x = %.2f", l.Magnitude, l.Position)
	case MomentLoad:
		return fmt.Sprintf("Moment %.2f at x = %.2f", l.Magnitude, l.Position)
	case UniformLoad:
		return fmt.Sprintf("UDL %.2f/length from x = %.2f to %.2f", l.Magnitude, l.Position, l.End)
	}
	return string(l.Type)
}

// Beam is a straight beam with its supports and applied loads.
// A Beam is immutable once created; accessors return copies.
type Beam struct {
	length   float64
	supports []Support
	loads    []Load
}

// New validates the inputs and creates a Beam. Supports are ordered by
// position and loads by position then type.
func New(length float64, supports []Support, loads []Load) (*Beam, error) {
	if length <= 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return nil, &ValidationError{Field: "length", msg: fmt.Sprintf("beam length must be positive, got %g", length)}
	}
	if len(supports) == 0 {
		return nil, &ValidationError{Field: "supports", msg: "beam must have at least one support"}
	}

	s := make([]Support, len(supports))
	copy(s, supports)
	for i, sup := range s {
		if sup.Type.Unknowns() == 0 {
			return nil, &ValidationError{Field: "supports", Index: i + 1, msg: fmt.Sprintf("unknown support type %q", sup.Type)}
		}
		if !within(sup.Position, length) {
			return nil, &ValidationError{Field: "supports", Index: i + 1, msg: fmt.Sprintf("support position %g outside beam [0, %g]", sup.Position, length)}
		}
	}

	l := make([]Load, len(loads))
	copy(l, loads)
	for i := range l {
		if l[i].Case == "" {
			l[i].Case = Dead
		}
		if err := validateLoad(l[i], length); err != nil {
			err.Index = i + 1
			return nil, err
		}
	}

	sort.SliceStable(s, func(i, j int) bool { return s[i].Position < s[j].Position })
	sort.SliceStable(l, func(i, j int) bool {
		if l[i].Position != l[j].Position {
			return l[i].Position < l[j].Position
		}
		return l[i].Type < l[j].Type
	})

	return &Beam{length: length, supports: s, loads: l}, nil
}

func validateLoad(l Load, length float64) *ValidationError {
	if math.IsNaN(l.Magnitude) || math.IsInf(l.Magnitude, 0) {
		return &ValidationError{Field: "loads", msg: "load magnitude must be finite"}
	}
	if !within(l.Position, length) {
		return &ValidationError{Field: "loads", msg: fmt.Sprintf("load position %g outside beam [0, %g]", l.Position, length)}
	}
	switch l.Type {
	case PointLoad, MomentLoad:
	case UniformLoad:
		if !within(l.End, length) {
			return &ValidationError{Field: "loads", msg: fmt.Sprintf("load end %g outside beam [0, %g]", l.End, length)}
		}
		if l.End-l.Position <= tolerance(length) {
			return &ValidationError{Field: "loads", msg: fmt.Sprintf("distributed load end %g must be greater than start %g", l.End, l.Position)}
		}
	default:
		return &ValidationError{Field: "loads", msg: fmt.Sprintf("unknown load type %q", l.Type)}
	}
	return nil
}

func within(x, length float64) bool {
	tol := tolerance(length)
	return x >= -tol && x <= length+tol
}

// Length returns the span of the beam
func (b *Beam) Length() float64 { return b.length }

// Tolerance returns the distance below which two positions on the beam are
// the same point
func (b *Beam) Tolerance() float64 { return tolerance(b.length) }

// Supports returns the supports ordered by position
func (b *Beam) Supports() []Support {
	out := make([]Support, len(b.supports))
	copy(out, b.supports)
	return out
}

// Loads returns the loads ordered by position
func (b *Beam) Loads() []Load {
	out := make([]Load, len(b.loads))
	copy(out, b.loads)
	return out
}

// Unknowns returns the total number of transverse reaction components
func (b *Beam) Unknowns() int {
	n := 0
	for _, s := range b.supports {
		n += s.Type.Unknowns()
	}
	return n
}

// TotalLoad returns the sum of applied downward forces
func (b *Beam) TotalLoad() float64 {
	var total float64
	for _, l := range b.loads {
		f, _ := l.Resultant()
		total += f
	}
	return total
}

// Breakpoints returns the sorted, de-duplicated positions where the internal
// force functions may change form: beam ends, supports and load boundaries.
func (b *Beam) Breakpoints() []float64 {
	xs := []float64{0, b.length}
	for _, s := range b.supports {
		xs = append(xs, s.Position)
	}
	for _, l := range b.loads {
		xs = append(xs, l.Position)
		if l.Type == UniformLoad {
			xs = append(xs, l.End)
		}
	}
	sort.Float64s(xs)

	tol := b.Tolerance()
	out := xs[:1]
	for _, x := range xs[1:] {
		if x-out[len(out)-1] > tol {
			out = append(out, x)
		}
	}
	return out
}

// Scaled returns a copy of the beam with every load multiplied by the
// factor that factor(case) reports for its load case. Loads whose factor
// is zero are dropped.
func (b *Beam) Scaled(factor func(LoadCase) float64) *Beam {
	loads := make([]Load, 0, len(b.loads))
	for _, l := range b.loads {
		f := factor(l.Case)
		if f == 0 {
			continue
		}
		l.Magnitude *= f
		loads = append(loads, l)
	}
	return &Beam{length: b.length, supports: b.Supports(), loads: loads}
}

// Cases returns the distinct load cases present on the beam
func (b *Beam) Cases() []LoadCase {
	seen := make(map[LoadCase]bool)
	var out []LoadCase
	for _, l := range b.loads {
		if !seen[l.Case] {
			seen[l.Case] = true
			out = append(out, l.Case)
		}
	}
	return out
}

// ValidationError represents an invalid beam definition
type ValidationError struct {
	Field string
	Index int // 1-based index within Field, 0 when not applicable
	msg   string
}

func (e *ValidationError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("%s #%d: %s", e.Field, e.Index, e.msg)
	}
	return e.msg
}
