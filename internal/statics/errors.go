package statics

import "fmt"

// UnderconstrainedError reports a beam whose supports cannot hold it in
// equilibrium (a mechanism)
type UnderconstrainedError struct {
	Unknowns  int
	Equations int
	Reason    string
}

func (e *UnderconstrainedError) Error() string {
	return fmt.Sprintf("beam is unstable: %d reaction unknown(s) for %d equilibrium equations (%s)", e.Unknowns, e.Equations, e.Reason)
}

// IndeterminateBeamError reports a beam with more reaction unknowns than
// equilibrium equations
type IndeterminateBeamError struct {
	Unknowns  int
	Equations int
}

func (e *IndeterminateBeamError) Error() string {
	return fmt.Sprintf("beam is statically indeterminate to degree %d: %d reaction unknowns for %d equilibrium equations", e.Unknowns-e.Equations, e.Unknowns, e.Equations)
}
