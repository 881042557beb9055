package engine

import (
	"strings"

	"github.com/njchilds90/gocalc/symbolic"
)

// Assignment binds one variable of a system solution.
type Assignment struct {
	Name  string
	Value symbolic.Expr
}

// Solution is the outcome of SolveEquations: Roots for a single equation in
// one variable, Sets of assignments (each in variable order) for a system.
// A system with several roots per unknown has one set per branch. An empty
// Solution means the equations have no solution.
type Solution struct {
	Variables []string
	Roots     []symbolic.Expr
	Sets      [][]Assignment
	System    bool
	// Exact is false when any value is a floating-point approximation.
	Exact bool
}

// Empty reports whether no solution exists.
func (s Solution) Empty() bool { return len(s.Roots) == 0 && len(s.Sets) == 0 }

// String renders roots as [-2, 2], one system solution as {x: 3, y: 2} and
// several as [{x: -I, y: 2}, {x: I, y: 2}].
func (s Solution) String() string {
	if s.Empty() {
		return "[]"
	}
	if s.System {
		sets := make([]string, len(s.Sets))
		for i, set := range s.Sets {
			parts := make([]string, len(set))
			for j, a := range set {
				parts[j] = a.Name + ": " + a.Value.String()
			}
			sets[i] = "{" + strings.Join(parts, ", ") + "}"
		}
		if len(sets) == 1 {
			return sets[0]
		}
		return "[" + strings.Join(sets, ", ") + "]"
	}
	parts := make([]string, len(s.Roots))
	for i, r := range s.Roots {
		parts[i] = r.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func (s Solution) LaTeX() string {
	if s.Empty() {
		return `\emptyset`
	}
	if s.System {
		sets := make([]string, len(s.Sets))
		for i, set := range s.Sets {
			parts := make([]string, len(set))
			for j, a := range set {
				parts[j] = a.Name + " = " + a.Value.LaTeX()
			}
			sets[i] = strings.Join(parts, `,\quad `)
		}
		if len(sets) == 1 {
			return sets[0]
		}
		return `\left\{` + strings.Join(sets, `\right\},\ \left\{`) + `\right\}`
	}
	v := "x"
	if len(s.Variables) > 0 {
		v = s.Variables[0]
	}
	parts := make([]string, len(s.Roots))
	for i, r := range s.Roots {
		parts[i] = r.LaTeX()
	}
	return v + ` \in \left\{` + strings.Join(parts, ", ") + `\right\}`
}

// IntegralResult is an antiderivative or the value of a definite integral.
type IntegralResult struct {
	Value    symbolic.Expr
	Definite bool
	// Numeric is set when the value came from quadrature.
	Numeric bool
}

// String appends the constant of integration to indefinite results.
func (r IntegralResult) String() string {
	if r.Definite {
		return r.Value.String()
	}
	return r.Value.String() + " + C"
}

func (r IntegralResult) LaTeX() string {
	if r.Definite {
		return r.Value.LaTeX()
	}
	return r.Value.LaTeX() + " + C"
}

// Float returns the numeric value of a definite integral.
func (r IntegralResult) Float() (float64, bool) {
	if !r.Definite {
		return 0, false
	}
	return symbolic.Float(r.Value, nil)
}
