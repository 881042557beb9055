package symbolic

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate/quad"
)

// ============================================================
// Integration (rule-based symbolic + numerical)
// ============================================================

// Integrate returns an antiderivative of expr with respect to varName,
// without the constant of integration. The boolean is false when no rule
// applies.
func Integrate(expr Expr, varName string) (Expr, bool) {
	return integrate(expr.Simplify(), varName, 0)
}

const maxIntegrateDepth = 12

func integrate(expr Expr, varName string, depth int) (Expr, bool) {
	if depth > maxIntegrateDepth {
		return nil, false
	}
	x := S(varName)
	if !Has(expr, varName) {
		return MulOf(expr, x), true
	}
	switch v := expr.(type) {
	case *Sym:
		return MulOf(F(1, 2), PowOf(x, N(2))), true

	case *Add:
		terms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			intT, ok := integrate(t, varName, depth+1)
			if !ok {
				return nil, false
			}
			terms[i] = intT
		}
		return AddOf(terms...), true

	case *Mul:
		var consts, deps []Expr
		for _, f := range v.factors {
			if Has(f, varName) {
				deps = append(deps, f)
			} else {
				consts = append(consts, f)
			}
		}
		if len(consts) > 0 {
			inner, ok := integrate(MulOf(deps...), varName, depth+1)
			if !ok {
				return nil, false
			}
			return MulOf(append(consts, inner)...), true
		}
		if expanded := Expand(v); !expanded.Equal(v) {
			if _, isAdd := expanded.(*Add); isAdd {
				return integrate(expanded, varName, depth+1)
			}
		}
		if len(deps) == 2 {
			if r, ok := byParts(deps[0], deps[1], varName, depth); ok {
				return r, true
			}
			if r, ok := byParts(deps[1], deps[0], varName, depth); ok {
				return r, true
			}
		}
		return nil, false

	case *Pow:
		if Has(v.exp, varName) {
			// c**(a*x + b)
			if !Has(v.base, varName) {
				if a, _, ok := Linear(v.exp, varName); ok {
					return MulOf(v, PowOf(MulOf(a, LogOf(v.base)), N(-1))), true
				}
			}
			return nil, false
		}
		// (a*x + b)**n
		if a, _, ok := Linear(v.base, varName); ok {
			if isNumEqual(v.exp, -1) {
				return MulOf(LogOf(v.base), PowOf(a, N(-1))), true
			}
			n1 := AddOf(v.exp, N(1))
			return MulOf(PowOf(v.base, n1), PowOf(MulOf(a, n1), N(-1))), true
		}
		// 1/(a*x**2 + c) with a, c > 0
		if isNumEqual(v.exp, -1) {
			if p, ok := AsPoly(v.base, varName); ok && p.Degree() == 2 && isNumEqual(p.Coeff(1), 0) {
				a, aok := p.Coeff(2).(*Num)
				c, cok := p.Coeff(0).(*Num)
				if aok && cok && a.IsPositive() && c.IsPositive() {
					scale := SqrtOf(numDiv(a, c))
					return MulOf(PowOf(numMul(a, c), F(-1, 2)), AtanOf(MulOf(scale, x))), true
				}
			}
		}
		if n, ok := v.exp.(*Num); ok && n.exactInt() && n.IsPositive() {
			if expanded := Expand(v); !expanded.Equal(v) {
				return integrate(expanded, varName, depth+1)
			}
		}
		return nil, false

	case *Func:
		a, _, ok := Linear(v.arg, varName)
		if !ok {
			return nil, false
		}
		u := v.arg
		var r Expr
		switch v.name {
		case "sin":
			r = MulOf(N(-1), CosOf(u))
		case "cos":
			r = SinOf(u)
		case "tan":
			r = MulOf(N(-1), LogOf(CosOf(u)))
		case "exp":
			r = ExpOf(u)
		case "log":
			r = AddOf(MulOf(u, LogOf(u)), MulOf(N(-1), u))
		case "sinh":
			r = CoshOf(u)
		case "cosh":
			r = SinhOf(u)
		case "tanh":
			r = LogOf(CoshOf(u))
		case "asin":
			r = AddOf(MulOf(u, AsinOf(u)), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2))))))
		case "acos":
			r = AddOf(MulOf(u, AcosOf(u)), MulOf(N(-1), SqrtOf(AddOf(N(1), MulOf(N(-1), PowOf(u, N(2)))))))
		case "atan":
			r = AddOf(MulOf(u, AtanOf(u)), MulOf(F(-1, 2), LogOf(AddOf(PowOf(u, N(2)), N(1)))))
		default:
			return nil, false
		}
		return MulOf(r, PowOf(a, N(-1))), true
	}
	return nil, false
}

// byParts integrates poly*f as poly*F - integral(poly'*F) when poly is a
// polynomial in varName and f integrates directly. A logarithm is
// differentiated instead: log(u)*P - integral(P*log(u)').
func byParts(poly, f Expr, varName string, depth int) (Expr, bool) {
	p, ok := AsPoly(poly, varName)
	if !ok || p.Degree() < 1 {
		return nil, false
	}
	if fn, isFunc := f.(*Func); isFunc && fn.name == "log" {
		bigP, ok := integrate(poly, varName, depth+1)
		if !ok {
			return nil, false
		}
		rest, ok := integrate(MulOf(bigP, Diff(f, varName)), varName, depth+1)
		if !ok {
			return nil, false
		}
		return AddOf(MulOf(f, bigP), MulOf(N(-1), rest)), true
	}
	bigF, ok := integrate(f, varName, depth+1)
	if !ok {
		return nil, false
	}
	rest, ok := integrate(MulOf(Diff(poly, varName), bigF), varName, depth+1)
	if !ok {
		return nil, false
	}
	return AddOf(MulOf(poly, bigF), MulOf(N(-1), rest)), true
}

var (
	ErrNoAntiderivative = errors.New("no antiderivative found")
	ErrDivergent        = errors.New("integral diverges")
	ErrSingular         = errors.New("integrand is singular on the interval")
	ErrBounds           = errors.New("bounds are not real numbers")
)

// DefiniteIntegrate integrates expr over [lo, hi]. The antiderivative is
// evaluated at the bounds when one is found and gives a real value (or the
// bounds are symbolic); otherwise the integral is computed by Gauss-Legendre
// quadrature, which needs numeric bounds. numeric reports that the value
// came from quadrature.
//
// Poles of the integrand on the interval are checked first: where the
// antiderivative has no finite limit the integral is ErrDivergent; without
// an antiderivative a pole that is not removable is ErrSingular.
func DefiniteIntegrate(expr Expr, varName string, lo, hi Expr) (val Expr, numeric bool, err error) {
	anti, hasAnti := Integrate(expr, varName)
	if hasAnti {
		val = AddOf(Sub(anti, varName, hi), MulOf(N(-1), Sub(anti, varName, lo)))
		if len(FreeSymbols(val)) > 0 {
			return val, false, nil
		}
	}
	a, okA := Float(lo, nil)
	b, okB := Float(hi, nil)
	if !okA || !okB {
		if !hasAnti {
			return nil, false, ErrNoAntiderivative
		}
		return nil, false, ErrBounds
	}

	lower, upper := math.Min(a, b), math.Max(a, b)
	for _, s := range singularities(expr, varName, lower, upper) {
		// With an antiderivative its limit decides convergence; without one
		// only a removable singularity of the integrand is accepted.
		limitOf, cause := anti, ErrDivergent
		if !hasAnti {
			limitOf, cause = expr, ErrSingular
		}
		if s > lower && !finiteLimit(limitOf, varName, s, -1) ||
			s < upper && !finiteLimit(limitOf, varName, s, 1) {
			return nil, false, fmt.Errorf("%w: at %s=%g", cause, varName, s)
		}
	}

	if hasAnti {
		if _, ok := Float(val, nil); ok && !hasConst(val, I) {
			return val, false, nil
		}
	}
	r, err := convergedQuadrature(expr, varName, a, b)
	if err != nil {
		return nil, false, err
	}
	return NFloat(r), true, nil
}

// singularities returns the real points of [a, b] where expr or its
// antiderivative may blow up: zeros of denominators, of logarithm arguments
// and of cos under tan.
func singularities(expr Expr, varName string, a, b float64) []float64 {
	var pts []float64
	seen := map[string]bool{}
	add := func(base Expr) {
		if !Has(base, varName) || seen[base.String()] {
			return
		}
		seen[base.String()] = true
		res, err := Solve(base, varName)
		if err != nil {
			return
		}
		for _, r := range res.Solutions {
			x, ok := Float(r, nil)
			if ok && x >= a-1e-12 && x <= b+1e-12 {
				pts = append(pts, x)
			}
		}
	}
	walk(expr, func(e Expr) {
		switch v := e.(type) {
		case *Pow:
			if n, ok := v.exp.(*Num); ok && n.IsNegative() {
				add(v.base)
			}
		case *Func:
			switch v.name {
			case "log":
				add(v.arg)
			case "tan":
				add(CosOf(v.arg))
			}
		}
	})
	sort.Float64s(pts)
	return pts
}

// finiteLimit reports whether anti settles to a finite value approaching s
// from the side dir (+1 or -1). Successive differences must shrink; a
// logarithm grows by a constant step and a pole by a growing one.
func finiteLimit(anti Expr, varName string, s, dir float64) bool {
	env := map[string]float64{}
	scale := math.Max(1, math.Abs(s))
	var prev, prevDiff float64
	for i, h := range []float64{1e-4, 1e-6, 1e-8, 1e-10} {
		env[varName] = s + dir*h*scale
		v, ok := Float(anti, env)
		if !ok {
			return false
		}
		if i > 0 {
			d := math.Abs(v - prev)
			if i > 1 && d > 0.9*prevDiff {
				return false
			}
			prevDiff = d
		}
		prev = v
	}
	return true
}

// convergedQuadrature accepts the quadrature estimate only when two orders
// agree.
func convergedQuadrature(expr Expr, varName string, a, b float64) (float64, error) {
	fine, ok := quadratureN(expr, varName, a, b, quadraturePoints)
	if !ok {
		return 0, fmt.Errorf("%w: integrand is not finite on [%g, %g]", ErrSingular, a, b)
	}
	coarse, ok := quadratureN(expr, varName, a, b, quadraturePoints/2)
	if !ok || math.Abs(fine-coarse) > 1e-6*math.Max(1, math.Abs(fine)) {
		return 0, fmt.Errorf("%w: quadrature estimates disagree", ErrNoConvergence)
	}
	return fine, nil
}

const quadraturePoints = 128

// Quadrature integrates expr numerically over [a, b]. It fails when expr has
// free symbols other than varName or is not finite on the interval.
func Quadrature(expr Expr, varName string, a, b float64) (float64, bool) {
	return quadratureN(expr, varName, a, b, quadraturePoints)
}

func quadratureN(expr Expr, varName string, a, b float64, n int) (float64, bool) {
	for name := range FreeSymbols(expr) {
		if name != varName {
			return 0, false
		}
	}
	if a == b {
		return 0, true
	}
	sign := 1.0
	if a > b {
		a, b, sign = b, a, -1
	}
	finite := true
	env := map[string]float64{}
	f := func(x float64) float64 {
		env[varName] = x
		v, ok := Float(expr, env)
		if !ok {
			finite = false
			return 0
		}
		return v
	}
	r := quad.Fixed(f, a, b, n, quad.Legendre{}, 0)
	if !finite || math.IsNaN(r) || math.IsInf(r, 0) {
		return 0, false
	}
	return sign * r, true
}
