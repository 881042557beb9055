package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"math/cmplx"
	"sort"
)

// ============================================================
// Solvers
// ============================================================

var (
	ErrInfiniteSolutions = errors.New("infinitely many solutions")
	ErrNotPolynomial     = errors.New("not a polynomial")
	ErrNotLinear         = errors.New("system is not linear")
	ErrNoConvergence     = errors.New("numeric search did not converge")
	ErrSymbolicDegree    = errors.New("no closed form for symbolic coefficients above degree 2")
)

// SolveResult holds the distinct roots of one equation. ExactForm is false
// when any root is a floating-point approximation.
type SolveResult struct {
	Solutions []Expr
	ExactForm bool
}

func newSolveResult(roots []Expr) SolveResult {
	roots = dedupRoots(roots)
	SortRoots(roots)
	exact := true
	for _, r := range roots {
		if hasInexact(r) {
			exact = false
		}
	}
	return SolveResult{Solutions: roots, ExactForm: exact}
}

// Solve finds the roots of expr = 0 in varName: closed forms for
// polynomials and for rational functions once their denominators are
// cleared, otherwise a Newton scan over [-100, 100].
func Solve(expr Expr, varName string) (SolveResult, error) {
	if p, ok := AsPoly(expr, varName); ok {
		return SolvePolynomial(p)
	}
	if num, dens, ok := clearDenominators(expr, varName); ok {
		if p, ok := AsPoly(num, varName); ok {
			res, err := SolvePolynomial(p)
			if err != nil {
				return SolveResult{}, err
			}
			return dropPoles(res, dens, varName), nil
		}
	}
	return SolveNewton(expr, varName, 0, 0, 0)
}

// clearDenominators multiplies expr by every base raised to a negative
// integer power in one of its terms, returning the numerator and the
// bases. It fails when expr has no such denominator.
func clearDenominators(expr Expr, varName string) (Expr, []Expr, bool) {
	terms := []Expr{expr}
	if a, ok := expr.(*Add); ok {
		terms = a.terms
	}
	type den struct {
		base Expr
		k    int64
	}
	var dens []*den
	index := map[string]*den{}
	for _, t := range terms {
		factors := []Expr{t}
		if m, ok := t.(*Mul); ok {
			factors = m.factors
		}
		for _, f := range factors {
			pw, ok := f.(*Pow)
			if !ok || !Has(pw.base, varName) {
				continue
			}
			n, ok := pw.exp.(*Num)
			if !ok || !n.exactInt() || !n.IsNegative() {
				continue
			}
			k, ok := n.int64()
			if !ok || k < -64 {
				continue
			}
			key := pw.base.String()
			d := index[key]
			if d == nil {
				d = &den{base: pw.base}
				index[key] = d
				dens = append(dens, d)
			}
			d.k = max(d.k, -k)
		}
	}
	if len(dens) == 0 {
		return nil, nil, false
	}
	factors := []Expr{expr}
	bases := make([]Expr, len(dens))
	for i, d := range dens {
		factors = append(factors, PowOf(d.base, N(d.k)))
		bases[i] = d.base
	}
	return Expand(MulOf(factors...)), bases, true
}

// dropPoles removes roots at which one of dens vanishes.
func dropPoles(res SolveResult, dens []Expr, varName string) SolveResult {
	var kept []Expr
	for _, r := range res.Solutions {
		pole := false
		for _, d := range dens {
			if v, ok := Complex(Sub(d, varName, r), nil); ok && cmplx.Abs(v) < 1e-9 {
				pole = true
				break
			}
		}
		if !pole {
			kept = append(kept, r)
		}
	}
	return newSolveResult(kept)
}

// SolvePolynomial solves p = 0. A constant non-zero polynomial has no
// solution; the zero polynomial is ErrInfiniteSolutions.
func SolvePolynomial(p Poly) (SolveResult, error) {
	deg := p.Degree()
	if deg == 0 {
		c := p.Coeff(0)
		if isNumEqual(c, 0) {
			return SolveResult{}, ErrInfiniteSolutions
		}
		if _, isNum := c.(*Num); isNum {
			return SolveResult{ExactForm: true}, nil
		}
		return SolveResult{}, fmt.Errorf("%w: constant %s", ErrNotPolynomial, c)
	}
	coeffs, numeric := p.Numeric()
	if !numeric {
		switch deg {
		case 1:
			return SolveLinear(p.Coeff(1), p.Coeff(0)), nil
		case 2:
			return SolveQuadraticExact(p.Coeff(2), p.Coeff(1), p.Coeff(0)), nil
		}
		return SolveResult{}, ErrSymbolicDegree
	}

	var roots []Expr
	exact := true
	for _, c := range coeffs {
		if c.inexact {
			exact = false
		}
	}
	// Peel off rational roots so the remainder may fall to a closed form.
	if exact {
		for len(coeffs) > 3 {
			r, ok := rationalRoot(coeffs)
			if !ok {
				break
			}
			roots = append(roots, r)
			coeffs = deflate(coeffs, r)
		}
	}
	switch len(coeffs) - 1 {
	case 0:
	case 1:
		roots = append(roots, SolveLinear(coeffs[0], coeffs[1]).Solutions...)
	case 2:
		roots = append(roots, SolveQuadraticExact(coeffs[0], coeffs[1], coeffs[2]).Solutions...)
	case 3:
		roots = append(roots, SolveCubic(coeffs[0], coeffs[1], coeffs[2], coeffs[3]).Solutions...)
	default:
		rs, err := companionRoots(coeffs)
		if err != nil {
			return SolveResult{}, err
		}
		roots = append(roots, rs...)
	}
	return newSolveResult(roots), nil
}

// SolveLinear solves a*x + b = 0.
func SolveLinear(a, b Expr) SolveResult {
	return newSolveResult([]Expr{MulOf(N(-1), b, PowOf(a, N(-1)))})
}

// SolveQuadraticExact solves a*x**2 + b*x + c = 0 with the quadratic formula,
// keeping surds and imaginary parts exact.
func SolveQuadraticExact(a, b, c Expr) SolveResult {
	disc := AddOf(PowOf(b, N(2)), MulOf(N(-4), a, c))
	var sq Expr
	if dn, ok := disc.(*Num); ok && dn.IsNegative() {
		sq = MulOf(SqrtOf(numNeg(dn)), I)
	} else {
		sq = SqrtOf(disc)
	}
	denom := PowOf(MulOf(N(2), a), N(-1))
	negB := MulOf(N(-1), b)
	x1 := MulOf(AddOf(negB, MulOf(N(-1), sq)), denom)
	x2 := MulOf(AddOf(negB, sq), denom)
	return newSolveResult([]Expr{x1, x2})
}

// SolveCubic solves a*x**3 + b*x**2 + c*x + d = 0 by Cardano's method in
// floating point. A complex pair is returned as re - im*I, re + im*I.
func SolveCubic(a, b, c, d *Num) SolveResult {
	af, bf, cf, df := a.Float64(), b.Float64(), c.Float64(), d.Float64()
	if af == 0 {
		return SolveQuadraticExact(b, c, d)
	}
	p := (3*af*cf - bf*bf) / (3 * af * af)
	q := (2*bf*bf*bf - 9*af*bf*cf + 27*af*af*df) / (27 * af * af * af)
	offset := bf / (3 * af)
	disc := -(4*p*p*p + 27*q*q)

	var roots []Expr
	switch {
	case math.Abs(disc) < 1e-12:
		if math.Abs(q) < 1e-12 {
			roots = []Expr{NFloat(-offset)}
		} else {
			roots = []Expr{NFloat(3*q/p - offset), NFloat(-3*q/(2*p) - offset)}
		}
	case disc > 0:
		m := 2 * math.Sqrt(-p/3)
		theta := math.Acos(3*q/(p*m)) / 3
		for k := 0; k < 3; k++ {
			roots = append(roots, NFloat(m*math.Cos(theta-2*math.Pi*float64(k)/3)-offset))
		}
	default:
		A := math.Cbrt(-q/2 + math.Sqrt(q*q/4+p*p*p/27))
		B := float64(0)
		if A != 0 {
			B = -p / (3 * A)
		}
		re := -(A+B)/2 - offset
		im := math.Sqrt(3) / 2 * math.Abs(A-B)
		roots = []Expr{
			NFloat(A + B - offset),
			complexRoot(re, -im),
			complexRoot(re, im),
		}
	}
	return newSolveResult(roots)
}

func complexRoot(re, im float64) Expr {
	return AddOf(NFloat(re), MulOf(NFloat(im), I))
}

// rationalRoot finds a rational root of an exact integer-scalable
// polynomial (coefficients highest degree first) by the rational root
// theorem.
func rationalRoot(coeffs []*Num) (*Num, bool) {
	ints := scaleToIntegers(coeffs)
	if ints == nil {
		return nil, false
	}
	last := ints[len(ints)-1]
	if last.Sign() == 0 {
		return N(0), true
	}
	lead := ints[0]
	if !last.IsInt64() || !lead.IsInt64() {
		return nil, false
	}
	ps := divisors(abs64(last.Int64()))
	qs := divisors(abs64(lead.Int64()))
	if ps == nil || qs == nil {
		return nil, false
	}
	for _, q := range qs {
		for _, p := range ps {
			for _, sign := range []int64{1, -1} {
				cand := F(sign*p, q)
				if evalPoly(coeffs, cand).Sign() == 0 {
					return cand, true
				}
			}
		}
	}
	return nil, false
}

func scaleToIntegers(coeffs []*Num) []*big.Int {
	lcm := big.NewInt(1)
	for _, c := range coeffs {
		d := c.val.Denom()
		g := new(big.Int).GCD(nil, nil, lcm, d)
		lcm.Mul(lcm, new(big.Int).Quo(d, g))
	}
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		v := new(big.Rat).Mul(c.val, new(big.Rat).SetInt(lcm))
		if !v.IsInt() {
			return nil
		}
		out[i] = new(big.Int).Set(v.Num())
	}
	return out
}

const maxDivisorSearch = 1_000_000

func divisors(n int64) []int64 {
	if n == 0 || n > maxDivisorSearch*maxDivisorSearch {
		return nil
	}
	var small, large []int64
	for d := int64(1); d*d <= n; d++ {
		if n%d == 0 {
			small = append(small, d)
			if d != n/d {
				large = append(large, n/d)
			}
		}
	}
	for i := len(large) - 1; i >= 0; i-- {
		small = append(small, large[i])
	}
	return small
}

func evalPoly(coeffs []*Num, x *Num) *big.Rat {
	acc := new(big.Rat)
	for _, c := range coeffs {
		acc.Mul(acc, x.val)
		acc.Add(acc, c.val)
	}
	return acc
}

// deflate divides the polynomial by (x - r) using synthetic division.
func deflate(coeffs []*Num, r *Num) []*Num {
	out := make([]*Num, len(coeffs)-1)
	acc := N(0)
	for i := 0; i < len(coeffs)-1; i++ {
		acc = numAdd(numMul(acc, r), coeffs[i])
		out[i] = acc
	}
	return out
}

// SolveNewton scans [-searchRange, searchRange] with Newton iterations from
// evenly spaced starts and returns the distinct real roots found inside it. Zero
// arguments select the defaults (100, 1e-10, 100).
func SolveNewton(expr Expr, varName string, searchRange, tol float64, maxIter int) (SolveResult, error) {
	if searchRange <= 0 {
		searchRange = 100
	}
	if tol <= 0 {
		tol = 1e-10
	}
	if maxIter <= 0 {
		maxIter = 100
	}
	for name := range FreeSymbols(expr) {
		if name != varName {
			return SolveResult{}, fmt.Errorf("%w: free symbol %s", ErrNoConvergence, name)
		}
	}
	deriv := Diff(expr, varName)
	env := map[string]float64{}
	f := func(x float64) float64 {
		env[varName] = x
		v, ok := Float(expr, env)
		if !ok {
			return math.NaN()
		}
		return v
	}
	df := func(x float64) float64 {
		env[varName] = x
		v, ok := Float(deriv, env)
		if !ok {
			return math.NaN()
		}
		return v
	}
	var roots []float64
	for i := 0; i <= 200; i++ {
		x := -searchRange + 2*searchRange*float64(i)/200
		for iter := 0; iter < maxIter; iter++ {
			fx := f(x)
			if math.IsNaN(fx) {
				break
			}
			if math.Abs(fx) < tol {
				if math.Abs(x) > searchRange {
					break
				}
				dup := false
				for _, r := range roots {
					if math.Abs(r-x) < tol*1e4 {
						dup = true
						break
					}
				}
				if !dup {
					roots = append(roots, x)
				}
				break
			}
			dfx := df(x)
			if math.IsNaN(dfx) || math.Abs(dfx) < 1e-15 {
				break
			}
			x -= fx / dfx
			if math.Abs(x) > searchRange*10 {
				break
			}
		}
	}
	if len(roots) == 0 {
		return SolveResult{}, ErrNoConvergence
	}
	sort.Float64s(roots)
	solutions := make([]Expr, len(roots))
	for i, r := range roots {
		solutions[i] = NFloat(snap(r))
	}
	return SolveResult{Solutions: solutions}, nil
}

// snap rounds values within 1e-9 of an integer onto it.
func snap(x float64) float64 {
	if r := math.Round(x); math.Abs(x-r) < 1e-9 {
		return r + 0 // avoid -0
	}
	return x
}

// SortRoots orders roots by real part, then imaginary part. Roots that do
// not evaluate numerically keep their relative order after the rest.
func SortRoots(roots []Expr) {
	type keyed struct {
		e  Expr
		v  complex128
		ok bool
	}
	ks := make([]keyed, len(roots))
	for i, r := range roots {
		v, ok := Complex(r, nil)
		ks[i] = keyed{e: r, v: v, ok: ok}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.ok != b.ok {
			return a.ok
		}
		if !a.ok {
			return false
		}
		if real(a.v) != real(b.v) {
			return real(a.v) < real(b.v)
		}
		return imag(a.v) < imag(b.v)
	})
	for i := range ks {
		roots[i] = ks[i].e
	}
}

func dedupRoots(roots []Expr) []Expr {
	seen := map[string]bool{}
	out := roots[:0:0]
	for _, r := range roots {
		key := r.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, r)
	}
	return out
}
