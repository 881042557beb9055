package symbolic

import (
	"sort"
)

// ============================================================
// Free Symbols
// ============================================================

func FreeSymbols(e Expr) map[string]struct{} {
	result := map[string]struct{}{}
	collectSymbols(e, result)
	return result
}

func collectSymbols(e Expr, out map[string]struct{}) {
	switch v := e.(type) {
	case *Sym:
		out[v.name] = struct{}{}
	case *Add:
		for _, t := range v.terms {
			collectSymbols(t, out)
		}
	case *Mul:
		for _, f := range v.factors {
			collectSymbols(f, out)
		}
	case *Pow:
		collectSymbols(v.base, out)
		collectSymbols(v.exp, out)
	case *Func:
		collectSymbols(v.arg, out)
	}
}

// Symbols returns the free symbol names of e, sorted.
func Symbols(e Expr) []string {
	set := FreeSymbols(e)
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Has reports whether varName occurs in e.
func Has(e Expr, varName string) bool {
	_, ok := FreeSymbols(e)[varName]
	return ok
}

// ============================================================
// Expansion
// ============================================================

func Expand(e Expr) Expr { return expandExpr(e.Simplify()).Simplify() }

func expandExpr(e Expr) Expr {
	switch v := e.(type) {
	case *Mul:
		expanded := make([]Expr, len(v.factors))
		for i, f := range v.factors {
			expanded[i] = expandExpr(f)
		}
		for i, f := range expanded {
			if a, ok := f.(*Add); ok {
				rest := make([]Expr, 0, len(expanded)-1)
				for j, ef := range expanded {
					if j != i {
						rest = append(rest, ef)
					}
				}
				terms := make([]Expr, len(a.terms))
				for k, t := range a.terms {
					terms[k] = expandExpr(MulOf(append([]Expr{t}, rest...)...))
				}
				return expandExpr(AddOf(terms...))
			}
		}
		return MulOf(expanded...)
	case *Add:
		newTerms := make([]Expr, len(v.terms))
		for i, t := range v.terms {
			newTerms[i] = expandExpr(t)
		}
		return AddOf(newTerms...)
	case *Pow:
		base := expandExpr(v.base)
		if n, ok := v.exp.(*Num); ok && n.exactInt() {
			exp, _ := n.int64()
			if _, isAdd := base.(*Add); isAdd && exp >= 2 && exp <= 16 {
				result := base
				for i := int64(1); i < exp; i++ {
					result = distribute(result, base)
				}
				return result
			}
		}
		return PowOf(base, expandExpr(v.exp))
	case *Func:
		return FuncOf(v.name, expandExpr(v.arg))
	}
	return e
}

// distribute multiplies two expressions term by term. Repeated factors are
// never handed to MulOf together, which would fold them back into a power.
func distribute(a, b Expr) Expr {
	as, bs := addends(a), addends(b)
	terms := make([]Expr, 0, len(as)*len(bs))
	for _, x := range as {
		for _, y := range bs {
			terms = append(terms, MulOf(x, y))
		}
	}
	return AddOf(terms...)
}

func addends(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// ============================================================
// Polynomial utilities
// ============================================================

// Poly is a polynomial in one variable: Coeffs[d] is the coefficient of
// var**d. Coefficients are free of the variable but may hold other symbols.
type Poly struct {
	Var    string
	Coeffs map[int]Expr
}

// Degree returns the highest power with a non-zero coefficient.
func (p Poly) Degree() int {
	deg := 0
	for d, c := range p.Coeffs {
		if d > deg && !isNumEqual(c, 0) {
			deg = d
		}
	}
	return deg
}

// Coeff returns the coefficient of var**d, zero when absent.
func (p Poly) Coeff(d int) Expr {
	if c, ok := p.Coeffs[d]; ok {
		return c
	}
	return N(0)
}

// Numeric returns the coefficients, highest degree first, when all of them
// are numbers.
func (p Poly) Numeric() ([]*Num, bool) {
	deg := p.Degree()
	out := make([]*Num, deg+1)
	for d := 0; d <= deg; d++ {
		n, ok := p.Coeff(d).(*Num)
		if !ok {
			return nil, false
		}
		out[deg-d] = n
	}
	return out, true
}

// AsPoly expands expr and reads it as a polynomial in varName. It fails when
// the variable appears anywhere other than in non-negative integer powers.
func AsPoly(expr Expr, varName string) (Poly, bool) {
	p := Poly{Var: varName, Coeffs: map[int]Expr{}}
	e := Expand(expr)
	terms := []Expr{e}
	if a, ok := e.(*Add); ok {
		terms = a.terms
	}
	for _, t := range terms {
		factors := []Expr{t}
		if m, ok := t.(*Mul); ok {
			factors = m.factors
		}
		deg := 0
		var rest []Expr
		for _, f := range factors {
			if d, ok := varPower(f, varName); ok {
				deg += d
				continue
			}
			if Has(f, varName) {
				return Poly{}, false
			}
			rest = append(rest, f)
		}
		var coeff Expr = N(1)
		if len(rest) > 0 {
			coeff = MulOf(rest...)
		}
		if existing, ok := p.Coeffs[deg]; ok {
			p.Coeffs[deg] = AddOf(existing, coeff)
		} else {
			p.Coeffs[deg] = coeff
		}
	}
	return p, true
}

func varPower(f Expr, varName string) (int, bool) {
	switch v := f.(type) {
	case *Sym:
		if v.name == varName {
			return 1, true
		}
	case *Pow:
		if sym, ok := v.base.(*Sym); ok && sym.name == varName {
			if n, ok := v.exp.(*Num); ok && n.exactInt() && n.IsPositive() {
				if d, ok := n.int64(); ok && d <= 64 {
					return int(d), true
				}
			}
		}
	}
	return 0, false
}

// Degree returns the polynomial degree of expr in varName, or -1 when expr
// is not a polynomial in it.
func Degree(expr Expr, varName string) int {
	p, ok := AsPoly(expr, varName)
	if !ok {
		return -1
	}
	return p.Degree()
}

// Linear reads expr as a*var + b.
func Linear(expr Expr, varName string) (a, b Expr, ok bool) {
	p, ok := AsPoly(expr, varName)
	if !ok || p.Degree() != 1 {
		return nil, nil, false
	}
	return p.Coeff(1), p.Coeff(0), true
}
