// Package symbolic is the trusted algebra kernel behind the calculator's
// solve, differentiate and integrate operations.
//
// Design goals:
//   - Exact rational arithmetic (math/big.Rat), with decimal inputs tracked
//     as inexact and folded numerically
//   - Deterministic simplification and stable, sympy-like output
//   - JSON and LaTeX renderings for tool responses
//
// Expressions are immutable trees. Constructors (AddOf, MulOf, PowOf, ...)
// return simplified results.
package symbolic

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

type Expr interface {
	Simplify() Expr
	String() string
	LaTeX() string
	Sub(varName string, value Expr) Expr
	Diff(varName string) Expr
	Eval() (*Num, bool)
	Equal(other Expr) bool
	exprType() string
	toJSON() map[string]interface{}
}

// ============================================================
// Num: rational number, optionally marked inexact
// ============================================================

type Num struct {
	val     *big.Rat
	inexact bool
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }
func F(p, q int64) *Num {
	if q == 0 {
		panic("symbolic: denominator is zero")
	}
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(p), big.NewInt(q))}
}

// NFloat returns an inexact number. f must be finite.
func NFloat(f float64) *Num {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		panic(fmt.Sprintf("symbolic: non-finite value %v", f))
	}
	return &Num{val: new(big.Rat).SetFloat64(f), inexact: true}
}

// NDecimal parses a decimal literal such as "0.25" or "1e-3" into an
// inexact number holding its exact decimal value.
func NDecimal(s string) (*Num, bool) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, false
	}
	return &Num{val: r, inexact: true}, true
}

// NRat returns an exact number with the value of r.
func NRat(r *big.Rat) *Num { return &Num{val: new(big.Rat).Set(r)} }

func (n *Num) Simplify() Expr        { return n }
func (n *Num) Sub(string, Expr) Expr { return n }
func (n *Num) Diff(string) Expr      { return N(0) }
func (n *Num) Eval() (*Num, bool)    { return n, true }
func (n *Num) Equal(other Expr) bool {
	o, ok := other.(*Num)
	return ok && n.inexact == o.inexact && n.val.Cmp(o.val) == 0
}
func (n *Num) exprType() string  { return "num" }
func (n *Num) Float64() float64  { f, _ := n.val.Float64(); return f }
func (n *Num) IsZero() bool      { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool       { return n.val.Cmp(ratOne) == 0 }
func (n *Num) IsNegOne() bool    { return n.val.Cmp(ratNegOne) == 0 }
func (n *Num) IsInteger() bool   { return n.val.IsInt() }
func (n *Num) IsExact() bool     { return !n.inexact }
func (n *Num) Rat() *big.Rat     { return new(big.Rat).Set(n.val) }
func (n *Num) IsPositive() bool  { return n.val.Sign() > 0 }
func (n *Num) IsNegative() bool  { return n.val.Sign() < 0 }
func (n *Num) exactOne() bool    { return !n.inexact && n.IsOne() }
func (n *Num) exactInt() bool    { return !n.inexact && n.val.IsInt() }
func (n *Num) int64() (int64, bool) {
	if !n.val.IsInt() || !n.val.Num().IsInt64() {
		return 0, false
	}
	return n.val.Num().Int64(), true
}

var (
	ratOne    = big.NewRat(1, 1)
	ratNegOne = big.NewRat(-1, 1)
	ratHalf   = big.NewRat(1, 2)
)

func (n *Num) String() string {
	if n.inexact {
		s := strconv.FormatFloat(n.Float64(), 'g', 15, 64)
		if !strings.ContainsAny(s, ".e") {
			s += ".0"
		}
		return s
	}
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.inexact || n.val.IsInt() {
		return n.String()
	}
	sign := ""
	v := new(big.Rat).Set(n.val)
	if v.Sign() < 0 {
		sign = "-"
		v.Neg(v)
	}
	return fmt.Sprintf("%s\\frac{%s}{%s}", sign, v.Num().String(), v.Denom().String())
}

func (n *Num) toJSON() map[string]interface{} {
	m := map[string]interface{}{"type": "num", "value": n.String()}
	if n.inexact {
		m["inexact"] = true
	}
	return m
}

func numAdd(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Add(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numSub(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Sub(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numMul(a, b *Num) *Num {
	return &Num{val: new(big.Rat).Mul(a.val, b.val), inexact: a.inexact || b.inexact}
}
func numNeg(a *Num) *Num { return &Num{val: new(big.Rat).Neg(a.val), inexact: a.inexact} }
func numRecip(a *Num) *Num {
	if a.IsZero() {
		panic("symbolic: division by zero")
	}
	return &Num{val: new(big.Rat).Inv(a.val), inexact: a.inexact}
}
func numDiv(a, b *Num) *Num { return numMul(a, numRecip(b)) }
func numAbs(a *Num) *Num {
	r := new(big.Rat).Set(a.val)
	if r.Sign() < 0 {
		r.Neg(r)
	}
	return &Num{val: r, inexact: a.inexact}
}
func numCmp(a, b *Num) int { return a.val.Cmp(b.val) }

// ============================================================
// Sym: symbolic variable
// ============================================================

type Sym struct{ name string }

func S(name string) *Sym      { return &Sym{name: name} }
func (s *Sym) Simplify() Expr { return s }
func (s *Sym) String() string { return s.name }
func (s *Sym) LaTeX() string {
	if len(s.name) > 1 {
		return "\\mathrm{" + strings.ReplaceAll(s.name, "_", "\\_") + "}"
	}
	return s.name
}
func (s *Sym) Eval() (*Num, bool)    { return nil, false }
func (s *Sym) Equal(other Expr) bool { o, ok := other.(*Sym); return ok && s.name == o.name }
func (s *Sym) exprType() string      { return "sym" }
func (s *Sym) Name() string          { return s.name }
func (s *Sym) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "sym", "name": s.name}
}
func (s *Sym) Sub(varName string, value Expr) Expr {
	if s.name == varName {
		return value
	}
	return s
}
func (s *Sym) Diff(varName string) Expr {
	if s.name == varName {
		return N(1)
	}
	return N(0)
}

// ============================================================
// Const: pi, Euler's number E and the imaginary unit I
// ============================================================

type Const struct{ name string }

var (
	Pi = &Const{name: "pi"}
	E  = &Const{name: "E"}
	I  = &Const{name: "I"}
)

func (c *Const) Simplify() Expr        { return c }
func (c *Const) String() string        { return c.name }
func (c *Const) Sub(string, Expr) Expr { return c }
func (c *Const) Diff(string) Expr      { return N(0) }
func (c *Const) Equal(other Expr) bool { o, ok := other.(*Const); return ok && c.name == o.name }
func (c *Const) exprType() string      { return "const" }
func (c *Const) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "const", "name": c.name}
}

func (c *Const) LaTeX() string {
	switch c {
	case Pi:
		return "\\pi"
	case E:
		return "e"
	}
	return "i"
}

func (c *Const) Eval() (*Num, bool) {
	switch c {
	case Pi:
		return NFloat(math.Pi), true
	case E:
		return NFloat(math.E), true
	}
	return nil, false
}

// ============================================================
// Equation
// ============================================================

type Equation struct{ LHS, RHS Expr }

func Eq(lhs, rhs Expr) *Equation { return &Equation{LHS: lhs, RHS: rhs} }
func (e *Equation) String() string {
	return e.LHS.String() + " = " + e.RHS.String()
}
func (e *Equation) LaTeX() string { return e.LHS.LaTeX() + " = " + e.RHS.LaTeX() }

// Residual returns LHS - RHS, simplified.
func (e *Equation) Residual() Expr {
	return AddOf(e.LHS, MulOf(N(-1), e.RHS))
}

// ============================================================
// Top-level convenience functions
// ============================================================

func Simplify(e Expr) Expr { return e.Simplify() }
func String(e Expr) string { return e.String() }
func LaTeX(e Expr) string  { return e.LaTeX() }

func Sub(expr Expr, varName string, value Expr) Expr {
	return expr.Sub(varName, value).Simplify()
}

func Diff(expr Expr, varName string) Expr {
	return expr.Diff(varName).Simplify()
}

func DiffN(expr Expr, varName string, n int) Expr {
	result := expr
	for i := 0; i < n; i++ {
		result = Diff(result, varName)
	}
	return result
}

func isNumEqual(e Expr, v int64) bool {
	n, ok := e.(*Num)
	return ok && n.val.Cmp(big.NewRat(v, 1)) == 0
}
