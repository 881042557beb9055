package symbolic

import (
	"math/big"
)

// ============================================================
// Func: named function applications
// ============================================================

type Func struct {
	name string
	arg  Expr
}

// Functions lists the function names the kernel understands.
var Functions = []string{
	"sin", "cos", "tan", "asin", "acos", "atan",
	"sinh", "cosh", "tanh", "exp", "log", "abs", "floor", "ceil",
}

func funcOf(name string, arg Expr) *Func { return &Func{name: name, arg: arg} }

// FuncOf applies a named function from Functions to arg.
func FuncOf(name string, arg Expr) Expr { return funcOf(name, arg).Simplify() }

func SinOf(arg Expr) Expr   { return funcOf("sin", arg).Simplify() }
func CosOf(arg Expr) Expr   { return funcOf("cos", arg).Simplify() }
func TanOf(arg Expr) Expr   { return funcOf("tan", arg).Simplify() }
func ExpOf(arg Expr) Expr   { return funcOf("exp", arg).Simplify() }
func LogOf(arg Expr) Expr   { return funcOf("log", arg).Simplify() }
func AbsOf(arg Expr) Expr   { return funcOf("abs", arg).Simplify() }
func AsinOf(arg Expr) Expr  { return funcOf("asin", arg).Simplify() }
func AcosOf(arg Expr) Expr  { return funcOf("acos", arg).Simplify() }
func AtanOf(arg Expr) Expr  { return funcOf("atan", arg).Simplify() }
func SinhOf(arg Expr) Expr  { return funcOf("sinh", arg).Simplify() }
func CoshOf(arg Expr) Expr  { return funcOf("cosh", arg).Simplify() }
func TanhOf(arg Expr) Expr  { return funcOf("tanh", arg).Simplify() }
func FloorOf(arg Expr) Expr { return funcOf("floor", arg).Simplify() }
func CeilOf(arg Expr) Expr  { return funcOf("ceil", arg).Simplify() }

func (f *Func) Simplify() Expr {
	arg := f.arg.Simplify()
	if n, ok := arg.(*Num); ok && n.inexact {
		if v, ok := Float(funcOf(f.name, n), nil); ok {
			return NFloat(v)
		}
	}
	if v, ok := f.special(arg); ok {
		return v
	}
	return foldInexact(&Func{name: f.name, arg: arg})
}

// special returns exact values at well-known points.
func (f *Func) special(arg Expr) (Expr, bool) {
	if c, ok := piMultiple(arg); ok {
		twice := numMul(c, N(2))
		if twice.IsInteger() {
			k := new(big.Int).Mod(twice.val.Num(), big.NewInt(4)).Int64()
			switch f.name {
			case "sin":
				return N([]int64{0, 1, 0, -1}[k]), true
			case "cos":
				return N([]int64{1, 0, -1, 0}[k]), true
			case "tan":
				if k%2 == 0 {
					return N(0), true
				}
			}
		}
	}
	switch f.name {
	case "asin", "atan", "sinh", "tanh":
		if isNumEqual(arg, 0) {
			return N(0), true
		}
	case "cosh":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
	case "acos":
		if isNumEqual(arg, 1) {
			return N(0), true
		}
	case "log":
		if isNumEqual(arg, 1) {
			return N(0), true
		}
		if arg == Expr(E) {
			return N(1), true
		}
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg, true
		}
	case "exp":
		if isNumEqual(arg, 0) {
			return N(1), true
		}
		if isNumEqual(arg, 1) {
			return E, true
		}
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg, true
		}
	case "abs":
		if n, ok := arg.(*Num); ok {
			return numAbs(n), true
		}
		if m, ok := arg.(*Mul); ok {
			if coeff, ok2 := m.factors[0].(*Num); ok2 && coeff.IsNegative() {
				return AbsOf(mulRaw(numNeg(coeff), m.factors[1:])), true
			}
		}
	case "floor", "ceil":
		if n, ok := arg.(*Num); ok {
			q := new(big.Int).Quo(n.val.Num(), n.val.Denom())
			r := NRat(new(big.Rat).SetInt(q))
			if n.IsInteger() {
				return n, true
			}
			// Quo truncates toward zero.
			if f.name == "floor" && n.IsNegative() {
				return numAdd(r, N(-1)), true
			}
			if f.name == "ceil" && n.IsPositive() {
				return numAdd(r, N(1)), true
			}
			return r, true
		}
	}
	return nil, false
}

// piMultiple reports c when e is c*pi for an exact rational c.
func piMultiple(e Expr) (*Num, bool) {
	switch v := e.(type) {
	case *Num:
		if v.IsZero() {
			return N(0), true
		}
	case *Const:
		if v == Pi {
			return N(1), true
		}
	case *Mul:
		if len(v.factors) == 2 && v.factors[1] == Expr(Pi) {
			if c, ok := v.factors[0].(*Num); ok && !c.inexact {
				return c, true
			}
		}
	}
	return nil, false
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

func (f *Func) LaTeX() string {
	switch f.name {
	case "sin", "cos", "tan", "exp", "log", "sinh", "cosh", "tanh":
		return "\\" + f.name + "\\left(" + f.arg.LaTeX() + "\\right)"
	case "asin":
		return "\\arcsin\\left(" + f.arg.LaTeX() + "\\right)"
	case "acos":
		return "\\arccos\\left(" + f.arg.LaTeX() + "\\right)"
	case "atan":
		return "\\arctan\\left(" + f.arg.LaTeX() + "\\right)"
	case "abs":
		return "\\left|" + f.arg.LaTeX() + "\\right|"
	case "floor":
		return "\\lfloor " + f.arg.LaTeX() + " \\rfloor"
	case "ceil":
		return "\\lceil " + f.arg.LaTeX() + " \\rceil"
	}
	return "\\operatorname{" + f.name + "}\\left(" + f.arg.LaTeX() + "\\right)"
}

func (f *Func) Sub(varName string, value Expr) Expr {
	return funcOf(f.name, f.arg.Sub(varName, value)).Simplify()
}

func (f *Func) Diff(varName string) Expr {
	du := f.arg.Diff(varName)
	var outer Expr
	switch f.name {
	case "sin":
		outer = CosOf(f.arg)
	case "cos":
		outer = MulOf(N(-1), SinOf(f.arg))
	case "tan":
		outer = AddOf(N(1), PowOf(TanOf(f.arg), N(2)))
	case "exp":
		outer = ExpOf(f.arg)
	case "log":
		outer = PowOf(f.arg, N(-1))
	case "asin":
		outer = PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2))
	case "acos":
		outer = MulOf(N(-1), PowOf(AddOf(N(1), MulOf(N(-1), PowOf(f.arg, N(2)))), F(-1, 2)))
	case "atan":
		outer = PowOf(AddOf(N(1), PowOf(f.arg, N(2))), N(-1))
	case "sinh":
		outer = CoshOf(f.arg)
	case "cosh":
		outer = SinhOf(f.arg)
	case "tanh":
		outer = AddOf(N(1), MulOf(N(-1), PowOf(TanhOf(f.arg), N(2))))
	case "abs":
		outer = MulOf(f.arg, PowOf(AbsOf(f.arg), N(-1)))
	case "floor", "ceil":
		return N(0)
	default:
		return MulOf(funcOf("D["+f.name+"]", f.arg), du)
	}
	return MulOf(outer, du)
}

func (f *Func) Eval() (*Num, bool) {
	v, ok := Float(f, nil)
	if !ok {
		return nil, false
	}
	return NFloat(v), true
}

func (f *Func) Equal(other Expr) bool {
	o, ok := other.(*Func)
	return ok && f.name == o.name && f.arg.Equal(o.arg)
}

func (f *Func) exprType() string { return "func" }
func (f *Func) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "func", "name": f.name, "arg": f.arg.toJSON()}
}
func (f *Func) FuncName() string { return f.name }
func (f *Func) Arg() Expr        { return f.arg }
