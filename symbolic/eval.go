package symbolic

import (
	"math"
	"math/cmplx"
)

// Complex evaluates e numerically with the symbols bound by env. It fails
// for unbound symbols, unknown functions and non-finite results.
func Complex(e Expr, env map[string]float64) (complex128, bool) {
	v, ok := complexEval(e, env)
	if !ok || cmplx.IsNaN(v) || cmplx.IsInf(v) {
		return 0, false
	}
	return v, true
}

// Float evaluates e to a real number; results with a non-negligible
// imaginary part fail.
func Float(e Expr, env map[string]float64) (float64, bool) {
	v, ok := Complex(e, env)
	if !ok {
		return 0, false
	}
	if math.Abs(imag(v)) > 1e-12*math.Max(1, math.Abs(real(v))) {
		return 0, false
	}
	return real(v), true
}

func complexEval(e Expr, env map[string]float64) (complex128, bool) {
	switch v := e.(type) {
	case *Num:
		return complex(v.Float64(), 0), true
	case *Sym:
		x, ok := env[v.name]
		return complex(x, 0), ok
	case *Const:
		switch v {
		case Pi:
			return math.Pi, true
		case E:
			return math.E, true
		}
		return 1i, true
	case *Add:
		var acc complex128
		for _, t := range v.terms {
			x, ok := complexEval(t, env)
			if !ok {
				return 0, false
			}
			acc += x
		}
		return acc, true
	case *Mul:
		acc := complex(1, 0)
		for _, f := range v.factors {
			x, ok := complexEval(f, env)
			if !ok {
				return 0, false
			}
			acc *= x
		}
		return acc, true
	case *Pow:
		b, ok := complexEval(v.base, env)
		if !ok {
			return 0, false
		}
		x, ok := complexEval(v.exp, env)
		if !ok {
			return 0, false
		}
		if imag(b) == 0 && imag(x) == 0 {
			rb, rx := real(b), real(x)
			if rb >= 0 || rx == math.Trunc(rx) {
				if rb == 0 && rx < 0 {
					return 0, false
				}
				return complex(math.Pow(rb, rx), 0), true
			}
		}
		if b == 0 {
			return 0, real(x) > 0
		}
		return cmplx.Pow(b, x), true
	case *Func:
		x, ok := complexEval(v.arg, env)
		if !ok {
			return 0, false
		}
		if imag(x) == 0 {
			return realFunc(v.name, real(x))
		}
		return complexFunc(v.name, x)
	}
	return 0, false
}

func realFunc(name string, x float64) (complex128, bool) {
	var r float64
	switch name {
	case "sin":
		r = math.Sin(x)
	case "cos":
		r = math.Cos(x)
	case "tan":
		r = math.Tan(x)
	case "asin":
		if x < -1 || x > 1 {
			return cmplx.Asin(complex(x, 0)), true
		}
		r = math.Asin(x)
	case "acos":
		if x < -1 || x > 1 {
			return cmplx.Acos(complex(x, 0)), true
		}
		r = math.Acos(x)
	case "atan":
		r = math.Atan(x)
	case "sinh":
		r = math.Sinh(x)
	case "cosh":
		r = math.Cosh(x)
	case "tanh":
		r = math.Tanh(x)
	case "exp":
		r = math.Exp(x)
	case "log":
		if x == 0 {
			return 0, false
		}
		if x < 0 {
			return cmplx.Log(complex(x, 0)), true
		}
		r = math.Log(x)
	case "abs":
		r = math.Abs(x)
	case "floor":
		r = math.Floor(x)
	case "ceil":
		r = math.Ceil(x)
	default:
		return 0, false
	}
	return complex(r, 0), true
}

func complexFunc(name string, x complex128) (complex128, bool) {
	switch name {
	case "sin":
		return cmplx.Sin(x), true
	case "cos":
		return cmplx.Cos(x), true
	case "tan":
		return cmplx.Tan(x), true
	case "asin":
		return cmplx.Asin(x), true
	case "acos":
		return cmplx.Acos(x), true
	case "atan":
		return cmplx.Atan(x), true
	case "sinh":
		return cmplx.Sinh(x), true
	case "cosh":
		return cmplx.Cosh(x), true
	case "tanh":
		return cmplx.Tanh(x), true
	case "exp":
		return cmplx.Exp(x), true
	case "log":
		return cmplx.Log(x), true
	case "abs":
		return complex(cmplx.Abs(x), 0), true
	}
	return 0, false
}
