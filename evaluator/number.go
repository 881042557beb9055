package evaluator

import (
	"math"
	"math/bits"
	"strconv"
)

// Number is the result of a sandboxed evaluation: either an exact int64 or a
// float64.
type Number struct {
	i     int64
	f     float64
	isInt bool
}

// Int returns an integer Number.
func Int(v int64) Number { return Number{i: v, f: float64(v), isInt: true} }

// Float returns a floating-point Number.
func Float(v float64) Number { return Number{f: v} }

func (n Number) IsInt() bool      { return n.isInt }
func (n Number) Int64() int64     { return n.i }
func (n Number) Float64() float64 { return n.f }

func (n Number) finite() bool { return n.isInt || !(math.IsNaN(n.f) || math.IsInf(n.f, 0)) }

// Format renders integers verbatim and floats with six decimals.
func (n Number) Format() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'f', 6, 64)
}

func (n Number) String() string {
	if n.isInt {
		return strconv.FormatInt(n.i, 10)
	}
	return strconv.FormatFloat(n.f, 'g', -1, 64)
}

// Integer arithmetic falls back to float64 when int64 would overflow.

func add(a, b Number) Number {
	if a.isInt && b.isInt {
		s := a.i + b.i
		if (a.i >= 0) == (b.i >= 0) && (s >= 0) != (a.i >= 0) {
			return Float(a.f + b.f)
		}
		return Int(s)
	}
	return Float(a.f + b.f)
}

func neg(a Number) Number {
	if a.isInt && a.i != math.MinInt64 {
		return Int(-a.i)
	}
	return Float(-a.f)
}

func sub(a, b Number) Number { return add(a, neg(b)) }

func mul(a, b Number) Number {
	if a.isInt && b.isInt {
		if p, ok := mulInt(a.i, b.i); ok {
			return Int(p)
		}
	}
	return Float(a.f * b.f)
}

func mulInt(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	hi, lo := bits.Mul64(uint64(absInt(a)), uint64(absInt(b)))
	if hi != 0 || lo > math.MaxInt64 || a == math.MinInt64 || b == math.MinInt64 {
		return 0, false
	}
	p := int64(lo)
	if (a < 0) != (b < 0) {
		p = -p
	}
	return p, true
}

func absInt(a int64) int64 {
	if a < 0 {
		return -a
	}
	return a
}

func div(a, b Number) (Number, error) {
	if b.f == 0 {
		return Number{}, ErrDivisionByZero
	}
	return Float(a.f / b.f), nil
}

// floorDiv and mod follow floor semantics: the remainder takes the sign of
// the divisor.
func floorDiv(a, b Number) (Number, error) {
	if b.f == 0 {
		return Number{}, ErrDivisionByZero
	}
	if a.isInt && b.isInt {
		if a.i == math.MinInt64 && b.i == -1 {
			return Float(-a.f), nil
		}
		q := a.i / b.i
		if (a.i%b.i != 0) && ((a.i < 0) != (b.i < 0)) {
			q--
		}
		return Int(q), nil
	}
	return Float(math.Floor(a.f / b.f)), nil
}

func mod(a, b Number) (Number, error) {
	if b.f == 0 {
		return Number{}, ErrDivisionByZero
	}
	if a.isInt && b.isInt {
		if b.i == -1 {
			return Int(0), nil
		}
		r := a.i % b.i
		if r != 0 && (r < 0) != (b.i < 0) {
			r += b.i
		}
		return Int(r), nil
	}
	r := math.Mod(a.f, b.f)
	if r != 0 && (r < 0) != (b.f < 0) {
		r += b.f
	}
	return Float(r), nil
}

func pow(a, b Number) (Number, error) {
	if a.isInt && b.isInt && b.i >= 0 {
		if p, ok := powInt(a.i, b.i); ok {
			return Int(p), nil
		}
		return Float(math.Pow(a.f, b.f)), nil
	}
	if a.f == 0 && b.f < 0 {
		return Number{}, ErrDivisionByZero
	}
	return Float(math.Pow(a.f, b.f)), nil
}

func powInt(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			r, ok := mulInt(result, base)
			if !ok {
				return 0, false
			}
			result = r
		}
		exp >>= 1
		if exp > 0 {
			b, ok := mulInt(base, base)
			if !ok {
				return 0, false
			}
			base = b
		}
	}
	return result, true
}
