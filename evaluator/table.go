package evaluator

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mathext"
)

// Function is a whitelisted numeric function.
type Function struct {
	Arity int
	Call  func(args []Number) (Number, error)
}

// SymbolTable is the closed set of names an evaluation may reference. It is
// built once and never mutated, so a single table can serve concurrent
// evaluations.
type SymbolTable struct {
	consts map[string]Number
	funcs  map[string]Function
}

var defaultTable = newDefaultTable()

// DefaultTable returns the process-wide table.
func DefaultTable() *SymbolTable { return defaultTable }

// Const looks up a named constant.
func (t *SymbolTable) Const(name string) (Number, bool) {
	v, ok := t.consts[name]
	return v, ok
}

// Func looks up a named function.
func (t *SymbolTable) Func(name string) (Function, bool) {
	f, ok := t.funcs[name]
	return f, ok
}

// Names lists every identifier in the table, sorted.
func (t *SymbolTable) Names() []string {
	names := make([]string, 0, len(t.consts)+len(t.funcs))
	for k := range t.consts {
		names = append(names, k)
	}
	for k := range t.funcs {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func unary(f func(float64) float64) Function {
	return Function{Arity: 1, Call: func(args []Number) (Number, error) {
		return Float(f(args[0].f)), nil
	}}
}

func newDefaultTable() *SymbolTable {
	t := &SymbolTable{
		consts: map[string]Number{
			"pi":  Float(math.Pi),
			"e":   Float(math.E),
			"E":   Float(math.E),
			"tau": Float(2 * math.Pi),
		},
		funcs: map[string]Function{
			"sin":   unary(math.Sin),
			"cos":   unary(math.Cos),
			"tan":   unary(math.Tan),
			"asin":  unary(math.Asin),
			"acos":  unary(math.Acos),
			"atan":  unary(math.Atan),
			"sinh":  unary(math.Sinh),
			"cosh":  unary(math.Cosh),
			"tanh":  unary(math.Tanh),
			"sqrt":  unary(math.Sqrt),
			"log":   unary(math.Log),
			"log10": unary(math.Log10),
			"log2":  unary(math.Log2),
			"exp":   unary(math.Exp),
			"erf":   unary(math.Erf),
			"gamma": unary(math.Gamma),
			"floor": unary(math.Floor),
			"ceil":  unary(math.Ceil),
			"abs": {Arity: 1, Call: func(args []Number) (Number, error) {
				if args[0].isInt && args[0].i < 0 {
					return neg(args[0]), nil
				}
				if args[0].isInt {
					return args[0], nil
				}
				return Float(math.Abs(args[0].f)), nil
			}},
			"pow": {Arity: 2, Call: func(args []Number) (Number, error) {
				return pow(args[0], args[1])
			}},
			"beta": {Arity: 2, Call: func(args []Number) (Number, error) {
				return Float(mathext.Beta(args[0].f, args[1].f)), nil
			}},
		},
	}

	// numpy-style aliases.
	for _, name := range []string{"pi", "e"} {
		t.consts["np."+name] = t.consts[name]
	}
	for _, name := range []string{"sin", "cos", "tan", "sinh", "cosh", "tanh", "sqrt", "log", "log10", "log2", "exp", "abs", "floor", "ceil"} {
		t.funcs["np."+name] = t.funcs[name]
	}
	t.funcs["np.arcsin"] = t.funcs["asin"]
	t.funcs["np.arccos"] = t.funcs["acos"]
	t.funcs["np.arctan"] = t.funcs["atan"]
	t.funcs["np.power"] = t.funcs["pow"]
	return t
}
