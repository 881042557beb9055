package engine

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/njchilds90/gocalc/normalize"
	"github.com/njchilds90/gocalc/parse"
	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// Text -> symbolic.Expr
// ============================================================

type builder struct {
	arity int
	build func(args []symbolic.Expr) symbolic.Expr
}

func unaryBuilder(f func(symbolic.Expr) symbolic.Expr) builder {
	return builder{arity: 1, build: func(args []symbolic.Expr) symbolic.Expr { return f(args[0]) }}
}

func logBase(x symbolic.Expr, base int64) symbolic.Expr {
	return symbolic.MulOf(symbolic.LogOf(x), symbolic.PowOf(symbolic.LogOf(symbolic.N(base)), symbolic.N(-1)))
}

// builders is the symbolic counterpart of the evaluator's symbol table.
// gamma, erf and beta have no symbolic form and are left out.
var builders = func() map[string]builder {
	m := map[string]builder{
		"sqrt": unaryBuilder(symbolic.SqrtOf),
		"log10": unaryBuilder(func(x symbolic.Expr) symbolic.Expr {
			return logBase(x, 10)
		}),
		"log2": unaryBuilder(func(x symbolic.Expr) symbolic.Expr {
			return logBase(x, 2)
		}),
		"pow": {arity: 2, build: func(args []symbolic.Expr) symbolic.Expr {
			return symbolic.PowOf(args[0], args[1])
		}},
	}
	for _, name := range symbolic.Functions {
		m[name] = unaryBuilder(func(x symbolic.Expr) symbolic.Expr { return symbolic.FuncOf(name, x) })
	}
	for _, name := range []string{"sin", "cos", "tan", "sinh", "cosh", "tanh", "sqrt", "log", "log10", "log2", "exp", "abs", "floor", "ceil"} {
		m["np."+name] = m[name]
	}
	m["np.arcsin"] = m["asin"]
	m["np.arccos"] = m["acos"]
	m["np.arctan"] = m["atan"]
	m["np.power"] = m["pow"]
	return m
}()

var constants = map[string]symbolic.Expr{
	"pi":                  symbolic.Pi,
	"np.pi":               symbolic.Pi,
	normalize.EulerSymbol: symbolic.E,
	"np.e":                symbolic.E,
	"I":                   symbolic.I,
	"tau":                 symbolic.MulOf(symbolic.N(2), symbolic.Pi),
}

// reserved reports whether name cannot be used as a variable.
func reserved(name string) bool {
	if _, ok := constants[name]; ok {
		return true
	}
	_, ok := builders[name]
	return ok || strings.HasPrefix(name, "np.")
}

// ParseExpr normalizes text for the symbolic engine and converts it into an
// expression. Unknown identifiers become symbols.
func ParseExpr(text string) (symbolic.Expr, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	node, err := parse.Parse(normalize.Symbolic(text))
	if err != nil {
		return nil, err
	}
	return toExpr(node)
}

// parseEquation reads "lhs = rhs" or a bare expression meaning expr = 0.
func parseEquation(text string) (*symbolic.Equation, error) {
	sides := strings.Split(text, "=")
	switch len(sides) {
	case 1:
		e, err := ParseExpr(text)
		if err != nil {
			return nil, err
		}
		return symbolic.Eq(e, symbolic.N(0)), nil
	case 2:
		lhs, err := ParseExpr(sides[0])
		if err != nil {
			return nil, fmt.Errorf("left side: %w", err)
		}
		rhs, err := ParseExpr(sides[1])
		if err != nil {
			return nil, fmt.Errorf("right side: %w", err)
		}
		return symbolic.Eq(lhs, rhs), nil
	}
	return nil, &parse.SyntaxError{Pos: len(sides[0]) + 1 + len(sides[1]), Msg: "more than one '=' in equation"}
}

// parseVariables splits a comma separated variable list.
func parseVariables(text string) ([]string, error) {
	var vars []string
	seen := map[string]bool{}
	for _, part := range strings.Split(text, ",") {
		name := strings.TrimSpace(part)
		if name == "" {
			continue
		}
		if !parse.IsIdentifier(name) || reserved(normalize.Symbolic(name)) {
			return nil, fmt.Errorf("%w: %q", ErrBadVariable, name)
		}
		if !seen[name] {
			seen[name] = true
			vars = append(vars, name)
		}
	}
	if len(vars) == 0 {
		return nil, fmt.Errorf("%w: none given", ErrBadVariable)
	}
	return vars, nil
}

func toExpr(n parse.Node) (symbolic.Expr, error) {
	switch n := n.(type) {
	case *parse.Number:
		if n.IsInt {
			return symbolic.N(n.Int), nil
		}
		if math.IsInf(n.Value, 0) {
			return nil, fmt.Errorf("%w: literal %s", ErrNotFinite, n.Lexeme)
		}
		if !strings.ContainsAny(n.Lexeme, ".eE") {
			// An integer too large for int64 stays exact.
			if i, ok := new(big.Int).SetString(n.Lexeme, 10); ok {
				return symbolic.NRat(new(big.Rat).SetInt(i)), nil
			}
		}
		num, ok := symbolic.NDecimal(n.Lexeme)
		if !ok {
			return nil, &parse.SyntaxError{Msg: "malformed number " + n.Lexeme}
		}
		return num, nil

	case *parse.Ident:
		if c, ok := constants[n.Name]; ok {
			return c, nil
		}
		if _, ok := builders[n.Name]; ok {
			return nil, fmt.Errorf("function %s used without arguments", n.Name)
		}
		if strings.HasPrefix(n.Name, "np.") {
			return nil, fmt.Errorf("%w %q", ErrUnknownIdentifier, n.Name)
		}
		return symbolic.S(n.Name), nil

	case *parse.Unary:
		x, err := toExpr(n.X)
		if err != nil {
			return nil, err
		}
		if n.Op == "-" {
			return symbolic.MulOf(symbolic.N(-1), x), nil
		}
		return x, nil

	case *parse.Binary:
		x, err := toExpr(n.X)
		if err != nil {
			return nil, err
		}
		y, err := toExpr(n.Y)
		if err != nil {
			return nil, err
		}
		return binary(n.Op, x, y)

	case *parse.Call:
		b, ok := builders[n.Func]
		if !ok {
			return nil, fmt.Errorf("%w %q", ErrUnknownFunction, n.Func)
		}
		args := make([]symbolic.Expr, len(n.Args))
		for i, a := range n.Args {
			e, err := toExpr(a)
			if err != nil {
				return nil, err
			}
			args[i] = e
		}
		// log(x, b) is the change of base.
		if (n.Func == "log" || n.Func == "np.log") && len(args) == 2 {
			return symbolic.MulOf(symbolic.LogOf(args[0]), symbolic.PowOf(symbolic.LogOf(args[1]), symbolic.N(-1))), nil
		}
		if len(args) != b.arity {
			return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, n.Func, b.arity, len(args))
		}
		return b.build(args), nil
	}
	return nil, fmt.Errorf("unsupported node %T", n)
}

func isZero(e symbolic.Expr) bool {
	n, ok := e.(*symbolic.Num)
	return ok && n.IsZero()
}

func binary(op string, x, y symbolic.Expr) (symbolic.Expr, error) {
	neg := func(e symbolic.Expr) symbolic.Expr { return symbolic.MulOf(symbolic.N(-1), e) }
	switch op {
	case "+":
		return symbolic.AddOf(x, y), nil
	case "-":
		return symbolic.AddOf(x, neg(y)), nil
	case "*":
		return symbolic.MulOf(x, y), nil
	case "**":
		if isZero(x) {
			if n, ok := y.(*symbolic.Num); ok && n.IsNegative() {
				return nil, ErrDivisionByZero
			}
		}
		return symbolic.PowOf(x, y), nil
	}
	if isZero(y) {
		return nil, ErrDivisionByZero
	}
	quo := symbolic.MulOf(x, symbolic.PowOf(y, symbolic.N(-1)))
	switch op {
	case "/":
		return quo, nil
	case "//":
		return symbolic.FloorOf(quo), nil
	case "%":
		return symbolic.AddOf(x, neg(symbolic.MulOf(y, symbolic.FloorOf(quo)))), nil
	}
	return nil, fmt.Errorf("unsupported operator %q", op)
}
