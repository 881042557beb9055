// Package evaluator computes numeric results for calculator input without
// executing anything but arithmetic.
//
// Input is normalized, parsed into a parse.Node tree and interpreted against
// a SymbolTable. The interpreter only knows numbers, the table's constants
// and functions, and the arithmetic operators; there is no path from an
// expression to I/O, reflection or the host environment.
package evaluator

import (
	"errors"
	"fmt"

	"github.com/njchilds90/gocalc/normalize"
	"github.com/njchilds90/gocalc/parse"
)

var (
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrUnknownFunction   = errors.New("unknown function")
	ErrArity             = errors.New("wrong number of arguments")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrDomain            = errors.New("math domain error")
)

// EvaluationError wraps every failure of Evaluate.
type EvaluationError struct {
	Expr string
	Err  error
}

func (e *EvaluationError) Error() string { return "evaluation error: " + e.Err.Error() }
func (e *EvaluationError) Unwrap() error { return e.Err }

// Evaluate evaluates text with the default symbol table.
func Evaluate(text string) (Number, error) {
	return defaultTable.Evaluate(text)
}

// Evaluate normalizes, parses and interprets text.
func (t *SymbolTable) Evaluate(text string) (Number, error) {
	node, err := parse.Parse(normalize.Normalize(text))
	if err != nil {
		return Number{}, &EvaluationError{Expr: text, Err: err}
	}
	v, err := t.eval(node)
	if err != nil {
		return Number{}, &EvaluationError{Expr: text, Err: err}
	}
	if !v.finite() {
		return Number{}, &EvaluationError{Expr: text, Err: fmt.Errorf("%w: result is %v", ErrDomain, v.f)}
	}
	return v, nil
}

func (t *SymbolTable) eval(n parse.Node) (Number, error) {
	switch n := n.(type) {
	case *parse.Number:
		if n.IsInt {
			return Int(n.Int), nil
		}
		return Float(n.Value), nil

	case *parse.Ident:
		if v, ok := t.consts[n.Name]; ok {
			return v, nil
		}
		if _, ok := t.funcs[n.Name]; ok {
			return Number{}, fmt.Errorf("function %s used without arguments", n.Name)
		}
		return Number{}, fmt.Errorf("%w %q", ErrUnknownIdentifier, n.Name)

	case *parse.Unary:
		x, err := t.eval(n.X)
		if err != nil {
			return Number{}, err
		}
		if n.Op == "-" {
			return neg(x), nil
		}
		return x, nil

	case *parse.Binary:
		x, err := t.eval(n.X)
		if err != nil {
			return Number{}, err
		}
		y, err := t.eval(n.Y)
		if err != nil {
			return Number{}, err
		}
		return binary(n.Op, x, y)

	case *parse.Call:
		fn, ok := t.funcs[n.Func]
		if !ok {
			return Number{}, fmt.Errorf("%w %q", ErrUnknownFunction, n.Func)
		}
		if len(n.Args) != fn.Arity {
			return Number{}, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, n.Func, fn.Arity, len(n.Args))
		}
		args := make([]Number, len(n.Args))
		for i, a := range n.Args {
			v, err := t.eval(a)
			if err != nil {
				return Number{}, err
			}
			args[i] = v
		}
		v, err := fn.Call(args)
		if err != nil {
			return Number{}, fmt.Errorf("%s: %w", n.Func, err)
		}
		if !v.finite() {
			return Number{}, fmt.Errorf("%w in %s", ErrDomain, n)
		}
		return v, nil
	}
	return Number{}, fmt.Errorf("unsupported node %T", n)
}

func binary(op string, x, y Number) (Number, error) {
	switch op {
	case "+":
		return add(x, y), nil
	case "-":
		return sub(x, y), nil
	case "*":
		return mul(x, y), nil
	case "/":
		return div(x, y)
	case "//":
		return floorDiv(x, y)
	case "%":
		return mod(x, y)
	case "**":
		return pow(x, y)
	}
	return Number{}, fmt.Errorf("unsupported operator %q", op)
}
