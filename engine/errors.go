package engine

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("empty input")
	ErrBadVariable       = errors.New("invalid variable name")
	ErrUnknownIdentifier = errors.New("unknown identifier")
	ErrUnknownFunction   = errors.New("function not supported symbolically")
	ErrArity             = errors.New("wrong number of arguments")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrNotFinite         = errors.New("result is not finite")
	// ErrNoMethod means no solver applies to the equation set.
	ErrNoMethod = errors.New("no solution method applies")
	// ErrNoClosedForm means the integrator found no antiderivative.
	ErrNoClosedForm = errors.New("no closed form found")
	// ErrInternal wraps a recovered kernel panic.
	ErrInternal = errors.New("internal error")
)

// SolveError is returned by SolveEquations.
type SolveError struct {
	Equations string
	Variables string
	Err       error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("solve %q for %q: %v", e.Equations, e.Variables, e.Err)
}

func (e *SolveError) Unwrap() error { return e.Err }

// DerivativeError is returned by Differentiate.
type DerivativeError struct {
	Expr string
	Var  string
	Err  error
}

func (e *DerivativeError) Error() string {
	return fmt.Sprintf("derivative of %q by %q: %v", e.Expr, e.Var, e.Err)
}

func (e *DerivativeError) Unwrap() error { return e.Err }

// IntegralError is returned by Integrate.
type IntegralError struct {
	Expr         string
	Var          string
	Lower, Upper string
	Err          error
}

func (e *IntegralError) Error() string {
	if e.Lower != "" && e.Upper != "" {
		return fmt.Sprintf("integral of %q by %q over [%s, %s]: %v", e.Expr, e.Var, e.Lower, e.Upper, e.Err)
	}
	return fmt.Sprintf("integral of %q by %q: %v", e.Expr, e.Var, e.Err)
}

func (e *IntegralError) Unwrap() error { return e.Err }
