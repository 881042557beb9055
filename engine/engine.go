// Package engine adapts calculator text to the symbolic kernel: it parses
// equations, derivatives and integrals, picks a solving method and reports
// failures as typed errors.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/njchilds90/gocalc/parse"
	"github.com/njchilds90/gocalc/symbolic"
)

// DefaultTimeout bounds every symbolic operation unless Options says otherwise.
const DefaultTimeout = 5 * time.Second

type Options struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// Engine is safe for concurrent use.
type Engine struct {
	timeout time.Duration
	log     *slog.Logger
}

func New(opts Options) *Engine {
	e := &Engine{timeout: opts.Timeout, log: opts.Logger}
	if e.timeout <= 0 {
		e.timeout = DefaultTimeout
	}
	if e.log == nil {
		e.log = slog.Default()
	}
	return e
}

// Timeout returns the per-operation deadline.
func (e *Engine) Timeout() time.Duration { return e.timeout }

// run executes fn under ctx and the engine timeout. A panic inside the
// kernel is returned as ErrInternal. On timeout the goroutine is abandoned;
// kernel loops are bounded so it finishes on its own.
func run[T any](ctx context.Context, timeout time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- result{err: fmt.Errorf("%w: %v", ErrInternal, r)}
			}
		}()
		v, err := fn()
		ch <- result{v: v, err: err}
	}()
	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// ============================================================
// Solving
// ============================================================

// SolveEquations solves a comma separated list of equations for a comma
// separated list of variables. A segment without "=" means segment = 0.
func (e *Engine) SolveEquations(ctx context.Context, eqText, varText string) (Solution, error) {
	sol, err := run(ctx, e.timeout, func() (Solution, error) {
		return e.solve(eqText, varText)
	})
	if err != nil {
		return Solution{}, &SolveError{Equations: eqText, Variables: varText, Err: err}
	}
	return sol, nil
}

func (e *Engine) solve(eqText, varText string) (Solution, error) {
	if strings.TrimSpace(eqText) == "" {
		return Solution{}, ErrEmptyInput
	}
	vars, err := parseVariables(varText)
	if err != nil {
		return Solution{}, err
	}
	var residuals []symbolic.Expr
	for i, part := range parse.SplitTopLevel(eqText, ',') {
		if strings.TrimSpace(part) == "" {
			continue
		}
		eq, err := parseEquation(part)
		if err != nil {
			return Solution{}, fmt.Errorf("equation %d: %w", i+1, err)
		}
		residuals = append(residuals, eq.Residual())
	}
	if len(residuals) == 0 {
		return Solution{}, ErrEmptyInput
	}

	if len(residuals) == 1 && len(vars) == 1 {
		res, err := symbolic.Solve(residuals[0], vars[0])
		if err != nil {
			return Solution{}, classify(err)
		}
		e.log.Debug("solved equation", "var", vars[0], "roots", len(res.Solutions), "exact", res.ExactForm)
		return Solution{Variables: vars, Roots: res.Solutions, Exact: res.ExactForm}, nil
	}
	return e.solveSystem(residuals, vars)
}

func (e *Engine) solveSystem(residuals []symbolic.Expr, vars []string) (Solution, error) {
	sol := Solution{Variables: vars, System: true, Exact: true}
	exact, err := symbolic.SolveLinearSystem(residuals, vars)
	switch {
	case err == nil:
		sol.add(vars, exact)
		e.log.Debug("solved linear system", "vars", len(vars))
		return sol, nil
	case errors.Is(err, symbolic.ErrInconsistent):
		return sol, nil
	case !errors.Is(err, symbolic.ErrNotLinear):
		return Solution{}, classify(err)
	}

	if sets, err := symbolic.SolveTriangular(residuals, vars); err == nil {
		for _, set := range sets {
			sol.add(vars, set)
		}
		e.log.Debug("solved system by substitution", "vars", len(vars), "sets", len(sets))
		return sol, nil
	}

	approx, err := symbolic.SolveNewtonSystem(residuals, vars)
	if err != nil {
		return Solution{}, classify(err)
	}
	values := make(map[string]symbolic.Expr, len(vars))
	for _, v := range vars {
		values[v] = symbolic.NFloat(approx[v])
	}
	sol.add(vars, values)
	e.log.Debug("solved system numerically", "vars", len(vars))
	return sol, nil
}

// add appends one solution set in variable order.
func (s *Solution) add(vars []string, values map[string]symbolic.Expr) {
	set := make([]Assignment, len(vars))
	for i, v := range vars {
		set[i] = Assignment{Name: v, Value: values[v]}
		if !symbolic.IsExact(values[v]) {
			s.Exact = false
		}
	}
	s.Sets = append(s.Sets, set)
}

// classify maps kernel failures onto the engine's sentinels while keeping
// the kernel error in the chain.
func classify(err error) error {
	switch {
	case errors.Is(err, symbolic.ErrNoConvergence),
		errors.Is(err, symbolic.ErrSymbolicDegree),
		errors.Is(err, symbolic.ErrNotPolynomial):
		return fmt.Errorf("%w: %w", ErrNoMethod, err)
	}
	return err
}

// ============================================================
// Calculus
// ============================================================

// Differentiate returns the simplified first derivative of funcText.
func (e *Engine) Differentiate(ctx context.Context, funcText, varName string) (symbolic.Expr, error) {
	d, err := run(ctx, e.timeout, func() (symbolic.Expr, error) {
		v, err := singleVariable(varName)
		if err != nil {
			return nil, err
		}
		f, err := ParseExpr(funcText)
		if err != nil {
			return nil, err
		}
		return symbolic.Diff(f, v), nil
	})
	if err != nil {
		return nil, &DerivativeError{Expr: funcText, Var: varName, Err: err}
	}
	return d, nil
}

// Integrate computes the indefinite integral of funcText, or the definite
// integral when both bounds are given.
func (e *Engine) Integrate(ctx context.Context, funcText, varName, lower, upper string) (IntegralResult, error) {
	definite := strings.TrimSpace(lower) != "" && strings.TrimSpace(upper) != ""
	r, err := run(ctx, e.timeout, func() (IntegralResult, error) {
		v, err := singleVariable(varName)
		if err != nil {
			return IntegralResult{}, err
		}
		f, err := ParseExpr(funcText)
		if err != nil {
			return IntegralResult{}, err
		}
		if !definite {
			anti, ok := symbolic.Integrate(f, v)
			if !ok {
				return IntegralResult{}, ErrNoClosedForm
			}
			return IntegralResult{Value: anti}, nil
		}
		return e.definite(f, v, lower, upper)
	})
	if err != nil {
		ie := &IntegralError{Expr: funcText, Var: varName, Err: err}
		if definite {
			ie.Lower, ie.Upper = lower, upper
		}
		return IntegralResult{}, ie
	}
	return r, nil
}

func (e *Engine) definite(f symbolic.Expr, v, lower, upper string) (IntegralResult, error) {
	lo, err := ParseExpr(lower)
	if err != nil {
		return IntegralResult{}, fmt.Errorf("lower bound: %w", err)
	}
	hi, err := ParseExpr(upper)
	if err != nil {
		return IntegralResult{}, fmt.Errorf("upper bound: %w", err)
	}
	val, numeric, err := symbolic.DefiniteIntegrate(f, v, lo, hi)
	switch {
	case errors.Is(err, symbolic.ErrNoAntiderivative):
		return IntegralResult{}, ErrNoClosedForm
	case errors.Is(err, symbolic.ErrDivergent):
		return IntegralResult{}, fmt.Errorf("%w: %w", ErrNotFinite, err)
	case err != nil:
		return IntegralResult{}, classify(err)
	}
	if len(symbolic.Symbols(val)) == 0 {
		if _, finite := symbolic.Float(val, nil); !finite {
			return IntegralResult{}, ErrNotFinite
		}
	}
	if numeric {
		e.log.Debug("definite integral by quadrature", "var", v)
	}
	return IntegralResult{Value: val, Definite: true, Numeric: numeric}, nil
}

func singleVariable(name string) (string, error) {
	vars, err := parseVariables(name)
	if err != nil {
		return "", err
	}
	if len(vars) != 1 {
		return "", fmt.Errorf("%w: want one variable, got %d", ErrBadVariable, len(vars))
	}
	return vars[0], nil
}
