package engine_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/gocalc/engine"
	"github.com/njchilds90/gocalc/parse"
	"github.com/njchilds90/gocalc/symbolic"
)

func newEngine() *engine.Engine { return engine.New(engine.Options{}) }

func TestNew_DefaultTimeout(t *testing.T) {
	assert.Equal(t, engine.DefaultTimeout, newEngine().Timeout())
}

func TestSolveEquations_Single(t *testing.T) {
	cases := []struct {
		eq, vars, want string
	}{
		{"x**2 - 4 = 0", "x", "[-2, 2]"},
		{"x^2 = 4", "x", "[-2, 2]"},
		{"x**2 + 1", "x", "[-I, I]"},
		{"x**2 - 2", "x", "[-sqrt(2), sqrt(2)]"},
		{"2*x + 1 = 4", "x", "[3/2]"},
		{"x**3 - 6*x**2 + 11*x - 6", "x", "[1, 2, 3]"},
	}
	for _, c := range cases {
		sol, err := newEngine().SolveEquations(context.Background(), c.eq, c.vars)
		require.NoError(t, err, c.eq)
		assert.Equal(t, c.want, sol.String(), c.eq)
		assert.False(t, sol.System)
	}
}

func TestSolveEquations_Transcendental(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "cos(x) = x", "x")
	require.NoError(t, err)
	require.Len(t, sol.Roots, 1)
	v, ok := symbolic.Float(sol.Roots[0], nil)
	require.True(t, ok)
	assert.InDelta(t, 0.739085133, v, 1e-8)
	assert.False(t, sol.Exact)
}

func TestSolveEquations_LinearSystem(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x + y - 5, x - y - 1", "x,y")
	require.NoError(t, err)
	assert.True(t, sol.System)
	assert.True(t, sol.Exact)
	assert.Equal(t, "{x: 3, y: 2}", sol.String())
}

func TestSolveEquations_VariableOrderIsKept(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x + y = 5, x - y = 1", "y, x")
	require.NoError(t, err)
	assert.Equal(t, "{y: 2, x: 3}", sol.String())
}

func TestSolveEquations_NonLinearSystem(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x**2 + y**2 = 4, x = y", "x, y")
	require.NoError(t, err)
	require.Len(t, sol.Sets, 1)
	require.Len(t, sol.Sets[0], 2)
	x, _ := symbolic.Float(sol.Sets[0][0].Value, nil)
	y, _ := symbolic.Float(sol.Sets[0][1].Value, nil)
	assert.InDelta(t, math.Sqrt2, math.Abs(x), 1e-8)
	assert.InDelta(t, x, y, 1e-8)
}

func TestSolveEquations_TriangularSystem(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x**2 = -1, y = 2", "x, y")
	require.NoError(t, err)
	assert.True(t, sol.System)
	assert.True(t, sol.Exact)
	assert.Equal(t, "[{x: -I, y: 2}, {x: I, y: 2}]", sol.String())

	sol, err = newEngine().SolveEquations(context.Background(), "x**2 = 4, y = x + 1", "x, y")
	require.NoError(t, err)
	assert.Equal(t, "[{x: -2, y: -1}, {x: 2, y: 3}]", sol.String())
}

func TestSolveEquations_TriangularDropsContradictions(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x**2 = 4, x = 2", "x")
	require.NoError(t, err)
	assert.Equal(t, "{x: 2}", sol.String())

	sol, err = newEngine().SolveEquations(context.Background(), "x**2 = 4, x = 3", "x")
	require.NoError(t, err)
	assert.True(t, sol.Empty())
}

func TestSolveEquations_Rational(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "1/x - 2", "x")
	require.NoError(t, err)
	assert.Equal(t, "[1/2]", sol.String())
	assert.True(t, sol.Exact)
}

func TestSolveEquations_NoSolution(t *testing.T) {
	sol, err := newEngine().SolveEquations(context.Background(), "x + y = 1, x + y = 2", "x, y")
	require.NoError(t, err)
	assert.True(t, sol.Empty())
	assert.Equal(t, "[]", sol.String())

	sol, err = newEngine().SolveEquations(context.Background(), "0*x + 3", "x")
	require.NoError(t, err)
	assert.True(t, sol.Empty())
}

func TestSolveEquations_Failures(t *testing.T) {
	cases := []struct {
		eq, vars string
		want     error
	}{
		{"sin(x", "x", parse.ErrSyntax},
		{"x = 1 = 2", "x", parse.ErrSyntax},
		{"x + 1", "1x", engine.ErrBadVariable},
		{"x + 1", "pi", engine.ErrBadVariable},
		{"", "x", engine.ErrEmptyInput},
		{"x - x", "x", symbolic.ErrInfiniteSolutions},
		{"x + y", "x, y", symbolic.ErrInfiniteSolutions},
		{"gamma(x) = 2", "x", engine.ErrUnknownFunction},
		{"x/0", "x", engine.ErrDivisionByZero},
		{"exp(x) + 1", "x", engine.ErrNoMethod},
	}
	for _, c := range cases {
		_, err := newEngine().SolveEquations(context.Background(), c.eq, c.vars)
		var se *engine.SolveError
		require.ErrorAs(t, err, &se, c.eq)
		assert.ErrorIs(t, err, c.want, c.eq)
	}
}

func TestSolveEquations_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newEngine().SolveEquations(ctx, "x - 1", "x")
	var se *engine.SolveError
	require.ErrorAs(t, err, &se)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestDifferentiate(t *testing.T) {
	cases := []struct {
		f, v, want string
	}{
		{"x**3 + sin(x)", "x", "3*x**2 + cos(x)"},
		{"x^2", "x", "2*x"},
		{"e**x", "x", "exp(x)"},
		{"π*x", "x", "pi"},
		{"log(x)", "x", "1/x"},
		{"a*x + b", "x", "a"},
	}
	for _, c := range cases {
		d, err := newEngine().Differentiate(context.Background(), c.f, c.v)
		require.NoError(t, err, c.f)
		assert.Equal(t, c.want, d.String(), c.f)
	}
}

func TestDifferentiate_Failures(t *testing.T) {
	for _, c := range []struct{ f, v string }{
		{"x**", "x"},
		{"x**2", ""},
		{"x**2", "x, y"},
		{"open('f')", "x"},
	} {
		_, err := newEngine().Differentiate(context.Background(), c.f, c.v)
		var de *engine.DerivativeError
		assert.ErrorAs(t, err, &de, c.f)
	}
}

func TestIntegrate_Indefinite(t *testing.T) {
	r, err := newEngine().Integrate(context.Background(), "3*x**2 + cos(x)", "x", "", "")
	require.NoError(t, err)
	assert.False(t, r.Definite)
	assert.Equal(t, "x**3 + sin(x) + C", r.String())
	_, ok := r.Float()
	assert.False(t, ok)
}

func TestIntegrate_Definite(t *testing.T) {
	r, err := newEngine().Integrate(context.Background(), "sin(x)", "x", "0", "pi/2")
	require.NoError(t, err)
	assert.True(t, r.Definite)
	assert.False(t, r.Numeric)
	assert.Equal(t, "1", r.String())
	v, ok := r.Float()
	require.True(t, ok)
	assert.InDelta(t, 1.0, v, 1e-12)
}

func TestIntegrate_DefiniteByQuadrature(t *testing.T) {
	r, err := newEngine().Integrate(context.Background(), "exp(-x^2)", "x", "0", "1")
	require.NoError(t, err)
	assert.True(t, r.Numeric)
	v, ok := r.Float()
	require.True(t, ok)
	assert.InDelta(t, 0.7468241328, v, 1e-9)
}

func TestIntegrate_OneBoundIsIndefinite(t *testing.T) {
	r, err := newEngine().Integrate(context.Background(), "x", "x", "0", "")
	require.NoError(t, err)
	assert.False(t, r.Definite)
	assert.Equal(t, "x**2/2 + C", r.String())
}

func TestIntegrate_Failures(t *testing.T) {
	_, err := newEngine().Integrate(context.Background(), "exp(x**2)", "x", "", "")
	var ie *engine.IntegralError
	require.ErrorAs(t, err, &ie)
	assert.ErrorIs(t, err, engine.ErrNoClosedForm)

	_, err = newEngine().Integrate(context.Background(), "exp(x**2)", "x", "0", "a")
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "a", ie.Upper)

	_, err = newEngine().Integrate(context.Background(), "x", "x", "0", "(")
	assert.ErrorIs(t, err, parse.ErrSyntax)
}

func TestIntegrate_Divergent(t *testing.T) {
	cases := []struct{ f, lo, hi string }{
		{"1/x**2", "0", "1"},
		{"1/x", "-1", "1"},
		{"1/(x - 1)**2", "3", "0"},
	}
	for _, c := range cases {
		_, err := newEngine().Integrate(context.Background(), c.f, "x", c.lo, c.hi)
		var ie *engine.IntegralError
		require.ErrorAs(t, err, &ie, c.f)
		assert.ErrorIs(t, err, engine.ErrNotFinite, c.f)
		assert.ErrorIs(t, err, symbolic.ErrDivergent, c.f)
	}
}

func TestIntegrate_ImproperButFinite(t *testing.T) {
	r, err := newEngine().Integrate(context.Background(), "1/sqrt(x)", "x", "0", "1")
	require.NoError(t, err)
	v, ok := symbolic.Float(r.Value, nil)
	require.True(t, ok)
	assert.InDelta(t, 2.0, v, 1e-9)
}

func TestParseExpr(t *testing.T) {
	cases := []struct{ in, want string }{
		{"7 // 2", "3"},
		{"7 % 3", "1"},
		{"log(8, 2)", "log(8)/log(2)"},
		{"np.sqrt(16)", "4"},
		{"tau", "2*pi"},
		{"2^10", "1024"},
	}
	for _, c := range cases {
		e, err := engine.ParseExpr(c.in)
		require.NoError(t, err, c.in)
		assert.Equal(t, c.want, e.String(), c.in)
	}
}

func TestParseExpr_Rejects(t *testing.T) {
	_, err := engine.ParseExpr("np.linalg")
	assert.ErrorIs(t, err, engine.ErrUnknownIdentifier)
	_, err = engine.ParseExpr("sin")
	assert.Error(t, err)
	_, err = engine.ParseExpr("pow(2)")
	assert.ErrorIs(t, err, engine.ErrArity)
	_, err = engine.ParseExpr("1e999")
	assert.ErrorIs(t, err, engine.ErrNotFinite)
}
