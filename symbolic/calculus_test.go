package symbolic_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// Integration tests
// ============================================================

func TestIntegrate_Polynomial(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.AddOf(symbolic.MulOf(symbolic.N(3), symbolic.PowOf(x, symbolic.N(2))), symbolic.CosOf(x))
	got, ok := symbolic.Integrate(expr, "x")
	if !ok {
		t.Fatal("integrate 3*x**2 + cos(x) failed")
	}
	if symbolic.String(got) != "x**3 + sin(x)" {
		t.Errorf("want x**3 + sin(x), got %s", symbolic.String(got))
	}
}

func TestIntegrate_Constant(t *testing.T) {
	got, ok := symbolic.Integrate(symbolic.N(5), "x")
	if !ok || symbolic.String(got) != "5*x" {
		t.Errorf("want 5*x, got %v", got)
	}
}

func TestIntegrate_Reciprocal(t *testing.T) {
	x := symbolic.S("x")
	got, ok := symbolic.Integrate(symbolic.PowOf(x, symbolic.N(-1)), "x")
	if !ok || symbolic.String(got) != "log(x)" {
		t.Errorf("want log(x), got %v", got)
	}
}

func TestIntegrate_Exp(t *testing.T) {
	x := symbolic.S("x")
	got, ok := symbolic.Integrate(symbolic.ExpOf(x), "x")
	if !ok || symbolic.String(got) != "exp(x)" {
		t.Errorf("want exp(x), got %v", got)
	}
}

func TestIntegrate_DerivativeRoundTrip(t *testing.T) {
	x := symbolic.S("x")
	exprs := []symbolic.Expr{
		symbolic.MulOf(x, symbolic.SinOf(x)),
		symbolic.MulOf(x, symbolic.ExpOf(x)),
		symbolic.LogOf(x),
		symbolic.PowOf(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)), symbolic.N(-1)),
	}
	for _, e := range exprs {
		anti, ok := symbolic.Integrate(e, "x")
		if !ok {
			t.Errorf("integrate %s failed", e)
			continue
		}
		back := symbolic.Diff(anti, "x")
		for _, at := range []float64{0.5, 1.3, 2.7} {
			env := map[string]float64{"x": at}
			want, _ := symbolic.Float(e, env)
			got, ok := symbolic.Float(back, env)
			if !ok || math.Abs(got-want) > 1e-9 {
				t.Errorf("d/dx %s at %v: want %v, got %v", anti, at, want, got)
			}
		}
	}
}

func TestIntegrate_NoRule(t *testing.T) {
	x := symbolic.S("x")
	if _, ok := symbolic.Integrate(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), "x"); ok {
		t.Error("exp(x**2) has no elementary antiderivative")
	}
}

func TestDefiniteIntegrate_Exact(t *testing.T) {
	x := symbolic.S("x")
	got, numeric, err := symbolic.DefiniteIntegrate(symbolic.SinOf(x), "x", symbolic.N(0), symbolic.MulOf(symbolic.F(1, 2), symbolic.Pi))
	if err != nil || numeric || symbolic.String(got) != "1" {
		t.Errorf("want exact 1, got %v (numeric=%v, err=%v)", got, numeric, err)
	}
}

func TestDefiniteIntegrate_Polynomial(t *testing.T) {
	x := symbolic.S("x")
	got, _, err := symbolic.DefiniteIntegrate(symbolic.PowOf(x, symbolic.N(2)), "x", symbolic.N(0), symbolic.N(3))
	if err != nil || symbolic.String(got) != "9" {
		t.Errorf("want 9, got %v (err=%v)", got, err)
	}
}

func TestDefiniteIntegrate_FallsBackToQuadrature(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.ExpOf(symbolic.MulOf(symbolic.N(-1), symbolic.PowOf(x, symbolic.N(2))))
	got, numeric, err := symbolic.DefiniteIntegrate(expr, "x", symbolic.N(0), symbolic.N(1))
	if err != nil || !numeric {
		t.Fatalf("quadrature fallback failed: numeric=%v, err=%v", numeric, err)
	}
	v, _ := symbolic.Float(got, nil)
	if math.Abs(v-0.746824132812427) > 1e-9 {
		t.Errorf("want 0.746824..., got %v", v)
	}
}

func TestDefiniteIntegrate_Divergent(t *testing.T) {
	x := symbolic.S("x")
	cases := []struct {
		name   string
		expr   symbolic.Expr
		lo, hi symbolic.Expr
	}{
		{"1/x**2 on [0, 1]", symbolic.PowOf(x, symbolic.N(-2)), symbolic.N(0), symbolic.N(1)},
		{"1/x on [-1, 1]", symbolic.PowOf(x, symbolic.N(-1)), symbolic.N(-1), symbolic.N(1)},
		{"1/x on [0, 2]", symbolic.PowOf(x, symbolic.N(-1)), symbolic.N(0), symbolic.N(2)},
		{"1/(x-1)**2 on [3, 0]", symbolic.PowOf(symbolic.AddOf(x, symbolic.N(-1)), symbolic.N(-2)), symbolic.N(3), symbolic.N(0)},
	}
	for _, c := range cases {
		got, _, err := symbolic.DefiniteIntegrate(c.expr, "x", c.lo, c.hi)
		if !errors.Is(err, symbolic.ErrDivergent) {
			t.Errorf("%s: want ErrDivergent, got %v (err=%v)", c.name, got, err)
		}
	}
}

func TestDefiniteIntegrate_IntegrableSingularity(t *testing.T) {
	x := symbolic.S("x")
	got, _, err := symbolic.DefiniteIntegrate(symbolic.PowOf(x, symbolic.F(-1, 2)), "x", symbolic.N(0), symbolic.N(1))
	if err != nil {
		t.Fatalf("1/sqrt(x) on [0, 1]: %v", err)
	}
	if v, ok := symbolic.Float(got, nil); !ok || math.Abs(v-2) > 1e-9 {
		t.Errorf("want 2, got %v", got)
	}
}

func TestDefiniteIntegrate_PoleOutsideInterval(t *testing.T) {
	x := symbolic.S("x")
	got, _, err := symbolic.DefiniteIntegrate(symbolic.PowOf(x, symbolic.N(-2)), "x", symbolic.N(1), symbolic.N(2))
	if err != nil || symbolic.String(got) != "1/2" {
		t.Errorf("want 1/2, got %v (err=%v)", got, err)
	}
}

func TestDefiniteIntegrate_RemovableSingularity(t *testing.T) {
	x := symbolic.S("x")
	sinc := symbolic.MulOf(symbolic.SinOf(x), symbolic.PowOf(x, symbolic.N(-1)))
	got, numeric, err := symbolic.DefiniteIntegrate(sinc, "x", symbolic.N(0), symbolic.N(1))
	if err != nil || !numeric {
		t.Fatalf("sin(x)/x on [0, 1]: numeric=%v, err=%v", numeric, err)
	}
	if v, _ := symbolic.Float(got, nil); math.Abs(v-0.946083070367183) > 1e-9 {
		t.Errorf("want Si(1) = 0.946083..., got %v", v)
	}
}

func TestDefiniteIntegrate_SingularWithoutAntiderivative(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.MulOf(symbolic.ExpOf(symbolic.PowOf(x, symbolic.N(2))), symbolic.PowOf(x, symbolic.N(-2)))
	if _, _, err := symbolic.DefiniteIntegrate(expr, "x", symbolic.N(-1), symbolic.N(1)); !errors.Is(err, symbolic.ErrSingular) {
		t.Errorf("want ErrSingular, got %v", err)
	}
}

func TestQuadrature_ReversedBounds(t *testing.T) {
	x := symbolic.S("x")
	v, ok := symbolic.Quadrature(x, "x", 2, 0)
	if !ok || math.Abs(v+2) > 1e-12 {
		t.Errorf("want -2, got %v", v)
	}
}

func TestQuadrature_RejectsFreeSymbols(t *testing.T) {
	expr := symbolic.MulOf(symbolic.S("x"), symbolic.S("a"))
	if _, ok := symbolic.Quadrature(expr, "x", 0, 1); ok {
		t.Error("free symbol a should make quadrature fail")
	}
}
