package symbolic_test

import (
	"errors"
	"math"
	"testing"

	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// Solver tests
// ============================================================

func rootStrings(r symbolic.SolveResult) []string {
	out := make([]string, len(r.Solutions))
	for i, s := range r.Solutions {
		out[i] = symbolic.String(s)
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestSolve_Quadratic(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-4)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"-2", "2"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
	if !r.ExactForm {
		t.Error("integer roots should be exact")
	}
}

func TestSolve_ComplexPair(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"-I", "I"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
}

func TestSolve_Surds(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"-sqrt(2)", "sqrt(2)"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
}

func TestSolve_Linear(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.MulOf(symbolic.N(2), x), symbolic.N(-3)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"3/2"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
}

func TestSolve_CubicRationalRoots(t *testing.T) {
	x := symbolic.S("x")
	// (x-1)(x-2)(x-3)
	expr := symbolic.AddOf(
		symbolic.PowOf(x, symbolic.N(3)),
		symbolic.MulOf(symbolic.N(-6), symbolic.PowOf(x, symbolic.N(2))),
		symbolic.MulOf(symbolic.N(11), x),
		symbolic.N(-6),
	)
	r, err := symbolic.Solve(expr, "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1", "2", "3"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
}

func TestSolve_Quartic(t *testing.T) {
	x := symbolic.S("x")
	// x**4 - 2 has two real roots and no rational ones.
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(4)), symbolic.N(-2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Solutions) != 4 {
		t.Fatalf("want 4 roots, got %v", rootStrings(r))
	}
	want := math.Pow(2, 0.25)
	real := 0
	for _, s := range r.Solutions {
		if v, ok := symbolic.Float(s, nil); ok {
			real++
			if math.Abs(math.Abs(v)-want) > 1e-9 {
				t.Errorf("unexpected real root %v", v)
			}
		}
	}
	if real != 2 {
		t.Errorf("want 2 real roots, got %d", real)
	}
}

func TestSolve_ConstantHasNoSolution(t *testing.T) {
	r, err := symbolic.Solve(symbolic.N(3), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Solutions) != 0 {
		t.Errorf("want no solutions, got %v", rootStrings(r))
	}
}

func TestSolve_ZeroIsInfinite(t *testing.T) {
	_, err := symbolic.Solve(symbolic.N(0), "x")
	if !errors.Is(err, symbolic.ErrInfiniteSolutions) {
		t.Errorf("want ErrInfiniteSolutions, got %v", err)
	}
}

func TestSolve_Transcendental(t *testing.T) {
	x := symbolic.S("x")
	// cos(x) = x
	expr := symbolic.AddOf(symbolic.CosOf(x), symbolic.MulOf(symbolic.N(-1), x))
	r, err := symbolic.Solve(expr, "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Solutions) != 1 {
		t.Fatalf("want 1 root, got %v", rootStrings(r))
	}
	v, _ := symbolic.Float(r.Solutions[0], nil)
	if math.Abs(v-0.739085133215161) > 1e-8 {
		t.Errorf("want 0.739085..., got %v", v)
	}
}

func TestSolve_Rational(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.PowOf(x, symbolic.N(-1)), symbolic.N(-2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if got := rootStrings(r); !equalStrings(got, []string{"1/2"}) || !r.ExactForm {
		t.Errorf("1/x - 2: want [1/2], got %v", got)
	}
}

func TestSolve_RationalDropsPoles(t *testing.T) {
	x := symbolic.S("x")
	expr := symbolic.MulOf(
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-1)),
		symbolic.PowOf(symbolic.AddOf(x, symbolic.N(-1)), symbolic.N(-1)),
	)
	r, err := symbolic.Solve(expr, "x")
	if err != nil {
		t.Fatal(err)
	}
	if got := rootStrings(r); !equalStrings(got, []string{"-1"}) {
		t.Errorf("(x**2 - 1)/(x - 1): want [-1], got %v", got)
	}
}

func TestSolve_RationalWithoutRoots(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.PowOf(x, symbolic.N(-1)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Solutions) != 0 {
		t.Errorf("1/x: want no roots, got %v", rootStrings(r))
	}
}

func TestSolveNewton_StaysInRange(t *testing.T) {
	x := symbolic.S("x")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.SinOf(x), symbolic.F(-1, 2)), "x")
	if err != nil {
		t.Fatal(err)
	}
	foundPiOver6 := false
	for _, s := range r.Solutions {
		v, ok := symbolic.Float(s, nil)
		if !ok {
			t.Fatalf("root %v is not real", s)
		}
		if math.Abs(v) > 100 {
			t.Errorf("root %v outside [-100, 100]", v)
		}
		if math.Abs(v-math.Pi/6) < 1e-9 {
			foundPiOver6 = true
		}
	}
	if !foundPiOver6 {
		t.Errorf("sin(x) = 1/2: pi/6 missing from %v", rootStrings(r))
	}

	r, err = symbolic.SolveNewton(symbolic.AddOf(symbolic.SinOf(x), symbolic.F(-1, 2)), "x", 10, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range r.Solutions {
		if v, _ := symbolic.Float(s, nil); math.Abs(v) > 10 {
			t.Errorf("range 10: root %v outside", v)
		}
	}
}

func TestSolve_SymbolicCoefficients(t *testing.T) {
	x, a := symbolic.S("x"), symbolic.S("a")
	r, err := symbolic.Solve(symbolic.AddOf(symbolic.MulOf(a, x), symbolic.N(-1)), "x")
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"1/a"}; !equalStrings(rootStrings(r), want) {
		t.Errorf("want %v, got %v", want, rootStrings(r))
	}
}

// ============================================================
// Systems
// ============================================================

func TestSolveLinearSystem(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	residuals := []symbolic.Expr{
		symbolic.AddOf(x, y, symbolic.N(-5)),
		symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), y), symbolic.N(-1)),
	}
	sol, err := symbolic.SolveLinearSystem(residuals, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if symbolic.String(sol["x"]) != "3" || symbolic.String(sol["y"]) != "2" {
		t.Errorf("want x=3 y=2, got x=%s y=%s", sol["x"], sol["y"])
	}
}

func TestSolveLinearSystem_Inconsistent(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	residuals := []symbolic.Expr{
		symbolic.AddOf(x, y, symbolic.N(-1)),
		symbolic.AddOf(x, y, symbolic.N(-2)),
	}
	_, err := symbolic.SolveLinearSystem(residuals, []string{"x", "y"})
	if !errors.Is(err, symbolic.ErrInconsistent) {
		t.Errorf("want ErrInconsistent, got %v", err)
	}
}

func TestSolveLinearSystem_Underdetermined(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	_, err := symbolic.SolveLinearSystem([]symbolic.Expr{symbolic.AddOf(x, y)}, []string{"x", "y"})
	if !errors.Is(err, symbolic.ErrInfiniteSolutions) {
		t.Errorf("want ErrInfiniteSolutions, got %v", err)
	}
}

func TestSolveLinearSystem_RejectsNonLinear(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	residuals := []symbolic.Expr{
		symbolic.AddOf(symbolic.MulOf(x, y), symbolic.N(-1)),
		symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), y)),
	}
	_, err := symbolic.SolveLinearSystem(residuals, []string{"x", "y"})
	if !errors.Is(err, symbolic.ErrNotLinear) {
		t.Errorf("want ErrNotLinear, got %v", err)
	}
}

func TestSolveNewtonSystem(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	// x**2 + y**2 = 4, x = y
	residuals := []symbolic.Expr{
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.PowOf(y, symbolic.N(2)), symbolic.N(-4)),
		symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), y)),
	}
	sol, err := symbolic.SolveNewtonSystem(residuals, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(math.Abs(sol["x"])-math.Sqrt2) > 1e-8 || math.Abs(sol["x"]-sol["y"]) > 1e-8 {
		t.Errorf("want x = y = ±sqrt(2), got %v", sol)
	}
}

func TestSolveTriangular(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	// x**2 = -1, y = 2
	residuals := []symbolic.Expr{
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(1)),
		symbolic.AddOf(y, symbolic.N(-2)),
	}
	sets, err := symbolic.SolveTriangular(residuals, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	if len(sets) != 2 {
		t.Fatalf("want 2 solution sets, got %v", sets)
	}
	for i, want := range []string{"-I", "I"} {
		if got := sets[i]["x"].String(); got != want {
			t.Errorf("set %d: want x = %s, got %s", i, want, got)
		}
		if got := sets[i]["y"].String(); got != "2" {
			t.Errorf("set %d: want y = 2, got %s", i, got)
		}
	}
}

func TestSolveTriangular_Substitutes(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	// y = x + 1, x**2 = 4
	residuals := []symbolic.Expr{
		symbolic.AddOf(y, symbolic.MulOf(symbolic.N(-1), x), symbolic.N(-1)),
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.N(-4)),
	}
	sets, err := symbolic.SolveTriangular(residuals, []string{"x", "y"})
	if err != nil {
		t.Fatal(err)
	}
	got := make([]string, len(sets))
	for i, s := range sets {
		got[i] = s["x"].String() + "," + s["y"].String()
	}
	if want := []string{"-2,-1", "2,3"}; !equalStrings(got, want) {
		t.Errorf("want %v, got %v", want, got)
	}
}

func TestSolveTriangular_RejectsCoupled(t *testing.T) {
	x, y := symbolic.S("x"), symbolic.S("y")
	residuals := []symbolic.Expr{
		symbolic.AddOf(symbolic.PowOf(x, symbolic.N(2)), symbolic.PowOf(y, symbolic.N(2)), symbolic.N(-4)),
		symbolic.AddOf(x, symbolic.MulOf(symbolic.N(-1), y)),
	}
	_, err := symbolic.SolveTriangular(residuals, []string{"x", "y"})
	if !errors.Is(err, symbolic.ErrNotTriangular) {
		t.Errorf("want ErrNotTriangular, got %v", err)
	}
}
