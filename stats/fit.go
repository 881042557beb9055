package stats

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/njchilds90/gocalc/symbolic"
)

var (
	ErrDegree         = errors.New("degree must be non-negative")
	ErrLengthMismatch = errors.New("x and y lengths differ")
	ErrTooFewPoints   = errors.New("too few points for degree")
	ErrSingular       = errors.New("least squares system is singular")
)

// FitError reports why FitPolynomial could not fit.
type FitError struct {
	Degree int
	Points int
	Err    error
}

func (e *FitError) Error() string {
	return fmt.Sprintf("polynomial fit of degree %d to %d points: %v", e.Degree, e.Points, e.Err)
}

func (e *FitError) Unwrap() error { return e.Err }

// Polynomial holds coefficients, highest degree first.
type Polynomial struct {
	Coeffs []float64 `json:"coeffs"`
}

func (p Polynomial) Degree() int { return len(p.Coeffs) - 1 }

// negligible reports coefficients that are rounding noise next to the
// largest one.
func (p Polynomial) negligible(c float64) bool {
	return c == 0 || math.Abs(c) < 1e-10*floats.Norm(p.Coeffs, math.Inf(1))
}

// Eval evaluates p at x by Horner's rule.
func (p Polynomial) Eval(x float64) float64 {
	var y float64
	for _, c := range p.Coeffs {
		y = y*x + c
	}
	return y
}

// String renders p like "2*x**2 - 3*x + 1", dropping zero terms.
func (p Polynomial) String() string {
	var b strings.Builder
	deg := p.Degree()
	for i, c := range p.Coeffs {
		if p.negligible(c) {
			continue
		}
		k := deg - i
		switch {
		case b.Len() == 0 && c < 0:
			b.WriteString("-")
		case b.Len() > 0 && c < 0:
			b.WriteString(" - ")
		case b.Len() > 0:
			b.WriteString(" + ")
		}
		if a := strconv.FormatFloat(math.Abs(c), 'g', 6, 64); a != "1" || k == 0 {
			b.WriteString(a)
			if k > 0 {
				b.WriteString("*")
			}
		}
		switch {
		case k == 1:
			b.WriteString("x")
		case k > 1:
			b.WriteString("x**" + strconv.Itoa(k))
		}
	}
	if b.Len() == 0 {
		return "0"
	}
	return b.String()
}

// Expr returns p as a symbolic polynomial in varName.
func (p Polynomial) Expr(varName string) symbolic.Expr {
	x := symbolic.S(varName)
	deg := p.Degree()
	terms := make([]symbolic.Expr, 0, len(p.Coeffs))
	for i, c := range p.Coeffs {
		if p.negligible(c) {
			continue
		}
		terms = append(terms, symbolic.MulOf(symbolic.NFloat(c), symbolic.PowOf(x, symbolic.N(int64(deg-i)))))
	}
	return symbolic.AddOf(terms...)
}

// FitResult is a least squares polynomial fit.
type FitResult struct {
	Polynomial Polynomial `json:"polynomial"`
	RSquared   float64    `json:"r_squared"`
	X          []float64  `json:"x"`
	Y          []float64  `json:"y"`
}

// Quality classifies RSquared.
func (r FitResult) Quality() string {
	switch {
	case r.RSquared > 0.95:
		return "excellent"
	case r.RSquared > 0.8:
		return "good"
	case r.RSquared > 0.6:
		return "fair"
	}
	return "poor"
}

// Curve samples the fitted polynomial at n evenly spaced points spanning
// the x range of the data.
func (r FitResult) Curve(n int) (xs, ys []float64) {
	if n < 2 || len(r.X) == 0 {
		return nil, nil
	}
	xs = make([]float64, n)
	floats.Span(xs, floats.Min(r.X), floats.Max(r.X))
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = r.Polynomial.Eval(x)
	}
	return xs, ys
}

// FitPolynomial fits a polynomial of the given degree to (xs, ys) by least
// squares on the Vandermonde matrix.
func FitPolynomial(xs, ys []float64, degree int) (FitResult, error) {
	fail := func(err error) (FitResult, error) {
		return FitResult{}, &FitError{Degree: degree, Points: len(xs), Err: err}
	}
	switch {
	case degree < 0:
		return fail(ErrDegree)
	case len(xs) == 0 || len(ys) == 0:
		return fail(ErrEmpty)
	case len(xs) != len(ys):
		return fail(fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(xs), len(ys)))
	case len(xs) < degree+1:
		return fail(ErrTooFewPoints)
	}

	n, cols := len(xs), degree+1
	a := mat.NewDense(n, cols, nil)
	for i, x := range xs {
		for j := 0; j < cols; j++ {
			a.Set(i, j, math.Pow(x, float64(degree-j)))
		}
	}
	var c mat.VecDense
	if err := c.SolveVec(a, mat.NewVecDense(n, append([]float64(nil), ys...))); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrSingular, err))
	}
	coeffs := make([]float64, cols)
	for j := range coeffs {
		coeffs[j] = c.AtVec(j)
		if math.IsNaN(coeffs[j]) || math.IsInf(coeffs[j], 0) {
			return fail(ErrSingular)
		}
	}
	poly := Polynomial{Coeffs: coeffs}

	mean := stat.Mean(ys, nil)
	var ssRes, ssTot float64
	for i, x := range xs {
		d := ys[i] - poly.Eval(x)
		ssRes += d * d
		t := ys[i] - mean
		ssTot += t * t
	}
	r2 := 0.0
	if ssTot != 0 {
		r2 = 1 - ssRes/ssTot
	}
	return FitResult{
		Polynomial: poly,
		RSquared:   r2,
		X:          append([]float64(nil), xs...),
		Y:          append([]float64(nil), ys...),
	}, nil
}

// Fit parses both series and fits them.
func Fit(xText, yText string, degree int) (FitResult, error) {
	xs, err := ParseSeries(xText)
	if err != nil {
		return FitResult{}, fmt.Errorf("x data: %w", err)
	}
	ys, err := ParseSeries(yText)
	if err != nil {
		return FitResult{}, fmt.Errorf("y data: %w", err)
	}
	return FitPolynomial(xs, ys, degree)
}
