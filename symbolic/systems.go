package symbolic

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// ============================================================
// Equation systems
// ============================================================

var (
	// ErrInconsistent marks a linear system with no solution.
	ErrInconsistent = errors.New("system is inconsistent")
	// ErrNotTriangular means no equation is left with a single unknown.
	ErrNotTriangular = errors.New("system cannot be solved one variable at a time")
)

// SolveLinearSystem solves residuals[i] = 0 for vars by Gauss-Jordan
// elimination over the rationals. Each residual must be affine in vars with
// numeric coefficients, otherwise ErrNotLinear is returned.
func SolveLinearSystem(residuals []Expr, vars []string) (map[string]Expr, error) {
	rows, cols := len(residuals), len(vars)
	aug := make([][]*Num, rows)
	for i, r := range residuals {
		aug[i] = make([]*Num, cols+1)
		for j, v := range vars {
			c, ok := Diff(r, v).(*Num)
			if !ok {
				return nil, ErrNotLinear
			}
			aug[i][j] = c
		}
		constant := r
		for _, v := range vars {
			constant = Sub(constant, v, N(0))
		}
		c, ok := constant.(*Num)
		if !ok {
			return nil, ErrNotLinear
		}
		aug[i][cols] = numNeg(c)
	}

	pivotCols := make([]int, 0, cols)
	row := 0
	for col := 0; col < cols && row < rows; col++ {
		pivot := -1
		for r := row; r < rows; r++ {
			if !aug[r][col].IsZero() {
				pivot = r
				break
			}
		}
		if pivot < 0 {
			continue
		}
		aug[row], aug[pivot] = aug[pivot], aug[row]
		inv := numRecip(aug[row][col])
		for k := col; k <= cols; k++ {
			aug[row][k] = numMul(aug[row][k], inv)
		}
		for r := 0; r < rows; r++ {
			if r == row || aug[r][col].IsZero() {
				continue
			}
			factor := aug[r][col]
			for k := col; k <= cols; k++ {
				aug[r][k] = numSub(aug[r][k], numMul(factor, aug[row][k]))
			}
		}
		pivotCols = append(pivotCols, col)
		row++
	}
	for r := row; r < rows; r++ {
		if !aug[r][cols].IsZero() {
			return nil, ErrInconsistent
		}
	}
	if len(pivotCols) < cols {
		return nil, ErrInfiniteSolutions
	}
	out := make(map[string]Expr, cols)
	for i, col := range pivotCols {
		out[vars[col]] = aug[i][cols]
	}
	return out, nil
}

// SolveTriangular solves systems in which some equation always has a single
// unknown once the values found so far are substituted, e.g.
// x**2 = -1, y = x + 2. Every root of such an equation opens its own branch,
// so the result may hold several solution sets, complex ones included.
// Branches that contradict a remaining equation are dropped; none left
// means no solution.
func SolveTriangular(residuals []Expr, vars []string) ([]map[string]Expr, error) {
	var sets []map[string]Expr
	var solve func(open []Expr, bound map[string]Expr) error
	solve = func(open []Expr, bound map[string]Expr) error {
		pick, unknown := -1, ""
		var rest []Expr
		for _, r := range open {
			var unknowns []string
			for _, v := range vars {
				if _, done := bound[v]; !done && Has(r, v) {
					unknowns = append(unknowns, v)
				}
			}
			switch {
			case len(unknowns) == 0:
				if len(FreeSymbols(r)) > 0 {
					return fmt.Errorf("%w: %s has free parameters", ErrNotTriangular, r)
				}
				if z, ok := Complex(r, nil); !ok || cmplx.Abs(z) > 1e-9 {
					return nil
				}
			case len(unknowns) == 1 && pick < 0:
				pick, unknown = len(rest), unknowns[0]
				rest = append(rest, r)
			default:
				rest = append(rest, r)
			}
		}
		if len(bound) == len(vars) {
			set := make(map[string]Expr, len(bound))
			for k, v := range bound {
				set[k] = v
			}
			sets = append(sets, set)
			return nil
		}
		if pick < 0 {
			return ErrNotTriangular
		}
		roots, err := Solve(rest[pick], unknown)
		if err != nil {
			return err
		}
		others := append(append([]Expr{}, rest[:pick]...), rest[pick+1:]...)
		for _, root := range roots.Solutions {
			next := make([]Expr, len(others))
			for i, o := range others {
				next[i] = Sub(o, unknown, root)
			}
			nb := make(map[string]Expr, len(bound)+1)
			for k, v := range bound {
				nb[k] = v
			}
			nb[unknown] = root
			if err := solve(next, nb); err != nil {
				return err
			}
		}
		return nil
	}
	if err := solve(residuals, map[string]Expr{}); err != nil {
		return nil, err
	}
	return sets, nil
}

var newtonStarts = []float64{1, -1, 2, -2, 0.5, -0.5, 3, -3, 5, -5, 10, -10, 0.1}

// SolveNewtonSystem finds one real solution of residuals[i] = 0 by
// multivariate Newton iteration with the symbolic Jacobian, trying a fixed
// set of starting points.
func SolveNewtonSystem(residuals []Expr, vars []string) (map[string]float64, error) {
	n := len(vars)
	if len(residuals) != n {
		return nil, fmt.Errorf("%w: %d equations for %d unknowns", ErrNoConvergence, len(residuals), n)
	}
	jac := make([][]Expr, n)
	for i, r := range residuals {
		jac[i] = make([]Expr, n)
		for j, v := range vars {
			jac[i][j] = Diff(r, v)
		}
	}
	env := make(map[string]float64, n)
	eval := func(x []float64) (*mat.VecDense, *mat.Dense, bool) {
		for j, v := range vars {
			env[v] = x[j]
		}
		fv := mat.NewVecDense(n, nil)
		jm := mat.NewDense(n, n, nil)
		for i := range residuals {
			y, ok := Float(residuals[i], env)
			if !ok {
				return nil, nil, false
			}
			fv.SetVec(i, y)
			for j := range vars {
				d, ok := Float(jac[i][j], env)
				if !ok {
					return nil, nil, false
				}
				jm.Set(i, j, d)
			}
		}
		return fv, jm, true
	}

	for _, s := range newtonStarts {
		x := make([]float64, n)
		for j := range x {
			x[j] = s * (1 + 0.1*float64(j))
		}
		for iter := 0; iter < 100; iter++ {
			fv, jm, ok := eval(x)
			if !ok {
				break
			}
			if mat.Norm(fv, math.Inf(1)) < 1e-10 {
				out := make(map[string]float64, n)
				for j, v := range vars {
					out[v] = snap(x[j])
				}
				return out, nil
			}
			var dx mat.VecDense
			if err := dx.SolveVec(jm, fv); err != nil {
				break
			}
			for j := range x {
				x[j] -= dx.AtVec(j)
			}
		}
	}
	return nil, ErrNoConvergence
}

// companionRoots returns all roots of a numeric polynomial (coefficients
// highest degree first) as eigenvalues of its companion matrix.
func companionRoots(coeffs []*Num) ([]Expr, error) {
	n := len(coeffs) - 1
	lead := coeffs[0].Float64()
	c := mat.NewDense(n, n, nil)
	for j := 0; j < n; j++ {
		c.Set(0, j, -coeffs[j+1].Float64()/lead)
	}
	for i := 1; i < n; i++ {
		c.Set(i, i-1, 1)
	}
	var eig mat.Eigen
	if !eig.Factorize(c, mat.EigenNone) {
		return nil, ErrNoConvergence
	}
	vals := eig.Values(nil)
	roots := make([]Expr, len(vals))
	for i, v := range vals {
		re, im := real(v), imag(v)
		if math.Abs(im) < 1e-10*math.Max(1, math.Abs(re)) {
			roots[i] = NFloat(snap(re))
		} else {
			roots[i] = complexRoot(snap(re), im)
		}
	}
	return roots, nil
}
