package symbolic

import (
	"math"
	"math/big"
	"sort"
	"strings"
)

// ============================================================
// Add: sum of terms
// ============================================================

type Add struct{ terms []Expr }

func AddOf(terms ...Expr) Expr { return (&Add{terms: terms}).Simplify() }

func (a *Add) Simplify() Expr {
	flat := make([]Expr, 0, len(a.terms))
	for _, t := range a.terms {
		s := t.Simplify()
		if inner, ok := s.(*Add); ok {
			flat = append(flat, inner.terms...)
		} else {
			flat = append(flat, s)
		}
	}

	// Collect like terms: c1*rest + c2*rest -> (c1+c2)*rest.
	constant := N(0)
	coeffs := map[string]*Num{}
	rests := map[string]Expr{}
	order := []string{}
	for _, t := range flat {
		if n, ok := t.(*Num); ok {
			constant = numAdd(constant, n)
			continue
		}
		c, rest := splitCoeff(t)
		key := rest.String()
		if _, seen := coeffs[key]; !seen {
			order = append(order, key)
			coeffs[key] = N(0)
			rests[key] = rest
		}
		coeffs[key] = numAdd(coeffs[key], c)
	}

	result := make([]Expr, 0, len(order)+1)
	for _, key := range order {
		c := coeffs[key]
		if c.IsZero() {
			continue
		}
		if c.exactOne() {
			result = append(result, rests[key])
		} else {
			result = append(result, MulOf(c, rests[key]))
		}
	}
	if !constant.IsZero() {
		result = append(result, constant)
	}
	switch len(result) {
	case 0:
		return N(0)
	case 1:
		return result[0]
	}
	sortTerms(result)
	return foldInexact(&Add{terms: result})
}

// sortTerms orders a sum the way it prints: higher degree first, the numeric
// constant after the other degree-0 terms, imaginary terms last. Within a
// degree, positive terms lead.
func sortTerms(terms []Expr) {
	type keyed struct {
		e       Expr
		imag    bool
		deg     int
		isNum   bool
		neg     bool
		printed string
	}
	ks := make([]keyed, len(terms))
	for i, t := range terms {
		_, isNum := t.(*Num)
		pos, neg := negated(t)
		ks[i] = keyed{e: t, imag: hasConst(t, I), deg: orderDegree(t), isNum: isNum, neg: neg, printed: pos.String()}
	}
	sort.SliceStable(ks, func(i, j int) bool {
		a, b := ks[i], ks[j]
		if a.imag != b.imag {
			return !a.imag
		}
		if a.deg != b.deg {
			return a.deg > b.deg
		}
		if a.isNum != b.isNum {
			return !a.isNum
		}
		if a.neg != b.neg && !a.imag {
			return !a.neg
		}
		return a.printed < b.printed
	})
	for i := range ks {
		terms[i] = ks[i].e
	}
}

func orderDegree(e Expr) int {
	switch v := e.(type) {
	case *Sym:
		return 1
	case *Pow:
		if _, ok := v.base.(*Sym); ok {
			if n, ok := v.exp.(*Num); ok && n.exactInt() {
				if d, ok := n.int64(); ok {
					return int(d)
				}
			}
		}
	case *Mul:
		total := 0
		for _, f := range v.factors {
			total += orderDegree(f)
		}
		return total
	}
	return 0
}

func (a *Add) String() string {
	if len(a.terms) == 0 {
		return "0"
	}
	var b strings.Builder
	for i, t := range a.terms {
		pos, neg := negated(t)
		switch {
		case i == 0:
			b.WriteString(t.String())
		case neg:
			b.WriteString(" - ")
			b.WriteString(pos.String())
		default:
			b.WriteString(" + ")
			b.WriteString(t.String())
		}
	}
	return b.String()
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		pos, neg := negated(t)
		switch {
		case i == 0:
			b.WriteString(t.LaTeX())
		case neg:
			b.WriteString(" - ")
			b.WriteString(pos.LaTeX())
		default:
			b.WriteString(" + ")
			b.WriteString(t.LaTeX())
		}
	}
	return b.String()
}

// negated reports whether t prints with a leading minus and returns its
// positive counterpart.
func negated(t Expr) (Expr, bool) {
	switch v := t.(type) {
	case *Num:
		if v.IsNegative() {
			return numNeg(v), true
		}
	case *Mul:
		if c, ok := v.factors[0].(*Num); ok && c.IsNegative() {
			return mulRaw(numNeg(c), v.factors[1:]), true
		}
	}
	return t, false
}

func (a *Add) Sub(varName string, value Expr) Expr {
	newTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		newTerms[i] = t.Sub(varName, value)
	}
	return AddOf(newTerms...)
}

func (a *Add) Diff(varName string) Expr {
	dTerms := make([]Expr, len(a.terms))
	for i, t := range a.terms {
		dTerms[i] = t.Diff(varName)
	}
	return AddOf(dTerms...)
}

func (a *Add) Eval() (*Num, bool) {
	acc := N(0)
	for _, t := range a.terms {
		v, ok := t.Eval()
		if !ok {
			return nil, false
		}
		acc = numAdd(acc, v)
	}
	return acc, true
}

func (a *Add) Equal(other Expr) bool {
	o, ok := other.(*Add)
	if !ok || len(a.terms) != len(o.terms) {
		return false
	}
	for i := range a.terms {
		if !a.terms[i].Equal(o.terms[i]) {
			return false
		}
	}
	return true
}

func (a *Add) exprType() string { return "add" }
func (a *Add) toJSON() map[string]interface{} {
	ts := make([]map[string]interface{}, len(a.terms))
	for i, t := range a.terms {
		ts[i] = t.toJSON()
	}
	return map[string]interface{}{"type": "add", "terms": ts}
}
func (a *Add) Terms() []Expr { return a.terms }

// ============================================================
// Mul: product of factors
// ============================================================

type Mul struct{ factors []Expr }

func MulOf(factors ...Expr) Expr { return (&Mul{factors: factors}).Simplify() }

func (m *Mul) Simplify() Expr {
	factors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		factors[i] = f.Simplify()
	}

	coeff := N(1)
	// Combining powers can produce new numeric or product factors
	// (sqrt(2)*sqrt(2) -> 2, sqrt(8) -> 2*sqrt(2)); a few passes settle it.
	for pass := 0; ; pass++ {
		var flat []Expr
		for _, f := range factors {
			if inner, ok := f.(*Mul); ok {
				flat = append(flat, inner.factors...)
			} else {
				flat = append(flat, f)
			}
		}
		factors = factors[:0]
		for _, f := range flat {
			if n, ok := f.(*Num); ok {
				coeff = numMul(coeff, n)
			} else {
				factors = append(factors, f)
			}
		}
		if pass == 4 {
			break
		}
		next, changed := combinePowers(factors)
		factors = next
		if !changed {
			break
		}
	}
	others := factors
	if coeff.IsZero() {
		return N(0)
	}
	if len(others) == 0 {
		return coeff
	}

	ks := make([]struct {
		e   Expr
		key string
	}, len(others))
	for i, e := range others {
		ks[i].e, ks[i].key = e, e.String()
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i].key < ks[j].key })
	sorted := make([]Expr, len(ks))
	for i := range ks {
		sorted[i] = ks[i].e
	}

	if len(sorted) == 1 {
		if coeff.exactOne() {
			return sorted[0]
		}
		// A numeric coefficient distributes over a single sum: 2*(x + 1) -> 2*x + 2.
		if add, ok := sorted[0].(*Add); ok {
			terms := make([]Expr, len(add.terms))
			for i, t := range add.terms {
				terms[i] = MulOf(coeff, t)
			}
			return AddOf(terms...)
		}
	}
	return foldInexact(mulRaw(coeff, sorted))
}

// combinePowers merges factors sharing a base: x*x**2 -> x**3. It reports
// whether any merge produced a number or a product that needs flattening.
func combinePowers(factors []Expr) ([]Expr, bool) {
	type group struct {
		base Expr
		exps []Expr
	}
	groups := map[string]*group{}
	var order []string
	for _, f := range factors {
		base, exp := f, Expr(N(1))
		if p, ok := f.(*Pow); ok {
			base, exp = p.base, p.exp
		}
		key := base.String()
		g, seen := groups[key]
		if !seen {
			g = &group{base: base}
			groups[key] = g
			order = append(order, key)
		}
		g.exps = append(g.exps, exp)
	}
	changed := false
	out := make([]Expr, 0, len(order))
	for _, key := range order {
		g := groups[key]
		if len(g.exps) == 1 {
			out = append(out, powRaw(g.base, g.exps[0]))
			continue
		}
		f := PowOf(g.base, AddOf(g.exps...))
		switch f.(type) {
		case *Num, *Mul:
			changed = true
		}
		out = append(out, f)
	}
	return out, changed
}

// mulRaw builds a product of already simplified parts without
// re-simplifying.
func mulRaw(coeff *Num, rest []Expr) Expr {
	if coeff.exactOne() {
		if len(rest) == 1 {
			return rest[0]
		}
		return &Mul{factors: rest}
	}
	if len(rest) == 0 {
		return coeff
	}
	return &Mul{factors: append([]Expr{coeff}, rest...)}
}

// splitCoeff separates the numeric coefficient of a simplified term.
func splitCoeff(e Expr) (*Num, Expr) {
	if m, ok := e.(*Mul); ok && len(m.factors) >= 2 {
		if coeff, ok2 := m.factors[0].(*Num); ok2 {
			rest := m.factors[1:]
			if len(rest) == 1 {
				return coeff, rest[0]
			}
			return coeff, &Mul{factors: rest}
		}
	}
	return N(1), e
}

func (m *Mul) String() string {
	num, den, neg := m.fraction()
	parts := make([]string, 0, len(num))
	for _, f := range num {
		parts = append(parts, factorString(f))
	}
	s := strings.Join(parts, "*")
	if s == "" {
		s = "1"
	}
	if len(den) > 0 {
		dparts := make([]string, len(den))
		for i, f := range den {
			dparts[i] = factorString(f)
		}
		d := strings.Join(dparts, "*")
		if len(den) > 1 {
			d = "(" + d + ")"
		}
		s += "/" + d
	}
	if neg {
		s = "-" + s
	}
	return s
}

func (m *Mul) LaTeX() string {
	num, den, neg := m.fraction()
	latex := func(fs []Expr) string {
		parts := make([]string, len(fs))
		for i, f := range fs {
			if _, isAdd := f.(*Add); isAdd {
				parts[i] = "\\left(" + f.LaTeX() + "\\right)"
			} else {
				parts[i] = f.LaTeX()
			}
		}
		return strings.Join(parts, " ")
	}
	s := latex(num)
	if s == "" {
		s = "1"
	}
	if len(den) > 0 {
		s = "\\frac{" + s + "}{" + latex(den) + "}"
	}
	if neg {
		s = "-" + s
	}
	return s
}

// fraction splits the product into numerator and denominator factors, with
// the sign of the coefficient reported separately.
func (m *Mul) fraction() (num, den []Expr, neg bool) {
	coeff, rest := N(1), m.factors
	if c, ok := m.factors[0].(*Num); ok {
		coeff, rest = c, m.factors[1:]
	}
	if coeff.IsNegative() {
		neg = true
		coeff = numNeg(coeff)
	}
	switch {
	case coeff.inexact:
		num = append(num, coeff)
	default:
		if p := coeff.val.Num(); !(p.IsInt64() && p.Int64() == 1) {
			num = append(num, NRat(new(big.Rat).SetInt(p)))
		}
		if q := coeff.val.Denom(); !(q.IsInt64() && q.Int64() == 1) {
			den = append(den, NRat(new(big.Rat).SetInt(q)))
		}
	}
	for _, f := range rest {
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegative() && !en.inexact {
				den = append(den, powRaw(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return num, den, neg
}

func factorString(f Expr) string {
	if _, isAdd := f.(*Add); isAdd {
		return "(" + f.String() + ")"
	}
	return f.String()
}

func (m *Mul) Sub(varName string, value Expr) Expr {
	newFactors := make([]Expr, len(m.factors))
	for i, f := range m.factors {
		newFactors[i] = f.Sub(varName, value)
	}
	return MulOf(newFactors...)
}

func (m *Mul) Diff(varName string) Expr {
	terms := make([]Expr, len(m.factors))
	for i, fi := range m.factors {
		dfi := fi.Diff(varName)
		others := make([]Expr, 0, len(m.factors)-1)
		for j, fj := range m.factors {
			if j != i {
				others = append(others, fj)
			}
		}
		if len(others) == 0 {
			terms[i] = dfi
		} else {
			terms[i] = MulOf(append([]Expr{dfi}, others...)...)
		}
	}
	return AddOf(terms...)
}

func (m *Mul) Eval() (*Num, bool) {
	acc := N(1)
	for _, f := range m.factors {
		v, ok := f.Eval()
		if !ok {
			return nil, false
		}
		acc = numMul(acc, v)
	}
	return acc, true
}

func (m *Mul) Equal(other Expr) bool {
	o, ok := other.(*Mul)
	if !ok || len(m.factors) != len(o.factors) {
		return false
	}
	for i := range m.factors {
		if !m.factors[i].Equal(o.factors[i]) {
			return false
		}
	}
	return true
}

func (m *Mul) exprType() string { return "mul" }
func (m *Mul) toJSON() map[string]interface{} {
	fs := make([]map[string]interface{}, len(m.factors))
	for i, f := range m.factors {
		fs[i] = f.toJSON()
	}
	return map[string]interface{}{"type": "mul", "factors": fs}
}
func (m *Mul) Factors() []Expr { return m.factors }

// ============================================================
// Pow: base**exponent
// ============================================================

type Pow struct{ base, exp Expr }

func PowOf(base, exp Expr) Expr { return (&Pow{base: base, exp: exp}).Simplify() }

func SqrtOf(arg Expr) Expr { return PowOf(arg, F(1, 2)) }

// powRaw returns base**exp without simplification, collapsing exp == 1.
func powRaw(base, exp Expr) Expr {
	if en, ok := exp.(*Num); ok && en.exactOne() {
		return base
	}
	return &Pow{base: base, exp: exp}
}

func (p *Pow) Simplify() Expr {
	base := p.base.Simplify()
	exp := p.exp.Simplify()

	en, expIsNum := exp.(*Num)
	if expIsNum && !en.inexact {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}

	bn, baseIsNum := base.(*Num)
	if baseIsNum && bn.IsZero() {
		// 0**0 is indeterminate; 0**negative is a division by zero.
		if !expIsNum || en.IsZero() || en.IsNegative() {
			return &Pow{base: base, exp: exp}
		}
		return bn
	}
	if baseIsNum && bn.exactOne() {
		return N(1)
	}

	switch b := base.(type) {
	case *Const:
		if b == E {
			return ExpOf(exp)
		}
		if b == I && expIsNum && en.exactInt() {
			return imagPower(en)
		}
	case *Num:
		if expIsNum {
			if r, ok := numPow(b, en); ok {
				return r
			}
		}
	case *Pow:
		if expIsNum && en.exactInt() {
			return PowOf(b.base, MulOf(b.exp, exp))
		}
	case *Mul:
		if expIsNum && en.exactInt() {
			fs := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				fs[i] = PowOf(f, exp)
			}
			return MulOf(fs...)
		}
	}
	return foldInexact(&Pow{base: base, exp: exp})
}

func imagPower(n *Num) Expr {
	k := new(big.Int).Mod(n.val.Num(), big.NewInt(4)).Int64()
	switch k {
	case 0:
		return N(1)
	case 1:
		return I
	case 2:
		return N(-1)
	}
	return &Mul{factors: []Expr{N(-1), I}}
}

const maxExactExponent = 1024

// numPow folds a numeric power when the result is representable: exact
// integer powers, exact square roots (with square factors pulled out and
// negative radicands mapped onto I), exact q-th roots, and any inexact
// operand.
func numPow(b, e *Num) (Expr, bool) {
	if b.inexact || e.inexact {
		bf, ef := b.Float64(), e.Float64()
		if bf < 0 && ef != math.Trunc(ef) {
			return nil, false
		}
		r := math.Pow(bf, ef)
		if math.IsNaN(r) || math.IsInf(r, 0) {
			return nil, false
		}
		return NFloat(r), true
	}
	if e.IsInteger() {
		k, ok := e.int64()
		if !ok || k > maxExactExponent || k < -maxExactExponent {
			return nil, false
		}
		if b.val.Num().BitLen()*int(abs64(k)) > 1<<16 {
			return nil, false
		}
		num := new(big.Int).Exp(b.val.Num(), big.NewInt(abs64(k)), nil)
		den := new(big.Int).Exp(b.val.Denom(), big.NewInt(abs64(k)), nil)
		r := new(big.Rat).SetFrac(num, den)
		if k < 0 {
			r.Inv(r)
		}
		return &Num{val: r}, true
	}
	q := e.val.Denom()
	if !q.IsInt64() || q.Int64() > 16 {
		return nil, false
	}
	p := new(big.Rat).SetInt(e.val.Num())
	if q.Int64() == 2 {
		return sqrtPow(b, p)
	}
	if b.IsNegative() {
		return nil, false
	}
	rn, okN := intRoot(b.val.Num(), q.Int64())
	rd, okD := intRoot(b.val.Denom(), q.Int64())
	if !okN || !okD {
		return nil, false
	}
	root := &Num{val: new(big.Rat).SetFrac(rn, rd)}
	return PowOf(root, NRat(p)), true
}

// sqrtPow computes b**(p/2) for odd p.
func sqrtPow(b *Num, p *big.Rat) (Expr, bool) {
	outside, inside, ok := sqrtParts(numAbs(b))
	if !ok {
		return nil, false
	}
	pk := p.Num().Int64()
	var unit Expr = N(1)
	if b.IsNegative() {
		unit = imagPower(N(pk))
	}
	if inside.exactOne() {
		return MulOf(PowOf(outside, NRat(p)), unit), true
	}
	switch {
	case pk == 1:
		// Built raw: simplifying sqrt(inside) again would land back here.
		var rest []Expr
		if b.IsNegative() {
			rest = append(rest, I)
		}
		rest = append(rest, &Pow{base: inside, exp: F(1, 2)})
		return mulRaw(outside, rest), true
	case pk > 1:
		whole := PowOf(numAbs(b), N((pk-1)/2))
		return MulOf(whole, PowOf(numAbs(b), F(1, 2)), unit), true
	}
	return nil, false
}

// sqrtParts writes r as outside**2 * inside with inside square-free, as far
// as trial division can tell for moderately sized values.
func sqrtParts(r *Num) (outside, inside *Num, ok bool) {
	num, den := r.val.Num(), r.val.Denom()
	// sqrt(a/b) = sqrt(a*b)/b
	prod := new(big.Int).Mul(num, den)
	if s := new(big.Int).Sqrt(prod); new(big.Int).Mul(s, s).Cmp(prod) == 0 {
		return &Num{val: new(big.Rat).SetFrac(s, den)}, N(1), true
	}
	if !prod.IsInt64() || prod.Int64() > 1e12 {
		return nil, nil, false
	}
	n := prod.Int64()
	out, in := int64(1), int64(1)
	for f := int64(2); f*f <= n; f++ {
		for n%(f*f) == 0 {
			out *= f
			n /= f * f
		}
		if n%f == 0 {
			in *= f
			n /= f
		}
	}
	in *= n
	return &Num{val: new(big.Rat).SetFrac(big.NewInt(out), den)}, N(in), true
}

// intRoot returns the exact k-th root of n if there is one.
func intRoot(n *big.Int, k int64) (*big.Int, bool) {
	if n.Sign() == 0 || n.Cmp(big.NewInt(1)) == 0 {
		return new(big.Int).Set(n), true
	}
	f, _ := new(big.Float).SetInt(n).Float64()
	guess := int64(math.Round(math.Pow(f, 1/float64(k))))
	for _, c := range []int64{guess - 1, guess, guess + 1} {
		if c <= 0 {
			continue
		}
		cand := big.NewInt(c)
		if new(big.Int).Exp(cand, big.NewInt(k), nil).Cmp(n) == 0 {
			return cand, true
		}
	}
	return nil, false
}

func abs64(k int64) int64 {
	if k < 0 {
		return -k
	}
	return k
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && !en.inexact {
		if en.IsNegative() {
			return "1/" + factorString(powRaw(p.base, numNeg(en)))
		}
		if en.val.Cmp(ratHalf) == 0 {
			return "sqrt(" + p.base.String() + ")"
		}
	}
	return wrapPowOperand(p.base) + "**" + wrapPowOperand(p.exp)
}

func wrapPowOperand(e Expr) string {
	switch v := e.(type) {
	case *Add, *Mul, *Pow:
		return "(" + e.String() + ")"
	case *Num:
		if v.IsNegative() || (!v.inexact && !v.IsInteger()) {
			return "(" + e.String() + ")"
		}
	}
	return e.String()
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok && !en.inexact {
		if en.IsNegative() {
			return "\\frac{1}{" + powRaw(p.base, numNeg(en)).LaTeX() + "}"
		}
		if en.val.Cmp(ratHalf) == 0 {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
	}
	baseStr := p.base.LaTeX()
	switch p.base.(type) {
	case *Add, *Mul, *Pow:
		baseStr = "\\left(" + baseStr + "\\right)"
	}
	return baseStr + "^{" + p.exp.LaTeX() + "}"
}

func (p *Pow) Sub(varName string, value Expr) Expr {
	return PowOf(p.base.Sub(varName, value), p.exp.Sub(varName, value))
}

func (p *Pow) Diff(varName string) Expr {
	du := p.base.Diff(varName)
	dv := p.exp.Diff(varName)
	if !Has(p.exp, varName) {
		newExp := AddOf(p.exp, N(-1))
		return MulOf(p.exp, PowOf(p.base, newExp), du)
	}
	if !Has(p.base, varName) {
		return MulOf(PowOf(p.base, p.exp), LogOf(p.base), dv)
	}
	logTerm := MulOf(dv, LogOf(p.base))
	divTerm := MulOf(p.exp, du, PowOf(p.base, N(-1)))
	return MulOf(PowOf(p.base, p.exp), AddOf(logTerm, divTerm))
}

func (p *Pow) Eval() (*Num, bool) {
	b, ok1 := p.base.Eval()
	e, ok2 := p.exp.Eval()
	if !ok1 || !ok2 {
		return nil, false
	}
	if r, ok := numPow(b, e); ok {
		if n, isNum := r.(*Num); isNum {
			return n, true
		}
	}
	f, ok := Float(p, nil)
	if !ok {
		return nil, false
	}
	return NFloat(f), true
}

func (p *Pow) Equal(other Expr) bool {
	o, ok := other.(*Pow)
	return ok && p.base.Equal(o.base) && p.exp.Equal(o.exp)
}

func (p *Pow) exprType() string { return "pow" }
func (p *Pow) toJSON() map[string]interface{} {
	return map[string]interface{}{"type": "pow", "base": p.base.toJSON(), "exp": p.exp.toJSON()}
}
func (p *Pow) Base() Expr    { return p.base }
func (p *Pow) ExpExpr() Expr { return p.exp }

// ============================================================
// Inexact folding
// ============================================================

// foldInexact collapses an expression that mixes inexact numbers with
// constants (2.0*pi, sqrt(2.0)) into a single inexact number.
func foldInexact(e Expr) Expr {
	if !hasInexact(e) || len(FreeSymbols(e)) > 0 || hasConst(e, I) {
		return e
	}
	if f, ok := Float(e, nil); ok {
		return NFloat(f)
	}
	return e
}

// IsExact reports whether e holds no floating-point approximation.
func IsExact(e Expr) bool { return !hasInexact(e) }

func hasInexact(e Expr) bool {
	found := false
	walk(e, func(x Expr) {
		if n, ok := x.(*Num); ok && n.inexact {
			found = true
		}
	})
	return found
}

func hasConst(e Expr, c *Const) bool {
	found := false
	walk(e, func(x Expr) {
		if k, ok := x.(*Const); ok && k == c {
			found = true
		}
	})
	return found
}

func walk(e Expr, visit func(Expr)) {
	visit(e)
	switch v := e.(type) {
	case *Add:
		for _, t := range v.terms {
			walk(t, visit)
		}
	case *Mul:
		for _, f := range v.factors {
			walk(f, visit)
		}
	case *Pow:
		walk(v.base, visit)
		walk(v.exp, visit)
	case *Func:
		walk(v.arg, visit)
	}
}
