// Package gocalc is a scientific calculator core for Go.
//
// Design goals:
//   - Calculator text is never executed, only parsed and interpreted
//   - Exact symbolic answers where the kernel finds them, floats otherwise
//   - Every failure is a typed error with a one-line user message
//   - Tool-call friendly: string params in, JSON/LaTeX/PNG out
//
// A Calculator bundles the numeric evaluator, the symbolic engine, the
// statistics and spectrum code and the chart renderer behind one method per
// operation. HandleToolCall exposes the same operations by name.
package gocalc

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/njchilds90/gocalc/chart"
	"github.com/njchilds90/gocalc/engine"
	"github.com/njchilds90/gocalc/evaluator"
	"github.com/njchilds90/gocalc/spectrum"
	"github.com/njchilds90/gocalc/stats"
)

// Markers prefixed to user-facing messages.
const (
	SuccessMark = "✅"
	FailureMark = "❌"
)

// ============================================================
// Calculator
// ============================================================

type Options struct {
	// Timeout bounds symbolic operations; engine.DefaultTimeout when zero.
	Timeout time.Duration
	Chart   chart.Config
	Logger  *slog.Logger
}

// Calculator is read-only after New and safe for concurrent use.
type Calculator struct {
	table  *evaluator.SymbolTable
	engine *engine.Engine
	charts *chart.Renderer
	log    *slog.Logger
}

func New(opts Options) *Calculator {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Calculator{
		table:  evaluator.DefaultTable(),
		engine: engine.New(engine.Options{Timeout: opts.Timeout, Logger: log}),
		charts: chart.NewRenderer(opts.Chart),
		log:    log,
	}
}

// Timeout returns the deadline applied to symbolic operations.
func (c *Calculator) Timeout() time.Duration { return c.engine.Timeout() }

// ChartConfig returns the renderer configuration after defaults.
func (c *Calculator) ChartConfig() chart.Config { return c.charts.Config() }

// Result is a formatted successful answer. Value holds the typed result
// (evaluator.Number, engine.Solution, stats.Summary, ...). Image is a PNG
// for chart producing operations.
type Result struct {
	Label string
	Value any
	Text  string
	LaTeX string
	Image []byte
}

// Message is the line shown to a user, e.g. "✅ Solution: [-2, 2]".
func (r Result) Message() string {
	return SuccessMark + " " + r.Label + ": " + r.Text
}

// FormatFailure turns any error into the line shown to a user.
func FormatFailure(err error) string {
	if err == nil {
		return ""
	}
	return FailureMark + " Error: " + err.Error()
}

// ============================================================
// Operations
// ============================================================

// Evaluate computes a numeric expression such as "sin(pi/2) + 2^3".
func (c *Calculator) Evaluate(text string) (Result, error) {
	n, err := c.table.Evaluate(text)
	if err != nil {
		return Result{}, err
	}
	var v any = n.Float64()
	if n.IsInt() {
		v = n.Int64()
	}
	return Result{Label: "Result", Value: v, Text: n.Format(), LaTeX: n.Format()}, nil
}

// Solve solves comma separated equations for comma separated variables.
func (c *Calculator) Solve(ctx context.Context, equations, variables string) (Result, error) {
	sol, err := c.engine.SolveEquations(ctx, equations, variables)
	if err != nil {
		return Result{}, err
	}
	return Result{Label: "Solution", Value: sol, Text: sol.String(), LaTeX: sol.LaTeX()}, nil
}

// Diff returns the first derivative of fn with respect to varName.
func (c *Calculator) Diff(ctx context.Context, fn, varName string) (Result, error) {
	d, err := c.engine.Differentiate(ctx, fn, varName)
	if err != nil {
		return Result{}, err
	}
	return Result{Label: "Derivative", Value: d, Text: d.String(), LaTeX: d.LaTeX()}, nil
}

// Integrate is definite when both bounds are given and indefinite otherwise.
func (c *Calculator) Integrate(ctx context.Context, fn, varName, lower, upper string) (Result, error) {
	r, err := c.engine.Integrate(ctx, fn, varName, lower, upper)
	if err != nil {
		return Result{}, err
	}
	label := "Indefinite integral"
	if r.Definite {
		label = "Definite integral"
	}
	text := r.String()
	if r.Numeric {
		if f, ok := r.Float(); ok {
			text = fmt.Sprintf("%.6f", f)
		}
	}
	return Result{Label: label, Value: r, Text: text, LaTeX: r.LaTeX()}, nil
}

// Statistics describes a comma separated sample.
func (c *Calculator) Statistics(data string) (Result, error) {
	s, err := stats.Describe(data)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("n=%d, mean=%.6f, median=%.6f, std=%.6f, var=%.6f, min=%.6f, max=%.6f, q1=%.6f, q3=%.6f",
		s.Count, s.Mean, s.Median, s.Std, s.Variance, s.Min, s.Max, s.Q1, s.Q3)
	return Result{Label: "Statistics", Value: s, Text: text}, nil
}

// Fit fits a polynomial of the given degree and plots it.
func (c *Calculator) Fit(xData, yData string, degree int) (Result, error) {
	xs, err := stats.ParseSeries(xData)
	if err != nil {
		return Result{}, fmt.Errorf("x data: %w", err)
	}
	ys, err := stats.ParseSeries(yData)
	if err != nil {
		return Result{}, fmt.Errorf("y data: %w", err)
	}
	img, fit, err := c.charts.RenderFit(xs, ys, degree)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("y = %s (R² = %.4f, %s)", fit.Polynomial, fit.RSquared, fit.Quality())
	return Result{
		Label: "Fit",
		Value: fit,
		Text:  text,
		LaTeX: "y = " + fit.Polynomial.Expr("x").LaTeX(),
		Image: img,
	}, nil
}

// FFT synthesizes the test signal, reports its dominant frequency and plots
// signal and spectrum.
func (c *Calculator) FFT(p spectrum.Params) (Result, error) {
	s, err := spectrum.Compute(p)
	if err != nil {
		return Result{}, err
	}
	img, err := c.charts.RenderFFT(p)
	if err != nil {
		return Result{}, err
	}
	_, freq, amp := s.Peak()
	text := fmt.Sprintf("peak %.3f Hz, amplitude %.4f (%d samples)", freq, amp, len(s.Signal))
	return Result{Label: "Spectrum", Value: s, Text: text, Image: img}, nil
}

// Chart draws ys against the comma separated labels in xData.
func (c *Calculator) Chart(kind, xData, yData string) (Result, error) {
	k, err := chart.ParseKind(kind)
	if err != nil {
		return Result{}, err
	}
	ys, err := stats.ParseSeries(yData)
	if err != nil {
		return Result{}, fmt.Errorf("y data: %w", err)
	}
	xs := splitLabels(xData)
	img, err := c.charts.Render(k, xs, ys)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Label: "Chart",
		Value: k.String(),
		Text:  fmt.Sprintf("%s chart, %d points", k, len(ys)),
		Image: img,
	}, nil
}

func splitLabels(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	parts := strings.Split(text, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
