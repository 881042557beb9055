package gocalc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/njchilds90/gocalc/engine"
	"github.com/njchilds90/gocalc/spectrum"
	"github.com/njchilds90/gocalc/symbolic"
)

// ============================================================
// Tool Interface
// ============================================================

var (
	ErrUnknownTool  = errors.New("unknown tool")
	ErrMissingParam = errors.New("missing param")
	ErrParamType    = errors.New("invalid param type")
)

// ParamError reports a malformed tool request, as opposed to a calculation
// that failed.
type ParamError struct {
	Tool  string
	Param string
	Err   error
}

func (e *ParamError) Error() string {
	if e.Param == "" {
		return fmt.Sprintf("%v: %s", e.Err, e.Tool)
	}
	return fmt.Sprintf("%s: %v: %s", e.Tool, e.Err, e.Param)
}

func (e *ParamError) Unwrap() error { return e.Err }

type ToolRequest struct {
	Tool   string                 `json:"tool" binding:"required"`
	Params map[string]interface{} `json:"params"`
}

// ToolResponse carries either a result or an error. Image is a base64 PNG.
type ToolResponse struct {
	Result  interface{} `json:"result,omitempty"`
	LaTeX   string      `json:"latex,omitempty"`
	String  string      `json:"string,omitempty"`
	Message string      `json:"message,omitempty"`
	Image   string      `json:"image,omitempty"`
	Error   string      `json:"error,omitempty"`
}

var defaultCalculator = sync.OnceValue(func() *Calculator { return New(Options{}) })

// HandleToolCall dispatches req on a Calculator with default options.
func HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	return defaultCalculator().HandleToolCall(ctx, req)
}

// HandleToolCall runs one tool and folds any error into the response.
func (c *Calculator) HandleToolCall(ctx context.Context, req ToolRequest) ToolResponse {
	res, err := c.Dispatch(ctx, req)
	if err != nil {
		return ToolResponse{Error: err.Error(), Message: FormatFailure(err)}
	}
	return Respond(res)
}

// Respond converts a Result into its wire form.
func Respond(res Result) ToolResponse {
	resp := ToolResponse{
		Result:  wireValue(res.Value),
		LaTeX:   res.LaTeX,
		String:  res.Text,
		Message: res.Message(),
	}
	if len(res.Image) > 0 {
		resp.Image = base64.StdEncoding.EncodeToString(res.Image)
	}
	return resp
}

// wireValue turns symbolic values into their JSON trees.
func wireValue(v any) any {
	switch v := v.(type) {
	case symbolic.Expr:
		return symbolic.Tree(v)
	case engine.Solution:
		if v.System {
			sets := make([]map[string]string, len(v.Sets))
			for i, set := range v.Sets {
				sets[i] = make(map[string]string, len(set))
				for _, a := range set {
					sets[i][a.Name] = a.Value.String()
				}
			}
			if len(sets) == 1 {
				return sets[0]
			}
			return sets
		}
		out := make([]string, len(v.Roots))
		for i, r := range v.Roots {
			out[i] = r.String()
		}
		return out
	case interface{ String() string }:
		if _, isErr := v.(error); !isErr {
			return v.String()
		}
	}
	return v
}

// Dispatch runs one tool. Request problems come back as *ParamError;
// calculation failures keep their package's error type.
func (c *Calculator) Dispatch(ctx context.Context, req ToolRequest) (Result, error) {
	start := time.Now()
	p := params{tool: req.Tool, m: req.Params}
	res, err := c.dispatch(ctx, p)
	c.log.Debug("tool call", "tool", req.Tool, "ok", err == nil, "elapsed", time.Since(start))
	return res, err
}

func (c *Calculator) dispatch(ctx context.Context, p params) (Result, error) {
	switch p.tool {
	case "tool_spec":
		return Result{Label: "Tool spec", Value: json.RawMessage(ToolSpec()), Text: "tool specification"}, nil

	case "evaluate":
		expr, err := p.expr("expr")
		if err != nil {
			return Result{}, err
		}
		return c.Evaluate(expr)

	case "solve":
		eqs, err := p.str("equations")
		if err != nil {
			return Result{}, err
		}
		vars, err := p.str("variables")
		if err != nil {
			return Result{}, err
		}
		return c.Solve(ctx, eqs, vars)

	case "diff":
		fn, err := p.expr("func")
		if err != nil {
			return Result{}, err
		}
		v, err := p.str("var")
		if err != nil {
			return Result{}, err
		}
		return c.Diff(ctx, fn, v)

	case "integrate":
		fn, err := p.expr("func")
		if err != nil {
			return Result{}, err
		}
		v, err := p.str("var")
		if err != nil {
			return Result{}, err
		}
		lower, err := p.bound("lower")
		if err != nil {
			return Result{}, err
		}
		upper, err := p.bound("upper")
		if err != nil {
			return Result{}, err
		}
		return c.Integrate(ctx, fn, v, lower, upper)

	case "statistics":
		data, err := p.str("data")
		if err != nil {
			return Result{}, err
		}
		return c.Statistics(data)

	case "fit":
		x, err := p.str("x")
		if err != nil {
			return Result{}, err
		}
		y, err := p.str("y")
		if err != nil {
			return Result{}, err
		}
		degree, err := p.integer("degree", 1)
		if err != nil {
			return Result{}, err
		}
		return c.Fit(x, y, degree)

	case "fft":
		var sp spectrum.Params
		var err error
		if sp.Frequency, err = p.num("frequency"); err != nil {
			return Result{}, err
		}
		if sp.Duration, err = p.num("duration"); err != nil {
			return Result{}, err
		}
		if sp.SampleRate, err = p.num("sample_rate"); err != nil {
			return Result{}, err
		}
		if sp.NoiseLevel, err = p.optNum("noise_level", 0); err != nil {
			return Result{}, err
		}
		seed, err := p.integer("seed", 0)
		if err != nil {
			return Result{}, err
		}
		if seed < 0 {
			return Result{}, &ParamError{Tool: p.tool, Param: "seed", Err: ErrParamType}
		}
		sp.Seed = uint64(seed)
		return c.FFT(sp)

	case "chart":
		kind, err := p.str("kind")
		if err != nil {
			return Result{}, err
		}
		x, err := p.str("x")
		if err != nil {
			return Result{}, err
		}
		y, err := p.str("y")
		if err != nil {
			return Result{}, err
		}
		return c.Chart(kind, x, y)
	}
	return Result{}, &ParamError{Tool: p.tool, Err: ErrUnknownTool}
}

// ============================================================
// Param access
// ============================================================

type params struct {
	tool string
	m    map[string]interface{}
}

func (p params) missing(key string) error {
	return &ParamError{Tool: p.tool, Param: key, Err: ErrMissingParam}
}

func (p params) badType(key, want string) error {
	return &ParamError{Tool: p.tool, Param: key, Err: fmt.Errorf("%w: must be %s", ErrParamType, want)}
}

func (p params) str(key string) (string, error) {
	v, ok := p.m[key]
	if !ok {
		return "", p.missing(key)
	}
	s, ok := v.(string)
	if !ok {
		return "", p.badType(key, "a string")
	}
	return s, nil
}

// expr accepts calculator text or a JSON expression tree.
func (p params) expr(key string) (string, error) {
	v, ok := p.m[key]
	if !ok {
		return "", p.missing(key)
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case map[string]interface{}:
		e, err := symbolic.FromJSON(v)
		if err != nil {
			return "", &ParamError{Tool: p.tool, Param: key, Err: fmt.Errorf("%w: %w", ErrParamType, err)}
		}
		return e.String(), nil
	}
	return "", p.badType(key, "a string or expression object")
}

// bound accepts a string or a number and treats absence as empty.
func (p params) bound(key string) (string, error) {
	v, ok := p.m[key]
	if !ok || v == nil {
		return "", nil
	}
	switch v := v.(type) {
	case string:
		return v, nil
	case float64:
		return fmt.Sprint(v), nil
	}
	return "", p.badType(key, "a string or number")
}

func (p params) num(key string) (float64, error) {
	v, ok := p.m[key]
	if !ok {
		return 0, p.missing(key)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, p.badType(key, "a number")
	}
	return f, nil
}

func (p params) optNum(key string, def float64) (float64, error) {
	if _, ok := p.m[key]; !ok {
		return def, nil
	}
	return p.num(key)
}

func (p params) integer(key string, def int) (int, error) {
	f, err := p.optNum(key, float64(def))
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return 0, p.badType(key, "an integer")
	}
	return int(f), nil
}

// ============================================================
// Tool spec
// ============================================================

// ToolSpec returns the JSON schema of every tool.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("evaluate", "Evaluate a numeric expression (+ - * / // % ** ^, sin, cos, log, sqrt, pi, e, np.* aliases)",
			[]string{"expr"}, map[string]string{"expr": "string"}),
		ts("solve", "Solve comma separated equations for comma separated variables; 'expr' alone means expr = 0",
			[]string{"equations", "variables"}, map[string]string{"equations": "string", "variables": "string"}),
		ts("diff", "First derivative of func with respect to var. func may be text or an expression object",
			[]string{"func", "var"}, map[string]string{"func": "string", "var": "string"}),
		ts("integrate", "Integral of func in var; definite when both lower and upper are given",
			[]string{"func", "var"}, map[string]string{"func": "string", "var": "string", "lower": "string", "upper": "string"}),
		ts("statistics", "Descriptive statistics of comma separated numbers",
			[]string{"data"}, map[string]string{"data": "string"}),
		ts("fit", "Least squares polynomial fit with R² and a PNG plot",
			[]string{"x", "y"}, map[string]string{"x": "string", "y": "string", "degree": "integer"}),
		ts("fft", "Spectrum of sin(2πft) plus Gaussian noise, with a PNG plot",
			[]string{"frequency", "duration", "sample_rate"},
			map[string]string{"frequency": "number", "duration": "number", "sample_rate": "number", "noise_level": "number", "seed": "integer"}),
		ts("chart", "Render scatter, line, bar or pie chart as PNG",
			[]string{"kind", "x", "y"}, map[string]string{"kind": "string", "x": "string", "y": "string"}),
		ts("tool_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
