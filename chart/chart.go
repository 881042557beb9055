// Package chart renders calculator data as PNG images.
package chart

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/njchilds90/gocalc/spectrum"
	"github.com/njchilds90/gocalc/stats"
)

var (
	ErrUnknownKind    = errors.New("unknown chart kind")
	ErrEmptyData      = errors.New("no data to plot")
	ErrLengthMismatch = errors.New("x and y lengths differ")
	ErrNonFinite      = errors.New("y values must be finite")
	ErrPieTotal       = errors.New("pie values sum to zero")
)

// ChartError wraps every rendering failure.
type ChartError struct {
	Kind string
	Err  error
}

func (e *ChartError) Error() string {
	if e.Kind == "" {
		return "chart: " + e.Err.Error()
	}
	return fmt.Sprintf("chart %s: %v", e.Kind, e.Err)
}

func (e *ChartError) Unwrap() error { return e.Err }

// Kind selects the chart type.
type Kind int

const (
	Scatter Kind = iota
	Line
	Bar
	Pie
)

var kindNames = map[Kind]string{Scatter: "scatter", Line: "line", Bar: "bar", Pie: "pie"}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

var kindAliases = map[string]Kind{
	"scatter": Scatter, "散点图": Scatter,
	"line": Line, "折线图": Line,
	"bar": Bar, "柱状图": Bar,
	"pie": Pie, "饼图": Pie,
}

// ParseKind accepts the English names and their Chinese labels.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindAliases[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k, nil
	}
	return 0, &ChartError{Kind: name, Err: ErrUnknownKind}
}

// Config is the one-time styling of a Renderer. Zero fields take defaults.
type Config struct {
	Width      int     `yaml:"width" validate:"omitempty,min=100,max=4000"`
	Height     int     `yaml:"height" validate:"omitempty,min=100,max=4000"`
	DPI        float64 `yaml:"dpi" validate:"omitempty,min=30,max=600"`
	Background string  `yaml:"background" validate:"omitempty,hexadecimal,len=6"`
	FontSize   float64 `yaml:"font_size" validate:"omitempty,min=4,max=72"`
}

// DefaultConfig matches a 10x6 inch figure at screen resolution.
func DefaultConfig() Config {
	return Config{Width: 1000, Height: 600, DPI: 100, Background: "ffffff", FontSize: 10}
}

// Renderer draws charts. It holds no mutable state and may be shared.
type Renderer struct {
	cfg Config
	bg  drawing.Color
}

func NewRenderer(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Width <= 0 {
		cfg.Width = def.Width
	}
	if cfg.Height <= 0 {
		cfg.Height = def.Height
	}
	if cfg.DPI <= 0 {
		cfg.DPI = def.DPI
	}
	if cfg.Background == "" {
		cfg.Background = def.Background
	}
	if cfg.FontSize <= 0 {
		cfg.FontSize = def.FontSize
	}
	return &Renderer{cfg: cfg, bg: drawing.ColorFromHex(strings.TrimPrefix(cfg.Background, "#"))}
}

func (r *Renderer) Config() Config { return r.cfg }

var (
	blue = drawing.ColorFromHex("1f77b4")
	red  = drawing.ColorFromHex("d62728")
	sky  = drawing.ColorFromHex("87ceeb")
)

// ============================================================
// Data charts
// ============================================================

// Render draws ys against xs. When any x label is not a number the points
// are placed at their index and labelled with the text.
func (r *Renderer) Render(kind Kind, xs []string, ys []float64) ([]byte, error) {
	if _, ok := kindNames[kind]; !ok {
		return nil, &ChartError{Kind: kind.String(), Err: ErrUnknownKind}
	}
	if len(xs) == 0 || len(ys) == 0 {
		return nil, &ChartError{Kind: kind.String(), Err: ErrEmptyData}
	}
	if len(xs) != len(ys) {
		return nil, &ChartError{Kind: kind.String(), Err: fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(xs), len(ys))}
	}
	for _, y := range ys {
		if math.IsNaN(y) || math.IsInf(y, 0) {
			return nil, &ChartError{Kind: kind.String(), Err: ErrNonFinite}
		}
	}

	var (
		out []byte
		err error
	)
	switch kind {
	case Scatter:
		out, err = r.renderXY(kind, xs, ys, gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 5, DotColor: blue})
	case Line:
		out, err = r.renderXY(kind, xs, ys, gochart.Style{StrokeWidth: 2, StrokeColor: blue, DotWidth: 4, DotColor: blue})
	case Bar:
		out, err = r.renderBar(xs, ys)
	case Pie:
		out, err = r.renderPie(xs, ys)
	}
	if err != nil {
		return nil, &ChartError{Kind: kind.String(), Err: err}
	}
	return out, nil
}

// positions returns numeric x values, or indices plus ticks when the labels
// are not all numbers.
func positions(labels []string) ([]float64, []gochart.Tick) {
	xs := make([]float64, len(labels))
	numeric := true
	for i, l := range labels {
		v, err := strconv.ParseFloat(strings.TrimSpace(l), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			numeric = false
			break
		}
		xs[i] = v
	}
	if numeric {
		return xs, nil
	}
	ticks := make([]gochart.Tick, len(labels))
	for i, l := range labels {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: strings.TrimSpace(l)}
	}
	return xs, ticks
}

// span widens a degenerate range, which the chart library rejects.
func span(vals ...[]float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, vs := range vals {
		for _, v := range vs {
			lo, hi = math.Min(lo, v), math.Max(hi, v)
		}
	}
	if lo == hi {
		pad := math.Max(1, math.Abs(lo)*0.1)
		return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
	}
	return nil
}

func (r *Renderer) axes(xs []float64, ticks []gochart.Tick, ys ...[]float64) (gochart.XAxis, gochart.YAxis) {
	label := gochart.Style{FontSize: r.cfg.FontSize}
	grid := gochart.Style{StrokeColor: drawing.ColorFromHex("dddddd"), StrokeWidth: 1}
	x := gochart.XAxis{Name: "X", NameStyle: label, Style: label, Ticks: ticks, GridMajorStyle: grid}
	y := gochart.YAxis{Name: "Y", NameStyle: label, Style: label, GridMajorStyle: grid}
	if rg := span(xs); rg != nil {
		x.Range = rg
	}
	if rg := span(ys...); rg != nil {
		y.Range = rg
	}
	return x, y
}

func (r *Renderer) base(title string) gochart.Chart {
	return gochart.Chart{
		Title:      title,
		TitleStyle: gochart.Style{FontSize: r.cfg.FontSize * 1.4},
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		DPI:        r.cfg.DPI,
		Background: gochart.Style{FillColor: r.bg, Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     gochart.Style{FillColor: r.bg},
	}
}

type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

func encode(c renderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(gochart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Renderer) renderXY(kind Kind, labels []string, ys []float64, style gochart.Style) ([]byte, error) {
	xs, ticks := positions(labels)
	c := r.base(titleCase(kind.String()))
	c.XAxis, c.YAxis = r.axes(xs, ticks, ys)
	c.Series = []gochart.Series{gochart.ContinuousSeries{Name: "data", Style: style, XValues: xs, YValues: ys}}
	return encode(&c)
}

func (r *Renderer) renderBar(labels []string, ys []float64) ([]byte, error) {
	bars := make([]gochart.Value, len(ys))
	for i, y := range ys {
		bars[i] = gochart.Value{Value: y, Label: strings.TrimSpace(labels[i]), Style: gochart.Style{FillColor: sky, StrokeColor: sky}}
	}
	width := (r.cfg.Width - 160) / (2 * len(ys))
	if width < 1 {
		width = 1
	}
	c := gochart.BarChart{
		Title:      "Bar",
		TitleStyle: gochart.Style{FontSize: r.cfg.FontSize * 1.4},
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		DPI:        r.cfg.DPI,
		Background: gochart.Style{FillColor: r.bg, Padding: gochart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20}},
		Canvas:     gochart.Style{FillColor: r.bg},
		BarWidth:   width,
		BarSpacing: width,
		XAxis:      gochart.Style{FontSize: r.cfg.FontSize},
		YAxis:      gochart.YAxis{Style: gochart.Style{FontSize: r.cfg.FontSize}},
		Bars:       bars,
	}
	if rg := span(ys, []float64{0}); rg != nil {
		c.YAxis.Range = rg
	}
	return encode(&c)
}

func (r *Renderer) renderPie(labels []string, ys []float64) ([]byte, error) {
	_, ticks := positions(labels)
	values := make([]gochart.Value, len(ys))
	total := 0.0
	for i, y := range ys {
		label := "X" + strconv.Itoa(i)
		if ticks != nil {
			label = ticks[i].Label
		}
		values[i] = gochart.Value{Value: math.Abs(y), Label: label}
		total += math.Abs(y)
	}
	if total == 0 {
		return nil, ErrPieTotal
	}
	c := gochart.PieChart{
		Title:      "Pie",
		TitleStyle: gochart.Style{FontSize: r.cfg.FontSize * 1.4},
		Width:      r.cfg.Width,
		Height:     r.cfg.Height,
		DPI:        r.cfg.DPI,
		Background: gochart.Style{FillColor: r.bg},
		Canvas:     gochart.Style{FillColor: r.bg},
		Values:     values,
	}
	return encode(&c)
}

// ============================================================
// FFT and fit charts
// ============================================================

// RenderFFT draws the sampled signal above its amplitude spectrum.
func (r *Renderer) RenderFFT(p spectrum.Params) ([]byte, error) {
	s, err := spectrum.Compute(p)
	if err != nil {
		return nil, &ChartError{Kind: "fft", Err: err}
	}
	half := *r
	half.cfg.Height = r.cfg.Height / 2
	if half.cfg.Height < 100 {
		half.cfg.Height = 100
	}

	signal := half.base("Signal (with noise)")
	signal.XAxis, signal.YAxis = half.axes(s.Time, nil, s.Signal)
	signal.XAxis.Name, signal.YAxis.Name = "Time [s]", "Amplitude"
	signal.Series = []gochart.Series{gochart.ContinuousSeries{
		Style: gochart.Style{StrokeWidth: 1, StrokeColor: blue}, XValues: s.Time, YValues: s.Signal,
	}}

	freq := half.base("Spectrum")
	freq.XAxis, freq.YAxis = half.axes(s.Freqs, nil, s.Amplitudes)
	freq.XAxis.Name, freq.YAxis.Name = "Frequency [Hz]", "Amplitude"
	freq.Series = []gochart.Series{gochart.ContinuousSeries{
		Style: gochart.Style{StrokeWidth: 2, StrokeColor: red}, XValues: s.Freqs, YValues: s.Amplitudes,
	}}

	top, err := encode(&signal)
	if err != nil {
		return nil, &ChartError{Kind: "fft", Err: err}
	}
	bottom, err := encode(&freq)
	if err != nil {
		return nil, &ChartError{Kind: "fft", Err: err}
	}
	out, err := stack(top, bottom)
	if err != nil {
		return nil, &ChartError{Kind: "fft", Err: err}
	}
	return out, nil
}

// RenderFit fits the samples and draws them with a 100-point fitted curve.
func (r *Renderer) RenderFit(xs, ys []float64, degree int) ([]byte, stats.FitResult, error) {
	fit, err := stats.FitPolynomial(xs, ys, degree)
	if err != nil {
		return nil, stats.FitResult{}, &ChartError{Kind: "fit", Err: err}
	}
	cx, cy := fit.Curve(100)
	c := r.base("Polynomial fit")
	c.XAxis, c.YAxis = r.axes(append(append([]float64(nil), xs...), cx...), nil, ys, cy)
	c.Series = []gochart.Series{
		gochart.ContinuousSeries{
			Name:    "data",
			Style:   gochart.Style{StrokeWidth: gochart.Disabled, DotWidth: 5, DotColor: blue},
			XValues: fit.X, YValues: fit.Y,
		},
		gochart.ContinuousSeries{
			Name:    "degree " + strconv.Itoa(degree) + " fit",
			Style:   gochart.Style{StrokeWidth: 2, StrokeColor: red},
			XValues: cx, YValues: cy,
		},
	}
	c.Elements = []gochart.Renderable{gochart.Legend(&c)}
	out, err := encode(&c)
	if err != nil {
		return nil, stats.FitResult{}, &ChartError{Kind: "fit", Err: err}
	}
	return out, fit, nil
}

// stack places PNG images one above the other.
func stack(pngs ...[]byte) ([]byte, error) {
	imgs := make([]image.Image, len(pngs))
	width, height := 0, 0
	for i, b := range pngs {
		img, err := png.Decode(bytes.NewReader(b))
		if err != nil {
			return nil, err
		}
		imgs[i] = img
		width = max(width, img.Bounds().Dx())
		height += img.Bounds().Dy()
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(dst, dst.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		draw.Draw(dst, image.Rect(0, y, b.Dx(), y+b.Dy()), img, b.Min, draw.Over)
		y += b.Dy()
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
