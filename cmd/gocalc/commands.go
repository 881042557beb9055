package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/metrics"
	"github.com/njchilds90/gocalc/internal/server"
	"github.com/njchilds90/gocalc/spectrum"
)

// report prints res, or the failure for err, in the selected format. An
// image is written to out when both are present.
func (a *app) report(res gocalc.Result, err error, out string) error {
	if err != nil {
		if a.jsonOut {
			a.printJSON(gocalc.ToolResponse{Error: err.Error(), Message: gocalc.FormatFailure(err)})
		} else {
			fmt.Fprintln(a.stderr, errorStyle.Render(gocalc.FormatFailure(err)))
		}
		return errReported
	}

	saved := ""
	if len(res.Image) > 0 && out != "" {
		if err := os.WriteFile(out, res.Image, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", out, err)
		}
		saved = out
	}

	if a.jsonOut {
		resp := gocalc.Respond(res)
		if saved != "" {
			resp.Image = ""
		}
		a.printJSON(resp)
		return nil
	}
	fmt.Fprintln(a.stdout, successStyle.Render(res.Message()))
	if saved != "" {
		fmt.Fprintln(a.stdout, mutedStyle.Render("  image written to "+saved))
	}
	return nil
}

func (a *app) printJSON(v any) {
	enc := json.NewEncoder(a.stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

// =============================================================================
// Calculation commands
// =============================================================================

func (a *app) evalCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "eval <expression>",
		Short:   "Evaluate a numeric expression",
		Aliases: []string{"e"},
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Evaluate(strings.Join(args, " "))
			return a.report(res, err, "")
		},
	}
}

func (a *app) solveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "solve <equations> <variables>",
		Short: "Solve comma separated equations, e.g. solve \"x + y = 5, x - y = 1\" \"x, y\"",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Solve(cmd.Context(), args[0], args[1])
			return a.report(res, err, "")
		},
	}
}

func (a *app) diffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <function> <variable>",
		Short: "Differentiate a function",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Diff(cmd.Context(), args[0], args[1])
			return a.report(res, err, "")
		},
	}
}

func (a *app) integrateCmd() *cobra.Command {
	var lower, upper string
	cmd := &cobra.Command{
		Use:   "integrate <function> <variable>",
		Short: "Integrate a function; definite when --lower and --upper are both set",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Integrate(cmd.Context(), args[0], args[1], lower, upper)
			return a.report(res, err, "")
		},
	}
	cmd.Flags().StringVar(&lower, "lower", "", "Lower bound")
	cmd.Flags().StringVar(&upper, "upper", "", "Upper bound")
	return cmd
}

func (a *app) statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats <data>",
		Short: "Descriptive statistics of comma separated numbers",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Statistics(args[0])
			return a.report(res, err, "")
		},
	}
}

func (a *app) fitCmd() *cobra.Command {
	var degree int
	var out string
	cmd := &cobra.Command{
		Use:   "fit <x data> <y data>",
		Short: "Least squares polynomial fit",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Fit(args[0], args[1], degree)
			return a.report(res, err, out)
		},
	}
	cmd.Flags().IntVar(&degree, "degree", 1, "Polynomial degree")
	cmd.Flags().StringVar(&out, "out", "fit.png", "PNG output path, empty to skip")
	return cmd
}

func (a *app) fftCmd() *cobra.Command {
	var p spectrum.Params
	var out string
	cmd := &cobra.Command{
		Use:   "fft",
		Short: "Spectrum of a noisy sine wave",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.FFT(p)
			return a.report(res, err, out)
		},
	}
	cmd.Flags().Float64Var(&p.Frequency, "freq", 5, "Signal frequency in Hz")
	cmd.Flags().Float64Var(&p.Duration, "duration", 1, "Duration in seconds")
	cmd.Flags().Float64Var(&p.SampleRate, "rate", 100, "Sample rate in Hz")
	cmd.Flags().Float64Var(&p.NoiseLevel, "noise", 0.1, "Noise standard deviation")
	cmd.Flags().Uint64Var(&p.Seed, "seed", 0, "Noise seed")
	cmd.Flags().StringVar(&out, "out", "fft.png", "PNG output path, empty to skip")
	return cmd
}

func (a *app) chartCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "chart <scatter|line|bar|pie> <x data> <y data>",
		Short: "Render a chart as PNG",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.calc.Chart(args[0], args[1], args[2])
			return a.report(res, err, out)
		},
	}
	cmd.Flags().StringVar(&out, "out", "chart.png", "PNG output path, empty to skip")
	return cmd
}

// =============================================================================
// Service commands
// =============================================================================

func (a *app) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP tool server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			gin.SetMode(gin.ReleaseMode)
			cfg := a.cfg.Server
			if addr != "" {
				cfg.Addr = addr
			}
			return server.New(a.calc, cfg, a.log, metrics.New()).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address, overrides server.addr")
	return cmd
}

func (a *app) schemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(a.stdout, gocalc.ToolSpec())
			return nil
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := a.cfg.Marshal()
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}
