// Command gocalc is the command line front end of the calculator.
//
// Usage:
//
//	gocalc eval "sin(pi/2) + 2^3"
//	gocalc solve "x**2 - 4" x
//	gocalc integrate "x^2" x --lower 0 --upper 3
//	gocalc chart bar "a,b,c" "1,2,3" --out bar.png
//	gocalc serve --config gocalc.yaml
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
)

var (
	colorSuccess = lipgloss.Color("#2CD7C7")
	colorError   = lipgloss.Color("#E74C3C")
	colorMuted   = lipgloss.Color("#2C4A54")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// errReported marks a failure whose message was already printed.
var errReported = errors.New("failed")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, errorStyle.Render(gocalc.FormatFailure(err)))
		}
		os.Exit(1)
	}
}

// app is the state shared by every subcommand after flag parsing.
type app struct {
	stdout, stderr io.Writer

	configPath string
	logLevel   string
	jsonOut    bool

	cfg  config.Config
	log  *slog.Logger
	calc *gocalc.Calculator
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "gocalc",
		Short:         "Scientific calculator: evaluate, solve, differentiate, integrate, fit and plot",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "Print results as JSON")

	root.AddCommand(
		a.evalCmd(),
		a.solveCmd(),
		a.diffCmd(),
		a.integrateCmd(),
		a.statsCmd(),
		a.fitCmd(),
		a.fftCmd(),
		a.chartCmd(),
		a.serveCmd(),
		a.schemaCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		if _, err := logging.ParseLevel(a.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = a.logLevel
	}
	lc := cfg.Log.Logging("gocalc")
	lc.Output = a.stderr
	a.cfg = cfg
	a.log = logging.New(lc)
	a.calc = gocalc.New(gocalc.Options{Timeout: cfg.Engine.Timeout, Chart: cfg.Chart, Logger: a.log})
	return nil
}
