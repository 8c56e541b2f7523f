package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"weave/internal/version"
)

// errFailed reports that diagnostics with errors were already printed.
var errFailed = errors.New("compilation failed")

// app holds state shared between the root hooks and subcommands.
type app struct {
	cleanup func()
}

func newRootCmd() (*cobra.Command, *app) {
	a := &app{cleanup: func() {}}
	root := &cobra.Command{
		Use:           "weave",
		Short:         "Template compiler",
		Long:          `weave compiles template ASTs into JavaScript module ASTs`,
		Version:       version.Current().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := setupColor(cmd); err != nil {
				return err
			}
			stopProfiling, err := setupProfiling(cmd)
			if err != nil {
				return err
			}
			cleanup, err := setupTracing(cmd)
			if err != nil {
				stopProfiling()
				return err
			}
			a.cleanup = func() {
				cleanup()
				stopProfiling()
			}
			return nil
		},
	}

	// Глобальные флаги
	pf := root.PersistentFlags()
	pf.String("color", "auto", "colorize output (auto|on|off)")
	pf.Bool("quiet", false, "suppress non-essential output")
	pf.Bool("timings", false, "show timing information")
	pf.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	pf.String("trace", "", "write trace events to file (- for stderr)")
	pf.String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	pf.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	pf.Int("trace-ring-size", 4096, "events kept by the ring tracer")
	pf.Duration("trace-heartbeat", 0, "emit heartbeat trace events at this interval")
	pf.String("cpu-profile", "", "write a CPU profile to file")
	pf.String("mem-profile", "", "write a heap profile to file on exit")
	pf.String("runtime-trace", "", "write a Go runtime trace to file")

	root.AddCommand(newCompileCmd())
	root.AddCommand(newDumpCmd())
	root.AddCommand(newVersionCmd())
	return root, a
}

// main wires the commands and exits non-zero on any error.
func main() {
	defer dumpTraceOnPanic()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root, a := newRootCmd()
	err := root.ExecuteContext(ctx)
	a.cleanup()
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "weave: %v\n", err)
		}
		os.Exit(1)
	}
}

func setupColor(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return fmt.Errorf("failed to get color flag: %w", err)
	}
	m, err := parseSwitch("color", mode)
	if err != nil {
		return err
	}
	color.NoColor = !m.enabled(os.Stderr) || (m == switchAuto && os.Getenv("NO_COLOR") != "")
	return nil
}

// globalOptions are the persistent flags every command reads.
type globalOptions struct {
	quiet          bool
	timings        bool
	maxDiagnostics int
}

func readGlobalOptions(cmd *cobra.Command) (globalOptions, error) {
	pf := cmd.Root().PersistentFlags()
	var (
		opts globalOptions
		err  error
	)
	if opts.quiet, err = pf.GetBool("quiet"); err != nil {
		return opts, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if opts.timings, err = pf.GetBool("timings"); err != nil {
		return opts, fmt.Errorf("failed to get timings flag: %w", err)
	}
	if opts.maxDiagnostics, err = pf.GetInt("max-diagnostics"); err != nil {
		return opts, fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	return opts, nil
}
