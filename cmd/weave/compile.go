package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"weave/internal/diag"
	"weave/internal/diagfmt"
	"weave/internal/driver"
	"weave/internal/observ"
	"weave/internal/source"
)

type compileFlags struct {
	format     string
	out        string
	stdout     bool
	jobs       int
	noCache    bool
	diagFormat string
	ui         string
}

func newCompileCmd() *cobra.Command {
	var f compileFlags
	cmd := &cobra.Command{
		Use:   "compile [flags] [document|directory]...",
		Short: "Compile template AST documents",
		Long: `Compile serialized template ASTs (YAML or JSON) into JavaScript module ASTs.
Directories are searched recursively for *.yaml, *.yml and *.json documents.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, args, f)
		},
	}
	cmd.Flags().StringVar(&f.format, "format", "", "output format (yaml|json|sketch); defaults to weave.toml or yaml")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory; defaults to weave.toml [output] dir")
	cmd.Flags().BoolVar(&f.stdout, "stdout", false, "print programs to stdout instead of writing files")
	cmd.Flags().IntVar(&f.jobs, "jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the compile cache")
	cmd.Flags().StringVar(&f.diagFormat, "diag-format", "pretty", "diagnostics format (pretty|json)")
	cmd.Flags().StringVar(&f.ui, "ui", "auto", "progress UI (auto|on|off)")
	return cmd
}

func runCompile(cmd *cobra.Command, args []string, f compileFlags) error {
	defer dumpTraceOnPanic()

	g, err := readGlobalOptions(cmd)
	if err != nil {
		return err
	}
	mode, err := parseSwitch("ui", f.ui)
	if err != nil {
		return err
	}
	if f.diagFormat != "pretty" && f.diagFormat != "json" {
		return fmt.Errorf("unknown diagnostics format %q (expected pretty|json)", f.diagFormat)
	}

	s, err := openSession(args, f.out)
	if err != nil {
		return err
	}
	format := f.format
	if format == "" {
		format = s.manifest.Output.Format
	}
	if !driver.ValidFormat(format) {
		return fmt.Errorf("unknown output format %q (expected yaml|json|sketch)", format)
	}

	opts, err := s.driverOptions(g.maxDiagnostics, f.jobs)
	if err != nil {
		return err
	}
	cache, err := s.cache(f.noCache)
	if err != nil && !g.quiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: compile cache disabled: %v\n", err)
	}
	opts.Cache = cache
	if g.timings {
		opts.Timer = observ.NewTimer()
	}

	var (
		files   *source.FileSet
		results []driver.Result
	)
	if len(s.paths) > 1 && !g.quiet && mode.enabled(os.Stderr) {
		files, results, err = compileWithUI(cmd.Context(), "compiling", s.paths, opts)
	} else {
		files, results, err = driver.CompileFiles(cmd.Context(), s.paths, opts)
	}
	if err != nil {
		return err
	}

	outDir := f.out
	if outDir == "" {
		outDir = s.manifest.OutputDir()
	}
	if f.stdout || outDir == "" {
		if err := printPrograms(cmd.OutOrStdout(), results, format); err != nil {
			return err
		}
	} else if _, err := driver.WriteOutputs(results, s.root, outDir, format, opts); err != nil {
		return err
	}

	bag := collectDiagnostics(results, g.maxDiagnostics)
	if opts.Timer != nil {
		if d, ok := driver.TimingDiagnostic(opts.Timer, len(results)); ok && f.diagFormat == "json" {
			bag.Add(d)
		}
	}
	if err := reportDiagnostics(cmd.ErrOrStderr(), bag, files, f.diagFormat, g.quiet); err != nil {
		return err
	}
	if opts.Timer != nil && f.diagFormat == "pretty" {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}
	if !g.quiet {
		printSummary(cmd.ErrOrStderr(), results)
	}
	if bag.HasErrors() {
		return errFailed
	}
	return nil
}

// printPrograms writes every compiled program to w, separated per format.
func printPrograms(w io.Writer, results []driver.Result, format string) error {
	first := true
	for i := range results {
		res := &results[i]
		if res.Program == nil || res.Bag.HasErrors() {
			continue
		}
		if !first {
			sep := "\n"
			if format == driver.FormatYAML {
				sep = "---\n"
			}
			if _, err := io.WriteString(w, sep); err != nil {
				return err
			}
		}
		first = false
		if err := driver.WriteProgram(w, res, format); err != nil {
			return err
		}
		if format == driver.FormatSketch {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectDiagnostics merges per-document bags in input order, capped at max.
func collectDiagnostics(results []driver.Result, max int) *diag.Bag {
	bag := diag.NewBag(max)
	for _, res := range results {
		for _, d := range res.Bag.Items() {
			if !bag.Add(d) {
				return bag
			}
		}
	}
	return bag
}

func reportDiagnostics(w io.Writer, bag *diag.Bag, files *source.FileSet, format string, quiet bool) error {
	if format == "json" {
		return diagfmt.JSON(w, bag, files, diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         diagfmt.PathModeRelative,
			IncludeNotes:     true,
		})
	}
	if bag.Len() == 0 {
		return nil
	}
	shown := bag
	if quiet {
		shown = diag.NewBag(bag.Len())
		for _, d := range bag.Items() {
			if d.Severity >= diag.SevError {
				shown.Add(d)
			}
		}
	}
	diagfmt.Pretty(w, shown, files, diagfmt.PrettyOpts{
		Color:      !color.NoColor,
		Context:    1,
		PathMode:   diagfmt.PathModeRelative,
		ShowNotes:  true,
		ShowAdvice: true,
	})
	if shown.Len() > 0 {
		fmt.Fprintln(w)
	}
	return nil
}

func printSummary(w io.Writer, results []driver.Result) {
	var ok, cached, failed int
	for _, res := range results {
		switch {
		case res.Bag.HasErrors():
			failed++
		case res.Cached:
			cached++
			ok++
		default:
			ok++
		}
	}
	fmt.Fprintf(w, "compiled %d of %d documents", ok, len(results))
	if cached > 0 {
		fmt.Fprintf(w, " (%d cached)", cached)
	}
	if failed > 0 {
		fmt.Fprintf(w, ", %d failed", failed)
	}
	fmt.Fprintln(w)
}
